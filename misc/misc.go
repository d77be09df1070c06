// Package misc keeps build time information.
package misc

import (
	"os"
	"path/filepath"
	"strings"
)

// Set by linker.
var (
	version = "dev"
	githash = "unknown"
	appname = ""
)

// GetVersion returns version of the program.
func GetVersion() string {
	return version
}

// GetGitHash returns commit hash program was built from.
func GetGitHash() string {
	return githash
}

// GetAppName returns program name, either set at build time or derived from
// the executable.
func GetAppName() string {
	if len(appname) > 0 {
		return appname
	}
	name := filepath.Base(os.Args[0])
	return strings.TrimSuffix(name, filepath.Ext(name))
}
