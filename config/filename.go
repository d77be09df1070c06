package config

import (
	"strings"
	"unicode"
)

// CleanFileName removes characters not allowed in file names. Control
// characters and runs of white space, common in document titles, become single
// spaces.
func CleanFileName(in string) string {
	out := strings.Join(strings.FieldsFunc(in, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}), " ")
	out = trimFileName(strings.Map(func(sym rune) rune {
		if reservedRune(sym) {
			return -1
		}
		return sym
	}, out))
	if len(out) == 0 {
		out = "_bad_file_name_"
	}
	return out
}
