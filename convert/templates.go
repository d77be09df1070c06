package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"h2p/common"
	"h2p/config"
	"h2p/layout"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	Title      string
	Language   string
	Author     string
	Keywords   []string
	Meta       map[string]string
	Format     string
	SourceFile string
	DocID      string
}

func buildKeywords(meta map[string]string) []string {
	var result []string
	for _, k := range strings.Split(meta["keywords"], ",") {
		if k = strings.TrimSpace(k); k != "" {
			result = append(result, k)
		}
	}
	return result
}

func expandTemplate(doc *layout.Document, src string, name config.TemplateFieldName, field string, format common.OutputFmt) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:    string(name),
		Title:      doc.Title,
		Language:   doc.Lang,
		Author:     doc.Meta["author"],
		Keywords:   buildKeywords(doc.Meta),
		Meta:       doc.Meta,
		Format:     format.String(),
		SourceFile: strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
		DocID:      doc.ID,
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
