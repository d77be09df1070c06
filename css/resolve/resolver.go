// Package resolve computes CSS styles of document elements: it collects
// default, user and document style sheets, runs the cascade, applies
// inheritance and processes counters.
package resolve

import (
	_ "embed"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"h2p/css"
	"h2p/css/counter"
	"h2p/css/media"
	"h2p/dom"
	"h2p/resource"
)

//go:embed default.css
var defaultCSS []byte

// DefaultCSS returns built-in user agent style sheet.
func DefaultCSS() []byte {
	return defaultCSS
}

// StyleSheetSource loads external style sheets. Returned data is UTF-8 text
// and location is absolute URI or path used to resolve nested imports.
type StyleSheetSource interface {
	RetrieveStyleSheet(src, charset string) ([]byte, string, error)
}

// Options controls style sheet collection.
type Options struct {
	Device media.DeviceDescription
	// Resources loads linked and imported sheets, nil disables them.
	Resources StyleSheetSource
	// DefaultCSS replaces built-in user agent sheet when not nil.
	DefaultCSS []byte
	// UserCSS is applied after default sheet and before document sheets.
	UserCSS []byte
}

type pseudoKey struct {
	el     *html.Node
	pseudo string
}

// Resolver computes styles of elements of a single document.
type Resolver struct {
	root   *html.Node
	dev    media.DeviceDescription
	res    StyleSheetSource
	parser *css.Parser
	sheet  *css.StyleSheet
	log    *zap.Logger

	styles       map[*html.Node]css.Styles
	pseudo       map[pseudoKey]css.Styles
	rootFontSize float64
}

// New collects all style sheets of document. Malformed selectors and media
// queries are returned as errors, unavailable external sheets are skipped.
func New(root *html.Node, opts Options, log *zap.Logger) (*Resolver, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Device.Type == "" {
		opts.Device = media.Print()
	}
	r := &Resolver{
		root:   root,
		dev:    opts.Device,
		res:    opts.Resources,
		parser: css.NewParser(log),
		sheet:  &css.StyleSheet{},
		log:    log.Named("css-resolver"),
	}
	r.Reset()

	ua := opts.DefaultCSS
	if ua == nil {
		ua = defaultCSS
	}
	if err := r.addSheet(ua, "default.css", nil, css.OriginAgent); err != nil {
		return nil, err
	}
	if len(opts.UserCSS) > 0 {
		if err := r.addSheet(opts.UserCSS, "user style sheet", nil, css.OriginUser); err != nil {
			return nil, err
		}
	}
	if err := r.collect(root); err != nil {
		return nil, err
	}
	return r, nil
}

// StyleSheet returns combined style sheet in cascade order.
func (r *Resolver) StyleSheet() *css.StyleSheet {
	return r.sheet
}

// Device returns device media queries are evaluated against.
func (r *Resolver) Device() media.DeviceDescription {
	return r.dev
}

// Reset drops computed styles.
func (r *Resolver) Reset() {
	r.styles = make(map[*html.Node]css.Styles)
	r.pseudo = make(map[pseudoKey]css.Styles)
	r.rootFontSize = css.DefaultFontSize
}

// collect walks document in order picking <style> and <link> sheets.
func (r *Resolver) collect(root *html.Node) error {
	var err error
	dom.Walk(root, func(n *html.Node) bool {
		if err != nil || !dom.IsElement(n) {
			return err == nil
		}
		switch n.DataAtom {
		case atom.Style:
			if t := strings.ToLower(dom.Attr(n, "type")); t != "" && t != "text/css" {
				return false
			}
			queries, e := r.mediaAttr(n)
			if e != nil {
				err = e
				return false
			}
			err = r.addSheet([]byte(dom.Text(n)), "<style>", queries, css.OriginAuthor)
			return false
		case atom.Link:
			if !isStyleSheetLink(n) {
				return false
			}
			queries, e := r.mediaAttr(n)
			if e != nil {
				err = e
				return false
			}
			err = r.addExternal(dom.Attr(n, "href"), dom.Attr(n, "charset"), queries)
			return false
		}
		return true
	})
	return err
}

func isStyleSheetLink(n *html.Node) bool {
	for _, rel := range strings.Fields(strings.ToLower(dom.Attr(n, "rel"))) {
		if rel == "alternate" {
			return false
		}
		if rel == "stylesheet" {
			return dom.Attr(n, "href") != ""
		}
	}
	return false
}

func (r *Resolver) mediaAttr(n *html.Node) ([]*media.Query, error) {
	value, ok := dom.LookupAttr(n, "media")
	if !ok || strings.TrimSpace(value) == "" {
		return nil, nil
	}
	queries, err := media.ParseList(strings.ToLower(value))
	if err != nil {
		return nil, fmt.Errorf("invalid media attribute of <%s>: %w", dom.Tag(n), err)
	}
	return queries, nil
}

// addSheet parses style sheet text and appends it together with its
// imports, relative imports are resolved against document base.
func (r *Resolver) addSheet(data []byte, source string, queries []*media.Query, origin css.Origin) error {
	statements, err := r.parseSheet(data, source, "", queries, map[string]bool{})
	if err != nil {
		return err
	}
	(&css.StyleSheet{Statements: statements}).SetOrigin(origin)
	r.sheet.Statements = append(r.sheet.Statements, statements...)
	return nil
}

// parseSheet returns statements of sheet preceded by statements of imported
// sheets, restricted by queries. Location is used to resolve imports.
func (r *Resolver) parseSheet(data []byte, source, location string, queries []*media.Query, active map[string]bool) ([]css.Statement, error) {
	sheet, err := r.parser.Parse(data, source)
	if err != nil {
		return nil, err
	}

	var statements []css.Statement
	for _, st := range sheet.Statements {
		imp, ok := st.(*css.ImportRule)
		if !ok {
			statements = append(statements, st)
			continue
		}
		imported, err := r.loadExternal(imp.URL, "", location, imp.Queries, active)
		if err != nil {
			return nil, err
		}
		statements = append(statements, imported...)
	}
	if len(queries) > 0 {
		statements = []css.Statement{&css.MediaRule{Queries: queries, Statements: statements}}
	}
	return statements, nil
}

// addExternal loads linked sheet and appends it.
func (r *Resolver) addExternal(href, charset string, queries []*media.Query) error {
	statements, err := r.loadExternal(href, charset, "", queries, map[string]bool{})
	if err != nil {
		return err
	}
	r.sheet.Statements = append(r.sheet.Statements, statements...)
	return nil
}

// loadExternal loads linked or imported sheet. Loading failures are logged
// and sheet is skipped, import cycles are broken.
func (r *Resolver) loadExternal(href, charset, location string, queries []*media.Query, active map[string]bool) ([]css.Statement, error) {
	if r.res == nil {
		r.log.Debug("External style sheets are disabled", zap.String("href", href))
		return nil, nil
	}
	src := href
	if location != "" {
		abs, err := resource.ResolveReference(location, href)
		if err != nil {
			r.log.Warn("Unable to resolve style sheet reference", zap.String("href", href), zap.String("base", location), zap.Error(err))
			return nil, nil
		}
		src = abs
	}
	data, uri, err := r.res.RetrieveStyleSheet(src, charset)
	if err != nil {
		r.log.Warn("Unable to load style sheet", zap.String("href", href), zap.Error(err))
		return nil, nil
	}
	if active[uri] {
		r.log.Warn("Circular style sheet import ignored", zap.String("uri", uri))
		return nil, nil
	}
	active[uri] = true
	defer delete(active, uri)

	r.log.Debug("Style sheet loaded", zap.String("uri", uri), zap.Int("bytes", len(data)))
	return r.parseSheet(data, uri, uri, queries, active)
}

// PageRules returns @page rules matching device.
func (r *Resolver) PageRules() []*css.PageRule {
	return r.sheet.PageRules(r.dev)
}

// FontFaces returns @font-face rules matching device.
func (r *Resolver) FontFaces() []*css.FontFaceRule {
	return r.sheet.FontFaces(r.dev)
}

// Styles returns computed styles of element without touching counters.
func (r *Resolver) Styles(el *html.Node) css.Styles {
	if s, ok := r.styles[el]; ok {
		return s
	}
	return r.compute(el)
}

// Resolve returns computed styles of element and applies its counter
// operations to counters (may be nil). Must be called once per element in
// document order during a pass.
func (r *Resolver) Resolve(el *html.Node, counters *counter.Manager) css.Styles {
	s := r.Styles(el)
	if counters != nil {
		applyCounters(s, counters)
		counters.VisitID(dom.ID(el))
	}
	return s
}

// ResolvePseudo returns styles of ::before, ::after or ::marker of element.
// False means pseudo element is not generated: no declarations, or content
// is "none"/"normal" for before and after.
func (r *Resolver) ResolvePseudo(el *html.Node, pseudo string, counters *counter.Manager) (css.Styles, bool) {
	key := pseudoKey{el, pseudo}
	s, ok := r.pseudo[key]
	if !ok {
		decls := r.sheet.GetPseudoDeclarations(el, pseudo, r.dev)
		if len(decls) == 0 && pseudo != "marker" {
			r.pseudo[key] = nil
			return nil, false
		}
		s = r.computeFrom(decls, r.Styles(el))
		r.pseudo[key] = s
	}
	if s == nil {
		return nil, false
	}
	if pseudo == "before" || pseudo == "after" {
		switch s.Get("content") {
		case "none", "normal", "":
			return nil, false
		}
	}
	if counters != nil {
		applyCounters(s, counters)
	}
	return s, true
}

// RootFontSize returns font size of root element in points.
func (r *Resolver) RootFontSize() float64 {
	return r.rootFontSize
}
