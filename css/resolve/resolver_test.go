package resolve_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/net/html"

	"h2p/css"
	"h2p/css/counter"
	"h2p/css/media"
	"h2p/css/resolve"
	"h2p/css/selector"
	"h2p/dom"
	"h2p/resource"
)

const base = "https://example.com/"

// sheets serves style sheets from memory keyed by absolute uri.
type sheets map[string]string

func (s sheets) RetrieveStyleSheet(src, _ string) ([]byte, string, error) {
	uri, err := resource.ResolveReference(base, src)
	if err != nil {
		return nil, "", err
	}
	text, ok := s[uri]
	if !ok {
		return nil, uri, fmt.Errorf("%s: not found", uri)
	}
	return []byte(text), uri, nil
}

func newResolver(t *testing.T, markup string, src resolve.StyleSheetSource) (*resolve.Resolver, *html.Node) {
	t.Helper()
	doc, err := dom.ParseString(markup)
	if err != nil {
		t.Fatal(err)
	}
	r, err := resolve.New(doc, resolve.Options{Device: media.Print(), Resources: src}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r, doc
}

func byID(t *testing.T, doc *html.Node, id string) *html.Node {
	t.Helper()
	el := dom.FindFirst(doc, func(n *html.Node) bool { return dom.ID(n) == id })
	if el == nil {
		t.Fatalf("#%s not found", id)
	}
	return el
}

func points(t *testing.T, v string) float64 {
	t.Helper()
	pt, ok := css.ParseAbsoluteLength(v, nil)
	if !ok {
		t.Fatalf("%q is not a length", v)
	}
	return pt
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestResolve_DefaultStyles(t *testing.T) {
	r, doc := newResolver(t, `<h1 id="h">T</h1><p id="p"><b id="b">x</b></p><span id="s">y</span>`, nil)

	h := r.Styles(byID(t, doc, "h"))
	if h.Get("display") != "block" || !near(points(t, h.Get("font-size")), 24) || h.Get("font-weight") != "bold" {
		t.Errorf("h1 styles = %v", h)
	}
	if !near(points(t, h.Get("margin-top")), 24*0.67) {
		t.Errorf("h1 margin-top = %q", h.Get("margin-top"))
	}
	if got := r.Styles(byID(t, doc, "b")).Get("font-weight"); got != "bold" {
		t.Errorf("b font-weight = %q", got)
	}
	if got := r.Styles(byID(t, doc, "s")).Get("display"); got != "inline" {
		t.Errorf("span display = %q", got)
	}
	if got := r.Styles(byID(t, doc, "p")).Get("display"); got != "block" {
		t.Errorf("p display = %q", got)
	}
}

func TestResolve_Inheritance(t *testing.T) {
	r, doc := newResolver(t, `<div id="d" style="color: red; font-size: 10pt; margin: 5pt; border: 2px solid blue">
<p id="p" style="font-size: 2em; margin-left: 1.5em; border-top-color: inherit; color: initial">x</p>
<span id="s" style="font-size: larger">y</span><span id="k" style="font-size: x-large">z</span></div>`, nil)

	p := r.Styles(byID(t, doc, "p"))
	if got := points(t, p.Get("font-size")); !near(got, 20) {
		t.Errorf("font-size = %v, want 20", got)
	}
	if got := points(t, p.Get("margin-left")); !near(got, 30) {
		t.Errorf("margin-left = %v, want 30", got)
	}
	if p.Get("color") != "black" {
		t.Errorf("color: initial = %q", p.Get("color"))
	}
	if p.Get("border-top-color") != "blue" {
		t.Errorf("border-top-color: inherit = %q", p.Get("border-top-color"))
	}
	if p.Has("border-left-color") {
		t.Error("border must not be inherited")
	}

	if got := points(t, r.Styles(byID(t, doc, "s")).Get("font-size")); !near(got, 12) {
		t.Errorf("larger = %v, want 12", got)
	}
	if got := points(t, r.Styles(byID(t, doc, "k")).Get("font-size")); !near(got, 18) {
		t.Errorf("x-large = %v, want 18", got)
	}
	if got := r.Styles(byID(t, doc, "s")).Get("color"); got != "red" {
		t.Errorf("inherited color = %q", got)
	}
	d := r.Styles(byID(t, doc, "d"))
	if d.Get("border-top-width") != "1.5pt" || d.Get("margin-top") != "5pt" {
		t.Errorf("div lengths = %v", d)
	}
}

func TestResolve_ExternalSheets(t *testing.T) {
	src := sheets{
		base + "css/a.css":     `@import "b.css"; @import url(print.css) print; p { color: green }`,
		base + "css/b.css":     `@import "a.css"; p { font-style: italic; color: red }`,
		base + "css/print.css": `p { letter-spacing: 1pt }`,
		base + "screen.css":    `p { text-transform: uppercase }`,
	}
	r, doc := newResolver(t, `<html><head>
<link rel="stylesheet" href="css/a.css">
<link rel="stylesheet" media="screen" href="screen.css">
<link rel="alternate stylesheet" href="screen.css">
<link rel="stylesheet" href="missing.css">
<style media="print">p { text-decoration: underline }</style>
<style type="text/less">p { color: pink }</style>
</head><body><p id="p">x</p></body></html>`, src)

	p := r.Styles(byID(t, doc, "p"))
	want := map[string]string{
		"color":                "green",
		"font-style":           "italic",
		"letter-spacing":       "1pt",
		"text-decoration-line": "underline",
		"text-transform":       "none",
	}
	for prop, w := range want {
		if got := p.Get(prop); got != w {
			t.Errorf("%s = %q, want %q", prop, got, w)
		}
	}
}

func TestResolve_UserSheetAndHints(t *testing.T) {
	doc, _ := dom.ParseString(`<table id="t" border="1" cellpadding="4"><tr><td id="c" align="center" bgcolor="#eee">x</td></tr></table>
<p id="p" align="right"><font id="f" color="red" size="+2">y</font></p><p id="q" align="right" style="text-align: left">z</p>`)
	r, err := resolve.New(doc, resolve.Options{UserCSS: []byte(`p { text-indent: 1em }`)}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Styles(byID(t, doc, "p")).Get("text-indent"); got != "12pt" {
		t.Errorf("user sheet text-indent = %q", got)
	}
	c := r.Styles(byID(t, doc, "c"))
	if c.Get("text-align") != "center" || c.Get("background-color") != "#eee" || c.Get("padding-left") != "3pt" {
		t.Errorf("td hints = %v", c)
	}
	if got := r.Styles(byID(t, doc, "p")).Get("text-align"); got != "right" {
		t.Errorf("p align = %q", got)
	}
	if got := r.Styles(byID(t, doc, "q")).Get("text-align"); got != "left" {
		t.Errorf("style attribute must win over align, got %q", got)
	}
	f := r.Styles(byID(t, doc, "f"))
	if f.Get("color") != "red" || !near(points(t, f.Get("font-size")), 18) {
		t.Errorf("font hints = %v", f)
	}
}

// walk resolves elements in document order the way conversion does.
func walk(r *resolve.Resolver, n *html.Node, m *counter.Manager, visit func(*html.Node, css.Styles)) {
	if dom.IsElement(n) {
		s := r.Resolve(n, m)
		if visit != nil {
			visit(n, s)
		}
		m.PushAll()
		defer m.PopAll()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(r, c, m, visit)
	}
}

func TestResolve_Counters(t *testing.T) {
	r, doc := newResolver(t, `<style>
body { counter-reset: chapter }
h2 { counter-increment: chapter; counter-reset: section }
h3 { counter-increment: section 2 }
</style>
<ol><li>a</li><li>b<ol start="5"><li>c</li><li id="inner">d</li></ol></li><li id="third" value="10">e</li></ol>
<h2>one</h2><h3>x</h3><h2>two</h2><h3>y</h3><h3 id="sec">z</h3>`, nil)

	m := counter.NewManager()
	got := map[string]string{}
	walk(r, doc, m, func(n *html.Node, _ css.Styles) {
		switch dom.ID(n) {
		case "inner":
			got["inner"] = m.ResolveCounters(counter.ListItem, ".", "decimal")
		case "third":
			got["third"] = m.Resolve(counter.ListItem, "decimal")
		case "sec":
			got["sec"] = m.Resolve("chapter", "decimal") + "." + m.Resolve("section", "decimal")
		}
	})
	want := map[string]string{"inner": "2.6", "third": "10", "sec": "2.4"}
	for k, w := range want {
		if got[k] != w {
			t.Errorf("%s = %q, want %q", k, got[k], w)
		}
	}
	if m.Depth() != 0 {
		t.Errorf("unbalanced counter scopes: %d", m.Depth())
	}

	// target counters resolve on next pass
	m.StartPass()
	if v, ok := m.ResolveTarget("sec", "section", "decimal"); !ok || v != "4" {
		t.Errorf("ResolveTarget() = %q, %v", v, ok)
	}
}

func TestResolve_PseudoElements(t *testing.T) {
	r, doc := newResolver(t, `<style>
p::before { content: "§" counter(n); color: red }
p::after { content: none }
p { counter-increment: n; font-size: 20pt }
</style><p id="p">x</p><q id="q">y</q>`, nil)

	p := byID(t, doc, "p")
	m := counter.NewManager()
	r.Resolve(p, m)
	before, ok := r.ResolvePseudo(p, "before", m)
	if !ok || before.Get("content") != `"§" counter(n)` || before.Get("color") != "red" {
		t.Errorf("before = %v, %v", before, ok)
	}
	if before.Get("font-size") != "20pt" {
		t.Errorf("pseudo element must inherit from element, font-size = %q", before.Get("font-size"))
	}
	if _, ok := r.ResolvePseudo(p, "after", m); ok {
		t.Error("content: none must not generate pseudo element")
	}
	if s, ok := r.ResolvePseudo(byID(t, doc, "q"), "before", m); !ok || s.Get("content") != "open-quote" {
		t.Errorf("q::before = %v, %v", s, ok)
	}
}

func TestResolve_PageRulesAndFonts(t *testing.T) {
	r, _ := newResolver(t, `<style>
@page :first { margin-top: 1in }
@font-face { font-family: "Body"; src: url(body.ttf) }
@media screen { @font-face { font-family: "Screen"; src: url(s.ttf) } }
</style>`, nil)

	pages := r.PageRules()
	if len(pages) != 2 || pages[0].Selector != "" || pages[1].Selector != ":first" {
		t.Fatalf("page rules = %+v", pages)
	}
	faces := r.FontFaces()
	if len(faces) != 1 || faces[0].Get("font-family") != `"Body"` {
		t.Errorf("font faces = %+v", faces)
	}
}

func TestResolve_SyntaxErrorsSurface(t *testing.T) {
	doc, _ := dom.ParseString(`<style>p > { color: red }</style>`)
	_, err := resolve.New(doc, resolve.Options{}, zaptest.NewLogger(t))
	var se *selector.SyntaxError
	if !errors.As(err, &se) {
		t.Errorf("New() error = %v, want selector syntax error", err)
	}

	doc, _ = dom.ParseString(`<link rel="stylesheet" media="screen (color)" href="x.css">`)
	_, err = resolve.New(doc, resolve.Options{}, zaptest.NewLogger(t))
	var me *media.ParseError
	if !errors.As(err, &me) {
		t.Errorf("New() error = %v, want media parse error", err)
	}
}

func TestResolve_UnknownUnitsReported(t *testing.T) {
	doc, err := dom.ParseString(`<p id="p" style="margin-left: 3foo; padding-top: 2pt; text-indent: 5%; width: auto">x</p>`)
	if err != nil {
		t.Fatal(err)
	}
	core, logs := observer.New(zapcore.WarnLevel)
	r, err := resolve.New(doc, resolve.Options{Device: media.Print()}, zap.New(core))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	s := r.Styles(byID(t, doc, "p"))
	if got := s.Get("margin-left"); got != "3pt" {
		t.Errorf("margin-left = %q, number must be used as points", got)
	}
	if got := s.Get("padding-top"); got != "2pt" {
		t.Errorf("padding-top = %q", got)
	}
	if s.Get("text-indent") != "5%" || s.Get("width") != "auto" {
		t.Errorf("percentages and keywords must stay, got %q %q", s.Get("text-indent"), s.Get("width"))
	}

	warnings := logs.FilterField(zap.String("property", "margin-left")).All()
	if len(warnings) != 1 || warnings[0].ContextMap()["unit"] != "foo" {
		t.Errorf("unknown unit warnings = %v", logs.All())
	}
}
