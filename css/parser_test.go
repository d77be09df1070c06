package css_test

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"h2p/css"
	"h2p/css/media"
	"h2p/css/selector"
)

func parse(t *testing.T, text string) *css.StyleSheet {
	t.Helper()
	sheet, err := css.NewParser(zaptest.NewLogger(t)).ParseString(text, "test.css")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return sheet
}

func ruleSets(sheet *css.StyleSheet) []*css.RuleSet {
	var out []*css.RuleSet
	for _, st := range sheet.Statements {
		if rs, ok := st.(*css.RuleSet); ok {
			out = append(out, rs)
		}
	}
	return out
}

func TestParser_SelectorGroup(t *testing.T) {
	sheet := parse(t, `h2, h3, h4 { font-size: 120%; }`)
	rules := ruleSets(sheet)
	if len(rules) != 3 {
		t.Fatalf("expected 3 rule sets, got %d", len(rules))
	}
	for i, want := range []string{"h2", "h3", "h4"} {
		if got := rules[i].Selector.String(); got != want {
			t.Errorf("rule %d selector = %q, want %q", i, got, want)
		}
		if len(rules[i].Normal) != 1 || rules[i].Normal[0].Expression != "120%" {
			t.Errorf("rule %d declarations = %v", i, rules[i].Normal)
		}
	}
}

func TestParser_Important(t *testing.T) {
	sheet := parse(t, `p { color: red !important; margin: 0; font-weight: bold ! IMPORTANT }`)
	rules := ruleSets(sheet)
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule set, got %d", len(rules))
	}
	rs := rules[0]
	if len(rs.Important) != 2 || len(rs.Normal) != 1 {
		t.Fatalf("normal = %v, important = %v", rs.Normal, rs.Important)
	}
	if rs.Important[0].Property != "color" || rs.Important[0].Expression != "red" || !rs.Important[0].Important {
		t.Errorf("important[0] = %+v", rs.Important[0])
	}
	if rs.Important[1].Expression != "bold" {
		t.Errorf("important[1] = %+v", rs.Important[1])
	}
}

func TestParser_ValueNormalization(t *testing.T) {
	sheet := parse(t, `div { BACKGROUND-IMAGE: URL("Images/Photo.PNG"); Font-Family: "Open Sans",  SERIF; content: 'Keep Case' }`)
	decls := ruleSets(sheet)[0].Normal
	want := map[string]string{
		"background-image": `url("Images/Photo.PNG")`,
		"font-family":      `"Open Sans", serif`,
		"content":          `'Keep Case'`,
	}
	for _, d := range decls {
		if w, ok := want[d.Property]; !ok || w != d.Expression {
			t.Errorf("%s: %q, want %q", d.Property, d.Expression, w)
		}
	}
}

func TestParser_AtRules(t *testing.T) {
	sheet := parse(t, `
@charset "utf-8";
@import url("print.css") print;
@import 'base.css';
@font-face { font-family: "My Font"; src: url(fonts/my.ttf); }
@page :first { size: A4; margin: 2cm }
@media print and (min-width: 100px) {
  p { color: black }
  @media (color) { em { color: red } }
}
@keyframes spin { from { opacity: 0 } to { opacity: 1 } }
p { color: blue }
`)

	imports := sheet.Imports()
	if len(imports) != 2 {
		t.Fatalf("imports = %d, want 2", len(imports))
	}
	if imports[0].URL != "print.css" || len(imports[0].Queries) != 1 || imports[0].Queries[0].Type != "print" {
		t.Errorf("first import = %+v", imports[0])
	}
	if imports[1].URL != "base.css" || len(imports[1].Queries) != 0 {
		t.Errorf("second import = %+v", imports[1])
	}

	dev := media.Print()
	faces := sheet.FontFaces(dev)
	if len(faces) != 1 || faces[0].Get("font-family") != `"My Font"` || faces[0].Get("src") != "url(fonts/my.ttf)" {
		t.Errorf("font faces = %+v", faces)
	}

	pages := sheet.PageRules(dev)
	if len(pages) != 1 {
		t.Fatalf("page rules = %d", len(pages))
	}
	if pages[0].Selector != ":first" || !pages[0].Matches(true, false) || pages[0].Matches(false, false) {
		t.Errorf("page rule selector %q", pages[0].Selector)
	}
	if len(pages[0].Declarations) != 2 {
		t.Errorf("page declarations = %v", pages[0].Declarations)
	}

	var mr *css.MediaRule
	for _, st := range sheet.Statements {
		if m, ok := st.(*css.MediaRule); ok {
			mr = m
		}
	}
	if mr == nil || len(mr.Statements) != 2 {
		t.Fatalf("media rule = %+v", mr)
	}
	if _, ok := mr.Statements[1].(*css.MediaRule); !ok {
		t.Errorf("nested media rule expected, got %T", mr.Statements[1])
	}

	last := ruleSets(sheet)
	if len(last) != 1 || last[0].Selector.String() != "p" {
		t.Errorf("top level rule sets = %v", last)
	}
}

func TestParser_Errors(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))

	_, err := p.ParseString(`p > { color: red }`)
	var se *selector.SyntaxError
	if !errors.As(err, &se) {
		t.Errorf("malformed selector: error = %v, want *selector.SyntaxError", err)
	}

	_, err = p.ParseString(`@media screen (color) { p { color: red } }`)
	var me *media.ParseError
	if !errors.As(err, &me) {
		t.Errorf("malformed media: error = %v, want *media.ParseError", err)
	}
}

func TestParser_Inline(t *testing.T) {
	p := css.NewParser(nil)
	decls := p.ParseInline(`color: RED; margin:1px 2px !important; --Brand-Color: #ABC; ;`)
	if len(decls) != 3 {
		t.Fatalf("ParseInline() = %v", decls)
	}
	if decls[0].Expression != "red" || decls[1].Expression != "1px 2px" || !decls[1].Important {
		t.Errorf("ParseInline() = %v", decls)
	}
	if decls[2].Property != "--Brand-Color" || decls[2].Expression != "#ABC" {
		t.Errorf("custom property = %+v", decls[2])
	}
}

func TestStyleSheet_WriteTo(t *testing.T) {
	sheet := parse(t, `@media print { h1 { color: red !important } }`)
	out := sheet.String()
	for _, want := range []string{"@media print {", "h1 {", "color: red !important;"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}
}

func TestParser_AttributeCaseFlag(t *testing.T) {
	sheet := parse(t, `a[href$=".pdf" i] { color: red } a[type="Mail" s] { margin: 0 }`)
	rules := ruleSets(sheet)
	if len(rules) != 2 {
		t.Fatalf("expected 2 rule sets, got %d", len(rules))
	}
	if got := rules[0].Selector.String(); got != `a[href$=".pdf" i]` {
		t.Errorf("selector = %q", got)
	}

	el := element(t, `<a id="x" href="doc.PDF" type="mail">x</a>`, "x")
	decls := sheet.GetDeclarations(el, media.Print())
	if got := value(decls, "color"); got != "red" {
		t.Errorf("color = %q, case insensitive attribute must match", got)
	}
	if got := value(decls, "margin-top"); got != "" {
		t.Errorf("margin-top = %q, case sensitive attribute must not match", got)
	}
}

func TestParser_PageMarginBoxes(t *testing.T) {
	sheet := parse(t, `
@page {
  margin: 1in;
  @top-center { content: "Title"; color: gray }
  @bottom-right { content: counter(page) }
  size: A4;
}
p { color: blue }
`)
	pages := sheet.PageRules(media.Print())
	if len(pages) != 1 {
		t.Fatalf("page rules = %d", len(pages))
	}
	pr := pages[0]
	if len(pr.Declarations) != 2 || pr.Declarations[1].Property != "size" {
		t.Errorf("page declarations = %v", pr.Declarations)
	}
	if len(pr.MarginBoxes) != 2 {
		t.Fatalf("margin boxes = %+v", pr.MarginBoxes)
	}
	top := pr.MarginBoxes[0]
	if top.Name != "top-center" || len(top.Declarations) != 2 || top.Declarations[0].Expression != `"Title"` {
		t.Errorf("top box = %+v", top)
	}
	if bottom := pr.MarginBoxes[1]; bottom.Name != "bottom-right" || len(bottom.Declarations) != 1 {
		t.Errorf("bottom box = %+v", bottom)
	}

	if rules := ruleSets(sheet); len(rules) != 1 || rules[0].Selector.String() != "p" {
		t.Errorf("rule after @page = %v", rules)
	}
}
