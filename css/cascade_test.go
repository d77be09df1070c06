package css_test

import (
	"testing"

	"golang.org/x/net/html"

	"h2p/css"
	"h2p/css/media"
	"h2p/dom"
)

func element(t *testing.T, markup, id string) *html.Node {
	t.Helper()
	doc, err := dom.ParseString(markup)
	if err != nil {
		t.Fatal(err)
	}
	el := dom.FindFirst(doc, func(n *html.Node) bool { return dom.ID(n) == id })
	if el == nil {
		t.Fatalf("element #%s not found", id)
	}
	return el
}

func value(decls []css.Declaration, property string) string {
	for _, d := range decls {
		if d.Property == property {
			return d.Expression
		}
	}
	return ""
}

func TestCascade_EqualSpecificitySourceOrder(t *testing.T) {
	el := element(t, `<p id="x" class="a b">text</p>`, "x")
	sheet := parse(t, `.a { color: red } .b { color: green } p.a { margin: 0 } p.b { margin: 1px }`)
	decls := sheet.GetDeclarations(el, media.Print())
	if got := value(decls, "color"); got != "green" {
		t.Errorf("color = %q, later rule must win", got)
	}
	if got := value(decls, "margin-top"); got != "1px" {
		t.Errorf("margin-top = %q, later rule must win", got)
	}
}

func TestCascade_SpecificityBeatsOrder(t *testing.T) {
	el := element(t, `<div><p id="x" class="a">text</p></div>`, "x")
	sheet := parse(t, `#x { color: blue } div p.a { color: red } p { color: green }`)
	if got := value(sheet.GetDeclarations(el, media.Print()), "color"); got != "blue" {
		t.Errorf("color = %q, id selector must win", got)
	}
}

func TestCascade_ImportantAlwaysWins(t *testing.T) {
	el := element(t, `<p id="x">text</p>`, "x")
	sheet := parse(t, `p { color: red !important } #x { color: blue } p#x { color: green }`)
	decls := sheet.GetDeclarations(el, media.Print())
	if got := value(decls, "color"); got != "red" {
		t.Errorf("color = %q, important declaration must win", got)
	}

	sets := sheet.RuleSets(el, media.Print())
	sets = append(sets, css.InlineRuleSet(css.NewParser(nil).ParseInline("color: black")))
	if got := value(css.MergeDeclarations(sets), "color"); got != "red" {
		t.Errorf("color = %q, important must beat inline style", got)
	}
}

func TestCascade_InlineBeatsID(t *testing.T) {
	el := element(t, `<p id="x">text</p>`, "x")
	sheet := parse(t, `#x { color: blue }`)
	sets := append(sheet.RuleSets(el, media.Print()), css.InlineRuleSet(css.NewParser(nil).ParseInline("color: black")))
	if got := value(css.MergeDeclarations(sets), "color"); got != "black" {
		t.Errorf("color = %q, inline style must win", got)
	}
}

func TestCascade_MediaRules(t *testing.T) {
	el := element(t, `<p id="x">text</p>`, "x")
	sheet := parse(t, `p { color: black } @media screen { p { color: red } } @media print { p { font-size: 10pt } }`)

	decls := sheet.GetDeclarations(el, media.Print())
	if value(decls, "color") != "black" || value(decls, "font-size") != "10pt" {
		t.Errorf("print declarations = %v", decls)
	}
	screen := media.Default()
	screen.Type = media.TypeScreen
	decls = sheet.GetDeclarations(el, screen)
	if value(decls, "color") != "red" || value(decls, "font-size") != "" {
		t.Errorf("screen declarations = %v", decls)
	}
}

func TestCascade_ShorthandMergedWithLonghand(t *testing.T) {
	el := element(t, `<p id="x">text</p>`, "x")
	sheet := parse(t, `p { margin: 4px; margin-left: 1px } #x { border: 2px solid red }`)
	decls := sheet.GetDeclarations(el, media.Print())
	want := map[string]string{
		"margin-top":         "4px",
		"margin-left":        "1px",
		"border-top-width":   "2px",
		"border-left-style":  "solid",
		"border-right-color": "red",
	}
	for p, w := range want {
		if got := value(decls, p); got != w {
			t.Errorf("%s = %q, want %q", p, got, w)
		}
	}
	if value(decls, "margin") != "" || value(decls, "border") != "" {
		t.Error("shorthands must not survive expansion")
	}
}

func TestCascade_PseudoElements(t *testing.T) {
	el := element(t, `<p id="x">text</p>`, "x")
	sheet := parse(t, `p::before { content: "A" } p { color: red }`)
	if got := value(sheet.GetPseudoDeclarations(el, "before", media.Print()), "content"); got != `"A"` {
		t.Errorf("before content = %q", got)
	}
	if got := value(sheet.GetDeclarations(el, media.Print()), "content"); got != "" {
		t.Errorf("element must not get pseudo element declarations, content = %q", got)
	}
}
