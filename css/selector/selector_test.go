package selector_test

import (
	"errors"
	"testing"

	"golang.org/x/net/html"

	"h2p/css/selector"
	"h2p/dom"
)

const page = `<html lang="en-US"><body>
<div id="main" class="content wide">
  <h1 class="title">Title</h1>
  <p class="intro lead">First</p>
  <p>Second <span class="btn-primary x">s</span></p>
  <p lang="fr">Third</p>
  <ul><li>1</li><li>2</li><li>3</li><li>4</li><li>5</li></ul>
  <a href="http://example.com/doc.pdf" hreflang="en-GB">link</a>
  <input type="checkbox" checked>
  <div class="empty"></div>
</div>
</body></html>`

func load(t *testing.T) *html.Node {
	t.Helper()
	doc, err := dom.ParseString(page)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return doc
}

func matching(t *testing.T, doc *html.Node, sel string) []*html.Node {
	t.Helper()
	s, err := selector.Parse(sel)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", sel, err)
	}
	return dom.FindAll(doc, s.Matches)
}

func TestMatchCount(t *testing.T) {
	doc := load(t)
	tests := []struct {
		sel  string
		want int
	}{
		{"p", 3},
		{"*", 18},
		{"div p", 3},
		{"#main > p", 3},
		{"body > p", 0},
		{"h1 + p", 1},
		{"h1 ~ p", 3},
		{".intro", 1},
		{"p.intro.lead", 1},
		{"p.intro.missing", 0},
		{"div#main.content", 1},
		{"li:first-child", 1},
		{"li:last-child", 1},
		{"li:nth-child(odd)", 3},
		{"li:nth-child(even)", 2},
		{"li:nth-child(2n+1)", 3},
		{"li:nth-child(-n+2)", 2},
		{"li:nth-last-child(1)", 1},
		{"p:nth-of-type(2)", 1},
		{"p:first-of-type", 1},
		{"h1:only-of-type", 1},
		{"li:not(:first-child)", 4},
		{"p:not(.intro, [lang])", 1},
		{"a[href]", 1},
		{"a[href$='.pdf']", 1},
		{"a[href^=http]", 1},
		{"a[href*=example]", 1},
		{"a[hreflang|=en]", 1},
		{"a[HREF$='.PDF' i]", 1},
		{"a[href$='.PDF']", 0},
		{"a[href$='.PDF'i]", 1},
		{"a[href$='.PDF's]", 0},
		{"span[class~='btn-.*']", 1},
		{"span[class~=btn]", 0},
		{"span[class~=x]", 1},
		{"p:lang(fr)", 1},
		{"p:lang(en)", 2},
		{"h1:lang(en-us)", 1},
		{"p:contains(SECOND)", 1},
		{"div:empty", 1},
		{"html:root", 1},
		{"input:checked", 1},
		{"a:hover", 0},
		{"a:link", 1},
	}
	for _, tt := range tests {
		t.Run(tt.sel, func(t *testing.T) {
			if got := len(matching(t, doc, tt.sel)); got != tt.want {
				t.Errorf("%q matched %d elements, want %d", tt.sel, got, tt.want)
			}
		})
	}
}

func TestPseudoElement(t *testing.T) {
	doc := load(t)
	s, err := selector.Parse("p.intro::before")
	if err != nil {
		t.Fatal(err)
	}
	if s.PseudoElement() != "before" {
		t.Fatalf("PseudoElement() = %q", s.PseudoElement())
	}
	intro := dom.FindFirst(doc, func(n *html.Node) bool { return dom.HasClass(n, "intro") })
	if s.Matches(intro) {
		t.Error("selector with pseudo element must not match element itself")
	}
	if !s.MatchesPseudo(intro, "before") {
		t.Error("MatchesPseudo(before) = false")
	}
	if s.MatchesPseudo(intro, "after") {
		t.Error("MatchesPseudo(after) = true")
	}

	legacy := selector.MustParse("p:after")
	if legacy.PseudoElement() != "after" {
		t.Errorf("legacy syntax parsed as %q", legacy)
	}
}

func TestSpecificity(t *testing.T) {
	tests := []struct {
		sel  string
		want selector.Specificity
	}{
		{"*", selector.Specificity{}},
		{"p", selector.Specificity{Type: 1}},
		{"div p", selector.Specificity{Type: 2}},
		{".a", selector.Specificity{Class: 1}},
		{"p.a[title]:first-child", selector.Specificity{Class: 3, Type: 1}},
		{"#x", selector.Specificity{ID: 1}},
		{"#x .a > p", selector.Specificity{ID: 1, Class: 1, Type: 1}},
		{"p::before", selector.Specificity{Type: 2}},
		{"p:not(#x)", selector.Specificity{ID: 1, Type: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.sel, func(t *testing.T) {
			if got := selector.MustParse(tt.sel).Specificity(); got != tt.want {
				t.Errorf("Specificity(%q) = %v, want %v", tt.sel, got, tt.want)
			}
		})
	}

	if !selector.MustParse("#x").Specificity().Less(selector.InlineSpecificity) {
		t.Error("inline style must outrank id")
	}
	if selector.MustParse(".a.b.c.d.e.f.g.h.i.j.k").Specificity().Compare(selector.MustParse("#x").Specificity()) >= 0 {
		t.Error("any number of classes must be less specific than id")
	}
}

func TestParseGroup(t *testing.T) {
	list, err := selector.ParseGroup("h1, h2 , .x > p")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("ParseGroup() returned %d selectors", len(list))
	}
	if got := list[2].String(); got != ".x > p" {
		t.Errorf("String() = %q", got)
	}
}

func TestSyntaxErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"p >",
		"> p",
		"p,",
		"a[href",
		"a[=x]",
		"a[href=]",
		"p::before span",
		"li:nth-child(x)",
		"li:nth-child(2n+",
		"p..a",
		"a[class~='(']",
		"p:not(::before)",
	} {
		t.Run(s, func(t *testing.T) {
			_, err := selector.Parse(s)
			if err == nil {
				t.Fatalf("Parse(%q) expected error", s)
			}
			var se *selector.SyntaxError
			if !errors.As(err, &se) {
				t.Errorf("error %v is not *selector.SyntaxError", err)
			}
		})
	}
}

func TestUnknownPseudoClassNeverMatches(t *testing.T) {
	doc := load(t)
	if got := matching(t, doc, "p:-webkit-autofill"); len(got) != 0 {
		t.Errorf("unknown pseudo class matched %d elements", len(got))
	}
}
