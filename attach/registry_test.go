package attach_test

import (
	"testing"

	"golang.org/x/net/html"

	"h2p/attach"
	"h2p/css"
	"h2p/dom"
)

func TestRegistry_Kind(t *testing.T) {
	doc, err := dom.ParseString(`<div id="div"></div><span id="span"></span><foo id="foo"></foo><h1 id="h1"></h1><li id="li"></li>`)
	if err != nil {
		t.Fatal(err)
	}
	el := func(id string) *html.Node {
		return dom.FindFirst(doc, func(n *html.Node) bool { return dom.ID(n) == id })
	}

	r := attach.DefaultRegistry()
	tests := []struct {
		id     string
		styles css.Styles
		want   attach.Kind
	}{
		{"div", css.Styles{"display": "block"}, attach.KindDiv},
		{"div", css.Styles{"display": "list-item"}, attach.KindListItem},
		{"span", nil, attach.KindSpan},
		{"span", css.Styles{"display": "block"}, attach.KindDiv},
		{"span", css.Styles{"display": "inline-block"}, attach.KindInlineBlock},
		{"foo", nil, attach.KindNone},
		{"foo", css.Styles{"display": "table"}, attach.KindTable},
		{"h1", css.Styles{"display": "inline"}, attach.KindHeading},
		{"li", css.Styles{"display": "list-item"}, attach.KindListItem},
	}
	for _, tt := range tests {
		if got := r.Kind(el(tt.id), tt.styles); got != tt.want {
			t.Errorf("Kind(%s, %v) = %v, want %v", tt.id, tt.styles, got, tt.want)
		}
	}
}

func TestRegistry_Immutable(t *testing.T) {
	doc, err := dom.ParseString(`<foo id="foo"></foo><b id="b"></b>`)
	if err != nil {
		t.Fatal(err)
	}
	foo := dom.FindFirst(doc, func(n *html.Node) bool { return dom.ID(n) == "foo" })
	b := dom.FindFirst(doc, func(n *html.Node) bool { return dom.ID(n) == "b" })

	r := attach.DefaultRegistry()
	custom := r.With("FOO", attach.KindParagraph).With("b", attach.KindNone).WithDisplay("contents", attach.KindIgnore)
	if got := custom.Kind(foo, nil); got != attach.KindParagraph {
		t.Errorf("custom foo kind = %v", got)
	}
	if got := custom.Kind(b, nil); got != attach.KindNone {
		t.Errorf("custom b kind = %v", got)
	}
	if got := custom.Kind(foo, css.Styles{"display": "contents"}); got != attach.KindParagraph {
		t.Errorf("paragraph must not be overridden by display, got %v", got)
	}
	if r.Kind(foo, nil) != attach.KindNone || r.Kind(b, nil) != attach.KindSpan {
		t.Error("original registry was modified")
	}
	if got := attach.KindTableCell.String(); got != "table-cell" {
		t.Errorf("String() = %q", got)
	}
}
