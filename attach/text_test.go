package attach

import (
	"testing"

	"h2p/css"
	"h2p/layout"
)

func TestCollapseSpaces(t *testing.T) {
	tests := []struct {
		in    string
		lines bool
		want  string
	}{
		{"a \t\n b", false, "a b"},
		{"  a  ", false, " a "},
		{"a  \n  b\n\nc", true, "a\nb\n\nc"},
	}
	for _, tt := range tests {
		if got := collapseSpaces(tt.in, tt.lines); got != tt.want {
			t.Errorf("collapseSpaces(%q, %v) = %q, want %q", tt.in, tt.lines, got, tt.want)
		}
	}
}

func TestTextLeaves(t *testing.T) {
	leaves := textLeaves("one\ntwo", css.Styles{"white-space": "pre-line"}, nil)
	if len(leaves) != 3 || leaves[1].Kind != layout.KindNewline || leaves[0].Has(layout.PropWhiteSpace) {
		t.Fatalf("pre-line leaves = %v", leaves)
	}
	leaves = textLeaves("één twee", css.Styles{"text-transform": "uppercase"}, nil)
	if len(leaves) != 1 || leaves[0].Text != "ÉÉN TWEE" {
		t.Errorf("uppercase = %v", leaves)
	}
	if got := capitalize("it's a well-known fact"); got != "It's A Well-Known Fact" {
		t.Errorf("capitalize = %q", got)
	}
}

func TestInlineBuffer_Take(t *testing.T) {
	anchor := layout.NewText("")
	anchor.Set(layout.PropDestination, "x")
	pre := layout.NewText("  kept  ")
	pre.Set(layout.PropWhiteSpace, "pre")

	var b inlineBuffer
	b.add(layout.NewText("  a "), layout.NewText(" b "), layout.NewText(" "), anchor, layout.New(layout.KindNewline, "br"), layout.NewText(" c"), pre, layout.NewText(" "))
	got := b.take()
	want := []string{"a ", "b ", "", "\n", "c", "  kept  "}
	if len(got) != len(want) {
		t.Fatalf("take() returned %d elements", len(got))
	}
	for i, n := range got {
		text := n.Text
		if n.Kind == layout.KindNewline {
			text = "\n"
		}
		if text != want[i] {
			t.Errorf("element %d = %q, want %q", i, text, want[i])
		}
	}
	if !b.empty() {
		t.Error("buffer must be empty after take")
	}

	b.add(layout.NewText("  "), layout.NewText(" "))
	if got := b.take(); got != nil {
		t.Errorf("white space only content = %v", got)
	}
}

func TestUnescape(t *testing.T) {
	tests := map[string]string{
		`\201C`:   "“",
		`\2014 x`: "—x",
		`a\"b`:    `a"b`,
		`\A`:      "\n",
		`no`:      "no",
		`\00A7 1`: "§1",
		`tail\`:   `tail\`,
		`\1F600!`: "😀!",
	}
	for in, want := range tests {
		if got := unescape(in); got != want {
			t.Errorf("unescape(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestQuotes(t *testing.T) {
	styles := css.Styles{"quotes": `"«" "»" '"' '"'`}
	for depth, want := range [][2]string{{"«", "»"}, {`"`, `"`}, {`"`, `"`}} {
		open, closing := quotes(styles, depth)
		if open != want[0] || closing != want[1] {
			t.Errorf("depth %d: %q %q", depth, open, closing)
		}
	}
	if open, _ := quotes(css.Styles{"quotes": "none"}, 0); open != "" {
		t.Errorf("quotes none = %q", open)
	}
}
