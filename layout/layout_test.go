package layout_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/amazon-ion/ion-go/ion"
	"github.com/beevik/etree"

	"h2p/layout"
	"h2p/resource"
)

func TestKind(t *testing.T) {
	for k := layout.KindDocument; k <= layout.KindAreaBreak; k++ {
		got, err := layout.ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k, got, err)
		}
	}
	if _, err := layout.ParseKind("row"); err == nil {
		t.Error("ParseKind() must fail for unknown kind")
	}
	if !layout.KindText.IsInline() || layout.KindText.IsBlock() || !layout.KindText.IsLeaf() {
		t.Error("text must be inline leaf")
	}
	if !layout.KindTable.IsBlock() || layout.KindTable.IsLeaf() {
		t.Error("table must be block container")
	}
}

func TestNode_Accepts(t *testing.T) {
	inlineBlock := layout.New(layout.KindDiv, "span")
	inlineBlock.Set(layout.PropDisplay, "inline-block")

	tests := []struct {
		name   string
		parent layout.Kind
		child  *layout.Node
		want   bool
	}{
		{"paragraph text", layout.KindParagraph, layout.NewText("x"), true},
		{"paragraph div", layout.KindParagraph, layout.New(layout.KindDiv, "div"), false},
		{"paragraph inline block", layout.KindParagraph, inlineBlock, true},
		{"list item", layout.KindList, layout.New(layout.KindListItem, "li"), true},
		{"list paragraph", layout.KindList, layout.New(layout.KindParagraph, "p"), false},
		{"table cell", layout.KindTable, layout.New(layout.KindCell, "td"), true},
		{"table paragraph", layout.KindTable, layout.New(layout.KindParagraph, "p"), false},
		{"div cell", layout.KindDiv, layout.New(layout.KindCell, "td"), false},
		{"div table", layout.KindDiv, layout.New(layout.KindTable, "table"), true},
		{"text anything", layout.KindText, layout.NewText("y"), false},
		{"cell list", layout.KindCell, layout.New(layout.KindList, "ul"), true},
		{"nil", layout.KindDiv, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := layout.New(tt.parent, "")
			if got := p.Add(tt.child); got != tt.want {
				t.Errorf("Add() = %v, want %v", got, tt.want)
			}
			if tt.want != (len(p.Children) == 1) {
				t.Errorf("children = %d", len(p.Children))
			}
		})
	}
}

func TestNode_PropertiesAndText(t *testing.T) {
	p := layout.New(layout.KindParagraph, "p")
	p.Set(layout.BoxProperty("margin", "top"), "12pt")
	p.Set(layout.PropColor, "red")
	p.Set(layout.PropColor, "")
	if p.Has(layout.PropColor) || p.Get("margin-top") != "12pt" {
		t.Errorf("props = %v", p.Props)
	}
	p.Add(layout.NewText("a"))
	p.Add(layout.New(layout.KindNewline, "br"))
	p.Add(layout.NewText("b"))
	if got := p.PlainText(); got != "a\nb" {
		t.Errorf("PlainText() = %q", got)
	}
	if texts := p.Find(func(n *layout.Node) bool { return n.Kind == layout.KindText }); len(texts) != 2 {
		t.Errorf("Find() = %d", len(texts))
	}
	if layout.New(layout.KindDiv, "").Empty() != true || p.Empty() {
		t.Error("Empty() mismatch")
	}
}

func cell(tag string, rowspan, colspan string) *layout.Node {
	c := layout.New(layout.KindCell, tag)
	c.Set(layout.PropRowSpan, rowspan)
	c.Set(layout.PropColSpan, colspan)
	return c
}

func TestTableWrapper_Spans(t *testing.T) {
	tw := layout.NewTableWrapper()
	if !tw.Empty() {
		t.Fatal("new wrapper must be empty")
	}
	// body added before header, header still goes first
	tw.NewRow(layout.SectionBody)
	a := cell("td", "2", "")
	b := cell("td", "", "2")
	tw.AddCell(a)
	tw.AddCell(b)
	tw.NewRow(layout.SectionBody)
	c := cell("td", "", "")
	d := cell("td", "", "")
	tw.AddCell(c)
	tw.AddCell(d)
	tw.NewRow(layout.SectionHeader)
	h := cell("th", "5", "3")
	tw.AddCell(h)
	tw.AddColumn("", 1)
	tw.AddColumn("20%", 1)

	table := layout.New(layout.KindTable, "table")
	if cols := tw.Build(table); cols != 3 {
		t.Errorf("Build() columns = %d, want 3", cols)
	}
	want := []struct {
		n        *layout.Node
		row, col string
	}{
		{h, "0", "0"}, {a, "1", "0"}, {b, "1", "1"}, {c, "2", "1"}, {d, "2", "2"},
	}
	for i, w := range want {
		if table.Children[i] != w.n {
			t.Errorf("child %d out of order", i)
		}
		if w.n.Get(layout.PropRow) != w.row || w.n.Get(layout.PropColumn) != w.col {
			t.Errorf("cell %d at %s,%s, want %s,%s", i, w.n.Get(layout.PropRow), w.n.Get(layout.PropColumn), w.row, w.col)
		}
	}
	if h.Get(layout.PropRowSpan) != "1" {
		t.Errorf("header row span must be clipped to section, got %q", h.Get(layout.PropRowSpan))
	}
	if table.Get(layout.PropHeaderRows) != "1" || table.Has(layout.PropFooterRows) {
		t.Errorf("table props = %v", table.Props)
	}
	if got := table.Get(layout.PropColumnWidths); got != "auto 20% auto" {
		t.Errorf("column widths = %q", got)
	}
}

func TestDocument_Outline(t *testing.T) {
	d := layout.NewDocument("id")
	d.AddOutline(1, "One", "one")
	d.AddOutline(2, "One.A", "one-a")
	d.AddOutline(3, "One.A.i", "one-a-i")
	d.AddOutline(2, "One.B", "one-b")
	d.AddOutline(1, "Two", "two")
	d.AddOutline(3, "Two..i", "two-i")

	if len(d.Outline) != 2 {
		t.Fatalf("top level entries = %d", len(d.Outline))
	}
	one := d.Outline[0]
	if len(one.Children) != 2 || len(one.Children[0].Children) != 1 || one.Children[1].Title != "One.B" {
		t.Errorf("first entry = %+v", one)
	}
	if two := d.Outline[1]; len(two.Children) != 1 || two.Children[0].Destination != "two-i" {
		t.Errorf("second entry = %+v", two)
	}
}

func sample() *layout.Document {
	d := layout.NewDocument("0b7c")
	d.Title = "Sample"
	d.Lang = "en"
	d.Meta["author"] = "Somebody"
	d.AddOutline(1, "Heading", "heading")

	h := layout.New(layout.KindParagraph, "h1")
	h.Set(layout.PropDestination, "heading")
	h.Set(layout.PropFontSize, "24pt")
	h.Add(layout.NewText("Heading"))
	d.Add(h)

	list := layout.New(layout.KindList, "ul")
	item := layout.New(layout.KindListItem, "li")
	item.Set(layout.PropListSymbol, "•")
	p := layout.New(layout.KindParagraph, "")
	p.Add(layout.NewText("item <1>"))
	p.Add(layout.NewImage("img", &resource.ImageData{Source: "a.png", MIME: "image/png", Data: []byte{1, 2, 3}, Width: 4, Height: 2}))
	item.Add(p)
	list.Add(item)
	d.Add(list)
	return d
}

func TestDocument_WriteTree(t *testing.T) {
	var buf bytes.Buffer
	if err := sample().WriteTree(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"document 0b7c\n",
		"  title: \"Sample\"\n",
		"  meta author: \"Somebody\"\n",
		"  page: 595.28x841.89 margins 36 36 36 36\n",
		"    1 \"Heading\" -> heading\n",
		"  paragraph <h1> {destination: heading; font-size: 24pt}\n",
		"    text \"Heading\"\n",
		"    list-item <li> {list-symbol: •}\n",
		"        image <img> {source: a.png} [image/png 4x2]\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("tree does not contain %q:\n%s", want, out)
		}
	}
}

func TestDocument_WriteXML(t *testing.T) {
	var buf bytes.Buffer
	if err := sample().WriteXML(&buf); err != nil {
		t.Fatal(err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(buf.Bytes()); err != nil {
		t.Fatalf("output is not well formed: %v", err)
	}
	root := doc.SelectElement("document")
	if root == nil || root.SelectAttrValue("lang", "") != "en" {
		t.Fatalf("root = %v", root)
	}
	if got := root.FindElement("./title").Text(); got != "Sample" {
		t.Errorf("title = %q", got)
	}
	if e := root.FindElement("./outline/entry"); e == nil || e.SelectAttrValue("destination", "") != "heading" {
		t.Errorf("outline entry = %v", e)
	}
	h := root.FindElement("./content/paragraph[@tag='h1']")
	if h == nil || h.SelectAttrValue("font-size", "") != "24pt" {
		t.Fatalf("heading = %v", h)
	}
	if txt := root.FindElement("./content/list/list-item/paragraph/text"); txt == nil || txt.Text() != "item <1>" {
		t.Errorf("text = %v", txt)
	}
	if img := root.FindElement("//image"); img == nil || img.SelectAttrValue("pixel-width", "") != "4" {
		t.Errorf("image = %v", img)
	}
}

type ionNode struct {
	Kind     string            `ion:"kind"`
	Tag      string            `ion:"tag"`
	Text     string            `ion:"text"`
	Props    map[string]string `ion:"props"`
	Children []ionNode         `ion:"children"`
}

type ionDoc struct {
	ID      string    `ion:"id"`
	Title   string    `ion:"title"`
	Lang    string    `ion:"lang"`
	Content []ionNode `ion:"content"`
}

func TestDocument_WriteIon(t *testing.T) {
	for _, binary := range []bool{false, true} {
		var buf bytes.Buffer
		if err := sample().WriteIon(&buf, binary); err != nil {
			t.Fatal(err)
		}
		var got ionDoc
		if err := ion.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("binary=%v: Unmarshal() error = %v", binary, err)
		}
		if got.ID != "0b7c" || got.Title != "Sample" || len(got.Content) != 2 {
			t.Fatalf("binary=%v: document = %+v", binary, got)
		}
		h := got.Content[0]
		if h.Kind != "paragraph" || h.Tag != "h1" || h.Props["font-size"] != "24pt" || h.Children[0].Text != "Heading" {
			t.Errorf("binary=%v: heading = %+v", binary, h)
		}
		item := got.Content[1].Children[0]
		if item.Kind != "list-item" || item.Props["list-symbol"] != "•" {
			t.Errorf("binary=%v: list item = %+v", binary, item)
		}
	}
}
