package layout

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/beevik/etree"
)

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteXML serializes document as XML. Elements are named after their kinds,
// layout properties become attributes.
func (d *Document) WriteXML(w io.Writer) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("document")
	root.CreateAttr("id", d.ID)
	if d.Lang != "" {
		root.CreateAttr("lang", d.Lang)
	}
	if d.AcroForm {
		root.CreateAttr("acroform", "true")
	}
	if d.ContinuousContainer {
		root.CreateAttr("continuous-container", "true")
	}
	if d.Title != "" {
		root.CreateElement("title").SetText(d.Title)
	}
	for _, k := range sortedKeys(d.Meta) {
		m := root.CreateElement("meta")
		m.CreateAttr("name", k)
		m.CreateAttr("content", d.Meta[k])
	}
	writePageXML(root, "page", d.Page)
	if d.FirstPage != nil {
		writePageXML(root, "first-page", *d.FirstPage)
	}
	if len(d.Outline) > 0 {
		writeOutlineXML(root.CreateElement("outline"), d.Outline)
	}

	body := root.CreateElement("content")
	for _, c := range d.Root.Children {
		writeNodeXML(body, c)
	}

	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("unable to write xml: %w", err)
	}
	return nil
}

func writePageXML(parent *etree.Element, name string, p PageSetup) {
	el := parent.CreateElement(name)
	el.CreateAttr("width", formatFloat(p.Width))
	el.CreateAttr("height", formatFloat(p.Height))
	for i, side := range []string{"top", "right", "bottom", "left"} {
		el.CreateAttr("margin-"+side, formatFloat(p.Margins[i]))
	}
}

func writeOutlineXML(parent *etree.Element, entries []*OutlineEntry) {
	for _, e := range entries {
		el := parent.CreateElement("entry")
		el.CreateAttr("level", strconv.Itoa(e.Level))
		el.CreateAttr("title", e.Title)
		el.CreateAttr("destination", e.Destination)
		writeOutlineXML(el, e.Children)
	}
}

func writeNodeXML(parent *etree.Element, n *Node) {
	el := parent.CreateElement(n.Kind.String())
	if n.Tag != "" {
		el.CreateAttr("tag", n.Tag)
	}
	for _, p := range n.Props.Names() {
		el.CreateAttr(string(p), n.Props[p])
	}
	if n.Image != nil {
		el.CreateAttr("mime", n.Image.MIME)
		el.CreateAttr("pixel-width", strconv.Itoa(n.Image.Width))
		el.CreateAttr("pixel-height", strconv.Itoa(n.Image.Height))
	}
	if n.Kind == KindText {
		el.SetText(n.Text)
	}
	for _, c := range n.Children {
		writeNodeXML(el, c)
	}
}
