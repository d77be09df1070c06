package layout

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

type treeWriter struct {
	w *strings.Builder
}

func newTreeWriter() *treeWriter {
	return &treeWriter{w: &strings.Builder{}}
}

func (tw treeWriter) String() string {
	return tw.w.String()
}

func (tw treeWriter) line(depth int, format string, args ...any) {
	for range depth {
		tw.w.WriteString("  ")
	}
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

func (tw treeWriter) textBlock(depth int, label, value string) {
	for range depth {
		tw.w.WriteString("  ")
	}
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}

func formatPage(p PageSetup) string {
	return fmt.Sprintf("%gx%g margins %g %g %g %g", p.Width, p.Height, p.Margins[0], p.Margins[1], p.Margins[2], p.Margins[3])
}

// WriteTree writes human readable indented dump of document.
func (d *Document) WriteTree(w io.Writer) error {
	tw := newTreeWriter()
	tw.line(0, "document %s", d.ID)
	if d.Title != "" {
		tw.textBlock(1, "title", d.Title)
	}
	if d.Lang != "" {
		tw.line(1, "lang: %s", d.Lang)
	}
	for _, k := range sortedKeys(d.Meta) {
		tw.textBlock(1, "meta "+k, d.Meta[k])
	}
	tw.line(1, "page: %s", formatPage(d.Page))
	if d.FirstPage != nil {
		tw.line(1, "first page: %s", formatPage(*d.FirstPage))
	}
	if d.AcroForm {
		tw.line(1, "acroform")
	}
	if d.ContinuousContainer {
		tw.line(1, "continuous container")
	}
	if len(d.Outline) > 0 {
		tw.line(1, "outline:")
		writeOutline(tw, 2, d.Outline)
	}
	for _, c := range d.Root.Children {
		writeNode(tw, 1, c)
	}
	_, err := io.WriteString(w, tw.String())
	return err
}

// WriteTree writes dump of single element subtree.
func (n *Node) WriteTree(w io.Writer) error {
	tw := newTreeWriter()
	writeNode(tw, 0, n)
	_, err := io.WriteString(w, tw.String())
	return err
}

func writeOutline(tw *treeWriter, depth int, entries []*OutlineEntry) {
	for _, e := range entries {
		tw.line(depth, "%d %s -> %s", e.Level, encodeText(e.Title), e.Destination)
		writeOutline(tw, depth+1, e.Children)
	}
}

func writeNode(tw *treeWriter, depth int, n *Node) {
	var sb strings.Builder
	sb.WriteString(n.Kind.String())
	if n.Tag != "" {
		sb.WriteString(" <" + n.Tag + ">")
	}
	if len(n.Props) > 0 {
		sb.WriteString(" {")
		for i, p := range n.Props.Names() {
			if i > 0 {
				sb.WriteString("; ")
			}
			sb.WriteString(string(p) + ": " + n.Props[p])
		}
		sb.WriteString("}")
	}
	if n.Image != nil {
		fmt.Fprintf(&sb, " [%s %dx%d]", n.Image.MIME, n.Image.Width, n.Image.Height)
	}
	if n.Kind == KindText {
		sb.WriteString(" " + encodeText(n.Text))
	}
	tw.line(depth, "%s", sb.String())
	for _, c := range n.Children {
		writeNode(tw, depth+1, c)
	}
}
