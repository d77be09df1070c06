package layout

import (
	"fmt"
	"io"

	"github.com/amazon-ion/ion-go/ion"
)

// ionWriter wraps ion.Writer remembering first error so serialization code
// does not have to check every call.
type ionWriter struct {
	w   ion.Writer
	err error
}

func (iw *ionWriter) do(fn func() error) {
	if iw.err == nil {
		iw.err = fn()
	}
}

func (iw *ionWriter) field(name string) {
	iw.do(func() error { return iw.w.FieldName(ion.NewSymbolTokenFromString(name)) })
}

func (iw *ionWriter) str(name, v string) {
	iw.field(name)
	iw.do(func() error { return iw.w.WriteString(v) })
}

func (iw *ionWriter) num(name string, v float64) {
	iw.field(name)
	iw.do(func() error { return iw.w.WriteFloat(v) })
}

func (iw *ionWriter) integer(name string, v int) {
	iw.field(name)
	iw.do(func() error { return iw.w.WriteInt(int64(v)) })
}

func (iw *ionWriter) boolean(name string, v bool) {
	iw.field(name)
	iw.do(func() error { return iw.w.WriteBool(v) })
}

func (iw *ionWriter) blob(name string, v []byte) {
	iw.field(name)
	iw.do(func() error { return iw.w.WriteBlob(v) })
}

func (iw *ionWriter) beginStruct() { iw.do(iw.w.BeginStruct) }
func (iw *ionWriter) endStruct()   { iw.do(iw.w.EndStruct) }
func (iw *ionWriter) beginList()   { iw.do(iw.w.BeginList) }
func (iw *ionWriter) endList()     { iw.do(iw.w.EndList) }

// WriteIon serializes document as single Ion struct, text or binary.
// Image data is embedded as blobs.
func (d *Document) WriteIon(w io.Writer, binary bool) error {
	iw := &ionWriter{}
	if binary {
		iw.w = ion.NewBinaryWriter(w)
	} else {
		iw.w = ion.NewTextWriter(w)
	}

	iw.beginStruct()
	iw.str("id", d.ID)
	if d.Title != "" {
		iw.str("title", d.Title)
	}
	if d.Lang != "" {
		iw.str("lang", d.Lang)
	}
	if len(d.Meta) > 0 {
		iw.field("meta")
		iw.beginStruct()
		for _, k := range sortedKeys(d.Meta) {
			iw.str(k, d.Meta[k])
		}
		iw.endStruct()
	}
	iw.field("page")
	writePageIon(iw, d.Page)
	if d.FirstPage != nil {
		iw.field("first_page")
		writePageIon(iw, *d.FirstPage)
	}
	iw.boolean("acroform", d.AcroForm)
	iw.boolean("immediate_flush", d.ImmediateFlush)
	iw.boolean("continuous_container", d.ContinuousContainer)
	if len(d.Outline) > 0 {
		iw.field("outline")
		writeOutlineIon(iw, d.Outline)
	}
	iw.field("content")
	iw.beginList()
	for _, c := range d.Root.Children {
		writeNodeIon(iw, c)
	}
	iw.endList()
	iw.endStruct()

	iw.do(iw.w.Finish)
	if iw.err != nil {
		return fmt.Errorf("unable to write ion: %w", iw.err)
	}
	return nil
}

func writePageIon(iw *ionWriter, p PageSetup) {
	iw.beginStruct()
	iw.num("width", p.Width)
	iw.num("height", p.Height)
	iw.field("margins")
	iw.beginList()
	for _, m := range p.Margins {
		iw.do(func() error { return iw.w.WriteFloat(m) })
	}
	iw.endList()
	iw.endStruct()
}

func writeOutlineIon(iw *ionWriter, entries []*OutlineEntry) {
	iw.beginList()
	for _, e := range entries {
		iw.beginStruct()
		iw.integer("level", e.Level)
		iw.str("title", e.Title)
		iw.str("destination", e.Destination)
		if len(e.Children) > 0 {
			iw.field("children")
			writeOutlineIon(iw, e.Children)
		}
		iw.endStruct()
	}
	iw.endList()
}

func writeNodeIon(iw *ionWriter, n *Node) {
	iw.beginStruct()
	iw.str("kind", n.Kind.String())
	if n.Tag != "" {
		iw.str("tag", n.Tag)
	}
	if len(n.Props) > 0 {
		iw.field("props")
		iw.beginStruct()
		for _, p := range n.Props.Names() {
			iw.str(string(p), n.Props[p])
		}
		iw.endStruct()
	}
	if n.Kind == KindText {
		iw.str("text", n.Text)
	}
	if img := n.Image; img != nil {
		iw.field("image")
		iw.beginStruct()
		iw.str("source", img.Source)
		iw.str("mime", img.MIME)
		iw.integer("width", img.Width)
		iw.integer("height", img.Height)
		iw.blob("data", img.Data)
		iw.endStruct()
	}
	if len(n.Children) > 0 {
		iw.field("children")
		iw.beginList()
		for _, c := range n.Children {
			writeNodeIon(iw, c)
		}
		iw.endList()
	}
	iw.endStruct()
}
