package attach

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"h2p/css"
	"h2p/dom"
	"h2p/layout"
)

// rowWorker collects cells of table row.
type rowWorker struct {
	base
	cells []*layout.Node
}

func newRowWorker(el *html.Node, styles css.Styles, _ *ProcessorContext) Worker {
	return &rowWorker{base: base{el: el, styles: styles}}
}

func (w *rowWorker) ProcessContent(text string, _ *ProcessorContext) bool {
	return strings.TrimSpace(text) == ""
}

func (w *rowWorker) ProcessTagChild(child Worker, _ *ProcessorContext) bool {
	r := child.ElementResult()
	if r == nil || r.Kind != layout.KindCell {
		return false
	}
	w.cells = append(w.cells, r)
	return true
}

func (w *rowWorker) ProcessEnd(*ProcessorContext) {}

func (w *rowWorker) ElementResult() *layout.Node { return nil }

// sectionWorker collects rows of thead, tbody or tfoot.
type sectionWorker struct {
	base
	section layout.Section
	rows    [][]*layout.Node
}

func newSectionWorker(el *html.Node, styles css.Styles, _ *ProcessorContext) Worker {
	w := &sectionWorker{base: base{el: el, styles: styles}}
	switch dom.Tag(el) {
	case "thead":
		w.section = layout.SectionHeader
	case "tfoot":
		w.section = layout.SectionFooter
	}
	switch styles.Get("display") {
	case "table-header-group":
		w.section = layout.SectionHeader
	case "table-footer-group":
		w.section = layout.SectionFooter
	}
	return w
}

func (w *sectionWorker) ProcessContent(text string, _ *ProcessorContext) bool {
	return strings.TrimSpace(text) == ""
}

func (w *sectionWorker) ProcessTagChild(child Worker, _ *ProcessorContext) bool {
	switch c := child.(type) {
	case *rowWorker:
		w.rows = append(w.rows, c.cells)
		return true
	}
	r := child.ElementResult()
	if r == nil || r.Kind != layout.KindCell {
		return false
	}
	if len(w.rows) == 0 {
		w.rows = append(w.rows, nil)
	}
	w.rows[len(w.rows)-1] = append(w.rows[len(w.rows)-1], r)
	return true
}

func (w *sectionWorker) ProcessEnd(*ProcessorContext) {}

func (w *sectionWorker) ElementResult() *layout.Node { return nil }

// colWorker describes columns of col element.
type colWorker struct {
	base
	width string
	span  int
}

func newColWorker(el *html.Node, styles css.Styles, _ *ProcessorContext) Worker {
	return &colWorker{base: base{el: el, styles: styles}, width: columnWidth(el, styles), span: spanAttr(el)}
}

func columnWidth(el *html.Node, styles css.Styles) string {
	if v := styles.Get("width"); v != "" && v != "auto" {
		return v
	}
	if v := strings.TrimSpace(dom.Attr(el, "width")); v != "" {
		if strings.HasSuffix(v, "%") {
			return v
		}
		// plain number is width in pixels
		if px, err := strconv.ParseFloat(v, 64); err == nil {
			return css.FormatPoints(px * 0.75)
		}
	}
	return ""
}

func spanAttr(el *html.Node) int {
	n, err := strconv.Atoi(strings.TrimSpace(dom.Attr(el, "span")))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (w *colWorker) ProcessContent(text string, _ *ProcessorContext) bool {
	return strings.TrimSpace(text) == ""
}

func (w *colWorker) ProcessTagChild(Worker, *ProcessorContext) bool { return false }

func (w *colWorker) ProcessEnd(*ProcessorContext) {}

func (w *colWorker) ElementResult() *layout.Node { return nil }

// colGroupWorker collects col children, colgroup without them stands for
// span columns itself.
type colGroupWorker struct {
	colWorker
	cols []*colWorker
}

func newColGroupWorker(el *html.Node, styles css.Styles, _ *ProcessorContext) Worker {
	return &colGroupWorker{colWorker: colWorker{base: base{el: el, styles: styles}, width: columnWidth(el, styles), span: spanAttr(el)}}
}

func (w *colGroupWorker) ProcessTagChild(child Worker, _ *ProcessorContext) bool {
	c, ok := child.(*colWorker)
	if !ok {
		return false
	}
	if c.width == "" {
		c.width = w.width
	}
	w.cols = append(w.cols, c)
	return true
}

func (w *colGroupWorker) columns() []*colWorker {
	if len(w.cols) == 0 {
		return []*colWorker{&w.colWorker}
	}
	return w.cols
}

// tableWorker builds table from rows, sections, columns and caption.
type tableWorker struct {
	base
	table   *layout.Node
	wrapper *layout.TableWrapper
	result  *layout.Node
}

func newTableWorker(el *html.Node, styles css.Styles, _ *ProcessorContext) Worker {
	return &tableWorker{
		base:    base{el: el, styles: styles},
		table:   layout.New(layout.KindTable, dom.Tag(el)),
		wrapper: layout.NewTableWrapper(),
	}
}

func (w *tableWorker) ProcessContent(text string, _ *ProcessorContext) bool {
	return strings.TrimSpace(text) == ""
}

func (w *tableWorker) ProcessTagChild(child Worker, _ *ProcessorContext) bool {
	switch c := child.(type) {
	case *sectionWorker:
		for _, cells := range c.rows {
			w.wrapper.NewRow(c.section)
			for _, cell := range cells {
				w.wrapper.AddCell(cell)
			}
		}
		return true
	case *rowWorker:
		w.wrapper.NewRow(layout.SectionBody)
		for _, cell := range c.cells {
			w.wrapper.AddCell(cell)
		}
		return true
	case *colGroupWorker:
		for _, col := range c.columns() {
			w.wrapper.AddColumn(col.width, col.span)
		}
		return true
	case *colWorker:
		w.wrapper.AddColumn(c.width, c.span)
		return true
	case *blockWorker:
		if dom.Tag(c.el) == "caption" && w.wrapper.Caption() == nil {
			w.wrapper.SetCaption(c.node)
			return true
		}
	}
	r := child.ElementResult()
	if r == nil || r.Kind != layout.KindCell {
		return false
	}
	w.wrapper.AddCell(r)
	return true
}

func (w *tableWorker) ProcessEnd(*ProcessorContext) {
	w.wrapper.Build(w.table)
	caption := w.wrapper.Caption()
	if caption == nil {
		w.result = w.table
		return
	}
	w.result = layout.New(layout.KindDiv, "")
	if w.styles.Get("caption-side") == "bottom" {
		w.result.Add(w.table)
		w.result.Add(caption)
	} else {
		w.result.Add(caption)
		w.result.Add(w.table)
	}
}

func (w *tableWorker) ElementResult() *layout.Node {
	return w.result
}
