package attach

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"h2p/css"
	"h2p/dom"
	"h2p/layout"
	"h2p/resource"
)

// blockWorker builds block element. Inline content is collected and wrapped
// into anonymous paragraphs between block children. Paragraph workers
// without block children produce single paragraph.
type blockWorker struct {
	base
	node   *layout.Node
	inline inlineBuffer
	para   bool
	blocks bool
}

func newBlock(el *html.Node, styles css.Styles, kind layout.Kind, para bool) *blockWorker {
	return &blockWorker{
		base: base{el: el, styles: styles},
		node: layout.New(kind, dom.Tag(el)),
		para: para,
	}
}

func newDivWorker(el *html.Node, styles css.Styles, _ *ProcessorContext) Worker {
	return newBlock(el, styles, layout.KindDiv, false)
}

func newParagraphWorker(el *html.Node, styles css.Styles, _ *ProcessorContext) Worker {
	return newBlock(el, styles, layout.KindDiv, true)
}

func newCellWorker(el *html.Node, styles css.Styles, _ *ProcessorContext) Worker {
	return newBlock(el, styles, layout.KindCell, false)
}

func (w *blockWorker) ProcessContent(text string, _ *ProcessorContext) bool {
	w.inline.add(textLeaves(text, w.styles, w.el)...)
	return true
}

func (w *blockWorker) ProcessTagChild(child Worker, _ *ProcessorContext) bool {
	res := results(child)
	for _, r := range res {
		if !isInline(r) && !w.node.Accepts(r) {
			return false
		}
	}
	for _, r := range res {
		if isInline(r) {
			w.inline.add(r)
			continue
		}
		w.flush()
		w.node.Add(r)
		w.blocks = true
	}
	return true
}

// flush wraps pending inline content into anonymous paragraph.
func (w *blockWorker) flush() {
	leaves := w.inline.take()
	if leaves == nil {
		return
	}
	p := layout.New(layout.KindParagraph, "")
	for _, l := range leaves {
		p.Add(l)
	}
	w.node.Add(p)
}

func (w *blockWorker) ProcessEnd(_ *ProcessorContext) {
	if w.para && !w.blocks {
		w.node.Kind = layout.KindParagraph
		for _, l := range w.inline.take() {
			w.node.Add(l)
		}
		return
	}
	w.flush()
}

func (w *blockWorker) ElementResult() *layout.Node {
	return w.node
}

// spanWorker passes its content to parent as sequence of inline elements.
type spanWorker struct {
	base
	leaves []*layout.Node
}

func newSpanWorker(el *html.Node, styles css.Styles, _ *ProcessorContext) Worker {
	return &spanWorker{base: base{el: el, styles: styles}}
}

func (w *spanWorker) ProcessContent(text string, _ *ProcessorContext) bool {
	w.leaves = append(w.leaves, textLeaves(text, w.styles, w.el)...)
	return true
}

func (w *spanWorker) ProcessTagChild(child Worker, _ *ProcessorContext) bool {
	w.leaves = append(w.leaves, results(child)...)
	return true
}

func (w *spanWorker) ProcessEnd(ctx *ProcessorContext) {
	// empty anchor still has to carry its destination
	if len(w.leaves) == 0 && ctx.IsLinkTarget(dom.ID(w.el)) {
		w.leaves = append(w.leaves, layout.NewText(""))
	}
}

func (w *spanWorker) ElementResult() *layout.Node {
	return nil
}

func (w *spanWorker) Results() []*layout.Node {
	return w.leaves
}

// pseudoWorker carries generated ::before and ::after content.
type pseudoWorker struct {
	leaves []*layout.Node
}

func (w *pseudoWorker) ProcessEnd(*ProcessorContext)                   {}
func (w *pseudoWorker) ProcessContent(string, *ProcessorContext) bool  { return false }
func (w *pseudoWorker) ProcessTagChild(Worker, *ProcessorContext) bool { return false }
func (w *pseudoWorker) ElementResult() *layout.Node                    { return nil }
func (w *pseudoWorker) Results() []*layout.Node                        { return w.leaves }

// htmlWorker collects top level elements of document.
type htmlWorker struct {
	base
	roots []*layout.Node
}

func newHTMLWorker(el *html.Node, styles css.Styles, _ *ProcessorContext) Worker {
	return &htmlWorker{base: base{el: el, styles: styles}}
}

func (w *htmlWorker) ProcessContent(text string, _ *ProcessorContext) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}
	w.roots = append(w.roots, textLeaves(text, w.styles, w.el)...)
	return true
}

func (w *htmlWorker) ProcessTagChild(child Worker, _ *ProcessorContext) bool {
	w.roots = append(w.roots, results(child)...)
	return true
}

func (w *htmlWorker) ProcessEnd(*ProcessorContext) {}
func (w *htmlWorker) ElementResult() *layout.Node  { return nil }
func (w *htmlWorker) Results() []*layout.Node      { return w.roots }

// metaWorker handles head, title and meta elements. They produce no layout
// but fill document metadata.
type metaWorker struct {
	base
	text strings.Builder
}

func newHeadWorker(el *html.Node, styles css.Styles, _ *ProcessorContext) Worker {
	return &metaWorker{base: base{el: el, styles: styles}}
}

func newTitleWorker(el *html.Node, styles css.Styles, _ *ProcessorContext) Worker {
	return &metaWorker{base: base{el: el, styles: styles}}
}

func newMetaWorker(el *html.Node, styles css.Styles, _ *ProcessorContext) Worker {
	return &metaWorker{base: base{el: el, styles: styles}}
}

func (w *metaWorker) ProcessContent(text string, _ *ProcessorContext) bool {
	w.text.WriteString(text)
	return true
}

func (w *metaWorker) ProcessTagChild(Worker, *ProcessorContext) bool { return true }

func (w *metaWorker) ProcessEnd(ctx *ProcessorContext) {
	switch dom.Tag(w.el) {
	case "title":
		ctx.title = strings.Join(strings.Fields(w.text.String()), " ")
	case "meta":
		name := strings.ToLower(dom.Attr(w.el, "name"))
		if name == "" {
			name = strings.ToLower(dom.Attr(w.el, "property"))
		}
		if name != "" {
			ctx.meta[name] = dom.Attr(w.el, "content")
		}
	}
}

func (w *metaWorker) ElementResult() *layout.Node { return nil }

// ignoreWorker swallows element with everything inside.
type ignoreWorker struct {
	base
}

func newIgnoreWorker(el *html.Node, styles css.Styles, _ *ProcessorContext) Worker {
	return &ignoreWorker{base: base{el: el, styles: styles}}
}

func (w *ignoreWorker) ProcessEnd(*ProcessorContext)                   {}
func (w *ignoreWorker) ProcessContent(string, *ProcessorContext) bool  { return true }
func (w *ignoreWorker) ProcessTagChild(Worker, *ProcessorContext) bool { return true }
func (w *ignoreWorker) ElementResult() *layout.Node                    { return nil }

// leafWorker produces single element and accepts no content.
type leafWorker struct {
	base
	node *layout.Node
}

func (w *leafWorker) ProcessEnd(*ProcessorContext) {}

func (w *leafWorker) ProcessContent(text string, _ *ProcessorContext) bool {
	return strings.TrimSpace(text) == ""
}

func (w *leafWorker) ProcessTagChild(Worker, *ProcessorContext) bool { return false }

func (w *leafWorker) ElementResult() *layout.Node { return w.node }

func newBreakWorker(el *html.Node, styles css.Styles, _ *ProcessorContext) Worker {
	return &leafWorker{base: base{el: el, styles: styles}, node: layout.New(layout.KindNewline, dom.Tag(el))}
}

func newRuleWorker(el *html.Node, styles css.Styles, _ *ProcessorContext) Worker {
	return &leafWorker{base: base{el: el, styles: styles}, node: layout.New(layout.KindLineSeparator, dom.Tag(el))}
}

// newImageWorker retrieves image, broken image is replaced by its
// alternative text or dropped.
func newImageWorker(el *html.Node, styles css.Styles, ctx *ProcessorContext) Worker {
	w := &leafWorker{base: base{el: el, styles: styles}}
	src := strings.TrimSpace(dom.Attr(el, "src"))
	alt := dom.Attr(el, "alt")
	var img *resource.ImageData
	if src != "" {
		img = ctx.Resources.RetrieveImage(src)
	}
	switch {
	case img != nil:
		w.node = layout.NewImage(dom.Tag(el), img)
		if alt != "" {
			w.node.Set(layout.PropAlt, alt)
		}
	case alt != "":
		ctx.log.Debug("Image replaced by alternative text", zap.String("src", src))
		w.node = layout.NewText(alt)
		w.node.Tag = dom.Tag(el)
	default:
		ctx.log.Debug("Image dropped", zap.String("src", src))
	}
	return w
}
