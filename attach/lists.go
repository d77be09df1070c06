package attach

import (
	"strings"

	"golang.org/x/net/html"

	"h2p/css"
	"h2p/css/counter"
	"h2p/dom"
	"h2p/layout"
)

// listWorker builds list. Content which is not list item is wrapped into
// item without symbol.
type listWorker struct {
	base
	node  *layout.Node
	loose *blockWorker
}

func newListWorker(el *html.Node, styles css.Styles, _ *ProcessorContext) Worker {
	return &listWorker{
		base: base{el: el, styles: styles},
		node: layout.New(layout.KindList, dom.Tag(el)),
	}
}

func (w *listWorker) looseItem() *blockWorker {
	if w.loose == nil {
		w.loose = newBlock(w.el, w.styles, layout.KindListItem, false)
		w.loose.node.Tag = ""
		w.loose.node.Set(layout.PropListSymbol, "")
	}
	return w.loose
}

func (w *listWorker) closeLoose() {
	if w.loose == nil {
		return
	}
	w.loose.ProcessEnd(nil)
	if !w.loose.node.Empty() {
		w.node.Add(w.loose.node)
	}
	w.loose = nil
}

func (w *listWorker) ProcessContent(text string, ctx *ProcessorContext) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}
	return w.looseItem().ProcessContent(text, ctx)
}

func (w *listWorker) ProcessTagChild(child Worker, ctx *ProcessorContext) bool {
	res := results(child)
	if len(res) == 1 && res[0].Kind == layout.KindListItem {
		w.closeLoose()
		w.node.Add(res[0])
		return true
	}
	return w.looseItem().ProcessTagChild(child, ctx)
}

func (w *listWorker) ProcessEnd(*ProcessorContext) {
	w.closeLoose()
}

func (w *listWorker) ElementResult() *layout.Node {
	return w.node
}

// newListItemWorker creates item with symbol produced from ::marker content
// or list-style-type. Counters of item are already applied when worker is
// created.
func newListItemWorker(el *html.Node, styles css.Styles, ctx *ProcessorContext) Worker {
	w := newBlock(el, styles, layout.KindListItem, false)
	w.node.Set(layout.PropListSymbol, listSymbol(el, styles, ctx))
	w.node.Set(layout.PropListPosition, styles.Get("list-style-position"))
	return w
}

func listSymbol(el *html.Node, styles css.Styles, ctx *ProcessorContext) string {
	if ctx.Styles != nil {
		if marker, ok := ctx.Styles.ResolvePseudo(el, "marker", nil); ok && marker.Has("content") {
			switch content := marker.Get("content"); content {
			case "none", "normal":
			default:
				var sb strings.Builder
				for _, n := range ctx.generateContent(el, content, marker) {
					sb.WriteString(n.Text)
				}
				return sb.String()
			}
		}
	}

	style := styles.Get("list-style-type")
	switch style {
	case "none":
		return ""
	case "disc", "circle", "square":
		return counter.Format(0, style)
	}
	n, _ := ctx.Counters.Value(counter.ListItem)
	return counter.Format(n, style) + "."
}
