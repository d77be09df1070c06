// Package attach turns HTML elements into layout elements. Every element
// with registered worker kind gets worker instance while document tree is
// walked, workers receive text and results of child workers and produce
// layout element when element is closed.
package attach

import (
	"golang.org/x/net/html"

	"h2p/css"
	"h2p/layout"
)

// Worker translates single HTML element into layout construct.
type Worker interface {
	// ProcessEnd is called once element and all its children were processed.
	ProcessEnd(ctx *ProcessorContext)
	// ProcessContent receives text of element, false means text was ignored.
	ProcessContent(text string, ctx *ProcessorContext) bool
	// ProcessTagChild receives finished child worker, false means worker
	// cannot absorb child result and caller has to find another parent.
	ProcessTagChild(child Worker, ctx *ProcessorContext) bool
	// ElementResult returns produced element. Repeated calls return the same
	// element, nil when worker has no directly attachable result.
	ElementResult() *layout.Node
}

// MultiResult is implemented by inline workers producing several elements
// instead of single one.
type MultiResult interface {
	Results() []*layout.Node
}

// Factory creates worker for element with computed styles.
type Factory func(el *html.Node, styles css.Styles, ctx *ProcessorContext) Worker

// results returns everything worker produced.
func results(w Worker) []*layout.Node {
	if m, ok := w.(MultiResult); ok {
		return m.Results()
	}
	if r := w.ElementResult(); r != nil {
		return []*layout.Node{r}
	}
	return nil
}

// base keeps element worker was created for.
type base struct {
	el     *html.Node
	styles css.Styles
}

func (b *base) Element() *html.Node { return b.el }

func (b *base) Styles() css.Styles { return b.styles }

// elementWorker is implemented by all workers created by registry.
type elementWorker interface {
	Worker
	Element() *html.Node
	Styles() css.Styles
}

// isInline reports whether element flows inside lines of its parent.
func isInline(n *layout.Node) bool {
	switch n.Get(layout.PropDisplay) {
	case "block", "list-item", "table", "flex", "grid", "flow-root":
		return false
	case "inline-block", "inline-table", "inline-flex":
		return true
	}
	return n.Kind.IsInline()
}
