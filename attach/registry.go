package attach

import (
	"maps"
	"strings"

	"golang.org/x/net/html"

	"h2p/css"
	"h2p/dom"
)

// Kind identifies worker implementation.
type Kind int

const (
	KindNone Kind = iota
	KindHTML
	KindHead
	KindTitle
	KindMeta
	KindIgnore
	KindBody
	KindDiv
	KindParagraph
	KindHeading
	KindPre
	KindSpan
	KindLink
	KindBreak
	KindRule
	KindImage
	KindList
	KindListItem
	KindTable
	KindTableSection
	KindTableRow
	KindTableCell
	KindCaption
	KindColGroup
	KindCol
	KindInput
	KindTextArea
	KindSelect
	KindOption
	KindButton
	KindInlineBlock
)

var kindNames = map[Kind]string{
	KindNone: "none", KindHTML: "html", KindHead: "head", KindTitle: "title", KindMeta: "meta",
	KindIgnore: "ignore", KindBody: "body", KindDiv: "div", KindParagraph: "paragraph",
	KindHeading: "heading", KindPre: "pre", KindSpan: "span", KindLink: "link", KindBreak: "break",
	KindRule: "rule", KindImage: "image", KindList: "list", KindListItem: "list-item",
	KindTable: "table", KindTableSection: "table-section", KindTableRow: "table-row",
	KindTableCell: "table-cell", KindCaption: "caption", KindColGroup: "colgroup", KindCol: "col",
	KindInput: "input", KindTextArea: "textarea", KindSelect: "select", KindOption: "option",
	KindButton: "button", KindInlineBlock: "inline-block",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// metadata reports whether worker of this kind has to run even when element
// is not displayed.
func (k Kind) metadata() bool {
	return k == KindHead || k == KindTitle || k == KindMeta
}

// Registry maps tag names and CSS display values to worker kinds and worker
// kinds to factories. Registry is immutable, With methods return modified
// copy.
type Registry struct {
	tags      map[string]Kind
	display   map[string]Kind
	factories map[Kind]Factory
}

// DefaultRegistry returns registry with all built-in workers.
func DefaultRegistry() *Registry {
	r := &Registry{
		tags:      make(map[string]Kind),
		display:   make(map[string]Kind),
		factories: make(map[Kind]Factory),
	}
	for kind, tags := range map[Kind]string{
		KindHTML:         "html",
		KindHead:         "head",
		KindTitle:        "title",
		KindMeta:         "meta",
		KindIgnore:       "script style template noscript link base",
		KindBody:         "body",
		KindDiv:          "div address article aside blockquote center dd details dir dl dt fieldset figcaption figure footer form header hgroup legend main menu nav section summary",
		KindParagraph:    "p",
		KindHeading:      "h1 h2 h3 h4 h5 h6",
		KindPre:          "pre xmp listing",
		KindSpan:         "span abbr acronym b bdi bdo big cite code del dfn em font i ins kbd label mark q s samp small strike strong sub sup time tt u var",
		KindLink:         "a",
		KindBreak:        "br",
		KindRule:         "hr",
		KindImage:        "img",
		KindList:         "ul ol",
		KindListItem:     "li",
		KindTable:        "table",
		KindTableSection: "thead tbody tfoot",
		KindTableRow:     "tr",
		KindTableCell:    "td th",
		KindCaption:      "caption",
		KindColGroup:     "colgroup",
		KindCol:          "col",
		KindInput:        "input",
		KindTextArea:     "textarea",
		KindSelect:       "select",
		KindOption:       "option",
		KindButton:       "button",
	} {
		for _, tag := range strings.Fields(tags) {
			r.tags[tag] = kind
		}
	}
	for display, kind := range map[string]Kind{
		"block":        KindDiv,
		"flow-root":    KindDiv,
		"flex":         KindDiv,
		"grid":         KindDiv,
		"inline":       KindSpan,
		"inline-block": KindInlineBlock,
		"inline-flex":  KindInlineBlock,
		"list-item":    KindListItem,
		"table":        KindTable,
		"table-row":    KindTableRow,
		"table-cell":   KindTableCell,
	} {
		r.display[display] = kind
	}
	r.factories = map[Kind]Factory{
		KindHTML:         newHTMLWorker,
		KindHead:         newHeadWorker,
		KindTitle:        newTitleWorker,
		KindMeta:         newMetaWorker,
		KindIgnore:       newIgnoreWorker,
		KindBody:         newDivWorker,
		KindDiv:          newDivWorker,
		KindParagraph:    newParagraphWorker,
		KindHeading:      newParagraphWorker,
		KindPre:          newParagraphWorker,
		KindSpan:         newSpanWorker,
		KindLink:         newSpanWorker,
		KindBreak:        newBreakWorker,
		KindRule:         newRuleWorker,
		KindImage:        newImageWorker,
		KindList:         newListWorker,
		KindListItem:     newListItemWorker,
		KindTable:        newTableWorker,
		KindTableSection: newSectionWorker,
		KindTableRow:     newRowWorker,
		KindTableCell:    newCellWorker,
		KindCaption:      newDivWorker,
		KindColGroup:     newColGroupWorker,
		KindCol:          newColWorker,
		KindInput:        newInputWorker,
		KindTextArea:     newTextAreaWorker,
		KindSelect:       newSelectWorker,
		KindOption:       newOptionWorker,
		KindButton:       newButtonWorker,
		KindInlineBlock:  newDivWorker,
	}
	return r
}

func (r *Registry) clone() *Registry {
	return &Registry{
		tags:      maps.Clone(r.tags),
		display:   maps.Clone(r.display),
		factories: maps.Clone(r.factories),
	}
}

// With returns registry mapping tag to kind, KindNone removes mapping.
func (r *Registry) With(tag string, kind Kind) *Registry {
	c := r.clone()
	if kind == KindNone {
		delete(c.tags, strings.ToLower(tag))
	} else {
		c.tags[strings.ToLower(tag)] = kind
	}
	return c
}

// WithFactory returns registry creating workers of kind with f.
func (r *Registry) WithFactory(kind Kind, f Factory) *Registry {
	c := r.clone()
	c.factories[kind] = f
	return c
}

// WithDisplay returns registry mapping CSS display value to kind.
func (r *Registry) WithDisplay(display string, kind Kind) *Registry {
	c := r.clone()
	c.display[display] = kind
	return c
}

// Kind returns worker kind for element. Display overrides generic block and
// inline tags and gives kind to unknown tags when set explicitly.
func (r *Registry) Kind(el *html.Node, styles css.Styles) Kind {
	kind, known := r.tags[dom.Tag(el)]
	overridable := !known || kind == KindDiv || kind == KindSpan
	if overridable && (known || styles.Has("display")) {
		if k, ok := r.display[styles.Get("display")]; ok {
			return k
		}
	}
	return kind
}

// Create returns worker for element, nil when element has no worker.
func (r *Registry) Create(el *html.Node, styles css.Styles, ctx *ProcessorContext) (Worker, Kind) {
	kind := r.Kind(el, styles)
	if kind == KindNone {
		return nil, kind
	}
	f, ok := r.factories[kind]
	if !ok {
		return nil, KindNone
	}
	return f(el, styles, ctx), kind
}
