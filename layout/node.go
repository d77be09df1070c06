package layout

import (
	"maps"
	"slices"
	"strings"

	"h2p/resource"
)

// Property is name of layout property. Most of them carry computed CSS
// values with lengths in points.
type Property string

const (
	PropDisplay       Property = "display"
	PropFontFamily    Property = "font-family"
	PropFontSize      Property = "font-size"
	PropFontWeight    Property = "font-weight"
	PropFontStyle     Property = "font-style"
	PropColor         Property = "color"
	PropBackground    Property = "background-color"
	PropBackgroundImg Property = "background-image"
	PropTextAlign     Property = "text-align"
	PropTextIndent    Property = "text-indent"
	PropTextTransform Property = "text-transform"
	PropDecoration    Property = "text-decoration"
	PropLineHeight    Property = "line-height"
	PropLetterSpacing Property = "letter-spacing"
	PropWordSpacing   Property = "word-spacing"
	PropWhiteSpace    Property = "white-space"
	PropVerticalAlign Property = "vertical-align"
	PropDirection     Property = "direction"
	PropOpacity       Property = "opacity"
	PropWidth         Property = "width"
	PropHeight        Property = "height"
	PropMinWidth      Property = "min-width"
	PropMaxWidth      Property = "max-width"
	PropMinHeight     Property = "min-height"
	PropMaxHeight     Property = "max-height"
	PropFloat         Property = "float"
	PropClear         Property = "clear"
	PropBreakBefore   Property = "break-before"
	PropBreakAfter    Property = "break-after"
	PropKeepTogether  Property = "keep-together"
	PropOrphans       Property = "orphans"
	PropWidows        Property = "widows"
	PropLang          Property = "lang"

	PropDestination Property = "destination"
	PropLink        Property = "link"
	PropAlt         Property = "alt"
	PropSource      Property = "source"

	PropListSymbol   Property = "list-symbol"
	PropListPosition Property = "list-symbol-position"
	PropListStart    Property = "list-start"

	PropColumns      Property = "columns"
	PropHeaderRows   Property = "header-rows"
	PropFooterRows   Property = "footer-rows"
	PropColumnWidths Property = "column-widths"
	PropCollapse     Property = "border-collapse"
	PropSpacing      Property = "border-spacing"
	PropCaptionSide  Property = "caption-side"
	PropRow          Property = "row"
	PropColumn       Property = "column"
	PropRowSpan      Property = "rowspan"
	PropColSpan      Property = "colspan"

	PropFieldName    Property = "field-name"
	PropFieldType    Property = "field-type"
	PropFieldValue   Property = "field-value"
	PropFieldChecked Property = "field-checked"
	PropFieldOptions Property = "field-options"
	PropFieldLabel   Property = "field-label"
)

// BoxProperty returns name of side specific box property, e.g.
// BoxProperty("margin", "top") or BoxProperty("border", "left", "width").
func BoxProperty(parts ...string) Property {
	return Property(strings.Join(parts, "-"))
}

// Properties keeps layout properties of element.
type Properties map[Property]string

// Names returns property names in stable order.
func (p Properties) Names() []Property {
	return slices.Sorted(maps.Keys(p))
}

// Node is layout element. Children are only allowed for container kinds, see
// Accepts.
type Node struct {
	Kind     Kind
	Tag      string // source element, empty for generated content
	Text     string
	Image    *resource.ImageData
	Props    Properties
	Children []*Node
}

// New creates element of given kind.
func New(kind Kind, tag string) *Node {
	return &Node{Kind: kind, Tag: tag, Props: make(Properties)}
}

// NewText creates text leaf.
func NewText(text string) *Node {
	n := New(KindText, "")
	n.Text = text
	return n
}

// NewImage creates image leaf.
func NewImage(tag string, img *resource.ImageData) *Node {
	n := New(KindImage, tag)
	n.Image = img
	if img != nil {
		n.Props[PropSource] = img.Source
	}
	return n
}

// Get returns property value.
func (n *Node) Get(p Property) string {
	return n.Props[p]
}

// Set sets property value, empty value removes it.
func (n *Node) Set(p Property, v string) {
	if n.Props == nil {
		n.Props = make(Properties)
	}
	if v == "" {
		delete(n.Props, p)
		return
	}
	n.Props[p] = v
}

// Has reports whether property is set.
func (n *Node) Has(p Property) bool {
	_, ok := n.Props[p]
	return ok
}

// Accepts reports whether child can be added to element.
func (n *Node) Accepts(child *Node) bool {
	if child == nil || n.Kind.IsLeaf() {
		return false
	}
	switch n.Kind {
	case KindParagraph:
		return child.Kind.IsInline() || child.Kind == KindDiv && child.Get(PropDisplay) == "inline-block"
	case KindList:
		return child.Kind == KindListItem
	case KindTable:
		return child.Kind == KindCell
	}
	return child.Kind != KindCell && child.Kind != KindDocument
}

// Add appends child when element accepts it.
func (n *Node) Add(child *Node) bool {
	if !n.Accepts(child) {
		return false
	}
	n.Children = append(n.Children, child)
	return true
}

// Empty reports whether element has neither children nor text.
func (n *Node) Empty() bool {
	return len(n.Children) == 0 && n.Text == "" && n.Image == nil
}

// PlainText returns concatenated text of element subtree.
func (n *Node) PlainText() string {
	var sb strings.Builder
	n.walk(func(c *Node) bool {
		switch c.Kind {
		case KindText:
			sb.WriteString(c.Text)
		case KindNewline:
			sb.WriteByte('\n')
		}
		return true
	})
	return sb.String()
}

// Find returns elements of subtree (including n) satisfying predicate in
// document order.
func (n *Node) Find(pred func(*Node) bool) []*Node {
	var out []*Node
	n.walk(func(c *Node) bool {
		if pred(c) {
			out = append(out, c)
		}
		return true
	})
	return out
}

func (n *Node) walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn)
	}
}
