// Package layout defines element tree conversion produces. Tree is consumed by
// external layout engine which places it onto pages, here it can only be
// inspected or serialized.
package layout

import "fmt"

// Kind is type of layout element.
type Kind int

const (
	KindDocument Kind = iota
	KindDiv
	KindParagraph
	KindText
	KindImage
	KindList
	KindListItem
	KindTable
	KindCell
	KindLineSeparator
	KindNewline
	KindFormField
	KindAreaBreak
)

var kindNames = [...]string{
	KindDocument:      "document",
	KindDiv:           "div",
	KindParagraph:     "paragraph",
	KindText:          "text",
	KindImage:         "image",
	KindList:          "list",
	KindListItem:      "list-item",
	KindTable:         "table",
	KindCell:          "cell",
	KindLineSeparator: "line-separator",
	KindNewline:       "newline",
	KindFormField:     "form-field",
	KindAreaBreak:     "area-break",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is reverse of String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown layout element kind %q", s)
}

// IsLeaf reports whether elements of this kind never have children.
func (k Kind) IsLeaf() bool {
	switch k {
	case KindText, KindImage, KindLineSeparator, KindNewline, KindFormField, KindAreaBreak:
		return true
	}
	return false
}

// IsInline reports whether element of this kind is placed inside lines of
// a paragraph.
func (k Kind) IsInline() bool {
	switch k {
	case KindText, KindImage, KindNewline, KindFormField:
		return true
	}
	return false
}

// IsBlock reports whether element of this kind starts new block.
func (k Kind) IsBlock() bool {
	return !k.IsInline() && k != KindDocument
}
