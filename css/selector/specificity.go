package selector

import "fmt"

// Specificity orders competing declarations. Components are compared left to
// right: inline style attribute, ids, classes (attributes and pseudo-classes),
// types (and pseudo-elements).
type Specificity struct {
	Inline int
	ID     int
	Class  int
	Type   int
}

// InlineSpecificity is used for declarations from style attribute.
var InlineSpecificity = Specificity{Inline: 1}

// Compare returns -1, 0 or 1.
func (s Specificity) Compare(o Specificity) int {
	for _, d := range [...]int{s.Inline - o.Inline, s.ID - o.ID, s.Class - o.Class, s.Type - o.Type} {
		switch {
		case d < 0:
			return -1
		case d > 0:
			return 1
		}
	}
	return 0
}

// Less reports whether s is less specific than o.
func (s Specificity) Less(o Specificity) bool {
	return s.Compare(o) < 0
}

// Add sums component wise.
func (s Specificity) Add(o Specificity) Specificity {
	return Specificity{Inline: s.Inline + o.Inline, ID: s.ID + o.ID, Class: s.Class + o.Class, Type: s.Type + o.Type}
}

func (s Specificity) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", s.Inline, s.ID, s.Class, s.Type)
}
