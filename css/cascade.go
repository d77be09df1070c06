package css

import (
	"cmp"
	"slices"

	"golang.org/x/net/html"

	"h2p/css/media"
)

// GetDeclarations returns declarations applicable to element in cascade
// order with shorthands expanded.
func (s *StyleSheet) GetDeclarations(el *html.Node, dev media.DeviceDescription) []Declaration {
	return MergeDeclarations(s.RuleSets(el, dev))
}

// GetPseudoDeclarations is GetDeclarations for pseudo element of el.
func (s *StyleSheet) GetPseudoDeclarations(el *html.Node, pseudo string, dev media.DeviceDescription) []Declaration {
	return MergeDeclarations(s.PseudoRuleSets(el, pseudo, dev))
}

// MergeDeclarations orders rule sets by origin and ascending specificity
// keeping source order of equally specific ones, then applies their normal
// declarations followed by important ones. Later value of a property
// replaces earlier one in place, so result keeps first appearance order.
func MergeDeclarations(sets []*RuleSet) []Declaration {
	sorted := slices.Clone(sets)
	slices.SortStableFunc(sorted, func(a, b *RuleSet) int {
		if c := cmp.Compare(a.Origin.rank(), b.Origin.rank()); c != 0 {
			return c
		}
		return a.Specificity().Compare(b.Specificity())
	})

	m := newDeclarationMap()
	for _, rs := range sorted {
		for _, d := range rs.Normal {
			m.put(d)
		}
	}
	for _, rs := range sorted {
		for _, d := range rs.Important {
			d.Important = true
			m.put(d)
		}
	}
	return m.list
}

type declarationMap struct {
	index map[string]int
	list  []Declaration
}

func newDeclarationMap() *declarationMap {
	return &declarationMap{index: make(map[string]int)}
}

func (m *declarationMap) put(d Declaration) {
	for _, l := range ExpandShorthand(d) {
		if i, ok := m.index[l.Property]; ok {
			m.list[i] = l
			continue
		}
		m.index[l.Property] = len(m.list)
		m.list = append(m.list, l)
	}
}

// SetOrigin marks all rule sets of style sheet, including nested ones, as
// coming from origin.
func (s *StyleSheet) SetOrigin(o Origin) {
	setOrigin(s.Statements, o)
}

func setOrigin(list []Statement, o Origin) {
	for _, st := range list {
		switch st := st.(type) {
		case *RuleSet:
			st.Origin = o
		case *MediaRule:
			setOrigin(st.Statements, o)
		}
	}
}
