// Package selector implements CSS selectors over golang.org/x/net/html
// trees: parsing, matching and specificity.
package selector

import (
	"fmt"
	"regexp"
	"strings"
)

// Combinator relates compound selector to the one on its left.
type Combinator int

const (
	CombinatorNone       Combinator = iota
	CombinatorDescendant            // whitespace
	CombinatorChild                 // >
	CombinatorAdjacent              // +
	CombinatorSibling               // ~
)

func (c Combinator) String() string {
	switch c {
	case CombinatorDescendant:
		return " "
	case CombinatorChild:
		return " > "
	case CombinatorAdjacent:
		return " + "
	case CombinatorSibling:
		return " ~ "
	}
	return ""
}

// AttrOp is attribute selector operator.
type AttrOp int

const (
	AttrExists    AttrOp = iota // [a]
	AttrEquals                  // [a=v]
	AttrPrefix                  // [a^=v]
	AttrSuffix                  // [a$=v]
	AttrSubstring               // [a*=v]
	AttrMatch                   // [a~=v], v is a regular expression
	AttrDash                    // [a|=v]
)

var attrOpText = map[AttrOp]string{
	AttrExists: "", AttrEquals: "=", AttrPrefix: "^=", AttrSuffix: "$=", AttrSubstring: "*=", AttrMatch: "~=", AttrDash: "|=",
}

type attribute struct {
	name  string
	op    AttrOp
	value string
	fold  bool
	re    *regexp.Regexp
}

// pseudoClass keeps parsed functional arguments next to the name.
type pseudoClass struct {
	name string
	arg  string
	a, b int
	not  []*Selector
}

type compound struct {
	combinator Combinator
	tag        string
	ids        []string
	classes    []string
	attrs      []attribute
	pseudos    []pseudoClass
}

func (c *compound) empty() bool {
	return c.tag == "" && len(c.ids) == 0 && len(c.classes) == 0 && len(c.attrs) == 0 && len(c.pseudos) == 0
}

// Selector is a parsed complex selector, possibly ending with pseudo element.
type Selector struct {
	text          string
	parts         []compound
	pseudoElement string
	spec          Specificity
}

// String returns normalized selector text.
func (s *Selector) String() string {
	return s.text
}

// PseudoElement returns pseudo element name (without colons) or empty string.
func (s *Selector) PseudoElement() string {
	return s.pseudoElement
}

// Specificity returns selector specificity.
func (s *Selector) Specificity() Specificity {
	return s.spec
}

func (s *Selector) render() string {
	var sb strings.Builder
	for i, c := range s.parts {
		if i > 0 {
			sb.WriteString(c.combinator.String())
		}
		if c.tag != "" {
			sb.WriteString(c.tag)
		}
		for _, id := range c.ids {
			sb.WriteString("#" + id)
		}
		for _, cl := range c.classes {
			sb.WriteString("." + cl)
		}
		for _, a := range c.attrs {
			if a.op == AttrExists {
				fmt.Fprintf(&sb, "[%s]", a.name)
				continue
			}
			fmt.Fprintf(&sb, "[%s%s%q", a.name, attrOpText[a.op], a.value)
			if a.fold {
				sb.WriteString(" i")
			}
			sb.WriteByte(']')
		}
		for _, p := range c.pseudos {
			sb.WriteString(":" + p.name)
			if p.arg != "" {
				sb.WriteString("(" + p.arg + ")")
			}
		}
	}
	if s.pseudoElement != "" {
		sb.WriteString("::" + s.pseudoElement)
	}
	return sb.String()
}

func (s *Selector) computeSpecificity() Specificity {
	var sp Specificity
	for _, c := range s.parts {
		sp.ID += len(c.ids)
		sp.Class += len(c.classes) + len(c.attrs)
		if c.tag != "" && c.tag != "*" {
			sp.Type++
		}
		for _, p := range c.pseudos {
			if p.name != "not" {
				sp.Class++
				continue
			}
			// :not() counts as its most specific argument
			var best Specificity
			for _, n := range p.not {
				if best.Less(n.spec) {
					best = n.spec
				}
			}
			sp = sp.Add(best)
		}
	}
	if s.pseudoElement != "" {
		sp.Type++
	}
	return sp
}
