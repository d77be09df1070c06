package css

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"h2p/css/media"
	"h2p/css/selector"
)

// Declaration is a single property: value pair. Expression keeps the value
// text as it was normalized by the parser.
type Declaration struct {
	Property   string
	Expression string
	Important  bool
}

func (d Declaration) String() string {
	if d.Important {
		return d.Property + ": " + d.Expression + " !important"
	}
	return d.Property + ": " + d.Expression
}

// Statement is a top level or nested item of a style sheet.
type Statement interface {
	// RuleSets returns rule sets applicable to element on given device.
	RuleSets(el *html.Node, dev media.DeviceDescription) []*RuleSet
	// PseudoRuleSets returns rule sets applicable to pseudo element of el.
	PseudoRuleSets(el *html.Node, pseudo string, dev media.DeviceDescription) []*RuleSet
}

// RuleSet is a selector with its declarations split by importance. Rules with
// selector groups are split into one RuleSet per selector.
type RuleSet struct {
	Selector  *selector.Selector
	Normal    []Declaration
	Important []Declaration
	Origin    Origin
}

// Origin is the source of rule set. Rule sets of higher origin win over
// lower ones regardless of specificity, both for normal and important
// declarations.
type Origin int

const (
	OriginAuthor Origin = iota
	OriginUser
	OriginAgent
	// OriginHint marks presentational attributes of HTML elements.
	OriginHint
)

func (o Origin) rank() int {
	switch o {
	case OriginAgent:
		return 0
	case OriginUser:
		return 1
	case OriginHint:
		return 2
	}
	return 3
}

// InlineRuleSet wraps declarations of style attribute.
func InlineRuleSet(decls []Declaration) *RuleSet {
	rs := &RuleSet{}
	for _, d := range decls {
		if d.Important {
			rs.Important = append(rs.Important, d)
		} else {
			rs.Normal = append(rs.Normal, d)
		}
	}
	return rs
}

// HintRuleSet wraps declarations derived from presentational attributes.
func HintRuleSet(decls []Declaration) *RuleSet {
	return &RuleSet{Normal: decls, Origin: OriginHint}
}

// Specificity returns selector specificity, rule set without selector comes
// from style attribute.
func (rs *RuleSet) Specificity() selector.Specificity {
	if rs.Origin == OriginHint {
		return selector.Specificity{}
	}
	if rs.Selector == nil {
		return selector.InlineSpecificity
	}
	return rs.Selector.Specificity()
}

func (rs *RuleSet) RuleSets(el *html.Node, _ media.DeviceDescription) []*RuleSet {
	if rs.Selector != nil && rs.Selector.Matches(el) {
		return []*RuleSet{rs}
	}
	return nil
}

func (rs *RuleSet) PseudoRuleSets(el *html.Node, pseudo string, _ media.DeviceDescription) []*RuleSet {
	if rs.Selector != nil && rs.Selector.MatchesPseudo(el, pseudo) {
		return []*RuleSet{rs}
	}
	return nil
}

// MediaRule groups statements under @media query list.
type MediaRule struct {
	Queries    []*media.Query
	Statements []Statement
}

func (mr *MediaRule) RuleSets(el *html.Node, dev media.DeviceDescription) []*RuleSet {
	if !media.MatchesAny(mr.Queries, dev) {
		return nil
	}
	var out []*RuleSet
	for _, st := range mr.Statements {
		out = append(out, st.RuleSets(el, dev)...)
	}
	return out
}

func (mr *MediaRule) PseudoRuleSets(el *html.Node, pseudo string, dev media.DeviceDescription) []*RuleSet {
	if !media.MatchesAny(mr.Queries, dev) {
		return nil
	}
	var out []*RuleSet
	for _, st := range mr.Statements {
		out = append(out, st.PseudoRuleSets(el, pseudo, dev)...)
	}
	return out
}

// MarginBox is @top-left, @bottom-center and similar block of @page.
type MarginBox struct {
	Name         string
	Declarations []Declaration
}

// PageRule is @page rule. Selector holds page name and pseudo classes, for
// example ":first" or "cover:left".
type PageRule struct {
	Selector     string
	Declarations []Declaration
	MarginBoxes  []MarginBox
}

// Matches reports whether rule applies to page with given properties.
func (pr *PageRule) Matches(first, left bool) bool {
	for _, part := range strings.Split(pr.Selector, ":")[1:] {
		switch strings.TrimSpace(part) {
		case "first":
			if !first {
				return false
			}
		case "left":
			if !left {
				return false
			}
		case "right":
			if left {
				return false
			}
		case "blank":
			return false
		}
	}
	return true
}

func (*PageRule) RuleSets(*html.Node, media.DeviceDescription) []*RuleSet { return nil }

func (*PageRule) PseudoRuleSets(*html.Node, string, media.DeviceDescription) []*RuleSet {
	return nil
}

// FontFaceRule is @font-face rule.
type FontFaceRule struct {
	Declarations []Declaration
}

// Get returns value of descriptor.
func (fr *FontFaceRule) Get(name string) string {
	for i := len(fr.Declarations) - 1; i >= 0; i-- {
		if fr.Declarations[i].Property == name {
			return fr.Declarations[i].Expression
		}
	}
	return ""
}

func (*FontFaceRule) RuleSets(*html.Node, media.DeviceDescription) []*RuleSet { return nil }

func (*FontFaceRule) PseudoRuleSets(*html.Node, string, media.DeviceDescription) []*RuleSet {
	return nil
}

// ImportRule is @import, it is resolved by whoever loads style sheets.
type ImportRule struct {
	URL     string
	Queries []*media.Query
}

func (*ImportRule) RuleSets(*html.Node, media.DeviceDescription) []*RuleSet { return nil }

func (*ImportRule) PseudoRuleSets(*html.Node, string, media.DeviceDescription) []*RuleSet {
	return nil
}

// StyleSheet is ordered list of statements.
type StyleSheet struct {
	Statements []Statement
}

// Append adds statements of other style sheets after own ones.
func (s *StyleSheet) Append(others ...*StyleSheet) {
	for _, o := range others {
		if o != nil {
			s.Statements = append(s.Statements, o.Statements...)
		}
	}
}

// RuleSets collects rule sets applicable to element in source order.
func (s *StyleSheet) RuleSets(el *html.Node, dev media.DeviceDescription) []*RuleSet {
	var out []*RuleSet
	for _, st := range s.Statements {
		out = append(out, st.RuleSets(el, dev)...)
	}
	return out
}

// PseudoRuleSets collects rule sets applicable to pseudo element.
func (s *StyleSheet) PseudoRuleSets(el *html.Node, pseudo string, dev media.DeviceDescription) []*RuleSet {
	var out []*RuleSet
	for _, st := range s.Statements {
		out = append(out, st.PseudoRuleSets(el, pseudo, dev)...)
	}
	return out
}

// Imports returns @import rules in source order.
func (s *StyleSheet) Imports() []*ImportRule {
	var out []*ImportRule
	for _, st := range s.Statements {
		if ir, ok := st.(*ImportRule); ok {
			out = append(out, ir)
		}
	}
	return out
}

// PageRules returns @page rules, including ones nested into matching @media.
func (s *StyleSheet) PageRules(dev media.DeviceDescription) []*PageRule {
	var out []*PageRule
	walkStatements(s.Statements, dev, func(st Statement) {
		if pr, ok := st.(*PageRule); ok {
			out = append(out, pr)
		}
	})
	return out
}

// FontFaces returns @font-face rules, including ones nested into matching
// @media.
func (s *StyleSheet) FontFaces(dev media.DeviceDescription) []*FontFaceRule {
	var out []*FontFaceRule
	walkStatements(s.Statements, dev, func(st Statement) {
		if fr, ok := st.(*FontFaceRule); ok {
			out = append(out, fr)
		}
	})
	return out
}

func walkStatements(list []Statement, dev media.DeviceDescription, fn func(Statement)) {
	for _, st := range list {
		if mr, ok := st.(*MediaRule); ok {
			if media.MatchesAny(mr.Queries, dev) {
				walkStatements(mr.Statements, dev, fn)
			}
			continue
		}
		fn(st)
	}
}

// WriteTo writes the stylesheet to w in source order, implementing io.WriterTo.
func (s *StyleSheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, st := range s.Statements {
		n, err := writeStatement(w, st, "")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (s *StyleSheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

func writeStatement(w io.Writer, st Statement, indent string) (int, error) {
	switch st := st.(type) {
	case *RuleSet:
		return writeBlock(w, indent, st.Selector.String(), append(st.Normal[:len(st.Normal):len(st.Normal)], st.Important...))
	case *ImportRule:
		queries := make([]string, 0, len(st.Queries))
		for _, q := range st.Queries {
			queries = append(queries, q.String())
		}
		return fmt.Fprintf(w, "%s@import url(\"%s\") %s;\n", indent, st.URL, strings.Join(queries, ", "))
	case *FontFaceRule:
		return writeBlock(w, indent, "@font-face", st.Declarations)
	case *PageRule:
		total, err := fmt.Fprintf(w, "%s@page %s{\n", indent, strings.TrimSpace(st.Selector+" "))
		if err != nil {
			return total, err
		}
		n, err := writeDeclarations(w, indent+"  ", st.Declarations)
		total += n
		if err != nil {
			return total, err
		}
		for _, mb := range st.MarginBoxes {
			n, err = writeBlock(w, indent+"  ", "@"+mb.Name, mb.Declarations)
			total += n
			if err != nil {
				return total, err
			}
		}
		n, err = fmt.Fprintf(w, "%s}\n", indent)
		return total + n, err
	case *MediaRule:
		queries := make([]string, 0, len(st.Queries))
		for _, q := range st.Queries {
			queries = append(queries, q.String())
		}
		total, err := fmt.Fprintf(w, "%s@media %s {\n", indent, strings.Join(queries, ", "))
		if err != nil {
			return total, err
		}
		for _, inner := range st.Statements {
			n, err := writeStatement(w, inner, indent+"  ")
			total += n
			if err != nil {
				return total, err
			}
		}
		n, err := fmt.Fprintf(w, "%s}\n", indent)
		return total + n, err
	}
	return 0, nil
}

func writeBlock(w io.Writer, indent, prelude string, decls []Declaration) (int, error) {
	total, err := fmt.Fprintf(w, "%s%s {\n", indent, prelude)
	if err != nil {
		return total, err
	}
	n, err := writeDeclarations(w, indent+"  ", decls)
	total += n
	if err != nil {
		return total, err
	}
	n, err = fmt.Fprintf(w, "%s}\n", indent)
	return total + n, err
}

func writeDeclarations(w io.Writer, indent string, decls []Declaration) (int, error) {
	var total int
	for _, d := range decls {
		n, err := fmt.Fprintf(w, "%s%s;\n", indent, d)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
