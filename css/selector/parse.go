package selector

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// SyntaxError reports malformed selector.
type SyntaxError struct {
	Selector string
	Pos      int
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("malformed selector %q at token %d: %s", e.Selector, e.Pos, e.Msg)
}

// pseudo elements allowed with legacy single colon syntax
var legacyPseudoElements = map[string]bool{
	"before": true, "after": true, "first-line": true, "first-letter": true,
}

type token struct {
	tt   css.TokenType
	data string
}

type parser struct {
	src    string
	tokens []token
	pos    int
}

func tokenize(s string) []token {
	l := css.NewLexer(parse.NewInputString(s))
	var out []token
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			return out
		}
		if tt == css.CommentToken {
			continue
		}
		out = append(out, token{tt: tt, data: string(data)})
	}
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Selector: p.src, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) skipWS() bool {
	skipped := false
	for p.pos < len(p.tokens) && p.tokens[p.pos].tt == css.WhitespaceToken {
		p.pos++
		skipped = true
	}
	return skipped
}

// Parse parses single complex selector.
func Parse(s string) (*Selector, error) {
	list, err := ParseGroup(s)
	if err != nil {
		return nil, err
	}
	if len(list) != 1 {
		return nil, &SyntaxError{Selector: s, Msg: "single selector expected"}
	}
	return list[0], nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) *Selector {
	sel, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return sel
}

// ParseGroup parses comma separated selector list.
func ParseGroup(s string) ([]*Selector, error) {
	p := &parser{src: s, tokens: tokenize(s)}
	return p.parseGroup()
}

func (p *parser) parseGroup() ([]*Selector, error) {
	var list []*Selector
	for {
		p.skipWS()
		sel, err := p.parseComplex()
		if err != nil {
			return nil, err
		}
		list = append(list, sel)
		t, ok := p.peek()
		if !ok {
			return list, nil
		}
		if t.tt != css.CommaToken {
			return nil, p.errorf("unexpected %q", t.data)
		}
		p.pos++
	}
}

func (p *parser) parseComplex() (*Selector, error) {
	sel := &Selector{}
	comb := CombinatorNone
	for {
		c, err := p.parseCompound(sel)
		if err != nil {
			return nil, err
		}
		if c.empty() && sel.pseudoElement == "" {
			if t, ok := p.peek(); ok {
				return nil, p.errorf("unexpected %q", t.data)
			}
			return nil, p.errorf("selector expected")
		}
		c.combinator = comb
		sel.parts = append(sel.parts, c)

		sawWS := p.skipWS()
		t, ok := p.peek()
		if !ok || t.tt == css.CommaToken {
			break
		}
		if sel.pseudoElement != "" {
			return nil, p.errorf("pseudo element ::%s must be last", sel.pseudoElement)
		}
		switch {
		case t.tt == css.DelimToken && t.data == ">":
			comb = CombinatorChild
		case t.tt == css.DelimToken && t.data == "+":
			comb = CombinatorAdjacent
		case t.tt == css.DelimToken && t.data == "~":
			comb = CombinatorSibling
		case sawWS:
			comb = CombinatorDescendant
		default:
			return nil, p.errorf("unexpected %q", t.data)
		}
		if comb != CombinatorDescendant {
			p.pos++
			p.skipWS()
		}
	}
	sel.spec = sel.computeSpecificity()
	sel.text = sel.render()
	return sel, nil
}

func (p *parser) parseCompound(sel *Selector) (compound, error) {
	var c compound
	if t, ok := p.peek(); ok {
		switch {
		case t.tt == css.IdentToken:
			c.tag = strings.ToLower(t.data)
			p.pos++
		case t.tt == css.DelimToken && t.data == "*":
			c.tag = "*"
			p.pos++
		}
	}
	for {
		t, ok := p.peek()
		if !ok {
			return c, nil
		}
		switch {
		case t.tt == css.HashToken:
			c.ids = append(c.ids, t.data[1:])
			p.pos++
		case t.tt == css.DelimToken && t.data == ".":
			p.pos++
			n, ok := p.peek()
			if !ok || n.tt != css.IdentToken {
				return c, p.errorf("class name expected")
			}
			c.classes = append(c.classes, n.data)
			p.pos++
		case t.tt == css.LeftBracketToken:
			p.pos++
			a, err := p.parseAttribute()
			if err != nil {
				return c, err
			}
			c.attrs = append(c.attrs, a)
		case t.tt == css.ColonToken:
			if sel.pseudoElement != "" {
				return c, p.errorf("pseudo element ::%s must be last", sel.pseudoElement)
			}
			p.pos++
			if err := p.parsePseudo(sel, &c); err != nil {
				return c, err
			}
		default:
			return c, nil
		}
	}
}

func (p *parser) parseAttribute() (attribute, error) {
	var a attribute
	p.skipWS()
	t, ok := p.peek()
	if !ok || t.tt != css.IdentToken {
		return a, p.errorf("attribute name expected")
	}
	a.name = strings.ToLower(t.data)
	p.pos++
	p.skipWS()

	t, ok = p.peek()
	if !ok {
		return a, p.errorf("']' expected")
	}
	switch {
	case t.tt == css.RightBracketToken:
		p.pos++
		a.op = AttrExists
		return a, nil
	case t.tt == css.DelimToken && t.data == "=":
		a.op = AttrEquals
	case t.tt == css.IncludeMatchToken:
		a.op = AttrMatch
	case t.tt == css.DashMatchToken:
		a.op = AttrDash
	case t.tt == css.PrefixMatchToken:
		a.op = AttrPrefix
	case t.tt == css.SuffixMatchToken:
		a.op = AttrSuffix
	case t.tt == css.SubstringMatchToken:
		a.op = AttrSubstring
	default:
		return a, p.errorf("attribute operator expected, got %q", t.data)
	}
	p.pos++

	var value []token
	for {
		t, ok := p.peek()
		if !ok {
			return a, p.errorf("']' expected")
		}
		p.pos++
		if t.tt == css.RightBracketToken {
			break
		}
		value = append(value, t)
	}
	value = trimWS(value)
	// trailing case sensitivity flag, stylesheet grammar drops whitespace
	// inside brackets so string value may be followed by flag directly
	if n := len(value); n >= 2 && value[n-1].tt == css.IdentToken &&
		(value[n-2].tt == css.WhitespaceToken || value[n-2].tt == css.StringToken) {
		switch strings.ToLower(value[n-1].data) {
		case "i":
			a.fold = true
			value = trimWS(value[:n-1])
		case "s":
			value = trimWS(value[:n-1])
		}
	}
	if len(value) == 0 {
		return a, p.errorf("attribute value expected")
	}
	if len(value) == 1 && value[0].tt == css.StringToken {
		a.value = unquote(value[0].data)
	} else {
		var sb strings.Builder
		for _, v := range value {
			sb.WriteString(v.data)
		}
		a.value = sb.String()
	}

	if a.op == AttrMatch {
		expr := "^(?:" + a.value + ")$"
		if a.fold {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return a, p.errorf("bad attribute pattern %q: %v", a.value, err)
		}
		a.re = re
	}
	return a, nil
}

func (p *parser) parsePseudo(sel *Selector, c *compound) error {
	element := false
	if t, ok := p.peek(); ok && t.tt == css.ColonToken {
		element = true
		p.pos++
	}
	t, ok := p.peek()
	if !ok {
		return p.errorf("pseudo class name expected")
	}
	p.pos++

	switch t.tt {
	case css.IdentToken:
		name := strings.ToLower(t.data)
		if element || legacyPseudoElements[name] {
			sel.pseudoElement = name
			return nil
		}
		c.pseudos = append(c.pseudos, pseudoClass{name: name})
		return nil
	case css.FunctionToken:
		if element {
			return p.errorf("functional pseudo elements are not supported")
		}
		name := strings.ToLower(strings.TrimSuffix(t.data, "("))
		arg, err := p.functionArgument()
		if err != nil {
			return err
		}
		pc := pseudoClass{name: name, arg: arg}
		switch name {
		case "nth-child", "nth-last-child", "nth-of-type", "nth-last-of-type":
			a, b, err := parseNth(arg)
			if err != nil {
				return p.errorf("%s: %v", name, err)
			}
			pc.a, pc.b = a, b
		case "not":
			inner := &parser{src: arg, tokens: tokenize(arg)}
			list, err := inner.parseGroup()
			if err != nil {
				return err
			}
			for _, s := range list {
				if s.pseudoElement != "" {
					return p.errorf(":not() can not contain pseudo elements")
				}
			}
			pc.not = list
		case "lang", "contains":
			pc.arg = unquote(arg)
			if pc.arg == "" {
				return p.errorf(":%s() requires an argument", name)
			}
		}
		c.pseudos = append(c.pseudos, pc)
		return nil
	}
	return p.errorf("pseudo class name expected, got %q", t.data)
}

// functionArgument collects raw text up to matching closing parenthesis.
func (p *parser) functionArgument() (string, error) {
	var sb strings.Builder
	depth := 1
	for {
		t, ok := p.peek()
		if !ok {
			return "", p.errorf("')' expected")
		}
		p.pos++
		switch t.tt {
		case css.FunctionToken, css.LeftParenthesisToken:
			depth++
		case css.RightParenthesisToken:
			depth--
			if depth == 0 {
				return strings.TrimSpace(sb.String()), nil
			}
		}
		sb.WriteString(t.data)
	}
}

func trimWS(tokens []token) []token {
	for len(tokens) > 0 && tokens[0].tt == css.WhitespaceToken {
		tokens = tokens[1:]
	}
	for len(tokens) > 0 && tokens[len(tokens)-1].tt == css.WhitespaceToken {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// parseNth parses An+B microsyntax, "odd" and "even" included.
func parseNth(s string) (int, int, error) {
	s = strings.ToLower(strings.Join(strings.Fields(s), ""))
	switch s {
	case "":
		return 0, 0, fmt.Errorf("empty expression")
	case "odd":
		return 2, 1, nil
	case "even":
		return 2, 0, nil
	}

	n := strings.IndexByte(s, 'n')
	if n < 0 {
		b, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, fmt.Errorf("bad expression %q", s)
		}
		return 0, b, nil
	}

	var a int
	switch coef := s[:n]; coef {
	case "", "+":
		a = 1
	case "-":
		a = -1
	default:
		v, err := strconv.Atoi(coef)
		if err != nil {
			return 0, 0, fmt.Errorf("bad coefficient %q", coef)
		}
		a = v
	}

	rest := s[n+1:]
	if rest == "" {
		return a, 0, nil
	}
	if rest[0] != '+' && rest[0] != '-' {
		return 0, 0, fmt.Errorf("bad offset %q", rest)
	}
	b, err := strconv.Atoi(rest)
	if err != nil {
		return 0, 0, fmt.Errorf("bad offset %q", rest)
	}
	return a, b, nil
}
