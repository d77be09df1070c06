package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"

	"h2p/css/media"
	"h2p/css/selector"
)

// Parser parses CSS style sheets and style attributes.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a StyleSheet. The optional source parameter
// identifies what's being parsed (for debug logging). Malformed selectors and
// media queries are reported as errors, everything else the grammar can
// recover from is skipped.
func (p *Parser) Parse(data []byte, source ...string) (*StyleSheet, error) {
	src := ""
	if len(source) > 0 {
		src = source[0]
	}
	if src != "" {
		p.log.Debug("Parsing CSS", zap.String("source", src), zap.Int("bytes", len(data)))
	}

	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	statements, err := p.parseStatements(parser, false)
	if err != nil {
		if src != "" {
			return nil, fmt.Errorf("unable to parse css from '%s': %w", src, err)
		}
		return nil, fmt.Errorf("unable to parse css: %w", err)
	}
	return &StyleSheet{Statements: statements}, nil
}

// ParseString is Parse for in-memory text.
func (p *Parser) ParseString(text string, source ...string) (*StyleSheet, error) {
	return p.Parse([]byte(text), source...)
}

// ParseInline parses content of style attribute.
func (p *Parser) ParseInline(style string) []Declaration {
	parser := css.NewParser(parse.NewInputString(style), true)
	var out []Declaration
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				p.log.Debug("Inline style parse error", zap.String("style", style), zap.Error(err))
			}
			return out
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			if d, ok := p.declaration(gt, data, parser.Values()); ok {
				out = append(out, d)
			}
		}
	}
}

// parseStatements reads statements until end of input, or until end of
// enclosing at-rule block when nested is set.
func (p *Parser) parseStatements(parser *css.Parser, nested bool) ([]Statement, error) {
	var (
		statements []Statement
		qualified  strings.Builder
	)
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				p.log.Debug("CSS parse error", zap.Error(err))
			}
			return statements, nil

		case css.EndAtRuleGrammar:
			if nested {
				return statements, nil
			}

		case css.QualifiedRuleGrammar:
			// selector group continues in the next grammar item
			qualified.WriteString(tokensText(data, parser.Values()))
			qualified.WriteByte(',')

		case css.BeginRulesetGrammar:
			text := qualified.String() + tokensText(data, parser.Values())
			qualified.Reset()
			sets, err := p.parseRuleSet(parser, text)
			if err != nil {
				return nil, err
			}
			for _, rs := range sets {
				statements = append(statements, rs)
			}

		case css.BeginAtRuleGrammar:
			st, err := p.parseBlockAtRule(parser, strings.ToLower(string(data)), parser.Values())
			if err != nil {
				return nil, err
			}
			if st != nil {
				statements = append(statements, st)
			}

		case css.AtRuleGrammar:
			switch name := strings.ToLower(string(data)); name {
			case "@import":
				ir, err := p.parseImport(parser.Values())
				if err != nil {
					return nil, err
				}
				if ir != nil {
					statements = append(statements, ir)
				}
			case "@charset", "@namespace":
			default:
				p.log.Debug("Skipping @-rule", zap.String("rule", name))
			}
		}
	}
}

func (p *Parser) parseBlockAtRule(parser *css.Parser, name string, prelude []css.Token) (Statement, error) {
	switch name {
	case "@media":
		text := strings.TrimSpace(tokensText(nil, prelude))
		queries, err := media.ParseList(text)
		if err != nil {
			return nil, err
		}
		statements, err := p.parseStatements(parser, true)
		if err != nil {
			return nil, err
		}
		p.log.Debug("Parsed @media block", zap.String("query", text), zap.Int("statements", len(statements)))
		return &MediaRule{Queries: queries, Statements: statements}, nil

	case "@page":
		pr := &PageRule{Selector: strings.TrimSpace(tokensText(nil, prelude))}
		pr.Declarations, pr.MarginBoxes = p.parseDeclarationBlock(parser, true)
		return pr, nil

	case "@font-face":
		fr := &FontFaceRule{}
		fr.Declarations, _ = p.parseDeclarationBlock(parser, false)
		return fr, nil
	}
	p.skipAtRuleBlock(parser)
	p.log.Debug("Skipping @-rule", zap.String("rule", name))
	return nil, nil
}

func (p *Parser) parseRuleSet(parser *css.Parser, text string) ([]*RuleSet, error) {
	selectors, err := selector.ParseGroup(strings.TrimSpace(text))
	if err != nil {
		return nil, err
	}

	var normal, important []Declaration
	for {
		gt, _, data := parser.Next()
		if gt == css.ErrorGrammar || gt == css.EndRulesetGrammar {
			break
		}
		if gt != css.DeclarationGrammar && gt != css.CustomPropertyGrammar {
			continue
		}
		d, ok := p.declaration(gt, data, parser.Values())
		if !ok {
			continue
		}
		if d.Important {
			important = append(important, d)
		} else {
			normal = append(normal, d)
		}
	}

	sets := make([]*RuleSet, 0, len(selectors))
	for _, sel := range selectors {
		sets = append(sets, &RuleSet{Selector: sel, Normal: normal, Important: important})
	}
	return sets, nil
}

// parseDeclarationBlock reads declarations up to the end of block, nested
// blocks are margin boxes when allowed and skipped otherwise. Margin boxes may
// come as at-rules or as rule sets, so either terminator closes a block.
func (p *Parser) parseDeclarationBlock(parser *css.Parser, boxes bool) ([]Declaration, []MarginBox) {
	var (
		decls   []Declaration
		margins []MarginBox
	)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar, css.EndRulesetGrammar:
			return decls, margins
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			if d, ok := p.declaration(gt, data, parser.Values()); ok {
				decls = append(decls, d)
			}
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			if !boxes {
				p.skipAtRuleBlock(parser)
				continue
			}
			name := strings.TrimPrefix(strings.ToLower(string(data)), "@")
			margins = append(margins, MarginBox{Name: name, Declarations: p.parseMarginBox(parser)})
		}
	}
}

// parseMarginBox reads body of a margin box. The grammar does not know these
// at-rules and hands their content over as raw tokens.
func (p *Parser) parseMarginBox(parser *css.Parser) []Declaration {
	var (
		decls []Declaration
		raw   strings.Builder
		depth int
	)
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return append(decls, p.ParseInline(raw.String())...)
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			if depth == 0 {
				return append(decls, p.ParseInline(raw.String())...)
			}
			depth--
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			if depth == 0 {
				if d, ok := p.declaration(gt, data, parser.Values()); ok {
					decls = append(decls, d)
				}
			}
		case css.TokenGrammar:
			if depth == 0 {
				raw.Write(data)
			}
		}
	}
}

// declaration builds Declaration from grammar item. Trailing "!important" is
// detected and stripped, value is normalized except for custom properties.
func (p *Parser) declaration(gt css.GrammarType, name []byte, values []css.Token) (Declaration, bool) {
	values = trimWhitespace(values)
	if len(values) == 0 {
		return Declaration{}, false
	}

	d := Declaration{Property: strings.ToLower(string(name))}
	if n := len(values); n >= 2 && values[n-1].TokenType == css.IdentToken && strings.EqualFold(string(values[n-1].Data), "important") {
		rest := trimWhitespace(values[:n-1])
		if k := len(rest); k > 0 && rest[k-1].TokenType == css.DelimToken && string(rest[k-1].Data) == "!" {
			d.Important = true
			values = trimWhitespace(rest[:k-1])
		}
	}
	if len(values) == 0 {
		return Declaration{}, false
	}

	if gt == css.CustomPropertyGrammar {
		d.Property = string(name)
		d.Expression = strings.TrimSpace(tokensText(nil, values))
		return d, true
	}
	d.Expression = NormalizeValue(tokensText(nil, values))
	return d, d.Expression != ""
}

func (p *Parser) parseImport(values []css.Token) (*ImportRule, error) {
	values = trimWhitespace(values)
	if len(values) == 0 {
		return nil, nil
	}
	var url string
	switch t := values[0]; t.TokenType {
	case css.StringToken:
		url = Unquote(string(t.Data))
	case css.URLToken:
		url, _ = URLArgument(string(t.Data))
	case css.FunctionToken:
		// url( "x" ) given as function with string argument
		for _, v := range values[1:] {
			if v.TokenType == css.StringToken {
				url = Unquote(string(v.Data))
				break
			}
		}
		for i, v := range values {
			if v.TokenType == css.RightParenthesisToken {
				values = values[i:]
				break
			}
		}
	}
	if url == "" {
		p.log.Debug("Skipping @import without url")
		return nil, nil
	}
	queries, err := media.ParseList(strings.TrimSpace(tokensText(nil, values[1:])))
	if err != nil {
		return nil, err
	}
	p.log.Debug("Parsed @import", zap.String("url", url))
	return &ImportRule{URL: url, Queries: queries}, nil
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

func tokensText(data []byte, values []css.Token) string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		if v.TokenType == css.CommentToken {
			continue
		}
		sb.Write(v.Data)
	}
	return sb.String()
}

func trimWhitespace(values []css.Token) []css.Token {
	for len(values) > 0 && values[0].TokenType == css.WhitespaceToken {
		values = values[1:]
	}
	for len(values) > 0 && values[len(values)-1].TokenType == css.WhitespaceToken {
		values = values[:len(values)-1]
	}
	return values
}
