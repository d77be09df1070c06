package media

import (
	"fmt"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Media features.
const (
	FeatureWidth             = "width"
	FeatureHeight            = "height"
	FeatureDeviceWidth       = "device-width"
	FeatureDeviceHeight      = "device-height"
	FeatureAspectRatio       = "aspect-ratio"
	FeatureDeviceAspectRatio = "device-aspect-ratio"
	FeatureOrientation       = "orientation"
	FeatureResolution        = "resolution"
	FeatureColor             = "color"
	FeatureColorIndex        = "color-index"
	FeatureMonochrome        = "monochrome"
	FeatureScan              = "scan"
	FeatureGrid              = "grid"
)

const (
	prefixMin = "min-"
	prefixMax = "max-"
)

// ParseError reports malformed media query.
type ParseError struct {
	Query string
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed media query %q: %s", e.Query, e.Msg)
}

// Expression is a single parenthesized media feature test. Value is empty
// when feature is used as presence test.
type Expression struct {
	Feature string
	Value   string
	Min     bool
	Max     bool
}

func (e Expression) String() string {
	name := e.Feature
	switch {
	case e.Min:
		name = prefixMin + name
	case e.Max:
		name = prefixMax + name
	}
	if e.Value == "" {
		return "(" + name + ")"
	}
	return "(" + name + ": " + e.Value + ")"
}

// Query is one media query of a comma separated list. Empty Type means the
// query did not name a media type.
type Query struct {
	Type        string
	Expressions []Expression
	Only        bool
	Not         bool
}

func (q *Query) String() string {
	var parts []string
	switch {
	case q.Only:
		parts = append(parts, "only")
	case q.Not:
		parts = append(parts, "not")
	}
	if q.Type != "" {
		parts = append(parts, q.Type)
	}
	for i, e := range q.Expressions {
		if i > 0 || q.Type != "" {
			parts = append(parts, "and")
		}
		parts = append(parts, e.String())
	}
	return strings.Join(parts, " ")
}

type token struct {
	tt   css.TokenType
	data string
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

// ParseList parses comma separated list of media queries. Empty list is
// returned for empty input, which matches every device.
func ParseList(s string) ([]*Query, error) {
	tokens := tokenize(strings.ToLower(s))

	var (
		list  []*Query
		start int
		depth int
	)
	flush := func(end int) error {
		part := tokens[start:end]
		if isBlank(part) {
			if len(tokens) > 0 && !isBlank(tokens) {
				return &ParseError{Query: s, Msg: "empty query in list"}
			}
			return nil
		}
		q, err := parseQuery(part)
		if err != nil {
			return &ParseError{Query: s, Msg: err.Error()}
		}
		list = append(list, q)
		return nil
	}
	for i, t := range tokens {
		switch t.tt {
		case css.LeftParenthesisToken, css.FunctionToken:
			depth++
		case css.RightParenthesisToken:
			depth--
		case css.CommaToken:
			if depth == 0 {
				if err := flush(i); err != nil {
					return nil, err
				}
				start = i + 1
			}
		}
	}
	if err := flush(len(tokens)); err != nil {
		return nil, err
	}
	return list, nil
}

// Parse parses single media query.
func Parse(s string) (*Query, error) {
	q, err := parseQuery(tokenize(strings.ToLower(s)))
	if err != nil {
		return nil, &ParseError{Query: s, Msg: err.Error()}
	}
	return q, nil
}

func isBlank(tokens []token) bool {
	for _, t := range tokens {
		if t.tt != css.WhitespaceToken {
			return false
		}
	}
	return true
}

func parseQuery(tokens []token) (*Query, error) {
	var nonWS []token
	for _, t := range tokens {
		if t.tt != css.WhitespaceToken {
			nonWS = append(nonWS, t)
		}
	}
	tokens = nonWS

	q := &Query{}
	i := 0
	if i < len(tokens) && tokens[i].tt == css.IdentToken {
		switch tokens[i].data {
		case "only":
			q.Only = true
			i++
		case "not":
			q.Not = true
			i++
		}
	}
	if i < len(tokens) && tokens[i].tt == css.IdentToken && tokens[i].data != "and" {
		q.Type = tokens[i].data
		i++
	} else if q.Only || q.Not {
		return nil, fmt.Errorf("media type expected after 'only' or 'not'")
	}

	needAnd := q.Type != ""
	for i < len(tokens) {
		if needAnd {
			if tokens[i].tt != css.IdentToken || tokens[i].data != "and" {
				return nil, fmt.Errorf("expected 'and' while parsing media expression, got %q", tokens[i].data)
			}
			i++
			if i >= len(tokens) {
				return nil, fmt.Errorf("media expression expected after 'and'")
			}
		}
		expr, next, err := parseExpression(tokens, i)
		if err != nil {
			return nil, err
		}
		q.Expressions = append(q.Expressions, expr)
		i = next
		needAnd = true
	}
	return q, nil
}

func parseExpression(tokens []token, i int) (Expression, int, error) {
	if tokens[i].tt != css.LeftParenthesisToken {
		return Expression{}, i, fmt.Errorf("'(' expected, got %q", tokens[i].data)
	}
	i++
	if i >= len(tokens) || tokens[i].tt != css.IdentToken {
		return Expression{}, i, fmt.Errorf("media feature name expected")
	}

	var e Expression
	name := tokens[i].data
	switch {
	case strings.HasPrefix(name, prefixMin):
		e.Min, name = true, strings.TrimPrefix(name, prefixMin)
	case strings.HasPrefix(name, prefixMax):
		e.Max, name = true, strings.TrimPrefix(name, prefixMax)
	}
	e.Feature = name
	i++

	if i < len(tokens) && tokens[i].tt == css.ColonToken {
		i++
		var sb strings.Builder
		for i < len(tokens) && tokens[i].tt != css.RightParenthesisToken {
			sb.WriteString(tokens[i].data)
			i++
		}
		e.Value = sb.String()
		if e.Value == "" {
			return Expression{}, i, fmt.Errorf("value expected for media feature %q", name)
		}
	}
	if i >= len(tokens) || tokens[i].tt != css.RightParenthesisToken {
		return Expression{}, i, fmt.Errorf("')' expected after media feature %q", name)
	}
	return e, i + 1, nil
}

// Matches evaluates query against device.
func (q *Query) Matches(dev DeviceDescription) bool {
	result := q.Type == "" || q.Type == TypeAll || q.Type == dev.Type
	for _, e := range q.Expressions {
		if !result {
			break
		}
		result = e.Matches(dev)
	}
	if q.Not {
		result = !result
	}
	return result
}

// MatchesAny evaluates query list, empty list matches every device.
func MatchesAny(list []*Query, dev DeviceDescription) bool {
	if len(list) == 0 {
		return true
	}
	for _, q := range list {
		if q.Matches(dev) {
			return true
		}
	}
	return false
}

// Matches evaluates single expression against device. Unknown features and
// values which could not be parsed never match.
func (e Expression) Matches(dev DeviceDescription) bool {
	switch e.Feature {
	case FeatureColor:
		return e.compareInt(dev.Color)
	case FeatureColorIndex:
		return e.compareInt(dev.ColorIndex)
	case FeatureMonochrome:
		return e.compareInt(dev.Monochrome)
	case FeatureWidth, FeatureDeviceWidth:
		return e.compareLength(dev.Width)
	case FeatureHeight, FeatureDeviceHeight:
		return e.compareLength(dev.Height)
	case FeatureAspectRatio, FeatureDeviceAspectRatio:
		return e.compareRatio(dev.Width, dev.Height)
	case FeatureResolution:
		return e.compareResolution(dev.Resolution)
	case FeatureOrientation:
		if e.Min || e.Max {
			return false
		}
		if e.Value == "" {
			return dev.Orientation != ""
		}
		return e.Value == dev.Orientation
	case FeatureScan:
		if e.Min || e.Max {
			return false
		}
		if e.Value == "" {
			return dev.Scan != ""
		}
		return e.Value == dev.Scan
	case FeatureGrid:
		if e.Min || e.Max {
			return false
		}
		switch e.Value {
		case "":
			return dev.Grid
		case "1":
			return dev.Grid
		case "0":
			return !dev.Grid
		}
		return false
	}
	return false
}

func (e Expression) compareInt(actual int) bool {
	if e.Value == "" {
		if e.Min || e.Max {
			return false
		}
		return actual != 0
	}
	v, err := strconv.Atoi(e.Value)
	if err != nil {
		return false
	}
	switch {
	case e.Min:
		return actual >= v
	case e.Max:
		return actual <= v
	}
	return actual == v
}

// compareLength without prefix only checks that device has the dimension at
// all, the value is not compared.
func (e Expression) compareLength(actual float64) bool {
	if !e.Min && !e.Max {
		return actual > 0
	}
	v, ok := parseLength(e.Value)
	if !ok {
		return false
	}
	if e.Min {
		return actual >= v
	}
	return actual <= v
}

func (e Expression) compareRatio(width, height float64) bool {
	if e.Value == "" {
		return !e.Min && !e.Max && width > 0 && height > 0
	}
	num, den, ok := parseRatio(e.Value)
	if !ok {
		return false
	}
	// width/height vs num/den without division
	l, r := width*den, num*height
	switch {
	case e.Min:
		return l >= r
	case e.Max:
		return l <= r
	}
	return l == r
}

func (e Expression) compareResolution(actual float64) bool {
	if e.Value == "" {
		return !e.Min && !e.Max && actual > 0
	}
	v, ok := parseResolution(e.Value)
	if !ok {
		return false
	}
	switch {
	case e.Min:
		return actual >= v
	case e.Max:
		return actual <= v
	}
	return actual == v
}

func splitNumber(s string) (float64, string, bool) {
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.' || (end == 0 && (s[end] == '-' || s[end] == '+'))) {
		end++
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, "", false
	}
	return v, s[end:], true
}

// parseLength converts absolute length to CSS pixels.
func parseLength(s string) (float64, bool) {
	v, unit, ok := splitNumber(strings.TrimSpace(s))
	if !ok {
		return 0, false
	}
	switch unit {
	case "px", "":
		return v, true
	case "pt":
		return v * 96 / 72, true
	case "pc":
		return v * 16, true
	case "in":
		return v * 96, true
	case "cm":
		return v * 96 / 2.54, true
	case "mm":
		return v * 96 / 25.4, true
	case "q":
		return v * 96 / 101.6, true
	case "em", "rem":
		return v * 16, true
	}
	return 0, false
}

// parseResolution converts resolution to dots per inch.
func parseResolution(s string) (float64, bool) {
	v, unit, ok := splitNumber(strings.TrimSpace(s))
	if !ok {
		return 0, false
	}
	switch unit {
	case "dpi":
		return v, true
	case "dpcm":
		return v * 2.54, true
	case "dppx", "x":
		return v * 96, true
	}
	return 0, false
}

func parseRatio(s string) (float64, float64, bool) {
	a, b, found := strings.Cut(s, "/")
	if !found {
		return 0, 0, false
	}
	num, err1 := strconv.ParseFloat(strings.TrimSpace(a), 64)
	den, err2 := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err1 != nil || err2 != nil || num <= 0 || den <= 0 {
		return 0, 0, false
	}
	return num, den, true
}
