package css

import (
	"strings"
	"unicode"
)

// NormalizeValue lower-cases property value and collapses white space.
// Quoted strings and url() arguments are kept verbatim since they may hold
// case sensitive paths or base64 payload, comments are dropped.
func NormalizeValue(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	rs := []rune(s)
	space := false
	emit := func(r rune) {
		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		sb.WriteRune(r)
	}

	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case r == '"' || r == '\'':
			end := closingQuote(rs, i)
			for j := i; j <= end && j < len(rs); j++ {
				emit(rs[j])
			}
			i = end
		case r == '/' && i+1 < len(rs) && rs[i+1] == '*':
			j := i + 2
			for j+1 < len(rs) && (rs[j] != '*' || rs[j+1] != '/') {
				j++
			}
			i = j + 1
			space = true
		case unicode.IsSpace(r):
			space = true
		case isURLStart(rs, i):
			for _, c := range "url(" {
				emit(c)
			}
			i += 3
			depth := 1
			for i++; i < len(rs); i++ {
				c := rs[i]
				if c == '"' || c == '\'' {
					end := closingQuote(rs, i)
					for j := i; j <= end && j < len(rs); j++ {
						sb.WriteRune(rs[j])
					}
					i = end
					continue
				}
				if c == '(' {
					depth++
				}
				if c == ')' {
					depth--
					if depth == 0 {
						sb.WriteRune(c)
						break
					}
				}
				sb.WriteRune(c)
			}
		default:
			emit(unicode.ToLower(r))
		}
	}
	return sb.String()
}

func closingQuote(rs []rune, start int) int {
	q := rs[start]
	for j := start + 1; j < len(rs); j++ {
		switch rs[j] {
		case '\\':
			j++
		case q:
			return j
		}
	}
	return len(rs) - 1
}

func isURLStart(rs []rune, i int) bool {
	if i+4 > len(rs) {
		return false
	}
	if !strings.EqualFold(string(rs[i:i+4]), "url(") {
		return false
	}
	// not a part of longer identifier
	return i == 0 || !(unicode.IsLetter(rs[i-1]) || rs[i-1] == '-' || unicode.IsDigit(rs[i-1]))
}

// SplitValues splits value at top level white space, parenthesized groups and
// quoted strings are kept whole.
func SplitValues(s string) []string {
	return split(s, func(r rune) bool { return unicode.IsSpace(r) }, false)
}

// SplitComma splits value at top level commas.
func SplitComma(s string) []string {
	return split(s, func(r rune) bool { return r == ',' }, true)
}

func split(s string, sep func(rune) bool, keepEmpty bool) []string {
	var (
		out   []string
		cur   strings.Builder
		depth int
		quote rune
	)
	flush := func() {
		v := strings.TrimSpace(cur.String())
		if v != "" || keepEmpty {
			out = append(out, v)
		}
		cur.Reset()
	}
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0 && sep(r):
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 || (keepEmpty && len(out) > 0) {
		flush()
	}
	return out
}

// Unquote removes surrounding quotes.
func Unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

// URLArgument returns argument of url() value.
func URLArgument(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 5 || !strings.EqualFold(s[:4], "url(") || s[len(s)-1] != ')' {
		return "", false
	}
	return Unquote(s[4 : len(s)-1]), true
}
