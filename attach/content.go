package attach

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"h2p/css"
	"h2p/dom"
	"h2p/layout"
)

// unescape replaces CSS escapes in string value: backslash followed by up to
// six hex digits and optional space, or by any other character.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			sb.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(s) && j-i <= 6 && isHex(s[j]) {
			j++
		}
		if j == i+1 {
			// escaped line feed continues string
			if s[j] != '\n' {
				sb.WriteByte(s[j])
			}
			i = j
			continue
		}
		code, _ := strconv.ParseUint(s[i+1:j], 16, 32)
		r := rune(code)
		if r == 0 || !utf8.ValidRune(r) {
			r = utf8.RuneError
		}
		sb.WriteRune(r)
		if j < len(s) && s[j] == ' ' {
			j++
		}
		i = j - 1
	}
	return sb.String()
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func isString(v string) bool {
	return len(v) >= 2 && (v[0] == '"' || v[0] == '\'')
}

// function splits "name(args)" into name and comma separated arguments.
func function(v string) (string, []string, bool) {
	open := strings.IndexByte(v, '(')
	if open <= 0 || !strings.HasSuffix(v, ")") {
		return "", nil, false
	}
	args := css.SplitComma(v[open+1 : len(v)-1])
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}
	return strings.ToLower(v[:open]), args, true
}

func argument(args []string, i int, def string) string {
	if i < len(args) && args[i] != "" {
		return args[i]
	}
	return def
}

// quotes returns open and close quote of current nesting depth.
func quotes(styles css.Styles, depth int) (string, string) {
	var pairs []string
	for _, q := range css.SplitValues(styles.Get("quotes")) {
		if isString(q) {
			pairs = append(pairs, unescape(css.Unquote(q)))
		}
	}
	if len(pairs) < 2 {
		return "", ""
	}
	i := min(depth, len(pairs)/2-1) * 2
	return pairs[i], pairs[i+1]
}

// targetID extracts fragment identifier from target-counter() reference:
// attr(href) or url(#id).
func targetID(el *html.Node, ref string) string {
	var target string
	if u, ok := css.URLArgument(ref); ok {
		target = u
	} else if name, args, ok := function(ref); ok && name == "attr" && len(args) > 0 {
		target = dom.Attr(el, strings.ToLower(args[0]))
	} else if isString(ref) {
		target = css.Unquote(ref)
	}
	id, ok := strings.CutPrefix(strings.TrimSpace(target), "#")
	if !ok {
		return ""
	}
	return id
}

// generateContent produces elements for value of content property of
// pseudo element. Text items are merged into single text element.
func (c *ProcessorContext) generateContent(el *html.Node, value string, styles css.Styles) []*layout.Node {
	var (
		out  []*layout.Node
		text strings.Builder
	)
	flush := func() {
		if text.Len() > 0 {
			out = append(out, textLeaves(text.String(), styles, el)...)
			text.Reset()
		}
	}
	for _, item := range css.SplitValues(value) {
		if isString(item) {
			text.WriteString(unescape(css.Unquote(item)))
			continue
		}
		switch item {
		case "open-quote":
			open, _ := quotes(styles, c.quoteDepth)
			text.WriteString(open)
			c.quoteDepth++
			continue
		case "close-quote":
			if c.quoteDepth > 0 {
				c.quoteDepth--
			}
			_, closing := quotes(styles, c.quoteDepth)
			text.WriteString(closing)
			continue
		case "no-open-quote":
			c.quoteDepth++
			continue
		case "no-close-quote":
			if c.quoteDepth > 0 {
				c.quoteDepth--
			}
			continue
		}
		if src, ok := css.URLArgument(item); ok {
			if img := c.Resources.RetrieveImage(src); img != nil {
				flush()
				out = append(out, layout.NewImage("", img))
			}
			continue
		}
		name, args, ok := function(item)
		if !ok {
			c.log.Debug("Unsupported content item", zap.String("item", item))
			continue
		}
		switch name {
		case "attr":
			if len(args) > 0 {
				text.WriteString(dom.Attr(el, strings.ToLower(args[0])))
			}
		case "counter":
			if len(args) > 0 {
				text.WriteString(c.Counters.Resolve(args[0], argument(args, 1, "decimal")))
			}
		case "counters":
			if len(args) > 1 {
				text.WriteString(c.Counters.ResolveCounters(args[0], unescape(css.Unquote(args[1])), argument(args, 2, "decimal")))
			}
		case "target-counter":
			if len(args) > 1 {
				if id := targetID(el, args[0]); id != "" {
					v, _ := c.Counters.ResolveTarget(id, args[1], argument(args, 2, "decimal"))
					text.WriteString(v)
				}
			}
		case "target-counters":
			if len(args) > 2 {
				if id := targetID(el, args[0]); id != "" {
					v, _ := c.Counters.ResolveTargetCounters(id, args[1], unescape(css.Unquote(args[2])), argument(args, 3, "decimal"))
					text.WriteString(v)
				}
			}
		default:
			c.log.Debug("Unsupported content function", zap.String("function", name))
		}
	}
	flush()
	return out
}
