package attach

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"h2p/css"
	"h2p/dom"
	"h2p/layout"
)

// preserved reports whether white-space value keeps spaces.
func preserved(ws string) bool {
	switch ws {
	case "pre", "pre-wrap", "break-spaces":
		return true
	}
	return false
}

func collapseSpaces(s string, keepNewlines bool) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		if r == '\n' && keepNewlines {
			sb.WriteRune(r)
			space = false
			continue
		}
		if unicode.IsSpace(r) && r != '\u00a0' {
			if !space {
				sb.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		sb.WriteRune(r)
	}
	if keepNewlines {
		// spaces around line feeds are removed
		lines := strings.Split(sb.String(), "\n")
		for i, l := range lines {
			if i > 0 {
				l = strings.TrimLeft(l, " ")
			}
			if i < len(lines)-1 {
				l = strings.TrimRight(l, " ")
			}
			lines[i] = l
		}
		return strings.Join(lines, "\n")
	}
	return sb.String()
}

func transformText(s, transform string, el *html.Node) string {
	switch transform {
	case "uppercase":
		return cases.Upper(textLanguage(el)).String(s)
	case "lowercase":
		return cases.Lower(textLanguage(el)).String(s)
	case "capitalize":
		return capitalize(s)
	}
	return s
}

// capitalize upper-cases first letter of every word leaving the rest intact.
func capitalize(s string) string {
	rs := []rune(s)
	start := true
	for i, r := range rs {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start {
				rs[i] = unicode.ToTitle(r)
			}
			start = false
			continue
		}
		start = unicode.IsSpace(r) || unicode.IsPunct(r) && r != '\''
	}
	return string(rs)
}

func textLanguage(el *html.Node) language.Tag {
	if el == nil {
		return language.Und
	}
	tag, err := language.Parse(dom.Lang(el))
	if err != nil {
		return language.Und
	}
	return tag
}

// textLeaves turns text of element into text elements honoring white-space
// and text-transform. Preserved line feeds become newline elements.
func textLeaves(text string, styles css.Styles, el *html.Node) []*layout.Node {
	ws := styles.Get("white-space")
	keep := preserved(ws)
	if !keep {
		text = collapseSpaces(text, ws == "pre-line")
	}
	if text == "" {
		return nil
	}
	text = transformText(text, styles.Get("text-transform"), el)

	var out []*layout.Node
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			out = append(out, layout.New(layout.KindNewline, ""))
		}
		if line == "" {
			continue
		}
		t := layout.NewText(line)
		if keep {
			t.Set(layout.PropWhiteSpace, ws)
		}
		out = append(out, t)
	}
	return out
}

// inlineBuffer keeps inline elements waiting to be wrapped into paragraph.
type inlineBuffer struct {
	pending []*layout.Node
}

func (b *inlineBuffer) add(nodes ...*layout.Node) {
	b.pending = append(b.pending, nodes...)
}

func (b *inlineBuffer) empty() bool {
	return len(b.pending) == 0
}

func collapsible(n *layout.Node) bool {
	return n.Kind == layout.KindText && !preserved(n.Get(layout.PropWhiteSpace))
}

// removable reports whether empty text can be dropped.
func removable(n *layout.Node) bool {
	return n.Text == "" && !n.Has(layout.PropDestination)
}

// take returns pending elements with collapsible white space removed at line
// start, line end and between adjacent texts. Nil is returned when only
// white space was pending.
func (b *inlineBuffer) take() []*layout.Node {
	pending := b.pending
	b.pending = nil

	out := make([]*layout.Node, 0, len(pending))
	lastSpace := true
	for _, n := range pending {
		switch {
		case collapsible(n):
			if lastSpace {
				n.Text = strings.TrimLeft(n.Text, " ")
			}
			if removable(n) {
				continue
			}
			if n.Text != "" {
				lastSpace = strings.HasSuffix(n.Text, " ")
			}
		case n.Kind == layout.KindNewline:
			lastSpace = true
		default:
			lastSpace = false
		}
		out = append(out, n)
	}
	for len(out) > 0 {
		last := out[len(out)-1]
		if !collapsible(last) {
			break
		}
		last.Text = strings.TrimRight(last.Text, " ")
		if !removable(last) {
			break
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
