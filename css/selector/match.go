package selector

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/language"

	"h2p/dom"
)

// Matches reports whether element matches selector. Selectors ending with
// pseudo element never match element itself, see MatchesPseudo.
func (s *Selector) Matches(n *html.Node) bool {
	if s.pseudoElement != "" {
		return false
	}
	return s.matchFrom(n, len(s.parts)-1)
}

// MatchesPseudo reports whether selector targets named pseudo element of n.
func (s *Selector) MatchesPseudo(n *html.Node, pseudo string) bool {
	if s.pseudoElement == "" || s.pseudoElement != pseudo {
		return false
	}
	return s.matchFrom(n, len(s.parts)-1)
}

func (s *Selector) matchFrom(n *html.Node, i int) bool {
	if !dom.IsElement(n) || !s.parts[i].matches(n) {
		return false
	}
	if i == 0 {
		return true
	}
	switch s.parts[i].combinator {
	case CombinatorChild:
		p := dom.ParentElement(n)
		return p != nil && s.matchFrom(p, i-1)
	case CombinatorDescendant:
		for p := dom.ParentElement(n); p != nil; p = dom.ParentElement(p) {
			if s.matchFrom(p, i-1) {
				return true
			}
		}
	case CombinatorAdjacent:
		p := dom.PrevElementSibling(n)
		return p != nil && s.matchFrom(p, i-1)
	case CombinatorSibling:
		for p := dom.PrevElementSibling(n); p != nil; p = dom.PrevElementSibling(p) {
			if s.matchFrom(p, i-1) {
				return true
			}
		}
	}
	return false
}

func (c *compound) matches(n *html.Node) bool {
	if c.tag != "" && c.tag != "*" && c.tag != dom.Tag(n) {
		return false
	}
	for _, id := range c.ids {
		if dom.ID(n) != id {
			return false
		}
	}
	for _, cl := range c.classes {
		if !dom.HasClass(n, cl) {
			return false
		}
	}
	for i := range c.attrs {
		if !c.attrs[i].matches(n) {
			return false
		}
	}
	for i := range c.pseudos {
		if !c.pseudos[i].matches(n) {
			return false
		}
	}
	return true
}

func (a *attribute) matches(n *html.Node) bool {
	v, ok := dom.LookupAttr(n, a.name)
	if !ok {
		return false
	}
	if a.op == AttrExists {
		return true
	}
	if a.op == AttrMatch {
		if a.re.MatchString(v) {
			return true
		}
		for _, w := range strings.Fields(v) {
			if a.re.MatchString(w) {
				return true
			}
		}
		return false
	}

	want := a.value
	if a.fold {
		v, want = strings.ToLower(v), strings.ToLower(want)
	}
	switch a.op {
	case AttrEquals:
		return v == want
	case AttrPrefix:
		return want != "" && strings.HasPrefix(v, want)
	case AttrSuffix:
		return want != "" && strings.HasSuffix(v, want)
	case AttrSubstring:
		return want != "" && strings.Contains(v, want)
	case AttrDash:
		return v == want || strings.HasPrefix(v, want+"-")
	}
	return false
}

func (p *pseudoClass) matches(n *html.Node) bool {
	switch p.name {
	case "root":
		return dom.IsRoot(n)
	case "empty":
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode || (c.Type == html.TextNode && c.Data != "") {
				return false
			}
		}
		return true
	case "first-child":
		return dom.PrevElementSibling(n) == nil
	case "last-child":
		return dom.NextElementSibling(n) == nil
	case "only-child":
		return dom.PrevElementSibling(n) == nil && dom.NextElementSibling(n) == nil
	case "first-of-type":
		return position(n, false, true) == 1
	case "last-of-type":
		return position(n, true, true) == 1
	case "only-of-type":
		return position(n, false, true) == 1 && position(n, true, true) == 1
	case "nth-child":
		return matchNth(p.a, p.b, position(n, false, false))
	case "nth-last-child":
		return matchNth(p.a, p.b, position(n, true, false))
	case "nth-of-type":
		return matchNth(p.a, p.b, position(n, false, true))
	case "nth-last-of-type":
		return matchNth(p.a, p.b, position(n, true, true))
	case "not":
		for _, s := range p.not {
			if s.Matches(n) {
				return false
			}
		}
		return true
	case "lang":
		return matchLang(dom.Lang(n), p.arg)
	case "contains":
		return strings.Contains(strings.ToLower(dom.Text(n)), strings.ToLower(p.arg))
	case "link", "any-link":
		switch dom.Tag(n) {
		case "a", "area", "link":
			return dom.HasAttr(n, "href")
		}
		return false
	case "checked":
		return dom.HasAttr(n, "checked") || (dom.Tag(n) == "option" && dom.HasAttr(n, "selected"))
	case "disabled":
		return dom.HasAttr(n, "disabled")
	case "enabled":
		switch dom.Tag(n) {
		case "input", "button", "select", "textarea", "option":
			return !dom.HasAttr(n, "disabled")
		}
		return false
	case "required":
		return dom.HasAttr(n, "required")
	case "optional":
		switch dom.Tag(n) {
		case "input", "select", "textarea":
			return !dom.HasAttr(n, "required")
		}
		return false
	case "read-only":
		return dom.HasAttr(n, "readonly")
	}
	// dynamic (hover, focus, visited...) and unknown pseudo classes never
	// match a static document
	return false
}

// position returns 1 based index of element among its element siblings,
// counted from the end when fromEnd is set and among same tag siblings when
// ofType is set.
func position(n *html.Node, fromEnd, ofType bool) int {
	tag := dom.Tag(n)
	next := dom.PrevElementSibling
	if fromEnd {
		next = dom.NextElementSibling
	}
	pos := 1
	for s := next(n); s != nil; s = next(s) {
		if !ofType || dom.Tag(s) == tag {
			pos++
		}
	}
	return pos
}

// matchNth reports whether pos = a*k + b for some k >= 0.
func matchNth(a, b, pos int) bool {
	if a == 0 {
		return pos == b
	}
	diff := pos - b
	if diff%a != 0 {
		return false
	}
	return diff/a >= 0
}

// matchLang compares language ranges the way :lang() does, "en" matches
// "en", "en-US" and "en-GB" but not "eng".
func matchLang(have, want string) bool {
	if have == "" || want == "" {
		return false
	}
	if want == "*" {
		return true
	}
	h, err1 := language.Parse(have)
	w, err2 := language.Parse(want)
	if err1 == nil && err2 == nil {
		hs, ws := strings.ToLower(h.String()), strings.ToLower(w.String())
		return hs == ws || strings.HasPrefix(hs, ws+"-")
	}
	have, want = strings.ToLower(have), strings.ToLower(want)
	return have == want || strings.HasPrefix(have, want+"-")
}
