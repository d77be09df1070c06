package resolve

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"h2p/css"
	"h2p/dom"
)

// presentationalHints maps legacy HTML attributes to declarations. They rank
// below any style sheet rule.
func presentationalHints(el *html.Node) []css.Declaration {
	var out []css.Declaration
	add := func(property, value string) {
		out = append(out, css.Declaration{Property: property, Expression: css.NormalizeValue(value)})
	}

	if v, ok := dom.LookupAttr(el, "align"); ok {
		switch el.DataAtom {
		case atom.Img, atom.Table:
			switch v := strings.ToLower(v); v {
			case "left", "right":
				add("float", v)
			case "center":
				add("margin-left", "auto")
				add("margin-right", "auto")
			}
		case atom.Caption:
		default:
			add("text-align", v)
		}
	}
	if v, ok := dom.LookupAttr(el, "valign"); ok {
		add("vertical-align", v)
	}
	if v, ok := dom.LookupAttr(el, "bgcolor"); ok {
		add("background-color", v)
	}
	if v, ok := dom.LookupAttr(el, "dir"); ok {
		add("direction", v)
	}

	switch el.DataAtom {
	case atom.Img, atom.Table, atom.Td, atom.Th, atom.Col, atom.Hr, atom.Input, atom.Svg:
		for _, dim := range []string{"width", "height"} {
			if v, ok := dom.LookupAttr(el, dim); ok {
				if l := htmlLength(v); l != "" {
					add(dim, l)
				}
			}
		}
	}

	switch el.DataAtom {
	case atom.Table, atom.Img:
		if v, ok := dom.LookupAttr(el, "border"); ok {
			w := htmlLength(v)
			if w == "" {
				w = "1px"
			}
			add("border", w+" solid")
		}
		if el.DataAtom == atom.Table {
			if v, ok := dom.LookupAttr(el, "cellspacing"); ok {
				if l := htmlLength(v); l != "" {
					add("border-spacing", l)
				}
			}
		}
	case atom.Td, atom.Th:
		if dom.HasAttr(el, "nowrap") {
			add("white-space", "nowrap")
		}
		if table := enclosingTable(el); table != nil {
			if v, ok := dom.LookupAttr(table, "cellpadding"); ok {
				if l := htmlLength(v); l != "" {
					add("padding", l)
				}
			}
			if v, ok := dom.LookupAttr(table, "border"); ok && v != "0" {
				add("border", "1px inset")
			}
		}
	case atom.Font:
		if v, ok := dom.LookupAttr(el, "color"); ok {
			add("color", v)
		}
		if v, ok := dom.LookupAttr(el, "face"); ok {
			add("font-family", v)
		}
		if v, ok := dom.LookupAttr(el, "size"); ok {
			if size := fontElementSize(v); size != "" {
				add("font-size", size)
			}
		}
	case atom.Body:
		if v, ok := dom.LookupAttr(el, "text"); ok {
			add("color", v)
		}
	case atom.Ol:
		if v, ok := dom.LookupAttr(el, "start"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				add("counter-reset", "list-item "+strconv.Itoa(n-1))
			}
		}
		if v, ok := dom.LookupAttr(el, "type"); ok {
			if t := listType(v); t != "" {
				add("list-style-type", t)
			}
		}
	case atom.Ul:
		if v, ok := dom.LookupAttr(el, "type"); ok {
			add("list-style-type", v)
		}
	case atom.Li:
		if v, ok := dom.LookupAttr(el, "value"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				add("counter-set", "list-item "+strconv.Itoa(n))
			}
		}
		if v, ok := dom.LookupAttr(el, "type"); ok {
			if t := listType(v); t != "" {
				add("list-style-type", t)
			}
		}
	}
	return out
}

// htmlLength converts attribute length: plain number is pixels, percentage
// stays.
func htmlLength(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if strings.HasSuffix(v, "%") {
		if _, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64); err == nil {
			return v
		}
		return ""
	}
	v = strings.TrimSuffix(v, "px")
	if _, err := strconv.ParseFloat(v, 64); err != nil {
		return ""
	}
	return v + "px"
}

func listType(v string) string {
	switch v {
	case "1":
		return "decimal"
	case "a":
		return "lower-alpha"
	case "A":
		return "upper-alpha"
	case "i":
		return "lower-roman"
	case "I":
		return "upper-roman"
	}
	return ""
}

var fontElementSizes = []string{"x-small", "small", "medium", "large", "x-large", "xx-large", "xxx-large"}

func fontElementSize(v string) string {
	v = strings.TrimSpace(v)
	n, err := strconv.Atoi(strings.TrimPrefix(v, "+"))
	if err != nil {
		return ""
	}
	if strings.HasPrefix(v, "+") || strings.HasPrefix(v, "-") {
		n += 3
	}
	n = min(max(n, 1), 7)
	return fontElementSizes[n-1]
}

func enclosingTable(el *html.Node) *html.Node {
	for p := dom.ParentElement(el); p != nil; p = dom.ParentElement(p) {
		if p.DataAtom == atom.Table {
			return p
		}
	}
	return nil
}
