package resolve

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"h2p/css"
	"h2p/dom"
)

// compute runs cascade for element and caches result. Parent styles are
// computed first since inheritance depends on them.
func (r *Resolver) compute(el *html.Node) css.Styles {
	var parent css.Styles
	if p := dom.ParentElement(el); p != nil {
		parent = r.Styles(p)
	}

	sets := make([]*css.RuleSet, 0, 8)
	if hints := presentationalHints(el); len(hints) > 0 {
		sets = append(sets, css.HintRuleSet(hints))
	}
	sets = append(sets, r.sheet.RuleSets(el, r.dev)...)
	if style, ok := dom.LookupAttr(el, "style"); ok && strings.TrimSpace(style) != "" {
		sets = append(sets, css.InlineRuleSet(r.parser.ParseInline(style)))
	}

	s := r.computeFrom(css.MergeDeclarations(sets), parent)
	if dom.IsRoot(el) {
		if fs, ok := css.ParseAbsoluteLength(s["font-size"], r.log); ok {
			r.rootFontSize = fs
		}
	}
	r.styles[el] = s
	return s
}

// computeFrom builds computed styles from cascaded declarations and parent
// styles (nil for root).
func (r *Resolver) computeFrom(decls []css.Declaration, parent css.Styles) css.Styles {
	s := make(css.Styles, len(decls)+len(parent))
	for p, v := range parent {
		if css.IsInherited(p) || strings.HasPrefix(p, "--") {
			s[p] = v
		}
	}

	for _, d := range decls {
		v := d.Expression
		switch v {
		case "inherit":
			if parent == nil {
				r.setInitial(s, d.Property)
				continue
			}
			v = parent.Get(d.Property)
		case "initial":
			r.setInitial(s, d.Property)
			continue
		case "unset", "revert":
			if css.IsInherited(d.Property) && parent != nil {
				v = parent.Get(d.Property)
			} else {
				r.setInitial(s, d.Property)
				continue
			}
		}
		s[d.Property] = v
	}

	parentFontSize := css.DefaultFontSize
	if parent != nil {
		if fs, ok := css.ParseAbsoluteLength(parent["font-size"], r.log); ok {
			parentFontSize = fs
		}
	}
	fontSize := r.resolveFontSize(s.Get("font-size"), parentFontSize)
	s["font-size"] = css.FormatPoints(fontSize)
	r.resolveLengths(s, fontSize)
	return s
}

func (r *Resolver) setInitial(s css.Styles, property string) {
	if v := css.InitialValue(property); v != "" {
		s[property] = v
		return
	}
	delete(s, property)
}

// font size keywords relative to medium
var fontSizeKeywords = map[string]float64{
	"xx-small": 3.0 / 5, "x-small": 3.0 / 4, "small": 8.0 / 9, "medium": 1,
	"large": 6.0 / 5, "x-large": 3.0 / 2, "xx-large": 2, "xxx-large": 3,
}

const fontSizeStep = 1.2

// resolveFontSize converts font-size value to points.
func (r *Resolver) resolveFontSize(value string, parent float64) float64 {
	if k, ok := fontSizeKeywords[value]; ok {
		return css.DefaultFontSize * k
	}
	switch value {
	case "larger":
		return parent * fontSizeStep
	case "smaller":
		return parent / fontSizeStep
	}
	if v, ok := css.ParseLengthOrPercent(value, parent, parent, r.rootFontSize, r.log); ok && v >= 0 {
		return v
	}
	r.log.Debug("Invalid font-size, inherited value used")
	return parent
}

// length valued properties computed to points
var lengthProperties = []string{
	"margin-top", "margin-right", "margin-bottom", "margin-left",
	"padding-top", "padding-right", "padding-bottom", "padding-left",
	"text-indent", "width", "height", "min-width", "min-height", "max-width", "max-height",
	"letter-spacing", "word-spacing", "top", "right", "bottom", "left",
	"column-gap", "row-gap", "column-width", "outline-width", "outline-offset",
	"border-top-left-radius", "border-top-right-radius", "border-bottom-right-radius", "border-bottom-left-radius",
}

// border widths of thin, medium and thick in points
var borderWidthKeywords = map[string]string{"thin": "0.75pt", "medium": "2.25pt", "thick": "3.75pt"}

// resolveLengths converts relative and absolute lengths to points, percentages
// and keywords stay as is.
func (r *Resolver) resolveLengths(s css.Styles, fontSize float64) {
	for _, p := range lengthProperties {
		if v, ok := s[p]; ok {
			s[p] = r.toPoints(p, v, fontSize)
		}
	}
	if lh, ok := s["line-height"]; ok && !css.IsNumber(lh) {
		s["line-height"] = r.toPoints("line-height", lh, fontSize)
	}
	for _, side := range []string{"top", "right", "bottom", "left"} {
		w := "border-" + side + "-width"
		switch s.Get("border-" + side + "-style") {
		case "none", "hidden":
			if _, ok := s[w]; ok {
				s[w] = "0pt"
			}
			continue
		}
		v, ok := s[w]
		if !ok {
			continue
		}
		if kw, ok := borderWidthKeywords[v]; ok {
			s[w] = kw
			continue
		}
		s[w] = r.toPoints(w, v, fontSize)
	}
}

// toPoints converts every dimension of the value. Dimensions with unknown
// units are reported and keep their number as points.
func (r *Resolver) toPoints(property, v string, fontSize float64) string {
	parts := css.SplitValues(v)
	changed := false
	for i, p := range parts {
		n, unit, ok := css.SplitDimension(p)
		if !ok || unit == "%" || (unit == "" && n != 0) {
			continue
		}
		log := r.log
		if !css.IsLength(p) {
			log = r.log.With(zap.String("property", property))
		}
		if pt, ok := css.ParseLength(p, fontSize, r.rootFontSize, log); ok {
			parts[i] = css.FormatPoints(pt)
			changed = true
		}
	}
	if !changed {
		return v
	}
	return strings.Join(parts, " ")
}
