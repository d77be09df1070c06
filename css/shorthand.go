package css

import (
	"strings"
)

// ShorthandResolver expands value of shorthand property into longhand
// declarations. Results may be shorthands themselves.
type ShorthandResolver interface {
	Resolve(value string) []Declaration
}

// ShorthandFunc adapts function to ShorthandResolver.
type ShorthandFunc func(value string) []Declaration

func (f ShorthandFunc) Resolve(value string) []Declaration {
	return f(value)
}

var sides = [4]string{"top", "right", "bottom", "left"}

// Shorthands maps shorthand property name to its resolver.
var Shorthands = map[string]ShorthandResolver{
	"margin":            boxResolver("margin-%s"),
	"padding":           boxResolver("padding-%s"),
	"border-width":      boxResolver("border-%s-width"),
	"border-style":      boxResolver("border-%s-style"),
	"border-color":      boxResolver("border-%s-color"),
	"border":            ShorthandFunc(resolveBorder),
	"border-top":        lineResolver("border-top"),
	"border-right":      lineResolver("border-right"),
	"border-bottom":     lineResolver("border-bottom"),
	"border-left":       lineResolver("border-left"),
	"outline":           lineResolver("outline"),
	"column-rule":       lineResolver("column-rule"),
	"border-radius":     ShorthandFunc(resolveBorderRadius),
	"background":        ShorthandFunc(resolveBackground),
	"font":              ShorthandFunc(resolveFont),
	"list-style":        ShorthandFunc(resolveListStyle),
	"columns":           ShorthandFunc(resolveColumns),
	"flex":              ShorthandFunc(resolveFlex),
	"flex-flow":         ShorthandFunc(resolveFlexFlow),
	"gap":               pairResolver("row-gap", "column-gap"),
	"grid-gap":          pairResolver("row-gap", "column-gap"),
	"place-items":       pairResolver("align-items", "justify-items"),
	"text-decoration":   ShorthandFunc(resolveTextDecoration),
	"page-break-before": ShorthandFunc(legacyBreak("break-before")),
	"page-break-after":  ShorthandFunc(legacyBreak("break-after")),
}

// LookupShorthand returns resolver registered for property.
func LookupShorthand(property string) (ShorthandResolver, bool) {
	r, ok := Shorthands[property]
	return r, ok
}

// ExpandShorthand expands declaration recursively, properties without
// resolver are returned unchanged. Importance is inherited by longhands.
func ExpandShorthand(d Declaration) []Declaration {
	r, ok := LookupShorthand(d.Property)
	if !ok {
		return []Declaration{d}
	}
	var out []Declaration
	for _, l := range r.Resolve(d.Expression) {
		l.Important = d.Important
		if l.Property == d.Property {
			out = append(out, l)
			continue
		}
		out = append(out, ExpandShorthand(l)...)
	}
	return out
}

func decl(property, value string) Declaration {
	return Declaration{Property: property, Expression: value}
}

// global keywords are applied to every longhand
func isGlobalKeyword(v string) bool {
	switch v {
	case "inherit", "initial", "unset", "revert":
		return true
	}
	return false
}

func all(value string, props ...string) []Declaration {
	out := make([]Declaration, 0, len(props))
	for _, p := range props {
		out = append(out, decl(p, value))
	}
	return out
}

func boxResolver(pattern string) ShorthandResolver {
	return ShorthandFunc(func(value string) []Declaration {
		names := make([]string, 4)
		for i, s := range sides {
			names[i] = strings.Replace(pattern, "%s", s, 1)
		}
		if isGlobalKeyword(value) {
			return all(value, names...)
		}
		v, ok := expandFour(SplitValues(value))
		if !ok {
			return nil
		}
		out := make([]Declaration, 4)
		for i := range v {
			out[i] = decl(names[i], v[i])
		}
		return out
	})
}

func pairResolver(first, second string) ShorthandResolver {
	return ShorthandFunc(func(value string) []Declaration {
		parts := SplitValues(value)
		switch len(parts) {
		case 1:
			return []Declaration{decl(first, parts[0]), decl(second, parts[0])}
		case 2:
			return []Declaration{decl(first, parts[0]), decl(second, parts[1])}
		}
		return nil
	})
}

func resolveBorder(value string) []Declaration {
	out := make([]Declaration, 0, 4)
	for _, s := range sides {
		out = append(out, decl("border-"+s, value))
	}
	return out
}

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "dotted": true, "dashed": true, "solid": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

func isBorderWidth(v string) bool {
	switch v {
	case "thin", "medium", "thick":
		return true
	}
	return IsLength(v)
}

// lineResolver handles "<width> || <style> || <color>" shorthands.
func lineResolver(prefix string) ShorthandResolver {
	return ShorthandFunc(func(value string) []Declaration {
		width, style, clr := prefix+"-width", prefix+"-style", prefix+"-color"
		if isGlobalKeyword(value) {
			return all(value, width, style, clr)
		}
		w, s, c := "medium", "none", "currentcolor"
		for _, p := range SplitValues(value) {
			switch {
			case borderStyles[p]:
				s = p
			case isBorderWidth(p):
				w = p
			case IsColor(p):
				c = p
			default:
				return nil
			}
		}
		return []Declaration{decl(width, w), decl(style, s), decl(clr, c)}
	})
}

var corners = [4]string{"top-left", "top-right", "bottom-right", "bottom-left"}

func expandFour(parts []string) ([4]string, bool) {
	switch len(parts) {
	case 1:
		return [4]string{parts[0], parts[0], parts[0], parts[0]}, true
	case 2:
		return [4]string{parts[0], parts[1], parts[0], parts[1]}, true
	case 3:
		return [4]string{parts[0], parts[1], parts[2], parts[1]}, true
	case 4:
		return [4]string{parts[0], parts[1], parts[2], parts[3]}, true
	}
	return [4]string{}, false
}

func resolveBorderRadius(value string) []Declaration {
	names := make([]string, 4)
	for i, c := range corners {
		names[i] = "border-" + c + "-radius"
	}
	if isGlobalKeyword(value) {
		return all(value, names...)
	}
	horizontal, vertical, _ := strings.Cut(value, "/")
	h, ok := expandFour(SplitValues(horizontal))
	if !ok {
		return nil
	}
	v := h
	if strings.TrimSpace(vertical) != "" {
		if v, ok = expandFour(SplitValues(vertical)); !ok {
			return nil
		}
	}
	out := make([]Declaration, 4)
	for i := range names {
		r := h[i]
		if v[i] != h[i] {
			r += " " + v[i]
		}
		out[i] = decl(names[i], r)
	}
	return out
}

var (
	backgroundRepeats     = map[string]bool{"repeat": true, "repeat-x": true, "repeat-y": true, "no-repeat": true, "space": true, "round": true}
	backgroundAttachments = map[string]bool{"scroll": true, "fixed": true, "local": true}
	backgroundBoxes       = map[string]bool{"border-box": true, "padding-box": true, "content-box": true}
	backgroundPositions   = map[string]bool{"left": true, "right": true, "top": true, "bottom": true, "center": true}
)

func resolveBackground(value string) []Declaration {
	props := []string{
		"background-color", "background-image", "background-position", "background-size",
		"background-repeat", "background-origin", "background-clip", "background-attachment",
	}
	if isGlobalKeyword(value) {
		return all(value, props...)
	}

	layers := SplitComma(value)
	values := make(map[string][]string, len(props))
	clr := "transparent"
	for li, layer := range layers {
		var (
			image, repeat, attachment = "none", "", ""
			position, size            []string
			boxes                     []string
			afterSlash                bool
		)
		for _, p := range splitSlash(SplitValues(layer)) {
			switch {
			case p == "/":
				afterSlash = true
			case afterSlash && (IsLength(p) || IsPercentage(p) || p == "auto" || p == "cover" || p == "contain"):
				size = append(size, p)
			case p == "none" || strings.HasPrefix(p, "url(") || strings.Contains(p, "gradient("):
				image = p
			case backgroundRepeats[p]:
				repeat = strings.TrimSpace(repeat + " " + p)
			case backgroundAttachments[p]:
				attachment = p
			case backgroundBoxes[p]:
				boxes = append(boxes, p)
			case backgroundPositions[p] || IsLength(p) || IsPercentage(p):
				afterSlash = false
				position = append(position, p)
			case li == len(layers)-1 && IsColor(p):
				clr = p
			default:
				return nil
			}
		}
		origin, clip := "padding-box", "border-box"
		switch len(boxes) {
		case 1:
			origin, clip = boxes[0], boxes[0]
		case 2:
			origin, clip = boxes[0], boxes[1]
		}
		pos := "0% 0%"
		if len(position) > 0 {
			pos = strings.Join(position, " ")
		}
		sz := "auto"
		if len(size) > 0 {
			sz = strings.Join(size, " ")
		}
		if repeat == "" {
			repeat = "repeat"
		}
		if attachment == "" {
			attachment = "scroll"
		}
		values["background-image"] = append(values["background-image"], image)
		values["background-position"] = append(values["background-position"], pos)
		values["background-size"] = append(values["background-size"], sz)
		values["background-repeat"] = append(values["background-repeat"], repeat)
		values["background-origin"] = append(values["background-origin"], origin)
		values["background-clip"] = append(values["background-clip"], clip)
		values["background-attachment"] = append(values["background-attachment"], attachment)
	}

	out := []Declaration{decl("background-color", clr)}
	for _, p := range props[1:] {
		out = append(out, decl(p, strings.Join(values[p], ", ")))
	}
	return out
}

// splitSlash makes "/" separate value outside of functions.
func splitSlash(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.Contains(p, "(") || !strings.Contains(p, "/") {
			out = append(out, p)
			continue
		}
		for i, s := range strings.Split(p, "/") {
			if i > 0 {
				out = append(out, "/")
			}
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

var (
	fontStyles   = map[string]bool{"italic": true, "oblique": true}
	fontVariants = map[string]bool{"small-caps": true}
	fontWeights  = map[string]bool{
		"bold": true, "bolder": true, "lighter": true,
		"100": true, "200": true, "300": true, "400": true, "500": true, "600": true, "700": true, "800": true, "900": true,
	}
	fontStretches = map[string]bool{
		"ultra-condensed": true, "extra-condensed": true, "condensed": true, "semi-condensed": true,
		"semi-expanded": true, "expanded": true, "extra-expanded": true, "ultra-expanded": true,
	}
	fontSizes = map[string]bool{
		"xx-small": true, "x-small": true, "small": true, "medium": true, "large": true,
		"x-large": true, "xx-large": true, "larger": true, "smaller": true,
	}
	systemFonts = map[string]bool{
		"caption": true, "icon": true, "menu": true, "message-box": true, "small-caption": true, "status-bar": true,
	}
)

func resolveFont(value string) []Declaration {
	props := []string{"font-style", "font-variant", "font-weight", "font-stretch", "font-size", "line-height", "font-family"}
	if isGlobalKeyword(value) {
		return all(value, props...)
	}
	if systemFonts[value] {
		// system fonts are not known, keep defaults
		return []Declaration{
			decl("font-style", "normal"), decl("font-variant", "normal"), decl("font-weight", "normal"),
			decl("font-stretch", "normal"), decl("font-size", "medium"), decl("line-height", "normal"),
		}
	}

	style, variant, weight, stretch, lineHeight := "normal", "normal", "normal", "normal", "normal"
	parts := SplitValues(value)
	i := 0
prefix:
	for ; i < len(parts); i++ {
		p := parts[i]
		switch {
		case p == "normal":
		case fontStyles[p]:
			style = p
		case fontVariants[p]:
			variant = p
		case fontWeights[p]:
			weight = p
		case fontStretches[p]:
			stretch = p
		default:
			break prefix
		}
	}
	if i >= len(parts) {
		return nil
	}
	sizePart := parts[i]
	i++
	if before, after, found := strings.Cut(sizePart, "/"); found {
		sizePart = before
		if after != "" {
			lineHeight = after
		} else if i < len(parts) {
			lineHeight = parts[i]
			i++
		}
	} else if i < len(parts) && strings.HasPrefix(parts[i], "/") {
		lineHeight = strings.TrimPrefix(parts[i], "/")
		i++
		if lineHeight == "" && i < len(parts) {
			lineHeight = parts[i]
			i++
		}
	}
	if !fontSizes[sizePart] && !IsLength(sizePart) && !IsPercentage(sizePart) {
		return nil
	}
	if i >= len(parts) {
		// family is required
		return nil
	}
	family := strings.Join(parts[i:], " ")
	return []Declaration{
		decl("font-style", style), decl("font-variant", variant), decl("font-weight", weight),
		decl("font-stretch", stretch), decl("font-size", sizePart), decl("line-height", lineHeight),
		decl("font-family", family),
	}
}

var listPositions = map[string]bool{"inside": true, "outside": true}

func resolveListStyle(value string) []Declaration {
	props := []string{"list-style-type", "list-style-position", "list-style-image"}
	if isGlobalKeyword(value) {
		return all(value, props...)
	}
	typ, position, image := "", "outside", ""
	nones := 0
	for _, p := range SplitValues(value) {
		switch {
		case p == "none":
			nones++
		case listPositions[p]:
			position = p
		case strings.HasPrefix(p, "url("):
			image = p
		default:
			typ = p
		}
	}
	// "none" goes to whichever of type and image is not given
	for ; nones > 0; nones-- {
		switch {
		case typ == "":
			typ = "none"
		case image == "":
			image = "none"
		}
	}
	if typ == "" {
		typ = "disc"
	}
	if image == "" {
		image = "none"
	}
	return []Declaration{decl("list-style-type", typ), decl("list-style-position", position), decl("list-style-image", image)}
}

func resolveColumns(value string) []Declaration {
	if isGlobalKeyword(value) {
		return all(value, "column-width", "column-count")
	}
	width, count := "auto", "auto"
	for _, p := range SplitValues(value) {
		switch {
		case p == "auto":
		case IsNumber(p):
			count = p
		case IsLength(p):
			width = p
		default:
			return nil
		}
	}
	return []Declaration{decl("column-width", width), decl("column-count", count)}
}

func resolveFlex(value string) []Declaration {
	props := []string{"flex-grow", "flex-shrink", "flex-basis"}
	if isGlobalKeyword(value) {
		return all(value, props...)
	}
	set := func(g, s, b string) []Declaration {
		return []Declaration{decl("flex-grow", g), decl("flex-shrink", s), decl("flex-basis", b)}
	}
	switch value {
	case "none":
		return set("0", "0", "auto")
	case "auto":
		return set("1", "1", "auto")
	}
	parts := SplitValues(value)
	isBasis := func(p string) bool { return p == "auto" || p == "content" || IsLength(p) || IsPercentage(p) }
	switch len(parts) {
	case 1:
		if IsNumber(parts[0]) {
			return set(parts[0], "1", "0%")
		}
		if isBasis(parts[0]) {
			return set("1", "1", parts[0])
		}
	case 2:
		if IsNumber(parts[0]) && IsNumber(parts[1]) {
			return set(parts[0], parts[1], "0%")
		}
		if IsNumber(parts[0]) && isBasis(parts[1]) {
			return set(parts[0], "1", parts[1])
		}
	case 3:
		if IsNumber(parts[0]) && IsNumber(parts[1]) && isBasis(parts[2]) {
			return set(parts[0], parts[1], parts[2])
		}
	}
	return nil
}

func resolveFlexFlow(value string) []Declaration {
	if isGlobalKeyword(value) {
		return all(value, "flex-direction", "flex-wrap")
	}
	direction, wrap := "row", "nowrap"
	for _, p := range SplitValues(value) {
		switch p {
		case "row", "row-reverse", "column", "column-reverse":
			direction = p
		case "nowrap", "wrap", "wrap-reverse":
			wrap = p
		default:
			return nil
		}
	}
	return []Declaration{decl("flex-direction", direction), decl("flex-wrap", wrap)}
}

func resolveTextDecoration(value string) []Declaration {
	props := []string{"text-decoration-line", "text-decoration-style", "text-decoration-color"}
	if isGlobalKeyword(value) {
		return all(value, props...)
	}
	var lines []string
	style, clr := "solid", "currentcolor"
	for _, p := range SplitValues(value) {
		switch p {
		case "none":
		case "underline", "overline", "line-through", "blink":
			lines = append(lines, p)
		case "solid", "double", "dotted", "dashed", "wavy":
			style = p
		default:
			if !IsColor(p) {
				return nil
			}
			clr = p
		}
	}
	line := "none"
	if len(lines) > 0 {
		line = strings.Join(lines, " ")
	}
	return []Declaration{decl("text-decoration-line", line), decl("text-decoration-style", style), decl("text-decoration-color", clr)}
}

// legacyBreak maps page-break-* onto break-*.
func legacyBreak(property string) func(string) []Declaration {
	return func(value string) []Declaration {
		mapped := value
		switch value {
		case "always":
			mapped = "page"
		case "avoid":
			mapped = "avoid-page"
		}
		return []Declaration{decl(property, mapped)}
	}
}
