package css

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor parses CSS color. "currentcolor" and unknown values are not
// colors.
func ParseColor(s string) (color.RGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return color.RGBA{}, false
	case s == "transparent":
		return color.RGBA{}, true
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba("):
		return parseRGB(s)
	case strings.HasPrefix(s, "hsl(") || strings.HasPrefix(s, "hsla("):
		return parseHSL(s)
	}
	c, ok := colornames.Map[s]
	return c, ok
}

// IsColor reports whether value is a color.
func IsColor(s string) bool {
	if strings.EqualFold(strings.TrimSpace(s), "currentcolor") {
		return true
	}
	_, ok := ParseColor(s)
	return ok
}

func parseHex(h string) (color.RGBA, bool) {
	expand := func(c byte) string { return string([]byte{c, c}) }
	switch len(h) {
	case 3:
		h = expand(h[0]) + expand(h[1]) + expand(h[2]) + "ff"
	case 4:
		h = expand(h[0]) + expand(h[1]) + expand(h[2]) + expand(h[3])
	case 6:
		h += "ff"
	case 8:
	default:
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
}

// functionArgs returns arguments of color function accepting both comma and
// space separated syntax.
func functionArgs(s string) []string {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return nil
	}
	body := strings.NewReplacer(",", " ", "/", " ").Replace(s[open+1 : end])
	return strings.Fields(body)
}

func channel(s string) (uint8, bool) {
	v, unit, ok := SplitDimension(s)
	if !ok {
		return 0, false
	}
	switch unit {
	case "%":
		v = v * 255 / 100
	case "":
	default:
		return 0, false
	}
	return clamp255(v), true
}

func alpha(s string) (uint8, bool) {
	v, unit, ok := SplitDimension(s)
	if !ok {
		return 0, false
	}
	switch unit {
	case "%":
		v /= 100
	case "":
	default:
		return 0, false
	}
	return clamp255(v * 255), true
}

func clamp255(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}

func parseRGB(s string) (color.RGBA, bool) {
	args := functionArgs(s)
	if len(args) != 3 && len(args) != 4 {
		return color.RGBA{}, false
	}
	var c color.RGBA
	var ok bool
	if c.R, ok = channel(args[0]); !ok {
		return color.RGBA{}, false
	}
	if c.G, ok = channel(args[1]); !ok {
		return color.RGBA{}, false
	}
	if c.B, ok = channel(args[2]); !ok {
		return color.RGBA{}, false
	}
	c.A = 255
	if len(args) == 4 {
		if c.A, ok = alpha(args[3]); !ok {
			return color.RGBA{}, false
		}
	}
	return c, true
}

func parseHSL(s string) (color.RGBA, bool) {
	args := functionArgs(s)
	if len(args) != 3 && len(args) != 4 {
		return color.RGBA{}, false
	}
	h, hu, ok1 := SplitDimension(args[0])
	sat, su, ok2 := SplitDimension(args[1])
	l, lu, ok3 := SplitDimension(args[2])
	if !ok1 || !ok2 || !ok3 || (hu != "" && hu != "deg") || su != "%" || lu != "%" {
		return color.RGBA{}, false
	}
	h = math.Mod(math.Mod(h, 360)+360, 360) / 360
	sat, l = sat/100, l/100

	var r, g, b float64
	if sat == 0 {
		r, g, b = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + sat)
		} else {
			q = l + sat - l*sat
		}
		p := 2*l - q
		r, g, b = hueToRGB(p, q, h+1.0/3), hueToRGB(p, q, h), hueToRGB(p, q, h-1.0/3)
	}
	c := color.RGBA{R: clamp255(r * 255), G: clamp255(g * 255), B: clamp255(b * 255), A: 255}
	if len(args) == 4 {
		a, ok := alpha(args[3])
		if !ok {
			return color.RGBA{}, false
		}
		c.A = a
	}
	return c, true
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}
