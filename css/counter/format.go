package counter

import (
	"strconv"
	"strings"
	"unicode"
)

// List style types understood by Format.
const (
	StyleDecimal            = "decimal"
	StyleDecimalLeadingZero = "decimal-leading-zero"
	StyleLowerRoman         = "lower-roman"
	StyleUpperRoman         = "upper-roman"
	StyleLowerAlpha         = "lower-alpha"
	StyleUpperAlpha         = "upper-alpha"
	StyleLowerLatin         = "lower-latin"
	StyleUpperLatin         = "upper-latin"
	StyleLowerGreek         = "lower-greek"
	StyleGeorgian           = "georgian"
	StyleArmenian           = "armenian"
	StyleLowerArmenian      = "lower-armenian"
	StyleUpperArmenian      = "upper-armenian"
	StyleDisc               = "disc"
	StyleCircle             = "circle"
	StyleSquare             = "square"
	StyleNone               = "none"
)

const (
	glyphDisc   = "•"
	glyphCircle = "◦"
	glyphSquare = "▪"
)

type additive struct {
	value int
	glyph string
}

var roman = []additive{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"}, {100, "C"}, {90, "XC"},
	{50, "L"}, {40, "XL"}, {10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

var georgian = []additive{
	{10000, "ჵ"}, {9000, "ჰ"}, {8000, "ჯ"}, {7000, "ჴ"}, {6000, "ხ"}, {5000, "ჭ"},
	{4000, "წ"}, {3000, "ძ"}, {2000, "ც"}, {1000, "ჩ"}, {900, "შ"}, {800, "ყ"},
	{700, "ღ"}, {600, "ქ"}, {500, "ფ"}, {400, "ჳ"}, {300, "ტ"}, {200, "ს"},
	{100, "რ"}, {90, "ჟ"}, {80, "პ"}, {70, "ო"}, {60, "ჲ"}, {50, "ნ"},
	{40, "მ"}, {30, "ლ"}, {20, "კ"}, {10, "ი"}, {9, "თ"}, {8, "ჱ"},
	{7, "ზ"}, {6, "ვ"}, {5, "ე"}, {4, "დ"}, {3, "გ"}, {2, "ბ"}, {1, "ა"},
}

var armenian = []additive{
	{9000, "Ք"}, {8000, "Փ"}, {7000, "Ւ"}, {6000, "Ց"}, {5000, "Ր"}, {4000, "Տ"},
	{3000, "Վ"}, {2000, "Ս"}, {1000, "Ռ"}, {900, "Ջ"}, {800, "Պ"}, {700, "Չ"},
	{600, "Ո"}, {500, "Շ"}, {400, "Ն"}, {300, "Յ"}, {200, "Մ"}, {100, "Ճ"},
	{90, "Ղ"}, {80, "Ձ"}, {70, "Հ"}, {60, "Կ"}, {50, "Ծ"}, {40, "Խ"},
	{30, "Լ"}, {20, "Ի"}, {10, "Ժ"}, {9, "Թ"}, {8, "Ը"}, {7, "Է"},
	{6, "Զ"}, {5, "Ե"}, {4, "Դ"}, {3, "Գ"}, {2, "Բ"}, {1, "Ա"},
}

// final sigma is not used for numbering
var greek = []rune("αβγδεζηθικλμνξοπρστυφχψω")

// Format converts counter value to its textual representation. Values out of
// range of the style fall back to decimal, unknown styles are decimal.
func Format(n int, style string) string {
	switch strings.ToLower(style) {
	case StyleNone:
		return ""
	case StyleDisc:
		return glyphDisc
	case StyleCircle:
		return glyphCircle
	case StyleSquare:
		return glyphSquare
	case StyleDecimalLeadingZero:
		if n >= 0 && n < 10 {
			return "0" + strconv.Itoa(n)
		}
		if n < 0 && n > -10 {
			return "-0" + strconv.Itoa(-n)
		}
	case StyleLowerRoman:
		if s, ok := toAdditive(n, 3999, roman); ok {
			return strings.ToLower(s)
		}
	case StyleUpperRoman:
		if s, ok := toAdditive(n, 3999, roman); ok {
			return s
		}
	case StyleLowerAlpha, StyleLowerLatin:
		if s, ok := toAlphabetic(n, []rune("abcdefghijklmnopqrstuvwxyz")); ok {
			return s
		}
	case StyleUpperAlpha, StyleUpperLatin:
		if s, ok := toAlphabetic(n, []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ")); ok {
			return s
		}
	case StyleLowerGreek:
		if s, ok := toAlphabetic(n, greek); ok {
			return s
		}
	case StyleGeorgian:
		if s, ok := toAdditive(n, 19999, georgian); ok {
			return s
		}
	case StyleArmenian, StyleUpperArmenian:
		if s, ok := toAdditive(n, 9999, armenian); ok {
			return s
		}
	case StyleLowerArmenian:
		if s, ok := toAdditive(n, 9999, armenian); ok {
			return strings.Map(unicode.ToLower, s)
		}
	}
	return strconv.Itoa(n)
}

func toAdditive(n, limit int, table []additive) (string, bool) {
	if n < 1 || n > limit {
		return "", false
	}
	var sb strings.Builder
	for _, a := range table {
		for n >= a.value {
			sb.WriteString(a.glyph)
			n -= a.value
		}
	}
	return sb.String(), true
}

// toAlphabetic is bijective base len(alphabet) numbering: a..z, aa, ab...
func toAlphabetic(n int, alphabet []rune) (string, bool) {
	if n < 1 {
		return "", false
	}
	base := len(alphabet)
	var out []rune
	for n > 0 {
		n--
		out = append(out, alphabet[n%base])
		n /= base
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out), true
}
