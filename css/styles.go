package css

import (
	"maps"
	"slices"
)

// Styles is computed style of an element: property name to value.
type Styles map[string]string

// Get returns value of property or its initial value.
func (s Styles) Get(property string) string {
	if v, ok := s[property]; ok {
		return v
	}
	return InitialValue(property)
}

// Has reports whether property was set.
func (s Styles) Has(property string) bool {
	_, ok := s[property]
	return ok
}

// Clone returns independent copy.
func (s Styles) Clone() Styles {
	return maps.Clone(s)
}

// Properties returns sorted property names.
func (s Styles) Properties() []string {
	return slices.Sorted(maps.Keys(s))
}

var inherited = map[string]bool{
	"azimuth": true, "border-collapse": true, "border-spacing": true, "caption-side": true,
	"color": true, "cursor": true, "direction": true, "elevation": true, "empty-cells": true,
	"font": true, "font-family": true, "font-feature-settings": true, "font-kerning": true,
	"font-size": true, "font-size-adjust": true, "font-stretch": true, "font-style": true,
	"font-variant": true, "font-weight": true, "hyphens": true, "letter-spacing": true,
	"line-height": true, "list-style": true, "list-style-image": true, "list-style-position": true,
	"list-style-type": true, "orphans": true, "overflow-wrap": true, "quotes": true,
	"tab-size": true, "text-align": true, "text-align-last": true, "text-indent": true,
	"text-transform": true, "visibility": true, "white-space": true, "widows": true,
	"word-break": true, "word-spacing": true, "word-wrap": true, "lang": true,
}

// IsInherited reports whether property is inherited by default.
func IsInherited(property string) bool {
	return inherited[property]
}

var initialValues = map[string]string{
	"display":               "inline",
	"color":                 "black",
	"background-color":      "transparent",
	"background-image":      "none",
	"background-repeat":     "repeat",
	"background-position":   "0% 0%",
	"font-style":            "normal",
	"font-variant":          "normal",
	"font-weight":           "normal",
	"font-stretch":          "normal",
	"font-size":             "medium",
	"line-height":           "normal",
	"font-family":           "times",
	"text-align":            "start",
	"text-indent":           "0",
	"text-transform":        "none",
	"text-decoration-line":  "none",
	"white-space":           "normal",
	"vertical-align":        "baseline",
	"list-style-type":       "disc",
	"list-style-position":   "outside",
	"list-style-image":      "none",
	"position":              "static",
	"float":                 "none",
	"clear":                 "none",
	"visibility":            "visible",
	"overflow":              "visible",
	"width":                 "auto",
	"height":                "auto",
	"border-collapse":       "separate",
	"caption-side":          "top",
	"quotes":                `"\201C" "\201D" "\2018" "\2019"`,
	"content":               "normal",
	"counter-reset":         "none",
	"counter-increment":     "none",
	"counter-set":           "none",
	"break-before":          "auto",
	"break-after":           "auto",
	"break-inside":          "auto",
	"page-break-inside":     "auto",
	"opacity":               "1",
	"direction":             "ltr",
	"letter-spacing":        "normal",
	"word-spacing":          "normal",
	"orphans":               "2",
	"widows":                "2",
	"border-top-style":      "none",
	"border-right-style":    "none",
	"border-bottom-style":   "none",
	"border-left-style":     "none",
	"border-top-width":      "medium",
	"border-right-width":    "medium",
	"border-bottom-width":   "medium",
	"border-left-width":     "medium",
	"border-top-color":      "currentcolor",
	"border-right-color":    "currentcolor",
	"border-bottom-color":   "currentcolor",
	"border-left-color":     "currentcolor",
	"margin-top":            "0",
	"margin-right":          "0",
	"margin-bottom":         "0",
	"margin-left":           "0",
	"padding-top":           "0",
	"padding-right":         "0",
	"padding-bottom":        "0",
	"padding-left":          "0",
	"column-count":          "auto",
	"column-width":          "auto",
	"column-gap":            "normal",
	"row-gap":               "normal",
	"flex-direction":        "row",
	"flex-wrap":             "nowrap",
	"flex-grow":             "0",
	"flex-shrink":           "1",
	"flex-basis":            "auto",
	"text-decoration-style": "solid",
	"text-decoration-color": "currentcolor",
}

// InitialValue returns initial value of property, empty if unknown.
func InitialValue(property string) string {
	return initialValues[property]
}
