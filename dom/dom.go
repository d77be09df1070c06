// Package dom parses HTML documents and provides element level helpers on
// top of golang.org/x/net/html node tree.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

// Parse reads HTML document detecting its character set from BOM, meta tags
// or content type (may be empty).
func Parse(r io.Reader, contentType string) (*html.Node, error) {
	cr, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("unable to detect document encoding: %w", err)
	}
	doc, err := html.Parse(cr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse html: %w", err)
	}
	return doc, nil
}

// ParseWithEncoding reads HTML document in requested encoding.
func ParseWithEncoding(r io.Reader, enc encoding.Encoding) (*html.Node, error) {
	if enc == nil {
		return Parse(r, "")
	}
	doc, err := html.Parse(enc.NewDecoder().Reader(r))
	if err != nil {
		return nil, fmt.Errorf("unable to parse html: %w", err)
	}
	return doc, nil
}

// ParseString is a convenience wrapper for already decoded markup.
func ParseString(s string) (*html.Node, error) {
	return html.Parse(strings.NewReader(s))
}

// IsElement reports whether node is an element.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// Tag returns lower case element name, empty for non elements.
func Tag(n *html.Node) string {
	if !IsElement(n) {
		return ""
	}
	if n.DataAtom != 0 {
		return n.DataAtom.String()
	}
	return strings.ToLower(n.Data)
}

// Attr returns attribute value, attribute names are case insensitive.
func Attr(n *html.Node, name string) string {
	v, _ := LookupAttr(n, name)
	return v
}

// LookupAttr returns attribute value and whether it was present.
func LookupAttr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports attribute presence.
func HasAttr(n *html.Node, name string) bool {
	_, ok := LookupAttr(n, name)
	return ok
}

// SetAttr replaces or adds attribute.
func SetAttr(n *html.Node, name, value string) {
	for i := range n.Attr {
		if strings.EqualFold(n.Attr[i].Key, name) {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// ID returns element id.
func ID(n *html.Node) string {
	return Attr(n, "id")
}

// Classes returns element classes.
func Classes(n *html.Node) []string {
	return strings.Fields(Attr(n, "class"))
}

// HasClass reports whether element has class.
func HasClass(n *html.Node, class string) bool {
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

// ParentElement returns closest element parent or nil.
func ParentElement(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}

// PrevElementSibling returns previous sibling element or nil.
func PrevElementSibling(n *html.Node) *html.Node {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// NextElementSibling returns next sibling element or nil.
func NextElementSibling(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// ElementChildren returns child elements in document order.
func ElementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// IsRoot reports whether element is the document element.
func IsRoot(n *html.Node) bool {
	return IsElement(n) && (n.Parent == nil || n.Parent.Type == html.DocumentNode)
}

// Root returns document element for any node of the tree.
func Root(n *html.Node) *html.Node {
	for ; n != nil; n = n.Parent {
		if IsRoot(n) {
			return n
		}
		if n.Type == html.DocumentNode {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode {
					return c
				}
			}
			return nil
		}
	}
	return nil
}

// Text returns concatenated text of all descendant text nodes.
func Text(n *html.Node) string {
	var buf bytes.Buffer
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

// OwnText returns text of direct text children only.
func OwnText(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			buf.WriteString(c.Data)
		}
	}
	return buf.String()
}

// Lang returns language in effect for the element, looking up ancestors.
func Lang(n *html.Node) string {
	for ; n != nil; n = n.Parent {
		if v, ok := LookupAttr(n, "lang"); ok {
			return v
		}
		if v, ok := LookupAttr(n, "xml:lang"); ok {
			return v
		}
	}
	return ""
}

// Walk visits node and its descendants depth first. Returning false from fn
// skips children of the node.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}

// FindAll returns all elements under n (including n) satisfying predicate.
func FindAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	Walk(n, func(c *html.Node) bool {
		if IsElement(c) && pred(c) {
			out = append(out, c)
		}
		return true
	})
	return out
}

// FindFirst returns first element in document order satisfying predicate.
func FindFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	var found *html.Node
	Walk(n, func(c *html.Node) bool {
		if found != nil {
			return false
		}
		if IsElement(c) && pred(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

// ByTag is predicate for FindAll and FindFirst.
func ByTag(a atom.Atom) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.DataAtom == a }
}
