// Package document provides a typed view over parsed HTML nodes.
// Callers switch on Kind instead of probing html.Node fields directly.
package document

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Kind classifies a node in a parsed document.
type Kind int

const (
	// KindOther covers the document root, doctypes and raw/error nodes.
	KindOther Kind = iota
	KindElement
	KindText
	KindComment
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindComment:
		return "comment"
	default:
		return "other"
	}
}

// KindOf returns the kind of n. A nil node is KindOther.
func KindOf(n *html.Node) Kind {
	if n == nil {
		return KindOther
	}
	switch n.Type {
	case html.ElementNode:
		return KindElement
	case html.TextNode:
		return KindText
	case html.CommentNode:
		return KindComment
	case html.DocumentNode, html.DoctypeNode, html.ErrorNode, html.RawNode:
		return KindOther
	default:
		return KindOther
	}
}

// TagName returns the lowercase tag name of an element, or "" for any other kind.
func TagName(n *html.Node) string {
	if KindOf(n) != KindElement {
		return ""
	}
	return strings.ToLower(n.Data)
}

// Predicate reports whether a node should be selected.
type Predicate func(n *html.Node) bool

// IsComment selects comment nodes.
func IsComment(n *html.Node) bool {
	return KindOf(n) == KindComment
}

// IsElement returns a predicate selecting elements with the given tag name.
func IsElement(tag string) Predicate {
	tag = strings.ToLower(tag)
	return func(n *html.Node) bool {
		return TagName(n) == tag
	}
}

// Parse parses r as an HTML5 document. Malformed markup is accepted.
// Scripting is disabled, so <noscript> content becomes ordinary nodes
// instead of a single raw text node.
func Parse(r io.Reader) (*html.Node, error) {
	return html.ParseWithOptions(r, html.ParseOptionEnableScripting(false))
}

// IsAnyElement selects element nodes of every tag.
func IsAnyElement(n *html.Node) bool {
	return KindOf(n) == KindElement
}

// Walk visits root and its descendants depth-first in document order.
// Returning false from fn skips the children of the visited node.
func Walk(root *html.Node, fn func(n *html.Node) bool) {
	if root == nil {
		return
	}
	if !fn(root) {
		return
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}

// Find returns every node under root (root included) matching pred, in
// document order. Descendants of a matching node are not searched.
func Find(root *html.Node, pred Predicate) []*html.Node {
	var found []*html.Node
	Walk(root, func(n *html.Node) bool {
		if pred(n) {
			found = append(found, n)
			return false
		}
		return true
	})
	return found
}

// RemoveAll detaches every node under root matching pred, together with its
// subtree, and returns how many nodes were detached. Root itself is never
// removed.
func RemoveAll(root *html.Node, pred Predicate) int {
	if root == nil {
		return 0
	}
	// Collect before detaching: RemoveChild clears sibling links.
	var matches []*html.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		matches = append(matches, Find(c, pred)...)
	}
	removed := 0
	for _, n := range matches {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
			removed++
		}
	}
	return removed
}

// Count returns how many nodes under root (root included) match pred,
// descending into matching nodes as well.
func Count(root *html.Node, pred Predicate) int {
	count := 0
	Walk(root, func(n *html.Node) bool {
		if pred(n) {
			count++
		}
		return true
	})
	return count
}
