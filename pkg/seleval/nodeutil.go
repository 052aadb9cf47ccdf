// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package seleval

import (
	"strings"

	"github.com/selmatch/selmatch/pkg/utilfn"
	"golang.org/x/net/html"
)

// nodeName returns the qualified name of an element: "ns:name" for
// namespaced elements (svg, math), the plain tag name otherwise.
func nodeName(n *html.Node) string {
	if n.Namespace != "" {
		return n.Namespace + ":" + n.Data
	}
	return n.Data
}

// hasParentElement reports whether n sits under a real parent element
// (rather than directly under the document).
func hasParentElement(n *html.Node) bool {
	return n.Parent != nil && n.Parent.Type == html.ElementNode
}

func firstElementChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func previousElementSibling(n *html.Node) *html.Node {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

func nextElementSibling(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// elementSiblingIndex returns n's 0-based index among its element
// siblings.
func elementSiblingIndex(n *html.Node) int {
	idx := 0
	for s := previousElementSibling(n); s != nil; s = previousElementSibling(s) {
		idx++
	}
	return idx
}

// elementSiblingCount returns the number of element children of n's
// parent, or 1 if n has no parent.
func elementSiblingCount(n *html.Node) int {
	if n.Parent == nil {
		return 1
	}
	count := 0
	for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			count++
		}
	}
	return count
}

func attrValue(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, key string) bool {
	_, ok := attrValue(n, key)
	return ok
}

// hasClass reports whether n's class attribute contains name as a
// whitespace-separated entry, case insensitively.
func hasClass(n *html.Node, name string) bool {
	class, ok := attrValue(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(class) {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

// stripQuotes removes one pair of surrounding single or double quotes.
// Attribute values arrive from the parser verbatim, quotes included.
func stripQuotes(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

// nodeText returns the combined text of n's descendant text nodes with
// whitespace runs collapsed to single spaces and the ends trimmed.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			switch child.Type {
			case html.TextNode:
				appendNormalizedText(&sb, child.Data)
			case html.ElementNode:
				walk(child)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

// ownText is nodeText restricted to n's direct child text nodes.
func ownText(n *html.Node) string {
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			appendNormalizedText(&sb, child.Data)
		}
	}
	return strings.TrimSpace(sb.String())
}

func appendNormalizedText(sb *strings.Builder, text string) {
	lastWasWhite := sb.Len() > 0 && strings.HasSuffix(sb.String(), " ")
	for _, r := range text {
		if utilfn.IsWhitespace(r) {
			if lastWasWhite {
				continue
			}
			sb.WriteByte(' ')
			lastWasWhite = true
		} else {
			sb.WriteRune(r)
			lastWasWhite = false
		}
	}
}

// dataTags hold raw character data rather than rendered text.
var dataTags = map[string]bool{"script": true, "style": true}

// dataText returns the raw data content of n and its descendants:
// script/style contents and comment bodies, unnormalized.
func dataText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			switch child.Type {
			case html.CommentNode:
				sb.WriteString(child.Data)
			case html.TextNode:
				if c.Type == html.ElementNode && dataTags[c.Data] {
					sb.WriteString(child.Data)
				}
			case html.ElementNode:
				walk(child)
			}
		}
	}
	walk(n)
	return sb.String()
}
