// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package seleval

import (
	"fmt"

	"golang.org/x/net/html"
)

// Root matches the node the selector was applied at. The parser seeds
// combinator-led selectors ("> p") with it.
type Root struct{}

// NewRoot creates the context-root evaluator.
func NewRoot() *Root {
	return &Root{}
}

func (e *Root) Match(root *html.Node, node *html.Node) bool {
	return node == root
}

func (e *Root) String() string {
	return ""
}

// Parent matches nodes with any ancestor (up to the context root)
// matching the inner evaluator.
type Parent struct {
	Inner Evaluator
}

// NewParent creates a descendant-combinator evaluator.
func NewParent(inner Evaluator) *Parent {
	return &Parent{Inner: inner}
}

func (e *Parent) Match(root *html.Node, node *html.Node) bool {
	if root == node {
		return false
	}
	for p := node.Parent; p != nil; p = p.Parent {
		if e.Inner.Match(root, p) {
			return true
		}
		if p == root {
			break
		}
	}
	return false
}

func (e *Parent) String() string {
	return fmt.Sprintf("%s ", e.Inner)
}

// ImmediateParent matches nodes whose direct parent matches the inner
// evaluator.
type ImmediateParent struct {
	Inner Evaluator
}

// NewImmediateParent creates a child-combinator evaluator.
func NewImmediateParent(inner Evaluator) *ImmediateParent {
	return &ImmediateParent{Inner: inner}
}

func (e *ImmediateParent) Match(root *html.Node, node *html.Node) bool {
	if root == node {
		return false
	}
	return node.Parent != nil && e.Inner.Match(root, node.Parent)
}

func (e *ImmediateParent) String() string {
	return fmt.Sprintf("%s > ", e.Inner)
}

// PreviousSibling matches nodes with any earlier element sibling
// matching the inner evaluator.
type PreviousSibling struct {
	Inner Evaluator
}

// NewPreviousSibling creates a general-sibling-combinator evaluator.
func NewPreviousSibling(inner Evaluator) *PreviousSibling {
	return &PreviousSibling{Inner: inner}
}

func (e *PreviousSibling) Match(root *html.Node, node *html.Node) bool {
	if root == node {
		return false
	}
	for s := previousElementSibling(node); s != nil; s = previousElementSibling(s) {
		if e.Inner.Match(root, s) {
			return true
		}
	}
	return false
}

func (e *PreviousSibling) String() string {
	return fmt.Sprintf("%s ~ ", e.Inner)
}

// ImmediatePreviousSibling matches nodes whose immediately preceding
// element sibling matches the inner evaluator.
type ImmediatePreviousSibling struct {
	Inner Evaluator
}

// NewImmediatePreviousSibling creates an adjacent-sibling-combinator
// evaluator.
func NewImmediatePreviousSibling(inner Evaluator) *ImmediatePreviousSibling {
	return &ImmediatePreviousSibling{Inner: inner}
}

func (e *ImmediatePreviousSibling) Match(root *html.Node, node *html.Node) bool {
	if root == node {
		return false
	}
	prev := previousElementSibling(node)
	return prev != nil && e.Inner.Match(root, prev)
}

func (e *ImmediatePreviousSibling) String() string {
	return fmt.Sprintf("%s + ", e.Inner)
}

// Has matches nodes with any descendant matching the inner evaluator.
type Has struct {
	Inner Evaluator
}

// NewHas creates a :has(selector) evaluator.
func NewHas(inner Evaluator) *Has {
	return &Has{Inner: inner}
}

func (e *Has) Match(root *html.Node, node *html.Node) bool {
	var search func(*html.Node) bool
	search = func(n *html.Node) bool {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if e.Inner.Match(root, c) || search(c) {
				return true
			}
		}
		return false
	}
	return search(node)
}

func (e *Has) String() string {
	return fmt.Sprintf(":has(%s)", e.Inner)
}

// Not matches nodes the inner evaluator rejects.
type Not struct {
	Inner Evaluator
}

// NewNot creates a :not(selector) evaluator.
func NewNot(inner Evaluator) *Not {
	return &Not{Inner: inner}
}

func (e *Not) Match(root *html.Node, node *html.Node) bool {
	return !e.Inner.Match(root, node)
}

func (e *Not) String() string {
	return fmt.Sprintf(":not(%s)", e.Inner)
}
