// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package seleval

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// IndexLessThan matches elements whose element sibling index (0-based)
// is below the given index.
type IndexLessThan struct {
	Index int
}

// NewIndexLessThan creates a :lt(n) evaluator.
func NewIndexLessThan(index int) *IndexLessThan {
	return &IndexLessThan{Index: index}
}

func (e *IndexLessThan) Match(root *html.Node, node *html.Node) bool {
	return node.Type == html.ElementNode && node != root && elementSiblingIndex(node) < e.Index
}

func (e *IndexLessThan) String() string {
	return fmt.Sprintf(":lt(%d)", e.Index)
}

// IndexGreaterThan matches elements whose element sibling index
// (0-based) is above the given index.
type IndexGreaterThan struct {
	Index int
}

// NewIndexGreaterThan creates a :gt(n) evaluator.
func NewIndexGreaterThan(index int) *IndexGreaterThan {
	return &IndexGreaterThan{Index: index}
}

func (e *IndexGreaterThan) Match(root *html.Node, node *html.Node) bool {
	return node.Type == html.ElementNode && node != root && elementSiblingIndex(node) > e.Index
}

func (e *IndexGreaterThan) String() string {
	return fmt.Sprintf(":gt(%d)", e.Index)
}

// IndexEquals matches elements whose element sibling index (0-based)
// equals the given index.
type IndexEquals struct {
	Index int
}

// NewIndexEquals creates an :eq(n) evaluator.
func NewIndexEquals(index int) *IndexEquals {
	return &IndexEquals{Index: index}
}

func (e *IndexEquals) Match(root *html.Node, node *html.Node) bool {
	return node.Type == html.ElementNode && node != root && elementSiblingIndex(node) == e.Index
}

func (e *IndexEquals) String() string {
	return fmt.Sprintf(":eq(%d)", e.Index)
}

// nthEval is the shared An+B machinery of the four :nth-* evaluators.
// Positions are 1-based; a position p matches when p = A*n + B for some
// n >= 0.
type nthEval struct {
	A int
	B int
}

func (e *nthEval) matchesPosition(pos int) bool {
	if e.A == 0 {
		return pos == e.B
	}
	return (pos-e.B)*e.A >= 0 && (pos-e.B)%e.A == 0
}

func (e *nthEval) argString() string {
	if e.A == 0 {
		return fmt.Sprintf("%d", e.B)
	}
	if e.B == 0 {
		return fmt.Sprintf("%dn", e.A)
	}
	return fmt.Sprintf("%dn%+d", e.A, e.B)
}

// nthMatchable guards the shared precondition: nth positions are only
// defined for elements under a parent element.
func nthMatchable(node *html.Node) bool {
	return node.Type == html.ElementNode && hasParentElement(node)
}

// IsNthChild matches :nth-child(An+B).
type IsNthChild struct {
	nthEval
}

// NewIsNthChild creates an :nth-child evaluator.
func NewIsNthChild(a int, b int) *IsNthChild {
	return &IsNthChild{nthEval{A: a, B: b}}
}

func (e *IsNthChild) Match(root *html.Node, node *html.Node) bool {
	return nthMatchable(node) && e.matchesPosition(elementSiblingIndex(node)+1)
}

func (e *IsNthChild) String() string {
	return fmt.Sprintf(":nth-child(%s)", e.argString())
}

// IsNthLastChild matches :nth-last-child(An+B), counting from the end.
type IsNthLastChild struct {
	nthEval
}

// NewIsNthLastChild creates an :nth-last-child evaluator.
func NewIsNthLastChild(a int, b int) *IsNthLastChild {
	return &IsNthLastChild{nthEval{A: a, B: b}}
}

func (e *IsNthLastChild) Match(root *html.Node, node *html.Node) bool {
	return nthMatchable(node) && e.matchesPosition(elementSiblingCount(node)-elementSiblingIndex(node))
}

func (e *IsNthLastChild) String() string {
	return fmt.Sprintf(":nth-last-child(%s)", e.argString())
}

// IsNthOfType matches :nth-of-type(An+B), counting only same-name
// element siblings.
type IsNthOfType struct {
	nthEval
}

// NewIsNthOfType creates an :nth-of-type evaluator.
func NewIsNthOfType(a int, b int) *IsNthOfType {
	return &IsNthOfType{nthEval{A: a, B: b}}
}

func (e *IsNthOfType) Match(root *html.Node, node *html.Node) bool {
	if !nthMatchable(node) {
		return false
	}
	pos := 1
	for s := previousElementSibling(node); s != nil; s = previousElementSibling(s) {
		if strings.EqualFold(nodeName(s), nodeName(node)) {
			pos++
		}
	}
	return e.matchesPosition(pos)
}

func (e *IsNthOfType) String() string {
	return fmt.Sprintf(":nth-of-type(%s)", e.argString())
}

// IsNthLastOfType matches :nth-last-of-type(An+B).
type IsNthLastOfType struct {
	nthEval
}

// NewIsNthLastOfType creates an :nth-last-of-type evaluator.
func NewIsNthLastOfType(a int, b int) *IsNthLastOfType {
	return &IsNthLastOfType{nthEval{A: a, B: b}}
}

func (e *IsNthLastOfType) Match(root *html.Node, node *html.Node) bool {
	if !nthMatchable(node) {
		return false
	}
	pos := 1
	for s := nextElementSibling(node); s != nil; s = nextElementSibling(s) {
		if strings.EqualFold(nodeName(s), nodeName(node)) {
			pos++
		}
	}
	return e.matchesPosition(pos)
}

func (e *IsNthLastOfType) String() string {
	return fmt.Sprintf(":nth-last-of-type(%s)", e.argString())
}

// IsFirstChild matches elements that are the first element child of
// their parent.
type IsFirstChild struct{}

// NewIsFirstChild creates a :first-child evaluator.
func NewIsFirstChild() *IsFirstChild {
	return &IsFirstChild{}
}

func (e *IsFirstChild) Match(root *html.Node, node *html.Node) bool {
	return nthMatchable(node) && previousElementSibling(node) == nil
}

func (e *IsFirstChild) String() string {
	return ":first-child"
}

// IsLastChild matches elements that are the last element child of their
// parent.
type IsLastChild struct{}

// NewIsLastChild creates a :last-child evaluator.
func NewIsLastChild() *IsLastChild {
	return &IsLastChild{}
}

func (e *IsLastChild) Match(root *html.Node, node *html.Node) bool {
	return nthMatchable(node) && nextElementSibling(node) == nil
}

func (e *IsLastChild) String() string {
	return ":last-child"
}

// IsFirstOfType matches elements with no earlier same-name sibling.
type IsFirstOfType struct{}

// NewIsFirstOfType creates a :first-of-type evaluator.
func NewIsFirstOfType() *IsFirstOfType {
	return &IsFirstOfType{}
}

func (e *IsFirstOfType) Match(root *html.Node, node *html.Node) bool {
	if !nthMatchable(node) {
		return false
	}
	for s := previousElementSibling(node); s != nil; s = previousElementSibling(s) {
		if strings.EqualFold(nodeName(s), nodeName(node)) {
			return false
		}
	}
	return true
}

func (e *IsFirstOfType) String() string {
	return ":first-of-type"
}

// IsLastOfType matches elements with no later same-name sibling.
type IsLastOfType struct{}

// NewIsLastOfType creates a :last-of-type evaluator.
func NewIsLastOfType() *IsLastOfType {
	return &IsLastOfType{}
}

func (e *IsLastOfType) Match(root *html.Node, node *html.Node) bool {
	if !nthMatchable(node) {
		return false
	}
	for s := nextElementSibling(node); s != nil; s = nextElementSibling(s) {
		if strings.EqualFold(nodeName(s), nodeName(node)) {
			return false
		}
	}
	return true
}

func (e *IsLastOfType) String() string {
	return ":last-of-type"
}

// IsOnlyChild matches elements that are the sole element child of their
// parent.
type IsOnlyChild struct{}

// NewIsOnlyChild creates an :only-child evaluator.
func NewIsOnlyChild() *IsOnlyChild {
	return &IsOnlyChild{}
}

func (e *IsOnlyChild) Match(root *html.Node, node *html.Node) bool {
	return nthMatchable(node) && previousElementSibling(node) == nil && nextElementSibling(node) == nil
}

func (e *IsOnlyChild) String() string {
	return ":only-child"
}

// IsOnlyOfType matches elements with no same-name sibling in either
// direction.
type IsOnlyOfType struct{}

// NewIsOnlyOfType creates an :only-of-type evaluator.
func NewIsOnlyOfType() *IsOnlyOfType {
	return &IsOnlyOfType{}
}

func (e *IsOnlyOfType) Match(root *html.Node, node *html.Node) bool {
	if !nthMatchable(node) {
		return false
	}
	for s := previousElementSibling(node); s != nil; s = previousElementSibling(s) {
		if strings.EqualFold(nodeName(s), nodeName(node)) {
			return false
		}
	}
	for s := nextElementSibling(node); s != nil; s = nextElementSibling(s) {
		if strings.EqualFold(nodeName(s), nodeName(node)) {
			return false
		}
	}
	return true
}

func (e *IsOnlyOfType) String() string {
	return ":only-of-type"
}

// IsEmpty matches elements with no element or text children. Comments
// and doctypes do not count as content.
type IsEmpty struct{}

// NewIsEmpty creates an :empty evaluator.
func NewIsEmpty() *IsEmpty {
	return &IsEmpty{}
}

func (e *IsEmpty) Match(root *html.Node, node *html.Node) bool {
	if node.Type != html.ElementNode {
		return false
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode || c.Type == html.TextNode {
			return false
		}
	}
	return true
}

func (e *IsEmpty) String() string {
	return ":empty"
}

// IsRoot matches the root element of the document the selector was
// applied to.
type IsRoot struct{}

// NewIsRoot creates a :root evaluator.
func NewIsRoot() *IsRoot {
	return &IsRoot{}
}

func (e *IsRoot) Match(root *html.Node, node *html.Node) bool {
	r := root
	if root != nil && root.Type == html.DocumentNode {
		r = firstElementChild(root)
	}
	return node.Type == html.ElementNode && node == r
}

func (e *IsRoot) String() string {
	return ":root"
}
