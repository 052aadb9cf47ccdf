// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package seleval

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Tag matches elements by tag name.
type Tag struct {
	TagName string
}

// NewTag creates an evaluator matching elements named tagName.
func NewTag(tagName string) *Tag {
	return &Tag{TagName: tagName}
}

func (t *Tag) Match(root *html.Node, node *html.Node) bool {
	return node.Type == html.ElementNode && strings.EqualFold(nodeName(node), t.TagName)
}

func (t *Tag) String() string {
	return t.TagName
}

// TagEndsWith matches elements whose qualified name ends with the given
// suffix; ":name" matches "name" in any namespace.
type TagEndsWith struct {
	TagName string
}

// NewTagEndsWith creates an evaluator matching elements whose qualified
// name ends with tagName.
func NewTagEndsWith(tagName string) *TagEndsWith {
	return &TagEndsWith{TagName: tagName}
}

func (t *TagEndsWith) Match(root *html.Node, node *html.Node) bool {
	return node.Type == html.ElementNode && strings.HasSuffix(strings.ToLower(nodeName(node)), t.TagName)
}

func (t *TagEndsWith) String() string {
	return t.TagName
}

// ID matches the element with the given id attribute.
type ID struct {
	ID string
}

// NewID creates an evaluator matching the element with the given id.
func NewID(id string) *ID {
	return &ID{ID: id}
}

func (e *ID) Match(root *html.Node, node *html.Node) bool {
	if node.Type != html.ElementNode {
		return false
	}
	id, _ := attrValue(node, "id")
	return id == e.ID
}

func (e *ID) String() string {
	return fmt.Sprintf("#%s", e.ID)
}

// Class matches elements carrying the given class name.
type Class struct {
	ClassName string
}

// NewClass creates an evaluator matching elements with the given class.
func NewClass(className string) *Class {
	return &Class{ClassName: className}
}

func (e *Class) Match(root *html.Node, node *html.Node) bool {
	return node.Type == html.ElementNode && hasClass(node, e.ClassName)
}

func (e *Class) String() string {
	return fmt.Sprintf(".%s", e.ClassName)
}

// AllElements matches every element.
type AllElements struct{}

// NewAllElements creates the wildcard evaluator.
func NewAllElements() *AllElements {
	return &AllElements{}
}

func (e *AllElements) Match(root *html.Node, node *html.Node) bool {
	return node.Type == html.ElementNode
}

func (e *AllElements) String() string {
	return "*"
}
