// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package seleval

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/selmatch/selmatch/pkg/utilfn"
	"golang.org/x/net/html"
)

// Attribute matches elements carrying the given attribute.
type Attribute struct {
	Key string
}

// NewAttribute creates an evaluator matching elements with attribute key.
func NewAttribute(key string) *Attribute {
	return &Attribute{Key: utilfn.Normalize(key)}
}

func (e *Attribute) Match(root *html.Node, node *html.Node) bool {
	return node.Type == html.ElementNode && hasAttr(node, e.Key)
}

func (e *Attribute) String() string {
	return fmt.Sprintf("[%s]", e.Key)
}

// AttributeStarting matches elements carrying any attribute whose key
// starts with the given prefix.
type AttributeStarting struct {
	KeyPrefix string
}

// NewAttributeStarting creates an evaluator matching elements with an
// attribute key starting with keyPrefix.
func NewAttributeStarting(keyPrefix string) *AttributeStarting {
	return &AttributeStarting{KeyPrefix: utilfn.Normalize(keyPrefix)}
}

func (e *AttributeStarting) Match(root *html.Node, node *html.Node) bool {
	if node.Type != html.ElementNode {
		return false
	}
	for _, a := range node.Attr {
		if strings.HasPrefix(strings.ToLower(a.Key), e.KeyPrefix) {
			return true
		}
	}
	return false
}

func (e *AttributeStarting) String() string {
	return fmt.Sprintf("[^%s]", e.KeyPrefix)
}

// attrKeyValue carries the shared key/value state of the value-comparing
// attribute evaluators. Value is held verbatim as parsed, surrounding
// quotes included; cleanValue strips them at match time.
type attrKeyValue struct {
	Key   string
	Value string
}

func makeAttrKeyValue(key string, value string) attrKeyValue {
	return attrKeyValue{Key: utilfn.Normalize(key), Value: value}
}

func (kv *attrKeyValue) cleanValue() string {
	return stripQuotes(kv.Value)
}

// AttributeWithValue matches elements whose attribute equals the value,
// case insensitively.
type AttributeWithValue struct {
	attrKeyValue
}

// NewAttributeWithValue creates an evaluator matching key=value.
func NewAttributeWithValue(key string, value string) *AttributeWithValue {
	return &AttributeWithValue{makeAttrKeyValue(key, value)}
}

func (e *AttributeWithValue) Match(root *html.Node, node *html.Node) bool {
	if node.Type != html.ElementNode {
		return false
	}
	val, ok := attrValue(node, e.Key)
	return ok && strings.EqualFold(strings.TrimSpace(val), e.cleanValue())
}

func (e *AttributeWithValue) String() string {
	return fmt.Sprintf("[%s=%s]", e.Key, e.Value)
}

// AttributeWithValueNot matches elements whose attribute does not equal
// the value, including elements lacking the attribute entirely.
type AttributeWithValueNot struct {
	attrKeyValue
}

// NewAttributeWithValueNot creates an evaluator matching key!=value.
func NewAttributeWithValueNot(key string, value string) *AttributeWithValueNot {
	return &AttributeWithValueNot{makeAttrKeyValue(key, value)}
}

func (e *AttributeWithValueNot) Match(root *html.Node, node *html.Node) bool {
	if node.Type != html.ElementNode {
		return false
	}
	val, _ := attrValue(node, e.Key)
	return !strings.EqualFold(val, e.cleanValue())
}

func (e *AttributeWithValueNot) String() string {
	return fmt.Sprintf("[%s!=%s]", e.Key, e.Value)
}

// AttributeWithValueStarting matches elements whose attribute value
// starts with the given prefix, case insensitively.
type AttributeWithValueStarting struct {
	attrKeyValue
}

// NewAttributeWithValueStarting creates an evaluator matching key^=value.
func NewAttributeWithValueStarting(key string, value string) *AttributeWithValueStarting {
	return &AttributeWithValueStarting{makeAttrKeyValue(key, value)}
}

func (e *AttributeWithValueStarting) Match(root *html.Node, node *html.Node) bool {
	if node.Type != html.ElementNode {
		return false
	}
	val, ok := attrValue(node, e.Key)
	return ok && strings.HasPrefix(strings.ToLower(val), strings.ToLower(e.cleanValue()))
}

func (e *AttributeWithValueStarting) String() string {
	return fmt.Sprintf("[%s^=%s]", e.Key, e.Value)
}

// AttributeWithValueEnding matches elements whose attribute value ends
// with the given suffix, case insensitively.
type AttributeWithValueEnding struct {
	attrKeyValue
}

// NewAttributeWithValueEnding creates an evaluator matching key$=value.
func NewAttributeWithValueEnding(key string, value string) *AttributeWithValueEnding {
	return &AttributeWithValueEnding{makeAttrKeyValue(key, value)}
}

func (e *AttributeWithValueEnding) Match(root *html.Node, node *html.Node) bool {
	if node.Type != html.ElementNode {
		return false
	}
	val, ok := attrValue(node, e.Key)
	return ok && strings.HasSuffix(strings.ToLower(val), strings.ToLower(e.cleanValue()))
}

func (e *AttributeWithValueEnding) String() string {
	return fmt.Sprintf("[%s$=%s]", e.Key, e.Value)
}

// AttributeWithValueContaining matches elements whose attribute value
// contains the given substring, case insensitively.
type AttributeWithValueContaining struct {
	attrKeyValue
}

// NewAttributeWithValueContaining creates an evaluator matching
// key*=value.
func NewAttributeWithValueContaining(key string, value string) *AttributeWithValueContaining {
	return &AttributeWithValueContaining{makeAttrKeyValue(key, value)}
}

func (e *AttributeWithValueContaining) Match(root *html.Node, node *html.Node) bool {
	if node.Type != html.ElementNode {
		return false
	}
	val, ok := attrValue(node, e.Key)
	return ok && strings.Contains(strings.ToLower(val), strings.ToLower(e.cleanValue()))
}

func (e *AttributeWithValueContaining) String() string {
	return fmt.Sprintf("[%s*=%s]", e.Key, e.Value)
}

// AttributeWithValueMatching matches elements whose attribute value
// matches the compiled pattern.
type AttributeWithValueMatching struct {
	Key     string
	Pattern *regexp2.Regexp
}

// NewAttributeWithValueMatching creates an evaluator matching key~=regex.
// The pattern is compiled once by the parser.
func NewAttributeWithValueMatching(key string, pattern *regexp2.Regexp) *AttributeWithValueMatching {
	return &AttributeWithValueMatching{Key: utilfn.Normalize(key), Pattern: pattern}
}

func (e *AttributeWithValueMatching) Match(root *html.Node, node *html.Node) bool {
	if node.Type != html.ElementNode {
		return false
	}
	val, ok := attrValue(node, e.Key)
	if !ok {
		return false
	}
	matched, err := e.Pattern.MatchString(val)
	return err == nil && matched
}

func (e *AttributeWithValueMatching) String() string {
	return fmt.Sprintf("[%s~=%s]", e.Key, e.Pattern.String())
}
