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

// ContainsText matches elements whose combined text contains the search
// string, case insensitively.
type ContainsText struct {
	SearchText string
}

// NewContainsText creates a :contains(text) evaluator. The search text
// arrives from the parser already unescaped.
func NewContainsText(searchText string) *ContainsText {
	return &ContainsText{SearchText: utilfn.LowerCase(searchText)}
}

func (e *ContainsText) Match(root *html.Node, node *html.Node) bool {
	return node.Type == html.ElementNode && strings.Contains(utilfn.LowerCase(nodeText(node)), e.SearchText)
}

func (e *ContainsText) String() string {
	return fmt.Sprintf(":contains(%s)", e.SearchText)
}

// ContainsOwnText matches elements whose own (direct) text contains the
// search string, case insensitively.
type ContainsOwnText struct {
	SearchText string
}

// NewContainsOwnText creates a :containsOwn(text) evaluator.
func NewContainsOwnText(searchText string) *ContainsOwnText {
	return &ContainsOwnText{SearchText: utilfn.LowerCase(searchText)}
}

func (e *ContainsOwnText) Match(root *html.Node, node *html.Node) bool {
	return node.Type == html.ElementNode && strings.Contains(utilfn.LowerCase(ownText(node)), e.SearchText)
}

func (e *ContainsOwnText) String() string {
	return fmt.Sprintf(":containsOwn(%s)", e.SearchText)
}

// ContainsData matches elements whose data content (script/style bodies,
// comments) contains the search string, case insensitively.
type ContainsData struct {
	SearchText string
}

// NewContainsData creates a :containsData(text) evaluator.
func NewContainsData(searchText string) *ContainsData {
	return &ContainsData{SearchText: utilfn.LowerCase(searchText)}
}

func (e *ContainsData) Match(root *html.Node, node *html.Node) bool {
	return node.Type == html.ElementNode && strings.Contains(utilfn.LowerCase(dataText(node)), e.SearchText)
}

func (e *ContainsData) String() string {
	return fmt.Sprintf(":containsData(%s)", e.SearchText)
}

// Matches matches elements whose combined text matches the compiled
// pattern.
type Matches struct {
	Pattern *regexp2.Regexp
}

// NewMatches creates a :matches(regex) evaluator. The pattern is
// compiled once by the parser.
func NewMatches(pattern *regexp2.Regexp) *Matches {
	return &Matches{Pattern: pattern}
}

func (e *Matches) Match(root *html.Node, node *html.Node) bool {
	if node.Type != html.ElementNode {
		return false
	}
	matched, err := e.Pattern.MatchString(nodeText(node))
	return err == nil && matched
}

func (e *Matches) String() string {
	return fmt.Sprintf(":matches(%s)", e.Pattern.String())
}

// MatchesOwn matches elements whose own text matches the compiled
// pattern.
type MatchesOwn struct {
	Pattern *regexp2.Regexp
}

// NewMatchesOwn creates a :matchesOwn(regex) evaluator.
func NewMatchesOwn(pattern *regexp2.Regexp) *MatchesOwn {
	return &MatchesOwn{Pattern: pattern}
}

func (e *MatchesOwn) Match(root *html.Node, node *html.Node) bool {
	if node.Type != html.ElementNode {
		return false
	}
	matched, err := e.Pattern.MatchString(ownText(node))
	return err == nil && matched
}

func (e *MatchesOwn) String() string {
	return fmt.Sprintf(":matchesOwn(%s)", e.Pattern.String())
}

// MatchText matches text nodes rather than elements, letting selectors
// address runs of text directly.
type MatchText struct{}

// NewMatchText creates a :matchText evaluator.
func NewMatchText() *MatchText {
	return &MatchText{}
}

func (e *MatchText) Match(root *html.Node, node *html.Node) bool {
	return node.Type == html.TextNode
}

func (e *MatchText) String() string {
	return ":matchText"
}
