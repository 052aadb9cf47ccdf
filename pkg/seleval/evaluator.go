// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package seleval provides the evaluators a compiled selector is made of:
// immutable predicates over nodes of a parsed HTML document, plus the
// And/Or evaluators that combine them and the structural evaluators that
// consult the surrounding tree.
package seleval

import (
	"strings"

	"github.com/samber/lo"
	"golang.org/x/net/html"
)

// Evaluator is an immutable predicate over document nodes. Match reports
// whether node matches, with root as the context the selector was applied
// at. Evaluator trees returned by the parser are safe to share across
// goroutines.
type Evaluator interface {
	Match(root *html.Node, node *html.Node) bool
	String() string
}

// And matches when every child evaluator matches.
type And struct {
	Evaluators []Evaluator
}

// NewAnd creates an AND over the given evaluators.
func NewAnd(evals ...Evaluator) *And {
	return &And{Evaluators: evals}
}

func (a *And) Match(root *html.Node, node *html.Node) bool {
	for _, e := range a.Evaluators {
		if !e.Match(root, node) {
			return false
		}
	}
	return true
}

func (a *And) String() string {
	return strings.Join(lo.Map(a.Evaluators, func(e Evaluator, _ int) string {
		return e.String()
	}), "")
}

// Or matches when any child evaluator matches. The parser grows an Or in
// place while folding comma combinators; RightMost and ReplaceRightMost
// exist for that construction phase only, and a surfaced Or always holds
// at least two children.
type Or struct {
	Evaluators []Evaluator
}

// NewOr creates an OR over the given evaluators.
func NewOr(evals ...Evaluator) *Or {
	return &Or{Evaluators: evals}
}

// Add appends an alternative.
func (o *Or) Add(e Evaluator) {
	o.Evaluators = append(o.Evaluators, e)
}

// RightMost returns the last alternative, or nil if there is none.
func (o *Or) RightMost() Evaluator {
	if len(o.Evaluators) == 0 {
		return nil
	}
	return o.Evaluators[len(o.Evaluators)-1]
}

// ReplaceRightMost swaps the last alternative for e.
func (o *Or) ReplaceRightMost(e Evaluator) {
	o.Evaluators[len(o.Evaluators)-1] = e
}

func (o *Or) Match(root *html.Node, node *html.Node) bool {
	for _, e := range o.Evaluators {
		if e.Match(root, node) {
			return true
		}
	}
	return false
}

func (o *Or) String() string {
	return strings.Join(lo.Map(o.Evaluators, func(e Evaluator, _ int) string {
		return e.String()
	}), ", ")
}
