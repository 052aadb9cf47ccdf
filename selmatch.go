// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package selmatch compiles CSS selector strings into evaluator trees:
// immutable predicates over nodes of an HTML document parsed with
// golang.org/x/net/html. The compiler lives in pkg/selparser, the
// evaluators in pkg/seleval; this package is the front door.
package selmatch

import (
	"github.com/selmatch/selmatch/pkg/seleval"
	"github.com/selmatch/selmatch/pkg/selparser"
)

// Evaluator is the compiled form of a selector.
type Evaluator = seleval.Evaluator

// ParseError is returned when a selector cannot be compiled.
type ParseError = selparser.ParseError

// Compile parses a CSS selector (e.g. `div.main > a[href^="/"]`) into a
// single evaluator.
func Compile(cssQuery string) (Evaluator, error) {
	return selparser.Parse(cssQuery)
}

// MustCompile is Compile for selectors known good at build time; it
// panics on a parse error.
func MustCompile(cssQuery string) Evaluator {
	ev, err := selparser.Parse(cssQuery)
	if err != nil {
		panic(err)
	}
	return ev
}

// Unescape collapses backslash escapes in a selector argument.
func Unescape(s string) string {
	return selparser.Unescape(s)
}
