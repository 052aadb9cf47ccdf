// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package selparser

import (
	"errors"
	"testing"

	"github.com/dlclark/regexp2"
	"github.com/google/go-cmp/cmp"
	"github.com/selmatch/selmatch/pkg/seleval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// evalCmpOpts lets go-cmp descend into the embedded state of attribute
// and nth evaluators and compares compiled patterns by source text.
var evalCmpOpts = cmp.Options{
	cmp.AllowUnexported(
		seleval.AttributeWithValue{},
		seleval.AttributeWithValueNot{},
		seleval.AttributeWithValueStarting{},
		seleval.AttributeWithValueEnding{},
		seleval.AttributeWithValueContaining{},
		seleval.IsNthChild{},
		seleval.IsNthLastChild{},
		seleval.IsNthOfType{},
		seleval.IsNthLastOfType{},
	),
	cmp.Comparer(func(a, b *regexp2.Regexp) bool {
		if a == nil || b == nil {
			return a == b
		}
		return a.String() == b.String()
	}),
}

func assertParse(t *testing.T, query string, expected seleval.Evaluator) {
	t.Helper()
	got, err := Parse(query)
	require.NoError(t, err, "Parse(%q)", query)
	if diff := cmp.Diff(expected, got, evalCmpOpts); diff != "" {
		t.Errorf("Parse(%q) tree mismatch (-want +got):\n%s", query, diff)
	}
}

func TestParseSimpleSelectors(t *testing.T) {
	assertParse(t, "div", seleval.NewTag("div"))
	assertParse(t, "*", seleval.NewAllElements())
	assertParse(t, "#main", seleval.NewID("main"))
	assertParse(t, ".item", seleval.NewClass("item"))
	assertParse(t, "  div  ", seleval.NewTag("div"))
}

func TestParseCompoundSelector(t *testing.T) {
	assertParse(t, "div.main",
		seleval.NewAnd(seleval.NewTag("div"), seleval.NewClass("main")))
	assertParse(t, "a#x.y[href]",
		seleval.NewAnd(
			seleval.NewTag("a"),
			seleval.NewID("x"),
			seleval.NewClass("y"),
			seleval.NewAttribute("href"),
		))
}

func TestParseNamespacedTags(t *testing.T) {
	assertParse(t, "fb|name", seleval.NewTag("fb:name"))
	assertParse(t, "*|p",
		seleval.NewOr(seleval.NewTag("p"), seleval.NewTagEndsWith(":p")))
}

func TestParseCombinators(t *testing.T) {
	assertParse(t, "a > b",
		seleval.NewAnd(seleval.NewTag("b"), seleval.NewImmediateParent(seleval.NewTag("a"))))
	assertParse(t, "a b",
		seleval.NewAnd(seleval.NewTag("b"), seleval.NewParent(seleval.NewTag("a"))))
	assertParse(t, "a + b",
		seleval.NewAnd(seleval.NewTag("b"), seleval.NewImmediatePreviousSibling(seleval.NewTag("a"))))
	assertParse(t, "a ~ b",
		seleval.NewAnd(seleval.NewTag("b"), seleval.NewPreviousSibling(seleval.NewTag("a"))))
}

func TestParseCombinatorLed(t *testing.T) {
	// leading combinator is anchored at the context root
	assertParse(t, "> p",
		seleval.NewAnd(seleval.NewTag("p"), seleval.NewImmediateParent(seleval.NewRoot())))
	assertParse(t, "~ li",
		seleval.NewAnd(seleval.NewTag("li"), seleval.NewPreviousSibling(seleval.NewRoot())))
}

func TestParseOrGrouping(t *testing.T) {
	assertParse(t, "a, b",
		seleval.NewOr(seleval.NewTag("a"), seleval.NewTag("b")))
	assertParse(t, "a, b, c",
		seleval.NewOr(seleval.NewTag("a"), seleval.NewTag("b"), seleval.NewTag("c")))
}

func TestParseOrBindsLoosest(t *testing.T) {
	// "a, b > c" is a OR (b > c), not (a OR b) > c
	assertParse(t, "a, b > c",
		seleval.NewOr(
			seleval.NewTag("a"),
			seleval.NewAnd(seleval.NewTag("c"), seleval.NewImmediateParent(seleval.NewTag("b"))),
		))
	// the rightmost OR branch keeps absorbing further combinators
	assertParse(t, "a, b > c ~ d",
		seleval.NewOr(
			seleval.NewTag("a"),
			seleval.NewAnd(
				seleval.NewTag("d"),
				seleval.NewPreviousSibling(
					seleval.NewAnd(seleval.NewTag("c"), seleval.NewImmediateParent(seleval.NewTag("b"))))),
		))
}

func TestParseOrEqualsParsedBranches(t *testing.T) {
	whole, err := Parse("a.x, b > c")
	require.NoError(t, err)
	left, err := Parse("a.x")
	require.NoError(t, err)
	right, err := Parse("b > c")
	require.NoError(t, err)
	if diff := cmp.Diff(seleval.NewOr(left, right), whole, evalCmpOpts); diff != "" {
		t.Errorf("comma selector is not the OR of its branches (-want +got):\n%s", diff)
	}
}

func TestParseAttributeSelectors(t *testing.T) {
	assertParse(t, "[href]", seleval.NewAttribute("href"))
	assertParse(t, "[^data-]", seleval.NewAttributeStarting("data-"))
	assertParse(t, "[rel=nofollow]", seleval.NewAttributeWithValue("rel", "nofollow"))
	assertParse(t, "[rel!=nofollow]", seleval.NewAttributeWithValueNot("rel", "nofollow"))
	assertParse(t, `[href^="/"]`, seleval.NewAttributeWithValueStarting("href", `"/"`))
	assertParse(t, "[src$=.png]", seleval.NewAttributeWithValueEnding("src", ".png"))
	assertParse(t, "[title*=tool]", seleval.NewAttributeWithValueContaining("title", "tool"))
	assertParse(t, `[id~=\d+]`,
		seleval.NewAttributeWithValueMatching("id", regexp2.MustCompile(`\d+`, regexp2.None)))
}

func TestParseIndexSelectors(t *testing.T) {
	assertParse(t, ":lt(3)", seleval.NewIndexLessThan(3))
	assertParse(t, ":gt(0)", seleval.NewIndexGreaterThan(0))
	assertParse(t, ":eq(2)", seleval.NewIndexEquals(2))
	assertParse(t, ":eq( 2 )", seleval.NewIndexEquals(2))
}

func TestParseNthFormulas(t *testing.T) {
	tests := []struct {
		arg  string
		a, b int
	}{
		{"2n+1", 2, 1},
		{"odd", 2, 1},
		{"even", 2, 0},
		{"5", 0, 5},
		{"+5", 0, 5},
		{"-5", 0, -5},
		{"n", 1, 0},
		{"3n", 3, 0},
		{"+3n", 3, 0},
		{"-2n", -2, 0},
		{"10n-1", 10, -1},
		{"-n+3", 1, 3},
		{"N+2", 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			assertParse(t, ":nth-child("+tt.arg+")", seleval.NewIsNthChild(tt.a, tt.b))
		})
	}
	assertParse(t, ":nth-last-child(2)", seleval.NewIsNthLastChild(0, 2))
	assertParse(t, ":nth-of-type(2n)", seleval.NewIsNthOfType(2, 0))
	assertParse(t, ":nth-last-of-type(even)", seleval.NewIsNthLastOfType(2, 0))
}

func TestParseStructuralPseudos(t *testing.T) {
	assertParse(t, ":first-child", seleval.NewIsFirstChild())
	assertParse(t, ":last-child", seleval.NewIsLastChild())
	assertParse(t, ":first-of-type", seleval.NewIsFirstOfType())
	assertParse(t, ":last-of-type", seleval.NewIsLastOfType())
	assertParse(t, ":only-child", seleval.NewIsOnlyChild())
	assertParse(t, ":only-of-type", seleval.NewIsOnlyOfType())
	assertParse(t, ":empty", seleval.NewIsEmpty())
	assertParse(t, ":root", seleval.NewIsRoot())
	assertParse(t, ":matchText", seleval.NewMatchText())
}

func TestParseTextPseudos(t *testing.T) {
	assertParse(t, ":contains(hello)", seleval.NewContainsText("hello"))
	assertParse(t, ":containsOwn(Hi There)", seleval.NewContainsOwnText("Hi There"))
	assertParse(t, ":containsData(var x)", seleval.NewContainsData("var x"))
	// escaped parens in the argument are unescaped
	assertParse(t, `:contains(foo\)bar)`, seleval.NewContainsText("foo)bar"))
	// regex arguments are not unescaped
	assertParse(t, `:matches(\d+)`, seleval.NewMatches(regexp2.MustCompile(`\d+`, regexp2.None)))
	assertParse(t, `:matchesOwn((?i)abc)`, seleval.NewMatchesOwn(regexp2.MustCompile(`(?i)abc`, regexp2.None)))
}

func TestParseHasAndNot(t *testing.T) {
	assertParse(t, ":has(p)", seleval.NewHas(seleval.NewTag("p")))
	assertParse(t, "div:not(.ext)",
		seleval.NewAnd(seleval.NewTag("div"), seleval.NewNot(seleval.NewClass("ext"))))
	// sub-queries recurse through the full parser
	assertParse(t, ":has(a > b), p",
		seleval.NewOr(
			seleval.NewHas(seleval.NewAnd(seleval.NewTag("b"), seleval.NewImmediateParent(seleval.NewTag("a")))),
			seleval.NewTag("p"),
		))
}

func TestParseComplexSelector(t *testing.T) {
	// compound with combinator and nested pseudo arguments
	assertParse(t, `div.main > a:not(.ext):nth-child(2n+1)`,
		seleval.NewAnd(
			seleval.NewAnd(
				seleval.NewTag("a"),
				seleval.NewNot(seleval.NewClass("ext")),
				seleval.NewIsNthChild(2, 1),
			),
			seleval.NewImmediateParent(
				seleval.NewAnd(seleval.NewTag("div"), seleval.NewClass("main"))),
		))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"trailing combinator", "div >"},
		{"unknown pseudo", "p:unknown"},
		{"bare pseudo marker", ":"},
		{"non-numeric index", ":lt(x)"},
		{"bad nth formula", ":nth-child(foo)"},
		{"nth missing arg", ":nth-child()"},
		{"empty id", "#"},
		{"empty class", "."},
		{"empty attribute", "[=value]"},
		{"unbalanced has", ":has(a"},
		{"empty has", ":has()"},
		{"empty not", ":not()"},
		{"empty contains", ":contains()"},
		{"bad regex", ":matches(("},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.query)
			require.Error(t, err, "Parse(%q)", tt.query)
			var perr *ParseError
			require.True(t, errors.As(err, &perr), "error should be a *ParseError, got %T", err)
		})
	}
}

func TestParseErrorCarriesQuery(t *testing.T) {
	_, err := Parse("p:unknown")
	require.Error(t, err)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "p:unknown", perr.Query)
	assert.Contains(t, err.Error(), "unexpected token")
	assert.Contains(t, err.Error(), ":unknown")
}

func TestParseValueKeepsQuotes(t *testing.T) {
	ev, err := Parse(`[href^="/"]`)
	require.NoError(t, err)
	attr, ok := ev.(*seleval.AttributeWithValueStarting)
	require.True(t, ok, "expected *AttributeWithValueStarting, got %T", ev)
	assert.Equal(t, "href", attr.Key)
	assert.Equal(t, `"/"`, attr.Value)
}
