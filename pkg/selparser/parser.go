// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Selector grammar (EBNF):

// selector         = WS? ( combinator-led | sequence ) { WS? combinator WS? sequence } ;
// combinator-led   = combinator WS? sequence ;           (seeded with a Root evaluator)
// combinator       = "," | ">" | "+" | "~" | WS ;        (WS alone means descendant)
// sequence         = simple { simple } ;                  (juxtaposition is AND)
// simple           = "*" | tag | "#" id | "." class | attribute | pseudo ;
// tag              = name | ns "|" name | "*|" name ;
// attribute        = "[" key [ op value ] "]" ;           op = "=" | "!=" | "^=" | "$=" | "*=" | "~="
// pseudo           = ":lt(n)" | ":gt(n)" | ":eq(n)" | ":has(sel)" | ":not(sel)"
//                  | ":contains(text)" | ":containsOwn(text)" | ":containsData(text)"
//                  | ":matches(re)" | ":matchesOwn(re)"
//                  | ":nth-child(AnB)" | ":nth-last-child(AnB)" | ":nth-of-type(AnB)" | ":nth-last-of-type(AnB)"
//                  | ":first-child" | ":last-child" | ":first-of-type" | ":last-of-type"
//                  | ":only-child" | ":only-of-type" | ":empty" | ":root" | ":matchText" ;
//
// Notes:
// - The comma combinator binds loosest: "a, b > c" is a OR (b > c). When the
//   working list holds a single Or and a non-comma combinator arrives, only the
//   Or's rightmost child is folded and spliced back (rightmost replacement).
// - Parenthesized and bracketed groups inside a sub-query may contain
//   combinator characters as literal content; they are kept intact by
//   balanced extraction.
// - :contains/:containsOwn/:containsData arguments are unescaped; :matches
//   and :matchesOwn arguments are handed to the regex engine verbatim.

package selparser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/selmatch/selmatch/pkg/seleval"
	"github.com/selmatch/selmatch/pkg/utilfn"
)

// combinatorChars are the tokens that separate compound selectors.
var combinatorChars = []string{",", ">", "+", "~", " "}

// nthStepOffsetRegex matches An+B arguments; nthOffsetRegex matches bare B.
var (
	nthStepOffsetRegex = regexp.MustCompile(`(?i)^(([+-])?(\d+)?)n(\s*([+-])?\s*(\d+))?$`)
	nthOffsetRegex     = regexp.MustCompile(`^([+-])?(\d+)$`)
)

// ParseError is returned when a selector cannot be compiled.
type ParseError struct {
	Query string // the original selector
	Msg   string // what went wrong; only unexpected-token errors quote the remaining input
}

func (e *ParseError) Error() string {
	if e.Query == "" {
		return e.Msg
	}
	return fmt.Sprintf("could not parse query %q: %s", e.Query, e.Msg)
}

// queryParser compiles one selector string; it owns its token queue for
// the lifetime of the parse.
type queryParser struct {
	tq    *TokenQueue
	query string
	evals []seleval.Evaluator // working list, folded by combinators
}

// Parse compiles a CSS selector into a single evaluator. The query is
// trimmed first; interior whitespace is significant (descendant).
func Parse(cssQuery string) (seleval.Evaluator, error) {
	p := &queryParser{tq: NewTokenQueue(strings.TrimSpace(cssQuery)), query: cssQuery}
	ev, err := p.parse()
	// an error raised while parsing a sub-query is reported against this query
	if perr, ok := err.(*ParseError); ok {
		perr.Query = cssQuery
	}
	return ev, err
}

func (p *queryParser) errorf(format string, args ...any) error {
	return &ParseError{Query: p.query, Msg: fmt.Sprintf(format, args...)}
}

func (p *queryParser) parse() (seleval.Evaluator, error) {
	p.tq.ConsumeWhitespace()

	if p.tq.MatchesAny(combinatorChars...) {
		// combinator-led selector, e.g. "> p"; seed with the context root
		p.evals = append(p.evals, seleval.NewRoot())
		if err := p.combinator(p.tq.Consume()); err != nil {
			return nil, err
		}
	} else {
		if err := p.findElements(); err != nil {
			return nil, err
		}
	}

	for !p.tq.IsEmpty() {
		// whitespace with no explicit combinator means descendant
		seenWhite := p.tq.ConsumeWhitespace()
		if p.tq.MatchesAny(combinatorChars...) {
			if err := p.combinator(p.tq.Consume()); err != nil {
				return nil, err
			}
		} else if seenWhite {
			if err := p.combinator(' '); err != nil {
				return nil, err
			}
		} else {
			// compound continuation: E.class, E#id, E[attr]
			if err := p.findElements(); err != nil {
				return nil, err
			}
		}
	}

	if len(p.evals) == 1 {
		return p.evals[0], nil
	}
	return seleval.NewAnd(p.evals...), nil
}

// combinator folds the working list with the sub-query to the right of c.
func (p *queryParser) combinator(c rune) error {
	p.tq.ConsumeWhitespace()
	subQuery, err := p.consumeSubQuery()
	if err != nil {
		return err
	}
	if subQuery == "" {
		return p.errorf("combinator %q must be followed by a selector", c)
	}
	newEval, err := Parse(subQuery)
	if err != nil {
		return err
	}

	var rootEval seleval.Evaluator    // the evaluator the result will be attached to
	var currentEval seleval.Evaluator // the evaluator the new one is combined with
	replaceRightMost := false

	if len(p.evals) == 1 {
		rootEval = p.evals[0]
		currentEval = rootEval
		// Or binds loosest: attach the combinator to its rightmost child
		// only, unless this is another comma.
		if orEval, ok := currentEval.(*seleval.Or); ok && c != ',' {
			currentEval = orEval.RightMost()
			replaceRightMost = true
		}
	} else {
		rootEval = seleval.NewAnd(p.evals...)
		currentEval = rootEval
	}
	p.evals = nil

	switch c {
	case '>':
		currentEval = seleval.NewAnd(newEval, seleval.NewImmediateParent(currentEval))
	case ' ':
		currentEval = seleval.NewAnd(newEval, seleval.NewParent(currentEval))
	case '+':
		currentEval = seleval.NewAnd(newEval, seleval.NewImmediatePreviousSibling(currentEval))
	case '~':
		currentEval = seleval.NewAnd(newEval, seleval.NewPreviousSibling(currentEval))
	case ',':
		var orEval *seleval.Or
		if o, ok := currentEval.(*seleval.Or); ok {
			orEval = o
		} else {
			orEval = seleval.NewOr(currentEval)
		}
		orEval.Add(newEval)
		currentEval = orEval
	default:
		return p.errorf("unknown combinator %q", c)
	}

	if replaceRightMost {
		rootEval.(*seleval.Or).ReplaceRightMost(currentEval)
	} else {
		rootEval = currentEval
	}
	p.evals = append(p.evals, rootEval)
	return nil
}

// consumeSubQuery accumulates the next compound selector, keeping
// parenthesized and bracketed groups intact.
func (p *queryParser) consumeSubQuery() (string, error) {
	var sq strings.Builder
	for !p.tq.IsEmpty() {
		switch {
		case p.tq.Matches("("):
			inner, err := p.tq.ChompBalanced('(', ')')
			if err != nil {
				return "", p.errorf("%v", err)
			}
			sq.WriteString("(")
			sq.WriteString(inner)
			sq.WriteString(")")
		case p.tq.Matches("["):
			inner, err := p.tq.ChompBalanced('[', ']')
			if err != nil {
				return "", p.errorf("%v", err)
			}
			sq.WriteString("[")
			sq.WriteString(inner)
			sq.WriteString("]")
		case p.tq.MatchesAny(combinatorChars...):
			return sq.String(), nil
		default:
			sq.WriteRune(p.tq.Consume())
		}
	}
	return sq.String(), nil
}

// findElements dispatches on the head of the queue to exactly one simple
// selector production and appends its evaluator to the working list.
func (p *queryParser) findElements() error {
	switch {
	case p.tq.MatchChomp("#"):
		return p.byID()
	case p.tq.MatchChomp("."):
		return p.byClass()
	case p.tq.MatchesWord() || p.tq.Matches("*|"):
		return p.byTag()
	case p.tq.Matches("["):
		return p.byAttribute()
	case p.tq.MatchChomp("*"):
		p.evals = append(p.evals, seleval.NewAllElements())
	case p.tq.MatchChomp(":lt("):
		idx, err := p.consumeIndex()
		if err != nil {
			return err
		}
		p.evals = append(p.evals, seleval.NewIndexLessThan(idx))
	case p.tq.MatchChomp(":gt("):
		idx, err := p.consumeIndex()
		if err != nil {
			return err
		}
		p.evals = append(p.evals, seleval.NewIndexGreaterThan(idx))
	case p.tq.MatchChomp(":eq("):
		idx, err := p.consumeIndex()
		if err != nil {
			return err
		}
		p.evals = append(p.evals, seleval.NewIndexEquals(idx))
	case p.tq.Matches(":has("):
		return p.has()
	case p.tq.Matches(":contains("):
		return p.contains(false)
	case p.tq.Matches(":containsOwn("):
		return p.contains(true)
	case p.tq.Matches(":containsData("):
		return p.containsData()
	case p.tq.Matches(":matches("):
		return p.matchesPattern(false)
	case p.tq.Matches(":matchesOwn("):
		return p.matchesPattern(true)
	case p.tq.Matches(":not("):
		return p.not()
	case p.tq.MatchChomp(":nth-child("):
		return p.cssNthChild(false, false)
	case p.tq.MatchChomp(":nth-last-child("):
		return p.cssNthChild(true, false)
	case p.tq.MatchChomp(":nth-of-type("):
		return p.cssNthChild(false, true)
	case p.tq.MatchChomp(":nth-last-of-type("):
		return p.cssNthChild(true, true)
	case p.tq.MatchChomp(":first-child"):
		p.evals = append(p.evals, seleval.NewIsFirstChild())
	case p.tq.MatchChomp(":last-child"):
		p.evals = append(p.evals, seleval.NewIsLastChild())
	case p.tq.MatchChomp(":first-of-type"):
		p.evals = append(p.evals, seleval.NewIsFirstOfType())
	case p.tq.MatchChomp(":last-of-type"):
		p.evals = append(p.evals, seleval.NewIsLastOfType())
	case p.tq.MatchChomp(":only-child"):
		p.evals = append(p.evals, seleval.NewIsOnlyChild())
	case p.tq.MatchChomp(":only-of-type"):
		p.evals = append(p.evals, seleval.NewIsOnlyOfType())
	case p.tq.MatchChomp(":empty"):
		p.evals = append(p.evals, seleval.NewIsEmpty())
	case p.tq.MatchChomp(":root"):
		p.evals = append(p.evals, seleval.NewIsRoot())
	case p.tq.MatchChomp(":matchText"):
		p.evals = append(p.evals, seleval.NewMatchText())
	default:
		return p.errorf("unexpected token at %q", p.tq.Remainder())
	}
	return nil
}

func (p *queryParser) byID() error {
	id := p.tq.ConsumeCSSIdentifier()
	if id == "" {
		return p.errorf("id selector must not be empty")
	}
	p.evals = append(p.evals, seleval.NewID(id))
	return nil
}

func (p *queryParser) byClass() error {
	className := p.tq.ConsumeCSSIdentifier()
	if className == "" {
		return p.errorf("class selector must not be empty")
	}
	p.evals = append(p.evals, seleval.NewClass(strings.TrimSpace(className)))
	return nil
}

func (p *queryParser) byTag() error {
	tagName := p.tq.ConsumeElementSelector()
	if tagName == "" {
		return p.errorf("tag selector must not be empty")
	}
	// namespaces: "*|name" matches "name" in any namespace, including none
	if strings.HasPrefix(tagName, "*|") {
		p.evals = append(p.evals, seleval.NewOr(
			seleval.NewTag(utilfn.Normalize(strings.TrimPrefix(tagName, "*|"))),
			seleval.NewTagEndsWith(utilfn.Normalize(strings.Replace(tagName, "*|", ":", 1))),
		))
		return nil
	}
	// the document names a namespaced element "ns:name", the query "ns|name"
	if strings.Contains(tagName, "|") {
		tagName = strings.ReplaceAll(tagName, "|", ":")
	}
	p.evals = append(p.evals, seleval.NewTag(strings.TrimSpace(tagName)))
	return nil
}

func (p *queryParser) byAttribute() error {
	inner, err := p.tq.ChompBalanced('[', ']')
	if err != nil {
		return p.errorf("%v", err)
	}
	cq := NewTokenQueue(inner)
	key := cq.ConsumeToAny("=", "!=", "^=", "$=", "*=", "~=")
	if key == "" {
		return p.errorf("attribute query must not be empty")
	}
	cq.ConsumeWhitespace()

	if cq.IsEmpty() {
		if strings.HasPrefix(key, "^") {
			p.evals = append(p.evals, seleval.NewAttributeStarting(key[1:]))
		} else {
			p.evals = append(p.evals, seleval.NewAttribute(key))
		}
		return nil
	}

	switch {
	case cq.MatchChomp("="):
		p.evals = append(p.evals, seleval.NewAttributeWithValue(key, cq.Remainder()))
	case cq.MatchChomp("!="):
		p.evals = append(p.evals, seleval.NewAttributeWithValueNot(key, cq.Remainder()))
	case cq.MatchChomp("^="):
		p.evals = append(p.evals, seleval.NewAttributeWithValueStarting(key, cq.Remainder()))
	case cq.MatchChomp("$="):
		p.evals = append(p.evals, seleval.NewAttributeWithValueEnding(key, cq.Remainder()))
	case cq.MatchChomp("*="):
		p.evals = append(p.evals, seleval.NewAttributeWithValueContaining(key, cq.Remainder()))
	case cq.MatchChomp("~="):
		pattern := cq.Remainder()
		re, err := regexp2.Compile(pattern, regexp2.None)
		if err != nil {
			return p.errorf("invalid attribute pattern %q: %v", pattern, err)
		}
		p.evals = append(p.evals, seleval.NewAttributeWithValueMatching(key, re))
	default:
		return p.errorf("could not parse attribute query %q: unexpected token at %q", inner, cq.Remainder())
	}
	return nil
}

func (p *queryParser) has() error {
	if err := p.tq.ConsumeSeq(":has"); err != nil {
		return p.errorf("%v", err)
	}
	subQuery, err := p.tq.ChompBalanced('(', ')')
	if err != nil {
		return p.errorf("%v", err)
	}
	if subQuery == "" {
		return p.errorf(":has(el) subselect must not be empty")
	}
	inner, err := Parse(subQuery)
	if err != nil {
		return err
	}
	p.evals = append(p.evals, seleval.NewHas(inner))
	return nil
}

func (p *queryParser) contains(own bool) error {
	pseudo := ":contains"
	if own {
		pseudo = ":containsOwn"
	}
	if err := p.tq.ConsumeSeq(pseudo); err != nil {
		return p.errorf("%v", err)
	}
	raw, err := p.tq.ChompBalanced('(', ')')
	if err != nil {
		return p.errorf("%v", err)
	}
	searchText := Unescape(raw)
	if searchText == "" {
		return p.errorf("%s(text) query must not be empty", pseudo)
	}
	if own {
		p.evals = append(p.evals, seleval.NewContainsOwnText(searchText))
	} else {
		p.evals = append(p.evals, seleval.NewContainsText(searchText))
	}
	return nil
}

func (p *queryParser) containsData() error {
	if err := p.tq.ConsumeSeq(":containsData"); err != nil {
		return p.errorf("%v", err)
	}
	raw, err := p.tq.ChompBalanced('(', ')')
	if err != nil {
		return p.errorf("%v", err)
	}
	searchText := Unescape(raw)
	if searchText == "" {
		return p.errorf(":containsData(text) query must not be empty")
	}
	p.evals = append(p.evals, seleval.NewContainsData(searchText))
	return nil
}

func (p *queryParser) matchesPattern(own bool) error {
	pseudo := ":matches"
	if own {
		pseudo = ":matchesOwn"
	}
	if err := p.tq.ConsumeSeq(pseudo); err != nil {
		return p.errorf("%v", err)
	}
	// regex arguments are taken verbatim, no unescaping
	pattern, err := p.tq.ChompBalanced('(', ')')
	if err != nil {
		return p.errorf("%v", err)
	}
	if pattern == "" {
		return p.errorf("%s(regex) query must not be empty", pseudo)
	}
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return p.errorf("invalid pattern %q: %v", pattern, err)
	}
	if own {
		p.evals = append(p.evals, seleval.NewMatchesOwn(re))
	} else {
		p.evals = append(p.evals, seleval.NewMatches(re))
	}
	return nil
}

func (p *queryParser) not() error {
	if err := p.tq.ConsumeSeq(":not"); err != nil {
		return p.errorf("%v", err)
	}
	subQuery, err := p.tq.ChompBalanced('(', ')')
	if err != nil {
		return p.errorf("%v", err)
	}
	if subQuery == "" {
		return p.errorf(":not(selector) subselect must not be empty")
	}
	inner, err := Parse(subQuery)
	if err != nil {
		return err
	}
	p.evals = append(p.evals, seleval.NewNot(inner))
	return nil
}

// cssNthChild parses an An+B argument: "odd", "even", a step-and-offset
// formula like "2n+1", or a bare offset like "5".
func (p *queryParser) cssNthChild(backwards bool, ofType bool) error {
	arg := utilfn.Normalize(p.tq.ChompTo(")"))
	var a, b int
	switch {
	case arg == "odd":
		a, b = 2, 1
	case arg == "even":
		a, b = 2, 0
	default:
		if m := nthStepOffsetRegex.FindStringSubmatch(arg); m != nil {
			if m[3] != "" {
				v, err := strconv.Atoi(strings.TrimPrefix(m[1], "+"))
				if err != nil {
					return p.errorf("could not parse nth-index %q: unexpected format", arg)
				}
				a = v
			} else {
				a = 1
			}
			if m[4] != "" {
				v, err := strconv.Atoi(m[6])
				if err != nil {
					return p.errorf("could not parse nth-index %q: unexpected format", arg)
				}
				if m[5] == "-" {
					v = -v
				}
				b = v
			}
		} else if m := nthOffsetRegex.FindStringSubmatch(arg); m != nil {
			v, err := strconv.Atoi(m[2])
			if err != nil {
				return p.errorf("could not parse nth-index %q: unexpected format", arg)
			}
			if m[1] == "-" {
				v = -v
			}
			a, b = 0, v
		} else {
			return p.errorf("could not parse nth-index %q: unexpected format", arg)
		}
	}

	switch {
	case ofType && backwards:
		p.evals = append(p.evals, seleval.NewIsNthLastOfType(a, b))
	case ofType:
		p.evals = append(p.evals, seleval.NewIsNthOfType(a, b))
	case backwards:
		p.evals = append(p.evals, seleval.NewIsNthLastChild(a, b))
	default:
		p.evals = append(p.evals, seleval.NewIsNthChild(a, b))
	}
	return nil
}

func (p *queryParser) consumeIndex() (int, error) {
	indexS := strings.TrimSpace(p.tq.ChompTo(")"))
	if !utilfn.IsNumeric(indexS) {
		return 0, p.errorf("index must be numeric")
	}
	idx, err := strconv.Atoi(indexS)
	if err != nil {
		return 0, p.errorf("index must be numeric")
	}
	return idx, nil
}
