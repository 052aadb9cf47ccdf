// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package selmatch

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const page = `<html><body>
<div id="main" class="main">
  <a id="home" href="/">home</a>
  <a id="docs" href="/docs" class="nav">docs</a>
  <a id="ext" href="https://example.com" class="ext">elsewhere</a>
</div>
<ul id="list">
  <li id="li1">one</li>
  <li id="li2">two</li>
  <li id="li3">three</li>
</ul>
</body></html>`

func parsePage(t *testing.T) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

// matchingIDs walks the document and collects the ids of elements the
// evaluator accepts.
func matchingIDs(doc *html.Node, ev Evaluator) []string {
	var ids []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && ev.Match(doc, n) {
			for _, a := range n.Attr {
				if a.Key == "id" {
					ids = append(ids, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return ids
}

func TestCompileAndMatch(t *testing.T) {
	doc := parsePage(t)

	tests := []struct {
		query    string
		expected []string
	}{
		{`a[href^="/"]`, []string{"home", "docs"}},
		{`a:not(.ext)`, []string{"home", "docs"}},
		{`div.main > a`, []string{"home", "docs", "ext"}},
		{`ul li:nth-child(2n+1)`, []string{"li1", "li3"}},
		{`li:contains(two)`, []string{"li2"}},
		{`#list li:last-child`, []string{"li3"}},
		{`a.nav, li:eq(0)`, []string{"docs", "li1"}},
		{`div:has(a.ext)`, []string{"main"}},
		{`a + a`, []string{"docs", "ext"}},
		{`li#li1 ~ li`, []string{"li2", "li3"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			ev, err := Compile(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, matchingIDs(doc, ev))
		})
	}
}

func TestCompileWildcardNamespace(t *testing.T) {
	const svgPage = `<html><body>
<p id="plain">text</p>
<svg id="pic"><circle id="dot" r="1"/></svg>
</body></html>`
	doc, err := html.Parse(strings.NewReader(svgPage))
	require.NoError(t, err)

	// "*|p" matches a plain <p> with no namespace at all
	assert.Equal(t, []string{"plain"}, matchingIDs(doc, MustCompile("*|p")))
	// and a namespaced element by its local name
	assert.Equal(t, []string{"dot"}, matchingIDs(doc, MustCompile("*|circle")))
	assert.Empty(t, matchingIDs(doc, MustCompile("*|rect")))
}

func TestCompileCombinatorLed(t *testing.T) {
	doc := parsePage(t)
	var list *html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "ul" {
			list = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(doc)
	require.NotNil(t, list)

	// "> li" anchors at the node the selector is applied to
	ev := MustCompile("> li")
	var count int
	for c := list.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && ev.Match(list, c) {
			count++
		}
	}
	assert.Equal(t, 3, count)
}

func TestCompileError(t *testing.T) {
	_, err := Compile("p:unknown")
	require.Error(t, err)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "p:unknown", perr.Query)
}

func TestMustCompilePanics(t *testing.T) {
	assert.Panics(t, func() { MustCompile("p:unknown") })
	assert.NotPanics(t, func() { MustCompile("p.ok") })
}

func TestUnescape(t *testing.T) {
	assert.Equal(t, "foo)bar", Unescape(`foo\)bar`))
	assert.Equal(t, "plain", Unescape("plain"))
}
