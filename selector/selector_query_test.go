package selector_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/basalt-labs/html5"
	"github.com/basalt-labs/html5/dom"
	htmlerrors "github.com/basalt-labs/html5/errors"
	"github.com/basalt-labs/html5/selector"
)

const fixtureHTML = `<!DOCTYPE html>
<html><head><title>Fixture</title></head>
<body>
<div id="main" class="container active">
<p id="intro" class="intro">First <span id="hl" class="highlight">mark</span></p>
<p id="second" class="content" data-lang="en-US">Second</p>
</div>
<div id="sidebar" class="container"><ul id="list"><li id="li1">one</li><li id="li2" class="even">two</li><li id="li3">three</li><li id="li4" class="even">four</li><li id="li5">five</li></ul></div>
<div id="hollow" class="empty"></div>
<form id="form"><input id="name-input" type="text" name="user"><input id="cb" type="checkbox" checked></form>
</body></html>`

func fixtureRoot(t *testing.T) *dom.Element {
	t.Helper()
	doc, err := html5.Parse(fixtureHTML)
	require.NoError(t, err)
	root := doc.DocumentElement()
	require.NotNil(t, root)
	return root
}

// queryIDs runs the selector from the document root and returns the sorted
// ids of the matched elements.
func queryIDs(t *testing.T, sel string) []string {
	t.Helper()
	matches, err := selector.Match(fixtureRoot(t), sel)
	require.NoError(t, err, "selector %q", sel)
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID())
	}
	sort.Strings(ids)
	return ids
}

func TestMatchSimpleSelectors(t *testing.T) {
	cases := []struct {
		sel  string
		want []string
	}{
		{"p", []string{"intro", "second"}},
		{"#sidebar", []string{"sidebar"}},
		{".container", []string{"main", "sidebar"}},
		{".active", []string{"main"}},
		{"span.highlight", []string{"hl"}},
		{"div.container.active", []string{"main"}},
		{"p#intro.intro", []string{"intro"}},
	}
	for _, tc := range cases {
		t.Run(tc.sel, func(t *testing.T) {
			require.Equal(t, tc.want, queryIDs(t, tc.sel))
		})
	}
}

func TestMatchUniversal(t *testing.T) {
	matches, err := selector.Match(fixtureRoot(t), "*")
	require.NoError(t, err)
	// Everything under html, html itself excluded.
	require.Greater(t, len(matches), 10)
	for _, m := range matches {
		require.NotEqual(t, "html", m.TagName)
	}
}

func TestMatchAttributeSelectors(t *testing.T) {
	cases := []struct {
		sel  string
		want []string
	}{
		{"[data-lang]", []string{"second"}},
		{`[type="checkbox"]`, []string{"cb"}},
		{`[class~="active"]`, []string{"main"}},
		{`[data-lang|="en"]`, []string{"second"}},
		{`[id^="li"]`, []string{"li1", "li2", "li3", "li4", "li5"}},
		{`[id$="input"]`, []string{"name-input"}},
		{`[id*="side"]`, []string{"sidebar"}},
		{`input[name="user"]`, []string{"name-input"}},
	}
	for _, tc := range cases {
		t.Run(tc.sel, func(t *testing.T) {
			require.Equal(t, tc.want, queryIDs(t, tc.sel))
		})
	}
}

func TestMatchCombinators(t *testing.T) {
	cases := []struct {
		sel  string
		want []string
	}{
		{"div > p", []string{"intro", "second"}},
		{"#main span", []string{"hl"}},
		{"ul li", []string{"li1", "li2", "li3", "li4", "li5"}},
		{"p + p", []string{"second"}},
		{"#li1 ~ li", []string{"li2", "li3", "li4", "li5"}},
		{"#li2 + li", []string{"li3"}},
		{"body > div > ul > li.even", []string{"li2", "li4"}},
	}
	for _, tc := range cases {
		t.Run(tc.sel, func(t *testing.T) {
			require.Equal(t, tc.want, queryIDs(t, tc.sel))
		})
	}
}

func TestMatchSelectorLists(t *testing.T) {
	require.Equal(t, []string{"cb", "hl"}, queryIDs(t, "#hl, #cb"))
	require.Equal(t, []string{"intro", "second", "sidebar"}, queryIDs(t, "p, #sidebar"))
}

func TestMatchStructuralPseudos(t *testing.T) {
	cases := []struct {
		sel  string
		want []string
	}{
		{"li:first-child", []string{"li1"}},
		{"li:last-child", []string{"li5"}},
		{"ul:only-child", []string{"list"}},
		{"li:nth-child(2)", []string{"li2"}},
		{"li:nth-child(odd)", []string{"li1", "li3", "li5"}},
		{"li:nth-child(even)", []string{"li2", "li4"}},
		{"li:nth-child(2n+1)", []string{"li1", "li3", "li5"}},
		{"li:nth-last-child(1)", []string{"li5"}},
		{"li:nth-of-type(3)", []string{"li3"}},
		{"p:first-of-type", []string{"intro"}},
		{"p:last-of-type", []string{"second"}},
		{"div:empty", []string{"hollow"}},
		{"li:not(.even)", []string{"li1", "li3", "li5"}},
		{"div:not(.container)", []string{"hollow"}},
	}
	for _, tc := range cases {
		t.Run(tc.sel, func(t *testing.T) {
			require.Equal(t, tc.want, queryIDs(t, tc.sel))
		})
	}
}

func TestRootPseudo(t *testing.T) {
	root := fixtureRoot(t)
	sel, err := selector.Parse(":root")
	require.NoError(t, err)
	require.True(t, sel.Match(root), "html should match :root")

	// html's children are head, the "\n" text after </head>, then body.
	body := root.Children()[2].(*dom.Element)
	require.Equal(t, "body", body.TagName)
	require.False(t, sel.Match(body))
}

func TestMatchFirst(t *testing.T) {
	root := fixtureRoot(t)

	first, err := selector.MatchFirst(root, "div")
	require.NoError(t, err)
	require.NotNil(t, first)
	require.Equal(t, "main", first.ID(), "document order decides first match")

	missing, err := selector.MatchFirst(root, ".does-not-exist")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestParseRoundTrip(t *testing.T) {
	for _, raw := range []string{"div", "*", "#x", ".y", "a[href^='http']", "ul > li:nth-child(2n)"} {
		sel, err := selector.Parse(raw)
		require.NoError(t, err, raw)
		require.Equal(t, raw, sel.String())
	}
}

func TestParseErrors(t *testing.T) {
	for _, raw := range []string{
		"",
		"div >",
		"[unclosed",
		"[attr=]",
		"..double",
		"p::",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := selector.Parse(raw)
			require.Error(t, err, "selector %q should not parse", raw)
			var selErr *htmlerrors.SelectorError
			require.ErrorAs(t, err, &selErr)
		})
	}
}

func TestUnknownPseudoMatchesNothing(t *testing.T) {
	// Pseudo-classes we don't implement parse fine but never match.
	sel, err := selector.Parse("p:hover")
	if err != nil {
		// Rejecting at parse time is equally acceptable.
		return
	}
	require.False(t, sel.Match(fixtureRoot(t)))
}

func TestQueryThroughDOM(t *testing.T) {
	// Element.Query routes through the hook this package registers in
	// its init; exercise the whole path.
	doc, err := html5.Parse(fixtureHTML)
	require.NoError(t, err)

	els, err := doc.Query("li.even")
	require.NoError(t, err)
	require.Len(t, els, 2)

	first, err := doc.QueryFirst("#hl")
	require.NoError(t, err)
	require.NotNil(t, first)
	require.Equal(t, "span", first.TagName)
}
