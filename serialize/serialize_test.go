package serialize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/basalt-labs/html5/dom"
)

func elem(tag string, children ...dom.Node) *dom.Element {
	e := dom.NewElement(tag)
	for _, c := range children {
		e.AppendChild(c)
	}
	return e
}

func text(s string) *dom.Text { return dom.NewText(s) }

func TestToHTMLEscaping(t *testing.T) {
	t.Run("text content", func(t *testing.T) {
		out := ToHTML(elem("p", text(`a < b & c > d`)), DefaultOptions())
		require.Equal(t, "<p>a &lt; b &amp; c &gt; d</p>", out)
	})

	t.Run("attribute values", func(t *testing.T) {
		e := elem("a")
		e.SetAttr("href", `/?q="x"&y=1`)
		out := ToHTML(e, DefaultOptions())
		require.Equal(t, `<a href="/?q=&quot;x&quot;&amp;y=1"></a>`, out)
	})
}

func TestToHTMLVoidElements(t *testing.T) {
	e := elem("br")
	require.Equal(t, "<br>", ToHTML(e, DefaultOptions()))

	img := elem("img")
	img.SetAttr("src", "x.png")
	require.Equal(t, `<img src="x.png">`, ToHTML(img, DefaultOptions()))
}

func TestToHTMLDoctype(t *testing.T) {
	doc := dom.NewDocument()
	doc.Doctype = dom.NewDocumentType("html", "", "")
	doc.AppendChild(elem("html"))
	require.Equal(t, "<!DOCTYPE html><html></html>", ToHTML(doc, DefaultOptions()))

	t.Run("public and system ids", func(t *testing.T) {
		dt := dom.NewDocumentType("html", "-//W3C//DTD HTML 4.01//EN", "http://www.w3.org/TR/html4/strict.dtd")
		var sb strings.Builder
		serializeDoctype(&sb, dt)
		require.Equal(t,
			`<!DOCTYPE html PUBLIC "-//W3C//DTD HTML 4.01//EN" "http://www.w3.org/TR/html4/strict.dtd">`,
			sb.String())
	})

	t.Run("system id only", func(t *testing.T) {
		dt := dom.NewDocumentType("html", "", "about:legacy-compat")
		var sb strings.Builder
		serializeDoctype(&sb, dt)
		require.Equal(t, `<!DOCTYPE html SYSTEM "about:legacy-compat">`, sb.String())
	})
}

func TestToHTMLPretty(t *testing.T) {
	opts := Options{Pretty: true, IndentSize: 2}

	t.Run("block children are indented", func(t *testing.T) {
		root := elem("div", elem("p", text("one")), elem("p", text("two")))
		out := ToHTML(root, opts)
		require.Equal(t, "<div>\n  <p>one</p>\n  <p>two</p>\n</div>", out)
	})

	t.Run("inline children stay on one line", func(t *testing.T) {
		root := elem("p", text("see "), elem("b", text("this")), text(" now"))
		out := ToHTML(root, opts)
		require.Equal(t, "<p>see <b>this</b> now</p>", out)
	})

	t.Run("whitespace-only text nodes are dropped", func(t *testing.T) {
		root := elem("div", text("\n  "), elem("p", text("x")), text("\n"))
		out := ToHTML(root, opts)
		require.NotContains(t, out, "\n  \n")
		require.Contains(t, out, "<p>x</p>")
	})
}

func TestCollapseWhitespace(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"plain", "plain"},
		{"a  b\t\nc", "a b c"},
		{"  lead", " lead"},
		{"trail  ", "trail "},
		{"   ", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, collapseWhitespace(tc.in), "input %q", tc.in)
	}
}

func TestIsWhitespaceOnly(t *testing.T) {
	require.True(t, isWhitespaceOnly(" \t\r\n\f"))
	require.True(t, isWhitespaceOnly(""))
	require.False(t, isWhitespaceOnly(" x "))
}

func TestVoidAndBlockTables(t *testing.T) {
	require.True(t, isVoidElement("br"))
	require.True(t, isVoidElement("meta"))
	require.False(t, isVoidElement("div"))

	require.True(t, isBlockElement("section"))
	require.False(t, isBlockElement("span"))
}

func TestToMarkdownBasics(t *testing.T) {
	t.Run("headings", func(t *testing.T) {
		root := elem("body", elem("h1", text("Title")), elem("h3", text("Sub")))
		out := ToMarkdown(root)
		require.Contains(t, out, "# Title")
		require.Contains(t, out, "### Sub")
	})

	t.Run("emphasis and code", func(t *testing.T) {
		root := elem("p", elem("strong", text("bold")), elem("em", text("it")), elem("code", text("x()")))
		out := ToMarkdown(root)
		require.Contains(t, out, "**bold**")
		require.Contains(t, out, "*it*")
		require.Contains(t, out, "`x()`")
	})

	t.Run("link and image", func(t *testing.T) {
		a := elem("a", text("Example"))
		a.SetAttr("href", "https://example.com")
		img := elem("img")
		img.SetAttr("src", "pic.png")
		img.SetAttr("alt", "Pic")
		out := ToMarkdown(elem("p", a, img))
		require.Contains(t, out, "[Example](https://example.com)")
		require.Contains(t, out, "![Pic](pic.png)")
	})

	t.Run("head content is dropped", func(t *testing.T) {
		root := elem("html",
			elem("head", elem("title", text("ignore")), elem("style", text("p{}"))),
			elem("body", elem("p", text("keep"))))
		out := ToMarkdown(root)
		require.NotContains(t, out, "ignore")
		require.NotContains(t, out, "p{}")
		require.Contains(t, out, "keep")
	})
}

func TestToMarkdownLists(t *testing.T) {
	ul := elem("ul", elem("li", text("one")), elem("li", text("two")))
	out := ToMarkdown(ul)
	require.Contains(t, out, "- one")
	require.Contains(t, out, "- two")

	ol := elem("ol", elem("li", text("first")), elem("li", text("second")))
	out = ToMarkdown(ol)
	require.Contains(t, out, "1. first")
	require.Contains(t, out, "2. second")

	t.Run("nested list indents", func(t *testing.T) {
		inner := elem("ul", elem("li", text("sub")))
		root := elem("ul", elem("li", text("top"), inner))
		out := ToMarkdown(root)
		require.Contains(t, out, "- top")
		require.Contains(t, out, "  - sub")
	})
}

func TestToMarkdownTable(t *testing.T) {
	table := elem("table",
		elem("thead", elem("tr", elem("th", text("Name")), elem("th", text("Age")))),
		elem("tbody",
			elem("tr", elem("td", text("Alice")), elem("td", text("30"))),
			elem("tr", elem("td", text("Bob")), elem("td", text("25")))))

	out := ToMarkdown(table)
	require.Contains(t, out, "| Name | Age |")
	require.Contains(t, out, "| --- | --- |")
	require.Contains(t, out, "| Alice | 30 |")
	require.Contains(t, out, "| Bob | 25 |")
}

func TestToMarkdownTableBareRows(t *testing.T) {
	// Rows directly under <table>, no thead/tbody wrappers, and a ragged
	// second row that must be padded.
	table := elem("table",
		elem("tr", elem("th", text("A")), elem("th", text("B"))),
		elem("tr", elem("td", text("1"))))

	out := ToMarkdown(table)
	require.Contains(t, out, "| A | B |")
	require.Contains(t, out, "| 1 |  |")
}

func TestToMarkdownBlockquoteAndPre(t *testing.T) {
	out := ToMarkdown(elem("blockquote", text("wise words")))
	require.Contains(t, out, "> wise words")

	out = ToMarkdown(elem("pre", text("x := 1")))
	require.Contains(t, out, "```\nx := 1\n```")
}
