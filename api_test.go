package html5

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/basalt-labs/html5/dom"
	htmlerrors "github.com/basalt-labs/html5/errors"
	"github.com/basalt-labs/html5/internal/testutil"
)

func mustParse(t *testing.T, input string) *dom.Document {
	t.Helper()
	doc, err := Parse(input)
	require.NoError(t, err)
	require.NotNil(t, doc)
	return doc
}

// treeShape renders the document in the html5lib test format, which makes
// structural assertions readable.
func treeShape(t *testing.T, input string) string {
	t.Helper()
	return testutil.SerializeHTML5LibTree(mustParse(t, input))
}

func TestParseBasics(t *testing.T) {
	doc := mustParse(t, "<html><body><p>Hello</p></body></html>")
	root := doc.DocumentElement()
	require.NotNil(t, root)
	require.Equal(t, "html", root.TagName)
	require.Equal(t, "Hello", root.Text())

	t.Run("implied shell", func(t *testing.T) {
		doc := mustParse(t, "just text")
		require.NotNil(t, doc.Head())
		require.NotNil(t, doc.Body())
		require.Equal(t, "just text", doc.Body().Text())
	})

	t.Run("doctype", func(t *testing.T) {
		doc := mustParse(t, "<!DOCTYPE html><html></html>")
		require.NotNil(t, doc.Doctype)
		require.Equal(t, "html", doc.Doctype.Name)
		require.Equal(t, dom.NoQuirks, doc.QuirksMode)
	})

	t.Run("missing doctype triggers quirks", func(t *testing.T) {
		doc := mustParse(t, "<html><body></body></html>")
		require.Equal(t, dom.Quirks, doc.QuirksMode)
	})

	t.Run("title", func(t *testing.T) {
		doc := mustParse(t, "<!DOCTYPE html><title>My Page</title>")
		require.Equal(t, "My Page", doc.Title())
	})
}

func TestParagraphAutoClose(t *testing.T) {
	// A second <p> implicitly closes the first.
	shape := treeShape(t, "<!DOCTYPE html><p>One<p>Two")
	require.Contains(t, shape, "|     <p>\n|       \"One\"\n|     <p>\n|       \"Two\"")
}

func TestAdoptionAgencyScenario(t *testing.T) {
	// <b>1<p>2</b>3 — the formatting element is cloned into the paragraph.
	doc := mustParse(t, "<!DOCTYPE html><b>1<p>2</b>3")
	body := doc.Body()
	require.NotNil(t, body)

	kids := body.Children()
	require.Len(t, kids, 2)

	b, ok := kids[0].(*dom.Element)
	require.True(t, ok)
	require.Equal(t, "b", b.TagName)
	require.Equal(t, "1", b.Text())

	p, ok := kids[1].(*dom.Element)
	require.True(t, ok)
	require.Equal(t, "p", p.TagName)
	require.Equal(t, "23", p.Text())

	innerB, ok := p.Children()[0].(*dom.Element)
	require.True(t, ok)
	require.Equal(t, "b", innerB.TagName)
	require.Equal(t, "2", innerB.Text())
}

func TestTableConstruction(t *testing.T) {
	t.Run("tbody is implied", func(t *testing.T) {
		shape := treeShape(t, "<!DOCTYPE html><table><tr><td>x<div>y</div></td></tr></table>")
		require.Contains(t, shape, "<table>")
		require.Contains(t, shape, "<tbody>")
		require.Contains(t, shape, "<tr>")
		require.Contains(t, shape, "<td>")
		// The div belongs inside the cell, not foster-parented.
		idx := strings.Index(shape, "<td>")
		require.Greater(t, strings.Index(shape, "<div>"), idx)
	})

	t.Run("stray text is foster-parented", func(t *testing.T) {
		doc := mustParse(t, "<!DOCTYPE html><table>oops<tr><td>x</td></tr></table>")
		body := doc.Body()
		first := body.Children()[0]
		text, ok := first.(*dom.Text)
		require.True(t, ok, "text must land before the table")
		require.Equal(t, "oops", text.Data)
	})
}

func TestSelectConstruction(t *testing.T) {
	// <optgroup> closes an open <option>; </select> closes everything.
	shape := treeShape(t, "<!DOCTYPE html><select><option>A<optgroup>B</select>")
	require.Contains(t, shape, "|       <option>")
	require.Contains(t, shape, "|       <optgroup>")
	require.Greater(t, strings.Index(shape, "<optgroup>"), strings.Index(shape, "<option>"))
}

func TestParseFragmentContexts(t *testing.T) {
	t.Run("td in tr context", func(t *testing.T) {
		nodes, err := ParseFragment("<td>Cell</td>", "tr")
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		require.Equal(t, "td", nodes[0].TagName)
	})

	t.Run("td in div context is stripped", func(t *testing.T) {
		nodes, err := ParseFragment("<td>Cell</td>", "div")
		require.NoError(t, err)
		for _, n := range nodes {
			require.NotEqual(t, "td", n.TagName)
		}
	})

	t.Run("svg path context keeps font foreign", func(t *testing.T) {
		cfg := newConfig(WithFragmentNS("path", "svg"))
		nodes, err := parseFragment(`<font color=""></font>X`, cfg)
		require.NoError(t, err)
		require.NotEmpty(t, nodes)
		font := nodes[0]
		require.Equal(t, "font", font.TagName)
		require.Equal(t, dom.NamespaceSVG, font.Namespace)
		require.True(t, font.HasAttr("color"))
	})
}

func TestParseBytesEncodings(t *testing.T) {
	t.Run("utf-8 BOM", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("<!DOCTYPE html><p>hé</p>")...)
		doc, err := ParseBytes(data)
		require.NoError(t, err)
		require.Equal(t, "hé", doc.Body().Text())
		require.Equal(t, "UTF-8", doc.Encoding)
	})

	t.Run("windows-1252 fallback", func(t *testing.T) {
		doc, err := ParseBytes([]byte{'<', 'p', '>', 0x93, 'q', 0x94})
		require.NoError(t, err)
		require.Equal(t, "“q”", doc.Body().Text())
		require.Equal(t, "windows-1252", doc.Encoding)
	})

	t.Run("meta charset", func(t *testing.T) {
		doc, err := ParseBytes([]byte(`<!DOCTYPE html><meta charset="utf-8"><p>ok</p>`))
		require.NoError(t, err)
		require.Equal(t, "UTF-8", doc.Encoding)
	})

	t.Run("explicit hint", func(t *testing.T) {
		doc, err := ParseBytes([]byte("<p>x</p>"), WithEncoding("utf-8"))
		require.NoError(t, err)
		require.Equal(t, "UTF-8", doc.Encoding)
	})
}

func TestParseEntities(t *testing.T) {
	cases := []struct{ in, want string }{
		{"<p>&amp;</p>", "&"},
		{"<p>&lt;tag&gt;</p>", "<tag>"},
		{"<p>&copy; 2025</p>", "© 2025"},
		{"<p>&#65;</p>", "A"},
		{"<p>&#x48;</p>", "H"},
		{"<p>&NotEqualTilde;</p>", "≂̸"},
		{"<p>&amp</p>", "&"},          // legacy, no semicolon
		{"<p>&noti;</p>", "¬i;"},      // longest legacy prefix wins
		{"<p>&bogus;</p>", "&bogus;"}, // unknown stays literal
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			doc := mustParse(t, "<!DOCTYPE html>"+tc.in)
			require.Equal(t, tc.want, doc.Body().Text())
		})
	}
}

func TestParseAttributes(t *testing.T) {
	t.Run("first duplicate wins", func(t *testing.T) {
		doc := mustParse(t, `<!DOCTYPE html><p id="a" id="b" class="c">x</p>`)
		p := doc.Body().Children()[0].(*dom.Element)
		require.Equal(t, "a", p.Attr("id"))
		require.Equal(t, "c", p.Attr("class"))
		require.Len(t, p.Attributes.All(), 2)
	})

	t.Run("names are lowercased", func(t *testing.T) {
		doc := mustParse(t, `<!DOCTYPE html><p ID="a" DATA-X="1">x</p>`)
		p := doc.Body().Children()[0].(*dom.Element)
		require.Equal(t, "a", p.Attr("id"))
		require.Equal(t, "1", p.Attr("data-x"))
	})

	t.Run("empty and unquoted values", func(t *testing.T) {
		doc := mustParse(t, `<!DOCTYPE html><input disabled type=text>`)
		input := doc.Body().Children()[0].(*dom.Element)
		require.True(t, input.HasAttr("disabled"))
		require.Equal(t, "", input.Attr("disabled"))
		require.Equal(t, "text", input.Attr("type"))
	})
}

func TestParseErrorRecovery(t *testing.T) {
	// None of these may panic or fail; the parser always yields a tree.
	inputs := []string{
		"",
		"<",
		"<p",
		"</nope>",
		"<b><i>misnested</b></i>",
		"<table><table><table>",
		"<!-- unterminated",
		"<div" + strings.Repeat(">", 50),
		string([]byte{0x00, 0xFF, 0xFE}),
	}
	for _, in := range inputs {
		doc, err := Parse(in)
		require.NoError(t, err, "input %q", in)
		require.NotNil(t, doc, "input %q", in)
	}
}

func TestParseDeterministic(t *testing.T) {
	const in = "<!DOCTYPE html><b>1<p>2</b>3<table><tr><td>x"
	require.Equal(t, treeShape(t, in), treeShape(t, in))
}

func TestParseErrorCollection(t *testing.T) {
	_, err := Parse("<p foo=bar foo=baz>x", WithCollectErrors())
	require.Error(t, err)

	var errs htmlerrors.ParseErrors
	require.ErrorAs(t, err, &errs)
	require.NotEmpty(t, errs)
	for _, e := range errs {
		require.NotEmpty(t, e.Code)
	}
}

func TestParseStrictMode(t *testing.T) {
	_, err := Parse("<p foo=bar foo=baz>x", WithStrictMode())
	require.Error(t, err)

	var perr *htmlerrors.ParseError
	require.ErrorAs(t, err, &perr)

	doc, err := Parse("<!DOCTYPE html><p>clean</p>", WithStrictMode())
	require.NoError(t, err)
	require.NotNil(t, doc)
}

func TestParseComments(t *testing.T) {
	doc := mustParse(t, "<!DOCTYPE html><!-- top --><p>x</p><!-- bottom -->")
	var comments []string
	var walk func(dom.Node)
	walk = func(n dom.Node) {
		if c, ok := n.(*dom.Comment); ok {
			comments = append(comments, c.Data)
		}
		for _, child := range n.Children() {
			walk(child)
		}
	}
	walk(doc)
	require.Contains(t, comments, " top ")
	require.Contains(t, comments, " bottom ")
}

func TestForeignContent(t *testing.T) {
	t.Run("svg subtree", func(t *testing.T) {
		doc := mustParse(t, `<!DOCTYPE html><svg><circle r="1"/></svg>`)
		svg := doc.Body().Children()[0].(*dom.Element)
		require.Equal(t, "svg", svg.TagName)
		require.Equal(t, dom.NamespaceSVG, svg.Namespace)
		circle := svg.Children()[0].(*dom.Element)
		require.Equal(t, "circle", circle.TagName)
		require.Equal(t, dom.NamespaceSVG, circle.Namespace)
	})

	t.Run("case-adjusted svg names", func(t *testing.T) {
		doc := mustParse(t, "<!DOCTYPE html><svg><foreignobject></foreignobject></svg>")
		svg := doc.Body().Children()[0].(*dom.Element)
		fo := svg.Children()[0].(*dom.Element)
		require.Equal(t, "foreignObject", fo.TagName)
	})

	t.Run("breakout back to html", func(t *testing.T) {
		shape := treeShape(t, "<!DOCTYPE html><svg><p>html again")
		require.Contains(t, shape, "<svg svg>")
		require.Contains(t, shape, "<p>")
	})
}
