package treebuilder

import (
	"testing"

	"github.com/basalt-labs/html5/dom"
	"github.com/basalt-labs/html5/tokenizer"
)

// newTBWithStack builds a TreeBuilder whose open-elements stack holds the
// given tags, outermost first, each appended as a child of the previous.
func newTBWithStack(t *testing.T, tagNames ...string) *TreeBuilder {
	t.Helper()
	tb := New(tokenizer.New(""))
	var parent dom.Node = tb.document
	for _, name := range tagNames {
		el := dom.NewElement(name)
		parent.AppendChild(el)
		tb.openElements = append(tb.openElements, el)
		parent = el
		if name == "head" {
			tb.headElement = el
		}
	}
	return tb
}

func startTag(name string) tokenizer.Token {
	return tokenizer.Token{Type: tokenizer.StartTag, Name: name}
}

func endTag(name string) tokenizer.Token {
	return tokenizer.Token{Type: tokenizer.EndTag, Name: name}
}

func TestInBodyTableEntersTableMode(t *testing.T) {
	tb := newTBWithStack(t, "html", "body")
	tb.mode = InBody

	tb.processInBody(startTag("table"))

	if tb.mode != InTable {
		t.Fatalf("mode = %v, want %v", tb.mode, InTable)
	}
	if cur := tb.currentElement(); cur == nil || cur.TagName != "table" {
		t.Fatalf("current element = %v, want table", cur)
	}
}

func TestInBodyHeadingClosesOpenHeading(t *testing.T) {
	tb := newTBWithStack(t, "html", "body", "h1")
	tb.mode = InBody

	tb.processInBody(startTag("h2"))

	if cur := tb.currentElement(); cur == nil || cur.TagName != "h2" {
		t.Fatalf("current element = %v, want h2", cur)
	}
	for _, el := range tb.openElements {
		if el.TagName == "h1" {
			t.Fatal("h1 must be popped before opening h2")
		}
	}
}

func TestInTableCharacterEntersTableText(t *testing.T) {
	tb := newTBWithStack(t, "html", "body", "table")
	tb.mode = InTable

	if !tb.processInTable(tokenizer.Token{Type: tokenizer.Character, Data: "X"}) {
		t.Fatal("character in table must be reprocessed")
	}
	if tb.mode != InTableText {
		t.Fatalf("mode = %v, want %v", tb.mode, InTableText)
	}
	if tb.tableTextOriginalMode == nil || *tb.tableTextOriginalMode != InTable {
		t.Fatalf("tableTextOriginalMode = %v, want InTable", tb.tableTextOriginalMode)
	}
}

func TestInTableTextFosterParentsBeforeTable(t *testing.T) {
	tb := newTBWithStack(t, "html", "body", "table")
	tb.mode = InTableText
	orig := InTable
	tb.tableTextOriginalMode = &orig
	tb.pendingTableText = []string{"X"}

	if !tb.processInTableText(endTag("table")) {
		t.Fatal("end tag must be reprocessed after the flush")
	}
	if tb.mode != InTable {
		t.Fatalf("mode = %v, want %v", tb.mode, InTable)
	}

	body := tb.document.Body()
	if body == nil {
		t.Fatal("missing body")
	}
	children := body.Children()
	if len(children) != 2 {
		t.Fatalf("body has %d children, want 2", len(children))
	}
	if txt, ok := children[0].(*dom.Text); !ok || txt.Data != "X" {
		t.Fatalf("first child = %#v, want Text(X) before the table", children[0])
	}
	if el, ok := children[1].(*dom.Element); !ok || el.TagName != "table" {
		t.Fatalf("second child = %#v, want the table", children[1])
	}
}

func TestNewFragmentPicksContextMode(t *testing.T) {
	tb := NewFragment(tokenizer.New(""), &FragmentContext{TagName: "tr", Namespace: "html"})
	if tb.mode != InRow || tb.originalMode != InRow {
		t.Fatalf("mode/originalMode = %v/%v, want InRow", tb.mode, tb.originalMode)
	}
}

func TestAfterBodyCommentAttachesToHTML(t *testing.T) {
	tb := newTBWithStack(t, "html")
	tb.mode = AfterBody

	tb.processAfterBody(tokenizer.Token{Type: tokenizer.Comment, Data: "hi"})

	html := tb.document.DocumentElement()
	if html == nil {
		t.Fatal("missing html element")
	}
	children := html.Children()
	if len(children) != 1 {
		t.Fatalf("html has %d children, want the comment only", len(children))
	}
	if c, ok := children[0].(*dom.Comment); !ok || c.Data != "hi" {
		t.Fatalf("child = %#v, want Comment(hi)", children[0])
	}
}

func TestTemplateModeStack(t *testing.T) {
	t.Run("start tag pushes", func(t *testing.T) {
		tb := newTBWithStack(t, "html", "head")
		tb.mode = InHead

		tb.processInHead(startTag("template"))

		if tb.mode != InTemplate {
			t.Fatalf("mode = %v, want InTemplate", tb.mode)
		}
		if len(tb.templateModes) != 1 || tb.templateModes[0] != InTemplate {
			t.Fatalf("templateModes = %#v", tb.templateModes)
		}
		if len(tb.activeFormatting) != 1 || !tb.activeFormatting[0].marker {
			t.Fatalf("activeFormatting = %#v, want a single marker", tb.activeFormatting)
		}
	})

	t.Run("end tag pops and clears to marker", func(t *testing.T) {
		tb := newTBWithStack(t, "html", "head", "template")
		tb.mode = InHead
		tb.templateModes = []InsertionMode{InTemplate}
		tb.activeFormatting = []formattingEntry{
			{name: "a"},
			{marker: true},
			{name: "b"},
		}

		tb.processInHead(endTag("template"))

		if tb.mode != InHead {
			t.Fatalf("mode = %v, want InHead", tb.mode)
		}
		if len(tb.templateModes) != 0 {
			t.Fatalf("templateModes = %#v, want empty", tb.templateModes)
		}
		if cur := tb.currentElement(); cur == nil || cur.TagName != "head" {
			t.Fatalf("current element = %v, want head", cur)
		}
		if len(tb.activeFormatting) != 1 || tb.activeFormatting[0].name != "a" {
			t.Fatalf("activeFormatting = %#v, want only the pre-marker entry", tb.activeFormatting)
		}
	})

	t.Run("table content retargets the template mode", func(t *testing.T) {
		tb := newTBWithStack(t, "html", "head", "template")
		tb.mode = InTemplate
		tb.templateModes = []InsertionMode{InTemplate}

		if !tb.processInTemplate(startTag("tr")) {
			t.Fatal("tr must be reprocessed in its table mode")
		}
		if tb.mode != InTableBody {
			t.Fatalf("mode = %v, want InTableBody", tb.mode)
		}
		if len(tb.templateModes) != 1 || tb.templateModes[0] != InTableBody {
			t.Fatalf("templateModes = %#v, want [InTableBody]", tb.templateModes)
		}
	})

	t.Run("EOF pops back out", func(t *testing.T) {
		tb := newTBWithStack(t, "html", "head", "template")
		tb.mode = InTemplate
		tb.templateModes = []InsertionMode{InTemplate}

		if !tb.processInTemplate(tokenizer.Token{Type: tokenizer.EOF}) {
			t.Fatal("EOF must be reprocessed after popping the template")
		}
		if tb.mode != InHead {
			t.Fatalf("mode = %v, want InHead", tb.mode)
		}
		if len(tb.templateModes) != 0 {
			t.Fatalf("templateModes = %#v, want empty", tb.templateModes)
		}
	})
}

func TestInSelectHRClosesOption(t *testing.T) {
	tb := newTBWithStack(t, "html", "body", "select", "option")
	tb.mode = InSelect

	tb.processInSelect(startTag("hr"))

	if cur := tb.currentElement(); cur == nil || cur.TagName != "select" {
		t.Fatalf("current element = %v, want select (hr is void)", cur)
	}
	selectEl := tb.openElements[len(tb.openElements)-1]
	children := selectEl.Children()
	if len(children) != 2 {
		t.Fatalf("select has %d children, want option and hr", len(children))
	}
	if el, ok := children[1].(*dom.Element); !ok || el.TagName != "hr" {
		t.Fatalf("second child = %#v, want <hr>", children[1])
	}
}
