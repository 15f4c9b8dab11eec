package treebuilder

import (
	"testing"

	"github.com/basalt-labs/html5/dom"
	"github.com/basalt-labs/html5/internal/constants"
	"github.com/basalt-labs/html5/tokenizer"
)

func TestScopeChecks(t *testing.T) {
	t.Run("integration point terminates default scope", func(t *testing.T) {
		tb := New(tokenizer.New(""))
		html := dom.NewElement("html")
		tb.document.AppendChild(html)
		tb.openElements = append(tb.openElements, html)

		fo := dom.NewElementNS("foreignObject", dom.NamespaceSVG)
		html.AppendChild(fo)
		tb.openElements = append(tb.openElements, fo)

		if tb.hasElementInScope("html", constants.DefaultScope) {
			t.Error("foreignObject must act as a default-scope boundary")
		}
		if !tb.hasElementInTableScope("html") {
			t.Error("table scope ignores integration points")
		}
	})

	t.Run("table terminates default scope", func(t *testing.T) {
		tb := newTBWithStack(t, "html", "body", "table")
		if tb.hasElementInScope("body", constants.DefaultScope) {
			t.Error("body must not be visible through a table boundary")
		}
	})
}

func TestGenerateImpliedEndTags(t *testing.T) {
	t.Run("pops the whole implied run", func(t *testing.T) {
		tb := newTBWithStack(t, "html", "body", "p", "li", "dt")
		tb.generateImpliedEndTags("")
		if cur := tb.currentElement(); cur == nil || cur.TagName != "body" {
			t.Fatalf("current element = %v, want body", cur)
		}
		if len(tb.openElements) != 2 {
			t.Fatalf("stack depth = %d, want 2", len(tb.openElements))
		}
	})

	t.Run("excepted tag stops the run", func(t *testing.T) {
		tb := newTBWithStack(t, "html", "body", "p", "li", "dt")
		tb.generateImpliedEndTags("p")
		if cur := tb.currentElement(); cur == nil || cur.TagName != "p" {
			t.Fatalf("current element = %v, want p", cur)
		}
		if len(tb.openElements) != 3 {
			t.Fatalf("stack depth = %d, want 3", len(tb.openElements))
		}
	})
}

func TestResetInsertionModeAppropriately(t *testing.T) {
	cases := []struct {
		stack []string
		want  InsertionMode
	}{
		{[]string{"html", "body", "table", "tbody", "tr", "td"}, InCell},
		{[]string{"html", "body", "table", "colgroup"}, InColumnGroup},
		{[]string{"html", "body", "table", "tbody", "tr"}, InRow},
		{[]string{"html", "body", "select"}, InSelect},
		{[]string{"html", "body"}, InBody},
	}
	for _, tc := range cases {
		tb := newTBWithStack(t, tc.stack...)
		tb.mode = Initial
		tb.resetInsertionModeAppropriately()
		if tb.mode != tc.want {
			t.Errorf("stack %v: mode = %v, want %v", tc.stack, tb.mode, tc.want)
		}
	}

	t.Run("template uses the template mode stack", func(t *testing.T) {
		tb := newTBWithStack(t, "html", "body", "template")
		tb.templateModes = []InsertionMode{InTemplate}
		tb.mode = Initial
		tb.resetInsertionModeAppropriately()
		if tb.mode != InTemplate {
			t.Fatalf("mode = %v, want InTemplate", tb.mode)
		}
	})
}

func TestActiveFormattingMarkers(t *testing.T) {
	tb := New(tokenizer.New(""))
	tb.activeFormatting = []formattingEntry{
		{name: "a"},
		{marker: true},
		{name: "b"},
	}

	tb.clearActiveFormattingUpToMarker()
	if len(tb.activeFormatting) != 1 || tb.activeFormatting[0].name != "a" {
		t.Fatalf("clear-to-marker left %#v", tb.activeFormatting)
	}

	tb.pushFormattingMarker()
	if len(tb.activeFormatting) != 2 || !tb.activeFormatting[1].marker {
		t.Fatalf("push marker left %#v", tb.activeFormatting)
	}
}

func TestDoctypeQuirksDecisions(t *testing.T) {
	feed := func(tok tokenizer.Token) dom.QuirksMode {
		tb := New(tokenizer.New(""))
		tb.ProcessToken(tok)
		return tb.document.QuirksMode
	}

	if got := feed(tokenizer.Token{Type: tokenizer.StartTag, Name: "html"}); got != dom.Quirks {
		t.Errorf("no doctype at all: %v, want Quirks", got)
	}
	if got := feed(tokenizer.Token{Type: tokenizer.DOCTYPE, Name: "html"}); got != dom.NoQuirks {
		t.Errorf("plain html doctype: %v, want NoQuirks", got)
	}
	if got := feed(tokenizer.Token{Type: tokenizer.DOCTYPE, Name: "nothtml"}); got != dom.Quirks {
		t.Errorf("non-html doctype name: %v, want Quirks", got)
	}

	xhtml := "-//W3C//DTD XHTML 1.0 Transitional//"
	if got := feed(tokenizer.Token{Type: tokenizer.DOCTYPE, Name: "html", PublicID: &xhtml}); got != dom.LimitedQuirks {
		t.Errorf("XHTML transitional: %v, want LimitedQuirks", got)
	}

	// HTML 4.01 public ids are quirky without a system id, limited-quirks
	// with one.
	html4 := "-//W3C//DTD HTML 4.01 Transitional//"
	if got := feed(tokenizer.Token{Type: tokenizer.DOCTYPE, Name: "html", PublicID: &html4}); got != dom.Quirks {
		t.Errorf("HTML 4.01 without system id: %v, want Quirks", got)
	}
	sys := "http://example.com/strict.dtd"
	if got := feed(tokenizer.Token{Type: tokenizer.DOCTYPE, Name: "html", PublicID: &html4, SystemID: &sys}); got != dom.LimitedQuirks {
		t.Errorf("HTML 4.01 with system id: %v, want LimitedQuirks", got)
	}
}
