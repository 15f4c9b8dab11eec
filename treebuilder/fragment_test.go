package treebuilder

import (
	"testing"

	"github.com/basalt-labs/html5/dom"
	"github.com/basalt-labs/html5/tokenizer"
)

func TestNewFragmentForeignContextElement(t *testing.T) {
	cases := []struct {
		contextNS string
		tag       string
		wantNS    string
	}{
		{"svg", "foreignObject", dom.NamespaceSVG},
		{"mathml", "mi", dom.NamespaceMathML},
	}
	for _, tc := range cases {
		t.Run(tc.contextNS+" "+tc.tag, func(t *testing.T) {
			tb := NewFragment(tokenizer.New(""), &FragmentContext{TagName: tc.tag, Namespace: tc.contextNS})
			ctx := tb.fragmentElement
			if ctx == nil {
				t.Fatal("missing fragment context element")
			}
			if ctx.Namespace != tc.wantNS {
				t.Errorf("context namespace = %q, want %q", ctx.Namespace, tc.wantNS)
			}
			if ctx.TagName != tc.tag {
				t.Errorf("context tag = %q, want %q", ctx.TagName, tc.tag)
			}
		})
	}
}

func TestNewFragmentTokenizerState(t *testing.T) {
	// A raw-text context element must put the tokenizer into the matching
	// content state, since the context start tag is never tokenized.
	tok := tokenizer.New("alert(1)</script>done")
	NewFragment(tok, HTMLFragmentContext("script"))

	first := tok.Next()
	if first.Type != tokenizer.Character || first.Data != "alert(1)" {
		t.Fatalf("first token = %#v, want script text", first)
	}
}
