package treebuilder

import "testing"

func TestHTMLFragmentContext(t *testing.T) {
	ctx := HTMLFragmentContext("div")
	if ctx.TagName != "div" || ctx.Namespace != "html" {
		t.Fatalf("HTMLFragmentContext = %#v", ctx)
	}
	if ctx.IsForeign() {
		t.Error("html context is not foreign")
	}
}

func TestFragmentContextIsForeign(t *testing.T) {
	for ns, foreign := range map[string]bool{
		"html":   false,
		"svg":    true,
		"mathml": true,
	} {
		ctx := &FragmentContext{TagName: "x", Namespace: ns}
		if got := ctx.IsForeign(); got != foreign {
			t.Errorf("namespace %q: IsForeign() = %v, want %v", ns, got, foreign)
		}
	}
}
