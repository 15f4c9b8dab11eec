package dom

import "testing"

func TestTreeMutations(t *testing.T) {
	t.Run("InsertBefore sets parents and order", func(t *testing.T) {
		doc := NewDocument()
		html := NewElement("html")
		head := NewElement("head")
		body := NewElement("body")

		doc.AppendChild(html)
		html.AppendChild(body)
		html.InsertBefore(head, body)

		if head.Parent() != html || body.Parent() != html {
			t.Fatal("children must point back at html")
		}
		kids := html.Children()
		if len(kids) != 2 || kids[0] != Node(head) || kids[1] != Node(body) {
			t.Fatalf("children order = %#v, want [head body]", kids)
		}
		if doc.Parent() != nil {
			t.Fatal("document has no parent")
		}
	})

	t.Run("RemoveChild detaches", func(t *testing.T) {
		parent := NewElement("div")
		child := NewElement("span")
		parent.AppendChild(child)
		parent.RemoveChild(child)
		if len(parent.Children()) != 0 || child.Parent() != nil {
			t.Fatal("removed child must be fully detached")
		}
	})

	t.Run("ReplaceChild swaps in place", func(t *testing.T) {
		parent := NewElement("div")
		old := NewElement("i")
		parent.AppendChild(NewElement("a"))
		parent.AppendChild(old)

		repl := NewElement("b")
		got := parent.ReplaceChild(repl, old)
		if got != Node(old) {
			t.Fatalf("ReplaceChild returned %#v, want the old child", got)
		}
		kids := parent.Children()
		if len(kids) != 2 || kids[1] != Node(repl) {
			t.Fatalf("children = %#v", kids)
		}
		if old.Parent() != nil || repl.Parent() != parent {
			t.Fatal("parents not rewired")
		}
	})

	t.Run("fragment parents its children", func(t *testing.T) {
		df := NewDocumentFragment()
		div := NewElement("div")
		df.AppendChild(div)
		if div.Parent() != df {
			t.Fatalf("div.Parent() = %T, want fragment", div.Parent())
		}
	})
}

func TestLeafNodesHaveNoChildren(t *testing.T) {
	for _, leaf := range []Node{NewText("x"), NewComment("c"), NewDocumentType("html", "", "")} {
		leaf.AppendChild(NewElement("div"))
		if leaf.Children() != nil {
			t.Errorf("%T accepted a child", leaf)
		}
		if got := leaf.ReplaceChild(NewText("a"), NewText("b")); got != nil {
			t.Errorf("%T.ReplaceChild returned %#v", leaf, got)
		}
	}
}

func TestElementClone(t *testing.T) {
	el := NewElement("div")
	el.SetAttr("id", "x")
	el.AppendChild(NewText("hi"))

	t.Run("shallow", func(t *testing.T) {
		c := el.Clone(false).(*Element)
		if c.Attr("id") != "x" {
			t.Error("attributes must be copied")
		}
		if len(c.Children()) != 0 {
			t.Error("shallow clone copies no children")
		}
		c.SetAttr("id", "y")
		if el.Attr("id") != "x" {
			t.Error("clone attributes must be independent")
		}
	})

	t.Run("deep", func(t *testing.T) {
		c := el.Clone(true).(*Element)
		kids := c.Children()
		if len(kids) != 1 {
			t.Fatalf("deep clone children = %#v", kids)
		}
		if txt, ok := kids[0].(*Text); !ok || txt.Data != "hi" {
			t.Fatalf("cloned child = %#v", kids[0])
		}
		if kids[0] == el.Children()[0] {
			t.Error("deep clone must not share child nodes")
		}
	})
}

func TestAttributes(t *testing.T) {
	a := NewAttributes()
	a.Set("Class", "x")
	if v, ok := a.Get("class"); !ok || v != "x" {
		t.Fatalf("Get(class) = %q, %v (names are case-insensitive)", v, ok)
	}

	a.Set("id", "one")
	a.Set("id", "two")
	if v, _ := a.Get("id"); v != "two" {
		t.Errorf("Set must overwrite, got %q", v)
	}
	if a.Len() != 2 {
		t.Errorf("Len = %d, want 2", a.Len())
	}

	a.SetNS(NamespaceXLink, "href", "#x")
	if v, ok := a.GetNS(NamespaceXLink, "href"); !ok || v != "#x" {
		t.Errorf("GetNS = %q, %v", v, ok)
	}
	if _, ok := a.Get("href"); ok {
		t.Error("namespaced attribute must not alias the plain name")
	}

	a.Remove("class")
	if a.Has("class") {
		t.Error("Remove failed")
	}
	a.RemoveNS(NamespaceXLink, "href")
	if a.HasNS(NamespaceXLink, "href") {
		t.Error("RemoveNS failed")
	}
}

func TestElementTextAndClasses(t *testing.T) {
	el := NewElement("p")
	el.AppendChild(NewText("a "))
	b := NewElement("b")
	b.AppendChild(NewText("deep"))
	el.AppendChild(b)
	el.AppendChild(NewComment("skip me"))

	if got := el.Text(); got != "a deep" {
		t.Errorf("Text() = %q", got)
	}

	el.SetAttr("class", "one  two")
	if classes := el.Classes(); len(classes) != 2 || classes[0] != "one" {
		t.Errorf("Classes() = %#v", classes)
	}
	if !el.HasClass("two") || el.HasClass("three") {
		t.Error("HasClass misreported")
	}
}

func TestNodeAllocator(t *testing.T) {
	alloc := NewNodeAllocator()

	el := alloc.NewElement("DiV")
	if el.TagName != "div" || el.Namespace != NamespaceHTML {
		t.Fatalf("element = %q/%q", el.TagName, el.Namespace)
	}
	if el.Attributes == nil {
		t.Fatal("allocated element needs its attribute set")
	}

	fo := alloc.NewElementNS("foreignObject", NamespaceSVG)
	if fo.TagName != "foreignObject" || fo.Namespace != NamespaceSVG {
		t.Fatalf("foreign element = %q/%q", fo.TagName, fo.Namespace)
	}

	// Allocated nodes must not share attribute storage.
	el.SetAttr("class", "one")
	fo.SetAttr("class", "two")
	if el.Attr("class") == fo.Attr("class") {
		t.Fatal("attribute storage is shared across allocations")
	}

	txt := alloc.NewText("hello")
	com := alloc.NewComment("note")
	dt := alloc.NewDocumentType("html", "pub", "sys")
	if txt.Data != "hello" || com.Data != "note" || dt.Name != "html" || dt.PublicID != "pub" || dt.SystemID != "sys" {
		t.Fatal("allocated leaf nodes carry wrong data")
	}

	doc := alloc.NewDocument()
	root := alloc.NewElement("html")
	doc.AppendChild(root)
	if root.Parent() != doc {
		t.Fatal("allocated document must parent its children")
	}

	frag := alloc.NewDocumentFragment()
	span := alloc.NewElement("span")
	frag.AppendChild(span)
	if span.Parent() != frag {
		t.Fatal("allocated fragment must parent its children")
	}

	// Allocate past one chunk to exercise slab growth.
	for i := 0; i < 2000; i++ {
		_ = alloc.NewElement("li")
	}
}
