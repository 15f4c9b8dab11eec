package dom

import "strings"

const (
	elementChunkSize   = 128
	textChunkSize      = 256
	commentChunkSize   = 64
	doctypeChunkSize   = 32
	documentChunkSize  = 8
	fragmentChunkSize  = 64
	attributeChunkSize = 128
)

// chunkPool hands out pointers into a slab of pre-allocated T values,
// growing to a fresh slab of the configured size once exhausted. This
// keeps node allocation out of the per-node-call path: one make() per
// chunkSize nodes instead of one per node.
type chunkPool[T any] struct {
	chunkSize int
	slab      []T
	next      int
}

func newChunkPool[T any](chunkSize int) chunkPool[T] {
	return chunkPool[T]{chunkSize: chunkSize}
}

func (p *chunkPool[T]) take() *T {
	if p.next >= len(p.slab) {
		p.slab = make([]T, p.chunkSize)
		p.next = 0
	}
	v := &p.slab[p.next]
	p.next++
	return v
}

// NodeAllocator hands out DOM nodes from chunked backing arrays rather
// than one-at-a-time heap allocations, which matters for the tree
// builder since a single document parse can mint thousands of nodes.
type NodeAllocator struct {
	elements   chunkPool[Element]
	texts      chunkPool[Text]
	comments   chunkPool[Comment]
	doctypes   chunkPool[DocumentType]
	documents  chunkPool[Document]
	fragments  chunkPool[DocumentFragment]
	attributes chunkPool[Attributes]
}

// NewNodeAllocator creates a new allocator for DOM nodes.
func NewNodeAllocator() *NodeAllocator {
	return &NodeAllocator{
		elements:   newChunkPool[Element](elementChunkSize),
		texts:      newChunkPool[Text](textChunkSize),
		comments:   newChunkPool[Comment](commentChunkSize),
		doctypes:   newChunkPool[DocumentType](doctypeChunkSize),
		documents:  newChunkPool[Document](documentChunkSize),
		fragments:  newChunkPool[DocumentFragment](fragmentChunkSize),
		attributes: newChunkPool[Attributes](attributeChunkSize),
	}
}

// NewDocument creates a new document node.
func (a *NodeAllocator) NewDocument() *Document {
	d := a.documents.take()
	d.nodeCore = nodeCore{}
	d.Doctype = nil
	d.QuirksMode = NoQuirks
	d.bind(d)
	return d
}

// NewDocumentFragment creates a new document fragment.
func (a *NodeAllocator) NewDocumentFragment() *DocumentFragment {
	df := a.fragments.take()
	df.nodeCore = nodeCore{}
	df.bind(df)
	return df
}

// NewElement creates a new HTML element with lowercase tag name.
func (a *NodeAllocator) NewElement(tagName string) *Element {
	e := a.elements.take()
	e.nodeCore = nodeCore{}
	e.TagName = strings.ToLower(tagName)
	e.Namespace = NamespaceHTML
	e.Attributes = a.newAttributes()
	e.TemplateContent = nil
	e.bind(e)
	return e
}

// NewElementNS creates a new element with the given namespace.
func (a *NodeAllocator) NewElementNS(tagName, namespace string) *Element {
	e := a.elements.take()
	e.nodeCore = nodeCore{}
	e.TagName = tagName
	e.Namespace = namespace
	e.Attributes = a.newAttributes()
	e.TemplateContent = nil
	e.bind(e)
	return e
}

// NewText creates a new text node.
func (a *NodeAllocator) NewText(data string) *Text {
	t := a.texts.take()
	t.parentNode = nil
	t.Data = data
	return t
}

// NewComment creates a new comment node.
func (a *NodeAllocator) NewComment(data string) *Comment {
	c := a.comments.take()
	c.parentNode = nil
	c.Data = data
	return c
}

// NewDocumentType creates a new DOCTYPE node.
func (a *NodeAllocator) NewDocumentType(name, publicID, systemID string) *DocumentType {
	dt := a.doctypes.take()
	dt.parentNode = nil
	dt.Name = name
	dt.PublicID = publicID
	dt.SystemID = systemID
	return dt
}

func (a *NodeAllocator) newAttributes() *Attributes {
	attr := a.attributes.take()
	attr.items = attr.items[:0]
	return attr
}
