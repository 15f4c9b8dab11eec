package dom

// QuirksMode represents the document's quirks mode.
type QuirksMode int

// Quirks mode values.
const (
	NoQuirks      QuirksMode = iota // Standards mode
	Quirks                          // Quirks mode
	LimitedQuirks                   // Almost standards mode
)

// Document represents an HTML document.
type Document struct {
	nodeCore

	// Doctype is the document's DOCTYPE declaration.
	Doctype *DocumentType

	// QuirksMode indicates the document's quirks mode.
	QuirksMode QuirksMode

	// Encoding is the canonical name of the character encoding the input
	// was decoded with, when the document came from bytes ("UTF-8",
	// "windows-1252", ...). Empty for documents parsed from strings.
	Encoding string
}

// NewDocument creates a new empty document.
func NewDocument() *Document {
	d := &Document{}
	d.bind(d)
	return d
}

// Type implements Node.
func (d *Document) Type() NodeType { return DocumentNodeType }

// Clone implements Node.
func (d *Document) Clone(deep bool) Node {
	clone := &Document{QuirksMode: d.QuirksMode, Encoding: d.Encoding}
	clone.bind(clone)

	if d.Doctype != nil {
		clone.Doctype = d.Doctype.Clone(false).(*DocumentType)
	}
	if deep {
		for _, child := range d.kids {
			clone.AppendChild(child.Clone(true))
		}
	}
	return clone
}

// DocumentElement returns the root element (html element).
func (d *Document) DocumentElement() *Element {
	for _, child := range d.kids {
		if elem, ok := child.(*Element); ok {
			return elem
		}
	}
	return nil
}

// Head returns the head element, or nil if not found.
func (d *Document) Head() *Element {
	return d.childElementNamed("head")
}

// Body returns the body element, or nil if not found.
func (d *Document) Body() *Element {
	return d.childElementNamed("body")
}

func (d *Document) childElementNamed(tagName string) *Element {
	html := d.DocumentElement()
	if html == nil {
		return nil
	}
	for _, child := range html.Children() {
		if elem, ok := child.(*Element); ok && elem.TagName == tagName {
			return elem
		}
	}
	return nil
}

// Title returns the document title from the <title> element.
func (d *Document) Title() string {
	head := d.Head()
	if head == nil {
		return ""
	}
	for _, child := range head.Children() {
		if elem, ok := child.(*Element); ok && elem.TagName == "title" {
			return elem.Text()
		}
	}
	return ""
}

// Query finds all elements matching the CSS selector.
func (d *Document) Query(selector string) ([]*Element, error) {
	root := d.DocumentElement()
	if root == nil {
		return nil, nil
	}
	return root.Query(selector)
}

// QueryFirst finds the first element matching the CSS selector.
func (d *Document) QueryFirst(selector string) (*Element, error) {
	root := d.DocumentElement()
	if root == nil {
		return nil, nil
	}
	return root.QueryFirst(selector)
}

// DocumentType represents a DOCTYPE declaration.
type DocumentType struct {
	leafNode

	// Name is the DOCTYPE name (usually "html").
	Name string

	// PublicID is the public identifier.
	PublicID string

	// SystemID is the system identifier.
	SystemID string
}

// NewDocumentType creates a new DOCTYPE node.
func NewDocumentType(name, publicID, systemID string) *DocumentType {
	return &DocumentType{Name: name, PublicID: publicID, SystemID: systemID}
}

// Type implements Node.
func (dt *DocumentType) Type() NodeType { return DoctypeNodeType }

// Clone implements Node.
func (dt *DocumentType) Clone(_ bool) Node {
	return &DocumentType{Name: dt.Name, PublicID: dt.PublicID, SystemID: dt.SystemID}
}

// DocumentFragment represents a document fragment, used for the
// detached content of <template> elements and for fragment parsing.
type DocumentFragment struct {
	nodeCore
}

// NewDocumentFragment creates a new document fragment.
func NewDocumentFragment() *DocumentFragment {
	df := &DocumentFragment{}
	df.bind(df)
	return df
}

// Type implements Node. Fragments have no dedicated DOM nodeType code,
// so this reports DocumentNodeType as the closest match.
func (df *DocumentFragment) Type() NodeType { return DocumentNodeType }

// Clone implements Node.
func (df *DocumentFragment) Clone(deep bool) Node {
	clone := &DocumentFragment{}
	clone.bind(clone)
	if deep {
		for _, child := range df.kids {
			clone.AppendChild(child.Clone(true))
		}
	}
	return clone
}
