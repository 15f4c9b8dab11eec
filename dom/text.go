package dom

// Text is a run of character data. Adjacent text siblings are merged at
// insertion time, so a well-formed tree never holds two in a row.
type Text struct {
	leafNode
	Data string
}

// NewText creates a new text node.
func NewText(data string) *Text { return &Text{Data: data} }

// Type implements Node.
func (t *Text) Type() NodeType { return TextNodeType }

// Clone implements Node.
func (t *Text) Clone(bool) Node { return &Text{Data: t.Data} }

// Comment holds the body of an HTML comment, without the surrounding
// <!-- and --> markers.
type Comment struct {
	leafNode
	Data string
}

// NewComment creates a new comment node.
func NewComment(data string) *Comment { return &Comment{Data: data} }

// Type implements Node.
func (c *Comment) Type() NodeType { return CommentNodeType }

// Clone implements Node.
func (c *Comment) Clone(bool) Node { return &Comment{Data: c.Data} }
