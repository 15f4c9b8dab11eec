package treebuilder

import (
	"strings"

	"github.com/basalt-labs/html5/dom"
	"github.com/basalt-labs/html5/internal/constants"
	"github.com/basalt-labs/html5/tokenizer"
)

func (tb *TreeBuilder) shouldUseForeignContent(tok tokenizer.Token) bool {
	current := tb.currentElement()
	if current == nil {
		return false
	}
	if current.Namespace == dom.NamespaceHTML {
		return false
	}
	if tok.Type == tokenizer.EOF {
		return false
	}

	// MathML text integration points.
	if tb.isMathMLTextIntegrationPoint(current) {
		if tok.Type == tokenizer.Character {
			return false
		}
		if tok.Type == tokenizer.StartTag {
			if tok.Name != "mglyph" && tok.Name != "malignmark" {
				return false
			}
		}
	}

	// MathML annotation-xml special-case.
	if current.Namespace == dom.NamespaceMathML && strings.EqualFold(current.TagName, "annotation-xml") {
		if tok.Type == tokenizer.StartTag && tok.Name == "svg" {
			return false
		}
	}

	// HTML integration points.
	if tb.isHTMLIntegrationPoint(current) {
		if tok.Type == tokenizer.Character {
			return false
		}
		if tok.Type == tokenizer.StartTag {
			return false
		}
	}

	return true
}

type foreignContentHandler func(tb *TreeBuilder, tok tokenizer.Token, current *dom.Element) bool

var foreignContentHandlers = map[tokenizer.TokenKind]foreignContentHandler{
	tokenizer.Character: (*TreeBuilder).foreignCharacters,
	tokenizer.Comment:    func(tb *TreeBuilder, tok tokenizer.Token, _ *dom.Element) bool { tb.insertComment(tok.Data); return false },
	tokenizer.StartTag:  (*TreeBuilder).foreignStartTag,
	tokenizer.EndTag:    (*TreeBuilder).foreignEndTag,
}

func (tb *TreeBuilder) processForeignContent(tok tokenizer.Token) bool {
	current := tb.currentElement()
	if current == nil {
		return false
	}
	handler, ok := foreignContentHandlers[tok.Type]
	if !ok {
		return false
	}
	return handler(tb, tok, current)
}

func (tb *TreeBuilder) foreignCharacters(tok tokenizer.Token, _ *dom.Element) bool {
	if tok.Data == "" {
		return false
	}
	data := strings.ReplaceAll(tok.Data, "\x00", string('\uFFFD'))
	if !isAllWhitespace(data) {
		tb.framesetOK = false
	}
	tb.insertText(data)
	return false
}

func (tb *TreeBuilder) foreignStartTag(tok tokenizer.Token, current *dom.Element) bool {
	nameLower := tok.Name
	if constants.ForeignBreakoutElements[nameLower] || (nameLower == "font" && foreignBreakoutFont(tokenizer.AttrsToMap(tok.Attrs))) {
		return tb.breakOutToHTMLMode()
	}

	namespace := current.Namespace
	adjustedName := tok.Name
	if namespace == dom.NamespaceSVG {
		adjustedName = adjustSVGTagName(tok.Name)
	}
	attrs := prepareForeignAttributes(namespace, tokenizer.AttrsToMap(tok.Attrs))
	tb.insertForeignElement(adjustedName, namespace, attrs, tok.SelfClosing)
	return false
}

func (tb *TreeBuilder) foreignEndTag(tok tokenizer.Token, _ *dom.Element) bool {
	nameLower := tok.Name
	if nameLower == "br" || nameLower == "p" {
		return tb.breakOutToHTMLMode()
	}
	return tb.closeForeignEndTag(nameLower)
}

// breakOutToHTMLMode pops the open-element stack down to the nearest HTML
// element or integration point and hands control back to the current
// insertion mode, which reprocesses the triggering token.
func (tb *TreeBuilder) breakOutToHTMLMode() bool {
	tb.popUntilHTMLOrIntegrationPoint()
	tb.resetInsertionModeAppropriately()
	tb.forceHTMLMode = true
	return true
}

// closeForeignEndTag walks the open-element stack backwards (ASCII
// case-insensitive) looking for an element matching name, per WHATWG HTML
// §13.2.6.5's foreign-content end tag handling.
func (tb *TreeBuilder) closeForeignEndTag(name string) bool {
	for i := len(tb.openElements) - 1; i >= 0; i-- {
		node := tb.openElements[i]
		isHTML := node.Namespace == dom.NamespaceHTML

		if strings.EqualFold(node.TagName, name) {
			if tb.fragmentElement != nil && node == tb.fragmentElement {
				return false
			}
			if isHTML {
				tb.forceHTMLMode = true
				return true
			}
			tb.openElements = tb.openElements[:i]
			return false
		}

		if isHTML {
			tb.forceHTMLMode = true
			return true
		}
	}
	return false
}

func (tb *TreeBuilder) popUntilHTMLOrIntegrationPoint() {
	for len(tb.openElements) > 0 {
		node := tb.currentElement()
		if node == nil {
			return
		}
		if node.Namespace == dom.NamespaceHTML {
			return
		}
		if tb.isHTMLIntegrationPoint(node) {
			return
		}
		tb.popCurrent()
	}
}

// integrationPointOf looks up node's namespace/tag pair in the given
// integration-point table, the lookup shared by the HTML and MathML
// text integration-point checks below.
func integrationPointOf(node *dom.Element, table map[constants.IntegrationPoint]bool) bool {
	if node == nil {
		return false
	}
	ip := constants.IntegrationPoint{Namespace: node.Namespace, LocalName: node.TagName}
	return table[ip]
}

func (tb *TreeBuilder) isHTMLIntegrationPoint(node *dom.Element) bool {
	if node == nil {
		return false
	}
	// annotation-xml only counts with certain encoding values.
	if node.Namespace == dom.NamespaceMathML && node.TagName == "annotation-xml" {
		enc, ok := node.Attributes.Get("encoding")
		if !ok {
			return false
		}
		switch strings.ToLower(enc) {
		case "text/html", "application/xhtml+xml":
			return true
		default:
			return false
		}
	}
	return integrationPointOf(node, constants.HTMLIntegrationPoints)
}

func (tb *TreeBuilder) isMathMLTextIntegrationPoint(node *dom.Element) bool {
	return integrationPointOf(node, constants.MathMLTextIntegrationPoints)
}

func foreignBreakoutFont(attrs map[string]string) bool {
	for k := range attrs {
		switch strings.ToLower(k) {
		case "color", "face", "size":
			return true
		}
	}
	return false
}

func adjustSVGTagName(name string) string {
	if adjusted, ok := constants.SVGTagNameAdjustments[strings.ToLower(name)]; ok {
		return adjusted
	}
	return name
}

func prepareForeignAttributes(namespace string, attrs map[string]string) []dom.Attribute {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]dom.Attribute, 0, len(attrs))
	for name, value := range attrs {
		lower := strings.ToLower(name)
		adjustedName := name

		switch namespace {
		case dom.NamespaceMathML:
			if adj, ok := constants.MathMLAttributeAdjustments[lower]; ok {
				adjustedName = adj
				lower = strings.ToLower(adjustedName)
			}
		case dom.NamespaceSVG:
			if adj, ok := constants.SVGAttributeAdjustments[lower]; ok {
				adjustedName = adj
				lower = strings.ToLower(adjustedName)
			}
		}

		if foreignAdj, ok := constants.ForeignAttributeAdjustments[lower]; ok {
			prefix := foreignAdj.Prefix
			local := foreignAdj.LocalName
			if prefix != "" {
				adjustedName = prefix + ":" + local
			} else {
				adjustedName = local
			}
			out = append(out, dom.Attribute{Namespace: foreignAdj.NamespaceURL, Name: adjustedName, Value: value})
			continue
		}

		out = append(out, dom.Attribute{Name: adjustedName, Value: value})
	}
	return out
}

func (tb *TreeBuilder) insertForeignElement(name, namespace string, attrs []dom.Attribute, selfClosing bool) *dom.Element {
	el := dom.NewElementNS(name, namespace)
	for _, a := range attrs {
		el.Attributes.SetNS(a.Namespace, a.Name, a.Value)
	}
	tb.currentNode().AppendChild(el)
	if !selfClosing {
		tb.openElements = append(tb.openElements, el)
	}
	return el
}
