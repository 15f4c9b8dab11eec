package testutil

import (
	"sort"
	"strings"

	"github.com/basalt-labs/html5/dom"
)

// SerializeHTML5LibTree renders a document in the html5lib-tests
// tree-construction "document" format.
//
// Format reference: https://github.com/html5lib/html5lib-tests
func SerializeHTML5LibTree(doc *dom.Document) string {
	var p treePrinter
	if dt := doc.Doctype; dt != nil {
		p.line(0, doctypeLine(dt))
	}
	for _, child := range doc.Children() {
		p.node(child, 0)
	}
	return p.result()
}

// SerializeHTML5LibNodes renders a bare node list in the same format,
// which is how fragment test output is compared.
func SerializeHTML5LibNodes(nodes []dom.Node) string {
	var p treePrinter
	for _, n := range nodes {
		p.node(n, 0)
	}
	return p.result()
}

func doctypeLine(dt *dom.DocumentType) string {
	if dt.Name == "" {
		return "<!DOCTYPE >"
	}
	if dt.PublicID == "" && dt.SystemID == "" {
		return "<!DOCTYPE " + dt.Name + ">"
	}
	return `<!DOCTYPE ` + dt.Name + ` "` + dt.PublicID + `" "` + dt.SystemID + `">`
}

// treePrinter accumulates "| "-prefixed lines at two-space indent steps.
type treePrinter struct {
	sb strings.Builder
}

func (p *treePrinter) line(depth int, text string) {
	p.sb.WriteString("| ")
	for i := 0; i < depth; i++ {
		p.sb.WriteString("  ")
	}
	p.sb.WriteString(text)
	p.sb.WriteByte('\n')
}

func (p *treePrinter) result() string {
	return strings.TrimRight(p.sb.String(), "\n")
}

func (p *treePrinter) node(n dom.Node, depth int) {
	switch n := n.(type) {
	case *dom.Element:
		p.element(n, depth)
	case *dom.Text:
		p.line(depth, `"`+n.Data+`"`)
	case *dom.Comment:
		p.line(depth, "<!-- "+n.Data+" -->")
	}
	// DocumentType nodes are carried on doc.Doctype, not in the child list.
}

func (p *treePrinter) element(el *dom.Element, depth int) {
	p.line(depth, "<"+qualifiedTagName(el)+">")

	attrs := el.Attributes.All()
	sort.Slice(attrs, func(i, j int) bool {
		return qualifiedAttrName(attrs[i]) < qualifiedAttrName(attrs[j])
	})
	for _, a := range attrs {
		p.line(depth+1, qualifiedAttrName(a)+`="`+a.Value+`"`)
	}

	if tc := el.TemplateContent; tc != nil {
		p.line(depth+1, "content")
		for _, child := range tc.Children() {
			p.node(child, depth+2)
		}
	}
	for _, child := range el.Children() {
		p.node(child, depth+1)
	}
}

func qualifiedTagName(el *dom.Element) string {
	switch el.Namespace {
	case "", dom.NamespaceHTML:
		return el.TagName
	case dom.NamespaceSVG:
		return "svg " + el.TagName
	case dom.NamespaceMathML:
		return "math " + el.TagName
	}
	// An unexpected namespace stays visible in the output rather than
	// being dropped.
	return el.Namespace + " " + el.TagName
}

var attrNamespacePrefixes = map[string]string{
	"http://www.w3.org/1999/xlink":         "xlink ",
	"http://www.w3.org/XML/1998/namespace": "xml ",
	"http://www.w3.org/2000/xmlns/":        "xmlns ",
}

func qualifiedAttrName(a dom.Attribute) string {
	if a.Namespace == "" {
		return a.Name
	}
	prefix, ok := attrNamespacePrefixes[a.Namespace]
	if !ok {
		prefix = a.Namespace + " "
	}
	local := a.Name
	if idx := strings.IndexByte(local, ':'); idx >= 0 {
		local = local[idx+1:]
	}
	return prefix + local
}
