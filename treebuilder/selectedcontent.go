package treebuilder

import "github.com/basalt-labs/html5/dom"

// populateSelectedContent mirrors the chosen <option> of each <select> into
// its <selectedcontent> element, cloning the option's children. The chosen
// option is the first with a selected attribute, else the first option.
func (tb *TreeBuilder) populateSelectedContent(root dom.Node) {
	walkHTMLElements(root, func(el *dom.Element) bool {
		if el.TagName != "select" {
			return false
		}
		tb.fillSelectedContent(el)
		return false
	})
}

func (tb *TreeBuilder) fillSelectedContent(sel *dom.Element) {
	var target, chosen, firstOption *dom.Element
	walkHTMLElements(sel, func(el *dom.Element) bool {
		switch el.TagName {
		case "selectedcontent":
			if target == nil {
				target = el
			}
		case "option":
			if firstOption == nil {
				firstOption = el
			}
			if chosen == nil && el.HasAttr("selected") {
				chosen = el
			}
		}
		return false
	})
	if target == nil || firstOption == nil {
		return
	}
	if chosen == nil {
		chosen = firstOption
	}

	for _, child := range append([]dom.Node(nil), target.Children()...) {
		target.RemoveChild(child)
	}
	for _, child := range chosen.Children() {
		target.AppendChild(child.Clone(true))
	}
}

// walkHTMLElements visits every HTML-namespace element under node
// (including template contents) in document order. A true return from
// visit stops the walk.
func walkHTMLElements(node dom.Node, visit func(*dom.Element) bool) bool {
	if el, ok := node.(*dom.Element); ok {
		if el.Namespace == dom.NamespaceHTML && visit(el) {
			return true
		}
		if el.TemplateContent != nil {
			for _, child := range el.TemplateContent.Children() {
				if walkHTMLElements(child, visit) {
					return true
				}
			}
		}
	}
	for _, child := range node.Children() {
		if walkHTMLElements(child, visit) {
			return true
		}
	}
	return false
}
