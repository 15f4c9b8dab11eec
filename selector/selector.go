// Package selector implements CSS selector parsing and matching.
package selector

import (
	"github.com/basalt-labs/html5/dom"
)

// Selector represents a parsed CSS selector.
type Selector interface {
	// Match returns true if the element matches this selector.
	Match(element *dom.Element) bool

	// String returns the original selector string.
	String() string
}

// init registers this package's Match/MatchFirst as the implementation
// behind dom.Element.Query and dom.Element.QueryFirst. dom cannot import
// selector directly (selector already imports dom), so the wiring runs
// through the indirection in dom.SetSelectorMatch.
func init() {
	dom.SetSelectorMatch(Match)
	dom.SetSelectorMatchFirst(MatchFirst)
}

// parsedSelector adapts a parsed selectorAST to the Selector interface.
type parsedSelector struct {
	ast selectorAST
	raw string
}

func (s *parsedSelector) Match(element *dom.Element) bool {
	return matchAST(element, s.ast)
}

func (s *parsedSelector) String() string {
	return s.raw
}

// Parse parses a CSS selector string, supporting tag/universal/class/id/
// attribute selectors, combinators, comma-separated selector lists, and
// the pseudo-classes implemented in matcher.go.
func Parse(selector string) (Selector, error) {
	tokens, err := newTokenizer(selector).tokenize()
	if err != nil {
		return nil, err
	}

	ast, err := newParser(tokens, selector).parse()
	if err != nil {
		return nil, err
	}

	return &parsedSelector{ast: ast, raw: selector}, nil
}

// Match returns all descendants of root (root itself excluded) that match the selector.
func Match(root *dom.Element, selector string) ([]*dom.Element, error) {
	sel, err := Parse(selector)
	if err != nil {
		return nil, err
	}

	var results []*dom.Element
	for _, child := range root.Children() {
		if childElem, ok := child.(*dom.Element); ok {
			matchDescendants(childElem, sel, &results)
		}
	}
	return results, nil
}

// MatchFirst returns the first descendant of root (root itself excluded) that matches the selector.
func MatchFirst(root *dom.Element, selector string) (*dom.Element, error) {
	sel, err := Parse(selector)
	if err != nil {
		return nil, err
	}

	for _, child := range root.Children() {
		if childElem, ok := child.(*dom.Element); ok {
			if found := findFirst(childElem, sel); found != nil {
				return found, nil
			}
		}
	}
	return nil, nil
}

func matchDescendants(elem *dom.Element, sel Selector, results *[]*dom.Element) {
	if sel.Match(elem) {
		*results = append(*results, elem)
	}
	for _, child := range elem.Children() {
		if childElem, ok := child.(*dom.Element); ok {
			matchDescendants(childElem, sel, results)
		}
	}
}

func findFirst(elem *dom.Element, sel Selector) *dom.Element {
	if sel.Match(elem) {
		return elem
	}
	for _, child := range elem.Children() {
		if childElem, ok := child.(*dom.Element); ok {
			if found := findFirst(childElem, sel); found != nil {
				return found
			}
		}
	}
	return nil
}
