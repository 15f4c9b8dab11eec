package dom

// The selector engine lives in its own package, which imports dom. These
// hooks let Element.Query delegate to it without an import cycle: the
// selector package installs its matchers from an init function.
var selectorHooks = struct {
	match      func(*Element, string) ([]*Element, error)
	matchFirst func(*Element, string) (*Element, error)
}{
	match:      func(*Element, string) ([]*Element, error) { return nil, nil },
	matchFirst: func(*Element, string) (*Element, error) { return nil, nil },
}

// SetSelectorMatch installs the matcher backing Element.Query.
func SetSelectorMatch(fn func(root *Element, selector string) ([]*Element, error)) {
	selectorHooks.match = fn
}

// SetSelectorMatchFirst installs the matcher backing Element.QueryFirst.
func SetSelectorMatchFirst(fn func(root *Element, selector string) (*Element, error)) {
	selectorHooks.matchFirst = fn
}
