package html5

import (
	"github.com/basalt-labs/html5/treebuilder"
)

// config holds parser configuration.
type config struct {
	encoding        string
	fragmentContext *treebuilder.FragmentContext
	iframeSrcdoc    bool
	strict          bool
	collectErrors   bool
	xmlCoercion     bool
}

func newConfig(opts ...Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Option configures the parser behavior.
type Option func(*config)

// WithEncoding overrides automatic encoding detection with the given
// label ("utf-8", "windows-1252", "iso-8859-1", ...), as if it had come
// from a Content-Type header. A leading byte order mark still takes
// precedence over the label.
func WithEncoding(enc string) Option {
	return func(c *config) { c.encoding = enc }
}

// WithFragment parses the input as a fragment inside an HTML-namespace
// context element. ParseFragment sets this up for you.
func WithFragment(tagName string) Option {
	return func(c *config) {
		c.fragmentContext = treebuilder.HTMLFragmentContext(tagName)
	}
}

// WithFragmentNS parses a fragment with a foreign context element; use
// "svg" or "mathml" as the namespace to parse SVG or MathML fragments.
func WithFragmentNS(tagName, namespace string) Option {
	return func(c *config) {
		c.fragmentContext = &treebuilder.FragmentContext{
			TagName:   tagName,
			Namespace: namespace,
		}
	}
}

// WithIframeSrcdoc treats the input as an iframe's srcdoc attribute
// value, which changes the missing-doctype quirks decision.
func WithIframeSrcdoc() Option {
	return func(c *config) { c.iframeSrcdoc = true }
}

// WithStrictMode makes the first parse error fail the parse instead of
// recovering. Without it, recovery always produces a tree.
func WithStrictMode() Option {
	return func(c *config) { c.strict = true }
}

// WithCollectErrors returns recovered parse errors alongside the tree, as
// a ParseErrors value the caller can unwrap.
func WithCollectErrors() Option {
	return func(c *config) { c.collectErrors = true }
}

// WithXMLCoercion applies XHTML-compatible tokenization adjustments; use
// it when the input is XHTML-serialized.
func WithXMLCoercion() Option {
	return func(c *config) { c.xmlCoercion = true }
}
