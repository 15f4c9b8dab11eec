// Package html5 parses HTML the way browsers do, implementing the WHATWG
// HTML Living Standard including its error-recovery rules.
//
// # Basic Usage
//
//	doc, err := html5.Parse("<html><body><p>Hello!</p></body></html>")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Query with CSS selectors
//	ps, _ := doc.Query("p")
//	for _, p := range ps {
//		fmt.Println(p.Text())
//	}
//
// # Features
//
//   - WHATWG-conformant tokenization and tree construction
//   - CSS selector support
//   - Streaming API for memory-efficient processing
//   - Encoding detection per HTML5 spec
//   - Fragment parsing for innerHTML-style use cases
//
// For more information, see https://github.com/basalt-labs/html5
package html5

import (
	"github.com/basalt-labs/html5/dom"
	"github.com/basalt-labs/html5/encoding"
	htmlerrors "github.com/basalt-labs/html5/errors"
	_ "github.com/basalt-labs/html5/selector" // Register the selector engine behind Query.
	"github.com/basalt-labs/html5/tokenizer"
	"github.com/basalt-labs/html5/treebuilder"
)

// Version is the current version of html5.
const Version = "0.1.0-dev"

// Parse parses an HTML string and returns a Document.
//
// Malformed input is recovered from exactly as the WHATWG specification
// prescribes; the returned tree matches what a browser would build.
//
// Example:
//
//	doc, err := html5.Parse("<html><body><p>Hello!</p></body></html>")
//	if err != nil {
//		// err carries parse errors if WithCollectErrors() was used
//	}
func Parse(html string, opts ...Option) (*dom.Document, error) {
	return parse(html, newConfig(opts...))
}

// ParseBytes parses HTML from a byte slice with automatic encoding
// detection, tried in the order the HTML5 specification gives:
//
//  1. BOM (Byte Order Mark)
//  2. HTTP Content-Type header (if provided via WithEncoding)
//  3. <meta charset> or <meta http-equiv="Content-Type">
//  4. Fallback to windows-1252
//
// Example:
//
//	data, _ := os.ReadFile("page.html")
//	doc, err := html5.ParseBytes(data)
func ParseBytes(html []byte, opts ...Option) (*dom.Document, error) {
	cfg := newConfig(opts...)

	decoded, enc, err := encoding.Decode(html, cfg.encoding)
	if err != nil {
		return nil, err
	}

	doc, err := parse(decoded, cfg)
	if doc != nil {
		doc.Encoding = enc.Name
	}
	return doc, err
}

// ParseFragment parses an HTML fragment in a specific context element,
// the equivalent of assigning element.innerHTML in a browser. The context
// decides how the fragment is tokenized and built ("<td>Cell</td>" means
// something different inside a "tr" than inside a "div").
//
// Example:
//
//	nodes, err := html5.ParseFragment("<td>Cell</td>", "tr")
func ParseFragment(html string, context string, opts ...Option) ([]*dom.Element, error) {
	cfg := newConfig(opts...)
	cfg.fragmentContext = &treebuilder.FragmentContext{
		TagName:   context,
		Namespace: "html",
	}
	return parseFragment(html, cfg)
}

// newTokenizer builds a tokenizer configured per cfg.
func newTokenizer(html string, cfg *config) *tokenizer.Tokenizer {
	tok := tokenizer.New(html)
	if cfg.xmlCoercion {
		tok.SetXMLCoercion(true)
	}
	return tok
}

// drive pumps tokens from tok into tb until EOF. The CDATA toggle is
// refreshed before each token because the adjusted current node decides
// whether <![CDATA[ opens a section or a bogus comment.
func drive(tok *tokenizer.Tokenizer, tb *treebuilder.TreeBuilder, cfg *config) {
	if cfg.iframeSrcdoc {
		tb.SetIframeSrcdoc(true)
	}
	for {
		tok.SetAllowCDATA(tb.AllowCDATA())
		tt := tok.Next()
		tb.ProcessToken(tt)
		if tt.Type == tokenizer.EOF {
			return
		}
	}
}

// parseOutcome turns collected tokenizer errors into the error return the
// configuration asks for (first error in strict mode, the whole list in
// collect mode, nil otherwise).
func parseOutcome(tok *tokenizer.Tokenizer, cfg *config) error {
	if !cfg.strict && !cfg.collectErrors {
		return nil
	}
	parseErrs := convertTokenizerErrors(tok.Errors())
	if len(parseErrs) == 0 {
		return nil
	}
	if cfg.strict {
		return parseErrs[0]
	}
	return htmlerrors.ParseErrors(parseErrs)
}

func parse(html string, cfg *config) (*dom.Document, error) {
	tok := newTokenizer(html, cfg)
	tb := treebuilder.New(tok)
	drive(tok, tb, cfg)

	err := parseOutcome(tok, cfg)
	if err != nil && cfg.strict {
		return nil, err
	}
	return tb.Document(), err
}

func parseFragment(html string, cfg *config) ([]*dom.Element, error) {
	tok := newTokenizer(html, cfg)
	tb := treebuilder.NewFragment(tok, cfg.fragmentContext)
	drive(tok, tb, cfg)

	err := parseOutcome(tok, cfg)
	if err != nil && cfg.strict {
		return nil, err
	}
	return tb.FragmentNodes(), err
}

func convertTokenizerErrors(errs []tokenizer.ParseError) []*htmlerrors.ParseError {
	if len(errs) == 0 {
		return nil
	}
	out := make([]*htmlerrors.ParseError, 0, len(errs))
	for _, e := range errs {
		out = append(out, &htmlerrors.ParseError{
			Code:    e.Code,
			Message: htmlerrors.Message(e.Code),
			Line:    e.Line,
			Column:  e.Column,
		})
	}
	return out
}
