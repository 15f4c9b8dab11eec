package tokenizer

// Options configure tokenizer behavior. The zero value keeps a leading
// BOM in the input and performs no XML coercion.
type Options struct {
	// DiscardBOM strips a leading U+FEFF before tokenization begins.
	DiscardBOM bool

	// XMLCoercion rewrites output so it can be embedded in an XML
	// document: form feeds in text become spaces, code points XML
	// forbids become U+FFFD, and "--" inside comments becomes "- -".
	XMLCoercion bool
}

// defaultOptions are what New uses; BOM stripping is on because callers
// handing over decoded documents almost never want the BOM as text.
func defaultOptions() Options {
	return Options{DiscardBOM: true}
}
