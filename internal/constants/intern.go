package constants

// internTable canonicalizes a fixed vocabulary of strings: looking up
// a runtime string that matches one of the known values returns the
// package's own pre-allocated copy instead, so repeated tag/attribute
// names parsed out of different input buffers collapse onto one
// backing array rather than allocating anew each time.
type internTable map[string]string

func newInternTable(words []string) internTable {
	t := make(internTable, len(words))
	for _, w := range words {
		t[w] = w
	}
	return t
}

func (t internTable) intern(s string) string {
	if canonical, ok := t[s]; ok {
		return canonical
	}
	return s
}

var commonTagWords = []string{
	// Document structure
	"html", "head", "body", "title", "meta", "link", "style",
	// Sectioning
	"header", "footer", "nav", "section", "article", "aside", "main",
	// Text content
	"div", "p", "span", "h1", "h2", "h3", "h4", "h5", "h6",
	"blockquote", "pre", "code",
	// Lists
	"ul", "ol", "li", "dl", "dt", "dd",
	// Tables
	"table", "thead", "tbody", "tfoot", "tr", "th", "td",
	"caption", "colgroup", "col",
	// Forms
	"form", "input", "button", "select", "option", "textarea",
	"label", "fieldset", "legend",
	// Media
	"img", "video", "audio", "source", "track", "canvas", "svg",
	// Interactive
	"a", "script", "noscript", "iframe",
	// Text formatting
	"b", "i", "u", "s", "em", "strong", "small", "mark", "del", "ins",
	"sub", "sup",
	// Other common elements
	"br", "hr", "template", "slot", "base",
}

var commonAttributeWords = []string{
	// Global attributes
	"id", "class", "style", "title", "lang", "dir",
	// Data attribute patterns
	"data-id", "data-name", "data-value",
	// Link attributes
	"href", "rel", "target", "type",
	// Media attributes
	"src", "alt", "width", "height",
	// Form attributes
	"name", "value", "placeholder", "disabled", "readonly", "required",
	"checked", "selected", "action", "method", "for",
	// Interactive attributes
	"onclick", "onchange", "onsubmit", "onload", "tabindex",
	"aria-label", "role",
	// Meta attributes
	"content", "charset", "property",
	// Other common attributes
	"hidden", "data", "download", "enctype", "accept", "autocomplete",
	"autofocus", "maxlength", "minlength", "pattern", "multiple", "size",
	"min", "max", "step", "colspan", "rowspan", "scope", "headers",
}

// CommonTagNames and CommonAttributeNames stay exported for callers
// (and tests) that want the raw vocabulary rather than the intern
// behavior.
var (
	CommonTagNames       = newInternTable(commonTagWords)
	CommonAttributeNames = newInternTable(commonAttributeWords)
)

// InternTagName returns the package's canonical copy of name if it
// names a common HTML tag, or name unchanged otherwise.
func InternTagName(name string) string {
	return CommonTagNames.intern(name)
}

// InternAttributeName returns the package's canonical copy of name if
// it names a common HTML attribute, or name unchanged otherwise.
func InternAttributeName(name string) string {
	return CommonAttributeNames.intern(name)
}
