package constants

// ScopeSet names the elements that stop a "has an element in scope"
// walk up the stack of open elements: hitting one of these before the
// target tag means the target is not in that scope. See WHATWG HTML
// §13.2.5.2.5 and its scope-flavored variants.
type ScopeSet map[string]bool

// Has reports whether tag is a member of the scope set. A nil ScopeSet
// (the zero value) contains nothing, matching an empty map's behavior.
func (s ScopeSet) Has(tag string) bool {
	return s[tag]
}

var commonScopeBoundary = ScopeSet{
	"applet":   true,
	"caption":  true,
	"html":     true,
	"table":    true,
	"td":       true,
	"th":       true,
	"marquee":  true,
	"object":   true,
	"template": true,
	// MathML text-integration-point-adjacent elements.
	"mi":             true,
	"mo":             true,
	"mn":             true,
	"ms":             true,
	"mtext":          true,
	"annotation-xml": true,
	// SVG HTML-integration-point-adjacent elements.
	"foreignObject": true,
	"desc":          true,
	"title":         true,
}

func withExtra(base ScopeSet, extra ...string) ScopeSet {
	out := make(ScopeSet, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for _, tag := range extra {
		out[tag] = true
	}
	return out
}

// DefaultScope is the ordinary scope used by most "in scope" checks.
var DefaultScope = commonScopeBoundary

// ListItemScope additionally stops at list containers, for li elements.
var ListItemScope = withExtra(commonScopeBoundary, "ol", "ul")

// ButtonScope additionally stops at button, for p-in-button checks.
var ButtonScope = withExtra(commonScopeBoundary, "button")

// DefinitionScope mirrors the default scope; dl/dt/dd handling in the
// HTML5 algorithm uses the same boundary set as the default scope.
var DefinitionScope = commonScopeBoundary

// TableScope bounds table-context checks to the nearest table.
var TableScope = ScopeSet{
	"html":     true,
	"table":    true,
	"template": true,
}

// TableBodyScope bounds checks to the nearest table section.
var TableBodyScope = withExtra(TableScope, "tbody", "tfoot", "thead")

// TableRowScope bounds checks to the nearest table row.
var TableRowScope = withExtra(TableBodyScope, "tr")

// SelectScope lists the elements a <select> parse treats as transparent;
// everything else stops the scope walk (the inverse of the usual sense).
var SelectScope = ScopeSet{
	"optgroup": true,
	"option":   true,
}
