// Package constants defines HTML5 specification constants.
package constants

// ForeignAttribute represents a foreign (namespaced) attribute adjustment.
type ForeignAttribute struct {
	Prefix       string // Attribute prefix (e.g., "xlink", "xml"), or empty string
	LocalName    string // Local name of the attribute
	NamespaceURL string // Namespace URL
}

// tagSet is a named element-name set, built from a word list rather
// than a hand-written map literal so the source data reads as a
// vocabulary, not punctuation.
type tagSet map[string]bool

func newTagSet(words ...string) tagSet {
	s := make(tagSet, len(words))
	for _, w := range words {
		s[w] = true
	}
	return s
}

// VoidElements are elements that have no closing tag.
var VoidElements = newTagSet(
	"area", "base", "br", "col", "embed", "hr", "img", "input",
	"link", "meta", "param", "source", "track", "wbr",
)

// RawTextElements are elements whose content is raw text.
var RawTextElements = newTagSet("script", "style")

// EscapableRawTextElements are elements with escapable raw text.
var EscapableRawTextElements = newTagSet("textarea", "title")

// SpecialElements are elements that require special parsing behavior.
// Per HTML5 spec, these elements affect the stack of open elements during tree construction.
var SpecialElements = newTagSet(
	"address", "applet", "area", "article", "aside", "base", "basefont",
	"bgsound", "blockquote", "body", "br", "button", "caption", "center",
	"col", "colgroup", "dd", "details", "dialog", "dir", "div", "dl",
	"dt", "embed", "fieldset", "figcaption", "figure", "footer", "form",
	"frame", "frameset", "h1", "h2", "h3", "h4", "h5", "h6", "head",
	"header", "hgroup", "hr", "html", "iframe", "img", "input", "keygen",
	"li", "link", "listing", "main", "marquee", "menu", "menuitem",
	"meta", "nav", "noembed", "noframes", "noscript", "object", "ol",
	"p", "param", "plaintext", "pre", "script", "search", "section",
	"select", "source", "style", "summary", "table", "tbody", "td",
	"template", "textarea", "tfoot", "th", "thead", "title", "tr",
	"track", "ul", "wbr",
)

// FormattingElements are elements used for text formatting.
var FormattingElements = newTagSet(
	"a", "b", "big", "code", "em", "font", "i", "nobr", "s", "small",
	"strike", "strong", "tt", "u",
)

// TableFosterTargets are elements that trigger foster parenting.
var TableFosterTargets = newTagSet("table", "tbody", "tfoot", "thead", "tr")

// TableAllowedChildren are elements allowed as direct children of table elements.
var TableAllowedChildren = newTagSet(
	"caption", "colgroup", "tbody", "tfoot", "thead", "tr", "td", "th",
	"script", "template", "style",
)

// ImpliedEndTagElements are elements that can have implied end tags.
var ImpliedEndTagElements = newTagSet(
	"dd", "dt", "li", "optgroup", "option", "p", "rb", "rp", "rt", "rtc",
)

// ThoroughlyImpliedEndTagElements are elements for thorough implied end tags.
var ThoroughlyImpliedEndTagElements = newTagSet(
	"caption", "colgroup", "dd", "dt", "li", "optgroup", "option", "p",
	"rb", "rp", "rt", "rtc", "tbody", "td", "tfoot", "th", "thead", "tr",
)

// ForeignBreakoutElements are HTML elements that break out of foreign content.
// Per HTML5 spec §13.2.6.5, these elements cause the parser to exit foreign content mode.
var ForeignBreakoutElements = newTagSet(
	"b", "big", "blockquote", "body", "br", "center", "code", "dd",
	"div", "dl", "dt", "em", "embed", "h1", "h2", "h3", "h4", "h5", "h6",
	"head", "hr", "i", "img", "li", "listing", "menu", "meta", "nobr",
	"ol", "p", "pre", "ruby", "s", "small", "span", "strong", "strike",
	"sub", "sup", "table", "tt", "u", "ul", "var",
)

// SVGTagNameAdjustments maps lowercase SVG tag names to their proper camelCase form.
// Per HTML5 spec §13.2.6.5, SVG elements need case adjustment when parsed.
var SVGTagNameAdjustments = map[string]string{
	"altglyph":            "altGlyph",
	"altglyphdef":         "altGlyphDef",
	"altglyphitem":        "altGlyphItem",
	"animatecolor":        "animateColor",
	"animatemotion":       "animateMotion",
	"animatetransform":    "animateTransform",
	"clippath":            "clipPath",
	"feblend":             "feBlend",
	"fecolormatrix":       "feColorMatrix",
	"fecomponenttransfer": "feComponentTransfer",
	"fecomposite":         "feComposite",
	"feconvolvematrix":    "feConvolveMatrix",
	"fediffuselighting":   "feDiffuseLighting",
	"fedisplacementmap":   "feDisplacementMap",
	"fedistantlight":      "feDistantLight",
	"feflood":             "feFlood",
	"fefunca":             "feFuncA",
	"fefuncb":             "feFuncB",
	"fefuncg":             "feFuncG",
	"fefuncr":             "feFuncR",
	"fegaussianblur":      "feGaussianBlur",
	"feimage":             "feImage",
	"femerge":             "feMerge",
	"femergenode":         "feMergeNode",
	"femorphology":        "feMorphology",
	"feoffset":            "feOffset",
	"fepointlight":        "fePointLight",
	"fespecularlighting":  "feSpecularLighting",
	"fespotlight":         "feSpotLight",
	"fetile":              "feTile",
	"feturbulence":        "feTurbulence",
	"foreignobject":       "foreignObject",
	"glyphref":            "glyphRef",
	"lineargradient":      "linearGradient",
	"radialgradient":      "radialGradient",
	"textpath":            "textPath",
}

// SVGAttributeAdjustments maps lowercase SVG attribute names to their proper camelCase form.
// Per HTML5 spec §13.2.6.5, SVG attributes need case adjustment when parsed.
var SVGAttributeAdjustments = map[string]string{
	"attributename":       "attributeName",
	"attributetype":       "attributeType",
	"basefrequency":       "baseFrequency",
	"baseprofile":         "baseProfile",
	"calcmode":            "calcMode",
	"clippathunits":       "clipPathUnits",
	"diffuseconstant":     "diffuseConstant",
	"edgemode":            "edgeMode",
	"filterunits":         "filterUnits",
	"glyphref":            "glyphRef",
	"gradienttransform":   "gradientTransform",
	"gradientunits":       "gradientUnits",
	"kernelmatrix":        "kernelMatrix",
	"kernelunitlength":    "kernelUnitLength",
	"keypoints":           "keyPoints",
	"keysplines":          "keySplines",
	"keytimes":            "keyTimes",
	"lengthadjust":        "lengthAdjust",
	"limitingconeangle":   "limitingConeAngle",
	"markerheight":        "markerHeight",
	"markerunits":         "markerUnits",
	"markerwidth":         "markerWidth",
	"maskcontentunits":    "maskContentUnits",
	"maskunits":           "maskUnits",
	"numoctaves":          "numOctaves",
	"pathlength":          "pathLength",
	"patterncontentunits": "patternContentUnits",
	"patterntransform":    "patternTransform",
	"patternunits":        "patternUnits",
	"pointsatx":           "pointsAtX",
	"pointsaty":           "pointsAtY",
	"pointsatz":           "pointsAtZ",
	"preservealpha":       "preserveAlpha",
	"preserveaspectratio": "preserveAspectRatio",
	"primitiveunits":      "primitiveUnits",
	"refx":                "refX",
	"refy":                "refY",
	"repeatcount":         "repeatCount",
	"repeatdur":           "repeatDur",
	"requiredextensions":  "requiredExtensions",
	"requiredfeatures":    "requiredFeatures",
	"specularconstant":    "specularConstant",
	"specularexponent":    "specularExponent",
	"spreadmethod":        "spreadMethod",
	"startoffset":         "startOffset",
	"stddeviation":        "stdDeviation",
	"stitchtiles":         "stitchTiles",
	"surfacescale":        "surfaceScale",
	"systemlanguage":      "systemLanguage",
	"tablevalues":         "tableValues",
	"targetx":             "targetX",
	"targety":             "targetY",
	"textlength":          "textLength",
	"viewbox":             "viewBox",
	"viewtarget":          "viewTarget",
	"xchannelselector":    "xChannelSelector",
	"ychannelselector":    "yChannelSelector",
	"zoomandpan":          "zoomAndPan",
}

// MathMLAttributeAdjustments maps lowercase MathML attribute names to their proper camelCase form.
// Per HTML5 spec §13.2.6.5, MathML attributes need case adjustment when parsed.
var MathMLAttributeAdjustments = map[string]string{
	"definitionurl": "definitionURL",
}

// ForeignAttributeAdjustments maps lowercase attribute names to their namespaced form.
// Per HTML5 spec §13.2.6.5, foreign attributes need namespace adjustment when parsed.
var ForeignAttributeAdjustments = map[string]ForeignAttribute{
	"xlink:actuate": {Prefix: "xlink", LocalName: "actuate", NamespaceURL: "http://www.w3.org/1999/xlink"},
	"xlink:arcrole": {Prefix: "xlink", LocalName: "arcrole", NamespaceURL: "http://www.w3.org/1999/xlink"},
	"xlink:href":    {Prefix: "xlink", LocalName: "href", NamespaceURL: "http://www.w3.org/1999/xlink"},
	"xlink:role":    {Prefix: "xlink", LocalName: "role", NamespaceURL: "http://www.w3.org/1999/xlink"},
	"xlink:show":    {Prefix: "xlink", LocalName: "show", NamespaceURL: "http://www.w3.org/1999/xlink"},
	"xlink:title":   {Prefix: "xlink", LocalName: "title", NamespaceURL: "http://www.w3.org/1999/xlink"},
	"xlink:type":    {Prefix: "xlink", LocalName: "type", NamespaceURL: "http://www.w3.org/1999/xlink"},
	"xml:lang":      {Prefix: "xml", LocalName: "lang", NamespaceURL: "http://www.w3.org/XML/1998/namespace"},
	"xml:space":     {Prefix: "xml", LocalName: "space", NamespaceURL: "http://www.w3.org/XML/1998/namespace"},
	"xmlns":         {Prefix: "", LocalName: "xmlns", NamespaceURL: "http://www.w3.org/2000/xmlns/"},
	"xmlns:xlink":   {Prefix: "xmlns", LocalName: "xlink", NamespaceURL: "http://www.w3.org/2000/xmlns/"},
}

// Namespace URLs used in HTML5 parsing.
const (
	NamespaceHTML   = "http://www.w3.org/1999/xhtml"
	NamespaceSVG    = "http://www.w3.org/2000/svg"
	NamespaceMathML = "http://www.w3.org/1998/Math/MathML"
	NamespaceXLink  = "http://www.w3.org/1999/xlink"
	NamespaceXML    = "http://www.w3.org/XML/1998/namespace"
	NamespaceXMLNS  = "http://www.w3.org/2000/xmlns/"
)

// IntegrationPoint represents an element that serves as an integration point.
type IntegrationPoint struct {
	Namespace string
	LocalName string
}

// HTMLIntegrationPoints are SVG/MathML elements that allow HTML content.
// Per HTML5 spec §13.2.6.5, these elements switch back to HTML parsing mode.
var HTMLIntegrationPoints = map[IntegrationPoint]bool{
	{Namespace: NamespaceMathML, LocalName: "annotation-xml"}: true,
	{Namespace: NamespaceSVG, LocalName: "foreignObject"}:     true,
	{Namespace: NamespaceSVG, LocalName: "desc"}:              true,
	{Namespace: NamespaceSVG, LocalName: "title"}:             true,
}

// MathMLTextIntegrationPoints are MathML elements that allow text integration.
// Per HTML5 spec §13.2.6.5, these elements can contain text.
var MathMLTextIntegrationPoints = map[IntegrationPoint]bool{
	{Namespace: NamespaceMathML, LocalName: "mi"}:    true,
	{Namespace: NamespaceMathML, LocalName: "mo"}:    true,
	{Namespace: NamespaceMathML, LocalName: "mn"}:    true,
	{Namespace: NamespaceMathML, LocalName: "ms"}:    true,
	{Namespace: NamespaceMathML, LocalName: "mtext"}: true,
}
