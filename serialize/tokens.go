// Package serialize provides HTML serialization for DOM nodes and token streams.
package serialize

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for token serialization.
var (
	ErrUnknownTokenType      = errors.New("unknown token type")
	ErrInvalidTokenFormat    = errors.New("invalid token format")
	ErrStartTagMissingFields = errors.New("startTag needs at least 3 elements")
	ErrEndTagMissingFields   = errors.New("endTag needs at least 3 elements")
	ErrEmptyTagMissingFields = errors.New("emptyTag needs at least 2 elements")
	ErrCharactersMissing     = errors.New("characters token needs at least 2 elements")
	ErrCommentMissing        = errors.New("comment token needs at least 2 elements")
	ErrDoctypeMissing        = errors.New("doctype token needs at least 2 elements")
)

// SerializeTokenOptions controls token serialization behavior.
type SerializeTokenOptions struct {
	// QuoteChar sets the preferred quote character for attributes (' or ")
	QuoteChar rune
	// UseTrailingSolidus adds trailing slash to void elements (e.g., <img />)
	UseTrailingSolidus bool
	// MinimizeBooleanAttributes omits value for boolean attributes (default true)
	MinimizeBooleanAttributes bool
	// EscapeLtInAttrs escapes < in attribute values
	EscapeLtInAttrs bool
	// EscapeRcdata escapes content in rcdata elements (script, style)
	EscapeRcdata bool
	// StripWhitespace collapses whitespace in text nodes
	StripWhitespace bool
	// OmitOptionalTags omits optional start/end tags per HTML5 spec
	OmitOptionalTags bool
	// InjectMetaCharset injects charset meta tag
	InjectMetaCharset bool
	// Encoding specifies the encoding for inject_meta_charset
	Encoding string
}

// DefaultSerializeTokenOptions returns default serialization options.
func DefaultSerializeTokenOptions() SerializeTokenOptions {
	return SerializeTokenOptions{
		QuoteChar:                 '"',
		MinimizeBooleanAttributes: true,
		OmitOptionalTags:          true,
	}
}

// SerializeTokens serializes a stream of html5lib test tokens to HTML.
// Each token is a json.RawMessage array in the html5lib format.
func SerializeTokens(tokens []json.RawMessage) (string, error) {
	opts := DefaultSerializeTokenOptions()
	return SerializeTokensWithOptions(tokens, opts)
}

// tokenSerializer walks a stream of html5lib-format tokens, tracking the
// bits of running state (raw-text nesting, whether we're inside <head>,
// whether a charset meta has already been seen or injected) that the
// per-kind handlers below need.
type tokenSerializer struct {
	sb                 *strings.Builder
	opts               SerializeTokenOptions
	tokens             []json.RawMessage
	rawTextDepth       int
	preformattedDepth  int
	inHead             bool
	headHasCharsetMeta bool
	injectedMeta       bool
}

type tokenHandler func(*tokenSerializer, []json.RawMessage, int) error

var tokenHandlers = map[string]tokenHandler{
	"StartTag":   (*tokenSerializer).handleStartTag,
	"EndTag":     (*tokenSerializer).handleEndTag,
	"EmptyTag":   func(ts *tokenSerializer, arr []json.RawMessage, _ int) error { return ts.handleEmptyTag(arr) },
	"Characters": func(ts *tokenSerializer, arr []json.RawMessage, _ int) error { return ts.handleCharacters(arr) },
	"Comment":    func(ts *tokenSerializer, arr []json.RawMessage, _ int) error { return ts.handleComment(arr) },
	"Doctype":    func(ts *tokenSerializer, arr []json.RawMessage, _ int) error { return ts.handleDoctype(arr) },
}

// SerializeTokensWithOptions serializes tokens with custom options.
func SerializeTokensWithOptions(tokens []json.RawMessage, opts SerializeTokenOptions) (string, error) {
	ts := &tokenSerializer{
		sb:     &strings.Builder{},
		opts:   opts,
		tokens: tokens,
	}

	for i, raw := range tokens {
		if ts.shouldInjectBeforeToken(raw) {
			typ, tag := getTokenInfo(raw)
			if typ == "EndTag" && tag == "head" {
				ts.injectMeta()
			}
		}

		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidTokenFormat, err)
		}
		if len(arr) == 0 {
			continue
		}

		var tokenType string
		if err := json.Unmarshal(arr[0], &tokenType); err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidTokenFormat, err)
		}

		handler, ok := tokenHandlers[tokenType]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownTokenType, tokenType)
		}
		if err := handler(ts, arr, i); err != nil {
			return "", err
		}
	}

	return ts.sb.String(), nil
}

func (ts *tokenSerializer) shouldInjectBeforeToken(raw json.RawMessage) bool {
	return ts.inHead && ts.opts.InjectMetaCharset && ts.opts.Encoding != "" && !ts.headHasCharsetMeta && !ts.injectedMeta
}

func (ts *tokenSerializer) injectMeta() {
	serializeInjectedMeta(ts.sb, ts.opts)
	ts.injectedMeta = true
}

// handleStartTag handles ["StartTag", namespace, tagName, attrs]
func (ts *tokenSerializer) handleStartTag(arr []json.RawMessage, idx int) error {
	if len(arr) < 3 {
		return ErrStartTagMissingFields
	}
	var tagName string
	if err := json.Unmarshal(arr[2], &tagName); err != nil {
		return fmt.Errorf("invalid tag name: %w", err)
	}

	if err := serializeStartTagToken(ts.sb, arr, ts.opts, ts.tokens, idx); err != nil {
		return err
	}

	if tagName == "head" {
		ts.inHead = true
		ts.injectedMeta = false
		if ts.opts.InjectMetaCharset && ts.opts.Encoding != "" {
			ts.headHasCharsetMeta = hasCharsetMetaAhead(ts.tokens, idx)
			if !ts.headHasCharsetMeta {
				ts.injectMeta()
			}
		}
	}
	if tagName == "pre" || tagName == "textarea" {
		ts.preformattedDepth++
	}
	if isRawTextElement(tagName) {
		ts.rawTextDepth++
	}
	return nil
}

// handleEndTag handles ["EndTag", namespace, tagName]
func (ts *tokenSerializer) handleEndTag(arr []json.RawMessage, idx int) error {
	if len(arr) < 3 {
		return ErrEndTagMissingFields
	}
	var tagName string
	if err := json.Unmarshal(arr[2], &tagName); err != nil {
		return fmt.Errorf("invalid tag name: %w", err)
	}

	if tagName == "head" && ts.shouldInjectBeforeToken(nil) {
		ts.injectMeta()
	}

	if err := serializeEndTagToken(ts.sb, arr, ts.opts, ts.tokens, idx); err != nil {
		return err
	}

	if tagName == "head" {
		ts.inHead = false
		ts.headHasCharsetMeta = false
		ts.injectedMeta = false
	}
	if tagName == "pre" || tagName == "textarea" {
		if ts.preformattedDepth > 0 {
			ts.preformattedDepth--
		}
	}
	if isRawTextElement(tagName) && ts.rawTextDepth > 0 {
		ts.rawTextDepth--
	}
	return nil
}

func (ts *tokenSerializer) handleEmptyTag(arr []json.RawMessage) error {
	return serializeEmptyTagToken(ts.sb, arr, ts.opts)
}

func (ts *tokenSerializer) handleCharacters(arr []json.RawMessage) error {
	return serializeCharactersToken(ts.sb, arr, ts.rawTextDepth > 0, ts.preformattedDepth > 0, ts.opts)
}

func (ts *tokenSerializer) handleComment(arr []json.RawMessage) error {
	return serializeCommentToken(ts.sb, arr)
}

func (ts *tokenSerializer) handleDoctype(arr []json.RawMessage) error {
	return serializeDoctypeToken(ts.sb, arr)
}

// serializeStartTagToken handles ["StartTag", namespace, tagName, attrs]
func serializeStartTagToken(sb *strings.Builder, arr []json.RawMessage, opts SerializeTokenOptions, tokens []json.RawMessage, idx int) error {
	if len(arr) < 3 {
		return ErrStartTagMissingFields
	}

	var tagName string
	if err := json.Unmarshal(arr[2], &tagName); err != nil {
		return fmt.Errorf("invalid tag name: %w", err)
	}

	if opts.OmitOptionalTags && shouldOmitStartTag(tagName, arr, tokens, idx) {
		return nil
	}

	sb.WriteByte('<')
	sb.WriteString(tagName)

	if len(arr) > 3 {
		if err := serializeTokenAttrs(sb, arr[3], opts, tagName); err != nil {
			return err
		}
	}

	if opts.UseTrailingSolidus && isVoidElement(tagName) {
		sb.WriteString(" /")
	}

	sb.WriteByte('>')
	return nil
}

// serializeEndTagToken handles ["EndTag", namespace, tagName]
func serializeEndTagToken(sb *strings.Builder, arr []json.RawMessage, opts SerializeTokenOptions, tokens []json.RawMessage, idx int) error {
	if len(arr) < 3 {
		return ErrEndTagMissingFields
	}

	var tagName string
	if err := json.Unmarshal(arr[2], &tagName); err != nil {
		return fmt.Errorf("invalid tag name: %w", err)
	}

	if opts.OmitOptionalTags && shouldOmitEndTag(tagName, tokens, idx) {
		return nil
	}

	sb.WriteString("</")
	sb.WriteString(tagName)
	sb.WriteByte('>')
	return nil
}

// serializeEmptyTagToken handles ["EmptyTag", tagName, attrs]
func serializeEmptyTagToken(sb *strings.Builder, arr []json.RawMessage, opts SerializeTokenOptions) error {
	if len(arr) < 2 {
		return ErrEmptyTagMissingFields
	}

	var tagName string
	if err := json.Unmarshal(arr[1], &tagName); err != nil {
		return fmt.Errorf("invalid tag name: %w", err)
	}

	sb.WriteByte('<')
	sb.WriteString(tagName)

	if len(arr) > 2 {
		if err := serializeTokenAttrs(sb, arr[2], opts, tagName); err != nil {
			return err
		}
	}

	if opts.UseTrailingSolidus {
		sb.WriteString(" /")
	}

	sb.WriteByte('>')
	return nil
}

// serializeTokenAttrs serializes attributes from either array or object format.
func serializeTokenAttrs(sb *strings.Builder, raw json.RawMessage, opts SerializeTokenOptions, tagName string) error {
	attrs, err := parseTokenAttrs(raw)
	if err != nil {
		return err
	}

	if opts.InjectMetaCharset && opts.Encoding != "" && tagName == "meta" {
		attrs = normalizeMetaCharsetAttrs(attrs, opts.Encoding)
	}

	if len(attrs) == 0 {
		return nil
	}

	sortTokenAttrs(attrs)
	for _, attr := range attrs {
		sb.WriteByte(' ')
		sb.WriteString(attr.Name)
		serializeTokenAttrValue(sb, attr.Name, attr.Value, opts)
	}

	return nil
}

// serializeTokenAttrValue serializes an attribute value with proper quoting.
// Per html5lib serialization spec:
// - Unquoted if value contains no special characters
// - Single quotes if value contains " but not '
// - Double quotes otherwise, escaping " as &quot;
func serializeTokenAttrValue(sb *strings.Builder, name, value string, opts SerializeTokenOptions) {
	if opts.MinimizeBooleanAttributes && (value == "" || value == name) {
		return
	}

	if value == "" {
		sb.WriteString("=\"\"")
		return
	}

	hasDoubleQuote := strings.ContainsRune(value, '"')
	hasSingleQuote := strings.ContainsRune(value, '\'')
	needsQuoting := needsTokenAttrQuoting(value)

	useQuoteChar := opts.QuoteChar
	if useQuoteChar == 0 {
		useQuoteChar = '"'
	}

	if useQuoteChar == '\'' {
		sb.WriteString("='")
		for _, r := range value {
			switch r {
			case '\'':
				sb.WriteString("&#39;")
			case '&':
				sb.WriteString("&amp;")
			default:
				sb.WriteRune(r)
			}
		}
		sb.WriteByte('\'')
		return
	}

	switch {
	case !needsQuoting:
		sb.WriteByte('=')
		sb.WriteString(value)
	case hasDoubleQuote && !hasSingleQuote:
		sb.WriteString("='")
		for _, r := range value {
			if r == '&' {
				sb.WriteString("&amp;")
			} else {
				sb.WriteRune(r)
			}
		}
		sb.WriteByte('\'')
	default:
		sb.WriteString("=\"")
		for _, r := range value {
			switch r {
			case '"':
				sb.WriteString("&quot;")
			case '&':
				sb.WriteString("&amp;")
			case '<':
				if opts.EscapeLtInAttrs {
					sb.WriteString("&lt;")
				} else {
					sb.WriteRune(r)
				}
			default:
				sb.WriteRune(r)
			}
		}
		sb.WriteByte('"')
	}
}

// needsTokenAttrQuoting returns true if the attribute value needs quoting.
func needsTokenAttrQuoting(value string) bool {
	for _, r := range value {
		switch r {
		case ' ', '\t', '\n', '\f', '\r', '"', '\'', '=', '>', '`':
			return true
		}
	}
	return false
}

// serializeCharactersToken handles ["Characters", data]
func serializeCharactersToken(sb *strings.Builder, arr []json.RawMessage, inRawText bool, inPreformatted bool, opts SerializeTokenOptions) error {
	if len(arr) < 2 {
		return ErrCharactersMissing
	}

	var data string
	if err := json.Unmarshal(arr[1], &data); err != nil {
		return fmt.Errorf("invalid character data: %w", err)
	}

	if opts.StripWhitespace && !inRawText && !inPreformatted {
		data = collapseTokenWhitespace(data)
	}

	if inRawText && !opts.EscapeRcdata {
		sb.WriteString(data)
	} else {
		for _, r := range data {
			switch r {
			case '&':
				sb.WriteString("&amp;")
			case '<':
				sb.WriteString("&lt;")
			case '>':
				sb.WriteString("&gt;")
			default:
				sb.WriteRune(r)
			}
		}
	}
	return nil
}

// serializeCommentToken handles ["Comment", data]
func serializeCommentToken(sb *strings.Builder, arr []json.RawMessage) error {
	if len(arr) < 2 {
		return ErrCommentMissing
	}

	var data string
	if err := json.Unmarshal(arr[1], &data); err != nil {
		return fmt.Errorf("invalid comment data: %w", err)
	}

	sb.WriteString("<!--")
	sb.WriteString(data)
	sb.WriteString("-->")
	return nil
}

// serializeDoctypeToken handles ["Doctype", name, publicId?, systemId?]
func serializeDoctypeToken(sb *strings.Builder, arr []json.RawMessage) error {
	if len(arr) < 2 {
		return ErrDoctypeMissing
	}

	var name string
	if err := json.Unmarshal(arr[1], &name); err != nil {
		return fmt.Errorf("invalid doctype name: %w", err)
	}

	sb.WriteString("<!DOCTYPE ")
	sb.WriteString(name)

	var publicID string
	if len(arr) > 2 {
		if err := json.Unmarshal(arr[2], &publicID); err != nil {
			publicID = ""
		}
	}

	var systemID string
	if len(arr) > 3 {
		if err := json.Unmarshal(arr[3], &systemID); err != nil {
			systemID = ""
		}
	}

	if publicID != "" {
		sb.WriteString(" PUBLIC \"")
		sb.WriteString(publicID)
		sb.WriteByte('"')
		if systemID != "" {
			sb.WriteString(" \"")
			sb.WriteString(systemID)
			sb.WriteByte('"')
		}
	} else if systemID != "" {
		sb.WriteString(" SYSTEM \"")
		sb.WriteString(systemID)
		sb.WriteByte('"')
	}

	sb.WriteByte('>')
	return nil
}

// isRawTextElement returns true for elements whose content is not escaped.
func isRawTextElement(tag string) bool {
	switch tag {
	case "script", "style", "xmp", "iframe", "noembed", "noframes", "plaintext":
		return true
	}
	return false
}

// startTagOmissionRules decides, per tag name, whether an attribute-free
// start tag can be dropped from the serialized output. Per
// https://html.spec.whatwg.org/multipage/syntax.html#optional-tags
var startTagOmissionRules = map[string]func(tokens []json.RawMessage, idx int) bool{
	"html": func(tokens []json.RawMessage, idx int) bool {
		nextType, _ := getNextTokenInfo(tokens, idx)
		if nextType == "Comment" {
			return false
		}
		if nextType == "Characters" && startsWithSpace(tokens, idx) {
			return false
		}
		return true
	},
	"head": func(tokens []json.RawMessage, idx int) bool {
		nextType, _ := getNextTokenInfo(tokens, idx)
		return nextType == "StartTag" || nextType == "EmptyTag" || nextType == "EndTag"
	},
	"body": func(tokens []json.RawMessage, idx int) bool {
		nextType, _ := getNextTokenInfo(tokens, idx)
		if nextType == "Comment" {
			return false
		}
		if nextType == "Characters" && startsWithSpace(tokens, idx) {
			return false
		}
		return true
	},
	"colgroup": func(tokens []json.RawMessage, idx int) bool {
		nextType, nextTag := getNextTokenInfo(tokens, idx)
		if nextType == "StartTag" || nextType == "EmptyTag" {
			return nextTag == "col"
		}
		return false
	},
	"tbody": func(tokens []json.RawMessage, idx int) bool {
		nextType, nextTag := getNextTokenInfo(tokens, idx)
		if nextType == "StartTag" && nextTag == "tr" {
			prevType, prevTag := getPrevTokenInfo(tokens, idx)
			return prevType == "StartTag" && prevTag == "table"
		}
		return false
	},
}

// shouldOmitStartTag checks if a start tag can be omitted per HTML5 spec.
func shouldOmitStartTag(tagName string, arr []json.RawMessage, tokens []json.RawMessage, idx int) bool {
	if hasAttributes(arr) {
		return false
	}
	rule, ok := startTagOmissionRules[tagName]
	if !ok {
		return false
	}
	return rule(tokens, idx)
}

// startsWithSpace checks if the next Characters token starts with whitespace.
func startsWithSpace(tokens []json.RawMessage, idx int) bool {
	if idx+1 >= len(tokens) {
		return false
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(tokens[idx+1], &arr); err != nil || len(arr) < 2 {
		return false
	}

	var data string
	if err := json.Unmarshal(arr[1], &data); err != nil || len(data) == 0 {
		return false
	}

	switch data[0] {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

// hasAttributes returns true if the token has any attributes.
func hasAttributes(arr []json.RawMessage) bool {
	// For StartTag: ["StartTag", namespace, tagName, attrs]
	if len(arr) <= 3 {
		return false
	}

	var attrArray []interface{}
	if err := json.Unmarshal(arr[3], &attrArray); err == nil && len(attrArray) > 0 {
		return true
	}

	var attrObj map[string]interface{}
	if err := json.Unmarshal(arr[3], &attrObj); err == nil && len(attrObj) > 0 {
		return true
	}

	return false
}

// pFollowBreakout names the elements whose start tag, appearing right
// after an unclosed <p>, allows the </p> end tag to be omitted.
var pFollowBreakout = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"details": true, "dialog": true, "dir": true, "div": true, "dl": true,
	"fieldset": true, "figcaption": true, "figure": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "hgroup": true, "hr": true, "main": true,
	"menu": true, "nav": true, "ol": true, "p": true, "pre": true,
	"search": true, "section": true, "table": true, "ul": true, "datagrid": true,
}

// endTagOmissionRules decides, per tag name, whether an end tag can be
// dropped from the serialized output.
var endTagOmissionRules = map[string]func(tokens []json.RawMessage, idx int) bool{
	"html": func(tokens []json.RawMessage, idx int) bool {
		nextType, _ := getNextTokenInfo(tokens, idx)
		if nextType == "Comment" {
			return false
		}
		if nextType == "Characters" && startsWithSpace(tokens, idx) {
			return false
		}
		return true
	},
	"head": func(tokens []json.RawMessage, idx int) bool {
		nextType, _ := getNextTokenInfo(tokens, idx)
		return !(nextType == "Comment" || (nextType == "Characters" && startsWithSpace(tokens, idx)))
	},
	"body": func(tokens []json.RawMessage, idx int) bool {
		nextType, _ := getNextTokenInfo(tokens, idx)
		return !(nextType == "Comment" || (nextType == "Characters" && startsWithSpace(tokens, idx)))
	},
	"li": func(tokens []json.RawMessage, idx int) bool {
		nextType, nextTag := getNextTokenInfo(tokens, idx)
		return nextType == "" || (nextType == "StartTag" && nextTag == "li") || nextType == "EndTag"
	},
	"dt": func(tokens []json.RawMessage, idx int) bool {
		nextType, nextTag := getNextTokenInfo(tokens, idx)
		return nextType == "StartTag" && (nextTag == "dt" || nextTag == "dd")
	},
	"dd": func(tokens []json.RawMessage, idx int) bool {
		nextType, nextTag := getNextTokenInfo(tokens, idx)
		return nextType == "" || (nextType == "StartTag" && (nextTag == "dd" || nextTag == "dt")) || nextType == "EndTag"
	},
	"p": func(tokens []json.RawMessage, idx int) bool {
		nextType, nextTag := getNextTokenInfo(tokens, idx)
		if nextType == "" || nextType == "EndTag" {
			return true
		}
		if (nextType == "StartTag" || nextType == "EmptyTag") && pFollowBreakout[nextTag] {
			return true
		}
		return false
	},
	"optgroup": func(tokens []json.RawMessage, idx int) bool {
		nextType, nextTag := getNextTokenInfo(tokens, idx)
		return nextType == "" || nextType == "EndTag" || (nextType == "StartTag" && nextTag == "optgroup")
	},
	"option": func(tokens []json.RawMessage, idx int) bool {
		nextType, nextTag := getNextTokenInfo(tokens, idx)
		return nextType == "" || nextType == "EndTag" ||
			(nextType == "StartTag" && (nextTag == "option" || nextTag == "optgroup"))
	},
	"colgroup": func(tokens []json.RawMessage, idx int) bool {
		nextType, nextTag := getNextTokenInfo(tokens, idx)
		if nextType == "Comment" || (nextType == "Characters" && startsWithSpace(tokens, idx)) {
			return false
		}
		if nextType == "StartTag" && nextTag == "colgroup" {
			return false
		}
		return true
	},
	"thead": func(tokens []json.RawMessage, idx int) bool {
		nextType, nextTag := getNextTokenInfo(tokens, idx)
		return nextType == "StartTag" && (nextTag == "tbody" || nextTag == "tfoot")
	},
	"tbody": func(tokens []json.RawMessage, idx int) bool {
		nextType, nextTag := getNextTokenInfo(tokens, idx)
		return nextType == "" || nextType == "EndTag" ||
			(nextType == "StartTag" && (nextTag == "tbody" || nextTag == "tfoot"))
	},
	"tfoot": func(tokens []json.RawMessage, idx int) bool {
		nextType, nextTag := getNextTokenInfo(tokens, idx)
		return nextType == "" || nextType == "EndTag" || (nextType == "StartTag" && nextTag == "tbody")
	},
	"tr": func(tokens []json.RawMessage, idx int) bool {
		nextType, nextTag := getNextTokenInfo(tokens, idx)
		return nextType == "" || nextType == "EndTag" || (nextType == "StartTag" && nextTag == "tr")
	},
	"td": func(tokens []json.RawMessage, idx int) bool {
		nextType, nextTag := getNextTokenInfo(tokens, idx)
		return nextType == "" || nextType == "EndTag" ||
			(nextType == "StartTag" && (nextTag == "td" || nextTag == "th"))
	},
	"th": func(tokens []json.RawMessage, idx int) bool {
		nextType, nextTag := getNextTokenInfo(tokens, idx)
		return nextType == "" || nextType == "EndTag" ||
			(nextType == "StartTag" && (nextTag == "td" || nextTag == "th"))
	},
}

// shouldOmitEndTag checks if an end tag can be omitted per HTML5 spec.
func shouldOmitEndTag(tagName string, tokens []json.RawMessage, idx int) bool {
	rule, ok := endTagOmissionRules[tagName]
	if !ok {
		return false
	}
	return rule(tokens, idx)
}

type tokenAttr struct {
	Name  string
	Value string
}

func parseTokenAttrs(raw json.RawMessage) ([]tokenAttr, error) {
	var attrArray []struct {
		Namespace *string `json:"namespace"`
		Name      string  `json:"name"`
		Value     string  `json:"value"`
	}
	if err := json.Unmarshal(raw, &attrArray); err == nil {
		if len(attrArray) == 0 {
			return nil, nil
		}
		attrs := make([]tokenAttr, 0, len(attrArray))
		for _, attr := range attrArray {
			attrs = append(attrs, tokenAttr{Name: attr.Name, Value: attr.Value})
		}
		return attrs, nil
	}

	var attrObj map[string]string
	if err := json.Unmarshal(raw, &attrObj); err == nil {
		if len(attrObj) == 0 {
			return nil, nil
		}
		attrs := make([]tokenAttr, 0, len(attrObj))
		for name, value := range attrObj {
			attrs = append(attrs, tokenAttr{Name: name, Value: value})
		}
		return attrs, nil
	}

	return nil, nil
}

func sortTokenAttrs(attrs []tokenAttr) {
	if len(attrs) < 2 {
		return
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].Name < attrs[j].Name
	})
}

func normalizeMetaCharsetAttrs(attrs []tokenAttr, encoding string) []tokenAttr {
	if len(attrs) == 0 {
		return attrs
	}
	var hasHTTP bool
	var httpIdx int
	var hasContent bool
	var contentIdx int
	for i, attr := range attrs {
		if strings.EqualFold(attr.Name, "charset") {
			attrs[i].Value = encoding
			return attrs
		}
		if strings.EqualFold(attr.Name, "http-equiv") {
			hasHTTP = true
			httpIdx = i
		}
		if strings.EqualFold(attr.Name, "content") {
			hasContent = true
			contentIdx = i
		}
	}
	if hasHTTP && strings.EqualFold(attrs[httpIdx].Value, "content-type") {
		content := "text/html; charset=" + encoding
		if hasContent {
			attrs[contentIdx].Value = content
		} else {
			attrs = append(attrs, tokenAttr{Name: "content", Value: content})
		}
	}
	return attrs
}

func hasCharsetMetaAhead(tokens []json.RawMessage, idx int) bool {
	for i := idx + 1; i < len(tokens); i++ {
		typ, tag := getTokenInfo(tokens[i])
		if typ == "" {
			return false
		}
		if typ == "EndTag" && tag == "head" {
			return false
		}
		if typ != "StartTag" && typ != "EmptyTag" {
			continue
		}
		if tag != "meta" {
			continue
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(tokens[i], &arr); err != nil {
			continue
		}
		var rawAttrs json.RawMessage
		if typ == "StartTag" {
			if len(arr) > 3 {
				rawAttrs = arr[3]
			}
		} else if len(arr) > 2 {
			rawAttrs = arr[2]
		}
		if len(rawAttrs) == 0 {
			continue
		}
		attrs, _ := parseTokenAttrs(rawAttrs)
		for _, attr := range attrs {
			if strings.EqualFold(attr.Name, "charset") {
				return true
			}
		}
		for _, attr := range attrs {
			if strings.EqualFold(attr.Name, "http-equiv") && strings.EqualFold(attr.Value, "content-type") {
				return true
			}
		}
	}
	return false
}

func getTokenInfo(raw json.RawMessage) (string, string) {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil || len(arr) == 0 {
		return "", ""
	}
	var tokenType string
	if err := json.Unmarshal(arr[0], &tokenType); err != nil {
		return "", ""
	}
	return tokenType, tokenTagName(tokenType, arr)
}

func tokenTagName(tokenType string, arr []json.RawMessage) string {
	var tagName string
	switch tokenType {
	case "StartTag", "EndTag":
		if len(arr) >= 3 {
			_ = json.Unmarshal(arr[2], &tagName)
		}
	case "EmptyTag":
		if len(arr) >= 2 {
			_ = json.Unmarshal(arr[1], &tagName)
		}
	}
	return tagName
}

func serializeInjectedMeta(sb *strings.Builder, opts SerializeTokenOptions) {
	if opts.Encoding == "" {
		return
	}
	sb.WriteString("<meta charset")
	serializeTokenAttrValue(sb, "charset", opts.Encoding, opts)
	sb.WriteByte('>')
}

func collapseTokenWhitespace(s string) string {
	var sb strings.Builder
	inWhitespace := false
	for _, r := range s {
		if isWhitespaceRune(r) {
			if !inWhitespace {
				sb.WriteByte(' ')
				inWhitespace = true
			}
			continue
		}
		sb.WriteRune(r)
		inWhitespace = false
	}
	return sb.String()
}

func isWhitespaceRune(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	default:
		return false
	}
}

// tokenAt returns the type and tag name of the token at idx, or
// ("", "") if that index falls outside the stream. getNextTokenInfo and
// getPrevTokenInfo are thin wrappers kept for call-site readability.
func tokenAt(tokens []json.RawMessage, idx int) (string, string) {
	if idx < 0 || idx >= len(tokens) {
		return "", ""
	}

	var tokenType, tagName string
	var arr []json.RawMessage
	if err := json.Unmarshal(tokens[idx], &arr); err != nil || len(arr) == 0 {
		return "", ""
	}
	if err := json.Unmarshal(arr[0], &tokenType); err != nil {
		return "", ""
	}

	switch tokenType {
	case "StartTag", "EndTag":
		if len(arr) >= 3 {
			_ = json.Unmarshal(arr[2], &tagName)
		}
	case "EmptyTag":
		if len(arr) >= 2 {
			_ = json.Unmarshal(arr[1], &tagName)
		}
	}

	return tokenType, tagName
}

// getNextTokenInfo returns the type and tag name of the next token.
func getNextTokenInfo(tokens []json.RawMessage, idx int) (string, string) {
	return tokenAt(tokens, idx+1)
}

func getPrevTokenInfo(tokens []json.RawMessage, idx int) (string, string) {
	return tokenAt(tokens, idx-1)
}
