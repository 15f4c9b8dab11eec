package tokenizer

import (
	"strings"
	"sync"
	"unicode"

	"github.com/basalt-labs/html5/internal/constants"
)

// attrSetPool recycles the "have we seen this attribute name" sets used
// while building a tag token, avoiding a fresh map allocation per tag.
var attrSetPool = sync.Pool{
	New: func() interface{} {
		return make(map[string]struct{}, 8)
	},
}

func acquireAttrSet() map[string]struct{} {
	m := attrSetPool.Get().(map[string]struct{})
	for k := range m {
		delete(m, k)
	}
	return m
}

func releaseAttrSet(m map[string]struct{}) {
	if m != nil {
		attrSetPool.Put(m)
	}
}

// tokenPool recycles Token values for callers that consume tokens one at a
// time and are done with each before asking for the next (see getToken).
var tokenPool = sync.Pool{
	New: func() interface{} {
		return new(Token)
	},
}

// getToken hands out a zeroed Token from the pool.
func getToken() *Token {
	tok := tokenPool.Get().(*Token)
	*tok = Token{}
	return tok
}

// putToken returns a Token to the pool after the caller is finished with it.
// Its backing Attrs slice is dropped rather than reused, since attribute
// counts vary widely and a stale capacity doesn't help much.
func putToken(tok *Token) {
	if tok == nil {
		return
	}
	tok.Attrs = nil
	tokenPool.Put(tok)
}

// ParseError records one deviation from the spec-defined tokenization
// algorithm (an "error" in WHATWG's terminology, not a fatal condition).
type ParseError struct {
	Code    string
	Message string
	Line    int
	Column  int
}

// Tokenizer converts a rune stream into HTML5 tokens, following the
// WHATWG tokenization state machine. It is not safe for concurrent use.
type Tokenizer struct {
	cfg Options

	rawInput string

	chars  []rune
	cursor int

	// isASCIIOnly short-circuits nextRune/peekRune onto a plain byte slice
	// when the input contains no multi-byte UTF-8 sequences, skipping the
	// rune-at-a-time path entirely.
	isASCIIOnly bool
	asciiBytes  []byte

	st     State
	textSt State

	pushedBack bool
	skipLF     bool

	line int
	col  int

	tagKind        TokenKind
	tagName        []rune
	tagAttrs       []Attr
	tagAttrSeen    map[string]struct{}
	tagSelfClosing bool

	attrName      []rune
	attrValue     []rune
	attrValueAmp  bool
	commentBuf    []rune
	commentAtEOF  bool

	doctypeName        []rune
	doctypePublic      *[]rune // nil = absent, non-nil-empty = ""
	doctypeSystem      *[]rune
	doctypeForceQuirks bool

	// Appropriate end-tag bookkeeping for RCDATA/RAWTEXT/script data.
	rawtextTag  string
	origTagName []rune
	scratch     []rune

	lastStartTag string

	textBuf strings.Builder
	textAmp bool

	pending []Token
	errs    []ParseError

	cdataAllowed bool
}

// New creates a tokenizer with default options.
func New(input string) *Tokenizer {
	return NewWithOptions(input, defaultOptions())
}

// NewWithOptions creates a tokenizer with explicit Options.
func NewWithOptions(input string, opts Options) *Tokenizer {
	t := &Tokenizer{
		cfg:    opts,
		st:     DataState,
		textSt: DataState,
		line:   1,
		col:    0,
	}
	t.rawInput = input
	t.reset(input)
	return t
}

func (t *Tokenizer) reset(input string) {
	t.isASCIIOnly = isASCIIString(input)

	if input != "" && t.cfg.DiscardBOM {
		r := []rune(input)
		if len(r) > 0 && r[0] == 0xFEFF {
			r = r[1:]
		}
		t.chars = r
	} else {
		t.chars = []rune(input)
	}

	if t.isASCIIOnly {
		// A U+FEFF BOM is never ASCII, so DiscardBOM never fires here and
		// the byte slice stays index-aligned with t.chars above.
		t.asciiBytes = []byte(input)
	} else {
		t.asciiBytes = t.asciiBytes[:0]
	}

	t.cursor = 0
	t.pushedBack = false
	t.skipLF = false
	t.line = 1
	t.col = 0
	t.textSt = t.st

	t.tagKind = StartTag
	t.tagName = t.tagName[:0]
	t.tagAttrs = t.tagAttrs[:0]
	releaseAttrSet(t.tagAttrSeen)
	t.tagAttrSeen = acquireAttrSet()
	t.tagSelfClosing = false
	t.attrName = t.attrName[:0]
	t.attrValue = t.attrValue[:0]
	t.attrValueAmp = false
	t.commentBuf = t.commentBuf[:0]
	t.doctypeName = t.doctypeName[:0]
	t.doctypePublic = nil
	t.doctypeSystem = nil
	t.doctypeForceQuirks = false

	t.rawtextTag = ""
	t.origTagName = t.origTagName[:0]
	t.scratch = t.scratch[:0]

	t.textBuf.Reset()
	t.textAmp = false

	t.pending = nil
	t.errs = nil
}

// SetDiscardBOM controls whether a leading U+FEFF is dropped before
// tokenization begins. Call this before consuming any tokens.
func (t *Tokenizer) SetDiscardBOM(discard bool) {
	if t.cfg.DiscardBOM == discard {
		return
	}
	t.cfg.DiscardBOM = discard
	t.reset(t.rawInput)
}

// SetXMLCoercion enables or disables the XML-output text/comment coercions.
func (t *Tokenizer) SetXMLCoercion(enabled bool) {
	t.cfg.XMLCoercion = enabled
}

// SetAllowCDATA toggles CDATA section parsing, used in foreign content.
func (t *Tokenizer) SetAllowCDATA(enabled bool) {
	t.cdataAllowed = enabled
}

// SetState forces the tokenizer into the given state. The tree builder uses
// this to switch into RCDATA/RAWTEXT/script-data after seeing a start tag.
func (t *Tokenizer) SetState(state State) {
	t.st = state
	switch state {
	case DataState, RCDATAState, RAWTEXTState, ScriptDataState, PLAINTEXTState, CDATASectionState:
		t.textSt = state
	default:
	}
	if (state == RCDATAState || state == RAWTEXTState || state == ScriptDataState) && t.rawtextTag == "" && t.lastStartTag != "" {
		t.rawtextTag = t.lastStartTag
	}
}

// SetLastStartTag records the "appropriate end tag" name used to match
// RCDATA/RAWTEXT/script-data end tags.
func (t *Tokenizer) SetLastStartTag(name string) {
	t.lastStartTag = name
	t.rawtextTag = name
}

// Errors returns the parse errors accumulated so far.
func (t *Tokenizer) Errors() []ParseError {
	return t.errs
}

// Next returns the next token, or a Token with Type == EOF once input is
// exhausted. Calling Next again after EOF keeps returning EOF tokens.
func (t *Tokenizer) Next() Token {
	if len(t.pending) > 0 {
		tok := t.pending[0]
		t.pending = t.pending[1:]
		return tok
	}
	for len(t.pending) == 0 {
		t.step()
	}
	tok := t.pending[0]
	t.pending = t.pending[1:]
	return tok
}

// stateDispatch maps each tokenizer state to the function that handles it.
// States absent from the table (ones the algorithm above never reaches in
// practice) fall back to Data.
var stateDispatch = map[State]func(*Tokenizer){
	DataState:                                      (*Tokenizer).handleData,
	TagOpenState:                                    (*Tokenizer).handleTagOpen,
	EndTagOpenState:                                 (*Tokenizer).handleEndTagOpen,
	TagNameState:                                    (*Tokenizer).handleTagName,
	BeforeAttributeNameState:                        (*Tokenizer).handleBeforeAttrName,
	AttributeNameState:                              (*Tokenizer).handleAttrName,
	AfterAttributeNameState:                         (*Tokenizer).handleAfterAttrName,
	BeforeAttributeValueState:                       (*Tokenizer).handleBeforeAttrValue,
	AttributeValueDoubleQuotedState:                 (*Tokenizer).handleAttrValueDQ,
	AttributeValueSingleQuotedState:                 (*Tokenizer).handleAttrValueSQ,
	AttributeValueUnquotedState:                     (*Tokenizer).handleAttrValueUnquoted,
	AfterAttributeValueQuotedState:                  (*Tokenizer).handleAfterAttrValueQuoted,
	SelfClosingStartTagState:                        (*Tokenizer).handleSelfClosingStartTag,
	MarkupDeclarationOpenState:                      (*Tokenizer).handleMarkupDeclOpen,
	CommentStartState:                               (*Tokenizer).handleCommentStart,
	CommentStartDashState:                           (*Tokenizer).handleCommentStartDash,
	CommentState:                                    (*Tokenizer).handleComment,
	CommentEndDashState:                             (*Tokenizer).handleCommentEndDash,
	CommentEndState:                                 (*Tokenizer).handleCommentEnd,
	CommentEndBangState:                             (*Tokenizer).handleCommentEndBang,
	BogusCommentState:                               (*Tokenizer).handleBogusComment,
	DOCTYPEState:                                     (*Tokenizer).handleDoctype,
	BeforeDOCTYPENameState:                           (*Tokenizer).handleBeforeDoctypeName,
	DOCTYPENameState:                                 (*Tokenizer).handleDoctypeName,
	AfterDOCTYPENameState:                            (*Tokenizer).handleAfterDoctypeName,
	BogusDOCTYPEState:                                (*Tokenizer).handleBogusDoctype,
	AfterDOCTYPEPublicKeywordState:                   (*Tokenizer).handleAfterDoctypePublicKeyword,
	AfterDOCTYPESystemKeywordState:                   (*Tokenizer).handleAfterDoctypeSystemKeyword,
	BeforeDOCTYPEPublicIdentifierState:               (*Tokenizer).handleBeforeDoctypePublicIdentifier,
	DOCTYPEPublicIdentifierDoubleQuotedState:         (*Tokenizer).handleDoctypePublicIDDQ,
	DOCTYPEPublicIdentifierSingleQuotedState:         (*Tokenizer).handleDoctypePublicIDSQ,
	AfterDOCTYPEPublicIdentifierState:                (*Tokenizer).handleAfterDoctypePublicIdentifier,
	BetweenDOCTYPEPublicAndSystemIdentifiersState:    (*Tokenizer).handleBetweenDoctypeIdentifiers,
	BeforeDOCTYPESystemIdentifierState:               (*Tokenizer).handleBeforeDoctypeSystemIdentifier,
	DOCTYPESystemIdentifierDoubleQuotedState:         (*Tokenizer).handleDoctypeSystemIDDQ,
	DOCTYPESystemIdentifierSingleQuotedState:         (*Tokenizer).handleDoctypeSystemIDSQ,
	AfterDOCTYPESystemIdentifierState:                (*Tokenizer).handleAfterDoctypeSystemIdentifier,
	CDATASectionState:                                (*Tokenizer).handleCDATASection,
	CDATASectionBracketState:                         (*Tokenizer).handleCDATASectionBracket,
	CDATASectionEndState:                             (*Tokenizer).handleCDATASectionEnd,
	RCDATAState:                                      (*Tokenizer).handleRCDATA,
	RCDATALessThanSignState:                          (*Tokenizer).handleRCDATALessThanSign,
	RCDATAEndTagOpenState:                            (*Tokenizer).handleRCDATAEndTagOpen,
	RCDATAEndTagNameState:                            (*Tokenizer).handleRCDATAEndTagName,
	RAWTEXTState:                                     (*Tokenizer).handleRAWTEXT,
	ScriptDataState:                                  (*Tokenizer).handleRAWTEXT, // script data rides the RAWTEXT path plus its own escapes.
	RAWTEXTLessThanSignState:                         (*Tokenizer).handleRAWTEXTLessThanSign,
	RAWTEXTEndTagOpenState:                           (*Tokenizer).handleRAWTEXTEndTagOpen,
	RAWTEXTEndTagNameState:                           (*Tokenizer).handleRAWTEXTEndTagName,
	PLAINTEXTState:                                   (*Tokenizer).handlePlaintext,
	ScriptDataEscapedState:                           (*Tokenizer).handleScriptDataEscaped,
	ScriptDataEscapedDashState:                       (*Tokenizer).handleScriptDataEscapedDash,
	ScriptDataEscapedDashDashState:                   (*Tokenizer).handleScriptDataEscapedDashDash,
	ScriptDataEscapedLessThanSignState:               (*Tokenizer).handleScriptDataEscapedLessThanSign,
	ScriptDataEscapedEndTagOpenState:                 (*Tokenizer).handleScriptDataEscapedEndTagOpen,
	ScriptDataEscapedEndTagNameState:                 (*Tokenizer).handleScriptDataEscapedEndTagName,
	ScriptDataDoubleEscapeStartState:                 (*Tokenizer).handleScriptDataDoubleEscapeStart,
	ScriptDataDoubleEscapedState:                     (*Tokenizer).handleScriptDataDoubleEscaped,
	ScriptDataDoubleEscapedDashState:                 (*Tokenizer).handleScriptDataDoubleEscapedDash,
	ScriptDataDoubleEscapedDashDashState:             (*Tokenizer).handleScriptDataDoubleEscapedDashDash,
	ScriptDataDoubleEscapedLessThanSignState:         (*Tokenizer).handleScriptDataDoubleEscapedLessThanSign,
	ScriptDataDoubleEscapeEndState:                   (*Tokenizer).handleScriptDataDoubleEscapeEnd,
}

func (t *Tokenizer) step() {
	if h, ok := stateDispatch[t.st]; ok {
		h(t)
		return
	}
	// A state with no registered handler is treated as Data; this keeps
	// unimplemented corners of the machine from looping forever.
	t.st = DataState
}

func (t *Tokenizer) nextRune() (rune, bool) {
	if t.pushedBack {
		t.pushedBack = false
		if t.cursor == 0 {
			return 0, false
		}
		t.cursor--
	}

	for {
		c, ok := t.rawNext()
		if !ok {
			return 0, false
		}

		if c == '\r' {
			t.skipLF = true
			t.trackPos('\n')
			return '\n', true
		}
		if c == '\n' {
			if t.skipLF {
				t.skipLF = false
				continue
			}
			t.trackPos('\n')
			return '\n', true
		}

		t.skipLF = false
		t.trackPos(c)
		return c, true
	}
}

// rawNext reads the next raw codepoint at the cursor with no CRLF handling,
// taking the byte-indexed ASCII path when the whole input qualifies.
func (t *Tokenizer) rawNext() (rune, bool) {
	if t.isASCIIOnly {
		if t.cursor >= len(t.asciiBytes) {
			return 0, false
		}
		b := t.asciiBytes[t.cursor]
		t.cursor++
		return rune(b), true
	}
	if t.cursor >= len(t.chars) {
		return 0, false
	}
	c := t.chars[t.cursor]
	t.cursor++
	return c, true
}

func (t *Tokenizer) peekRune(offset int) (rune, bool) {
	i := t.cursor + offset
	if t.pushedBack {
		i--
	}
	if t.isASCIIOnly {
		if i < 0 || i >= len(t.asciiBytes) {
			return 0, false
		}
		return rune(t.asciiBytes[i]), true
	}
	if i < 0 || i >= len(t.chars) {
		return 0, false
	}
	return t.chars[i], true
}

func isASCIIString(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func (t *Tokenizer) trackPos(c rune) {
	if c == '\n' {
		t.line++
		t.col = 0
		return
	}
	t.col++
}

func (t *Tokenizer) push(tok Token) {
	t.pending = append(t.pending, tok)
}

func (t *Tokenizer) pushEOF() {
	t.flushBuf()
	t.push(Token{Type: EOF})
}

func (t *Tokenizer) recordError(code string) {
	t.errs = append(t.errs, ParseError{
		Code:   code,
		Line:   t.line,
		Column: max(1, t.col),
	})
}

func (t *Tokenizer) pushBack() {
	t.pushedBack = true
}

func (t *Tokenizer) bufferRune(r rune) {
	if r == '&' {
		t.textAmp = true
	}
	t.textBuf.WriteRune(r)
}

func (t *Tokenizer) flushBuf() {
	if t.textBuf.Len() == 0 {
		return
	}
	data := t.textBuf.String()
	t.textBuf.Reset()

	if (t.textSt == DataState || t.textSt == RCDATAState) && t.textAmp {
		data = decodeEntitiesInText(data, false)
	}
	t.textAmp = false

	if t.cfg.XMLCoercion {
		data = coerceTextForXML(data)
	}

	t.push(Token{Type: Character, Data: data})
}

func (t *Tokenizer) commitAttr() {
	if len(t.attrName) == 0 {
		return
	}
	name := constants.InternAttributeName(string(t.attrName))
	t.attrName = t.attrName[:0]

	if _, exists := t.tagAttrSeen[name]; exists {
		t.recordError("duplicate-attribute")
		t.attrValue = t.attrValue[:0]
		t.attrValueAmp = false
		return
	}

	value := ""
	if len(t.attrValue) > 0 {
		value = string(t.attrValue)
	}
	if t.attrValueAmp {
		value = decodeEntitiesInText(value, true)
	}
	t.tagAttrs = append(t.tagAttrs, Attr{Name: name, Value: value})
	t.tagAttrSeen[name] = struct{}{}

	t.attrValue = t.attrValue[:0]
	t.attrValueAmp = false
}

// pushTag finalizes and emits the in-progress tag token, switching the
// tokenizer into RCDATA/RAWTEXT/script-data/PLAINTEXT for elements whose
// content model demands it. It reports whether such a switch happened, so
// callers that would otherwise fall through to DataState can skip that.
func (t *Tokenizer) pushTag() bool {
	var switched bool
	name := constants.InternTagName(string(t.tagName))
	attrs := append([]Attr(nil), t.tagAttrs...)
	tok := Token{
		Type:        t.tagKind,
		Name:        name,
		Attrs:       attrs,
		SelfClosing: t.tagSelfClosing,
	}

	if tok.Type == StartTag {
		t.lastStartTag = name
		switch name {
		case "title", "textarea":
			t.st = RCDATAState
			t.textSt = RCDATAState
			t.rawtextTag = name
			switched = true
		case "script":
			t.st = ScriptDataState
			t.textSt = RAWTEXTState
			t.rawtextTag = name
			switched = true
		case "style", "xmp", "iframe", "noembed", "noframes":
			t.st = RAWTEXTState
			t.textSt = RAWTEXTState
			t.rawtextTag = name
			switched = true
		case "plaintext":
			t.st = PLAINTEXTState
			t.textSt = PLAINTEXTState
			t.rawtextTag = name
			switched = true
		}
	}

	t.tagName = t.tagName[:0]
	t.tagAttrs = t.tagAttrs[:0]
	releaseAttrSet(t.tagAttrSeen)
	t.tagAttrSeen = acquireAttrSet()
	t.attrName = t.attrName[:0]
	t.attrValue = t.attrValue[:0]
	t.attrValueAmp = false
	t.tagSelfClosing = false
	t.tagKind = StartTag

	t.push(tok)
	return switched
}

func (t *Tokenizer) pushComment() {
	data := string(t.commentBuf)
	t.commentBuf = t.commentBuf[:0]
	if t.cfg.XMLCoercion {
		data = coerceCommentForXML(data)
	}
	t.push(Token{Type: Comment, Data: data, CommentEOF: t.commentAtEOF})
	t.commentAtEOF = false
}

func (t *Tokenizer) pushDoctype() {
	name := string(t.doctypeName)
	var publicID, systemID *string
	if t.doctypePublic != nil {
		s := string(*t.doctypePublic)
		publicID = &s
	}
	if t.doctypeSystem != nil {
		s := string(*t.doctypeSystem)
		systemID = &s
	}
	t.push(Token{
		Type:        DOCTYPE,
		Name:        name,
		PublicID:    publicID,
		SystemID:    systemID,
		ForceQuirks: t.doctypeForceQuirks,
	})
}

func (t *Tokenizer) matchLiteral(lit string) bool {
	r := []rune(lit)
	if t.cursor+len(r) > len(t.chars) {
		return false
	}
	for i := range r {
		if t.chars[t.cursor+i] != r[i] {
			return false
		}
	}
	t.cursor += len(r)
	t.col += len(r)
	return true
}

func (t *Tokenizer) matchFold(lit string) bool {
	r := []rune(lit)
	if t.cursor+len(r) > len(t.chars) {
		return false
	}
	for i := range r {
		if unicode.ToLower(t.chars[t.cursor+i]) != unicode.ToLower(r[i]) {
			return false
		}
	}
	t.cursor += len(r)
	t.col += len(r)
	return true
}

func (t *Tokenizer) beginTag(kind TokenKind, first rune) {
	t.tagKind = kind
	t.tagName = t.tagName[:0]
	t.tagAttrs = t.tagAttrs[:0]
	releaseAttrSet(t.tagAttrSeen)
	t.tagAttrSeen = acquireAttrSet()
	t.attrName = t.attrName[:0]
	t.attrValue = t.attrValue[:0]
	t.attrValueAmp = false
	t.tagSelfClosing = false

	if first >= 'A' && first <= 'Z' {
		first += 32
	}
	t.tagName = append(t.tagName, first)
}

func coerceTextForXML(text string) string {
	isASCII := true
	for _, r := range text {
		if r > 0x7f {
			isASCII = false
			break
		}
	}
	if isASCII {
		return strings.ReplaceAll(text, "\f", " ")
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\f':
			b.WriteRune(' ')
		case r >= 0xFDD0 && r <= 0xFDEF:
			b.WriteRune(unicode.ReplacementChar)
		case r&0xFFFF == 0xFFFE || r&0xFFFF == 0xFFFF:
			b.WriteRune(unicode.ReplacementChar)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func coerceCommentForXML(text string) string {
	return strings.ReplaceAll(text, "--", "- -")
}
