package tokenizer

// State represents the tokenizer state.
// The tokenizer is a state machine that transitions between these states.
type State int

// InvalidState is used to indicate an unknown or invalid state.
const InvalidState State = -1

// State aliases for html5lib-tests compatibility.
const (
	PlaintextState = PLAINTEXTState
	RawtextState   = RAWTEXTState
)

// Tokenizer states as defined by the HTML5 specification.
// See: https://html.spec.whatwg.org/multipage/parsing.html#tokenization
const (
	DataState State = iota
	RCDATAState
	RAWTEXTState
	ScriptDataState
	PLAINTEXTState
	TagOpenState
	EndTagOpenState
	TagNameState
	RCDATALessThanSignState
	RCDATAEndTagOpenState
	RCDATAEndTagNameState
	RAWTEXTLessThanSignState
	RAWTEXTEndTagOpenState
	RAWTEXTEndTagNameState
	ScriptDataLessThanSignState
	ScriptDataEndTagOpenState
	ScriptDataEndTagNameState
	ScriptDataEscapeStartState
	ScriptDataEscapeStartDashState
	ScriptDataEscapedState
	ScriptDataEscapedDashState
	ScriptDataEscapedDashDashState
	ScriptDataEscapedLessThanSignState
	ScriptDataEscapedEndTagOpenState
	ScriptDataEscapedEndTagNameState
	ScriptDataDoubleEscapeStartState
	ScriptDataDoubleEscapedState
	ScriptDataDoubleEscapedDashState
	ScriptDataDoubleEscapedDashDashState
	ScriptDataDoubleEscapedLessThanSignState
	ScriptDataDoubleEscapeEndState
	BeforeAttributeNameState
	AttributeNameState
	AfterAttributeNameState
	BeforeAttributeValueState
	AttributeValueDoubleQuotedState
	AttributeValueSingleQuotedState
	AttributeValueUnquotedState
	AfterAttributeValueQuotedState
	SelfClosingStartTagState
	BogusCommentState
	MarkupDeclarationOpenState
	CommentStartState
	CommentStartDashState
	CommentState
	CommentLessThanSignState
	CommentLessThanSignBangState
	CommentLessThanSignBangDashState
	CommentLessThanSignBangDashDashState
	CommentEndDashState
	CommentEndState
	CommentEndBangState
	DOCTYPEState
	BeforeDOCTYPENameState
	DOCTYPENameState
	AfterDOCTYPENameState
	AfterDOCTYPEPublicKeywordState
	BeforeDOCTYPEPublicIdentifierState
	DOCTYPEPublicIdentifierDoubleQuotedState
	DOCTYPEPublicIdentifierSingleQuotedState
	AfterDOCTYPEPublicIdentifierState
	BetweenDOCTYPEPublicAndSystemIdentifiersState
	AfterDOCTYPESystemKeywordState
	BeforeDOCTYPESystemIdentifierState
	DOCTYPESystemIdentifierDoubleQuotedState
	DOCTYPESystemIdentifierSingleQuotedState
	AfterDOCTYPESystemIdentifierState
	BogusDOCTYPEState
	CDATASectionState
	CDATASectionBracketState
	CDATASectionEndState
	CharacterReferenceState
	NamedCharacterReferenceState
	AmbiguousAmpersandState
	NumericCharacterReferenceState
	HexadecimalCharacterReferenceStartState
	DecimalCharacterReferenceStartState
	HexadecimalCharacterReferenceState
	DecimalCharacterReferenceState
	NumericCharacterReferenceEndState
)

// stateNames maps each state to its debug name via a keyed array literal,
// so the name always lines up with its constant even if the block above
// is reordered or extended.
var stateNames = [...]string{
	DataState:                  "Data",
	RCDATAState:                "RCDATA",
	RAWTEXTState:               "RAWTEXT",
	ScriptDataState:            "ScriptData",
	PLAINTEXTState:             "PLAINTEXT",
	TagOpenState:               "TagOpen",
	EndTagOpenState:            "EndTagOpen",
	TagNameState:               "TagName",
	RCDATALessThanSignState:    "RCDATALessThanSign",
	RCDATAEndTagOpenState:      "RCDATAEndTagOpen",
	RCDATAEndTagNameState:      "RCDATAEndTagName",
	RAWTEXTLessThanSignState:   "RAWTEXTLessThanSign",
	RAWTEXTEndTagOpenState:     "RAWTEXTEndTagOpen",
	RAWTEXTEndTagNameState:     "RAWTEXTEndTagName",
	ScriptDataLessThanSignState:                "ScriptDataLessThanSign",
	ScriptDataEndTagOpenState:                  "ScriptDataEndTagOpen",
	ScriptDataEndTagNameState:                  "ScriptDataEndTagName",
	ScriptDataEscapeStartState:                 "ScriptDataEscapeStart",
	ScriptDataEscapeStartDashState:              "ScriptDataEscapeStartDash",
	ScriptDataEscapedState:                      "ScriptDataEscaped",
	ScriptDataEscapedDashState:                  "ScriptDataEscapedDash",
	ScriptDataEscapedDashDashState:               "ScriptDataEscapedDashDash",
	ScriptDataEscapedLessThanSignState:           "ScriptDataEscapedLessThanSign",
	ScriptDataEscapedEndTagOpenState:             "ScriptDataEscapedEndTagOpen",
	ScriptDataEscapedEndTagNameState:             "ScriptDataEscapedEndTagName",
	ScriptDataDoubleEscapeStartState:             "ScriptDataDoubleEscapeStart",
	ScriptDataDoubleEscapedState:                 "ScriptDataDoubleEscaped",
	ScriptDataDoubleEscapedDashState:             "ScriptDataDoubleEscapedDash",
	ScriptDataDoubleEscapedDashDashState:         "ScriptDataDoubleEscapedDashDash",
	ScriptDataDoubleEscapedLessThanSignState:     "ScriptDataDoubleEscapedLessThanSign",
	ScriptDataDoubleEscapeEndState:               "ScriptDataDoubleEscapeEnd",
	BeforeAttributeNameState:                     "BeforeAttributeName",
	AttributeNameState:                           "AttributeName",
	AfterAttributeNameState:                      "AfterAttributeName",
	BeforeAttributeValueState:                    "BeforeAttributeValue",
	AttributeValueDoubleQuotedState:              "AttributeValueDoubleQuoted",
	AttributeValueSingleQuotedState:               "AttributeValueSingleQuoted",
	AttributeValueUnquotedState:                  "AttributeValueUnquoted",
	AfterAttributeValueQuotedState:                "AfterAttributeValueQuoted",
	SelfClosingStartTagState:                     "SelfClosingStartTag",
	BogusCommentState:                            "BogusComment",
	MarkupDeclarationOpenState:                   "MarkupDeclarationOpen",
	CommentStartState:                            "CommentStart",
	CommentStartDashState:                        "CommentStartDash",
	CommentState:                                 "Comment",
	CommentLessThanSignState:                     "CommentLessThanSign",
	CommentLessThanSignBangState:                 "CommentLessThanSignBang",
	CommentLessThanSignBangDashState:             "CommentLessThanSignBangDash",
	CommentLessThanSignBangDashDashState:         "CommentLessThanSignBangDashDash",
	CommentEndDashState:                          "CommentEndDash",
	CommentEndState:                              "CommentEnd",
	CommentEndBangState:                          "CommentEndBang",
	DOCTYPEState:                                 "DOCTYPE",
	BeforeDOCTYPENameState:                       "BeforeDOCTYPEName",
	DOCTYPENameState:                             "DOCTYPEName",
	AfterDOCTYPENameState:                        "AfterDOCTYPEName",
	AfterDOCTYPEPublicKeywordState:               "AfterDOCTYPEPublicKeyword",
	BeforeDOCTYPEPublicIdentifierState:           "BeforeDOCTYPEPublicIdentifier",
	DOCTYPEPublicIdentifierDoubleQuotedState:     "DOCTYPEPublicIdentifierDoubleQuoted",
	DOCTYPEPublicIdentifierSingleQuotedState:     "DOCTYPEPublicIdentifierSingleQuoted",
	AfterDOCTYPEPublicIdentifierState:            "AfterDOCTYPEPublicIdentifier",
	BetweenDOCTYPEPublicAndSystemIdentifiersState: "BetweenDOCTYPEPublicAndSystemIdentifiers",
	AfterDOCTYPESystemKeywordState:                "AfterDOCTYPESystemKeyword",
	BeforeDOCTYPESystemIdentifierState:            "BeforeDOCTYPESystemIdentifier",
	DOCTYPESystemIdentifierDoubleQuotedState:      "DOCTYPESystemIdentifierDoubleQuoted",
	DOCTYPESystemIdentifierSingleQuotedState:      "DOCTYPESystemIdentifierSingleQuoted",
	AfterDOCTYPESystemIdentifierState:             "AfterDOCTYPESystemIdentifier",
	BogusDOCTYPEState:                             "BogusDOCTYPE",
	CDATASectionState:                             "CDATASection",
	CDATASectionBracketState:                      "CDATASectionBracket",
	CDATASectionEndState:                          "CDATASectionEnd",
	CharacterReferenceState:                       "CharacterReference",
	NamedCharacterReferenceState:                  "NamedCharacterReference",
	AmbiguousAmpersandState:                       "AmbiguousAmpersand",
	NumericCharacterReferenceState:                "NumericCharacterReference",
	HexadecimalCharacterReferenceStartState:       "HexadecimalCharacterReferenceStart",
	DecimalCharacterReferenceStartState:           "DecimalCharacterReferenceStart",
	HexadecimalCharacterReferenceState:            "HexadecimalCharacterReference",
	DecimalCharacterReferenceState:                "DecimalCharacterReference",
	NumericCharacterReferenceEndState:             "NumericCharacterReferenceEnd",
}

// String returns the name of the state for debugging.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	if name := stateNames[s]; name != "" {
		return name
	}
	return "Unknown"
}
