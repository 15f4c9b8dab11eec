package selector

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/basalt-labs/html5/errors"
)

// tokenType classifies a lexical token.
type tokenType int

const (
	tokenEOF tokenType = iota
	tokenTag
	tokenID
	tokenClass
	tokenUniversal
	tokenAttrStart  // [
	tokenAttrEnd    // ]
	tokenAttrOp     // =, ~=, |=, ^=, $=, *=
	tokenString     // "value" or 'value' or unquoted
	tokenCombinator // >, +, ~, or whitespace (descendant)
	tokenComma      // ,
	tokenColon      // :
	tokenParenOpen  // (
	tokenParenClose // )
)

type token struct {
	typ   tokenType
	value string
}

// tokenizer scans a CSS selector string into tokens. Most of its state
// answers one question: what does the next character mean in context —
// "~" is a combinator in "ul ~ li" but an operator prefix in "[a~=b]",
// and whitespace is a descendant combinator only between two selectors.
type tokenizer struct {
	input       string
	pos         int
	length      int
	selectorStr string

	inAttr         bool // inside an attribute selector
	afterAttrName  bool // name seen, expecting operator or ]
	afterAttrOp    bool // operator seen, expecting value
	afterAttrValue bool // value seen, expecting ]

	inPseudoArgs bool // inside pseudo-class arguments
	parenDepth   int

	afterSimpleSel  bool // just emitted a simple selector
	afterCombinator bool // just emitted an explicit combinator
}

func newTokenizer(input string) *tokenizer {
	return &tokenizer{
		input:       input,
		length:      len(input),
		selectorStr: input,
	}
}

func (t *tokenizer) errorf(msg string) error {
	return &errors.SelectorError{
		Selector: t.selectorStr,
		Position: t.pos,
		Message:  msg,
	}
}

func (t *tokenizer) peek() rune {
	if t.pos >= t.length {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(t.input[t.pos:])
	return r
}

func (t *tokenizer) advance() rune {
	if t.pos >= t.length {
		return 0
	}
	r, size := utf8.DecodeRuneInString(t.input[t.pos:])
	t.pos += size
	return r
}

func (t *tokenizer) skipWhitespace() bool {
	hadWS := false
	for isSelectorSpace(t.peek()) && t.pos < t.length {
		t.advance()
		hadWS = true
	}
	return hadWS
}

func isSelectorSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f'
}

func isNameStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_' || ch == '-' || ch > 127
}

func isNameChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' || ch == '-' || ch > 127
}

func (t *tokenizer) readName() string {
	start := t.pos
	for t.pos < t.length {
		switch ch := t.peek(); {
		case isNameChar(ch):
			t.advance()
		case ch == '\\':
			// Escape: keep the backslash and the escaped rune.
			t.advance()
			if t.pos < t.length {
				t.advance()
			}
		default:
			return t.input[start:t.pos]
		}
	}
	return t.input[start:t.pos]
}

func (t *tokenizer) readString(quote rune) (string, error) {
	var sb strings.Builder
	t.advance() // opening quote
	for t.pos < t.length {
		ch := t.advance()
		switch ch {
		case quote:
			return sb.String(), nil
		case '\\':
			if t.pos < t.length {
				sb.WriteRune(t.advance())
			}
		default:
			sb.WriteRune(ch)
		}
	}
	return "", t.errorf("unclosed string")
}

// readAttrOperator lexes a two-character attribute operator (~=, ^=, $=,
// |=, *=) whose first rune is ch; the '=' is mandatory.
func (t *tokenizer) readAttrOperator(ch rune) (token, error) {
	t.advance()
	if t.peek() != '=' {
		if ch == '~' {
			return token{}, t.errorf("unexpected ~ in attribute selector")
		}
		if ch == '*' {
			return token{}, t.errorf("expected = after * in attribute selector")
		}
		return token{}, t.errorf("expected = after " + string(ch))
	}
	t.advance()
	t.afterAttrOp = true
	return token{typ: tokenAttrOp, value: string(ch) + "="}, nil
}

func (t *tokenizer) readUnquotedAttrValue() string {
	var sb strings.Builder
	for t.pos < t.length {
		ch := t.peek()
		if ch == ']' || ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			break
		}
		if ch == '\\' {
			t.advance()
			if t.pos < t.length {
				sb.WriteRune(t.advance())
			}
		} else {
			sb.WriteRune(t.advance())
		}
	}
	return sb.String()
}

// emit records a token and updates the selector/combinator bookkeeping.
func (t *tokenizer) emit(tokens []token, tok token, endsSimpleSel bool) []token {
	t.afterSimpleSel = endsSimpleSel
	t.afterCombinator = tok.typ == tokenCombinator
	return append(tokens, tok)
}

//nolint:gocognit,gocyclo,cyclop,funlen // single-pass lexer over every selector production
func (t *tokenizer) tokenize() ([]token, error) {
	var tokens []token

	for t.pos < t.length {
		hadWS := t.skipWhitespace()
		if t.pos >= t.length {
			break
		}
		ch := t.peek()

		// Whitespace between two selectors is the descendant combinator;
		// whitespace before punctuation or inside brackets is not.
		if hadWS && t.afterSimpleSel && !t.afterCombinator && !t.inAttr && !t.inPseudoArgs {
			if !strings.ContainsRune(",])>+~", ch) {
				tokens = t.emit(tokens, token{typ: tokenCombinator, value: " "}, false)
			}
		}

		switch ch {
		case '*':
			if t.inAttr && !t.afterAttrOp {
				tok, err := t.readAttrOperator(ch)
				if err != nil {
					return nil, err
				}
				tokens = append(tokens, tok)
				continue
			}
			t.advance()
			tokens = t.emit(tokens, token{typ: tokenUniversal, value: "*"}, true)

		case '#', '.', ':':
			t.advance()
			name := t.readName()
			if name == "" {
				switch ch {
				case '#':
					return nil, t.errorf("expected identifier after #")
				case '.':
					return nil, t.errorf("expected identifier after .")
				default:
					return nil, t.errorf("expected pseudo-class name after :")
				}
			}
			typ := map[rune]tokenType{'#': tokenID, '.': tokenClass, ':': tokenColon}[ch]
			tokens = t.emit(tokens, token{typ: typ, value: name}, true)

		case '[':
			t.advance()
			tokens = t.emit(tokens, token{typ: tokenAttrStart, value: "["}, false)
			t.inAttr = true
			t.afterAttrName, t.afterAttrOp, t.afterAttrValue = false, false, false

		case ']':
			t.advance()
			tokens = t.emit(tokens, token{typ: tokenAttrEnd, value: "]"}, true)
			t.inAttr = false
			t.afterAttrName, t.afterAttrOp, t.afterAttrValue = false, false, false

		case '(':
			t.advance()
			tokens = t.emit(tokens, token{typ: tokenParenOpen, value: "("}, false)
			t.inPseudoArgs = true
			t.parenDepth++

		case ')':
			t.advance()
			tokens = t.emit(tokens, token{typ: tokenParenClose, value: ")"}, true)
			t.parenDepth--
			if t.parenDepth <= 0 {
				t.inPseudoArgs = false
				t.parenDepth = 0
			}

		case ',':
			t.advance()
			tokens = t.emit(tokens, token{typ: tokenComma, value: ","}, false)

		case '>', '+':
			t.advance()
			tokens = t.emit(tokens, token{typ: tokenCombinator, value: string(ch)}, false)

		case '~':
			if t.inAttr && !t.afterAttrOp {
				tok, err := t.readAttrOperator(ch)
				if err != nil {
					return nil, err
				}
				tokens = append(tokens, tok)
				continue
			}
			t.advance()
			tokens = t.emit(tokens, token{typ: tokenCombinator, value: "~"}, false)

		case '=':
			if !t.inAttr {
				return nil, t.errorf("unexpected = outside attribute selector")
			}
			t.advance()
			tokens = append(tokens, token{typ: tokenAttrOp, value: "="})
			t.afterAttrOp = true

		case '^', '$', '|':
			if !t.inAttr {
				return nil, t.errorf("unexpected " + string(ch) + " outside attribute selector")
			}
			tok, err := t.readAttrOperator(ch)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)

		case '"', '\'':
			str, err := t.readString(ch)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{typ: tokenString, value: str})
			if t.inAttr {
				t.afterAttrValue = true
			}

		default:
			more, err := t.lexWord(ch, tokens)
			if err != nil {
				return nil, err
			}
			tokens = more
		}
	}

	return append(tokens, token{typ: tokenEOF}), nil
}

// lexWord handles the catch-all cases: attribute values, attribute and
// tag names, pseudo-class arguments, and An+B expressions.
func (t *tokenizer) lexWord(ch rune, tokens []token) ([]token, error) {
	switch {
	case t.inAttr && t.afterAttrOp && !t.afterAttrValue:
		if val := t.readUnquotedAttrValue(); val != "" {
			tokens = append(tokens, token{typ: tokenString, value: val})
			t.afterAttrValue = true
		}
		return tokens, nil

	case isNameStart(ch) || (t.inAttr && !t.afterAttrName):
		name := t.readName()
		if name == "" {
			return tokens, nil
		}
		switch {
		case t.inAttr && !t.afterAttrName:
			tokens = append(tokens, token{typ: tokenTag, value: name})
			t.afterAttrName = true
		case t.inPseudoArgs:
			// e.g. "odd", "even", or the body of :not(...).
			tokens = append(tokens, token{typ: tokenString, value: name})
		default:
			tokens = t.emit(tokens, token{typ: tokenTag, value: strings.ToLower(name)}, true)
		}
		return tokens, nil

	case t.inPseudoArgs && (unicode.IsDigit(ch) || ch == '-' || ch == 'n'):
		// An+B expression or bare number.
		var sb strings.Builder
		for t.pos < t.length {
			c := t.peek()
			if !unicode.IsDigit(c) && c != 'n' && c != '+' && c != '-' {
				break
			}
			sb.WriteRune(t.advance())
		}
		if sb.Len() > 0 {
			tokens = append(tokens, token{typ: tokenString, value: sb.String()})
		}
		return tokens, nil
	}

	return nil, t.errorf("unexpected character: " + string(ch))
}

// parser builds the AST from the token stream.
type parser struct {
	tokens      []token
	pos         int
	selectorStr string
}

func newParser(tokens []token, selectorStr string) *parser {
	return &parser{tokens: tokens, selectorStr: selectorStr}
}

func (p *parser) errorf(msg string) error {
	return &errors.SelectorError{
		Selector: p.selectorStr,
		Position: p.pos,
		Message:  msg,
	}
}

func (p *parser) peek() token {
	if p.pos >= len(p.tokens) {
		return token{typ: tokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) parse() (selectorAST, error) {
	sel, err := p.parseComplexSelector()
	if err != nil {
		return nil, err
	}

	if p.peek().typ == tokenComma {
		list := SelectorList{Selectors: []ComplexSelector{*sel}}
		for p.peek().typ == tokenComma {
			p.advance()
			next, err := p.parseComplexSelector()
			if err != nil {
				return nil, err
			}
			list.Selectors = append(list.Selectors, *next)
		}
		if p.peek().typ != tokenEOF {
			return nil, p.errorf("unexpected token after selector list")
		}
		return list, nil
	}

	if p.peek().typ != tokenEOF {
		return nil, p.errorf("unexpected token: " + p.peek().value)
	}
	return *sel, nil
}

func (p *parser) parseComplexSelector() (*ComplexSelector, error) {
	compound, err := p.parseCompoundSelector()
	if err != nil {
		return nil, err
	}

	sel := &ComplexSelector{
		Parts: []ComplexPart{{Combinator: CombinatorNone, Compound: *compound}},
	}

	for p.peek().typ == tokenCombinator {
		comb := combinatorTokens[p.advance().value]
		compound, err := p.parseCompoundSelector()
		if err != nil {
			return nil, err
		}
		sel.Parts = append(sel.Parts, ComplexPart{Combinator: comb, Compound: *compound})
	}
	return sel, nil
}

// combinatorTokens maps a lexed combinator token value to its Combinator;
// a miss (shouldn't occur for a well-formed tokenCombinator) yields
// CombinatorNone, the zero value.
var combinatorTokens = map[string]Combinator{
	" ": CombinatorDescendant,
	">": CombinatorChild,
	"+": CombinatorAdjacent,
	"~": CombinatorGeneral,
}

// simpleSelectorKinds maps token types that carry their SelectorKind and
// name directly (no further parsing needed) to that kind. tokenAttrStart
// and tokenColon need dedicated sub-parsers and are handled separately.
var simpleSelectorKinds = map[tokenType]SelectorKind{
	tokenTag:       KindTag,
	tokenUniversal: KindUniversal,
	tokenID:        KindID,
	tokenClass:     KindClass,
}

func (p *parser) parseCompoundSelector() (*CompoundSelector, error) {
	compound := &CompoundSelector{}

	for {
		tok := p.peek()

		if kind, ok := simpleSelectorKinds[tok.typ]; ok {
			p.advance()
			name := tok.value
			if tok.typ == tokenUniversal {
				name = "*"
			}
			compound.Selectors = append(compound.Selectors, SimpleSelector{Kind: kind, Name: name})
			continue
		}

		switch tok.typ {
		case tokenAttrStart:
			sel, err := p.parseAttributeSelector()
			if err != nil {
				return nil, err
			}
			compound.Selectors = append(compound.Selectors, *sel)

		case tokenColon:
			sel := p.parsePseudoSelector()
			compound.Selectors = append(compound.Selectors, *sel)

		case tokenEOF, tokenAttrEnd, tokenAttrOp, tokenString, tokenCombinator, tokenComma, tokenParenOpen, tokenParenClose:
			// A compound selector ends at any of these.
			if len(compound.Selectors) == 0 {
				return nil, p.errorf("expected selector")
			}
			return compound, nil
		}
	}
}

// attrOperatorTokens maps the lexed operator symbol to its AttrOperator,
// the inverse of attrOperatorSymbols used by AttrOperator.String().
var attrOperatorTokens = map[string]AttrOperator{
	"=":  AttrEquals,
	"~=": AttrIncludes,
	"|=": AttrDashPrefix,
	"^=": AttrPrefixMatch,
	"$=": AttrSuffixMatch,
	"*=": AttrSubstring,
}

func (p *parser) parseAttributeSelector() (*SimpleSelector, error) {
	p.advance() // [

	nameTok := p.peek()
	if nameTok.typ != tokenTag {
		return nil, p.errorf("expected attribute name")
	}
	p.advance()

	sel := &SimpleSelector{
		Kind:     KindAttr,
		Name:     nameTok.value,
		Operator: AttrExists,
	}

	if opTok := p.peek(); opTok.typ == tokenAttrOp {
		p.advance()
		if op, ok := attrOperatorTokens[opTok.value]; ok {
			sel.Operator = op
		}
		valTok := p.peek()
		if valTok.typ != tokenString {
			return nil, p.errorf("expected attribute value")
		}
		p.advance()
		sel.Value = valTok.value
	}

	if p.peek().typ != tokenAttrEnd {
		return nil, p.errorf("expected ]")
	}
	p.advance()
	return sel, nil
}

// pseudoArgSyntaxPrefix is the punctuation that precedes a token's value
// when reconstructing pseudo-class argument text (tokenID -> "#foo", etc).
// Tokens not listed here either carry no prefix (tokenTag, tokenString,
// tokenEOF echo tok.value verbatim) or emit a fixed string regardless of
// value (handled by pseudoArgSyntax directly).
var pseudoArgSyntaxPrefix = map[tokenType]string{
	tokenID:    "#",
	tokenClass: ".",
	tokenColon: ":",
}

// pseudoArgFixedSyntax covers tokens whose reconstructed text doesn't
// depend on tok.value at all.
var pseudoArgFixedSyntax = map[tokenType]string{
	tokenUniversal: "*",
	tokenAttrStart: "[",
	tokenAttrEnd:   "]",
	tokenComma:     ",",
}

func pseudoArgSyntax(tok token) string {
	if fixed, ok := pseudoArgFixedSyntax[tok.typ]; ok {
		return fixed
	}
	if prefix, ok := pseudoArgSyntaxPrefix[tok.typ]; ok {
		return prefix + tok.value
	}
	return tok.value
}

func (p *parser) parsePseudoSelector() *SimpleSelector {
	nameTok := p.advance() // tokenColon already carries the name

	sel := &SimpleSelector{Kind: KindPseudo, Name: nameTok.value}

	if p.peek().typ == tokenParenOpen {
		p.advance() // (

		// Rebuild the argument text from tokens so :not(.foo) recovers
		// ".foo" for a recursive Parse.
		var args strings.Builder
		depth := 1
		for depth > 0 && p.peek().typ != tokenEOF {
			tok := p.advance()
			switch tok.typ {
			case tokenParenOpen:
				depth++
				args.WriteString("(")
			case tokenParenClose:
				depth--
				if depth > 0 {
					args.WriteString(")")
				}
			default:
				args.WriteString(pseudoArgSyntax(tok))
			}
		}
		sel.Value = strings.TrimSpace(args.String())
	}
	return sel
}
