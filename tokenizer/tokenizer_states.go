package tokenizer

import (
	"strings"
	"unicode"
)

// This file holds one method per entry in stateDispatch (tokenizer.go),
// grouped by the section of the tokenization algorithm they belong to:
// text/tag-open, tag name & attributes, comments, DOCTYPE, CDATA, and the
// RCDATA/RAWTEXT/script-data family.

// -- data / tag open --------------------------------------------------

func (t *Tokenizer) handleData() {
	t.textSt = DataState
	for {
		c, ok := t.nextRune()
		if !ok {
			t.pushEOF()
			return
		}
		switch c {
		case '<':
			t.flushBuf()
			t.st = TagOpenState
			return
		case 0:
			t.recordError("unexpected-null-character")
			t.bufferRune(unicode.ReplacementChar)
		default:
			t.bufferRune(c)
		}
	}
}

func (t *Tokenizer) handleTagOpen() {
	c, ok := t.nextRune()
	if !ok {
		t.recordError("eof-before-tag-name")
		t.bufferRune('<')
		t.pushEOF()
		return
	}
	switch c {
	case '!':
		t.st = MarkupDeclarationOpenState
	case '/':
		t.st = EndTagOpenState
	case '?':
		t.recordError("unexpected-question-mark-instead-of-tag-name")
		t.commentBuf = t.commentBuf[:0]
		t.pushBack()
		t.st = BogusCommentState
	default:
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
			t.beginTag(StartTag, c)
			t.st = TagNameState
			return
		}
		t.recordError("invalid-first-character-of-tag-name")
		t.bufferRune('<')
		t.pushBack()
		t.st = DataState
	}
}

func (t *Tokenizer) handleEndTagOpen() {
	c, ok := t.nextRune()
	if !ok {
		t.recordError("eof-before-tag-name")
		t.bufferRune('<')
		t.bufferRune('/')
		t.pushEOF()
		return
	}
	if c == '>' {
		t.recordError("empty-end-tag")
		t.st = DataState
		return
	}
	if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
		t.beginTag(EndTag, c)
		t.st = TagNameState
		return
	}
	t.recordError("invalid-first-character-of-tag-name")
	t.commentBuf = t.commentBuf[:0]
	t.pushBack()
	t.st = BogusCommentState
}

func (t *Tokenizer) handleTagName() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.recordError("eof-in-tag")
			t.pushEOF()
			return
		}
		switch c {
		case '\t', '\n', '\f', ' ':
			t.st = BeforeAttributeNameState
			return
		case '/':
			t.st = SelfClosingStartTagState
			return
		case '>':
			t.commitAttr()
			if !t.pushTag() {
				t.st = DataState
			}
			return
		case 0:
			t.recordError("unexpected-null-character")
			t.tagName = append(t.tagName, unicode.ReplacementChar)
		default:
			if c >= 'A' && c <= 'Z' {
				c += 32
			}
			t.tagName = append(t.tagName, c)
		}
	}
}

// -- attributes ---------------------------------------------------------

func (t *Tokenizer) handleBeforeAttrName() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.recordError("eof-in-tag")
			t.pushEOF()
			return
		}
		switch c {
		case '\t', '\n', '\f', ' ':
			continue
		case '/':
			t.commitAttr()
			t.st = SelfClosingStartTagState
			return
		case '>':
			t.commitAttr()
			if !t.pushTag() {
				t.st = DataState
			}
			return
		default:
			t.commitAttr()
			t.attrName = t.attrName[:0]
			t.attrValue = t.attrValue[:0]
			t.attrValueAmp = false
			switch {
			case c == 0:
				t.recordError("unexpected-null-character")
				c = unicode.ReplacementChar
			case c >= 'A' && c <= 'Z':
				c += 32
			case c == '=':
				t.recordError("unexpected-equals-sign-before-attribute-name")
			}
			t.attrName = append(t.attrName, c)
			t.st = AttributeNameState
			return
		}
	}
}

func (t *Tokenizer) handleAttrName() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.recordError("eof-in-tag")
			t.pushEOF()
			return
		}
		switch c {
		case '\t', '\n', '\f', ' ':
			t.commitAttr()
			t.st = AfterAttributeNameState
			return
		case '/':
			t.commitAttr()
			t.st = SelfClosingStartTagState
			return
		case '=':
			t.st = BeforeAttributeValueState
			return
		case '>':
			t.commitAttr()
			if !t.pushTag() {
				t.st = DataState
			}
			return
		case 0:
			t.recordError("unexpected-null-character")
			t.attrName = append(t.attrName, unicode.ReplacementChar)
		default:
			if c == '"' || c == '\'' || c == '<' {
				t.recordError("unexpected-character-in-attribute-name")
			}
			if c >= 'A' && c <= 'Z' {
				c += 32
			}
			t.attrName = append(t.attrName, c)
		}
	}
}

func (t *Tokenizer) handleAfterAttrName() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.recordError("eof-in-tag")
			t.pushEOF()
			return
		}
		switch c {
		case '\t', '\n', '\f', ' ':
			continue
		case '/':
			t.commitAttr()
			t.st = SelfClosingStartTagState
			return
		case '=':
			t.st = BeforeAttributeValueState
			return
		case '>':
			t.commitAttr()
			if !t.pushTag() {
				t.st = DataState
			}
			return
		default:
			t.commitAttr()
			t.attrName = t.attrName[:0]
			t.attrValue = t.attrValue[:0]
			t.attrValueAmp = false
			if c == 0 {
				t.recordError("unexpected-null-character")
				c = unicode.ReplacementChar
			} else if c >= 'A' && c <= 'Z' {
				c += 32
			}
			t.attrName = append(t.attrName, c)
			t.st = AttributeNameState
			return
		}
	}
}

func (t *Tokenizer) handleBeforeAttrValue() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.recordError("eof-in-tag")
			t.pushEOF()
			return
		}
		switch c {
		case '\t', '\n', '\f', ' ':
			continue
		case '"':
			t.st = AttributeValueDoubleQuotedState
			return
		case '\'':
			t.st = AttributeValueSingleQuotedState
			return
		case '>':
			t.recordError("missing-attribute-value")
			t.commitAttr()
			if !t.pushTag() {
				t.st = DataState
			}
			return
		default:
			t.pushBack()
			t.st = AttributeValueUnquotedState
			return
		}
	}
}

func (t *Tokenizer) handleAttrValueDQ() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.recordError("eof-in-tag")
			t.pushEOF()
			return
		}
		switch c {
		case '"':
			t.st = AfterAttributeValueQuotedState
			return
		case '&':
			t.attrValueAmp = true
			t.attrValue = append(t.attrValue, '&')
		case 0:
			t.recordError("unexpected-null-character")
			t.attrValue = append(t.attrValue, unicode.ReplacementChar)
		default:
			t.attrValue = append(t.attrValue, c)
		}
	}
}

func (t *Tokenizer) handleAttrValueSQ() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.recordError("eof-in-tag")
			t.pushEOF()
			return
		}
		switch c {
		case '\'':
			t.st = AfterAttributeValueQuotedState
			return
		case '&':
			t.attrValueAmp = true
			t.attrValue = append(t.attrValue, '&')
		case 0:
			t.recordError("unexpected-null-character")
			t.attrValue = append(t.attrValue, unicode.ReplacementChar)
		default:
			t.attrValue = append(t.attrValue, c)
		}
	}
}

func (t *Tokenizer) handleAttrValueUnquoted() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.recordError("eof-in-tag")
			t.push(Token{Type: EOF})
			return
		}
		switch c {
		case '\t', '\n', '\f', ' ':
			t.commitAttr()
			t.st = BeforeAttributeNameState
			return
		case '>':
			t.commitAttr()
			t.pushTag()
			t.st = DataState
			return
		case '&':
			t.attrValueAmp = true
			t.attrValue = append(t.attrValue, '&')
		case 0:
			t.recordError("unexpected-null-character")
			t.attrValue = append(t.attrValue, unicode.ReplacementChar)
		default:
			if c == '"' || c == '\'' || c == '<' || c == '=' || c == '`' {
				t.recordError("unexpected-character-in-unquoted-attribute-value")
			}
			t.attrValue = append(t.attrValue, c)
		}
	}
}

func (t *Tokenizer) handleAfterAttrValueQuoted() {
	c, ok := t.nextRune()
	if !ok {
		t.recordError("eof-in-tag")
		t.pushEOF()
		return
	}
	switch c {
	case '\t', '\n', '\f', ' ':
		t.commitAttr()
		t.st = BeforeAttributeNameState
	case '/':
		t.commitAttr()
		t.st = SelfClosingStartTagState
	case '>':
		t.commitAttr()
		if !t.pushTag() {
			t.st = DataState
		}
	default:
		t.recordError("missing-whitespace-between-attributes")
		t.commitAttr()
		t.pushBack()
		t.st = BeforeAttributeNameState
	}
}

func (t *Tokenizer) handleSelfClosingStartTag() {
	c, ok := t.nextRune()
	if !ok {
		t.recordError("eof-in-tag")
		t.pushEOF()
		return
	}
	if c == '>' {
		t.tagSelfClosing = true
		if !t.pushTag() {
			t.st = DataState
		}
		return
	}
	t.recordError("unexpected-character-after-solidus-in-tag")
	t.pushBack()
	t.st = BeforeAttributeNameState
}

// -- comments -------------------------------------------------------------

func (t *Tokenizer) handleMarkupDeclOpen() {
	if t.matchLiteral("--") {
		t.commentBuf = t.commentBuf[:0]
		t.st = CommentStartState
		return
	}
	if t.matchFold("DOCTYPE") {
		t.doctypeName = t.doctypeName[:0]
		t.doctypePublic = nil
		t.doctypeSystem = nil
		t.doctypeForceQuirks = false
		t.st = DOCTYPEState
		return
	}
	if t.matchLiteral("[CDATA[") {
		if t.cdataAllowed {
			t.st = CDATASectionState
		} else {
			t.recordError("cdata-in-html-content")
			t.commentBuf = t.commentBuf[:0]
			t.commentBuf = append(t.commentBuf, []rune("[CDATA[")...)
			t.st = BogusCommentState
		}
		return
	}

	t.recordError("incorrectly-opened-comment")
	t.commentBuf = t.commentBuf[:0]
	t.st = BogusCommentState
}

func (t *Tokenizer) handleCommentStart() {
	c, ok := t.nextRune()
	if !ok {
		t.recordError("eof-in-comment")
		t.pushComment()
		t.push(Token{Type: EOF})
		return
	}
	switch c {
	case '-':
		t.st = CommentStartDashState
	case '>':
		t.recordError("abrupt-closing-of-empty-comment")
		t.pushComment()
		t.st = DataState
	case 0:
		t.recordError("unexpected-null-character")
		t.commentBuf = append(t.commentBuf, unicode.ReplacementChar)
		t.st = CommentState
	default:
		t.commentBuf = append(t.commentBuf, c)
		t.st = CommentState
	}
}

func (t *Tokenizer) handleCommentStartDash() {
	c, ok := t.nextRune()
	if !ok {
		t.recordError("eof-in-comment")
		t.pushComment()
		t.push(Token{Type: EOF})
		return
	}
	switch c {
	case '-':
		t.st = CommentEndState
	case '>':
		t.recordError("abrupt-closing-of-empty-comment")
		t.pushComment()
		t.st = DataState
	case 0:
		t.recordError("unexpected-null-character")
		t.commentBuf = append(t.commentBuf, '-', unicode.ReplacementChar)
		t.st = CommentState
	default:
		t.commentBuf = append(t.commentBuf, '-', c)
		t.st = CommentState
	}
}

func (t *Tokenizer) handleComment() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.recordError("eof-in-comment")
			t.pushComment()
			t.push(Token{Type: EOF})
			return
		}
		if c == '-' {
			t.st = CommentEndDashState
			return
		}
		if c == 0 {
			t.recordError("unexpected-null-character")
			t.commentBuf = append(t.commentBuf, unicode.ReplacementChar)
			continue
		}
		t.commentBuf = append(t.commentBuf, c)
	}
}

func (t *Tokenizer) handleCommentEndDash() {
	c, ok := t.nextRune()
	if !ok {
		t.recordError("eof-in-comment")
		t.pushComment()
		t.push(Token{Type: EOF})
		return
	}
	switch c {
	case '-':
		t.st = CommentEndState
	case 0:
		t.recordError("unexpected-null-character")
		t.commentBuf = append(t.commentBuf, '-', unicode.ReplacementChar)
		t.st = CommentState
	default:
		t.commentBuf = append(t.commentBuf, '-', c)
		t.st = CommentState
	}
}

func (t *Tokenizer) handleCommentEnd() {
	c, ok := t.nextRune()
	if !ok {
		t.recordError("eof-in-comment")
		t.pushComment()
		t.push(Token{Type: EOF})
		return
	}
	switch c {
	case '>':
		t.pushComment()
		t.st = DataState
	case '!':
		t.st = CommentEndBangState
	case '-':
		t.commentBuf = append(t.commentBuf, '-')
	default:
		if c == 0 {
			t.recordError("unexpected-null-character")
			t.commentBuf = append(t.commentBuf, '-', '-', unicode.ReplacementChar)
		} else {
			t.recordError("incorrectly-closed-comment")
			t.commentBuf = append(t.commentBuf, '-', '-', c)
		}
		t.st = CommentState
	}
}

func (t *Tokenizer) handleCommentEndBang() {
	c, ok := t.nextRune()
	if !ok {
		t.recordError("eof-in-comment")
		t.pushComment()
		t.push(Token{Type: EOF})
		return
	}
	switch c {
	case '-':
		t.commentBuf = append(t.commentBuf, '-', '-', '!')
		t.st = CommentEndDashState
	case '>':
		t.recordError("incorrectly-closed-comment")
		t.pushComment()
		t.st = DataState
	case 0:
		t.recordError("unexpected-null-character")
		t.commentBuf = append(t.commentBuf, '-', '-', '!', unicode.ReplacementChar)
		t.st = CommentState
	default:
		t.commentBuf = append(t.commentBuf, '-', '-', '!', c)
		t.st = CommentState
	}
}

func (t *Tokenizer) handleBogusComment() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.commentAtEOF = true
			t.pushComment()
			t.push(Token{Type: EOF})
			return
		}
		if c == '>' {
			t.commentAtEOF = false
			t.pushComment()
			t.st = DataState
			return
		}
		if c == 0 {
			t.commentBuf = append(t.commentBuf, unicode.ReplacementChar)
			continue
		}
		t.commentBuf = append(t.commentBuf, c)
	}
}

// -- DOCTYPE ----------------------------------------------------------------

func (t *Tokenizer) handleDoctype() {
	c, ok := t.nextRune()
	if !ok {
		t.recordError("eof-in-doctype")
		t.doctypeForceQuirks = true
		t.pushDoctype()
		t.push(Token{Type: EOF})
		return
	}
	switch c {
	case '\t', '\n', '\f', ' ':
		t.st = BeforeDOCTYPENameState
	case '>':
		t.recordError("expected-doctype-name-but-got-right-bracket")
		t.doctypeForceQuirks = true
		t.pushDoctype()
		t.st = DataState
	default:
		t.recordError("missing-whitespace-before-doctype-name")
		t.pushBack()
		t.st = BeforeDOCTYPENameState
	}
}

func (t *Tokenizer) handleBeforeDoctypeName() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.recordError("eof-in-doctype-name")
			t.doctypeForceQuirks = true
			t.pushDoctype()
			t.push(Token{Type: EOF})
			return
		}
		if c == '\t' || c == '\n' || c == '\f' || c == ' ' {
			continue
		}
		if c == '>' {
			t.recordError("expected-doctype-name-but-got-right-bracket")
			t.doctypeForceQuirks = true
			t.pushDoctype()
			t.st = DataState
			return
		}
		if c >= 'A' && c <= 'Z' {
			c += 32
		} else if c == 0 {
			t.recordError("unexpected-null-character")
			c = unicode.ReplacementChar
		}
		t.doctypeName = append(t.doctypeName, c)
		t.st = DOCTYPENameState
		return
	}
}

func (t *Tokenizer) handleDoctypeName() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.recordError("eof-in-doctype-name")
			t.doctypeForceQuirks = true
			t.pushDoctype()
			t.push(Token{Type: EOF})
			return
		}
		switch c {
		case '\t', '\n', '\f', ' ':
			t.st = AfterDOCTYPENameState
			return
		case '>':
			t.pushDoctype()
			t.st = DataState
			return
		default:
			if c >= 'A' && c <= 'Z' {
				c += 32
			} else if c == 0 {
				t.recordError("unexpected-null-character")
				c = unicode.ReplacementChar
			}
			t.doctypeName = append(t.doctypeName, c)
		}
	}
}

func (t *Tokenizer) handleAfterDoctypeName() {
	if t.matchFold("PUBLIC") {
		t.st = AfterDOCTYPEPublicKeywordState
		return
	}
	if t.matchFold("SYSTEM") {
		t.st = AfterDOCTYPESystemKeywordState
		return
	}

	for {
		c, ok := t.nextRune()
		if !ok {
			t.recordError("eof-in-doctype")
			t.doctypeForceQuirks = true
			t.pushDoctype()
			t.push(Token{Type: EOF})
			return
		}
		if c == '\t' || c == '\n' || c == '\f' || c == ' ' {
			continue
		}
		if c == '>' {
			t.pushDoctype()
			t.st = DataState
			return
		}
		t.recordError("missing-whitespace-after-doctype-name")
		t.doctypeForceQuirks = true
		t.pushBack()
		t.st = BogusDOCTYPEState
		return
	}
}

func (t *Tokenizer) handleAfterDoctypePublicKeyword() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.recordError("missing-quote-before-doctype-public-identifier")
			t.doctypeForceQuirks = true
			t.pushDoctype()
			t.push(Token{Type: EOF})
			return
		}
		switch c {
		case '\t', '\n', '\f', ' ':
			t.st = BeforeDOCTYPEPublicIdentifierState
			return
		case '"':
			t.recordError("missing-whitespace-before-doctype-public-identifier")
			empty := []rune{}
			t.doctypePublic = &empty
			t.st = DOCTYPEPublicIdentifierDoubleQuotedState
			return
		case '\'':
			t.recordError("missing-whitespace-before-doctype-public-identifier")
			empty := []rune{}
			t.doctypePublic = &empty
			t.st = DOCTYPEPublicIdentifierSingleQuotedState
			return
		case '>':
			t.recordError("missing-doctype-public-identifier")
			t.doctypeForceQuirks = true
			t.pushDoctype()
			t.st = DataState
			return
		default:
			t.recordError("unexpected-character-after-doctype-public-keyword")
			t.doctypeForceQuirks = true
			t.pushBack()
			t.st = BogusDOCTYPEState
			return
		}
	}
}

func (t *Tokenizer) handleAfterDoctypeSystemKeyword() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.recordError("missing-quote-before-doctype-system-identifier")
			t.doctypeForceQuirks = true
			t.pushDoctype()
			t.push(Token{Type: EOF})
			return
		}
		switch c {
		case '\t', '\n', '\f', ' ':
			t.st = BeforeDOCTYPESystemIdentifierState
			return
		case '"':
			t.recordError("missing-whitespace-after-doctype-public-identifier")
			empty := []rune{}
			t.doctypeSystem = &empty
			t.st = DOCTYPESystemIdentifierDoubleQuotedState
			return
		case '\'':
			t.recordError("missing-whitespace-after-doctype-public-identifier")
			empty := []rune{}
			t.doctypeSystem = &empty
			t.st = DOCTYPESystemIdentifierSingleQuotedState
			return
		case '>':
			t.recordError("missing-doctype-system-identifier")
			t.doctypeForceQuirks = true
			t.pushDoctype()
			t.st = DataState
			return
		default:
			t.recordError("unexpected-character-after-doctype-system-keyword")
			t.doctypeForceQuirks = true
			t.pushBack()
			t.st = BogusDOCTYPEState
			return
		}
	}
}

func (t *Tokenizer) handleBeforeDoctypePublicIdentifier() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.recordError("eof-in-doctype")
			t.doctypeForceQuirks = true
			t.pushDoctype()
			t.push(Token{Type: EOF})
			return
		}
		switch c {
		case '\t', '\n', '\f', ' ':
			continue
		case '"':
			empty := []rune{}
			t.doctypePublic = &empty
			t.st = DOCTYPEPublicIdentifierDoubleQuotedState
			return
		case '\'':
			empty := []rune{}
			t.doctypePublic = &empty
			t.st = DOCTYPEPublicIdentifierSingleQuotedState
			return
		case '>':
			t.recordError("missing-doctype-public-identifier")
			t.doctypeForceQuirks = true
			t.pushDoctype()
			t.st = DataState
			return
		default:
			t.recordError("missing-quote-before-doctype-public-identifier")
			t.doctypeForceQuirks = true
			t.pushBack()
			t.st = BogusDOCTYPEState
			return
		}
	}
}

func (t *Tokenizer) handleDoctypePublicIDDQ() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.recordError("eof-in-doctype")
			t.doctypeForceQuirks = true
			t.pushDoctype()
			t.push(Token{Type: EOF})
			return
		}
		if c == '"' {
			t.st = AfterDOCTYPEPublicIdentifierState
			return
		}
		if c == '>' {
			t.recordError("abrupt-doctype-public-identifier")
			t.doctypeForceQuirks = true
			t.pushDoctype()
			t.st = DataState
			return
		}
		if c == 0 {
			t.recordError("unexpected-null-character")
			c = unicode.ReplacementChar
		}
		*t.doctypePublic = append(*t.doctypePublic, c)
	}
}

func (t *Tokenizer) handleDoctypePublicIDSQ() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.recordError("eof-in-doctype")
			t.doctypeForceQuirks = true
			t.pushDoctype()
			t.push(Token{Type: EOF})
			return
		}
		if c == '\'' {
			t.st = AfterDOCTYPEPublicIdentifierState
			return
		}
		if c == '>' {
			t.recordError("abrupt-doctype-public-identifier")
			t.doctypeForceQuirks = true
			t.pushDoctype()
			t.st = DataState
			return
		}
		if c == 0 {
			t.recordError("unexpected-null-character")
			c = unicode.ReplacementChar
		}
		*t.doctypePublic = append(*t.doctypePublic, c)
	}
}

func (t *Tokenizer) handleAfterDoctypePublicIdentifier() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.recordError("eof-in-doctype")
			t.doctypeForceQuirks = true
			t.pushDoctype()
			t.push(Token{Type: EOF})
			return
		}
		switch c {
		case '\t', '\n', '\f', ' ':
			t.st = BetweenDOCTYPEPublicAndSystemIdentifiersState
			return
		case '>':
			t.pushDoctype()
			t.st = DataState
			return
		case '"':
			t.recordError("missing-whitespace-between-doctype-public-and-system-identifiers")
			empty := []rune{}
			t.doctypeSystem = &empty
			t.st = DOCTYPESystemIdentifierDoubleQuotedState
			return
		case '\'':
			t.recordError("missing-whitespace-between-doctype-public-and-system-identifiers")
			empty := []rune{}
			t.doctypeSystem = &empty
			t.st = DOCTYPESystemIdentifierSingleQuotedState
			return
		default:
			t.recordError("missing-quote-before-doctype-system-identifier")
			t.doctypeForceQuirks = true
			t.pushBack()
			t.st = BogusDOCTYPEState
			return
		}
	}
}

func (t *Tokenizer) handleBetweenDoctypeIdentifiers() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.recordError("eof-in-doctype")
			t.doctypeForceQuirks = true
			t.pushDoctype()
			t.push(Token{Type: EOF})
			return
		}
		switch c {
		case '\t', '\n', '\f', ' ':
			continue
		case '>':
			t.pushDoctype()
			t.st = DataState
			return
		case '"':
			empty := []rune{}
			t.doctypeSystem = &empty
			t.st = DOCTYPESystemIdentifierDoubleQuotedState
			return
		case '\'':
			empty := []rune{}
			t.doctypeSystem = &empty
			t.st = DOCTYPESystemIdentifierSingleQuotedState
			return
		default:
			t.recordError("missing-quote-before-doctype-system-identifier")
			t.doctypeForceQuirks = true
			t.pushBack()
			t.st = BogusDOCTYPEState
			return
		}
	}
}

func (t *Tokenizer) handleBeforeDoctypeSystemIdentifier() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.recordError("eof-in-doctype")
			t.doctypeForceQuirks = true
			t.pushDoctype()
			t.push(Token{Type: EOF})
			return
		}
		switch c {
		case '\t', '\n', '\f', ' ':
			continue
		case '"':
			empty := []rune{}
			t.doctypeSystem = &empty
			t.st = DOCTYPESystemIdentifierDoubleQuotedState
			return
		case '\'':
			empty := []rune{}
			t.doctypeSystem = &empty
			t.st = DOCTYPESystemIdentifierSingleQuotedState
			return
		case '>':
			t.recordError("missing-doctype-system-identifier")
			t.doctypeForceQuirks = true
			t.pushDoctype()
			t.st = DataState
			return
		default:
			t.recordError("missing-quote-before-doctype-system-identifier")
			t.doctypeForceQuirks = true
			t.pushBack()
			t.st = BogusDOCTYPEState
			return
		}
	}
}

func (t *Tokenizer) handleDoctypeSystemIDDQ() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.recordError("eof-in-doctype")
			t.doctypeForceQuirks = true
			t.pushDoctype()
			t.push(Token{Type: EOF})
			return
		}
		if c == '"' {
			t.st = AfterDOCTYPESystemIdentifierState
			return
		}
		if c == '>' {
			t.recordError("abrupt-doctype-system-identifier")
			t.doctypeForceQuirks = true
			t.pushDoctype()
			t.st = DataState
			return
		}
		if c == 0 {
			t.recordError("unexpected-null-character")
			c = unicode.ReplacementChar
		}
		*t.doctypeSystem = append(*t.doctypeSystem, c)
	}
}

func (t *Tokenizer) handleDoctypeSystemIDSQ() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.recordError("eof-in-doctype")
			t.doctypeForceQuirks = true
			t.pushDoctype()
			t.push(Token{Type: EOF})
			return
		}
		if c == '\'' {
			t.st = AfterDOCTYPESystemIdentifierState
			return
		}
		if c == '>' {
			t.recordError("abrupt-doctype-system-identifier")
			t.doctypeForceQuirks = true
			t.pushDoctype()
			t.st = DataState
			return
		}
		if c == 0 {
			t.recordError("unexpected-null-character")
			c = unicode.ReplacementChar
		}
		*t.doctypeSystem = append(*t.doctypeSystem, c)
	}
}

func (t *Tokenizer) handleAfterDoctypeSystemIdentifier() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.recordError("eof-in-doctype")
			t.doctypeForceQuirks = true
			t.pushDoctype()
			t.push(Token{Type: EOF})
			return
		}
		switch c {
		case '\t', '\n', '\f', ' ':
			continue
		case '>':
			t.pushDoctype()
			t.st = DataState
			return
		default:
			t.recordError("unexpected-character-after-doctype-system-identifier")
			t.pushBack()
			t.st = BogusDOCTYPEState
			return
		}
	}
}

func (t *Tokenizer) handleBogusDoctype() {
	for {
		c, ok := t.nextRune()
		if !ok {
			t.pushDoctype()
			t.push(Token{Type: EOF})
			return
		}
		if c == '>' {
			t.pushDoctype()
			t.st = DataState
			return
		}
	}
}

// -- CDATA --------------------------------------------------------------

func (t *Tokenizer) handleCDATASection() {
	t.textSt = CDATASectionState
	c, ok := t.nextRune()
	if !ok {
		t.recordError("eof-in-cdata")
		t.pushEOF()
		return
	}
	if c == ']' {
		t.st = CDATASectionBracketState
		return
	}
	t.bufferRune(c)
}

func (t *Tokenizer) handleCDATASectionBracket() {
	c, ok := t.nextRune()
	if !ok {
		t.recordError("eof-in-cdata")
		t.bufferRune(']')
		t.pushEOF()
		return
	}
	if c == ']' {
		t.st = CDATASectionEndState
		return
	}
	t.bufferRune(']')
	t.pushBack()
	t.st = CDATASectionState
}

func (t *Tokenizer) handleCDATASectionEnd() {
	c, ok := t.nextRune()
	if ok && c == '>' {
		t.flushBuf()
		t.st = DataState
		return
	}
	t.bufferRune(']')
	if !ok {
		t.bufferRune(']')
		t.recordError("eof-in-cdata")
		t.pushEOF()
		return
	}
	if c == ']' {
		return
	}
	t.bufferRune(']')
	t.pushBack()
	t.st = CDATASectionState
}

// -- RCDATA / RAWTEXT / script data --------------------------------------

func (t *Tokenizer) handleRCDATA() {
	t.textSt = RCDATAState
	for {
		c, ok := t.nextRune()
		if !ok {
			t.pushEOF()
			return
		}
		switch c {
		case '<':
			t.st = RCDATALessThanSignState
			return
		case 0:
			t.recordError("unexpected-null-character")
			t.bufferRune(unicode.ReplacementChar)
		default:
			t.bufferRune(c)
		}
	}
}

func (t *Tokenizer) handleRCDATALessThanSign() {
	c, ok := t.nextRune()
	if ok && c == '/' {
		t.tagName = t.tagName[:0]
		t.origTagName = t.origTagName[:0]
		t.st = RCDATAEndTagOpenState
		return
	}
	t.bufferRune('<')
	if ok {
		t.pushBack()
	}
	t.st = RCDATAState
}

func (t *Tokenizer) handleRCDATAEndTagOpen() {
	c, ok := t.nextRune()
	if ok && ((c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')) {
		t.tagName = append(t.tagName, unicode.ToLower(c))
		t.origTagName = append(t.origTagName, c)
		t.st = RCDATAEndTagNameState
		return
	}
	t.bufferRune('<')
	t.bufferRune('/')
	if ok {
		t.pushBack()
	}
	t.st = RCDATAState
}

func (t *Tokenizer) handleRCDATAEndTagName() {
	for {
		c, ok := t.nextRune()
		if ok && ((c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')) {
			t.tagName = append(t.tagName, unicode.ToLower(c))
			t.origTagName = append(t.origTagName, c)
			continue
		}

		name := string(t.tagName)
		if name == t.rawtextTag {
			if ok && c == '>' {
				t.flushBuf()
				t.push(Token{Type: EndTag, Name: name})
				t.st = DataState
				t.rawtextTag = ""
				t.tagName = t.tagName[:0]
				t.origTagName = t.origTagName[:0]
				return
			}
			if ok && isAppropriateEndTagSpace(c) {
				t.flushBuf()
				t.tagKind = EndTag
				t.tagName = []rune(name)
				t.tagAttrs = t.tagAttrs[:0]
				releaseAttrSet(t.tagAttrSeen)
				t.tagAttrSeen = acquireAttrSet()
				t.st = BeforeAttributeNameState
				return
			}
			if ok && c == '/' {
				t.flushBuf()
				t.tagKind = EndTag
				t.tagName = []rune(name)
				t.tagAttrs = t.tagAttrs[:0]
				releaseAttrSet(t.tagAttrSeen)
				t.tagAttrSeen = acquireAttrSet()
				t.st = SelfClosingStartTagState
				return
			}
		}

		t.bufferRune('<')
		t.bufferRune('/')
		for _, r := range t.origTagName {
			t.bufferRune(r)
		}
		t.tagName = t.tagName[:0]
		t.origTagName = t.origTagName[:0]
		if ok {
			t.pushBack()
		}
		t.st = RCDATAState
		return
	}
}

func (t *Tokenizer) handleRAWTEXT() {
	t.textSt = RAWTEXTState
	for {
		c, ok := t.nextRune()
		if !ok {
			t.pushEOF()
			return
		}
		if c == '<' {
			if t.rawtextTag == "script" {
				n1, ok1 := t.peekRune(0)
				n2, ok2 := t.peekRune(1)
				n3, ok3 := t.peekRune(2)
				if ok1 && ok2 && ok3 && n1 == '!' && n2 == '-' && n3 == '-' {
					t.bufferRune('<')
					t.bufferRune('!')
					t.bufferRune('-')
					t.bufferRune('-')
					_, _ = t.nextRune()
					_, _ = t.nextRune()
					_, _ = t.nextRune()
					t.st = ScriptDataEscapedState
					return
				}
			}
			t.st = RAWTEXTLessThanSignState
			return
		}
		if c == 0 {
			t.recordError("unexpected-null-character")
			t.bufferRune(unicode.ReplacementChar)
			continue
		}
		t.bufferRune(c)
	}
}

func (t *Tokenizer) handleRAWTEXTLessThanSign() {
	c, ok := t.nextRune()
	if ok && c == '/' {
		t.tagName = t.tagName[:0]
		t.origTagName = t.origTagName[:0]
		t.st = RAWTEXTEndTagOpenState
		return
	}
	t.bufferRune('<')
	if ok {
		t.pushBack()
	}
	if t.rawtextTag == "script" {
		t.st = ScriptDataState
	} else {
		t.st = RAWTEXTState
	}
}

func (t *Tokenizer) handleRAWTEXTEndTagOpen() {
	c, ok := t.nextRune()
	if ok && ((c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')) {
		t.tagName = append(t.tagName, unicode.ToLower(c))
		t.origTagName = append(t.origTagName, c)
		t.st = RAWTEXTEndTagNameState
		return
	}
	t.bufferRune('<')
	t.bufferRune('/')
	if ok {
		t.pushBack()
	}
	if t.rawtextTag == "script" {
		t.st = ScriptDataState
	} else {
		t.st = RAWTEXTState
	}
}

func (t *Tokenizer) handleRAWTEXTEndTagName() {
	for {
		c, ok := t.nextRune()
		if ok && ((c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')) {
			t.tagName = append(t.tagName, unicode.ToLower(c))
			t.origTagName = append(t.origTagName, c)
			continue
		}
		name := string(t.tagName)
		if name == t.rawtextTag {
			if ok && c == '>' {
				t.flushBuf()
				t.push(Token{Type: EndTag, Name: name})
				t.st = DataState
				t.rawtextTag = ""
				t.tagName = t.tagName[:0]
				t.origTagName = t.origTagName[:0]
				return
			}
			if ok && isAppropriateEndTagSpace(c) {
				t.flushBuf()
				t.tagKind = EndTag
				t.tagName = []rune(name)
				t.tagAttrs = t.tagAttrs[:0]
				releaseAttrSet(t.tagAttrSeen)
				t.tagAttrSeen = acquireAttrSet()
				t.st = BeforeAttributeNameState
				return
			}
			if ok && c == '/' {
				t.flushBuf()
				t.tagKind = EndTag
				t.tagName = []rune(name)
				t.tagAttrs = t.tagAttrs[:0]
				releaseAttrSet(t.tagAttrSeen)
				t.tagAttrSeen = acquireAttrSet()
				t.st = SelfClosingStartTagState
				return
			}
		}

		t.bufferRune('<')
		t.bufferRune('/')
		for _, r := range t.origTagName {
			t.bufferRune(r)
		}
		t.tagName = t.tagName[:0]
		t.origTagName = t.origTagName[:0]
		if !ok {
			t.pushEOF()
			return
		}
		t.pushBack()
		if t.rawtextTag == "script" {
			t.st = ScriptDataState
		} else {
			t.st = RAWTEXTState
		}
		return
	}
}

func (t *Tokenizer) handlePlaintext() {
	t.textSt = PLAINTEXTState
	for {
		c, ok := t.nextRune()
		if !ok {
			t.pushEOF()
			return
		}
		if c == 0 {
			t.recordError("unexpected-null-character")
			t.bufferRune(unicode.ReplacementChar)
			continue
		}
		t.bufferRune(c)
	}
}

func (t *Tokenizer) handleScriptDataEscaped() {
	c, ok := t.nextRune()
	if !ok {
		t.pushEOF()
		return
	}
	switch c {
	case '-':
		t.bufferRune('-')
		t.st = ScriptDataEscapedDashState
	case '<':
		t.st = ScriptDataEscapedLessThanSignState
	case 0:
		t.recordError("unexpected-null-character")
		t.bufferRune(unicode.ReplacementChar)
	default:
		t.bufferRune(c)
	}
}

func (t *Tokenizer) handleScriptDataEscapedDash() {
	c, ok := t.nextRune()
	if !ok {
		t.pushEOF()
		return
	}
	switch c {
	case '-':
		t.bufferRune('-')
		t.st = ScriptDataEscapedDashDashState
	case '<':
		t.st = ScriptDataEscapedLessThanSignState
	case 0:
		t.recordError("unexpected-null-character")
		t.bufferRune(unicode.ReplacementChar)
		t.st = ScriptDataEscapedState
	default:
		t.bufferRune(c)
		t.st = ScriptDataEscapedState
	}
}

func (t *Tokenizer) handleScriptDataEscapedDashDash() {
	c, ok := t.nextRune()
	if !ok {
		t.pushEOF()
		return
	}
	switch c {
	case '-':
		t.bufferRune('-')
	case '<':
		t.bufferRune('<')
		t.st = ScriptDataEscapedLessThanSignState
	case '>':
		t.bufferRune('>')
		t.st = ScriptDataState
	case 0:
		t.recordError("unexpected-null-character")
		t.bufferRune(unicode.ReplacementChar)
		t.st = ScriptDataEscapedState
	default:
		t.bufferRune(c)
		t.st = ScriptDataEscapedState
	}
}

func (t *Tokenizer) handleScriptDataEscapedLessThanSign() {
	c, ok := t.nextRune()
	if ok && c == '/' {
		t.scratch = t.scratch[:0]
		t.st = ScriptDataEscapedEndTagOpenState
		return
	}
	if ok && unicode.IsLetter(c) {
		t.scratch = t.scratch[:0]
		t.bufferRune('<')
		t.bufferRune(c)
		t.scratch = append(t.scratch, unicode.ToLower(c))
		t.st = ScriptDataDoubleEscapeStartState
		return
	}
	t.bufferRune('<')
	if ok {
		t.pushBack()
	}
	t.st = ScriptDataEscapedState
}

func (t *Tokenizer) handleScriptDataEscapedEndTagOpen() {
	c, ok := t.nextRune()
	if ok && unicode.IsLetter(c) {
		t.tagName = t.tagName[:0]
		t.origTagName = t.origTagName[:0]
		t.tagName = append(t.tagName, unicode.ToLower(c))
		t.origTagName = append(t.origTagName, c)
		t.st = ScriptDataEscapedEndTagNameState
		return
	}
	t.bufferRune('<')
	t.bufferRune('/')
	if ok {
		t.pushBack()
	}
	t.st = ScriptDataEscapedState
}

func (t *Tokenizer) handleScriptDataEscapedEndTagName() {
	for {
		c, ok := t.nextRune()
		if ok && unicode.IsLetter(c) {
			t.tagName = append(t.tagName, unicode.ToLower(c))
			t.origTagName = append(t.origTagName, c)
			continue
		}
		name := string(t.tagName)
		if name == "script" {
			if ok && isAppropriateEndTagSpace(c) {
				t.flushBuf()
				t.tagKind = EndTag
				t.tagName = []rune(name)
				t.tagAttrs = t.tagAttrs[:0]
				releaseAttrSet(t.tagAttrSeen)
				t.tagAttrSeen = acquireAttrSet()
				t.st = BeforeAttributeNameState
				return
			}
			if ok && c == '/' {
				t.flushBuf()
				t.tagKind = EndTag
				t.tagName = []rune(name)
				t.tagAttrs = t.tagAttrs[:0]
				releaseAttrSet(t.tagAttrSeen)
				t.tagAttrSeen = acquireAttrSet()
				t.st = SelfClosingStartTagState
				return
			}
			if ok && c == '>' {
				t.flushBuf()
				t.push(Token{Type: EndTag, Name: name})
				t.st = DataState
				return
			}
		}

		t.bufferRune('<')
		t.bufferRune('/')
		for _, r := range t.origTagName {
			t.bufferRune(r)
		}
		t.tagName = t.tagName[:0]
		t.origTagName = t.origTagName[:0]
		if ok {
			t.pushBack()
		}
		t.st = ScriptDataEscapedState
		return
	}
}

func (t *Tokenizer) handleScriptDataDoubleEscapeStart() {
	c, ok := t.nextRune()
	if !ok {
		t.pushEOF()
		return
	}
	if unicode.IsLetter(c) {
		t.scratch = append(t.scratch, unicode.ToLower(c))
		t.bufferRune(c)
		return
	}

	word := strings.ToLower(string(t.scratch))
	if word == "script" && (isAppropriateEndTagSpace(c) || c == '/' || c == '>') {
		t.st = ScriptDataDoubleEscapedState
	} else {
		t.st = ScriptDataEscapedState
	}
	t.pushBack()
}

func (t *Tokenizer) handleScriptDataDoubleEscaped() {
	c, ok := t.nextRune()
	if !ok {
		t.pushEOF()
		return
	}
	switch c {
	case '-':
		t.bufferRune('-')
		t.st = ScriptDataDoubleEscapedDashState
	case '<':
		t.bufferRune('<')
		t.st = ScriptDataDoubleEscapedLessThanSignState
	case 0:
		t.recordError("unexpected-null-character")
		t.bufferRune(unicode.ReplacementChar)
	default:
		t.bufferRune(c)
	}
}

func (t *Tokenizer) handleScriptDataDoubleEscapedDash() {
	c, ok := t.nextRune()
	if !ok {
		t.pushEOF()
		return
	}
	switch c {
	case '-':
		t.bufferRune('-')
		t.st = ScriptDataDoubleEscapedDashDashState
	case '<':
		t.bufferRune('<')
		t.st = ScriptDataDoubleEscapedLessThanSignState
	case 0:
		t.recordError("unexpected-null-character")
		t.bufferRune(unicode.ReplacementChar)
		t.st = ScriptDataDoubleEscapedState
	default:
		t.bufferRune(c)
		t.st = ScriptDataDoubleEscapedState
	}
}

func (t *Tokenizer) handleScriptDataDoubleEscapedDashDash() {
	c, ok := t.nextRune()
	if !ok {
		t.pushEOF()
		return
	}
	switch c {
	case '-':
		t.bufferRune('-')
	case '<':
		t.bufferRune('<')
		t.st = ScriptDataDoubleEscapedLessThanSignState
	case '>':
		t.bufferRune('>')
		t.st = ScriptDataState
	case 0:
		t.recordError("unexpected-null-character")
		t.bufferRune(unicode.ReplacementChar)
		t.st = ScriptDataDoubleEscapedState
	default:
		t.bufferRune(c)
		t.st = ScriptDataDoubleEscapedState
	}
}

func (t *Tokenizer) handleScriptDataDoubleEscapedLessThanSign() {
	c, ok := t.nextRune()
	if ok && c == '/' {
		t.scratch = t.scratch[:0]
		t.bufferRune('/')
		t.st = ScriptDataDoubleEscapeEndState
		return
	}
	if ok {
		t.pushBack()
	}
	t.st = ScriptDataDoubleEscapedState
}

func (t *Tokenizer) handleScriptDataDoubleEscapeEnd() {
	c, ok := t.nextRune()
	if !ok {
		t.pushEOF()
		return
	}
	if unicode.IsLetter(c) {
		t.scratch = append(t.scratch, unicode.ToLower(c))
		t.bufferRune(c)
		return
	}
	word := strings.ToLower(string(t.scratch))
	if word == "script" && (isAppropriateEndTagSpace(c) || c == '/' || c == '>') {
		t.st = ScriptDataEscapedState
	} else {
		t.st = ScriptDataDoubleEscapedState
	}
	t.pushBack()
}

// isAppropriateEndTagSpace reports whether c is one of the whitespace
// characters HTML treats as ending a tag name while scanning for the
// "appropriate end tag" in RCDATA/RAWTEXT/script-data.
func isAppropriateEndTagSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
