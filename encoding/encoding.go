// Package encoding implements HTML5 encoding sniffing and decoding.
package encoding

import (
	"bytes"
	"errors"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// ErrInvalidEncoding is returned when the specified encoding is not supported.
var ErrInvalidEncoding = errors.New("unsupported or invalid encoding")

// Encoding represents a character encoding.
type Encoding struct {
	// Name is the canonical name of the encoding.
	Name string

	// Labels are the encoding labels that map to this encoding.
	Labels []string
}

// Common encodings.
var (
	UTF8 = &Encoding{
		Name: "UTF-8",
		Labels: []string{
			"utf-8", "utf8", "unicode-1-1-utf-8",
			"unicode11utf8", "unicode20utf8", "x-unicode20utf8",
		},
	}
	Windows1252 = &Encoding{
		Name: "windows-1252",
		Labels: []string{
			"windows-1252", "windows1252", "cp1252", "x-cp1252",
			"ansi_x3.4-1968", "ascii", "us-ascii",
			"iso-ir-100", "csisolatin1",
		},
	}
	ISO88591 = &Encoding{
		Name: "ISO-8859-1",
		Labels: []string{
			"iso-8859-1", "iso8859-1", "iso88591",
			"iso_8859-1", "iso_8859-1:1987",
			"latin1", "latin-1", "l1",
			"cp819", "ibm819",
		},
	}
	ISO88592 = &Encoding{
		Name: "iso-8859-2",
		Labels: []string{
			"iso-8859-2", "iso8859-2", "iso88592",
			"iso_8859-2", "iso_8859-2:1987",
			"iso-ir-101", "csisolatin2",
			"latin2", "latin-2", "l2",
		},
	}
	EUCJP = &Encoding{
		Name: "euc-jp",
		Labels: []string{
			"euc-jp", "eucjp",
			"cseucpkdfmtjapanese", "x-euc-jp",
		},
	}
	UTF16   = &Encoding{Name: "utf-16", Labels: []string{"utf-16", "utf16"}}
	UTF16LE = &Encoding{Name: "utf-16le", Labels: []string{"utf-16le", "utf16le"}}
	UTF16BE = &Encoding{Name: "utf-16be", Labels: []string{"utf-16be", "utf16be"}}
)

var knownEncodings = []*Encoding{
	UTF8, Windows1252, ISO88591, ISO88592, EUCJP, UTF16, UTF16LE, UTF16BE,
}

// Decode converts raw HTML bytes to a string, picking the encoding in the
// order the HTML standard prescribes:
//
//  1. BOM
//  2. transport-layer hint
//  3. <meta charset> within the first 1024 non-comment bytes
//  4. windows-1252 fallback
func Decode(data []byte, hint string) (string, *Encoding, error) {
	if enc := detectBOM(data); enc != nil {
		decoded, err := decodeWithEncoding(data[bomLength(enc):], enc)
		return decoded, enc, err
	}

	if hint != "" {
		if enc := normalizeEncodingLabel(hint); enc != nil {
			decoded, err := decodeWithEncoding(data, enc)
			return decoded, enc, err
		}
	}

	if enc := prescanForMetaCharset(data); enc != nil {
		decoded, err := decodeWithEncoding(data, enc)
		return decoded, enc, err
	}

	decoded, err := decodeWithEncoding(data, Windows1252)
	return decoded, Windows1252, err
}

// detectBOM reports the encoding implied by a leading byte order mark.
func detectBOM(data []byte) *Encoding {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return UTF8
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return UTF16LE
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return UTF16BE
	}
	return nil
}

const (
	utf16BEName = "utf-16be"
	utf16LEName = "utf-16le"
)

// bomLength returns how many bytes the encoding's BOM occupies.
func bomLength(enc *Encoding) int {
	switch enc.Name {
	case "UTF-8":
		return 3
	case utf16LEName, utf16BEName:
		return 2
	}
	return 0
}

// normalizeEncodingLabel resolves an encoding label to its canonical
// encoding, or nil for an unrecognized label.
func normalizeEncodingLabel(label string) *Encoding {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return nil
	}

	// utf-7 is an XSS vector and must never be honored.
	switch label {
	case "utf-7", "utf7", "x-utf-7":
		return Windows1252
	}

	for _, enc := range knownEncodings {
		for _, l := range enc.Labels {
			if l != label {
				continue
			}
			// The web platform decodes latin-1 labels as windows-1252.
			if enc == ISO88591 {
				return Windows1252
			}
			return enc
		}
	}
	return nil
}

// normalizeMetaDeclaredEncoding resolves an encoding label found in a meta
// tag. UTF-16 declarations there are coerced to UTF-8, since a document
// readable by the prescan cannot actually be UTF-16. UTF-32 labels are not
// in the label table, so they resolve to nil.
func normalizeMetaDeclaredEncoding(label []byte) *Encoding {
	enc := normalizeEncodingLabel(string(label))
	if enc == nil {
		return nil
	}
	switch enc.Name {
	case "utf-16", utf16LEName, utf16BEName, "utf-32", "utf-32le", "utf-32be":
		return UTF8
	}
	return enc
}

func isASCIIWhitespace(b byte) bool {
	switch b {
	case '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isASCIIAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func asciiLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b | 0x20
	}
	return b
}

func skipASCIIWhitespace(data []byte, i int) int {
	for i < len(data) && isASCIIWhitespace(data[i]) {
		i++
	}
	return i
}

func stripASCIIWhitespace(value []byte) []byte {
	start, end := 0, len(value)
	for start < end && isASCIIWhitespace(value[start]) {
		start++
	}
	for end > start && isASCIIWhitespace(value[end-1]) {
		end--
	}
	return value[start:end]
}

// extractCharsetFromContent pulls the charset parameter out of a
// Content-Type style meta content attribute ("text/html; charset=utf-8").
func extractCharsetFromContent(contentBytes []byte) []byte {
	if len(contentBytes) == 0 {
		return nil
	}

	// Lowercase and fold whitespace so the charset keyword and '=' can be
	// matched byte-wise.
	b := make([]byte, len(contentBytes))
	for i, ch := range contentBytes {
		if isASCIIWhitespace(ch) {
			b[i] = ' '
		} else {
			b[i] = asciiLower(ch)
		}
	}

	idx := bytes.Index(b, []byte("charset"))
	if idx < 0 {
		return nil
	}
	i, n := idx+len("charset"), len(b)

	for i < n && b[i] == ' ' {
		i++
	}
	if i >= n || b[i] != '=' {
		return nil
	}
	i++
	for i < n && b[i] == ' ' {
		i++
	}
	if i >= n {
		return nil
	}

	var quote byte
	if b[i] == '"' || b[i] == '\'' {
		quote = b[i]
		i++
	}

	start := i
	for i < n {
		ch := b[i]
		if quote != 0 {
			if ch == quote {
				break
			}
		} else if ch == ' ' || ch == ';' {
			break
		}
		i++
	}
	if quote != 0 && (i >= n || b[i] != quote) {
		// Unterminated quote: the declaration doesn't count.
		return nil
	}
	return b[start:i]
}

// metaPrescanner walks the head of the byte stream looking for a usable
// <meta> charset declaration. The scan covers at most 1024 bytes of
// non-comment input (comments may be skipped in full, up to a hard cap on
// total bytes examined).
type metaPrescanner struct {
	data       []byte
	pos        int
	nonComment int
}

const (
	prescanWindow = 1024
	prescanCap    = 65536
)

func (m *metaPrescanner) active() bool {
	return m.pos < len(m.data) && m.pos < prescanCap && m.nonComment < prescanWindow
}

// advance consumes one byte of non-comment input.
func (m *metaPrescanner) advance() {
	m.pos++
	m.nonComment++
}

// skipToTagEnd consumes bytes through the closing '>' of a tag, honoring
// quoted attribute values.
func (m *metaPrescanner) skipToTagEnd() {
	var quote byte
	for m.active() {
		ch := m.data[m.pos]
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
		} else if ch == '"' || ch == '\'' {
			quote = ch
		} else if ch == '>' {
			m.advance()
			return
		}
		m.advance()
	}
}

func prescanForMetaCharset(data []byte) *Encoding {
	m := &metaPrescanner{data: data}
	for m.active() {
		if data[m.pos] != '<' {
			m.advance()
			continue
		}

		// <!-- ... --> costs nothing against the non-comment window, but an
		// unterminated comment ends the prescan.
		if bytes.HasPrefix(data[m.pos+1:], []byte("!--")) {
			end := bytes.Index(data[m.pos+4:], []byte("-->"))
			if end < 0 {
				return nil
			}
			m.pos += 4 + end + 3
			continue
		}

		j := m.pos + 1
		if j < len(data) && data[j] == '/' {
			m.skipToTagEnd()
			continue
		}
		if j >= len(data) || !isASCIIAlpha(data[j]) {
			m.advance()
			continue
		}

		nameStart := j
		for j < len(data) && isASCIIAlpha(data[j]) {
			j++
		}
		if !bytes.EqualFold(data[nameStart:j], []byte("meta")) {
			m.skipToTagEnd()
			continue
		}

		if enc := m.scanMetaTag(j); enc != nil {
			return enc
		}
	}
	return nil
}

// scanMetaTag parses the attributes of a meta tag starting after its name
// and returns the encoding it declares, if any. On return the scanner is
// positioned after the tag (or at the point scanning should resume).
func (m *metaPrescanner) scanMetaTag(k int) *Encoding {
	var charset, httpEquiv, content []byte
	data := m.data
	n := len(data)
	sawGT := false
	tagStart := m.pos

attrs:
	for k < n && k < prescanCap {
		switch ch := data[k]; {
		case ch == '>':
			sawGT = true
			k++
			break attrs
		case ch == '<':
			break attrs
		case isASCIIWhitespace(ch) || ch == '/':
			k++
			continue
		}

		// Attribute name runs to whitespace or a delimiter.
		attrStart := k
		for k < n {
			ch := data[k]
			if isASCIIWhitespace(ch) || ch == '=' || ch == '>' || ch == '/' || ch == '<' {
				break
			}
			k++
		}
		attrName := bytes.ToLower(data[attrStart:k])
		k = skipASCIIWhitespace(data, k)

		var value []byte
		if k < n && data[k] == '=' {
			k = skipASCIIWhitespace(data, k+1)
			if k >= n {
				break
			}
			if q := data[k]; q == '"' || q == '\'' {
				k++
				endQuote := bytes.IndexByte(data[k:], q)
				if endQuote < 0 {
					// Unclosed quote: this meta never counts.
					m.advance()
					return nil
				}
				value = data[k : k+endQuote]
				k += endQuote + 1
			} else {
				valStart := k
				for k < n {
					ch := data[k]
					if isASCIIWhitespace(ch) || ch == '>' || ch == '<' {
						break
					}
					k++
				}
				value = data[valStart:k]
			}
		}

		switch {
		case bytes.Equal(attrName, []byte("charset")):
			charset = stripASCIIWhitespace(value)
		case bytes.Equal(attrName, []byte("http-equiv")):
			httpEquiv = value
		case bytes.Equal(attrName, []byte("content")):
			content = value
		}
	}

	if !sawGT {
		m.advance()
		return nil
	}

	if charset != nil {
		if enc := normalizeMetaDeclaredEncoding(charset); enc != nil {
			return enc
		}
	}
	if httpEquiv != nil && content != nil && bytes.EqualFold(httpEquiv, []byte("content-type")) {
		if extracted := extractCharsetFromContent(content); extracted != nil {
			if enc := normalizeMetaDeclaredEncoding(extracted); enc != nil {
				return enc
			}
		}
	}

	m.nonComment += k - tagStart
	m.pos = k
	return nil
}

// decodeWithEncoding transcodes data into UTF-8.
//
// The byte-level transcoding is delegated to golang.org/x/text's htmlindex
// registry, which implements the WHATWG encoding-label table and ships
// generated decoders for the full windows-125x / iso-8859-* / euc-jp /
// utf-16 family. This package owns only the sniffing steps layered on top.
func decodeWithEncoding(data []byte, enc *Encoding) (string, error) {
	if enc.Name == "UTF-8" {
		return string(data), nil
	}

	label := strings.ToLower(enc.Name)
	if len(enc.Labels) > 0 {
		label = enc.Labels[0]
	}
	xenc, err := htmlindex.Get(label)
	if err != nil {
		return "", ErrInvalidEncoding
	}
	decoded, err := xenc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
