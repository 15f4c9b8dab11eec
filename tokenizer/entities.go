package tokenizer

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/basalt-labs/html5/internal/constants"
)

// decodeNumericEntity resolves the digits of a numeric character
// reference, applying the replacement rules for NUL, the windows-1252
// C1 range, surrogates, and out-of-range values.
func decodeNumericEntity(text string, isHex bool) rune {
	base := 10
	if isHex {
		base = 16
	}
	codepoint, err := strconv.ParseInt(text, base, 32)
	if err != nil {
		return unicode.ReplacementChar
	}

	cp := int(codepoint)
	if replacement, ok := constants.NumericReplacements[cp]; ok {
		return replacement
	}
	if cp > unicode.MaxRune || (cp >= 0xD800 && cp <= 0xDFFF) {
		return unicode.ReplacementChar
	}
	return rune(cp)
}

// longestLegacyPrefix finds the longest prefix of name that is a legacy
// (semicolon-optional) named reference, returning its value and length in
// bytes, or ("", 0).
func longestLegacyPrefix(name string) (string, int) {
	for k := len(name); k > 0; k-- {
		prefix := name[:k]
		if !constants.LegacyEntities[prefix] {
			continue
		}
		if v, ok := constants.NamedEntities[prefix]; ok {
			return v, k
		}
	}
	return "", 0
}

// entityWriter accumulates decoded output while scanning a text run.
type entityWriter struct {
	out []rune
}

func (w *entityWriter) literal(rs []rune) { w.out = append(w.out, rs...) }
func (w *entityWriter) value(s string)    { w.out = append(w.out, []rune(s)...) }

// decodeEntitiesInText resolves character references in a run of text or
// an attribute value. The two contexts differ in how forgiving the legacy
// (missing-semicolon) rules are: inside an attribute, a legacy name
// followed by an alphanumeric or "=" stays literal so that URLs like
// "?a=b&copy=1" survive.
func decodeEntitiesInText(text string, inAttribute bool) string {
	if !strings.ContainsRune(text, '&') {
		return text
	}

	w := entityWriter{out: make([]rune, 0, len(text))}
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		if runes[i] != '&' {
			start := i
			for i < len(runes) && runes[i] != '&' {
				i++
			}
			w.literal(runes[start:i])
			continue
		}

		j := i + 1
		if j < len(runes) && runes[j] == '#' {
			i = decodeNumericAt(&w, runes, i)
			continue
		}

		// Collect the candidate name.
		for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j])) {
			j++
		}
		name := string(runes[i+1 : j])
		hasSemicolon := j < len(runes) && runes[j] == ';'

		if name == "" {
			w.literal(runes[i : i+1])
			i++
			continue
		}

		if hasSemicolon {
			if value, ok := constants.NamedEntities[name]; ok {
				w.value(value)
				i = j + 1
				continue
			}
			// "&notit;" decodes its "not" prefix in text, never in
			// attribute values.
			if !inAttribute {
				if value, n := longestLegacyPrefix(name); n > 0 {
					w.value(value)
					i += 1 + n
					continue
				}
			}
		}

		if constants.LegacyEntities[name] {
			if value, ok := constants.NamedEntities[name]; ok {
				var next rune
				if j < len(runes) {
					next = runes[j]
				}
				if inAttribute && next != 0 && (unicode.IsLetter(next) || unicode.IsDigit(next) || next == '=') {
					w.literal(runes[i : i+1])
					i++
					continue
				}
				w.value(value)
				i = j
				continue
			}
		}

		if value, n := longestLegacyPrefix(name); n > 0 {
			if inAttribute {
				w.literal(runes[i : i+1])
				i++
				continue
			}
			w.value(value)
			i += 1 + n
			continue
		}

		// Nothing matched; the ampersand run stays literal.
		if hasSemicolon {
			w.literal(runes[i : j+1])
			i = j + 1
		} else {
			w.literal(runes[i : i+1])
			i++
		}
	}

	return string(w.out)
}

// decodeNumericAt handles a "&#..." reference starting at position i,
// returning the position to resume scanning from.
func decodeNumericAt(w *entityWriter, runes []rune, i int) int {
	j := i + 2 // past "&#"
	isHex := false
	if j < len(runes) && (runes[j] == 'x' || runes[j] == 'X') {
		isHex = true
		j++
	}

	digitStart := j
	for j < len(runes) && isEntityDigit(runes[j], isHex) {
		j++
	}
	hasSemicolon := j < len(runes) && runes[j] == ';'

	if j > digitStart {
		w.out = append(w.out, decodeNumericEntity(string(runes[digitStart:j]), isHex))
		if hasSemicolon {
			return j + 1
		}
		return j
	}

	// No digits: leave the reference as written.
	if hasSemicolon {
		w.literal(runes[i : j+1])
		return j + 1
	}
	w.literal(runes[i:j])
	return j
}

func isEntityDigit(r rune, isHex bool) bool {
	if r >= '0' && r <= '9' {
		return true
	}
	if !isHex {
		return false
	}
	return (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
