package constants

import "testing"

func TestIsWhitespace(t *testing.T) {
	for _, c := range []rune{'\t', '\n', '\f', ' '} {
		if !IsWhitespace(c) {
			t.Errorf("IsWhitespace(%U) = false", c)
		}
	}
	// Carriage returns are normalized away before tokenization, so they
	// are deliberately not HTML5 whitespace here.
	for _, c := range []rune{'a', '0', '\r', '\v', 0x00A0, '<'} {
		if IsWhitespace(c) {
			t.Errorf("IsWhitespace(%U) = true", c)
		}
	}
}

func TestCaseClasses(t *testing.T) {
	for c := 'A'; c <= 'Z'; c++ {
		if !IsASCIIUpper(c) || IsASCIILower(c) || !IsASCIIAlpha(c) {
			t.Errorf("misclassified upper %q", c)
		}
	}
	for c := 'a'; c <= 'z'; c++ {
		if IsASCIIUpper(c) || !IsASCIILower(c) || !IsASCIIAlpha(c) {
			t.Errorf("misclassified lower %q", c)
		}
	}
	for _, c := range []rune{'0', '9', '-', 'é', 'Ä', 0x2003} {
		if IsASCIIAlpha(c) {
			t.Errorf("IsASCIIAlpha(%q) = true", c)
		}
	}
}

func TestIsASCIIAlphaNum(t *testing.T) {
	for _, c := range []rune{'a', 'Z', '0', '9'} {
		if !IsASCIIAlphaNum(c) {
			t.Errorf("IsASCIIAlphaNum(%q) = false", c)
		}
	}
	for _, c := range []rune{'-', '_', ' ', 'ß'} {
		if IsASCIIAlphaNum(c) {
			t.Errorf("IsASCIIAlphaNum(%q) = true", c)
		}
	}
}

func TestToLower(t *testing.T) {
	cases := map[rune]rune{
		'A': 'a', 'Z': 'z', 'M': 'm',
		'a': 'a', '0': '0', '<': '<',
		'É': 'É', // only ASCII letters fold
	}
	for in, want := range cases {
		if got := ToLower(in); got != want {
			t.Errorf("ToLower(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFlagsOutOfRange(t *testing.T) {
	// Non-ASCII code points never carry flags.
	for _, c := range []rune{0x100, 0x3042, -1} {
		if IsWhitespace(c) || IsASCIIAlpha(c) || IsASCIIAlphaNum(c) {
			t.Errorf("rune %U should have no ASCII character class", c)
		}
	}
}
