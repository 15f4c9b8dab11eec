package constants

import "testing"

func TestEntityTableSizes(t *testing.T) {
	// The WHATWG named character reference list is a closed set.
	if got := len(NamedEntities); got != 2125 {
		t.Errorf("NamedEntities has %d entries, want 2125", got)
	}
	if got := len(LegacyEntities); got != 106 {
		t.Errorf("LegacyEntities has %d entries, want 106", got)
	}
	if got := len(NumericReplacements); got != 28 {
		t.Errorf("NumericReplacements has %d entries, want 28", got)
	}
}

func TestNamedEntityValues(t *testing.T) {
	cases := map[string]string{
		"amp":            "&",
		"lt":             "<",
		"gt":             ">",
		"quot":           `"`,
		"nbsp":           " ",
		"copy":           "©",
		"AElig":          "Æ",
		"aelig":          "æ",
		"Alpha":          "Α", // case matters: Greek capital vs
		"alpha":          "α", // lowercase alpha are distinct entities
		"lang":           "⟨",
		"rang":           "⟩",
		"notin":          "∉",
		"Tab":            "\t",
		"NewLine":        "\n",
		"ZeroWidthSpace": "\u200B",
		// Two-code-point expansions.
		"NotEqualTilde": "≂̸",
		"acE":           "∾̳",
	}
	for name, want := range cases {
		got, ok := NamedEntities[name]
		if !ok {
			t.Errorf("entity %q missing", name)
			continue
		}
		if got != want {
			t.Errorf("NamedEntities[%q] = %+q, want %+q", name, got, want)
		}
	}

	if _, ok := NamedEntities["noti"]; ok {
		t.Error(`"noti" is not a WHATWG entity; prefix matching must be the decoder's job`)
	}
}

func TestLegacyEntities(t *testing.T) {
	// Legacy names (recognized without a semicolon) are a strict subset
	// of the named table.
	for name := range LegacyEntities {
		if _, ok := NamedEntities[name]; !ok {
			t.Errorf("legacy entity %q missing from NamedEntities", name)
		}
	}

	for _, name := range []string{"amp", "lt", "gt", "quot", "nbsp", "copy", "AElig", "aacute"} {
		if !LegacyEntities[name] {
			t.Errorf("%q should be a legacy entity", name)
		}
	}

	// Post-HTML4 additions require the semicolon.
	for _, name := range []string{"lang", "rang", "notin", "prod"} {
		if LegacyEntities[name] {
			t.Errorf("%q must not be in the legacy set", name)
		}
	}
}

func TestNumericReplacements(t *testing.T) {
	spot := map[int]rune{
		0x00: '�', // NUL
		0x80: '€', // euro sign via windows-1252
		0x91: '‘',
		0x92: '’',
		0x99: '™',
	}
	for code, want := range spot {
		got, ok := NumericReplacements[code]
		if !ok {
			t.Errorf("no replacement for 0x%02X", code)
			continue
		}
		if got != want {
			t.Errorf("NumericReplacements[0x%02X] = %U, want %U", code, got, want)
		}
	}

	// The five C1 positions windows-1252 leaves unmapped are absent.
	for _, code := range []int{0x81, 0x8D, 0x8F, 0x90, 0x9D} {
		if _, ok := NumericReplacements[code]; ok {
			t.Errorf("0x%02X has no windows-1252 mapping and must not be replaced", code)
		}
	}
}

func BenchmarkNamedEntityLookup(b *testing.B) {
	names := []string{"amp", "lt", "NotEqualTilde", "notanentity"}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = NamedEntities[names[i%len(names)]]
	}
}
