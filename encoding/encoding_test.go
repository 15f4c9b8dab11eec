package encoding_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/basalt-labs/html5/encoding"
)

func decodeName(t *testing.T, data []byte, hint string) (string, string) {
	t.Helper()
	decoded, enc, err := encoding.Decode(data, hint)
	require.NoError(t, err)
	require.NotNil(t, enc)
	return decoded, enc.Name
}

func TestDecodeLabelNormalization(t *testing.T) {
	// Each label group must resolve to its canonical encoding when passed
	// as a transport hint.
	cases := map[string][]string{
		"UTF-8":        {"utf-8", "UTF-8", "utf8", "unicode-1-1-utf-8"},
		"windows-1252": {"windows-1252", "cp1252", "ascii", "us-ascii", "latin1", "iso-8859-1", "l1"},
		"iso-8859-2":   {"iso-8859-2", "latin2", "csisolatin2"},
		"euc-jp":       {"euc-jp", "x-euc-jp"},
		"utf-16le":     {"utf-16le", "utf16le"},
		"utf-16be":     {"utf-16be"},
	}
	for want, labels := range cases {
		for _, label := range labels {
			t.Run(label, func(t *testing.T) {
				_, name := decodeName(t, []byte("hi"), label)
				require.Equal(t, want, name)
			})
		}
	}
}

func TestDecodeRejectsUTF7(t *testing.T) {
	// utf-7 labels must never be honored; they fall back to windows-1252.
	for _, label := range []string{"utf-7", "UTF-7", "x-utf-7"} {
		_, name := decodeName(t, []byte("abc"), label)
		require.Equal(t, "windows-1252", name, "label %q", label)
	}
}

func TestDecodeUnknownHintFallsThrough(t *testing.T) {
	// A nonsense hint is ignored; with no BOM or meta the fallback is
	// windows-1252.
	_, name := decodeName(t, []byte("plain text"), "klingon-8")
	require.Equal(t, "windows-1252", name)
}

func TestDecodeBOM(t *testing.T) {
	t.Run("utf-8", func(t *testing.T) {
		decoded, name := decodeName(t, []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}, "")
		require.Equal(t, "UTF-8", name)
		require.Equal(t, "hi", decoded)
	})

	t.Run("utf-16le", func(t *testing.T) {
		decoded, name := decodeName(t, []byte{0xFF, 0xFE, 'A', 0x00}, "")
		require.Equal(t, "utf-16le", name)
		require.Equal(t, "A", decoded)
	})

	t.Run("utf-16be", func(t *testing.T) {
		decoded, name := decodeName(t, []byte{0xFE, 0xFF, 0x00, 'A'}, "")
		require.Equal(t, "utf-16be", name)
		require.Equal(t, "A", decoded)
	})

	t.Run("BOM wins over meta", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`<meta charset="euc-jp">x`)...)
		_, name := decodeName(t, data, "")
		require.Equal(t, "UTF-8", name)
	})
}

func TestDecodeMetaCharset(t *testing.T) {
	cases := []struct {
		name string
		html string
		want string
	}{
		{"simple charset", `<meta charset="utf-8">`, "UTF-8"},
		{"unquoted value", `<meta charset=utf-8>`, "UTF-8"},
		{"single quotes", `<meta charset='utf-8'>`, "UTF-8"},
		{"uppercase attr", `<META CHARSET="UTF-8">`, "UTF-8"},
		{"euc-jp", `<meta charset="euc-jp">`, "euc-jp"},
		{"http-equiv content-type", `<meta http-equiv="Content-Type" content="text/html; charset=utf-8">`, "UTF-8"},
		{"http-equiv charset quoted inside content", `<meta http-equiv="content-type" content="text/html; charset='utf-8'">`, "UTF-8"},
		{"after other head tags", `<html><head><title>x</title><meta charset="utf-8">`, "UTF-8"},
		{"inside comment is skipped", `<!-- <meta charset="euc-jp"> --><meta charset="utf-8">`, "UTF-8"},
		{"utf-16 coerced to utf-8", `<meta charset="utf-16">`, "UTF-8"},
		{"no declaration", `<p>hello</p>`, "windows-1252"},
		{"charset past 1024 bytes is missed", "<p>" + strings.Repeat("a", 1100) + `</p><meta charset="utf-8">`, "windows-1252"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, name := decodeName(t, []byte(tc.html), "")
			require.Equal(t, tc.want, name)
		})
	}
}

func TestDecodeTranscoding(t *testing.T) {
	t.Run("windows-1252 smart quotes", func(t *testing.T) {
		decoded, name := decodeName(t, []byte{0x93, 'o', 'k', 0x94}, "windows-1252")
		require.Equal(t, "windows-1252", name)
		require.Equal(t, "“ok”", decoded)
	})

	t.Run("iso-8859-2", func(t *testing.T) {
		// 0xB1 is LATIN SMALL LETTER A WITH OGONEK in latin-2.
		decoded, _ := decodeName(t, []byte{0xB1}, "iso-8859-2")
		require.Equal(t, "ą", decoded)
	})

	t.Run("euc-jp multibyte", func(t *testing.T) {
		decoded, _ := decodeName(t, []byte{0xA4, 0xC8}, "euc-jp")
		require.Equal(t, "と", decoded)
	})

	t.Run("utf-8 passthrough", func(t *testing.T) {
		decoded, _ := decodeName(t, []byte("héllo"), "utf-8")
		require.Equal(t, "héllo", decoded)
	})
}

func TestDecodeHintBeatsMeta(t *testing.T) {
	_, name := decodeName(t, []byte(`<meta charset="euc-jp">`), "utf-8")
	require.Equal(t, "UTF-8", name)
}
