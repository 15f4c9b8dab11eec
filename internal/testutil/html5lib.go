// Package testutil loads html5lib-tests fixture files.
package testutil

import (
	"bufio"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
)

// TreeConstructionTest is one case from a tree-construction .dat file.
type TreeConstructionTest struct {
	Data            string
	Errors          []string
	Document        string
	FragmentContext string // e.g., "div" or "svg path"
	ScriptDirective string // "script-on" or "script-off"
	IframeSrcdoc    bool
	XMLCoercion     bool
}

// TokenizerTestFile is the top-level shape of a tokenizer .test file.
type TokenizerTestFile struct {
	Tests             []TokenizerTest `json:"tests"`
	XMLViolationTests []TokenizerTest `json:"xmlViolationTests"`
}

// TokenizerTest is one case from a tokenizer .test file.
type TokenizerTest struct {
	Description   string            `json:"description"`
	Input         string            `json:"input"`
	Output        []json.RawMessage `json:"output"`
	Errors        []TokenizerError  `json:"errors"`
	InitialStates []string          `json:"initialStates"`
	LastStartTag  string            `json:"lastStartTag"`
	DoubleEscaped bool              `json:"doubleEscaped"`
	DiscardBOM    bool              `json:"discardBom"`
}

// TokenizerError is an expected parse error with its source position.
type TokenizerError struct {
	Code   string `json:"code"`
	Line   int    `json:"line"`
	Column int    `json:"col"`
}

// SerializerTestFile is the top-level shape of a serializer .test file.
type SerializerTestFile struct {
	Tests []SerializerTest `json:"tests"`
}

// SerializerTest is one case from a serializer .test file.
type SerializerTest struct {
	Description string                 `json:"description"`
	Input       []json.RawMessage      `json:"input"`
	Expected    []string               `json:"expected"`
	Options     map[string]interface{} `json:"options"`
}

// EncodingTest is one case from an encoding .dat file.
type EncodingTest struct {
	Data             []byte
	ExpectedEncoding string
}

// datScanner walks a tree-construction .dat file line by line, tracking
// which #section the current line belongs to.
type datScanner struct {
	cur      *TreeConstructionTest
	section  string
	data     []string
	errs     []string
	document []string
	out      []TreeConstructionTest
}

func (ds *datScanner) emit() {
	if ds.cur != nil && (len(ds.data) > 0 || len(ds.document) > 0) {
		ds.cur.Data = unescapeDatInput(strings.Join(ds.data, "\n"))
		ds.cur.Errors = ds.errs
		ds.cur.Document = strings.Join(ds.document, "\n")
		ds.out = append(ds.out, *ds.cur)
	}
	ds.cur = &TreeConstructionTest{}
	ds.data, ds.errs, ds.document = nil, nil, nil
	ds.section = ""
}

func (ds *datScanner) directive(name string) {
	switch name {
	case "data":
		ds.emit()
		ds.section = name
	case "errors", "document", "new-errors":
		ds.section = name
	case "document-fragment":
		ds.section = name
	case "script-on", "script-off":
		if ds.cur != nil {
			ds.cur.ScriptDirective = name
		}
	case "iframe-srcdoc":
		if ds.cur != nil {
			ds.cur.IframeSrcdoc = true
		}
	case "xml-coercion":
		if ds.cur != nil {
			ds.cur.XMLCoercion = true
		}
	default:
		ds.section = name
	}
}

func (ds *datScanner) body(line string) {
	switch ds.section {
	case "data":
		ds.data = append(ds.data, line)
	case "errors":
		if strings.TrimSpace(line) != "" {
			ds.errs = append(ds.errs, line)
		}
	case "document":
		ds.document = append(ds.document, line)
	case "document-fragment":
		if ds.cur != nil && strings.TrimSpace(line) != "" {
			ds.cur.FragmentContext = strings.TrimSpace(line)
		}
	}
}

// ParseTreeConstructionFile reads every test case from a tree-construction
// .dat file.
func ParseTreeConstructionFile(path string) ([]TreeConstructionTest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ds datScanner
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if name, ok := strings.CutPrefix(line, "#"); ok {
			ds.directive(name)
		} else {
			ds.body(line)
		}
	}
	ds.emit()
	return ds.out, sc.Err()
}

// unescapeDatInput expands the backslash escapes some .dat inputs use for
// control characters and raw code points.
func unescapeDatInput(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	i := 0
	for i < len(s) {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			i++
			continue
		}
		switch s[i+1] {
		case '\\':
			b.WriteByte('\\')
			i += 2
		case 'n':
			b.WriteByte('\n')
			i += 2
		case 't':
			b.WriteByte('\t')
			i += 2
		case 'f':
			b.WriteByte('\f')
			i += 2
		case 'r':
			b.WriteByte('\r')
			i += 2
		case 'x':
			if v, ok := hexValue(s, i+2, 2); ok {
				b.WriteByte(byte(v))
				i += 4
			} else {
				b.WriteByte(c)
				i++
			}
		case 'u':
			if v, ok := hexValue(s, i+2, 4); ok {
				b.WriteRune(rune(v))
				i += 6
			} else {
				b.WriteByte(c)
				i++
			}
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// hexValue decodes exactly n hex digits of s starting at off.
func hexValue(s string, off, n int) (uint32, bool) {
	if off+n > len(s) {
		return 0, false
	}
	var v uint32
	for _, c := range []byte(s[off : off+n]) {
		switch {
		case c >= '0' && c <= '9':
			v = v<<4 | uint32(c-'0')
		case c >= 'a' && c <= 'f':
			v = v<<4 | uint32(c-'a'+10)
		case c >= 'A' && c <= 'F':
			v = v<<4 | uint32(c-'A'+10)
		default:
			return 0, false
		}
	}
	return v, true
}

func readJSONFile(path string, into any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, into)
}

// ParseTokenizerFile reads a tokenizer .test file (JSON).
func ParseTokenizerFile(path string) (*TokenizerTestFile, error) {
	var tf TokenizerTestFile
	if err := readJSONFile(path, &tf); err != nil {
		return nil, err
	}
	return &tf, nil
}

// ParseSerializerFile reads a serializer .test file (JSON).
func ParseSerializerFile(path string) (*SerializerTestFile, error) {
	var tf SerializerTestFile
	if err := readJSONFile(path, &tf); err != nil {
		return nil, err
	}
	return &tf, nil
}

// ParseEncodingFile reads an encoding-sniffing .dat file. Each case is a
// #data section (raw bytes, trailing newline included) followed by the
// expected canonical encoding name.
func ParseEncodingFile(path string) ([]EncodingTest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var (
		tests   []EncodingTest
		body    []byte
		label   string
		section string
	)
	emit := func() {
		if body != nil && label != "" {
			tests = append(tests, EncodingTest{Data: body, ExpectedEncoding: label})
		}
		body, label = nil, ""
	}

	for _, line := range strings.Split(string(raw), "\n") {
		trimmed := strings.TrimRight(line, "\r")
		switch trimmed {
		case "#data":
			emit()
			section = "data"
			continue
		case "#encoding":
			section = "encoding"
			continue
		}
		switch section {
		case "data":
			body = append(body, line...)
			body = append(body, '\n')
		case "encoding":
			if label == "" && strings.TrimSpace(trimmed) != "" {
				label = strings.TrimSpace(trimmed)
			}
		}
	}
	emit()
	return tests, nil
}

// CollectTestFiles returns every file under dir whose base name matches
// pattern, in natural (numeric-aware) order.
func CollectTestFiles(dir, pattern string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ok, merr := filepath.Match(pattern, d.Name())
		if merr != nil {
			return merr
		}
		if ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool {
		return naturalLess(filepath.Base(files[i]), filepath.Base(files[j]))
	})
	return files, nil
}

// naturalLess orders strings so that embedded numbers compare by value:
// tests2.dat sorts before tests10.dat.
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		if isDigit(a[0]) && isDigit(b[0]) {
			na, resta := leadingNumber(a)
			nb, restb := leadingNumber(b)
			if na != nb {
				return na < nb
			}
			a, b = resta, restb
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func leadingNumber(s string) (int, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	n, _ := strconv.Atoi(s[:i])
	return n, s[i:]
}

// UnescapeUnicode expands JSON-style \uXXXX sequences in "doubleEscaped"
// test inputs. Surrogate pairs are merged into a single code point, since
// the fixtures encode astral characters the way JSON does.
func UnescapeUnicode(s string) string {
	if !strings.Contains(s, `\u`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	i := 0
	for i < len(s) {
		if s[i] != '\\' || i+5 >= len(s) || s[i+1] != 'u' {
			b.WriteByte(s[i])
			i++
			continue
		}
		v, ok := hexValue(s, i+2, 4)
		if !ok {
			b.WriteByte(s[i])
			i++
			continue
		}
		r := rune(v)
		if utf16.IsSurrogate(r) && i+11 < len(s) && s[i+6] == '\\' && s[i+7] == 'u' {
			if v2, ok2 := hexValue(s, i+8, 4); ok2 {
				if merged := utf16.DecodeRune(r, rune(v2)); merged != 0xFFFD {
					b.WriteRune(merged)
					i += 12
					continue
				}
			}
		}
		b.WriteRune(r)
		i += 6
	}
	return b.String()
}
