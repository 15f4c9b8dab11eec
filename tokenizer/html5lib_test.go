package tokenizer_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/basalt-labs/html5/internal/testutil"
	"github.com/basalt-labs/html5/tokenizer"
)

const (
	html5libTestsDir = "../testdata/html5lib-tests/tokenizer"
	extraTestsDir    = "../testdata/justhtml-tests"
)

// TestHTML5LibTokenizer runs the html5lib tokenizer suite.
func TestHTML5LibTokenizer(t *testing.T) {
	t.Parallel()
	if _, err := os.Stat(html5libTestsDir); os.IsNotExist(err) {
		t.Skip("html5lib-tests not found - run 'git submodule update --init'")
	}
	runTokenizerSuite(t, html5libTestsDir, false)
}

// TestExtraTokenizer runs the project's supplementary tokenizer fixtures.
func TestExtraTokenizer(t *testing.T) {
	t.Parallel()
	if _, err := os.Stat(extraTestsDir); os.IsNotExist(err) {
		t.Skip("supplementary tokenizer tests not found")
	}
	runTokenizerSuite(t, extraTestsDir, true)
}

func runTokenizerSuite(t *testing.T, dir string, allowEmpty bool) {
	t.Helper()
	files, err := testutil.CollectTestFiles(dir, "*.test")
	if err != nil {
		t.Fatalf("collect test files: %v", err)
	}
	if len(files) == 0 {
		if allowEmpty {
			t.Skip("no tokenizer test files found")
		}
		t.Fatal("no tokenizer test files found")
	}

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			t.Parallel()
			suite, err := testutil.ParseTokenizerFile(file)
			if err != nil {
				t.Fatalf("parse test file: %v", err)
			}

			tests, xmlViolation := suite.Tests, false
			if len(tests) == 0 {
				tests, xmlViolation = suite.XMLViolationTests, true
			}
			for _, test := range tests {
				name := test.Description
				if name == "" {
					name = "test"
				}
				t.Run(name, func(t *testing.T) {
					checkTokenizerCase(t, test, xmlViolation)
				})
			}
		})
	}
}

// initialStates maps the html5lib state names onto tokenizer states.
var initialStates = map[string]tokenizer.State{
	"Data state":          tokenizer.DataState,
	"PLAINTEXT state":     tokenizer.PLAINTEXTState,
	"RCDATA state":        tokenizer.RCDATAState,
	"RAWTEXT state":       tokenizer.RAWTEXTState,
	"Script data state":   tokenizer.ScriptDataState,
	"CDATA section state": tokenizer.CDATASectionState,
}

func checkTokenizerCase(t *testing.T, test testutil.TokenizerTest, xmlViolation bool) {
	t.Helper()

	input := test.Input
	expected := test.Output
	if test.DoubleEscaped {
		input = testutil.UnescapeUnicode(input)
		expected = unescapeExpected(expected)
	}

	states := test.InitialStates
	if len(states) == 0 {
		states = []string{"Data state"}
	}

	for _, stateName := range states {
		state, ok := initialStates[stateName]
		if !ok {
			t.Skipf("unknown initial state %q", stateName)
		}

		tok := tokenizer.New(input)
		tok.SetDiscardBOM(test.DiscardBOM)
		tok.SetXMLCoercion(xmlViolation)
		tok.SetState(state)
		if test.LastStartTag != "" {
			tok.SetLastStartTag(test.LastStartTag)
		}

		var actual []interface{}
		for {
			token := tok.Next()
			if token.Type == tokenizer.EOF {
				break
			}
			if formatted := fixtureToken(token); formatted != nil {
				actual = append(actual, formatted)
			}
		}
		actual = coalesceCharacters(actual)

		if !tokensEqual(expected, actual) {
			t.Errorf("state %q:\ninput: %q\nexpected: %s\nactual:   %s",
				stateName, input, renderExpected(expected), renderActual(actual))
		}
	}
}

// fixtureToken converts a Token into the html5lib output array shape.
// Error and EOF tokens have no fixture representation.
func fixtureToken(token tokenizer.Token) interface{} {
	switch token.Type {
	case tokenizer.DOCTYPE:
		var name interface{}
		if token.Name != "" {
			name = token.Name
		}
		// ["DOCTYPE", name, publicId, systemId, correctness]
		return []interface{}{"DOCTYPE", name, token.PublicID, token.SystemID, !token.ForceQuirks}
	case tokenizer.StartTag:
		out := []interface{}{"StartTag", token.Name, tokenizer.AttrsToMap(token.Attrs)}
		if token.SelfClosing {
			out = append(out, true)
		}
		return out
	case tokenizer.EndTag:
		return []interface{}{"EndTag", token.Name}
	case tokenizer.Comment:
		return []interface{}{"Comment", token.Data}
	case tokenizer.Character:
		return []interface{}{"Character", token.Data}
	}
	return nil
}

// coalesceCharacters merges runs of Character tokens the way the fixtures
// expect them.
func coalesceCharacters(tokens []interface{}) []interface{} {
	out := make([]interface{}, 0, len(tokens))
	for _, tok := range tokens {
		arr, ok := tok.([]interface{})
		if ok && len(arr) >= 2 && arr[0] == "Character" && len(out) > 0 {
			if prev, ok := out[len(out)-1].([]interface{}); ok && len(prev) >= 2 && prev[0] == "Character" {
				prev[1] = prev[1].(string) + arr[1].(string)
				continue
			}
		}
		out = append(out, tok)
	}
	return out
}

// tokensEqual compares via JSON normalization, which papers over the
// int/float64 and nil-vs-missing differences JSON decoding introduces.
func tokensEqual(expected []json.RawMessage, actual []interface{}) bool {
	if len(expected) != len(actual) {
		return false
	}
	for i := range expected {
		var exp interface{}
		if err := json.Unmarshal(expected[i], &exp); err != nil {
			return false
		}
		expJSON, err1 := json.Marshal(exp)
		actJSON, err2 := json.Marshal(actual[i])
		if err1 != nil || err2 != nil || string(expJSON) != string(actJSON) {
			return false
		}
	}
	return true
}

func renderExpected(tokens []json.RawMessage) string {
	parts := make([]string, 0, len(tokens))
	for _, raw := range tokens {
		parts = append(parts, string(raw))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func renderActual(tokens []interface{}) string {
	data, _ := json.Marshal(tokens)
	return string(data)
}

// unescapeExpected undoes one JSON escaping layer in doubleEscaped
// fixtures: `\\uXXXX` in the raw bytes becomes `\uXXXX`.
func unescapeExpected(tokens []json.RawMessage) []json.RawMessage {
	isHex := func(b byte) bool {
		return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
	}
	out := make([]json.RawMessage, 0, len(tokens))
	for _, raw := range tokens {
		buf := make([]byte, 0, len(raw))
		for i := 0; i < len(raw); i++ {
			if raw[i] == '\\' && i+6 < len(raw) && raw[i+1] == '\\' && raw[i+2] == 'u' &&
				isHex(raw[i+3]) && isHex(raw[i+4]) && isHex(raw[i+5]) && isHex(raw[i+6]) {
				buf = append(buf, '\\', 'u', raw[i+3], raw[i+4], raw[i+5], raw[i+6])
				i += 6
				continue
			}
			buf = append(buf, raw[i])
		}
		out = append(out, json.RawMessage(buf))
	}
	return out
}

func BenchmarkTokenizer(b *testing.B) {
	html := strings.Repeat("<div class='test'>Hello, <b>world</b>!</div>", 1000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tok := tokenizer.New(html)
		for {
			if tok.Next().Type == tokenizer.EOF {
				break
			}
		}
	}
}
