package html5

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"golang.org/x/net/html"

	"github.com/basalt-labs/html5/internal/testutil"
)

// This file measures html5lib tree-construction conformance for this
// parser and for golang.org/x/net/html, so the two can be compared on the
// same fixture corpus.

const html5libTreeTestsDir = "testdata/html5lib-tests/tree-construction"

// complianceParser adapts one parser to the fixture runner. It returns
// the html5lib-format tree, or skip=true when the case doesn't apply to
// this parser.
type complianceParser struct {
	name string
	run  func(test testutil.TreeConstructionTest) (tree string, err error, skip bool)
}

var complianceParsers = []complianceParser{
	{
		name: "html5",
		run: func(test testutil.TreeConstructionTest) (string, error, bool) {
			var opts []Option
			if test.IframeSrcdoc {
				opts = append(opts, WithIframeSrcdoc())
			}
			if test.XMLCoercion {
				opts = append(opts, WithXMLCoercion())
			}
			doc, err := Parse(test.Data, opts...)
			if err != nil {
				return "", err, false
			}
			return testutil.SerializeHTML5LibTree(doc), nil, false
		},
	},
	{
		name: "golang.org/x/net/html",
		run: func(test testutil.TreeConstructionTest) (string, error, bool) {
			if test.IframeSrcdoc {
				// net/html has no srcdoc document mode.
				return "", nil, true
			}
			doc, err := html.Parse(strings.NewReader(test.Data))
			if err != nil {
				return "", err, false
			}
			return netHTMLTree(doc), nil, false
		},
	},
}

// scoreboard tallies one parser's results over the whole corpus.
type scoreboard struct {
	passed, failed, skipped int
	failures                []string // first few, for the log
}

func (s *scoreboard) percentage() float64 {
	if s.passed+s.failed == 0 {
		return 0
	}
	return float64(s.passed) * 100 / float64(s.passed+s.failed)
}

func runComplianceCorpus(t *testing.T, parser complianceParser) scoreboard {
	t.Helper()
	if _, err := os.Stat(html5libTreeTestsDir); os.IsNotExist(err) {
		t.Skip("html5lib-tests not found - run 'git submodule update --init'")
	}
	files, err := testutil.CollectTestFiles(html5libTreeTestsDir, "*.dat")
	if err != nil {
		t.Fatalf("collect test files: %v", err)
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	var total scoreboard

	for _, file := range files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			board := scoreFixtureFile(path, parser)
			mu.Lock()
			total.passed += board.passed
			total.failed += board.failed
			total.skipped += board.skipped
			total.failures = append(total.failures, board.failures...)
			mu.Unlock()
		}(file)
	}
	wg.Wait()
	return total
}

func scoreFixtureFile(path string, parser complianceParser) scoreboard {
	var board scoreboard
	tests, err := testutil.ParseTreeConstructionFile(path)
	if err != nil {
		return board
	}
	name := filepath.Base(path)

	for _, test := range tests {
		// No script engine, and fragment cases have their own harness in
		// the treebuilder package.
		if test.ScriptDirective == "script-on" || test.FragmentContext != "" {
			board.skipped++
			continue
		}

		got, err, skip := parser.run(test)
		if skip {
			board.skipped++
			continue
		}

		want := strings.TrimRight(test.Document, "\n")
		switch {
		case err != nil:
			board.failed++
			board.note("%s: parse error %v on %q", name, err, clipInput(test.Data))
		case got == want:
			board.passed++
		default:
			board.failed++
			board.note("%s: tree mismatch on %q", name, clipInput(test.Data))
		}
	}
	return board
}

func (s *scoreboard) note(format string, args ...any) {
	if len(s.failures) < 10 {
		s.failures = append(s.failures, fmt.Sprintf(format, args...))
	}
}

func clipInput(s string) string {
	if len(s) > 100 {
		return s[:100] + "..."
	}
	return s
}

func TestTreeConstructionCompliance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping compliance corpus in short mode")
	}

	results := make([]scoreboard, len(complianceParsers))
	for i, parser := range complianceParsers {
		results[i] = runComplianceCorpus(t, parser)
	}

	t.Log("html5lib tree-construction compliance:")
	for i, parser := range complianceParsers {
		r := results[i]
		t.Logf("  %-25s passed=%d failed=%d skipped=%d (%.2f%%)",
			parser.name, r.passed, r.failed, r.skipped, r.percentage())
	}
	t.Log("goquery shares x/net/html's parser, so its compliance is identical.")

	for i, parser := range complianceParsers {
		if len(results[i].failures) > 0 && testing.Verbose() {
			t.Logf("sample %s failures:\n  %s", parser.name,
				strings.Join(results[i].failures, "\n  "))
		}
	}
}

// netHTMLTree renders an x/net/html document in the html5lib fixture
// format, mirroring what testutil.SerializeHTML5LibTree does for this
// package's DOM.
func netHTMLTree(doc *html.Node) string {
	var sb strings.Builder
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.DoctypeNode {
			writeNetHTMLDoctype(&sb, c)
			continue
		}
		writeNetHTMLNode(&sb, c, 0)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func writeNetHTMLDoctype(sb *strings.Builder, n *html.Node) {
	sb.WriteString("| <!DOCTYPE ")
	if n.Data == "" {
		sb.WriteString(">\n")
		return
	}
	sb.WriteString(n.Data)

	var publicID, systemID string
	for _, a := range n.Attr {
		switch a.Key {
		case "public":
			publicID = a.Val
		case "system":
			systemID = a.Val
		}
	}
	if publicID != "" || systemID != "" {
		fmt.Fprintf(sb, " %q %q", publicID, systemID)
	}
	sb.WriteString(">\n")
}

func writeNetHTMLNode(sb *strings.Builder, n *html.Node, depth int) {
	indent := strings.Repeat("  ", depth)

	switch n.Type {
	case html.ElementNode:
		sb.WriteString("| " + indent + "<" + netHTMLTagName(n) + ">\n")

		attrs := make([]html.Attribute, len(n.Attr))
		copy(attrs, n.Attr)
		sort.Slice(attrs, func(i, j int) bool {
			return netHTMLAttrName(attrs[i]) < netHTMLAttrName(attrs[j])
		})
		for _, attr := range attrs {
			sb.WriteString("| " + indent + "  " + netHTMLAttrName(attr) + `="` + attr.Val + "\"\n")
		}

		childDepth := depth + 1
		if n.Data == "template" && n.Namespace == "" {
			sb.WriteString("| " + strings.Repeat("  ", depth+1) + "content\n")
			childDepth = depth + 2
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeNetHTMLNode(sb, c, childDepth)
		}

	case html.TextNode:
		sb.WriteString("| " + indent + `"` + n.Data + "\"\n")

	case html.CommentNode:
		sb.WriteString("| " + indent + "<!-- " + n.Data + " -->\n")

	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeNetHTMLNode(sb, c, depth)
		}
	}
}

func netHTMLTagName(n *html.Node) string {
	switch n.Namespace {
	case "", "html":
		return n.Data
	case "svg", "math":
		return n.Namespace + " " + n.Data
	}
	return n.Namespace + " " + n.Data
}

func netHTMLAttrName(attr html.Attribute) string {
	prefix, ok := map[string]string{
		"":                                     "",
		"http://www.w3.org/1999/xlink":         "xlink ",
		"http://www.w3.org/XML/1998/namespace": "xml ",
		"http://www.w3.org/2000/xmlns/":        "xmlns ",
	}[attr.Namespace]
	if !ok {
		return attr.Namespace + " " + attr.Key
	}
	if prefix == "" {
		return attr.Key
	}
	local := attr.Key
	if idx := strings.IndexByte(local, ':'); idx >= 0 {
		local = local[idx+1:]
	}
	return prefix + local
}
