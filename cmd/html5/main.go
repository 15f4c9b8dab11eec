// Command html5 parses HTML documents and prints them whole or filtered
// through a CSS selector.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/basalt-labs/html5"
	"github.com/basalt-labs/html5/dom"
	// Register the selector engine with the dom package.
	_ "github.com/basalt-labs/html5/selector"
	"github.com/basalt-labs/html5/serialize"
)

// Output format constants.
const (
	outputFormatHTML     = "html"
	outputFormatText     = "text"
	outputFormatMarkdown = "markdown"
)

var version = "dev"

// config holds the CLI configuration.
type config struct {
	selector  string
	format    string
	first     bool
	separator string
	strip     bool
	pretty    bool
	indent    int
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, inputPath, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if inputPath == "" {
		// -version or -h already printed what was asked for.
		return nil
	}

	input, err := readInput(inputPath, stdin)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	doc, err := html5.ParseBytes(input)
	if err != nil {
		return fmt.Errorf("parsing HTML: %w", err)
	}

	nodes, err := selectNodes(doc, cfg)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(stdout, renderNodes(nodes, cfg))
	return err
}

// selectNodes resolves the -selector flag against the document, or yields
// the document itself when no selector was given.
func selectNodes(doc *dom.Document, cfg *config) ([]dom.Node, error) {
	if cfg.selector == "" {
		return []dom.Node{doc}, nil
	}
	elements, err := doc.Query(cfg.selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector: %w", err)
	}
	if cfg.first && len(elements) > 0 {
		elements = elements[:1]
	}
	nodes := make([]dom.Node, 0, len(elements))
	for _, el := range elements {
		nodes = append(nodes, el)
	}
	return nodes, nil
}

func parseFlags(args []string, stderr io.Writer) (*config, string, error) {
	fs := flag.NewFlagSet("html5", flag.ContinueOnError)
	fs.SetOutput(stderr)

	cfg := &config{}
	var selectorShort, formatShort string
	var showVersion, versionShort bool

	fs.StringVar(&cfg.selector, "selector", "", "CSS selector to filter output")
	fs.StringVar(&selectorShort, "s", "", "CSS selector to filter output (shorthand)")
	fs.StringVar(&cfg.format, "format", "html", "Output format: html, text, markdown")
	fs.StringVar(&formatShort, "f", "", "Output format (shorthand)")
	fs.BoolVar(&cfg.first, "first", false, "Output only first match")
	fs.StringVar(&cfg.separator, "separator", " ", "Separator for text output")
	fs.BoolVar(&cfg.strip, "strip", true, "Strip whitespace from text")
	fs.BoolVar(&cfg.pretty, "pretty", true, "Pretty-print HTML output")
	fs.IntVar(&cfg.indent, "indent", 2, "Indentation size for pretty-print")
	fs.BoolVar(&showVersion, "version", false, "Show version")
	fs.BoolVar(&versionShort, "v", false, "Show version (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: html5 [options] <file>\n\n")
		fmt.Fprintf(stderr, "Parse and query HTML documents.\n\n")
		fmt.Fprintf(stderr, "Arguments:\n")
		fmt.Fprintf(stderr, "  file    HTML file path or '-' for stdin\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  html5 index.html                    Parse and pretty-print HTML\n")
		fmt.Fprintf(stderr, "  html5 -s 'p' index.html             Extract all <p> elements\n")
		fmt.Fprintf(stderr, "  html5 -s 'h1' -f text index.html    Extract h1 text content\n")
		fmt.Fprintf(stderr, "  curl -s URL | html5 -s 'title' -    Extract title from piped HTML\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, "", nil
		}
		return nil, "", err
	}

	// Long flags win over their shorthands when both are set.
	if selectorShort != "" && cfg.selector == "" {
		cfg.selector = selectorShort
	}
	if formatShort != "" && cfg.format == outputFormatHTML {
		cfg.format = formatShort
	}

	switch cfg.format {
	case outputFormatHTML, outputFormatText, outputFormatMarkdown:
	default:
		return nil, "", fmt.Errorf("invalid format %q: must be html, text, or markdown", cfg.format)
	}

	if showVersion || versionShort {
		fmt.Fprintf(stderr, "html5 version %s\n", version)
		return nil, "", nil
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		fs.Usage()
		return nil, "", fmt.Errorf("missing input file")
	}
	return cfg, remaining[0], nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func renderNodes(nodes []dom.Node, cfg *config) string {
	var results []string
	for _, node := range nodes {
		var rendered string
		switch cfg.format {
		case outputFormatHTML:
			rendered = serialize.ToHTML(node, serialize.Options{
				Pretty:     cfg.pretty,
				IndentSize: cfg.indent,
			})
		case outputFormatText:
			rendered = renderText(node, cfg)
		case outputFormatMarkdown:
			rendered = serialize.ToMarkdown(node)
		}
		if rendered != "" {
			results = append(results, rendered)
		}
	}

	out := strings.Join(results, "\n")
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}

func renderText(node dom.Node, cfg *config) string {
	text := textContent(node)
	if cfg.strip {
		text = collapseWhitespace(text)
	}
	return text
}

// textContent concatenates every text descendant of node.
func textContent(node dom.Node) string {
	var sb strings.Builder
	var walk func(dom.Node)
	walk = func(n dom.Node) {
		switch n := n.(type) {
		case *dom.Text:
			sb.WriteString(n.Data)
		case *dom.Element:
			for _, child := range n.Children() {
				walk(child)
			}
		case *dom.Document:
			for _, child := range n.Children() {
				walk(child)
			}
		}
	}
	walk(node)
	return sb.String()
}

// collapseWhitespace folds ASCII whitespace runs into single spaces and
// trims both ends. Non-breaking spaces are text, not whitespace, so only
// the five ASCII whitespace characters count.
func collapseWhitespace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			pendingSpace = sb.Len() > 0
		default:
			if pendingSpace {
				sb.WriteByte(' ')
				pendingSpace = false
			}
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
