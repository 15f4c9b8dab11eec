package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// runCLI invokes run with the given args and stdin, returning stdout,
// stderr, and the error.
func runCLI(t *testing.T, args []string, stdin string) (string, string, error) {
	t.Helper()
	var stdout, stderr strings.Builder
	err := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

// writeFixture drops an HTML file into a temp dir and returns its path.
func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersionFlag(t *testing.T) {
	for _, flag := range []string{"-version", "-v"} {
		t.Run(flag, func(t *testing.T) {
			stdout, stderr, err := runCLI(t, []string{flag}, "")
			require.NoError(t, err)
			require.Empty(t, stdout)
			require.Contains(t, stderr, "html5 version")
		})
	}
}

func TestHelpFlag(t *testing.T) {
	_, stderr, err := runCLI(t, []string{"-h"}, "")
	require.NoError(t, err, "flag.ErrHelp is not an error for the caller")
	require.Contains(t, stderr, "Usage: html5")
	require.Contains(t, stderr, "Examples:")
}

func TestMissingInputFile(t *testing.T) {
	_, stderr, err := runCLI(t, nil, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing input file")
	require.Contains(t, stderr, "Usage: html5")
}

func TestUnreadableFile(t *testing.T) {
	_, _, err := runCLI(t, []string{filepath.Join(t.TempDir(), "nope.html")}, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "reading input")
}

func TestParseFile(t *testing.T) {
	path := writeFixture(t, `<!DOCTYPE html><html><body><p>Hello</p></body></html>`)
	stdout, _, err := runCLI(t, []string{path}, "")
	require.NoError(t, err)
	require.Contains(t, stdout, "<p>Hello</p>")
	require.Contains(t, stdout, "<!DOCTYPE html>")
}

func TestParseStdin(t *testing.T) {
	stdout, _, err := runCLI(t, []string{"-"}, `<p>from stdin</p>`)
	require.NoError(t, err)
	require.Contains(t, stdout, "from stdin")
}

func TestEmptyInput(t *testing.T) {
	stdout, _, err := runCLI(t, []string{"-"}, "")
	require.NoError(t, err)
	// An empty document still gets its implied html/head/body shell.
	require.Contains(t, stdout, "<html>")
}

func TestSelectorFilter(t *testing.T) {
	page := `<html><body><h1>Title</h1><p class="a">one</p><p class="b">two</p></body></html>`

	t.Run("all matches", func(t *testing.T) {
		stdout, _, err := runCLI(t, []string{"-selector", "p", "-"}, page)
		require.NoError(t, err)
		require.Contains(t, stdout, "one")
		require.Contains(t, stdout, "two")
		require.NotContains(t, stdout, "Title")
	})

	t.Run("-s shorthand", func(t *testing.T) {
		stdout, _, err := runCLI(t, []string{"-s", "p.b", "-"}, page)
		require.NoError(t, err)
		require.NotContains(t, stdout, "one")
		require.Contains(t, stdout, "two")
	})

	t.Run("-first limits to one", func(t *testing.T) {
		stdout, _, err := runCLI(t, []string{"-s", "p", "-first", "-"}, page)
		require.NoError(t, err)
		require.Contains(t, stdout, "one")
		require.NotContains(t, stdout, "two")
	})

	t.Run("no matches prints nothing", func(t *testing.T) {
		stdout, _, err := runCLI(t, []string{"-s", ".missing", "-"}, page)
		require.NoError(t, err)
		require.Empty(t, stdout)
	})

	t.Run("invalid selector", func(t *testing.T) {
		_, _, err := runCLI(t, []string{"-s", "..bad", "-"}, page)
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid selector")
	})
}

func TestTextFormat(t *testing.T) {
	page := `<html><body><h1> A   Title </h1><p>body  text</p></body></html>`

	stdout, _, err := runCLI(t, []string{"-f", "text", "-s", "h1", "-"}, page)
	require.NoError(t, err)
	require.Equal(t, "A Title\n", stdout, "whitespace is collapsed by default")

	t.Run("-strip=false keeps whitespace", func(t *testing.T) {
		stdout, _, err := runCLI(t, []string{"-f", "text", "-strip=false", "-s", "h1", "-"}, page)
		require.NoError(t, err)
		require.Contains(t, stdout, " A   Title ")
	})
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := runCLI(t, []string{"-format", "yaml", "-"}, "<p>x</p>")
	require.Error(t, err)
	require.Contains(t, err.Error(), `invalid format "yaml"`)
}

func TestFormatShorthand(t *testing.T) {
	stdout, _, err := runCLI(t, []string{"-f", "text", "-s", "p", "-"}, "<p>plain</p>")
	require.NoError(t, err)
	require.Equal(t, "plain\n", stdout)
}

func TestPrettyPrinting(t *testing.T) {
	page := `<div><p>one</p><p>two</p></div>`

	t.Run("pretty is the default", func(t *testing.T) {
		stdout, _, err := runCLI(t, []string{"-s", "div", "-"}, page)
		require.NoError(t, err)
		require.Contains(t, stdout, "\n  <p>one</p>")
	})

	t.Run("custom indent width", func(t *testing.T) {
		stdout, _, err := runCLI(t, []string{"-s", "div", "-indent", "4", "-"}, page)
		require.NoError(t, err)
		require.Contains(t, stdout, "\n    <p>one</p>")
	})

	t.Run("pretty off", func(t *testing.T) {
		stdout, _, err := runCLI(t, []string{"-s", "div", "-pretty=false", "-"}, page)
		require.NoError(t, err)
		require.Contains(t, stdout, "<div><p>one</p><p>two</p></div>")
	})
}

func TestMarkdownFormat(t *testing.T) {
	t.Run("headings and paragraphs", func(t *testing.T) {
		stdout, _, err := runCLI(t, []string{"-f", "markdown", "-"},
			`<html><body><h1>Title</h1><p>Body</p></body></html>`)
		require.NoError(t, err)
		require.Contains(t, stdout, "# Title")
		require.Contains(t, stdout, "Body")
	})

	t.Run("lists", func(t *testing.T) {
		stdout, _, err := runCLI(t, []string{"-f", "markdown", "-"},
			`<ul><li>Item 1</li><li>Item 2</li></ul>`)
		require.NoError(t, err)
		require.Contains(t, stdout, "- Item 1")
		require.Contains(t, stdout, "- Item 2")
	})

	t.Run("links and images", func(t *testing.T) {
		stdout, _, err := runCLI(t, []string{"-f", "markdown", "-"},
			`<p><a href="https://example.com">Example</a><img src="x.png" alt="X"></p>`)
		require.NoError(t, err)
		require.Contains(t, stdout, "[Example](https://example.com)")
		require.Contains(t, stdout, "![X](x.png)")
	})

	t.Run("tables", func(t *testing.T) {
		stdout, _, err := runCLI(t, []string{"-f", "markdown", "-"},
			`<table><thead><tr><th>Name</th><th>Age</th></tr></thead>`+
				`<tbody><tr><td>Alice</td><td>30</td></tr></tbody></table>`)
		require.NoError(t, err)
		require.Contains(t, stdout, "| Name | Age |")
		require.Contains(t, stdout, "| --- | --- |")
		require.Contains(t, stdout, "| Alice | 30 |")
	})

	t.Run("code blocks", func(t *testing.T) {
		stdout, _, err := runCLI(t, []string{"-f", "markdown", "-"},
			`<pre>x := 1</pre>`)
		require.NoError(t, err)
		require.Contains(t, stdout, "```\nx := 1\n```")
	})

	t.Run("blockquote", func(t *testing.T) {
		stdout, _, err := runCLI(t, []string{"-f", "markdown", "-"},
			`<blockquote>quoted</blockquote>`)
		require.NoError(t, err)
		require.Contains(t, stdout, "> quoted")
	})
}

func TestLargeInput(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 2000; i++ {
		sb.WriteString("<p class=\"row\">data</p>")
	}
	sb.WriteString("</body></html>")

	stdout, _, err := runCLI(t, []string{"-f", "text", "-s", "p.row", "-first", "-"}, sb.String())
	require.NoError(t, err)
	require.Equal(t, "data\n", stdout)
}

func TestOutputEndsWithNewline(t *testing.T) {
	stdout, _, err := runCLI(t, []string{"-s", "p", "-"}, "<p>x</p>")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(stdout, "\n"))
}
