package html5

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	require.NotEmpty(t, Version)
}

func TestParseBasicDocument(t *testing.T) {
	doc, err := Parse("<html><body><p>Hello</p></body></html>")
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.NotNil(t, doc.DocumentElement())
	require.Equal(t, "html", doc.DocumentElement().TagName)
}

func TestParseBytesDetectsASCIIAsUTF8(t *testing.T) {
	doc, err := ParseBytes([]byte("<html><body><p>Hello</p></body></html>"))
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.NotNil(t, doc.DocumentElement())
	require.Equal(t, "html", doc.DocumentElement().TagName)
}

func TestParseFragmentInTableRowContext(t *testing.T) {
	nodes, err := ParseFragment("<td>Cell</td>", "tr")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Equal(t, "td", nodes[0].TagName)
}
