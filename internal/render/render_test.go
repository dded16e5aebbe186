package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentEmbedsStylesheetAndMarkup(t *testing.T) {
	doc := Document("<table></table>", "td { color: red; }")

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, "<style>\ntd { color: red; }\n</style>")
	assert.Contains(t, doc, "<body>\n<table></table></body>")
}

func TestDocumentNeutralizesClosingStyleTag(t *testing.T) {
	doc := Document("", "a{}</style><script>")
	assert.Equal(t, 1, strings.Count(doc, "</style"))
}

func TestLoadStylesheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.css")
	require.NoError(t, os.WriteFile(path, []byte("table {}"), 0o644))

	css, err := LoadStylesheet(path)
	require.NoError(t, err)
	assert.Equal(t, "table {}", css)

	_, err = LoadStylesheet(filepath.Join(t.TempDir(), "missing.css"))
	assert.Error(t, err)
}

func TestWriteOutputCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "temp.png")
	require.NoError(t, writeOutput(path, []byte{0x89, 'P', 'N', 'G'}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)
}
