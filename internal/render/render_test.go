package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTML(t *testing.T) {
	m := NewMarkdown()

	out, err := m.HTML("**BU** mede a utilização do orçamento.\n\n- realizado\n- comprometido")
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>BU</strong>")
	assert.Contains(t, out, "<li>realizado</li>")
}

func TestHTMLTables(t *testing.T) {
	m := NewMarkdown()

	out, err := m.HTML("| Projeto | Desvio |\n|---|---|\n| PRJ-001 | -25% |")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>PRJ-001</td>")
}

func TestHTMLDropsRawHTML(t *testing.T) {
	m := NewMarkdown()

	out, err := m.HTML("antes <script>alert(1)</script> depois")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
}
