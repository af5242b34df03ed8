package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeedsUpdateIdenticalContent(t *testing.T) {
	sig := `<p>Ada Lovelace</p>`
	assert.False(t, NeedsUpdate(sig, sig))
}

func TestNeedsUpdateRealChange(t *testing.T) {
	assert.True(t, NeedsUpdate(`<p>Ada Lovelace</p>`, `<p>Ada King</p>`))
}

func TestNeedsUpdateIgnoresInterTagWhitespace(t *testing.T) {
	current := "<table>\n  <tr>\n    <td>Ada</td>\n  </tr>\n</table>"
	desired := `<table><tr><td>Ada</td></tr></table>`
	assert.False(t, NeedsUpdate(current, desired))
}

func TestNeedsUpdateIgnoresWhitespaceRuns(t *testing.T) {
	assert.False(t, NeedsUpdate("<p>Ada   Lovelace</p>", "<p>Ada Lovelace</p>"))
}

func TestNeedsUpdateDecodesEntities(t *testing.T) {
	assert.False(t, NeedsUpdate(`<p>R&amp;D</p>`, `<p>R&D</p>`))
	assert.False(t, NeedsUpdate(`<p>Caf&eacute;</p>`, `<p>Café</p>`))
}

func TestNeedsUpdateNormalizesFontQuotes(t *testing.T) {
	current := `<p style="font-family: &quot;Segoe UI&quot;, Arial">x</p>`
	desired := `<p style="font-family: 'Segoe UI', Arial">x</p>`
	assert.False(t, NeedsUpdate(current, desired))
}

func TestNeedsUpdateEmptyCurrent(t *testing.T) {
	assert.True(t, NeedsUpdate("", `<p>Ada</p>`))
	assert.False(t, NeedsUpdate("", "   "))
}
