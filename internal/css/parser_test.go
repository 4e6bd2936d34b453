package css_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"emailcss/internal/css"
)

func TestParser_UnescapesPseudoClassSelectors(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))

	rules := p.Parse(`.hover\:bg-blue-500:hover { background-color: #3b82f6; }`)

	block, ok := rules[".hover:bg-blue-500:hover"]
	require.True(t, ok, "expected unescaped selector key, got %v", rules)
	assert.Equal(t, "background-color: #3b82f6;", block)

	// the pseudo-class suffix stays part of the key, so the state rule never
	// applies inline
	_, ok = rules.Lookup("hover:bg-blue-500")
	assert.False(t, ok)
}

func TestUnescapeSelector(t *testing.T) {
	assert.Equal(t, ".w-1/2", css.UnescapeSelector(`.w-1\/2`))
	assert.Equal(t, ".p-0.5", css.UnescapeSelector(`.p-0\.5`))
	assert.Equal(t, ".md:w-1/3", css.UnescapeSelector(`.md\:w-1\/3`))
	assert.Equal(t, `.\31 0`, css.UnescapeSelector(`.\31 0`))
	assert.Equal(t, ".plain", css.UnescapeSelector(".plain"))
}

func TestParser_LookupByClassToken(t *testing.T) {
	rules := css.NewParser(nil).Parse(`
.p-4 { padding: 1rem; }
.md\:flex { display: flex; }
`)

	block, ok := rules.Lookup("p-4")
	require.True(t, ok)
	assert.Equal(t, "padding: 1rem;", block)

	block, ok = rules.Lookup("md:flex")
	require.True(t, ok)
	assert.Equal(t, "display: flex;", block)

	_, ok = rules.Lookup("missing")
	assert.False(t, ok)
}

func TestParser_DuplicateSelectorLastWins(t *testing.T) {
	rules := css.NewParser(nil).Parse(`.a { color: red; } .a { color: blue; }`)

	assert.Len(t, rules, 1)
	assert.Equal(t, "color: blue;", rules[".a"])
}

func TestParser_FlatMediaHandling(t *testing.T) {
	rules := css.NewParser(nil).Parse(`.block { display: block; }
@media (min-width: 640px) { .sm\:block { display: block; } }
.hidden { display: none; }`)

	// the prelude is glued to the first inner selector, so the breakpoint rule
	// is unreachable through a class lookup
	_, ok := rules.Lookup("sm:block")
	assert.False(t, ok)

	block, ok := rules.Lookup("hidden")
	require.True(t, ok)
	assert.Equal(t, "display: none;", block)

	block, ok = rules.Lookup("block")
	require.True(t, ok)
	assert.Equal(t, "display: block;", block)
}

func TestParser_StripsComments(t *testing.T) {
	rules := css.NewParser(nil).Parse(`/* colors */
.text-red { color: red; }
/* spacing */ .m-0 { margin: 0; }`)

	block, ok := rules.Lookup("text-red")
	require.True(t, ok)
	assert.Equal(t, "color: red;", block)

	block, ok = rules.Lookup("m-0")
	require.True(t, ok)
	assert.Equal(t, "margin: 0;", block)
}

func TestParser_EmptyInput(t *testing.T) {
	assert.Empty(t, css.NewParser(nil).Parse(""))
	assert.Empty(t, css.NewParser(nil).Parse("not css at all"))
}
