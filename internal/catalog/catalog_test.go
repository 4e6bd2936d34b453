package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emailcss/internal/catalog"
	"emailcss/internal/css"
)

func TestCatalog_KnownUtilities(t *testing.T) {
	rules := css.NewParser(nil).Parse(catalog.CSS())

	tests := map[string]string{
		"bg-blue-600": "background-color: #2563eb;",
		"p-8":         "padding: 2rem;",
		"text-white":  "color: #ffffff;",
		"font-bold":   "font-weight: 700;",
		"text-center": "text-align: center;",
		"flex":        "display: flex;",
		"w-1/2":       "width: 50%;",
		"w-full":      "width: 100%;",
		"p-0.5":       "padding: 0.125rem;",
		"grid-cols-3": "grid-template-columns: repeat(3, minmax(0, 1fr));",
	}
	for class, want := range tests {
		block, ok := rules.Lookup(class)
		if assert.True(t, ok, class) {
			assert.Equal(t, want, block, class)
		}
	}

	_, ok := rules[".hover:bg-blue-500:hover"]
	assert.True(t, ok)
	_, ok = rules[".placeholder:text-gray-400::placeholder"]
	assert.True(t, ok)
}

func TestCompose(t *testing.T) {
	extra := filepath.Join(t.TempDir(), "brand.css")
	require.NoError(t, os.WriteFile(extra, []byte(".brand { color: #ff6600; }\n.p-8 { padding: 30px; }"), 0644))

	text, err := catalog.Compose(extra, ".doc { margin: 0; }")
	require.NoError(t, err)

	rules := css.NewParser(nil).Parse(text)
	block, ok := rules.Lookup("brand")
	require.True(t, ok)
	assert.Equal(t, "color: #ff6600;", block)
	assert.Equal(t, "padding: 30px;", rules[".p-8"])
	assert.Equal(t, "margin: 0;", rules[".doc"])
}

func TestCompose_MissingFile(t *testing.T) {
	_, err := catalog.Compose(filepath.Join(t.TempDir(), "absent.css"))
	assert.Error(t, err)

	text, err := catalog.Compose("")
	require.NoError(t, err)
	assert.Equal(t, catalog.CSS(), text)
}
