package inliner_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"emailcss/internal/catalog"
	"emailcss/internal/config"
	"emailcss/pkg/inliner"
)

func TestConvert_CatalogUtilities(t *testing.T) {
	got, err := inliner.Convert(`<div class="bg-blue-600 p-8 text-white font-bold text-center">Hello</div>`, catalog.CSS(), true)
	require.NoError(t, err)

	assert.Equal(t, `<div class="bg-blue-600 p-8 text-white font-bold text-center" `+
		`style="background-color: #2563eb; padding: 2rem; color: #ffffff; font-weight: 700; text-align: center">Hello</div>`, got)
}

func TestConvert_StyleTagRemoval(t *testing.T) {
	doc := `<style>.a{color:red}</style><p class="a">x</p>`

	got, err := inliner.Convert(doc, ".a{color:red}", true)
	require.NoError(t, err)
	assert.Equal(t, `<p class="a" style="color: red">x</p>`, got)

	got, err = inliner.Convert(doc, ".a{color:red}", false)
	require.NoError(t, err)
	assert.Equal(t, `<style>.a{color:red}</style><p class="a" style="color: red">x</p>`, got)

	got, err = inliner.Convert("<STYLE type=\"text/css\">\n.a{}\n</Style><p>x</p>", "", true)
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>", got)
}

func TestConvert_IdenticalTagsRewrittenOnce(t *testing.T) {
	got, err := inliner.Convert(`<p class="a">1</p><p class="a">2</p>`, ".a { color: red; }", true)
	require.NoError(t, err)
	assert.Equal(t, `<p class="a" style="color: red">1</p><p class="a" style="color: red">2</p>`, got)
}

func TestConvert_InlineStyleMerge(t *testing.T) {
	cssText := `.w-1\/2 { width: 50%; } .w-64 { width: 16rem; } .text-red { color: red; } .text-blue { color: blue; }`

	got, err := inliner.Convert(`<td class="w-1/2 text-red text-blue" style="width: 200px; color: green">x</td>`, cssText, true)
	require.NoError(t, err)
	assert.Equal(t, `<td class="w-1/2 text-red text-blue" style="width: 50%; color: blue">x</td>`, got)

	got, err = inliner.Convert(`<td class="w-64" style="width: 50%">x</td>`, cssText, true)
	require.NoError(t, err)
	assert.Equal(t, `<td class="w-64" style="width: 50%">x</td>`, got)
}

func TestConvert_NothingToDo(t *testing.T) {
	got, err := inliner.Convert("", "", true)
	require.NoError(t, err)
	assert.Empty(t, got)

	doc := `<p class="unknown">x</p><img src="a.png">`
	got, err = inliner.Convert(doc, catalog.CSS(), true)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestConvert_FlexRowInOutlookBlock(t *testing.T) {
	doc := `<!--[if mso]><div class="flex"><div class="w-1/2 p-4">A</div><div class="w-1/2">B</div></div><![endif]-->`

	got, err := inliner.Convert(doc, catalog.CSS(), true)
	require.NoError(t, err)

	assert.Equal(t, `<!--[if mso]><table role="presentation" width="100%" border="0" cellspacing="0" cellpadding="0"><tr>`+
		`<td width="300" valign="top" style="width: 300px; padding: 1rem">A</td>`+
		`<td width="300" valign="top" style="width: 300px">B</td>`+
		`</tr></table><![endif]-->`, got)
}

func TestConvert_QuotedValues(t *testing.T) {
	cssText := catalog.CSS() + "\n" + `.font-brand { font-family: "Segoe UI", Arial; } .a { margin: 0; }`

	doc := `<!--[if mso]><div class="flex"><div class="w-1/2 font-brand">A</div><div class="w-1/2">B</div></div><![endif]-->`
	got, err := inliner.Convert(doc, cssText, true)
	require.NoError(t, err)
	assert.Contains(t, got, `<td width="300" valign="top" style="width: 300px; font-family: &quot;Segoe UI&quot;, Arial">A</td>`)

	doc = `<div class="a" style="font-family: &quot;Segoe UI&quot;; color: red">x</div>`
	want := `<div class="a" style="font-family: &quot;Segoe UI&quot;; color: red; margin: 0">x</div>`
	got, err = inliner.Convert(doc, cssText, true)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// converting the output again changes nothing
	got, err = inliner.Convert(got, cssText, true)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestConvert_FlexRowNeedsTwoColumns(t *testing.T) {
	doc := `<!--[if mso]><div class="flex"><div class="w-1/2">A</div><p>B</p></div><![endif]-->`

	got, err := inliner.Convert(doc, catalog.CSS(), true)
	require.NoError(t, err)
	assert.NotContains(t, got, "<table")
	assert.Contains(t, got, `<div class="flex" style="display: flex">`)
}

func TestInline_Stats(t *testing.T) {
	in := inliner.New(config.DefaultInliner(), zaptest.NewLogger(t))

	result, err := in.Inline(`<p class="text-white unknown">x</p><span>y</span><b class="nothing">z</b>` +
		`<!--[if mso]><div class="flex"><div class="w-1/3">A</div><div class="w-2/3">B</div></div><![endif]-->`)
	require.NoError(t, err)

	assert.Equal(t, 5, result.ElementsScanned)
	assert.Equal(t, 4, result.ProcessingStats.HTMLElementsProcessed)
	assert.Equal(t, 4, result.ProcessingStats.SelectorsMatched)
	assert.Equal(t, 4, result.InlinedStyles)
	assert.Equal(t, 1, result.ProcessingStats.FlexRowsConverted)
	assert.Greater(t, result.ProcessingStats.CSSRulesParsed, 100)
	assert.Contains(t, result.HTML, `<td width="200" valign="top" style="width: 200px">A</td>`)
}

func TestInline_Warnings(t *testing.T) {
	in := inliner.New(config.DefaultInliner(), nil)

	result, err := in.Inline(`<div class="flex">x</div>`)
	require.NoError(t, err)

	var found bool
	for _, w := range result.Warnings {
		if w.Property == "display" && w.Severity == "warning" {
			found = true
		}
	}
	assert.True(t, found, "expected a flexbox warning, got %v", result.Warnings)

	cfg := config.DefaultInliner()
	cfg.TargetClient = "gmail"
	result, err = inliner.New(cfg, nil).Inline(`<div class="flex">x</div>`)
	require.NoError(t, err)
	for _, w := range result.Warnings {
		assert.NotEqual(t, "warning", w.Severity)
	}
}

func TestInline_StylesheetSources(t *testing.T) {
	extra := filepath.Join(t.TempDir(), "brand.css")
	require.NoError(t, os.WriteFile(extra, []byte(".brand { color: #ff6600; }"), 0644))

	doc := `<style>.p-8 { padding: 30px; }</style><div class="brand p-8">x</div>`

	cfg := config.DefaultInliner()
	cfg.StylesheetPath = extra
	got, err := inliner.InlineCSSWithConfig(doc, cfg)
	require.NoError(t, err)
	assert.Equal(t, `<div class="brand p-8" style="color: #ff6600; padding: 30px">x</div>`, got)

	cfg.UseDocumentStyles = false
	cfg.RemoveStyleTags = false
	got, err = inliner.InlineCSSWithConfig(doc, cfg)
	require.NoError(t, err)
	assert.Equal(t, `<style>.p-8 { padding: 30px; }</style><div class="brand p-8" style="color: #ff6600; padding: 2rem">x</div>`, got)

	cfg.StylesheetPath = filepath.Join(t.TempDir(), "absent.css")
	_, err = inliner.InlineCSSWithConfig(doc, cfg)
	assert.Error(t, err)
}

func TestInlineCSS_Defaults(t *testing.T) {
	got, err := inliner.InlineCSS(`<style>.x{}</style><a class="underline" href="#">x</a>`)
	require.NoError(t, err)
	assert.Equal(t, `<a class="underline" href="#" style="text-decoration-line: underline">x</a>`, got)
	assert.False(t, strings.Contains(got, "<style"))
}
