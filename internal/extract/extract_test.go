package extract_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsclip/newsclip/internal/extract"
)

const listingHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Portal de Noticias</title>
  <meta property="og:title" content="Portal OG">
</head>
<body>
  <div class="river">
    <h2><a href="/noticia/primeira">Primeira noticia</a></h2>
    <h2><a href="/noticia/segunda">Segunda noticia</a></h2>
    <h2><a href="https://other.example/externa">Externa</a></h2>
  </div>
  <article>
    <h1 class="headline">Manchete do dia</h1>
    <p>Primeiro paragrafo.</p>
    <p>Segundo paragrafo.</p>
  </article>
</body>
</html>`

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParseRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		expr     string
		selector string
		attr     string
	}{
		{"h1.headline", "h1.headline", ""},
		{"a@href", "a", "href"},
		{"meta[property='og:title']@content", "meta[property='og:title']", "content"},
		{"a[data-x='@user']@href", "a[data-x='@user']", "href"},
		{"@content", "@content", ""},
		{"a@", "a@", ""},
	}

	for _, tt := range tests {
		rule := extract.ParseRule(tt.expr)
		assert.Equal(t, tt.selector, rule.Selector, "expr %q", tt.expr)
		assert.Equal(t, tt.attr, rule.Attr, "expr %q", tt.expr)
	}
}

func TestText_ElementMode(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, listingHTML)

	value, err := extract.Text(doc, "h1.headline")
	require.NoError(t, err)
	assert.Equal(t, "Manchete do dia", value)
}

func TestText_AttributeMode(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, listingHTML)

	value, err := extract.Text(doc, "meta[property='og:title']@content")
	require.NoError(t, err)
	assert.Equal(t, "Portal OG", value)
}

func TestText_MultipleMatchesJoined(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, listingHTML)

	value, err := extract.Text(doc, "article p")
	require.NoError(t, err)
	assert.Equal(t, "Primeiro paragrafo. Segundo paragrafo.", value)
}

func TestText_NoMatch(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, listingHTML)

	value, err := extract.Text(doc, "h5.missing")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestText_InvalidSelector(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, listingHTML)

	_, err := extract.Text(doc, "div[unclosed")
	require.Error(t, err)

	var ruleErr *extract.RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "div[unclosed", ruleErr.Rule)
}

func TestLinks_ResolvesRelative(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, listingHTML)
	base, _ := url.Parse("https://portal.example/home")

	links, err := extract.Links(doc, base, "div.river h2 a@href")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://portal.example/noticia/primeira",
		"https://portal.example/noticia/segunda",
		"https://other.example/externa",
	}, links)
}

func TestLinks_ElementWithoutAttrUsesHref(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, listingHTML)
	base, _ := url.Parse("https://portal.example/")

	// h2 has no href of its own; the descendant anchor's href is used.
	links, err := extract.Links(doc, base, "div.river h2")
	require.NoError(t, err)
	require.Len(t, links, 3)
	assert.Equal(t, "https://portal.example/noticia/primeira", links[0])
}

func TestFirstText_FallbackChain(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, listingHTML)

	value, rule := extract.FirstText(doc, []string{
		"h9[broken",        // evaluation error: skipped
		"span.nonexistent", // no match: skipped
		"h1.headline",
	})
	assert.Equal(t, "Manchete do dia", value)
	assert.Equal(t, "h1.headline", rule)
}

func TestFirstText_AllDry(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, listingHTML)

	value, rule := extract.FirstText(doc, []string{"span.a", "span.b"})
	assert.Empty(t, value)
	assert.Empty(t, rule)
}

func TestGenericTitleRules_OGFirst(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, listingHTML)

	value, rule := extract.FirstText(doc, extract.GenericTitleRules)
	assert.Equal(t, "Portal OG", value)
	assert.Equal(t, "meta[property='og:title']@content", rule)
}
