package extract

// Generic fallback chains, tried in order when a configured rule yields
// nothing. Each family mirrors a field of the article pipeline.

// GenericListingRules discover article links on a section page.
var GenericListingRules = []string{
	"article a@href",
	"h2 a@href",
	"h3 a@href",
	"a[href*='/noticia']@href, a[href*='/news']@href, a[href*='/materia']@href",
}

// GenericTitleRules recover a title when the configured rule is dry.
var GenericTitleRules = []string{
	"meta[property='og:title']@content",
	"title",
	"h1",
	"h2",
}

// GenericBodyRules recover article body text.
var GenericBodyRules = []string{
	"article p",
	"main p",
	"[class*='content'] p, [class*='article'] p",
}

// MetaDateRules locate a publication date in page metadata.
var MetaDateRules = []string{
	"meta[property='article:published_time']@content",
	"meta[itemprop='datePublished']@content",
	"meta[name='pubdate']@content",
	"time@datetime",
	"[class*='date']",
}
