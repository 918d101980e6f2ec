package ingest

import (
	"context"
	"time"

	"github.com/newsclip/newsclip/internal/dateparse"
	"github.com/newsclip/newsclip/internal/domain"
	"github.com/newsclip/newsclip/internal/extract"
	"github.com/newsclip/newsclip/internal/fetch"
	"github.com/newsclip/newsclip/internal/runlog"
)

// maxSectionNameLen bounds section names persisted from extracted text.
const maxSectionNameLen = 150

// processArticle captures one article page. It returns 1 when a new article
// row was created, 0 otherwise. Only title and body are mandatory; every
// other field degrades to a logged warning.
func (o *Orchestrator) processArticle(ctx context.Context, cfg *domain.SourceConfig, articleURL string, rec *runlog.Recorder) int {
	doc, err := o.fetchPage(ctx, rec, "article", articleURL)
	if err != nil {
		return 0
	}

	title := o.extractWithFallback(doc, cfg.TitleRule, extract.GenericTitleRules, "article-title", rec)
	if title == "" {
		rec.Skip("article-title", "no title extracted, skipping article", runlog.URL(articleURL))
		return 0
	}

	body := o.extractWithFallback(doc, cfg.BodyRule, extract.GenericBodyRules, "article-content", rec)
	if body == "" {
		rec.Skip("article-content", "no content extracted, skipping article", runlog.URL(articleURL))
		return 0
	}

	extracted := domain.Article{
		VehicleID: cfg.VehicleID,
		URL:       articleURL,
		Title:     title,
		Body:      body,
		Subtitle:  o.extractOptional(doc, cfg.SubtitleRule, rec),
		Author:    o.extractOptional(doc, cfg.AuthorRule, rec),
	}

	published := o.extractDate(doc, cfg, articleURL, rec)
	extracted.PublishedAt = &published

	if sectionName := o.extractSectionName(doc, cfg, rec); sectionName != "" {
		section, sectionErr := o.content.GetOrCreateSection(ctx, cfg.VehicleID, sectionName)
		if sectionErr != nil {
			rec.Error("article-section-name", "failed to resolve section", sectionErr, runlog.URL(articleURL))
		} else {
			extracted.SectionID = &section.ID
		}
	}

	stored := extracted
	created, err := o.content.GetOrCreateArticle(ctx, &stored)
	if err != nil {
		rec.Error("article", "failed to store article", err, runlog.URL(articleURL))
		return 0
	}
	if created {
		rec.OK("article", "article captured", runlog.URL(articleURL))
		return 1
	}

	// Known article: only fill fields still missing, never overwrite.
	if stored.Backfill(&extracted) {
		if updateErr := o.content.UpdateArticle(ctx, &stored); updateErr != nil {
			rec.Error("article", "failed to backfill article", updateErr, runlog.URL(articleURL))
			return 0
		}
		rec.Info("article", "existing article backfilled", runlog.URL(articleURL))
	} else {
		rec.Skip("article", "article already captured", runlog.URL(articleURL))
	}
	return 0
}

// extractWithFallback applies the configured rule first, then the generic
// fallback chain, returning the first non-empty value.
func (o *Orchestrator) extractWithFallback(doc *fetch.Document, rule string, fallbacks []string, stage string, rec *runlog.Recorder) string {
	if rule != "" {
		value, err := extract.Text(doc.Document, rule)
		if err != nil {
			rec.Error("extract", "bad rule", err, runlog.Rule(rule))
		} else if value != "" {
			return value
		}
	}

	value, matched := extract.FirstText(doc.Document, fallbacks)
	if value != "" && rule != "" {
		rec.Warn(stage, "configured rule matched nothing, generic fallback used", runlog.Rule(matched))
	}
	return value
}

// extractOptional applies a configured-only rule; absence is not logged.
func (o *Orchestrator) extractOptional(doc *fetch.Document, rule string, rec *runlog.Recorder) string {
	if rule == "" {
		return ""
	}
	value, err := extract.Text(doc.Document, rule)
	if err != nil {
		rec.Error("extract", "bad rule", err, runlog.Rule(rule))
		return ""
	}
	return value
}

// extractDate resolves the publication date: configured rule first, then the
// meta tag fallbacks, then the capture time itself. A missing date is a
// warning, not a skip.
func (o *Orchestrator) extractDate(doc *fetch.Document, cfg *domain.SourceConfig, articleURL string, rec *runlog.Recorder) time.Time {
	if cfg.DateRule != "" {
		raw, err := extract.Text(doc.Document, cfg.DateRule)
		if err != nil {
			rec.Error("extract", "bad date rule", err, runlog.Rule(cfg.DateRule))
		} else if raw != "" {
			if parsed, ok := dateparse.Parse(raw); ok {
				return parsed
			}
			rec.Warn("article-date", "unparseable date text: "+raw, runlog.URL(articleURL))
		}
	}

	raw, matched := extract.FirstText(doc.Document, extract.MetaDateRules)
	if raw != "" {
		if parsed, ok := dateparse.Parse(raw); ok {
			rec.Info("article-date-fallback", "date taken from meta tags", runlog.Rule(matched))
			return parsed
		}
	}

	rec.Warn("article-date-fallback", "no publication date found, capture time substituted", runlog.URL(articleURL))
	return time.Now()
}

// extractSectionName pulls the section label from the article page.
func (o *Orchestrator) extractSectionName(doc *fetch.Document, cfg *domain.SourceConfig, rec *runlog.Recorder) string {
	if cfg.SectionNameRule == "" {
		return ""
	}
	value, err := extract.Text(doc.Document, cfg.SectionNameRule)
	if err != nil {
		rec.Error("extract", "bad section name rule", err, runlog.Rule(cfg.SectionNameRule))
		return ""
	}
	return truncate(value, maxSectionNameLen)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
