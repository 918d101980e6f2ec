// Package extract evaluates extraction rules against parsed HTML documents.
//
// A rule is a CSS selector expression, optionally suffixed with "@attr" to
// read an attribute instead of the text content of the matched nodes, e.g.
//
//	h1.headline
//	meta[property='og:title']@content
//	div.river h2 a@href
//
// Rules are configuration data, not code: they are stored per source and
// evaluated at run time, so a site can be re-targeted without a redeploy.
// A malformed rule never panics; it yields a *RuleError so callers can fall
// through to the next rule in a fallback chain.
package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// RuleError reports a rule that could not be compiled or applied.
type RuleError struct {
	Rule string
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %q: %v", e.Rule, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// Rule is a parsed rule expression: a selector plus an optional attribute.
type Rule struct {
	Selector string
	Attr     string
}

// ParseRule splits a rule expression into its selector and attribute parts.
// The attribute suffix is the portion after the last '@' that is not inside
// brackets or quotes; absent that, the whole expression is the selector.
func ParseRule(expr string) Rule {
	expr = strings.TrimSpace(expr)
	at := -1
	depth := 0
	var quote byte
	for i := 0; i < len(expr); i++ {
		ch := expr[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == '[':
			depth++
		case ch == ']':
			if depth > 0 {
				depth--
			}
		case ch == '@' && depth == 0:
			at = i
		}
	}
	if at <= 0 || at == len(expr)-1 {
		return Rule{Selector: expr}
	}
	return Rule{
		Selector: strings.TrimSpace(expr[:at]),
		Attr:     strings.TrimSpace(expr[at+1:]),
	}
}

// eval compiles the rule and returns the matched selection.
func eval(doc *goquery.Document, rule Rule) (*goquery.Selection, error) {
	sel, err := cascadia.Compile(rule.Selector)
	if err != nil {
		return nil, &RuleError{Rule: rule.Selector, Err: err}
	}
	return doc.FindMatcher(sel), nil
}

// Text applies the rule in text mode: the text content (or attribute value)
// of every matched node, trimmed, empty fragments dropped, space-joined.
func Text(doc *goquery.Document, expr string) (string, error) {
	rule := ParseRule(expr)
	matches, err := eval(doc, rule)
	if err != nil {
		return "", err
	}

	var parts []string
	matches.Each(func(_ int, s *goquery.Selection) {
		var raw string
		if rule.Attr != "" {
			raw, _ = s.Attr(rule.Attr)
		} else {
			raw = s.Text()
		}
		if raw = strings.TrimSpace(raw); raw != "" {
			parts = append(parts, raw)
		}
	})

	return strings.Join(parts, " "), nil
}

// Links applies the rule in link mode. With an "@attr" suffix the attribute
// values themselves are the link targets; otherwise each matched element's
// own href is preferred, falling back to the first descendant href. Relative
// targets are resolved against base. Order follows the document; callers
// deduplicate.
func Links(doc *goquery.Document, base *url.URL, expr string) ([]string, error) {
	rule := ParseRule(expr)
	matches, err := eval(doc, rule)
	if err != nil {
		return nil, err
	}

	var out []string
	matches.Each(func(_ int, s *goquery.Selection) {
		var raw string
		switch {
		case rule.Attr != "":
			raw, _ = s.Attr(rule.Attr)
		default:
			if href, ok := s.Attr("href"); ok {
				raw = href
			} else if href, ok := s.Find("[href]").Attr("href"); ok {
				raw = href
			}
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return
		}
		if resolved := resolveURL(base, raw); resolved != "" {
			out = append(out, resolved)
		}
	})

	return out, nil
}

// resolveURL resolves raw against base, returning "" for unparsable targets.
func resolveURL(base *url.URL, raw string) string {
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

// FirstText tries each rule in order and returns the first non-empty text
// value along with the rule that produced it. Rules that fail to evaluate
// count as "no result". Returns ("", "") when the whole chain is dry.
func FirstText(doc *goquery.Document, rules []string) (value, rule string) {
	for _, expr := range rules {
		v, err := Text(doc, expr)
		if err != nil {
			continue
		}
		if v != "" {
			return v, expr
		}
	}
	return "", ""
}
