// Package search filters content items against a free-text query.
//
// Matching is case-insensitive substring matching with Unicode case folding and NFC
// normalization (Hangul typed on some platforms arrives decomposed). There is no
// relevance ranking: the input order, newest first, is preserved.
package search

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/DavidPARK0417/draiger-sub002/models"
)

// Normalize trims, NFC-normalizes and case-folds s.
func Normalize(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// IsBlank reports whether query has no searchable characters.
func IsBlank(query string) bool {
	return strings.TrimSpace(query) == ""
}

// Terms splits a normalized query into its whitespace-separated words.
func Terms(query string) []string {
	return strings.Fields(Normalize(query))
}

// Match returns the items matching query, in their original order.
//
// An item matches when the whole query or any single term is a substring of its
// title, description, body, category or tags. A blank query matches nothing.
func Match(items []models.ContentItem, query string) []models.ContentItem {
	full := Normalize(query)
	if full == "" {
		return []models.ContentItem{}
	}
	terms := strings.Fields(full)

	out := make([]models.ContentItem, 0)
	for _, it := range items {
		if matches(haystack(it), full, terms) {
			out = append(out, it)
		}
	}
	return out
}

// MatchText applies the same rule to arbitrary text fields.
func MatchText(query string, fields ...string) bool {
	full := Normalize(query)
	if full == "" {
		return false
	}
	return matches(Normalize(strings.Join(fields, "\n")), full, strings.Fields(full))
}

func matches(text, full string, terms []string) bool {
	if strings.Contains(text, full) {
		return true
	}
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func haystack(it models.ContentItem) string {
	parts := []string{it.Title, it.MetaDescription, it.Body, it.Category}
	parts = append(parts, it.Tags...)
	return Normalize(strings.Join(parts, "\n"))
}
