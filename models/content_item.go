package models

import (
	"sort"
	"time"
)

// ContentType identifies one of the content databases served by the site.
type ContentType string

const (
	ContentTypePosts   ContentType = "posts"
	ContentTypeRecipes ContentType = "recipes"
)

// ContentTypes lists every supported content type in display order.
var ContentTypes = []ContentType{ContentTypePosts, ContentTypeRecipes}

// ParseContentType validates s against the closed set of content types.
func ParseContentType(s string) (ContentType, bool) {
	for _, ct := range ContentTypes {
		if string(ct) == s {
			return ct, true
		}
	}
	return "", false
}

// ContentItem is a normalized post or recipe.
//
// The remote source owns its lifecycle; this service only reads and caches copies.
type ContentItem struct {
	ID              string      `json:"id" bson:"id"`
	Type            ContentType `json:"type" bson:"type"`
	Slug            string      `json:"slug" bson:"slug"`
	Title           string      `json:"title" bson:"title"`
	Category        string      `json:"category,omitempty" bson:"category,omitempty"`
	Date            time.Time   `json:"date" bson:"date"`
	MetaDescription string      `json:"metaDescription" bson:"meta_description"`
	FeaturedImage   string      `json:"featuredImage,omitempty" bson:"featured_image,omitempty"`
	Tags            []string    `json:"tags" bson:"tags"`
	Published       bool        `json:"published" bson:"published"`
	Body            string      `json:"body,omitempty" bson:"body,omitempty"`

	// recipe only
	Difficulty  string `json:"difficulty,omitempty" bson:"difficulty,omitempty"`
	CookingTime string `json:"cookingTime,omitempty" bson:"cooking_time,omitempty"`
}

// SortByDateDesc orders items newest first with a stable id tie-break.
func SortByDateDesc(items []ContentItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.After(items[j].Date)
		}
		return items[i].ID < items[j].ID
	})
}

// OnlyPublished drops unpublished items in place and returns the shortened slice.
func OnlyPublished(items []ContentItem) []ContentItem {
	out := items[:0]
	for _, it := range items {
		if it.Published {
			out = append(out, it)
		}
	}
	return out
}
