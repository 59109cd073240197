package models

import (
	"strings"
	"time"
)

// DateLayout is the date format written by the editor for new articles.
const DateLayout = "2006-01-02"

// Article represents a content file in the CMS.
type Article struct {
	Slug        string         `json:"slug"`
	Title       string         `json:"title" validate:"required"`
	Date        string         `json:"date" validate:"required"`
	Description string         `json:"description" validate:"required"`
	Tags        []string       `json:"tags"`
	CoverImage  string         `json:"coverImage,omitempty"`
	ExternalURL string         `json:"externalUrl,omitempty"`
	GrowthStage GrowthStage    `json:"growthStage,omitempty"`
	Content     string         `json:"content"`
	SHA         string         `json:"sha,omitempty"` // Revision token of the stored file
	Extra       map[string]any `json:"extra,omitempty"`
}

// NewArticle returns the empty article the editor starts from.
func NewArticle(now time.Time) Article {
	return Article{
		Date: now.Format(DateLayout),
		Tags: []string{},
	}
}

// IsExternal reports whether the article points at third-party content.
func (a Article) IsExternal() bool {
	return strings.TrimSpace(a.ExternalURL) != ""
}

// Clone returns a copy that shares no slices or maps with a.
func (a Article) Clone() Article {
	out := a
	if a.Tags != nil {
		out.Tags = append([]string(nil), a.Tags...)
	}
	if a.Extra != nil {
		out.Extra = make(map[string]any, len(a.Extra))
		for k, v := range a.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// NormalizeTags trims tags, drops empty ones and removes duplicates while
// keeping the first occurrence.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// SplitTags parses the editor's comma separated tag input.
func SplitTags(input string) []string {
	return NormalizeTags(strings.Split(input, ","))
}
