package services

import (
	"sort"
	"strings"
	"time"

	"garden-cms/pkg/models"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	models.DateLayout,
}

// ParseDate parses the date formats found in front matter.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortByDateDesc returns a copy of items with the newest first. Equal dates
// keep their catalog order; unparsable dates sort last.
func SortByDateDesc(items []models.Article) []models.Article {
	type dated struct {
		at  time.Time
		art models.Article
	}
	rows := make([]dated, len(items))
	for i, item := range items {
		rows[i].at, _ = ParseDate(item.Date)
		rows[i].art = item
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].at.After(rows[b].at)
	})
	out := make([]models.Article, len(rows))
	for i := range rows {
		out[i] = rows[i].art
	}
	return out
}

// Predicate selects articles.
type Predicate func(models.Article) bool

// Filter returns the items matching pred, in order.
func Filter(items []models.Article, pred Predicate) []models.Article {
	out := make([]models.Article, 0, len(items))
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// MatchText matches a case-insensitive substring of the title or of any tag.
func MatchText(q string) Predicate {
	q = strings.ToLower(strings.TrimSpace(q))
	return func(a models.Article) bool {
		if q == "" {
			return true
		}
		if strings.Contains(strings.ToLower(a.Title), q) {
			return true
		}
		for _, tag := range a.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				return true
			}
		}
		return false
	}
}

// HasTag matches articles carrying tag, ignoring case.
func HasTag(tag string) Predicate {
	return func(a models.Article) bool {
		for _, t := range a.Tags {
			if strings.EqualFold(t, tag) {
				return true
			}
		}
		return false
	}
}

// InStage matches articles classified into stage at now.
func InStage(stage models.GrowthStage, now time.Time) Predicate {
	return func(a models.Article) bool {
		return Classify(a, now) == stage
	}
}

// Query holds the catalog filters exposed to readers. Zero fields match everything.
type Query struct {
	Text  string
	Tag   string
	Stage models.GrowthStage
}

// ApplyQuery sorts items newest first and applies every set filter of q.
func ApplyQuery(items []models.Article, q Query, now time.Time) []models.Article {
	out := SortByDateDesc(items)
	if q.Text != "" {
		out = Filter(out, MatchText(q.Text))
	}
	if q.Tag != "" {
		out = Filter(out, HasTag(q.Tag))
	}
	if q.Stage != "" {
		out = Filter(out, InStage(q.Stage, now))
	}
	return out
}
