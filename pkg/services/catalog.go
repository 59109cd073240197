package services

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sync"
	"time"

	"garden-cms/pkg/models"
)

// Catalog is the read-only set of articles bundled into the binary. It is
// loaded once on first use and never changes afterwards.
type Catalog struct {
	fsys fs.FS
	dir  string
	now  func() time.Time

	mu       sync.Mutex
	articles []models.Article
	loaded   bool
}

type CatalogOption func(*Catalog)

// WithCatalogClock sets the clock used for missing dates.
func WithCatalogClock(now func() time.Time) CatalogOption {
	return func(c *Catalog) { c.now = now }
}

// NewCatalog reads markup files directly under dir in fsys.
func NewCatalog(fsys fs.FS, dir string, opts ...CatalogOption) *Catalog {
	c := &Catalog{fsys: fsys, dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadAll returns every bundled article, newest first.
func (c *Catalog) LoadAll() ([]models.Article, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		articles, err := c.load()
		if err != nil {
			return nil, err
		}
		c.articles = articles
		c.loaded = true
	}

	out := make([]models.Article, len(c.articles))
	for i := range c.articles {
		out[i] = c.articles[i].Clone()
	}
	return out, nil
}

func (c *Catalog) load() ([]models.Article, error) {
	entries, err := fs.ReadDir(c.fsys, c.dir)
	if err != nil {
		return nil, fmt.Errorf("read bundled content: %w", err)
	}

	now := c.now()
	var articles []models.Article
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		slug, ok := slugFromName(entry.Name())
		if !ok {
			continue
		}
		filePath := path.Join(c.dir, entry.Name())
		raw, err := fs.ReadFile(c.fsys, filePath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filePath, err)
		}
		fm, body, err := DecodeFrontMatter(string(raw))
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Path = filePath
			}
			return nil, err
		}
		articles = append(articles, ArticleFromFrontMatter(slug, fm, body, now))
	}
	return SortByDateDesc(articles), nil
}

// GetBySlug looks up one bundled article.
func (c *Catalog) GetBySlug(slug string) (models.Article, bool, error) {
	articles, err := c.LoadAll()
	if err != nil {
		return models.Article{}, false, err
	}
	for _, a := range articles {
		if a.Slug == slug {
			return a, true, nil
		}
	}
	return models.Article{}, false, nil
}

// Tags returns the distinct tags of the catalog in first-seen order.
func (c *Catalog) Tags() ([]string, error) {
	articles, err := c.LoadAll()
	if err != nil {
		return nil, err
	}
	var all []string
	for _, a := range articles {
		all = append(all, a.Tags...)
	}
	return models.NormalizeTags(all), nil
}
