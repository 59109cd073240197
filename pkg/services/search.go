package services

import (
	"fmt"
	"strings"

	"garden-cms/pkg/models"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// SearchIndex is an in-memory full-text index over a fixed set of articles.
type SearchIndex struct {
	index bleve.Index
}

type indexedArticle struct {
	Title       string
	Description string
	Tags        []string
	Content     string
}

// SearchHit is one ranked result.
type SearchHit struct {
	Slug  string  `json:"slug"`
	Score float64 `json:"score"`
}

func buildIndexMapping() mapping.IndexMapping {
	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = "en"

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("Title", titleFieldMapping)
	docMapping.AddFieldMappingsAt("Description", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("Tags", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("Content", bleve.NewTextFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}

// NewSearchIndex indexes articles by slug.
func NewSearchIndex(articles []models.Article) (*SearchIndex, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	batch := idx.NewBatch()
	for _, a := range articles {
		doc := indexedArticle{
			Title:       a.Title,
			Description: a.Description,
			Tags:        a.Tags,
			Content:     a.Content,
		}
		if err := batch.Index(a.Slug, doc); err != nil {
			idx.Close()
			return nil, fmt.Errorf("index %s: %w", a.Slug, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return nil, fmt.Errorf("index batch: %w", err)
	}
	return &SearchIndex{index: idx}, nil
}

// Search returns up to limit slugs ranked by relevance.
func (s *SearchIndex) Search(q string, limit int) ([]SearchHit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []SearchHit{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(q), limit, 0, false)
	res, err := s.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]SearchHit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, SearchHit{Slug: h.ID, Score: h.Score})
	}
	return hits, nil
}

func (s *SearchIndex) Close() error {
	return s.index.Close()
}
