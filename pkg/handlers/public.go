package handlers

import (
	"net/http"
	"strconv"

	"garden-cms/pkg/models"
	"garden-cms/pkg/services"

	"github.com/gin-gonic/gin"
)

type postView struct {
	models.Article
	Stage       models.GrowthStage `json:"stage"`
	StageLabel  string             `json:"stageLabel"`
	StageBlurb  string             `json:"stageDescription"`
	AgeInDays   int                `json:"ageInDays"`
	IsExternal  bool               `json:"isExternal"`
	ContentHTML string             `json:"contentHtml,omitempty"`
}

func (h *Handler) view(a models.Article) postView {
	now := h.now()
	stage := services.Classify(a, now)
	return postView{
		Article:    a,
		Stage:      stage,
		StageLabel: stage.Label(),
		StageBlurb: stage.Description(),
		AgeInDays:  services.AgeInDays(a, now),
		IsExternal: a.IsExternal(),
	}
}

// ListPosts returns the bundled catalog, newest first, filtered by the
// optional q, tag and stage parameters.
func (h *Handler) ListPosts(c *gin.Context) {
	articles, err := h.Catalog.LoadAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load posts"})
		return
	}

	q := services.Query{Text: c.Query("q"), Tag: c.Query("tag")}
	if s := c.Query("stage"); s != "" {
		stage, ok := models.ParseGrowthStage(s)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown stage: " + s})
			return
		}
		q.Stage = stage
	}

	result := services.ApplyQuery(articles, q, h.now())
	views := make([]postView, 0, len(result))
	for _, a := range result {
		a.Content = ""
		views = append(views, h.view(a))
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) GetPost(c *gin.Context) {
	article, ok, err := h.Catalog.GetBySlug(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load posts"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	html, err := services.RenderMarkdown(article.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render post"})
		return
	}
	v := h.view(article)
	v.ContentHTML = html
	c.JSON(http.StatusOK, v)
}

func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.Catalog.Tags()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load posts"})
		return
	}
	c.JSON(http.StatusOK, tags)
}

type searchResult struct {
	Slug        string  `json:"slug"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

func (h *Handler) SearchPosts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	hits, err := h.Search.Search(c.Query("q"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	articles, err := h.Catalog.LoadAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load posts"})
		return
	}
	bySlug := make(map[string]models.Article, len(articles))
	for _, a := range articles {
		bySlug[a.Slug] = a
	}

	results := make([]searchResult, 0, len(hits))
	for _, hit := range hits {
		a, ok := bySlug[hit.Slug]
		if !ok {
			continue
		}
		results = append(results, searchResult{Slug: a.Slug, Title: a.Title, Description: a.Description, Score: hit.Score})
	}
	c.JSON(http.StatusOK, results)
}
