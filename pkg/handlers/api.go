package handlers

import (
	"errors"
	"net/http"

	"garden-cms/pkg/models"
	"garden-cms/pkg/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) store(c *gin.Context) *services.Store {
	creds := c.MustGet(credentialsKey).(Credentials)
	return h.NewStore(c.Request.Context(), creds)
}

// writeStoreError maps store errors to responses that tell the editor what
// to fix.
func writeStoreError(c *gin.Context, err error) {
	var (
		validationErr *services.ValidationError
		conflictErr   *services.WriteConflictError
		parseErr      *services.ParseError
		uploadErr     *services.UploadError
		transportErr  *services.TransportError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": validationErr.Fields, "reasons": validationErr.Reasons})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &parseErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
	case errors.As(err, &uploadErr), errors.As(err, &transportErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// ListRemotePosts never fails: an unreachable repository shows as no posts.
func (h *Handler) ListRemotePosts(c *gin.Context) {
	c.JSON(http.StatusOK, h.store(c).ListItems(c.Request.Context()))
}

func (h *Handler) GetRemotePost(c *gin.Context) {
	article, err := h.store(c).GetItem(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *Handler) SaveRemotePost(c *gin.Context) {
	var art models.Article
	if err := c.ShouldBindJSON(&art); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	art.Tags = models.NormalizeTags(art.Tags)

	saved, err := h.store(c).SaveItem(c.Request.Context(), art)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}
