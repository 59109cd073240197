package handlers

import (
	"context"
	"time"

	"garden-cms/pkg/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

// Credentials identify the user and the repository the editor writes to.
type Credentials struct {
	Token string
	Owner string
	Repo  string
}

// StoreFactory opens a content store for one authenticated user.
type StoreFactory func(ctx context.Context, creds Credentials) *services.Store

// Handler serves the public catalog and the authenticated editor API.
type Handler struct {
	Catalog  *services.Catalog
	Search   *services.SearchIndex
	NewStore StoreFactory
	OAuth    *oauth2.Config

	// Owner and Repo are stored in the session on login.
	Owner string
	Repo  string

	// Anonymous, when set, is used for editor requests without a session.
	// Only meant for the in-memory development backend.
	Anonymous *Credentials

	Now func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// NewRouter wires sessions and every route of h.
func NewRouter(h *Handler, sessionSecret string) *gin.Engine {
	r := gin.Default()

	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, MaxAge: 7 * 24 * 3600})
	r.Use(sessions.Sessions("gardensession", store))

	// --- Auth Routes ---
	r.GET("/login/github", h.GithubLogin)
	r.GET("/auth/callback", h.AuthCallback)
	r.GET("/logout", h.Logout)

	api := r.Group("/api")
	{
		api.GET("/posts", h.ListPosts)
		api.GET("/posts/:slug", h.GetPost)
		api.GET("/tags", h.ListTags)
		api.GET("/search", h.SearchPosts)
	}

	// --- Editor (Authorized) ---
	admin := api.Group("/admin")
	admin.Use(h.AuthRequired)
	{
		admin.GET("/posts", h.ListRemotePosts)
		admin.GET("/posts/:slug", h.GetRemotePost)
		admin.POST("/posts", h.SaveRemotePost)
		admin.POST("/uploads", h.UploadAsset)
	}

	return r
}
