package main

import (
	"context"
	"log/slog"
	"os"

	"garden-cms/content"
	"garden-cms/pkg/config"
	"garden-cms/pkg/handlers"
	"garden-cms/pkg/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	// Bundled catalog: loaded once, read-only afterwards.
	catalog := services.NewCatalog(content.Posts, content.PostsDir)
	articles, err := catalog.LoadAll()
	if err != nil {
		logger.Error("load bundled posts", "error", err)
		os.Exit(1)
	}
	index, err := services.NewSearchIndex(articles)
	if err != nil {
		logger.Error("build search index", "error", err)
		os.Exit(1)
	}
	defer index.Close()

	storeOpts := []services.StoreOption{
		services.WithPostsDir(cfg.PostsDir),
		services.WithUploads(cfg.UploadsDir, cfg.UploadsURL),
		services.WithLogger(logger),
	}

	h := &handlers.Handler{
		Catalog: catalog,
		Search:  index,
		OAuth:   cfg.OAuth(),
		Owner:   cfg.RepoOwner,
		Repo:    cfg.RepoName,
	}

	switch cfg.ContentBackend {
	case "memory":
		api := services.NewMemoryContentAPI()
		h.NewStore = func(context.Context, handlers.Credentials) *services.Store {
			return services.NewStore(api, storeOpts...)
		}
		h.Anonymous = &handlers.Credentials{Token: "dev", Owner: "local", Repo: "garden"}
		logger.Warn("using in-memory content backend, edits are lost on restart")
	default:
		h.NewStore = func(_ context.Context, creds handlers.Credentials) *services.Store {
			client := services.NewGitHubClient(context.Background(), creds.Token, creds.Owner, creds.Repo,
				services.WithBaseURL(cfg.GitHubAPIURL),
				services.WithBranch(cfg.Branch),
			)
			return services.NewStore(client, storeOpts...)
		}
	}

	r := handlers.NewRouter(h, cfg.SessionSecret)
	logger.Info("listening", "port", cfg.Port, "posts", len(articles), "backend", cfg.ContentBackend)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
