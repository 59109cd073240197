package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// Config holds the server settings read from the environment.
type Config struct {
	Port          string `env:"PORT" env-default:"8080"`
	AppURL        string `env:"APP_URL" env-default:"http://localhost:8080"`
	SessionSecret string `env:"SESSION_SECRET" env-default:"change-me-in-production"`

	// GitHub OAuth app
	GitHubClientID     string `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	GitHubRedirectURL  string `env:"GITHUB_REDIRECT_URL"`

	// Content repository
	GitHubAPIURL string `env:"GITHUB_API_URL" env-default:"https://api.github.com"`
	RepoOwner    string `env:"GITHUB_OWNER"`
	RepoName     string `env:"GITHUB_REPO"`
	Branch       string `env:"GITHUB_BRANCH"`
	PostsDir     string `env:"POSTS_DIR" env-default:"src/content/posts"`
	UploadsDir   string `env:"UPLOADS_DIR" env-default:"public/images/uploads"`
	UploadsURL   string `env:"UPLOADS_URL" env-default:"/images/uploads"`

	// ContentBackend is "github" or "memory" (local development, no token needed).
	ContentBackend string `env:"CONTENT_BACKEND" env-default:"github"`

	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if cfg.GitHubRedirectURL == "" {
		cfg.GitHubRedirectURL = strings.TrimRight(cfg.AppURL, "/") + "/auth/callback"
	}

	switch cfg.ContentBackend {
	case "github", "memory":
	default:
		return nil, fmt.Errorf("unsupported CONTENT_BACKEND %q (use github or memory)", cfg.ContentBackend)
	}
	return &cfg, nil
}

// OAuth returns the GitHub OAuth2 configuration. The repo scope is needed to
// write content files.
func (c *Config) OAuth() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.GitHubClientID,
		ClientSecret: c.GitHubClientSecret,
		Scopes:       []string{"repo"},
		Endpoint:     github.Endpoint,
		RedirectURL:  c.GitHubRedirectURL,
	}
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
