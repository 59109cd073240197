package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"garden-cms/pkg/models"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultPostsDir   = "src/content/posts"
	DefaultUploadsDir = "public/images/uploads"
	DefaultUploadsURL = "/images/uploads"
)

// Store reads and writes articles in a remote repository. It keeps no state
// between calls besides its configuration.
type Store struct {
	api        ContentAPI
	postsDir   string
	uploadsDir string
	uploadsURL string
	now        func() time.Time
	logger     *slog.Logger
	validate   *validator.Validate
}

// One validator for all stores; it caches parsed struct tags.
var articleValidator = validator.New()

type StoreOption func(*Store)

func WithPostsDir(dir string) StoreOption {
	return func(s *Store) { s.postsDir = strings.Trim(dir, "/") }
}

// WithUploads sets where assets are stored and the public URL prefix they are served under.
func WithUploads(dir, publicURL string) StoreOption {
	return func(s *Store) {
		s.uploadsDir = strings.Trim(dir, "/")
		s.uploadsURL = "/" + strings.Trim(publicURL, "/")
	}
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

func NewStore(api ContentAPI, opts ...StoreOption) *Store {
	s := &Store{
		api:        api,
		postsDir:   DefaultPostsDir,
		uploadsDir: DefaultUploadsDir,
		uploadsURL: DefaultUploadsURL,
		now:        time.Now,
		logger:     slog.Default(),
		validate:   articleValidator,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) articlePath(slug string) string {
	return path.Join(s.postsDir, slug+markupExt)
}

// ListItems returns every article in the posts directory, newest first.
// Failures are logged and produce an empty list so an unreachable
// repository leaves the editor usable.
func (s *Store) ListItems(ctx context.Context) []models.Article {
	articles, err := s.listItems(ctx)
	if err != nil {
		s.logger.Error("list remote articles", "dir", s.postsDir, "error", err)
		return []models.Article{}
	}
	return articles
}

func (s *Store) listItems(ctx context.Context) ([]models.Article, error) {
	entries, err := s.api.ListDirectory(ctx, s.postsDir)
	if err != nil {
		return nil, &TransportError{Op: "list", Path: s.postsDir, Err: err}
	}

	articles := make([]models.Article, 0, len(entries))
	for _, entry := range entries {
		if entry.Type == "dir" {
			continue
		}
		slug, ok := slugFromName(entry.Name)
		if !ok {
			continue
		}
		if !IsValidSlug(slug) {
			s.logger.Warn("skipping post with non-slug file name", "path", entry.Path)
			continue
		}
		art, err := s.readArticle(ctx, entry.Path, slug)
		if err != nil {
			return nil, err
		}
		art.SHA = entry.SHA
		articles = append(articles, art)
	}
	return SortByDateDesc(articles), nil
}

// GetItem reads one article by slug.
func (s *Store) GetItem(ctx context.Context, slug string) (models.Article, error) {
	if !IsValidSlug(slug) {
		verr := &ValidationError{}
		verr.invalid("slug", invalidSlugReason(slug))
		return models.Article{}, verr
	}
	return s.readArticle(ctx, s.articlePath(slug), slug)
}

func (s *Store) readArticle(ctx context.Context, p, slug string) (models.Article, error) {
	file, err := s.api.GetFile(ctx, p)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Article{}, err
		}
		return models.Article{}, &TransportError{Op: "get", Path: p, Err: err}
	}
	raw, err := decodeTransport(file)
	if err != nil {
		return models.Article{}, &TransportError{Op: "decode", Path: p, Err: err}
	}
	fm, body, err := DecodeFrontMatter(raw)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = p
		}
		return models.Article{}, err
	}
	art := ArticleFromFrontMatter(slug, fm, body, s.now())
	art.SHA = file.SHA
	return art, nil
}

func decodeTransport(file *RemoteFile) (string, error) {
	if file.Encoding == "none" {
		return "", errors.New("content not returned inline (file too large for the contents API)")
	}
	if file.Encoding != "" && file.Encoding != "base64" {
		return "", fmt.Errorf("unsupported encoding %q", file.Encoding)
	}
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, file.Content)
	data, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Validate reports the required fields of art that are empty.
func (s *Store) Validate(art models.Article) error {
	trimmed := art
	trimmed.Title = strings.TrimSpace(art.Title)
	trimmed.Date = strings.TrimSpace(art.Date)
	trimmed.Description = strings.TrimSpace(art.Description)

	verr := &ValidationError{}
	if err := s.validate.Struct(trimmed); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			verr.Fields = append(verr.Fields, strings.ToLower(fe.Field()))
		}
	}
	if art.GrowthStage != "" && !art.GrowthStage.Valid() {
		verr.invalid("growthStage", fmt.Sprintf("unknown growth stage %q", art.GrowthStage))
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func invalidSlugReason(slug string) string {
	return fmt.Sprintf("invalid slug %q, use lowercase letters, digits and single hyphens", slug)
}

// SaveItem creates or updates the file for art. A set SHA must still match
// the stored file; without one the current revision is looked up first, so
// only a file created or changed in between is rejected. Rejections come
// back as *WriteConflictError and are never retried.
func (s *Store) SaveItem(ctx context.Context, art models.Article) (models.Article, error) {
	if err := s.Validate(art); err != nil {
		return models.Article{}, err
	}

	art = art.Clone()
	art.Title = strings.TrimSpace(art.Title)
	art.Date = strings.TrimSpace(art.Date)
	art.Description = strings.TrimSpace(art.Description)
	if art.Slug == "" {
		art.Slug = Slugify(art.Title)
	}
	if !IsValidSlug(art.Slug) {
		verr := &ValidationError{}
		verr.invalid("slug", invalidSlugReason(art.Slug))
		return models.Article{}, verr
	}
	p := s.articlePath(art.Slug)

	content, err := EncodeArticle(art)
	if err != nil {
		return models.Article{}, fmt.Errorf("encode %s: %w", p, err)
	}

	revision := art.SHA
	if revision == "" {
		existing, err := s.api.GetFile(ctx, p)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return models.Article{}, &TransportError{Op: "resolve revision", Path: p, Err: err}
		default:
			revision = existing.SHA
		}
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(content))
	newSHA, err := s.api.PutFile(ctx, p, encoded, "Content Update: "+art.Title, revision)
	if err != nil {
		if errors.Is(err, ErrRevisionMismatch) {
			return models.Article{}, &WriteConflictError{Path: p, Revision: revision, Err: err}
		}
		return models.Article{}, &TransportError{Op: "put", Path: p, Err: err}
	}

	s.logger.Info("saved article", "path", p, "created", revision == "", "sha", newSHA)
	art.SHA = newSHA
	return art, nil
}
