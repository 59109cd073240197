package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const defaultGitHubAPI = "https://api.github.com"

// APIError is a non-2xx answer from the GitHub API that has no more
// specific meaning.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github api: %d %s", e.StatusCode, e.Message)
}

// GitHubClient talks to the repository contents API with a user token.
type GitHubClient struct {
	baseURL    string
	owner      string
	repo       string
	branch     string
	httpClient *http.Client
}

type GitHubOption func(*GitHubClient)

// WithBaseURL points the client at another API root, e.g. GitHub Enterprise.
func WithBaseURL(u string) GitHubOption {
	return func(c *GitHubClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithBranch reads and writes a branch other than the default one.
func WithBranch(branch string) GitHubOption {
	return func(c *GitHubClient) { c.branch = branch }
}

// NewGitHubClient creates a client acting as the owner of token.
func NewGitHubClient(ctx context.Context, token, owner, repo string, opts ...GitHubOption) *GitHubClient {
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	httpClient.Timeout = 30 * time.Second

	c := &GitHubClient{
		baseURL:    defaultGitHubAPI,
		owner:      owner,
		repo:       repo,
		httpClient: httpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *GitHubClient) contentsURL(p string) string {
	segments := strings.Split(strings.Trim(p, "/"), "/")
	for i := range segments {
		segments[i] = url.PathEscape(segments[i])
	}
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL,
		url.PathEscape(c.owner), url.PathEscape(c.repo), strings.Join(segments, "/"))
	if c.branch != "" {
		u += "?ref=" + url.QueryEscape(c.branch)
	}
	return u
}

func (c *GitHubClient) do(ctx context.Context, method, u string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

func apiError(status int, body []byte) *APIError {
	var msg struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &msg); err != nil || msg.Message == "" {
		msg.Message = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: msg.Message}
}

func (c *GitHubClient) ListDirectory(ctx context.Context, dir string) ([]DirEntry, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.contentsURL(dir), nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", dir, ErrNotFound)
	case status != http.StatusOK:
		return nil, apiError(status, body)
	}

	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	var entries []DirEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal listing: %w", err)
	}
	return entries, nil
}

func (c *GitHubClient) GetFile(ctx context.Context, p string) (*RemoteFile, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.contentsURL(p), nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
	case status != http.StatusOK:
		return nil, apiError(status, body)
	}

	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		return nil, fmt.Errorf("%s is a directory", p)
	}
	var file RemoteFile
	if err := json.Unmarshal(body, &file); err != nil {
		return nil, fmt.Errorf("unmarshal file: %w", err)
	}
	// Files over 1 MB come back without inline content.
	if file.Encoding == "none" && file.SHA != "" {
		blob, err := c.getBlob(ctx, file.SHA)
		if err != nil {
			return nil, fmt.Errorf("%s: fetch blob: %w", p, err)
		}
		file.Content, file.Encoding = blob.Content, blob.Encoding
	}
	return &file, nil
}

type blobResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

func (c *GitHubClient) getBlob(ctx context.Context, sha string) (*blobResponse, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/git/blobs/%s", c.baseURL,
		url.PathEscape(c.owner), url.PathEscape(c.repo), url.PathEscape(sha))
	status, body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError(status, body)
	}
	var blob blobResponse
	if err := json.Unmarshal(body, &blob); err != nil {
		return nil, fmt.Errorf("unmarshal blob: %w", err)
	}
	return &blob, nil
}

type putFileRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type putFileResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

func (c *GitHubClient) PutFile(ctx context.Context, p, contentBase64, message, sha string) (string, error) {
	u := c.contentsURL(p)
	if i := strings.IndexByte(u, '?'); i >= 0 {
		u = u[:i]
	}
	status, body, err := c.do(ctx, http.MethodPut, u, putFileRequest{
		Message: message,
		Content: contentBase64,
		SHA:     sha,
		Branch:  c.branch,
	})
	if err != nil {
		return "", err
	}

	switch {
	case status == http.StatusConflict:
		return "", fmt.Errorf("%s: %w", p, ErrRevisionMismatch)
	case status == http.StatusUnprocessableEntity:
		// GitHub answers 422 when sha is missing for an existing file.
		apiErr := apiError(status, body)
		if strings.Contains(apiErr.Message, "sha") {
			return "", fmt.Errorf("%s: %s: %w", p, apiErr.Message, ErrRevisionMismatch)
		}
		return "", apiErr
	case status != http.StatusOK && status != http.StatusCreated:
		return "", apiError(status, body)
	}

	var out putFileResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("unmarshal put response: %w", err)
	}
	return out.Content.SHA, nil
}
