package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGitHub serves the contents API for owner/repo from a MemoryContentAPI.
type fakeGitHub struct {
	mem *MemoryContentAPI

	// inlineLimit, when set, leaves larger files out of contents responses
	// the way GitHub does above 1 MB.
	inlineLimit int

	mu   sync.Mutex
	auth []string
	puts []putFileRequest
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	w.Header().Set("Content-Type", "application/json")

	const blobPrefix = "/repos/owner/repo/git/blobs/"
	if sha, ok := strings.CutPrefix(r.URL.Path, blobPrefix); ok && r.Method == http.MethodGet {
		f.serveBlob(w, sha)
		return
	}

	const prefix = "/repos/owner/repo/contents/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	p := strings.TrimPrefix(r.URL.Path, prefix)
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		if file, err := f.mem.GetFile(ctx, p); err == nil {
			if raw, _ := decodeTransport(file); f.inlineLimit > 0 && len(raw) > f.inlineLimit {
				file.Content, file.Encoding = "", "none"
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"type": "file", "name": p[strings.LastIndex(p, "/")+1:], "path": file.Path,
				"sha": file.SHA, "content": file.Content, "encoding": file.Encoding,
			})
			return
		}
		entries, err := f.mem.ListDirectory(ctx, p)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}
		writeJSON(w, http.StatusOK, entries)

	case http.MethodPut:
		var req putFileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Problems parsing JSON"})
			return
		}
		f.puts = append(f.puts, req)

		sha, err := f.mem.PutFile(ctx, p, req.Content, req.Message, req.SHA)
		switch {
		case errors.Is(err, ErrRevisionMismatch) && req.SHA == "":
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Invalid request.\n\n\"sha\" wasn't supplied."})
		case errors.Is(err, ErrRevisionMismatch):
			writeJSON(w, http.StatusConflict, map[string]string{"message": p + " does not match " + req.SHA})
		case err != nil:
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Invalid request."})
		default:
			writeJSON(w, http.StatusCreated, map[string]any{"content": map[string]string{"sha": sha}})
		}

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeGitHub) serveBlob(w http.ResponseWriter, sha string) {
	f.mem.mu.RLock()
	defer f.mem.mu.RUnlock()
	for _, data := range f.mem.files {
		if blobSHA(data) == sha {
			writeJSON(w, http.StatusOK, map[string]any{
				"sha": sha, "size": len(data), "encoding": "base64",
				"content": wrapBase64(base64.StdEncoding.EncodeToString(data)),
			})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
}

func (f *fakeGitHub) requests() ([]string, []putFileRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.auth...), append([]putFileRequest(nil), f.puts...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func newFakeGitHub(t *testing.T) (*GitHubClient, *fakeGitHub) {
	fake := &fakeGitHub{mem: NewMemoryContentAPI()}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewGitHubClient(context.Background(), "secret-token", "owner", "repo", WithBaseURL(srv.URL)), fake
}

func TestGitHubClientFiles(t *testing.T) {
	ctx := context.Background()
	client, fake := newFakeGitHub(t)
	sha := fake.mem.Seed("src/content/posts/hello.md", []byte("---\ntitle: Hello\n---\n\nhi"))

	entries, err := client.ListDirectory(ctx, "src/content/posts")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, DirEntry{Name: "hello.md", Path: "src/content/posts/hello.md", SHA: sha, Type: "file"}, entries[0])

	file, err := client.GetFile(ctx, "src/content/posts/hello.md")
	require.NoError(t, err)
	assert.Equal(t, sha, file.SHA)
	assert.Equal(t, "base64", file.Encoding)

	_, err = client.GetFile(ctx, "src/content/posts/missing.md")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.ListDirectory(ctx, "nowhere")
	assert.ErrorIs(t, err, ErrNotFound)

	auth, _ := fake.requests()
	require.NotEmpty(t, auth)
	for _, header := range auth {
		assert.Equal(t, "Bearer secret-token", header)
	}
}

func TestGitHubClientPutFile(t *testing.T) {
	ctx := context.Background()
	client, fake := newFakeGitHub(t)

	sha, err := client.PutFile(ctx, "notes/a.md", "aGk=", "create", "")
	require.NoError(t, err)
	assert.NotEmpty(t, sha)
	_, puts := fake.requests()
	require.Len(t, puts, 1)
	assert.Equal(t, putFileRequest{Message: "create", Content: "aGk="}, puts[0])

	_, err = client.PutFile(ctx, "notes/a.md", "aG8=", "blind overwrite", "")
	assert.ErrorIs(t, err, ErrRevisionMismatch)

	_, err = client.PutFile(ctx, "notes/a.md", "aG8=", "stale", "0000000000000000000000000000000000000000")
	assert.ErrorIs(t, err, ErrRevisionMismatch)

	next, err := client.PutFile(ctx, "notes/a.md", "aG8=", "update", sha)
	require.NoError(t, err)
	assert.NotEqual(t, sha, next)

	_, err = client.PutFile(ctx, "notes/b.md", "%%%", "bad content", "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
}

func TestGitHubClientLargeFile(t *testing.T) {
	ctx := context.Background()
	client, fake := newFakeGitHub(t)
	fake.inlineLimit = 64

	large := "---\ntitle: Long read\ndate: \"2024-05-01\"\ndescription: d\n---\n\n" + strings.Repeat("words ", 100)
	sha := fake.mem.Seed("src/content/posts/long-read.md", []byte(large))

	file, err := client.GetFile(ctx, "src/content/posts/long-read.md")
	require.NoError(t, err)
	assert.Equal(t, sha, file.SHA)
	raw, err := decodeTransport(file)
	require.NoError(t, err)
	assert.Equal(t, large, raw)

	store := NewStore(client, WithLogger(discardLogger()))
	items := store.ListItems(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, "Long read", items[0].Title)
}

func TestGitHubClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "API rate limit exceeded"})
	}))
	defer srv.Close()
	client := NewGitHubClient(context.Background(), "t", "owner", "repo", WithBaseURL(srv.URL))

	_, err := client.ListDirectory(context.Background(), "src")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "rate limit")
}

func TestGitHubClientURLs(t *testing.T) {
	client := NewGitHubClient(context.Background(), "t", "owner", "my repo", WithBaseURL("https://ghe.example.com/api/v3/"), WithBranch("content"))
	assert.Equal(t, "https://ghe.example.com/api/v3/repos/owner/my%20repo/contents/src/my%20post.md?ref=content",
		client.contentsURL("/src/my post.md"))
}

// The store over the real HTTP client keeps the same conflict guarantees.
func TestStoreOverGitHubClient(t *testing.T) {
	ctx := context.Background()
	client, _ := newFakeGitHub(t)
	store := NewStore(client, WithLogger(discardLogger()))

	created, err := store.SaveItem(ctx, helloWorld())
	require.NoError(t, err)
	assert.Equal(t, "hello-world", created.Slug)

	items := store.ListItems(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, created.SHA, items[0].SHA)
	assert.Equal(t, "Body text", items[0].Content)

	first := items[0]
	first.Content = "edited"
	_, err = store.SaveItem(ctx, first)
	require.NoError(t, err)

	stale := items[0]
	stale.Content = "lost update"
	_, err = store.SaveItem(ctx, stale)
	var conflict *WriteConflictError
	require.True(t, errors.As(err, &conflict), "got %v", err)

	ref, err := store.UploadAsset(ctx, []byte{0x89, 'P', 'N', 'G'}, "cover.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/images/uploads/cover-"), ref)
}
