package services

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

// MemoryContentAPI is an in-process repository with the same
// compare-and-swap rules as the GitHub contents API. Revisions are git blob
// shas of the stored bytes.
type MemoryContentAPI struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemoryContentAPI() *MemoryContentAPI {
	return &MemoryContentAPI{files: make(map[string][]byte)}
}

func blobSHA(data []byte) string {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00", len(data))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func cleanRepoPath(p string) string {
	p = path.Clean("/" + p)
	return strings.TrimPrefix(p, "/")
}

func (m *MemoryContentAPI) ListDirectory(ctx context.Context, dir string) ([]DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir = cleanRepoPath(dir)

	m.mu.RLock()
	defer m.mu.RUnlock()

	seenDirs := make(map[string]bool)
	var entries []DirEntry
	for p, data := range m.files {
		rel := p
		if dir != "" {
			if !strings.HasPrefix(p, dir+"/") {
				continue
			}
			rel = strings.TrimPrefix(p, dir+"/")
		}
		name, _, nested := strings.Cut(rel, "/")
		if nested {
			if !seenDirs[name] {
				seenDirs[name] = true
				entries = append(entries, DirEntry{Name: name, Path: path.Join(dir, name), Type: "dir"})
			}
			continue
		}
		entries = append(entries, DirEntry{Name: name, Path: p, SHA: blobSHA(data), Type: "file"})
	}
	if len(entries) == 0 && dir != "" {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotFound)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (m *MemoryContentAPI) GetFile(ctx context.Context, p string) (*RemoteFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p = cleanRepoPath(p)

	m.mu.RLock()
	data, ok := m.files[p]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	return &RemoteFile{
		Path:     p,
		Content:  wrapBase64(base64.StdEncoding.EncodeToString(data)),
		Encoding: "base64",
		SHA:      blobSHA(data),
	}, nil
}

func (m *MemoryContentAPI) PutFile(ctx context.Context, p, contentBase64, message, sha string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := base64.StdEncoding.DecodeString(contentBase64)
	if err != nil {
		return "", fmt.Errorf("decode content: %w", err)
	}
	p = cleanRepoPath(p)

	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.files[p]
	switch {
	case exists && sha != blobSHA(current):
		return "", fmt.Errorf("%s: %w", p, ErrRevisionMismatch)
	case !exists && sha != "":
		return "", fmt.Errorf("%s: %w", p, ErrRevisionMismatch)
	}
	m.files[p] = data
	return blobSHA(data), nil
}

// Seed stores a file without any revision check.
func (m *MemoryContentAPI) Seed(p string, data []byte) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[cleanRepoPath(p)] = append([]byte(nil), data...)
	return blobSHA(data)
}

// wrapBase64 breaks encoded content into 60 character lines like GitHub does.
func wrapBase64(s string) string {
	var b strings.Builder
	for len(s) > 60 {
		b.WriteString(s[:60])
		b.WriteByte('\n')
		s = s[60:]
	}
	b.WriteString(s)
	return b.String()
}
