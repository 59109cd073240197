package services

import "context"

// DirEntry is one item of a remote directory listing.
type DirEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	SHA  string `json:"sha"`
	Type string `json:"type"` // "file" or "dir"
}

// RemoteFile is a file as returned by the remote repository, with its body
// still in transport encoding.
type RemoteFile struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	SHA      string `json:"sha"`
}

// ContentAPI is the file-level read/write API of a hosted repository. Paths
// are slash separated and relative to the repository root.
type ContentAPI interface {
	ListDirectory(ctx context.Context, dir string) ([]DirEntry, error)
	// GetFile returns ErrNotFound when path does not exist.
	GetFile(ctx context.Context, path string) (*RemoteFile, error)
	// PutFile creates or updates path with base64 content. A non-empty sha
	// must match the stored revision, and an empty sha requires the file to
	// be absent; otherwise ErrRevisionMismatch is returned.
	PutFile(ctx context.Context, path, contentBase64, message, sha string) (string, error)
}
