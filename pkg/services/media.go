package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

// UniqueAssetName appends a millisecond timestamp to the base of name so
// every upload lands on a fresh path.
func UniqueAssetName(name string, at time.Time) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		name = ""
	}
	ext := path.Ext(name)
	base := strings.Join(strings.Fields(strings.TrimSuffix(name, ext)), "-")
	if base == "" {
		base = "upload"
	}
	return fmt.Sprintf("%s-%d%s", base, at.UnixMilli(), ext)
}

// UploadAsset stores data under the uploads directory and returns the site
// relative path to reference it, e.g. as a cover image.
func (s *Store) UploadAsset(ctx context.Context, data []byte, suggestedName string) (string, error) {
	filename := UniqueAssetName(suggestedName, s.now())
	if len(data) == 0 {
		return "", &UploadError{Name: filename, Err: errors.New("empty file")}
	}

	p := path.Join(s.uploadsDir, filename)
	encoded := base64.StdEncoding.EncodeToString(data)
	if _, err := s.api.PutFile(ctx, p, encoded, "Upload image: "+filename, ""); err != nil {
		return "", &UploadError{Name: filename, Err: err}
	}

	s.logger.Info("uploaded asset", "path", p, "size", len(data))
	return path.Join(s.uploadsURL, filename), nil
}
