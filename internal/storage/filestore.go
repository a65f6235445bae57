// Package storage keeps uploaded files on local disk or in an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Key prefixes partition stored objects by purpose.
const (
	PrefixDocuments = "documents"
	PrefixProfile   = "profile"
)

var (
	// ErrNotFound is returned when a key has no stored object.
	ErrNotFound = errors.New("file not found")
	// ErrInvalidKey is returned for keys that escape the store root.
	ErrInvalidKey = errors.New("invalid file key")
)

// FileStore saves, streams and deletes uploaded files by key.
type FileStore interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// NewKey returns "<prefix>/<uuid><ext>" keeping the lowercased extension of the original name.
func NewKey(prefix, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return path.Join(prefix, uuid.NewString()+ext)
}

func validKey(key string) bool {
	return key != "" && filepath.IsLocal(filepath.FromSlash(key)) && !strings.Contains(key, `\`)
}
