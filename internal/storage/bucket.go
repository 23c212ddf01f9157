// Package storage adapts object stores to the two image buckets.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrObjectExists is returned when an upload would replace an existing object.
	ErrObjectExists = errors.New("object already exists")
	// ErrObjectNotFound is returned when resolving a URL for a missing object.
	ErrObjectNotFound = errors.New("object not found")
)

// Bucket is a named object store supporting upload-without-overwrite and
// public URL resolution by path.
type Bucket interface {
	Name() string
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	PublicURL(ctx context.Context, path string) (string, error)
}

// publicURL builds the download URL of an object. With an explicit base it is
// {base}/{bucket}/{path}; otherwise the Firebase Storage download endpoint.
func publicURL(base, bucket, path string) string {
	if base != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), bucket, path)
	}
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media",
		bucket, url.PathEscape(path))
}
