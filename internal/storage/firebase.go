package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gcs "cloud.google.com/go/storage"
	firebasestorage "firebase.google.com/go/v4/storage"
	"google.golang.org/api/googleapi"
)

// FirebaseBucket stores objects in a Firebase Storage (Cloud Storage) bucket.
type FirebaseBucket struct {
	handle     *gcs.BucketHandle
	name       string
	publicBase string
}

// NewFirebaseBucket opens the named bucket through the Firebase storage client.
func NewFirebaseBucket(client *firebasestorage.Client, name, publicBase string) (*FirebaseBucket, error) {
	if client == nil {
		return nil, errors.New("firebase storage client is not initialized")
	}
	handle, err := client.Bucket(name)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", name, err)
	}
	return &FirebaseBucket{handle: handle, name: name, publicBase: publicBase}, nil
}

func (b *FirebaseBucket) Name() string { return b.name }

// Upload writes data at path. The write is conditioned on the object not
// existing, so a name collision fails with ErrObjectExists.
func (b *FirebaseBucket) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	w := b.handle.Object(path).If(gcs.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=3600"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return b.uploadError(path, err)
	}
	if err := w.Close(); err != nil {
		return b.uploadError(path, err)
	}
	return nil
}

func (b *FirebaseBucket) uploadError(path string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
		return fmt.Errorf("%s/%s: %w", b.name, path, ErrObjectExists)
	}
	return fmt.Errorf("upload %s/%s: %w", b.name, path, err)
}

// PublicURL confirms the object exists and returns its download URL.
func (b *FirebaseBucket) PublicURL(ctx context.Context, path string) (string, error) {
	if _, err := b.handle.Object(path).Attrs(ctx); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return "", fmt.Errorf("%s/%s: %w", b.name, path, ErrObjectNotFound)
		}
		return "", fmt.Errorf("stat %s/%s: %w", b.name, path, err)
	}
	return publicURL(b.publicBase, b.name, path), nil
}
