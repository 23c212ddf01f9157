package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/collex/internal/models"
	"github.com/example/collex/internal/storage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type fakeBucket struct {
	mu        sync.Mutex
	name      string
	objects   map[string][]byte
	uploadErr error
	urlErr    error
}

func newFakeBucket(name string) *fakeBucket {
	return &fakeBucket{name: name, objects: make(map[string][]byte)}
}

func (b *fakeBucket) Name() string { return b.name }

func (b *fakeBucket) Upload(_ context.Context, path string, data []byte, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.uploadErr != nil {
		return b.uploadErr
	}
	if _, ok := b.objects[path]; ok {
		return storage.ErrObjectExists
	}
	b.objects[path] = data
	return nil
}

func (b *fakeBucket) PublicURL(_ context.Context, path string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.urlErr != nil {
		return "", b.urlErr
	}
	if _, ok := b.objects[path]; !ok {
		return "", storage.ErrObjectNotFound
	}
	return fmt.Sprintf("https://cdn/%s/%s", b.name, path), nil
}

type countingObserver struct {
	outcomes []string
}

func (o *countingObserver) ObserveUpload(bucket, outcome string) {
	o.outcomes = append(o.outcomes, bucket+":"+outcome)
}

func newTestMedia(images, avatars *fakeBucket, obs UploadObserver) *mediaService {
	svc := NewMediaService(images, avatars, 5*1024*1024, obs, zap.NewNop()).(*mediaService)
	svc.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return svc
}

func TestUploadListingImage_Success(t *testing.T) {
	images, avatars := newFakeBucket("listing-images"), newFakeBucket("avatars")
	obs := &countingObserver{}
	svc := newTestMedia(images, avatars, obs)

	url, err := svc.UploadListingImage(context.Background(), "uid-1", models.FileUpload{Filename: "Lamp.PNG", Data: pngHeader})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/listing-images/uid-1/uid-1_1700000000123.png", url)
	assert.Contains(t, images.objects, "uid-1/uid-1_1700000000123.png")
	assert.Empty(t, avatars.objects)
	assert.Equal(t, []string{"listing-images:success"}, obs.outcomes)
}

func TestUploadAvatar_UsesAvatarBucket(t *testing.T) {
	images, avatars := newFakeBucket("listing-images"), newFakeBucket("avatars")
	svc := newTestMedia(images, avatars, nil)

	url, err := svc.UploadAvatar(context.Background(), "uid-1", models.FileUpload{Filename: "me", Data: pngHeader})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/avatars/uid-1/uid-1_1700000000123.jpg", url)
	assert.Empty(t, images.objects)
}

func TestUpload_RejectsBeforeUploading(t *testing.T) {
	images := newFakeBucket("listing-images")
	svc := newTestMedia(images, newFakeBucket("avatars"), nil)
	ctx := context.Background()

	_, err := svc.UploadListingImage(ctx, "uid-1", models.FileUpload{Filename: "big.png", Data: bytes.Repeat([]byte{0}, 5*1024*1024+1)})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Image size should be less than 5MB", err.Error())

	_, err = svc.UploadListingImage(ctx, "uid-1", models.FileUpload{Filename: "notes.txt", Data: []byte("plain text")})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, MsgInvalidImage, err.Error())

	_, err = svc.UploadListingImage(ctx, "", models.FileUpload{Filename: "a.png", Data: pngHeader})
	require.ErrorIs(t, err, ErrValidation)

	assert.Empty(t, images.objects)
}

func TestUpload_FailuresYieldNoURL(t *testing.T) {
	ctx := context.Background()
	file := models.FileUpload{Filename: "a.png", Data: pngHeader}

	images := newFakeBucket("listing-images")
	images.uploadErr = errors.New("quota exceeded")
	svc := newTestMedia(images, newFakeBucket("avatars"), nil)
	url, err := svc.UploadListingImage(ctx, "uid-1", file)
	require.ErrorIs(t, err, ErrUpload)
	assert.Empty(t, url)
	assert.Contains(t, err.Error(), "Image upload failed: quota exceeded")

	images = newFakeBucket("listing-images")
	images.urlErr = errors.New("no url")
	svc = newTestMedia(images, newFakeBucket("avatars"), nil)
	url, err = svc.UploadListingImage(ctx, "uid-1", file)
	require.ErrorIs(t, err, ErrUpload)
	assert.Empty(t, url)
	assert.Equal(t, "Unable to resolve public URL for uploaded image", err.Error())
}

func TestUpload_NoOverwrite(t *testing.T) {
	images := newFakeBucket("listing-images")
	svc := newTestMedia(images, newFakeBucket("avatars"), nil)
	file := models.FileUpload{Filename: "a.png", Data: pngHeader}

	_, err := svc.UploadListingImage(context.Background(), "uid-1", file)
	require.NoError(t, err)
	_, err = svc.UploadListingImage(context.Background(), "uid-1", file)
	require.ErrorIs(t, err, ErrUpload)
	assert.ErrorIs(t, err, storage.ErrObjectExists)
}
