package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/example/collex/internal/models"
	"github.com/example/collex/internal/storage"
)

const bytesPerMB = 1024 * 1024

// UploadObserver is told the outcome of each upload attempt.
type UploadObserver interface {
	ObserveUpload(bucket, outcome string)
}

// mediaService implements MediaService over two buckets.
type mediaService struct {
	listingImages storage.Bucket
	avatars       storage.Bucket
	maxBytes      int64
	observer      UploadObserver
	logger        *zap.Logger
	now           func() time.Time
}

// NewMediaService creates a MediaService. observer may be nil.
func NewMediaService(listingImages, avatars storage.Bucket, maxBytes int64, observer UploadObserver, logger *zap.Logger) MediaService {
	return &mediaService{
		listingImages: listingImages,
		avatars:       avatars,
		maxBytes:      maxBytes,
		observer:      observer,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *mediaService) UploadListingImage(ctx context.Context, userID string, file models.FileUpload) (string, error) {
	return s.upload(ctx, s.listingImages, userID, file, "Image upload failed", "Unable to resolve public URL for uploaded image")
}

func (s *mediaService) UploadAvatar(ctx context.Context, userID string, file models.FileUpload) (string, error) {
	return s.upload(ctx, s.avatars, userID, file, "Avatar upload failed", "Unable to resolve public URL for uploaded avatar")
}

// upload checks the file, writes it under a fresh per-user path and resolves
// its public URL. A failure at any step yields a single UploadError or
// ValidationError and no URL.
func (s *mediaService) upload(ctx context.Context, bucket storage.Bucket, userID string, file models.FileUpload, failMsg, urlMsg string) (string, error) {
	if userID == "" {
		return "", invalid("You must be signed in to upload images")
	}
	if int64(len(file.Data)) > s.maxBytes {
		s.observe(bucket, "rejected")
		return "", invalid(fmt.Sprintf("Image size should be less than %dMB", s.maxBytes/bytesPerMB))
	}
	mt := mimetype.Detect(file.Data)
	if len(file.Data) == 0 || !strings.HasPrefix(mt.String(), "image/") {
		s.observe(bucket, "rejected")
		return "", invalid(MsgInvalidImage)
	}

	path := storage.ObjectPath(userID, file.Filename, s.now())
	if err := bucket.Upload(ctx, path, file.Data, mt.String()); err != nil {
		s.observe(bucket, "failed")
		s.logger.Error("Upload failed", zap.String("bucket", bucket.Name()), zap.String("path", path), zap.Error(err))
		return "", &UploadError{Message: fmt.Sprintf("%s: %v", failMsg, err), Err: err}
	}

	url, err := bucket.PublicURL(ctx, path)
	if err != nil || url == "" {
		s.observe(bucket, "failed")
		s.logger.Error("Public URL resolution failed", zap.String("bucket", bucket.Name()), zap.String("path", path), zap.Error(err))
		return "", &UploadError{Message: urlMsg, Err: err}
	}

	s.observe(bucket, "success")
	s.logger.Info("Uploaded image", zap.String("bucket", bucket.Name()), zap.String("path", path), zap.String("userID", userID))
	return url, nil
}

func (s *mediaService) observe(bucket storage.Bucket, outcome string) {
	if s.observer != nil {
		s.observer.ObserveUpload(bucket.Name(), outcome)
	}
}
