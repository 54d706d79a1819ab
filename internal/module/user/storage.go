package user

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/okwareddevnest/movie-discovery-app/internal/config"
)

// AvatarStore persists avatar images and returns their public URL.
type AvatarStore interface {
	Put(ctx context.Context, userID string, ext, contentType string, body io.Reader, size int64) (string, error)
}

// ObjectPutter is the subset of *minio.Client used for avatars.
type ObjectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
}

// MinioAvatarStore writes avatars to an S3-compatible bucket as
// avatars/<userID>/<uuid><ext>.
type MinioAvatarStore struct {
	client  ObjectPutter
	bucket  string
	baseURL string
}

// NewMinioClient connects to the configured object storage.
func NewMinioClient(cfg *config.StorageConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object storage client: %w", err)
	}
	return client, nil
}

// NewMinioAvatarStore checks that bucket exists and returns a store writing
// into it. Object URLs are built from publicBaseURL.
func NewMinioAvatarStore(ctx context.Context, client ObjectPutter, bucket, publicBaseURL string) (*MinioAvatarStore, error) {
	ok, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", bucket, err)
	}
	if !ok {
		return nil, fmt.Errorf("bucket %q does not exist", bucket)
	}
	return &MinioAvatarStore{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// Put uploads body and returns the object's public URL.
func (s *MinioAvatarStore) Put(ctx context.Context, userID, ext, contentType string, body io.Reader, size int64) (string, error) {
	key := path.Join("avatars", userID, uuid.NewString()+ext)
	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", key, err)
	}
	return s.baseURL + "/" + key, nil
}
