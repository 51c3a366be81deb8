// Package filestore persists recipe images behind a common interface.
// The local backend writes to the fileserver volume; the s3 backend
// uploads to an S3-compatible object store.
package filestore

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mkarev/kulinaria/internal/fileserver"
)

const recipesDir = "recipes"

type ImageStore interface {
	WriteRecipeImage(ctx context.Context, name string, data []byte) (urlPath string, err error)
	DeleteRecipeImage(ctx context.Context, name string) error
}

// Local stores images on the fileserver volume and serves them under the
// configured URL prefix.
type Local struct {
	urlPrefix string
	fs        *fileserver.FileServer
}

var _ ImageStore = (*Local)(nil)

func NewLocal(baseDirectory, urlPrefix string) *Local {
	return &Local{
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		fs:        fileserver.New(baseDirectory),
	}
}

func (l *Local) WriteRecipeImage(_ context.Context, name string, data []byte) (string, error) {
	relPath := path.Join(recipesDir, name)
	if _, _, err := l.fs.Write(relPath, data); err != nil {
		return "", fmt.Errorf("writing recipe image: %w", err)
	}
	return l.urlPrefix + "/" + relPath, nil
}

func (l *Local) DeleteRecipeImage(_ context.Context, name string) error {
	return l.fs.Delete(path.Join(recipesDir, name))
}

type S3Params struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	URLPrefix string
}

// S3 stores images in an S3-compatible bucket.
type S3 struct {
	client    *minio.Client
	bucket    string
	urlPrefix string
}

var _ ImageStore = (*S3)(nil)

func NewS3(params S3Params) (*S3, error) {
	client, err := minio.New(params.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(params.AccessKey, params.SecretKey, ""),
		Secure: params.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating s3 client: %w", err)
	}

	urlPrefix := params.URLPrefix
	if urlPrefix == "" {
		scheme := "http"
		if params.UseSSL {
			scheme = "https"
		}
		urlPrefix = fmt.Sprintf("%s://%s/%s", scheme, params.Endpoint, params.Bucket)
	}

	return &S3{
		client:    client,
		bucket:    params.Bucket,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
	}, nil
}

// EnsureBucket creates the bucket if it does not already exist.
func (s *S3) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("creating bucket: %w", err)
	}
	return nil
}

func (s *S3) WriteRecipeImage(ctx context.Context, name string, data []byte) (string, error) {
	key := path.Join(recipesDir, name)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: http.DetectContentType(data)})
	if err != nil {
		return "", fmt.Errorf("uploading recipe image: %w", err)
	}
	return s.urlPrefix + "/" + key, nil
}

func (s *S3) DeleteRecipeImage(ctx context.Context, name string) error {
	key := path.Join(recipesDir, name)
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("removing recipe image: %w", err)
	}
	return nil
}
