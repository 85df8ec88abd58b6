// Package s3 backs the store interface with an S3-compatible object
// store via the MinIO client. Credentials and bucket come in through
// Config, never from process-global state.
package s3

import (
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/openmirror/landingzone/pkg/errors"
	"github.com/openmirror/landingzone/store"
)

// Package-specific error codes for s3 storage
var (
	S3StoreClientFailed = errors.MustNewCode("s3.client_failed")
)

// Type identifies this backend in configuration.
const Type = "S3"

// Config holds connection settings for an S3-compatible endpoint.
type Config struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// S3Store implements store.Store over a single bucket.
type S3Store struct {
	client *minio.Client
	bucket string
}

// New creates an S3 store from cfg. When no static keys are given the
// client falls back to the standard AWS environment credential chain.
func New(cfg Config) (*S3Store, error) {
	var creds *credentials.Credentials
	if cfg.AccessKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	} else {
		creds = credentials.NewEnvAWS()
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.New(S3StoreClientFailed, "failed to create s3 client", err).AddContext("endpoint", cfg.Endpoint)
	}

	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

// GetStoreType returns the backend type identifier
func (s *S3Store) GetStoreType() string {
	return Type
}

// CreateFile streams writes into a PutObject upload. The object becomes
// visible when the returned writer is closed.
func (s *S3Store) CreateFile(ctx context.Context, path string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	w := &s3WriteCloser{pw: pw, done: make(chan error, 1)}

	go func() {
		_, err := s.client.PutObject(ctx, s.bucket, path, pr, -1, minio.PutObjectOptions{
			ContentType: "application/octet-stream",
		})
		if err != nil {
			// Unblock any in-flight Write with the real failure.
			pr.CloseWithError(err)
			w.done <- errors.New(store.ErrUnavailable, "failed to upload object", err).AddContext("path", path)
			return
		}
		w.done <- nil
	}()

	return w, nil
}

// ListChildren lists the immediate children of prefix. Subfolders come
// back as common prefixes with a trailing slash.
func (s *S3Store) ListChildren(ctx context.Context, prefix string) ([]store.ObjectInfo, error) {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var infos []store.ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	}) {
		if obj.Err != nil {
			return nil, errors.New(store.ErrUnavailable, "failed to list objects", obj.Err).AddContext("prefix", prefix)
		}
		name := strings.TrimPrefix(obj.Key, prefix)
		if name == "" {
			continue
		}
		infos = append(infos, store.ObjectInfo{
			Name:  name,
			Size:  obj.Size,
			IsDir: strings.HasSuffix(name, "/"),
		})
	}
	return infos, nil
}

// DeleteIfExists removes the object at path. S3 delete is already
// idempotent for missing keys.
func (s *S3Store) DeleteIfExists(ctx context.Context, path string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
			return nil
		}
		return errors.New(store.ErrUnavailable, "failed to delete object", err).AddContext("path", path)
	}
	return nil
}

// ChildPath derives the key of segment beneath path.
func (s *S3Store) ChildPath(path, segment string) string {
	return store.Join(path, segment)
}

// s3WriteCloser feeds an in-flight PutObject through a pipe.
type s3WriteCloser struct {
	pw   *io.PipeWriter
	done chan error
}

func (w *s3WriteCloser) Write(p []byte) (n int, err error) {
	return w.pw.Write(p)
}

func (w *s3WriteCloser) Close() error {
	if err := w.pw.Close(); err != nil {
		return err
	}
	return <-w.done
}
