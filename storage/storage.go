// Package storage stores task output in an S3 compatible bucket.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/wudi/pdftask/model/output"
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	// Prefix is prepended to every object key, e.g. "results/".
	Prefix string
	Secure bool
}

// objectAPI is the part of *minio.Client the store uses.
type objectAPI interface {
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// ObjectStore is an output.Output writing one object per document.
type ObjectStore struct {
	client objectAPI
	bucket string
	prefix string
	host   string
}

// New connects to the endpoint and checks that the bucket exists.
func New(ctx context.Context, cfg Config) (*ObjectStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", cfg.Bucket)
	}
	s := newStore(client, cfg.Bucket, cfg.Prefix)
	scheme := "http"
	if cfg.Secure {
		scheme = "https"
	}
	s.host = scheme + "://" + cfg.Endpoint
	return s, nil
}

func newStore(client objectAPI, bucket, prefix string) *ObjectStore {
	return &ObjectStore{client: client, bucket: bucket, prefix: prefix}
}

func (s *ObjectStore) Key(name string) string { return path.Join(s.prefix, name) }

// URL is the address of the object holding the document name.
func (s *ObjectStore) URL(name string) string {
	return fmt.Sprintf("%s/%s/%s", s.host, s.bucket, url.PathEscape(s.Key(name)))
}

func (s *ObjectStore) Store(ctx context.Context, docs []output.Document, overwrite bool) error {
	if len(docs) == 0 {
		return output.ErrNoDocuments
	}
	if !overwrite {
		for _, d := range docs {
			exists, err := s.exists(ctx, s.Key(d.Name))
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%w: %s/%s", output.ErrOutputExists, s.bucket, s.Key(d.Name))
			}
		}
	}
	now := time.Now().Format(time.RFC3339)
	for _, d := range docs {
		_, err := s.client.PutObject(ctx, s.bucket, s.Key(d.Name), bytes.NewReader(d.Data), int64(len(d.Data)), minio.PutObjectOptions{
			ContentType:  "application/pdf",
			UserMetadata: map[string]string{"uploaded-at": now},
		})
		if err != nil {
			return fmt.Errorf("upload %s: %w", d.Name, err)
		}
	}
	return nil
}

func (s *ObjectStore) exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", key, err)
}
