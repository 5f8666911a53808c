package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"

	"github.com/wudi/pdftask/model/output"
)

type fakeBucket struct {
	objects map[string][]byte
	meta    map[string]minio.PutObjectOptions
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string][]byte{}, meta: map[string]minio.PutObjectOptions{}}
}

func (f *fakeBucket) StatObject(_ context.Context, _, key string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if data, ok := f.objects[key]; ok {
		return minio.ObjectInfo{Key: key, Size: int64(len(data))}, nil
	}
	return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", Key: key}
}

func (f *fakeBucket) PutObject(_ context.Context, bucket, key string, r io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.objects[key] = data
	f.meta[key] = opts
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: int64(len(data))}, nil
}

func TestObjectStore(t *testing.T) {
	bucket := newFakeBucket()
	s := newStore(bucket, "pdf", "results")
	docs := []output.Document{{Name: "1_a.pdf", Data: []byte("one")}, {Name: "2_a.pdf", Data: []byte("two")}}

	if err := s.Store(context.Background(), docs, false); err != nil {
		t.Fatalf("store: %v", err)
	}
	if string(bucket.objects["results/2_a.pdf"]) != "two" {
		t.Fatalf("objects = %v", bucket.objects)
	}
	if bucket.meta["results/1_a.pdf"].ContentType != "application/pdf" {
		t.Fatalf("content type not set")
	}

	err := s.Store(context.Background(), docs[:1], false)
	if !errors.Is(err, output.ErrOutputExists) {
		t.Fatalf("expected ErrOutputExists, got %v", err)
	}
	if err := s.Store(context.Background(), []output.Document{{Name: "1_a.pdf", Data: []byte("new")}}, true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if string(bucket.objects["results/1_a.pdf"]) != "new" {
		t.Fatalf("object not replaced")
	}
}

func TestObjectStoreURL(t *testing.T) {
	s := newStore(newFakeBucket(), "pdf", "out")
	s.host = "https://s3.example.com"
	if got := s.URL("a b.pdf"); got != "https://s3.example.com/pdf/out%2Fa%20b.pdf" {
		t.Fatalf("url = %s", got)
	}
}
