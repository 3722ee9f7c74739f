package adapter

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

// ErrObjectNotExist indicates the requested blob has never been written.
var ErrObjectNotExist = goerr.New("object does not exist")

// Storage is the interface for durable blob storage. It holds the
// serialized vector index.
type Storage interface {
	// Put returns a writer to save a blob under the given key
	Put(ctx context.Context, key string) (io.WriteCloser, error)
	// Get loads a blob; returns ErrObjectNotExist when the key is absent
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// fileStorage implements Storage on a local directory. Keys map to file
// paths relative to the root.
type fileStorage struct {
	root string
}

// NewFileStorage creates a local directory backed Storage.
func NewFileStorage(root string) Storage {
	return &fileStorage{root: root}
}

func (s *fileStorage) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	path := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create storage directory", goerr.V("path", path))
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage file", goerr.V("path", path))
	}
	return f, nil
}

func (s *fileStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	path := filepath.Join(s.root, filepath.FromSlash(key))
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, goerr.Wrap(ErrObjectNotExist, "no local object", goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to open storage file", goerr.V("path", path))
	}
	return f, nil
}

// cloudStorage implements Storage using Cloud Storage for deployments that
// share one index across hosts.
type cloudStorage struct {
	bucketName string
	client     *storage.Client
}

// NewCloudStorage creates a Cloud Storage backed Storage.
func NewCloudStorage(ctx context.Context, bucketName string) (Storage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &cloudStorage{
		bucketName: bucketName,
		client:     client,
	}, nil
}

func (s *cloudStorage) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	obj := s.client.Bucket(s.bucketName).Object(key)
	return obj.NewWriter(ctx), nil
}

func (s *cloudStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj := s.client.Bucket(s.bucketName).Object(key)
	reader, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(ErrObjectNotExist, "no remote object", goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to read from storage", goerr.V("key", key))
	}

	return reader, nil
}
