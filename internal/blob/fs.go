package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Filesystem keeps blobs under a local directory that the server exposes at baseURL.
type Filesystem struct {
	root    string
	baseURL string
}

func NewFilesystem(root, baseURL string) (*Filesystem, error) {
	if root == "" {
		root = "./uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Filesystem{root: root, baseURL: baseURL}, nil
}

func (f *Filesystem) Driver() Driver { return DriverFilesystem }

// Root is the directory served as static files.
func (f *Filesystem) Root() string { return f.root }

func (f *Filesystem) Put(_ context.Context, key string, r io.Reader, contentType string) (Object, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return Object{}, err
	}
	dataPath := filepath.Join(f.root, filepath.FromSlash(k))
	if _, err := os.Stat(dataPath); err == nil {
		return Object{}, fmt.Errorf("blob %s already exists", key)
	}
	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return Object{}, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dataPath), ".tmp-*")
	if err != nil {
		return Object{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	size, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		return Object{}, err
	}
	if err := tmp.Close(); err != nil {
		return Object{}, err
	}
	if err := os.Rename(tmp.Name(), dataPath); err != nil {
		return Object{}, err
	}
	return Object{Key: k, URL: f.baseURL + "/" + k, ContentType: contentType, Size: size}, nil
}

func (f *Filesystem) Delete(_ context.Context, key string) error {
	k, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(f.root, filepath.FromSlash(k)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
