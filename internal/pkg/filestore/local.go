package filestore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

type LocalStore struct {
	dir           string
	publicPath    string
	publicBaseURL string
}

// NewLocalStore creates dir when missing. Files are expected to be served
// under publicPath; publicBaseURL, when set, replaces the request's host.
func NewLocalStore(dir, publicPath, publicBaseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll(%v) -> %w", dir, err)
	}

	return &LocalStore{
		dir:           dir,
		publicPath:    "/" + strings.Trim(publicPath, "/"),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) PublicPath() string {
	return s.publicPath
}

func (s *LocalStore) Save(ctx context.Context, name string, r io.Reader, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	location := filepath.Join(s.dir, filepath.Base(name))

	f, err := os.OpenFile(location, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("os.OpenFile(%v) -> %w", location, err)
	}

	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(location)
		return "", fmt.Errorf("io.Copy -> %w", err)
	}

	if err = f.Close(); err != nil {
		_ = os.Remove(location)
		return "", fmt.Errorf("f.Close -> %w", err)
	}

	return location, nil
}

func (s *LocalStore) URL(baseURL, name string) string {
	if s.publicBaseURL != "" {
		baseURL = s.publicBaseURL
	}

	return strings.TrimRight(baseURL, "/") + s.publicPath + "/" + url.PathEscape(name)
}
