package filestore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/google/uuid"

	"github.com/vietanh2810/registration-api/internal/config"
)

// Store persists uploaded receipts and knows how they are reached publicly.
type Store interface {
	// Save writes r under name and returns the storage location.
	Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
	// URL returns the public address of name. baseURL is the
	// scheme://host the request came in on.
	URL(baseURL, name string) string
}

func New(ctx context.Context, conf *config.StorageConfig) (Store, error) {
	switch conf.Driver {
	case config.StorageDriverLocal:
		return NewLocalStore(conf.Dir, conf.PublicPath, conf.PublicBaseURL)
	case config.StorageDriverS3:
		return NewS3Store(ctx, conf.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", conf.Driver)
	}
}

var whitespace = regexp2.MustCompile(`\s+`, regexp2.None)

// SanitizeName drops any directory part of a client supplied filename and
// replaces whitespace runs with underscores.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." {
		name = ""
	}

	sanitized, err := whitespace.Replace(name, "_", -1, -1)
	if err != nil {
		sanitized = strings.Join(strings.Fields(name), "_")
	}

	if sanitized == "" {
		return "receipt"
	}

	return sanitized
}

// UniqueName prefixes the sanitized name with a time ordered UUID so
// concurrent uploads of the same file never collide.
func UniqueName(original string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("uuid.NewV7 -> %w", err)
	}

	return id.String() + "-" + SanitizeName(original), nil
}
