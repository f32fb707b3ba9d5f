package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
)

// ErrSeedNotFound indicates the seed location holds no object
var ErrSeedNotFound = errors.New("seed not found")

// Open returns a reader for the seed at rawURL. Supported forms:
//
//	/path/to/seed.json
//	file:///path/to/seed.json
//	s3://bucket/key/seed.json
func Open(ctx context.Context, rawURL string, s3cfg S3Config) (io.ReadCloser, error) {
	if rawURL == "" {
		return nil, errors.New("seed url is required")
	}
	if !strings.Contains(rawURL, "://") {
		return openFile(rawURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed url %q: %w", rawURL, err)
	}

	switch u.Scheme {
	case "file":
		path := u.Path
		if u.Host != "" {
			// file://relative/path
			path = u.Host + u.Path
		}
		return openFile(path)
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("invalid seed url %q: bucket and key are required", rawURL)
		}
		return openS3(ctx, s3cfg, u.Host, key)
	default:
		return nil, fmt.Errorf("unsupported seed url scheme %q (use file:// or s3://)", u.Scheme)
	}
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSeedNotFound, path)
		}
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	return f, nil
}
