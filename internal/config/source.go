package config

import (
	"context"
	"os"

	"github.com/vango-dev/navcore/internal/errors"
)

// LoadSource loads configuration from a directory, a file or an
// s3://bucket/key URI. An empty source reads the working directory and
// falls back to the defaults when no file is there.
func LoadSource(ctx context.Context, source string) (*Config, error) {
	if source == "" {
		cfg, err := Load(".")
		if errors.CodeOf(err) == errors.CodeConfigNotFound {
			return New(), nil
		}
		return cfg, err
	}

	if bucket, key, ok := ParseS3URI(source); ok {
		client, err := NewS3Client(ctx)
		if err != nil {
			return nil, err
		}
		return LoadS3(ctx, client, bucket, key)
	}

	info, err := os.Stat(source)
	if err == nil && info.IsDir() {
		return Load(source)
	}
	return LoadFile(source)
}
