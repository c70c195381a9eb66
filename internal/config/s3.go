package config

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/navcore/internal/errors"
)

// maxRemoteSize caps the size of a configuration object.
const maxRemoteSize = 1 << 20

// ObjectGetter is the part of the S3 client LoadS3 needs.
// *s3.Client implements it.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Client creates an S3 client from the default AWS credential chain
// (environment, shared config, instance role).
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.New(errors.CodeConfigRemote).
			WithDetail("Failed to load AWS configuration").
			Wrap(err)
	}
	return s3.NewFromConfig(cfg), nil
}

// LoadS3 reads configuration from an S3 object. The format is chosen from
// the key's extension.
func LoadS3(ctx context.Context, client ObjectGetter, bucket, key string) (*Config, error) {
	uri := "s3://" + bucket + "/" + key

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.New(errors.CodeConfigRemote).WithPath(uri).Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxRemoteSize+1))
	if err != nil {
		return nil, errors.New(errors.CodeConfigRemote).WithPath(uri).Wrap(err)
	}
	if len(data) > maxRemoteSize {
		return nil, errors.New(errors.CodeConfigRemote).
			WithPath(uri).
			WithDetail("configuration object is larger than 1 MiB")
	}

	cfg, perr := parse(data, formatOf(key))
	if perr != nil {
		return nil, perr.WithPath(uri)
	}
	cfg.configPath = uri
	return cfg, nil
}

// ParseS3URI splits s3://bucket/key. It reports false for anything else.
func ParseS3URI(uri string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(uri, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
