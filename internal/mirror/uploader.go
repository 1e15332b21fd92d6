// Package mirror uploads written song files to an S3-compatible bucket.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// Config holds the S3 settings.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // set for S3-compatible stores (MinIO, Yandex, R2)
	AccessKey string // empty uses the default AWS credential chain
	SecretKey string
	Prefix    string
}

// uploadAPI is the part of s3manager.Uploader used here.
type uploadAPI interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

// Uploader mirrors local files to <bucket>/<prefix>/<file name>.
type Uploader struct {
	api    uploadAPI
	config Config
}

// New creates an Uploader with an AWS session built from cfg.
func New(cfg Config) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("mirror: bucket is required")
	}

	awsConfig := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("mirror: create AWS session: %w", err)
	}

	return newUploader(s3manager.NewUploader(sess), cfg), nil
}

func newUploader(api uploadAPI, cfg Config) *Uploader {
	return &Uploader{api: api, config: cfg}
}

// Key returns the object key a local file is stored under.
func (u *Uploader) Key(localPath string) string {
	name := filepath.Base(localPath)
	prefix := strings.Trim(u.config.Prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// UploadFile uploads the file at localPath and returns its object key.
func (u *Uploader) UploadFile(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("mirror: %w", err)
	}
	defer f.Close()

	key := u.Key(localPath)
	_, err = u.api.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(u.config.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType(localPath)),
	})
	if err != nil {
		return "", fmt.Errorf("mirror: upload %s: %w", key, err)
	}
	return key, nil
}

func contentType(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".mp3":
		return "audio/mpeg"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".m3u":
		return "audio/x-mpegurl"
	case ".pls":
		return "audio/x-scpls"
	default:
		return "application/octet-stream"
	}
}
