// Package blob stores uploaded media (the admin logo) in S3.
package blob

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"go.uber.org/zap"
)

// PresignTTL is how long a presigned download URL stays valid.
const PresignTTL = 7 * 24 * time.Hour

// S3API is the subset of the S3 client the uploader calls, so tests can
// swap in a fake.
type S3API interface {
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
	GetObjectRequest(input *s3.GetObjectInput) (*request.Request, *s3.GetObjectOutput)
}

type S3Uploader struct {
	client  S3API
	bucket  string
	baseURL string
	logger  *zap.Logger
}

// NewS3Uploader builds an uploader from the default AWS credential chain.
func NewS3Uploader(region, bucket, baseURL string, logger *zap.Logger) (*S3Uploader, error) {
	if bucket == "" {
		return nil, errors.New("S3_BUCKET environment variable is not set")
	}
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, err
	}
	return NewS3UploaderWithClient(s3.New(sess), bucket, baseURL, logger), nil
}

func NewS3UploaderWithClient(client S3API, bucket, baseURL string, logger *zap.Logger) *S3Uploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &S3Uploader{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Upload writes body under key and returns a URL clients can fetch it from:
// the public media base URL when configured, otherwise a presigned GET.
func (u *S3Uploader) Upload(ctx context.Context, key, contentType string, body io.ReadSeeker) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := u.client.PutObjectWithContext(ctx, input); err != nil {
		u.logger.Error("s3 upload failed", zap.String("key", key), zap.Error(err))
		return "", err
	}
	u.logger.Info("s3 object uploaded", zap.String("bucket", u.bucket), zap.String("key", key))
	return u.URL(key)
}

func (u *S3Uploader) URL(key string) (string, error) {
	if u.baseURL != "" {
		return u.baseURL + "/" + (&url.URL{Path: key}).EscapedPath(), nil
	}
	req, _ := u.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	return req.Presign(PresignTTL)
}
