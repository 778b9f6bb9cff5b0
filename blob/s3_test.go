package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeS3 records puts and relies on the real client only for offline
// request signing.
type fakeS3 struct {
	*s3.S3
	puts   map[string]string
	putErr error
}

func newFakeS3(t *testing.T) *fakeS3 {
	t.Helper()
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String("ap-northeast-1"),
		Credentials: credentials.NewStaticCredentials("AKID", "SECRET", ""),
	})
	require.NoError(t, err)
	return &fakeS3{S3: s3.New(sess), puts: map[string]string{}}
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, input *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.puts[aws.StringValue(input.Key)] = string(b)
	return &s3.PutObjectOutput{}, nil
}

func TestUploadWithMediaBaseURL(t *testing.T) {
	fake := newFakeS3(t)
	u := NewS3UploaderWithClient(fake, "sweets", "https://cdn.example/", zap.NewNop())

	url, err := u.Upload(context.Background(), "admin/logo_1700000000000", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/admin/logo_1700000000000", url)
	assert.Equal(t, "png", fake.puts["admin/logo_1700000000000"])
}

func TestUploadPresignsWithoutBaseURL(t *testing.T) {
	fake := newFakeS3(t)
	u := NewS3UploaderWithClient(fake, "sweets", "", nil)

	url, err := u.Upload(context.Background(), "admin/logo_1", "image/png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Contains(t, url, "admin/logo_1")
	assert.Contains(t, url, "X-Amz-Expires=604800")
}

func TestUploadFailure(t *testing.T) {
	fake := newFakeS3(t)
	fake.putErr = errors.New("access denied")
	u := NewS3UploaderWithClient(fake, "sweets", "https://cdn.example", nil)

	_, err := u.Upload(context.Background(), "k", "", strings.NewReader("x"))
	assert.EqualError(t, err, "access denied")
}

func TestNewS3UploaderRequiresBucket(t *testing.T) {
	_, err := NewS3Uploader("ap-northeast-1", "", "", nil)
	assert.Error(t, err)
}
