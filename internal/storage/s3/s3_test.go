package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingUploader struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (u *recordingUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if u.err != nil {
		return nil, u.err
	}
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	u.input = input
	u.body = string(data)
	return &manager.UploadOutput{}, nil
}

func TestPutUploadsWithContentType(t *testing.T) {
	uploader := &recordingUploader{}
	store := NewWithUploader(uploader, "wardrobe-images", "s3.amazonaws.com")

	url, err := store.Put(context.Background(), "Green_Jacket.jpg", strings.NewReader("jpeg"), "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "https://wardrobe-images.s3.amazonaws.com/Green_Jacket.jpg", url)
	require.NotNil(t, uploader.input)
	assert.Equal(t, "wardrobe-images", aws.ToString(uploader.input.Bucket))
	assert.Equal(t, "Green_Jacket.jpg", aws.ToString(uploader.input.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(uploader.input.ContentType))
	assert.Equal(t, "jpeg", uploader.body)
}

func TestPutPropagatesUploadErrors(t *testing.T) {
	store := NewWithUploader(&recordingUploader{err: errors.New("access denied")}, "bucket", "")

	url, err := store.Put(context.Background(), "Coat.jpg", strings.NewReader("jpeg"), "image/jpeg")
	require.Error(t, err)
	assert.Empty(t, url)
	assert.Contains(t, err.Error(), "access denied")
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(context.Background(), Config{Region: "eu-north-1"})
	assert.EqualError(t, err, "bucket name is required")

	_, err = New(context.Background(), Config{Bucket: "bucket"})
	assert.EqualError(t, err, "region is required")
}

func TestNewWithStaticCredentials(t *testing.T) {
	store, err := New(context.Background(), Config{
		Region:          "eu-north-1",
		Bucket:          "wardrobe-images",
		AccessKeyID:     "AKIAEXAMPLE",
		SecretAccessKey: "secret",
		Endpoint:        "http://localhost:9000",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "wardrobe-images", store.bucket)
}
