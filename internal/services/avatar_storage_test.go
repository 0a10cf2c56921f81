package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalAvatarStoreSave(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalAvatarStore(dir, "http://localhost:8000/")

	url, err := store.Save(context.Background(), "avatars/u1/pic.png", "image/png", strings.NewReader("png-bytes"), 9)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/uploads/avatars/u1/pic.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "avatars", "u1", "pic.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestLocalAvatarStoreRejectsEscapingKeys(t *testing.T) {
	store := NewLocalAvatarStore(t.TempDir(), "http://localhost")

	_, err := store.Save(context.Background(), "../outside.png", "image/png", strings.NewReader("x"), 1)
	assert.Error(t, err)
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	if in.Body != nil {
		b, _ := io.ReadAll(in.Body)
		f.body = string(b)
	}
	return &s3.PutObjectOutput{}, f.err
}

func TestS3AvatarStoreSave(t *testing.T) {
	putter := &fakePutter{}
	store := newS3AvatarStore(putter, "avatars", "https://cdn.example.com/")

	url, err := store.Save(context.Background(), "avatars/u1/pic.jpg", "image/jpeg", strings.NewReader("jpeg"), 4)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatars/u1/pic.jpg", url)

	require.NotNil(t, putter.input)
	assert.Equal(t, "avatars", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "avatars/u1/pic.jpg", aws.ToString(putter.input.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(putter.input.ContentType))
	assert.EqualValues(t, 4, aws.ToInt64(putter.input.ContentLength))
	assert.Equal(t, "jpeg", putter.body)
}

func TestS3AvatarStoreSaveError(t *testing.T) {
	store := newS3AvatarStore(&fakePutter{err: errors.New("access denied")}, "b", "https://cdn")

	_, err := store.Save(context.Background(), "k", "image/png", strings.NewReader("x"), 1)
	assert.ErrorContains(t, err, "access denied")
}
