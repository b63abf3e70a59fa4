package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type uploaderStub struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (u *uploaderStub) Upload(ctx context.Context, input *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	_ = ctx
	u.input = input
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	u.body = string(data)
	if u.err != nil {
		return nil, u.err
	}
	return &manager.UploadOutput{Key: input.Key}, nil
}

func TestS3StorageSave(t *testing.T) {
	uploader := &uploaderStub{}
	store := NewS3StorageWithUploader(uploader, "media")

	key, err := store.Save(context.Background(), "/file-1", strings.NewReader("bytes"), "image/png")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if key != "file-1" {
		t.Fatalf("unexpected key %q", key)
	}
	if aws.ToString(uploader.input.Bucket) != "media" || aws.ToString(uploader.input.ContentType) != "image/png" {
		t.Fatalf("unexpected input: %+v", uploader.input)
	}
	if uploader.body != "bytes" {
		t.Fatalf("unexpected body %q", uploader.body)
	}
}

func TestS3StorageSaveErrors(t *testing.T) {
	store := NewS3StorageWithUploader(&uploaderStub{}, "media")
	if _, err := store.Save(context.Background(), "/", strings.NewReader(""), ""); err == nil {
		t.Fatal("expected error for empty key")
	}

	boom := errors.New("boom")
	store = NewS3StorageWithUploader(&uploaderStub{err: boom}, "media")
	if _, err := store.Save(context.Background(), "file", strings.NewReader("x"), ""); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped upload error, got %v", err)
	}
}
