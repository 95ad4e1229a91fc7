package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"pulsechat/internal/domain/service"
)

const (
	uploadURLExpiry  = 15 * time.Minute
	resolveURLExpiry = 15 * time.Minute
)

// CloudStorageClient implements service.BlobStorageService against GCS.
// Storage refs are plain object names; URLs are signed on demand and never
// persisted.
type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
}

func NewCloudStorageClient(ctx context.Context, bucketName, credentialsPath string) (*CloudStorageClient, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	return &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (c *CloudStorageClient) GenerateUploadHandle(ctx context.Context, contentType string) (*service.UploadHandle, error) {
	objectName := fmt.Sprintf("media/%s-%s", uuid.New().String(), time.Now().Format("20060102150405"))

	url, err := c.client.Bucket(c.bucketName).SignedURL(objectName, &storage.SignedURLOptions{
		Method:      http.MethodPut,
		ContentType: contentType,
		Expires:     time.Now().Add(uploadURLExpiry),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %v", err)
	}

	return &service.UploadHandle{
		UploadURL:  url,
		StorageRef: objectName,
	}, nil
}

func (c *CloudStorageClient) Resolve(ctx context.Context, storageRef string) (string, error) {
	url, err := c.client.Bucket(c.bucketName).SignedURL(storageRef, &storage.SignedURLOptions{
		Method:  http.MethodGet,
		Expires: time.Now().Add(resolveURLExpiry),
	})
	if err != nil {
		return "", fmt.Errorf("failed to resolve storage ref %s: %v", storageRef, err)
	}

	return url, nil
}

func (c *CloudStorageClient) Delete(ctx context.Context, storageRef string) error {
	obj := c.client.Bucket(c.bucketName).Object(storageRef)
	if err := obj.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %s: %v", storageRef, err)
	}

	return nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}
