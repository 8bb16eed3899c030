package assets

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/cloudnews/cloudnews/src/config"
	"github.com/cloudnews/cloudnews/src/oops"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

var ErrBlobNotFound = errors.New("blob not found")

// A BlobStore holds the binary image assets for news articles. All blobs live
// in one fixed container; names are flat strings like "stem.jpg".
type BlobStore interface {
	Upload(ctx context.Context, name string, contentType string, data []byte) error
	Download(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
}

type S3Store struct {
	client *s3.Client
	bucket string
}

var _ BlobStore = &S3Store{}

func NewS3Store(storageConfig config.StorageConfig) *S3Store {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				storageConfig.Key,
				storageConfig.Secret,
				"",
			),
		),
		awsconfig.WithRegion(storageConfig.Region),
		awsconfig.WithEndpointResolver(aws.EndpointResolverFunc(func(service, region string) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL: storageConfig.Endpoint,
			}, nil
		})),
	)
	if err != nil {
		panic(err)
	}

	return &S3Store{
		client: s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.UsePathStyle = true
		}),
		bucket: storageConfig.Bucket,
	}
}

func (s *S3Store) Upload(ctx context.Context, name string, contentType string, data []byte) error {
	upload := func() error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      &s.bucket,
			Key:         &name,
			Body:        bytes.NewReader(data),
			ContentType: &contentType,
		})
		return err
	}

	err := upload()
	if err != nil {
		var apiError smithy.APIError
		if errors.As(err, &apiError) && apiError.ErrorCode() == "NoSuchBucket" {
			_, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{
				Bucket: &s.bucket,
			})
			if err != nil {
				return oops.New(err, "failed to create blob container")
			}

			err = upload()
			if err != nil {
				return oops.New(err, "failed to upload blob")
			}
		} else {
			return oops.New(err, "failed to upload blob")
		}
	}

	return nil
}

func (s *S3Store) Download(ctx context.Context, name string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &name,
	})
	if err != nil {
		var apiError smithy.APIError
		if errors.As(err, &apiError) && apiError.ErrorCode() == "NoSuchKey" {
			return nil, ErrBlobNotFound
		}
		return nil, oops.New(err, "failed to download blob")
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, oops.New(err, "failed to read blob body")
	}

	return data, nil
}

func (s *S3Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &name,
	})
	if err != nil {
		return oops.New(err, "failed to delete blob")
	}

	return nil
}

// An in-memory BlobStore for tests and local tooling.
type MemStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

var _ BlobStore = &MemStore{}

func NewMemStore() *MemStore {
	return &MemStore{blobs: make(map[string][]byte)}
}

func (s *MemStore) Upload(ctx context.Context, name string, contentType string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[name] = data
	return nil
}

func (s *MemStore) Download(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[name]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return data, nil
}

func (s *MemStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, name)
	return nil
}

func (s *MemStore) Has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[name]
	return ok
}
