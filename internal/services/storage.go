package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"qahiring/cv-analyzer/internal/config"
	"qahiring/cv-analyzer/internal/models"
)

// StoredFile describes where an uploaded CV ended up.
type StoredFile struct {
	Name     string
	Location string
}

type StorageService interface {
	SaveFile(ctx context.Context, originalFilename string, data []byte) (*StoredFile, error)
	DeleteFile(ctx context.Context, name string) error
	EnsureReady(ctx context.Context) error
}

// NewStorageService returns the driver selected by cfg.Driver.
func NewStorageService(ctx context.Context, cfg config.StorageConfig) (StorageService, error) {
	switch cfg.Driver {
	case config.StorageS3:
		return NewS3Storage(ctx, cfg.S3)
	case config.StorageLocal, "":
		return NewLocalStorage(cfg.UploadPath), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// StoredFilename builds the cv_<uuid>.<ext> name every driver uses.
func StoredFilename(originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	return fmt.Sprintf("cv_%s%s", uuid.New().String(), ext)
}

type localStorage struct {
	uploadPath string
}

func NewLocalStorage(uploadPath string) StorageService {
	return &localStorage{
		uploadPath: uploadPath,
	}
}

func (s *localStorage) EnsureReady(ctx context.Context) error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

func (s *localStorage) SaveFile(ctx context.Context, originalFilename string, data []byte) (*StoredFile, error) {
	name := StoredFilename(originalFilename)
	filePath := filepath.Join(s.uploadPath, name)

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return &StoredFile{Name: name, Location: filePath}, nil
}

func (s *localStorage) DeleteFile(ctx context.Context, name string) error {
	if err := os.Remove(filepath.Join(s.uploadPath, filepath.Base(name))); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

type s3Storage struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Storage talks to AWS S3 or, when Endpoint is set, to an S3-compatible
// store such as MinIO.
func NewS3Storage(ctx context.Context, cfg config.S3Config) (StorageService, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Storage{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func (s *s3Storage) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func (s *s3Storage) EnsureReady(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("failed to reach bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *s3Storage) SaveFile(ctx context.Context, originalFilename string, data []byte) (*StoredFile, error) {
	name := StoredFilename(originalFilename)
	key := s.key(name)

	contentType := models.ExtensionMIMETypes[strings.ToLower(filepath.Ext(originalFilename))]
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file to s3: %w", err)
	}

	return &StoredFile{Name: name, Location: fmt.Sprintf("s3://%s/%s", s.bucket, key)}, nil
}

func (s *s3Storage) DeleteFile(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from s3: %w", err)
	}
	return nil
}
