package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"emo-pages-backend/internal/config"
	"emo-pages-backend/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const uploadURLTTL = 5 * time.Minute

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".heic": true,
}

// ImageService hands out presigned upload URLs for memory page images
type ImageService struct {
	s3Client *s3.Client
	cfg      config.ImagesConfig
}

// NewImageService creates a new image service
func NewImageService(ctx context.Context, cfg config.ImagesConfig) (*ImageService, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &ImageService{s3Client: s3Client, cfg: cfg}, nil
}

// UploadRequest represents a request to get a pre-signed URL
type UploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// UploadResponse carries the presigned PUT URL and the URL to store in a
// memory page once the upload finished
type UploadResponse struct {
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expires_in"`
}

// GetPreSignedURL generates a pre-signed URL for uploading one image
func (s *ImageService) GetPreSignedURL(ctx context.Context, req UploadRequest) (*UploadResponse, error) {
	if s.cfg.Bucket == "" {
		return nil, &models.StorageError{Op: "presign", Err: fmt.Errorf("image hosting is not configured")}
	}
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	if !strings.HasPrefix(contentType, "image/") {
		return nil, &models.ValidationError{Field: "content_type", Reason: "only images can be uploaded"}
	}

	key := path.Join(s.cfg.UploadPrefix, uuid.New().String()+imageExtension(req.Filename, contentType))

	presignClient := s3.NewPresignClient(s.s3Client)
	request, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = uploadURLTTL
	})
	if err != nil {
		return nil, &models.StorageError{Op: "presign", Err: err}
	}

	return &UploadResponse{
		UploadURL: request.URL,
		PublicURL: s.publicURL(key),
		Key:       key,
		ExpiresIn: int(uploadURLTTL.Seconds()),
	}, nil
}

func (s *ImageService) publicURL(key string) string {
	switch {
	case s.cfg.PublicBaseURL != "":
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key
	case s.cfg.Endpoint != "":
		return strings.TrimRight(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket + "/" + key
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
	}
}

func imageExtension(filename, contentType string) string {
	if ext := strings.ToLower(path.Ext(filename)); imageExtensions[ext] {
		return ext
	}
	sub := strings.TrimPrefix(contentType, "image/")
	if i := strings.IndexAny(sub, ";+"); i >= 0 {
		sub = sub[:i]
	}
	if imageExtensions["."+sub] {
		return "." + sub
	}
	return ".jpg"
}
