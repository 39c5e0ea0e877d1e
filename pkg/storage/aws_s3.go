package storage

import (
	"context"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// AWSS3Storage keeps recordings in a bucket with server side encryption. URLs point at the CDN
// domain when one is configured.
type AWSS3Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewAWSS3Storage(ctx context.Context, region, bucket, cdnDomain string) (*AWSS3Storage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 storage requires AWS_S3_BUCKET")
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	baseURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	if cdnDomain != "" {
		baseURL = "https://" + cdnDomain
	}

	return &AWSS3Storage{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

func (a *AWSS3Storage) Name() string {
	return "s3"
}

func (a *AWSS3Storage) Upload(ctx context.Context, request *UploadRequest) (*UploadResponse, error) {
	input := &s3.PutObjectInput{
		Bucket:               aws.String(a.bucket),
		Key:                  aws.String(request.Key),
		Body:                 request.Reader,
		ContentType:          aws.String(request.ContentType),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
		Metadata:             request.Metadata,
	}
	if request.Size > 0 {
		input.ContentLength = aws.Int64(request.Size)
	}
	if request.CacheControl != "" {
		input.CacheControl = aws.String(request.CacheControl)
	}

	out, err := a.client.PutObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s to S3: %w", request.Key, err)
	}

	objectURL, err := url.JoinPath(a.baseURL, request.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to build object URL: %w", err)
	}

	return &UploadResponse{
		Key:      request.Key,
		URL:      objectURL,
		Size:     request.Size,
		ETag:     aws.ToString(out.ETag),
		Location: fmt.Sprintf("s3://%s/%s", a.bucket, request.Key),
	}, nil
}

func (a *AWSS3Storage) Delete(ctx context.Context, key string) error {
	if _, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("failed to delete %s from S3: %w", key, err)
	}
	return nil
}
