package storage

import (
	"context"
	"fmt"
	"net/url"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// FirebaseStorage stores blobs in the project's Firebase Storage bucket.
type FirebaseStorage struct {
	bucket *gcs.BucketHandle
	name   string
}

func NewFirebaseStorage(ctx context.Context, projectID, bucket, credentialsFile string) (*FirebaseStorage, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     projectID,
		StorageBucket: bucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firebase storage client: %w", err)
	}

	handle, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("failed to open firebase bucket: %w", err)
	}

	return &FirebaseStorage{
		bucket: handle,
		name:   bucket,
	}, nil
}

func (f *FirebaseStorage) Name() string {
	return "firebase"
}

func (f *FirebaseStorage) Upload(ctx context.Context, request *UploadRequest) (*UploadResponse, error) {
	return uploadToBucket(ctx, f.bucket, request, f.generateURL(request.Key))
}

func (f *FirebaseStorage) Delete(ctx context.Context, key string) error {
	if err := f.bucket.Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete from firebase storage: %w", err)
	}
	return nil
}

// generateURL returns the Firebase download endpoint for key.
func (f *FirebaseStorage) generateURL(key string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media", f.name, url.PathEscape(key))
}
