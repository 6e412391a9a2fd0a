package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// getGoogleClient initializes a Google Cloud Storage client
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	// Prefer ADC (Cloud Run service account / GOOGLE_APPLICATION_CREDENTIALS).
	// If you need to provide explicit JSON (e.g. locally), set GCS_CREDENTIALS_JSON.
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	}
	return storage.NewClient(ctx)
}

// ReportsBucket returns the bucket archived reports are copied to; empty
// disables uploads.
//
// Set via env:
// - REPORTS_GCS_BUCKET
func ReportsBucket() string {
	return strings.TrimSpace(os.Getenv("REPORTS_GCS_BUCKET"))
}

// UploadBytesToGCS writes data to bucket/objectName and returns the gs:// URL.
func UploadBytesToGCS(ctx context.Context, bucketName, objectName string, data []byte, contentType string) (string, error) {
	if bucketName == "" {
		return "", errors.New("bucket is required")
	}
	client, err := getGoogleClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	wc := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("failed to upload bytes to Google Cloud Storage: %v", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %v", err)
	}
	return fmt.Sprintf("gs://%s/%s", bucketName, objectName), nil
}
