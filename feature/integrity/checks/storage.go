package checks

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"vehicle-sync/core/storage"
)

// StorageReport describes the media cache bucket.
type StorageReport struct {
	Bucket string `json:"bucket"`
	Exists bool   `json:"exists"`
	Fixed  bool   `json:"fixed,omitempty"`
}

// CheckBucket reports whether the bucket exists and creates it when fix is set.
func CheckBucket(ctx context.Context, client storage.Client, bucket, region string, fix bool, logger *zap.Logger) (*StorageReport, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	report := &StorageReport{Bucket: bucket, Exists: exists}
	if exists || !fix {
		return report, nil
	}

	logger.Info("Creating missing bucket", zap.String("bucket", bucket))
	if err := storage.EnsureBucket(ctx, client, bucket, region); err != nil {
		return nil, err
	}
	report.Exists = true
	report.Fixed = true
	return report, nil
}
