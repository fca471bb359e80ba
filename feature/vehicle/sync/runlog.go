package sync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"

	"vehicle-sync/core/storage"
)

// SyncRun is one row of the run log.
type SyncRun struct {
	ID             uint      `gorm:"primaryKey"`
	RunID          string    `gorm:"size:36;uniqueIndex"`
	StartedAt      time.Time `gorm:"index"`
	DurationMs     int64
	Offset         int
	NextOffset     int
	OffsetConflict bool
	Filtered       int
	Created        int
	Updated        int
	Skipped        int
	Deleted        int
	Failed         int
	Report         string `gorm:"type:text"`
}

// TableName overrides the default table name.
func (SyncRun) TableName() string {
	return "sync_runs"
}

// RunLog records finished runs to SQL and object storage. Either sink may be absent.
type RunLog struct {
	db     *gorm.DB
	client storage.Client
	bucket string
}

// NewRunLog migrates the run table when db is set.
func NewRunLog(db *gorm.DB, client storage.Client, bucket string) (*RunLog, error) {
	if db != nil {
		if err := db.AutoMigrate(&SyncRun{}); err != nil {
			return nil, fmt.Errorf("failed to migrate sync_runs: %w", err)
		}
	}
	return &RunLog{db: db, client: client, bucket: bucket}, nil
}

// ReportObjectName is where a run report is archived.
func ReportObjectName(report *Report) string {
	return fmt.Sprintf("reports/%s-%s.json", report.StartedAt.UTC().Format("20060102T150405Z"), report.RunID)
}

// Record writes the run to every configured sink.
func (l *RunLog) Record(ctx context.Context, report *Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	var errs []error
	if l.db != nil {
		row := SyncRun{
			RunID:          report.RunID,
			StartedAt:      report.StartedAt,
			DurationMs:     report.DurationMs,
			Offset:         report.Offset,
			NextOffset:     report.NextOffset,
			OffsetConflict: report.OffsetConflict,
			Filtered:       report.Totals.SyscaraFiltered,
			Created:        report.Created,
			Updated:        report.Updated,
			Skipped:        report.Skipped,
			Deleted:        report.Deleted,
			Failed:         len(report.Errors),
			Report:         string(data),
		}
		if err := l.db.WithContext(ctx).Create(&row).Error; err != nil {
			errs = append(errs, fmt.Errorf("failed to insert run: %w", err))
		}
	}
	if l.client != nil {
		_, err := l.client.PutObject(ctx, l.bucket, ReportObjectName(report), bytes.NewReader(data), int64(len(data)),
			minio.PutObjectOptions{ContentType: "application/json"})
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to upload report: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Recent returns the latest runs, newest first.
func (l *RunLog) Recent(ctx context.Context, n int) ([]SyncRun, error) {
	if l.db == nil {
		return nil, errors.New("run log has no database")
	}
	var runs []SyncRun
	err := l.db.WithContext(ctx).Order("started_at DESC").Order("id DESC").Limit(n).Find(&runs).Error
	return runs, err
}
