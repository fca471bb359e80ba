package offset

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Offset is the row holding one named counter.
type Offset struct {
	Name      string `gorm:"primaryKey;size:191"`
	Value     int    `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// TableName overrides the default table name.
func (Offset) TableName() string {
	return "sync_offsets"
}

// SQLStore keeps the offset in a SQL table and advances it with a conditional update.
type SQLStore struct {
	db   *gorm.DB
	name string
}

// NewSQLStore migrates the table and returns a store for one counter.
func NewSQLStore(db *gorm.DB, name string) (*SQLStore, error) {
	if err := db.AutoMigrate(&Offset{}); err != nil {
		return nil, fmt.Errorf("offset: failed to migrate: %w", err)
	}
	return &SQLStore{db: db, name: name}, nil
}

// Load reads the counter row, creating it at zero.
func (s *SQLStore) Load(ctx context.Context) (int, error) {
	row := Offset{Name: s.name}
	if err := s.db.WithContext(ctx).Where(Offset{Name: s.name}).FirstOrCreate(&row).Error; err != nil {
		return 0, fmt.Errorf("offset: failed to load: %w", err)
	}
	return row.Value, nil
}

// Advance updates the row only while it still holds prev.
func (s *SQLStore) Advance(ctx context.Context, prev, next int) error {
	res := s.db.WithContext(ctx).
		Model(&Offset{}).
		Where("name = ? AND value = ?", s.name, prev).
		Updates(map[string]any{"value": next, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("offset: failed to advance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}
