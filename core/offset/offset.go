package offset

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dgraph-io/badger/v4"
	"gorm.io/gorm"
)

// ErrConflict is returned by Advance when another run moved the offset first.
var ErrConflict = errors.New("offset: concurrent update")

// Store reads and advances the persisted offset.
type Store interface {
	// Load returns the stored offset, or 0 when none is stored.
	Load(ctx context.Context) (int, error)
	// Advance sets the offset to next if it still equals prev.
	Advance(ctx context.Context, prev, next int) error
}

// Closer is implemented by stores holding resources.
type Closer interface {
	Close() error
}

// New builds the configured store. db may be nil unless the sql backend is selected.
func New(cfg Config, db *gorm.DB) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "kv":
		if cfg.KVURL == "" {
			return nil, errors.New("offset: kv backend needs offset.kv_url")
		}
		return NewKVStore(cfg.KVURL, cfg.KVToken, cfg.Key, &http.Client{Timeout: 10 * time.Second}), nil
	case "sql":
		if db == nil {
			return nil, errors.New("offset: sql backend needs an enabled database")
		}
		return NewSQLStore(db, cfg.Key)
	case "badger":
		bdb, err := badger.Open(badger.DefaultOptions(cfg.BadgerPath).WithLogger(nil))
		if err != nil {
			return nil, fmt.Errorf("offset: failed to open badger store: %w", err)
		}
		return NewBadgerStore(bdb, cfg.Key, true), nil
	default:
		return nil, fmt.Errorf("offset: unknown backend %q", cfg.Backend)
	}
}
