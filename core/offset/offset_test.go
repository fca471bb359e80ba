package offset

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vehicle-sync/core/database"
)

// exerciseStore runs the common contract against any backend.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	v, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	require.NoError(t, store.Advance(ctx, 0, 2))
	v, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	// A run that started from a stale value must not rewind the counter.
	err = store.Advance(ctx, 0, 4)
	assert.True(t, errors.Is(err, ErrConflict))
	v, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	require.NoError(t, store.Advance(ctx, 2, 0))
	v, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_ConcurrentAdvance(t *testing.T) {
	store := NewMemoryStore()
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.Advance(context.Background(), 0, 5) == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

// fakeKV mimics the get/set REST facade.
type fakeKV struct {
	mu     sync.Mutex
	values map[string]string
	token  string
}

func (f *fakeKV) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+f.token {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	switch {
	case len(parts) == 2 && parts[0] == "get":
		if v, ok := f.values[parts[1]]; ok {
			_, _ = w.Write([]byte(`{"result":"` + v + `"}`))
			return
		}
		_, _ = w.Write([]byte(`{"result":null}`))
	case len(parts) == 2 && parts[0] == "set" && r.Method == http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		f.values[parts[1]] = string(body)
		_, _ = w.Write([]byte(`{"result":"OK"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestKVStore(t *testing.T) {
	kv := &fakeKV{values: map[string]string{}, token: "secret"}
	srv := httptest.NewServer(kv)
	defer srv.Close()

	store := NewKVStore(srv.URL, "secret", "delta-sync-offset", srv.Client())
	exerciseStore(t, store)
	assert.Equal(t, "0", kv.values["delta-sync-offset"])
}

func TestKVStore_GarbledValueRestarts(t *testing.T) {
	kv := &fakeKV{values: map[string]string{"k": "abc"}, token: "t"}
	srv := httptest.NewServer(kv)
	defer srv.Close()

	v, err := NewKVStore(srv.URL, "t", "k", srv.Client()).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}

func TestKVStore_Unauthorized(t *testing.T) {
	kv := &fakeKV{values: map[string]string{}, token: "t"}
	srv := httptest.NewServer(kv)
	defer srv.Close()

	_, err := NewKVStore(srv.URL, "wrong", "k", srv.Client()).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestSQLStore_SQLite(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	store, err := NewSQLStore(db, "delta-sync-offset")
	require.NoError(t, err)
	exerciseStore(t, store)

	// A second counter is independent.
	other, err := NewSQLStore(db, "other")
	require.NoError(t, err)
	v, err := other.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, v)
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}
	return db, mock
}

func TestSQLStore_AdvanceConflict(t *testing.T) {
	db, mock := setupMockDB(t)
	store := &SQLStore{db: db, name: "k"}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `sync_offsets` SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := store.Advance(context.Background(), 3, 5)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_AdvanceSuccess(t *testing.T) {
	db, mock := setupMockDB(t)
	store := &SQLStore{db: db, name: "k"}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `sync_offsets` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, store.Advance(context.Background(), 3, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBadgerStore(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)

	store := NewBadgerStore(db, "delta-sync-offset", true)
	exerciseStore(t, store)
	assert.NoError(t, store.Close())
}

func TestNew(t *testing.T) {
	s, err := New(Config{Backend: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = New(Config{Backend: "kv"}, nil)
	assert.Error(t, err)

	_, err = New(Config{Backend: "sql"}, nil)
	assert.Error(t, err)

	_, err = New(Config{Backend: "etcd"}, nil)
	assert.Error(t, err)

	s, err = New(Config{Backend: "kv", KVURL: "http://kv.local", Key: "k"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &KVStore{}, s)
}
