package engine

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfonmga/hodlbitcoin/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

// buildDataset creates a real sqlite price dataset and returns its bytes.
func buildDataset(t *testing.T) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prices.sqlite3")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE prices (date INTEGER NOT NULL, price REAL NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO prices (date, price) VALUES (1300000000, 100.5), (1400000000, 300.25)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestProvider_AcquireWaitsForRegistration(t *testing.T) {
	p := NewProvider()

	go func() {
		time.Sleep(20 * time.Millisecond)
		p.Register(SQLiteFactory())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	eng, err := p.Acquire(ctx)
	require.NoError(t, err)
	assert.NotNil(t, eng)
}

func TestProvider_FactoryInvokedExactlyOnce(t *testing.T) {
	p := NewProvider()
	var invocations atomic.Int32
	p.Register(func() (Engine, error) {
		invocations.Add(1)
		return &sqliteEngine{}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Acquire(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), invocations.Load())
}

func TestProvider_DuplicateRegistrationIgnored(t *testing.T) {
	p := NewProvider()
	p.Register(func() (Engine, error) { return &sqliteEngine{}, nil })
	p.Register(func() (Engine, error) { return nil, errors.New("should never run") })

	eng, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, eng)
}

func TestProvider_FactoryErrorIsCached(t *testing.T) {
	p := NewProvider()
	var invocations atomic.Int32
	p.Register(func() (Engine, error) {
		invocations.Add(1)
		return nil, errors.New("engine init failed")
	})

	_, err := p.Acquire(context.Background())
	require.Error(t, err)
	_, err = p.Acquire(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), invocations.Load())
}

func TestProvider_AcquireHonorsContextCancellation(t *testing.T) {
	p := NewProvider()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSQLiteEngine_OpenDatabase(t *testing.T) {
	data := buildDataset(t)

	factory := SQLiteFactory()
	eng, err := factory()
	require.NoError(t, err)

	h, err := eng.OpenDatabase(data)
	require.NoError(t, err)

	var count int
	require.NoError(t, h.DB.QueryRow("SELECT COUNT(*) FROM prices").Scan(&count))
	assert.Equal(t, 2, count)

	backing := h.path
	require.NoError(t, h.Close())
	_, statErr := os.Stat(backing)
	assert.True(t, os.IsNotExist(statErr), "backing temp file must be removed on Close")
}

func TestSQLiteEngine_OpenDatabaseEmptyBlob(t *testing.T) {
	eng := &sqliteEngine{}
	_, err := eng.OpenDatabase(nil)
	assert.Error(t, err)
}
