package engine

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/alfonmga/hodlbitcoin/src/logger"
	_ "modernc.org/sqlite"
)

// Engine is an initialized query engine capable of opening database instances
// from a raw dataset blob.
type Engine interface {
	OpenDatabase(data []byte) (*DBHandle, error)
}

// Factory produces a ready engine. It is registered asynchronously by whoever
// provides the engine implementation, and invoked at most once per Provider.
type Factory func() (Engine, error)

// Provider bridges the gap between components that need an engine and the
// asynchronous registration of its factory. Acquire blocks until a factory has
// been registered, then invokes it exactly once and caches the result for the
// lifetime of the provider.
type Provider struct {
	mu       sync.Mutex
	ready    chan struct{}
	factory  Factory
	initOnce sync.Once
	engine   Engine
	initErr  error
}

func NewProvider() *Provider {
	return &Provider{ready: make(chan struct{})}
}

// Register publishes the engine factory. The first call wins; later calls are
// ignored. Safe to call from any goroutine.
func (p *Provider) Register(f Factory) {
	if f == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.ready:
		logger.L.Debug("Engine factory already registered, ignoring duplicate registration")
		return
	default:
	}
	p.factory = f
	close(p.ready)
}

// Acquire waits for a factory to be registered and returns the initialized
// engine. There is deliberately no timeout: if nothing ever registers, Acquire
// waits until ctx is cancelled. The factory runs exactly once even under
// concurrent Acquire calls; its result (or error) is cached.
func (p *Provider) Acquire(ctx context.Context) (Engine, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for engine factory: %w", ctx.Err())
	case <-p.ready:
	}

	p.initOnce.Do(func() {
		logger.L.Info("Engine factory registered, initializing engine")
		p.engine, p.initErr = p.factory()
	})
	if p.initErr != nil {
		return nil, fmt.Errorf("initializing engine: %w", p.initErr)
	}
	return p.engine, nil
}

// DBHandle is an open, read-only database instance backed by a private copy of
// the dataset blob. Close releases both the connection and the backing file.
type DBHandle struct {
	DB   *sql.DB
	path string
}

func (h *DBHandle) Close() error {
	if h == nil {
		return nil
	}
	err := h.DB.Close()
	if h.path != "" {
		if rmErr := os.Remove(h.path); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}

// SQLiteFactory returns the production engine factory, backed by the pure-Go
// sqlite driver.
func SQLiteFactory() Factory {
	return func() (Engine, error) {
		return &sqliteEngine{}, nil
	}
}

type sqliteEngine struct{}

// OpenDatabase materializes the blob as a private temp file and opens it
// read-only. The caller owns the returned handle.
func (e *sqliteEngine) OpenDatabase(data []byte) (*DBHandle, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("dataset blob is empty")
	}

	tmp, err := os.CreateTemp("", "hodl-dataset-*.sqlite3")
	if err != nil {
		return nil, fmt.Errorf("creating dataset temp file: %w", err)
	}
	path := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(path)
		return nil, fmt.Errorf("writing dataset temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("closing dataset temp file: %w", err)
	}

	dsn := "file:" + filepath.ToSlash(path) + "?mode=ro"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("opening dataset database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		os.Remove(path)
		return nil, fmt.Errorf("pinging dataset database: %w", err)
	}

	logger.L.Debug("Opened dataset database", "bytes", len(data), "path", path)
	return &DBHandle{DB: db, path: path}, nil
}
