package database

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/alfonmga/hodlbitcoin/src/engine"
	"github.com/alfonmga/hodlbitcoin/src/logger"
)

// Binder pairs an engine with a raw dataset blob and keeps exactly one open
// database handle for the current (engine, data) pair. Either input may arrive
// first; the bind happens once both are present and again whenever one of them
// genuinely changes.
type Binder struct {
	mu     sync.Mutex
	engine engine.Engine
	data   []byte
	handle *engine.DBHandle
}

func NewBinder() *Binder {
	return &Binder{}
}

// SetEngine installs the engine and rebinds if the dataset is already present.
// Setting the same engine again is a no-op.
func (b *Binder) SetEngine(e engine.Engine) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e == b.engine {
		return nil
	}
	b.engine = e
	return b.rebindLocked()
}

// SetData installs the dataset blob and rebinds if the engine is already
// present. Byte-identical data does not trigger a rebind.
func (b *Binder) SetData(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if bytes.Equal(data, b.data) {
		return nil
	}
	b.data = data
	return b.rebindLocked()
}

// Handle returns the current database handle, or nil while either input is
// still absent.
func (b *Binder) Handle() *engine.DBHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handle
}

// Close releases the current handle, if any.
func (b *Binder) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := b.handle
	b.handle = nil
	return h.Close()
}

func (b *Binder) rebindLocked() error {
	// The old handle never outlives a changed input.
	if b.handle != nil {
		if err := b.handle.Close(); err != nil {
			logger.L.Warn("Failed to close previous dataset handle", "error", err)
		}
		b.handle = nil
	}
	if b.engine == nil || b.data == nil {
		return nil
	}
	h, err := b.engine.OpenDatabase(b.data)
	if err != nil {
		return fmt.Errorf("binding dataset: %w", err)
	}
	b.handle = h
	logger.L.Info("Dataset bound", "bytes", len(b.data))
	return nil
}
