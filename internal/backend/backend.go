// Package backend selects and constructs the Persistence implementation
// named in configuration.
package backend

import (
	"fmt"

	"lumina/internal/config"
	"lumina/internal/jsonfile"
	"lumina/internal/log"
	"lumina/internal/storage"
	"lumina/internal/store"
	"lumina/internal/store/memory"
)

// Type names a persistence backend.
type Type string

const (
	MemoryBackend Type = "memory"
	FileBackend   Type = "file"
	SQLiteBackend Type = "sqlite"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result carries the constructed backend and its optional cleanup.
type Result struct {
	Persistence store.Persistence
	Cleanup     CleanupFunc
}

// Factory builds Persistence backends from application config.
type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

func (f *Factory) Create(cfg *config.Config) (*Result, error) {
	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch t {
	case SQLiteBackend:
		return f.createSQLite(cfg)
	case FileBackend:
		return f.createFile(cfg)
	case MemoryBackend:
		return f.createMemory()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", t)
	}
}

func (f *Factory) createSQLite(cfg *config.Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", log.FieldBackend, SQLiteBackend, "db_path", cfg.SQLiteDBPath)

	return &Result{
		Persistence: repo,
		Cleanup:     repo.Close,
	}, nil
}

func (f *Factory) createFile(cfg *config.Config) (*Result, error) {
	fileBackend, err := jsonfile.New(cfg.DataFilePath)
	if err != nil {
		return nil, fmt.Errorf("initialize file backend: %w", err)
	}

	f.logger.Info("Initialized file backend", log.FieldBackend, FileBackend, "path", cfg.DataFilePath)

	return &Result{
		Persistence: fileBackend,
		Cleanup:     nil,
	}, nil
}

func (f *Factory) createMemory() (*Result, error) {
	f.logger.Info("Initialized memory backend", log.FieldBackend, MemoryBackend)

	return &Result{
		Persistence: memory.New(),
		Cleanup:     nil,
	}, nil
}
