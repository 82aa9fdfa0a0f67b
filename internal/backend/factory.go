package backend

import (
	"context"
	"fmt"
	"log/slog"

	"kakeibo/internal/storage"
	"kakeibo/internal/storage/file"
	"kakeibo/internal/storage/memory"
	"kakeibo/internal/storage/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend(config)
	case FileBackend:
		return f.createFileBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	slot := memory.NewFromFile(config.SeedFile)

	f.logger.Info("Initialized memory backend", "slot_key", config.key(), "seed_file", config.SeedFile)

	return &BackendResult{
		Persister: storage.NewSlotPersister(slot),
		Location:  "memory:" + config.key(),
	}, nil
}

func (f *DefaultFactory) createFileBackend(config Config) (*BackendResult, error) {
	slot, err := file.New(config.SlotDir, config.key())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file slot: %w", err)
	}

	f.logger.Info("Initialized file backend", "path", slot.Path())

	return &BackendResult{
		Persister: storage.NewSlotPersister(slot),
		Location:  slot.Path(),
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := sqlite.NewRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath, "slot_key", config.key())

	return &BackendResult{
		Persister: storage.NewSlotPersister(repo.Slot(config.key())),
		Location:  config.SQLiteDBPath + "#" + config.key(),
		Cleanup:   repo.Close,
	}, nil
}
