package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/capgate/capgate/internal/authz/domain"
	"github.com/capgate/capgate/internal/authz/repository/file"
	"github.com/capgate/capgate/internal/authz/repository/memory"
	"github.com/capgate/capgate/internal/authz/usecase"
)

// snapshotSource adapts the snapshot store to the use case interface.
type snapshotSource struct {
	store *memory.SnapshotStore
}

func (s snapshotSource) Current() (usecase.CapabilityRegistry, []domain.Policy) {
	snapshot := s.store.Current()
	return snapshot.Registry, snapshot.Policies
}

// SnapshotReloader re-reads the configured capability and policy files and
// atomically publishes the result. A failed load keeps the previous snapshot
// active.
type SnapshotReloader struct {
	capabilityFile string
	policyFile     string
	store          *memory.SnapshotStore
	logger         *slog.Logger
}

// Reload loads both files into a fresh snapshot and swaps it in.
func (r *SnapshotReloader) Reload(ctx context.Context) error {
	snapshot, err := file.LoadSnapshot(r.capabilityFile, r.policyFile)
	if err != nil {
		return err
	}

	r.store.Replace(snapshot)
	r.logger.Info("snapshot replaced",
		slog.Int("capabilities", len(snapshot.Registry.List())),
		slog.Int("policies", len(snapshot.Policies)),
	)

	return nil
}

// initSnapshotStore creates the snapshot store. When capability and policy
// files are configured, the initial load must succeed: serving with a
// half-configured snapshot is worse than not starting.
func (c *Container) initSnapshotStore() (*memory.SnapshotStore, error) {
	store := memory.NewSnapshotStore()

	if c.config.CapabilityFile == "" && c.config.PolicyFile == "" {
		return store, nil
	}

	snapshot, err := file.LoadSnapshot(c.config.CapabilityFile, c.config.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial snapshot: %w", err)
	}

	store.Replace(snapshot)
	return store, nil
}

// initReloader creates the snapshot reloader, or returns nil when no files
// are configured.
func (c *Container) initReloader() (*SnapshotReloader, error) {
	if c.config.CapabilityFile == "" && c.config.PolicyFile == "" {
		return nil, nil
	}

	store, err := c.SnapshotStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot store for reloader: %w", err)
	}

	return &SnapshotReloader{
		capabilityFile: c.config.CapabilityFile,
		policyFile:     c.config.PolicyFile,
		store:          store,
		logger:         c.Logger(),
	}, nil
}
