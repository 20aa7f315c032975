package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capgate/capgate/internal/authz/domain"
)

func TestSnapshotStore_Defaults(t *testing.T) {
	store := NewSnapshotStore()

	snapshot := store.Current()
	require.NotNil(t, snapshot)
	require.NotNil(t, snapshot.Registry)
	assert.Empty(t, snapshot.Registry.List())
	assert.Empty(t, snapshot.Policies)
}

func TestSnapshotStore_Replace(t *testing.T) {
	store := NewSnapshotStore()

	registry := NewRegistry()
	require.NoError(t, registry.Register(domain.NewCapability("filesystem.read", "Read files")))

	store.Replace(&Snapshot{
		Registry: registry,
		Policies: []domain.Policy{
			domain.NewPolicy("default", "1.0").WithRule(domain.AllowRule("filesystem.read")),
		},
	})

	snapshot := store.Current()
	require.Len(t, snapshot.Policies, 1)
	assert.Equal(t, "default", snapshot.Policies[0].Name)

	_, err := snapshot.Registry.Lookup("filesystem.read")
	assert.NoError(t, err)
}

func TestSnapshotStore_ReplaceWithNilRegistry(t *testing.T) {
	store := NewSnapshotStore()
	store.Replace(&Snapshot{})

	snapshot := store.Current()
	require.NotNil(t, snapshot.Registry)
	assert.Empty(t, snapshot.Registry.List())
}

func TestSnapshotStore_ConcurrentReadsDuringReplace(t *testing.T) {
	store := NewSnapshotStore()

	registry := NewRegistry()
	require.NoError(t, registry.Register(domain.NewCapability("filesystem.read", "Read files")))
	populated := &Snapshot{
		Registry: registry,
		Policies: []domain.Policy{domain.NewPolicy("default", "1.0")},
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				snapshot := store.Current()
				// Every observed snapshot is coherent: a populated registry always
				// comes with its policy set.
				if len(snapshot.Registry.List()) == 1 {
					assert.Len(t, snapshot.Policies, 1)
				} else {
					assert.Empty(t, snapshot.Policies)
				}
			}
		}()
	}

	for j := 0; j < 100; j++ {
		store.Replace(populated)
		store.Replace(&Snapshot{Registry: NewRegistry()})
	}

	wg.Wait()
}
