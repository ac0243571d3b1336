// Package persistence implements the commit-at-location collaborator: an
// in-memory etcd shim and a bbolt-backed disk writer, unified behind
// cryptograph.Committer.
package persistence

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/recert/clustercrypto/internal/artifact"
	"github.com/recert/clustercrypto/internal/cryptograph"
)

// EtcdShim is an in-memory stand-in for the cluster's etcd, keyed by
// Location. It is a single-process substitute for a real etcd cluster.
type EtcdShim struct {
	mu      sync.Mutex
	objects map[artifact.Location][]byte
	runID   string
}

var _ cryptograph.Committer = (*EtcdShim)(nil)

// NewEtcdShim builds an empty shim tagged with a fresh run identifier, used
// to correlate commits from one engine run in logs.
func NewEtcdShim() *EtcdShim {
	return &EtcdShim{
		objects: make(map[artifact.Location][]byte),
		runID:   uuid.NewString(),
	}
}

// RunID identifies this shim instance's commit run.
func (e *EtcdShim) RunID() string { return e.runID }

// CommitAtLocation writes serialized to loc, overwriting any prior value.
func (e *EtcdShim) CommitAtLocation(ctx context.Context, loc artifact.Location, serialized []byte) error {
	if loc.Kind != artifact.KindEtcd {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.objects[loc] = append([]byte(nil), serialized...)
	return nil
}

// Get returns the value committed at loc, if any, for tests and inspection.
func (e *EtcdShim) Get(loc artifact.Location) ([]byte, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.objects[loc]
	return v, ok
}

// Len reports how many distinct locations have been committed.
func (e *EtcdShim) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.objects)
}
