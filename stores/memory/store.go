package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"wiboard-complete/core"
)

// memStore implements both StateStore and SnapshotStore for in-memory
// storage. Each instance has its own data, so tests can inject a fresh one.
type memStore struct {
	mu sync.RWMutex
	// state is keyed by userID, then by record key ("collections", "likes").
	state     map[string]map[string][]byte
	snapshots map[string]*core.Snapshot
}

// NewStore creates a new in-memory store.
func NewStore() *memStore {
	return &memStore{
		state:     make(map[string]map[string][]byte),
		snapshots: make(map[string]*core.Snapshot),
	}
}

// GetState retrieves a user's state record. Part of the StateStore interface.
func (s *memStore) GetState(ctx context.Context, userID, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userState, ok := s.state[userID]
	if !ok {
		return nil, core.ErrStateNotFound
	}
	data, ok := userState[key]
	if !ok {
		return nil, core.ErrStateNotFound
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// PutState overwrites a user's state record. Part of the StateStore interface.
func (s *memStore) PutState(ctx context.Context, userID, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID == "" {
		return fmt.Errorf("userID cannot be empty")
	}

	userState, ok := s.state[userID]
	if !ok {
		userState = make(map[string][]byte)
		s.state[userID] = userState
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	userState[key] = stored

	logrus.WithFields(logrus.Fields{
		"user_id":     userID,
		"key":         key,
		"data_length": len(data),
	}).Debug("State record stored")
	return nil
}

// CreateSnapshot stores a new shared snapshot. Part of the SnapshotStore
// interface.
func (s *memStore) CreateSnapshot(ctx context.Context, snapshot *core.Snapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ulid.Make().String()
	stored := *snapshot
	stored.ID = id
	stored.CreatedAt = time.Now()
	s.snapshots[id] = &stored

	logrus.WithFields(logrus.Fields{
		"snapshot_id": id,
		"collection":  snapshot.Name,
		"image_count": len(snapshot.Images),
	}).Info("Snapshot created")
	return id, nil
}

// FindSnapshot retrieves a snapshot by its ID. Part of the SnapshotStore
// interface.
func (s *memStore) FindSnapshot(ctx context.Context, id string) (*core.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if snap, ok := s.snapshots[id]; ok {
		out := *snap
		return &out, nil
	}
	logrus.WithField("snapshot_id", id).Warn("Snapshot with specified ID not found")
	return nil, fmt.Errorf("snapshot with id %s not found", id)
}
