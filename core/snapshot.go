package core

import (
	"context"
	"time"
)

type (
	// Snapshot is a frozen, publicly readable copy of one collection,
	// created when a user shares it. It is decoupled from the live
	// library state: later edits to the collection do not change it.
	Snapshot struct {
		ID        string     `json:"id"`
		Name      string     `json:"name"`
		Images    []ImageRef `json:"images"`
		CreatedAt time.Time  `json:"createdAt"`
	}

	// SnapshotStore defines the persistence layer for shared snapshots.
	SnapshotStore interface {
		// CreateSnapshot stores a new snapshot and returns its id.
		CreateSnapshot(ctx context.Context, snapshot *Snapshot) (string, error)

		// FindSnapshot retrieves a snapshot by its id.
		FindSnapshot(ctx context.Context, id string) (*Snapshot, error)
	}
)
