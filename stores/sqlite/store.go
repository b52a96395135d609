package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"wiboard-complete/core"
)

type sqliteStore struct {
	db *sql.DB
}

// NewStore creates a new SQLite-based store.
func NewStore(dataSourceName string) *sqliteStore {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		log.Fatalf("failed to open sqlite database: %v", err)
	}

	// One row per (user, record): the whole collections or likes document
	// is replaced on every write.
	stateTableStmt := `
	CREATE TABLE IF NOT EXISTS library_state (
		user_id TEXT NOT NULL,
		key TEXT NOT NULL,
		data BLOB,
		updated_at DATETIME,
		PRIMARY KEY (user_id, key)
	);`
	if _, err = db.Exec(stateTableStmt); err != nil {
		log.Fatalf("failed to create library_state table: %v", err)
	}

	snapshotTableStmt := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		name TEXT,
		data BLOB,
		created_at DATETIME
	);`
	if _, err = db.Exec(snapshotTableStmt); err != nil {
		log.Fatalf("failed to create snapshots table: %v", err)
	}

	return &sqliteStore{db}
}

// StateStore implementation

func (s *sqliteStore) GetState(ctx context.Context, userID, key string) ([]byte, error) {
	log := logrus.WithFields(logrus.Fields{"user_id": userID, "key": key})

	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM library_state WHERE user_id = ? AND key = ?", userID, key).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrStateNotFound
		}
		log.WithError(err).Error("Failed to retrieve state record")
		return nil, err
	}
	return data, nil
}

func (s *sqliteStore) PutState(ctx context.Context, userID, key string, data []byte) error {
	log := logrus.WithFields(logrus.Fields{"user_id": userID, "key": key, "data_length": len(data)})

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO library_state (user_id, key, data, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		userID, key, data, time.Now())
	if err != nil {
		log.WithError(err).Error("Failed to write state record")
		return err
	}
	log.Debug("State record written")
	return nil
}

// SnapshotStore implementation

func (s *sqliteStore) CreateSnapshot(ctx context.Context, snapshot *core.Snapshot) (string, error) {
	id := ulid.Make().String()
	log := logrus.WithFields(logrus.Fields{"snapshot_id": id, "collection": snapshot.Name})

	stored := *snapshot
	stored.ID = id
	stored.CreatedAt = time.Now()

	data, err := json.Marshal(&stored)
	if err != nil {
		log.WithError(err).Error("Failed to marshal snapshot")
		return "", err
	}

	_, err = s.db.ExecContext(ctx, "INSERT INTO snapshots (id, name, data, created_at) VALUES (?, ?, ?, ?)",
		id, stored.Name, data, stored.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to create snapshot")
		return "", err
	}
	log.Info("Snapshot created")
	return id, nil
}

func (s *sqliteStore) FindSnapshot(ctx context.Context, id string) (*core.Snapshot, error) {
	log := logrus.WithField("snapshot_id", id)

	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM snapshots WHERE id = ?", id).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Warn("Snapshot with specified ID not found")
			return nil, fmt.Errorf("snapshot with id %s not found", id)
		}
		log.WithError(err).Error("Failed to retrieve snapshot")
		return nil, err
	}

	var snapshot core.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		log.WithError(err).Error("Failed to unmarshal snapshot")
		return nil, err
	}
	return &snapshot, nil
}
