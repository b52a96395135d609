package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"wiboard-complete/core"
)

type fsStore struct {
	basePath string
}

// NewStore creates a new filesystem-based store. State records live under
// basePath/state/<userID>/<key>.json, snapshots under basePath/snapshots/.
func NewStore(basePath string) *fsStore {
	for _, dir := range []string{
		filepath.Join(basePath, "state"),
		filepath.Join(basePath, "snapshots"),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("failed to create storage directory: %v", err)
		}
	}
	return &fsStore{basePath: basePath}
}

// statePath maps a (userID, key) pair onto a file, refusing anything that
// would escape the state directory.
func (s *fsStore) statePath(userID, key string) (string, error) {
	if userID == "" || key == "" {
		return "", fmt.Errorf("userID and key must not be empty")
	}
	if filepath.Base(userID) != userID || filepath.Base(key) != key {
		return "", fmt.Errorf("invalid state path component")
	}
	return filepath.Join(s.basePath, "state", userID, key+".json"), nil
}

// StateStore implementation

func (s *fsStore) GetState(ctx context.Context, userID, key string) ([]byte, error) {
	filePath, err := s.statePath(userID, key)
	if err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{"user_id": userID, "key": key, "path": filePath})

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrStateNotFound
		}
		log.WithError(err).Error("Failed to read state file")
		return nil, err
	}
	return data, nil
}

func (s *fsStore) PutState(ctx context.Context, userID, key string, data []byte) error {
	filePath, err := s.statePath(userID, key)
	if err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{"user_id": userID, "key": key, "path": filePath})

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		log.WithError(err).Error("Failed to create user state directory")
		return err
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		log.WithError(err).Error("Failed to write state file")
		return err
	}

	log.WithField("data_length", len(data)).Debug("State record written")
	return nil
}

// SnapshotStore implementation

func (s *fsStore) snapshotPath(id string) (string, error) {
	if id == "" || filepath.Base(id) != id {
		return "", fmt.Errorf("invalid snapshot id")
	}
	return filepath.Join(s.basePath, "snapshots", id+".json"), nil
}

func (s *fsStore) CreateSnapshot(ctx context.Context, snapshot *core.Snapshot) (string, error) {
	id := ulid.Make().String()
	filePath, err := s.snapshotPath(id)
	if err != nil {
		return "", err
	}
	log := logrus.WithFields(logrus.Fields{"snapshot_id": id, "path": filePath})

	stored := *snapshot
	stored.ID = id
	stored.CreatedAt = time.Now()

	data, err := json.Marshal(&stored)
	if err != nil {
		log.WithError(err).Error("Failed to marshal snapshot")
		return "", err
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		log.WithError(err).Error("Failed to write snapshot file")
		return "", err
	}

	log.Info("Snapshot created")
	return id, nil
}

func (s *fsStore) FindSnapshot(ctx context.Context, id string) (*core.Snapshot, error) {
	filePath, err := s.snapshotPath(id)
	if err != nil {
		return nil, err
	}
	log := logrus.WithFields(logrus.Fields{"snapshot_id": id, "path": filePath})

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Snapshot file not found")
			return nil, fmt.Errorf("snapshot with id %s not found", id)
		}
		log.WithError(err).Error("Failed to read snapshot file")
		return nil, err
	}

	var snapshot core.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		log.WithError(err).Error("Failed to unmarshal snapshot")
		return nil, err
	}
	return &snapshot, nil
}
