package aws

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/oklog/ulid/v2"

	"wiboard-complete/core"
)

type s3Store struct {
	s3Client *s3.Client
	bucket   string
}

// NewStore creates a new S3-based store.
func NewStore(bucketName string) *s3Store {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	s3Client := s3.NewFromConfig(cfg)

	return &s3Store{
		s3Client: s3Client,
		bucket:   bucketName,
	}
}

// stateKey maps a (userID, key) pair onto an object key. Both components
// must be simple names, not paths.
func (s *s3Store) stateKey(userID, key string) (string, error) {
	for _, part := range []string{userID, key} {
		if part == "" || part == "." || part == ".." || path.Base(part) != part {
			return "", fmt.Errorf("invalid state key component %q", part)
		}
	}
	return path.Join("state", userID, key), nil
}

// StateStore implementation

func (s *s3Store) GetState(ctx context.Context, userID, key string) ([]byte, error) {
	objectKey, err := s.stateKey(userID, key)
	if err != nil {
		return nil, err
	}

	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, core.ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to get state %s for user %s: %v", key, userID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read state data: %v", err)
	}
	return data, nil
}

func (s *s3Store) PutState(ctx context.Context, userID, key string, data []byte) error {
	objectKey, err := s.stateKey(userID, key)
	if err != nil {
		return err
	}

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to write state %s for user %s: %v", key, userID, err)
	}
	return nil
}

// SnapshotStore implementation

func (s *s3Store) CreateSnapshot(ctx context.Context, snapshot *core.Snapshot) (string, error) {
	id := ulid.Make().String()

	stored := *snapshot
	stored.ID = id
	stored.CreatedAt = time.Now()

	data, err := json.Marshal(&stored)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %v", err)
	}

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path.Join("snapshots", id)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload snapshot: %v", err)
	}
	return id, nil
}

func (s *s3Store) FindSnapshot(ctx context.Context, id string) (*core.Snapshot, error) {
	if id == "" || path.Base(id) != id {
		return nil, fmt.Errorf("invalid snapshot id")
	}

	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path.Join("snapshots", id)),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("snapshot with id %s not found", id)
		}
		return nil, fmt.Errorf("failed to get snapshot %s: %v", id, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot data: %v", err)
	}

	var snapshot core.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot data: %v", err)
	}
	return &snapshot, nil
}
