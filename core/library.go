package core

import (
	"context"
	"errors"
)

// Persistence keys for the two independent library records. Likes and
// collections are separate domains; writing one never touches the other.
const (
	StateKeyCollections = "collections"
	StateKeyLikes       = "likes"
)

// ErrStateNotFound is returned by StateStore.GetState when the key was never
// written for that user.
var ErrStateNotFound = errors.New("state not found")

type (
	// ImageRef is the minimal record kept for a saved image. URL is the
	// identity used for dedup inside a collection.
	ImageRef struct {
		URL   string `json:"url"`
		Title string `json:"title"`
		ID    string `json:"id,omitempty"`
	}

	// Collection is a user-named, insertion-ordered group of images.
	// Names are unique within one user's collection set.
	Collection struct {
		Name   string     `json:"name"`
		Images []ImageRef `json:"images"`
	}

	// LikedImage is an entry in the flat likes list. Collection is a
	// free-text label captured at like time, not a reference to a
	// Collection.
	LikedImage struct {
		URL        string `json:"url"`
		Collection string `json:"collection"`
	}

	// StateStore is the durable key/value boundary for a user's library
	// state. Values are opaque JSON documents; a write fully replaces the
	// prior value under that key.
	StateStore interface {
		// GetState returns the raw value stored under key, or
		// ErrStateNotFound if the user never wrote it.
		GetState(ctx context.Context, userID, key string) ([]byte, error)

		// PutState overwrites the value stored under key.
		PutState(ctx context.Context, userID, key string, data []byte) error
	}
)
