package library

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"wiboard-complete/core"
)

// ErrCollectionRequired is returned by ToggleSave when the image is not saved
// anywhere yet and no collection name was supplied. Saving is a two-phase
// interaction: the caller must come back with the user's collection choice.
var ErrCollectionRequired = errors.New("collection choice required to save")

// View is one UI surface's snapshot of a user's library. It reads both
// persisted records once at load time and mutates its own in-memory copy;
// every mutation re-persists the whole record.
//
// Views are deliberately not kept in sync with each other: a View holding a
// stale snapshot that mutates will overwrite whatever another View persisted
// in the meantime (last write wins per record). That mirrors how independent
// browser surfaces share origin storage, and consumers rely on it. A View is
// cheap, so load a fresh one per request or remount instead of holding one
// across user interactions.
type View struct {
	store  core.StateStore
	userID string

	collections []core.Collection
	likes       []core.LikedImage
}

// Load reads the user's collections and likes from the store and returns a
// View over them. Keys that were never written, and values that fail to
// parse, both yield the empty default. Only store I/O failures are returned
// as errors.
func Load(ctx context.Context, store core.StateStore, userID string) (*View, error) {
	v := &View{store: store, userID: userID}

	rawCols, err := store.GetState(ctx, userID, core.StateKeyCollections)
	if err != nil && !errors.Is(err, core.ErrStateNotFound) {
		return nil, err
	}
	v.collections = DecodeCollections(rawCols)

	rawLikes, err := store.GetState(ctx, userID, core.StateKeyLikes)
	if err != nil && !errors.Is(err, core.ErrStateNotFound) {
		return nil, err
	}
	v.likes = DecodeLikes(rawLikes)

	return v, nil
}

// Collections returns the snapshot's collection set. Callers must treat the
// result as read-only.
func (v *View) Collections() []core.Collection { return v.collections }

// Likes returns the snapshot's likes list. Callers must treat the result as
// read-only.
func (v *View) Likes() []core.LikedImage { return v.likes }

// Saved reports whether url is saved in any collection of this snapshot.
func (v *View) Saved(url string) bool { return ContainsURL(v.collections, url) }

// Liked reports whether url is in this snapshot's likes list.
func (v *View) Liked(url string) bool { return IsLiked(v.likes, url) }

// FindCollection returns the named collection from this snapshot, if present.
func (v *View) FindCollection(name string) (core.Collection, bool) {
	return FindByName(v.collections, name)
}

// SaveToCollection adds ref to the named collection (creating it if needed)
// and persists the updated set.
func (v *View) SaveToCollection(ctx context.Context, name string, ref core.ImageRef) error {
	v.collections = SaveToCollection(v.collections, name, ref)
	return v.persistCollections(ctx)
}

// RemoveFromAllCollections removes url everywhere, prunes emptied
// collections, and persists the updated set.
func (v *View) RemoveFromAllCollections(ctx context.Context, url string) error {
	v.collections = RemoveFromAllCollections(v.collections, url)
	return v.persistCollections(ctx)
}

// RemoveImageFromCollection removes url from the named collection only,
// pruning it if emptied, and persists the updated set.
func (v *View) RemoveImageFromCollection(ctx context.Context, name, url string) error {
	v.collections = RemoveImageFromCollection(v.collections, name, url)
	return v.persistCollections(ctx)
}

// DeleteCollection drops the named collection with all its images and
// persists the updated set. Confirmation is the caller's concern.
func (v *View) DeleteCollection(ctx context.Context, name string) error {
	v.collections = DeleteCollection(v.collections, name)
	return v.persistCollections(ctx)
}

// ToggleSave drives the Save/Saved button. An image that is currently saved
// anywhere is removed from all collections. An unsaved image needs a
// collection choice: with an empty collectionName the toggle stops and
// returns ErrCollectionRequired so the caller can ask the user, otherwise ref
// is saved into that collection. Returns whether the image is saved after the
// toggle.
func (v *View) ToggleSave(ctx context.Context, collectionName string, ref core.ImageRef) (bool, error) {
	if v.Saved(ref.URL) {
		return false, v.RemoveFromAllCollections(ctx, ref.URL)
	}
	if collectionName == "" {
		return false, ErrCollectionRequired
	}
	if err := v.SaveToCollection(ctx, collectionName, ref); err != nil {
		return true, err
	}
	return true, nil
}

// Like appends entry to the likes list (dedup by url) and persists it.
func (v *View) Like(ctx context.Context, entry core.LikedImage) error {
	v.likes = Like(v.likes, entry)
	return v.persistLikes(ctx)
}

// Unlike removes url from the likes list and persists it.
func (v *View) Unlike(ctx context.Context, url string) error {
	v.likes = Unlike(v.likes, url)
	return v.persistLikes(ctx)
}

// persistCollections writes the whole collection set back under its key.
// On write failure the in-memory snapshot keeps the change; durability is
// best effort and the error goes back to the caller.
func (v *View) persistCollections(ctx context.Context) error {
	data, err := json.Marshal(v.collections)
	if err != nil {
		return err
	}
	if err := v.store.PutState(ctx, v.userID, core.StateKeyCollections, data); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": v.userID,
			"key":     core.StateKeyCollections,
		}).WithError(err).Warn("Failed to persist collections, in-memory view keeps the change")
		return err
	}
	return nil
}

func (v *View) persistLikes(ctx context.Context) error {
	data, err := json.Marshal(v.likes)
	if err != nil {
		return err
	}
	if err := v.store.PutState(ctx, v.userID, core.StateKeyLikes, data); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": v.userID,
			"key":     core.StateKeyLikes,
		}).WithError(err).Warn("Failed to persist likes, in-memory view keeps the change")
		return err
	}
	return nil
}
