package library

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wiboard-complete/core"
	"wiboard-complete/stores/memory"
)

func TestView_LoadEmptyStore(t *testing.T) {
	ctx := context.Background()
	view, err := Load(ctx, memory.NewStore(), "user-1")
	require.NoError(t, err)

	assert.Empty(t, view.Collections())
	assert.Empty(t, view.Likes())
	assert.False(t, view.Saved("a.jpg"))
	assert.False(t, view.Liked("a.jpg"))
}

func TestView_SavePersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	view, err := Load(ctx, store, "user-1")
	require.NoError(t, err)
	require.NoError(t, view.SaveToCollection(ctx, "Travel", core.ImageRef{URL: "a.jpg", Title: "Beach"}))
	assert.True(t, view.Saved("a.jpg"))

	// A later surface reconstructs the same state from the store.
	reloaded, err := Load(ctx, store, "user-1")
	require.NoError(t, err)
	assert.True(t, reloaded.Saved("a.jpg"))
	found, ok := reloaded.FindCollection("Travel")
	require.True(t, ok)
	assert.Equal(t, "Beach", found.Images[0].Title)
}

func TestView_StateIsScopedPerUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	view, err := Load(ctx, store, "user-1")
	require.NoError(t, err)
	require.NoError(t, view.SaveToCollection(ctx, "Travel", core.ImageRef{URL: "a.jpg"}))

	other, err := Load(ctx, store, "user-2")
	require.NoError(t, err)
	assert.False(t, other.Saved("a.jpg"))
}

func TestView_MalformedStateLoadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.PutState(ctx, "user-1", core.StateKeyCollections, []byte(`{"broken":`)))
	require.NoError(t, store.PutState(ctx, "user-1", core.StateKeyLikes, []byte(`not json`)))

	view, err := Load(ctx, store, "user-1")
	require.NoError(t, err)
	assert.Empty(t, view.Collections())
	assert.Empty(t, view.Likes())
}

// Two surfaces loaded at different times do not see each other's writes, and
// the one holding the stale snapshot overwrites on its next mutation: last
// write wins for the whole record. This staleness is part of the contract,
// not a bug to engineer around.
func TestView_StaleSnapshotOverwrites(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	viewA, err := Load(ctx, store, "user-1")
	require.NoError(t, err)
	viewB, err := Load(ctx, store, "user-1")
	require.NoError(t, err)

	require.NoError(t, viewB.SaveToCollection(ctx, "Favs", core.ImageRef{URL: "x.jpg", Title: "X"}))

	// A still holds its empty snapshot; B's write is invisible to it.
	assert.False(t, viewA.Saved("x.jpg"))

	require.NoError(t, viewA.SaveToCollection(ctx, "Favs", core.ImageRef{URL: "y.jpg", Title: "Y"}))

	// A's write replaced the whole record: x.jpg is gone, not merged.
	final, err := Load(ctx, store, "user-1")
	require.NoError(t, err)
	assert.False(t, final.Saved("x.jpg"))
	assert.True(t, final.Saved("y.jpg"))
	favs, ok := final.FindCollection("Favs")
	require.True(t, ok)
	require.Len(t, favs.Images, 1)
	assert.Equal(t, "y.jpg", favs.Images[0].URL)
}

func TestView_LikesAndCollectionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	view, err := Load(ctx, store, "user-1")
	require.NoError(t, err)
	require.NoError(t, view.Like(ctx, core.LikedImage{URL: "a.jpg", Collection: "Beach"}))
	require.NoError(t, view.SaveToCollection(ctx, "Travel", core.ImageRef{URL: "a.jpg"}))

	require.NoError(t, view.RemoveFromAllCollections(ctx, "a.jpg"))
	assert.True(t, view.Liked("a.jpg"), "unsaving must not touch likes")

	require.NoError(t, view.Unlike(ctx, "a.jpg"))
	assert.False(t, view.Liked("a.jpg"))
}

func TestView_ToggleSave(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	view, err := Load(ctx, store, "user-1")
	require.NoError(t, err)

	// Unsaved with no collection choice: the toggle stops and asks.
	_, err = view.ToggleSave(ctx, "", core.ImageRef{URL: "a.jpg", Title: "Beach"})
	require.ErrorIs(t, err, ErrCollectionRequired)
	assert.False(t, view.Saved("a.jpg"))

	// Second phase with the user's choice saves it.
	saved, err := view.ToggleSave(ctx, "Travel", core.ImageRef{URL: "a.jpg", Title: "Beach"})
	require.NoError(t, err)
	assert.True(t, saved)
	assert.True(t, view.Saved("a.jpg"))

	// Toggling a saved image removes it everywhere, no choice needed.
	saved, err = view.ToggleSave(ctx, "", core.ImageRef{URL: "a.jpg"})
	require.NoError(t, err)
	assert.False(t, saved)
	assert.False(t, view.Saved("a.jpg"))
}

// failingStore accepts reads but rejects every write.
type failingStore struct {
	core.StateStore
}

func (failingStore) PutState(ctx context.Context, userID, key string, data []byte) error {
	return errors.New("quota exceeded")
}

func TestView_WriteFailureKeepsInMemoryChange(t *testing.T) {
	ctx := context.Background()
	view, err := Load(ctx, failingStore{memory.NewStore()}, "user-1")
	require.NoError(t, err)

	err = view.SaveToCollection(ctx, "Travel", core.ImageRef{URL: "a.jpg"})
	require.Error(t, err)

	// Durability failed but the view still reflects the attempted change
	// for the rest of its lifetime.
	assert.True(t, view.Saved("a.jpg"))
}
