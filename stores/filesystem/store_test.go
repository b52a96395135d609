package filesystem

import (
	"context"
	"errors"
	"testing"

	"wiboard-complete/core"
)

func TestGetState_NotFound(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()

	_, err := store.GetState(ctx, "user-1", core.StateKeyCollections)
	if !errors.Is(err, core.ErrStateNotFound) {
		t.Errorf("GetState() error = %v, want ErrStateNotFound", err)
	}
}

func TestPutState_RoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()

	data := []byte(`[{"name":"Travel","images":[{"url":"a.jpg","title":"Beach"}]}]`)
	if err := store.PutState(ctx, "user-1", core.StateKeyCollections, data); err != nil {
		t.Fatalf("PutState() failed: %v", err)
	}

	got, err := store.GetState(ctx, "user-1", core.StateKeyCollections)
	if err != nil {
		t.Fatalf("GetState() failed: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("GetState() = %q, want %q", got, data)
	}
}

func TestPutState_OverwritesFully(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()

	if err := store.PutState(ctx, "user-1", core.StateKeyLikes, []byte(`["old entry"]`)); err != nil {
		t.Fatalf("PutState() failed: %v", err)
	}
	if err := store.PutState(ctx, "user-1", core.StateKeyLikes, []byte(`[]`)); err != nil {
		t.Fatalf("PutState() failed: %v", err)
	}

	got, err := store.GetState(ctx, "user-1", core.StateKeyLikes)
	if err != nil {
		t.Fatalf("GetState() failed: %v", err)
	}
	if string(got) != `[]` {
		t.Errorf("GetState() = %q, want %q", got, `[]`)
	}
}

func TestStatePath_RejectsTraversal(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()

	if err := store.PutState(ctx, "../evil", core.StateKeyLikes, []byte(`[]`)); err == nil {
		t.Error("PutState() should reject path traversal in userID")
	}
	if _, err := store.GetState(ctx, "user-1", "../../etc/passwd"); err == nil {
		t.Error("GetState() should reject path traversal in key")
	}
	if err := store.PutState(ctx, "", core.StateKeyLikes, []byte(`[]`)); err == nil {
		t.Error("PutState() should reject empty userID")
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()

	id, err := store.CreateSnapshot(ctx, &core.Snapshot{
		Name:   "Travel",
		Images: []core.ImageRef{{URL: "a.jpg", Title: "Beach"}, {URL: "b.jpg", Title: "Mountain"}},
	})
	if err != nil {
		t.Fatalf("CreateSnapshot() failed: %v", err)
	}

	snap, err := store.FindSnapshot(ctx, id)
	if err != nil {
		t.Fatalf("FindSnapshot() failed: %v", err)
	}
	if snap.ID != id {
		t.Errorf("FindSnapshot() ID = %q, want %q", snap.ID, id)
	}
	if snap.Name != "Travel" || len(snap.Images) != 2 {
		t.Errorf("FindSnapshot() returned wrong snapshot: %+v", snap)
	}
}

func TestFindSnapshot_NotFound(t *testing.T) {
	store := NewStore(t.TempDir())
	ctx := context.Background()

	if _, err := store.FindSnapshot(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV"); err == nil {
		t.Error("FindSnapshot() should return error for nonexistent ID")
	}
}
