package share

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"wiboard-complete/core"
	"wiboard-complete/handlers/auth"
	lib "wiboard-complete/library"
	"wiboard-complete/middleware"
	"wiboard-complete/stores/memory"
)

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	claims := &auth.AppClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
		Login:            "tester",
	}
	return req.WithContext(context.WithValue(req.Context(), middleware.ClaimsContextKey, claims))
}

func getRequest(id string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v2/share/"+id, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func seedCollection(t *testing.T, store core.StateStore) {
	t.Helper()
	view, err := lib.Load(context.Background(), store, "user-1")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if err := view.SaveToCollection(context.Background(), "Travel", core.ImageRef{URL: "a.jpg", Title: "Beach"}); err != nil {
		t.Fatalf("SaveToCollection() failed: %v", err)
	}
}

func TestHandleCreateAndGet(t *testing.T) {
	store := memory.NewStore()
	seedCollection(t, store)

	rec := httptest.NewRecorder()
	HandleCreate(store)(rec, authedRequest(http.MethodPost, "/api/v2/share", `{"name":"Travel"}`))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected a snapshot id")
	}

	rec = httptest.NewRecorder()
	HandleGet(store)(rec, getRequest(created.ID))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var snap core.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if snap.Name != "Travel" || len(snap.Images) != 1 || snap.Images[0].URL != "a.jpg" {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestHandleCreate_SnapshotIsFrozen(t *testing.T) {
	store := memory.NewStore()
	seedCollection(t, store)

	rec := httptest.NewRecorder()
	HandleCreate(store)(rec, authedRequest(http.MethodPost, "/api/v2/share", `{"name":"Travel"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	// Mutating the collection after sharing must not change the snapshot.
	view, err := lib.Load(context.Background(), store, "user-1")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if err := view.DeleteCollection(context.Background(), "Travel"); err != nil {
		t.Fatalf("DeleteCollection() failed: %v", err)
	}

	rec = httptest.NewRecorder()
	HandleGet(store)(rec, getRequest(created.ID))
	var snap core.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if len(snap.Images) != 1 {
		t.Errorf("snapshot changed after collection was deleted: %+v", snap)
	}
}

func TestHandleCreate_UnknownCollection(t *testing.T) {
	store := memory.NewStore()

	rec := httptest.NewRecorder()
	HandleCreate(store)(rec, authedRequest(http.MethodPost, "/api/v2/share", `{"name":"Missing"}`))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleCreate_NoClaims(t *testing.T) {
	store := memory.NewStore()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v2/share", strings.NewReader(`{"name":"Travel"}`))
	HandleCreate(store)(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestHandleGet_NotFound(t *testing.T) {
	store := memory.NewStore()

	rec := httptest.NewRecorder()
	HandleGet(store)(rec, getRequest("01ARZ3NDEKTSV4RRFFQ69G5FAV"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
