package share

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"wiboard-complete/core"
	"wiboard-complete/handlers/auth"
	lib "wiboard-complete/library"
	"wiboard-complete/middleware"
	"wiboard-complete/stores"
)

// HandleCreate freezes one of the caller's collections into a snapshot that
// anyone holding the returned id can read. The snapshot is a copy; editing
// the collection afterwards does not change it.
func HandleCreate(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(middleware.ClaimsContextKey).(*auth.AppClaims)
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "User claims not found"})
			return
		}

		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Collection name is required"})
			return
		}

		view, err := lib.Load(r.Context(), store, claims.Subject)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error":  err,
				"userID": claims.Subject,
			}).Error("Failed to load library state")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to load library"})
			return
		}

		collection, found := view.FindCollection(req.Name)
		if !found {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Collection not found"})
			return
		}

		id, err := store.CreateSnapshot(r.Context(), &core.Snapshot{
			Name:   collection.Name,
			Images: collection.Images,
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error":      err,
				"userID":     claims.Subject,
				"collection": req.Name,
			}).Error("Failed to create snapshot")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to create snapshot"})
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]string{"id": id})
	}
}

// HandleGet serves a shared snapshot. No auth: the id is the capability.
func HandleGet(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Snapshot id is required"})
			return
		}

		snapshot, err := store.FindSnapshot(r.Context(), id)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error":       err,
				"snapshot_id": id,
			}).Warn("Failed to get snapshot")
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Snapshot not found"})
			return
		}
		render.JSON(w, r, snapshot)
	}
}
