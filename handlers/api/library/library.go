package library

import (
	"encoding/json"
	"errors"
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

// Every handler loads a fresh library view for the request, mirroring how a
// frontend surface reads the persisted state once on mount. Two clients
// mutating concurrently get last-write-wins per record, same as two open
// browser views sharing origin storage.

func requestClaims(w http.ResponseWriter, r *http.Request) (*auth.AppClaims, bool) {
	claims, ok := r.Context().Value(middleware.ClaimsContextKey).(*auth.AppClaims)
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, map[string]string{"error": "User claims not found"})
		return nil, false
	}
	return claims, true
}

func loadView(w http.ResponseWriter, r *http.Request, store stores.Store, userID string) (*lib.View, bool) {
	view, err := lib.Load(r.Context(), store, userID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"error":  err,
			"userID": userID,
		}).Error("Failed to load library state")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Failed to load library"})
		return nil, false
	}
	return view, true
}

func HandleListCollections(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requestClaims(w, r)
		if !ok {
			return
		}
		view, ok := loadView(w, r, store, claims.Subject)
		if !ok {
			return
		}
		render.JSON(w, r, view.Collections())
	}
}

// HandleSaveImage puts an image into the named collection, creating the
// collection on first save. Saving the same url twice is absorbed by dedup.
func HandleSaveImage(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requestClaims(w, r)
		if !ok {
			return
		}

		name := chi.URLParam(r, "name")
		if name == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Collection name is required"})
			return
		}

		var ref core.ImageRef
		if err := json.NewDecoder(r.Body).Decode(&ref); err != nil || ref.URL == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Image url is required"})
			return
		}

		view, ok := loadView(w, r, store, claims.Subject)
		if !ok {
			return
		}
		if err := view.SaveToCollection(r.Context(), name, ref); err != nil {
			logrus.WithFields(logrus.Fields{
				"error":      err,
				"userID":     claims.Subject,
				"collection": name,
			}).Error("Failed to save image to collection")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to save image"})
			return
		}
		render.JSON(w, r, view.Collections())
	}
}

func HandleDeleteCollection(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requestClaims(w, r)
		if !ok {
			return
		}

		name := chi.URLParam(r, "name")
		if name == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Collection name is required"})
			return
		}

		view, ok := loadView(w, r, store, claims.Subject)
		if !ok {
			return
		}
		// Unknown names are a no-op, not an error.
		if err := view.DeleteCollection(r.Context(), name); err != nil {
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to delete collection"})
			return
		}
		render.JSON(w, r, view.Collections())
	}
}

// HandleRemoveImage removes a url from one collection, pruning the
// collection when its last image goes.
func HandleRemoveImage(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requestClaims(w, r)
		if !ok {
			return
		}

		name := chi.URLParam(r, "name")
		url := r.URL.Query().Get("url")
		if name == "" || url == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Collection name and image url are required"})
			return
		}

		view, ok := loadView(w, r, store, claims.Subject)
		if !ok {
			return
		}
		if err := view.RemoveImageFromCollection(r.Context(), name, url); err != nil {
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to remove image"})
			return
		}
		render.JSON(w, r, view.Collections())
	}
}

// HandleUnsave removes a url from every collection the user has.
func HandleUnsave(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requestClaims(w, r)
		if !ok {
			return
		}

		url := r.URL.Query().Get("url")
		if url == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Image url is required"})
			return
		}

		view, ok := loadView(w, r, store, claims.Subject)
		if !ok {
			return
		}
		if err := view.RemoveFromAllCollections(r.Context(), url); err != nil {
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to unsave image"})
			return
		}
		render.JSON(w, r, view.Collections())
	}
}

func HandleSavedState(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requestClaims(w, r)
		if !ok {
			return
		}

		url := r.URL.Query().Get("url")
		if url == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Image url is required"})
			return
		}

		view, ok := loadView(w, r, store, claims.Subject)
		if !ok {
			return
		}
		render.JSON(w, r, map[string]bool{"saved": view.Saved(url)})
	}
}

// HandleToggleSave drives the Save/Saved button. A saved image is removed
// from every collection. An unsaved one needs a collection choice in the
// request; without it the handler answers 422 so the frontend can ask the
// user and retry.
func HandleToggleSave(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requestClaims(w, r)
		if !ok {
			return
		}

		var req struct {
			Collection string        `json:"collection"`
			Image      core.ImageRef `json:"image"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Image.URL == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Image url is required"})
			return
		}

		view, ok := loadView(w, r, store, claims.Subject)
		if !ok {
			return
		}

		saved, err := view.ToggleSave(r.Context(), req.Collection, req.Image)
		if errors.Is(err, lib.ErrCollectionRequired) {
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, map[string]any{
				"error":            "Collection choice required",
				"needs_collection": true,
			})
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error":  err,
				"userID": claims.Subject,
				"url":    req.Image.URL,
			}).Error("Failed to toggle saved state")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to toggle saved state"})
			return
		}
		render.JSON(w, r, map[string]bool{"saved": saved})
	}
}

func HandleListLikes(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requestClaims(w, r)
		if !ok {
			return
		}
		view, ok := loadView(w, r, store, claims.Subject)
		if !ok {
			return
		}
		render.JSON(w, r, view.Likes())
	}
}

func HandleLike(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requestClaims(w, r)
		if !ok {
			return
		}

		var entry core.LikedImage
		if err := json.NewDecoder(r.Body).Decode(&entry); err != nil || entry.URL == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Image url is required"})
			return
		}
		if entry.Collection == "" {
			entry.Collection = "Untitled"
		}

		view, ok := loadView(w, r, store, claims.Subject)
		if !ok {
			return
		}
		if err := view.Like(r.Context(), entry); err != nil {
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to like image"})
			return
		}
		render.JSON(w, r, view.Likes())
	}
}

func HandleUnlike(store stores.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requestClaims(w, r)
		if !ok {
			return
		}

		url := r.URL.Query().Get("url")
		if url == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Image url is required"})
			return
		}

		view, ok := loadView(w, r, store, claims.Subject)
		if !ok {
			return
		}
		if err := view.Unlike(r.Context(), url); err != nil {
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to unlike image"})
			return
		}
		render.JSON(w, r, view.Likes())
	}
}
