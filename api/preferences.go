package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"dashprefs/preference"
)

// maxBodyBytes caps a PUT body.
const maxBodyBytes = 1 << 20

func writeDocument(w http.ResponseWriter, doc preference.Document) {
	sections := doc.Sections
	if sections == nil {
		sections = preference.Sections{}
	}
	if doc.Revision != "" {
		w.Header().Set("ETag", `"`+doc.Revision+`"`)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sections)
}

// getPreferences returns the user's sections. A user without stored
// preferences gets an empty object, not a 404.
func (h *handler) getPreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	doc, _ := h.preferences.Get(userID)
	writeDocument(w, doc)
}

// putPreferences merges the top-level sections of the body into the user's
// document. Sections not named in the body are left alone.
func (h *handler) putPreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var sections preference.Sections
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&sections); err != nil || sections == nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	doc, err := h.preferences.Merge(userID, sections)
	if err != nil {
		h.log.Error("save preferences",
			zap.String("user", userID),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		http.Error(w, "failed to save preferences", http.StatusInternalServerError)
		return
	}
	writeDocument(w, doc)
}

func (h *handler) deletePreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := h.preferences.Delete(userID); err != nil {
		if errors.Is(err, preference.ErrNotFound) {
			http.Error(w, "preferences not found", http.StatusNotFound)
			return
		}
		h.log.Error("delete preferences", zap.String("user", userID), zap.Error(err))
		http.Error(w, "failed to delete preferences", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
