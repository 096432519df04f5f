package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"dashprefs/preference"
)

func RegisterRoutes(pm *preference.Manager, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := &handler{preferences: pm, log: log}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	// Preferences API
	r.Get("/api/users/{userID}/preferences", h.getPreferences)
	r.Put("/api/users/{userID}/preferences", h.putPreferences)
	r.Delete("/api/users/{userID}/preferences", h.deletePreferences)

	return r
}

type handler struct {
	preferences *preference.Manager
	log         *zap.Logger
}
