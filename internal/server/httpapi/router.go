package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Vmatcha9/RTP-RecipeFinder/internal/server/metrics"
	"github.com/Vmatcha9/RTP-RecipeFinder/internal/server/repository"
	"github.com/Vmatcha9/RTP-RecipeFinder/internal/server/service"
)

type Router struct {
	services  *service.Services
	logger    *log.Logger
	collector *metrics.Collector
}

func NewRouter(services *service.Services, logger *log.Logger, collector *metrics.Collector) http.Handler {
	r := &Router{services: services, logger: logger, collector: collector}
	mux := chi.NewRouter()

	if collector != nil {
		mux.Use(r.metricsMiddleware)
		mux.Method(http.MethodGet, "/metrics", collector.Handler())
	}

	mux.Get("/health", r.handleHealth)
	mux.Post("/api/auth/register", r.handleRegister)
	mux.Post("/api/auth/login", r.handleLogin)

	mux.Group(func(pr chi.Router) {
		pr.Use(r.authMiddleware)
		pr.Get("/api/recipes/search", r.handleSearch)
		pr.Get("/api/recipes/provider/{recipeId}", r.handleProviderLookup)
		pr.Post("/api/recipes/save/{recipeId}", r.handleSaveRecipe)
		pr.Get("/api/recipes/saved", r.handleSavedRecipes)
		pr.Post("/api/recipes/recent/{recipeId}", r.handleRecordRecent)
		pr.Get("/api/recipes/recent", r.handleRecentlyViewed)
		pr.Get("/api/recipes/notes/{recipeId}", r.handleGetNote)
		pr.Post("/api/recipes/notes", r.handleSetNote)
		pr.Get("/api/users/allergens", r.handleGetAllergens)
		pr.Put("/api/users/allergens", r.handleSetAllergens)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeError maps service errors to HTTP statuses. fallback is the
// client-visible message for provider and persistence failures; internal
// detail goes only to the server log.
func (r *Router) writeError(w http.ResponseWriter, err error, fallback string) {
	var ve *repository.ValidationError
	switch {
	case errors.As(err, &ve):
		writeMessage(w, http.StatusBadRequest, "Missing or invalid fields: "+strings.Join(ve.Fields, ", "))
	case errors.Is(err, repository.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "User not found")
	case errors.Is(err, repository.ErrDuplicate):
		writeMessage(w, http.StatusConflict, "Username or email already in use")
	default:
		if r.logger != nil {
			r.logger.Printf("internal error: %v", err)
		}
		writeMessage(w, http.StatusInternalServerError, fallback)
	}
}
