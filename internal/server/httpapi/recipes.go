package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Vmatcha9/RTP-RecipeFinder/internal/server/repository"
	"github.com/Vmatcha9/RTP-RecipeFinder/internal/shared/models"
)

func (r *Router) handleSearch(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	recipes, err := r.services.Recipes.Search(req.Context(),
		q.Get("query"), q.Get("cuisineType"), q.Get("time"), q.Get("allergens"))
	if err != nil {
		r.writeError(w, err, "Error fetching recipes")
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (r *Router) handleProviderLookup(w http.ResponseWriter, req *http.Request) {
	recipe, err := r.services.Recipes.Lookup(req.Context(), chi.URLParam(req, "recipeId"))
	if err != nil {
		r.writeError(w, err, "Error fetching recipe")
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (r *Router) handleSaveRecipe(w http.ResponseWriter, req *http.Request) {
	userID := getUserID(req.Context())
	recipeID := chi.URLParam(req, "recipeId")
	var md models.RecipeMetadata
	if err := json.NewDecoder(req.Body).Decode(&md); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := r.services.Recipes.SaveRecipe(req.Context(), userID, recipeID, md); err != nil {
		var ve *repository.ValidationError
		if errors.As(err, &ve) {
			writeMessage(w, http.StatusBadRequest, "Missing required recipe data: "+strings.Join(ve.Fields, ", "))
			return
		}
		r.writeError(w, err, "Error saving recipe")
		return
	}
	writeMessage(w, http.StatusOK, "Recipe saved successfully")
}

func (r *Router) handleSavedRecipes(w http.ResponseWriter, req *http.Request) {
	recipes, err := r.services.Recipes.SavedRecipes(req.Context(), getUserID(req.Context()))
	if err != nil {
		r.writeError(w, err, "Error fetching saved recipes")
		return
	}
	if recipes == nil {
		recipes = []models.Recipe{}
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (r *Router) handleRecordRecent(w http.ResponseWriter, req *http.Request) {
	userID := getUserID(req.Context())
	recipeID := chi.URLParam(req, "recipeId")
	if err := r.services.Recipes.RecordRecentlyViewed(req.Context(), userID, recipeID); err != nil {
		r.writeError(w, err, "Error updating recently viewed")
		return
	}
	writeMessage(w, http.StatusOK, "Recently viewed updated")
}

func (r *Router) handleRecentlyViewed(w http.ResponseWriter, req *http.Request) {
	recent, err := r.services.Recipes.RecentlyViewed(req.Context(), getUserID(req.Context()))
	if err != nil {
		r.writeError(w, err, "Error fetching recently viewed")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"recentlyViewed": recent})
}

func (r *Router) handleGetNote(w http.ResponseWriter, req *http.Request) {
	userID := getUserID(req.Context())
	note, err := r.services.Recipes.Note(req.Context(), userID, chi.URLParam(req, "recipeId"))
	if err != nil {
		r.writeError(w, err, "Error fetching notes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"notes": note})
}

type setNoteRequest struct {
	RecipeID string `json:"recipeId"`
	Notes    string `json:"notes"`
}

func (r *Router) handleSetNote(w http.ResponseWriter, req *http.Request) {
	userID := getUserID(req.Context())
	var body setNoteRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := r.services.Recipes.SetNote(req.Context(), userID, body.RecipeID, body.Notes); err != nil {
		r.writeError(w, err, "Error saving notes")
		return
	}
	writeMessage(w, http.StatusOK, "Notes saved successfully")
}

func (r *Router) handleGetAllergens(w http.ResponseWriter, req *http.Request) {
	allergens, err := r.services.Recipes.Allergens(req.Context(), getUserID(req.Context()))
	if err != nil {
		r.writeError(w, err, "Error fetching allergens")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"allergens": allergens})
}

type setAllergensRequest struct {
	Allergens []string `json:"allergens"`
}

func (r *Router) handleSetAllergens(w http.ResponseWriter, req *http.Request) {
	userID := getUserID(req.Context())
	var body setAllergensRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := r.services.Recipes.SetAllergens(req.Context(), userID, body.Allergens); err != nil {
		r.writeError(w, err, "Error updating allergens")
		return
	}
	writeMessage(w, http.StatusOK, "Allergens updated")
}
