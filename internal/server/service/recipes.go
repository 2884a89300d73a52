package service

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Vmatcha9/RTP-RecipeFinder/internal/server/repository"
	"github.com/Vmatcha9/RTP-RecipeFinder/internal/shared/models"
)

// recentlyViewedLimit caps the recently-viewed history. Views past the
// cap evict from the tail (move-to-front policy).
const recentlyViewedLimit = 10

// RecipeService owns all reads and writes of a user's recipe association
// state plus the provider search proxy. Every operation is scoped to the
// user id produced by the auth middleware.
type RecipeService struct {
	repo        Repository
	provider    RecipeProvider
	recentLimit int
}

type saveInput struct {
	RecipeID string `json:"recipeId"`
	models.RecipeMetadata
}

func (in saveInput) validate() error {
	return toValidationError(validation.ValidateStruct(&in,
		validation.Field(&in.RecipeID, validation.Required),
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.Image, validation.Required),
		validation.Field(&in.ReadyInMinutes, validation.Required),
		validation.Field(&in.Servings, validation.Required),
		validation.Field(&in.SourceURL, validation.Required),
	))
}

// SaveRecipe caches the provider metadata (first save wins, duplicates
// impossible) and adds the recipe to the user's saved set. Saving an
// already-saved recipe is a no-op, not an error.
func (s *RecipeService) SaveRecipe(ctx context.Context, userID, externalID string, md models.RecipeMetadata) error {
	if err := (saveInput{RecipeID: externalID, RecipeMetadata: md}).validate(); err != nil {
		return err
	}
	rec, err := s.repo.UpsertRecipe(ctx, models.Recipe{
		SpoonacularID:  externalID,
		Title:          md.Title,
		Image:          md.Image,
		ReadyInMinutes: md.ReadyInMinutes,
		Servings:       md.Servings,
		SourceURL:      md.SourceURL,
	})
	if err != nil {
		return err
	}
	return s.repo.AddSavedRecipe(ctx, userID, rec.ID)
}

func (s *RecipeService) SavedRecipes(ctx context.Context, userID string) ([]models.Recipe, error) {
	return s.repo.ListSavedRecipes(ctx, userID)
}

// RecordRecentlyViewed moves externalID to the front of the user's
// history, dropping any older occurrence and trimming to the cap.
func (s *RecipeService) RecordRecentlyViewed(ctx context.Context, userID, externalID string) error {
	if externalID == "" {
		return &repository.ValidationError{Fields: []string{"recipeId"}}
	}
	return s.repo.PushRecentlyViewed(ctx, userID, externalID, s.recentLimit)
}

func (s *RecipeService) RecentlyViewed(ctx context.Context, userID string) ([]string, error) {
	return s.repo.GetRecentlyViewed(ctx, userID)
}

// Note returns the stored note text, or "" when none exists.
func (s *RecipeService) Note(ctx context.Context, userID, recipeID string) (string, error) {
	return s.repo.GetNote(ctx, userID, recipeID)
}

// SetNote replaces the note for recipeID or appends a new one. A user
// never holds more than one note entry per recipe id.
func (s *RecipeService) SetNote(ctx context.Context, userID, recipeID, text string) error {
	if recipeID == "" {
		return &repository.ValidationError{Fields: []string{"recipeId"}}
	}
	return s.repo.SetNote(ctx, userID, recipeID, text)
}

func (s *RecipeService) Allergens(ctx context.Context, userID string) ([]string, error) {
	return s.repo.GetAllergens(ctx, userID)
}

func (s *RecipeService) SetAllergens(ctx context.Context, userID string, allergens []string) error {
	return s.repo.SetAllergens(ctx, userID, allergens)
}

// Search forwards the query to the provider and filters out recipes
// whose ingredient lines contain any comma-separated allergen term.
func (s *RecipeService) Search(ctx context.Context, query, cuisineType, maxTime, allergens string) ([]map[string]any, error) {
	recipes, err := s.provider.Search(ctx, query, cuisineType, maxTime)
	if err != nil {
		return nil, err
	}
	if allergens == "" {
		return recipes, nil
	}
	return filterAllergens(recipes, strings.Split(allergens, ",")), nil
}

// Lookup fetches a single provider recipe by external id.
func (s *RecipeService) Lookup(ctx context.Context, externalID string) (map[string]any, error) {
	return s.provider.RecipeByID(ctx, externalID)
}

// filterAllergens drops recipes where any allergen term appears as a
// case-insensitive literal substring of any ingredient line. Literal by
// contract: "dairy" does not match "milk", only the text "dairy" itself.
func filterAllergens(recipes []map[string]any, terms []string) []map[string]any {
	out := make([]map[string]any, 0, len(recipes))
	for _, rec := range recipes {
		if !containsAllergen(ingredientLines(rec), terms) {
			out = append(out, rec)
		}
	}
	return out
}

func containsAllergen(lines, terms []string) bool {
	for _, term := range terms {
		lower := strings.ToLower(term)
		for _, line := range lines {
			if strings.Contains(strings.ToLower(line), lower) {
				return true
			}
		}
	}
	return false
}

func ingredientLines(rec map[string]any) []string {
	raw, _ := rec["ingredientLines"].([]any)
	lines := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			lines = append(lines, s)
		}
	}
	return lines
}
