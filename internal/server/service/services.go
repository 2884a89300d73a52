package service

import (
	"context"
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Vmatcha9/RTP-RecipeFinder/internal/server/config"
	"github.com/Vmatcha9/RTP-RecipeFinder/internal/server/repository"
	"github.com/Vmatcha9/RTP-RecipeFinder/internal/shared/models"
)

// Repository is the persistence surface the services need. Implemented
// by repository/mongodb for production and repository/memstore for tests.
// Every mutation is a single atomic update scoped to one user document.
type Repository interface {
	CreateUser(ctx context.Context, username, email string, passwordHash []byte) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (id string, passwordHash []byte, err error)

	UpsertRecipe(ctx context.Context, rec models.Recipe) (models.Recipe, error)
	AddSavedRecipe(ctx context.Context, userID, recipeDocID string) error
	ListSavedRecipes(ctx context.Context, userID string) ([]models.Recipe, error)

	PushRecentlyViewed(ctx context.Context, userID, externalID string, limit int) error
	GetRecentlyViewed(ctx context.Context, userID string) ([]string, error)

	GetNote(ctx context.Context, userID, recipeID string) (string, error)
	SetNote(ctx context.Context, userID, recipeID, text string) error

	GetAllergens(ctx context.Context, userID string) ([]string, error)
	SetAllergens(ctx context.Context, userID string, allergens []string) error
}

// RecipeProvider is the external recipe API. Implemented by the provider
// package; tests substitute a stub.
type RecipeProvider interface {
	Search(ctx context.Context, query, cuisineType, maxTime string) ([]map[string]any, error)
	RecipeByID(ctx context.Context, id string) (map[string]any, error)
}

type Services struct {
	Auth    *AuthService
	Recipes *RecipeService
}

func NewServices(repo Repository, prov RecipeProvider, cfg config.Config) *Services {
	return &Services{
		Auth:    &AuthService{repo: repo, jwtSecret: []byte(cfg.JWTSecret)},
		Recipes: &RecipeService{repo: repo, provider: prov, recentLimit: recentlyViewedLimit},
	}
}

// toValidationError flattens ozzo's per-field errors into a
// repository.ValidationError naming the offending fields.
func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for f := range verrs {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		return &repository.ValidationError{Fields: fields}
	}
	return err
}
