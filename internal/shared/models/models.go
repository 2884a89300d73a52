package models

import "time"

// User owns all recipe association state. The password hash stays in the
// repository layer; this is the shape the API returns.
type User struct {
	ID        string    `json:"id" bson:"_id"`
	Username  string    `json:"username" bson:"username"`
	Email     string    `json:"email" bson:"email"`
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// Recipe caches provider metadata, keyed by the provider's external id.
// Created once on first save, never updated.
type Recipe struct {
	ID             string    `json:"id" bson:"_id"`
	SpoonacularID  string    `json:"spoonacularId" bson:"spoonacularId"`
	Title          string    `json:"title" bson:"title"`
	Image          string    `json:"image" bson:"image"`
	ReadyInMinutes int       `json:"readyInMinutes" bson:"readyInMinutes"`
	Servings       int       `json:"servings" bson:"servings"`
	SourceURL      string    `json:"sourceUrl" bson:"sourceUrl"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

// RecipeNote is a free-text note attached to an external recipe id.
// A user holds at most one note per recipe id.
type RecipeNote struct {
	RecipeID string `json:"recipeId" bson:"recipeId"`
	Notes    string `json:"notes" bson:"notes"`
}

// RecipeMetadata is the caller-supplied payload for saving a recipe.
type RecipeMetadata struct {
	Title          string `json:"title"`
	Image          string `json:"image"`
	ReadyInMinutes int    `json:"readyInMinutes"`
	Servings       int    `json:"servings"`
	SourceURL      string `json:"sourceUrl"`
}
