// Package mongodb persists users and recipes in MongoDB. Every mutation
// of a user's association state is a single update against the user
// document, so concurrent requests for the same user cannot lose writes
// the way separate read-then-write round trips would.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Vmatcha9/RTP-RecipeFinder/internal/server/repository"
	"github.com/Vmatcha9/RTP-RecipeFinder/internal/shared/models"
)

type Repository struct {
	client  *mongo.Client
	users   *mongo.Collection
	recipes *mongo.Collection
}

type userDoc struct {
	ID             string              `bson:"_id"`
	Username       string              `bson:"username"`
	Email          string              `bson:"email"`
	Password       string              `bson:"password"`
	SavedRecipes   []string            `bson:"savedRecipes"`
	RecentlyViewed []string            `bson:"recentlyViewed"`
	RecipeNotes    []models.RecipeNote `bson:"recipeNotes"`
	Allergens      []string            `bson:"allergens"`
	CreatedAt      time.Time           `bson:"createdAt"`
}

func New(ctx context.Context, uri, database string) (*Repository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	db := client.Database(database)
	r := &Repository{
		client:  client,
		users:   db.Collection("users"),
		recipes: db.Collection("recipes"),
	}
	if err := r.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	_, err := r.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
	})
	if err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	_, err = r.recipes.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "spoonacularId", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("recipe indexes: %w", err)
	}
	return nil
}

func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// Users

func (r *Repository) CreateUser(ctx context.Context, username, email string, passwordHash []byte) (models.User, error) {
	doc := userDoc{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		Password:  string(passwordHash),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, repository.ErrDuplicate
		}
		return models.User{}, err
	}
	return models.User{ID: doc.ID, Username: username, Email: email, CreatedAt: doc.CreatedAt}, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (string, []byte, error) {
	var doc userDoc
	err := r.users.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil, repository.ErrNotFound
		}
		return "", nil, err
	}
	return doc.ID, []byte(doc.Password), nil
}

// Recipes

// UpsertRecipe creates the recipe document on first save. $setOnInsert
// against the unique spoonacularId index means the first writer wins and
// later saves of the same external id read back the existing document.
func (r *Repository) UpsertRecipe(ctx context.Context, rec models.Recipe) (models.Recipe, error) {
	filter := bson.D{{Key: "spoonacularId", Value: rec.SpoonacularID}}
	update := bson.D{{Key: "$setOnInsert", Value: bson.D{
		{Key: "_id", Value: uuid.NewString()},
		{Key: "spoonacularId", Value: rec.SpoonacularID},
		{Key: "title", Value: rec.Title},
		{Key: "image", Value: rec.Image},
		{Key: "readyInMinutes", Value: rec.ReadyInMinutes},
		{Key: "servings", Value: rec.Servings},
		{Key: "sourceUrl", Value: rec.SourceURL},
		{Key: "createdAt", Value: time.Now().UTC()},
	}}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var out models.Recipe
	err := r.recipes.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if mongo.IsDuplicateKeyError(err) {
		// concurrent first save won the upsert; read its document
		err = r.recipes.FindOne(ctx, filter).Decode(&out)
	}
	if err != nil {
		return models.Recipe{}, err
	}
	return out, nil
}

func (r *Repository) AddSavedRecipe(ctx context.Context, userID, recipeDocID string) error {
	update := bson.D{{Key: "$addToSet", Value: bson.D{{Key: "savedRecipes", Value: recipeDocID}}}}
	res, err := r.users.UpdateOne(ctx, bson.D{{Key: "_id", Value: userID}}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *Repository) ListSavedRecipes(ctx context.Context, userID string) ([]models.Recipe, error) {
	doc, err := r.findUser(ctx, userID, "savedRecipes")
	if err != nil {
		return nil, err
	}
	if len(doc.SavedRecipes) == 0 {
		return []models.Recipe{}, nil
	}
	cur, err := r.recipes.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: doc.SavedRecipes}}}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	byID := make(map[string]models.Recipe, len(doc.SavedRecipes))
	for cur.Next(ctx) {
		var rec models.Recipe
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		byID[rec.ID] = rec
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	// keep insertion order of the saved set
	out := make([]models.Recipe, 0, len(byID))
	for _, id := range doc.SavedRecipes {
		if rec, ok := byID[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Recently viewed

func (r *Repository) PushRecentlyViewed(ctx context.Context, userID, externalID string, limit int) error {
	res, err := r.users.UpdateOne(ctx, bson.D{{Key: "_id", Value: userID}}, recentPipeline(externalID, limit))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *Repository) GetRecentlyViewed(ctx context.Context, userID string) ([]string, error) {
	doc, err := r.findUser(ctx, userID, "recentlyViewed")
	if err != nil {
		return nil, err
	}
	if doc.RecentlyViewed == nil {
		return []string{}, nil
	}
	return doc.RecentlyViewed, nil
}

// Notes

func (r *Repository) GetNote(ctx context.Context, userID, recipeID string) (string, error) {
	doc, err := r.findUser(ctx, userID, "recipeNotes")
	if err != nil {
		return "", err
	}
	for _, n := range doc.RecipeNotes {
		if n.RecipeID == recipeID {
			return n.Notes, nil
		}
	}
	return "", nil
}

func (r *Repository) SetNote(ctx context.Context, userID, recipeID, text string) error {
	res, err := r.users.UpdateOne(ctx, bson.D{{Key: "_id", Value: userID}}, notePipeline(recipeID, text))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Allergens

func (r *Repository) GetAllergens(ctx context.Context, userID string) ([]string, error) {
	doc, err := r.findUser(ctx, userID, "allergens")
	if err != nil {
		return nil, err
	}
	if doc.Allergens == nil {
		return []string{}, nil
	}
	return doc.Allergens, nil
}

func (r *Repository) SetAllergens(ctx context.Context, userID string, allergens []string) error {
	if allergens == nil {
		allergens = []string{}
	}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "allergens", Value: allergens}}}}
	res, err := r.users.UpdateOne(ctx, bson.D{{Key: "_id", Value: userID}}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *Repository) findUser(ctx context.Context, userID string, fields ...string) (userDoc, error) {
	proj := bson.D{}
	for _, f := range fields {
		proj = append(proj, bson.E{Key: f, Value: 1})
	}
	opts := options.FindOne().SetProjection(proj)
	var doc userDoc
	err := r.users.FindOne(ctx, bson.D{{Key: "_id", Value: userID}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return userDoc{}, repository.ErrNotFound
		}
		return userDoc{}, err
	}
	return doc, nil
}
