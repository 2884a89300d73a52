// Package memstore is an in-memory implementation of the service
// repository, used by tests so they run without a MongoDB instance.
// Mutations take a single lock, matching the per-document atomicity the
// mongodb implementation gets from single-update writes.
package memstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Vmatcha9/RTP-RecipeFinder/internal/server/repository"
	"github.com/Vmatcha9/RTP-RecipeFinder/internal/shared/models"
)

type userRecord struct {
	user         models.User
	passwordHash []byte
	savedRecipes []string
	recent       []string
	notes        []models.RecipeNote
	allergens    []string
}

type Store struct {
	mu        sync.Mutex
	users     map[string]*userRecord // by user id
	byEmail   map[string]string
	byName    map[string]string
	recipes   map[string]models.Recipe // by document id
	byExtID   map[string]string        // spoonacularId -> document id
	failWrite error
}

func New() *Store {
	return &Store{
		users:   make(map[string]*userRecord),
		byEmail: make(map[string]string),
		byName:  make(map[string]string),
		recipes: make(map[string]models.Recipe),
		byExtID: make(map[string]string),
	}
}

// FailWrites makes every mutating call return err until reset with nil.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrite = err
}

func (s *Store) CreateUser(_ context.Context, username, email string, passwordHash []byte) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite != nil {
		return models.User{}, s.failWrite
	}
	if _, ok := s.byEmail[email]; ok {
		return models.User{}, repository.ErrDuplicate
	}
	if _, ok := s.byName[username]; ok {
		return models.User{}, repository.ErrDuplicate
	}
	u := models.User{ID: uuid.NewString(), Username: username, Email: email, CreatedAt: time.Now().UTC()}
	s.users[u.ID] = &userRecord{user: u, passwordHash: passwordHash}
	s.byEmail[email] = u.ID
	s.byName[username] = u.ID
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return "", nil, repository.ErrNotFound
	}
	return id, s.users[id].passwordHash, nil
}

func (s *Store) UpsertRecipe(_ context.Context, rec models.Recipe) (models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite != nil {
		return models.Recipe{}, s.failWrite
	}
	if docID, ok := s.byExtID[rec.SpoonacularID]; ok {
		return s.recipes[docID], nil
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()
	s.recipes[rec.ID] = rec
	s.byExtID[rec.SpoonacularID] = rec.ID
	return rec, nil
}

func (s *Store) AddSavedRecipe(_ context.Context, userID, recipeDocID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite != nil {
		return s.failWrite
	}
	u, ok := s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	if !slices.Contains(u.savedRecipes, recipeDocID) {
		u.savedRecipes = append(u.savedRecipes, recipeDocID)
	}
	return nil
}

func (s *Store) ListSavedRecipes(_ context.Context, userID string) ([]models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := make([]models.Recipe, 0, len(u.savedRecipes))
	for _, docID := range u.savedRecipes {
		if rec, ok := s.recipes[docID]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *Store) PushRecentlyViewed(_ context.Context, userID, externalID string, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite != nil {
		return s.failWrite
	}
	u, ok := s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	recent := make([]string, 0, limit)
	recent = append(recent, externalID)
	for _, id := range u.recent {
		if id != externalID {
			recent = append(recent, id)
		}
	}
	if len(recent) > limit {
		recent = recent[:limit]
	}
	u.recent = recent
	return nil
}

func (s *Store) GetRecentlyViewed(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return slices.Clone(u.recent), nil
}

func (s *Store) GetNote(_ context.Context, userID, recipeID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return "", repository.ErrNotFound
	}
	for _, n := range u.notes {
		if n.RecipeID == recipeID {
			return n.Notes, nil
		}
	}
	return "", nil
}

func (s *Store) SetNote(_ context.Context, userID, recipeID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite != nil {
		return s.failWrite
	}
	u, ok := s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	for i := range u.notes {
		if u.notes[i].RecipeID == recipeID {
			u.notes[i].Notes = text
			return nil
		}
	}
	u.notes = append(u.notes, models.RecipeNote{RecipeID: recipeID, Notes: text})
	return nil
}

func (s *Store) GetAllergens(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return slices.Clone(u.allergens), nil
}

func (s *Store) SetAllergens(_ context.Context, userID string, allergens []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite != nil {
		return s.failWrite
	}
	u, ok := s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.allergens = slices.Clone(allergens)
	return nil
}

// NoteCount reports how many note entries a user holds for a recipe id.
// Test helper for the one-note-per-recipe invariant.
func (s *Store) NoteCount(userID, recipeID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return 0
	}
	n := 0
	for _, note := range u.notes {
		if note.RecipeID == recipeID {
			n++
		}
	}
	return n
}

// SavedCount reports how many saved entries reference a recipe document.
func (s *Store) SavedCount(userID, recipeDocID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return 0
	}
	n := 0
	for _, id := range u.savedRecipes {
		if id == recipeDocID {
			n++
		}
	}
	return n
}
