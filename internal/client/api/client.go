// Package api is the HTTP client for the RecipeFinder server. The
// bearer token is an explicit field on the Client, never ambient state,
// so commands and tests control exactly which credential each request
// carries.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Vmatcha9/RTP-RecipeFinder/internal/shared/models"
)

type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL:    baseURL,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// apiError carries the server's {message} body alongside the status.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

func (c *Client) Register(ctx context.Context, username, email, password string) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodPost, "/api/auth/register", nil,
		map[string]string{"username": username, "email": email, "password": password}, &user)
	return user, err
}

// Login authenticates and returns the access token. The caller decides
// where to keep it; the client itself stores nothing.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out models.TokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil,
		map[string]string{"email": email, "password": password}, &out)
	return out.Token, err
}

func (c *Client) Search(ctx context.Context, query, cuisineType, maxTime, allergens string) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("query", query)
	if cuisineType != "" {
		q.Set("cuisineType", cuisineType)
	}
	if maxTime != "" {
		q.Set("time", maxTime)
	}
	if allergens != "" {
		q.Set("allergens", allergens)
	}
	var out []map[string]any
	err := c.do(ctx, http.MethodGet, "/api/recipes/search", q, nil, &out)
	return out, err
}

func (c *Client) RecipeByID(ctx context.Context, recipeID string) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, http.MethodGet, "/api/recipes/provider/"+url.PathEscape(recipeID), nil, nil, &out)
	return out, err
}

func (c *Client) SaveRecipe(ctx context.Context, recipeID string, md models.RecipeMetadata) error {
	return c.do(ctx, http.MethodPost, "/api/recipes/save/"+url.PathEscape(recipeID), nil, md, nil)
}

func (c *Client) SavedRecipes(ctx context.Context) ([]models.Recipe, error) {
	var out []models.Recipe
	err := c.do(ctx, http.MethodGet, "/api/recipes/saved", nil, nil, &out)
	return out, err
}

func (c *Client) RecordRecentlyViewed(ctx context.Context, recipeID string) error {
	return c.do(ctx, http.MethodPost, "/api/recipes/recent/"+url.PathEscape(recipeID), nil, nil, nil)
}

func (c *Client) RecentlyViewed(ctx context.Context) ([]string, error) {
	var out struct {
		RecentlyViewed []string `json:"recentlyViewed"`
	}
	err := c.do(ctx, http.MethodGet, "/api/recipes/recent", nil, nil, &out)
	return out.RecentlyViewed, err
}

func (c *Client) Note(ctx context.Context, recipeID string) (string, error) {
	var out struct {
		Notes string `json:"notes"`
	}
	err := c.do(ctx, http.MethodGet, "/api/recipes/notes/"+url.PathEscape(recipeID), nil, nil, &out)
	return out.Notes, err
}

func (c *Client) SetNote(ctx context.Context, recipeID, notes string) error {
	return c.do(ctx, http.MethodPost, "/api/recipes/notes", nil,
		map[string]string{"recipeId": recipeID, "notes": notes}, nil)
}

func (c *Client) Allergens(ctx context.Context) ([]string, error) {
	var out struct {
		Allergens []string `json:"allergens"`
	}
	err := c.do(ctx, http.MethodGet, "/api/users/allergens", nil, nil, &out)
	return out.Allergens, err
}

func (c *Client) SetAllergens(ctx context.Context, allergens []string) error {
	return c.do(ctx, http.MethodPut, "/api/users/allergens", nil,
		map[string][]string{"allergens": allergens}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, in, out any) error {
	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&msg)
		return &apiError{Status: resp.StatusCode, Message: msg.Message}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
