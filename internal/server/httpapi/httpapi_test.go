package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Vmatcha9/RTP-RecipeFinder/internal/server/config"
	"github.com/Vmatcha9/RTP-RecipeFinder/internal/server/metrics"
	"github.com/Vmatcha9/RTP-RecipeFinder/internal/server/provider"
	"github.com/Vmatcha9/RTP-RecipeFinder/internal/server/repository/memstore"
	"github.com/Vmatcha9/RTP-RecipeFinder/internal/server/service"
)

type stubProvider struct {
	recipes []map[string]any
	err     error
}

func (p *stubProvider) Search(context.Context, string, string, string) ([]map[string]any, error) {
	return p.recipes, p.err
}

func (p *stubProvider) RecipeByID(context.Context, string) (map[string]any, error) {
	if p.err != nil {
		return nil, p.err
	}
	if len(p.recipes) == 0 {
		return nil, provider.ErrUnavailable
	}
	return p.recipes[0], nil
}

func newTestServer(t *testing.T, prov service.RecipeProvider) http.Handler {
	t.Helper()
	if prov == nil {
		prov = &stubProvider{}
	}
	svcs := service.NewServices(memstore.New(), prov, config.Config{JWTSecret: "test"})
	return NewRouter(svcs, nil, metrics.NewCollector())
}

func doJSON(t *testing.T, ts http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		buf = bytes.NewBuffer(b)
	} else {
		buf = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	ts.ServeHTTP(rr, req)
	return rr
}

func loginUser(t *testing.T, ts http.Handler) map[string]string {
	t.Helper()
	rr := doJSON(t, ts, "POST", "/api/auth/register",
		map[string]string{"username": "cook", "email": "cook@example.com", "password": "longenough"}, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, ts, "POST", "/api/auth/login",
		map[string]string{"email": "cook@example.com", "password": "longenough"}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rr.Code, rr.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &out)
	if out.Token == "" {
		t.Fatal("empty token")
	}
	return map[string]string{"Authorization": "Bearer " + out.Token}
}

func message(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	return body.Message
}

var chiliBody = map[string]any{
	"title":          "Chili",
	"image":          "http://x/i.png",
	"readyInMinutes": 30,
	"servings":       4,
	"sourceUrl":      "http://x",
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	rr := doJSON(t, ts, "GET", "/health", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("health status: %d", rr.Code)
	}
}

func TestSaveAndListSaved(t *testing.T) {
	ts := newTestServer(t, nil)
	authz := loginUser(t, ts)

	rr := doJSON(t, ts, "POST", "/api/recipes/save/42", chiliBody, authz)
	if rr.Code != http.StatusOK {
		t.Fatalf("save: %d %s", rr.Code, rr.Body.String())
	}
	if got := message(t, rr); got != "Recipe saved successfully" {
		t.Fatalf("message = %q", got)
	}

	// saving again must not duplicate
	rr = doJSON(t, ts, "POST", "/api/recipes/save/42", chiliBody, authz)
	if rr.Code != http.StatusOK {
		t.Fatalf("second save: %d", rr.Code)
	}

	rr = doJSON(t, ts, "GET", "/api/recipes/saved", nil, authz)
	if rr.Code != http.StatusOK {
		t.Fatalf("saved: %d", rr.Code)
	}
	var saved []struct {
		SpoonacularID string `json:"spoonacularId"`
		Title         string `json:"title"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &saved)
	if len(saved) != 1 || saved[0].SpoonacularID != "42" || saved[0].Title != "Chili" {
		t.Fatalf("saved = %+v", saved)
	}
}

func TestSave_NoToken(t *testing.T) {
	ts := newTestServer(t, nil)
	rr := doJSON(t, ts, "POST", "/api/recipes/save/42", chiliBody, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 got %d", rr.Code)
	}
	if got := message(t, rr); got != "No token, authorization denied" {
		t.Fatalf("message = %q", got)
	}
}

func TestAuthMiddleware_MalformedAndInvalid(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := doJSON(t, ts, "GET", "/api/recipes/saved", nil, map[string]string{"Authorization": "Basic abc"})
	if rr.Code != http.StatusUnauthorized || message(t, rr) != "Invalid token format" {
		t.Fatalf("malformed: %d %q", rr.Code, message(t, rr))
	}

	rr = doJSON(t, ts, "GET", "/api/recipes/saved", nil, map[string]string{"Authorization": "Bearer"})
	if rr.Code != http.StatusUnauthorized || message(t, rr) != "Invalid token format" {
		t.Fatalf("bare scheme: %d %q", rr.Code, message(t, rr))
	}

	// an empty credential fails verification, not shape parsing
	rr = doJSON(t, ts, "GET", "/api/recipes/saved", nil, map[string]string{"Authorization": "Bearer "})
	if rr.Code != http.StatusUnauthorized || message(t, rr) != "Token is not valid" {
		t.Fatalf("empty credential: %d %q", rr.Code, message(t, rr))
	}

	rr = doJSON(t, ts, "GET", "/api/recipes/saved", nil, map[string]string{"Authorization": "Bearer not-a-token"})
	if rr.Code != http.StatusUnauthorized || message(t, rr) != "Token is not valid" {
		t.Fatalf("invalid: %d %q", rr.Code, message(t, rr))
	}
}

func TestSave_MissingFields(t *testing.T) {
	ts := newTestServer(t, nil)
	authz := loginUser(t, ts)

	rr := doJSON(t, ts, "POST", "/api/recipes/save/42", map[string]any{"image": "http://x/i.png"}, authz)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("want 400 got %d", rr.Code)
	}
	msg := message(t, rr)
	if !strings.HasPrefix(msg, "Missing required recipe data") || !strings.Contains(msg, "title") {
		t.Fatalf("message = %q", msg)
	}
}

func TestRecentAndNotes(t *testing.T) {
	ts := newTestServer(t, nil)
	authz := loginUser(t, ts)

	for _, id := range []string{"a", "b", "a"} {
		rr := doJSON(t, ts, "POST", "/api/recipes/recent/"+id, nil, authz)
		if rr.Code != http.StatusOK {
			t.Fatalf("recent %s: %d", id, rr.Code)
		}
		if got := message(t, rr); got != "Recently viewed updated" {
			t.Fatalf("message = %q", got)
		}
	}
	rr := doJSON(t, ts, "GET", "/api/recipes/recent", nil, authz)
	var recentBody struct {
		RecentlyViewed []string `json:"recentlyViewed"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &recentBody)
	if len(recentBody.RecentlyViewed) != 2 || recentBody.RecentlyViewed[0] != "a" {
		t.Fatalf("recent = %v", recentBody.RecentlyViewed)
	}

	rr = doJSON(t, ts, "GET", "/api/recipes/notes/xyz", nil, authz)
	if rr.Code != http.StatusOK {
		t.Fatalf("get note: %d", rr.Code)
	}
	var noteBody struct {
		Notes string `json:"notes"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &noteBody)
	if noteBody.Notes != "" {
		t.Fatalf("expected empty note, got %q", noteBody.Notes)
	}

	rr = doJSON(t, ts, "POST", "/api/recipes/notes", map[string]string{"recipeId": "xyz", "notes": "needs garlic"}, authz)
	if rr.Code != http.StatusOK || message(t, rr) != "Notes saved successfully" {
		t.Fatalf("set note: %d %q", rr.Code, message(t, rr))
	}
	rr = doJSON(t, ts, "GET", "/api/recipes/notes/xyz", nil, authz)
	_ = json.Unmarshal(rr.Body.Bytes(), &noteBody)
	if noteBody.Notes != "needs garlic" {
		t.Fatalf("note = %q", noteBody.Notes)
	}
}

func TestSearch_FiltersAllergens(t *testing.T) {
	prov := &stubProvider{recipes: []map[string]any{
		{"label": "Mac", "ingredientLines": []any{"1 cup milk"}},
		{"label": "Curry", "ingredientLines": []any{"no dairy here"}},
	}}
	ts := newTestServer(t, prov)
	authz := loginUser(t, ts)

	rr := doJSON(t, ts, "GET", "/api/recipes/search?query=chicken&allergens=dairy", nil, authz)
	if rr.Code != http.StatusOK {
		t.Fatalf("search: %d %s", rr.Code, rr.Body.String())
	}
	var out []map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &out)
	// only the literal "dairy" text is excluded; "milk" is not
	if len(out) != 1 || out[0]["label"] != "Mac" {
		t.Fatalf("out = %v", out)
	}
}

func TestSearch_ProviderFailure(t *testing.T) {
	ts := newTestServer(t, &stubProvider{err: errors.New("provider down")})
	authz := loginUser(t, ts)

	rr := doJSON(t, ts, "GET", "/api/recipes/search?query=chicken", nil, authz)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("want 500 got %d", rr.Code)
	}
	if got := message(t, rr); got != "Error fetching recipes" {
		t.Fatalf("message = %q", got)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	ts := newTestServer(t, nil)
	loginUser(t, ts)

	rr := doJSON(t, ts, "POST", "/api/auth/register",
		map[string]string{"username": "cook", "email": "cook@example.com", "password": "longenough"}, nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("want 409 got %d", rr.Code)
	}
}

func TestAllergensEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)
	authz := loginUser(t, ts)

	rr := doJSON(t, ts, "PUT", "/api/users/allergens", map[string][]string{"allergens": {"peanut"}}, authz)
	if rr.Code != http.StatusOK {
		t.Fatalf("set allergens: %d", rr.Code)
	}
	rr = doJSON(t, ts, "GET", "/api/users/allergens", nil, authz)
	var body struct {
		Allergens []string `json:"allergens"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	if len(body.Allergens) != 1 || body.Allergens[0] != "peanut" {
		t.Fatalf("allergens = %v", body.Allergens)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	rr := doJSON(t, ts, "GET", "/health", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("health: %d", rr.Code)
	}
	rr = doJSON(t, ts, "GET", "/metrics", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "recipefinder_http_requests_total") {
		t.Fatal("request counter missing from scrape output")
	}
}
