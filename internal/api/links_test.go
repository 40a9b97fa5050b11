package api

import (
	"fmt"
	"net/http"
	"testing"
)

func createLink(t *testing.T, env *testEnv, cookie *http.Cookie, url, title string, tags ...string) map[string]any {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/api/links", map[string]any{
		"url":   url,
		"title": title,
		"tags":  tags,
	}, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create link %s: status %d, body %s", url, rec.Code, rec.Body.String())
	}
	return decodeBody(t, rec)["data"].(map[string]any)
}

func TestCreateLink(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signup(t, "alice@example.com", "password1")

	rec := env.do(t, http.MethodPost, "/api/links", map[string]any{
		"url":         "https://example.com/article",
		"title":       "  An Article  ",
		"description": "worth reading",
		"tags":        []string{"go", "web"},
	}, cookie)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}

	data := decodeBody(t, rec)["data"].(map[string]any)
	if data["title"] != "An Article" {
		t.Errorf("title = %v, want trimmed An Article", data["title"])
	}
	tags, _ := data["tags"].([]any)
	if len(tags) != 2 || tags[0] != "go" || tags[1] != "web" {
		t.Errorf("tags = %v, want [go web]", data["tags"])
	}
	if data["id"] == "" {
		t.Error("link has no id")
	}
}

func TestCreateLink_OwnerIsAlwaysCaller(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signup(t, "alice@example.com", "password1")

	// A caller-supplied owner field is ignored at the decoding boundary.
	rec := env.do(t, http.MethodPost, "/api/links", map[string]any{
		"url":   "https://example.com",
		"title": "Mine",
		"user":  "some-other-user-id",
	}, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	// Alice sees it; nobody else does.
	rec = env.do(t, http.MethodGet, "/api/links", nil, cookie)
	if got := decodeBody(t, rec)["count"].(float64); got != 1 {
		t.Errorf("owner count = %v, want 1", got)
	}
}

func TestCreateLink_Validation(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signup(t, "alice@example.com", "password1")

	rec := env.do(t, http.MethodPost, "/api/links", map[string]any{
		"url":   "ftp://example.com",
		"title": "",
	}, cookie)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["message"] != "Validation Error" {
		t.Errorf("message = %v, want Validation Error", body["message"])
	}
}

func TestCreateLink_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signup(t, "alice@example.com", "password1")
	createLink(t, env, cookie, "https://example.com/dup", "First")

	rec := env.do(t, http.MethodPost, "/api/links", map[string]any{
		"url":   "https://example.com/dup",
		"title": "Second",
	}, cookie)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body := decodeBody(t, rec); body["field"] != "url" {
		t.Errorf("field = %v, want url", body["field"])
	}
}

func TestListLinks_Pagination(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signup(t, "alice@example.com", "password1")

	for i := 0; i < 15; i++ {
		createLink(t, env, cookie, fmt.Sprintf("https://example.com/%d", i), fmt.Sprintf("Link %d", i))
	}

	rec := env.do(t, http.MethodGet, "/api/links?page=1&limit=10", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	// count is the number of items on this page, not the total.
	body := decodeBody(t, rec)
	if body["count"].(float64) != 10 {
		t.Errorf("count = %v, want 10", body["count"])
	}
	if body["page"].(float64) != 1 {
		t.Errorf("page = %v, want 1", body["page"])
	}
	if body["totalPages"].(float64) != 2 {
		t.Errorf("totalPages = %v, want 2", body["totalPages"])
	}
	if body["hasMore"] != true {
		t.Errorf("hasMore = %v, want true", body["hasMore"])
	}
	if got := len(body["data"].([]any)); got != 10 {
		t.Errorf("page 1 has %d links, want 10", got)
	}

	rec = env.do(t, http.MethodGet, "/api/links?page=2&limit=10", nil, cookie)
	body = decodeBody(t, rec)
	if body["count"].(float64) != 5 {
		t.Errorf("page 2 count = %v, want 5", body["count"])
	}
	if got := len(body["data"].([]any)); got != 5 {
		t.Errorf("page 2 has %d links, want 5", got)
	}
	if body["hasMore"] != false {
		t.Errorf("hasMore = %v, want false", body["hasMore"])
	}
}

func TestListLinks_SearchAndTag(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signup(t, "alice@example.com", "password1")

	createLink(t, env, cookie, "https://example.com/go", "Go generics explained", "go")
	createLink(t, env, cookie, "https://example.com/web", "CSS tricks", "web")

	rec := env.do(t, http.MethodGet, "/api/links?search=generics", nil, cookie)
	if got := decodeBody(t, rec)["count"].(float64); got != 1 {
		t.Errorf("search count = %v, want 1", got)
	}

	rec = env.do(t, http.MethodGet, "/api/links?tag=web", nil, cookie)
	body := decodeBody(t, rec)
	if body["count"].(float64) != 1 {
		t.Fatalf("tag filter count = %v, want 1", body["count"])
	}
	data := body["data"].([]any)[0].(map[string]any)
	if data["title"] != "CSS tricks" {
		t.Errorf("tag filter returned %v", data["title"])
	}
}

func TestUpdateLink(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signup(t, "alice@example.com", "password1")
	link := createLink(t, env, cookie, "https://example.com", "Old title", "go")

	rec := env.do(t, http.MethodPatch, "/api/links/"+link["id"].(string), map[string]any{
		"title": "New title",
	}, cookie)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	data := decodeBody(t, rec)["data"].(map[string]any)
	if data["title"] != "New title" {
		t.Errorf("title = %v, want New title", data["title"])
	}
	// Fields absent from the patch are untouched.
	if data["url"] != "https://example.com" {
		t.Errorf("url = %v, want unchanged", data["url"])
	}
	if tags, _ := data["tags"].([]any); len(tags) != 1 || tags[0] != "go" {
		t.Errorf("tags = %v, want unchanged [go]", data["tags"])
	}
}

func TestUpdateLink_NotOwner(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice@example.com", "password1")
	mallory := env.signup(t, "mallory@example.com", "password1")
	link := createLink(t, env, alice, "https://example.com", "Alice's")

	rec := env.do(t, http.MethodPatch, "/api/links/"+link["id"].(string), map[string]any{
		"title": "Stolen",
	}, mallory)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403; body %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["message"] != "Not authorized to access this link" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestUpdateLink_NotFound(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signup(t, "alice@example.com", "password1")

	rec := env.do(t, http.MethodPatch, "/api/links/no-such-id", map[string]any{
		"title": "x",
	}, cookie)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteLink(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signup(t, "alice@example.com", "password1")
	link := createLink(t, env, cookie, "https://example.com", "Doomed")

	rec := env.do(t, http.MethodDelete, "/api/links/"+link["id"].(string), nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = env.do(t, http.MethodDelete, "/api/links/"+link["id"].(string), nil, cookie)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: status = %d, want 404", rec.Code)
	}
}

func TestDeleteLink_NotOwner(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup(t, "alice@example.com", "password1")
	mallory := env.signup(t, "mallory@example.com", "password1")
	link := createLink(t, env, alice, "https://example.com", "Alice's")

	rec := env.do(t, http.MethodDelete, "/api/links/"+link["id"].(string), nil, mallory)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestLinkTags(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signup(t, "alice@example.com", "password1")

	createLink(t, env, cookie, "https://example.com/1", "1", "go", "web")
	createLink(t, env, cookie, "https://example.com/2", "2", "go")

	rec := env.do(t, http.MethodGet, "/api/links/tags", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["count"].(float64) != 2 {
		t.Fatalf("count = %v, want 2", body["count"])
	}
	data := body["data"].([]any)
	first := data[0].(map[string]any)
	if first["name"] != "go" || first["count"].(float64) != 2 {
		t.Errorf("first tag = %v, want go with count 2", first)
	}
}

func TestLinks_RequireAuth(t *testing.T) {
	env := newTestEnv(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/links"},
		{http.MethodPost, "/api/links"},
		{http.MethodGet, "/api/links/tags"},
		{http.MethodPatch, "/api/links/some-id"},
		{http.MethodDelete, "/api/links/some-id"},
	} {
		rec := env.do(t, tc.method, tc.path, map[string]any{}, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", tc.method, tc.path, rec.Code)
		}
	}
}
