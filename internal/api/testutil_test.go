package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/joestump/linkstash/internal/auth"
	"github.com/joestump/linkstash/internal/links"
	"github.com/joestump/linkstash/internal/store"
	"github.com/joestump/linkstash/internal/testutil"
)

// testEnv is a fully wired router plus the stores behind it.
type testEnv struct {
	router chi.Router
	users  *store.UserStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn := testutil.NewTestDB(t)
	users := store.NewUserStore(conn, bcrypt.MinCost)
	linkStore := store.NewLinkStore(conn, store.NewTagStore(conn))
	tokens := auth.NewTokenService("test-secret", time.Hour)

	router := NewRouter(Deps{
		Logger:         zap.NewNop(),
		DB:             conn,
		AuthMiddleware: auth.NewMiddleware(tokens, users),
		Tokens:         tokens,
		Cookies:        auth.CookiePolicy{Days: 7},
		Users:          users,
		Links:          links.NewService(linkStore),
	})

	return &testEnv{router: router, users: users}
}

// do sends a JSON request through the router. body may be nil; cookie may be
// nil for unauthenticated requests.
func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// signup creates a user via the API and returns its token cookie.
func (e *testEnv) signup(t *testing.T, email, password string) *http.Cookie {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup %s: status %d, body %s", email, rec.Code, rec.Body.String())
	}
	return tokenCookie(t, rec)
}

// tokenCookie extracts the token cookie from a response.
func tokenCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("no token cookie in response")
	return nil
}

// decodeBody unmarshals the response body into a generic map.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response body %q: %v", rec.Body.String(), err)
	}
	return body
}
