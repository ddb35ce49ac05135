package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/business_site/internal/hash"
	authmw "github.com/Skotchmaster/business_site/internal/middleware/auth"
	"github.com/Skotchmaster/business_site/internal/models"
	"github.com/Skotchmaster/business_site/internal/mykafka"
	"github.com/Skotchmaster/business_site/internal/repo"
	"github.com/Skotchmaster/business_site/internal/service"
	"github.com/Skotchmaster/business_site/internal/testutil"
	"github.com/Skotchmaster/business_site/internal/tokens"
)

var testSecrets = tokens.Secrets{
	Access:  []byte("test-jwt-secret"),
	Refresh: []byte("test-refresh-secret"),
}

type testEnv struct {
	E      *echo.Echo
	Repo   *repo.GormRepo
	Hasher *hash.Hasher
	Codec  *tokens.Codec
}

func newTestEnv(t *testing.T, ready func(context.Context) error) *testEnv {
	t.Helper()

	r := &repo.GormRepo{DB: testutil.InitTestDB(t)}
	hasher := hash.NewHasher([]byte("test-pepper"))
	codec := tokens.NewCodec(testSecrets)
	issuer := tokens.NewIssuer(codec)
	pub := mykafka.NoopPublisher{}

	e := echo.New()
	Register(e, &Deps{
		ServerName: "test-node",
		Ready:      ready,
		Auth:       authmw.New(codec),
		AuthHandler: &AuthHTTP{Svc: &service.AuthService{
			Accounts: r, Hasher: hasher, Issuer: issuer, Verifier: codec, Producer: pub,
		}},
		UsersHandler:   &UsersHTTP{Svc: &service.UserService{Repo: r, Hasher: hasher, Producer: pub}},
		CatalogHandler: &CatalogHTTP{Svc: &service.CatalogService{Repo: r, Producer: pub}},
	})

	return &testEnv{E: e, Repo: r, Hasher: hasher, Codec: codec}
}

func (env *testEnv) createAccount(t *testing.T, email, password string, isAdmin bool) *models.User {
	t.Helper()

	pwHash, err := env.Hasher.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{Email: email, PasswordHash: pwHash, FirstName: "Test", IsAdmin: isAdmin}
	require.NoError(t, env.Repo.CreateAccount(context.Background(), u))
	return u
}

func (env *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) login(t *testing.T, email, password string) (access, refresh string) {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.AccessToken, resp.RefreshToken
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRootAndHealth(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Server is running on test-node", rec.Body.String())

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/live", nil, "").Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/health/ready", nil, "").Code)

	down := newTestEnv(t, func(context.Context) error { return errors.New("db down") })
	assert.Equal(t, http.StatusServiceUnavailable, down.do(t, http.MethodGet, "/health/ready", nil, "").Code)
}

func TestLoginAndProfile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.createAccount(t, "ada@example.com", "correct-horse", false)

	access, refresh := env.login(t, "ada@example.com", "correct-horse")
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	rec := env.do(t, http.MethodGet, "/api/users/profile", nil, access)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decodeJSON[map[string]any](t, rec)
	assert.Equal(t, "ada@example.com", profile["email"])
	assert.NotContains(t, profile, "passwordHash")
	assert.NotContains(t, profile, "PasswordHash")

	// a refresh token is not a bearer credential
	rec = env.do(t, http.MethodGet, "/api/users/profile", nil, refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/refresh", map[string]string{"refreshToken": refresh}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	fresh := decodeJSON[map[string]any](t, rec)
	assert.NotEmpty(t, fresh["accessToken"])
	assert.NotContains(t, fresh, "refreshToken")

	rec = env.do(t, http.MethodPost, "/api/auth/refresh", map[string]string{"refreshToken": access}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_Failures(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.createAccount(t, "ada@example.com", "correct-horse", false)

	wrong := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "ada@example.com", "password": "nope"}, "")
	unknown := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "x@example.com", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.JSONEq(t, wrong.Body.String(), unknown.Body.String())

	bad := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "not-an-email", "password": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestProfile_DeletedAccount(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.createAccount(t, "ada@example.com", "correct-horse", false)
	access, _ := env.login(t, "ada@example.com", "correct-horse")

	require.NoError(t, env.Repo.DeleteAccountByEmail(context.Background(), "ada@example.com"))

	rec := env.do(t, http.MethodGet, "/api/users/profile", nil, access)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRoutes_Authorization(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	admin := env.createAccount(t, "admin@example.com", "correct-horse", true)
	env.createAccount(t, "user@example.com", "correct-horse", false)

	adminAccess, _ := env.login(t, "admin@example.com", "correct-horse")
	userAccess, _ := env.login(t, "user@example.com", "correct-horse")

	past := tokens.NewCodec(testSecrets, tokens.WithClock(func() time.Time { return time.Now().Add(-time.Hour) }))
	expired, _, err := past.Sign(tokens.UserFromAccount(admin), tokens.AccessToken, admin.ID.String())
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{name: "no token", token: "", want: http.StatusUnauthorized},
		{name: "garbage token", token: "garbage", want: http.StatusUnauthorized},
		{name: "expired admin token", token: expired, want: http.StatusUnauthorized},
		{name: "valid non-admin token", token: userAccess, want: http.StatusForbidden},
		{name: "valid admin token", token: adminAccess, want: http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/admin/users", nil, tt.token)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestAdminUsers_CRUD(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.createAccount(t, "admin@example.com", "correct-horse", true)
	token, _ := env.login(t, "admin@example.com", "correct-horse")

	rec := env.do(t, http.MethodPost, "/api/admin/users", map[string]any{
		"email": "grace@example.com", "password": "long-enough", "firstName": "Grace",
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeJSON[map[string]any](t, rec)
	assert.Equal(t, "grace@example.com", created["email"])
	assert.NotContains(t, created, "passwordHash")

	rec = env.do(t, http.MethodPost, "/api/admin/users", map[string]any{
		"email": "grace@example.com", "password": "long-enough",
	}, token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/users", map[string]any{
		"email": "short@example.com", "password": "short",
	}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/admin/users/grace@example.com", map[string]any{"isAdmin": true}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decodeJSON[map[string]any](t, rec)["isAdmin"])

	rec = env.do(t, http.MethodPut, "/api/admin/users/nobody@example.com", map[string]any{"isAdmin": true}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/admin/users/admin@example.com", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/admin/users/grace@example.com", nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/admin/users/grace@example.com", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalog_AdminAndPublic(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.createAccount(t, "admin@example.com", "correct-horse", true)
	token, _ := env.login(t, "admin@example.com", "correct-horse")

	rec := env.do(t, http.MethodPost, "/api/admin/categories", map[string]any{
		"name": "Massage", "imageUrl": "https://cdn.example.com/m.png", "sortOrder": 1, "isPublished": true,
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	category := decodeJSON[models.Category](t, rec)

	rec = env.do(t, http.MethodPost, "/api/admin/services", map[string]any{
		"categoryId": category.ID.String(), "name": "Hot Stone", "description": "Warm stones", "price": 80, "isPublished": true,
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	svc := decodeJSON[models.Service](t, rec)
	assert.Equal(t, "hot-stone", svc.Slug)

	rec = env.do(t, http.MethodPost, "/api/admin/services", map[string]any{
		"categoryId": category.ID.String(), "name": "Hot Stone",
	}, token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/categories", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	categories := decodeJSON[[]map[string]any](t, rec)
	require.Len(t, categories, 1)
	assert.Equal(t, "https://cdn.example.com/m.png", categories[0]["imageUrl"])

	rec = env.do(t, http.MethodGet, "/api/services", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	grouped := decodeJSON[[]map[string]any](t, rec)
	require.Len(t, grouped, 1)
	assert.Len(t, grouped[0]["services"], 1)

	rec = env.do(t, http.MethodGet, "/api/services/hot-stone", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decodeJSON[map[string]any](t, rec)
	assert.Equal(t, "Massage", detail["categoryName"])

	rec = env.do(t, http.MethodGet, "/api/services/search?q=stone&page=1&size=5", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	found := decodeJSON[struct {
		Data []map[string]any `json:"data"`
		Meta map[string]any   `json:"meta"`
	}](t, rec)
	require.Len(t, found.Data, 1)
	assert.EqualValues(t, 1, found.Meta["total"])

	rec = env.do(t, http.MethodDelete, "/api/admin/categories/"+category.ID.String(), nil, token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/admin/categories/"+category.ID.String(), map[string]any{"isPublished": false}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/services/hot-stone", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/admin/services/not-a-uuid", map[string]any{"price": 1}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/admin/services/"+svc.ID.String(), nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/admin/categories/"+category.ID.String(), nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAdminUsers_EncodedEmailInPath(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.createAccount(t, "admin@example.com", "correct-horse", true)
	env.createAccount(t, "a@b.com", "correct-horse", false)
	token, _ := env.login(t, "admin@example.com", "correct-horse")

	rec := env.do(t, http.MethodPut, "/api/admin/users/a%40b.com", map[string]any{"lastName": "Encoded"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Encoded", decodeJSON[map[string]any](t, rec)["lastName"])

	rec = env.do(t, http.MethodDelete, "/api/admin/users/admin%40example.com", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/admin/users/a%40b.com", nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	_, err := env.Repo.FindAccountByEmail(context.Background(), "a@b.com")
	assert.True(t, repo.IsNotFound(err))
}
