package http_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/auth-service/internal/api/http"
	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/observability"
	"github.com/spec-kit/auth-service/internal/repository"
	"github.com/spec-kit/auth-service/internal/service"
	"github.com/spec-kit/auth-service/internal/worker"
)

const testSecret = "router-test-secret"

type memoryUserRepo struct {
	users map[string]*domain.User
}

var _ repository.UserRepository = (*memoryUserRepo)(nil)

func (r *memoryUserRepo) Create(_ context.Context, user *domain.User) error {
	r.users[user.Username] = user
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if user, ok := r.users[username]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	for _, user := range r.users {
		if user.ID == id {
			user.PasswordHash = &passwordHash
			return nil
		}
	}
	return pgx.ErrNoRows
}

func newTestApp(t *testing.T, basicEnabled bool) (*fiber.App, *auth.TokenManager) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	require.NoError(t, err)
	hash := string(hashed)

	repo := &memoryUserRepo{users: map[string]*domain.User{
		"alice": {ID: "alice-id", Username: "alice", PasswordHash: &hash},
	}}

	pool := worker.NewPool(2)
	hasher := auth.NewHasher(pool, bcrypt.MinCost)
	tokens := auth.NewTokenManager(testSecret, time.Hour, nil)
	authService := service.NewAuthService(repo, hasher, tokens, events.NewInMemoryDispatcher())

	var basic auth.BasicAuthenticator
	if basicEnabled {
		basic = authService
	}

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0, nil)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("test", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(authService),
		AuthMiddleware: auth.NewMiddleware(tokens, basic),
	})

	return app, tokens
}

type envelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Token string `json:"token"`
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, headers map[string]string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, val := range headers {
		req.Header.Set(key, val)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env
}

func TestLogin(t *testing.T) {
	app, _ := newTestApp(t, false)

	t.Run("valid credentials return a token", func(t *testing.T) {
		status, env := doJSON(t, app, http.MethodPost, "/auth/login",
			map[string]string{"username": "alice", "password": "correct"}, nil)
		assert.Equal(t, http.StatusOK, status)
		assert.NotEmpty(t, env.Token)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		status, env := doJSON(t, app, http.MethodPost, "/auth/login",
			map[string]string{"username": "alice", "password": "wrong"}, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.False(t, env.OK)
		assert.Equal(t, "Invalid username or password!", env.Error)
	})

	t.Run("unknown user gets the same response as wrong password", func(t *testing.T) {
		status, env := doJSON(t, app, http.MethodPost, "/auth/login",
			map[string]string{"username": "mallory", "password": "correct"}, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid username or password!", env.Error)
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPost, "/auth/login",
			map[string]string{"username": "alice"}, nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestTokenGate(t *testing.T) {
	app, tokens := newTestApp(t, false)

	t.Run("missing header", func(t *testing.T) {
		status, env := doJSON(t, app, http.MethodGet, "/auth/check", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Missing token!", env.Error)
	})

	t.Run("valid bearer token", func(t *testing.T) {
		token, err := tokens.Issue(context.Background(), "alice-id")
		require.NoError(t, err)

		status, env := doJSON(t, app, http.MethodGet, "/auth/check", nil,
			map[string]string{"Authorization": "Bearer " + token})
		assert.Equal(t, http.StatusOK, status)
		assert.True(t, env.OK)
	})

	t.Run("garbage token", func(t *testing.T) {
		status, env := doJSON(t, app, http.MethodGet, "/auth/check", nil,
			map[string]string{"Authorization": "Bearer not-a-token"})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid token!", env.Error)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := auth.NewTokenManager(testSecret, -time.Hour, nil)
		token, err := expired.Issue(context.Background(), "alice-id")
		require.NoError(t, err)

		status, env := doJSON(t, app, http.MethodGet, "/auth/check", nil,
			map[string]string{"Authorization": "Bearer " + token})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Expired token!", env.Error)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		foreign := auth.NewTokenManager("another-secret", time.Hour, nil)
		token, err := foreign.Issue(context.Background(), "alice-id")
		require.NoError(t, err)

		status, env := doJSON(t, app, http.MethodGet, "/auth/check", nil,
			map[string]string{"Authorization": "Bearer " + token})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid token!", env.Error)
	})

	t.Run("unknown scheme", func(t *testing.T) {
		status, env := doJSON(t, app, http.MethodGet, "/auth/check", nil,
			map[string]string{"Authorization": "Digest abc"})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid token!", env.Error)
	})

	t.Run("header without token", func(t *testing.T) {
		status, env := doJSON(t, app, http.MethodGet, "/auth/check", nil,
			map[string]string{"Authorization": "Bearer"})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid token!", env.Error)
	})
}

func TestBasicCredentialFallback(t *testing.T) {
	basicHeader := func(creds string) map[string]string {
		return map[string]string{
			"Authorization": "Basic " + base64.StdEncoding.EncodeToString([]byte(creds)),
		}
	}

	t.Run("enabled with valid credentials", func(t *testing.T) {
		app, _ := newTestApp(t, true)
		status, env := doJSON(t, app, http.MethodGet, "/auth/check", nil, basicHeader("alice:correct"))
		assert.Equal(t, http.StatusOK, status)
		assert.True(t, env.OK)
	})

	t.Run("enabled with wrong credentials", func(t *testing.T) {
		app, _ := newTestApp(t, true)
		status, env := doJSON(t, app, http.MethodGet, "/auth/check", nil, basicHeader("alice:wrong"))
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid token!", env.Error)
	})

	t.Run("disabled rejects basic scheme", func(t *testing.T) {
		app, _ := newTestApp(t, false)
		status, env := doJSON(t, app, http.MethodGet, "/auth/check", nil, basicHeader("alice:correct"))
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid token!", env.Error)
	})

	t.Run("payload without colon", func(t *testing.T) {
		app, _ := newTestApp(t, true)
		status, env := doJSON(t, app, http.MethodGet, "/auth/check", nil, basicHeader("alicecorrect"))
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid token!", env.Error)
	})
}

func TestRegisterAndChangePassword(t *testing.T) {
	app, _ := newTestApp(t, false)

	status, _ := doJSON(t, app, http.MethodPost, "/auth/register",
		map[string]string{"username": "carol", "password": "hunter2"}, nil)
	require.Equal(t, http.StatusCreated, status)

	status, env := doJSON(t, app, http.MethodPost, "/auth/login",
		map[string]string{"username": "carol", "password": "hunter2"}, nil)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, env.Token)

	authz := map[string]string{"Authorization": "Bearer " + env.Token}

	status, _ = doJSON(t, app, http.MethodPost, "/auth/password/change",
		map[string]string{"current_password": "wrong", "new_password": "new-pass"}, authz)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodPost, "/auth/password/change",
		map[string]string{"current_password": "hunter2", "new_password": "new-pass"}, authz)
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPost, "/auth/login",
		map[string]string{"username": "carol", "password": "new-pass"}, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestNotFoundEnvelope(t *testing.T) {
	app, _ := newTestApp(t, false)

	status, env := doJSON(t, app, http.MethodGet, "/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.OK)
	assert.Equal(t, "Not Found", env.Error)
}
