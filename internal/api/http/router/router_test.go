package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	httpctx "github.com/dtroode/brainlag-server/internal/api/http/context"
	"github.com/dtroode/brainlag-server/internal/api/http/handler"
	"github.com/dtroode/brainlag-server/internal/estimator"
	"github.com/dtroode/brainlag-server/internal/mocks"
	"github.com/dtroode/brainlag-server/internal/model"
	"github.com/dtroode/brainlag-server/internal/password"
	"github.com/dtroode/brainlag-server/internal/repository/memory"
	"github.com/dtroode/brainlag-server/internal/service"
	"github.com/dtroode/brainlag-server/internal/testutil"
	"github.com/dtroode/brainlag-server/internal/token"
)

func newTestServer(t *testing.T, opts Options, estimatorURL string) *httptest.Server {
	t.Helper()

	lg := testutil.MakeNoopLogger()
	jwt := token.NewJWT("test-secret", time.Hour)

	authService := service.NewAuth(
		memory.NewUserStore(),
		password.NewBcrypt(bcrypt.MinCost),
		jwt,
		nil,
		lg,
		service.AuthConfig{ResetTokenTTL: 15 * time.Minute, ExposeResetToken: true},
	)
	recordService := service.NewSessionRecord(
		memory.NewSessionRecordStore(),
		estimator.NewClient(estimatorURL, time.Second, lg),
		lg,
		service.SessionRecordConfig{DefaultPageSize: 5, MaxPageSize: 100},
	)

	r := New(
		authService,
		recordService,
		service.NewTokenService(jwt, lg),
		httpctx.NewManager(),
		handler.PingerFunc(func(context.Context) error { return nil }),
		opts,
		lg,
	)

	srv := httptest.NewServer(r.Register())
	t.Cleanup(srv.Close)
	return srv
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rdr)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	if len(raw) > 0 {
		require.NoError(c.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestRouter_AccountLifecycle(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, Options{CORSAllowedOrigins: []string{"*"}}, "http://127.0.0.1:1")
	c := &client{t: t, base: srv.URL}

	status, body := c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice123!", "email": "a@x.com", "password": "Abc123!@",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Registration successful", body["message"])

	status, body = c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice123!", "email": "other@x.com", "password": "Abc123!@",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Username or Email already exists", body["message"])

	status, body = c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "a@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid credentials", body["message"])

	status, unknown := c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "nobody@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, body, unknown)

	status, body = c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "a@x.com", "password": "Abc123!@"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "a@x.com", body["email"])
	c.token, _ = body["token"].(string)
	require.NotEmpty(t, c.token)

	status, body = c.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"email": "a@x.com", "username": "alice123!"}, body)

	c.token = ""
	status, body = c.do(http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": "a@x.com"})
	require.Equal(t, http.StatusOK, status)
	resetToken, _ := body["resetToken"].(string)
	require.NotEmpty(t, resetToken)

	status, body = c.do(http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": "nobody@x.com"})
	assert.Equal(t, http.StatusOK, status)
	assert.NotContains(t, body, "resetToken")

	status, body = c.do(http.MethodPost, "/api/auth/forgot-password", map[string]string{})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "If user exists, password reset available", body["message"])

	status, _ = c.do(http.MethodPost, "/api/auth/reset-password/"+resetToken, map[string]string{"password": "N3w!pass"})
	require.Equal(t, http.StatusOK, status)

	status, body = c.do(http.MethodPost, "/api/auth/reset-password/"+resetToken, map[string]string{"password": "again"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Token expired or invalid", body["message"])

	status, _ = c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "a@x.com", "password": "Abc123!@"})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "a@x.com", "password": "N3w!pass"})
	assert.Equal(t, http.StatusOK, status)
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, Options{}, "http://127.0.0.1:1")
	c := &client{t: t, base: srv.URL}

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPost, "/api/auth/student-data"},
		{http.MethodPost, "/api/auth/estimate-load"},
	} {
		status, body := c.do(tc.method, tc.path, nil)
		assert.Equal(t, http.StatusUnauthorized, status, tc.path)
		assert.Equal(t, "Authorization token required", body["message"], tc.path)
	}

	c.token = "not-a-jwt"
	status, body := c.do(http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid token", body["message"])
}

func TestRouter_SessionRecords(t *testing.T) {
	t.Parallel()

	est := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"load_score":0.82,"status":"high","message":"You seem mentally stretched.","recommendation":"Take a longer break."}`)
	}))
	t.Cleanup(est.Close)

	srv := newTestServer(t, Options{}, est.URL)
	c := &client{t: t, base: srv.URL}

	for _, u := range []map[string]string{
		{"username": "alice123!", "email": "a@x.com", "password": "Abc123!@"},
		{"username": "bob", "email": "b@x.com", "password": "Abc123!@"},
	} {
		status, _ := c.do(http.MethodPost, "/api/auth/register", u)
		require.Equal(t, http.StatusCreated, status)
	}
	_, body := c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "a@x.com", "password": "Abc123!@"})
	c.token, _ = body["token"].(string)

	input := map[string]any{
		"total_time": 180, "num_sessions": 4, "subject": "Coding",
		"focus": 3, "fatigue": 4, "late_night": 1, "duration_missing": 0,
	}
	for i := 0; i < 6; i++ {
		status, rec := c.do(http.MethodPost, "/api/auth/estimate-load", input)
		require.Equal(t, http.StatusCreated, status)
		assert.Equal(t, "a@x.com", rec["email"])
	}

	status, _ := c.do(http.MethodPost, "/api/auth/student-data", map[string]any{
		"input":  input,
		"result": map[string]any{"load_score": 0.3, "status": "low", "recommendation": "Keep going."},
	})
	require.Equal(t, http.StatusCreated, status)

	status, body = c.do(http.MethodGet, "/api/auth/student-data?email=a@x.com&page=2&limit=5", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["totalPages"])
	assert.EqualValues(t, 2, body["currentPage"])
	data, _ := body["data"].([]any)
	assert.Len(t, data, 2)

	today := time.Now().UTC().Format("2006-01-02")
	status, body = c.do(http.MethodGet, "/api/auth/student-data?email=a@x.com&limit=100&date="+today, nil)
	require.Equal(t, http.StatusOK, status)
	data, _ = body["data"].([]any)
	assert.Len(t, data, 7)

	status, body = c.do(http.MethodGet, "/api/auth/student-data?email=a@x.com&date=1999-01-01", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, body["data"])

	status, body = c.do(http.MethodGet, "/api/auth/student-data?email=b@x.com", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, body["data"])

	status, body = c.do(http.MethodGet, "/api/auth/student-data", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email required", body["message"])

	anonymous := &client{t: t, base: srv.URL}
	status, body = anonymous.do(http.MethodGet, "/api/auth/student-data?email=a@x.com", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["totalPages"])
	data, _ = body["data"].([]any)
	assert.Len(t, data, 5)

	status, body = anonymous.do(http.MethodGet, "/api/auth/student-data", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email required", body["message"])
}

func TestRouter_SessionRecords_RequireAuth(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, Options{RecordsRequireAuth: true}, "http://127.0.0.1:1")
	c := &client{t: t, base: srv.URL}

	status, body := c.do(http.MethodGet, "/api/auth/student-data", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email required", body["message"])

	status, body = c.do(http.MethodGet, "/api/auth/student-data?email=a@x.com", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Authorization token required", body["message"])

	c.token = "not-a-jwt"
	status, body = c.do(http.MethodGet, "/api/auth/student-data", nil)
	assert.Equal(t, http.StatusBadRequest, status, "email is validated before the token")
	status, body = c.do(http.MethodGet, "/api/auth/student-data?email=a@x.com", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid token", body["message"])

	c.token = ""
	status, _ = c.do(http.MethodPost, "/api/auth/register", map[string]string{"username": "alice123!", "email": "a@x.com", "password": "Abc123!@"})
	require.Equal(t, http.StatusCreated, status)
	_, body = c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "a@x.com", "password": "Abc123!@"})
	c.token, _ = body["token"].(string)

	status, body = c.do(http.MethodGet, "/api/auth/student-data?email=b@x.com", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Forbidden", body["message"])

	status, body = c.do(http.MethodGet, "/api/auth/student-data?email=a@x.com", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, body["data"])
}

func TestRouter_EstimatorFailure(t *testing.T) {
	t.Parallel()

	est := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	t.Cleanup(est.Close)

	srv := newTestServer(t, Options{}, est.URL)
	c := &client{t: t, base: srv.URL}

	c.do(http.MethodPost, "/api/auth/register", map[string]string{"username": "u", "email": "u@x.com", "password": "p"})
	_, body := c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "u@x.com", "password": "p"})
	c.token, _ = body["token"].(string)

	status, body := c.do(http.MethodPost, "/api/auth/estimate-load", map[string]any{
		"total_time": 60, "num_sessions": 1, "subject": "Math", "focus": 3, "fatigue": 3, "late_night": 0, "duration_missing": 0,
	})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.NotContains(t, body["message"], "model not loaded")

	status, body = c.do(http.MethodGet, "/api/auth/student-data?email=u@x.com", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, body["data"])
}

func TestRouter_RateLimit(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, Options{RateLimitEnabled: true, RateLimitRPS: 0.001, RateLimitBurst: 2}, "http://127.0.0.1:1")
	c := &client{t: t, base: srv.URL}

	for i := 0; i < 2; i++ {
		status, _ := c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "x@x.com", "password": "p"})
		assert.Equal(t, http.StatusBadRequest, status)
	}
	status, body := c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "x@x.com", "password": "p"})
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.NotEmpty(t, body["message"])

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/auth/login", strings.NewReader(`{}`))
	require.NoError(t, err)
	req.Header.Set("X-Forwarded-For", "198.51.100.23")
	req.Header.Set("X-Real-IP", "198.51.100.24")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode, "forwarding headers from an untrusted peer are ignored")
}

func TestRouter_CrossCutting(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, Options{CORSAllowedOrigins: []string{"http://localhost:5173"}}, "http://127.0.0.1:1")

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/auth/login", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(raw))

	resp, err = http.Get(srv.URL + "/api/auth/nope")
	require.NoError(t, err)
	raw, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.True(t, strings.Contains(string(raw), "Not found"))

	resp, err = http.Get(srv.URL + "/api/auth/login")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRouter_WiresServices(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	tokens := mocks.NewTokenService(t)
	tokens.On("GetUserID", mock.Anything, "tok").Return(userID, nil).Once()
	auth := mocks.NewAuthService(t)
	auth.On("GetCurrentUser", mock.Anything, userID).Return(model.CurrentUser{Email: "a@x.com", Username: "alice123!"}, nil).Once()

	r := New(
		auth,
		mocks.NewSessionRecordService(t),
		tokens,
		httpctx.NewManager(),
		handler.PingerFunc(func(context.Context) error { return assert.AnError }),
		Options{},
		testutil.MakeNoopLogger(),
	)
	h := r.Register()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"email":"a@x.com","username":"alice123!"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
