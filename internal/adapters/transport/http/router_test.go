package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pgrepo "github.com/okravchenko/contactbook/internal/adapters/db/postgres"
	redisrepo "github.com/okravchenko/contactbook/internal/adapters/db/redis"
	httptransport "github.com/okravchenko/contactbook/internal/adapters/transport/http"
	authsvc "github.com/okravchenko/contactbook/internal/app/auth"
	contactsvc "github.com/okravchenko/contactbook/internal/app/contacts"
	"github.com/okravchenko/contactbook/internal/app/hash"
	"github.com/okravchenko/contactbook/internal/app/token"
	usersvc "github.com/okravchenko/contactbook/internal/app/users"
	"github.com/okravchenko/contactbook/internal/domain/model"
	"github.com/okravchenko/contactbook/internal/infra/config"
)

type capturedMail struct {
	kind string
	link string
}

type mailerStub struct {
	sent chan capturedMail
}

func (m *mailerStub) SendConfirmation(_ context.Context, _, _, link string) error {
	m.sent <- capturedMail{kind: "confirmation", link: link}
	return nil
}

func (m *mailerStub) SendPasswordReset(_ context.Context, _, _, link string) error {
	m.sent <- capturedMail{kind: "reset", link: link}
	return nil
}

type avatarStoreStub struct{}

func (avatarStoreStub) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	return "https://cdn.example.com/" + key, nil
}

type testApp struct {
	router *gin.Engine
	mailer *mailerStub
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Contact{}))

	mr := miniredis.RunT(t)
	t.Cleanup(mr.Close)
	redisCli := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		JWTAlgorithm:    "HS256",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		UserCacheTTL:    time.Hour,
		PasswordPepper:  "pepper",
		BaseURL:         "http://localhost:8000",
		AllowedOrigins:  []string{"http://localhost:3000"},
	}
	codec, err := token.NewCodec(cfg)
	require.NoError(t, err)

	mailer := &mailerStub{sent: make(chan capturedMail, 8)}
	validate := validator.New()

	userRepo := pgrepo.NewUserRepo(db)
	contactRepo := pgrepo.NewContactRepo(db)
	userCache := redisrepo.NewRedisUserCache(redisCli, cfg.UserCacheTTL)

	auth := authsvc.New(userRepo, userCache, codec, hash.New(cfg.PasswordPepper), mailer, cfg, validate, zap.NewNop())
	users := usersvc.New(userRepo, avatarStoreStub{})
	contacts := contactsvc.New(contactRepo, validate)

	router := httptransport.NewRouter(auth, users, contacts, db, cfg, zap.NewNop())
	return &testApp{router: router, mailer: mailer}
}

func (a *testApp) do(t *testing.T, method, target, bearer string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	req.RemoteAddr = "10.0.0.1:12345"
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) postJSON(t *testing.T, target, bearer string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return a.do(t, http.MethodPost, target, bearer, bytes.NewReader(raw), "application/json")
}

func (a *testApp) waitMail(t *testing.T) capturedMail {
	t.Helper()
	select {
	case msg := <-a.mailer.sent:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("expected a mail")
		return capturedMail{}
	}
}

func (a *testApp) register(t *testing.T, username, email, password string, role model.Role) capturedMail {
	t.Helper()
	payload := map[string]any{"username": username, "email": email, "password": password}
	if role != "" {
		payload["role"] = role
	}
	w := a.postJSON(t, "/api/auth/register", "", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return a.waitMail(t)
}

func (a *testApp) login(t *testing.T, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	return a.do(t, http.MethodPost, "/api/auth/login", "",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func (a *testApp) loginPair(t *testing.T, username, password string) model.TokenPair {
	t.Helper()
	w := a.login(t, username, password)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var pair model.TokenPair
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))
	require.Equal(t, "bearer", pair.TokenType)
	return pair
}

func confirmToken(t *testing.T, link string) string {
	t.Helper()
	parts := strings.Split(link, "/")
	require.NotEmpty(t, parts)
	return parts[len(parts)-1]
}

func TestRegisterConflicts(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "alice@example.com", "pass1234", "")

	w := app.postJSON(t, "/api/auth/register", "", map[string]any{
		"username": "bob", "email": "alice@example.com", "password": "pass1234",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "email")

	w = app.postJSON(t, "/api/auth/register", "", map[string]any{
		"username": "alice", "email": "bob@example.com", "password": "pass1234",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "username")
}

func TestLoginConfirmAndRoleGate(t *testing.T) {
	app := newTestApp(t)
	mail := app.register(t, "alice", "alice@example.com", "pass1234", "")
	require.Equal(t, "confirmation", mail.kind)

	// Unconfirmed login is rejected.
	w := app.login(t, "alice", "pass1234")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Email is not confirmed")

	// Visit the emailed confirmation link.
	w = app.do(t, http.MethodGet, "/api/auth/confirmed_email/"+confirmToken(t, mail.link), "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Email confirmed")

	pair := app.loginPair(t, "alice", "pass1234")

	// role=user cannot pass the moderator gate.
	w = app.do(t, http.MethodGet, "/api/auth/moderator", pair.AccessToken, nil, "")
	require.Equal(t, http.StatusForbidden, w.Code)

	// The public route needs nothing.
	w = app.do(t, http.MethodGet, "/api/auth/public", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	// /users/me resolves the identity from the bearer token.
	w = app.do(t, http.MethodGet, "/api/users/me", pair.AccessToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"username":"alice"`)
	require.NotContains(t, w.Body.String(), "hashed_password")
}

func TestModeratorAndAdminGates(t *testing.T) {
	app := newTestApp(t)
	mail := app.register(t, "mod", "mod@example.com", "pass1234", model.RoleModerator)
	w := app.do(t, http.MethodGet, "/api/auth/confirmed_email/"+confirmToken(t, mail.link), "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	pair := app.loginPair(t, "mod", "pass1234")

	w = app.do(t, http.MethodGet, "/api/auth/moderator", pair.AccessToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Hello, mod!")

	// The admin route names exactly one role; moderator is not in the set.
	w = app.do(t, http.MethodGet, "/api/auth/admin", pair.AccessToken, nil, "")
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRefreshTokenEndpoint(t *testing.T) {
	app := newTestApp(t)
	mail := app.register(t, "alice", "alice@example.com", "pass1234", "")
	app.do(t, http.MethodGet, "/api/auth/confirmed_email/"+confirmToken(t, mail.link), "", nil, "")
	pair := app.loginPair(t, "alice", "pass1234")

	w := app.postJSON(t, "/api/auth/refresh-token", "", map[string]any{"refresh_token": pair.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var refreshed model.TokenPair
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
	require.Equal(t, pair.RefreshToken, refreshed.RefreshToken)
	require.NotEmpty(t, refreshed.AccessToken)

	w = app.postJSON(t, "/api/auth/refresh-token", "", map[string]any{"refresh_token": "garbage"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Invalid or expired refresh token")
}

func TestPasswordResetFlow(t *testing.T) {
	app := newTestApp(t)
	mail := app.register(t, "alice", "alice@example.com", "oldpw1234", "")
	app.do(t, http.MethodGet, "/api/auth/confirmed_email/"+confirmToken(t, mail.link), "", nil, "")

	w := app.postJSON(t, "/api/auth/reset_password", "", map[string]any{
		"email": "alice@example.com", "password": "newpw123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	reset := app.waitMail(t)
	require.Equal(t, "reset", reset.kind)

	w = app.do(t, http.MethodGet, "/api/auth/confirm_reset_password/"+confirmToken(t, reset.link), "", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), "Password reset successful")

	app.loginPair(t, "alice", "newpw123")
	w = app.login(t, "alice", "oldpw1234")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPasswordResetUnknownEmailLooksOK(t *testing.T) {
	app := newTestApp(t)
	w := app.postJSON(t, "/api/auth/reset_password", "", map[string]any{
		"email": "ghost@example.com", "password": "newpw123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Verification error")
}

func TestConfirmEmailBadToken(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodGet, "/api/auth/confirmed_email/garbage", "", nil, "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, w.Body.String(), "Token is not correct")
}

func TestContactsCRUD(t *testing.T) {
	app := newTestApp(t)
	mail := app.register(t, "alice", "alice@example.com", "pass1234", "")
	app.do(t, http.MethodGet, "/api/auth/confirmed_email/"+confirmToken(t, mail.link), "", nil, "")
	pair := app.loginPair(t, "alice", "pass1234")

	// Unauthenticated access is rejected.
	w := app.do(t, http.MethodGet, "/api/contacts", "", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	birthday := time.Now().AddDate(-30, 0, 3).UTC().Format(time.RFC3339)
	w = app.postJSON(t, "/api/contacts", pair.AccessToken, map[string]any{
		"first_name":   "John",
		"last_name":    "Doe",
		"email":        "john@example.com",
		"phone_number": "+380501112233",
		"birthday":     birthday,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created model.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = app.do(t, http.MethodGet, "/api/contacts", pair.AccessToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []model.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	w = app.do(t, http.MethodGet, "/api/contacts/birthdays", pair.AccessToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	raw, _ := json.Marshal(map[string]any{"phone_number": "+380671234567"})
	w = app.do(t, http.MethodPut, fmt.Sprintf("/api/contacts/%s", created.ID), pair.AccessToken,
		bytes.NewReader(raw), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), "+380671234567")

	w = app.do(t, http.MethodDelete, fmt.Sprintf("/api/contacts/%s", created.ID), pair.AccessToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, fmt.Sprintf("/api/contacts/%s", created.ID), pair.AccessToken, nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateAvatar(t *testing.T) {
	app := newTestApp(t)
	mail := app.register(t, "alice", "alice@example.com", "pass1234", "")
	app.do(t, http.MethodGet, "/api/auth/confirmed_email/"+confirmToken(t, mail.link), "", nil, "")
	pair := app.loginPair(t, "alice", "pass1234")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "avatar.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake-png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := app.do(t, http.MethodPatch, "/api/users/avatar", pair.AccessToken, &body, mw.FormDataContentType())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), "cdn.example.com/avatars/alice.png")
}

func TestHealthchecker(t *testing.T) {
	app := newTestApp(t)
	w := app.do(t, http.MethodGet, "/api/healthchecker", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
}
