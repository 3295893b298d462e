package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/fitness-app-api/internal/application"
	"github.com/oksasatya/fitness-app-api/internal/domain/entity"
	repo "github.com/oksasatya/fitness-app-api/internal/domain/repository"
	"github.com/oksasatya/fitness-app-api/internal/interface/middleware"
	"github.com/oksasatya/fitness-app-api/pkg/helpers"
	"github.com/oksasatya/fitness-app-api/pkg/validation"
)

const cookieName = "fitness_jwt"

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if x.Email == u.Email {
			return repo.ErrEmailTaken
		}
	}
	u.ID = uuid.NewString()
	c := *u
	m.users[u.ID] = &c
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, repo.ErrNotFound
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

func (m *memUsers) Update(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.users[u.ID]
	if !ok {
		return repo.ErrNotFound
	}
	cur.Name = u.Name
	cur.AvatarURL = u.AvatarURL
	return nil
}

type testApp struct {
	engine *gin.Engine
	users  *memUsers
	jwt    *helpers.JWTManager
}

func newTestApp(t *testing.T, avatars application.AvatarStore) *testApp {
	t.Helper()
	users := &memUsers{users: map[string]*entity.User{}}
	jwt := helpers.NewJWTManager("handler-secret", "fitness-test", time.Hour)
	cookies := helpers.NewCookie(cookieName, "", false)
	logger := helpers.NewNopLogger()

	authSvc, err := application.NewAuthService(users, jwt, helpers.NewBcryptHasher(bcrypt.MinCost), nil, nil, logger)
	require.NoError(t, err)
	userSvc := application.NewUserService(users, nil, avatars, nil, nil, logger)

	auth := NewAuthHandler(authSvc, cookies, logger)
	user := NewUserHandler(userSvc, logger)
	admin := NewAdminHandler(userSvc, logger)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/login", auth.Login)
	api.POST("/auth/register", auth.Register)
	api.POST("/auth/logout", auth.Logout)
	u := api.Group("/user", middleware.RequireRole(jwt, cookies, entity.RoleUser))
	u.GET("/me", middleware.WithIdentity(user.Me))
	u.PUT("/update-profile", middleware.WithIdentity(user.UpdateProfile))
	u.POST("/avatar", middleware.WithIdentity(user.UploadAvatar))
	api.GET("/admin/users/search", middleware.RequireRole(jwt, cookies, entity.RoleAdmin), middleware.WithIdentity(admin.SearchUsers))

	return &testApp{engine: r, users: users, jwt: jwt}
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func (a *testApp) do(t *testing.T, method, path string, body any, cookie *http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func tokenCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", cookieName)
	return nil
}

func register(t *testing.T, a *testApp, name, email, password string) *http.Cookie {
	t.Helper()
	w, env := a.do(t, http.MethodPost, "/api/auth/register", gin.H{"name": name, "email": email, "password": password}, nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	return tokenCookie(t, w)
}

func TestRegisterLoginMeFlow(t *testing.T) {
	a := newTestApp(t, nil)

	w, env := a.do(t, http.MethodPost, "/api/auth/register", gin.H{"name": "Jane", "email": "Jane@Example.com", "password": "supersecret"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	c := tokenCookie(t, w)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, "/api", c.Path)
	assert.Positive(t, c.MaxAge)

	var reg authResponse
	require.NoError(t, json.Unmarshal(env.Data, &reg))
	assert.Equal(t, "jane@example.com", reg.Email)
	assert.Equal(t, []string{"ROLE_USER"}, reg.Roles)
	assert.Contains(t, reg.Avatar, "https://i.pravatar.cc/150?u=")

	w, env = a.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "jane@example.com", "password": "supersecret"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	c = tokenCookie(t, w)

	w, env = a.do(t, http.MethodGet, "/api/user/me", nil, c)
	require.Equal(t, http.StatusOK, w.Code)
	var me application.Profile
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, reg.ID, me.ID)
	assert.Equal(t, "Jane", me.Name)
	assert.Equal(t, "jane@example.com", me.Email)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	a := newTestApp(t, nil)
	register(t, a, "Jane", "jane@example.com", "supersecret")

	w1, env1 := a.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "jane@example.com", "password": "wrong-password"}, nil)
	w2, env2 := a.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "nobody@example.com", "password": "supersecret"}, nil)

	assert.Equal(t, http.StatusBadRequest, w1.Code)
	assert.Equal(t, w1.Code, w2.Code)
	assert.Equal(t, "Invalid email or password", env1.Message)
	assert.Equal(t, env1.Message, env2.Message)
	assert.Empty(t, w1.Result().Cookies())
	assert.Empty(t, w2.Result().Cookies())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	a := newTestApp(t, nil)
	register(t, a, "Jane", "jane@example.com", "supersecret")

	w, env := a.do(t, http.MethodPost, "/api/auth/register", gin.H{"name": "Other", "email": "JANE@example.com", "password": "anotherpass"}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already in use", env.Message)
	assert.Len(t, a.users.users, 1)
}

func TestRegister_Validation(t *testing.T) {
	a := newTestApp(t, nil)

	w, env := a.do(t, http.MethodPost, "/api/auth/register", gin.H{"name": "", "email": "not-an-email", "password": "short"}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var details map[string]string
	require.NoError(t, json.Unmarshal(env.Error, &details))
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
	assert.Empty(t, a.users.users)
}

func TestRegister_PasswordOverBcryptLimit(t *testing.T) {
	a := newTestApp(t, nil)

	w, env := a.do(t, http.MethodPost, "/api/auth/register", gin.H{"name": "Jane", "email": "jane@example.com", "password": strings.Repeat("é", 40)}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEqual(t, "Error during registration", env.Message)
	var details map[string]string
	require.NoError(t, json.Unmarshal(env.Error, &details))
	assert.Contains(t, details, "password")
	assert.Empty(t, a.users.users)
}

func TestRegister_BlankName(t *testing.T) {
	a := newTestApp(t, nil)

	w, _ := a.do(t, http.MethodPost, "/api/auth/register", gin.H{"name": "   ", "email": "jane@example.com", "password": "supersecret"}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, a.users.users)
}

func TestLogout_ClearsCookie(t *testing.T) {
	a := newTestApp(t, nil)

	w, env := a.do(t, http.MethodPost, "/api/auth/logout", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "You've been signed out!", env.Message)
	c := tokenCookie(t, w)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)
}

func TestProtectedRoutes_Guard(t *testing.T) {
	a := newTestApp(t, nil)
	c := register(t, a, "Jane", "jane@example.com", "supersecret")

	w, _ := a.do(t, http.MethodGet, "/api/user/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = a.do(t, http.MethodGet, "/api/user/me", nil, &http.Cookie{Name: cookieName, Value: c.Value + "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = a.do(t, http.MethodGet, "/api/admin/users/search?q=jane", nil, c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin, _, err := a.jwt.Issue("admin-1", "Admin", []string{"ROLE_ADMIN", "ROLE_USER"})
	require.NoError(t, err)
	w, env := a.do(t, http.MethodGet, "/api/admin/users/search?q=jane", nil, &http.Cookie{Name: cookieName, Value: admin})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestMe_StaleIdentity(t *testing.T) {
	a := newTestApp(t, nil)
	tok, _, err := a.jwt.Issue("gone", "Ghost", []string{"ROLE_USER"})
	require.NoError(t, err)

	w, env := a.do(t, http.MethodGet, "/api/user/me", nil, &http.Cookie{Name: cookieName, Value: tok})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", env.Message)
}

func TestUpdateProfile(t *testing.T) {
	a := newTestApp(t, nil)
	c := register(t, a, "Jane", "jane@example.com", "supersecret")

	w, env := a.do(t, http.MethodPut, "/api/user/update-profile", gin.H{"name": "Jane Doe"}, c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Profile updated successfully", env.Message)
	var p application.Profile
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "Jane Doe", p.Name)
	assert.Equal(t, "jane@example.com", p.Email)

	w, env = a.do(t, http.MethodGet, "/api/user/me", nil, c)
	require.Equal(t, http.StatusOK, w.Code)
	var me application.Profile
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "Jane Doe", me.Name)
	assert.Equal(t, p.Email, me.Email)
	assert.Equal(t, p.Avatar, me.Avatar)
	assert.Contains(t, me.Avatar, "pravatar")

	w, _ = a.do(t, http.MethodPut, "/api/user/update-profile", gin.H{"name": strings.Repeat("a", 101)}, c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, blank := range []string{"", "   ", "\t"} {
		w, env = a.do(t, http.MethodPut, "/api/user/update-profile", gin.H{"name": blank}, c)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%q", blank)
		assert.NotEqual(t, "Profile updated successfully", env.Message)
	}

	w, env = a.do(t, http.MethodPut, "/api/user/update-profile", gin.H{}, c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "Jane Doe", p.Name)
}

func multipartAvatar(t *testing.T, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="avatar"; filename="me.png"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadAvatar_StorageDisabled(t *testing.T) {
	a := newTestApp(t, nil)
	c := register(t, a, "Jane", "jane@example.com", "supersecret")

	body, ct := multipartAvatar(t, "image/png", []byte("png"))
	req := httptest.NewRequest(http.MethodPost, "/api/user/avatar", body)
	req.Header.Set("Content-Type", ct)
	req.AddCookie(c)
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUploadAvatar_RejectsNonImage(t *testing.T) {
	a := newTestApp(t, nil)
	c := register(t, a, "Jane", "jane@example.com", "supersecret")

	body, ct := multipartAvatar(t, "text/plain", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/api/user/avatar", body)
	req.Header.Set("Content-Type", ct)
	req.AddCookie(c)
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
