package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"paper-trader/middleware"
	"paper-trader/models"
	"paper-trader/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// memStore is an in-process session.Store double.
type memStore struct {
	mu       sync.Mutex
	seq      int
	sessions map[string]uint
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]uint)}
}

func (m *memStore) Create(_ context.Context, userID uint) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	token := fmt.Sprintf("token-%d", m.seq)
	m.sessions[token] = userID
	return token, nil
}

func (m *memStore) UserID(_ context.Context, token string) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.sessions[token]
	if !ok {
		return 0, session.ErrNoSession
	}
	return id, nil
}

func (m *memStore) Clear(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *memStore) has(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[token]
	return ok
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

func authRouter(t *testing.T, db *gorm.DB, store session.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.LoadHTMLGlob("../templates/*.html")

	h := NewAuthHandler(db, store, 10000, 24*time.Hour)
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.GET("/register", h.RegisterPage)
	r.POST("/register", h.Register)
	r.GET("/logout", h.Logout)
	return r
}

func postForm(r *gin.Engine, path string, form url.Values, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterCreatesUserAndLogsIn(t *testing.T) {
	db := testDB(t)
	store := newMemStore()
	r := authRouter(t, db, store)

	w := postForm(r, "/register", url.Values{
		"username":     {"alice"},
		"password":     {"s3cret"},
		"confirmation": {"s3cret"},
	}, "")

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.CookieName+"=")

	var user models.User
	require.NoError(t, db.Where("username = ?", "alice").First(&user).Error)
	assert.Equal(t, 10000.0, user.Cash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")))
	assert.NotContains(t, user.PasswordHash, "s3cret")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := testDB(t)
	r := authRouter(t, db, newMemStore())

	form := url.Values{"username": {"alice"}, "password": {"pw"}, "confirmation": {"pw"}}
	w := postForm(r, "/register", form, "")
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = postForm(r, "/register", form, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), ErrUsernameTaken.Error())

	var n int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "alice").Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

// Register reports a taken username from a failed insert only when the
// failure really is the unique index, which depends on the store
// translating driver errors to gorm.ErrDuplicatedKey.
func TestDuplicateUsernameInsertIsDuplicatedKey(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&models.User{Username: "alice", PasswordHash: "x"}).Error)

	err := db.Create(&models.User{Username: "alice", PasswordHash: "x"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestRegisterPasswordMismatch(t *testing.T) {
	r := authRouter(t, testDB(t), newMemStore())

	w := postForm(r, "/register", url.Values{
		"username":     {"alice"},
		"password":     {"pw1"},
		"confirmation": {"pw2"},
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), ErrPasswordMismatch.Error())
}

func TestRegisterMissingFields(t *testing.T) {
	r := authRouter(t, testDB(t), newMemStore())

	for _, form := range []url.Values{
		{"password": {"pw"}, "confirmation": {"pw"}},
		{"username": {"alice"}},
	} {
		w := postForm(r, "/register", form, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), ErrMissingField.Error())
	}
}

func TestLoginSuccess(t *testing.T) {
	db := testDB(t)
	store := newMemStore()
	r := authRouter(t, db, store)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := models.User{Username: "alice", PasswordHash: string(hash), Cash: 10000}
	require.NoError(t, db.Create(&user).Error)

	w := postForm(r, "/login", url.Values{"username": {"alice"}, "password": {"s3cret"}}, "")

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.True(t, store.has("token-1"))
}

func TestLoginWrongPassword(t *testing.T) {
	db := testDB(t)
	r := authRouter(t, db, newMemStore())

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{Username: "alice", PasswordHash: string(hash)}).Error)

	w := postForm(r, "/login", url.Values{"username": {"alice"}, "password": {"wrong"}}, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), ErrInvalidCredentials.Error())
}

func TestLoginUnknownUser(t *testing.T) {
	r := authRouter(t, testDB(t), newMemStore())

	w := postForm(r, "/login", url.Values{"username": {"ghost"}, "password": {"pw"}}, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), ErrInvalidCredentials.Error())
}

// A login must forget whatever session the browser presented before
// establishing the new one, even when the attempt then fails.
func TestLoginClearsPriorSession(t *testing.T) {
	db := testDB(t)
	store := newMemStore()
	r := authRouter(t, db, store)

	prior, err := store.Create(context.Background(), 42)
	require.NoError(t, err)

	w := postForm(r, "/login", url.Values{"username": {"ghost"}, "password": {"pw"}}, prior)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, store.has(prior))
}

func TestLogoutClearsSession(t *testing.T) {
	db := testDB(t)
	store := newMemStore()
	r := authRouter(t, db, store)

	token, err := store.Create(context.Background(), 7)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.False(t, store.has(token))
}
