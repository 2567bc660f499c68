package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"paper-trader/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fixedStore struct {
	token  string
	userID uint
}

func (s fixedStore) Create(context.Context, uint) (string, error) { return s.token, nil }

func (s fixedStore) UserID(_ context.Context, token string) (uint, error) {
	if token != s.token {
		return 0, session.ErrNoSession
	}
	return s.userID, nil
}

func (s fixedStore) Clear(context.Context, string) error { return nil }

func gateRouter(store session.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", RequireLogin(store), func(c *gin.Context) {
		c.String(http.StatusOK, "user %d", c.MustGet("user_id").(uint))
	})
	return r
}

func TestRequireLoginRedirectsWithoutCookie(t *testing.T) {
	r := gateRouter(fixedStore{token: "good", userID: 7})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestRequireLoginRedirectsOnDeadSession(t *testing.T) {
	r := gateRouter(fixedStore{token: "good", userID: 7})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "stale"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestRequireLoginPassesUserID(t *testing.T) {
	r := gateRouter(fixedStore{token: "good", userID: 7})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "good"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user 7", w.Body.String())
}

func TestNoCacheHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NoCache())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))
	assert.Equal(t, "0", w.Header().Get("Expires"))
}
