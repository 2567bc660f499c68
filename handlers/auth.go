package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"paper-trader/middleware"
	"paper-trader/models"
	"paper-trader/session"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrMissingField       = errors.New("username and password are required")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username and/or password")
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	db           *gorm.DB
	sessions     session.Store
	startingCash float64
	sessionTTL   time.Duration
}

// NewAuthHandler wires the handler to its store and session backend.
func NewAuthHandler(db *gorm.DB, sessions session.Store, startingCash float64, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{db: db, sessions: sessions, startingCash: startingCash, sessionTTL: sessionTTL}
}

// RegisterForm is the typed /register request.
type RegisterForm struct {
	Username     string `form:"username"`
	Password     string `form:"password"`
	Confirmation string `form:"confirmation"`
}

// Validate checks field presence and the password confirmation.
func (f RegisterForm) Validate() error {
	if strings.TrimSpace(f.Username) == "" || f.Password == "" {
		return ErrMissingField
	}
	if f.Password != f.Confirmation {
		return ErrPasswordMismatch
	}
	return nil
}

// RegisterPage renders the registration form.
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", nil)
}

// Register creates a user with the starting cash balance and logs the
// new user in.
func (h *AuthHandler) Register(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		apology(c, http.StatusBadRequest, ErrMissingField.Error())
		return
	}
	if err := form.Validate(); err != nil {
		apology(c, http.StatusBadRequest, err.Error())
		return
	}

	username := strings.TrimSpace(form.Username)

	var existing models.User
	err := h.db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		apology(c, http.StatusBadRequest, ErrUsernameTaken.Error())
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		apology(c, http.StatusInternalServerError, "something went wrong")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		apology(c, http.StatusInternalServerError, "something went wrong")
		return
	}

	user := models.User{Username: username, PasswordHash: string(hash), Cash: h.startingCash}
	if err := h.db.Create(&user).Error; err != nil {
		// Unique index: a concurrent registration can still win the race.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			apology(c, http.StatusBadRequest, ErrUsernameTaken.Error())
			return
		}
		apology(c, http.StatusInternalServerError, "something went wrong")
		return
	}

	h.establishSession(c, user.ID)
}

// LoginForm is the typed /login request.
type LoginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// LoginPage renders the login form.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", nil)
}

// Login authenticates a user. Any session the browser already holds is
// cleared before the new one is established.
func (h *AuthHandler) Login(c *gin.Context) {
	h.clearSession(c)

	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		apology(c, http.StatusForbidden, ErrInvalidCredentials.Error())
		return
	}
	if strings.TrimSpace(form.Username) == "" || form.Password == "" {
		apology(c, http.StatusForbidden, ErrMissingField.Error())
		return
	}

	var user models.User
	err := h.db.Where("username = ?", strings.TrimSpace(form.Username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		apology(c, http.StatusForbidden, ErrInvalidCredentials.Error())
		return
	}
	if err != nil {
		apology(c, http.StatusInternalServerError, "something went wrong")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Password)) != nil {
		apology(c, http.StatusForbidden, ErrInvalidCredentials.Error())
		return
	}

	h.establishSession(c, user.ID)
}

// Logout clears the session and returns to the login page.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearSession(c)
	c.SetCookie(middleware.CookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *AuthHandler) establishSession(c *gin.Context, userID uint) {
	token, err := h.sessions.Create(c.Request.Context(), userID)
	if err != nil {
		apology(c, http.StatusInternalServerError, "something went wrong")
		return
	}
	c.SetCookie(middleware.CookieName, token, int(h.sessionTTL.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) clearSession(c *gin.Context) {
	if token, err := c.Cookie(middleware.CookieName); err == nil {
		_ = h.sessions.Clear(c.Request.Context(), token)
	}
}
