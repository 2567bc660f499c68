package middleware

import (
	"net/http"

	"paper-trader/session"

	"github.com/gin-gonic/gin"
)

// CookieName is the browser cookie carrying the session token.
const CookieName = "session"

// RequireLogin redirects to /login unless the request carries a live
// session, and otherwise puts the user id in the context as "user_id".
func RequireLogin(store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		userID, err := store.UserID(c.Request.Context(), token)
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}

// NoCache disables response caching so stale balances are never shown
// after a trade.
func NoCache() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Header("Expires", "0")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}
