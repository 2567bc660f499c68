package handlers

import (
	"errors"
	"net/http"

	"paper-trader/trade"

	"github.com/gin-gonic/gin"
)

// apology renders the error page with a message and status code. All
// domain failures end here; nothing is retried automatically.
func apology(c *gin.Context, status int, message string) {
	c.HTML(status, "apology.html", gin.H{
		"Status":  status,
		"Message": message,
	})
	c.Abort()
}

// tradeStatus maps a domain error to the HTTP status it renders with.
// Unclassified errors become a generic 500.
func tradeStatus(err error) (int, string) {
	switch {
	case errors.Is(err, trade.ErrInvalidShares),
		errors.Is(err, trade.ErrMissingSymbol):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, trade.ErrUnknownSymbol):
		return http.StatusBadRequest, trade.ErrUnknownSymbol.Error()
	case errors.Is(err, trade.ErrInsufficientFunds):
		return http.StatusBadRequest, trade.ErrInsufficientFunds.Error()
	case errors.Is(err, trade.ErrInsufficientShares):
		return http.StatusBadRequest, trade.ErrInsufficientShares.Error()
	case errors.Is(err, trade.ErrQuoteUnavailable):
		return http.StatusServiceUnavailable, trade.ErrQuoteUnavailable.Error()
	default:
		return http.StatusInternalServerError, "something went wrong"
	}
}

func currentUserID(c *gin.Context) uint {
	return c.MustGet("user_id").(uint)
}
