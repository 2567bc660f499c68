package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"paper-trader/quote"
	"paper-trader/trade"

	"github.com/gin-gonic/gin"
)

// QuoteHandler serves the quote lookup pages.
type QuoteHandler struct {
	quotes quote.Service
}

// NewQuoteHandler wires the handler to the quote provider.
func NewQuoteHandler(quotes quote.Service) *QuoteHandler {
	return &QuoteHandler{quotes: quotes}
}

// QuotePage renders the symbol lookup form.
func (h *QuoteHandler) QuotePage(c *gin.Context) {
	c.HTML(http.StatusOK, "quote.html", nil)
}

// Quote accepts the form POST and forwards to the quoted view.
func (h *QuoteHandler) Quote(c *gin.Context) {
	symbol := strings.TrimSpace(c.PostForm("symbol"))
	if symbol == "" {
		apology(c, http.StatusBadRequest, trade.ErrMissingSymbol.Error())
		return
	}
	c.Redirect(http.StatusSeeOther, "/quoted?symbol="+url.QueryEscape(symbol))
}

// Quoted displays the looked-up quote. The symbol is canonicalized
// here rather than leaning on the provider client to do it.
func (h *QuoteHandler) Quoted(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Query("symbol")))
	if symbol == "" {
		apology(c, http.StatusBadRequest, trade.ErrMissingSymbol.Error())
		return
	}

	q, err := h.quotes.Lookup(c.Request.Context(), symbol)
	if errors.Is(err, quote.ErrNotFound) {
		apology(c, http.StatusBadRequest, trade.ErrUnknownSymbol.Error())
		return
	}
	if err != nil {
		apology(c, http.StatusServiceUnavailable, trade.ErrQuoteUnavailable.Error())
		return
	}

	c.HTML(http.StatusOK, "quoted.html", gin.H{
		"Symbol":  q.Symbol,
		"Company": q.Name,
		"Price":   q.Price,
	})
}
