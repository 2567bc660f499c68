package handlers

import (
	"net/http"

	"paper-trader/trade"

	"github.com/gin-gonic/gin"
)

// PortfolioHandler serves the portfolio, history and chart pages.
type PortfolioHandler struct {
	aggregator *trade.Aggregator
}

// NewPortfolioHandler wires the handler to the aggregator.
func NewPortfolioHandler(aggregator *trade.Aggregator) *PortfolioHandler {
	return &PortfolioHandler{aggregator: aggregator}
}

// Index shows the user's open positions, cash, and grand total.
func (h *PortfolioHandler) Index(c *gin.Context) {
	p, err := h.aggregator.PortfolioValue(c.Request.Context(), currentUserID(c))
	if err != nil {
		status, msg := tradeStatus(err)
		apology(c, status, msg)
		return
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Holdings": p.Holdings,
		"Cash":     p.Cash,
		"Total":    p.Total,
	})
}

// History lists every ledger row for the user, oldest first.
func (h *PortfolioHandler) History(c *gin.Context) {
	entries, err := h.aggregator.History(c.Request.Context(), currentUserID(c))
	if err != nil {
		status, msg := tradeStatus(err)
		apology(c, status, msg)
		return
	}
	c.HTML(http.StatusOK, "history.html", gin.H{"Entries": entries})
}

// Graph renders the pie chart of the portfolio's composition.
func (h *PortfolioHandler) Graph(c *gin.Context) {
	series, err := h.aggregator.Chart(c.Request.Context(), currentUserID(c))
	if err != nil {
		status, msg := tradeStatus(err)
		apology(c, status, msg)
		return
	}
	c.HTML(http.StatusOK, "graph.html", gin.H{
		"Labels": series.Labels,
		"Values": series.Values,
	})
}
