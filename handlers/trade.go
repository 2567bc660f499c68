package handlers

import (
	"net/http"

	"paper-trader/trade"

	"github.com/gin-gonic/gin"
)

// TradeHandler serves the buy and sell routes.
type TradeHandler struct {
	engine     *trade.Engine
	aggregator *trade.Aggregator
}

// NewTradeHandler wires the handler to the trade engine.
func NewTradeHandler(engine *trade.Engine, aggregator *trade.Aggregator) *TradeHandler {
	return &TradeHandler{engine: engine, aggregator: aggregator}
}

// TradeForm is the typed buy/sell request.
type TradeForm struct {
	Symbol string `form:"symbol"`
	Shares string `form:"shares"`
}

// BuyPage renders the buy form.
func (h *TradeHandler) BuyPage(c *gin.Context) {
	c.HTML(http.StatusOK, "buy.html", nil)
}

// Buy executes a purchase and redirects to the portfolio.
func (h *TradeHandler) Buy(c *gin.Context) {
	var form TradeForm
	if err := c.ShouldBind(&form); err != nil {
		apology(c, http.StatusBadRequest, trade.ErrInvalidShares.Error())
		return
	}

	ord, err := trade.ParseOrder(form.Symbol, form.Shares)
	if err != nil {
		status, msg := tradeStatus(err)
		apology(c, status, msg)
		return
	}

	if _, err := h.engine.Buy(c.Request.Context(), currentUserID(c), ord); err != nil {
		status, msg := tradeStatus(err)
		apology(c, status, msg)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// SellPage renders the sell form listing the symbols currently held.
func (h *TradeHandler) SellPage(c *gin.Context) {
	holdings, err := h.aggregator.Holdings(c.Request.Context(), currentUserID(c))
	if err != nil {
		status, msg := tradeStatus(err)
		apology(c, status, msg)
		return
	}
	c.HTML(http.StatusOK, "sell.html", gin.H{"Holdings": holdings})
}

// Sell executes a sale and redirects to the portfolio.
func (h *TradeHandler) Sell(c *gin.Context) {
	var form TradeForm
	if err := c.ShouldBind(&form); err != nil {
		apology(c, http.StatusBadRequest, trade.ErrInvalidShares.Error())
		return
	}

	ord, err := trade.ParseOrder(form.Symbol, form.Shares)
	if err != nil {
		status, msg := tradeStatus(err)
		apology(c, status, msg)
		return
	}

	if _, err := h.engine.Sell(c.Request.Context(), currentUserID(c), ord); err != nil {
		status, msg := tradeStatus(err)
		apology(c, status, msg)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}
