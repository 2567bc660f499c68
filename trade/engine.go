// Package trade holds the business rules for moving money and shares
// between a user's cash balance and the portfolio ledger.
package trade

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"paper-trader/models"
	"paper-trader/quote"

	"gorm.io/gorm"
)

// Engine validates and executes buy/sell orders. Each order appends one
// ledger row and adjusts the cash balance in a single transaction; a
// failed order leaves both untouched.
type Engine struct {
	db     *gorm.DB
	quotes quote.Service
}

// NewEngine wires the engine to its store and quote provider.
func NewEngine(db *gorm.DB, quotes quote.Service) *Engine {
	return &Engine{db: db, quotes: quotes}
}

// Order is a parsed, validated trade request.
type Order struct {
	Symbol string
	Shares int
}

// ParseOrder turns raw form fields into an Order. Shares must be a
// positive integer on both the buy and sell paths.
func ParseOrder(symbol, shares string) (Order, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Order{}, ErrMissingSymbol
	}
	n, err := strconv.Atoi(strings.TrimSpace(shares))
	if err != nil || n <= 0 {
		return Order{}, ErrInvalidShares
	}
	return Order{Symbol: symbol, Shares: n}, nil
}

// Executed describes a completed trade, for flash messages and logging.
type Executed struct {
	Symbol string
	Shares int
	Price  float64
	Total  float64
}

// Buy purchases ord.Shares of ord.Symbol at the current market price.
func (e *Engine) Buy(ctx context.Context, userID uint, ord Order) (Executed, error) {
	q, err := e.lookup(ctx, ord.Symbol)
	if err != nil {
		return Executed{}, err
	}
	cost := float64(ord.Shares) * q.Price

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The guarded update is the serialization point: concurrent
		// trades for the same user queue on the row write, and the
		// cash >= cost predicate makes the funds check atomic with
		// the debit.
		res := tx.Model(&models.User{}).
			Where("id = ? AND cash >= ?", userID, cost).
			Update("cash", gorm.Expr("cash - ?", cost))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientFunds
		}
		entry := models.PortfolioEntry{
			UserID: userID,
			Symbol: q.Symbol,
			Shares: ord.Shares,
			Price:  q.Price,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return Executed{}, err
	}
	return Executed{Symbol: q.Symbol, Shares: ord.Shares, Price: q.Price, Total: cost}, nil
}

// Sell disposes of ord.Shares of ord.Symbol at the current market price.
func (e *Engine) Sell(ctx context.Context, userID uint, ord Order) (Executed, error) {
	q, err := e.lookup(ctx, ord.Symbol)
	if err != nil {
		return Executed{}, err
	}
	proceeds := float64(ord.Shares) * q.Price

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Credit cash first: the row write locks the user's balance
		// row, so the holdings sum below cannot race a concurrent
		// trade by the same user.
		res := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("cash", gorm.Expr("cash + ?", proceeds))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var held int
		err := tx.Model(&models.PortfolioEntry{}).
			Where("user_id = ? AND symbol = ?", userID, q.Symbol).
			Select("COALESCE(SUM(shares), 0)").
			Scan(&held).Error
		if err != nil {
			return err
		}
		if ord.Shares > held {
			return ErrInsufficientShares
		}

		entry := models.PortfolioEntry{
			UserID: userID,
			Symbol: q.Symbol,
			Shares: -ord.Shares,
			Price:  q.Price,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return Executed{}, err
	}
	return Executed{Symbol: q.Symbol, Shares: ord.Shares, Price: q.Price, Total: proceeds}, nil
}

func (e *Engine) lookup(ctx context.Context, symbol string) (quote.Quote, error) {
	q, err := e.quotes.Lookup(ctx, symbol)
	if errors.Is(err, quote.ErrNotFound) {
		return quote.Quote{}, ErrUnknownSymbol
	}
	if err != nil {
		return quote.Quote{}, fmt.Errorf("%w: %v", ErrQuoteUnavailable, err)
	}
	return q, nil
}
