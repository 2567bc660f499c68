package trade

import (
	"context"
	"fmt"
	"sort"

	"paper-trader/models"
	"paper-trader/quote"

	"gorm.io/gorm"
)

// Aggregator derives holdings and valuation from the ledger. It never
// caches quotes: every call re-fetches so displayed prices are live.
type Aggregator struct {
	db     *gorm.DB
	quotes quote.Service
}

// NewAggregator wires the aggregator to its store and quote provider.
func NewAggregator(db *gorm.DB, quotes quote.Service) *Aggregator {
	return &Aggregator{db: db, quotes: quotes}
}

// Portfolio is the index-page view: priced holdings, cash, and the
// grand total (cash plus market value of every open position).
type Portfolio struct {
	Holdings []models.Holding
	Cash     float64
	Total    float64
}

// ChartSeries is a pair of parallel label/value slices for the pie
// chart, with a trailing CASH entry.
type ChartSeries struct {
	Labels []string
	Values []float64
}

// netPositions sums the ledger per symbol and drops closed positions.
func (a *Aggregator) netPositions(ctx context.Context, userID uint) ([]models.Holding, error) {
	type row struct {
		Symbol string
		Net    int
	}
	var rows []row
	err := a.db.WithContext(ctx).Model(&models.PortfolioEntry{}).
		Where("user_id = ?", userID).
		Select("symbol, SUM(shares) AS net").
		Group("symbol").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	holdings := make([]models.Holding, 0, len(rows))
	for _, r := range rows {
		if r.Net == 0 {
			continue
		}
		holdings = append(holdings, models.Holding{Symbol: r.Symbol, Shares: r.Net})
	}
	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].Symbol < holdings[j].Symbol
	})
	return holdings, nil
}

// Holdings returns the user's open positions with live name and price
// attached to each.
func (a *Aggregator) Holdings(ctx context.Context, userID uint) ([]models.Holding, error) {
	holdings, err := a.netPositions(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range holdings {
		q, err := a.quotes.Lookup(ctx, holdings[i].Symbol)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrQuoteUnavailable, err)
		}
		holdings[i].Name = q.Name
		holdings[i].Price = q.Price
	}
	return holdings, nil
}

// PortfolioValue prices the user's holdings and adds the cash balance.
func (a *Aggregator) PortfolioValue(ctx context.Context, userID uint) (Portfolio, error) {
	holdings, err := a.Holdings(ctx, userID)
	if err != nil {
		return Portfolio{}, err
	}

	var user models.User
	if err := a.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return Portfolio{}, err
	}

	total := user.Cash
	for _, h := range holdings {
		total += h.Value()
	}
	return Portfolio{Holdings: holdings, Cash: user.Cash, Total: total}, nil
}

// History returns every ledger row for the user, oldest first.
func (a *Aggregator) History(ctx context.Context, userID uint) ([]models.PortfolioEntry, error) {
	var entries []models.PortfolioEntry
	err := a.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

// Chart builds the pie-chart series from the same holdings computation
// the index page uses, so the two views never drift.
func (a *Aggregator) Chart(ctx context.Context, userID uint) (ChartSeries, error) {
	p, err := a.PortfolioValue(ctx, userID)
	if err != nil {
		return ChartSeries{}, err
	}

	series := ChartSeries{
		Labels: make([]string, 0, len(p.Holdings)+1),
		Values: make([]float64, 0, len(p.Holdings)+1),
	}
	for _, h := range p.Holdings {
		series.Labels = append(series.Labels, h.Symbol)
		series.Values = append(series.Values, h.Value())
	}
	series.Labels = append(series.Labels, "CASH")
	series.Values = append(series.Values, p.Cash)
	return series, nil
}
