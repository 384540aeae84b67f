package cache

import (
	"context"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
)

// Noop is used when Redis is disabled. Every read is a miss.
type Noop struct{}

func (Noop) SetQuotes(context.Context, []model.Quote) error { return nil }

func (Noop) GetQuote(context.Context, string) (model.Quote, error) { return model.Quote{}, ErrMiss }

func (Noop) SetSummary(context.Context, model.PortfolioSummary) error { return nil }

func (Noop) GetSummary(context.Context) (model.PortfolioSummary, error) {
	return model.PortfolioSummary{}, ErrMiss
}

func (Noop) FlushSummary(context.Context) error { return nil }
