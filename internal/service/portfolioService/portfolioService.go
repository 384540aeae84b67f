package portfolioService

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/data/repository"
	"github.com/KotFed0t/portfolio_tracker/internal/accounting"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/shopspring/decimal"
)

type Repository interface {
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error

	UpsertStock(ctx context.Context, code, name string) error
	GetStock(ctx context.Context, code string) (model.Stock, error)
	GetStocks(ctx context.Context, onlyActive bool) ([]model.Stock, error)
	SetStockActive(ctx context.Context, code string, active bool) error
	UpdateLastPrice(ctx context.Context, code string, price decimal.Decimal, asOf time.Time) error

	InsertTrade(ctx context.Context, trade model.TradeEvent) (int64, error)
	GetTrades(ctx context.Context, filter model.TradeFilter) ([]model.TradeEvent, error)
	HasTrades(ctx context.Context, code string) (bool, error)
	InsertCorporateAction(ctx context.Context, action model.CorporateAction) (int64, error)
	GetCorporateActions(ctx context.Context, filter model.ActionFilter) ([]model.CorporateAction, error)

	UpsertPosition(ctx context.Context, pos model.Position) error
	GetPosition(ctx context.Context, code string) (model.Position, error)
	GetPositions(ctx context.Context) ([]model.Position, error)

	UpsertPriceBar(ctx context.Context, bar model.PriceBar) error
	GetPriceHistory(ctx context.Context, code string, limit int) ([]model.PriceBar, error)

	InsertAlertRule(ctx context.Context, rule model.AlertRule) (int64, error)
	GetAlertRules(ctx context.Context, code string, onlyActive bool) ([]model.AlertRule, error)
	SetAlertRuleActive(ctx context.Context, id int64, active bool) error
	DeleteAlertRule(ctx context.Context, id int64) error
	MarkAlertTriggered(ctx context.Context, id int64, at time.Time) error
	InsertAlertEvent(ctx context.Context, event model.AlertEvent) (int64, error)
	GetAlertHistory(ctx context.Context, code string, limit int) ([]model.AlertEvent, error)
}

type Cache interface {
	SetQuotes(ctx context.Context, quotes []model.Quote) error
	GetQuote(ctx context.Context, code string) (model.Quote, error)
	SetSummary(ctx context.Context, summary model.PortfolioSummary) error
	GetSummary(ctx context.Context) (model.PortfolioSummary, error)
	FlushSummary(ctx context.Context) error
}

type QuoteApi interface {
	GetQuote(ctx context.Context, code string) (model.Quote, error)
	GetQuotes(ctx context.Context, codes []string) (map[string]model.Quote, error)
}

type Notifier interface {
	Notify(ctx context.Context, event model.AlertEvent) error
}

type ReportGenerator interface {
	Generate(ctx context.Context, report model.Report) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
	DeleteOldFiles(ctx context.Context) error
}

type PortfolioService struct {
	cfg             *config.Config
	repo            Repository
	cache           Cache
	quoteApi        QuoteApi
	notifier        Notifier
	reportGenerator ReportGenerator
	cloudStorage    CloudStorage
	now             func() time.Time

	// summaryGen changes on every ledger or price write, a summary computed under an older value is not cached
	summaryGen atomic.Uint64
}

// New wires the service. cloudStorage may be nil when uploads are disabled.
func New(
	cfg *config.Config,
	repo Repository,
	cache Cache,
	quoteApi QuoteApi,
	notifier Notifier,
	reportGenerator ReportGenerator,
	cloudStorage CloudStorage,
) *PortfolioService {
	return &PortfolioService{
		cfg:             cfg,
		repo:            repo,
		cache:           cache,
		quoteApi:        quoteApi,
		notifier:        notifier,
		reportGenerator: reportGenerator,
		cloudStorage:    cloudStorage,
		now:             time.Now,
	}
}

// flushSummary runs synchronously so the next read does not see the old summary.
func (s *PortfolioService) flushSummary(ctx context.Context) {
	s.summaryGen.Add(1)
	if err := s.cache.FlushSummary(ctx); err != nil {
		slog.Error(
			"got error from cache.FlushSummary",
			slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
			slog.String("err", err.Error()),
		)
	}
}

// stockExists maps a missing stock to accounting.ErrUnknownStock.
func (s *PortfolioService) stockExists(ctx context.Context, code string) (model.Stock, error) {
	stock, err := s.repo.GetStock(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Stock{}, fmt.Errorf("%w: %s", accounting.ErrUnknownStock, code)
		}
		return model.Stock{}, err
	}
	return stock, nil
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return service.ErrNotFound
	}
	return err
}

// asDate drops the time of day, ledger dates are calendar dates.
func asDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
