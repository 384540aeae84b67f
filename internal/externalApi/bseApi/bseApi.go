package bseApi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/externalApi"
	"github.com/KotFed0t/portfolio_tracker/internal/metrics"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/PaesslerAG/jsonpath"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

type BseApi struct {
	client *resty.Client
	cfg    config.BseApi
	now    func() time.Time
}

func New(cfg *config.Config) *BseApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.BseApi.Url).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent).
		SetHeader("Referer", cfg.API.BseApi.Referer)
	return &BseApi{client: client, cfg: cfg.API.BseApi, now: time.Now}
}

// GetQuote fetches the latest quote of one scrip.
func (a *BseApi) GetQuote(ctx context.Context, code string) (quote model.Quote, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	slog.Debug("start BseApi.GetQuote request", slog.String("rqID", rqID), slog.String("code", code))
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
			if errors.Is(err, externalApi.ErrNotFound) {
				status = "not_found"
			}
		}
		metrics.QuoteFetches.WithLabelValues(status).Inc()
	}()

	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam(a.cfg.CodeParam, code).
		Get(a.cfg.QuotePath)
	if err != nil {
		slog.Error("error while dialing BseApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return model.Quote{}, fmt.Errorf("%s: %w", err.Error(), externalApi.ErrUnreachable)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return model.Quote{}, fmt.Errorf("%s: %w", code, externalApi.ErrNotFound)
	}
	if resp.IsError() {
		slog.Error("BseApi responded with error", slog.String("status", resp.Status()), slog.String("rqID", rqID))
		return model.Quote{}, fmt.Errorf("%s: status %d: %w", code, resp.StatusCode(), externalApi.ErrBadResponse)
	}

	var body any
	err = json.Unmarshal(resp.Body(), &body)
	if err != nil {
		slog.Error("can't unmarshall BseApi response", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return model.Quote{}, fmt.Errorf("%s: %w", code, externalApi.ErrBadResponse)
	}

	quote, err = a.parseQuote(code, body)
	if err != nil {
		slog.Error("can't parse BseApi response", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return model.Quote{}, err
	}

	slog.Debug("BseApi.GetQuote request complete", slog.String("rqID", rqID), slog.String("price", quote.Price.String()))

	return quote, nil
}

// GetQuotes fetches quotes concurrently. Codes that fail are logged and left out of the result.
func (a *BseApi) GetQuotes(ctx context.Context, codes []string) (map[string]model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	var mu sync.Mutex
	res := make(map[string]model.Quote, len(codes))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(a.cfg.Concurrency, 1))
	for _, code := range codes {
		g.Go(func() error {
			quote, err := a.GetQuote(gCtx, code)
			if err != nil {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				slog.Warn("quote skipped", slog.String("rqID", rqID), slog.String("code", code), slog.String("err", err.Error()))
				return nil
			}
			mu.Lock()
			res[code] = quote
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return res, nil
}

func (a *BseApi) parseQuote(code string, body any) (model.Quote, error) {
	price, err := a.decimalAt(a.cfg.PriceJsonPath, body)
	if err != nil {
		return model.Quote{}, fmt.Errorf("%s: price: %v: %w", code, err, externalApi.ErrNotFound)
	}
	if !price.IsPositive() {
		return model.Quote{}, fmt.Errorf("%s: price %s: %w", code, price, externalApi.ErrNotFound)
	}

	quote := model.Quote{StockCode: code, Price: price, AsOf: a.now()}

	// OHLC fields are optional, the last price is enough to value a holding.
	quote.Open, _ = a.decimalAt(a.cfg.OpenJsonPath, body)
	quote.High, _ = a.decimalAt(a.cfg.HighJsonPath, body)
	quote.Low, _ = a.decimalAt(a.cfg.LowJsonPath, body)
	quote.PrevClose, _ = a.decimalAt(a.cfg.PrevJsonPath, body)
	if volume, err := a.decimalAt(a.cfg.VolumeJsonPath, body); err == nil {
		quote.Volume = volume.IntPart()
	}
	if a.cfg.NameJsonPath != "" {
		if name, err := jsonpath.Get(a.cfg.NameJsonPath, body); err == nil {
			if s, ok := first(name).(string); ok {
				quote.StockName = strings.TrimSpace(s)
			}
		}
	}

	return quote, nil
}

func (a *BseApi) decimalAt(path string, body any) (decimal.Decimal, error) {
	if path == "" {
		return decimal.Zero, errors.New("no path")
	}

	jval, err := jsonpath.Get(path, body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q: %w", path, err)
	}

	switch v := first(jval).(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		// the exchange formats numbers with thousands separators
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		if s == "" || s == "-" {
			return decimal.Zero, fmt.Errorf("%q: empty value", path)
		}
		return decimal.NewFromString(s)
	default:
		return decimal.Zero, fmt.Errorf("%q: unexpected value %v", path, jval)
	}
}

// first unwraps the single-element list jsonpath returns for filter expressions.
func first(jval any) any {
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		return jlist[0]
	}
	return jval
}
