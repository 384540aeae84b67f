package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/redis/go-redis/v9"
)

var ErrMiss = errors.New("cache miss")

const (
	quotePrefix = "quote:"
	summaryKey  = "summary:live"
)

type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func (r *RedisCache) SetQuotes(ctx context.Context, quotes []model.Quote) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("start SetQuotes", slog.String("rqID", rqID), slog.Int("count", len(quotes)))

	pipe := r.redis.Pipeline()
	for _, quote := range quotes {
		quoteJson, err := json.Marshal(quote)
		if err != nil {
			slog.Error(
				"can't marshall quote in SetQuotes",
				slog.String("rqID", rqID),
				slog.String("err", err.Error()),
				slog.Any("quote", quote),
			)
			return errors.New("can't marshall quote")
		}

		pipe.Set(ctx, quotePrefix+quote.StockCode, quoteJson, r.cfg.Cache.QuoteExpiration)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Error("failed on pipe.Exec", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetQuotes completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetQuote(ctx context.Context, code string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetQuote start", slog.String("rqID", rqID), slog.String("code", code))

	quote := model.Quote{}
	if err := r.get(ctx, quotePrefix+code, &quote); err != nil {
		return model.Quote{}, err
	}

	slog.Debug("GetQuote finished", slog.String("rqID", rqID))

	return quote, nil
}

func (r *RedisCache) SetSummary(ctx context.Context, summary model.PortfolioSummary) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	summaryJson, err := json.Marshal(summary)
	if err != nil {
		slog.Error("can't marshall summary", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return errors.New("can't marshall summary")
	}

	err = r.redis.Set(ctx, summaryKey, summaryJson, r.cfg.Cache.SummaryExpiration).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", summaryKey))
		return err
	}

	return nil
}

func (r *RedisCache) GetSummary(ctx context.Context) (model.PortfolioSummary, error) {
	summary := model.PortfolioSummary{}
	if err := r.get(ctx, summaryKey, &summary); err != nil {
		return model.PortfolioSummary{}, err
	}
	return summary, nil
}

// FlushSummary drops the cached summary after a ledger write.
func (r *RedisCache) FlushSummary(ctx context.Context) error {
	err := r.redis.Del(ctx, summaryKey).Err()
	if err != nil {
		slog.Error(
			"failed on redis.Del",
			slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
			slog.String("err", err.Error()),
			slog.String("key", summaryKey),
		)
	}
	return err
}

func (r *RedisCache) get(ctx context.Context, key string, dest any) error {
	rqID := utils.GetRequestIDFromCtx(ctx)

	res, err := r.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", key))
		return err
	}

	err = json.Unmarshal([]byte(res), dest)
	if err != nil {
		slog.Error(
			"can't unmarshall cached value",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return errors.New("can't unmarshall cached value")
	}

	return nil
}
