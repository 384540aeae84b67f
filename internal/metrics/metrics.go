package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TradesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_trades_recorded_total",
		Help: "Trades appended to the ledger, by direction and status",
	}, []string{"direction", "status"})

	ActionsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_corporate_actions_recorded_total",
		Help: "Corporate actions appended to the log, by kind and status",
	}, []string{"kind", "status"})

	RebuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portfolio_rebuild_duration_seconds",
		Help:    "Duration of position rebuilds",
		Buckets: prometheus.DefBuckets,
	}, []string{"scope"})

	QuoteFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_quote_fetches_total",
		Help: "Quote requests to the exchange, by status",
	}, []string{"status"})

	QuoteCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_quote_cache_total",
		Help: "Quote cache lookups, by result",
	}, []string{"result"})

	AlertsTriggered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_alerts_triggered_total",
		Help: "Alert rules that fired, by type",
	}, []string{"type"})

	BotUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_bot_updates_total",
		Help: "Telegram updates handled, by handler and status",
	}, []string{"handler", "status"})

	HttpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "portfolio_http_duration_seconds",
		Help: "Duration of HTTP requests",
	}, []string{"method", "route", "status_code"})
)

func RecordCacheLookup(hit bool) {
	if hit {
		QuoteCache.WithLabelValues("hit").Inc()
		return
	}
	QuoteCache.WithLabelValues("miss").Inc()
}

type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(time.Since(t.start).Seconds())
}

func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
