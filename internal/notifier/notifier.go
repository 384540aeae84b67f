// Package notifier delivers triggered price alerts.
package notifier

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/portfolio_tracker/internal/converter/telebotConverter"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/utils"
	tele "gopkg.in/telebot.v4"
)

type Notifier interface {
	Notify(ctx context.Context, event model.AlertEvent) error
}

// Sender is the part of tele.Bot used to push messages.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Log writes alerts to the application log. It is always on so alerts are never lost
// when no chat is configured.
type Log struct{}

func (Log) Notify(ctx context.Context, event model.AlertEvent) error {
	slog.Warn(
		"price alert",
		slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
		slog.Int64("ruleID", event.RuleID),
		slog.String("stockCode", event.StockCode),
		slog.String("type", string(event.Type)),
		slog.String("price", event.Price.String()),
		slog.String("message", event.Message),
	)
	return nil
}

type Telegram struct {
	sender Sender
	chatID int64
}

func NewTelegram(sender Sender, chatID int64) *Telegram {
	return &Telegram{sender: sender, chatID: chatID}
}

func (t *Telegram) Notify(ctx context.Context, event model.AlertEvent) error {
	_, err := t.sender.Send(tele.ChatID(t.chatID), telebotConverter.AlertResponse(event))
	if err != nil {
		slog.Error(
			"failed to send alert to telegram",
			slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
			slog.Int64("chatID", t.chatID),
			slog.String("err", err.Error()),
		)
	}
	return err
}

// Multi fans an alert out to every notifier and reports all failures.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event model.AlertEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
