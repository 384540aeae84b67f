package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/metrics"
	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

func Logger() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			now := time.Now()

			rqID := uuid.NewString()
			c.Set("rqID", rqID)

			handler := handlerName(c)
			slog.Info(
				"start request",
				slog.String("rqID", rqID),
				slog.String("handler", handler),
			)

			err := next(c)

			metrics.BotUpdates.WithLabelValues(handler, metrics.Status(err)).Inc()
			slog.Info(
				"request finished",
				slog.String("rqID", rqID),
				slog.String("handler", handler),
				slog.String("request duration", fmt.Sprintf("%.2fs", time.Since(now).Seconds())),
			)

			return err
		}
	}
}

// AllowChat drops updates from every chat except the owner's.
func AllowChat(chatID int64) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			if chat == nil || chat.ID != chatID {
				if chat != nil {
					slog.Warn("update from foreign chat ignored", slog.Int64("chatID", chat.ID))
				}
				return nil
			}
			return next(c)
		}
	}
}

func handlerName(c tele.Context) string {
	if cb := c.Callback(); cb != nil {
		return "callback:" + cb.Unique
	}
	if msg := c.Message(); msg != nil && len(msg.Text) > 0 && msg.Text[0] == '/' {
		return msg.Text[:commandEnd(msg.Text)]
	}
	return "text"
}

func commandEnd(text string) int {
	for i, r := range text {
		if r == ' ' || r == '@' {
			return i
		}
	}
	return len(text)
}
