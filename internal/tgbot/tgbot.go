package tgbot

import (
	"log/slog"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/internal/model/tg"
	"github.com/KotFed0t/portfolio_tracker/internal/transport/telegram"
	customMW "github.com/KotFed0t/portfolio_tracker/internal/transport/telegram/middleware"
	tele "gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/middleware"
)

type TGBot struct {
	bot    *tele.Bot
	chatID int64
}

// New creates the bot without starting it, so the alert notifier can send through it
// before the controller exists.
func New(cfg *config.Config) (*TGBot, error) {
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Telegram.UpdTimeout},
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		return nil, err
	}

	return &TGBot{bot: b, chatID: cfg.Telegram.ChatID}, nil
}

// Bot exposes the sender for notifications.
func (b *TGBot) Bot() *tele.Bot {
	return b.bot
}

func (b *TGBot) Start(ctrl *telegram.Controller) {
	b.bot.Use(middleware.Recover(), customMW.Logger(), middleware.AutoRespond())
	if b.chatID != 0 {
		b.bot.Use(customMW.AllowChat(b.chatID))
	} else {
		slog.Warn("TELEGRAM_CHAT_ID is not set, the bot answers every chat")
	}

	b.setupRoutes(ctrl)

	go b.bot.Start()
	slog.Info("tgbot started!")
}

func (b *TGBot) Stop() {
	slog.Info("start stopping tgbot")
	b.bot.Stop()
	slog.Info("tgbot stopped")
}

func (b *TGBot) setupRoutes(ctrl *telegram.Controller) {
	b.bot.Handle("/start", ctrl.Start)
	b.bot.Handle("/help", ctrl.Help)
	b.bot.Handle("/summary", ctrl.Summary)
	b.bot.Handle("/holdings", ctrl.Holdings)
	b.bot.Handle("/stock", ctrl.Stock)
	b.bot.Handle("/trades", ctrl.Trades)
	b.bot.Handle("/alerts", ctrl.Alerts)

	b.bot.Handle(&tele.Btn{Unique: tg.RefreshSummary}, ctrl.RefreshSummary)
	b.bot.Handle(&tele.Btn{Unique: tg.HoldingsPage}, ctrl.HoldingsPage)
	b.bot.Handle(&tele.Btn{Unique: tg.StockDetails}, ctrl.StockDetails)
	b.bot.Handle(&tele.Btn{Unique: tg.StockTrades}, ctrl.StockTrades)

	b.bot.Handle(tele.OnText, ctrl.Help)
}
