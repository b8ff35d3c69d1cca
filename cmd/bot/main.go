package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/tool-bot/internal/bot"
	"github.com/Spok95/tool-bot/internal/config"
	"github.com/Spok95/tool-bot/internal/dialog"
	"github.com/Spok95/tool-bot/internal/domain/bookings"
	"github.com/Spok95/tool-bot/internal/domain/messages"
	"github.com/Spok95/tool-bot/internal/domain/tools"
	"github.com/Spok95/tool-bot/internal/domain/users"
	"github.com/Spok95/tool-bot/internal/infra/db"
	httpx "github.com/Spok95/tool-bot/internal/infra/http"
	"github.com/Spok95/tool-bot/internal/infra/logger"
	redisx "github.com/Spok95/tool-bot/internal/infra/redis"
	"github.com/Spok95/tool-bot/internal/infra/scheduler"
	"github.com/Spok95/tool-bot/internal/pricing"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		// логгер ещё не настроен
		slog.Error("config load failed", "err", err)
		return err
	}

	log := logger.New(cfg.App.Env, cfg.App.LogFormat)
	loc := cfg.Location()

	if err := db.Migrate(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return err
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return err
	}
	defer pool.Close()
	log.Info("db connected")

	readiness := []httpx.Pinger{pool}

	var store interface {
		dialog.Store
		scheduler.Expirer
	}
	switch cfg.Dialog.Store {
	case "memory":
		store = dialog.NewMemoryStore(cfg.Dialog.IdleTimeout)
	case "redis":
		client, err := redisx.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Error("redis connect failed", "err", err)
			return err
		}
		defer func() { _ = client.Close() }()
		rs := dialog.NewRedisStore(client, cfg.Dialog.IdleTimeout)
		readiness = append(readiness, rs)
		store = rs
	default:
		store = dialog.NewPGStore(pool, cfg.Dialog.IdleTimeout)
	}
	log.Info("dialog store ready", "store", cfg.Dialog.Store, "idle_timeout", cfg.Dialog.IdleTimeout)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Error("telegram auth failed", "err", err)
		return err
	}
	log.Info("authorized", "bot", api.Self.UserName)

	toolsRepo := tools.NewRepo(pool)
	bookingsRepo := bookings.NewRepo(pool)
	messagesRepo := messages.NewRepo(pool)
	usersRepo := users.NewRepo(pool)

	today := func() time.Time { return time.Now().In(loc) }
	policy := pricing.Policy{MinDays: cfg.Booking.MinDays, MaxDays: cfg.Booking.MaxDays}
	notifier := bot.NewNotifier(api, cfg.Telegram.OwnerID)
	flowLog := log.With("component", "dialog")

	engine := dialog.NewEngine(store, flowLog)
	engine.Register(dialog.FlowBooking, dialog.NewBookingFlow(toolsRepo, bookingsRepo, notifier, policy, today, flowLog))
	engine.Register(dialog.FlowAddTool, dialog.NewAuthoringFlow(toolsRepo, flowLog))
	engine.Register(dialog.FlowEditTool, dialog.NewEditFlow(toolsRepo, flowLog))
	engine.Register(dialog.FlowDeleteTool, dialog.NewDeleteFlow(toolsRepo, bookingsRepo, cfg.Booking.BlockDeleteWithActive, flowLog))
	engine.Register(dialog.FlowReview, dialog.NewReviewFlow(bookingsRepo, notifier, flowLog))
	engine.Register(dialog.FlowMessage, dialog.NewMessageFlow(messagesRepo, bookingsRepo, notifier, cfg.Telegram.OwnerID, flowLog))

	sched := scheduler.New(log.With("component", "scheduler"))
	if cfg.Dialog.IdleTimeout > 0 {
		if err := sched.AddDialogSweep(cfg.Dialog.SweepSpec, store, cfg.Dialog.IdleTimeout); err != nil {
			log.Error("bad sweep schedule", "err", err, "spec", cfg.Dialog.SweepSpec)
			return err
		}
	}
	sched.Start()
	defer sched.Stop()

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, readiness...)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	b := bot.New(bot.Deps{
		API:             api,
		Engine:          engine,
		Tools:           toolsRepo,
		Bookings:        bookingsRepo,
		Users:           usersRepo,
		Messages:        messagesRepo,
		Log:             log.With("component", "bot"),
		OwnerID:         cfg.Telegram.OwnerID,
		Policy:          policy,
		ToolsPerPage:    cfg.Booking.ToolsPerPage,
		BookingsPerPage: cfg.Booking.BookingsPerPage,
		Today:           today,
	})
	if err := b.Run(ctx, cfg.Telegram.Timeout); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("bot stopped", "err", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
	return nil
}
