package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"github.com/Spok95/tool-bot/internal/dialog"
	"github.com/Spok95/tool-bot/internal/domain/bookings"
	"github.com/Spok95/tool-bot/internal/domain/messages"
	"github.com/Spok95/tool-bot/internal/domain/tools"
	"github.com/Spok95/tool-bot/internal/domain/users"
	"github.com/Spok95/tool-bot/internal/pricing"
)

// API — часть tgbotapi.BotAPI, которой пользуется бот.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMediaGroup(c tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error)
	GetUpdatesChan(c tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type ToolCatalog interface {
	GetByID(ctx context.Context, id int64) (*tools.Tool, error)
	List(ctx context.Context, f tools.Filter, offset, limit int) ([]tools.Tool, error)
	Count(ctx context.Context, f tools.Filter) (int, error)
	ToggleAvailable(ctx context.Context, id int64) (bool, error)
}

type BookingLedger interface {
	GetByID(ctx context.Context, id int64) (*bookings.Booking, error)
	List(ctx context.Context, f bookings.Filter, offset, limit int) ([]bookings.Booking, error)
	Count(ctx context.Context, f bookings.Filter) (int, error)
	Sum(ctx context.Context, f bookings.Filter) (decimal.Decimal, error)
	CountCustomers(ctx context.Context) (int, error)
}

type UserRegistry interface {
	UpsertFromTelegram(ctx context.Context, tg users.Telegram, role users.Role) (*users.User, error)
	CountByRole(ctx context.Context, role users.Role) (int, error)
}

// MessageLog — заметки и переписка по брони.
type MessageLog interface {
	ListByBooking(ctx context.Context, bookingID int64) ([]messages.Message, error)
}

type Deps struct {
	API      API
	Engine   *dialog.Engine
	Tools    ToolCatalog
	Bookings BookingLedger
	Users    UserRegistry
	Messages MessageLog
	Log      *slog.Logger

	OwnerID         int64
	Policy          pricing.Policy
	ToolsPerPage    int
	BookingsPerPage int
	// Today — текущая дата в часовом поясе сервиса.
	Today   func() time.Time
	Workers int
}

type Bot struct {
	api      API
	engine   *dialog.Engine
	tools    ToolCatalog
	bookings BookingLedger
	users    UserRegistry
	messages MessageLog
	log      *slog.Logger

	ownerID         int64
	policy          pricing.Policy
	toolsPerPage    int
	bookingsPerPage int
	today           func() time.Time
	workers         int
}

func New(d Deps) *Bot {
	b := &Bot{
		api: d.API, engine: d.Engine, tools: d.Tools, bookings: d.Bookings, users: d.Users, messages: d.Messages, log: d.Log,
		ownerID: d.OwnerID, policy: d.Policy,
		toolsPerPage: d.ToolsPerPage, bookingsPerPage: d.BookingsPerPage,
		today: d.Today, workers: d.Workers,
	}
	if b.toolsPerPage <= 0 {
		b.toolsPerPage = 5
	}
	if b.bookingsPerPage <= 0 {
		b.bookingsPerPage = 10
	}
	if b.workers <= 0 {
		b.workers = 8
	}
	if b.today == nil {
		b.today = time.Now
	}
	return b
}

// Run читает апдейты и раздаёт их воркерам по пользователю: действия одного
// пользователя обрабатываются строго по очереди, разные пользователи параллельно.
func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)

	shards := make([]chan Action, b.workers)
	var wg sync.WaitGroup
	for i := range shards {
		shards[i] = make(chan Action, 32)
		wg.Add(1)
		go func(in <-chan Action) {
			defer wg.Done()
			for a := range in {
				if ctx.Err() != nil {
					continue
				}
				// начатую обработку доводим до конца даже при остановке
				b.handle(context.WithoutCancel(ctx), a)
			}
		}(shards[i])
	}
	defer func() {
		b.api.StopReceivingUpdates()
		for _, ch := range shards {
			close(ch)
		}
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			a, ok := actionFrom(upd)
			if !ok {
				continue
			}
			select {
			case shards[shardFor(a.From.ID, len(shards))] <- a:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// HandleUpdate обрабатывает один апдейт синхронно.
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if a, ok := actionFrom(upd); ok {
		b.handle(ctx, a)
	}
}

func shardFor(userID int64, n int) int {
	if userID < 0 {
		userID = -userID
	}
	return int(userID % int64(n))
}

func (b *Bot) isOwner(userID int64) bool { return userID == b.ownerID }

func (b *Bot) requester(a Action) dialog.Requester {
	return dialog.Requester{
		UserID:   a.From.ID,
		ChatID:   a.ChatID,
		Username: a.From.Username,
		FullName: a.From.FullName(),
		Owner:    b.isOwner(a.From.ID),
	}
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}

func (b *Bot) answerCallback(id, text string, alert bool) {
	resp := tgbotapi.NewCallback(id, text)
	resp.ShowAlert = alert
	if _, err := b.api.Request(resp); err != nil {
		b.log.Warn("callback answer failed", "err", err)
	}
}
