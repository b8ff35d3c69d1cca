package bot

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
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

const ownerID = 42

var (
	alice = &tgbotapi.User{ID: 100, UserName: "alice", FirstName: "Alice"}
	bob   = &tgbotapi.User{ID: 200, FirstName: "Bob", LastName: "Builder"}
	boss  = &tgbotapi.User{ID: ownerID, UserName: "boss", FirstName: "Owner"}
)

// sent — исходящее сообщение в упрощённом виде.
type sent struct {
	chatID int64
	text   string
	edit   bool
	inline *tgbotapi.InlineKeyboardMarkup
	menu   bool
}

type fakeAPI struct {
	mu       sync.Mutex
	all      []tgbotapi.Chattable
	answered int
	groups   []tgbotapi.MediaGroupConfig
	sendErr  error
	updates  chan tgbotapi.Update
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.all = append(f.all, c)
	return tgbotapi.Message{MessageID: len(f.all)}, f.sendErr
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := c.(tgbotapi.CallbackConfig); ok {
		f.answered++
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) SendMediaGroup(c tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups = append(f.groups, c)
	return nil, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel { return f.updates }

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) messages() []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sent
	for _, c := range f.all {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			s := sent{chatID: m.ChatID, text: m.Text}
			switch kb := m.ReplyMarkup.(type) {
			case tgbotapi.InlineKeyboardMarkup:
				s.inline = &kb
			case tgbotapi.ReplyKeyboardMarkup:
				s.menu = true
			}
			out = append(out, s)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, sent{chatID: m.ChatID, text: m.Text, edit: true, inline: m.ReplyMarkup})
		}
	}
	return out
}

func (f *fakeAPI) last(t *testing.T) sent {
	t.Helper()
	msgs := f.messages()
	if len(msgs) == 0 {
		t.Fatal("nothing sent")
	}
	return msgs[len(msgs)-1]
}

// to — сообщения в конкретный чат.
func (f *fakeAPI) to(chatID int64) []sent {
	var out []sent
	for _, m := range f.messages() {
		if m.chatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeAPI) raw() []tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), f.all...)
}

// callbacks — все data кнопок клавиатуры.
func callbacks(kb *tgbotapi.InlineKeyboardMarkup) []string {
	if kb == nil {
		return nil
	}
	var out []string
	for _, row := range kb.InlineKeyboard {
		for _, b := range row {
			if b.CallbackData != nil {
				out = append(out, *b.CallbackData)
			}
		}
	}
	return out
}

type fakeTools struct {
	mu    sync.Mutex
	items map[int64]tools.Tool
	next  int64
}

func newFakeTools() *fakeTools { return &fakeTools{items: map[int64]tools.Tool{}, next: 1} }

func (f *fakeTools) add(name, rate string, available bool, photos ...string) tools.Tool {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := tools.Tool{ID: f.next, Name: name, PricePerDay: decimal.RequireFromString(rate), Available: available, PhotoIDs: photos}
	f.items[t.ID] = t
	f.next++
	return t
}

func (f *fakeTools) GetByID(_ context.Context, id int64) (*tools.Tool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (f *fakeTools) filtered(flt tools.Filter) []tools.Tool {
	var out []tools.Tool
	for _, t := range f.items {
		if flt.OnlyAvailable && !t.Available {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (f *fakeTools) List(_ context.Context, flt tools.Filter, offset, limit int) ([]tools.Tool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return page(f.filtered(flt), offset, limit), nil
}

func (f *fakeTools) Count(_ context.Context, flt tools.Filter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.filtered(flt)), nil
}

func (f *fakeTools) ToggleAvailable(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[id]
	if !ok {
		return false, tools.ErrNotFound
	}
	t.Available = !t.Available
	f.items[id] = t
	return t.Available, nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

type fakeBookings struct {
	mu    sync.Mutex
	items []bookings.Booking
	notes map[int64]string
	// log получает заметку как первое сообщение брони
	log *fakeMessages
}

func (f *fakeBookings) Create(_ context.Context, b bookings.Booking, note string) (*bookings.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = int64(len(f.items) + 1)
	b.Status = bookings.StatusPending
	b.CreatedAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f.items = append(f.items, b)
	if f.notes == nil {
		f.notes = map[int64]string{}
	}
	f.notes[b.ID] = note
	if note != "" && f.log != nil {
		id := b.ID
		f.log.add(messages.Message{UserID: b.UserID, BookingID: &id, Text: note, CreatedAt: b.CreatedAt})
	}
	return &b, nil
}

func (f *fakeBookings) GetByID(_ context.Context, id int64) (*bookings.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.items {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, nil
}

func (f *fakeBookings) filtered(flt bookings.Filter) []bookings.Booking {
	var out []bookings.Booking
	for i := len(f.items) - 1; i >= 0; i-- {
		b := f.items[i]
		if flt.UserID != 0 && b.UserID != flt.UserID {
			continue
		}
		if len(flt.Statuses) > 0 {
			ok := false
			for _, s := range flt.Statuses {
				ok = ok || s == b.Status
			}
			if !ok {
				continue
			}
		}
		if !flt.CreatedFrom.IsZero() && b.CreatedAt.Before(flt.CreatedFrom) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (f *fakeBookings) List(_ context.Context, flt bookings.Filter, offset, limit int) ([]bookings.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return page(f.filtered(flt), offset, limit), nil
}

func (f *fakeBookings) Count(_ context.Context, flt bookings.Filter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.filtered(flt)), nil
}

func (f *fakeBookings) Sum(_ context.Context, flt bookings.Filter) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum := decimal.Zero
	for _, b := range f.filtered(flt) {
		sum = sum.Add(b.TotalPrice)
	}
	return sum, nil
}

func (f *fakeBookings) CountCustomers(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[int64]bool{}
	for _, b := range f.items {
		seen[b.UserID] = true
	}
	return len(seen), nil
}

type fakeUsers struct {
	mu    sync.Mutex
	roles map[int64]users.Role
}

func (f *fakeUsers) UpsertFromTelegram(_ context.Context, tg users.Telegram, role users.Role) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.roles == nil {
		f.roles = map[int64]users.Role{}
	}
	f.roles[tg.ID] = role
	return &users.User{TelegramID: tg.ID, Username: tg.Username, FullName: tg.FullName(), Role: role}, nil
}

func (f *fakeUsers) CountByRole(_ context.Context, role users.Role) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.roles {
		if r == role {
			n++
		}
	}
	return n, nil
}

type fakeMessages struct {
	mu    sync.Mutex
	items []messages.Message
	err   error
}

func (f *fakeMessages) add(m messages.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, m)
}

func (f *fakeMessages) ListByBooking(_ context.Context, bookingID int64) ([]messages.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []messages.Message
	for _, m := range f.items {
		if m.BookingID != nil && *m.BookingID == bookingID {
			out = append(out, m)
		}
	}
	return out, nil
}

type harness struct {
	bot      *Bot
	api      *fakeAPI
	tools    *fakeTools
	bookings *fakeBookings
	users    *fakeUsers
	messages *fakeMessages
	engine   *dialog.Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	today := func() time.Time { return time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC) }
	policy := pricing.Policy{MinDays: 1, MaxDays: 30}

	h := &harness{
		api:      &fakeAPI{updates: make(chan tgbotapi.Update, 64)},
		tools:    newFakeTools(),
		users:    &fakeUsers{},
		messages: &fakeMessages{},
	}
	h.bookings = &fakeBookings{log: h.messages}
	h.engine = dialog.NewEngine(dialog.NewMemoryStore(time.Hour), log)
	notifier := NewNotifier(h.api, ownerID)
	h.engine.Register(dialog.FlowBooking, dialog.NewBookingFlow(h.tools, h.bookings, notifier, policy, today, log))

	h.bot = New(Deps{
		API: h.api, Engine: h.engine, Tools: h.tools, Bookings: h.bookings, Users: h.users, Messages: h.messages, Log: log,
		OwnerID: ownerID, Policy: policy, ToolsPerPage: 5, BookingsPerPage: 10, Today: today, Workers: 4,
	})
	return h
}

func (h *harness) do(upd tgbotapi.Update) { h.bot.HandleUpdate(context.Background(), upd) }

func command(from *tgbotapi.User, text string) tgbotapi.Update {
	cmd := strings.Fields(text)[0]
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1, From: from, Chat: &tgbotapi.Chat{ID: from.ID}, Text: text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func text(from *tgbotapi.User, s string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{MessageID: 1, From: from, Chat: &tgbotapi.Chat{ID: from.ID}, Text: s}}
}

func press(from *tgbotapi.User, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID: "cb", From: from, Data: data,
		Message: &tgbotapi.Message{MessageID: 77, Chat: &tgbotapi.Chat{ID: from.ID}},
	}}
}
