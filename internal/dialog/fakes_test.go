package dialog

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/tool-bot/internal/domain/bookings"
	"github.com/Spok95/tool-bot/internal/domain/messages"
	"github.com/Spok95/tool-bot/internal/domain/tools"
	"github.com/Spok95/tool-bot/internal/pricing"
)

type fakeTools struct {
	mu     sync.Mutex
	items  map[int64]tools.Tool
	nextID int64
}

func newFakeTools() *fakeTools { return &fakeTools{items: map[int64]tools.Tool{}, nextID: 1} }

func (f *fakeTools) add(name string, rate string, available bool) tools.Tool {
	t, _ := f.Create(context.Background(), tools.Tool{Name: name, PricePerDay: decimal.RequireFromString(rate), Available: available})
	return *t
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

func (f *fakeTools) Create(_ context.Context, t tools.Tool) (*tools.Tool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = f.nextID
	f.nextID++
	f.items[t.ID] = t
	return &t, nil
}

func (f *fakeTools) Update(_ context.Context, id int64, p tools.Patch) (*tools.Tool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[id]
	if !ok {
		return nil, tools.ErrNotFound
	}
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.PricePerDay != nil {
		t.PricePerDay = *p.PricePerDay
	}
	if p.PhotoIDs != nil {
		t.PhotoIDs = *p.PhotoIDs
	}
	if p.Available != nil {
		t.Available = *p.Available
	}
	f.items[id] = t
	return &t, nil
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

func (f *fakeTools) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return tools.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeBookings struct {
	mu     sync.Mutex
	items  []bookings.Booking
	notes  map[int64]string
	err    error
	nextID int64
}

func newFakeBookings() *fakeBookings { return &fakeBookings{notes: map[int64]string{}, nextID: 1} }

func (f *fakeBookings) Create(_ context.Context, b bookings.Booking, note string) (*bookings.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	b.ID = f.nextID
	f.nextID++
	b.Status = bookings.StatusPending
	f.items = append(f.items, b)
	if note != "" {
		f.notes[b.ID] = note
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

func (f *fakeBookings) SetStatus(_ context.Context, id int64, to bookings.Status) (*bookings.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, b := range f.items {
		if b.ID != id {
			continue
		}
		if !b.Status.CanMoveTo(to) {
			return nil, bookings.ErrBadTransition
		}
		f.items[i].Status = to
		out := f.items[i]
		return &out, nil
	}
	return nil, bookings.ErrNotFound
}

func (f *fakeBookings) CountActiveByTool(_ context.Context, toolID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.items {
		if b.ToolID != nil && *b.ToolID == toolID && b.Status.Active() {
			n++
		}
	}
	return n, nil
}

func (f *fakeBookings) seed(b bookings.Booking) bookings.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = f.nextID
	f.nextID++
	f.items = append(f.items, b)
	return b
}

type fakeMessages struct {
	mu    sync.Mutex
	items []messages.Message
}

func (f *fakeMessages) Create(_ context.Context, m messages.Message) (*messages.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = int64(len(f.items) + 1)
	f.items = append(f.items, m)
	return &m, nil
}

type sentMessage struct {
	msg  messages.Message
	from Requester
	to   int64
}

type fakeNotifier struct {
	mu       sync.Mutex
	created  []bookings.Booking
	notes    []string
	statuses []bookings.Booking
	sent     []sentMessage
	err      error
}

func (f *fakeNotifier) BookingCreated(_ context.Context, b bookings.Booking, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, b)
	f.notes = append(f.notes, note)
	return f.err
}

func (f *fakeNotifier) BookingStatusChanged(_ context.Context, b bookings.Booking, _ Requester) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, b)
	return f.err
}

func (f *fakeNotifier) MessageSent(_ context.Context, m messages.Message, from Requester, to int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{msg: m, from: from, to: to})
	return f.err
}

const ownerID = int64(42)

var (
	alice = Requester{UserID: 100, ChatID: 100, Username: "alice", FullName: "Alice A"}
	bob   = Requester{UserID: 200, ChatID: 200, Username: "bob", FullName: "Bob B"}
	owner = Requester{UserID: ownerID, ChatID: ownerID, Username: "owner", Owner: true}
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

type harness struct {
	engine   *Engine
	store    *MemoryStore
	tools    *fakeTools
	bookings *fakeBookings
	messages *fakeMessages
	notify   *fakeNotifier
}

// newHarness — «сегодня» 2024-06-01, окно брони 1..30 дней.
func newHarness(t *testing.T, opts ...func(*harnessOpts)) *harness {
	t.Helper()
	o := harnessOpts{}
	for _, fn := range opts {
		fn(&o)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &harness{
		store:    NewMemoryStore(time.Hour),
		tools:    newFakeTools(),
		bookings: newFakeBookings(),
		messages: &fakeMessages{},
		notify:   &fakeNotifier{},
	}
	today := func() time.Time { return time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC) }
	h.engine = NewEngine(h.store, log)
	h.engine.Register(FlowBooking, NewBookingFlow(h.tools, h.bookings, h.notify, pricing.Policy{MinDays: 1, MaxDays: 30}, today, log))
	h.engine.Register(FlowAddTool, NewAuthoringFlow(h.tools, log))
	h.engine.Register(FlowEditTool, NewEditFlow(h.tools, log))
	h.engine.Register(FlowDeleteTool, NewDeleteFlow(h.tools, h.bookings, o.blockDelete, log))
	h.engine.Register(FlowReview, NewReviewFlow(h.bookings, h.notify, log))
	h.engine.Register(FlowMessage, NewMessageFlow(h.messages, h.bookings, h.notify, ownerID, log))
	return h
}

type harnessOpts struct {
	blockDelete bool
}

func withBlockDelete(o *harnessOpts) { o.blockDelete = true }
