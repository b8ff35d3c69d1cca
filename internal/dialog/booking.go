package dialog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Spok95/tool-bot/internal/domain/bookings"
	"github.com/Spok95/tool-bot/internal/infra/metrics"
	"github.com/Spok95/tool-bot/internal/pricing"
)

// BookingFlow: инструмент → начало → конец → доставка → [адрес] → заметка → подтверждение.
type BookingFlow struct {
	tools    ToolReader
	bookings BookingWriter
	notify   Notifier
	policy   pricing.Policy
	today    func() time.Time
	log      *slog.Logger
}

func NewBookingFlow(tr ToolReader, bw BookingWriter, n Notifier, policy pricing.Policy, today func() time.Time, log *slog.Logger) *BookingFlow {
	return &BookingFlow{tools: tr, bookings: bw, notify: n, policy: policy, today: today, log: log}
}

func (f *BookingFlow) Begin(_ context.Context, s *Session) (Reply, error) {
	s.State = StateBookingTool
	s.Booking = &BookingDraft{}
	return Reply{}, nil
}

func (f *BookingFlow) Handle(ctx context.Context, s *Session, in Input) (Reply, error) {
	d := s.Booking
	if d == nil {
		return Reply{}, ErrNoDialog
	}
	today := pricing.Day(f.today())

	switch s.State {
	case StateBookingTool:
		if in.Kind != KindTool {
			return Reply{}, invalid(ErrUnexpectedInput)
		}
		t, err := f.tools.GetByID(ctx, in.ID)
		if err != nil {
			return Reply{}, err
		}
		if t == nil {
			return Reply{}, ErrNotFound
		}
		if !t.Available {
			return Reply{}, invalid(ErrToolUnavailable)
		}
		// цена фиксируется здесь и дальше не перечитывается
		d.ToolID, d.ToolName, d.Rate = t.ID, t.Name, t.PricePerDay
		s.State = StateBookingStart
		return Reply{Tool: t, Month: monthOf(today)}, nil

	case StateBookingStart:
		switch in.Kind {
		case KindNavigate:
			return Reply{Month: clampMonth(in.Date, today)}, nil
		case KindDate:
			start := pricing.Day(in.Date)
			if start.Before(today) {
				return Reply{Month: monthOf(today)}, invalid(pricing.ErrStartInPast)
			}
			d.Start = &start
			s.State = StateBookingEnd
			return Reply{Month: monthOf(start)}, nil
		}
		return Reply{Month: monthOf(today)}, invalid(ErrUnexpectedInput)

	case StateBookingEnd:
		start := *d.Start
		switch in.Kind {
		case KindNavigate:
			return Reply{Month: clampMonth(in.Date, start)}, nil
		case KindDate:
			end := pricing.Day(in.Date)
			days, err := f.policy.Validate(start, end, today)
			if err != nil {
				return Reply{Month: monthOf(start)}, invalid(err)
			}
			d.End = &end
			d.Days = days
			d.Total = pricing.TotalPrice(days, d.Rate)
			s.State = StateBookingDelivery
			return Reply{}, nil
		}
		return Reply{Month: monthOf(start)}, invalid(ErrUnexpectedInput)

	case StateBookingDelivery:
		if in.Kind != KindChoice {
			return Reply{}, invalid(ErrUnexpectedInput)
		}
		d.Delivery = in.Flag
		d.Address = nil
		if in.Flag {
			s.State = StateBookingAddress
		} else {
			s.State = StateBookingNote
		}
		return Reply{}, nil

	case StateBookingAddress:
		switch in.Kind {
		case KindSkip:
			addr := bookings.AddressToBeProvided
			d.Address = &addr
		case KindText:
			addr := strings.TrimSpace(in.Text)
			if addr == "" {
				return Reply{}, invalid(ErrEmptyText)
			}
			d.Address = &addr
		default:
			return Reply{}, invalid(ErrUnexpectedInput)
		}
		s.State = StateBookingNote
		return Reply{}, nil

	case StateBookingNote:
		switch in.Kind {
		case KindSkip:
			d.Note = ""
		case KindText:
			d.Note = strings.TrimSpace(in.Text)
		default:
			return Reply{}, invalid(ErrUnexpectedInput)
		}
		s.State = StateBookingConfirm
		return Reply{}, nil

	case StateBookingConfirm:
		if in.Kind != KindConfirm {
			return Reply{}, invalid(ErrUnexpectedInput)
		}
		return f.finalize(ctx, s)
	}
	return Reply{}, invalid(ErrUnexpectedInput)
}

func (f *BookingFlow) finalize(ctx context.Context, s *Session) (Reply, error) {
	d := s.Booking

	// инструмент должен существовать на момент создания; цену берём из черновика
	t, err := f.tools.GetByID(ctx, d.ToolID)
	if err != nil {
		return Reply{}, err
	}
	if t == nil {
		return Reply{}, ErrNotFound
	}

	toolID := d.ToolID
	created, err := f.bookings.Create(ctx, bookings.Booking{
		UserID:           s.Requester.UserID,
		Username:         s.Requester.Username,
		FullName:         s.Requester.FullName,
		ToolID:           &toolID,
		ToolName:         d.ToolName,
		StartDate:        *d.Start,
		EndDate:          *d.End,
		DeliveryRequired: d.Delivery,
		DeliveryAddress:  d.Address,
		TotalPrice:       d.Total,
	}, d.Note)
	if err != nil {
		return Reply{}, err
	}
	metrics.BookingsCreated.Inc()
	f.log.Info("booking created", "booking_id", created.ID, "user_id", created.UserID, "tool_id", toolID, "total", created.TotalPrice.StringFixed(2))

	if err := f.notify.BookingCreated(ctx, *created, d.Note); err != nil {
		metrics.NotifyFailures.Inc()
		f.log.Error("owner notification failed", "err", err, "booking_id", created.ID)
	}

	s.State = StateFinalized
	return Reply{Booking: created}, nil
}

func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// clampMonth не даёт листать календарь раньше месяца floor.
func clampMonth(m, floor time.Time) time.Time {
	m, floor = monthOf(m), monthOf(floor)
	if m.Before(floor) {
		return floor
	}
	return m
}
