package dialog

import (
	"context"
	"log/slog"

	"github.com/Spok95/tool-bot/internal/domain/messages"
	"github.com/Spok95/tool-bot/internal/infra/metrics"
)

// MessageFlow — одно сообщение: клиент пишет владельцу или владелец отвечает клиенту.
type MessageFlow struct {
	messages MessageWriter
	bookings BookingReader
	notify   Notifier
	ownerID  int64
	log      *slog.Logger
}

func NewMessageFlow(mw MessageWriter, br BookingReader, n Notifier, ownerID int64, log *slog.Logger) *MessageFlow {
	return &MessageFlow{messages: mw, bookings: br, notify: n, ownerID: ownerID, log: log}
}

func (f *MessageFlow) Begin(ctx context.Context, s *Session) (Reply, error) {
	if s.Target == nil {
		s.Target = &Target{}
	}
	t := s.Target

	var r Reply
	if t.BookingID != 0 {
		b, err := f.bookings.GetByID(ctx, t.BookingID)
		if err != nil {
			return Reply{}, err
		}
		if b == nil {
			return Reply{}, ErrNotFound
		}
		if !s.Requester.Owner && b.UserID != s.Requester.UserID {
			return Reply{}, invalid(ErrForbidden)
		}
		if s.Requester.Owner {
			t.RecipientID = b.UserID
		}
		r.Booking = b
	}
	if !s.Requester.Owner {
		t.RecipientID = f.ownerID
	}
	if t.RecipientID == 0 {
		return Reply{}, invalid(ErrUnexpectedInput)
	}
	s.State = StateMessageText
	return r, nil
}

func (f *MessageFlow) Handle(ctx context.Context, s *Session, in Input) (Reply, error) {
	if s.State != StateMessageText {
		return Reply{}, invalid(ErrUnexpectedInput)
	}
	text, err := nonEmpty(in)
	if err != nil {
		return Reply{}, err
	}

	m := messages.Message{UserID: s.Requester.UserID, Text: text, FromOwner: s.Requester.Owner}
	if s.Target.BookingID != 0 {
		id := s.Target.BookingID
		m.BookingID = &id
	}
	saved, err := f.messages.Create(ctx, m)
	if err != nil {
		return Reply{}, err
	}

	if err := f.notify.MessageSent(ctx, *saved, s.Requester, s.Target.RecipientID); err != nil {
		metrics.NotifyFailures.Inc()
		f.log.Error("message delivery failed", "err", err, "to", s.Target.RecipientID)
	}
	s.State = StateFinalized
	return Reply{}, nil
}
