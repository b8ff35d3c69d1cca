package dialog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Spok95/tool-bot/internal/domain/bookings"
	"github.com/Spok95/tool-bot/internal/infra/metrics"
)

// DeleteFlow: предупреждение об активных бронях → подтверждение или отмена.
type DeleteFlow struct {
	tools ToolDeleter
	count ActiveBookingCounter
	// block запрещает удаление при активных бронях вместо предупреждения
	block bool
	log   *slog.Logger
}

func NewDeleteFlow(td ToolDeleter, c ActiveBookingCounter, blockActive bool, log *slog.Logger) *DeleteFlow {
	return &DeleteFlow{tools: td, count: c, block: blockActive, log: log}
}

func (f *DeleteFlow) Begin(ctx context.Context, s *Session) (Reply, error) {
	if !s.Requester.Owner {
		return Reply{}, invalid(ErrForbidden)
	}
	if s.Target == nil || s.Target.ToolID == 0 {
		return Reply{}, invalid(ErrUnexpectedInput)
	}
	t, err := f.tools.GetByID(ctx, s.Target.ToolID)
	if err != nil {
		return Reply{}, err
	}
	if t == nil {
		return Reply{}, ErrNotFound
	}
	n, err := f.count.CountActiveByTool(ctx, t.ID)
	if err != nil {
		return Reply{}, err
	}
	if n > 0 && f.block {
		return Reply{Tool: t}, invalid(ErrDeleteBlocked)
	}
	s.Target.ToolName = t.Name
	s.Target.ActiveBookings = n
	s.State = StateDeleteConfirm
	return Reply{Tool: t}, nil
}

func (f *DeleteFlow) Handle(ctx context.Context, s *Session, in Input) (Reply, error) {
	if s.State != StateDeleteConfirm || in.Kind != KindConfirm {
		return Reply{}, invalid(ErrUnexpectedInput)
	}
	if err := f.tools.Delete(ctx, s.Target.ToolID); err != nil {
		return Reply{}, mapToolErr(err)
	}
	f.log.Info("tool deleted", "tool_id", s.Target.ToolID, "active_bookings", s.Target.ActiveBookings)
	s.State = StateFinalized
	return Reply{}, nil
}

// ReviewFlow меняет статус брони: владелец подтверждает, отклоняет, завершает;
// клиент может только отменить свою бронь.
type ReviewFlow struct {
	bookings BookingStatusWriter
	notify   Notifier
	log      *slog.Logger
}

func NewReviewFlow(bw BookingStatusWriter, n Notifier, log *slog.Logger) *ReviewFlow {
	return &ReviewFlow{bookings: bw, notify: n, log: log}
}

func (f *ReviewFlow) Begin(ctx context.Context, s *Session) (Reply, error) {
	if s.Target == nil || s.Target.BookingID == 0 || !s.Target.Status.Valid() {
		return Reply{}, invalid(ErrUnexpectedInput)
	}
	b, err := f.bookings.GetByID(ctx, s.Target.BookingID)
	if err != nil {
		return Reply{}, err
	}
	if b == nil {
		return Reply{}, ErrNotFound
	}
	if !s.Requester.Owner && (b.UserID != s.Requester.UserID || s.Target.Status != bookings.StatusCancelled) {
		return Reply{}, invalid(ErrForbidden)
	}
	if !b.Status.CanMoveTo(s.Target.Status) {
		return Reply{Booking: b}, invalid(ErrBadTransition)
	}
	s.State = StateReviewConfirm
	return Reply{Booking: b}, nil
}

func (f *ReviewFlow) Handle(ctx context.Context, s *Session, in Input) (Reply, error) {
	if s.State != StateReviewConfirm || in.Kind != KindConfirm {
		return Reply{}, invalid(ErrUnexpectedInput)
	}
	b, err := f.bookings.SetStatus(ctx, s.Target.BookingID, s.Target.Status)
	switch {
	case errors.Is(err, bookings.ErrNotFound):
		return Reply{}, ErrNotFound
	case errors.Is(err, bookings.ErrBadTransition):
		return Reply{}, invalid(ErrBadTransition)
	case err != nil:
		return Reply{}, err
	}
	f.log.Info("booking status changed", "booking_id", b.ID, "status", b.Status, "by", s.Requester.UserID)

	if err := f.notify.BookingStatusChanged(ctx, *b, s.Requester); err != nil {
		metrics.NotifyFailures.Inc()
		f.log.Error("status notification failed", "err", err, "booking_id", b.ID)
	}
	s.State = StateFinalized
	return Reply{Booking: b}, nil
}
