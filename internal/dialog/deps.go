package dialog

import (
	"context"

	"github.com/Spok95/tool-bot/internal/domain/bookings"
	"github.com/Spok95/tool-bot/internal/domain/messages"
	"github.com/Spok95/tool-bot/internal/domain/tools"
)

// Зависимости сценариев. Реализуются репозиториями из internal/domain.

type ToolReader interface {
	GetByID(ctx context.Context, id int64) (*tools.Tool, error)
}

type ToolWriter interface {
	Create(ctx context.Context, t tools.Tool) (*tools.Tool, error)
}

type ToolEditor interface {
	ToolReader
	Update(ctx context.Context, id int64, p tools.Patch) (*tools.Tool, error)
	ToggleAvailable(ctx context.Context, id int64) (bool, error)
}

type ToolDeleter interface {
	ToolReader
	Delete(ctx context.Context, id int64) error
}

type BookingReader interface {
	GetByID(ctx context.Context, id int64) (*bookings.Booking, error)
}

type BookingWriter interface {
	Create(ctx context.Context, b bookings.Booking, note string) (*bookings.Booking, error)
}

type BookingStatusWriter interface {
	BookingReader
	SetStatus(ctx context.Context, id int64, to bookings.Status) (*bookings.Booking, error)
}

type ActiveBookingCounter interface {
	CountActiveByTool(ctx context.Context, toolID int64) (int, error)
}

type MessageWriter interface {
	Create(ctx context.Context, m messages.Message) (*messages.Message, error)
}

// Notifier доставляет уведомления второй стороне. Ошибки только логируются:
// уже сохранённые данные от доставки не зависят.
type Notifier interface {
	BookingCreated(ctx context.Context, b bookings.Booking, note string) error
	BookingStatusChanged(ctx context.Context, b bookings.Booking, by Requester) error
	MessageSent(ctx context.Context, m messages.Message, from Requester, to int64) error
}
