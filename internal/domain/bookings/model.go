package bookings

import (
	"errors"
	"time"

	"github.com/Spok95/tool-bot/internal/pricing"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

var (
	ErrNotFound      = errors.New("bookings: not found")
	ErrBadTransition = errors.New("bookings: status transition not allowed")
)

var (
	ActiveStatuses  = []Status{StatusPending, StatusConfirmed}
	RevenueStatuses = []Status{StatusConfirmed, StatusCompleted}
)

// Cancelled и Completed — финальные.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// Active — бронь ещё держит инструмент.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) CanMoveTo(next Status) bool {
	for _, st := range transitions[s] {
		if st == next {
			return true
		}
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Placeholder адреса, когда клиент пропустил ввод.
const AddressToBeProvided = "To be provided"

type Booking struct {
	ID               int64
	UserID           int64
	Username         string
	FullName         string
	ToolID           *int64 // nil, если инструмент удалён
	ToolName         string
	StartDate        time.Time
	EndDate          time.Time
	DeliveryRequired bool
	DeliveryAddress  *string
	Status           Status
	TotalPrice       decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (b Booking) Days() int {
	d, err := pricing.DurationDays(b.StartDate, b.EndDate)
	if err != nil {
		return 0
	}
	return d
}

// Filter — все поля опциональны, пустой фильтр выбирает всё.
type Filter struct {
	Statuses    []Status
	UserID      int64
	ToolID      int64
	CreatedFrom time.Time
}
