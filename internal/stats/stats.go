// Package stats собирает сводку для владельца только из count/sum репозиториев.
package stats

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/tool-bot/internal/domain/bookings"
	"github.com/Spok95/tool-bot/internal/domain/tools"
	"github.com/Spok95/tool-bot/internal/domain/users"
)

type ToolCounter interface {
	Count(ctx context.Context, f tools.Filter) (int, error)
}

type BookingAggregator interface {
	Count(ctx context.Context, f bookings.Filter) (int, error)
	Sum(ctx context.Context, f bookings.Filter) (decimal.Decimal, error)
	CountCustomers(ctx context.Context) (int, error)
}

type UserCounter interface {
	CountByRole(ctx context.Context, role users.Role) (int, error)
}

type Stats struct {
	Tools          int
	AvailableTools int
	Customers      int
	// Registered — клиенты, писавшие боту, с бронями и без
	Registered int
	Bookings   int
	ByStatus   map[bookings.Status]int
	// выручка считается по confirmed + completed
	Revenue       decimal.Decimal
	RevenueMonth  decimal.Decimal
	BookingsMonth int
	MonthStart    time.Time
}

var statusOrder = []bookings.Status{
	bookings.StatusPending, bookings.StatusConfirmed, bookings.StatusCompleted, bookings.StatusCancelled,
}

// Collect; месяц считается от первого числа месяца now в его часовом поясе.
func Collect(ctx context.Context, tc ToolCounter, ba BookingAggregator, uc UserCounter, now time.Time) (*Stats, error) {
	s := &Stats{
		ByStatus:   make(map[bookings.Status]int, len(statusOrder)),
		MonthStart: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()),
	}
	var err error

	if s.Tools, err = tc.Count(ctx, tools.Filter{}); err != nil {
		return nil, err
	}
	if s.AvailableTools, err = tc.Count(ctx, tools.Filter{OnlyAvailable: true}); err != nil {
		return nil, err
	}
	if s.Customers, err = ba.CountCustomers(ctx); err != nil {
		return nil, err
	}
	if s.Registered, err = uc.CountByRole(ctx, users.RoleCustomer); err != nil {
		return nil, err
	}
	if s.Bookings, err = ba.Count(ctx, bookings.Filter{}); err != nil {
		return nil, err
	}
	for _, st := range statusOrder {
		n, err := ba.Count(ctx, bookings.Filter{Statuses: []bookings.Status{st}})
		if err != nil {
			return nil, err
		}
		s.ByStatus[st] = n
	}
	if s.Revenue, err = ba.Sum(ctx, bookings.Filter{Statuses: bookings.RevenueStatuses}); err != nil {
		return nil, err
	}
	if s.RevenueMonth, err = ba.Sum(ctx, bookings.Filter{Statuses: bookings.RevenueStatuses, CreatedFrom: s.MonthStart}); err != nil {
		return nil, err
	}
	if s.BookingsMonth, err = ba.Count(ctx, bookings.Filter{CreatedFrom: s.MonthStart}); err != nil {
		return nil, err
	}
	return s, nil
}

// Statuses — статусы в порядке вывода.
func Statuses() []bookings.Status { return statusOrder }
