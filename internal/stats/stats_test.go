package stats

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/tool-bot/internal/domain/bookings"
	"github.com/Spok95/tool-bot/internal/domain/tools"
	"github.com/Spok95/tool-bot/internal/domain/users"
)

type fakeTools struct{ all, available int }

func (f fakeTools) Count(_ context.Context, flt tools.Filter) (int, error) {
	if flt.OnlyAvailable {
		return f.available, nil
	}
	return f.all, nil
}

// fakeBookings применяет фильтр к списку в памяти.
type fakeBookings struct {
	items []bookings.Booking
	err   error
}

func (f fakeBookings) match(flt bookings.Filter, b bookings.Booking) bool {
	if len(flt.Statuses) > 0 {
		ok := false
		for _, s := range flt.Statuses {
			ok = ok || s == b.Status
		}
		if !ok {
			return false
		}
	}
	return flt.CreatedFrom.IsZero() || !b.CreatedAt.Before(flt.CreatedFrom)
}

func (f fakeBookings) Count(_ context.Context, flt bookings.Filter) (int, error) {
	n := 0
	for _, b := range f.items {
		if f.match(flt, b) {
			n++
		}
	}
	return n, f.err
}

func (f fakeBookings) Sum(_ context.Context, flt bookings.Filter) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, b := range f.items {
		if f.match(flt, b) {
			sum = sum.Add(b.TotalPrice)
		}
	}
	return sum, f.err
}

func (f fakeBookings) CountCustomers(context.Context) (int, error) {
	seen := map[int64]bool{}
	for _, b := range f.items {
		seen[b.UserID] = true
	}
	return len(seen), f.err
}

type fakeUsers map[users.Role]int

func (f fakeUsers) CountByRole(_ context.Context, role users.Role) (int, error) { return f[role], nil }

func TestCollect(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	may := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	june := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	bk := func(user int64, st bookings.Status, total string, created time.Time) bookings.Booking {
		return bookings.Booking{UserID: user, Status: st, TotalPrice: decimal.RequireFromString(total), CreatedAt: created}
	}
	src := fakeBookings{items: []bookings.Booking{
		bk(1, bookings.StatusCompleted, "100.00", may),
		bk(1, bookings.StatusConfirmed, "60.00", june),
		bk(2, bookings.StatusPending, "40.00", june),
		bk(3, bookings.StatusCancelled, "500.00", june),
	}}

	registered := fakeUsers{users.RoleCustomer: 7, users.RoleOwner: 1}
	s, err := Collect(context.Background(), fakeTools{all: 5, available: 3}, src, registered, now)
	require.NoError(t, err)

	assert.Equal(t, 5, s.Tools)
	assert.Equal(t, 3, s.AvailableTools)
	assert.Equal(t, 3, s.Customers)
	assert.Equal(t, 7, s.Registered)
	assert.Equal(t, 4, s.Bookings)
	assert.Equal(t, 1, s.ByStatus[bookings.StatusPending])
	assert.Equal(t, 1, s.ByStatus[bookings.StatusConfirmed])
	assert.Equal(t, 1, s.ByStatus[bookings.StatusCompleted])
	assert.Equal(t, 1, s.ByStatus[bookings.StatusCancelled])
	assert.Equal(t, "160.00", s.Revenue.StringFixed(2))
	assert.Equal(t, "60.00", s.RevenueMonth.StringFixed(2))
	assert.Equal(t, 3, s.BookingsMonth)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), s.MonthStart)
}

func TestCollect_Error(t *testing.T) {
	_, err := Collect(context.Background(), fakeTools{}, fakeBookings{err: assert.AnError}, fakeUsers{}, time.Now())
	assert.ErrorIs(t, err, assert.AnError)
}
