package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Spok95/tool-bot/internal/domain/messages"
	"github.com/Spok95/tool-bot/internal/infra/db"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type Repo struct {
	pool db.Conn
}

func NewRepo(pool db.Conn) *Repo { return &Repo{pool: pool} }

const bookingColumns = `id, user_id, username, full_name, tool_id, tool_name, start_date, end_date,
	delivery_required, delivery_address, status, total_price, created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	if err := row.Scan(&b.ID, &b.UserID, &b.Username, &b.FullName, &b.ToolID, &b.ToolName,
		&b.StartDate, &b.EndDate, &b.DeliveryRequired, &b.DeliveryAddress, &b.Status,
		&b.TotalPrice, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// Create сохраняет бронь (всегда pending) и заметку клиента одной транзакцией.
func (r *Repo) Create(ctx context.Context, b Booking, note string) (*Booking, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	b.Status = StatusPending
	err = tx.QueryRow(ctx, `
		INSERT INTO bookings (user_id, username, full_name, tool_id, tool_name, start_date, end_date,
		                      delivery_required, delivery_address, status, total_price)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id, created_at, updated_at
	`, b.UserID, b.Username, b.FullName, b.ToolID, b.ToolName, b.StartDate, b.EndDate,
		b.DeliveryRequired, b.DeliveryAddress, b.Status, b.TotalPrice).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	if note != "" {
		id := b.ID
		if _, err := messages.Insert(ctx, tx, messages.Message{UserID: b.UserID, BookingID: &id, Text: note}); err != nil {
			return nil, fmt.Errorf("insert note: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Booking, error) {
	b, err := scanBooking(r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

// SetStatus переводит бронь в новый статус, если переход разрешён.
func (r *Repo) SetStatus(ctx context.Context, id int64, to Status) (*Booking, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cur Status
	if err := tx.QueryRow(ctx, `SELECT status FROM bookings WHERE id = $1 FOR UPDATE`, id).Scan(&cur); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !cur.CanMoveTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrBadTransition, cur, to)
	}

	b, err := scanBooking(tx.QueryRow(ctx, `
		UPDATE bookings SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING `+bookingColumns, to, id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func statusStrings(ss []Status) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}

// where собирает условие и аргументы; плейсхолдеры нумеруются с $1.
func (f Filter) where() (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if len(f.Statuses) > 0 {
		add("status = ANY($%d)", statusStrings(f.Statuses))
	}
	if f.UserID != 0 {
		add("user_id = $%d", f.UserID)
	}
	if f.ToolID != 0 {
		add("tool_id = $%d", f.ToolID)
	}
	if !f.CreatedFrom.IsZero() {
		add("created_at >= $%d", f.CreatedFrom)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List — новые сверху.
func (r *Repo) List(ctx context.Context, f Filter, offset, limit int) ([]Booking, error) {
	where, args := f.where()
	args = append(args, offset, limit)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT %s FROM bookings%s
		ORDER BY created_at DESC, id DESC OFFSET $%d LIMIT $%d`, bookingColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *b)
	}
	return res, rows.Err()
}

func (r *Repo) Count(ctx context.Context, f Filter) (int, error) {
	where, args := f.where()
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM bookings`+where, args...).Scan(&n)
	return n, err
}

// Sum — сумма total_price по фильтру, 0 если строк нет.
func (r *Repo) Sum(ctx context.Context, f Filter) (decimal.Decimal, error) {
	where, args := f.where()
	var sum decimal.Decimal
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(sum(total_price), 0) FROM bookings`+where, args...).Scan(&sum)
	return sum, err
}

// CountActiveByTool — pending/confirmed брони инструмента, для предупреждения при удалении.
func (r *Repo) CountActiveByTool(ctx context.Context, toolID int64) (int, error) {
	return r.Count(ctx, Filter{ToolID: toolID, Statuses: ActiveStatuses})
}

// CountCustomers — число различных клиентов с бронями.
func (r *Repo) CountCustomers(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(DISTINCT user_id) FROM bookings`).Scan(&n)
	return n, err
}
