package messages

import (
	"context"

	"github.com/Spok95/tool-bot/internal/infra/db"
)

type Repo struct {
	pool db.Conn
}

func NewRepo(pool db.Conn) *Repo { return &Repo{pool: pool} }

// Insert пишет сообщение через пул или открытую транзакцию.
func Insert(ctx context.Context, q db.Querier, m Message) (*Message, error) {
	row := q.QueryRow(ctx, `
		INSERT INTO messages (user_id, booking_id, text, from_owner)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at
	`, m.UserID, m.BookingID, m.Text, m.FromOwner)
	if err := row.Scan(&m.ID, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) Create(ctx context.Context, m Message) (*Message, error) {
	return Insert(ctx, r.pool, m)
}

// ListByBooking — переписка по брони в хронологическом порядке.
func (r *Repo) ListByBooking(ctx context.Context, bookingID int64) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, booking_id, text, from_owner, created_at
		FROM messages WHERE booking_id = $1
		ORDER BY created_at, id
	`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.BookingID, &m.Text, &m.FromOwner, &m.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}
