package dialog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Spok95/tool-bot/internal/infra/db"
)

// PGStore хранит сессии в таблице dialog_states, payload — JSON сессии.
type PGStore struct {
	pool db.Conn
	ttl  time.Duration
}

func NewPGStore(pool db.Conn, ttl time.Duration) *PGStore { return &PGStore{pool: pool, ttl: ttl} }

func (r *PGStore) Get(ctx context.Context, userID int64) (*Session, error) {
	row := r.pool.QueryRow(ctx, `SELECT payload, updated_at FROM dialog_states WHERE user_id = $1`, userID)
	var raw []byte
	var updated time.Time
	if err := row.Scan(&raw, &updated); err != nil {
		// строки нет — диалога нет
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if r.ttl > 0 && time.Since(updated) > r.ttl {
		return nil, r.Reset(ctx, userID)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PGStore) Save(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO dialog_states (user_id, flow, state, payload, updated_at)
		VALUES ($1,$2,$3,$4,now())
		ON CONFLICT (user_id) DO UPDATE SET
		  flow=$2, state=$3, payload=$4, updated_at=now()
	`, s.Requester.UserID, string(s.Flow), string(s.State), raw)
	return err
}

func (r *PGStore) Reset(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM dialog_states WHERE user_id = $1`, userID)
	return err
}

func (r *PGStore) Expire(ctx context.Context, idle time.Duration) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM dialog_states WHERE updated_at < now() - make_interval(secs => $1)`, idle.Seconds())
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
