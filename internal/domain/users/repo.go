package users

import (
	"context"

	"github.com/Spok95/tool-bot/internal/infra/db"
	"github.com/jackc/pgx/v5"
)

type Repo struct {
	pool db.Conn
}

func NewRepo(pool db.Conn) *Repo { return &Repo{pool: pool} }

const userColumns = `id, telegram_id, username, full_name, role, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.TelegramID, &u.Username, &u.FullName, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpsertFromTelegram Upsert по Telegram-профилю. Владельца в клиента не понижаем.
func (r *Repo) UpsertFromTelegram(ctx context.Context, tg Telegram, role Role) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (telegram_id, username, full_name, role)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (telegram_id)
		DO UPDATE SET
			username   = EXCLUDED.username,
			full_name  = EXCLUDED.full_name,
			role       = CASE WHEN users.role = 'owner' THEN users.role ELSE EXCLUDED.role END,
			updated_at = now()
		RETURNING `+userColumns,
		tg.ID, tg.Username, tg.FullName(), role)
	return scanUser(row)
}

// CountByRole — сколько пользователей с ролью писали боту.
func (r *Repo) CountByRole(ctx context.Context, role Role) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE role = $1`, role).Scan(&n)
	return n, err
}
