package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Spok95/tool-bot/internal/infra/db"
	"github.com/jackc/pgx/v5"
)

type Repo struct {
	pool db.Conn
}

func NewRepo(pool db.Conn) *Repo { return &Repo{pool: pool} }

const toolColumns = `id, name, description, price_per_day, photo_ids, available, created_at, updated_at`

func scanTool(row pgx.Row) (*Tool, error) {
	var t Tool
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.PricePerDay, &t.PhotoIDs, &t.Available, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repo) Create(ctx context.Context, t Tool) (*Tool, error) {
	if t.PhotoIDs == nil {
		t.PhotoIDs = []string{}
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tools (name, description, price_per_day, photo_ids, available)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING `+toolColumns,
		t.Name, t.Description, t.PricePerDay, t.PhotoIDs, t.Available)
	return scanTool(row)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Tool, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+toolColumns+` FROM tools WHERE id = $1`, id)
	t, err := scanTool(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// Update применяет Patch и возвращает обновлённую запись.
func (r *Repo) Update(ctx context.Context, id int64, p Patch) (*Tool, error) {
	if p.Empty() {
		t, err := r.GetByID(ctx, id)
		if err == nil && t == nil {
			err = ErrNotFound
		}
		return t, err
	}

	sets := make([]string, 0, 6)
	args := make([]any, 0, 6)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.PricePerDay != nil {
		add("price_per_day", *p.PricePerDay)
	}
	if p.PhotoIDs != nil {
		photos := *p.PhotoIDs
		if photos == nil {
			photos = []string{}
		}
		add("photo_ids", photos)
	}
	if p.Available != nil {
		add("available", *p.Available)
	}
	args = append(args, id)

	row := r.pool.QueryRow(ctx, `UPDATE tools SET `+strings.Join(sets, ", ")+`, updated_at = now()
		WHERE id = $`+fmt.Sprint(len(args))+` RETURNING `+toolColumns, args...)
	t, err := scanTool(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// ToggleAvailable инвертирует флаг и возвращает новое значение.
func (r *Repo) ToggleAvailable(ctx context.Context, id int64) (bool, error) {
	var available bool
	err := r.pool.QueryRow(ctx, `
		UPDATE tools SET available = NOT available, updated_at = now()
		WHERE id = $1 RETURNING available`, id).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	return available, err
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tools WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (f Filter) where() string {
	if f.OnlyAvailable {
		return ` WHERE available`
	}
	return ``
}

// List — новые сверху.
func (r *Repo) List(ctx context.Context, f Filter, offset, limit int) ([]Tool, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+toolColumns+` FROM tools`+f.where()+`
		ORDER BY created_at DESC, id DESC OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Tool
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *t)
	}
	return res, rows.Err()
}

func (r *Repo) Count(ctx context.Context, f Filter) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM tools`+f.where()).Scan(&n)
	return n, err
}
