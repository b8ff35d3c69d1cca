package db

import (
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/Spok95/tool-bot/migrations"
)

// Migrate накатывает встроенные SQL-миграции.
// goose для диалекта postgres открывает драйвер "pgx", его регистрирует pgx/v5/stdlib.
func Migrate(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	goose.SetBaseFS(migrations.FS)
	return goose.Up(sqlDB, ".")
}
