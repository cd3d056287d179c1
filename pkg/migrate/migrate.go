package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/pressly/goose/v3"
)

const DefaultDir = "pkg/migrate/migrations"

// SQL migrations target Postgres; sqlite stores boot through AutoMigrateSQLite.
const gooseDialect = "postgres"

// Command is a goose operation that needs a live connection.
type Command string

const (
	CommandUp      Command = "up"
	CommandDown    Command = "down"
	CommandStatus  Command = "status"
	CommandVersion Command = "version"
)

// ParseCommand accepts the -cmd values the migrate binary forwards to goose.
func ParseCommand(value string) (Command, error) {
	switch cmd := Command(value); cmd {
	case CommandUp, CommandDown, CommandStatus, CommandVersion:
		return cmd, nil
	default:
		return "", fmt.Errorf("unknown migrate command %q", value)
	}
}

// Apply runs cmd against db. CommandVersion migrates up or down to target,
// formatted YYYYMMDDHHMMSS; other commands ignore it.
func Apply(ctx context.Context, db *sql.DB, dir string, cmd Command, target string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if cmd == CommandVersion {
		return migrateTo(ctx, db, dir, target)
	}
	if err := goose.RunContext(ctx, string(cmd), db, dir); err != nil {
		return fmt.Errorf("goose %s: %w", cmd, err)
	}
	return nil
}

func migrateTo(ctx context.Context, db *sql.DB, dir string, target string) error {
	if target == "" {
		return fmt.Errorf("target version is required")
	}
	version, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", target, err)
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == version:
		return nil
	case current < version:
		err = goose.UpToContext(ctx, db, dir, version)
	default:
		err = goose.DownToContext(ctx, db, dir, version)
	}
	if err != nil {
		return fmt.Errorf("goose migrate %d -> %d: %w", current, version, err)
	}
	return nil
}
