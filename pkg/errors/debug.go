package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump is the log-side view of a failure: the typed code, the unwrap
// chain and any driver detail the client never sees.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`
	Retryable  bool   `json:"retryable"`

	Chain []string `json:"chain,omitempty"`

	DB *DBDetail `json:"db,omitempty"`
}

// DBDetail carries the store's own diagnostics. SQLite reports only the
// constraint text.
type DBDetail struct {
	Driver     string `json:"driver"`
	Code       string `json:"code,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`
}

const sqliteConstraintPrefix = "constraint failed: "

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
		Retryable:  IsRetryable(err),
	}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	d.DB = dbDetail(err)
	return d
}

// Fields flattens the dump into logger fields.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":           d.TopMessage,
		"error_code":      d.Code,
		"error_retryable": d.Retryable,
		"error_chain":     d.Chain,
	}
	if d.DB != nil {
		fields["db_driver"] = d.DB.Driver
		setIfPresent(fields, "db_code", d.DB.Code)
		setIfPresent(fields, "db_constraint", d.DB.Constraint)
		setIfPresent(fields, "db_table", d.DB.Table)
		setIfPresent(fields, "db_detail", d.DB.Detail)
		setIfPresent(fields, "db_message", d.DB.Message)
	}
	return fields
}

func dbDetail(err error) *DBDetail {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &DBDetail{
			Driver:     "pgx",
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &DBDetail{
			Driver:     "pq",
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}

	// "UNIQUE constraint failed: engagements.volunteer_id, engagements.activity_id"
	msg := err.Error()
	if idx := strings.Index(msg, sqliteConstraintPrefix); idx >= 0 {
		columns := msg[idx+len(sqliteConstraintPrefix):]
		detail := &DBDetail{Driver: "sqlite", Constraint: columns, Message: msg}
		if table, _, ok := strings.Cut(columns, "."); ok {
			detail.Table = table
		}
		return detail
	}
	return nil
}

func setIfPresent(fields map[string]any, key, value string) {
	if value != "" {
		fields[key] = value
	}
}
