// Package dberr turns driver-specific constraint violations into field-level errors.
package dberr

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

type Constraint string

const (
	Unique     Constraint = "unique"
	ForeignKey Constraint = "foreign_key"
)

// FieldError reports a persistence constraint violation on one field.
type FieldError struct {
	Field      string
	Constraint Constraint
	Err        error
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s constraint violated", e.Constraint)
	}
	return fmt.Sprintf("%s constraint violated on %s", e.Constraint, e.Field)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Details is the per-field map returned to API clients.
func (e *FieldError) Details() map[string]string {
	field := e.Field
	if field == "" {
		field = "record"
	}
	return map[string]string{field: string(e.Constraint)}
}

var (
	sqliteUnique = regexp.MustCompile(`UNIQUE constraint failed: ([\w.]+)`)
	mysqlKey     = regexp.MustCompile(`for key '([^']+)'`)
)

// Translate returns a *FieldError when err is a recognised constraint
// violation, and nil otherwise.
func Translate(err error) *FieldError {
	if err == nil {
		return nil
	}

	var fe *FieldError
	if errors.As(err, &fe) {
		return fe
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return &FieldError{Field: fieldFromIndex(pgErr.ColumnName, pgErr.ConstraintName, pgErr.TableName), Constraint: Unique, Err: err}
		case "23503":
			return &FieldError{Field: fieldFromIndex(pgErr.ColumnName, pgErr.ConstraintName, pgErr.TableName), Constraint: ForeignKey, Err: err}
		}
		return nil
	}

	var myErr *mysqlDriver.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			field := ""
			if m := mysqlKey.FindStringSubmatch(myErr.Message); m != nil {
				key := m[1]
				table := ""
				if i := strings.LastIndex(key, "."); i >= 0 {
					table, key = key[:i], key[i+1:]
				}
				field = fieldFromIndex("", key, table)
			}
			return &FieldError{Field: field, Constraint: Unique, Err: err}
		case 1452:
			return &FieldError{Constraint: ForeignKey, Err: err}
		}
		return nil
	}

	msg := err.Error()
	if m := sqliteUnique.FindStringSubmatch(msg); m != nil {
		col := m[1]
		if i := strings.LastIndex(col, "."); i >= 0 {
			col = col[i+1:]
		}
		return &FieldError{Field: col, Constraint: Unique, Err: err}
	}
	if strings.Contains(msg, "FOREIGN KEY constraint failed") {
		return &FieldError{Constraint: ForeignKey, Err: err}
	}
	return nil
}

// fieldFromIndex recovers a column name from gorm's "idx_<table>_<column>"
// index naming when the driver does not report the column directly.
func fieldFromIndex(column, index, table string) string {
	if column != "" {
		return column
	}
	if table != "" {
		if rest, ok := strings.CutPrefix(index, "idx_"+table+"_"); ok {
			return rest
		}
		if rest, ok := strings.CutPrefix(index, "fk_"+table+"_"); ok {
			return rest
		}
	}
	return strings.TrimPrefix(index, "idx_")
}
