package repository

import (
	"academy-api/db"
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type baseRepository struct {
	DB      *sql.DB
	dialect db.Dialect
}

func newBase(conn *sql.DB, dialect db.Dialect) baseRepository {
	return baseRepository{DB: conn, dialect: dialect}
}

func (b *baseRepository) sb() sq.StatementBuilderType {
	return b.dialect.Builder()
}

func (b *baseRepository) runner(tx *sql.Tx) querier {
	if tx != nil {
		return tx
	}
	return b.DB
}

// like builds a case-insensitive contains match where the dialect needs it.
func (b *baseRepository) like(column, keyword string) sq.Sqlizer {
	pattern := "%" + keyword + "%"
	if b.dialect == db.Postgres {
		return sq.ILike{column: pattern}
	}
	return sq.Like{column: pattern}
}

// insert runs ib and returns the generated id.
func (b *baseRepository) insert(ctx context.Context, q querier, ib sq.InsertBuilder) (int64, error) {
	if b.dialect.ReturningID() {
		query, args, err := ib.Suffix("RETURNING id").ToSql()
		if err != nil {
			return 0, fmt.Errorf("build insert: %w", err)
		}
		var id int64
		if err := q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	query, args, err := ib.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// exec runs an update or delete and returns the affected row count.
func (b *baseRepository) exec(ctx context.Context, q querier, s sq.Sqlizer) (int64, error) {
	query, args, err := s.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build statement: %w", err)
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (b *baseRepository) count(ctx context.Context, s sq.SelectBuilder) (int64, error) {
	query, args, err := s.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var n int64
	if err := b.DB.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (b *baseRepository) exists(ctx context.Context, s sq.SelectBuilder) (bool, error) {
	n, err := b.count(ctx, s)
	return n > 0, err
}

func (b *baseRepository) queryRow(ctx context.Context, s sq.SelectBuilder) (*sql.Row, error) {
	return b.queryRowIn(ctx, b.DB, s)
}

// queryRowIn runs s on q so reads inside a transaction see its writes.
func (b *baseRepository) queryRowIn(ctx context.Context, q querier, s sq.SelectBuilder) (*sql.Row, error) {
	query, args, err := s.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return q.QueryRowContext(ctx, query, args...), nil
}

func (b *baseRepository) query(ctx context.Context, s sq.SelectBuilder) (*sql.Rows, error) {
	query, args, err := s.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return b.DB.QueryContext(ctx, query, args...)
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func int64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func nullable[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
