package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"
)

var _ Store = (*SQLStore)(nil)

const defaultSQLTable = "kv_store"

// SQLOptions configure a SQLStore.
type SQLOptions struct {
	DB *sql.DB
	// Table defaults to kv_store.
	Table string
	// Placeholder is sq.Dollar for Postgres and sq.Question (default) for SQLite.
	Placeholder sq.PlaceholderFormat
	AutoMigrate bool
}

// SQLStore keeps key/value rows in a single table with an integer version
// column bumped on every write.
type SQLStore struct {
	db      *sql.DB
	table   string
	builder sq.StatementBuilderType
}

func NewSQLStore(ctx context.Context, opts SQLOptions) (*SQLStore, error) {
	if opts.DB == nil {
		return nil, errors.New("sql store: DB is required")
	}
	if opts.Table == "" {
		opts.Table = defaultSQLTable
	}
	if opts.Placeholder == nil {
		opts.Placeholder = sq.Question
	}

	store := &SQLStore{
		db:      opts.DB,
		table:   opts.Table,
		builder: sq.StatementBuilder.PlaceholderFormat(opts.Placeholder),
	}
	if opts.AutoMigrate {
		if err := store.AutoMigrate(ctx); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func (s *SQLStore) AutoMigrate(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS ` + s.table + ` (
	kv_key     VARCHAR(255) PRIMARY KEY,
	kv_value   TEXT NOT NULL,
	kv_version BIGINT NOT NULL
)`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (*Object, error) {
	query, args, err := s.builder.
		Select("kv_value", "kv_version").
		From(s.table).
		Where(sq.Eq{"kv_key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var (
		value   string
		version int64
	)
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&value, &version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return &Object{Value: []byte(value), Version: strconv.FormatInt(version, 10)}, nil
}

func (s *SQLStore) Put(ctx context.Context, key string, value []byte) (string, error) {
	query, args, err := s.builder.
		Insert(s.table).
		Columns("kv_key", "kv_value", "kv_version").
		Values(key, string(value), 1).
		Suffix("ON CONFLICT (kv_key) DO UPDATE SET kv_value = excluded.kv_value, kv_version = " + s.table + ".kv_version + 1 RETURNING kv_version").
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build upsert: %w", err)
	}

	var version int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&version); err != nil {
		return "", fmt.Errorf("upsert %s: %w", key, err)
	}
	return strconv.FormatInt(version, 10), nil
}

func (s *SQLStore) CompareAndSwap(ctx context.Context, key string, value []byte, version string) (string, error) {
	if version == "" {
		return s.insertIfAbsent(ctx, key, value)
	}

	current, err := strconv.ParseInt(version, 10, 64)
	if err != nil {
		return "", ErrVersionMismatch
	}

	query, args, err := s.builder.
		Update(s.table).
		Set("kv_value", string(value)).
		Set("kv_version", sq.Expr("kv_version + 1")).
		Where(sq.Eq{"kv_key": key, "kv_version": current}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return "", fmt.Errorf("update %s: %w", key, err)
	}
	if err := expectOneRow(res); err != nil {
		return "", err
	}
	return strconv.FormatInt(current+1, 10), nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) insertIfAbsent(ctx context.Context, key string, value []byte) (string, error) {
	query, args, err := s.builder.
		Insert(s.table).
		Columns("kv_key", "kv_value", "kv_version").
		Values(key, string(value), 1).
		Suffix("ON CONFLICT (kv_key) DO NOTHING").
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", key, err)
	}
	if err := expectOneRow(res); err != nil {
		return "", err
	}
	return "1", nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n != 1 {
		return ErrVersionMismatch
	}
	return nil
}
