package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sandeepkv93/streakd/internal/model"
)

// PostgresStore keeps each document in a jsonb column.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	return &PostgresStore{db: db}, nil
}

// OpenPostgres connects through the pgx stdlib driver and runs migrations.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	if err := migratePostgres(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return NewPostgresStore(db)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Get(ctx context.Context, uid string) (model.UserRecord, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM user_documents WHERE uid = $1`, uid).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return model.UserRecord{}, wrapErr("get", uid, ErrNotFound)
	}
	if err != nil {
		return model.UserRecord{}, wrapErr("get", uid, err)
	}
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return model.UserRecord{}, wrapErr("get", uid, fmt.Errorf("decode document: %w", err))
	}
	doc.UID = uid
	return doc.Record(), nil
}

// Patch relies on jsonb concatenation, which replaces top-level keys whole.
func (s *PostgresStore) Patch(ctx context.Context, uid string, p model.Patch) error {
	if p.IsEmpty() {
		return nil
	}
	fields, err := jsonFields(p)
	if err != nil {
		return wrapErr("patch", uid, err)
	}
	body, err := json.Marshal(fields)
	if err != nil {
		return wrapErr("patch", uid, err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE user_documents
		SET body = body || $2::jsonb, updated_at = now()
		WHERE uid = $1`,
		uid, string(body),
	)
	if err != nil {
		return wrapErr("patch", uid, err)
	}
	return wrapErr("patch", uid, checkRowsAffected(res))
}

func (s *PostgresStore) Init(ctx context.Context, uid string, rec model.UserRecord) (bool, error) {
	rec.UID = uid
	body, err := json.Marshal(documentFrom(rec))
	if err != nil {
		return false, wrapErr("init", uid, err)
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO user_documents (uid, body)
		VALUES ($1, $2::jsonb)
		ON CONFLICT (uid) DO NOTHING`,
		uid, string(body),
	)
	if err != nil {
		return false, wrapErr("init", uid, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapErr("init", uid, err)
	}
	return n == 1, nil
}
