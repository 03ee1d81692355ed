package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sandeepkv93/streakd/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

// SQLiteStore keeps each document as a JSON text column.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// OpenSQLite opens path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	store, err := NewSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, uid string) (model.UserRecord, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM user_documents WHERE uid = ?`, uid).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.UserRecord{}, wrapErr("get", uid, ErrNotFound)
		}
		return model.UserRecord{}, wrapErr("get", uid, err)
	}
	var doc Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return model.UserRecord{}, wrapErr("get", uid, fmt.Errorf("decode document: %w", err))
	}
	doc.UID = uid
	return doc.Record(), nil
}

func (s *SQLiteStore) Patch(ctx context.Context, uid string, p model.Patch) error {
	if p.IsEmpty() {
		return nil
	}
	fields, err := jsonFields(p)
	if err != nil {
		return wrapErr("patch", uid, err)
	}

	// Each field is replaced as a whole: json_set swaps the value at the
	// top-level key, so a patched map loses any key it no longer has.
	expr := "body"
	args := make([]any, 0, len(p.Fields)+2)
	for _, f := range p.Fields {
		expr = fmt.Sprintf("json_set(%s, '$.%s', json(?))", expr, f)
		args = append(args, string(fields[string(f)]))
	}
	args = append(args, s.now().UTC().Format(sqliteTimeLayout), uid)

	query := `UPDATE user_documents SET body = ` + expr + `, updated_at = ? WHERE uid = ?`
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapErr("patch", uid, err)
	}
	return wrapErr("patch", uid, checkRowsAffected(res))
}

func (s *SQLiteStore) Init(ctx context.Context, uid string, rec model.UserRecord) (bool, error) {
	rec.UID = uid
	body, err := json.Marshal(documentFrom(rec))
	if err != nil {
		return false, wrapErr("init", uid, err)
	}
	now := s.now().UTC().Format(sqliteTimeLayout)
	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_documents (uid, body, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		uid, string(body), now, now,
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

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
