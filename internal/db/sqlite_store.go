package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/soaringjerry/Raay/internal/builder"
	"github.com/soaringjerry/Raay/internal/services"
)

type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite file at path and runs migrations.
func Open(path, migrationsDir string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(path))
	sqliteDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := RunMigrations(sqliteDB, migrationsDir); err != nil {
		_ = sqliteDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqliteDB, nil
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func boolToInt64(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func encodeJSON(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func (s *SQLiteStore) InsertSurvey(ctx context.Context, sv *services.Survey) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		env := sv.Envelope
		_, err := tx.ExecContext(ctx, `INSERT INTO surveys
			(id, tenant_id, share_token, title, title_localized, description, description_localized, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sv.ID, sv.TenantID, sv.ShareToken,
			env.Title.Text, env.Title.Localized, env.Description.Text, env.Description.Localized,
			sv.CreatedAt.UTC(), sv.UpdatedAt.UTC())
		if err != nil {
			return fmt.Errorf("insert survey: %w", err)
		}
		return insertQuestions(ctx, tx, sv.ID, env.Questions)
	})
}

// UpdateSurvey replaces the metadata and the whole question list of sv.
func (s *SQLiteStore) UpdateSurvey(ctx context.Context, sv *services.Survey) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		env := sv.Envelope
		res, err := tx.ExecContext(ctx, `UPDATE surveys SET
			title = ?, title_localized = ?, description = ?, description_localized = ?, updated_at = ?
			WHERE id = ?`,
			env.Title.Text, env.Title.Localized, env.Description.Text, env.Description.Localized,
			sv.UpdatedAt.UTC(), sv.ID)
		if err != nil {
			return fmt.Errorf("update survey: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return services.NewNotFoundError("survey not found")
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM survey_questions WHERE survey_id = ?`, sv.ID); err != nil {
			return fmt.Errorf("clear questions: %w", err)
		}
		return insertQuestions(ctx, tx, sv.ID, env.Questions)
	})
}

func (s *SQLiteStore) GetSurvey(ctx context.Context, id string) (*services.Survey, error) {
	return s.getSurvey(ctx, `WHERE id = ?`, id)
}

func (s *SQLiteStore) GetSurveyByShareToken(ctx context.Context, token string) (*services.Survey, error) {
	return s.getSurvey(ctx, `WHERE share_token = ?`, token)
}

func (s *SQLiteStore) getSurvey(ctx context.Context, where, arg string) (*services.Survey, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, tenant_id, share_token, title, title_localized,
		description, description_localized, created_at, updated_at FROM surveys `+where, arg)
	var sv services.Survey
	var title, titleLoc, desc, descLoc string
	err := row.Scan(&sv.ID, &sv.TenantID, &sv.ShareToken, &title, &titleLoc, &desc, &descLoc, &sv.CreatedAt, &sv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get survey: %w", err)
	}
	sv.Envelope.Title = builder.L(title, titleLoc)
	sv.Envelope.Description = builder.L(desc, descLoc)
	qs, err := s.listQuestions(ctx, sv.ID)
	if err != nil {
		return nil, err
	}
	sv.Envelope.Questions = qs
	return &sv, nil
}

func (s *SQLiteStore) listQuestions(ctx context.Context, surveyID string) (out []builder.EnvelopeQuestion, err error) {
	rows, err := s.db.QueryContext(ctx, `SELECT position, type, text, text_localized, description,
		description_localized, is_required, options, validation_rules
		FROM survey_questions WHERE survey_id = ? ORDER BY position ASC`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	out = []builder.EnvelopeQuestion{}
	for rows.Next() {
		var (
			q                                   builder.EnvelopeQuestion
			qtype, text, textLoc, desc, descLoc string
			required                            int64
			options, rules                      sql.NullString
		)
		if err := rows.Scan(&q.OrderIndex, &qtype, &text, &textLoc, &desc, &descLoc, &required, &options, &rules); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Type = builder.QuestionType(qtype)
		q.Text = builder.L(text, textLoc)
		q.Description = builder.L(desc, descLoc)
		q.Required = required != 0
		if q.Options, err = builder.DecodeOptions(q.Type, json.RawMessage(options.String)); err != nil {
			return nil, fmt.Errorf("survey %s position %d: %w", surveyID, q.OrderIndex, err)
		}
		if rules.Valid && rules.String != "" {
			if err := json.Unmarshal([]byte(rules.String), &q.ValidationRules); err != nil {
				return nil, fmt.Errorf("decode validation rules: %w", err)
			}
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func insertQuestions(ctx context.Context, tx *sql.Tx, surveyID string, qs []builder.EnvelopeQuestion) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO survey_questions
		(survey_id, position, type, text, text_localized, description, description_localized, is_required, options, validation_rules)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare question insert: %w", err)
	}
	defer stmt.Close()
	for pos, q := range qs {
		options, err := encodeJSON(q.Options)
		if err != nil {
			return fmt.Errorf("encode options: %w", err)
		}
		var rules sql.NullString
		if len(q.ValidationRules) > 0 {
			if rules, err = encodeJSON(q.ValidationRules); err != nil {
				return fmt.Errorf("encode validation rules: %w", err)
			}
		}
		// Position is the slice index, so gaps in order_index never reach the table.
		if _, err := stmt.ExecContext(ctx, surveyID, pos, string(q.Type),
			q.Text.Text, q.Text.Localized, q.Description.Text, q.Description.Localized,
			boolToInt64(q.Required), options, rules); err != nil {
			return fmt.Errorf("insert question %d: %w", pos, err)
		}
	}
	return nil
}

func (s *SQLiteStore) AddAudit(ctx context.Context, e services.AuditEntry) error {
	ts := e.Time
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO audit_log (ts, actor, action, target, note) VALUES (?, ?, ?, ?, ?)`,
		ts.UTC(), e.Actor, e.Action, toNullString(e.Target), toNullString(e.Note))
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

// ListAudit returns the newest entries first.
func (s *SQLiteStore) ListAudit(ctx context.Context, limit int) (out []services.AuditEntry, err error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ts, actor, action, target, note FROM audit_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	for rows.Next() {
		var e services.AuditEntry
		var target, note sql.NullString
		if err := rows.Scan(&e.Time, &e.Actor, &e.Action, &target, &note); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		e.Target, e.Note = target.String, note.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit: %w", cerr)
		}
	}()
	return fn(tx)
}
