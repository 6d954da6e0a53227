package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leads-agent/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS outcomes (
	id             TEXT PRIMARY KEY,
	correlation_id TEXT NOT NULL,
	email          TEXT NOT NULL DEFAULT '',
	company        TEXT NOT NULL DEFAULT '',
	disposition    TEXT NOT NULL,
	score          INTEGER,
	outcome        TEXT NOT NULL,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS deliveries (
	correlation_id TEXT PRIMARY KEY,
	channel        TEXT NOT NULL,
	message_ts     TEXT NOT NULL,
	delivered_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_outcomes_correlation_id ON outcomes(correlation_id);
CREATE INDEX IF NOT EXISTS idx_outcomes_disposition ON outcomes(disposition);
CREATE INDEX IF NOT EXISTS idx_outcomes_email ON outcomes(email);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) RecordOutcome(ctx context.Context, outcome *model.LeadOutcome) (*OutcomeRecord, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	payload, err := json.Marshal(outcome)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal outcome")
	}

	rec := &OutcomeRecord{
		ID:            id,
		CorrelationID: outcome.CorrelationID,
		Email:         outcome.Lead.Email,
		Company:       outcome.Lead.Company,
		Disposition:   string(outcome.Triage.Disposition),
		Outcome:       outcome,
		CreatedAt:     now,
	}
	if outcome.Score != nil {
		score := outcome.Score.Score
		rec.Score = &score
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO outcomes (id, correlation_id, email, company, disposition, score, outcome, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.CorrelationID, rec.Email, rec.Company, rec.Disposition, rec.Score, string(payload), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert outcome")
	}
	return rec, nil
}

func (s *SQLiteStore) GetOutcome(ctx context.Context, correlationID string) (*OutcomeRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, correlation_id, email, company, disposition, score, outcome, created_at
		 FROM outcomes WHERE correlation_id = ? ORDER BY created_at DESC LIMIT 1`,
		correlationID,
	)
	rec, err := scanOutcome(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get outcome %s", correlationID)
	}
	return rec, nil
}

func (s *SQLiteStore) ListOutcomes(ctx context.Context, filter OutcomeFilter) ([]OutcomeRecord, error) {
	query := `SELECT id, correlation_id, email, company, disposition, score, outcome, created_at FROM outcomes`
	var args []interface{}
	if filter.Disposition != "" {
		query += ` WHERE disposition = ?`
		args = append(args, filter.Disposition)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list outcomes")
	}
	defer rows.Close()

	var records []OutcomeRecord
	for rows.Next() {
		rec, err := scanOutcome(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan outcome")
		}
		records = append(records, *rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list outcomes")
}

func (s *SQLiteStore) IsDelivered(ctx context.Context, correlationID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM deliveries WHERE correlation_id = ?`, correlationID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: is delivered %s", correlationID)
	}
	return true, nil
}

// MarkDelivered records a delivery. Re-marking an already delivered
// correlation id is a no-op so concurrent paths cannot double count.
func (s *SQLiteStore) MarkDelivered(ctx context.Context, correlationID, channel, messageTS string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deliveries (correlation_id, channel, message_ts, delivered_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(correlation_id) DO NOTHING`,
		correlationID, channel, messageTS, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: mark delivered %s", correlationID)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOutcome(row rowScanner) (*OutcomeRecord, error) {
	var (
		rec     OutcomeRecord
		score   sql.NullInt64
		payload string
	)
	if err := row.Scan(&rec.ID, &rec.CorrelationID, &rec.Email, &rec.Company,
		&rec.Disposition, &score, &payload, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if score.Valid {
		v := int(score.Int64)
		rec.Score = &v
	}
	var outcome model.LeadOutcome
	if err := json.Unmarshal([]byte(payload), &outcome); err != nil {
		return nil, err
	}
	rec.Outcome = &outcome
	return &rec, nil
}
