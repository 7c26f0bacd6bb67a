// Package store provides persistence for the last completed batch result.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "bondcheck/internal/errors"
	"bondcheck/internal/models"
)

// ResultStore holds at most one BatchResult: the last successfully completed
// batch together with the highlight config it ran under. Saving a new batch
// replaces the previous one atomically; a failed run never touches the store.
type ResultStore struct {
	db *sql.DB
}

// NewResultStore opens (or creates) the store at dbPath.
func NewResultStore(dbPath string) (*ResultStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &ResultStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *ResultStore) Close() error {
	return s.db.Close()
}

func (s *ResultStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS batches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME NOT NULL,
		overnight INTEGER NOT NULL,
		extra_days INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS records (
		batch_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		isin TEXT NOT NULL,
		secid TEXT,
		emitter_id TEXT,
		issuer TEXT,
		name TEXT,
		matdate TEXT,
		putdate TEXT,
		calldate TEXT,
		recorddate TEXT,
		coupondate TEXT,
		faceunit TEXT,
		couponvalue TEXT,
		PRIMARY KEY (batch_id, position),
		FOREIGN KEY (batch_id) REFERENCES batches(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS unresolved (
		batch_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		isin TEXT NOT NULL,
		PRIMARY KEY (batch_id, position),
		FOREIGN KEY (batch_id) REFERENCES batches(id) ON DELETE CASCADE
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save persists a completed batch and removes any prior one in the same
// transaction, so readers always see exactly one stored result.
func (s *ResultStore) Save(result models.BatchResult, cfg models.HighlightConfig) error {
	tx, err := s.db.Begin()
	if err != nil {
		return apperrors.NewStoreError("save", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO batches (created_at, overnight, extra_days) VALUES (?, ?, ?)`,
		time.Now().UTC(), boolToInt(cfg.Overnight), cfg.ExtraDays,
	)
	if err != nil {
		return apperrors.NewStoreError("save", err)
	}
	batchID, err := res.LastInsertId()
	if err != nil {
		return apperrors.NewStoreError("save", err)
	}

	recordStmt, err := tx.Prepare(`
		INSERT INTO records (
			batch_id, position, isin, secid, emitter_id, issuer, name,
			matdate, putdate, calldate, recorddate, coupondate, faceunit, couponvalue
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return apperrors.NewStoreError("save", err)
	}
	defer recordStmt.Close()

	for i, r := range result.Records {
		_, err = recordStmt.Exec(
			batchID, i, r.ISIN, r.SecondaryCode, r.EmitterID, r.Issuer, r.Name,
			r.MaturityDate.String(), r.PutDate.String(), r.CallDate.String(),
			r.NextRecordDate.String(), r.NextCouponDate.String(), r.FaceUnit, r.CouponValue,
		)
		if err != nil {
			return apperrors.NewStoreError("save", err)
		}
	}

	for i, isin := range result.Unresolved {
		if _, err = tx.Exec(
			`INSERT INTO unresolved (batch_id, position, isin) VALUES (?, ?, ?)`,
			batchID, i, isin,
		); err != nil {
			return apperrors.NewStoreError("save", err)
		}
	}

	// Replace semantics: older batches leave with this commit.
	if _, err = tx.Exec(`DELETE FROM records WHERE batch_id != ?`, batchID); err != nil {
		return apperrors.NewStoreError("save", err)
	}
	if _, err = tx.Exec(`DELETE FROM unresolved WHERE batch_id != ?`, batchID); err != nil {
		return apperrors.NewStoreError("save", err)
	}
	if _, err = tx.Exec(`DELETE FROM batches WHERE id != ?`, batchID); err != nil {
		return apperrors.NewStoreError("save", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStoreError("save", err)
	}
	return nil
}

// Latest returns the stored batch and the config it ran under, or
// errors.ErrNoStoredResult when no batch has been saved.
func (s *ResultStore) Latest() (models.BatchResult, models.HighlightConfig, error) {
	var result models.BatchResult
	var cfg models.HighlightConfig

	var batchID int64
	var overnight int
	err := s.db.QueryRow(
		`SELECT id, overnight, extra_days FROM batches ORDER BY id DESC LIMIT 1`,
	).Scan(&batchID, &overnight, &cfg.ExtraDays)
	if err == sql.ErrNoRows {
		return result, cfg, apperrors.ErrNoStoredResult
	}
	if err != nil {
		return result, cfg, apperrors.NewStoreError("latest", err)
	}
	cfg.Overnight = overnight != 0

	rows, err := s.db.Query(`
		SELECT isin, secid, emitter_id, issuer, name,
		       matdate, putdate, calldate, recorddate, coupondate, faceunit, couponvalue
		FROM records WHERE batch_id = ? ORDER BY position`, batchID)
	if err != nil {
		return result, cfg, apperrors.NewStoreError("latest", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r models.SecurityRecord
		var mat, put, call, record, coupon string
		if err := rows.Scan(
			&r.ISIN, &r.SecondaryCode, &r.EmitterID, &r.Issuer, &r.Name,
			&mat, &put, &call, &record, &coupon, &r.FaceUnit, &r.CouponValue,
		); err != nil {
			return result, cfg, apperrors.NewStoreError("latest", err)
		}
		r.MaturityDate, _ = models.ParseDate(mat)
		r.PutDate, _ = models.ParseDate(put)
		r.CallDate, _ = models.ParseDate(call)
		r.NextRecordDate, _ = models.ParseDate(record)
		r.NextCouponDate, _ = models.ParseDate(coupon)
		result.Records = append(result.Records, r)
	}
	if err := rows.Err(); err != nil {
		return result, cfg, apperrors.NewStoreError("latest", err)
	}

	unresolvedRows, err := s.db.Query(
		`SELECT isin FROM unresolved WHERE batch_id = ? ORDER BY position`, batchID)
	if err != nil {
		return result, cfg, apperrors.NewStoreError("latest", err)
	}
	defer unresolvedRows.Close()

	for unresolvedRows.Next() {
		var isin string
		if err := unresolvedRows.Scan(&isin); err != nil {
			return result, cfg, apperrors.NewStoreError("latest", err)
		}
		result.Unresolved = append(result.Unresolved, isin)
	}
	return result, cfg, unresolvedRows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
