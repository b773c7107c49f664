package store

import (
	"database/sql"
	"fmt"
)

// GetStepsByDate returns the record for date, or nil if none was written yet.
func (s *Store) GetStepsByDate(date string) (*StepRecord, error) {
	r := &StepRecord{}
	var ts string
	err := s.db.QueryRow(
		`SELECT date, steps, goal, timestamp FROM step_records WHERE date = ?`, date,
	).Scan(&r.Date, &r.Steps, &r.Goal, &ts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get steps %s: %w", date, err)
	}
	r.Timestamp = parseStamp(ts)
	return r, nil
}

// UpsertSteps overwrites the row for date.
func (s *Store) UpsertSteps(date string, steps, goal int) error {
	_, err := s.db.Exec(
		`INSERT INTO step_records (date, steps, goal, timestamp) VALUES (?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
			steps = excluded.steps,
			goal = excluded.goal,
			timestamp = excluded.timestamp`,
		date, steps, goal, nowStamp(),
	)
	if err != nil {
		return fmt.Errorf("upsert steps %s: %w", date, err)
	}
	return nil
}

// AdjustSteps adds delta to the count for date inside one transaction. The
// goal stored on an existing row is kept; defaultGoal is used for a new row.
// The count never drops below zero.
func (s *Store) AdjustSteps(date string, delta, defaultGoal int) (*StepRecord, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin adjust steps: %w", err)
	}
	defer tx.Rollback()

	current, goal := 0, defaultGoal
	err = tx.QueryRow(`SELECT steps, goal FROM step_records WHERE date = ?`, date).Scan(&current, &goal)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("read steps %s: %w", date, err)
	}

	steps := addSaturating(current, delta)
	if steps < 0 {
		steps = 0
	}
	now := nowStamp()
	_, err = tx.Exec(
		`INSERT INTO step_records (date, steps, goal, timestamp) VALUES (?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
			steps = excluded.steps,
			goal = excluded.goal,
			timestamp = excluded.timestamp`,
		date, steps, goal, now,
	)
	if err != nil {
		return nil, fmt.Errorf("write steps %s: %w", date, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit adjust steps: %w", err)
	}
	return &StepRecord{Date: date, Steps: steps, Goal: goal, Timestamp: parseStamp(now)}, nil
}

// ListStepRecords returns every record, newest date first.
func (s *Store) ListStepRecords() ([]StepRecord, error) {
	return s.querySteps(`SELECT date, steps, goal, timestamp FROM step_records ORDER BY date DESC`)
}

// ListStepRecordsBetween returns records with from <= date < to, oldest first.
func (s *Store) ListStepRecordsBetween(from, to string) ([]StepRecord, error) {
	return s.querySteps(
		`SELECT date, steps, goal, timestamp FROM step_records
		 WHERE date >= ? AND date < ? ORDER BY date`, from, to,
	)
}

func (s *Store) querySteps(query string, args ...any) ([]StepRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var records []StepRecord
	for rows.Next() {
		var r StepRecord
		var ts string
		if err := rows.Scan(&r.Date, &r.Steps, &r.Goal, &ts); err != nil {
			return nil, err
		}
		r.Timestamp = parseStamp(ts)
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteStepsOlderThan removes records dated strictly before cutoff.
func (s *Store) DeleteStepsOlderThan(cutoff string) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM step_records WHERE date < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old steps: %w", err)
	}
	return res.RowsAffected()
}
