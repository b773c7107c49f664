package store

import (
	"database/sql"
	"fmt"
)

// GetWaterByDate returns the record for date, or nil if none was written yet.
func (s *Store) GetWaterByDate(date string) (*WaterRecord, error) {
	r := &WaterRecord{}
	var ts string
	err := s.db.QueryRow(
		`SELECT date, total_ml, glass_size_ml, timestamp FROM water_records WHERE date = ?`, date,
	).Scan(&r.Date, &r.TotalMl, &r.GlassSizeMl, &ts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get water %s: %w", date, err)
	}
	r.Timestamp = parseStamp(ts)
	return r, nil
}

// UpsertWater overwrites the row for date.
func (s *Store) UpsertWater(date string, totalMl int, glassSizeMl float64) error {
	_, err := s.db.Exec(
		`INSERT INTO water_records (date, total_ml, glass_size_ml, timestamp) VALUES (?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
			total_ml = excluded.total_ml,
			glass_size_ml = excluded.glass_size_ml,
			timestamp = excluded.timestamp`,
		date, totalMl, glassSizeMl, nowStamp(),
	)
	if err != nil {
		return fmt.Errorf("upsert water %s: %w", date, err)
	}
	return nil
}

// AdjustWater adds deltaMl to the total for date inside one transaction and
// returns the stored record. The total never drops below zero.
func (s *Store) AdjustWater(date string, deltaMl int, glassSizeMl float64) (*WaterRecord, error) {
	return s.AdjustWaterCapped(date, deltaMl, -1, glassSizeMl)
}

// AdjustWaterCapped is AdjustWater with an upper bound on the new total. A
// negative capMl means no bound. A total already above the cap is not reduced.
func (s *Store) AdjustWaterCapped(date string, deltaMl, capMl int, glassSizeMl float64) (*WaterRecord, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin adjust water: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRow(`SELECT total_ml FROM water_records WHERE date = ?`, date).Scan(&current)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("read water %s: %w", date, err)
	}

	total := addSaturating(current, deltaMl)
	if capMl >= 0 && total > capMl {
		total = max(capMl, current)
	}
	if total < 0 {
		total = 0
	}
	now := nowStamp()
	_, err = tx.Exec(
		`INSERT INTO water_records (date, total_ml, glass_size_ml, timestamp) VALUES (?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
			total_ml = excluded.total_ml,
			glass_size_ml = excluded.glass_size_ml,
			timestamp = excluded.timestamp`,
		date, total, glassSizeMl, now,
	)
	if err != nil {
		return nil, fmt.Errorf("write water %s: %w", date, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit adjust water: %w", err)
	}
	return &WaterRecord{Date: date, TotalMl: total, GlassSizeMl: glassSizeMl, Timestamp: parseStamp(now)}, nil
}

// ListWaterRecords returns every record, newest date first.
func (s *Store) ListWaterRecords() ([]WaterRecord, error) {
	return s.queryWater(`SELECT date, total_ml, glass_size_ml, timestamp FROM water_records ORDER BY date DESC`)
}

// ListWaterRecordsBetween returns records with from <= date < to, oldest first.
func (s *Store) ListWaterRecordsBetween(from, to string) ([]WaterRecord, error) {
	return s.queryWater(
		`SELECT date, total_ml, glass_size_ml, timestamp FROM water_records
		 WHERE date >= ? AND date < ? ORDER BY date`, from, to,
	)
}

func (s *Store) queryWater(query string, args ...any) ([]WaterRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list water: %w", err)
	}
	defer rows.Close()

	var records []WaterRecord
	for rows.Next() {
		var r WaterRecord
		var ts string
		if err := rows.Scan(&r.Date, &r.TotalMl, &r.GlassSizeMl, &ts); err != nil {
			return nil, err
		}
		r.Timestamp = parseStamp(ts)
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteWaterOlderThan removes records dated strictly before cutoff and
// returns how many were deleted.
func (s *Store) DeleteWaterOlderThan(cutoff string) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM water_records WHERE date < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old water: %w", err)
	}
	return res.RowsAffected()
}
