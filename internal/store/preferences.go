package store

import (
	"database/sql"
	"fmt"
)

// GetPreferences returns the singleton row, or nil if it has not been created.
func (s *Store) GetPreferences() (*Preferences, error) {
	p := &Preferences{}
	var ts string
	err := s.db.QueryRow(
		`SELECT daily_water_goal_ml, daily_step_goal, glass_size_ml, timestamp FROM user_preferences WHERE id = 1`,
	).Scan(&p.DailyWaterGoalMl, &p.DailyStepGoal, &p.GlassSizeMl, &ts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	p.Timestamp = parseStamp(ts)
	return p, nil
}

// SavePreferences overwrites the singleton row.
func (s *Store) SavePreferences(p Preferences) error {
	_, err := s.db.Exec(
		`INSERT INTO user_preferences (id, daily_water_goal_ml, daily_step_goal, glass_size_ml, timestamp)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			daily_water_goal_ml = excluded.daily_water_goal_ml,
			daily_step_goal = excluded.daily_step_goal,
			glass_size_ml = excluded.glass_size_ml,
			timestamp = excluded.timestamp`,
		p.DailyWaterGoalMl, p.DailyStepGoal, p.GlassSizeMl, nowStamp(),
	)
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// InitPreferences writes the default row if none exists yet.
func (s *Store) InitPreferences() error {
	d := DefaultPreferences()
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO user_preferences (id, daily_water_goal_ml, daily_step_goal, glass_size_ml, timestamp)
		 VALUES (1, ?, ?, ?, ?)`,
		d.DailyWaterGoalMl, d.DailyStepGoal, d.GlassSizeMl, nowStamp(),
	)
	if err != nil {
		return fmt.Errorf("init preferences: %w", err)
	}
	return nil
}
