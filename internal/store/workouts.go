package store

import (
	"database/sql"
	"fmt"
)

const workoutColumns = `id, date, name, duration, goal_value, goal_type, completed, timestamp`

func (s *Store) CreateWorkout(date, name string, duration *int, goalValue int, goalType GoalType, completed bool) (*Workout, error) {
	res, err := s.db.Exec(
		`INSERT INTO workout_records (date, name, duration, goal_value, goal_type, completed, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		date, name, duration, goalValue, string(goalType), boolInt(completed), nowStamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetWorkout(id)
}

func (s *Store) GetWorkout(id int64) (*Workout, error) {
	w, err := scanWorkout(s.db.QueryRow(`SELECT `+workoutColumns+` FROM workout_records WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get workout %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get workout %d: %w", id, err)
	}
	return w, nil
}

// ToggleWorkout flips the completed flag in a single statement and returns the updated row.
func (s *Store) ToggleWorkout(id int64) (*Workout, error) {
	res, err := s.db.Exec(
		`UPDATE workout_records SET completed = 1 - completed, timestamp = ? WHERE id = ?`,
		nowStamp(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("toggle workout %d: %w", id, err)
	}
	if err := requireRow(res, "toggle workout", id); err != nil {
		return nil, err
	}
	return s.GetWorkout(id)
}

func (s *Store) DeleteWorkout(id int64) error {
	res, err := s.db.Exec(`DELETE FROM workout_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete workout %d: %w", id, err)
	}
	return requireRow(res, "delete workout", id)
}

// ListWorkoutsByDate returns the workouts logged on date, newest first.
func (s *Store) ListWorkoutsByDate(date string) ([]Workout, error) {
	return s.queryWorkouts(
		`SELECT `+workoutColumns+` FROM workout_records WHERE date = ? ORDER BY timestamp DESC, id DESC`, date,
	)
}

func (s *Store) ListWorkouts() ([]Workout, error) {
	return s.queryWorkouts(`SELECT ` + workoutColumns + ` FROM workout_records ORDER BY date DESC, timestamp DESC, id DESC`)
}

// ListWorkoutsBetween returns workouts with from <= date < to, oldest first.
func (s *Store) ListWorkoutsBetween(from, to string) ([]Workout, error) {
	return s.queryWorkouts(
		`SELECT `+workoutColumns+` FROM workout_records WHERE date >= ? AND date < ? ORDER BY date, id`, from, to,
	)
}

func (s *Store) DeleteWorkoutsOlderThan(cutoff string) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM workout_records WHERE date < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old workouts: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) queryWorkouts(query string, args ...any) ([]Workout, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	var workouts []Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, *w)
	}
	return workouts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkout(row rowScanner) (*Workout, error) {
	w := &Workout{}
	var duration sql.NullInt64
	var goalType, ts string
	var completed int
	if err := row.Scan(&w.ID, &w.Date, &w.Name, &duration, &w.GoalValue, &goalType, &completed, &ts); err != nil {
		return nil, err
	}
	if duration.Valid {
		d := int(duration.Int64)
		w.Duration = &d
	}
	w.GoalType = GoalType(goalType)
	w.Completed = completed == 1
	w.Timestamp = parseStamp(ts)
	return w, nil
}

func requireRow(res sql.Result, op string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", op, id, ErrNotFound)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
