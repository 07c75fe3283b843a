package sqlstore

import (
	"context"
	"database/sql"

	"github.com/nevroth/nevroth/internal/dbx"
	"github.com/nevroth/nevroth/internal/models"
)

func (s *SQLStore) ListHabits(ctx context.Context) ([]models.Habit, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, description FROM habits ORDER BY id")
	if err != nil {
		return nil, dbError(err)
	}
	return scanHabits(rows)
}

// ExistingHabitIDs returns the subset of ids that name a habit.
func (s *SQLStore) ExistingHabitIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := s.rebind("SELECT id FROM habits WHERE id IN (" + placeholders(len(ids)) + ")")
	rows, err := s.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	var found []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, dbError(err)
		}
		found = append(found, id)
	}
	return found, rows.Err()
}

// ReplaceUserHabits swaps the user's whole selection in one transaction.
func (s *SQLStore) ReplaceUserHabits(ctx context.Context, userID int64, habitIDs []int64) error {
	return s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM user_habits WHERE user_id = ?"), userID); err != nil {
			return dbError(err)
		}
		insert := s.rebind("INSERT INTO user_habits (user_id, habit_id) VALUES (?, ?)")
		for _, habitID := range habitIDs {
			if _, err := tx.ExecContext(ctx, insert, userID, habitID); err != nil {
				return dbError(err)
			}
		}
		return nil
	})
}

func (s *SQLStore) GetUserHabits(ctx context.Context, userID int64) ([]models.Habit, error) {
	query := s.rebind(`
		SELECT h.id, h.name, h.description
		FROM habits h
		JOIN user_habits uh ON h.id = uh.habit_id
		WHERE uh.user_id = ?
		ORDER BY h.id
	`)
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, dbError(err)
	}
	return scanHabits(rows)
}

func (s *SQLStore) HasUserHabit(ctx context.Context, userID, habitID int64) (bool, error) {
	var exists bool
	query := s.rebind("SELECT EXISTS(SELECT 1 FROM user_habits WHERE user_id = ? AND habit_id = ?)")
	if err := s.db.QueryRowContext(ctx, query, userID, habitID).Scan(&exists); err != nil {
		return false, dbError(err)
	}
	return exists, nil
}

func (s *SQLStore) GetHabitProgress(ctx context.Context, userID, habitID int64, date string) (*models.HabitProgress, error) {
	var p models.HabitProgress
	query := s.rebind(`
		SELECT id, user_id, habit_id, date, status, updated_at
		FROM habit_progress
		WHERE user_id = ? AND habit_id = ? AND date = ?
	`)
	err := s.db.QueryRowContext(ctx, query, userID, habitID, date).
		Scan(&p.ID, &p.UserID, &p.HabitID, &p.Date, &p.Status, &p.UpdatedAt)
	if err != nil {
		return nil, dbError(err)
	}
	return &p, nil
}

func (s *SQLStore) CreateHabitProgress(ctx context.Context, p *models.HabitProgress) error {
	query := s.rebind(`
		INSERT INTO habit_progress (user_id, habit_id, date, status, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := s.db.QueryRowContext(ctx, query, p.UserID, p.HabitID, p.Date, p.Status, p.UpdatedAt.UTC()).Scan(&p.ID)
	if err != nil {
		return dbError(err)
	}
	return nil
}

func (s *SQLStore) UpdateHabitProgress(ctx context.Context, p *models.HabitProgress) error {
	query := s.rebind("UPDATE habit_progress SET status = ?, updated_at = ? WHERE id = ?")
	result, err := s.db.ExecContext(ctx, query, p.Status, p.UpdatedAt.UTC(), p.ID)
	if err != nil {
		return dbError(err)
	}
	return expectRow(result)
}

// ListHabitProgress returns one user's log for one habit, oldest day first.
func (s *SQLStore) ListHabitProgress(ctx context.Context, userID, habitID int64) ([]models.HabitProgress, error) {
	query := s.rebind(`
		SELECT id, user_id, habit_id, date, status, updated_at
		FROM habit_progress
		WHERE user_id = ? AND habit_id = ?
		ORDER BY date ASC
	`)
	rows, err := s.db.QueryContext(ctx, query, userID, habitID)
	if err != nil {
		return nil, dbError(err)
	}
	return scanProgress(rows)
}

// ListUserProgress returns every entry of the user, newest day first.
func (s *SQLStore) ListUserProgress(ctx context.Context, userID int64) ([]models.HabitProgress, error) {
	query := s.rebind(`
		SELECT id, user_id, habit_id, date, status, updated_at
		FROM habit_progress
		WHERE user_id = ?
		ORDER BY date DESC, habit_id ASC
	`)
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, dbError(err)
	}
	return scanProgress(rows)
}

func scanHabits(rows *sql.Rows) ([]models.Habit, error) {
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		var h models.Habit
		if err := rows.Scan(&h.ID, &h.Name, &h.Description); err != nil {
			return nil, dbError(err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func scanProgress(rows *sql.Rows) ([]models.HabitProgress, error) {
	defer rows.Close()

	entries := []models.HabitProgress{}
	for rows.Next() {
		var p models.HabitProgress
		if err := rows.Scan(&p.ID, &p.UserID, &p.HabitID, &p.Date, &p.Status, &p.UpdatedAt); err != nil {
			return nil, dbError(err)
		}
		entries = append(entries, p)
	}
	return entries, rows.Err()
}
