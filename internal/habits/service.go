// Package habits implements habit selection, the daily progress write
// policy and on-demand streak queries.
package habits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nevroth/nevroth/internal/common"
	"github.com/nevroth/nevroth/internal/logging"
	"github.com/nevroth/nevroth/internal/models"
	"github.com/nevroth/nevroth/internal/store"
	"github.com/nevroth/nevroth/internal/streak"
)

// Options tune the habit rules.
type Options struct {
	// RequiredHabits is the exact size of a user's selection.
	RequiredHabits int
	// EditWindow is how long after its last change a day's status may
	// still be flipped.
	EditWindow time.Duration
	// Location decides which calendar day "today" is.
	Location *time.Location
}

// Service applies habit selection and progress rules on top of a store.
type Service struct {
	store  store.Store
	opts   Options
	logger logging.Logger
	now    func() time.Time
}

func NewService(st store.Store, opts Options, logger logging.Logger) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Service{
		store:  st,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) ListHabits(ctx context.Context) ([]models.Habit, error) {
	return s.store.ListHabits(ctx)
}

func (s *Service) MyHabits(ctx context.Context, userID int64) ([]models.Habit, error) {
	return s.store.GetUserHabits(ctx, userID)
}

// SelectHabits replaces the user's selection with habitIDs. The list must
// hold exactly RequiredHabits distinct, existing habits.
func (s *Service) SelectHabits(ctx context.Context, userID int64, habitIDs []int64) error {
	if len(habitIDs) != s.opts.RequiredHabits {
		return common.Validationf("exactly %d habits must be provided", s.opts.RequiredHabits)
	}

	seen := make(map[int64]bool, len(habitIDs))
	for _, id := range habitIDs {
		if seen[id] {
			return common.Validationf("habits must be unique")
		}
		seen[id] = true
	}

	existing, err := s.store.ExistingHabitIDs(ctx, habitIDs)
	if err != nil {
		return fmt.Errorf("error checking habits: %w", err)
	}
	found := make(map[int64]bool, len(existing))
	for _, id := range existing {
		found[id] = true
	}
	var missing []int64
	for _, id := range habitIDs {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return common.Validationf("these habit IDs do not exist: %v", missing)
	}

	if err := s.store.ReplaceUserHabits(ctx, userID, habitIDs); err != nil {
		return fmt.Errorf("error saving habits: %w", err)
	}
	s.logger.Info(ctx, "habits selected", "user_id", userID, "habits", habitIDs)
	return nil
}

// RecordProgress applies today's result for one habit.
//
// The first write of a day always lands. Resubmitting the stored status is
// a no-op that leaves the edit window where it was. Changing the status is
// allowed only while the window since the last change is open, in either
// direction.
func (s *Service) RecordProgress(ctx context.Context, userID, habitID int64, status models.ProgressStatus) (*models.HabitProgress, error) {
	if !status.Valid() {
		return nil, common.Validationf("status must be %q or %q", models.StatusSuccess, models.StatusFail)
	}
	if err := s.requireSelected(ctx, userID, habitID); err != nil {
		return nil, err
	}

	now := s.now()
	date := now.In(s.opts.Location).Format(models.DateFormat)

	current, err := s.store.GetHabitProgress(ctx, userID, habitID, date)
	if errors.Is(err, common.ErrorNotFound) {
		p := &models.HabitProgress{
			UserID:    userID,
			HabitID:   habitID,
			Date:      date,
			Status:    status,
			UpdatedAt: now,
		}
		err = s.store.CreateHabitProgress(ctx, p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, common.ErrorAlreadyExists) {
			return nil, fmt.Errorf("error creating progress: %w", err)
		}
		// A concurrent write created the day first; apply the policy to it.
		current, err = s.store.GetHabitProgress(ctx, userID, habitID, date)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading progress: %w", err)
	}

	if current.Status == status {
		return current, nil
	}
	if now.Sub(current.UpdatedAt) > s.opts.EditWindow {
		return nil, common.Validationf("cannot change progress status after %s", s.opts.EditWindow)
	}

	current.Status = status
	current.UpdatedAt = now
	if err := s.store.UpdateHabitProgress(ctx, current); err != nil {
		return nil, fmt.Errorf("error updating progress: %w", err)
	}
	return current, nil
}

// ListProgress returns every logged day of the user, newest first.
func (s *Service) ListProgress(ctx context.Context, userID int64) ([]models.HabitProgress, error) {
	return s.store.ListUserProgress(ctx, userID)
}

// Streaks computes the user's current and longest streak for a habit they
// have selected. An unselected habit is common.ErrorNotFound.
func (s *Service) Streaks(ctx context.Context, userID, habitID int64) (streak.Result, error) {
	selected, err := s.store.HasUserHabit(ctx, userID, habitID)
	if err != nil {
		return streak.Result{}, fmt.Errorf("error checking habit: %w", err)
	}
	if !selected {
		return streak.Result{}, common.ErrorNotFound
	}

	log, err := s.store.ListHabitProgress(ctx, userID, habitID)
	if err != nil {
		return streak.Result{}, fmt.Errorf("error loading progress: %w", err)
	}

	entries := make([]streak.Entry, 0, len(log))
	for _, p := range log {
		day, err := time.ParseInLocation(models.DateFormat, p.Date, s.opts.Location)
		if err != nil {
			s.logger.Warn(ctx, "skipping malformed progress date", "id", p.ID, "date", p.Date)
			continue
		}
		entries = append(entries, streak.Entry{Date: day, Status: p.Status})
	}

	return streak.Compute(entries, s.now().In(s.opts.Location)), nil
}

func (s *Service) requireSelected(ctx context.Context, userID, habitID int64) error {
	selected, err := s.store.HasUserHabit(ctx, userID, habitID)
	if err != nil {
		return fmt.Errorf("error checking habit: %w", err)
	}
	if !selected {
		return common.Validationf("habit %d is not among your selected habits", habitID)
	}
	return nil
}
