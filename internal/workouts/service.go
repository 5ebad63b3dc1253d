// ABOUTME: Service wires the rotation engine to a catalog and a state store.
// ABOUTME: State is read and written wholesale on every transition.
package workouts

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/habito/internal/models"
)

// StateStore persists the single UserWorkoutState.
type StateStore interface {
	LoadWorkoutState(ctx context.Context) (*models.UserWorkoutState, error)
	SaveWorkoutState(ctx context.Context, state *models.UserWorkoutState) error
}

// Service runs workout operations against a catalog and a store.
type Service struct {
	catalog *Catalog
	store   StateStore
	now     func() time.Time
}

// NewService creates a Service. A nil catalog uses Builtin.
func NewService(catalog *Catalog, store StateStore) *Service {
	if catalog == nil {
		catalog = Builtin
	}
	return &Service{catalog: catalog, store: store, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Catalog returns the catalog backing the service.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// State loads the current state. A missing state is returned as the zero
// value, meaning no program.
func (s *Service) State(ctx context.Context) (models.UserWorkoutState, error) {
	st, err := s.store.LoadWorkoutState(ctx)
	if err != nil {
		return models.UserWorkoutState{}, fmt.Errorf("load workout state: %w", err)
	}
	if st == nil {
		return models.UserWorkoutState{}, nil
	}
	return *st, nil
}

// Select switches to a program, resetting the log and cursor.
func (s *Service) Select(ctx context.Context, programID string) (models.UserWorkoutState, error) {
	p, err := s.catalog.Program(programID)
	if err != nil {
		return models.UserWorkoutState{}, err
	}
	st, err := SelectProgram(*p, s.now())
	if err != nil {
		return models.UserWorkoutState{}, err
	}
	if err := s.store.SaveWorkoutState(ctx, &st); err != nil {
		return models.UserWorkoutState{}, fmt.Errorf("save workout state: %w", err)
	}
	return st, nil
}

// Suggestion is the next workout with the program it belongs to.
type Suggestion struct {
	Program     *models.WorkoutProgram `json:"program"`
	Workout     *models.Workout        `json:"workout"`
	TrainingDay bool                   `json:"training_day"`
	Streak      int                    `json:"streak"`
}

// Next resolves the suggested workout for the current state.
func (s *Service) Next(ctx context.Context) (*Suggestion, error) {
	st, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	if !st.HasProgram() {
		return nil, ErrNoProgram
	}
	p, err := s.catalog.Program(st.ProgramID)
	if err != nil {
		return nil, err
	}
	id, err := Next(st, *p)
	if err != nil {
		return nil, err
	}
	w, err := s.catalog.Workout(id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return &Suggestion{
		Program:     p,
		Workout:     w,
		TrainingDay: IsTrainingDay(*p, now),
		Streak:      Streak(st.History, now),
	}, nil
}

// Finish records the suggested workout as done and advances the rotation.
// The new state is saved before the next suggestion can be computed.
func (s *Service) Finish(ctx context.Context, elapsed time.Duration) (models.WorkoutHistoryEntry, error) {
	sug, err := s.Next(ctx)
	if err != nil {
		return models.WorkoutHistoryEntry{}, err
	}
	st, err := s.State(ctx)
	if err != nil {
		return models.WorkoutHistoryEntry{}, err
	}
	next, entry, err := CompleteSession(st, *sug.Program, *sug.Workout, elapsed, s.now())
	if err != nil {
		return models.WorkoutHistoryEntry{}, err
	}
	if err := s.store.SaveWorkoutState(ctx, &next); err != nil {
		return models.WorkoutHistoryEntry{}, fmt.Errorf("save workout state: %w", err)
	}
	return entry, nil
}
