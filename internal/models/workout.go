// ABOUTME: Workout catalog and rotation state models for program-based training.
// ABOUTME: UserWorkoutState is cached wholesale; its JSON keys match the stored format.
package models

import (
	"time"

	"github.com/harperreed/habito/internal/calendar"
)

// Exercise is one movement inside a workout.
type Exercise struct {
	Name        string `json:"nome" yaml:"name"`
	Sets        int    `json:"series" yaml:"sets"`
	RepsOrTime  string `json:"repsOuTempo" yaml:"reps_or_time"`
	RestSeconds int    `json:"descansoSeg" yaml:"rest_seconds"`
	Tips        string `json:"dicas" yaml:"tips"`
}

// Workout is a catalog entry.
type Workout struct {
	ID              string     `json:"id" yaml:"id"`
	Name            string     `json:"nome" yaml:"name"`
	Goal            string     `json:"objetivo" yaml:"goal"`
	DurationMinutes int        `json:"duracaoMin" yaml:"duration_minutes"`
	Level           string     `json:"nivel" yaml:"level"`
	Location        string     `json:"local" yaml:"location"`
	SuggestedDays   []string   `json:"diasSugeridos" yaml:"suggested_days"`
	Exercises       []Exercise `json:"exercicios" yaml:"exercises"`
}

// WorkoutProgram is a cyclic rotation of workouts over active weekdays.
type WorkoutProgram struct {
	ID         string              `json:"id" yaml:"id"`
	Name       string              `json:"nome" yaml:"name"`
	Location   string              `json:"local" yaml:"location"`
	Level      string              `json:"nivel" yaml:"level"`
	ActiveDays calendar.WeekdaySet `json:"diasAtivos" yaml:"active_days"`
	Rotation   []string            `json:"rotacao" yaml:"rotation"`
}

// WorkoutHistoryEntry records one finished session.
type WorkoutHistoryEntry struct {
	ID              string `json:"id"`
	WorkoutID       string `json:"workoutId"`
	WorkoutName     string `json:"workoutNome"`
	Date            string `json:"data"`
	DurationMinutes int    `json:"duracaoRealMin"`
	Completed       bool   `json:"concluido"`
}

// UserWorkoutState is the per-device rotation state. An empty ProgramID
// means no program has been chosen yet.
type UserWorkoutState struct {
	ProgramID        string                `json:"programId"`
	History          []WorkoutHistoryEntry `json:"history"`
	LastWorkoutIndex uint64                `json:"lastWorkoutIndex"`
	UpdatedAt        time.Time             `json:"updatedAt"`
}

// HasProgram reports whether a program is active.
func (s *UserWorkoutState) HasProgram() bool {
	return s != nil && s.ProgramID != ""
}
