// ABOUTME: Export and import of a user's activities and workout state.
// ABOUTME: Supports JSON, YAML, and Markdown export formats over any Repository.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/habito/internal/calendar"
	"github.com/harperreed/habito/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportVersion is written into every export.
const ExportVersion = "1.0"

// ExportData represents the full export format.
type ExportData struct {
	Version      string                   `json:"version" yaml:"version"`
	ExportedAt   time.Time                `json:"exported_at" yaml:"exported_at"`
	Tool         string                   `json:"tool" yaml:"tool"`
	UserID       string                   `json:"user_id" yaml:"user_id"`
	Activities   []models.Activity        `json:"activities" yaml:"activities"`
	WorkoutState *models.UserWorkoutState `json:"workout_state,omitempty" yaml:"-"`
}

// Collect gathers userID's activities from repo.
func Collect(ctx context.Context, repo Repository, userID string) (*ExportData, error) {
	activities, err := repo.FetchActivities(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return &ExportData{
		Version:    ExportVersion,
		ExportedAt: time.Now(),
		Tool:       "habito",
		UserID:     userID,
		Activities: activities,
	}, nil
}

// JSON encodes the export as indented JSON.
func (e *ExportData) JSON() ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}

// YAML encodes the export as YAML.
func (e *ExportData) YAML() ([]byte, error) {
	return yaml.Marshal(e)
}

// ParseExport decodes an export produced by JSON or YAML.
func ParseExport(raw []byte) (*ExportData, error) {
	var data ExportData
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("parse JSON export: %w", err)
		}
	} else if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse YAML export: %w", err)
	}
	if data.Version == "" {
		return nil, fmt.Errorf("parse export: missing version")
	}
	return &data, nil
}

// Markdown renders the activities as per-category tables.
func (e *ExportData) Markdown() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Habito Export - %s\n\n", calendar.ISODate(e.ExportedAt)))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", e.ExportedAt.Format(time.RFC3339)))

	grouped := make(map[models.Category][]models.Activity)
	for _, a := range e.Activities {
		grouped[a.Category] = append(grouped[a.Category], a)
	}

	for _, cat := range models.AllCategories {
		acts := grouped[cat]
		if len(acts) == 0 {
			continue
		}
		sort.Slice(acts, func(i, j int) bool { return acts[i].Name < acts[j].Name })

		sb.WriteString(fmt.Sprintf("## %s\n\n", cat))
		sb.WriteString("| Activity | Days | XP | Streak | Completions | Last done |\n")
		sb.WriteString("|----------|------|----|--------|-------------|-----------|\n")
		for _, a := range acts {
			last := "-"
			if h := calendar.SortDates(append([]string(nil), a.History...)); len(h) > 0 {
				last = h[len(h)-1]
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %d | %s |\n",
				a.Name, a.Frequency.String(), a.XP, a.Streak, len(a.History), last))
		}
		sb.WriteString("\n")
	}

	if ws := e.WorkoutState; ws.HasProgram() {
		sb.WriteString("## Treinos\n\n")
		sb.WriteString(fmt.Sprintf("Program: %s (next index %d)\n\n", ws.ProgramID, ws.LastWorkoutIndex))
		sb.WriteString("| Date | Workout | Minutes |\n")
		sb.WriteString("|------|---------|---------|\n")
		for _, h := range ws.History {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d |\n", h.Date, h.WorkoutName, h.DurationMinutes))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// ImportData recreates the exported activities for userID. Each activity
// gets a fresh id; history and the derived caches are carried over.
func ImportData(ctx context.Context, repo Repository, userID string, data *ExportData) (int, error) {
	imported := 0
	for _, a := range data.Activities {
		draft := models.ActivityDraft{
			Name:             a.Name,
			Category:         a.Category,
			Icon:             a.Icon,
			Color:            a.Color,
			Difficulty:       a.Difficulty,
			Frequency:        a.Frequency,
			RemindersEnabled: a.RemindersEnabled,
			ReminderTimes:    a.ReminderTimes,
		}
		created, err := repo.InsertActivity(ctx, userID, draft)
		if err != nil {
			return imported, fmt.Errorf("import activity %s: %w", a.Name, err)
		}

		patch := models.CompletionPatch(a)
		xp, slot := a.XP, a.TimeSlot
		patch.XP = &xp
		if slot != "" {
			patch.TimeSlot = &slot
		}
		if err := repo.UpdateActivity(ctx, created.ID.String(), patch); err != nil {
			return imported, fmt.Errorf("import history for %s: %w", a.Name, err)
		}
		imported++
	}
	return imported, nil
}
