// ABOUTME: MCP tool implementations for habits and workouts.
// ABOUTME: Toggles go through the session so the XP ledger and sync state stay consistent.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/habito/internal/calendar"
	"github.com/harperreed/habito/internal/habits"
	"github.com/harperreed/habito/internal/models"
	"github.com/harperreed/habito/internal/suggest"
	"github.com/harperreed/habito/internal/workouts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_activities",
		Description: "List habits, optionally only the ones due today",
	}, s.handleListActivities)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "today",
		Description: "Habits due today with completion progress, XP and level",
	}, s.handleToday)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "toggle_activity",
		Description: "Mark or unmark a habit as done today",
	}, s.handleToggleActivity)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "mark_date",
		Description: "Mark or unmark a habit on a past day (YYYY-MM-DD)",
	}, s.handleMarkDate)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "week_summary",
		Description: "Completion ratio for each day of the current Monday-start week",
	}, s.handleWeekSummary)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "stats",
		Description: "XP, level, streaks, recent frequency and category balance",
	}, s.handleStats)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "select_program",
		Description: "Switch to a workout program, restarting its rotation",
	}, s.handleSelectProgram)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "next_workout",
		Description: "The next workout in the active program's rotation",
	}, s.handleNextWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "finish_workout",
		Description: "Record the suggested workout as done and advance the rotation",
	}, s.handleFinishWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "suggest",
		Description: "A short routine suggestion based on habits and this week's performance",
	}, s.handleSuggest)
}

// Tool input/output types

type listActivitiesInput struct {
	DueToday bool `json:"due_today,omitempty" jsonschema:"Only list habits scheduled for today"`
}

type activityOutput struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Difficulty string   `json:"difficulty"`
	XP         int      `json:"xp"`
	Frequency  []string `json:"frequency"`
	Completed  bool     `json:"completed"`
	Streak     int      `json:"streak"`
	Time       string   `json:"time,omitempty"`
}

type listActivitiesOutput struct {
	Activities []activityOutput `json:"activities"`
	Count      int              `json:"count"`
}

type emptyInput struct{}

type toggleInput struct {
	ID string `json:"id" jsonschema:"Activity ID or prefix"`
}

type markDateInput struct {
	ID   string `json:"id" jsonschema:"Activity ID or prefix"`
	Date string `json:"date" jsonschema:"Day to toggle as YYYY-MM-DD, not in the future"`
}

type toggleOutput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
	Streak    int    `json:"streak"`
	XP        int    `json:"xp"`
	Level     int    `json:"level"`
	Message   string `json:"message"`
}

type selectProgramInput struct {
	ProgramID string `json:"program_id" jsonschema:"Program ID such as prog-casa-ini"`
}

type finishWorkoutInput struct {
	Minutes int `json:"minutes,omitempty" jsonschema:"Elapsed session length in minutes"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type suggestOutput struct {
	Suggestion string `json:"suggestion"`
}

func toActivityOutput(a models.Activity) activityOutput {
	return activityOutput{
		ID:         a.ID.String(),
		Name:       a.Name,
		Category:   string(a.Category),
		Difficulty: string(a.Difficulty),
		XP:         a.XP,
		Frequency:  a.Frequency.Codes(),
		Completed:  a.Completed,
		Streak:     a.Streak,
		Time:       a.TimeSlot,
	}
}

func toToggleOutput(tr habits.Transition) toggleOutput {
	verb := "Unmarked"
	if tr.Completing {
		verb = "Marked"
	}
	return toggleOutput{
		ID:        tr.Activity.ID.String(),
		Name:      tr.Activity.Name,
		Completed: tr.Activity.Completed,
		Streak:    tr.Activity.Streak,
		XP:        tr.XP,
		Level:     habits.Level(tr.XP),
		Message:   fmt.Sprintf("%s %s (streak %d, %d XP)", verb, tr.Activity.Name, tr.Activity.Streak, tr.XP),
	}
}

// Tool handlers

func (s *Server) handleListActivities(ctx context.Context, req *mcp.CallToolRequest, input listActivitiesInput) (*mcp.CallToolResult, listActivitiesOutput, error) {
	activities := s.sess.Activities()
	if input.DueToday {
		activities = habits.DueOn(activities, s.sess.Now())
	}

	out := listActivitiesOutput{Activities: make([]activityOutput, 0, len(activities))}
	for _, a := range activities {
		out.Activities = append(out.Activities, toActivityOutput(a))
	}
	out.Count = len(out.Activities)
	return nil, out, nil
}

func (s *Server) handleToday(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	return nil, s.todayPayload(), nil
}

func (s *Server) handleToggleActivity(ctx context.Context, req *mcp.CallToolRequest, input toggleInput) (*mcp.CallToolResult, toggleOutput, error) {
	tr, err := s.sess.Toggle(ctx, input.ID)
	if err != nil {
		return nil, toggleOutput{}, fmt.Errorf("failed to toggle activity: %w", err)
	}
	return nil, toToggleOutput(tr), nil
}

func (s *Server) handleMarkDate(ctx context.Context, req *mcp.CallToolRequest, input markDateInput) (*mcp.CallToolResult, toggleOutput, error) {
	if _, err := calendar.ParseISODate(input.Date); err != nil {
		return nil, toggleOutput{}, fmt.Errorf("invalid date %q: %w", input.Date, err)
	}
	tr, err := s.sess.ToggleDate(ctx, input.ID, input.Date)
	if err != nil {
		return nil, toggleOutput{}, fmt.Errorf("failed to mark date: %w", err)
	}
	out := toToggleOutput(tr)
	out.Message = fmt.Sprintf("%s on %s", out.Message, input.Date)
	return nil, out, nil
}

func (s *Server) handleWeekSummary(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, habits.WeekSummary, error) {
	return nil, s.sess.Week(), nil
}

func (s *Server) handleStats(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, habits.Stats, error) {
	return nil, s.sess.Stats(), nil
}

func (s *Server) handleSelectProgram(ctx context.Context, req *mcp.CallToolRequest, input selectProgramInput) (*mcp.CallToolResult, simpleOutput, error) {
	st, err := s.workouts.Select(ctx, input.ProgramID)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to select program: %w", err)
	}
	p, _ := s.workouts.Catalog().Program(st.ProgramID)
	return nil, simpleOutput{
		Message: fmt.Sprintf("Selected %s (%d workouts in rotation)", p.Name, len(p.Rotation)),
	}, nil
}

func (s *Server) handleNextWorkout(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	sug, err := s.workouts.Next(ctx)
	if errors.Is(err, workouts.ErrNoProgram) {
		return nil, map[string]any{"message": "No program selected. Use select_program first."}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve next workout: %w", err)
	}
	return nil, sug, nil
}

func (s *Server) handleFinishWorkout(ctx context.Context, req *mcp.CallToolRequest, input finishWorkoutInput) (*mcp.CallToolResult, models.WorkoutHistoryEntry, error) {
	if input.Minutes < 0 {
		return nil, models.WorkoutHistoryEntry{}, fmt.Errorf("minutes must not be negative")
	}
	entry, err := s.workouts.Finish(ctx, time.Duration(input.Minutes)*time.Minute)
	if err != nil {
		return nil, models.WorkoutHistoryEntry{}, fmt.Errorf("failed to finish workout: %w", err)
	}
	return nil, entry, nil
}

func (s *Server) handleSuggest(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, suggestOutput, error) {
	habitsText := suggest.HabitsSummary(s.sess.Activities())
	perf := suggest.PerformanceSummary(s.sess.Week(), s.sess.Stats())
	text := s.suggester.Suggest(ctx, habitsText, perf)
	s.logger.Debug("suggestion served", zap.Int("chars", len(text)))
	return nil, suggestOutput{Suggestion: text}, nil
}
