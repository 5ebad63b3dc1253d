// ABOUTME: MCP resource implementations for habito.
// ABOUTME: Provides habito://today, habito://week, and habito://stats resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harperreed/habito/internal/habits"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	todayURI = "habito://today"
	weekURI  = "habito://week"
	statsURI = "habito://stats"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         todayURI,
		Name:        "Today's Habits",
		Description: "Habits due today, completion progress and the XP ledger",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         weekURI,
		Name:        "Week Summary",
		Description: "Completion ratio for each day of the current week",
		MIMEType:    "application/json",
	}, s.handleWeekResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         statsURI,
		Name:        "Habit Statistics",
		Description: "XP series, streaks, recent frequency and category balance",
		MIMEType:    "application/json",
	}, s.handleStatsResource)
}

// todayPayload is shared by the today tool and resource.
func (s *Server) todayPayload() map[string]any {
	view := s.sess.Today()
	due := make([]activityOutput, 0, len(view.Due))
	for _, a := range view.Due {
		due = append(due, toActivityOutput(a))
	}
	return map[string]any{
		"date":     view.Date,
		"due":      due,
		"done":     view.Progress.Done,
		"total":    view.Progress.Due,
		"percent":  view.Progress.Percent(),
		"xp":       view.XP,
		"level":    view.Level,
		"progress": habits.LevelProgress(view.XP),
	}
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// Resource handlers

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return jsonResource(todayURI, s.todayPayload())
}

func (s *Server) handleWeekResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	week := s.sess.Week()
	return jsonResource(weekURI, map[string]any{
		"start":   week.Start,
		"days":    week.Days,
		"average": week.AveragePercent(),
	})
}

func (s *Server) handleStatsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	st := s.sess.Stats()
	result := map[string]any{
		"stats": st,
	}
	if ws, err := s.workouts.State(ctx); err == nil && ws.HasProgram() {
		result["workouts"] = map[string]any{
			"program":  ws.ProgramID,
			"sessions": len(ws.History),
		}
	}
	return jsonResource(statsURI, result)
}
