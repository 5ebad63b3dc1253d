// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server, optionally serving Prometheus metrics over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harperreed/habito/internal/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var mcpMetricsAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants like Claude to read and update your habits through
a standardized protocol. The server communicates via stdin/stdout.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "habito": {
        "command": "habito",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  list_activities   List habits (optionally only today's)
  today             Habits due today, progress, XP and level
  toggle_activity   Mark or unmark a habit as done today
  mark_date         Mark or unmark a habit on a past day
  week_summary      Completion ratio per day of this week
  stats             XP, streaks, frequency and category balance
  select_program    Switch workout program
  next_workout      Next workout in the rotation
  finish_workout    Record the next workout as done
  suggest           Routine suggestion

AVAILABLE RESOURCES:

  habito://today    Today's habits and progress
  habito://week     This week's completion
  habito://stats    Statistics dashboard

METRICS:

  --metrics-addr :9464 (or metrics_addr in the config) serves Prometheus
  counters for toggles and remote writes at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(sess, workoutSvc, newSuggester(), logger)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		addr := mcpMetricsAddr
		if addr == "" {
			addr = cfg.MetricsAddr
		}
		if addr != "" {
			stop := serveMetrics(addr)
			defer stop()
		}

		return server.Serve(ctx)
	},
}

// serveMetrics exposes the default Prometheus registry until stop is called.
func serveMetrics(addr string) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func init() {
	mcpCmd.Flags().StringVar(&mcpMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	rootCmd.AddCommand(mcpCmd)
}
