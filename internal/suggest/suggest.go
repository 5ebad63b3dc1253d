// ABOUTME: Routine suggestions from a chat model, with a fixed fallback.
// ABOUTME: Suggest never fails: any error becomes the Portuguese fallback text.
package suggest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/habito/internal/habits"
	"github.com/harperreed/habito/internal/models"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

const (
	// Fallback is shown whenever the model cannot be reached.
	Fallback = "Notamos que você costuma ler entre 20h e 21h. Gostaria de ajustar o lembrete automaticamente?"
	// EmptyReply is shown when the model answers with no text.
	EmptyReply = "Continue focado em seus objetivos!"
)

// Suggester produces one short suggestion for today.
type Suggester interface {
	Suggest(ctx context.Context, habitsSummary, performance string) string
}

// Prompt renders the request sent to the model.
func Prompt(habitsSummary, performance string) string {
	return fmt.Sprintf("O usuário tem os seguintes hábitos: %s. Sua performance recente é: %s. "+
		"Sugira uma otimização curta (1-2 frases) em português para o dia de hoje.", habitsSummary, performance)
}

// Static always answers with Text, or Fallback when Text is empty.
type Static struct {
	Text string
}

func (s Static) Suggest(context.Context, string, string) string {
	if s.Text == "" {
		return Fallback
	}
	return s.Text
}

// Completer is the chat completion call. *openai.ChatCompletionService satisfies it.
type Completer interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAI asks a chat model for the suggestion.
type OpenAI struct {
	completions Completer
	model       string
	timeout     time.Duration
	logger      *zap.Logger
}

// NewOpenAI builds an OpenAI suggester. baseURL may be empty.
func NewOpenAI(apiKey, model, baseURL string, timeout time.Duration, logger *zap.Logger) *OpenAI {
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(1)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return NewOpenAIWith(&client.Chat.Completions, model, timeout, logger)
}

// NewOpenAIWith builds an OpenAI suggester over any Completer.
func NewOpenAIWith(completions Completer, model string, timeout time.Duration, logger *zap.Logger) *OpenAI {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAI{completions: completions, model: model, timeout: timeout, logger: logger}
}

func (o *OpenAI) Suggest(ctx context.Context, habitsSummary, performance string) string {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := o.completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(Prompt(habitsSummary, performance)),
		},
	})
	if err != nil {
		o.logger.Warn("suggestion request failed", zap.String("model", o.model), zap.Error(err))
		return Fallback
	}

	o.logger.Debug("suggestion request completed",
		zap.Duration("request_time", time.Since(start)),
		zap.Int64("total_tokens", resp.Usage.TotalTokens))

	if len(resp.Choices) == 0 {
		return EmptyReply
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return EmptyReply
	}
	return text
}

// HabitsSummary lists each activity with its category, days and reminder.
func HabitsSummary(activities []models.Activity) string {
	if len(activities) == 0 {
		return "nenhum hábito cadastrado"
	}
	parts := make([]string, 0, len(activities))
	for _, a := range activities {
		desc := fmt.Sprintf("%s (%s, %s", a.Name, a.Category, strings.ReplaceAll(a.Frequency.String(), " ", ""))
		if a.RemindersEnabled && len(a.ReminderTimes) > 0 {
			desc += ", lembrete " + strings.Join(a.ReminderTimes, "/")
		}
		parts = append(parts, desc+")")
	}
	return strings.Join(parts, "; ")
}

// PerformanceSummary describes the current week and streaks.
func PerformanceSummary(week habits.WeekSummary, stats habits.Stats) string {
	var days []string
	for _, d := range week.Days {
		if d.Future || d.Due == 0 {
			continue
		}
		days = append(days, fmt.Sprintf("%s %d/%d", d.Code, d.Done, d.Due))
	}
	summary := fmt.Sprintf("média semanal de %d%%, melhor sequência atual de %d dias, nível %d com %d XP",
		week.AveragePercent(), stats.BestStreak, stats.Level, stats.TotalXP)
	if len(days) > 0 {
		summary += " (" + strings.Join(days, ", ") + ")"
	}
	return summary
}
