package voice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tiro-ai/voice-tutor/pkg/agent/llm"
	"github.com/tiro-ai/voice-tutor/pkg/agent/tools"
	"github.com/tiro-ai/voice-tutor/pkg/core/types"
)

// LoopConfig bounds one turn: how many model calls and tool calls it may
// spend, and how long any single tool call or the whole turn may run.
type LoopConfig struct {
	Model         string
	MaxModelCalls int
	MaxToolCalls  int
	ToolTimeout   time.Duration
	TurnTimeout   time.Duration
}

// Loop runs the model/tool cycle for one user turn.
type Loop struct {
	provider llm.Provider
	registry *tools.Registry
	cfg      LoopConfig
	logger   *slog.Logger
}

func NewLoop(provider llm.Provider, registry *tools.Registry, cfg LoopConfig, logger *slog.Logger) *Loop {
	if cfg.MaxModelCalls <= 0 {
		cfg.MaxModelCalls = 8
	}
	if cfg.MaxToolCalls <= 0 {
		cfg.MaxToolCalls = 5
	}
	if cfg.ToolTimeout <= 0 {
		cfg.ToolTimeout = 10 * time.Second
	}
	if cfg.TurnTimeout <= 0 {
		cfg.TurnTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{provider: provider, registry: registry, cfg: cfg, logger: logger}
}

// RunTurn drives the model until it produces plain text, executing tool
// calls in between. Recoverable tool results are fed back to the model as
// error-flagged tool output; a fatal result aborts the turn with an error
// the caller treats as session-ending.
func (l *Loop) RunTurn(ctx context.Context, history []types.Turn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.TurnTimeout)
	defer cancel()

	messages := make([]llm.Message, 0, len(history))
	for _, t := range history {
		messages = append(messages, llm.Message{Role: t.Role, Text: t.Text})
	}
	defs := l.registry.Definitions()

	toolCallsUsed := 0
	for call := 1; call <= l.cfg.MaxModelCalls; call++ {
		resp, err := l.provider.Complete(ctx, &llm.Request{
			Model:    l.cfg.Model,
			Messages: messages,
			Tools:    defs,
		})
		if err != nil {
			return "", fmt.Errorf("model call %d: %w", call, err)
		}

		if len(resp.ToolCalls) == 0 {
			return resp.Text, nil
		}

		messages = append(messages, llm.Message{
			Role:      types.RoleAssistant,
			Text:      resp.Text,
			ToolCalls: resp.ToolCalls,
		})

		for _, tc := range resp.ToolCalls {
			if toolCallsUsed >= l.cfg.MaxToolCalls {
				return "", fmt.Errorf("tool call budget exhausted (%d)", l.cfg.MaxToolCalls)
			}
			toolCallsUsed++

			result := l.executeOne(ctx, tc)
			if result.Outcome == types.OutcomeFatal {
				return "", fmt.Errorf("tool %s: %w", tc.Name, result.Err)
			}

			text := result.Text
			if result.Outcome == types.OutcomeRecoverable {
				text = "Error: " + text
				l.logger.Warn("tool call recovered", "tool", tc.Name, "detail", result.Text)
			}
			messages = append(messages, llm.Message{
				Role:       types.RoleUser,
				Text:       text,
				ToolCallID: tc.ID,
			})
		}
	}

	return "", fmt.Errorf("model call budget exhausted (%d)", l.cfg.MaxModelCalls)
}

func (l *Loop) executeOne(ctx context.Context, tc llm.ToolCall) types.ToolResult {
	callCtx, cancel := context.WithTimeout(ctx, l.cfg.ToolTimeout)
	defer cancel()

	start := time.Now()
	result := l.registry.Execute(callCtx, tc.Name, tc.Input)
	l.logger.Debug("tool executed",
		"tool", tc.Name,
		"outcome", string(result.Outcome),
		"duration_ms", time.Since(start).Milliseconds())
	return result
}
