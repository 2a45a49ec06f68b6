// Package llm defines the model boundary: a chat request with tool
// definitions in, text and tool calls out. The session never sees provider
// wire formats.
package llm

import (
	"context"
	"encoding/json"

	"github.com/tiro-ai/voice-tutor/pkg/core/types"
)

// Message is one entry in the model conversation.
type Message struct {
	Role       types.Role
	Text       string
	ToolCalls  []ToolCall
	ToolCallID string
}

// ToolCall is a model-issued request to invoke a tool.
type ToolCall struct {
	ID    string
	Name  string
	Input json.RawMessage
}

type Request struct {
	Model    string
	Messages []Message
	Tools    []types.Tool
}

type Response struct {
	Text      string
	ToolCalls []ToolCall
}

// Provider issues one model call. Implementations must be safe for
// sequential reuse across turns.
type Provider interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
}
