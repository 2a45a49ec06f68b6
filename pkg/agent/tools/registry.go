// Package tools holds the explicit registry of operations the model may
// invoke, and the behavior-specific bridges that implement them.
package tools

import (
	"context"
	"encoding/json"

	"github.com/tiro-ai/voice-tutor/pkg/core"
	"github.com/tiro-ai/voice-tutor/pkg/core/types"
)

// Handler executes one tool call. The raw input is the model-provided
// argument payload; handlers own their decoding and always answer with a
// ToolResult, never a bare error.
type Handler func(ctx context.Context, input json.RawMessage) types.ToolResult

// Descriptor pairs a tool definition with its handler.
type Descriptor struct {
	Tool    types.Tool
	Handler Handler
}

// Registry is the fixed set of tools for one session. Registration happens
// once at dispatch time; lookups afterwards are read-only.
type Registry struct {
	byName map[string]Descriptor
	order  []string
}

func NewRegistry(descriptors ...Descriptor) *Registry {
	r := &Registry{byName: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if _, dup := r.byName[d.Tool.Name]; dup {
			continue
		}
		r.byName[d.Tool.Name] = d
		r.order = append(r.order, d.Tool.Name)
	}
	return r
}

func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Definitions returns the tool definitions in registration order, for
// inclusion in model requests.
func (r *Registry) Definitions() []types.Tool {
	out := make([]types.Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name].Tool)
	}
	return out
}

// Execute runs the named tool. A call to a tool that was never registered is
// fatal: the model was given a definition set and stepped outside it.
func (r *Registry) Execute(ctx context.Context, name string, input json.RawMessage) types.ToolResult {
	d, ok := r.byName[name]
	if !ok {
		return types.Fatal(core.NewStateError("unknown tool: " + name))
	}
	return d.Handler(ctx, input)
}
