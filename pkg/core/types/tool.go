package types

// Tool describes a callable operation exposed to the model.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	InputSchema *JSONSchema `json:"input_schema,omitempty"`
}

// JSONSchema is the subset of JSON Schema used for tool inputs.
type JSONSchema struct {
	Type                 string                `json:"type,omitempty"`
	Properties           map[string]JSONSchema `json:"properties,omitempty"`
	Required             []string              `json:"required,omitempty"`
	Description          string                `json:"description,omitempty"`
	Enum                 []string              `json:"enum,omitempty"`
	Items                *JSONSchema           `json:"items,omitempty"`
	AdditionalProperties *bool                 `json:"additionalProperties,omitempty"`
}

// ToolOutcome classifies the result of a tool invocation.
type ToolOutcome string

const (
	// OutcomeOK: the call succeeded; Text is spoken-form content for the model.
	OutcomeOK ToolOutcome = "ok"
	// OutcomeRecoverable: the call failed in a way the model can be told
	// about; the session continues.
	OutcomeRecoverable ToolOutcome = "recoverable"
	// OutcomeFatal: the session cannot continue.
	OutcomeFatal ToolOutcome = "fatal"
)

// ToolResult is the single result type every tool handler returns.
type ToolResult struct {
	Outcome ToolOutcome
	Text    string
	Err     error
}

// Success wraps spoken-form text from a completed tool call.
func Success(text string) ToolResult {
	return ToolResult{Outcome: OutcomeOK, Text: text}
}

// Recoverable reports a failure the model should hear about and work around.
func Recoverable(text string) ToolResult {
	return ToolResult{Outcome: OutcomeRecoverable, Text: text}
}

// Fatal aborts the session.
func Fatal(err error) ToolResult {
	return ToolResult{Outcome: OutcomeFatal, Err: err}
}
