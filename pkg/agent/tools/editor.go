package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tiro-ai/voice-tutor/pkg/core/types"
)

// Tool names exposed to the model in editor sessions.
const (
	ToolGetDocument = "get_document"
	ToolApplyEdit   = "apply_edit"
)

// DocumentStore is the slice of session state the editor bridge needs.
type DocumentStore interface {
	Document() string
	SetDocument(text string)
}

// EditorBridge implements the editor tools against the session's working
// document. Edits are whole-replacement or targeted string substitution;
// nothing leaves the session.
type EditorBridge struct {
	store DocumentStore
}

func NewEditorBridge(store DocumentStore) *EditorBridge {
	return &EditorBridge{store: store}
}

func (b *EditorBridge) Descriptors() []Descriptor {
	return []Descriptor{
		{
			Tool: types.Tool{
				Name:        ToolGetDocument,
				Description: "Read the current working document.",
				InputSchema: &types.JSONSchema{Type: "object"},
			},
			Handler: b.getDocument,
		},
		{
			Tool: types.Tool{
				Name:        ToolApplyEdit,
				Description: "Edit the working document. Provide find and replace to substitute a passage, or content alone to replace the whole document.",
				InputSchema: &types.JSONSchema{
					Type: "object",
					Properties: map[string]types.JSONSchema{
						"find":    {Type: "string", Description: "Exact passage to replace."},
						"replace": {Type: "string", Description: "Replacement for the passage."},
						"content": {Type: "string", Description: "Full replacement document."},
					},
				},
			},
			Handler: b.applyEdit,
		},
	}
}

func (b *EditorBridge) getDocument(_ context.Context, _ json.RawMessage) types.ToolResult {
	doc := b.store.Document()
	if strings.TrimSpace(doc) == "" {
		return types.Success("The document is empty.")
	}
	return types.Success(doc)
}

func (b *EditorBridge) applyEdit(_ context.Context, input json.RawMessage) types.ToolResult {
	var args struct {
		Find    string `json:"find"`
		Replace string `json:"replace"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return types.Recoverable("The edit arguments were malformed: " + err.Error())
	}

	if args.Find != "" {
		doc := b.store.Document()
		if !strings.Contains(doc, args.Find) {
			return types.Recoverable("The passage to replace was not found in the document.")
		}
		b.store.SetDocument(strings.Replace(doc, args.Find, args.Replace, 1))
		return types.Success("Edit applied.")
	}
	if args.Content != "" {
		b.store.SetDocument(args.Content)
		return types.Success("Document replaced.")
	}
	return types.Recoverable("Provide either find/replace or content.")
}
