package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tiro-ai/voice-tutor/pkg/agent/progress"
	"github.com/tiro-ai/voice-tutor/pkg/core/types"
)

// Tool names exposed to the model in quiz sessions.
const (
	ToolGetNextDueItem = "get_next_due_item"
	ToolUpdateProgress = "update_progress"
)

const noItemsDueMessage = "There are no items due at the moment."

// ProgressService is the slice of the progress client the quiz bridge needs.
type ProgressService interface {
	FetchNextDueItem(ctx context.Context, userID, topicID string) (*types.Item, error)
	SubmitProgress(ctx context.Context, sub progress.Submission) error
}

// ItemStore is the slice of session state the quiz bridge needs: the
// at-most-one item currently presented to the user.
type ItemStore interface {
	ActiveItem() (types.Item, bool)
	SetActiveItem(item types.Item)
	ClearActiveItem()
}

// QuizBridge implements the quiz tools against the progress service and the
// session's active-item slot. The two tools form a small state machine:
// fetching presents an item, a correct submission retires it, an incorrect
// one leaves it active for re-presentation.
type QuizBridge struct {
	svc     ProgressService
	store   ItemStore
	userID  string
	topicID string
	logger  *slog.Logger
}

func NewQuizBridge(svc ProgressService, store ItemStore, userID, topicID string, logger *slog.Logger) *QuizBridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuizBridge{
		svc:     svc,
		store:   store,
		userID:  userID,
		topicID: topicID,
		logger:  logger,
	}
}

func (b *QuizBridge) Descriptors() []Descriptor {
	return []Descriptor{
		{
			Tool: types.Tool{
				Name:        ToolGetNextDueItem,
				Description: "Fetch the next flashcard due for review. Call this to start the quiz and again after each answer has been graded.",
				InputSchema: &types.JSONSchema{Type: "object"},
			},
			Handler: b.getNextDueItem,
		},
		{
			Tool: types.Tool{
				Name:        ToolUpdateProgress,
				Description: "Record how the user did on the current flashcard. Rate 3 for a factually correct answer, 1 for an incorrect one.",
				InputSchema: &types.JSONSchema{
					Type: "object",
					Properties: map[string]types.JSONSchema{
						"performance_rating": {
							Type:        "string",
							Enum:        []string{progress.RatingIncorrect, progress.RatingCorrect},
							Description: "3 if the answer was factually correct, 1 otherwise.",
						},
						"user_answer": {
							Type:        "string",
							Description: "The user's answer, verbatim.",
						},
					},
					Required: []string{"performance_rating", "user_answer"},
				},
			},
			Handler: b.updateProgress,
		},
	}
}

func (b *QuizBridge) getNextDueItem(ctx context.Context, _ json.RawMessage) types.ToolResult {
	item, err := b.svc.FetchNextDueItem(ctx, b.userID, b.topicID)
	if err != nil {
		b.logger.Warn("fetch next due item failed", "error", err)
		return types.Recoverable("Fetching the next question failed. Tell the user something went wrong and suggest trying again shortly.")
	}
	if item == nil {
		// Nothing due; a still-presented item stays active and gradable.
		return types.Success(noItemsDueMessage)
	}
	b.store.SetActiveItem(*item)
	return types.Success(fmt.Sprintf("Question: %s, (Answer: %s)", item.PromptContent, item.ReferenceAnswer))
}

func (b *QuizBridge) updateProgress(ctx context.Context, input json.RawMessage) types.ToolResult {
	item, ok := b.store.ActiveItem()
	if !ok {
		// Precondition failure stays local; the service is never called.
		return types.Recoverable("No question is currently active. Fetch the next due question first.")
	}

	var args struct {
		PerformanceRating string `json:"performance_rating"`
		UserAnswer        string `json:"user_answer"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return types.Recoverable("The progress update arguments were malformed: " + err.Error())
	}
	if args.PerformanceRating != progress.RatingIncorrect && args.PerformanceRating != progress.RatingCorrect {
		return types.Recoverable("performance_rating must be \"1\" or \"3\".")
	}

	err := b.svc.SubmitProgress(ctx, progress.Submission{
		UserID:     b.userID,
		TopicID:    b.topicID,
		ItemID:     item.ItemID,
		Rating:     args.PerformanceRating,
		UserAnswer: args.UserAnswer,
	})
	if err != nil {
		// The item stays active so the attempt can be re-graded.
		b.logger.Warn("submit progress failed", "error", err, "item_id", item.ItemID)
		return types.Recoverable("Recording the answer failed. The question is still active; try updating progress again.")
	}

	b.store.ClearActiveItem()
	return types.Success("Progress recorded. Fetch the next due question.")
}
