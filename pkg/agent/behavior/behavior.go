// Package behavior maps session metadata to the assistant variant: which
// tools the model gets, the seed instructions, and the opening utterance.
package behavior

import (
	"log/slog"

	"github.com/tiro-ai/voice-tutor/pkg/agent/session"
	"github.com/tiro-ai/voice-tutor/pkg/agent/tools"
	"github.com/tiro-ai/voice-tutor/pkg/core/types"
)

const quizSeed = "You are the flashcard assistant tiro. Your interface with users is voice. " +
	"You quiz the user on flashcards. " +
	"You have access to the functions get_next_due_item and update_progress. " +
	"get_next_due_item returns a flashcard with a question and an answer. Present the question to the user, " +
	"don't reveal the answer until the user has attempted to answer the question. " +
	"When the user answers the question, you compare their response to the flashcard answer. It does not have " +
	"to match with the exact wording, rather it should be factually correct. You then grade the user's answer " +
	"either '1' or '3' (1 = wrong / no answer, 3 = correct). " +
	"Then you use update_progress with your performance rating to record the user's progress. " +
	"If the user's answer had some factual mistakes, provide short feedback on how the answer could be improved, " +
	"then immediately proceed asking the next question. " +
	"If the user's answer was good, immediately proceed to fetching and presenting the next question. " +
	"Repeat this process until no more flashcards are available. If the user asks about some flashcard detail, " +
	"answer all the questions to the best of your knowledge."

const quizGreeting = "Hello! Let's practice some flashcards."

const editorSeed = "You are the writing assistant tiro. Your interface with users is voice. " +
	"You help the user draft and revise a working document. " +
	"You have access to the functions get_document and apply_edit. Read the document before changing it, " +
	"apply the user's requested edits, and read back short passages to confirm changes when asked."

const editorGreeting = "Hello! What are we writing today?"

// Behavior is everything the orchestrator needs to run one session variant.
type Behavior struct {
	Type     types.BehaviorType
	State    *session.State
	Registry *tools.Registry
	Seed     string
	Greeting string
}

// Dependencies are the external services a behavior may bind tools to.
type Dependencies struct {
	Progress tools.ProgressService
	Logger   *slog.Logger
}

// Dispatch validates the metadata and assembles the selected variant.
// Validation failure is fatal and happens before any external call.
func Dispatch(meta types.SessionMetadata, deps Dependencies) (*Behavior, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	switch meta.BehaviorType {
	case types.BehaviorQuiz:
		state := session.NewState(meta.UserID, meta.TopicID)
		bridge := tools.NewQuizBridge(deps.Progress, state, meta.UserID, meta.TopicID, deps.Logger)
		return &Behavior{
			Type:     types.BehaviorQuiz,
			State:    state,
			Registry: tools.NewRegistry(bridge.Descriptors()...),
			Seed:     quizSeed,
			Greeting: quizGreeting,
		}, nil
	default: // editor; Validate rejected everything else
		state := session.NewState(meta.UserID, meta.TopicID)
		bridge := tools.NewEditorBridge(state)
		return &Behavior{
			Type:     types.BehaviorEditor,
			State:    state,
			Registry: tools.NewRegistry(bridge.Descriptors()...),
			Seed:     editorSeed,
			Greeting: editorGreeting,
		}, nil
	}
}
