package session

import (
	"sync"

	"github.com/tiro-ai/voice-tutor/pkg/core/types"
)

// State is the per-session mutable record: identity, the at-most-one active
// item, the working document, and the append-only conversation history.
// One State exists per session and is shared between the orchestrator and
// the tool bridges, so all access is guarded.
type State struct {
	mu sync.Mutex

	topicID string
	userID  string

	active   *types.Item
	document string
	history  []types.Turn
}

func NewState(userID, topicID string) *State {
	return &State{userID: userID, topicID: topicID}
}

func (s *State) UserID() string  { return s.userID }
func (s *State) TopicID() string { return s.topicID }

// ActiveItem returns the item currently presented to the user, if any.
func (s *State) ActiveItem() (types.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return types.Item{}, false
	}
	return *s.active, true
}

func (s *State) SetActiveItem(item types.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = &item
}

func (s *State) ClearActiveItem() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = nil
}

func (s *State) Document() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.document
}

func (s *State) SetDocument(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.document = text
}

// Append adds a turn to the history. History is append-only; turns are never
// rewritten or reordered once added.
func (s *State) Append(turn types.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, turn)
}

// History returns a snapshot of the conversation so far, in append order.
func (s *State) History() []types.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Turn, len(s.history))
	copy(out, s.history)
	return out
}
