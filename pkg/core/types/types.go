package types

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tiro-ai/voice-tutor/pkg/core"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in the session's conversation history. Turn ids are
// ULIDs, so lexical order of ids matches append order.
type Turn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTurn stamps a turn with a fresh id and the current time.
func NewTurn(role Role, text string) Turn {
	return Turn{
		ID:        ulid.Make().String(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}

// Item is one reviewable item served by the progress service.
type Item struct {
	ItemID          string
	PromptContent   string
	ReferenceAnswer string
}

// BehaviorType selects the assistant variant for a session.
type BehaviorType string

const (
	BehaviorQuiz   BehaviorType = "quiz"
	BehaviorEditor BehaviorType = "editor"
)

// SessionMetadata is the caller-supplied JSON blob attached to the room.
// All three fields are required at session start.
type SessionMetadata struct {
	BehaviorType BehaviorType `json:"behaviorType"`
	TopicID      string       `json:"topicId"`
	UserID       string       `json:"userId"`
}

// ParseSessionMetadata decodes the raw metadata payload. An empty or
// malformed payload is a configuration error: the session must not start.
func ParseSessionMetadata(raw []byte) (SessionMetadata, error) {
	if len(raw) == 0 || strings.TrimSpace(string(raw)) == "" {
		return SessionMetadata{}, core.NewConfigurationErrorWithParam("session metadata is empty", "metadata")
	}
	var meta SessionMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return SessionMetadata{}, core.NewConfigurationErrorWithParam("session metadata is not valid JSON: "+err.Error(), "metadata")
	}
	return meta, nil
}

// Validate checks that every required field is present. Unknown behavior
// types are rejected rather than defaulted.
func (m SessionMetadata) Validate() error {
	switch m.BehaviorType {
	case BehaviorQuiz, BehaviorEditor:
	case "":
		return core.NewConfigurationErrorWithParam("behavior type is required", "behaviorType")
	default:
		return core.NewConfigurationErrorWithParam("unknown behavior type: "+string(m.BehaviorType), "behaviorType")
	}
	if strings.TrimSpace(m.TopicID) == "" {
		return core.NewConfigurationErrorWithParam("session metadata requires a topic id", "topicId")
	}
	if strings.TrimSpace(m.UserID) == "" {
		return core.NewConfigurationErrorWithParam("session metadata requires a user id", "userId")
	}
	return nil
}
