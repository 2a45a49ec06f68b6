// Package session owns one assistant session: its mutable state and the
// orchestrator that runs the pipeline, consumes transcripts and injected
// text, and tears the room down when the conversation ends.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tiro-ai/voice-tutor/pkg/agent/voice"
	"github.com/tiro-ai/voice-tutor/pkg/core/types"
)

// ErrSessionEnded is returned by InjectText once the session has stopped
// accepting input.
var ErrSessionEnded = errors.New("session has ended")

// TurnRunner drives one model/tool cycle for a user utterance.
type TurnRunner interface {
	RunTurn(ctx context.Context, history []types.Turn) (string, error)
}

// RoomAdmin is the teardown surface of the room service.
type RoomAdmin interface {
	DeleteRoom(ctx context.Context, room string) error
}

// Config bounds the orchestrator.
type Config struct {
	// InjectQueueSize caps pending side-channel text. Producers block when
	// the queue is full; arrival order is preserved.
	InjectQueueSize int

	// ShutdownWait bounds the best-effort teardown call.
	ShutdownWait time.Duration
}

// Dependencies carries everything a session needs. Zero-value optional
// fields get defaults in New.
type Dependencies struct {
	Logger     *slog.Logger
	Recognizer voice.Recognizer
	Speaker    voice.Speaker
	Loop       TurnRunner
	State      *State
	Seed       string
	Greeting   string
	RoomName   string
	Admin      RoomAdmin
	Config     Config
}

type injected struct {
	participant string
	text        string
}

// Session orchestrates one conversation. Exactly one goroutine (Run) mutates
// history and drives turns; the side channel only ever enqueues.
type Session struct {
	deps   Dependencies
	logger *slog.Logger

	inject chan injected
	done   chan struct{}

	endOnce      sync.Once
	teardownOnce sync.Once
}

func New(deps Dependencies) *Session {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Config.InjectQueueSize <= 0 {
		deps.Config.InjectQueueSize = 64
	}
	if deps.Config.ShutdownWait <= 0 {
		deps.Config.ShutdownWait = 5 * time.Second
	}
	return &Session{
		deps:   deps,
		logger: deps.Logger,
		inject: make(chan injected, deps.Config.InjectQueueSize),
		done:   make(chan struct{}),
	}
}

// InjectText queues side-channel text as a pending user turn. It blocks when
// the queue is full and fails once the session has ended. FIFO enqueue order
// is the order turns will be appended in.
func (s *Session) InjectText(participant, text string) error {
	select {
	case <-s.done:
		return ErrSessionEnded
	default:
	}

	select {
	case s.inject <- injected{participant: participant, text: text}:
		return nil
	case <-s.done:
		return ErrSessionEnded
	}
}

// Run executes the session until the context ends or the pipeline closes,
// then performs teardown exactly once. The returned error reflects how the
// conversation ended; teardown failures are logged, never returned.
func (s *Session) Run(ctx context.Context) error {
	defer s.teardown()
	defer s.markEnded()

	if s.deps.Seed != "" {
		s.deps.State.Append(types.NewTurn(types.RoleSystem, s.deps.Seed))
	}

	if s.deps.Greeting != "" {
		s.deps.State.Append(types.NewTurn(types.RoleAssistant, s.deps.Greeting))
		if err := s.deps.Speaker.Speak(ctx, s.deps.Greeting); err != nil {
			s.logger.Warn("greeting playback failed", "error", err)
		}
	}

	transcripts := s.deps.Recognizer.Transcripts()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case t, ok := <-transcripts:
			if !ok {
				s.logger.Info("speech pipeline closed")
				return nil
			}
			if !t.Final {
				continue
			}
			if err := s.handleUserText(ctx, t.Text); err != nil {
				return err
			}

		case in := <-s.inject:
			s.logger.Debug("side-channel text injected", "participant", in.participant)
			if err := s.handleUserText(ctx, in.text); err != nil {
				return err
			}
		}
	}
}

// handleUserText runs one full turn: append the user turn, ask the model,
// append and speak the reply.
func (s *Session) handleUserText(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	s.deps.State.Append(types.NewTurn(types.RoleUser, text))

	reply, err := s.deps.Loop.RunTurn(ctx, s.deps.State.History())
	if err != nil {
		return err
	}
	if reply == "" {
		return nil
	}

	s.deps.State.Append(types.NewTurn(types.RoleAssistant, reply))
	if err := s.deps.Speaker.Speak(ctx, reply); err != nil {
		s.logger.Warn("speech playback failed", "error", err)
	}
	return nil
}

func (s *Session) markEnded() {
	s.endOnce.Do(func() { close(s.done) })
}

// teardown deletes the room exactly once, best effort. It runs on its own
// deadline because the session context is usually already canceled here.
func (s *Session) teardown() {
	s.teardownOnce.Do(func() {
		if s.deps.Admin == nil || s.deps.RoomName == "" {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.deps.Config.ShutdownWait)
		defer cancel()

		if err := s.deps.Admin.DeleteRoom(ctx, s.deps.RoomName); err != nil {
			s.logger.Error("room teardown failed", "room", s.deps.RoomName, "error", err)
			return
		}
		s.logger.Info("room deleted", "room", s.deps.RoomName)
	})
}
