package room

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/gorilla/websocket"
)

// TextSink receives side-channel text, typically the session orchestrator's
// inject queue.
type TextSink interface {
	InjectText(participant, text string) error
}

// SideChannel reads the room's data channel: participants publish text
// messages alongside their audio, and each one becomes an injected user
// turn.
type SideChannel struct {
	conn   *websocket.Conn
	logger *slog.Logger
}

func NewSideChannel(conn *websocket.Conn, logger *slog.Logger) *SideChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &SideChannel{conn: conn, logger: logger}
}

// DialSideChannel connects to the room's data channel endpoint.
func DialSideChannel(ctx context.Context, channelURL string, logger *slog.Logger) (*SideChannel, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, channelURL, nil)
	if err != nil {
		return nil, err
	}
	return NewSideChannel(conn, logger), nil
}

type dataMessage struct {
	Participant string `json:"participant"`
	Text        string `json:"text"`
}

// Forward pumps side-channel messages into the sink until the connection or
// the context ends. Frames that are not JSON are treated as bare text from
// an unnamed participant. A sink error means the session is over and the
// pump stops.
func (s *SideChannel) Forward(ctx context.Context, sink TextSink) error {
	defer s.conn.Close()

	go func() {
		<-ctx.Done()
		s.conn.Close()
	}()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("side channel read failed", "error", err)
			}
			return err
		}

		var msg dataMessage
		if err := json.Unmarshal(data, &msg); err != nil || strings.TrimSpace(msg.Text) == "" {
			msg = dataMessage{Text: string(data)}
		}
		if strings.TrimSpace(msg.Text) == "" {
			continue
		}

		if err := sink.InjectText(msg.Participant, msg.Text); err != nil {
			return err
		}
	}
}
