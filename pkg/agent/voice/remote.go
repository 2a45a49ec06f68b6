package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// RemoteSpeech attaches to a speech gateway over websocket. Inbound frames
// carry transcripts, outbound frames carry text to synthesize. It satisfies
// both Recognizer and Speaker.
type RemoteSpeech struct {
	conn   *websocket.Conn
	out    chan Transcript
	logger *slog.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
}

type speechFrame struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Final bool   `json:"final,omitempty"`
}

// DialRemoteSpeech connects to the gateway and starts the read loop.
func DialRemoteSpeech(ctx context.Context, gatewayURL string, logger *slog.Logger) (*RemoteSpeech, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, gatewayURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial speech gateway: %w", err)
	}
	r := &RemoteSpeech{
		conn:   conn,
		out:    make(chan Transcript, 16),
		logger: logger,
	}
	go r.readLoop()
	return r, nil
}

func (r *RemoteSpeech) readLoop() {
	defer close(r.out)
	for {
		_, data, err := r.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				r.logger.Warn("speech gateway read failed", "error", err)
			}
			return
		}
		var frame speechFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			r.logger.Warn("dropping malformed speech frame", "error", err)
			continue
		}
		if frame.Type != "transcript" {
			continue
		}
		r.out <- Transcript{Text: frame.Text, Final: frame.Final}
	}
}

func (r *RemoteSpeech) Transcripts() <-chan Transcript {
	return r.out
}

func (r *RemoteSpeech) Speak(ctx context.Context, text string) error {
	data, err := json.Marshal(speechFrame{Type: "speak", Text: text})
	if err != nil {
		return fmt.Errorf("marshal speak frame: %w", err)
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		_ = r.conn.SetWriteDeadline(deadline)
	}
	if err := r.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write speak frame: %w", err)
	}
	return nil
}

func (r *RemoteSpeech) Close() error {
	var err error
	r.closeOnce.Do(func() {
		r.writeMu.Lock()
		_ = r.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		r.writeMu.Unlock()
		err = r.conn.Close()
	})
	return err
}
