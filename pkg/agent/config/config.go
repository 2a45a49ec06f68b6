package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tiro-ai/voice-tutor/pkg/core"
)

// Config carries every knob the agent process reads from the environment.
// It is assembled and validated exactly once at start; nothing else in the
// program touches os.Getenv.
type Config struct {
	// Progress service.
	ProgressBaseURL string

	// Room service admin API.
	RoomServiceURL string
	RoomAPIKey     string
	RoomAPISecret  string

	// Model provider.
	ModelAPIKey  string
	ModelBaseURL string
	ModelName    string

	// Speech gateway carrying transcripts in and utterances out.
	SpeechGatewayURL string

	// Outbound HTTP.
	HTTPTimeout time.Duration

	// Turn budgets.
	ToolTimeout          time.Duration
	TurnTimeout          time.Duration
	MaxModelCallsPerTurn int
	MaxToolCallsPerTurn  int

	// Side-channel inject queue capacity.
	SideChannelQueueSize int

	// Grace period for best-effort teardown work.
	ShutdownWait time.Duration

	LogLevel string
}

// LoadFromEnv builds the Config from TUTOR_* environment variables and
// validates every field. A variable that is set but unparseable is an error,
// never a silent fallback to the default.
func LoadFromEnv() (Config, error) {
	p := &envParser{}
	cfg := Config{
		ProgressBaseURL:      envOr("TUTOR_PROGRESS_BASE_URL", ""),
		RoomServiceURL:       envOr("TUTOR_ROOM_SERVICE_URL", ""),
		RoomAPIKey:           envOr("TUTOR_ROOM_API_KEY", ""),
		RoomAPISecret:        envOr("TUTOR_ROOM_API_SECRET", ""),
		ModelAPIKey:          envOr("TUTOR_MODEL_API_KEY", ""),
		ModelBaseURL:         envOr("TUTOR_MODEL_BASE_URL", "https://api.openai.com/v1"),
		ModelName:            envOr("TUTOR_MODEL_NAME", "gpt-4o-mini"),
		SpeechGatewayURL:     envOr("TUTOR_SPEECH_GATEWAY_URL", "ws://127.0.0.1:7880/speech"),
		HTTPTimeout:          p.durationOr("TUTOR_HTTP_TIMEOUT", 10*time.Second),
		ToolTimeout:          p.durationOr("TUTOR_TOOL_TIMEOUT", 10*time.Second),
		TurnTimeout:          p.durationOr("TUTOR_TURN_TIMEOUT", 30*time.Second),
		MaxModelCallsPerTurn: p.intOr("TUTOR_MAX_MODEL_CALLS_PER_TURN", 8),
		MaxToolCallsPerTurn:  p.intOr("TUTOR_MAX_TOOL_CALLS_PER_TURN", 5),
		SideChannelQueueSize: p.intOr("TUTOR_SIDE_CHANNEL_QUEUE_SIZE", 64),
		ShutdownWait:         p.durationOr("TUTOR_SHUTDOWN_WAIT", 5*time.Second),
		LogLevel:             envOr("TUTOR_LOG_LEVEL", "info"),
	}
	if p.err != nil {
		return Config{}, p.err
	}

	if cfg.ProgressBaseURL == "" {
		return Config{}, core.NewConfigurationErrorWithParam("TUTOR_PROGRESS_BASE_URL must be set", "TUTOR_PROGRESS_BASE_URL")
	}
	if cfg.RoomServiceURL == "" {
		return Config{}, core.NewConfigurationErrorWithParam("TUTOR_ROOM_SERVICE_URL must be set", "TUTOR_ROOM_SERVICE_URL")
	}
	if cfg.RoomAPIKey == "" {
		return Config{}, core.NewConfigurationErrorWithParam("TUTOR_ROOM_API_KEY must be set", "TUTOR_ROOM_API_KEY")
	}
	if cfg.RoomAPISecret == "" {
		return Config{}, core.NewConfigurationErrorWithParam("TUTOR_ROOM_API_SECRET must be set", "TUTOR_ROOM_API_SECRET")
	}
	if cfg.ModelAPIKey == "" {
		return Config{}, core.NewConfigurationErrorWithParam("TUTOR_MODEL_API_KEY must be set", "TUTOR_MODEL_API_KEY")
	}
	if cfg.ModelName == "" {
		return Config{}, core.NewConfigurationErrorWithParam("TUTOR_MODEL_NAME must not be empty", "TUTOR_MODEL_NAME")
	}
	if cfg.HTTPTimeout <= 0 {
		return Config{}, core.NewConfigurationErrorWithParam("TUTOR_HTTP_TIMEOUT must be > 0", "TUTOR_HTTP_TIMEOUT")
	}
	if cfg.ToolTimeout <= 0 {
		return Config{}, core.NewConfigurationErrorWithParam("TUTOR_TOOL_TIMEOUT must be > 0", "TUTOR_TOOL_TIMEOUT")
	}
	if cfg.TurnTimeout <= 0 {
		return Config{}, core.NewConfigurationErrorWithParam("TUTOR_TURN_TIMEOUT must be > 0", "TUTOR_TURN_TIMEOUT")
	}
	if cfg.MaxModelCallsPerTurn <= 0 {
		return Config{}, core.NewConfigurationErrorWithParam("TUTOR_MAX_MODEL_CALLS_PER_TURN must be > 0", "TUTOR_MAX_MODEL_CALLS_PER_TURN")
	}
	if cfg.MaxToolCallsPerTurn <= 0 {
		return Config{}, core.NewConfigurationErrorWithParam("TUTOR_MAX_TOOL_CALLS_PER_TURN must be > 0", "TUTOR_MAX_TOOL_CALLS_PER_TURN")
	}
	if cfg.SideChannelQueueSize <= 0 {
		return Config{}, core.NewConfigurationErrorWithParam("TUTOR_SIDE_CHANNEL_QUEUE_SIZE must be > 0", "TUTOR_SIDE_CHANNEL_QUEUE_SIZE")
	}
	if cfg.ShutdownWait <= 0 {
		return Config{}, core.NewConfigurationErrorWithParam("TUTOR_SHUTDOWN_WAIT must be > 0", "TUTOR_SHUTDOWN_WAIT")
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, core.NewConfigurationErrorWithParam("TUTOR_LOG_LEVEL must be one of debug|info|warn|error", "TUTOR_LOG_LEVEL")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// envParser parses typed variables, keeping the first parse error.
type envParser struct {
	err error
}

func (p *envParser) intOr(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		if p.err == nil {
			p.err = core.NewConfigurationErrorWithParam(key+" must be an integer", key)
		}
		return def
	}
	return n
}

func (p *envParser) durationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		if p.err == nil {
			p.err = core.NewConfigurationErrorWithParam(key+" must be a duration like 10s or 2m", key)
		}
		return def
	}
	return d
}
