package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/tiro-ai/voice-tutor/pkg/agent/behavior"
	"github.com/tiro-ai/voice-tutor/pkg/agent/config"
	"github.com/tiro-ai/voice-tutor/pkg/agent/llm"
	"github.com/tiro-ai/voice-tutor/pkg/agent/progress"
	"github.com/tiro-ai/voice-tutor/pkg/agent/room"
	"github.com/tiro-ai/voice-tutor/pkg/agent/session"
	"github.com/tiro-ai/voice-tutor/pkg/agent/voice"
	"github.com/tiro-ai/voice-tutor/pkg/core/types"
)

func main() {
	_ = godotenv.Load()

	roomName := flag.String("room", "", "Name of the room this session is attached to")
	metadataRaw := flag.String("metadata", os.Getenv("TUTOR_SESSION_METADATA"), "Session metadata JSON")
	dataChannelURL := flag.String("data-channel", os.Getenv("TUTOR_DATA_CHANNEL_URL"), "Optional websocket URL of the room's text data channel")
	flag.Parse()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	if *roomName == "" {
		logger.Error("-room is required")
		os.Exit(1)
	}

	meta, err := types.ParseSessionMetadata([]byte(*metadataRaw))
	if err != nil {
		logger.Error("failed to parse session metadata", "error", err)
		os.Exit(1)
	}

	sessionID := uuid.NewString()
	logger = logger.With("session_id", sessionID, "room", *roomName)

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	progressClient := progress.NewClient(cfg.ProgressBaseURL, httpClient)

	b, err := behavior.Dispatch(meta, behavior.Dependencies{
		Progress: progressClient,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("behavior dispatch failed", "error", err)
		os.Exit(1)
	}
	logger.Info("session dispatched", "behavior", string(b.Type))

	provider := llm.NewOpenAIProvider(cfg.ModelAPIKey,
		llm.WithBaseURL(cfg.ModelBaseURL),
		llm.WithHTTPClient(httpClient),
	)
	loop := voice.NewLoop(provider, b.Registry, voice.LoopConfig{
		Model:         cfg.ModelName,
		MaxModelCalls: cfg.MaxModelCallsPerTurn,
		MaxToolCalls:  cfg.MaxToolCallsPerTurn,
		ToolTimeout:   cfg.ToolTimeout,
		TurnTimeout:   cfg.TurnTimeout,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	speech, err := prewarm(ctx, cfg, logger)
	if err != nil {
		logger.Error("prewarm failed", "error", err)
		os.Exit(1)
	}
	defer speech.Close()

	admin := room.NewAdminClient(cfg.RoomServiceURL, cfg.RoomAPIKey, cfg.RoomAPISecret, httpClient)

	sess := session.New(session.Dependencies{
		Logger:     logger,
		Recognizer: speech,
		Speaker:    speech,
		Loop:       loop,
		State:      b.State,
		Seed:       b.Seed,
		Greeting:   b.Greeting,
		RoomName:   *roomName,
		Admin:      admin,
		Config: session.Config{
			InjectQueueSize: cfg.SideChannelQueueSize,
			ShutdownWait:    cfg.ShutdownWait,
		},
	})

	if *dataChannelURL != "" {
		side, err := room.DialSideChannel(ctx, *dataChannelURL, logger)
		if err != nil {
			logger.Error("failed to connect to data channel", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := side.Forward(ctx, sess); err != nil && ctx.Err() == nil {
				logger.Warn("side channel closed", "error", err)
			}
		}()
	}

	if err := sess.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("session ended with error", "error", err)
		os.Exit(1)
	}
	logger.Info("session finished")
}

// prewarm does the slow startup work before the session begins: connecting
// the speech pipeline, which dominates time-to-first-greeting.
func prewarm(ctx context.Context, cfg config.Config, logger *slog.Logger) (*voice.RemoteSpeech, error) {
	speech, err := voice.DialRemoteSpeech(ctx, cfg.SpeechGatewayURL, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("speech pipeline warmed", "gateway", cfg.SpeechGatewayURL)
	return speech, nil
}

func setupLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
