package bootstrap

import (
	"context"
	"fmt"

	"outbound-caller/internal/agent"
	"outbound-caller/internal/auth"
	"outbound-caller/internal/config"
	"outbound-caller/internal/observability"
	"outbound-caller/internal/outbound"
	"outbound-caller/internal/voice/session"
	"outbound-caller/internal/workers"

	"outbound-caller/internal/clients/googleai"
	"outbound-caller/internal/clients/livekit"
	"outbound-caller/internal/clients/openai"
	callHandler "outbound-caller/internal/outbound/handler"
)

// Dependencies holds all initialized application dependencies
type Dependencies struct {
	Logger *observability.Logger

	// Handlers
	CallHandler callHandler.Handler

	// Auth guards /api; nil when no secret is configured
	Auth *auth.Authenticator

	// Call processing
	Processor    *outbound.Processor
	CallPool     workers.WorkerPool
	CallConsumer workers.CallConsumer

	// closers run on Cleanup in reverse order
	closers []func() error
}

// Initialize sets up all application dependencies
func Initialize(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Logger: logger,
	}

	// Media platform
	lk := livekit.NewClient(cfg.LiveKit.URL, cfg.LiveKit.APIKey, cfg.LiveKit.APISecret, logger)

	// Speech
	speech, err := openai.NewOpenAIRealtimeClient(
		cfg.Services.OpenAIAPIKey,
		openai.RealtimeTranscriptionConfig{
			Model:          cfg.Services.STTModel,
			Language:       "en",
			NoiseReduction: "near_field",
			VAD:            true,
		},
		openai.SpeechConfig{Voice: cfg.Services.TTSVoice},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	// Language model
	llm, err := deps.newLLM(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	persona, err := agent.LookupPersona(cfg.Agent.Persona, agent.ToolOptions{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("invalid AGENT_PERSONA: %w", err)
	}
	agentName := cfg.Agent.Name
	if agentName == "" {
		agentName = persona.AgentName
	}

	sessions := &session.Factory{
		LiveKit: lk,
		STT:     speech,
		TTS:     speech,
		Config: session.Config{
			AgentIdentity:       agentName,
			ParticipantIdentity: cfg.SIP.ParticipantIdentity,
		},
		Logger: logger,
	}
	join := outbound.JoinFunc(func(ctx context.Context, room, agentIdentity string) (outbound.CallSession, error) {
		s, err := sessions.Join(ctx, room, agentIdentity)
		if err != nil {
			return nil, err
		}
		return s, nil
	})

	monitor := outbound.NewMonitor(cfg.Monitor.PollInterval, cfg.Monitor.Timeout, logger)
	deps.Processor = outbound.NewProcessor(
		lk,
		join,
		llm,
		monitor,
		outbound.ProcessorConfig{
			TrunkID:             cfg.SIP.OutboundTrunkID,
			ParticipantIdentity: cfg.SIP.ParticipantIdentity,
			DefaultPersona:      cfg.Agent.Persona,
			AgentName:           cfg.Agent.Name,
		},
		agent.ToolOptions{Logger: logger},
		logger,
	)

	// Calls requested over HTTP run on this worker's pool
	deps.CallPool = workers.NewWorkerPool(workers.WorkerPoolConfig{
		NumWorkers: cfg.WorkerPool.CallWorkers,
	}, deps.Processor, logger)
	deps.CallHandler = callHandler.New(callHandler.DispatchFunc(deps.CallPool.Submit), cfg.Agent.Persona, logger)

	if cfg.Server.JWTSecret != "" {
		if deps.Auth, err = auth.New(cfg.Server.JWTSecret, logger); err != nil {
			return nil, fmt.Errorf("failed to create authenticator: %w", err)
		}
	} else {
		logger.Warn(ctx, "API_JWT_SECRET is not set, /api is unauthenticated")
	}

	// Calls published by cmd/dispatch arrive through Kafka
	consumerCfg := workers.DefaultConsumerConfig(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, cfg.Kafka.Topic)
	consumerCfg.NumWorkers = cfg.WorkerPool.CallWorkers
	deps.CallConsumer = workers.NewConsumer(consumerCfg, deps.Processor, logger)

	logger.Info(ctx, fmt.Sprintf("Agent %s ready with persona %s and %s model %s",
		agentName, persona.Key, cfg.Services.LLMProvider, cfg.Services.LLMModel))
	return deps, nil
}

func (d *Dependencies) newLLM(ctx context.Context, cfg *config.Config, logger *observability.Logger) (agent.LLM, error) {
	switch cfg.Services.LLMProvider {
	case config.LLMProviderGemini:
		gemini, err := googleai.NewGeminiClient(ctx, cfg.Services.GoogleAIAPIKey, cfg.Services.LLMModel, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		d.closers = append(d.closers, gemini.Close)
		return gemini, nil
	default:
		chat, err := openai.NewChatClient(cfg.Services.OpenAIAPIKey, cfg.Services.LLMModel, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai chat client: %w", err)
		}
		return chat, nil
	}
}

// Cleanup closes all resources that need cleanup
func (d *Dependencies) Cleanup() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.Logger.Error(context.Background(), "failed to close dependency", err)
		}
	}
}
