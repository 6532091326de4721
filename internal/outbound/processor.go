package outbound

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"outbound-caller/internal/agent"
	"outbound-caller/internal/clients/livekit"
	"outbound-caller/internal/observability"
)

// ProcessorConfig holds the per-deployment call settings.
type ProcessorConfig struct {
	TrunkID             string
	ParticipantIdentity string
	DefaultPersona      string
	// AgentName overrides the persona's agent name when set.
	AgentName string
}

// Processor places outbound calls and runs the agent until each one ends.
type Processor struct {
	platform CallPlatform
	sessions SessionFactory
	llm      agent.LLM
	monitor  *Monitor
	config   ProcessorConfig
	toolOpts agent.ToolOptions
	logger   *observability.Logger
}

func NewProcessor(
	platform CallPlatform,
	sessions SessionFactory,
	llm agent.LLM,
	monitor *Monitor,
	config ProcessorConfig,
	toolOpts agent.ToolOptions,
	logger *observability.Logger,
) *Processor {
	if toolOpts.Logger == nil {
		toolOpts.Logger = logger
	}
	return &Processor{
		platform: platform,
		sessions: sessions,
		llm:      llm,
		monitor:  monitor,
		config:   config,
		toolOpts: toolOpts,
		logger:   logger,
	}
}

// Name identifies the processor to the job workers.
func (p *Processor) Name() string {
	return "outbound_call"
}

// Process runs one call job. The outcome is logged and recorded in metrics.
func (p *Processor) Process(ctx context.Context, req CallRequest) error {
	_, err := p.PlaceCall(ctx, req)
	return err
}

// PlaceCall dials req.PhoneNumber, watches the call until it resolves and, when
// answered, lets the agent talk until the call ends.
func (p *Processor) PlaceCall(ctx context.Context, req CallRequest) (Outcome, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	personaKey := req.Persona
	if personaKey == "" {
		personaKey = p.config.DefaultPersona
	}
	persona, err := agent.LookupPersona(personaKey, p.toolOpts)
	if err != nil {
		return "", err
	}
	agentName := persona.AgentName
	if p.config.AgentName != "" {
		agentName = p.config.AgentName
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "call_id", Value: req.CallID},
		observability.Field{Key: "room", Value: req.RoomName},
		observability.Field{Key: "phone_number", Value: req.PhoneNumber},
		observability.Field{Key: "persona", Value: persona.Key},
	)
	p.logger.Info(ctx, fmt.Sprintf("Placing outbound call as %s", agentName))

	sess, err := p.sessions.Join(ctx, req.RoomName, agentName)
	if err != nil {
		p.logger.Error(ctx, "Failed to join call room", err)
		return "", fmt.Errorf("failed to join room: %w", err)
	}

	room := &roomCloser{platform: p.platform, room: req.RoomName, logger: p.logger}
	var teardownOnce sync.Once
	teardown := func() {
		teardownOnce.Do(func() {
			sess.Close()
			room.close(ctx)
		})
	}

	conv := agent.NewConversation(p.llm, persona, p.logger)
	conv.Bind(&callControl{room: room, session: sess, conv: conv, logger: p.logger})

	err = p.platform.DialOut(ctx, livekit.DialRequest{
		RoomName:            req.RoomName,
		TrunkID:             p.config.TrunkID,
		PhoneNumber:         req.PhoneNumber,
		ParticipantIdentity: p.config.ParticipantIdentity,
		WaitUntilAnswered:   true,
	})
	if err != nil {
		var dialErr *livekit.DialError
		code := "unknown"
		if errors.As(err, &dialErr) {
			if dialErr.SIPStatusCode != "" {
				code = dialErr.SIPStatusCode
			}
			p.logger.Error(ctx, fmt.Sprintf("Error creating SIP participant, SIP status: %s %s",
				dialErr.SIPStatusCode, dialErr.SIPStatus), err)
		} else {
			p.logger.Error(ctx, "Error creating SIP participant", err)
		}
		observability.DialFailuresTotal.WithLabelValues(code).Inc()
		observability.CallsTotal.WithLabelValues(persona.Key, "dial_failed").Inc()
		teardown()
		return "", err
	}
	p.logger.Info(ctx, "SIP participant created successfully")

	if err := sess.WaitForParticipant(ctx); err != nil {
		p.logger.Error(ctx, "Participant never joined", err)
		teardown()
		return "", fmt.Errorf("failed waiting for participant: %w", err)
	}

	if err := sess.Start(ctx, conv); err != nil {
		p.logger.Error(ctx, "Failed to start agent session", err)
		teardown()
		return "", err
	}

	outcome, err := p.monitor.Watch(ctx, p.platform, req.RoomName, p.config.ParticipantIdentity)
	if err != nil {
		teardown()
		return "", err
	}
	observability.CallsTotal.WithLabelValues(persona.Key, string(outcome)).Inc()

	if outcome != OutcomeAnswered {
		p.logger.Info(ctx, fmt.Sprintf("Call not answered (%s), shutting down", outcome))
		teardown()
		return outcome, nil
	}

	observability.ActiveCalls.Inc()
	defer observability.ActiveCalls.Dec()

	select {
	case <-sess.Done():
		p.logger.Info(ctx, "Call ended")
	case <-ctx.Done():
		p.logger.Info(ctx, "Shutting down active call")
	}
	teardown()
	return outcome, nil
}
