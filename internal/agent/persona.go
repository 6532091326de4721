package agent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"outbound-caller/internal/observability"
)

var ErrUnknownPersona = errors.New("unknown persona")

// Persona is everything that distinguishes one outbound campaign from another:
// what the agent is told, what it may call, and the name it is dispatched under.
type Persona struct {
	Key                   string
	AgentName             string
	Instructions          string
	VoicemailInstructions string
	Tools                 []Tool
}

// ToolOptions tunes the behavior shared by every persona's tools.
type ToolOptions struct {
	Logger *observability.Logger

	// VoicemailDelay is how long to let the voicemail message play before hanging up.
	VoicemailDelay time.Duration

	// Availability returns open slots for a date. Defaults to a fixed schedule.
	Availability func(ctx context.Context, date string) ([]string, error)
}

func (o ToolOptions) withDefaults() ToolOptions {
	if o.Logger == nil {
		o.Logger = observability.NewLogger()
	}
	if o.VoicemailDelay <= 0 {
		o.VoicemailDelay = 3 * time.Second
	}
	if o.Availability == nil {
		o.Availability = defaultAvailability
	}
	return o
}

type personaFactory func(opts ToolOptions) Persona

var personas = map[string]personaFactory{
	FacilitatorOnboardingKey:   FacilitatorOnboarding,
	AppointmentConfirmationKey: AppointmentConfirmation,
}

// LookupPersona builds the persona registered under key.
func LookupPersona(key string, opts ToolOptions) (Persona, error) {
	factory, ok := personas[key]
	if !ok {
		return Persona{}, fmt.Errorf("%w: %s", ErrUnknownPersona, key)
	}
	return factory(opts), nil
}

// PersonaKeys lists the registered persona keys, sorted.
func PersonaKeys() []string {
	keys := make([]string, 0, len(personas))
	for k := range personas {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Registry returns a tool registry for the persona.
func (p Persona) Registry(logger *observability.Logger) *Registry {
	return NewRegistry(logger, p.Tools...)
}

func endCallTool(opts ToolOptions) Tool {
	return Tool{
		Name:        "end_call",
		Description: "Called when the user wants to end the call",
		Handler: func(ctx context.Context, ctl Controller, _ Args) (string, error) {
			opts.Logger.Info(ctx, "User requested to end the call")
			ctl.Hangup(ctx)
			return "Call ended successfully", nil
		},
	}
}

func answeringMachineTool(opts ToolOptions, voicemail string) Tool {
	return Tool{
		Name:        "detected_answering_machine",
		Description: "Called when the call reaches voicemail. Use this tool AFTER you hear the voicemail greeting",
		Handler: func(ctx context.Context, ctl Controller, _ Args) (string, error) {
			opts.Logger.Info(ctx, "Detected answering machine/voicemail")
			if err := ctl.Say(ctx, voicemail); err != nil {
				opts.Logger.WarnWithError(ctx, "Failed to leave voicemail message", err)
			}

			timer := time.NewTimer(opts.VoicemailDelay)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
			}

			ctl.Hangup(ctx)
			return "Voicemail message left", nil
		},
	}
}
