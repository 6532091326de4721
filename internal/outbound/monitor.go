package outbound

import (
	"context"
	"time"

	"outbound-caller/internal/clients/livekit"
	"outbound-caller/internal/observability"
)

// Outcome is how the ringing phase of a call ended.
type Outcome string

const (
	OutcomeAnswered    Outcome = "answered"
	OutcomeRejected    Outcome = "rejected"
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeTimedOut    Outcome = "timed_out"
)

const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultWatchTimeout = 60 * time.Second
	DefaultSettleDelay  = time.Second
)

// Monitor polls a SIP participant until the call is answered, refused, or the timeout passes.
type Monitor struct {
	PollInterval time.Duration
	Timeout      time.Duration
	// SettleDelay lets the media path stabilize after the callee picks up.
	SettleDelay time.Duration

	logger *observability.Logger
}

func NewMonitor(pollInterval, timeout time.Duration, logger *observability.Logger) *Monitor {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultWatchTimeout
	}
	return &Monitor{
		PollInterval: pollInterval,
		Timeout:      timeout,
		SettleDelay:  DefaultSettleDelay,
		logger:       logger,
	}
}

// Watch returns the first resolving outcome. It returns an error only when ctx ends first.
func (m *Monitor) Watch(ctx context.Context, src StatusSource, room, identity string) (Outcome, error) {
	deadline := time.Now().Add(m.Timeout)

	for time.Now().Before(deadline) {
		status, err := src.ParticipantStatus(ctx, room, identity)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			m.logger.WarnWithError(ctx, "Failed to read call status", err)

		case status.CallStatus == livekit.CallStatusActive:
			m.logger.Info(ctx, "Call answered - user picked up")
			if err := sleep(ctx, m.SettleDelay); err != nil {
				return "", err
			}
			return OutcomeAnswered, nil

		case status.CallStatus == livekit.CallStatusAutomation:
			m.logger.Info(ctx, "Call in automation state (DTMF)")

		case status.Rejected():
			m.logger.Info(ctx, "User rejected the call")
			return OutcomeRejected, nil

		case status.Unavailable():
			m.logger.Info(ctx, "User did not pick up")
			return OutcomeUnavailable, nil
		}

		if err := sleep(ctx, m.PollInterval); err != nil {
			return "", err
		}
	}

	m.logger.Info(ctx, "Call timed out or was not answered")
	return OutcomeTimedOut, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
