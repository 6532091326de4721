package outbound

import (
	"context"
	"fmt"
	"sync"

	"outbound-caller/internal/agent"
	"outbound-caller/internal/observability"
)

// roomCloser deletes the call room at most once, whether the agent hangs up
// or the job tears the call down.
type roomCloser struct {
	once     sync.Once
	platform CallPlatform
	room     string
	logger   *observability.Logger
}

func (r *roomCloser) close(ctx context.Context) {
	r.once.Do(func() {
		if err := r.platform.DeleteRoom(context.WithoutCancel(ctx), r.room); err != nil {
			r.logger.WarnWithError(ctx, "Error hanging up call", err)
		}
	})
}

// callControl is what tools see of the call.
type callControl struct {
	room    *roomCloser
	session CallSession
	conv    *agent.Conversation
	logger  *observability.Logger
}

var _ agent.Controller = (*callControl)(nil)

// Hangup deletes the room, which disconnects the callee.
func (c *callControl) Hangup(ctx context.Context) {
	c.logger.Info(ctx, "Hanging up call")
	c.room.close(ctx)
}

// Say generates a reply from instructions and plays it.
func (c *callControl) Say(ctx context.Context, instructions string) error {
	text, err := c.conv.GenerateReply(ctx, instructions)
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	if err := c.session.Speak(ctx, text); err != nil {
		return fmt.Errorf("failed to speak: %w", err)
	}
	return nil
}
