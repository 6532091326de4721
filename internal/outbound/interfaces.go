package outbound

//go:generate go run go.uber.org/mock/mockgen@latest -source=interfaces.go -destination=mocks_test.go -package=outbound

import (
	"context"

	"outbound-caller/internal/clients/livekit"
	"outbound-caller/internal/voice/session"
)

// StatusSource reports the SIP state of a participant.
type StatusSource interface {
	ParticipantStatus(ctx context.Context, room, identity string) (livekit.ParticipantStatus, error)
}

// CallPlatform is the media platform calls are placed through
type CallPlatform interface {
	StatusSource

	// DialOut places the SIP call and blocks until it is answered or fails.
	DialOut(ctx context.Context, req livekit.DialRequest) error

	// DeleteRoom ends the call for everyone in room.
	DeleteRoom(ctx context.Context, room string) error
}

// CallSession is the agent's presence in a call room
type CallSession interface {
	WaitForParticipant(ctx context.Context) error
	Start(ctx context.Context, conv session.Responder) error
	Speak(ctx context.Context, text string) error
	Done() <-chan struct{}
	Close()
}

// SessionFactory joins the agent to a room under agentIdentity
type SessionFactory interface {
	Join(ctx context.Context, room, agentIdentity string) (CallSession, error)
}

// JoinFunc adapts a function to SessionFactory.
type JoinFunc func(ctx context.Context, room, agentIdentity string) (CallSession, error)

func (f JoinFunc) Join(ctx context.Context, room, agentIdentity string) (CallSession, error) {
	return f(ctx, room, agentIdentity)
}
