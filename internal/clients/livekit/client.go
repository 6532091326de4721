package livekit

import (
	"context"
	"errors"
	"fmt"

	"outbound-caller/internal/observability"

	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/twitchtv/twirp"
)

// CallStatusAttribute is the participant attribute LiveKit SIP keeps the call state in.
const CallStatusAttribute = "sip.callStatus"

// SIP call states reported in CallStatusAttribute.
const (
	CallStatusDialing    = "dialing"
	CallStatusRinging    = "ringing"
	CallStatusAutomation = "automation"
	CallStatusActive     = "active"
	CallStatusHangup     = "hangup"
)

var ErrDialFailed = errors.New("sip dial-out failed")

// DialError carries the SIP status LiveKit reports for a failed dial-out.
type DialError struct {
	SIPStatusCode string
	SIPStatus     string
	Err           error
}

func (e *DialError) Error() string {
	return fmt.Sprintf("sip dial-out failed: %s %s: %v", e.SIPStatusCode, e.SIPStatus, e.Err)
}

func (e *DialError) Unwrap() error { return e.Err }

func (e *DialError) Is(target error) bool { return target == ErrDialFailed }

type sipService interface {
	CreateSIPParticipant(ctx context.Context, in *livekit.CreateSIPParticipantRequest) (*livekit.SIPParticipantInfo, error)
}

type roomService interface {
	DeleteRoom(ctx context.Context, req *livekit.DeleteRoomRequest) (*livekit.DeleteRoomResponse, error)
	GetParticipant(ctx context.Context, req *livekit.RoomParticipantIdentity) (*livekit.ParticipantInfo, error)
}

// Client talks to the LiveKit server APIs used by outbound calls.
type Client struct {
	url       string
	apiKey    string
	apiSecret string
	sip       sipService
	rooms     roomService
	logger    *observability.Logger
}

func NewClient(url, apiKey, apiSecret string, logger *observability.Logger) *Client {
	return &Client{
		url:       url,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		sip:       lksdk.NewSIPClient(url, apiKey, apiSecret),
		rooms:     lksdk.NewRoomServiceClient(url, apiKey, apiSecret),
		logger:    logger,
	}
}

// DialRequest describes one outbound SIP call into a room.
type DialRequest struct {
	RoomName            string
	TrunkID             string
	PhoneNumber         string
	ParticipantIdentity string
	WaitUntilAnswered   bool
}

// DialOut places the call. With WaitUntilAnswered it blocks until the callee
// picks up or the dial fails.
func (c *Client) DialOut(ctx context.Context, req DialRequest) error {
	info, err := c.sip.CreateSIPParticipant(ctx, &livekit.CreateSIPParticipantRequest{
		SipTrunkId:          req.TrunkID,
		SipCallTo:           req.PhoneNumber,
		RoomName:            req.RoomName,
		ParticipantIdentity: req.ParticipantIdentity,
		WaitUntilAnswered:   req.WaitUntilAnswered,
	})
	if err != nil {
		return toDialError(err)
	}
	c.logger.Info(ctx, fmt.Sprintf("SIP participant %s created", info.GetParticipantId()))
	return nil
}

func toDialError(err error) *DialError {
	dialErr := &DialError{Err: err}
	var twerr twirp.Error
	if errors.As(err, &twerr) {
		dialErr.SIPStatusCode = twerr.Meta("sip_status_code")
		dialErr.SIPStatus = twerr.Meta("sip_status")
	}
	return dialErr
}

// DeleteRoom removes the room, disconnecting everyone in it.
func (c *Client) DeleteRoom(ctx context.Context, room string) error {
	if _, err := c.rooms.DeleteRoom(ctx, &livekit.DeleteRoomRequest{Room: room}); err != nil {
		return fmt.Errorf("failed to delete room %s: %w", room, err)
	}
	return nil
}

// ParticipantStatus is the call-relevant state of a SIP participant.
type ParticipantStatus struct {
	CallStatus       string
	DisconnectReason livekit.DisconnectReason
}

// Rejected reports whether the callee declined the call.
func (s ParticipantStatus) Rejected() bool {
	return s.DisconnectReason == livekit.DisconnectReason_USER_REJECTED
}

// Unavailable reports whether the callee could not be reached.
func (s ParticipantStatus) Unavailable() bool {
	return s.DisconnectReason == livekit.DisconnectReason_USER_UNAVAILABLE
}

// ParticipantStatus looks up identity in room.
func (c *Client) ParticipantStatus(ctx context.Context, room, identity string) (ParticipantStatus, error) {
	info, err := c.rooms.GetParticipant(ctx, &livekit.RoomParticipantIdentity{Room: room, Identity: identity})
	if err != nil {
		return ParticipantStatus{}, fmt.Errorf("failed to get participant %s: %w", identity, err)
	}
	return ParticipantStatus{
		CallStatus:       info.GetAttributes()[CallStatusAttribute],
		DisconnectReason: info.GetDisconnectReason(),
	}, nil
}

// ConnectInfo returns the credentials for joining room as identity.
func (c *Client) ConnectInfo(room, identity string) lksdk.ConnectInfo {
	return lksdk.ConnectInfo{
		APIKey:              c.apiKey,
		APISecret:           c.apiSecret,
		RoomName:            room,
		ParticipantIdentity: identity,
		ParticipantName:     identity,
	}
}

// URL is the LiveKit server url rooms are joined on.
func (c *Client) URL() string {
	return c.url
}
