package outbound

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidPhoneNumber = errors.New("phone number must be in E.164 format")

var e164 = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// CallRequest is one outbound call job. It travels over Kafka as JSON.
type CallRequest struct {
	CallID      string    `json:"call_id"`
	PhoneNumber string    `json:"phone_number"`
	Persona     string    `json:"persona,omitempty"`
	RoomName    string    `json:"room_name"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewCallRequest creates a call job with a fresh id and room.
func NewCallRequest(phoneNumber, persona string) CallRequest {
	id := uuid.New().String()
	return CallRequest{
		CallID:      id,
		PhoneNumber: strings.TrimSpace(phoneNumber),
		Persona:     persona,
		RoomName:    "outbound-" + id,
		RequestedAt: time.Now().UTC(),
	}
}

// Validate checks the phone number. A missing room name is derived from the call id.
func (r *CallRequest) Validate() error {
	if !e164.MatchString(r.PhoneNumber) {
		return fmt.Errorf("%w: %q", ErrInvalidPhoneNumber, r.PhoneNumber)
	}
	if r.CallID == "" {
		r.CallID = uuid.New().String()
	}
	if r.RoomName == "" {
		r.RoomName = "outbound-" + r.CallID
	}
	return nil
}
