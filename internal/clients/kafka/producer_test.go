package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"outbound-caller/internal/observability"
	"outbound-caller/internal/outbound"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublishCall(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, logger: observability.NewLogger()}

	req := outbound.NewCallRequest("+14155550100", "appointment-confirmation")
	require.NoError(t, p.PublishCall(context.Background(), req))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "+14155550100", string(msg.Key))

	var got outbound.CallRequest
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, req.CallID, got.CallID)
	assert.Equal(t, req.RoomName, got.RoomName)
	assert.Equal(t, "appointment-confirmation", got.Persona)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, req.CallID, headers["call_id"])
	assert.Equal(t, "appointment-confirmation", headers["persona"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublishCall_FillsMissingIDs(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, logger: observability.NewLogger()}

	require.NoError(t, p.PublishCall(context.Background(), outbound.CallRequest{PhoneNumber: "+447700900123"}))

	var got outbound.CallRequest
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.NotEmpty(t, got.CallID)
	assert.Equal(t, "outbound-"+got.CallID, got.RoomName)
}

func TestPublishCall_Errors(t *testing.T) {
	t.Run("invalid phone number is not published", func(t *testing.T) {
		w := &fakeWriter{}
		p := &Producer{writer: w, logger: observability.NewLogger()}

		err := p.PublishCall(context.Background(), outbound.CallRequest{PhoneNumber: "555-0100"})
		assert.ErrorIs(t, err, outbound.ErrInvalidPhoneNumber)
		assert.Empty(t, w.msgs)
	})

	t.Run("write failure", func(t *testing.T) {
		w := &fakeWriter{err: errors.New("broker down")}
		p := &Producer{writer: w, logger: observability.NewLogger()}

		err := p.PublishCall(context.Background(), outbound.NewCallRequest("+14155550100", ""))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broker down")
	})
}
