package handler

//go:generate go run go.uber.org/mock/mockgen@latest -source=handler.go -destination=mocks_test.go -package=handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"outbound-caller/internal/agent"
	"outbound-caller/internal/apierrors"
	"outbound-caller/internal/observability"
	"outbound-caller/internal/outbound"

	"github.com/gin-gonic/gin"
)

// Dispatcher queues a call job for a worker.
type Dispatcher interface {
	Dispatch(ctx context.Context, req outbound.CallRequest) error
}

// DispatchFunc adapts a function to Dispatcher.
type DispatchFunc func(ctx context.Context, req outbound.CallRequest) error

func (f DispatchFunc) Dispatch(ctx context.Context, req outbound.CallRequest) error {
	return f(ctx, req)
}

// submitTimeout bounds how long a request waits for room in the call queue.
const submitTimeout = 2 * time.Second

type Handler struct {
	dispatcher     Dispatcher
	defaultPersona string
	logger         *observability.Logger
}

func New(dispatcher Dispatcher, defaultPersona string, logger *observability.Logger) Handler {
	return Handler{
		dispatcher:     dispatcher,
		defaultPersona: defaultPersona,
		logger:         logger,
	}
}

// PlaceCallRequest represents the HTTP request for placing an outbound call
type PlaceCallRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required,e164"`
	Persona     string `json:"persona,omitempty" binding:"max=64"`
}

// PlaceCallResponse is returned once the call is queued
type PlaceCallResponse struct {
	CallID   string `json:"call_id"`
	RoomName string `json:"room_name"`
	Persona  string `json:"persona"`
	Status   string `json:"status"`
}

// HandlePlaceCall queues an outbound call. The call itself runs asynchronously.
func (h *Handler) HandlePlaceCall(c *gin.Context) {
	ctx := c.Request.Context()

	var req PlaceCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}

	persona := req.Persona
	if persona == "" {
		persona = h.defaultPersona
	}
	if _, err := agent.LookupPersona(persona, agent.ToolOptions{Logger: h.logger}); err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	call := outbound.NewCallRequest(req.PhoneNumber, persona)
	if err := call.Validate(); err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "call_id", Value: call.CallID},
		observability.Field{Key: "room", Value: call.RoomName},
		observability.Field{Key: "persona", Value: persona},
	)

	submitCtx, cancel := context.WithTimeout(ctx, submitTimeout)
	defer cancel()
	if err := h.dispatcher.Dispatch(submitCtx, call); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			h.logger.WarnWithError(ctx, "Call queue is full", err)
		} else {
			h.logger.Error(ctx, "failed to dispatch call", err)
		}
		apierrors.RespondWithError(c, err)
		return
	}

	h.logger.Info(ctx, "Outbound call queued")
	c.JSON(http.StatusAccepted, PlaceCallResponse{
		CallID:   call.CallID,
		RoomName: call.RoomName,
		Persona:  persona,
		Status:   "queued",
	})
}

// HandleListPersonas lists the personas a call can be placed with
func (h *Handler) HandleListPersonas(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"personas": agent.PersonaKeys(),
		"default":  h.defaultPersona,
	})
}
