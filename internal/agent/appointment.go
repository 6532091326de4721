package agent

import (
	"context"
	"encoding/json"
	"fmt"
)

const AppointmentConfirmationKey = "appointment-confirmation"

const appointmentInstructions = "You are a scheduling assistant for a dental practice. Your interface with user will be voice. " +
	"You will be on a call with a patient who has an upcoming appointment. Your goal is to confirm the appointment details. " +
	"As a customer service representative, you will be polite and professional at all times. Allow user to end the conversation."

const appointmentVoicemail = "Leave a short voicemail: say you are calling from the dental practice to confirm an upcoming appointment " +
	"and ask the patient to call the office back."

// Availability is the payload returned by look_up_availability.
type Availability struct {
	Date           string   `json:"date"`
	AvailableTimes []string `json:"available_times"`
}

func defaultAvailability(_ context.Context, _ string) ([]string, error) {
	return []string{"1pm", "2pm", "3pm"}, nil
}

// AppointmentConfirmation calls patients to confirm or move dental appointments.
func AppointmentConfirmation(opts ToolOptions) Persona {
	opts = opts.withDefaults()
	return Persona{
		Key:                   AppointmentConfirmationKey,
		AgentName:             "outbound-caller",
		Instructions:          appointmentInstructions,
		VoicemailInstructions: appointmentVoicemail,
		Tools: []Tool{
			endCallTool(opts),
			{
				Name:        "look_up_availability",
				Description: "Called when the user asks about alternative appointment availability",
				Params: []Param{
					{Name: "date", Description: "The date of the appointment to check availability for"},
				},
				Handler: func(ctx context.Context, _ Controller, args Args) (string, error) {
					opts.Logger.Info(ctx, fmt.Sprintf("Looking up availability for %s", args["date"]))
					times, err := opts.Availability(ctx, args["date"])
					if err != nil {
						return "", fmt.Errorf("failed to look up availability: %w", err)
					}
					b, err := json.Marshal(Availability{Date: args["date"], AvailableTimes: times})
					if err != nil {
						return "", fmt.Errorf("failed to encode availability: %w", err)
					}
					return string(b), nil
				},
			},
			{
				Name:        "confirm_appointment",
				Description: "Called when the user confirms their appointment on a specific date. Use this tool only when they are certain about the date and time",
				Params: []Param{
					{Name: "date", Description: "The date of the appointment"},
					{Name: "time", Description: "The time of the appointment"},
				},
				Handler: func(ctx context.Context, _ Controller, args Args) (string, error) {
					opts.Logger.Info(ctx, fmt.Sprintf("Confirming appointment for %s at %s", args["date"], args["time"]))
					return fmt.Sprintf("Reservation confirmed for %s at %s.", args["date"], args["time"]), nil
				},
			},
			answeringMachineTool(opts, appointmentVoicemail),
		},
	}
}
