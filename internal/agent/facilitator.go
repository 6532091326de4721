package agent

import (
	"context"
	"encoding/json"
	"fmt"
)

const FacilitatorOnboardingKey = "facilitator-onboarding"

const facilitatorInstructions = "You are Omee, an AI assistant for Ahoum - a spiritual tech platform. Your interface with users will be voice-based phone calls. " +
	"You are calling potential facilitators to onboard them to the Ahoum platform. Your goal is to: " +
	"1. Introduce yourself and Ahoum briefly " +
	"2. Collect basic information from the facilitator (name, spiritual expertise, experience) " +
	"3. Provide a short overview of the platform's benefits for facilitators " +
	"4. Guide them towards the next steps for joining " +
	"Be warm, spiritual, professional, and respectful. Keep conversations concise but meaningful. Allow natural conversation flow."

const facilitatorVoicemail = "Leave a brief, warm voicemail: 'Hi, this is Omee from Ahoum, a spiritual tech platform. " +
	"I was calling to discuss facilitator opportunities. I'll try calling back later. Have a blessed day!'"

// PlatformOverview is the payload returned by provide_platform_overview.
type PlatformOverview struct {
	PlatformBenefits []string `json:"platform_benefits"`
	Message          string   `json:"message"`
}

var ahoumOverview = PlatformOverview{
	PlatformBenefits: []string{
		"Reach global audience of spiritual seekers",
		"Flexible scheduling and session management",
		"Secure payment processing",
		"Community of like-minded facilitators",
		"Technology-enhanced spiritual experiences",
	},
	Message: "Ahoum connects you with seekers worldwide, handles payments, and provides tools for meaningful virtual spiritual sessions. You focus on guiding, we handle the tech.",
}

// FacilitatorOnboarding is Omee calling prospective Ahoum facilitators.
func FacilitatorOnboarding(opts ToolOptions) Persona {
	opts = opts.withDefaults()
	return Persona{
		Key:                   FacilitatorOnboardingKey,
		AgentName:             "ahoum-facilitator-onboarding",
		Instructions:          facilitatorInstructions,
		VoicemailInstructions: facilitatorVoicemail,
		Tools: []Tool{
			endCallTool(opts),
			{
				Name:        "collect_facilitator_info",
				Description: "Called to collect and store basic information about the potential facilitator",
				Params: []Param{
					{Name: "name", Description: "The facilitator's full name"},
					{Name: "expertise", Description: "Their spiritual/wellness expertise area (e.g. meditation, yoga, reiki, etc.)"},
					{Name: "experience", Description: "Years of experience or background in their field"},
				},
				Handler: func(ctx context.Context, _ Controller, args Args) (string, error) {
					opts.Logger.Info(ctx, fmt.Sprintf("Collecting info - Name: %s, Expertise: %s, Experience: %s",
						args["name"], args["expertise"], args["experience"]))
					return fmt.Sprintf("Thank you %s! I've noted your expertise in %s with %s of experience. This aligns perfectly with Ahoum's mission.",
						args["name"], args["expertise"], args["experience"]), nil
				},
			},
			{
				Name:        "provide_platform_overview",
				Description: "Called to give a brief overview of the Ahoum platform benefits for facilitators",
				Handler: func(ctx context.Context, _ Controller, _ Args) (string, error) {
					opts.Logger.Info(ctx, "Providing Ahoum platform overview")
					b, err := json.Marshal(ahoumOverview)
					if err != nil {
						return "", fmt.Errorf("failed to encode platform overview: %w", err)
					}
					return string(b), nil
				},
			},
			{
				Name:        "schedule_next_steps",
				Description: "Called when facilitator wants to proceed with onboarding",
				Params: []Param{
					{Name: "contact_method", Description: "Preferred contact method (email, phone, WhatsApp)"},
					{Name: "availability", Description: "When they're available for follow-up"},
				},
				Handler: func(ctx context.Context, _ Controller, args Args) (string, error) {
					opts.Logger.Info(ctx, fmt.Sprintf("Scheduling next steps - Contact: %s, Availability: %s",
						args["contact_method"], args["availability"]))
					return fmt.Sprintf("Perfect! I'll arrange for our onboarding team to contact you via %s during %s. You'll receive detailed information and can start creating your facilitator profile.",
						args["contact_method"], args["availability"]), nil
				},
			},
			answeringMachineTool(opts, facilitatorVoicemail),
		},
	}
}
