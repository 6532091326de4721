package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets covers model round trips on a live call, 100ms to 30s.
var LLMBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

var (
	// CallsTotal counts finished call attempts by outcome.
	CallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbound_calls_total",
			Help: "Outbound call attempts by outcome",
		},
		[]string{"persona", "outcome"},
	)

	// DialFailuresTotal counts SIP dial-out requests rejected by the platform.
	DialFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbound_dial_failures_total",
			Help: "Failed SIP dial-out requests",
		},
		[]string{"sip_status_code"},
	)

	// ActiveCalls tracks calls currently owned by this worker.
	ActiveCalls = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "outbound_calls_active",
			Help: "Calls currently in progress",
		},
	)

	// QueuedCalls tracks calls waiting for a free worker in the local pool.
	QueuedCalls = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "outbound_calls_queued",
			Help: "Calls waiting for a worker",
		},
	)

	// ToolInvocationsTotal counts tool calls made by the model.
	ToolInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_tool_invocations_total",
			Help: "Tool invocations by tool and status",
		},
		[]string{"tool", "status"},
	)

	// LLMLatency records model completion latency in seconds.
	LLMLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agent_llm_latency_seconds",
			Help:    "LLM completion latency",
			Buckets: LLMBuckets,
		},
		[]string{"provider", "model"},
	)

	// LLMTokensTotal counts tokens spent on agent turns, per persona.
	LLMTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_llm_tokens_total",
			Help: "Tokens used by agent completions",
		},
		[]string{"persona"},
	)
)

func init() {
	prometheus.MustRegister(
		CallsTotal,
		DialFailuresTotal,
		ActiveCalls,
		QueuedCalls,
		ToolInvocationsTotal,
		LLMLatency,
		LLMTokensTotal,
	)
}
