package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Pipeline metrics
	PipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockpulse_pipeline_runs_total",
			Help: "Total number of analysis pipeline runs",
		},
		[]string{"status"}, // status: success|degraded|error
	)

	PipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stockpulse_pipeline_duration_seconds",
			Help:    "Analysis pipeline duration in seconds",
			Buckets: []float64{1, 5, 10, 20, 30, 60, 120, 300},
		},
	)

	PipelineSteps = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stockpulse_pipeline_steps",
			Help:    "Supervisor steps consumed per pipeline run",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8},
		},
	)

	// Agent metrics
	AgentTurns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockpulse_agent_turns_total",
			Help: "Total number of agent turns",
		},
		[]string{"agent", "status"}, // status: success|error
	)

	AgentLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockpulse_agent_latency_seconds",
			Help:    "Agent turn latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"agent"},
	)

	AgentTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockpulse_agent_tokens_total",
			Help: "Total tokens used by agents",
		},
		[]string{"agent", "type"}, // type: input|output
	)

	// Tool metrics
	ToolInvocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockpulse_tool_invocations_total",
			Help: "Total number of tool invocations",
		},
		[]string{"tool", "status"}, // status: success|error
	)

	ToolLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockpulse_tool_latency_seconds",
			Help:    "Tool invocation latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"tool"},
	)

	// Cache metrics
	CacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockpulse_cache_requests_total",
			Help: "Total number of result cache lookups",
		},
		[]string{"outcome"}, // outcome: hit|miss
	)

	// HTTP metrics
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockpulse_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockpulse_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
		},
		[]string{"path", "method"},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	// Pipeline metrics
	prometheus.MustRegister(PipelineRuns)
	prometheus.MustRegister(PipelineDuration)
	prometheus.MustRegister(PipelineSteps)

	// Agent metrics
	prometheus.MustRegister(AgentTurns)
	prometheus.MustRegister(AgentLatency)
	prometheus.MustRegister(AgentTokens)

	// Tool metrics
	prometheus.MustRegister(ToolInvocations)
	prometheus.MustRegister(ToolLatency)

	// Cache metrics
	prometheus.MustRegister(CacheRequests)

	// HTTP metrics
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPDuration)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAgentTurn records an agent turn
func RecordAgentTurn(agent string, latency time.Duration, inputTokens, outputTokens int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	AgentTurns.WithLabelValues(agent, status).Inc()
	AgentLatency.WithLabelValues(agent).Observe(latency.Seconds())

	if inputTokens > 0 {
		AgentTokens.WithLabelValues(agent, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		AgentTokens.WithLabelValues(agent, "output").Add(float64(outputTokens))
	}
}

// RecordToolInvocation records a tool invocation
func RecordToolInvocation(tool string, latency time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	ToolInvocations.WithLabelValues(tool, status).Inc()
	ToolLatency.WithLabelValues(tool).Observe(latency.Seconds())
}

// RecordPipelineRun records a completed pipeline run
func RecordPipelineRun(status string, steps int, duration time.Duration) {
	PipelineRuns.WithLabelValues(status).Inc()
	PipelineSteps.Observe(float64(steps))
	PipelineDuration.Observe(duration.Seconds())
}

// RecordCacheLookup records a result cache lookup outcome
func RecordCacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	CacheRequests.WithLabelValues(outcome).Inc()
}
