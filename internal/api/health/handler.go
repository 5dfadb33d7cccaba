package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"stockpulse/pkg/logger"
)

// Checker verifies connectivity of one dependency.
type Checker interface {
	Health(ctx context.Context) error
}

// Handler provides health check endpoints
type Handler struct {
	log         *logger.Logger
	redis       Checker // nil when the memory cache backend is used
	startTime   time.Time
	serviceName string
	version     string
}

// New creates a new health check handler
func New(log *logger.Logger, redis Checker, serviceName, version string) *Handler {
	return &Handler{
		log:         log,
		redis:       redis,
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string                     `json:"status"` // "healthy", "degraded"
	Service   string                     `json:"service"`
	Version   string                     `json:"version"`
	Uptime    string                     `json:"uptime"`
	Timestamp string                     `json:"timestamp"`
	Checks    map[string]ComponentHealth `json:"checks,omitempty"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandleHealth reports overall service health including dependencies.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    map[string]ComponentHealth{},
	}

	code := http.StatusOK
	if h.redis != nil {
		start := time.Now()
		if err := h.redis.Health(ctx); err != nil {
			status.Status = "degraded"
			status.Checks["redis"] = ComponentHealth{Status: "unhealthy", Error: err.Error()}
			code = http.StatusServiceUnavailable
		} else {
			status.Checks["redis"] = ComponentHealth{
				Status:       "healthy",
				ResponseTime: time.Since(start).Round(time.Millisecond).String(),
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}

// HandleLiveness returns 200 OK if service is running
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "alive",
	})
}
