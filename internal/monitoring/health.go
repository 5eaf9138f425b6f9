package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

const maxTrackedErrors = 10

// HealthChecker tracks the state of the running analysis process and serves
// it as a JSON health endpoint next to the metrics endpoint.
type HealthChecker struct {
	mu          sync.RWMutex
	startedAt   time.Time
	runActive   bool
	lastStatus  string
	completed   int
	total       int
	lastUpdated time.Time
	errors      []string
}

// HealthStatus is the JSON body of the health endpoint
type HealthStatus struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	RunActive   bool      `json:"run_active"`
	Completed   int       `json:"completed"`
	Total       int       `json:"total"`
	LastUpdated time.Time `json:"last_updated,omitempty"`
	Uptime      string    `json:"uptime"`
	Errors      []string  `json:"errors,omitempty"`
}

// NewHealthChecker creates a health checker for a fresh process
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		startedAt:  time.Now(),
		lastStatus: "idle",
		errors:     make([]string, 0),
	}
}

// RunStarted marks the beginning of a portfolio run over total tickers
func (h *HealthChecker) RunStarted(total int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runActive = true
	h.lastStatus = "running"
	h.completed = 0
	h.total = total
	h.lastUpdated = time.Now()
}

// RunProgress updates the completed ticker count of the active run
func (h *HealthChecker) RunProgress(completed, total int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completed = completed
	h.total = total
	h.lastUpdated = time.Now()
}

// RunFinished marks the end of a portfolio run with its terminal status
func (h *HealthChecker) RunFinished(status string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runActive = false
	h.lastStatus = status
	h.lastUpdated = time.Now()
}

// RecordError keeps the most recent errors for the health body
func (h *HealthChecker) RecordError(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, msg)
	if len(h.errors) > maxTrackedErrors {
		h.errors = h.errors[len(h.errors)-maxTrackedErrors:]
	}
}

// Snapshot returns the current health state
func (h *HealthChecker) Snapshot() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	errs := make([]string, len(h.errors))
	copy(errs, h.errors)

	return HealthStatus{
		Status:      h.lastStatus,
		Timestamp:   time.Now(),
		RunActive:   h.runActive,
		Completed:   h.completed,
		Total:       h.total,
		LastUpdated: h.lastUpdated,
		Uptime:      time.Since(h.startedAt).String(),
		Errors:      errs,
	}
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	health := h.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	if health.Status == "ABORTED" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}
