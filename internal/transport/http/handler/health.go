package handler

import "net/http"

// Readiness reports whether the store bootstrap has completed. Implemented
// by the dynamo bootstrap supervisor.
type Readiness interface {
	Ready() bool
	Err() error
}

// HealthHandler serves liveness and store-readiness probes.
type HealthHandler struct {
	readiness Readiness
}

func NewHealthHandler(readiness Readiness) *HealthHandler {
	return &HealthHandler{readiness: readiness}
}

// Live always answers 200: store unavailability must never take the process
// out of rotation for the traffic it can still serve.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "ok"})
}

// Ready answers 200 once the feed tables are bootstrapped, otherwise 503
// with the reason the subsystem is degraded.
func (h *HealthHandler) Ready(w http.ResponseWriter, _ *http.Request) {
	if h.readiness.Ready() {
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "ready"})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, MessageEnvelope{Error: h.readiness.Err().Error()})
}
