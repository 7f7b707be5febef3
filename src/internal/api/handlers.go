package api

import (
	"encoding/json"
	"net/http"

	"github.com/Penguin-Guru/manual-connections/src/internal/log"
)

// Handler holds the control API handlers.
type Handler struct {
	service ConnectionService
	version VersionInfo
}

// NewHandler creates the control API handler set.
func NewHandler(service ConnectionService, version VersionInfo) *Handler {
	return &Handler{service: service, version: version}
}

// writeData writes a successful JSON response wrapped in a data field.
func writeData(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(DataResponse{Data: data}); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

// GetStatus returns the tunnel status.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status()
	if err != nil {
		WriteServiceError(w, err.Error())
		return
	}
	writeData(w, http.StatusOK, status)
}

// CheckHealth returns service health and version.
func (h *Handler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, HealthResponse{Healthy: true, Version: h.version})
}

// GetPort returns the currently forwarded port.
func (h *Handler) GetPort(w http.ResponseWriter, r *http.Request) {
	port, ok := h.service.ForwardedPort()
	if !ok {
		WriteNotFound(w, "forwarded port")
		return
	}
	writeData(w, http.StatusOK, port)
}

// Connect establishes the tunnel.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Connect(r.Context())
	if err != nil {
		WriteServiceError(w, err.Error())
		return
	}
	writeData(w, http.StatusOK, status)
}

// Disconnect tears the tunnel down.
func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Disconnect(); err != nil {
		WriteServiceError(w, err.Error())
		return
	}
	status, err := h.service.Status()
	if err != nil {
		WriteServiceError(w, err.Error())
		return
	}
	writeData(w, http.StatusOK, status)
}
