package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
)

// DeauthHandler is the manual control surface of the frame forge.
type DeauthHandler struct {
	Service ports.DeauthService
	Logger  *slog.Logger
}

// NewDeauthHandler creates a new DeauthHandler
func NewDeauthHandler(service ports.DeauthService, logger *slog.Logger) *DeauthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeauthHandler{Service: service, Logger: logger}
}

// HandleStart replaces the active job with a new one.
func (h *DeauthHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)

	var req struct {
		ClientMAC string `json:"client_mac"`
		APMAC     string `json:"ap_mac"`
		Count     int    `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := h.Service.StartJob(r.Context(), domain.DeauthJobConfig{
		ClientMAC: req.ClientMAC,
		APMAC:     req.APMAC,
		Count:     req.Count,
		Origin:    domain.OriginManual,
	})
	switch {
	case errors.Is(err, domain.ErrInvalidMAC), errors.Is(err, domain.ErrInvalidCount):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, domain.ErrNoSender):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		h.Logger.Error("deauth start failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start job")
		return
	}

	h.Logger.Info("deauth job started", "job_id", status.ID, "ap", status.Config.APMAC, "client", status.Config.ClientMAC)
	writeJSON(w, http.StatusAccepted, status)
}

// HandleStop cancels the active job.
func (h *DeauthHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	h.Service.StopJob(r.Context())
	status, ok := h.Service.CurrentJob(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, map[string]string{"status": "idle"})
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// HandleStatus returns the most recent job.
func (h *DeauthHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status, ok := h.Service.CurrentJob(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, "no deauth job has run")
		return
	}
	writeJSON(w, http.StatusOK, status)
}
