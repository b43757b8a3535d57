package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/wguard/internal/adapters/web/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(s *Server) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.BasicAuth(s.cfg.AuthUser, s.cfg.AuthHash))

	deauthLimiter := middleware.NewRateLimiter(s.cfg.DeauthLimit, s.cfg.DeauthWindow)
	limited := func(h http.HandlerFunc) http.Handler {
		return middleware.RateLimitMiddleware(deauthLimiter)(h)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/aps", s.ScanHandler.HandleListAPs).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.ScanHandler.HandleGetStats).Methods(http.MethodGet)
	api.HandleFunc("/alerts", s.ScanHandler.HandleListAlerts).Methods(http.MethodGet)
	api.HandleFunc("/registry", s.ScanHandler.HandleRegistry).Methods(http.MethodGet)
	api.HandleFunc("/interfaces", s.ScanHandler.HandleListInterfaces).Methods(http.MethodGet)

	api.Handle("/deauth/start", limited(s.DeauthHandler.HandleStart)).Methods(http.MethodPost)
	api.Handle("/deauth/stop", limited(s.DeauthHandler.HandleStop)).Methods(http.MethodPost)
	api.HandleFunc("/deauth/status", s.DeauthHandler.HandleStatus).Methods(http.MethodGet)

	api.HandleFunc("/reports/incidents", s.ReportHandler.HandleIncidentReport).Methods(http.MethodGet)

	r.HandleFunc("/ws", s.WSManager.HandleWebSocket).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}
