package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	// The command protocol authenticates in-band, so the upgrade itself is open.
	r.Get(s.wsPath(), s.handleWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.bodySizeLimitMiddleware)

		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/devices", s.handleListDevices)
			r.Get("/journal", s.handleListJournal)
			r.Get("/serial-ports", s.handleListSerialPorts)
			r.Post("/printers/{id}/test", s.handlePrinterTest)
			r.Post("/displays/{id}/clear", s.handleDisplayClear)
		})
	})

	return r
}

func (s *Server) wsPath() string {
	if s.wsCfg.Path == "" {
		return "/"
	}
	return s.wsCfg.Path
}
