package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/posbridge/internal/hardware"
	"github.com/nerrad567/posbridge/internal/journal"
)

// healthCheckTimeout bounds the dependency checks behind /health.
const healthCheckTimeout = 2 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	checks := map[string]string{}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		checks["journal"] = "ok"
		if err := s.db.HealthCheck(ctx); err != nil {
			checks["journal"] = err.Error()
			status = "degraded"
		}
	}
	if s.mqtt != nil {
		checks["mqtt"] = "ok"
		if !s.mqtt.IsConnected() {
			checks["mqtt"] = "disconnected"
			status = "degraded"
		}
	}

	body := map[string]any{
		"status":  status,
		"version": s.version,
	}
	if len(checks) > 0 {
		body["checks"] = checks
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	devices := s.registry.Summary()
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

func (s *Server) handleListSerialPorts(w http.ResponseWriter, _ *http.Request) {
	ports, err := hardware.ListSerialPorts()
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}
	if ports == nil {
		ports = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ports": ports})
}

// handleListJournal supports ?command=&device_id=&status=&since=RFC3339&limit=&offset=.
func (s *Server) handleListJournal(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeUnavailable(w, "command journal is disabled")
		return
	}

	q := r.URL.Query()
	filter := journal.Filter{
		Command:  q.Get("command"),
		DeviceID: q.Get("device_id"),
		Status:   q.Get("status"),
	}

	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeBadRequest(w, "since must be an RFC 3339 timestamp")
			return
		}
		filter.Since = since
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeBadRequest(w, name+" must be a non-negative integer")
			return
		}
		*dst = n
	}

	result, err := s.journal.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing journal failed", "error", err)
		writeInternalError(w, "failed to read journal")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// testPageText is printed by the printer test route.
const testPageText = "POS Bridge test page"

func (s *Server) handlePrinterTest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	printer, ok := s.registry.GetPrinter(id)
	if !ok {
		writeNotFound(w, "Device not found")
		return
	}

	// Text and cut go out as one job so a spooler cannot drop the cut.
	text := testPageText + " " + time.Now().Format(time.RFC3339)
	if err := printer.PrintRaw(r.Context(), hardware.BuildPrintJob(&text, true)); err != nil {
		writeDeviceError(w, err.Error())
		return
	}

	s.logger.Info("printed test page", "device_id", id)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "device_id": id})
}

func (s *Server) handleDisplayClear(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	display, ok := s.registry.GetDisplay(id)
	if !ok {
		writeNotFound(w, "Device not found")
		return
	}

	if err := display.Clear(r.Context()); err != nil {
		writeDeviceError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "device_id": id})
}
