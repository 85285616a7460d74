// Package httpapi exposes the fleet ledger and reports as a JSON API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/italsem/fleetd/internal/fleet/analytics"
	"github.com/italsem/fleetd/internal/fleet/service"
	"github.com/italsem/fleetd/internal/fleet/store"
	"github.com/italsem/fleetd/internal/fleet/types"
	"github.com/italsem/fleetd/internal/metrics"
)

type Dependencies struct {
	Logger          *zap.Logger
	Addr            string
	RefuelService   *service.RefuelService
	VehicleService  *service.VehicleService
	DeadlineService *service.DeadlineService
	ReportService   *service.ReportService
	Metrics         *metrics.Metrics

	// Now is the clock handlers classify deadlines against.  Defaults to
	// time.Now; tests pin it.
	Now func() time.Time
}

type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	router     *mux.Router
	refuels    *service.RefuelService
	vehicles   *service.VehicleService
	deadlines  *service.DeadlineService
	reports    *service.ReportService
	now        func() time.Time
}

func NewServer(d Dependencies) *Server {
	now := d.Now
	if now == nil {
		now = time.Now
	}

	r := mux.NewRouter()
	s := &Server{
		logger:    d.Logger,
		router:    r,
		refuels:   d.RefuelService,
		vehicles:  d.VehicleService,
		deadlines: d.DeadlineService,
		reports:   d.ReportService,
		now:       now,
	}

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)

	v1.HandleFunc("/refuelings", s.handleListRefuelings).Methods(http.MethodGet)
	v1.HandleFunc("/refuelings", s.handleCreateRefueling).Methods(http.MethodPost)
	v1.HandleFunc("/refuelings/{id:[0-9]+}", s.handleUpdateRefueling).Methods(http.MethodPatch)
	v1.HandleFunc("/refuelings/{id:[0-9]+}", s.handleDeleteRefueling).Methods(http.MethodDelete)

	v1.HandleFunc("/vehicles", s.handleListVehicles).Methods(http.MethodGet)
	v1.HandleFunc("/vehicles", s.handleCreateVehicle).Methods(http.MethodPost)
	v1.HandleFunc("/vehicles/{id:[0-9]+}", s.handleVehicleDetail).Methods(http.MethodGet)
	v1.HandleFunc("/vehicles/{id:[0-9]+}/history", s.handleVehicleHistory).Methods(http.MethodGet)
	v1.HandleFunc("/vehicles/{id:[0-9]+}/status", s.handleVehicleStatus).Methods(http.MethodPatch)
	v1.HandleFunc("/vehicles/{id:[0-9]+}/deadlines", s.handleListDeadlines).Methods(http.MethodGet)
	v1.HandleFunc("/vehicles/{id:[0-9]+}/deadlines", s.handleApplyDeadlines).Methods(http.MethodPost)

	v1.HandleFunc("/deadlines/summary", s.handleDeadlineSummary).Methods(http.MethodGet)
	v1.HandleFunc("/alerts/deadlines", s.handleDeadlineAlerts).Methods(http.MethodGet)
	v1.HandleFunc("/export/refuelings.csv", s.handleExportCSV).Methods(http.MethodGet)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler()).Methods(http.MethodGet)
		v1.Use(instrumentMiddleware(d.Metrics))
	}

	handler := requestIDMiddleware(loggingMiddleware(d.Logger, r))

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ── Dashboard ────────────────────────────────────────────────────────────────

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_window", err.Error())
		return
	}

	rep, err := s.reports.Dashboard(r.Context(), window)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// ── Refuelings ───────────────────────────────────────────────────────────────

func (s *Server) handleListRefuelings(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_window", err.Error())
		return
	}
	f := store.EventFilter{From: window.From, To: window.To}
	if raw := r.URL.Query().Get("vehicleId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "bad_vehicle_id", "vehicleId must be a positive integer")
			return
		}
		f.VehicleID = id
	}

	rows, err := s.refuels.List(r.Context(), f)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"refuelings": rows})
}

func (s *Server) handleCreateRefueling(w http.ResponseWriter, r *http.Request) {
	var in types.RefuelInput
	if !decodeJSON(w, r, &in) {
		return
	}

	ev, err := s.refuels.Create(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (s *Server) handleUpdateRefueling(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	var in types.RefuelInput
	if !decodeJSON(w, r, &in) {
		return
	}

	ev, err := s.refuels.Update(r.Context(), id, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleDeleteRefueling(w http.ResponseWriter, r *http.Request) {
	if err := s.refuels.Delete(r.Context(), pathID(r)); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Vehicles ─────────────────────────────────────────────────────────────────

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("active") == "true"
	vehicles, err := s.vehicles.List(r.Context(), onlyActive)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if vehicles == nil {
		vehicles = []types.Vehicle{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicles": vehicles})
}

func (s *Server) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var in service.VehicleInput
	if !decodeJSON(w, r, &in) {
		return
	}

	v, err := s.vehicles.Create(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleVehicleDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.vehicles.Detail(r.Context(), pathID(r), s.now().UTC())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleVehicleHistory(w http.ResponseWriter, r *http.Request) {
	rows, err := s.refuels.History(r.Context(), pathID(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": rows})
}

func (s *Server) handleVehicleStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Active bool `json:"active"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}

	if err := s.vehicles.SetActive(r.Context(), pathID(r), in.Active); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"active": in.Active})
}

// ── Deadlines ────────────────────────────────────────────────────────────────

func (s *Server) handleListDeadlines(w http.ResponseWriter, r *http.Request) {
	infos, err := s.deadlines.ListForVehicle(r.Context(), pathID(r), s.now().UTC())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deadlines": infos})
}

func (s *Server) handleApplyDeadlines(w http.ResponseWriter, r *http.Request) {
	var in map[string]string
	if !decodeJSON(w, r, &in) {
		return
	}

	if err := s.deadlines.Apply(r.Context(), pathID(r), in); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeadlineSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.reports.DeadlineSummary(r.Context(), s.now().UTC())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleDeadlineAlerts(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 365 {
			writeError(w, http.StatusBadRequest, "bad_days", "days must be between 1 and 365")
			return
		}
		days = n
	}

	rows, err := s.reports.DeadlineAlerts(r.Context(), s.now().UTC(), days)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"windowDays": days, "alerts": rows})
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// parseWindow reads the optional from/to query parameters.  Either bound
// accepts a bare date or the minute-precision form; a date-only "to" means
// the whole day, so it is widened to 23:59.
func parseWindow(r *http.Request) (analytics.Window, error) {
	var w analytics.Window

	if raw := r.URL.Query().Get("from"); raw != "" {
		t, _, err := parseBound(raw)
		if err != nil {
			return w, err
		}
		w.From = &t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, dateOnly, err := parseBound(raw)
		if err != nil {
			return w, err
		}
		if dateOnly {
			t = t.Add(23*time.Hour + 59*time.Minute)
		}
		w.To = &t
	}
	if w.From != nil && w.To != nil && w.To.Before(*w.From) {
		return w, errors.New("to precedes from")
	}
	return w, nil
}

func parseBound(raw string) (t time.Time, dateOnly bool, err error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(types.DueDateLayout, raw); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(types.RefuelAtLayout, raw); err == nil {
		return t, false, nil
	}
	return time.Time{}, false, errors.New("bounds must be YYYY-MM-DD or YYYY-MM-DDTHH:MM")
}

func pathID(r *http.Request) int64 {
	// The route pattern guarantees digits.
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return false
	}
	return true
}

// writeServiceError maps the service and store sentinels onto HTTP statuses;
// anything unrecognized is a 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrVehicleNotFound):
		writeError(w, http.StatusNotFound, "vehicle_not_found", err.Error())
	case errors.Is(err, store.ErrEventNotFound):
		writeError(w, http.StatusNotFound, "event_not_found", err.Error())
	case errors.Is(err, store.ErrDuplicateCode):
		writeError(w, http.StatusConflict, "duplicate_code", err.Error())
	case errors.Is(err, service.ErrInvalidEvent),
		errors.Is(err, service.ErrInvalidVehicle),
		errors.Is(err, service.ErrDeadlineInvalid):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, service.ErrOdometerRegression):
		writeError(w, http.StatusUnprocessableEntity, "odometer_regression", err.Error())
	default:
		s.internalError(w, r, err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("handler error",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}
