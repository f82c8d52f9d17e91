package webapi

//go:generate go tool mockgen -source=handlers.go -destination=mock_simulator_test.go -package=webapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/spboyer/hetsird/internal/integrator"
	"github.com/spboyer/hetsird/internal/models"
	"github.com/spboyer/hetsird/internal/rates"
	"github.com/spboyer/hetsird/internal/simulation"
)

// Version is set at build time or defaults to dev.
var Version = "0.1.0-dev"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Simulator runs a scenario.
type Simulator interface {
	Simulate(ctx context.Context, sc *models.Scenario) (*simulation.Result, error)
}

// ScenarioSimulator is the production Simulator backed by simulation.Run.
type ScenarioSimulator struct {
	Defaults simulation.Defaults
}

func (s ScenarioSimulator) Simulate(ctx context.Context, sc *models.Scenario) (*simulation.Result, error) {
	return simulation.Run(ctx, sc, s.Defaults)
}

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	sim   Simulator
	store RunStore
}

// NewHandlers creates a new Handlers with the given simulator and store.
func NewHandlers(sim Simulator, store RunStore) *Handlers {
	return &Handlers{sim: sim, store: store}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// HandleMethods lists the integration methods.
func (h *Handlers) HandleMethods(w http.ResponseWriter, _ *http.Request) {
	resp := MethodsResponse{Default: string(integrator.DefaultMethod)}
	for _, m := range integrator.Methods() {
		resp.Methods = append(resp.Methods, string(m))
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleRates computes effective rates for a base rate set and subgroups.
func (h *Handlers) HandleRates(w http.ResponseWriter, r *http.Request) {
	var req RatesRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sc := models.Scenario{Rates: req.Rates, Subgroups: req.Subgroups}
	subgroups := sc.SubgroupList()
	ref := rates.ReferenceShare(subgroups)

	eff, err := rates.Compute(req.Rates, ref, subgroups)
	if err != nil {
		writeSimulationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RatesResponse{ReferenceShare: ref, Rates: eff})
}

// HandleSimulate runs the scenario in the request body. The trajectory is
// omitted from the response when the query has trajectory=false.
func (h *Handlers) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sc, err := models.DecodeScenarioJSON(body)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	res, err := h.sim.Simulate(r.Context(), sc)
	if err != nil {
		writeSimulationError(w, err)
		return
	}

	detail := &RunDetail{
		RunSummary: RunSummary{
			Scenario:       sc.Name,
			Method:         res.Trajectory.Info().Method,
			PeakInfectious: res.Summary.PeakInfectious,
			PeakTime:       res.Summary.PeakTime,
			AttackRate:     res.Summary.AttackRate,
			TotalDeaths:    res.Summary.TotalDeaths,
			Duration:       res.Duration.Seconds(),
		},
		Rates:      res.Rates,
		R0:         res.R0,
		Summary:    res.Summary,
		Trajectory: res.Trajectory,
	}
	h.store.Add(detail)

	if include, err := strconv.ParseBool(r.URL.Query().Get("trajectory")); err == nil && !include {
		trimmed := *detail
		trimmed.Trajectory = nil
		writeJSON(w, http.StatusOK, trimmed)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// HandleRuns returns a list of recent runs, with optional sort/order query params.
func (h *Handlers) HandleRuns(w http.ResponseWriter, r *http.Request) {
	sortField := r.URL.Query().Get("sort")
	order := r.URL.Query().Get("order")
	writeJSON(w, http.StatusOK, h.store.ListRuns(sortField, order))
}

// HandleRunDetail returns full run detail including the trajectory.
func (h *Handlers) HandleRunDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		// Fallback: extract from URL path for compatibility.
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/runs/"), "/")
		if len(parts) > 0 {
			id = parts[0]
		}
	}
	if id == "" {
		writeError(w, http.StatusBadRequest, "run id is required")
		return
	}

	detail, err := h.store.GetRun(id)
	if err != nil {
		if errors.Is(err, ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, sim Simulator, store RunStore) {
	h := NewHandlers(sim, store)
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("GET /api/methods", h.HandleMethods)
	mux.HandleFunc("POST /api/rates", h.HandleRates)
	mux.HandleFunc("POST /api/simulate", h.HandleSimulate)
	mux.HandleFunc("GET /api/runs", h.HandleRuns)
	mux.HandleFunc("GET /api/runs/{id}", h.HandleRunDetail)
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if len(allowedOrigins) > 0 && origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeSimulationError maps configuration errors to 400 and numerical
// instability to 422.
func writeSimulationError(w http.ResponseWriter, err error) {
	var cfgErr *models.ConfigurationError
	var numErr *models.NumericalInstabilityError
	switch {
	case errors.As(err, &cfgErr):
		writeBadRequest(w, err)
	case errors.As(err, &numErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeBadRequest reports a malformed or invalid request body.
func writeBadRequest(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error(), Code: http.StatusBadRequest}
	var cfgErr *models.ConfigurationError
	if errors.As(err, &cfgErr) {
		resp.Field = cfgErr.Field
	}
	writeJSON(w, http.StatusBadRequest, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
