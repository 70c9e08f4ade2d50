package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/olistclean/internal/core"
)

// HealthResponse is returned by GET /healthz.
type HealthResponse struct {
	Status string                `json:"status"`
	Tables int                   `json:"tables"`
	Runs   core.RunLimiterStatus `json:"runs"`
}

// PhaseTables groups the table catalog by phase.
type PhaseTables struct {
	Phase  core.Phase       `json:"phase"`
	Name   string           `json:"name"`
	Tables []core.TableInfo `json:"tables"`
}

// RunAccepted is returned when a run is started.
type RunAccepted struct {
	RunID     string `json:"runId"`
	StatusURL string `json:"statusUrl"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, HealthResponse{
		Status: "ok",
		Tables: len(s.service.ListTables()),
		Runs:   s.service.LimiterStatus(),
	})
}

// handleListTables lists every table definition grouped by phase, in
// execution order.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	byPhase := s.service.ListTablesByPhase()

	out := make([]PhaseTables, 0, len(core.Phases))
	for _, phase := range core.Phases {
		tables := byPhase[phase]
		if len(tables) == 0 {
			continue
		}
		out = append(out, PhaseTables{Phase: phase, Name: phase.String(), Tables: tables})
	}
	writeJSON(w, r, http.StatusOK, out)
}

// handleStartRun starts a background run. 409 while another run is active.
func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	runID, err := s.service.StartRun(r.Context())
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	statusURL := "/api/runs/" + runID
	w.Header().Set("Location", statusURL)
	writeJSON(w, r, http.StatusAccepted, RunAccepted{RunID: runID, StatusURL: statusURL})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.Reports())
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.LatestReport()
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.Report(chi.URLParam(r, "runID"))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}
