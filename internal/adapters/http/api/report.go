// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/draftrange/internal/domain/types"
)

// ReportDependencies defines the interface for corpus diagnostics.
type ReportDependencies interface {
	PopulationReport(ctx context.Context) (types.PopulationReport, error)
}

// ReportHandler handles archetype report requests.
type ReportHandler struct {
	deps ReportDependencies
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps ReportDependencies) *ReportHandler {
	return &ReportHandler{deps: deps}
}

// reportResponse adds the flagged buckets to the population report.
type reportResponse struct {
	types.PopulationReport
	Flagged []types.PopulationBucket `json:"flagged"`
}

// HandleGetReport handles GET /archetypes/report requests.
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rep, err := h.deps.PopulationReport(r.Context())
	if err != nil {
		writeUpstreamError(w, wrap("api.get_archetype_report", err))
		return
	}
	flagged := rep.Flagged()
	if flagged == nil {
		flagged = []types.PopulationBucket{}
	}
	writeJSON(w, http.StatusOK, reportResponse{PopulationReport: rep, Flagged: flagged})
}
