// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/draftrange/internal/domain/model"
	"github.com/okian/draftrange/internal/domain/types"
)

// ProjectionDependencies defines the interface for projection operations.
type ProjectionDependencies interface {
	Project(ctx context.Context, p *model.PlayerProfile) (types.FloorCeilingResult, error)
	ProjectBatch(ctx context.Context, profiles []model.PlayerProfile) (types.BatchResult, error)
}

// ProjectionHandler handles projection requests.
type ProjectionHandler struct {
	deps         ProjectionDependencies
	maxBodyBytes int64
}

// NewProjectionHandler creates a new projection handler.
func NewProjectionHandler(deps ProjectionDependencies, maxBodyBytes int64) *ProjectionHandler {
	return &ProjectionHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandlePostProjection handles POST /projections with one profile as body.
func (h *ProjectionHandler) HandlePostProjection(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_projection"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var p model.PlayerProfile
	if err := decodeBody(w, r, h.maxBodyBytes, &p); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.Project(r.Context(), &p)
	if err != nil {
		writeUpstreamError(w, wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandlePostBatch handles POST /projections/batch. Items that fail carry
// their error and do not fail the request.
func (h *ProjectionHandler) HandlePostBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_projection_batch"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req batchRequest
	if err := decodeBody(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	out, err := h.deps.ProjectBatch(r.Context(), req.Prospects)
	if err != nil {
		writeUpstreamError(w, wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
