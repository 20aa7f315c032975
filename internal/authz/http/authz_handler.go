// Package http provides HTTP handlers for authorization operations: deciding
// requests against the active policy snapshot, introspecting the loaded
// capabilities and policies, and triggering a snapshot reload.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/capgate/capgate/internal/authz/http/dto"
	"github.com/capgate/capgate/internal/authz/usecase"
	apperrors "github.com/capgate/capgate/internal/errors"
	"github.com/capgate/capgate/internal/httputil"
	customValidation "github.com/capgate/capgate/internal/validation"
)

// errReloadUnavailable is returned when the server runs without file-backed
// configuration and has nothing to reload from.
var errReloadUnavailable = apperrors.Wrap(apperrors.ErrInvalidInput, "no policy files configured")

// SnapshotReloader re-reads the configured capability and policy files and
// atomically publishes the result as the active snapshot.
type SnapshotReloader interface {
	Reload(ctx context.Context) error
}

// AuthzHandler handles HTTP requests for authorization decisions and
// snapshot introspection.
type AuthzHandler struct {
	gate      usecase.CapabilityGate
	snapshots usecase.SnapshotSource
	reloader  SnapshotReloader
	logger    *slog.Logger
}

// NewAuthzHandler creates a new authorization handler with required dependencies.
// The reloader may be nil for deployments without file-backed configuration.
func NewAuthzHandler(
	gate usecase.CapabilityGate,
	snapshots usecase.SnapshotSource,
	reloader SnapshotReloader,
	logger *slog.Logger,
) *AuthzHandler {
	return &AuthzHandler{
		gate:      gate,
		snapshots: snapshots,
		reloader:  reloader,
		logger:    logger,
	}
}

// AuthorizeHandler decides an authorization request against the active snapshot.
// POST /v1/authorize
// Returns 200 OK with the decision; denials are still 200 since the decision
// itself is the resource, not an access failure of this API.
func (h *AuthzHandler) AuthorizeHandler(c *gin.Context) {
	var req dto.AuthorizeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationError(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	decision := h.gate.Authorize(
		c.Request.Context(),
		req.Capability,
		req.Principal,
		req.Action,
		req.RequestContext(),
	)

	c.JSON(http.StatusOK, dto.MapDecisionToResponse(decision))
}

// ListCapabilitiesHandler returns the capabilities of the active snapshot.
// GET /v1/capabilities?offset=N&limit=M
func (h *AuthzHandler) ListCapabilitiesHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	registry, _ := h.snapshots.Current()
	capabilities := paginate(registry.List(), offset, limit)

	c.JSON(http.StatusOK, dto.MapCapabilitiesToListResponse(capabilities))
}

// ListPoliciesHandler returns the policies of the active snapshot.
// GET /v1/policies?offset=N&limit=M
func (h *AuthzHandler) ListPoliciesHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequest(c, err, h.logger)
		return
	}

	_, policies := h.snapshots.Current()

	c.JSON(http.StatusOK, dto.MapPoliciesToListResponse(paginate(policies, offset, limit)))
}

// paginate returns the window [offset, offset+limit) of items, clamped to bounds.
func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}

	end := offset + limit
	if end > len(items) {
		end = len(items)
	}

	return items[offset:end]
}

// ReloadHandler re-reads the capability and policy files and swaps the active
// snapshot. POST /v1/reload
// Returns 204 No Content on success. A failed reload leaves the previous
// snapshot active and reports the load error.
func (h *AuthzHandler) ReloadHandler(c *gin.Context) {
	if h.reloader == nil {
		httputil.HandleError(c, errReloadUnavailable, h.logger)
		return
	}

	if err := h.reloader.Reload(c.Request.Context()); err != nil {
		httputil.HandleError(c, err, h.logger)
		return
	}

	h.logger.Info("snapshot reloaded")
	c.Status(http.StatusNoContent)
}
