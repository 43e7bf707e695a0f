// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package topology

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ServiceVersion is the topology service version.
const ServiceVersion = "0.1.0"

// Handlers holds the HTTP handlers for the topology service.
type Handlers struct {
	svc *Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// getOrCreateRequestID extracts the request ID from the X-Request-ID
// header or generates a new one. The ID is echoed on the response.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}

// HandleTree handles GET /v1/topology/tree.
//
// Description:
//
//	Returns the enriched topology tree from the latest pipeline run,
//	optionally narrowed to one organization, one department, or the
//	gateway managers.
//
// Query Parameters:
//
//	org: Organization name filter (case-insensitive)
//	department: Department name filter; requires org
//	gateways: "true", "1" or "all" keeps every gateway; any other
//	value keeps only gateways with that scope
//
// Response:
//
//	200 OK: TreeResponse
//	400 Bad Request: department given without org
//	404 Not Found: No topology snapshot yet
func (h *Handlers) HandleTree(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleTree")

	filter := TreeFilter{
		Organization: c.Query("org"),
		Department:   c.Query("department"),
	}
	if filter.Department != "" && filter.Organization == "" {
		logger.Warn("Department filter without org")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "department filter requires org",
			Code:  "MISSING_PARAMETER",
		})
		return
	}
	switch gw := c.Query("gateways"); gw {
	case "":
	case "true", "1", "all":
		filter.Gateways = true
	default:
		filter.Gateways = true
		filter.GatewayScope = gw
	}

	resp, err := h.svc.Tree(filter)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "TREE_FAILED"

		if errors.Is(err, ErrNoTopology) {
			statusCode = http.StatusNotFound
			errCode = "NO_TOPOLOGY"
		}

		logger.Error("Tree lookup failed", "error", err)
		c.JSON(statusCode, ErrorResponse{
			Error: err.Error(),
			Code:  errCode,
		})
		return
	}

	logger.Info("Tree served",
		"organizations", resp.Organizations,
		"managers", resp.Managers)

	c.JSON(http.StatusOK, resp)
}

// HandleManager handles GET /v1/topology/managers/:name.
//
// Description:
//
//	Returns one queue manager leaf together with its organizational
//	context. The name match is case-insensitive.
//
// Response:
//
//	200 OK: ManagerResponse
//	404 Not Found: Unknown manager or no topology snapshot yet
func (h *Handlers) HandleManager(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleManager")

	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "manager name is required",
			Code:  "MISSING_PARAMETER",
		})
		return
	}

	resp, err := h.svc.Manager(name)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "MANAGER_FAILED"

		if errors.Is(err, ErrManagerNotFound) {
			statusCode = http.StatusNotFound
			errCode = "MANAGER_NOT_FOUND"
		} else if errors.Is(err, ErrNoTopology) {
			statusCode = http.StatusNotFound
			errCode = "NO_TOPOLOGY"
		}

		logger.Warn("Manager lookup failed", "manager", name, "error", err)
		c.JSON(statusCode, ErrorResponse{
			Error: err.Error(),
			Code:  errCode,
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleChanges handles GET /v1/topology/changes.
//
// Description:
//
//	Returns the most recent change report, the structural diff between
//	the last two runs.
//
// Response:
//
//	200 OK: diff.ChangeSet
//	404 Not Found: No change report has been produced
func (h *Handlers) HandleChanges(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleChanges")

	resp, err := h.svc.Changes()
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "CHANGES_FAILED"

		if errors.Is(err, ErrNoChangeReport) {
			statusCode = http.StatusNotFound
			errCode = "NO_CHANGE_REPORT"
		}

		logger.Warn("Change report lookup failed", "error", err)
		c.JSON(statusCode, ErrorResponse{
			Error: err.Error(),
			Code:  errCode,
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleGateways handles GET /v1/topology/gateways.
//
// Description:
//
//	Returns the most recent gateway analytics report.
//
// Response:
//
//	200 OK: gateway.Report
//	404 Not Found: No gateway report has been produced
func (h *Handlers) HandleGateways(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleGateways")

	resp, err := h.svc.GatewayReport()
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "GATEWAYS_FAILED"

		if errors.Is(err, ErrNoGatewayReport) {
			statusCode = http.StatusNotFound
			errCode = "NO_GATEWAY_REPORT"
		}

		logger.Warn("Gateway report lookup failed", "error", err)
		c.JSON(statusCode, ErrorResponse{
			Error: err.Error(),
			Code:  errCode,
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleRuns handles GET /v1/topology/runs.
//
// Description:
//
//	Returns the run history, newest first.
//
// Query Parameters:
//
//	limit: Maximum number of records (default 20)
//
// Response:
//
//	200 OK: RunsResponse
//	503 Service Unavailable: No run ledger configured
func (h *Handlers) HandleRuns(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleRuns")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "limit must be a non-negative integer",
				Code:  "INVALID_REQUEST",
			})
			return
		}
		limit = n
	}

	resp, err := h.svc.Runs(c.Request.Context(), limit)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "RUNS_FAILED"

		if errors.Is(err, ErrNoLedger) {
			statusCode = http.StatusServiceUnavailable
			errCode = "LEDGER_NOT_CONFIGURED"
		}

		logger.Error("Run listing failed", "error", err)
		c.JSON(statusCode, ErrorResponse{
			Error: err.Error(),
			Code:  errCode,
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleTriggerRun handles POST /v1/topology/run.
//
// Description:
//
//	Executes one pipeline run synchronously and returns its record.
//	The record is returned for failed runs too; the Status and Errors
//	fields describe the outcome. Only one run is admitted at a time.
//
// Response:
//
//	200 OK: RunResponse
//	409 Conflict: A run is already in progress
func (h *Handlers) HandleTriggerRun(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleTriggerRun")

	logger.Info("Pipeline run requested")

	resp, err := h.svc.TriggerRun(c.Request.Context())
	if errors.Is(err, ErrRunInProgress) {
		logger.Warn("Run rejected, another is in progress")
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: err.Error(),
			Code:  "RUN_IN_PROGRESS",
		})
		return
	}
	if resp == nil {
		logger.Error("Run failed before producing a record", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "RUN_FAILED",
		})
		return
	}

	if err != nil {
		logger.Warn("Pipeline run failed",
			"run_id", resp.Record.ID,
			"status", resp.Record.Status,
			"error", err)
	} else {
		logger.Info("Pipeline run finished",
			"run_id", resp.Record.ID,
			"status", resp.Record.Status,
			"managers", resp.Record.Stats.Managers)
	}

	c.JSON(http.StatusOK, resp)
}

// HandleHealth handles GET /v1/topology/health.
//
// Description:
//
//	Returns the health status of the service. Always returns 200 if running.
//
// Response:
//
//	200 OK: HealthResponse
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: ServiceVersion,
	})
}

// HandleReady handles GET /v1/topology/ready.
//
// Description:
//
//	Returns the readiness status of the service. Returns 503 until the
//	first completed pipeline run has produced a topology snapshot.
//
// Response:
//
//	200 OK: ReadyResponse (Ready=true) - A snapshot exists
//	503 Service Unavailable: ReadyResponse (Ready=false) - No run yet
func (h *Handlers) HandleReady(c *gin.Context) {
	resp := h.svc.Ready(c.Request.Context())

	if !resp.Ready {
		c.Header("Retry-After", "30")
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}
