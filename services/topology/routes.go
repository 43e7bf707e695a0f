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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all topology routes with the router.
//
// Description:
//
//	Registers all /v1/topology/* endpoints with the given Gin router
//	group. The router group should already have any required middleware
//	applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	GET  /v1/topology/tree - Enriched topology tree with filters
//	GET  /v1/topology/managers/:name - One queue manager with context
//	GET  /v1/topology/changes - Latest change report
//	GET  /v1/topology/gateways - Latest gateway analytics report
//	GET  /v1/topology/runs - Run history, newest first
//	POST /v1/topology/run - Trigger a pipeline run
//
// Health Endpoints:
//
//	GET  /v1/topology/health - Health check
//	GET  /v1/topology/ready - Readiness check
//
// Example:
//
//	svc := topology.NewService(cfg, pipe, ledger, logger)
//	handlers := topology.NewHandlers(svc)
//
//	v1 := router.Group("/v1")
//	topology.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	topo := rg.Group("/topology")
	{
		// Topology views
		topo.GET("/tree", handlers.HandleTree)
		topo.GET("/managers/:name", handlers.HandleManager)

		// Reports
		topo.GET("/changes", handlers.HandleChanges)
		topo.GET("/gateways", handlers.HandleGateways)

		// Run management
		topo.GET("/runs", handlers.HandleRuns)
		topo.POST("/run", handlers.HandleTriggerRun)

		// Health checks
		topo.GET("/health", handlers.HandleHealth)
		topo.GET("/ready", handlers.HandleReady)
	}
}
