// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Integration test for the topology HTTP API
//
// Stands up the full serve stack (gin router, service, pipeline, run
// ledger) over a real listener and exercises every endpoint, with the
// pipeline runs triggered through the API itself.

package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/mqtopo/services/topology"
	"github.com/AleutianAI/mqtopo/services/topology/diff"
	"github.com/AleutianAI/mqtopo/services/topology/gateway"
	"github.com/AleutianAI/mqtopo/services/topology/pipeline"
	"github.com/AleutianAI/mqtopo/services/topology/storage/badger"
	"github.com/AleutianAI/mqtopo/services/topology/storage/runs"
)

func TestServiceAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Log("Standing up the serve stack...")
	root := t.TempDir()
	cfg := fixtureConfig(root)
	writeReferenceTables(t, cfg)
	writeJSON(t, cfg.Input.CMDBExport, firstExport())

	bcfg := badger.DefaultConfig()
	bcfg.Path = cfg.Storage.Dir
	db, err := badger.OpenDB(bcfg)
	require.NoError(t, err)
	defer db.Close()

	ledger, err := runs.NewLedger(db, quietLogger())
	require.NoError(t, err)

	pipe := pipeline.New(cfg, quietLogger(), pipeline.WithLedger(ledger))
	svc := topology.NewService(cfg, pipe, ledger, quietLogger())

	router := gin.New()
	topology.RegisterRoutes(router.Group("/v1"), topology.NewHandlers(svc))

	srv := httptest.NewServer(router)
	defer srv.Close()
	base := srv.URL + "/v1/topology"

	t.Run("Ready_Degrades_Before_The_First_Run", func(t *testing.T) {
		resp := get(t, base+"/ready")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "30", resp.Header.Get("Retry-After"))

		var ready topology.ReadyResponse
		decode(t, resp, &ready)
		assert.False(t, ready.Ready)
		assert.False(t, ready.TopologyAvailable)
	})

	t.Run("Changes_Missing_Before_Any_Run", func(t *testing.T) {
		resp := get(t, base+"/changes")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var apiErr topology.ErrorResponse
		decode(t, resp, &apiErr)
		assert.Equal(t, "NO_CHANGE_REPORT", apiErr.Code)
	})

	t.Log("Triggering the first run through the API...")
	t.Run("Run_Trigger_Builds_The_Topology", func(t *testing.T) {
		resp := post(t, base+"/run")
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var run topology.RunResponse
		decode(t, resp, &run)
		assert.Equal(t, runs.StatusSucceeded, run.Record.Status,
			"run errors: %v", run.Record.Errors)
		assert.Equal(t, 4, run.Record.Stats.Managers)
		assert.Equal(t, 1, run.Record.Stats.Gateways)
		assert.NotEmpty(t, run.Record.Artifacts)
	})

	t.Run("Ready_Recovers_After_The_Run", func(t *testing.T) {
		resp := get(t, base+"/ready")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var ready topology.ReadyResponse
		decode(t, resp, &ready)
		assert.True(t, ready.Ready)
		assert.True(t, ready.TopologyAvailable)
		assert.Equal(t, runs.StatusSucceeded, ready.LastRunStatus)
	})

	t.Run("Tree_Serves_The_Enriched_Topology", func(t *testing.T) {
		resp := get(t, base+"/tree")
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var tree topology.TreeResponse
		decode(t, resp, &tree)
		assert.Equal(t, 3, tree.Organizations)
		assert.Equal(t, 4, tree.Managers)
		assert.Contains(t, tree.Tree, "Payments")
		assert.Contains(t, tree.Tree, "Shared Infrastructure")
	})

	t.Run("Tree_Filters_Down_To_Gateways", func(t *testing.T) {
		resp := get(t, base+"/tree?gateways=true")
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var gws topology.TreeResponse
		decode(t, resp, &gws)
		assert.Equal(t, 1, gws.Managers)

		scoped := get(t, base+"/tree?gateways=External")
		defer scoped.Body.Close()
		require.Equal(t, http.StatusOK, scoped.StatusCode)

		var none topology.TreeResponse
		decode(t, scoped, &none)
		assert.Zero(t, none.Managers)

		bad := get(t, base+"/tree?department=Clearing%20Operations")
		defer bad.Body.Close()
		assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
	})

	t.Run("Manager_Lookup_Is_Case_Insensitive", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, base+"/managers/qm_gw1", nil)
		require.NoError(t, err)
		req.Header.Set("X-Request-ID", "itest-7f3a")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "itest-7f3a", resp.Header.Get("X-Request-ID"))

		var mgr topology.ManagerResponse
		decode(t, resp, &mgr)
		assert.Equal(t, "QM_GW1", mgr.Name)
		assert.Equal(t, "Shared Infrastructure", mgr.Context.Organization)
		require.NotNil(t, mgr.Manager)
		assert.True(t, mgr.Manager.IsGateway)
	})

	t.Run("Unknown_Manager_Is_A_404", func(t *testing.T) {
		resp := get(t, base+"/managers/QM_NOWHERE")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var apiErr topology.ErrorResponse
		decode(t, resp, &apiErr)
		assert.Equal(t, "MANAGER_NOT_FOUND", apiErr.Code)
	})

	t.Run("Gateway_Report_Served", func(t *testing.T) {
		resp := get(t, base+"/gateways")
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var report gateway.Report
		decode(t, resp, &report)
		assert.Equal(t, 1, report.Summary.TotalGateways)
		assert.Contains(t, report.Traffic, "QM_GW1")
	})

	t.Log("Triggering a second run to produce a change report...")
	t.Run("Second_Run_Surfaces_A_Change_Report", func(t *testing.T) {
		resp := post(t, base+"/run")
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		changes := get(t, base+"/changes")
		defer changes.Body.Close()
		require.Equal(t, http.StatusOK, changes.StatusCode)

		// The export did not move between the runs, so the report
		// exists but is empty.
		var report diff.ChangeSet
		decode(t, changes, &report)
		assert.Zero(t, report.Summary.TotalChanges)
	})

	t.Run("Runs_Listed_Newest_First", func(t *testing.T) {
		resp := get(t, base+"/runs")
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var history topology.RunsResponse
		decode(t, resp, &history)
		require.Equal(t, 2, history.Count)
		assert.False(t, history.Runs[0].Started.Before(history.Runs[1].Started))

		limited := get(t, base+"/runs?limit=1")
		defer limited.Body.Close()
		require.Equal(t, http.StatusOK, limited.StatusCode)

		var one topology.RunsResponse
		decode(t, limited, &one)
		assert.Equal(t, 1, one.Count)

		bad := get(t, base+"/runs?limit=-1")
		defer bad.Body.Close()
		assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
	})

	t.Run("Health_Always_Responds", func(t *testing.T) {
		resp := get(t, base+"/health")
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var health topology.HealthResponse
		decode(t, resp, &health)
		assert.Equal(t, "healthy", health.Status)
		assert.Equal(t, topology.ServiceVersion, health.Version)
	})
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	return resp
}

func post(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", nil)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
