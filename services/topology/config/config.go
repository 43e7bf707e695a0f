// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config provides configuration loading for the topology service.
//
// Configuration is a single YAML document covering the pipeline inputs,
// CMDB field mapping, change detection, artifact output, run history
// storage, the HTTP server, telemetry, logging, and optional GCS upload.
// Default() fills every field, so a missing or partial file always
// yields a runnable config.
//
// Thread Safety:
//
//	Config values are plain data. Load returns a fresh value per call;
//	callers share it read-only after startup.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// configValidate is the validator instance for config structs.
var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
}

// =============================================================================
// Config Sections
// =============================================================================

// Config is the root configuration for all mqtopo commands.
type Config struct {
	Input     InputConfig     `yaml:"input"`
	FieldMap  FieldMapConfig  `yaml:"field_map"`
	Dedup     DedupConfig     `yaml:"dedup"`
	Diff      DiffConfig      `yaml:"diff"`
	Output    OutputConfig    `yaml:"output"`
	Retention RetentionConfig `yaml:"retention"`
	Storage   StorageConfig   `yaml:"storage"`
	Server    ServerConfig    `yaml:"server"`
	Watch     WatchConfig     `yaml:"watch"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
	Upload    UploadConfig    `yaml:"upload"`
}

// InputConfig names the CMDB export and the reference table files.
//
// Only the CMDB export is required to exist at run time. Every reference
// table degrades to an empty table with a warning when its file is
// missing, so a fresh deployment can run with just the export.
type InputConfig struct {
	// CMDBExport is the CMDB asset dump (JSON array of records).
	CMDBExport string `yaml:"cmdb_export" validate:"required"`

	// Aliases maps canonical manager names to their alternate names.
	Aliases string `yaml:"aliases"`

	// AppMapping maps queue manager names to owning applications. Its
	// application names double as the internal application catalog.
	AppMapping string `yaml:"app_mapping"`

	// ExternalApps lists partner applications outside the organization.
	ExternalApps string `yaml:"external_apps"`

	// OrgHierarchy maps business owners to organization and department.
	OrgHierarchy string `yaml:"org_hierarchy"`

	// Gateways lists gateway queue managers with their scope.
	Gateways string `yaml:"gateways"`
}

// FieldMapConfig maps logical record fields to the export's JSON keys.
// CMDB exports differ between instances; remapping here avoids touching
// the parser.
type FieldMapConfig struct {
	Manager     string `yaml:"manager" validate:"required"`
	Asset       string `yaml:"asset" validate:"required"`
	AssetType   string `yaml:"asset_type" validate:"required"`
	Directorate string `yaml:"directorate" validate:"required"`
	Role        string `yaml:"role" validate:"required"`
}

// DedupConfig controls duplicate-asset collapsing before processing.
type DedupConfig struct {
	// IgnoreType is the asset type dropped when an asset appears more
	// than once. Cluster-replicated rows shadow the real definition.
	IgnoreType string `yaml:"ignore_type"`
}

// DiffConfig controls structural change detection.
type DiffConfig struct {
	Enabled bool `yaml:"enabled"`

	// ThresholdPercent is the minimum queue-count change reported.
	ThresholdPercent float64 `yaml:"threshold_percent" validate:"gte=0"`
}

// OutputConfig controls artifact placement.
type OutputConfig struct {
	// Dir receives all run artifacts.
	Dir string `yaml:"dir" validate:"required"`

	// BaselineFile is the baseline snapshot name within Dir.
	BaselineFile string `yaml:"baseline_file" validate:"required"`
}

// RetentionConfig controls the timestamped-artifact sweep.
type RetentionConfig struct {
	Enabled bool `yaml:"enabled"`

	// Days is the age past which timestamped artifacts are deleted.
	Days int `yaml:"days" validate:"gte=0"`
}

// StorageConfig locates the embedded run-history database.
type StorageConfig struct {
	// Dir is the BadgerDB directory for the run ledger. Empty disables
	// run history; runs still execute but leave no records behind.
	Dir string `yaml:"dir"`
}

// ServerConfig controls the serve command.
type ServerConfig struct {
	Port int    `yaml:"port" validate:"gte=1,lte=65535"`
	Mode string `yaml:"mode" validate:"oneof=debug release test"`
}

// WatchConfig controls re-running the pipeline on CMDB export changes.
type WatchConfig struct {
	Enabled bool `yaml:"enabled"`

	// DebounceSeconds collapses bursts of file events into one run.
	DebounceSeconds int `yaml:"debounce_seconds" validate:"gte=1"`
}

// TelemetryConfig selects trace and metric exporters.
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" validate:"required"`
	Environment    string `yaml:"environment"`
	TraceExporter  string `yaml:"trace_exporter" validate:"oneof=otlp stdout none"`
	MetricExporter string `yaml:"metric_exporter" validate:"oneof=prometheus stdout none"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	OTLPInsecure   bool   `yaml:"otlp_insecure"`
}

// LoggingConfig controls the pkg/logging wrapper.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`

	// Dir enables file logging when set. Supports ~ expansion.
	Dir string `yaml:"dir"`

	// JSON forces JSON output on stderr (file output is always JSON).
	JSON bool `yaml:"json"`
}

// UploadConfig controls GCS artifact upload. Empty bucket disables it.
type UploadConfig struct {
	Bucket          string `yaml:"bucket"`
	Project         string `yaml:"project"`
	CredentialsFile string `yaml:"credentials_file"`
	Prefix          string `yaml:"prefix"`
}

// =============================================================================
// Defaults
// =============================================================================

// Default returns a fully populated configuration.
//
// Paths are relative to the working directory so a checkout with an
// input/ directory runs without any config file at all.
func Default() Config {
	return Config{
		Input: InputConfig{
			CMDBExport:   "input/all_MQCMDB_assets.json",
			Aliases:      "input/mqmanager_aliases.json",
			AppMapping:   "input/app_to_qmgr.json",
			ExternalApps: "input/external_apps.json",
			OrgHierarchy: "input/org_hierarchy.json",
			Gateways:     "input/gateways.json",
		},
		FieldMap: FieldMapConfig{
			Manager:     "MQmanager",
			Asset:       "asset",
			AssetType:   "asset_type",
			Directorate: "directorate",
			Role:        "Role",
		},
		Dedup: DedupConfig{
			IgnoreType: "QCluster",
		},
		Diff: DiffConfig{
			Enabled:          true,
			ThresholdPercent: 20,
		},
		Output: OutputConfig{
			Dir:          "output",
			BaselineFile: "mq_cmdb_baseline.json",
		},
		Retention: RetentionConfig{
			Enabled: true,
			Days:    30,
		},
		Storage: StorageConfig{
			Dir: "data/runs",
		},
		Server: ServerConfig{
			Port: 8930,
			Mode: "release",
		},
		Watch: WatchConfig{
			Enabled:         false,
			DebounceSeconds: 5,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "mqtopo",
			Environment:    "production",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			OTLPEndpoint:   "localhost:4317",
			OTLPInsecure:   true,
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "",
			JSON:  false,
		},
		Upload: UploadConfig{
			Bucket:          "",
			Project:         "",
			CredentialsFile: "",
			Prefix:          "mqtopo",
		},
	}
}

// Validate checks the configuration against its struct tags.
//
// Example:
//
//	if err := cfg.Validate(); err != nil {
//	    return fmt.Errorf("invalid config: %w", err)
//	}
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}

// UploadEnabled reports whether a GCS upload target is configured.
func (c *Config) UploadEnabled() bool {
	return c.Upload.Bucket != ""
}
