// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cmdb models CMDB asset export records.
//
// A CMDB export is a JSON array of flat objects, one per MQ asset
// (queue, channel, listener). Column names vary between CMDB instances,
// so a FieldMap translates the logical fields the pipeline needs into
// the export's actual keys. Exports are hand-curated upstream and
// contain noise: numeric values in text columns, missing fields, rows
// without a manager name. Parsing tolerates all of it; only a payload
// that is not a non-empty JSON array is a hard error.
package cmdb

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record is one CMDB asset row reduced to the fields the pipeline uses.
type Record struct {
	// Manager is the MQ queue manager owning the asset.
	Manager string

	// Asset is the asset name, typically manager-prefixed
	// (e.g. "QM_A.QM_B.ORDERS.QUEUE").
	Asset string

	// AssetType describes the asset (e.g. "Queue Local", "Queue Remote").
	AssetType string

	// Directorate is the owning directorate; empty means unassigned.
	Directorate string

	// Role marks channel direction (SENDER/RECEIVER) when present.
	Role string
}

// FieldMap maps the logical record fields to the export's JSON keys.
type FieldMap struct {
	Manager     string
	Asset       string
	AssetType   string
	Directorate string
	Role        string
}

// DefaultFieldMap returns the field names used by the standard export.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		Manager:     "MQmanager",
		Asset:       "asset",
		AssetType:   "asset_type",
		Directorate: "directorate",
		Role:        "Role",
	}
}

// Decode parses a CMDB export payload into raw record maps.
//
// Description:
//
//	Validates the payload shape before any field mapping happens. A
//	payload that is not a JSON array fails with ErrNotArray; an empty
//	array fails with ErrNoRecords. Array elements that are not objects
//	are dropped, matching the tolerance of the rest of the parser.
//
// Inputs:
//
//	data - Raw export bytes.
//
// Outputs:
//
//	[]map[string]any - One map per object element, in input order.
//	error - ErrNotArray, ErrNoRecords, or a wrapped JSON error.
func Decode(data []byte) ([]map[string]any, error) {
	var elements []any
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotArray, err)
	}
	if len(elements) == 0 {
		return nil, ErrNoRecords
	}

	raw := make([]map[string]any, 0, len(elements))
	for _, el := range elements {
		if m, ok := el.(map[string]any); ok {
			raw = append(raw, m)
		}
	}
	if len(raw) == 0 {
		return nil, ErrNoRecords
	}
	return raw, nil
}

// ParseRecords extracts Records from raw export maps using the field map.
//
// Description:
//
//	Each mapped field is rendered to a trimmed string; non-string values
//	(numbers, booleans) are formatted rather than rejected to tolerate
//	export noise. Rows with a missing or empty manager name cannot be
//	attributed to a node and are skipped.
//
// Inputs:
//
//	raw - Decoded export maps.
//	fm  - Field mapping for this export.
//
// Outputs:
//
//	[]Record - Parsed records in input order.
//	int - Count of rows skipped for a missing manager name.
func ParseRecords(raw []map[string]any, fm FieldMap) ([]Record, int) {
	records := make([]Record, 0, len(raw))
	skipped := 0

	for _, row := range raw {
		manager := normalizeValue(row[fm.Manager])
		if manager == "" {
			skipped++
			continue
		}
		records = append(records, Record{
			Manager:     manager,
			Asset:       normalizeValue(row[fm.Asset]),
			AssetType:   normalizeValue(row[fm.AssetType]),
			Directorate: normalizeValue(row[fm.Directorate]),
			Role:        normalizeValue(row[fm.Role]),
		})
	}
	return records, skipped
}

// normalizeValue renders an export value as a trimmed string.
func normalizeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}
