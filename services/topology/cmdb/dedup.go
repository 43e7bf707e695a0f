// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cmdb

// Deduplicate collapses assets exported more than once.
//
// Description:
//
//	Cluster-replicated queues surface in the export both as their real
//	definition and as a QCluster shadow row on other managers. When an
//	asset name appears in multiple records, rows whose AssetType equals
//	ignoreType are dropped in favor of the rest; if every duplicate
//	carries the ignored type, the first record is kept so the asset
//	never disappears entirely.
//
// Inputs:
//
//	records - Parsed records. Not mutated.
//	ignoreType - Asset type to drop on conflict, compared exactly.
//
// Outputs:
//
//	[]Record - Surviving records. Groups appear in first-seen asset
//	order; within a group, original order is preserved.
func Deduplicate(records []Record, ignoreType string) []Record {
	if len(records) == 0 {
		return records
	}

	groups := make(map[string][]Record)
	order := make([]string, 0, len(records))
	for _, r := range records {
		if _, seen := groups[r.Asset]; !seen {
			order = append(order, r.Asset)
		}
		groups[r.Asset] = append(groups[r.Asset], r)
	}

	result := make([]Record, 0, len(records))
	for _, asset := range order {
		group := groups[asset]
		if len(group) == 1 {
			result = append(result, group[0])
			continue
		}
		survived := false
		for _, r := range group {
			if r.AssetType != ignoreType {
				result = append(result, r)
				survived = true
			}
		}
		if !survived {
			// Every duplicate carried the ignored type: keep the first.
			result = append(result, group[0])
		}
	}
	return result
}
