// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package registry

import "strings"

// GatewayRow is one row of the gateway catalog. Older exports use
// "QmgrName" for the manager column, newer ones "name"; both are
// accepted, with "QmgrName" winning when a row carries both.
type GatewayRow struct {
	QmgrName    string `json:"QmgrName"`
	Name        string `json:"name"`
	Scope       string `json:"Scope"`
	Description string `json:"Description"`
}

// GatewayInfo describes a gateway queue manager.
type GatewayInfo struct {
	// Scope is the gateway's reach: "Internal" bridges departments,
	// "External" bridges partner organizations.
	Scope string

	// Description is free text from the catalog, possibly empty.
	Description string
}

// GatewayCatalog identifies gateway queue managers.
//
// Thread Safety: Safe for concurrent use after construction.
type GatewayCatalog struct {
	gateways map[string]GatewayInfo
}

// NewGatewayCatalog builds the catalog from rows.
//
// Rows without a manager name are skipped; a missing scope defaults to
// "Internal". Duplicate manager names keep the last row.
func NewGatewayCatalog(rows []GatewayRow) *GatewayCatalog {
	c := &GatewayCatalog{gateways: make(map[string]GatewayInfo, len(rows))}
	for _, row := range rows {
		name := strings.TrimSpace(row.QmgrName)
		if name == "" {
			name = strings.TrimSpace(row.Name)
		}
		if name == "" {
			continue
		}
		c.gateways[strings.ToUpper(name)] = GatewayInfo{
			Scope:       defaultIfEmpty(row.Scope, "Internal"),
			Description: strings.TrimSpace(row.Description),
		}
	}
	return c
}

// GatewayFor returns gateway details when mgr is a gateway.
func (c *GatewayCatalog) GatewayFor(mgr string) (GatewayInfo, bool) {
	info, ok := c.gateways[strings.ToUpper(strings.TrimSpace(mgr))]
	return info, ok
}

// Len returns the number of cataloged gateways.
func (c *GatewayCatalog) Len() int {
	return len(c.gateways)
}
