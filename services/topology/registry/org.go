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

// OrgRow is one row of the organizational hierarchy table.
type OrgRow struct {
	BizOwnr      string `json:"Biz_Ownr"`
	Organization string `json:"Organization"`
	Department   string `json:"Department"`
	OrgType      string `json:"Org_Type"`
}

// OrgInfo is the organizational context of a business owner.
type OrgInfo struct {
	Organization string
	Department   string
	BizOwnr      string
	OrgType      string
}

// OrgHierarchy maps business owners (the CMDB directorate values) to
// their organization and department.
//
// Thread Safety: Safe for concurrent use after construction.
type OrgHierarchy struct {
	owners map[string]OrgInfo
}

// NewOrgHierarchy builds the hierarchy from rows.
//
// Rows with an empty Biz_Ownr are skipped. Missing fields default to
// "Unknown" (organization, department) and "Internal" (org type). A
// business owner listed twice keeps the last row, matching the
// spreadsheet-export convention where later rows are corrections.
func NewOrgHierarchy(rows []OrgRow) *OrgHierarchy {
	h := &OrgHierarchy{owners: make(map[string]OrgInfo, len(rows))}
	for _, row := range rows {
		owner := strings.TrimSpace(row.BizOwnr)
		if owner == "" {
			continue
		}
		h.owners[owner] = OrgInfo{
			Organization: defaultIfEmpty(row.Organization, "Unknown"),
			Department:   defaultIfEmpty(row.Department, "Unknown"),
			BizOwnr:      owner,
			OrgType:      defaultIfEmpty(row.OrgType, "Internal"),
		}
	}
	return h
}

// LookupOwner returns the organizational context for a business owner.
func (h *OrgHierarchy) LookupOwner(owner string) (OrgInfo, bool) {
	info, ok := h.owners[strings.TrimSpace(owner)]
	return info, ok
}

// Len returns the number of known business owners.
func (h *OrgHierarchy) Len() int {
	return len(h.owners)
}

func defaultIfEmpty(v, def string) string {
	if trimmed := strings.TrimSpace(v); trimmed != "" {
		return trimmed
	}
	return def
}
