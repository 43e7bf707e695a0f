// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package diff

// ChangeSet is the full report of differences between a current
// snapshot and its baseline.
//
// Every slice is non-nil and sorted, so an empty category serializes
// as a JSON array rather than null and the same pair of trees always
// produces byte-identical output.
type ChangeSet struct {
	Managers    ManagerChanges     `json:"mqmanagers"`
	Connections ConnectionChanges  `json:"connections"`
	Gateways    GatewayChanges     `json:"gateways"`
	QueueCounts []QueueCountChange `json:"queue_counts"`
	Summary     Summary            `json:"summary"`
}

// ManagerChanges groups manager membership and field drift.
type ManagerChanges struct {
	Added    []ManagerAdded    `json:"added"`
	Removed  []ManagerRemoved  `json:"removed"`
	Modified []ManagerModified `json:"modified"`
}

// ManagerAdded describes a manager present only in the current
// snapshot.
type ManagerAdded struct {
	Name         string `json:"name"`
	Organization string `json:"organization"`
	Department   string `json:"department"`
	Application  string `json:"application"`
	IsGateway    bool   `json:"is_gateway"`
}

// ManagerRemoved describes a manager present only in the baseline.
type ManagerRemoved struct {
	Name         string `json:"name"`
	Organization string `json:"organization"`
	Department   string `json:"department"`
	Application  string `json:"application"`
}

// FieldChange records one field's old and new values.
type FieldChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// ManagerModified describes a manager whose organizational fields
// moved. Changes is keyed by wire field name (Organization,
// Department, Biz_Ownr, Application).
type ManagerModified struct {
	Name    string                 `json:"name"`
	Changes map[string]FieldChange `json:"changes"`
}

// ConnectionChanges groups edge membership drift.
type ConnectionChanges struct {
	Added   []Connection `json:"added"`
	Removed []Connection `json:"removed"`
}

// Connection is one directed source to target edge with the
// organizations resolved from the snapshot it was found in. Targets
// that are not managers in that snapshot carry the org "Unknown".
type Connection struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	SourceOrg string `json:"source_org"`
	TargetOrg string `json:"target_org"`
}

// GatewayChanges groups drift within the gateway subset.
type GatewayChanges struct {
	Added    []GatewayAdded    `json:"added"`
	Removed  []GatewayRemoved  `json:"removed"`
	Modified []GatewayModified `json:"modified"`
}

// GatewayAdded describes a gateway present only in the current
// snapshot.
type GatewayAdded struct {
	Name         string `json:"name"`
	Scope        string `json:"scope"`
	Organization string `json:"organization"`
	Department   string `json:"department"`
}

// GatewayRemoved describes a gateway present only in the baseline.
type GatewayRemoved struct {
	Name         string `json:"name"`
	Scope        string `json:"scope"`
	Organization string `json:"organization"`
}

// GatewayModified describes a gateway whose scope changed.
type GatewayModified struct {
	Name     string `json:"name"`
	OldScope string `json:"old_scope"`
	NewScope string `json:"new_scope"`
}

// QueueCountChange describes one queue count swing at or above the
// detector threshold. QueueType is qlocal, qremote, or qalias.
type QueueCountChange struct {
	Manager       string  `json:"mqmanager"`
	QueueType     string  `json:"queue_type"`
	OldCount      int     `json:"old_count"`
	NewCount      int     `json:"new_count"`
	ChangePercent float64 `json:"change_percent"`
}

// Summary holds the per-category counts plus their sum.
type Summary struct {
	ManagersAdded      int `json:"mqmanagers_added"`
	ManagersRemoved    int `json:"mqmanagers_removed"`
	ManagersModified   int `json:"mqmanagers_modified"`
	ConnectionsAdded   int `json:"connections_added"`
	ConnectionsRemoved int `json:"connections_removed"`
	GatewaysAdded      int `json:"gateways_added"`
	GatewaysRemoved    int `json:"gateways_removed"`
	GatewaysModified   int `json:"gateways_modified"`
	QueueCountChanges  int `json:"queue_count_changes"`
	TotalChanges       int `json:"total_changes"`
}

// newChangeSet returns a ChangeSet with every slice initialized.
func newChangeSet() *ChangeSet {
	return &ChangeSet{
		Managers: ManagerChanges{
			Added:    []ManagerAdded{},
			Removed:  []ManagerRemoved{},
			Modified: []ManagerModified{},
		},
		Connections: ConnectionChanges{
			Added:   []Connection{},
			Removed: []Connection{},
		},
		Gateways: GatewayChanges{
			Added:    []GatewayAdded{},
			Removed:  []GatewayRemoved{},
			Modified: []GatewayModified{},
		},
		QueueCounts: []QueueCountChange{},
	}
}

// summarize derives the summary counts from the populated categories.
func summarize(cs *ChangeSet) Summary {
	s := Summary{
		ManagersAdded:      len(cs.Managers.Added),
		ManagersRemoved:    len(cs.Managers.Removed),
		ManagersModified:   len(cs.Managers.Modified),
		ConnectionsAdded:   len(cs.Connections.Added),
		ConnectionsRemoved: len(cs.Connections.Removed),
		GatewaysAdded:      len(cs.Gateways.Added),
		GatewaysRemoved:    len(cs.Gateways.Removed),
		GatewaysModified:   len(cs.Gateways.Modified),
		QueueCountChanges:  len(cs.QueueCounts),
	}
	s.TotalChanges = s.ManagersAdded + s.ManagersRemoved + s.ManagersModified +
		s.ConnectionsAdded + s.ConnectionsRemoved +
		s.GatewaysAdded + s.GatewaysRemoved + s.GatewaysModified +
		s.QueueCountChanges
	return s
}
