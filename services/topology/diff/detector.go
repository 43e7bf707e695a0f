// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package diff detects changes between two enriched topology
// snapshots.
//
// A Detector flattens the current and the baseline tree into flat
// manager maps and diffs them across four categories: manager
// membership and organizational field drift, directed connections,
// the gateway subset, and queue count swings above a threshold.
// Managers are compared by display name, so a renamed manager shows
// up as one removal plus one addition.
//
// # Determinism
//
// Compare is a pure function of its two inputs. Every slice in the
// resulting ChangeSet is sorted and the summary is derived from the
// slices, so the same pair of trees always marshals to identical
// bytes, and comparing a tree against itself reports nothing.
package diff

import (
	"errors"
	"log/slog"
	"math"

	"github.com/AleutianAI/mqtopo/services/topology/hierarchy"
)

// ErrNilTree is returned by Compare when either tree is nil.
var ErrNilTree = errors.New("tree is nil")

// DefaultThreshold is the minimum queue count change percentage that
// gets reported.
const DefaultThreshold = 20.0

// managerFields lists the organizational fields diffed per manager,
// keyed by their wire names.
var managerFields = []struct {
	name string
	get  func(*hierarchy.Manager) string
}{
	{"Organization", func(m *hierarchy.Manager) string { return m.Organization }},
	{"Department", func(m *hierarchy.Manager) string { return m.Department }},
	{"Biz_Ownr", func(m *hierarchy.Manager) string { return m.BizOwnr }},
	{"Application", func(m *hierarchy.Manager) string { return m.Application }},
}

// queueTypes lists the diffed queue counters with their report names.
var queueTypes = []struct {
	name string
	get  func(*hierarchy.Manager) int
}{
	{"qlocal", func(m *hierarchy.Manager) int { return m.QLocal }},
	{"qremote", func(m *hierarchy.Manager) int { return m.QRemote }},
	{"qalias", func(m *hierarchy.Manager) int { return m.QAlias }},
}

// Detector compares enriched trees against a baseline.
//
// Thread Safety:
//
//	Detector is safe for concurrent use. Compare keeps no state
//	between calls.
type Detector struct {
	threshold float64
	logger    *slog.Logger
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithThreshold sets the minimum queue count change percentage that
// gets reported. Zero reports every nonzero swing. Negative values
// are ignored.
func WithThreshold(percent float64) DetectorOption {
	return func(d *Detector) {
		if percent >= 0 {
			d.threshold = percent
		}
	}
}

// NewDetector creates a change detector.
//
// Inputs:
//
//	logger - Summary logging. Nil falls back to slog.Default().
//	opts - Optional configuration, see WithThreshold.
func NewDetector(logger *slog.Logger, opts ...DetectorOption) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Detector{
		threshold: DefaultThreshold,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Compare diffs the current snapshot against the baseline.
//
// Description:
//
//	Both trees are flattened to manager maps before comparison, so
//	the reported changes are independent of where a manager sits in
//	the organizational nesting; a pure organizational move surfaces
//	as field drift on the same manager, not as a removal plus an
//	addition.
//
// Inputs:
//
//	current - The freshly enriched tree.
//	baseline - The previously persisted tree.
//
// Outputs:
//
//	*ChangeSet - The sorted change report, never nil on success.
//	error - ErrNilTree when either tree is nil.
func (d *Detector) Compare(current, baseline hierarchy.Tree) (*ChangeSet, error) {
	if current == nil || baseline == nil {
		return nil, ErrNilTree
	}

	cur := current.Managers()
	base := baseline.Managers()

	cs := newChangeSet()
	d.diffManagers(cs, cur, base)
	d.diffConnections(cs, cur, base)
	d.diffGateways(cs, cur, base)
	d.diffQueueCounts(cs, cur, base)
	cs.Summary = summarize(cs)

	d.logger.Info("change detection complete",
		"managers_current", len(cur),
		"managers_baseline", len(base),
		"total_changes", cs.Summary.TotalChanges)
	return cs, nil
}

// diffManagers reports membership and organizational field drift.
func (d *Detector) diffManagers(cs *ChangeSet, cur, base map[string]*hierarchy.Manager) {
	for _, name := range setDiff(cur, base) {
		m := cur[name]
		cs.Managers.Added = append(cs.Managers.Added, ManagerAdded{
			Name:         name,
			Organization: m.Organization,
			Department:   m.Department,
			Application:  m.Application,
			IsGateway:    m.IsGateway,
		})
	}

	for _, name := range setDiff(base, cur) {
		m := base[name]
		cs.Managers.Removed = append(cs.Managers.Removed, ManagerRemoved{
			Name:         name,
			Organization: m.Organization,
			Department:   m.Department,
			Application:  m.Application,
		})
	}

	for _, name := range setCommon(cur, base) {
		c, b := cur[name], base[name]
		changes := make(map[string]FieldChange)
		for _, field := range managerFields {
			oldVal, newVal := field.get(b), field.get(c)
			if oldVal != newVal {
				changes[field.name] = FieldChange{Old: oldVal, New: newVal}
			}
		}
		if len(changes) > 0 {
			cs.Managers.Modified = append(cs.Managers.Modified, ManagerModified{
				Name:    name,
				Changes: changes,
			})
		}
	}
}

// diffConnections reports added and removed directed edges. The
// organizations on each edge come from the snapshot the edge was
// found in.
func (d *Detector) diffConnections(cs *ChangeSet, cur, base map[string]*hierarchy.Manager) {
	curConns := connectionsOf(cur)
	baseConns := connectionsOf(base)

	for _, pair := range connDiff(curConns, baseConns) {
		cs.Connections.Added = append(cs.Connections.Added, Connection{
			Source:    pair.source,
			Target:    pair.target,
			SourceOrg: orgOf(cur, pair.source),
			TargetOrg: orgOf(cur, pair.target),
		})
	}

	for _, pair := range connDiff(baseConns, curConns) {
		cs.Connections.Removed = append(cs.Connections.Removed, Connection{
			Source:    pair.source,
			Target:    pair.target,
			SourceOrg: orgOf(base, pair.source),
			TargetOrg: orgOf(base, pair.target),
		})
	}
}

// diffGateways reports membership and scope drift within the gateway
// subset. A manager that gained or lost gateway status counts as a
// gateway addition or removal here even though the manager itself is
// unchanged in the membership diff.
func (d *Detector) diffGateways(cs *ChangeSet, cur, base map[string]*hierarchy.Manager) {
	curGws := gatewaysOf(cur)
	baseGws := gatewaysOf(base)

	for _, name := range setDiff(curGws, baseGws) {
		m := curGws[name]
		cs.Gateways.Added = append(cs.Gateways.Added, GatewayAdded{
			Name:         name,
			Scope:        m.GatewayScope,
			Organization: m.Organization,
			Department:   m.Department,
		})
	}

	for _, name := range setDiff(baseGws, curGws) {
		m := baseGws[name]
		cs.Gateways.Removed = append(cs.Gateways.Removed, GatewayRemoved{
			Name:         name,
			Scope:        m.GatewayScope,
			Organization: m.Organization,
		})
	}

	for _, name := range setCommon(curGws, baseGws) {
		oldScope := baseGws[name].GatewayScope
		newScope := curGws[name].GatewayScope
		if oldScope != newScope {
			cs.Gateways.Modified = append(cs.Gateways.Modified, GatewayModified{
				Name:     name,
				OldScope: oldScope,
				NewScope: newScope,
			})
		}
	}
}

// diffQueueCounts reports queue count swings at or above the
// threshold for managers present in both snapshots. The threshold is
// applied to the unrounded percentage; rounding to one decimal
// happens only for the report.
func (d *Detector) diffQueueCounts(cs *ChangeSet, cur, base map[string]*hierarchy.Manager) {
	for _, name := range setCommon(cur, base) {
		c, b := cur[name], base[name]
		for _, qt := range queueTypes {
			oldCount, newCount := qt.get(b), qt.get(c)
			percent, ok := changePercent(oldCount, newCount)
			if !ok || percent < d.threshold {
				continue
			}
			cs.QueueCounts = append(cs.QueueCounts, QueueCountChange{
				Manager:       name,
				QueueType:     qt.name,
				OldCount:      oldCount,
				NewCount:      newCount,
				ChangePercent: math.Round(percent*10) / 10,
			})
		}
	}
}

// changePercent computes the unrounded swing between two counts.
// Counts appearing from or dropping to zero are a 100 percent swing.
// The second return is false when the counts are equal, so a zero
// threshold still reports only actual movement.
func changePercent(oldCount, newCount int) (float64, bool) {
	switch {
	case oldCount == newCount:
		return 0, false
	case oldCount == 0 || newCount == 0:
		return 100, true
	default:
		return math.Abs(float64(newCount-oldCount) / float64(oldCount) * 100), true
	}
}
