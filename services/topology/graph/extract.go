// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import "strings"

// queueKind classifies an asset type hint.
type queueKind int

const (
	// queueNone means the hint matched no queue category.
	queueNone queueKind = iota
	queueLocal
	queueRemote
	queueAlias
)

// classifyAssetType matches the asset type hint by case-insensitive
// substring. "local" without "remote" is a local queue, any "remote" is
// a remote queue, "alias" is an alias queue. Anything else counts as
// nothing; unmatched hints are a data quality issue, not a failure.
func classifyAssetType(hint string) queueKind {
	h := strings.ToLower(hint)
	switch {
	case strings.Contains(h, "local") && !strings.Contains(h, "remote"):
		return queueLocal
	case strings.Contains(h, "remote"):
		return queueRemote
	case strings.Contains(h, "alias"):
		return queueAlias
	default:
		return queueNone
	}
}

// deriveRemainder strips the manager's own name from an asset string.
//
// Description:
//
//	Asset names conventionally embed the owning manager as a prefix
//	("QM_A.QM_B.ORDERS"). If upper(asset) starts with upper(manager)
//	plus a dot, the remainder is what follows. Otherwise, if the
//	manager name occurs anywhere in the asset, the remainder is
//	everything after that occurrence with at most one leading dot
//	removed. Otherwise the whole asset is the remainder. Leading and
//	trailing dots are stripped last, so a bare self-reference reduces
//	to the empty string.
//
// Inputs:
//
//	asset - The asset name from the record.
//	manager - The record's own manager name.
//
// Outputs:
//
//	string - The dot-trimmed remainder; empty means nothing to resolve.
func deriveRemainder(asset, manager string) string {
	if asset == "" || manager == "" {
		return ""
	}

	assetUpper := strings.ToUpper(asset)
	managerUpper := strings.ToUpper(manager)

	var remaining string
	prefix := managerUpper + "."
	switch {
	case strings.HasPrefix(assetUpper, prefix):
		remaining = asset[len(prefix):]
	case strings.Contains(assetUpper, managerUpper):
		at := strings.Index(assetUpper, managerUpper)
		remaining = asset[at+len(manager):]
		remaining = strings.TrimPrefix(remaining, ".")
	default:
		remaining = asset
	}

	return strings.Trim(remaining, ".")
}
