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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDeriveRemainder verifies manager-prefix stripping.
func TestDeriveRemainder(t *testing.T) {
	tests := []struct {
		name    string
		asset   string
		manager string
		want    string
	}{
		{
			name:    "prefix strip",
			asset:   "QM_A.QM_B.ORDERS.QUEUE",
			manager: "QM_A",
			want:    "QM_B.ORDERS.QUEUE",
		},
		{
			name:    "prefix strip is case-insensitive",
			asset:   "qm_a.QM_B.QUEUE",
			manager: "QM_A",
			want:    "QM_B.QUEUE",
		},
		{
			name:    "occurrence in the middle",
			asset:   "CHANNEL.QM_A.QM_B",
			manager: "QM_A",
			want:    "QM_B",
		},
		{
			name:    "occurrence without following dot",
			asset:   "XQM_AYZ",
			manager: "QM_A",
			want:    "YZ",
		},
		{
			name:    "manager absent keeps whole asset",
			asset:   "SOME.OTHER.QUEUE",
			manager: "QM_A",
			want:    "SOME.OTHER.QUEUE",
		},
		{
			name:    "trailing dots trimmed",
			asset:   "QM_A.QM_B...",
			manager: "QM_A",
			want:    "QM_B",
		},
		{
			name:    "bare self reference reduces to empty",
			asset:   "QM_A",
			manager: "QM_A",
			want:    "",
		},
		{
			name:    "self reference with trailing dot reduces to empty",
			asset:   "QM_A.",
			manager: "QM_A",
			want:    "",
		},
		{
			name:    "remainder keeps original casing",
			asset:   "QM_A.Orders.Queue",
			manager: "qm_a",
			want:    "Orders.Queue",
		},
		{
			name:    "empty asset",
			asset:   "",
			manager: "QM_A",
			want:    "",
		},
		{
			name:    "empty manager",
			asset:   "QM_A.QUEUE",
			manager: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveRemainder(tt.asset, tt.manager))
		})
	}
}

// TestClassifyAssetType verifies the substring classification rules.
func TestClassifyAssetType(t *testing.T) {
	tests := []struct {
		hint string
		want queueKind
	}{
		{"Queue Local", queueLocal},
		{"queue local", queueLocal},
		{"Queue Remote", queueRemote},
		{"Local Remote Queue", queueRemote}, // remote wins over local
		{"Queue Alias", queueAlias},
		{"ALIAS", queueAlias},
		{"QCluster", queueNone},
		{"Channel Sender", queueNone},
		{"", queueNone},
	}

	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyAssetType(tt.hint))
		})
	}
}
