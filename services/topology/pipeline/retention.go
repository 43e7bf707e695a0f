// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// sweepPatterns match the timestamped artifacts subject to retention.
// The canonical artifacts and the baseline never match.
var sweepPatterns = []string{
	SnapshotPrefix + "*.json",
	ChangeReportPrefix + "*.json",
	GatewayReportPrefix + "*.json",
	RunSummaryPrefix + "*.json",
}

// sweep removes timestamped artifacts older than the retention
// window. Individual removal failures are logged and skipped; the
// run never fails over housekeeping. Returns the number removed.
func (p *Pipeline) sweep(logger *slog.Logger) int {
	cutoff := time.Now().AddDate(0, 0, -p.cfg.Retention.Days)
	removed := 0

	for _, pattern := range sweepPatterns {
		matches, err := filepath.Glob(filepath.Join(p.cfg.Output.Dir, pattern))
		if err != nil {
			continue
		}
		for _, path := range matches {
			info, err := os.Stat(path)
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
			if err := os.Remove(path); err != nil {
				logger.Warn("stale artifact not removed",
					slog.String("path", path),
					slog.String("error", err.Error()))
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		logger.Info("stale artifacts removed",
			slog.Int("removed", removed),
			slog.Int("retention_days", p.cfg.Retention.Days))
	}
	return removed
}
