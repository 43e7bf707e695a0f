// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package runs persists the run-history ledger.
//
// Every pipeline run appends one Record describing when it ran, what
// it produced, and what went wrong. Records live in BadgerDB under
// keys of the form
//
//	run:<started>:<id>
//
// where <started> is a fixed-width UTC timestamp, so a reverse key
// scan yields runs newest-first without decoding values. The ledger
// is read by the serve API and the runs command.
package runs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	dgbadger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/AleutianAI/mqtopo/services/topology/storage/badger"
)

var (
	// ErrNilDB is returned by NewLedger when the database is nil.
	ErrNilDB = errors.New("db is nil")

	// ErrNoRuns is returned by Latest when the ledger is empty.
	ErrNoRuns = errors.New("no runs recorded")
)

const keyPrefix = "run:"

// keyTimeLayout is fixed width so keys sort chronologically. Records
// are stamped in UTC before formatting.
const keyTimeLayout = "20060102T150405.000000000"

// Ledger appends and reads run records.
//
// Thread Safety:
//
//	Safe for concurrent use. Appends from a pipeline run and reads
//	from the serve API each get their own transaction.
type Ledger struct {
	db     *badger.DB
	logger *slog.Logger
}

// NewLedger creates a Ledger on an open database.
//
// Description:
//
//	The ledger borrows the database; the caller owns its lifecycle
//	and closes it after the ledger is no longer used.
//
// Inputs:
//
//	db - Open database. Must not be nil.
//	logger - Optional logger; nil falls back to slog.Default().
//
// Outputs:
//
//	*Ledger - Ready-to-use ledger.
//	error - ErrNilDB if db is nil.
func NewLedger(db *badger.DB, logger *slog.Logger) (*Ledger, error) {
	if db == nil {
		return nil, ErrNilDB
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		db:     db,
		logger: logger.With(slog.String("component", "runs")),
	}, nil
}

// Append persists one run record.
//
// Description:
//
//	Fills in a UUID and a start timestamp when the record carries
//	none, normalizes nil slices to empty ones so the stored JSON has
//	[] rather than null, and writes the record under its time-ordered
//	key. Appending a record with the same start time and ID
//	overwrites the previous version, which makes retried appends
//	harmless.
//
// Inputs:
//
//	ctx - Context for cancellation.
//	rec - The record to persist.
//
// Outputs:
//
//	error - Non-nil if encoding or the write transaction fails.
func (l *Ledger) Append(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Started.IsZero() {
		rec.Started = time.Now().UTC()
	}
	if rec.Artifacts == nil {
		rec.Artifacts = []string{}
	}
	if rec.Errors == nil {
		rec.Errors = []string{}
	}

	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode run record: %w", err)
	}

	key := recordKey(rec)
	err = l.db.WithTxn(ctx, func(txn *dgbadger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return fmt.Errorf("append run record: %w", err)
	}

	l.logger.Info("run recorded",
		slog.String("run_id", rec.ID),
		slog.String("status", rec.Status),
		slog.Int("artifacts", len(rec.Artifacts)),
		slog.Int("errors", len(rec.Errors)))
	return nil
}

// List returns run records newest-first.
//
// Description:
//
//	Scans the run keyspace in reverse. A non-positive limit returns
//	every record.
//
// Inputs:
//
//	ctx - Context for cancellation.
//	limit - Maximum number of records, or <= 0 for all.
//
// Outputs:
//
//	[]Record - Records ordered newest-first. Never nil.
//	error - Non-nil if the scan or decoding fails.
func (l *Ledger) List(ctx context.Context, limit int) ([]Record, error) {
	records := []Record{}

	err := l.db.WithReadTxn(ctx, func(txn *dgbadger.Txn) error {
		opts := dgbadger.DefaultIteratorOptions
		opts.Reverse = true

		it := txn.NewIterator(opts)
		defer it.Close()

		// Seek past the last run key, then walk backwards.
		seek := append([]byte(keyPrefix), 0xFF)
		for it.Seek(seek); it.ValidForPrefix([]byte(keyPrefix)); it.Next() {
			if limit > 0 && len(records) >= limit {
				break
			}

			var rec Record
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("decode run record %s: %w", it.Item().Key(), err)
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// Latest returns the most recent run record.
//
// Outputs:
//
//	*Record - The newest record.
//	error - ErrNoRuns if the ledger is empty.
func (l *Ledger) Latest(ctx context.Context) (*Record, error) {
	records, err := l.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoRuns
	}
	return &records[0], nil
}

func recordKey(rec Record) []byte {
	return []byte(keyPrefix + rec.Started.UTC().Format(keyTimeLayout) + ":" + rec.ID)
}
