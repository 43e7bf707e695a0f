// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package badger provides factory functions and lifecycle management
// for the embedded BadgerDB store.
//
// The topology service keeps its durable local state here: the run
// ledger written after every pipeline run. Report artifacts live on
// the filesystem; BadgerDB holds only the small, append-heavy records
// that the serve API and the runs command read back.
//
// The write load is a handful of keys per pipeline run, so the store
// is tuned for durability over throughput: synchronous writes and a
// slow value log GC cadence.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Config holds configuration for a BadgerDB instance.
type Config struct {
	// Path is the directory for BadgerDB files.
	// Required unless InMemory is true.
	Path string

	// InMemory enables in-memory mode with no disk persistence.
	// Used by tests.
	InMemory bool

	// SyncWrites makes every commit fsync before returning.
	SyncWrites bool

	// Logger receives BadgerDB's internal log output.
	// If nil, that output is discarded.
	Logger *slog.Logger

	// NumVersionsToKeep is the number of versions retained per key.
	// The ledger overwrites keys in place, so 1 is enough.
	NumVersionsToKeep int

	// GCInterval is how often to run value log garbage collection.
	// Zero disables GC.
	GCInterval time.Duration

	// GCDiscardRatio is the minimum ratio of discardable data before
	// a GC pass rewrites the value log.
	GCDiscardRatio float64
}

// DefaultConfig returns the production configuration.
//
// Description:
//
//	Synchronous writes, single version retention, and a ten-minute GC
//	interval. The caller still has to set Path.
//
// Outputs:
//
//	Config - Ready-to-use production configuration.
func DefaultConfig() Config {
	return Config{
		SyncWrites:        true,
		NumVersionsToKeep: 1,
		GCInterval:        10 * time.Minute,
		GCDiscardRatio:    0.5,
	}
}

// InMemoryConfig returns the configuration used by tests.
//
// Description:
//
//	In-memory mode with synchronous writes and GC disabled. Data is
//	lost when the database closes.
//
// Outputs:
//
//	Config - Ready-to-use test configuration.
func InMemoryConfig() Config {
	return Config{
		InMemory:          true,
		SyncWrites:        false,
		NumVersionsToKeep: 1,
		GCInterval:        0,
	}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Open creates and opens a raw BadgerDB instance.
//
// Description:
//
//	Opens the database at the configured path, or in memory if
//	InMemory is set. The path directory is created if missing. Most
//	callers want OpenDB, which adds lifecycle management on top.
//
// Inputs:
//
//	cfg - Database configuration. Path is required unless InMemory is true.
//
// Outputs:
//
//	*badger.DB - The opened database. Caller must call Close() when done.
//	error - Non-nil if the path is invalid or the database cannot be opened.
//
// Thread Safety: The returned *badger.DB is safe for concurrent use.
func Open(cfg Config) (*badger.DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithNumVersionsToKeep(cfg.NumVersionsToKeep)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	return db, nil
}

// GCRunner runs periodic value log garbage collection.
type GCRunner struct {
	db       *badger.DB
	interval time.Duration
	ratio    float64
	stopCh   chan struct{}
	doneCh   chan struct{}
	logger   *slog.Logger
}

// NewGCRunner creates a garbage collection runner.
//
// Description:
//
//	The runner triggers BadgerDB value log GC at a fixed interval.
//	Call Start() to begin and Stop() to halt it.
//
// Inputs:
//
//	db - The BadgerDB instance. Must not be nil.
//	interval - How often to run GC. Must be positive.
//	ratio - Minimum garbage ratio to trigger GC (0.0-1.0).
//	logger - Optional logger for GC events.
//
// Outputs:
//
//	*GCRunner - The runner. Not started until Start() is called.
//	error - Non-nil if inputs are invalid.
//
// Thread Safety: Safe for concurrent use after creation.
func NewGCRunner(db *badger.DB, interval time.Duration, ratio float64, logger *slog.Logger) (*GCRunner, error) {
	if db == nil {
		return nil, errors.New("db must not be nil")
	}
	if interval <= 0 {
		return nil, errors.New("interval must be positive")
	}
	if ratio < 0 || ratio > 1 {
		return nil, errors.New("ratio must be between 0 and 1")
	}

	return &GCRunner{
		db:       db,
		interval: interval,
		ratio:    ratio,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		logger:   logger,
	}, nil
}

// Start begins periodic garbage collection in a background goroutine.
func (r *GCRunner) Start() {
	go r.run()
}

// Stop signals the GC goroutine to stop and waits for it to finish.
func (r *GCRunner) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

func (r *GCRunner) run() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.runGC()
		}
	}
}

func (r *GCRunner) runGC() {
	// ErrNoRewrite means nothing was worth collecting, not a failure.
	err := r.db.RunValueLogGC(r.ratio)
	if err == nil {
		if r.logger != nil {
			r.logger.Debug("badger value log GC completed")
		}
	} else if !errors.Is(err, badger.ErrNoRewrite) {
		if r.logger != nil {
			r.logger.Warn("badger value log GC error", slog.String("error", err.Error()))
		}
	}
}

// DB wraps a BadgerDB instance with lifecycle management.
type DB struct {
	*badger.DB
	gcRunner *GCRunner
	path     string
	inMemory bool
}

// OpenDB opens a BadgerDB with full lifecycle management.
//
// Description:
//
//	Opens the database with the given configuration and starts a GC
//	runner when GCInterval is set on a persistent database.
//
// Inputs:
//
//	cfg - Database configuration.
//
// Outputs:
//
//	*DB - The managed database. Call Close() when done.
//	error - Non-nil if the database cannot be opened.
//
// Thread Safety: Safe for concurrent use.
func OpenDB(cfg Config) (*DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	wrapped := &DB{
		DB:       db,
		path:     cfg.Path,
		inMemory: cfg.InMemory,
	}

	if cfg.GCInterval > 0 && !cfg.InMemory {
		runner, err := NewGCRunner(db, cfg.GCInterval, cfg.GCDiscardRatio, cfg.Logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("create GC runner: %w", err)
		}
		wrapped.gcRunner = runner
		runner.Start()
	}

	return wrapped, nil
}

// Close stops the GC runner, if any, and closes the database.
func (d *DB) Close() error {
	if d.gcRunner != nil {
		d.gcRunner.Stop()
	}
	return d.DB.Close()
}

// Path returns the database path, or empty string for in-memory databases.
func (d *DB) Path() string {
	return d.path
}

// InMemory returns true if this is an in-memory database.
func (d *DB) InMemory() bool {
	return d.inMemory
}

// Sync flushes pending writes to disk. No-op for in-memory databases.
func (d *DB) Sync() error {
	if d.inMemory {
		return nil
	}
	return d.DB.Sync()
}

// WithTxn executes a function within a read-write transaction.
//
// Description:
//
//	Opens a read-write transaction, executes the function, and commits
//	if the function returns nil. Discards the transaction on error.
//
// Inputs:
//
//	ctx - Context checked for cancellation before the transaction starts.
//	fn - Function to execute within the transaction.
//
// Outputs:
//
//	error - Non-nil if the transaction fails or the function returns error.
//
// Thread Safety: Safe for concurrent use.
func (d *DB) WithTxn(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	txn := d.DB.NewTransaction(true)
	defer txn.Discard()

	if err := fn(txn); err != nil {
		return err
	}

	return txn.Commit()
}

// WithReadTxn executes a function within a read-only transaction.
//
// Inputs:
//
//	ctx - Context checked for cancellation before the transaction starts.
//	fn - Function to execute within the transaction.
//
// Outputs:
//
//	error - Non-nil if the function returns error.
//
// Thread Safety: Safe for concurrent use.
func (d *DB) WithReadTxn(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	txn := d.DB.NewTransaction(false)
	defer txn.Discard()

	return fn(txn)
}
