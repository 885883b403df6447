package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// Config configures how a Database is opened (spec.md §6).
type Config struct {
	// LongestRollback is k: the retention window in slots. Must be >= 1.
	LongestRollback uint64
	// IndexPolicy controls whether permanent indexes are installed at
	// long-lived startup.
	IndexPolicy IndexPolicy
	// Tracer receives structured events. A nil Tracer discards events.
	Tracer Tracer
}

func (c Config) tracerOrNop() Tracer {
	if c.Tracer == nil {
		return NopTracer{}
	}
	return c.Tracer
}

// Database is a single logical connection into the store: either the
// one privileged long-lived writer, or one of a fluctuating pool of
// short-lived readers/writers (spec.md §4.B). It is a plain value owned
// and passed explicitly by the caller (spec.md §9) — never hidden
// behind ambient/global state.
type Database struct {
	db        *sql.DB
	file      DatabaseFile
	mode      ConnectionType
	longLived bool
	tracer    Tracer
	lock      *lockCoordinator // shared across the long-lived writer and its short-lived siblings
	cfg       Config
	plock     *processLock // held only by the long-lived writer, nil otherwise
	closed    bool
}

// OpenShortLived opens a short-lived connection of the given mode
// against file, sharing coord with the long-lived writer (or nil, if
// this connection never interacts with one — e.g. in isolated tests).
// longestRollback must match the value the long-lived writer was opened
// with: it feeds the checkpoint sample ladder (spec.md §4.F.7), which
// short-lived readers compute independently of the writer. The caller
// must Close the returned Database when its scope exits (spec.md
// §4.B's short-lived bracket).
func OpenShortLived(ctx context.Context, file DatabaseFile, mode ConnectionType, longestRollback uint64, coord *lockCoordinator, tracer Tracer) (*Database, error) {
	if tracer == nil {
		tracer = NopTracer{}
	}
	dsn := connectionString(file, mode, false)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open short-lived connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping short-lived connection: %w", err)
	}

	modeName := modeLabel(mode)
	tracer.Trace(evConnectionCreateShortLived(modeName))
	if file.IsInMemory() {
		tracer.Trace(evDatabaseRunningInMemory())
	}

	return &Database{
		db:     sqlDB,
		file:   file,
		mode:   mode,
		tracer: tracer,
		lock:   coord,
		cfg:    Config{LongestRollback: longestRollback},
	}, nil
}

// OpenLongLived opens the single privileged writer connection: it
// opens, runs migrations, installs indexes per cfg.IndexPolicy, and
// hands back a Database the caller keeps for the process's lifetime
// (spec.md §4.B's long-lived bracket). coord is the lock coordinator
// shared with any short-lived siblings against the same file.
func OpenLongLived(ctx context.Context, file DatabaseFile, cfg Config, coord *lockCoordinator) (*Database, error) {
	tracer := cfg.tracerOrNop()
	if cfg.LongestRollback < 1 {
		return nil, fmt.Errorf("store: longest_rollback must be >= 1")
	}

	var plock *processLock
	if !file.IsInMemory() {
		var err error
		plock, err = waitForProcessLock(file.path, 5*time.Second)
		if err != nil {
			return nil, err
		}
	}

	dsn := connectionString(file, ReadWrite, true)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		plock.Release()
		return nil, fmt.Errorf("open long-lived connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		plock.Release()
		return nil, fmt.Errorf("ping long-lived connection: %w", err)
	}

	if !file.IsInMemory() {
		tracer.Trace(evDatabaseConnection(file.path))
	} else {
		tracer.Trace(evDatabaseRunningInMemory())
	}

	if err := runMigrations(ctx, sqlDB, tracer); err != nil {
		sqlDB.Close()
		plock.Release()
		return nil, err
	}
	if err := installIndexes(ctx, sqlDB, tracer, cfg.IndexPolicy); err != nil {
		sqlDB.Close()
		plock.Release()
		return nil, err
	}

	if coord == nil {
		coord = newLockCoordinator()
	}

	return &Database{
		db:        sqlDB,
		file:      file,
		mode:      ReadWrite,
		longLived: true,
		tracer:    tracer,
		lock:      coord,
		cfg:       cfg,
		plock:     plock,
	}, nil
}

// Coordinator returns the lock coordinator this Database was opened
// with, so short-lived siblings against the same file can share it.
func (d *Database) Coordinator() *lockCoordinator { return d.lock }

// Close closes the underlying connection (spec.md §4.B bracket exit).
func (d *Database) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	modeName := modeLabel(d.mode)
	if !d.longLived {
		d.tracer.Trace(evConnectionDestroyShortLived(modeName))
	}
	err := d.db.Close()
	if d.plock != nil {
		if lerr := d.plock.Release(); lerr != nil && err == nil {
			err = lerr
		}
	}
	return err
}

func modeLabel(mode ConnectionType) string {
	if mode == ReadOnly {
		return "read_only"
	}
	return "read_write"
}

// withTx runs fn inside the appropriate transaction discipline for this
// Database's mode and lifetime, gated by the lock coordinator per
// spec.md §4.C/§4.D:
//
//   - short-lived ReadOnly: unconstrained, BEGIN DEFERRED
//   - short-lived ReadWrite: waits for the coordinator slot, BEGIN IMMEDIATE
//   - long-lived: sets longLivedActive, waits for short writers to
//     drain, BEGIN IMMEDIATE
func (d *Database) withTx(ctx context.Context, name string, fn txFunc) error {
	if d.closed {
		return ErrDatabaseClosed
	}

	if d.longLived {
		release := d.lock.acquireLongLived()
		defer release()
		return d.runReadWriteTx(ctx, name, fn)
	}

	if d.mode == ReadOnly {
		return d.runReadOnlyTx(ctx, name, fn)
	}

	if d.lock != nil {
		release := d.lock.acquireShortLivedReadWrite()
		defer release()
	}
	return d.runReadWriteTx(ctx, name, fn)
}
