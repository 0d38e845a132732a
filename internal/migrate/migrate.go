// Package migrate is a sequential SQL migration runner. Migrations are
// versioned files ("NNN_name.sql" with an optional "NNN_name.down.sql"
// rollback) read from an fs.FS, with execution state tracked in the
// schema_migrations table: every run is recorded as applied or failed,
// and failed migrations are retried on the next run.
package migrate

import (
	"context"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Status of a migration relative to the tracking table.
type Status string

const (
	// StatusPending means the file exists but has never been run.
	StatusPending Status = "pending"
	// StatusApplied means the migration ran successfully.
	StatusApplied Status = "applied"
	// StatusFailed means the last attempt errored; the DDL was rolled
	// back and the migration will be retried on the next run.
	StatusFailed Status = "failed"
)

// Sentinel errors.
var (
	// ErrNoDownFile is returned when rolling back a migration that has
	// no .down.sql counterpart.
	ErrNoDownFile = errors.New("migration has no down file")
	// ErrNothingToRollback is returned by Down when no migration is applied.
	ErrNothingToRollback = errors.New("no applied migration to roll back")
)

// Migration is one versioned migration loaded from the filesystem.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string // empty when the migration has no down file
}

// Record is one migration's tracked state, combining the file with its
// schema_migrations row (if any).
type Record struct {
	Version   int
	Name      string
	Status    Status
	Error     string     // failure message for StatusFailed
	AppliedAt *time.Time // set for applied and failed rows
}

const trackingTableDDL = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	status TEXT NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Runner executes migrations from a filesystem against a PostgreSQL pool.
type Runner struct {
	pool *pgxpool.Pool
	fsys fs.FS
}

// NewRunner creates a Runner reading migration files from fsys.
func NewRunner(pool *pgxpool.Pool, fsys fs.FS) *Runner {
	return &Runner{pool: pool, fsys: fsys}
}

var migrationFileRe = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.sql$`)

// Load parses the migration files, pairing each up file with its down
// file, sorted by version. Duplicate versions are an error.
func (r *Runner) Load() ([]Migration, error) {
	entries, err := fs.ReadDir(r.fsys, ".")
	if err != nil {
		return nil, errors.Wrap(err, "read migrations dir")
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		down := strings.HasSuffix(name, ".down.sql")
		base := name
		if down {
			base = strings.TrimSuffix(name, ".down.sql") + ".sql"
		}

		m := migrationFileRe.FindStringSubmatch(base)
		if m == nil {
			return nil, errors.Errorf("migration file %q does not match NNN_name.sql", name)
		}
		version, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, errors.Wrapf(err, "parse version of %q", name)
		}

		sqlBytes, err := fs.ReadFile(r.fsys, name)
		if err != nil {
			return nil, errors.Wrapf(err, "read %q", name)
		}

		mig := byVersion[version]
		if mig == nil {
			mig = &Migration{Version: version, Name: m[2]}
			byVersion[version] = mig
		} else if mig.Name != m[2] {
			return nil, errors.Errorf("version %d has conflicting names %q and %q", version, mig.Name, m[2])
		}

		if down {
			mig.DownSQL = string(sqlBytes)
		} else {
			if mig.UpSQL != "" {
				return nil, errors.Errorf("duplicate migration version %d", version)
			}
			mig.UpSQL = string(sqlBytes)
		}
	}

	out := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.UpSQL == "" {
			return nil, errors.Errorf("version %d has a down file but no up file", m.Version)
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// ensureTable creates the tracking table when missing.
func (r *Runner) ensureTable(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, trackingTableDDL); err != nil {
		return errors.Wrap(err, "create schema_migrations")
	}
	return nil
}

// rows returns the tracking table contents keyed by version.
func (r *Runner) rows(ctx context.Context) (map[int]Record, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT version, name, status, error, applied_at FROM schema_migrations`)
	if err != nil {
		return nil, errors.Wrap(err, "query schema_migrations")
	}

	recs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var (
			rec Record
			at  time.Time
		)
		err := row.Scan(&rec.Version, &rec.Name, &rec.Status, &rec.Error, &at)
		rec.AppliedAt = &at
		return rec, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "scan schema_migrations")
	}

	byVersion := make(map[int]Record, len(recs))
	for _, rec := range recs {
		byVersion[rec.Version] = rec
	}
	return byVersion, nil
}

// Plan lists every known migration with its current status, sorted by
// version: applied and failed from the table, pending for new files.
func (r *Runner) Plan(ctx context.Context) ([]Record, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	migrations, err := r.Load()
	if err != nil {
		return nil, err
	}
	tracked, err := r.rows(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(migrations))
	for _, m := range migrations {
		if rec, ok := tracked[m.Version]; ok {
			out = append(out, rec)
			continue
		}
		out = append(out, Record{Version: m.Version, Name: m.Name, Status: StatusPending})
	}
	return out, nil
}

// Up runs every pending or previously-failed migration in version order.
// Each migration executes inside its own transaction together with its
// status row, so a failure leaves the schema untouched; the failure is
// then recorded with status failed and the run stops. Returns the number
// of migrations applied.
func (r *Runner) Up(ctx context.Context) (int, error) {
	if err := r.ensureTable(ctx); err != nil {
		return 0, err
	}
	migrations, err := r.Load()
	if err != nil {
		return 0, err
	}
	tracked, err := r.rows(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range migrations {
		if rec, ok := tracked[m.Version]; ok && rec.Status == StatusApplied {
			continue
		}

		if err := r.applyOne(ctx, m); err != nil {
			if recErr := r.recordFailure(ctx, m, err); recErr != nil {
				return applied, errors.Wrapf(recErr, "record failure of migration %d", m.Version)
			}
			return applied, errors.Wrapf(err, "migration %d_%s", m.Version, m.Name)
		}
		applied++
	}
	return applied, nil
}

// applyOne executes one migration and upserts its applied row in a single
// transaction.
func (r *Runner) applyOne(ctx context.Context, m Migration) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, m.UpSQL); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `INSERT INTO schema_migrations (version, name, status, error, applied_at)
		VALUES ($1, $2, $3, '', now())
		ON CONFLICT (version) DO UPDATE SET status = $3, error = '', applied_at = now()`,
		m.Version, m.Name, StatusApplied)
	if err != nil {
		return errors.Wrap(err, "record applied")
	}

	return tx.Commit(ctx)
}

// recordFailure upserts a failed row for the migration outside any
// transaction, preserving the error text for the status listing.
func (r *Runner) recordFailure(ctx context.Context, m Migration, cause error) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO schema_migrations (version, name, status, error, applied_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (version) DO UPDATE SET status = $3, error = $4, applied_at = now()`,
		m.Version, m.Name, StatusFailed, cause.Error())
	return err
}

// Down rolls back the newest applied migration using its down file and
// deletes its tracking row, in one transaction. Failed rows are not
// rolled back (their DDL never committed); they block nothing.
func (r *Runner) Down(ctx context.Context) (*Migration, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	migrations, err := r.Load()
	if err != nil {
		return nil, err
	}
	tracked, err := r.rows(ctx)
	if err != nil {
		return nil, err
	}

	var target *Migration
	for i := len(migrations) - 1; i >= 0; i-- {
		if rec, ok := tracked[migrations[i].Version]; ok && rec.Status == StatusApplied {
			target = &migrations[i]
			break
		}
	}
	if target == nil {
		return nil, ErrNothingToRollback
	}
	if target.DownSQL == "" {
		return nil, errors.Wrapf(ErrNoDownFile, "migration %d_%s", target.Version, target.Name)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, target.DownSQL); err != nil {
		return nil, errors.Wrapf(err, "rollback %d_%s", target.Version, target.Name)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM schema_migrations WHERE version = $1`, target.Version); err != nil {
		return nil, errors.Wrap(err, "delete tracking row")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit")
	}
	return target, nil
}
