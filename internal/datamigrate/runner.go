// Package datamigrate applies one-off data migrations. The schema itself is
// owned by gorm AutoMigrate; this package only moves or backfills data, and
// records what it applied in goose's version table so each step runs once.
package datamigrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/tasklane/backend/internal/config"
	"github.com/tasklane/backend/internal/logger"
	"github.com/tasklane/backend/internal/storage"
)

// Deps carries the collaborators data migrations may need.
type Deps struct {
	// Copier is nil when object storage is not configured.
	Copier        storage.Copier
	PublicBucket  string
	PrivateBucket string
}

// DepsFromConfig builds Deps from storage settings. The copier is left nil
// when storage is not configured.
func DepsFromConfig(cfg config.StorageConfig) (Deps, error) {
	deps := Deps{PublicBucket: cfg.PublicBucket, PrivateBucket: cfg.PrivateBucket}
	if !cfg.Configured() {
		return deps, nil
	}
	client, err := storage.New(cfg)
	if err != nil {
		return Deps{}, err
	}
	deps.Copier = client
	return deps, nil
}

// Status describes a single migration version.
type Status struct {
	Version   int64     `json:"version"`
	Name      string    `json:"name"`
	Applied   bool      `json:"applied"`
	AppliedAt time.Time `json:"applied_at,omitempty"`
}

type step struct {
	version int64
	name    string
	up      func(ctx context.Context) error
}

// Runner wraps a goose provider loaded with the registered Go migrations.
type Runner struct {
	provider *goose.Provider
	names    map[int64]string
}

// NewRunner builds a runner over db. The gorm handle is used by the migration
// bodies; goose tracks versions on the same underlying connection pool.
func NewRunner(db *gorm.DB, deps Deps) (*Runner, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	dialect, err := gooseDialect(db.Dialector.Name())
	if err != nil {
		return nil, err
	}

	steps := registry(db, deps)
	names := make(map[int64]string, len(steps))
	migrations := make([]*goose.Migration, 0, len(steps))
	for _, s := range steps {
		names[s.version] = s.name
		migrations = append(migrations, goose.NewGoMigration(s.version,
			&goose.GoFunc{RunDB: runDB(s.up), Mode: goose.TransactionDisabled},
			&goose.GoFunc{RunDB: noop, Mode: goose.TransactionDisabled},
		))
	}

	provider, err := goose.NewProvider(dialect, sqlDB, nil,
		goose.WithGoMigrations(migrations...),
		goose.WithDisableGlobalRegistry(true),
	)
	if err != nil {
		return nil, fmt.Errorf("configure goose: %w", err)
	}

	return &Runner{provider: provider, names: names}, nil
}

// Up applies every pending migration in version order and returns the versions
// it applied.
func (r *Runner) Up(ctx context.Context) ([]int64, error) {
	log := logger.Component("datamigrate")

	results, err := r.provider.Up(ctx)
	var partial *goose.PartialError
	if errors.As(err, &partial) {
		results = partial.Applied
	}

	applied := make([]int64, 0, len(results))
	for _, res := range results {
		v := res.Source.Version
		applied = append(applied, v)
		log.WithField("version", v).WithField("name", r.names[v]).
			WithField("duration", res.Duration.String()).Info("applied data migration")
	}
	if err != nil {
		return applied, fmt.Errorf("apply data migrations: %w", err)
	}
	if len(applied) == 0 {
		log.Debug("no pending data migrations")
	}
	return applied, nil
}

// Status lists every known migration with its applied state.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	statuses, err := r.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("data migration status: %w", err)
	}

	out := make([]Status, 0, len(statuses))
	for _, s := range statuses {
		v := s.Source.Version
		out = append(out, Status{
			Version:   v,
			Name:      r.names[v],
			Applied:   s.State == goose.StateApplied,
			AppliedAt: s.AppliedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func gooseDialect(name string) (goose.Dialect, error) {
	switch name {
	case "sqlite":
		return goose.DialectSQLite3, nil
	case "postgres":
		return goose.DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database dialect for data migrations: %s", name)
	}
}

func runDB(fn func(ctx context.Context) error) func(context.Context, *sql.DB) error {
	return func(ctx context.Context, _ *sql.DB) error {
		return fn(ctx)
	}
}

func noop(context.Context, *sql.DB) error { return nil }
