// Command migrate manages the database schema from the command line.
//
// Usage:
//
//	migrate -database-url=... up      apply pending and failed migrations
//	migrate -database-url=... down    roll back the newest applied migration
//	migrate -database-url=... status  print every migration with its state
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/mizanhq/mizan/db"
	"github.com/mizanhq/mizan/internal/migrate"
	"github.com/mizanhq/mizan/internal/repository"
)

func main() {
	var databaseURL string
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "status"
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, cmd); err != nil {
		slog.Error("migrate failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, databaseURL, cmd string) error {
	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	runner := migrate.NewRunner(pool, db.Migrations())

	switch cmd {
	case "up":
		applied, err := runner.Up(ctx)
		if err != nil {
			return err
		}
		slog.Info("migrations applied", slog.Int("count", applied))
		return nil

	case "down":
		m, err := runner.Down(ctx)
		if err != nil {
			if errors.Is(err, migrate.ErrNothingToRollback) {
				slog.Info("nothing to roll back")
				return nil
			}
			return err
		}
		slog.Info("rolled back migration",
			slog.Int("version", m.Version),
			slog.String("name", m.Name),
		)
		return nil

	case "status":
		plan, err := runner.Plan(ctx)
		if err != nil {
			return err
		}
		for _, rec := range plan {
			line := fmt.Sprintf("%03d_%s\t%s", rec.Version, rec.Name, rec.Status)
			if rec.Error != "" {
				line += "\t" + rec.Error
			}
			fmt.Println(line)
		}
		return nil

	default:
		return errors.Errorf("unknown command %q: want up, down, or status", cmd)
	}
}
