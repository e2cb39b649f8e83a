package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopfront/backend/internal/infrastructure/logger"
	"github.com/shopfront/backend/internal/infrastructure/migration"
	"github.com/shopfront/backend/migrations"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

var errUsage = errors.New("invalid usage")

func main() {
	var (
		dir      string
		logLevel string
	)
	flag.StringVar(&dir, "dir", defaultMigrationsDir, "Directory new migrations are written to")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	log, syncLog, err := logger.New(config.LogConfig{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer syncLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, dir, args); err != nil {
		if errors.Is(err, errUsage) {
			printUsage()
		}
		log.Error("Migration command failed", zap.String("command", args[0]), zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *zap.Logger, dir string, args []string) error {
	command, rest := args[0], args[1:]

	// Commands that work without a database
	switch command {
	case "create":
		if len(rest) < 1 {
			return fmt.Errorf("%w: create <name>", errUsage)
		}
		f, err := migration.Create(dir, rest[0], time.Now())
		if err != nil {
			return err
		}
		log.Info("Migration created",
			zap.Uint("version", f.Version),
			zap.String("up_file", f.UpPath),
			zap.String("down_file", f.DownPath),
		)
		return nil
	case "list":
		files, err := migration.List(migrations.FS)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Printf("%06d  %s\n", f.Version, f.Name)
		}
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	m, err := migration.New(db, log)
	if err != nil {
		return err
	}
	defer m.Close()

	switch command {
	case "up":
		return m.Up(ctx)
	case "down":
		if !hasFlag(rest, "-confirm", "--confirm") {
			return fmt.Errorf("%w: down rolls back every migration, pass -confirm", errUsage)
		}
		return m.Down(ctx)
	case "step":
		if len(rest) < 1 {
			return fmt.Errorf("%w: step <n>", errUsage)
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("%w: invalid step count %q", errUsage, rest[0])
		}
		return m.Steps(ctx, n)
	case "goto":
		if len(rest) < 1 {
			return fmt.Errorf("%w: goto <version>", errUsage)
		}
		version, err := strconv.ParseUint(rest[0], 10, 32)
		if err != nil {
			return fmt.Errorf("%w: invalid version %q", errUsage, rest[0])
		}
		return m.GoTo(ctx, uint(version))
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if version == 0 {
			log.Info("No migrations applied")
			return nil
		}
		log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	case "force":
		if len(rest) < 1 {
			return fmt.Errorf("%w: force <version>", errUsage)
		}
		version, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("%w: invalid version %q", errUsage, rest[0])
		}
		log.Warn("Forcing migration version", zap.Int("version", version))
		return m.Force(version)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func hasFlag(args []string, names ...string) bool {
	for _, a := range args {
		for _, n := range names {
			if a == n {
				return true
			}
		}
	}
	return false
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Shopfront database migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                Apply all pending migrations
  down -confirm     Roll back all migrations
  step <n>          Apply n migrations (negative rolls back)
  goto <version>    Migrate to a specific version
  version           Show the current version
  force <version>   Set the version without running migrations
  create <name>     Write an empty up/down pair into -dir
  list              List the migrations compiled into this binary

Flags:
  -dir string        Directory for create (default: ./migrations)
  -log-level string  debug, info, warn or error (default: info)

The database is configured like the server: config.toml or SHOP_DATABASE_* variables.`)
}
