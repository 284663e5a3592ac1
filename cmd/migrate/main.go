package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/workforce/backend/internal/infrastructure/config"
	"github.com/workforce/backend/internal/infrastructure/logger"
	"github.com/workforce/backend/internal/infrastructure/migration"
	"github.com/workforce/backend/migrations"
	"go.uber.org/zap"
)

const usage = `Forms database migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (negative rolls back)
  goto <version>        Migrate to a specific version
  version               Show the applied version
  force <version>       Mark a version as applied (clears a dirty state)
  create <name> [desc]  Create a new up/down pair (requires -path)
  list                  List available migrations

Flags:
  -path string          Read migrations from this directory instead of the embedded set
  -log-level string     debug, info, warn, error (default: info)

Connection settings come from config.toml and FORMS_DATABASE_* variables.
`

func main() {
	var dir, logLevel string
	flag.StringVar(&dir, "path", "", "migrations directory (default: embedded)")
	flag.StringVar(&logLevel, "log-level", "info", "log level")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: logLevel, Format: "console", TimeFormat: "2006-01-02 15:04:05"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(args, dir, log); err != nil {
		log.Fatal("migration command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func run(args []string, dir string, log *zap.Logger) error {
	command := args[0]

	switch command {
	case "create":
		if dir == "" {
			return fmt.Errorf("create writes files and needs -path")
		}
		if len(args) < 2 {
			return fmt.Errorf("usage: migrate -path <dir> create <name> [description]")
		}
		desc := ""
		if len(args) > 2 {
			desc = args[2]
		}
		mf, err := migration.CreateMigration(dir, args[1], desc)
		if err != nil {
			return err
		}
		log.Info("migration created", zap.String("up", mf.UpPath), zap.String("down", mf.DownPath))
		return nil

	case "list":
		var source fs.FS = migrations.FS
		if dir != "" {
			source = os.DirFS(dir)
		}
		names, err := migration.ListMigrations(source)
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
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
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	var m *migration.Migrator
	if dir != "" {
		m, err = migration.NewFromDir(db, dir, log)
	} else {
		m, err = migration.New(db, migrations.FS, log)
	}
	if err != nil {
		_ = db.Close()
		return err
	}
	defer func() { _ = m.Close() }()

	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "step":
		n, err := intArg(args, "step <n>")
		if err != nil {
			return err
		}
		return m.Steps(n)
	case "goto":
		v, err := intArg(args, "goto <version>")
		if err != nil {
			return err
		}
		if v < 0 {
			return fmt.Errorf("version must not be negative")
		}
		return m.GoTo(uint(v))
	case "force":
		v, err := intArg(args, "force <version>")
		if err != nil {
			return err
		}
		return m.Force(v)
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func intArg(args []string, form string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("usage: migrate %s", form)
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", args[1])
	}
	return n, nil
}
