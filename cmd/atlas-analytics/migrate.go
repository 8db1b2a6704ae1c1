package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/RossFW/atlas-conquest/internal/storage"
)

func runMigrationCommand(args []string) {
	if len(args) < 1 {
		printMigrationUsage()
		os.Exit(1)
	}

	command, rest := args[0], args[1:]

	// goto and force take a positional version before the flags.
	var target string
	if command == "goto" || command == "force" {
		if len(rest) < 1 {
			fmt.Printf("Error: %s command requires a version number\n", command)
			fmt.Printf("Usage: atlas-analytics migrate %s <version>\n", command)
			os.Exit(1)
		}
		target, rest = rest[0], rest[1:]
	}

	fs := flag.NewFlagSet("migrate "+command, flag.ExitOnError)
	var g globalFlags
	g.register(fs)
	if err := fs.Parse(rest); err != nil {
		os.Exit(1)
	}

	cfg := g.load()
	if cfg.Storage.Path == "" {
		log.Fatalf("Saved views are disabled: set [storage] path in the config")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
		log.Fatalf("Error creating database directory: %v", err)
	}

	mgr, err := storage.NewMigrationManager(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Error creating migration manager: %v", err)
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Printf("Error closing migration manager: %v", err)
		}
	}()

	switch command {
	case "up":
		fmt.Println("Applying all pending migrations...")
		if err := mgr.Up(); err != nil {
			log.Fatalf("Error applying migrations: %v", err)
		}
		printMigrationStatus(mgr)
		fmt.Println("All migrations applied successfully!")

	case "down":
		fmt.Println("Rolling back last migration...")
		if err := mgr.Down(); err != nil {
			log.Fatalf("Error rolling back migration: %v", err)
		}
		printMigrationStatus(mgr)
		fmt.Println("Migration rolled back successfully!")

	case "status", "version":
		printMigrationStatus(mgr)

	case "force":
		version, err := strconv.Atoi(target)
		if err != nil {
			log.Fatalf("Invalid version number: %v", err)
		}
		fmt.Printf("Forcing migration version to %d...\n", version)
		fmt.Println("WARNING: This does not run migrations, only sets the version.")
		if err := mgr.Force(version); err != nil {
			log.Fatalf("Error forcing version: %v", err)
		}
		fmt.Println("Version forced successfully!")

	case "goto":
		version, err := strconv.ParseUint(target, 10, 32)
		if err != nil {
			log.Fatalf("Invalid version number: %v", err)
		}
		fmt.Printf("Migrating to version %d...\n", version)
		if err := mgr.Goto(uint(version)); err != nil {
			log.Fatalf("Error migrating to version %d: %v", version, err)
		}
		fmt.Println("Migration successful!")

	default:
		fmt.Printf("Unknown migration command: %s\n\n", command)
		printMigrationUsage()
		os.Exit(1)
	}
}

func printMigrationStatus(mgr *storage.MigrationManager) {
	st, err := mgr.Status()
	if err != nil {
		log.Fatalf("Error getting version: %v", err)
	}
	switch {
	case st.Dirty:
		fmt.Printf("Current version: %d (dirty - migration failed or interrupted)\n", st.Version)
		fmt.Println("Use 'migrate force <version>' to recover")
	case st.Pending():
		fmt.Printf("Current version: %d (latest %d, run 'migrate up')\n", st.Version, st.Latest)
	default:
		fmt.Printf("Current version: %d (up to date)\n", st.Version)
	}
}

func printMigrationUsage() {
	fmt.Println("Atlas Conquest Analytics - Database Migration Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  atlas-analytics migrate <command> [args] [-config <path>]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up                Apply all pending migrations")
	fmt.Println("  down              Rollback the last migration")
	fmt.Println("  status            Show current and latest migration version")
	fmt.Println("  version           Alias for status")
	fmt.Println("  goto <version>    Migrate to a specific version")
	fmt.Println("  force <version>   Force set migration version (use with caution)")
	fmt.Println()
	fmt.Println("The database path comes from [storage] path in the config file.")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  atlas-analytics migrate up")
	fmt.Println("  atlas-analytics migrate status")
	fmt.Println("  atlas-analytics migrate goto 1")
}
