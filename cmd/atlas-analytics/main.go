// Command atlas-analytics serves and prints the analytics views built from
// the precomputed Atlas Conquest aggregate files.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/RossFW/atlas-conquest/internal/analytics/view"
	"github.com/RossFW/atlas-conquest/internal/config"
	"github.com/RossFW/atlas-conquest/internal/dataset"
	"github.com/RossFW/atlas-conquest/internal/storage"
	"github.com/RossFW/atlas-conquest/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command, args := os.Args[1], os.Args[2:]
	switch command {
	case "serve":
		runServeCommand(args)
	case "show":
		runShowCommand(args)
	case "charts":
		runChartsCommand(args)
	case "export":
		runExportCommand(args)
	case "saved":
		runSavedCommand(args)
	case "migrate":
		runMigrationCommand(args)
	case "version", "-v", "--version":
		fmt.Printf("atlas-analytics %s\n", version.GetVersion())
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Atlas Conquest Analytics")
	fmt.Println("========================")
	fmt.Println()
	fmt.Println("Usage: atlas-analytics <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve      - Run the HTTP API with live reload of the data directory")
	fmt.Println("  show       - Print a page to the terminal")
	fmt.Println("  charts     - Write a page's charts as an HTML file")
	fmt.Println("  export     - Export a page's table as CSV or JSON")
	fmt.Println("  saved      - Manage saved views (list/save/show/delete)")
	fmt.Println("  migrate    - Run saved view database migrations")
	fmt.Println("  version    - Print the build version")
	fmt.Println()
	fmt.Println("Pages: home, commanders, cards, meta, mulligan, duration, actions, turns, players")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  atlas-analytics serve -port 8080")
	fmt.Println("  atlas-analytics show cards -faction skaal -sort name -dir asc")
	fmt.Println("  atlas-analytics show commanders -period 30d")
	fmt.Println("  atlas-analytics charts meta -open")
	fmt.Println("  atlas-analytics export players -format json -o players.json")
	fmt.Println("  atlas-analytics saved save \"Skaal cards\" cards -faction skaal")
	fmt.Println("  atlas-analytics migrate status")
	fmt.Println()
}

// globalFlags are accepted by every subcommand.
type globalFlags struct {
	configPath string
	dataDir    string
	debug      bool
}

func (g *globalFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&g.configPath, "config", "", "Config file path (default: ~/.atlas-analytics/config.toml)")
	fs.StringVar(&g.dataDir, "data", "", "Data directory override")
	fs.BoolVar(&g.debug, "debug", false, "Enable debug logging")
}

// load reads and validates the configuration and installs the default
// logger.
func (g *globalFlags) load() *config.Config {
	path := g.configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			log.Fatalf("Error resolving config path: %v", err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if g.dataDir != "" {
		cfg.Data.Dir = g.dataDir
	}
	if g.debug {
		cfg.App.DebugMode = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	level := slog.LevelInfo
	if cfg.App.DebugMode {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	return cfg
}

// loadStore reads the data directory once into a fresh store.
func loadStore(ctx context.Context, cfg *config.Config) (*dataset.Store, *dataset.Loader) {
	loader := dataset.NewLoader(cfg.Data.Dir, dataset.LoaderConfig{Periods: cfg.Periods.Keys})
	snap, err := loader.Load(ctx)
	if err != nil {
		log.Fatalf("Error loading data from %s: %v", cfg.Data.Dir, err)
	}
	store := dataset.NewStore()
	store.Swap(snap)
	return store, loader
}

// openStorage opens the saved view database, or returns nil when disabled.
func openStorage(cfg *config.Config) *storage.DB {
	if cfg.Storage.Path == "" {
		return nil
	}
	dbCfg := storage.DefaultConfig(cfg.Storage.Path)
	dbCfg.AutoMigrate = cfg.Storage.AutoMigrate
	db, err := storage.Open(dbCfg)
	if err != nil {
		log.Fatalf("Error opening saved view database: %v", err)
	}
	return db
}

// requestFlags are the selector flags shared by show, charts, export and
// saved save.
type requestFlags struct {
	period    string
	faction   string
	commander string
	search    string
	sortKey   string
	dir       string
}

func (r *requestFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&r.period, "period", "", "Period key (e.g., all, 30d)")
	fs.StringVar(&r.faction, "faction", "", "Faction filter")
	fs.StringVar(&r.commander, "commander", "", "Commander scope (mulligan page)")
	fs.StringVar(&r.search, "search", "", "Free-text search")
	fs.StringVar(&r.sortKey, "sort", "", "Sort column key")
	fs.StringVar(&r.dir, "dir", "", "Sort direction (asc or desc)")
}

func (r *requestFlags) request(page view.Page) view.Request {
	q := map[string][]string{}
	for k, v := range map[string]string{
		"period":    r.period,
		"faction":   r.faction,
		"commander": r.commander,
		"search":    r.search,
		"sort":      r.sortKey,
		"dir":       r.dir,
	} {
		if v != "" {
			q[k] = []string{v}
		}
	}
	return view.RequestFromQuery(page, q)
}

// parsePageArgs parses "<page> [flags]" for a subcommand.
func parsePageArgs(name string, args []string, fs *flag.FlagSet) view.Page {
	if len(args) < 1 {
		fmt.Printf("Error: %s requires a page name\n", name)
		fmt.Printf("Usage: atlas-analytics %s <page> [options]\n", name)
		os.Exit(1)
	}
	page, err := view.ParsePage(args[0])
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	if err := fs.Parse(args[1:]); err != nil {
		os.Exit(1)
	}
	return page
}
