package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/RossFW/atlas-conquest/internal/analytics/view"
	"github.com/RossFW/atlas-conquest/internal/charts"
	"github.com/RossFW/atlas-conquest/internal/export"
)

func runShowCommand(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	var g globalFlags
	var rf requestFlags
	g.register(fs)
	rf.register(fs)
	asJSON := fs.Bool("json", false, "Print the view model as JSON")
	page := parsePageArgs("show", args, fs)

	cfg := g.load()
	store, _ := loadStore(context.Background(), cfg)
	engine := view.NewEngine(cfg.Engine())

	m, err := engine.Render(store.Current(), rf.request(page))
	if err != nil {
		log.Fatalf("Error rendering %s: %v", page, err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m); err != nil {
			log.Fatalf("Error encoding view: %v", err)
		}
		return
	}
	displayView(m)
}

func runChartsCommand(args []string) {
	fs := flag.NewFlagSet("charts", flag.ExitOnError)
	var g globalFlags
	var rf requestFlags
	g.register(fs)
	rf.register(fs)
	output := fs.String("o", "", "Output HTML file (default: <charts.output_dir>/<page>.html)")
	open := fs.Bool("open", false, "Open the file in the default browser")
	page := parsePageArgs("charts", args, fs)

	cfg := g.load()
	store, _ := loadStore(context.Background(), cfg)
	engine := view.NewEngine(cfg.Engine())

	m, err := engine.Render(store.Current(), rf.request(page))
	if err != nil {
		log.Fatalf("Error rendering %s: %v", page, err)
	}

	path := *output
	if path == "" {
		path = filepath.Join(cfg.Charts.OutputDir, string(page)+".html")
	}
	if err := charts.RenderFile(m, chartConfig(cfg), path); err != nil {
		if errors.Is(err, charts.ErrNoCharts) {
			fmt.Printf("The %s page has no charts.\n", page)
			os.Exit(1)
		}
		log.Fatalf("Error writing charts: %v", err)
	}
	fmt.Printf("Charts written to %s\n", path)

	if *open {
		if err := charts.OpenInBrowser(path); err != nil {
			log.Printf("Failed to open browser: %v", err)
		}
	}
}

func runExportCommand(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	var g globalFlags
	var rf requestFlags
	g.register(fs)
	rf.register(fs)
	formatName := fs.String("format", "csv", "Export format (csv or json)")
	output := fs.String("o", "", "Output file (default: generated name in the current directory)")
	overwrite := fs.Bool("overwrite", false, "Overwrite an existing file")
	pretty := fs.Bool("pretty", true, "Indent JSON output")
	page := parsePageArgs("export", args, fs)

	format, err := export.ParseFormat(*formatName)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	cfg := g.load()
	store, _ := loadStore(context.Background(), cfg)
	engine := view.NewEngine(cfg.Engine())

	m, err := engine.Render(store.Current(), rf.request(page))
	if err != nil {
		log.Fatalf("Error rendering %s: %v", page, err)
	}

	path := *output
	if path == "" {
		path = export.GenerateFilename(page, format)
	}
	exporter := export.NewExporter(export.Options{
		Format:     format,
		FilePath:   path,
		PrettyJSON: *pretty,
		Overwrite:  *overwrite,
	})
	if err := exporter.ExportView(m); err != nil {
		if errors.Is(err, export.ErrNotExportable) {
			fmt.Printf("The %s page has no table to export.\n", page)
			os.Exit(1)
		}
		log.Fatalf("Error exporting: %v", err)
	}
	fmt.Printf("Exported %s to %s\n", page, path)
}
