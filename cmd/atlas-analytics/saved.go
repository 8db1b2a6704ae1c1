package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/RossFW/atlas-conquest/internal/analytics/view"
	"github.com/RossFW/atlas-conquest/internal/storage"
)

func runSavedCommand(args []string) {
	if len(args) < 1 {
		printSavedUsage()
		os.Exit(1)
	}

	command, rest := args[0], args[1:]
	ctx := context.Background()

	switch command {
	case "list", "ls":
		fs := flag.NewFlagSet("saved list", flag.ExitOnError)
		var g globalFlags
		g.register(fs)
		pageName := fs.String("page", "", "Only list views for this page")
		if err := fs.Parse(rest); err != nil {
			os.Exit(1)
		}

		var page view.Page
		if *pageName != "" {
			p, err := view.ParsePage(*pageName)
			if err != nil {
				log.Fatalf("Error: %v", err)
			}
			page = p
		}

		repo, closeDB := savedRepo(g.load())
		defer closeDB()

		views, err := repo.List(ctx, page)
		if err != nil {
			log.Fatalf("Error listing saved views: %v", err)
		}
		displaySavedViews(views)

	case "save":
		if len(rest) < 2 {
			fmt.Println("Error: save requires a name and a page")
			fmt.Println("Usage: atlas-analytics saved save <name> <page> [selector options]")
			os.Exit(1)
		}
		name := rest[0]
		fs := flag.NewFlagSet("saved save", flag.ExitOnError)
		var g globalFlags
		var rf requestFlags
		g.register(fs)
		rf.register(fs)
		page := parsePageArgs("saved save <name>", rest[1:], fs)

		repo, closeDB := savedRepo(g.load())
		defer closeDB()

		sv, err := repo.Create(ctx, name, rf.request(page))
		if err != nil {
			log.Fatalf("Error saving view: %v", err)
		}
		fmt.Printf("Saved %q as %s\n", sv.Name, sv.ID)

	case "show":
		if len(rest) < 1 {
			fmt.Println("Error: show requires a saved view id")
			os.Exit(1)
		}
		fs := flag.NewFlagSet("saved show", flag.ExitOnError)
		var g globalFlags
		g.register(fs)
		if err := fs.Parse(rest[1:]); err != nil {
			os.Exit(1)
		}

		cfg := g.load()
		repo, closeDB := savedRepo(cfg)
		defer closeDB()

		sv, err := repo.Use(ctx, rest[0])
		if err != nil {
			log.Fatalf("Error loading saved view: %v", err)
		}
		store, _ := loadStore(ctx, cfg)
		m, err := view.NewEngine(cfg.Engine()).Render(store.Current(), sv.Request)
		if err != nil {
			log.Fatalf("Error rendering saved view: %v", err)
		}
		fmt.Printf("Saved view: %s\n\n", sv.Name)
		displayView(m)

	case "delete", "rm":
		if len(rest) < 1 {
			fmt.Println("Error: delete requires a saved view id")
			os.Exit(1)
		}
		fs := flag.NewFlagSet("saved delete", flag.ExitOnError)
		var g globalFlags
		g.register(fs)
		if err := fs.Parse(rest[1:]); err != nil {
			os.Exit(1)
		}

		repo, closeDB := savedRepo(g.load())
		defer closeDB()

		if err := repo.Delete(ctx, rest[0]); err != nil {
			log.Fatalf("Error deleting saved view: %v", err)
		}
		fmt.Println("Saved view deleted.")

	default:
		fmt.Printf("Unknown saved command: %s\n\n", command)
		printSavedUsage()
		os.Exit(1)
	}
}

func displaySavedViews(views []*storage.SavedView) {
	if len(views) == 0 {
		fmt.Println("No saved views.")
		return
	}

	fmt.Println("Saved Views")
	fmt.Println("===========")
	fmt.Println()
	for _, sv := range views {
		used := "never used"
		if sv.LastUsedAt != nil {
			used = fmt.Sprintf("used %d times, last %s", sv.UseCount, humanize.Time(*sv.LastUsedAt))
		}
		fmt.Printf("%-36s  %-24s %-11s %s\n", sv.ID, sv.Name, sv.Request.Page, used)
		if q := sv.Request.Query().Encode(); q != "" {
			fmt.Printf("%-36s  %s\n", "", q)
		}
	}
	fmt.Println()
}

func printSavedUsage() {
	fmt.Println("Atlas Conquest Analytics - Saved Views")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  atlas-analytics saved <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  list [-page <page>]                 List saved views")
	fmt.Println("  save <name> <page> [selectors]      Save a selector state")
	fmt.Println("  show <id>                           Render a saved view")
	fmt.Println("  delete <id>                         Delete a saved view")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  atlas-analytics saved save \"Skaal cards\" cards -faction skaal -sort name -dir asc")
	fmt.Println("  atlas-analytics saved list -page cards")
}
