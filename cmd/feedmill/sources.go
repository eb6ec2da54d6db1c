package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/nkemp/feedmill/artstore"
	"github.com/nkemp/feedmill/config"
	"github.com/nkemp/feedmill/scraper"
	"github.com/nkemp/feedmill/sources"
)

func openSourceStore(cfg *config.FileConfig, path string) (*sources.Store, error) {
	if path == "" {
		path = getEnv("FEEDMILL_SOURCES_DSN", cfg.SourcesPath())
	}
	if err := os.MkdirAll(dirOf(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return sources.NewStore(path)
}

func runSources(cfg *config.FileConfig, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: feedmill sources <list|add|delete|enable|disable> [flags]")
	}

	sub := args[0]
	fs := flag.NewFlagSet("sources "+sub, flag.ExitOnError)
	dbPath := fs.String("db", "", "Path to source database (FEEDMILL_SOURCES_DSN)")
	kind := fs.String("kind", sources.KindFeed, "Source kind: feed or html")
	name := fs.String("name", "", "Display name (defaults to the address)")
	selectors := fs.String("selectors", "", "JSON selector overrides for html sources")
	deleteArticles := fs.Bool("delete-articles", false, "On delete, also remove the source's stored articles")
	articlesPath := fs.String("articles-db", "", "Path to article database (FEEDMILL_ARTICLES_DSN)")
	fs.Parse(args[1:])

	store, err := openSourceStore(cfg, *dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	switch sub {
	case "list":
		srcs, err := store.List()
		if err != nil {
			return err
		}
		for _, src := range srcs {
			state := "disabled"
			if src.IsEnabled() {
				state = "enabled"
			}
			fmt.Printf("%s  %-4s  %-8s  %s  (%s)\n", src.ID, src.Kind, state, src.Address, src.Name)
		}
		return nil

	case "add":
		if fs.NArg() < 1 {
			return fmt.Errorf("usage: feedmill sources add [flags] <address>")
		}
		var cfgOverride *scraper.SelectorConfig
		if *selectors != "" {
			var sc scraper.SelectorConfig
			if err := json.Unmarshal([]byte(*selectors), &sc); err != nil {
				return fmt.Errorf("invalid -selectors JSON: %w", err)
			}
			cfgOverride = &sc
		}
		src, err := store.Create(*kind, fs.Arg(0), *name, cfgOverride)
		if err != nil {
			return err
		}
		fmt.Printf("added %s %s\n", src.Kind, src.ID)
		return nil

	case "delete":
		id, err := parseSourceID(fs)
		if err != nil {
			return err
		}
		if err := store.Delete(id); err != nil {
			return err
		}
		if *deleteArticles {
			path := *articlesPath
			if path == "" {
				path = getEnv("FEEDMILL_ARTICLES_DSN", cfg.ArticlesPath())
			}
			artStore, err := artstore.NewStore(path)
			if err != nil {
				return err
			}
			defer artStore.Close()
			deleted, err := artStore.DeleteBySource(id)
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d stored articles\n", deleted)
		}
		return nil

	case "enable", "disable":
		id, err := parseSourceID(fs)
		if err != nil {
			return err
		}
		return store.SetEnabled(id, sub == "enable")

	default:
		return fmt.Errorf("unknown sources subcommand %q", sub)
	}
}

func parseSourceID(fs *flag.FlagSet) (uuid.UUID, error) {
	if fs.NArg() < 1 {
		return uuid.Nil, fmt.Errorf("source id required")
	}
	id, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid source id %q: %w", fs.Arg(0), err)
	}
	return id, nil
}
