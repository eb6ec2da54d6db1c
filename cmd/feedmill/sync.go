package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nkemp/feedmill"
	"github.com/nkemp/feedmill/artstore"
	"github.com/nkemp/feedmill/config"
	"github.com/nkemp/feedmill/sources"
)

func dirOf(path string) string {
	if dir := filepath.Dir(path); dir != "" {
		return dir
	}
	return "."
}

func openStores(cfg *config.FileConfig, sourcesPath, articlesPath string) (*sources.Store, *artstore.Store, error) {
	srcStore, err := openSourceStore(cfg, sourcesPath)
	if err != nil {
		return nil, nil, err
	}

	if articlesPath == "" {
		articlesPath = getEnv("FEEDMILL_ARTICLES_DSN", cfg.ArticlesPath())
	}
	if err := os.MkdirAll(dirOf(articlesPath), 0o755); err != nil {
		srcStore.Close()
		return nil, nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	artStore, err := artstore.NewStore(articlesPath)
	if err != nil {
		srcStore.Close()
		return nil, nil, err
	}
	return srcStore, artStore, nil
}

func runSync(cfg *config.FileConfig, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	sourcesPath := fs.String("sources-db", "", "Path to source database (FEEDMILL_SOURCES_DSN)")
	articlesPath := fs.String("articles-db", "", "Path to article database (FEEDMILL_ARTICLES_DSN)")
	fetchTimeout := fs.Duration("fetch-timeout", getEnvDuration("FEEDMILL_FETCH_TIMEOUT", cfg.FetchTimeout()), "Timeout per source fetch (FEEDMILL_FETCH_TIMEOUT)")
	fs.Parse(args)

	srcStore, artStore, err := openStores(cfg, *sourcesPath, *articlesPath)
	if err != nil {
		return err
	}
	defer srcStore.Close()
	defer artStore.Close()

	pipeline := feedmill.NewPipeline(feedmill.NewHTTPFetcher(*fetchTimeout), artStore, log)
	service := feedmill.NewService(srcStore, pipeline, time.Hour, log)
	service.Sweep(context.Background())
	return nil
}

func runPurge(cfg *config.FileConfig, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("purge", flag.ExitOnError)
	articlesPath := fs.String("articles-db", "", "Path to article database (FEEDMILL_ARTICLES_DSN)")
	fs.Parse(args)

	path := *articlesPath
	if path == "" {
		path = getEnv("FEEDMILL_ARTICLES_DSN", cfg.ArticlesPath())
	}
	artStore, err := artstore.NewStore(path)
	if err != nil {
		return err
	}
	defer artStore.Close()

	pipeline := feedmill.NewPipeline(nil, artStore, log)
	result, err := pipeline.PurgeOlderThan(feedmill.RetentionHorizon)
	if err != nil {
		return err
	}
	fmt.Printf("purged %d of %d articles\n", result.DeletedCount, result.TotalChecked)
	return nil
}

func runServe(cfg *config.FileConfig, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	sourcesPath := fs.String("sources-db", "", "Path to source database (FEEDMILL_SOURCES_DSN)")
	articlesPath := fs.String("articles-db", "", "Path to article database (FEEDMILL_ARTICLES_DSN)")
	pollInterval := fs.Duration("poll-interval", getEnvDuration("FEEDMILL_POLL_INTERVAL", cfg.PollInterval()), "Interval between sweeps (FEEDMILL_POLL_INTERVAL)")
	fetchTimeout := fs.Duration("fetch-timeout", getEnvDuration("FEEDMILL_FETCH_TIMEOUT", cfg.FetchTimeout()), "Timeout per source fetch (FEEDMILL_FETCH_TIMEOUT)")
	fs.Parse(args)

	srcStore, artStore, err := openStores(cfg, *sourcesPath, *articlesPath)
	if err != nil {
		return err
	}
	defer srcStore.Close()
	defer artStore.Close()

	pipeline := feedmill.NewPipeline(feedmill.NewHTTPFetcher(*fetchTimeout), artStore, log)
	service := feedmill.NewService(srcStore, pipeline, *pollInterval, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	done := make(chan struct{})
	go func() {
		service.Run(ctx)
		close(done)
	}()

	select {
	case sig := <-sigChan:
		log.Info("shutting down", "signal", sig.String())
		cancel()
		service.Stop()
		select {
		case <-done:
		case <-time.After(30 * time.Second):
			log.Warn("shutdown timeout exceeded")
		}
	case <-done:
	}
	return nil
}
