// Package main runs the HTTP server that accepts documents, synthesizes them
// into study units and flashcards in the background, and serves the results.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/phrazzld/scry-study/internal/platform/postgres"
)

func main() {
	migrateOnly := flag.Bool("migrate", false, "apply database migrations and exit without serving")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-migrate]\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintln(flag.CommandLine.Output(), "\nConfiguration is read from config.yaml and SCRY_* environment variables.")
	}
	flag.Parse()

	if err := run(context.Background(), *migrateOnly); err != nil {
		log.Fatalf("scry-study: %v", err)
	}
}

func run(ctx context.Context, migrateOnly bool) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if err := postgres.Migrate(ctx, db, logger); err != nil {
		closeDB(db, logger)
		return err
	}
	if migrateOnly {
		closeDB(db, logger)
		return nil
	}

	app, err := newApplication(ctx, cfg, logger, db)
	if err != nil {
		closeDB(db, logger)
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
