// Command import copies the JSON file store into the SQLite database, for
// switching STORAGE_DRIVER from file to sqlite without losing links.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"anomonus-bot/internal/infra/filestore"
	"anomonus-bot/internal/infra/sqlite3"
	"anomonus-bot/internal/storage"
	"anomonus-bot/internal/stories/links"
	"anomonus-bot/internal/stories/reconcile"
)

type source interface {
	ListLinks(ctx context.Context) ([]*links.Link, error)
	ListActivationFailures(ctx context.Context, criteria reconcile.ListCriteria) ([]*reconcile.Failure, error)
}

type target interface {
	UpsertLink(ctx context.Context, link links.Link) error
	CreateActivationFailure(ctx context.Context, failure reconcile.Failure) error
}

func main() {
	linksPath := flag.String("links", "./data/user_hashes.json", "path to the JSON link file")
	failuresPath := flag.String("failures", "./data/activation_failures.json", "path to the JSON activation failures file")
	dbPath := flag.String("db", "./data/anomonus.db", "path to the SQLite database")
	dryRun := flag.Bool("dry-run", false, "report what would be imported without writing")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := run(context.Background(), *linksPath, *failuresPath, *dbPath, *dryRun, logger); err != nil {
		logger.Error("Import failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, linksPath, failuresPath, dbPath string, dryRun bool, logger *slog.Logger) error {
	// The subscriber list is cleared on every start, so only links and
	// failures are worth carrying over.
	src, err := filestore.Open(linksPath, os.DevNull, failuresPath)
	if err != nil {
		return fmt.Errorf("open file store: %w", err)
	}

	if dryRun {
		return copyAll(ctx, src, nil, logger)
	}

	db, err := sqlite3.New(ctx, sqlite3.WithPath(dbPath))
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	return copyAll(ctx, src, storage.New(db.DB), logger)
}

// copyAll copies links and failures from src into dst. A nil dst only
// counts.
func copyAll(ctx context.Context, src source, dst target, logger *slog.Logger) error {
	all, err := src.ListLinks(ctx)
	if err != nil {
		return fmt.Errorf("list links: %w", err)
	}

	for _, link := range all {
		if dst == nil {
			continue
		}
		if err := dst.UpsertLink(ctx, *link); err != nil {
			return fmt.Errorf("import link for %d: %w", link.TelegramID, err)
		}
	}

	failures, err := src.ListActivationFailures(ctx, reconcile.ListCriteria{})
	if err != nil {
		return fmt.Errorf("list activation failures: %w", err)
	}

	for _, f := range failures {
		if dst == nil {
			continue
		}
		if err := dst.CreateActivationFailure(ctx, *f); err != nil {
			return fmt.Errorf("import failure %s: %w", f.ChargeID, err)
		}
	}

	logger.Info("Import finished",
		slog.Int("links", len(all)),
		slog.Int("activation_failures", len(failures)),
		slog.Bool("dry_run", dst == nil))
	return nil
}
