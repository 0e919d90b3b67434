package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"foodorder/internal/config"
	"foodorder/internal/db"
	"foodorder/internal/domain"
	"foodorder/internal/importer"
	"foodorder/internal/repository/menu"
)

func main() {
	var (
		filePath string
		branchID string
	)
	flag.StringVar(&filePath, "file", "", "Path to menu item CSV export")
	flag.StringVar(&branchID, "branch", "", "Branch id to offer every imported item at (optional)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	repo := menu.NewPostgres(pool)
	writer := importer.ItemWriter(repo)
	if branchID != "" {
		writer = offeringWriter{repo: repo, branchID: branchID}
	}

	start := time.Now()
	count, err := importer.NewCSVImporter(f, writer).Run(ctx)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	fmt.Printf("Imported %d menu items in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}

// offeringWriter upserts the item and offers it at one branch.
type offeringWriter struct {
	repo     menu.Repository
	branchID string
}

func (w offeringWriter) UpsertItem(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	saved, err := w.repo.UpsertItem(ctx, item)
	if err != nil {
		return nil, err
	}
	if err := w.repo.Offer(ctx, w.branchID, saved.ID); err != nil {
		return nil, err
	}
	return saved, nil
}
