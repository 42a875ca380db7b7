// Package app assembles adapters and services from configuration for the
// server and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/adapters/gemini"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/adapters/memory"
	pg "github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/adapters/postgres"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/config"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/metrics"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/ports"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/services/screening"
)

// Catalog is the partner and listing storage selected by configuration.
type Catalog struct {
	Name     string
	Partners ports.PartnerRepository
	Listings ports.ListingRepository
	Close    func()
}

// OpenCatalog connects to Postgres and applies migrations when a database
// URL is configured, otherwise it returns an empty in-memory catalog.
func OpenCatalog(ctx context.Context, cfg config.Config, log *slog.Logger) (Catalog, error) {
	if cfg.DatabaseURL == "" {
		s := memory.NewStore()
		log.Info("using in-memory catalog; data is lost on restart")
		return Catalog{Name: "memory", Partners: s, Listings: s, Close: func() {}}, nil
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return Catalog{}, fmt.Errorf("db connect: %w", err)
	}
	if err := db.Migrate(ctx, log); err != nil {
		db.Close()
		return Catalog{}, err
	}
	return Catalog{Name: "postgres", Partners: db, Listings: db, Close: db.Close}, nil
}

func NewClassifier(cfg config.Classifier, log *slog.Logger) *gemini.Client {
	if cfg.APIKey == "" {
		log.Warn("classifier API key not set; every listing will be flagged for manual review")
	}
	return gemini.New(gemini.Options{
		BaseURL:   cfg.BaseURL,
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
		Logger:    log,
	})
}

func ScreeningOptions(cfg config.Classifier, m *metrics.Metrics, log *slog.Logger) screening.Options {
	return screening.Options{
		Timeout:      cfg.Timeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Metrics:      m,
		Logger:       log,
	}
}

// ActivitySource picks what the log-scan worker reads: live request
// activity or the built-in sample lines.
func ActivitySource(cfg config.Scan, live *memory.ActivityLog) ports.ActivitySource {
	if cfg.Source == "sample" {
		return memory.SampleActivity{}
	}
	return live
}
