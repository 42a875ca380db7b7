package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/adapters/http"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/adapters/memory"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/app"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/config"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/logging"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/metrics"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/seed"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/services/alerts"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/services/listings"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/services/partners"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/services/screening"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/workers/logscan"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: .env: %v", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil && !errors.Is(err, config.ErrNoDatabase) {
		log.Fatalf("config: %v", err)
	}
	logger, lerr := logging.New(cfg.Log, os.Stdout, "prophub")
	if lerr != nil {
		logger.Warn("falling back to info logging", "err", lerr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	catalog, err := app.OpenCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer catalog.Close()

	clock := clockwork.NewRealClock()
	if cfg.SeedCatalog {
		c, err := seed.Load(ctx, catalog.Partners, catalog.Listings, clock.Now())
		if err != nil {
			return err
		}
		if len(c.Partners) > 0 {
			logger.Info("seeded catalog", "partners", len(c.Partners), "listings", len(c.Listings))
		}
	}

	m := metrics.New()
	classifier := app.NewClassifier(cfg.Classifier, logger)
	opts := app.ScreeningOptions(cfg.Classifier, m, logger)
	opts.Clock = clock
	listingScreener := screening.NewListingScreener(classifier, opts)
	logScreener := screening.NewLogScreener(classifier, opts)

	feed := alerts.New(memory.NewAlertStore())
	activity := memory.NewActivityLog(0)

	srv := httpadapter.New(httpadapter.Deps{
		Listings:        listings.New(catalog.Listings, catalog.Partners, listingScreener, clock),
		Partners:        partners.New(catalog.Partners, clock),
		Alerts:          feed,
		ListingScreener: listingScreener,
		LogScreener:     logScreener,
		Activity:        activity,
		Metrics:         m,
		Logger:          logger,
		StoreName:       catalog.Name,
		ClassifierName:  classifier.Name(),
	})
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.ListenAddr, "store", catalog.Name, "env", cfg.Env)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	if cfg.Scan.Enabled {
		g.Go(func() error {
			logscan.Run(gctx, app.ActivitySource(cfg.Scan, activity), logScreener, feed, logscan.Config{
				Interval:  cfg.Scan.Interval,
				BatchSize: cfg.Scan.BatchSize,
				Clock:     clock,
				Logger:    logger,
			})
			return nil
		})
		logger.Info("log scan worker started", "interval", cfg.Scan.Interval, "source", cfg.Scan.Source)
	}
	return g.Wait()
}
