// Command propctl screens listings and activity logs from the terminal and
// manages the catalog schema.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/adapters/postgres"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/app"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/config"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/domain"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/logging"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/ports"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/services/screening"
)

var (
	colorRed    = color.New(color.FgRed, color.Bold)
	colorGreen  = color.New(color.FgGreen, color.Bold)
	colorYellow = color.New(color.FgYellow)
	colorCyan   = color.New(color.FgCyan)
)

type cli struct {
	configPath string
	verbose    bool

	// replaced in tests
	newClassifier func(cfg config.Config, log *slog.Logger) ports.Classifier
}

func main() {
	_ = godotenv.Load()
	c := &cli{newClassifier: func(cfg config.Config, log *slog.Logger) ports.Classifier {
		return app.NewClassifier(cfg.Classifier, log)
	}}
	if err := newRootCmd(c).Execute(); err != nil {
		colorRed.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "propctl",
		Short:         "Property hub screening and maintenance tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log classifier calls to stderr")
	root.AddCommand(c.screenCmd(), c.scanCmd(), c.migrateCmd())
	return root
}

func (c *cli) load(errOut io.Writer) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil && !errors.Is(err, config.ErrNoDatabase) {
		return cfg, nil, err
	}
	lc := cfg.Log
	lc.Format = "text"
	if !c.verbose {
		lc.Level = "error"
	}
	log, _ := logging.New(lc, errOut, "propctl")
	return cfg, log, nil
}

func (c *cli) screenCmd() *cobra.Command {
	var title, description, price, location, typ string
	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Screen one listing for authenticity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("--price: %w", err)
			}
			draft, err := domain.ListingDraft{
				Title: title, Description: description, Price: p, Location: location, Type: domain.ListingType(typ),
			}.Check()
			if err != nil {
				return err
			}
			cfg, log, err := c.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			s := screening.NewListingScreener(c.newClassifier(cfg, log), app.ScreeningOptions(cfg.Classifier, nil, log))
			v := s.ScreenListing(cmd.Context(), draft)
			printVerdict(cmd.OutOrStdout(), v)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "listing title")
	f.StringVar(&description, "description", "", "listing description")
	f.StringVar(&price, "price", "0", "asking price in NGN")
	f.StringVar(&location, "location", "", "listing location")
	f.StringVar(&typ, "type", "SALE", "SALE, LEASE, RENT or HOTEL")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("location")
	return cmd
}

func printVerdict(w io.Writer, v domain.ListingVerdict) {
	switch {
	case v.Flagged:
		colorRed.Fprint(w, "FLAGGED")
	case v.Verified:
		colorGreen.Fprint(w, "VERIFIED")
	default:
		colorYellow.Fprint(w, "UNVERIFIED")
	}
	fmt.Fprintf(w, "  %s\n", v.Reason)
}

func (c *cli) scanCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "scan [line...]",
		Short: "Scan activity log lines for threats",
		Long:  "Scan activity log lines given as arguments, or read one per line from --file (- for stdin).",
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := collectLines(cmd.InOrStdin(), file, args)
			if err != nil {
				return err
			}
			if len(lines) == 0 {
				return errors.New("no log lines given")
			}
			cfg, log, err := c.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			s := screening.NewLogScreener(c.newClassifier(cfg, log), app.ScreeningOptions(cfg.Classifier, nil, log))
			found := s.ScanLogs(cmd.Context(), lines)
			printAlerts(cmd.OutOrStdout(), found)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read log lines from a file")
	return cmd
}

func collectLines(stdin io.Reader, file string, args []string) ([]domain.LogLine, error) {
	var lines []domain.LogLine
	for _, a := range args {
		if a = strings.TrimSpace(a); a != "" {
			lines = append(lines, domain.LogLine(a))
		}
	}
	if file == "" {
		return lines, nil
	}
	r := stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if l := strings.TrimSpace(sc.Text()); l != "" {
			lines = append(lines, domain.LogLine(l))
		}
	}
	return lines, sc.Err()
}

func printAlerts(w io.Writer, alerts []domain.SecurityAlert) {
	if len(alerts) == 0 {
		colorGreen.Fprintln(w, "no threats found")
		return
	}
	for _, a := range alerts {
		sev := colorYellow
		switch a.Severity {
		case domain.SeverityHigh:
			sev = colorRed
		case domain.SeverityLow:
			sev = colorCyan
		}
		sev.Fprintf(w, "%-6s", a.Severity)
		fmt.Fprintf(w, " %-12s %s\n", a.Category, a.Message)
	}
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			lc := cfg.Log
			lc.Format = "text"
			log, _ := logging.New(lc, cmd.ErrOrStderr(), "propctl")
			db, err := postgres.Connect(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("db connect: %w", err)
			}
			defer db.Close()
			if err := db.Migrate(cmd.Context(), log); err != nil {
				return err
			}
			colorGreen.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}
