package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/adapters/memory"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/config"
)

func TestOpenCatalogDefaultsToMemory(t *testing.T) {
	c, err := OpenCatalog(context.Background(), config.Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if c.Name != "memory" {
		t.Fatalf("store = %s", c.Name)
	}
	if _, ok := c.Partners.(*memory.Store); !ok {
		t.Fatalf("partners = %T", c.Partners)
	}
}

func TestActivitySource(t *testing.T) {
	live := memory.NewActivityLog(4)
	if got := ActivitySource(config.Scan{Source: "requests"}, live); got != live {
		t.Fatalf("requests source = %T", got)
	}
	sample := ActivitySource(config.Scan{Source: "sample"}, live)
	if lines := sample.Drain(2); len(lines) != 2 || lines[1] != memory.DefaultSampleLines[3] {
		t.Fatalf("sample drain = %q", lines)
	}
}
