package seed

import (
	"context"
	"testing"
	"time"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/adapters/memory"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/domain"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/ports"
)

func TestLoadSeedsOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	store := memory.NewStore()

	c, err := Load(ctx, store, store, now)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Partners) != 2 || len(c.Listings) != 3 {
		t.Fatalf("catalog = %d partners, %d listings", len(c.Partners), len(c.Listings))
	}

	listings, _ := store.ListListings(ctx, ports.ListingFilter{})
	if len(listings) != 3 || listings[0].ID != "l1" || listings[2].ID != "l3" {
		t.Fatalf("stored order = %+v", listings)
	}
	suite, _ := store.GetListing(ctx, "l3")
	if suite.Rating == nil || *suite.Rating != 5 || suite.Category != domain.CategoryHotelRoom || suite.Price.String() != "250000" {
		t.Fatalf("suite = %+v", suite)
	}
	if !suite.CreatedAt.Equal(now.Add(-48 * time.Hour)) {
		t.Fatalf("created at = %v", suite.CreatedAt)
	}
	p, _ := store.GetPartner(ctx, "p2")
	if p.Domain != "transcorp.com" || p.Kind != domain.PartnerHotel {
		t.Fatalf("partner = %+v", p)
	}

	again, err := Load(ctx, store, store, now)
	if err != nil || len(again.Partners) != 0 {
		t.Fatalf("second Load = %+v, %v", again, err)
	}
	if all, _ := store.ListPartners(ctx); len(all) != 2 {
		t.Fatalf("partners duplicated: %d", len(all))
	}
}

func TestParseRejectsUnknownEnums(t *testing.T) {
	_, err := Parse([]byte("partners:\n  - id: x\n    type: CASINO\n"), time.Now())
	if err == nil {
		t.Fatal("expected error")
	}
}
