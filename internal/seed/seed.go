// Package seed loads the starter catalog: the launch partners and their
// already-verified listings.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/domain"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/ports"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/services/partners"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type partnerDoc struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	Type          string `yaml:"type"`
	Email         string `yaml:"email"`
	ContactPerson string `yaml:"contact_person"`
}

type listingDoc struct {
	ID          string        `yaml:"id"`
	PartnerID   string        `yaml:"partner_id"`
	Title       string        `yaml:"title"`
	Description string        `yaml:"description"`
	Type        string        `yaml:"type"`
	Category    string        `yaml:"category"`
	Price       string        `yaml:"price"`
	Location    string        `yaml:"location"`
	Features    []string      `yaml:"features"`
	Images      []string      `yaml:"images"`
	Rating      *int          `yaml:"rating"`
	Age         time.Duration `yaml:"age"`
}

type Catalog struct {
	Partners []domain.Partner
	Listings []domain.Listing
}

// Parse decodes a catalog document. Listing ages are relative to now.
func Parse(b []byte, now time.Time) (Catalog, error) {
	var doc struct {
		Partners []partnerDoc `yaml:"partners"`
		Listings []listingDoc `yaml:"listings"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return Catalog{}, fmt.Errorf("parse seed catalog: %w", err)
	}

	var c Catalog
	for _, p := range doc.Partners {
		kind, ok := domain.ParsePartnerKind(p.Type)
		if !ok {
			return Catalog{}, fmt.Errorf("seed partner %s: unknown type %q", p.ID, p.Type)
		}
		c.Partners = append(c.Partners, domain.Partner{
			ID: p.ID, Name: p.Name, Kind: kind, Email: p.Email,
			Domain:        partners.RegistrableDomain(p.Email),
			ContactPerson: p.ContactPerson,
			Approved:      true,
			CreatedAt:     now,
		})
	}
	for _, l := range doc.Listings {
		typ, ok := domain.ParseListingType(l.Type)
		if !ok {
			return Catalog{}, fmt.Errorf("seed listing %s: unknown type %q", l.ID, l.Type)
		}
		cat, ok := domain.ParseAssetCategory(l.Category)
		if !ok {
			return Catalog{}, fmt.Errorf("seed listing %s: unknown category %q", l.ID, l.Category)
		}
		price, err := decimal.NewFromString(l.Price)
		if err != nil {
			return Catalog{}, fmt.Errorf("seed listing %s: price: %w", l.ID, err)
		}
		c.Listings = append(c.Listings, domain.Listing{
			ID: l.ID, PartnerID: l.PartnerID, Title: l.Title, Description: l.Description,
			Type: typ, Category: cat, Price: price, Location: l.Location,
			Features: l.Features, Images: l.Images, Rating: l.Rating,
			Verified:  true,
			CreatedAt: now.Add(-l.Age),
		})
	}
	return c, nil
}

// Load writes the embedded catalog into empty repositories. Listings are
// inserted oldest first so the store keeps them newest first.
func Load(ctx context.Context, pr ports.PartnerRepository, lr ports.ListingRepository, now time.Time) (Catalog, error) {
	c, err := Parse(defaultCatalog, now)
	if err != nil {
		return Catalog{}, err
	}
	existing, err := pr.ListPartners(ctx)
	if err != nil {
		return Catalog{}, err
	}
	if len(existing) > 0 {
		return Catalog{}, nil
	}
	for _, p := range c.Partners {
		if err := pr.CreatePartner(ctx, p); err != nil {
			return Catalog{}, fmt.Errorf("seed partner %s: %w", p.ID, err)
		}
	}
	for i := len(c.Listings) - 1; i >= 0; i-- {
		if err := lr.CreateListing(ctx, c.Listings[i]); err != nil {
			return Catalog{}, fmt.Errorf("seed listing %s: %w", c.Listings[i].ID, err)
		}
	}
	return c, nil
}
