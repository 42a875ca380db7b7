// Package api holds the JSON shapes of the HTTP surface and their
// conversions to and from domain types.
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/domain"
)

type Health struct {
	Status     string `json:"status"`
	Store      string `json:"store"`
	Classifier string `json:"classifier"`
}

type Error struct {
	Error string `json:"error"`
}

// ListingDraft is the body of POST /screen/listing.
type ListingDraft struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Location    string          `json:"location"`
	Type        string          `json:"type"`
}

type Verdict struct {
	Verified bool   `json:"verified"`
	Flagged  bool   `json:"flagged"`
	Reason   string `json:"reason"`
}

type LogBatch struct {
	Lines []string `json:"lines"`
}

type Alert struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

// ListingSubmission is the body of POST /partners/{partnerID}/listings.
// Features may be sent as a list or as one comma-separated string.
type ListingSubmission struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Location    string          `json:"location"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Features    []string        `json:"features,omitempty"`
	FeatureText string          `json:"featureText,omitempty"`
	Images      []string        `json:"images,omitempty"`
}

type Listing struct {
	ID          string          `json:"id"`
	PartnerID   string          `json:"partnerId"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Location    string          `json:"location"`
	Features    []string        `json:"features"`
	Images      []string        `json:"images"`
	Rating      *int            `json:"rating,omitempty"`
	Verified    bool            `json:"verified"`
	Flagged     bool            `json:"flagged"`
	FlagReason  string          `json:"flagReason,omitempty"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type PartnerOnboarding struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	Email         string `json:"email"`
	ContactPerson string `json:"contactPerson"`
}

type Partner struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Email         string    `json:"email"`
	Domain        string    `json:"domain"`
	ContactPerson string    `json:"contactPerson"`
	IsApproved    bool      `json:"isApproved"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Review struct {
	Action string `json:"action"`
}

func (d ListingDraft) Domain() domain.ListingDraft {
	return domain.ListingDraft{
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		Location:    d.Location,
		Type:        domain.ListingType(d.Type),
	}
}

func FromVerdict(v domain.ListingVerdict) Verdict {
	return Verdict{Verified: v.Verified, Flagged: v.Flagged, Reason: v.Reason}
}

func (b LogBatch) Domain() []domain.LogLine {
	out := make([]domain.LogLine, len(b.Lines))
	for i, l := range b.Lines {
		out[i] = domain.LogLine(l)
	}
	return out
}

func FromAlerts(in []domain.SecurityAlert) []Alert {
	out := make([]Alert, len(in))
	for i, a := range in {
		out[i] = Alert{
			ID:        a.ID,
			Type:      string(a.Category),
			Message:   a.Message,
			Severity:  string(a.Severity),
			Timestamp: a.Timestamp.UTC(),
		}
	}
	return out
}

func FromListing(l domain.Listing) Listing {
	features, images := l.Features, l.Images
	if features == nil {
		features = []string{}
	}
	if images == nil {
		images = []string{}
	}
	return Listing{
		ID:          l.ID,
		PartnerID:   l.PartnerID,
		Title:       l.Title,
		Description: l.Description,
		Type:        string(l.Type),
		Category:    string(l.Category),
		Price:       l.Price,
		Location:    l.Location,
		Features:    features,
		Images:      images,
		Rating:      l.Rating,
		Verified:    l.Verified,
		Flagged:     l.Flagged,
		FlagReason:  l.FlagReason,
		Status:      string(l.Status()),
		CreatedAt:   l.CreatedAt.UTC(),
	}
}

func FromListings(in []domain.Listing) []Listing {
	out := make([]Listing, len(in))
	for i, l := range in {
		out[i] = FromListing(l)
	}
	return out
}

func FromPartner(p domain.Partner) Partner {
	return Partner{
		ID:            p.ID,
		Name:          p.Name,
		Type:          string(p.Kind),
		Email:         p.Email,
		Domain:        p.Domain,
		ContactPerson: p.ContactPerson,
		IsApproved:    p.Approved,
		CreatedAt:     p.CreatedAt.UTC(),
	}
}

func FromPartners(in []domain.Partner) []Partner {
	out := make([]Partner, len(in))
	for i, p := range in {
		out[i] = FromPartner(p)
	}
	return out
}
