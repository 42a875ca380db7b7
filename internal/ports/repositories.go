package ports

import (
	"context"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/domain"
)

// PartnerRepository stores onboarded partners.
type PartnerRepository interface {
	CreatePartner(ctx context.Context, p domain.Partner) error
	GetPartner(ctx context.Context, id string) (domain.Partner, error)
	ListPartners(ctx context.Context) ([]domain.Partner, error)
}

// ListingFilter narrows the public catalog. Zero values mean no constraint.
type ListingFilter struct {
	PartnerID     string
	Category      domain.AssetCategory
	Query         string
	IncludeHidden bool // include flagged listings
	OnlyFlagged   bool
}

// ListingRepository stores screened listings, newest first.
type ListingRepository interface {
	CreateListing(ctx context.Context, l domain.Listing) error
	GetListing(ctx context.Context, id string) (domain.Listing, error)
	ListListings(ctx context.Context, f ListingFilter) ([]domain.Listing, error)
	UpdateVerdict(ctx context.Context, id string, v domain.ListingVerdict) error
	DeleteListing(ctx context.Context, id string) error
}

// AlertStore holds the bounded operator alert feed.
type AlertStore interface {
	Prepend(alerts []domain.SecurityAlert, capacity int)
	Recent() []domain.SecurityAlert
}

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errString("not found")

type errString string

func (e errString) Error() string { return string(e) }
