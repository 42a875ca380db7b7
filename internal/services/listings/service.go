package listings

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/domain"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/ports"
)

const (
	defaultHotelRating = 3
	approvedReason     = "Approved by administrator after manual review."
)

// Submission is a partner's listing form before screening.
type Submission struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Location    string
	Type        string
	Category    string
	Features    []string
	Images      []string
}

// CatalogFilter narrows the public catalog. Nil bounds are open.
type CatalogFilter struct {
	Category string
	Query    string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

type ReviewAction string

const (
	Approve ReviewAction = "approve"
	Reject  ReviewAction = "reject"
)

type Service struct {
	listings ports.ListingRepository
	partners ports.PartnerRepository
	screener ports.ListingScreener
	clock    clockwork.Clock
}

func New(listings ports.ListingRepository, partners ports.PartnerRepository, screener ports.ListingScreener, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{listings: listings, partners: partners, screener: screener, clock: clock}
}

// Submit validates a partner's listing, screens it once and stores it with
// the verdict. A flagged listing is stored but stays out of the catalog.
func (s *Service) Submit(ctx context.Context, partnerID string, in Submission) (domain.Listing, error) {
	partner, err := s.partners.GetPartner(ctx, partnerID)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("partner %s: %w", partnerID, err)
	}
	if !partner.Approved {
		return domain.Listing{}, fmt.Errorf("partner %s: %w", partnerID, domain.ErrNotApproved)
	}
	l, err := buildListing(partner, in)
	if err != nil {
		return domain.Listing{}, err
	}

	v := s.screener.ScreenListing(ctx, l.Draft())
	l.ID = uuid.NewString()
	l.Verified, l.Flagged, l.FlagReason = v.Verified, v.Flagged, v.Reason
	l.CreatedAt = s.clock.Now().UTC()

	if err := s.listings.CreateListing(ctx, l); err != nil {
		return domain.Listing{}, err
	}
	return l, nil
}

func buildListing(p domain.Partner, in Submission) (domain.Listing, error) {
	invalid := func(format string, args ...any) (domain.Listing, error) {
		return domain.Listing{}, fmt.Errorf("%w: %s", domain.ErrInvalid, fmt.Sprintf(format, args...))
	}
	d, err := domain.ListingDraft{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Location:    in.Location,
		Type:        domain.ListingType(in.Type),
	}.Check()
	if err != nil {
		return domain.Listing{}, err
	}
	l := domain.Listing{
		PartnerID:   p.ID,
		Title:       d.Title,
		Description: d.Description,
		Location:    d.Location,
		Price:       d.Price,
		Type:        d.Type,
		Features:    cleanList(in.Features),
		Images:      cleanList(in.Images),
	}

	var ok bool
	if l.Category, ok = domain.ParseAssetCategory(in.Category); !ok {
		return invalid("unknown category %q", in.Category)
	}
	if l.Type == domain.ListingHotel && p.Kind != domain.PartnerHotel {
		return invalid("only hotel partners can list bookings")
	}
	if (l.Category == domain.CategoryHotelRoom) != (p.Kind == domain.PartnerHotel) {
		return invalid("category %s is not available to %s partners", l.Category, p.Kind)
	}
	if l.Category == domain.CategoryHotelRoom {
		r := defaultHotelRating
		l.Rating = &r
	}
	return l, nil
}

// SplitFeatures turns a comma separated form field into a feature list.
func SplitFeatures(s string) []string {
	return cleanList(strings.Split(s, ","))
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Catalog lists what visitors may see: never a flagged listing.
func (s *Service) Catalog(ctx context.Context, f CatalogFilter) ([]domain.Listing, error) {
	rf := ports.ListingFilter{Query: f.Query}
	if f.Category != "" && !strings.EqualFold(f.Category, "ALL") {
		c, ok := domain.ParseAssetCategory(f.Category)
		if !ok {
			return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalid, f.Category)
		}
		rf.Category = c
	}
	all, err := s.listings.ListListings(ctx, rf)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, l := range all {
		if l.Flagged {
			continue
		}
		if f.MinPrice != nil && l.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && l.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// Public returns one listing for visitors; flagged listings are reported as
// not found.
func (s *Service) Public(ctx context.Context, id string) (domain.Listing, error) {
	l, err := s.listings.GetListing(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}
	if l.Flagged {
		return domain.Listing{}, ports.ErrNotFound
	}
	return l, nil
}

// ForPartner lists a partner's own uploads, flagged ones included.
func (s *Service) ForPartner(ctx context.Context, partnerID string) ([]domain.Listing, error) {
	if _, err := s.partners.GetPartner(ctx, partnerID); err != nil {
		return nil, fmt.Errorf("partner %s: %w", partnerID, err)
	}
	return s.listings.ListListings(ctx, ports.ListingFilter{PartnerID: partnerID, IncludeHidden: true})
}

// Flagged is the admin review queue.
func (s *Service) Flagged(ctx context.Context) ([]domain.Listing, error) {
	return s.listings.ListListings(ctx, ports.ListingFilter{OnlyFlagged: true})
}

// Review resolves a flagged listing by hand. Approve publishes it as
// verified; reject removes it.
func (s *Service) Review(ctx context.Context, id string, action ReviewAction) (domain.Listing, error) {
	l, err := s.listings.GetListing(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}
	switch action {
	case Approve:
		v := domain.ListingVerdict{Verified: true, Flagged: false, Reason: approvedReason}
		if err := s.listings.UpdateVerdict(ctx, id, v); err != nil {
			return domain.Listing{}, err
		}
		l.Verified, l.Flagged, l.FlagReason = v.Verified, v.Flagged, v.Reason
		return l, nil
	case Reject:
		return l, s.listings.DeleteListing(ctx, id)
	default:
		return domain.Listing{}, fmt.Errorf("%w: unknown review action %q", domain.ErrInvalid, action)
	}
}

// Rescreen runs the screener again, e.g. after a listing was flagged only
// because the classifier was down.
func (s *Service) Rescreen(ctx context.Context, id string) (domain.Listing, error) {
	l, err := s.listings.GetListing(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}
	v := s.screener.ScreenListing(ctx, l.Draft())
	if err := s.listings.UpdateVerdict(ctx, id, v); err != nil {
		return domain.Listing{}, err
	}
	l.Verified, l.Flagged, l.FlagReason = v.Verified, v.Flagged, v.Reason
	return l, nil
}
