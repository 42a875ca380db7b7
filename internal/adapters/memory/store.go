// Package memory keeps catalog state in process memory. It is the default
// store; nothing survives a restart.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/domain"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/ports"
)

type Store struct {
	mu       sync.RWMutex
	partners []domain.Partner
	listings []domain.Listing // newest first
}

var (
	_ ports.PartnerRepository = (*Store)(nil)
	_ ports.ListingRepository = (*Store)(nil)
)

func NewStore() *Store { return &Store{} }

func (s *Store) CreatePartner(ctx context.Context, p domain.Partner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partners = append(s.partners, p)
	return nil
}

func (s *Store) GetPartner(ctx context.Context, id string) (domain.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.partners {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Partner{}, ports.ErrNotFound
}

func (s *Store) ListPartners(ctx context.Context) ([]domain.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.partners), nil
}

func (s *Store) CreateListing(ctx context.Context, l domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings = slices.Insert(s.listings, 0, cloneListing(l))
	return nil
}

func (s *Store) GetListing(ctx context.Context, id string) (domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return cloneListing(s.listings[i]), nil
	}
	return domain.Listing{}, ports.ErrNotFound
}

func (s *Store) ListListings(ctx context.Context, f ports.ListingFilter) ([]domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]domain.Listing, 0, len(s.listings))
	for _, l := range s.listings {
		switch {
		case f.PartnerID != "" && l.PartnerID != f.PartnerID:
			continue
		case f.Category != "" && l.Category != f.Category:
			continue
		case f.OnlyFlagged && !l.Flagged:
			continue
		case !f.IncludeHidden && !f.OnlyFlagged && l.Flagged:
			continue
		case q != "" && !strings.Contains(strings.ToLower(l.Title), q) && !strings.Contains(strings.ToLower(l.Location), q):
			continue
		}
		out = append(out, cloneListing(l))
	}
	return out, nil
}

func (s *Store) UpdateVerdict(ctx context.Context, id string, v domain.ListingVerdict) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return ports.ErrNotFound
	}
	s.listings[i].Verified = v.Verified
	s.listings[i].Flagged = v.Flagged
	s.listings[i].FlagReason = v.Reason
	return nil
}

func (s *Store) DeleteListing(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return ports.ErrNotFound
	}
	s.listings = slices.Delete(s.listings, i, i+1)
	return nil
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.listings, func(l domain.Listing) bool { return l.ID == id })
}

func cloneListing(l domain.Listing) domain.Listing {
	l.Features = slices.Clone(l.Features)
	l.Images = slices.Clone(l.Images)
	if l.Rating != nil {
		r := *l.Rating
		l.Rating = &r
	}
	return l
}
