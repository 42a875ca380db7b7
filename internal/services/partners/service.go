package partners

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/net/publicsuffix"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/domain"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/ports"
)

type Onboarding struct {
	Name          string
	Kind          string
	Email         string
	ContactPerson string
}

type Service struct {
	repo  ports.PartnerRepository
	clock clockwork.Clock
}

func New(repo ports.PartnerRepository, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{repo: repo, clock: clock}
}

// Onboard registers a vetted partner. Partners onboarded by an admin are
// approved immediately.
func (s *Service) Onboard(ctx context.Context, in Onboarding) (domain.Partner, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Partner{}, fmt.Errorf("%w: name is required", domain.ErrInvalid)
	}
	kind, ok := domain.ParsePartnerKind(in.Kind)
	if !ok {
		return domain.Partner{}, fmt.Errorf("%w: unknown partner type %q", domain.ErrInvalid, in.Kind)
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(in.Email))
	if err != nil {
		return domain.Partner{}, fmt.Errorf("%w: email: %v", domain.ErrInvalid, err)
	}
	p := domain.Partner{
		ID:            uuid.NewString(),
		Name:          name,
		Kind:          kind,
		Email:         addr.Address,
		Domain:        RegistrableDomain(addr.Address),
		ContactPerson: strings.TrimSpace(in.ContactPerson),
		Approved:      true,
		CreatedAt:     s.clock.Now().UTC(),
	}
	if err := s.repo.CreatePartner(ctx, p); err != nil {
		return domain.Partner{}, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Partner, error) {
	return s.repo.GetPartner(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Partner, error) {
	return s.repo.ListPartners(ctx)
}

// RegistrableDomain returns the eTLD+1 of an email address's host, falling
// back to the bare host.
func RegistrableDomain(email string) string {
	host := strings.ToLower(email[strings.LastIndex(email, "@")+1:])
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return registrable
}
