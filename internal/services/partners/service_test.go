package partners

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/adapters/memory"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/domain"
)

func TestRegistrableDomain(t *testing.T) {
	cases := map[string]string{
		"info@lagosprime.com":              "lagosprime.com",
		"bookings@mail.transcorp.com.ng":   "transcorp.com.ng",
		"someone@sub.example.co.uk":        "example.co.uk",
		"root@localhost":                   "localhost",
	}
	for in, want := range cases {
		if got := RegistrableDomain(in); got != want {
			t.Errorf("RegistrableDomain(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOnboard(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := New(memory.NewStore(), clockwork.NewFakeClockAt(now))

	p, err := svc.Onboard(ctx, Onboarding{Name: " Lagos Prime Estates ", Kind: "real_estate", Email: "info@lagosprime.com", ContactPerson: "Segun Adebayo"})
	if err != nil {
		t.Fatalf("Onboard: %v", err)
	}
	if p.ID == "" || !p.Approved || p.Kind != domain.PartnerRealEstate || p.Name != "Lagos Prime Estates" || p.Domain != "lagosprime.com" || !p.CreatedAt.Equal(now) {
		t.Fatalf("partner = %+v", p)
	}
	got, err := svc.Get(ctx, p.ID)
	if err != nil || got.ID != p.ID {
		t.Fatalf("Get = %+v, %v", got, err)
	}

	all, _ := svc.List(ctx)
	if len(all) != 1 {
		t.Fatalf("List = %d partners", len(all))
	}
}

// Branches of one group share a mail domain and are onboarded separately.
func TestOnboardSameDomainConcurrently(t *testing.T) {
	ctx := context.Background()
	svc := New(memory.NewStore(), nil)

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Onboard(ctx, Onboarding{
				Name:  fmt.Sprintf("Eko Hotels branch %d", i),
				Kind:  "HOTEL",
				Email: fmt.Sprintf("branch%d@www.ekohotels.com", i),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Onboard: %v", err)
		}
	}

	all, _ := svc.List(ctx)
	if len(all) != n {
		t.Fatalf("List = %d partners, want %d", len(all), n)
	}
	ids := map[string]bool{}
	for _, p := range all {
		if p.Domain != "ekohotels.com" || ids[p.ID] {
			t.Fatalf("partner = %+v", p)
		}
		ids[p.ID] = true
	}
}

func TestOnboardRejectsInvalid(t *testing.T) {
	svc := New(memory.NewStore(), nil)
	cases := []Onboarding{
		{Name: "", Kind: "HOTEL", Email: "a@b.com"},
		{Name: "X", Kind: "CASINO", Email: "a@b.com"},
		{Name: "X", Kind: "HOTEL", Email: "not-an-email"},
	}
	for _, in := range cases {
		if _, err := svc.Onboard(context.Background(), in); !errors.Is(err, domain.ErrInvalid) {
			t.Errorf("Onboard(%+v) err = %v, want ErrInvalid", in, err)
		}
	}
}
