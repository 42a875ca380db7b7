package screening

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/classify"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/domain"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/metrics"
)

// stubClassifier answers every call with respond and records what it saw.
type stubClassifier struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	schemas []classify.Schema
	respond func(ctx context.Context, call int, prompt string) (json.RawMessage, error)
}

func (s *stubClassifier) Classify(ctx context.Context, prompt string, schema classify.Schema) (json.RawMessage, error) {
	s.mu.Lock()
	s.calls++
	n := s.calls
	s.prompts = append(s.prompts, prompt)
	s.schemas = append(s.schemas, schema)
	s.mu.Unlock()
	return s.respond(ctx, n, prompt)
}

func replying(doc string) *stubClassifier {
	return &stubClassifier{respond: func(context.Context, int, string) (json.RawMessage, error) {
		return json.RawMessage(doc), nil
	}}
}

func failing(err error) *stubClassifier {
	return &stubClassifier{respond: func(context.Context, int, string) (json.RawMessage, error) {
		return nil, err
	}}
}

func hanging() *stubClassifier {
	return &stubClassifier{respond: func(ctx context.Context, _ int, _ string) (json.RawMessage, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
}

func quietOptions() Options {
	return Options{
		Timeout: time.Second,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func cleanDraft() domain.ListingDraft {
	return domain.ListingDraft{
		Title:       "5 Bedroom Luxury Duplex",
		Description: "Beautiful modern duplex in the heart of Lekki Phase 1 with automated gates.",
		Price:       decimal.NewFromInt(150000000),
		Location:    "Lekki Phase 1, Lagos",
		Type:        domain.ListingSale,
	}
}

func TestScreenListingPassesCleanVerdictThrough(t *testing.T) {
	stub := replying(`{"verified":true,"flagged":false,"reason":"Consistent with market data"}`)
	s := NewListingScreener(stub, quietOptions())

	got := s.ScreenListing(context.Background(), cleanDraft())
	want := domain.ListingVerdict{Verified: true, Flagged: false, Reason: "Consistent with market data"}
	if got != want {
		t.Fatalf("verdict = %+v, want %+v", got, want)
	}
	if stub.calls != 1 {
		t.Fatalf("classifier called %d times, want exactly once", stub.calls)
	}
}

func TestScreenListingPriceOutlier(t *testing.T) {
	stub := &stubClassifier{respond: func(_ context.Context, _ int, prompt string) (json.RawMessage, error) {
		if strings.Contains(prompt, "Price: 50000 NGN") && strings.Contains(prompt, "Lekki Phase 1, Lagos") {
			return json.RawMessage(`{"verified":false,"flagged":true,"reason":"Price far below market for Lekki Phase 1; urgent language."}`), nil
		}
		return json.RawMessage(`{"verified":true,"flagged":false,"reason":"No concerns"}`), nil
	}}
	s := NewListingScreener(stub, quietOptions())

	got := s.ScreenListing(context.Background(), domain.ListingDraft{
		Title:       "2 Bedroom Flat",
		Description: "Urgent sale, must go today!!",
		Price:       decimal.NewFromInt(50000),
		Location:    "Lekki Phase 1, Lagos",
		Type:        domain.ListingSale,
	})
	if got.Verified || !got.Flagged || got.Reason == "" {
		t.Fatalf("verdict = %+v, want unverified, flagged, with reason", got)
	}
	if got.Reason == FallbackReason {
		t.Fatal("got the fallback verdict instead of the classifier's")
	}
}

func TestScreenListingUncertainIsNotBlocking(t *testing.T) {
	s := NewListingScreener(replying(`{"verified":false,"flagged":false,"reason":"Not enough data"}`), quietOptions())
	got := s.ScreenListing(context.Background(), cleanDraft())
	if got.Verified || got.Flagged || got.Reason != "Not enough data" {
		t.Fatalf("verdict = %+v", got)
	}
}

func TestScreenListingFailsClosed(t *testing.T) {
	cases := []struct {
		name string
		stub *stubClassifier
	}{
		{"transport", failing(fmt.Errorf("dial tcp: %w", classify.ErrUnavailable))},
		{"plain error", failing(errors.New("boom"))},
		{"blocked", failing(classify.ErrBlocked)},
		{"timeout", hanging()},
		{"malformed json", replying(`{"verified":tru`)},
		{"not an object", replying(`["verified"]`)},
		{"missing field", replying(`{"verified":true,"flagged":false}`)},
		{"empty reason", replying(`{"verified":true,"flagged":false,"reason":"  "}`)},
		{"wrong type", replying(`{"verified":"yes","flagged":false,"reason":"ok"}`)},
		{"unknown field", replying(`{"verified":true,"flagged":false,"reason":"ok","score":0.9}`)},
		{"null", replying(`null`)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			opts := quietOptions()
			opts.Timeout = 20 * time.Millisecond
			s := NewListingScreener(c.stub, opts)

			got := s.ScreenListing(context.Background(), cleanDraft())
			if got != FallbackVerdict() {
				t.Fatalf("verdict = %+v, want fallback %+v", got, FallbackVerdict())
			}
		})
	}
}

func TestScreenListingFallbackIsExact(t *testing.T) {
	want := domain.ListingVerdict{Verified: false, Flagged: true, Reason: "AI service temporarily unavailable for validation."}
	if FallbackVerdict() != want {
		t.Fatalf("FallbackVerdict() = %+v", FallbackVerdict())
	}
}

func TestScreenListingIsIdempotent(t *testing.T) {
	s := NewListingScreener(replying(`{"verified":true,"flagged":false,"reason":"ok"}`), quietOptions())
	a := s.ScreenListing(context.Background(), cleanDraft())
	b := s.ScreenListing(context.Background(), cleanDraft())
	if a != b {
		t.Fatalf("verdicts differ: %+v vs %+v", a, b)
	}
}

func TestScreenListingRequestShape(t *testing.T) {
	stub := replying(`{"verified":true,"flagged":false,"reason":"ok"}`)
	s := NewListingScreener(stub, quietOptions())
	s.ScreenListing(context.Background(), cleanDraft())

	prompt := stub.prompts[0]
	for _, want := range []string{"5 Bedroom Luxury Duplex", "automated gates", "150000000 NGN", "Lekki Phase 1, Lagos", "SALE"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	schema := stub.schemas[0]
	if schema.Type != classify.TypeObject {
		t.Fatalf("schema type = %s", schema.Type)
	}
	if got := strings.Join(schema.Required, ","); got != "verified,flagged,reason" {
		t.Fatalf("required = %s", got)
	}
	wantTypes := map[string]classify.Type{"verified": classify.TypeBoolean, "flagged": classify.TypeBoolean, "reason": classify.TypeString}
	if len(schema.Properties) != len(wantTypes) {
		t.Fatalf("schema has %d properties, want %d", len(schema.Properties), len(wantTypes))
	}
	for name, typ := range wantTypes {
		if p := schema.Properties[name]; p == nil || p.Type != typ {
			t.Errorf("property %s = %+v, want type %s", name, p, typ)
		}
	}
}

func TestScreenListingRetriesOnlyTransientFailures(t *testing.T) {
	opts := quietOptions()
	opts.MaxRetries = 2
	opts.RetryBackoff = time.Millisecond

	t.Run("recovers", func(t *testing.T) {
		stub := &stubClassifier{respond: func(_ context.Context, call int, _ string) (json.RawMessage, error) {
			if call < 3 {
				return nil, classify.ErrUnavailable
			}
			return json.RawMessage(`{"verified":true,"flagged":false,"reason":"ok"}`), nil
		}}
		got := NewListingScreener(stub, opts).ScreenListing(context.Background(), cleanDraft())
		if !got.Verified || stub.calls != 3 {
			t.Fatalf("verdict = %+v after %d calls", got, stub.calls)
		}
	})
	t.Run("exhausted", func(t *testing.T) {
		stub := failing(classify.ErrUnavailable)
		got := NewListingScreener(stub, opts).ScreenListing(context.Background(), cleanDraft())
		if got != FallbackVerdict() || stub.calls != 3 {
			t.Fatalf("verdict = %+v after %d calls", got, stub.calls)
		}
	})
	t.Run("malformed not retried", func(t *testing.T) {
		stub := replying(`{}`)
		got := NewListingScreener(stub, opts).ScreenListing(context.Background(), cleanDraft())
		if got != FallbackVerdict() || stub.calls != 1 {
			t.Fatalf("verdict = %+v after %d calls", got, stub.calls)
		}
	})
}

func TestScreenListingMetrics(t *testing.T) {
	m := metrics.New()
	opts := quietOptions()
	opts.Metrics = m

	NewListingScreener(replying(`{"verified":true,"flagged":false,"reason":"ok"}`), opts).ScreenListing(context.Background(), cleanDraft())
	NewListingScreener(failing(classify.ErrUnavailable), opts).ScreenListing(context.Background(), cleanDraft())

	if got := testutil.ToFloat64(m.ListingScreenings().WithLabelValues("verified")); got != 1 {
		t.Errorf("verified = %v", got)
	}
	if got := testutil.ToFloat64(m.ListingScreenings().WithLabelValues("fallback")); got != 1 {
		t.Errorf("fallback = %v", got)
	}
}

var sampleLines = []domain.LogLine{
	"Login attempt from unknown IP: 192.168.1.5",
	"High frequency API calls from User_772",
	"Suspicious asset update: Price drop 90%",
	"XSS attempt blocked at /api/upload",
}

func TestScanLogsStampsAlerts(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	opts := quietOptions()
	opts.Clock = clockwork.NewFakeClockAt(start)
	stub := replying(`[
		{"category":"SECURITY","message":"Brute force login from 192.168.1.5","severity":"HIGH"},
		{"category":"fraud","message":"Price manipulation on asset","severity":"medium"}
	]`)
	s := NewLogScreener(stub, opts)

	alerts := s.ScanLogs(context.Background(), sampleLines)
	if len(alerts) != 2 {
		t.Fatalf("got %d alerts, want 2", len(alerts))
	}
	if alerts[0].Message != "Brute force login from 192.168.1.5" || alerts[1].Category != domain.AlertFraud {
		t.Fatalf("order or content not preserved: %+v", alerts)
	}
	if alerts[1].Severity != domain.SeverityMedium {
		t.Fatalf("severity = %s", alerts[1].Severity)
	}
	seen := map[string]bool{}
	for _, a := range alerts {
		if a.ID == "" || seen[a.ID] {
			t.Fatalf("alert id %q empty or duplicated", a.ID)
		}
		seen[a.ID] = true
		if a.Timestamp.Before(start) {
			t.Fatalf("timestamp %v before call start %v", a.Timestamp, start)
		}
		if !a.Category.Valid() || !a.Severity.Valid() {
			t.Fatalf("invalid enum in %+v", a)
		}
	}
	for _, l := range sampleLines {
		if !strings.Contains(stub.prompts[0], string(l)) {
			t.Errorf("prompt missing line %q", l)
		}
	}
	if stub.schemas[0].Type != classify.TypeArray || stub.schemas[0].Items == nil {
		t.Fatalf("schema = %+v", stub.schemas[0])
	}
}

func TestScanLogsClampsUnknownEnums(t *testing.T) {
	s := NewLogScreener(replying(`[{"category":"INTRUSION","message":"odd","severity":"CRITICAL"}]`), quietOptions())
	alerts := s.ScanLogs(context.Background(), sampleLines)
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts", len(alerts))
	}
	if alerts[0].Category != domain.AlertSecurity || alerts[0].Severity != domain.SeverityMedium {
		t.Fatalf("not clamped: %+v", alerts[0])
	}
}

func TestScanLogsNoThreats(t *testing.T) {
	s := NewLogScreener(replying(`[]`), quietOptions())
	alerts := s.ScanLogs(context.Background(), []domain.LogLine{"normal GET /listings 200"})
	if alerts == nil || len(alerts) != 0 {
		t.Fatalf("alerts = %#v, want empty non-nil slice", alerts)
	}
}

func TestScanLogsEmptyBatchSkipsClassifier(t *testing.T) {
	stub := replying(`[]`)
	alerts := NewLogScreener(stub, quietOptions()).ScanLogs(context.Background(), nil)
	if alerts == nil || len(alerts) != 0 || stub.calls != 0 {
		t.Fatalf("alerts = %#v, calls = %d", alerts, stub.calls)
	}
}

func TestScanLogsFailsOpen(t *testing.T) {
	cases := []struct {
		name string
		stub *stubClassifier
	}{
		{"transport", failing(classify.ErrUnavailable)},
		{"blocked", failing(classify.ErrBlocked)},
		{"timeout", hanging()},
		{"malformed json", replying(`[{"category":`)},
		{"object instead of array", replying(`{"category":"FRAUD","message":"x","severity":"LOW"}`)},
		{"null", replying(`null`)},
		{"missing field", replying(`[{"category":"FRAUD","severity":"LOW"}]`)},
		{"empty message", replying(`[{"category":"FRAUD","message":"","severity":"LOW"}]`)},
		{"null element", replying(`[null]`)},
		{"one bad among good", replying(`[{"category":"FRAUD","message":"x","severity":"LOW"},{"message":"y"}]`)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			opts := quietOptions()
			opts.Timeout = 20 * time.Millisecond
			alerts := NewLogScreener(c.stub, opts).ScanLogs(context.Background(), sampleLines)
			if alerts == nil || len(alerts) != 0 {
				t.Fatalf("alerts = %#v, want empty", alerts)
			}
		})
	}
}

func TestScanLogsIdempotentUpToIdentity(t *testing.T) {
	s := NewLogScreener(replying(`[{"category":"SECURITY","message":"XSS attempt","severity":"LOW"}]`), quietOptions())
	a := s.ScanLogs(context.Background(), sampleLines)
	b := s.ScanLogs(context.Background(), sampleLines)
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("lengths %d, %d", len(a), len(b))
	}
	if a[0].ID == b[0].ID {
		t.Fatal("ids should be unique per alert instance")
	}
	a[0].ID, b[0].ID = "", ""
	a[0].Timestamp, b[0].Timestamp = time.Time{}, time.Time{}
	if a[0] != b[0] {
		t.Fatalf("alerts differ beyond id/timestamp: %+v vs %+v", a[0], b[0])
	}
}

func TestScreenersAreSafeConcurrently(t *testing.T) {
	stub := replying(`{"verified":true,"flagged":false,"reason":"ok"}`)
	logStub := replying(`[]`)
	ls := NewListingScreener(stub, quietOptions())
	gs := NewLogScreener(logStub, quietOptions())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ls.ScreenListing(context.Background(), cleanDraft())
		}()
		go func() {
			defer wg.Done()
			gs.ScanLogs(context.Background(), sampleLines)
		}()
	}
	wg.Wait()
	if stub.calls != 16 || logStub.calls != 16 {
		t.Fatalf("calls = %d, %d", stub.calls, logStub.calls)
	}
}
