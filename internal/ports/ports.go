package ports

import (
	"context"
	"encoding/json"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/classify"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/domain"
)

// Classifier sends one prompt with a declared result schema to the external
// classification service and returns the raw JSON document it produced.
type Classifier interface {
	Classify(ctx context.Context, prompt string, schema classify.Schema) (json.RawMessage, error)
}

// ListingScreener judges listing authenticity. It never fails; failures
// degrade to a flagged verdict.
type ListingScreener interface {
	ScreenListing(ctx context.Context, draft domain.ListingDraft) domain.ListingVerdict
}

// LogScreener surfaces suspected threats in a batch of activity lines. It
// never fails; failures yield no alerts.
type LogScreener interface {
	ScanLogs(ctx context.Context, lines []domain.LogLine) []domain.SecurityAlert
}

// ActivitySource hands out recent activity lines for the periodic scan.
type ActivitySource interface {
	// Drain returns up to max of the newest unconsumed lines, oldest first,
	// and marks everything recorded so far as consumed.
	Drain(max int) []domain.LogLine
}

// AlertPublisher receives alerts produced by a scan cycle.
type AlertPublisher interface {
	Publish(alerts []domain.SecurityAlert)
}
