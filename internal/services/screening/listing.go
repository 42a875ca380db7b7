package screening

import (
	"context"
	"strings"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/classify"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/domain"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/ports"
)

// FallbackReason is the reason carried by the verdict returned whenever the
// classifier cannot be used.
const FallbackReason = "AI service temporarily unavailable for validation."

// FallbackVerdict is returned on every failure: an unscreenable listing is
// flagged, never silently verified.
func FallbackVerdict() domain.ListingVerdict {
	return domain.ListingVerdict{Verified: false, Flagged: true, Reason: FallbackReason}
}

type ListingScreener struct {
	caller
}

var _ ports.ListingScreener = (*ListingScreener)(nil)

func NewListingScreener(c ports.Classifier, opts Options) *ListingScreener {
	return &ListingScreener{caller: newCaller(c, opts)}
}

// ScreenListing asks the classifier for a verdict on draft. The draft is
// assumed validated by the caller.
func (s *ListingScreener) ScreenListing(ctx context.Context, draft domain.ListingDraft) domain.ListingVerdict {
	raw, err := s.call(ctx, "listing", listingPrompt(draft), verdictSchema)
	if err == nil {
		var v domain.ListingVerdict
		if v, err = parseVerdict(raw); err == nil {
			s.opts.Metrics.ListingScreened(outcome(v))
			return v
		}
	}
	s.log.Warn("listing screening failed, flagging",
		"cause", classify.Cause(err), "error", err, "title", draft.Title)
	s.opts.Metrics.ListingScreened("fallback")
	return FallbackVerdict()
}

type verdictDoc struct {
	Verified *bool   `json:"verified"`
	Flagged  *bool   `json:"flagged"`
	Reason   *string `json:"reason"`
}

func parseVerdict(raw []byte) (domain.ListingVerdict, error) {
	var doc verdictDoc
	if err := classify.Decode(raw, &doc); err != nil {
		return domain.ListingVerdict{}, err
	}
	switch {
	case doc.Verified == nil:
		return domain.ListingVerdict{}, classify.Malformed("missing verified")
	case doc.Flagged == nil:
		return domain.ListingVerdict{}, classify.Malformed("missing flagged")
	case doc.Reason == nil || strings.TrimSpace(*doc.Reason) == "":
		return domain.ListingVerdict{}, classify.Malformed("missing reason")
	}
	return domain.ListingVerdict{Verified: *doc.Verified, Flagged: *doc.Flagged, Reason: strings.TrimSpace(*doc.Reason)}, nil
}

func outcome(v domain.ListingVerdict) string {
	switch {
	case v.Flagged:
		return "flagged"
	case v.Verified:
		return "verified"
	default:
		return "uncertain"
	}
}
