package screening

import (
	"bytes"
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/classify"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/domain"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/ports"
)

type LogScreener struct {
	caller
	newID func() string
}

var _ ports.LogScreener = (*LogScreener)(nil)

func NewLogScreener(c ports.Classifier, opts Options) *LogScreener {
	return &LogScreener{caller: newCaller(c, opts), newID: uuid.NewString}
}

// ScanLogs returns the alerts the classifier found in lines, in the order it
// returned them. Any failure yields an empty slice; the next cycle retries.
func (s *LogScreener) ScanLogs(ctx context.Context, lines []domain.LogLine) []domain.SecurityAlert {
	if len(lines) == 0 {
		return []domain.SecurityAlert{}
	}
	raw, err := s.call(ctx, "logs", logsPrompt(lines), alertsSchema)
	if err == nil {
		var alerts []domain.SecurityAlert
		if alerts, err = s.parseAlerts(raw); err == nil {
			s.opts.Metrics.LogScanned("ok", alerts)
			return alerts
		}
	}
	s.log.Warn("log scan failed, dropping cycle",
		"cause", classify.Cause(err), "error", err, "lines", len(lines))
	s.opts.Metrics.LogScanned("failed", nil)
	return []domain.SecurityAlert{}
}

type alertDoc struct {
	Category *string `json:"category"`
	Message  *string `json:"message"`
	Severity *string `json:"severity"`
}

func (s *LogScreener) parseAlerts(raw []byte) ([]domain.SecurityAlert, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, classify.Malformed("null alert list")
	}
	var docs []alertDoc
	if err := classify.Decode(raw, &docs); err != nil {
		return nil, err
	}
	now := s.opts.Clock.Now()
	out := make([]domain.SecurityAlert, 0, len(docs))
	for i, d := range docs {
		if d.Category == nil || d.Severity == nil || d.Message == nil || strings.TrimSpace(*d.Message) == "" {
			return nil, classify.Malformed("alert %d: missing required field", i)
		}
		out = append(out, domain.SecurityAlert{
			ID:        s.newID(),
			Category:  domain.ClampAlertCategory(*d.Category),
			Message:   strings.TrimSpace(*d.Message),
			Severity:  domain.ClampSeverity(*d.Severity),
			Timestamp: now,
		})
	}
	return out, nil
}
