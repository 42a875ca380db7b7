// Package screening implements the two AI-backed screeners: listing
// authenticity (fails closed) and security log scanning (fails open).
package screening

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sethvargo/go-retry"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/classify"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/metrics"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/ports"
)

const (
	DefaultTimeout      = 20 * time.Second
	defaultRetryBackoff = 500 * time.Millisecond
	maxRetryBackoff     = 5 * time.Second
)

// Options configures both screeners. Zero values select defaults: a 20s
// timeout, a single attempt, the real clock and the default logger.
type Options struct {
	Timeout      time.Duration
	MaxRetries   uint64
	RetryBackoff time.Duration
	Clock        clockwork.Clock
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = defaultRetryBackoff
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// caller is the transport half shared by both screeners: one bounded,
// time-limited round trip to the classifier.
type caller struct {
	classifier ports.Classifier
	opts       Options
	log        *slog.Logger
}

func newCaller(c ports.Classifier, opts Options) caller {
	opts = opts.withDefaults()
	return caller{classifier: c, opts: opts, log: opts.Logger.With("component", "screening")}
}

// call returns the raw document or the last error. Only ErrUnavailable is
// retried, and only while the deadline allows.
func (c caller) call(ctx context.Context, task, prompt string, schema classify.Schema) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	start := c.opts.Clock.Now()
	backoff := retry.WithMaxRetries(c.opts.MaxRetries,
		retry.WithCappedDuration(maxRetryBackoff, retry.NewExponential(c.opts.RetryBackoff)))

	var raw json.RawMessage
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		out, err := c.classifier.Classify(ctx, prompt, schema)
		if err != nil {
			if errors.Is(err, classify.ErrUnavailable) && ctx.Err() == nil {
				return retry.RetryableError(err)
			}
			return err
		}
		raw = out
		return nil
	})
	c.opts.Metrics.ObserveClassify(task, classify.Cause(err), c.opts.Clock.Since(start))
	if err != nil {
		return nil, err
	}
	return raw, nil
}
