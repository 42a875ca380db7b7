package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/classify"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/ports"
)

// Gemini docs: https://ai.google.dev/api/generate-content
// Endpoint used: POST /v1beta/models/{model}:generateContent
// Auth header: "x-goog-api-key: <KEY>"

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-3-flash-preview"

	maxResponseBytes = 1 << 20
)

type Client struct {
	baseURL   string
	apiKey    string
	model     string
	userAgent string
	client    *http.Client
	log       *slog.Logger
}

var _ ports.Classifier = (*Client)(nil)

type Options struct {
	BaseURL   string
	APIKey    string
	Model     string
	UserAgent string
	Timeout   time.Duration // per HTTP request; the screeners impose their own deadline too
	Logger    *slog.Logger
}

func New(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &Client{
		baseURL:   strings.TrimRight(o.BaseURL, "/"),
		apiKey:    strings.TrimSpace(o.APIKey),
		model:     o.Model,
		userAgent: o.UserAgent,
		client:    &http.Client{Timeout: o.Timeout, Transport: tr},
		log:       o.Logger.With("component", "gemini"),
	}
}

func (c *Client) Name() string { return "gemini" }

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMIMEType string          `json:"responseMimeType"`
	ResponseSchema   classify.Schema `json:"responseSchema"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Classify implements ports.Classifier. Transport problems and non-2xx
// replies wrap classify.ErrUnavailable; an answer that is not JSON wraps
// classify.ErrMalformed.
func (c *Client) Classify(ctx context.Context, prompt string, schema classify.Schema) (json.RawMessage, error) {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{ResponseMIMEType: "application/json", ResponseSchema: schema},
	})
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", classify.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Debug("non-2xx from classifier", "status", resp.StatusCode, "body", string(snippet))
		return nil, fmt.Errorf("%w: gemini: http %d", classify.ErrUnavailable, resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %v", classify.ErrUnavailable, err)
		}
		return nil, classify.Malformed("gemini envelope: %v", err)
	}
	if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: blocked (%s)", classify.ErrBlocked, out.PromptFeedback.BlockReason)
	}
	if len(out.Candidates) == 0 {
		return nil, classify.ErrBlocked
	}

	var text strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	raw := []byte(strings.TrimSpace(text.String()))
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty candidate (finish reason %q)", classify.ErrBlocked, out.Candidates[0].FinishReason)
	}
	if !json.Valid(raw) {
		return nil, classify.Malformed("candidate text is not JSON")
	}
	return json.RawMessage(raw), nil
}
