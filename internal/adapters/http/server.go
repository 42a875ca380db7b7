package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/shopspring/decimal"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/api"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/domain"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/metrics"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/ports"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/services/alerts"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/services/listings"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/services/partners"
)

const (
	maxBodyBytes = 1 << 20
	// maxScreenLines bounds one POST /screen/logs batch; larger batches go
	// through several requests.
	maxScreenLines = 50
)

// ActivityRecorder receives one line per handled request for the log-scan
// worker.
type ActivityRecorder interface {
	Record(line domain.LogLine)
}

type Deps struct {
	Listings        *listings.Service
	Partners        *partners.Service
	Alerts          *alerts.Feed
	ListingScreener ports.ListingScreener
	LogScreener     ports.LogScreener
	Activity        ActivityRecorder // optional
	Metrics         *metrics.Metrics // optional
	Logger          *slog.Logger
	StoreName       string
	ClassifierName  string
}

type Server struct {
	Deps
}

func New(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	d.Logger = d.Logger.With("component", "http")
	return &Server{Deps: d}
}

// Routes returns the full router, middleware included.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handle(s.getHealthz))
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}

	r.Get("/listings", s.handle(s.getListings))
	r.Get("/listings/{listingID}", s.handle(s.getListing))

	r.Route("/screen", func(r chi.Router) {
		r.Post("/listing", s.handle(s.postScreenListing))
		r.Post("/logs", s.handle(s.postScreenLogs))
	})

	r.Get("/partners/{partnerID}/listings", s.handle(s.getPartnerListings))
	r.Post("/partners/{partnerID}/listings", s.handle(s.postPartnerListing))

	r.Route("/admin", func(r chi.Router) {
		r.Get("/partners", s.handle(s.getPartners))
		r.Post("/partners", s.handle(s.postPartner))
		r.Get("/alerts", s.handle(s.getAlerts))
		r.Get("/listings/flagged", s.handle(s.getFlagged))
		r.Post("/listings/{listingID}/review", s.handle(s.postReview))
		r.Post("/listings/{listingID}/rescreen", s.handle(s.postRescreen))
	})
	return r
}

// handlerFunc returns a status and a JSON body, or an error that handle
// maps to a status.
type handlerFunc func(w http.ResponseWriter, r *http.Request) (int, any, error)

func (s *Server) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, body, err := h(w, r)
		if err != nil {
			code, body = s.errorResponse(r, err)
		}
		writeJSON(w, code, body)
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

type runtimeError struct {
	code int
	msg  string
}

func (e *runtimeError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &runtimeError{code: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

func (s *Server) errorResponse(r *http.Request, err error) (int, api.Error) {
	var rt *runtimeError
	switch {
	case errors.As(err, &rt):
		return rt.code, api.Error{Error: rt.msg}
	case errors.Is(err, ports.ErrNotFound):
		return http.StatusNotFound, api.Error{Error: err.Error()}
	case errors.Is(err, domain.ErrInvalid):
		return http.StatusBadRequest, api.Error{Error: err.Error()}
	case errors.Is(err, domain.ErrNotApproved):
		return http.StatusForbidden, api.Error{Error: err.Error()}
	}
	s.Logger.ErrorContext(r.Context(), "request failed",
		"method", r.Method, "path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()), "err", err)
	return http.StatusInternalServerError, api.Error{Error: "internal error"}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return badRequest("missing body")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("missing body")
		}
		return badRequest("invalid body: %v", err)
	}
	return nil
}

func pathParam(r *http.Request, name string) (string, error) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return "", badRequest("invalid %s: %v", name, err)
	}
	return v, nil
}

func queryParam[T any](r *http.Request, name string) (*T, error) {
	var v *T
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return nil, badRequest("invalid %s: %v", name, err)
	}
	return v, nil
}

func priceParam(r *http.Request, name string) (*decimal.Decimal, error) {
	raw, err := queryParam[string](r, name)
	if err != nil || raw == nil {
		return nil, err
	}
	d, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil {
		return nil, badRequest("invalid %s: %q is not a number", name, *raw)
	}
	return &d, nil
}

func (s *Server) getHealthz(_ http.ResponseWriter, _ *http.Request) (int, any, error) {
	return http.StatusOK, api.Health{Status: "ok", Store: s.StoreName, Classifier: s.ClassifierName}, nil
}

func (s *Server) getListings(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	var f listings.CatalogFilter
	category, err := queryParam[string](r, "category")
	if err != nil {
		return 0, nil, err
	}
	if category != nil {
		f.Category = *category
	}
	q, err := queryParam[string](r, "q")
	if err != nil {
		return 0, nil, err
	}
	if q != nil {
		f.Query = *q
	}
	if f.MinPrice, err = priceParam(r, "min_price"); err != nil {
		return 0, nil, err
	}
	if f.MaxPrice, err = priceParam(r, "max_price"); err != nil {
		return 0, nil, err
	}
	out, err := s.Listings.Catalog(r.Context(), f)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, api.FromListings(out), nil
}

func (s *Server) getListing(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	id, err := pathParam(r, "listingID")
	if err != nil {
		return 0, nil, err
	}
	l, err := s.Listings.Public(r.Context(), id)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, api.FromListing(l), nil
}

func (s *Server) postScreenListing(w http.ResponseWriter, r *http.Request) (int, any, error) {
	var body api.ListingDraft
	if err := decodeBody(w, r, &body); err != nil {
		return 0, nil, err
	}
	draft, err := body.Domain().Check()
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, api.FromVerdict(s.ListingScreener.ScreenListing(r.Context(), draft)), nil
}

// postScreenLogs classifies the posted lines. With publish=true the alerts
// also go to the operator feed, as a manual scan from the admin console does.
func (s *Server) postScreenLogs(w http.ResponseWriter, r *http.Request) (int, any, error) {
	publish, err := queryParam[bool](r, "publish")
	if err != nil {
		return 0, nil, err
	}
	var body api.LogBatch
	if err := decodeBody(w, r, &body); err != nil {
		return 0, nil, err
	}
	if len(body.Lines) > maxScreenLines {
		return 0, nil, badRequest("at most %d lines per request, got %d", maxScreenLines, len(body.Lines))
	}
	found := s.LogScreener.ScanLogs(r.Context(), body.Domain())
	if publish != nil && *publish {
		s.Alerts.Publish(found)
	}
	return http.StatusOK, api.FromAlerts(found), nil
}

func (s *Server) getPartnerListings(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	id, err := pathParam(r, "partnerID")
	if err != nil {
		return 0, nil, err
	}
	out, err := s.Listings.ForPartner(r.Context(), id)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, api.FromListings(out), nil
}

func (s *Server) postPartnerListing(w http.ResponseWriter, r *http.Request) (int, any, error) {
	id, err := pathParam(r, "partnerID")
	if err != nil {
		return 0, nil, err
	}
	var body api.ListingSubmission
	if err := decodeBody(w, r, &body); err != nil {
		return 0, nil, err
	}
	features := body.Features
	if len(features) == 0 && body.FeatureText != "" {
		features = listings.SplitFeatures(body.FeatureText)
	}
	l, err := s.Listings.Submit(r.Context(), id, listings.Submission{
		Title:       body.Title,
		Description: body.Description,
		Price:       body.Price,
		Location:    body.Location,
		Type:        body.Type,
		Category:    body.Category,
		Features:    features,
		Images:      body.Images,
	})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, api.FromListing(l), nil
}

func (s *Server) getPartners(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	out, err := s.Partners.List(r.Context())
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, api.FromPartners(out), nil
}

func (s *Server) postPartner(w http.ResponseWriter, r *http.Request) (int, any, error) {
	var body api.PartnerOnboarding
	if err := decodeBody(w, r, &body); err != nil {
		return 0, nil, err
	}
	p, err := s.Partners.Onboard(r.Context(), partners.Onboarding{
		Name:          body.Name,
		Kind:          body.Type,
		Email:         body.Email,
		ContactPerson: body.ContactPerson,
	})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, api.FromPartner(p), nil
}

func (s *Server) getAlerts(_ http.ResponseWriter, _ *http.Request) (int, any, error) {
	return http.StatusOK, api.FromAlerts(s.Alerts.Recent()), nil
}

func (s *Server) getFlagged(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	out, err := s.Listings.Flagged(r.Context())
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, api.FromListings(out), nil
}

func (s *Server) postReview(w http.ResponseWriter, r *http.Request) (int, any, error) {
	id, err := pathParam(r, "listingID")
	if err != nil {
		return 0, nil, err
	}
	var body api.Review
	if err := decodeBody(w, r, &body); err != nil {
		return 0, nil, err
	}
	action := listings.ReviewAction(strings.ToLower(strings.TrimSpace(body.Action)))
	l, err := s.Listings.Review(r.Context(), id, action)
	if err != nil {
		return 0, nil, err
	}
	if action == listings.Reject {
		return http.StatusOK, map[string]string{"id": id, "status": "removed"}, nil
	}
	return http.StatusOK, api.FromListing(l), nil
}

func (s *Server) postRescreen(_ http.ResponseWriter, r *http.Request) (int, any, error) {
	id, err := pathParam(r, "listingID")
	if err != nil {
		return 0, nil, err
	}
	// the screener applies its own deadline
	l, err := s.Listings.Rescreen(context.WithoutCancel(r.Context()), id)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, api.FromListing(l), nil
}
