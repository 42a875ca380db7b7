package httpadapter

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/domain"
)

// quiet paths are neither logged as activity nor worth scanning.
var quiet = map[string]bool{"/healthz": true, "/metrics": true}

// observe counts every request by route pattern and, outside /healthz and /metrics,
// records an activity line for the security scan.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		s.Metrics.HTTPRequest(route, strconv.Itoa(status))

		if quiet[r.URL.Path] {
			return
		}
		if s.Activity != nil {
			s.Activity.Record(activityLine(r, status, time.Since(start)))
		}
		s.Logger.DebugContext(r.Context(), "request",
			"method", r.Method, "route", route, "status", status,
			"took", time.Since(start), "request_id", middleware.GetReqID(r.Context()))
	})
}

func activityLine(r *http.Request, status int, took time.Duration) domain.LogLine {
	return domain.LogLine(fmt.Sprintf("%s %s %d %dms ip=%s ua=%q",
		r.Method, r.URL.RequestURI(), status, took.Milliseconds(), r.RemoteAddr, r.UserAgent()))
}
