package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/akolanti/AITutor/internal/adapter"
	"github.com/akolanti/AITutor/internal/handlers"
	"github.com/akolanti/AITutor/internal/metrics"
	"github.com/akolanti/AITutor/internal/session"
	"github.com/akolanti/AITutor/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

// SessionResolver finds the caller's session or starts a new one.
type SessionResolver interface {
	Resolve(ctx context.Context, id string) (*session.Session, bool, error)
}

type Middleware struct {
	sessions SessionResolver
	limiter  *IPRateLimiter
}

func New(sessions SessionResolver, limiter *IPRateLimiter) *Middleware {
	return &Middleware{sessions: sessions, limiter: limiter}
}

// Wrap runs the full chain: trace id, rate limit, session, metrics.
func (m *Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return m.wrap(next, true)
}

// WrapStateless skips session resolution, for probes and static pages.
func (m *Middleware) WrapStateless(next http.HandlerFunc) http.HandlerFunc {
	return m.wrap(next, false)
}

func (m *Middleware) wrap(next http.HandlerFunc, withSession bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		re := m.processRequest(requestResponseStruct{req: r, writer: rec}, withSession)
		if !handleBadRequest(re) {
			metrics.HttpRequestsTotal.WithLabelValues(routePattern(r), strconv.Itoa(rec.Status)).Inc()
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(routePattern(r), strconv.Itoa(rec.Status)).Inc()
	}
}

func (m *Middleware) processRequest(re requestResponseStruct, withSession bool) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re = m.rateLimiter(re)
	if re.badRequest.isBadRequest || !withSession {
		return re
	}
	return m.resolveSession(re)
}

func handleBadRequest(re requestResponseStruct) bool {
	if re.badRequest.isBadRequest {
		re.logger.Warn("Bad request", "httpCode", re.badRequest.httpCode, "errorMessage", re.badRequest.errorMessage, "IP", remoteIP(re.req))
		handlers.WriteJsonResponse(re.writer, re.badRequest.httpCode, adapter.BadRequest("", re.badRequest.errorMessage, re.badRequest.httpCode))
		return false
	}
	return true
}
