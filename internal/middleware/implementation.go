package middleware

import (
	"context"
	"net"
	"net/http"

	"github.com/akolanti/AITutor/internal/adapter/utils"
	"github.com/akolanti/AITutor/internal/config"
	"github.com/akolanti/AITutor/internal/session"
	"github.com/go-chi/chi/v5"
)

const traceHeader = "X-Trace-Id"

func injectTrace(re requestResponseStruct) requestResponseStruct {
	req := re.req
	if req == nil {
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusBadRequest,
			errorMessage: "request is empty",
		}
		return re
	}
	trace := req.Header.Get(traceHeader)
	if trace == "" {
		trace = utils.GetNewUUID()
	}
	re.logger = re.logger.With("traceId", trace)
	ctx := context.WithValue(req.Context(), config.TRACE_ID_KEY, trace)
	req.Header.Set(traceHeader, trace)
	re.writer.Header().Set(traceHeader, trace)
	re.req = req.WithContext(ctx)

	re.logger.Debug("New request received", "method", req.Method, "path", req.URL.Path)
	return re
}

func (m *Middleware) rateLimiter(re requestResponseStruct) requestResponseStruct {
	if m.limiter == nil {
		return re
	}
	ip := remoteIP(re.req)
	if !m.limiter.GetLimiter(ip).Allow() {
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusTooManyRequests,
			errorMessage: "Rate limit exceeded. Please slow down.",
		}
	}
	return re
}

// resolveSession attaches the caller's session, starting one (and setting
// the cookie) when the request carries none or an expired one.
func (m *Middleware) resolveSession(re requestResponseStruct) requestResponseStruct {
	var id string
	if c, err := re.req.Cookie(config.SessionCookieName); err == nil {
		id = c.Value
	}

	sess, created, err := m.sessions.Resolve(re.req.Context(), id)
	if err != nil {
		re.logger.Error("could not start session", "error", err)
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusServiceUnavailable,
			errorMessage: "Could not start a session",
		}
		return re
	}
	if created {
		http.SetCookie(re.writer, &http.Cookie{
			Name:     config.SessionCookieName,
			Value:    sess.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		re.logger.Debug("new session", "sessionId", sess.ID())
	}
	re.req = re.req.WithContext(session.NewContext(re.req.Context(), sess))
	return re
}

func remoteIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// routePattern keeps metric labels bounded: /status/{id} rather than every id.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
