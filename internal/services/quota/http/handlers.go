// Package http exposes quota status and the admission middleware other
// modules put in front of their routes
package http

import (
	stdhttp "net/http"
	"strconv"
	"strings"
	"time"

	"grantwise/internal/modkit/httpkit"
	"grantwise/internal/platform/config"
	perr "grantwise/internal/platform/errors"
	pnet "grantwise/internal/platform/net"
	dom "grantwise/internal/services/quota/domain"
)

// Anonymous is counted against when no identifier was resolved
const Anonymous = "anonymous"

// Register mounts the quota routes
func Register(r httpkit.Router, l dom.LedgerPort, p config.Policy) {
	h := &handlers{ledger: l, policy: p}
	httpkit.Get(r, "/{class}", h.status)
}

type handlers struct {
	ledger dom.LedgerPort
	policy config.Policy
}

// StatusResponse is the caller's standing in one rate class
type StatusResponse struct {
	Class     string    `json:"class"     example:"standard"`
	Limit     int       `json:"limit"     example:"100"`
	Remaining int       `json:"remaining" example:"97"`
	ResetAt   time.Time `json:"reset_at"  example:"2026-01-05T13:01:00Z"`
	Degraded  bool      `json:"degraded"  example:"false"`
}

// swagger:route GET /quota/{class} Quota quotaStatus
// @Summary Remaining quota for the caller in a rate class
// @Tags Quota
// @Produce json
// @Param class path string true "Rate class" Enums(strict,standard,upload,auth)
// @Success 200 {object} StatusResponse "ok"
// @Failure 404 {object} httpkit.Envelope "unknown class"
// @Router /quota/{class} [get]
func (h *handlers) status(r *stdhttp.Request) (any, error) {
	name := httpkit.Param(r, "class")
	rc, ok := h.policy.Class(name)
	if !ok {
		return nil, perr.NotFoundf("unknown rate class %q", name)
	}
	d := h.ledger.Status(r.Context(), key(name, r), rc.Limit, rc.Window)
	return StatusResponse{
		Class:     strings.ToLower(name),
		Limit:     d.Limit,
		Remaining: d.Remaining,
		ResetAt:   d.ResetAt.UTC(),
		Degraded:  d.Degraded,
	}, nil
}

// Admission counts each request against class for the caller resolved by the
// Identify middleware. Denied requests get a 429 envelope with the limit
// metadata; admitted ones carry the same headers
func Admission(l dom.LedgerPort, class string, rc config.RateClass) func(stdhttp.Handler) stdhttp.Handler {
	return func(next stdhttp.Handler) stdhttp.Handler {
		return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			d := l.Admit(r.Context(), key(class, r), rc.Limit, rc.Window)
			SetHeaders(w.Header(), d)
			if !d.Allowed {
				retry := max(int(time.Until(d.ResetAt).Round(time.Second)/time.Second), 1)
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				httpkit.Handle(func(*stdhttp.Request) httpkit.Response {
					return httpkit.Error(perr.RateLimited(d.Limit, d.Remaining, d.ResetAt))
				})(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SetHeaders writes the X-RateLimit-* headers for d
func SetHeaders(h stdhttp.Header, d dom.Decision) {
	h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
}

// key scopes the caller's counter to one class so classes never share a window
func key(class string, r *stdhttp.Request) string {
	id := pnet.CallerID(r.Context())
	if id == "" {
		id = Anonymous
	}
	return strings.ToLower(class) + ":" + id
}
