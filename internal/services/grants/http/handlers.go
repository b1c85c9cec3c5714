// Package http provides the grants search endpoints
package http

import (
	stdhttp "net/http"

	"grantwise/internal/modkit/httpkit"
	dom "grantwise/internal/services/grants/domain"
)

// Register mounts the grants routes. admit guards /search only; the source
// listing is free
func Register(r httpkit.Router, f dom.FinderPort, admit ...func(stdhttp.Handler) stdhttp.Handler) {
	h := &handlers{svc: f}
	search := r
	if len(admit) > 0 {
		search = r.With(admit...)
	}
	httpkit.PostJSON[dom.Filters](search, "/search", h.search)
	httpkit.Get(r, "/sources", h.sources)
}

type handlers struct{ svc dom.FinderPort }

// swagger:route POST /grants/search Grants grantsSearch
// @Summary Fan out to every catalog source, dedupe and rank
// @Tags Grants
// @Accept json
// @Produce json
// @Param payload body domain.Filters true "Filters"
// @Success 200 {object} domain.Result "ok"
// @Failure 400 {object} httpkit.Envelope "validation error"
// @Failure 429 {object} httpkit.Envelope "rate limited"
// @Router /grants/search [post]
func (h *handlers) search(r *stdhttp.Request, f dom.Filters) (any, error) {
	return h.svc.Find(r.Context(), f)
}

// swagger:route GET /grants/sources Grants grantsSources
// @Summary Configured sources and their timeouts
// @Tags Grants
// @Produce json
// @Success 200 {array} domain.SourceInfo "ok"
// @Router /grants/sources [get]
func (h *handlers) sources(_ *stdhttp.Request) (any, error) {
	return h.svc.Sources(), nil
}
