// Package http provides the prediction endpoint
package http

import (
	stdhttp "net/http"

	"grantwise/internal/modkit/httpkit"
	dom "grantwise/internal/services/predict/domain"
)

// Register mounts the prediction routes
func Register(r httpkit.Router, p dom.PredictorPort) {
	h := &handlers{svc: p}
	httpkit.PostJSON[dom.Input](r, "/", h.predict)
}

type handlers struct{ svc dom.PredictorPort }

// swagger:route POST /predict Predict predictSuccess
// @Summary Score an application's likelihood of success
// @Tags Predict
// @Accept json
// @Produce json
// @Param payload body domain.Input true "Application"
// @Success 200 {object} domain.Output "ok"
// @Failure 400 {object} httpkit.Envelope "validation error"
// @Failure 429 {object} httpkit.Envelope "rate limited"
// @Router /predict [post]
func (h *handlers) predict(r *stdhttp.Request, in dom.Input) (any, error) {
	return h.svc.Predict(r.Context(), in)
}
