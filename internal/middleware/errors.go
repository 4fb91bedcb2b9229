package middleware

import (
	"net/http"

	"github.com/go-chi/render"

	apperrors "github.com/Omega248/kintsugi-dashboard-sub000/internal/errors"
)

// Problem types written by the middleware chain
const (
	TypeRateLimit = "/errors/rate-limit-exceeded"
	TypePanic     = "/errors/internal-server-error"
	TypeTimeout   = "/errors/request-timeout"
	TypeTooLarge  = "/errors/payload-too-large"
	TypeMediaType = "/errors/unsupported-media-type"
)

// writeProblem renders an RFC 7807 body carrying the request's trace id
func writeProblem(w http.ResponseWriter, r *http.Request, status int, problemType, title, detail string) {
	problem := apperrors.NewProblemDetails(status, problemType, title, detail, r.URL.Path)
	if traceID := GetRequestID(r.Context()); traceID != "" {
		problem.WithExtension("trace_id", traceID)
	}
	_ = render.Render(w, r, problem)
}
