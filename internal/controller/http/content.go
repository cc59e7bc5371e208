package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ugc-dashboard/reporting/internal/domain/report/entity"
	"github.com/ugc-dashboard/reporting/internal/domain/report/policy"
	"github.com/ugc-dashboard/reporting/internal/httpx/response"
)

// ContentPolicy defines the interface for content collection
type ContentPolicy interface {
	CollectContent(ctx context.Context, in policy.CollectInput) (*policy.CollectOutput, error)
}

// ContentHandler handles HTTP requests for collected content
type ContentHandler struct {
	policy ContentPolicy
}

// NewContentHandler creates a new content handler
func NewContentHandler(p ContentPolicy) *ContentHandler {
	return &ContentHandler{policy: p}
}

// RegisterRoutes registers content routes
func (h *ContentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/content", func(r chi.Router) {
		r.Post("/collect", h.Collect())
	})
}

// CollectRequest represents the request body for a collection run
type CollectRequest struct {
	Platform  string   `json:"platform"`
	Hashtags  []string `json:"hashtags"`
	Usernames []string `json:"usernames"`
	Limit     int      `json:"limit"`
}

// Collect handles POST /content/collect
func (h *ContentHandler) Collect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CollectRequest
		if err := decodeJSON(w, r, &req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		out, err := h.policy.CollectContent(r.Context(), policy.CollectInput{
			Platform:  entity.Platform(req.Platform),
			Hashtags:  req.Hashtags,
			Usernames: req.Usernames,
			Limit:     req.Limit,
		})
		if err != nil {
			handleDomainError(w, r, err)
			return
		}

		response.OK(w, out)
	}
}
