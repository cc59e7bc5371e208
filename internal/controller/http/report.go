package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/ugc-dashboard/reporting/internal/delivery"
	"github.com/ugc-dashboard/reporting/internal/document"
	"github.com/ugc-dashboard/reporting/internal/domain/report/entity"
	"github.com/ugc-dashboard/reporting/internal/domain/report/policy"
	"github.com/ugc-dashboard/reporting/internal/domain/report/service"
	"github.com/ugc-dashboard/reporting/internal/httpx/response"
)

const maxBodyBytes = 1 << 20

// ReportPolicy defines the interface for report operations
// Interface is defined by consumer (handler), not provider (policy)
type ReportPolicy interface {
	CreateReport(ctx context.Context, in service.CreateInput) (*entity.Report, error)
	GetReport(ctx context.Context, id string) (*entity.Report, error)
	DeleteReport(ctx context.Context, id string) error
	ListReports(ctx context.Context, in service.ListInput) (*policy.ListReportsOutput, error)
	ExportReport(ctx context.Context, in policy.ExportInput) (*document.Artifact, error)
	PublishReport(ctx context.Context, in policy.ExportInput) (*delivery.Result, error)
	GenerateWeeklyReport(ctx context.Context, in policy.GenerateInput) (*entity.Report, error)
}

// ReportHandler handles HTTP requests for reports
type ReportHandler struct {
	policy ReportPolicy
}

// NewReportHandler creates a new report handler
func NewReportHandler(p ReportPolicy) *ReportHandler {
	return &ReportHandler{policy: p}
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/", h.List())
		r.Post("/", h.Create())
		r.Post("/weekly", h.GenerateWeekly())
		r.Get("/{id}", h.Get())
		r.Delete("/{id}", h.Delete())
		r.Get("/{id}/export", h.Export())
		r.Post("/{id}/publish", h.Publish())
	})
}

// CreateReportRequest represents the request body for creating a report
type CreateReportRequest struct {
	Title           string                  `json:"title"`
	Description     string                  `json:"description"`
	Period          entity.Period           `json:"period"`
	GeneratedAt     *time.Time              `json:"generatedAt,omitempty"`
	MetricsSummary  entity.MetricsSummary   `json:"metricsSummary"`
	Recommendations []entity.Recommendation `json:"recommendations"`
}

// Create handles POST /reports
func (h *ReportHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateReportRequest
		if err := decodeJSON(w, r, &req); err != nil {
			response.BadRequest(w, "invalid JSON")
			return
		}

		in := service.CreateInput{
			Title:           req.Title,
			Description:     req.Description,
			Period:          req.Period,
			MetricsSummary:  req.MetricsSummary,
			Recommendations: req.Recommendations,
		}
		if req.GeneratedAt != nil {
			in.GeneratedAt = *req.GeneratedAt
		}

		rep, err := h.policy.CreateReport(r.Context(), in)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}

		response.Created(w, rep)
	}
}

// ListReportsResponse represents a page of reports
type ListReportsResponse struct {
	Reports []entity.Report `json:"reports"`
	Total   int64           `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// List handles GET /reports
func (h *ReportHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		limit, _ := strconv.Atoi(q.Get("limit"))
		offset, _ := strconv.Atoi(q.Get("offset"))
		in := service.ListInput{Limit: limit, Offset: offset}

		for key, dst := range map[string]**time.Time{"from": &in.From, "to": &in.To} {
			v := q.Get(key)
			if v == "" {
				continue
			}
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				response.BadRequest(w, "invalid "+key+" format, use RFC3339")
				return
			}
			*dst = &t
		}

		out, err := h.policy.ListReports(r.Context(), in)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}

		response.OK(w, ListReportsResponse{
			Reports: out.Reports,
			Total:   out.Total,
			Limit:   limit,
			Offset:  offset,
		})
	}
}

// Get handles GET /reports/{id}
func (h *ReportHandler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := h.policy.GetReport(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleDomainError(w, r, err)
			return
		}

		response.OK(w, rep)
	}
}

// Delete handles DELETE /reports/{id}
func (h *ReportHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.policy.DeleteReport(r.Context(), chi.URLParam(r, "id")); err != nil {
			handleDomainError(w, r, err)
			return
		}

		response.NoContent(w)
	}
}

func exportInput(r *http.Request) policy.ExportInput {
	q := r.URL.Query()
	return policy.ExportInput{
		ID:           chi.URLParam(r, "id"),
		Format:       strings.ToLower(q.Get("format")),
		VisualTarget: strings.TrimSpace(q.Get("visual")),
	}
}

// Export handles GET /reports/{id}/export?format=pdf|csv|json&visual=target
func (h *ReportHandler) Export() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		artifact, err := h.policy.ExportReport(r.Context(), exportInput(r))
		if err != nil {
			handleDomainError(w, r, err)
			return
		}

		response.Attachment(w, artifact.Filename, artifact.MIMEType, artifact.Data)
	}
}

// Publish handles POST /reports/{id}/publish.
// Stored files come back as JSON with a URL; inline fallbacks come back as the file itself.
func (h *ReportHandler) Publish() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := h.policy.PublishReport(r.Context(), exportInput(r))
		if err != nil {
			handleDomainError(w, r, err)
			return
		}

		w.Header().Set("X-Delivery-Method", string(res.Method))
		if res.Method == delivery.MethodInline {
			response.Attachment(w, res.Filename, res.MIMEType, res.Data)
			return
		}

		response.OK(w, res)
	}
}

// GenerateWeeklyRequest represents the request body for generating a weekly report
type GenerateWeeklyRequest struct {
	End   *string `json:"end,omitempty"` // RFC3339, exclusive
	Title string  `json:"title,omitempty"`
}

// GenerateWeekly handles POST /reports/weekly
func (h *ReportHandler) GenerateWeekly() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GenerateWeeklyRequest
		if r.ContentLength != 0 {
			if err := decodeJSON(w, r, &req); err != nil {
				response.BadRequest(w, "invalid JSON")
				return
			}
		}

		in := policy.GenerateInput{Title: req.Title}
		if req.End != nil && *req.End != "" {
			t, err := time.Parse(time.RFC3339, *req.End)
			if err != nil {
				response.BadRequest(w, "invalid end format, use RFC3339")
				return
			}
			in.End = t
		}

		rep, err := h.policy.GenerateWeeklyReport(r.Context(), in)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}

		response.Created(w, rep)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

func logger(r *http.Request) *zerolog.Logger {
	return zerolog.Ctx(r.Context())
}
