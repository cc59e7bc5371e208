package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ugc-dashboard/reporting/internal/delivery"
	"github.com/ugc-dashboard/reporting/internal/document"
	"github.com/ugc-dashboard/reporting/internal/domain/report/entity"
	"github.com/ugc-dashboard/reporting/internal/domain/report/policy"
	"github.com/ugc-dashboard/reporting/internal/domain/report/service"
)

type mockReportPolicy struct {
	mock.Mock
}

func (m *mockReportPolicy) CreateReport(ctx context.Context, in service.CreateInput) (*entity.Report, error) {
	args := m.Called(ctx, in)
	return reportOrNil(args.Get(0)), args.Error(1)
}

func (m *mockReportPolicy) GetReport(ctx context.Context, id string) (*entity.Report, error) {
	args := m.Called(ctx, id)
	return reportOrNil(args.Get(0)), args.Error(1)
}

func (m *mockReportPolicy) DeleteReport(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockReportPolicy) ListReports(ctx context.Context, in service.ListInput) (*policy.ListReportsOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*policy.ListReportsOutput), args.Error(1)
}

func (m *mockReportPolicy) ExportReport(ctx context.Context, in policy.ExportInput) (*document.Artifact, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Artifact), args.Error(1)
}

func (m *mockReportPolicy) PublishReport(ctx context.Context, in policy.ExportInput) (*delivery.Result, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Result), args.Error(1)
}

func (m *mockReportPolicy) GenerateWeeklyReport(ctx context.Context, in policy.GenerateInput) (*entity.Report, error) {
	args := m.Called(ctx, in)
	return reportOrNil(args.Get(0)), args.Error(1)
}

func reportOrNil(v any) *entity.Report {
	if v == nil {
		return nil
	}
	return v.(*entity.Report)
}

func newReportRouter(p ReportPolicy) http.Handler {
	r := chi.NewRouter()
	NewReportHandler(p).RegisterRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestReportHandler_Export(t *testing.T) {
	p := new(mockReportPolicy)
	p.On("ExportReport", mock.Anything, policy.ExportInput{ID: "r1", Format: "csv", VisualTarget: ""}).
		Return(&document.Artifact{Filename: "Weekly_2024-03-11.csv", MIMEType: "text/csv", Data: []byte("Report Details\n")}, nil)

	rec := do(t, newReportRouter(p), http.MethodGet, "/reports/r1/export?format=CSV", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Weekly_2024-03-11.csv")
	assert.Equal(t, "Report Details\n", rec.Body.String())
}

func TestReportHandler_Export_PassesVisualTarget(t *testing.T) {
	p := new(mockReportPolicy)
	p.On("ExportReport", mock.Anything, policy.ExportInput{ID: "r1", Format: "", VisualTarget: "dashboard"}).
		Return(&document.Artifact{Filename: "a.pdf", MIMEType: "application/pdf", Data: []byte("%PDF-")}, nil)

	rec := do(t, newReportRouter(p), http.MethodGet, "/reports/r1/export?visual=dashboard", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	p.AssertExpectations(t)
}

func TestReportHandler_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", entity.ErrReportNotFound, http.StatusNotFound},
		{"bad format", fmt.Errorf("%w: %q", entity.ErrInvalidFormat, "xlsx"), http.StatusBadRequest},
		{"empty document", fmt.Errorf("building: %w", document.ErrEmptyDocument), http.StatusInternalServerError},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := new(mockReportPolicy)
			p.On("ExportReport", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := do(t, newReportRouter(p), http.MethodGet, "/reports/r1/export", "")

			assert.Equal(t, tt.code, rec.Code)
			assert.NotContains(t, rec.Body.String(), "connection reset")
		})
	}
}

func TestReportHandler_Create(t *testing.T) {
	p := new(mockReportPolicy)
	p.On("CreateReport", mock.Anything, mock.MatchedBy(func(in service.CreateInput) bool {
		return in.Title == "Weekly" &&
			in.Period.End.Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)) &&
			len(in.Recommendations) == 1 &&
			in.Recommendations[0].PriorityLevel == entity.PriorityHigh
	})).Return(&entity.Report{ID: "new", Title: "Weekly"}, nil)

	body := `{"title":"Weekly","period":{"start":"2024-03-04T00:00:00Z","end":"2024-03-11T00:00:00Z"},
		"recommendations":[{"title":"r","category":"hashtag_strategy","priorityLevel":"high","confidenceScore":0.5,"estimatedImpact":0.5}]}`
	rec := do(t, newReportRouter(p), http.MethodPost, "/reports", body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"new"`)
}

func TestReportHandler_Create_ValidationDetails(t *testing.T) {
	p := new(mockReportPolicy)
	untitled := entity.Report{Period: entity.Period{
		Start: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}}
	p.On("CreateReport", mock.Anything, mock.Anything).Return(nil, untitled.Validate())

	rec := do(t, newReportRouter(p), http.MethodPost, "/reports", `{"title":""}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid report","details":["title is required"]}`, rec.Body.String())

	rec = do(t, newReportRouter(p), http.MethodPost, "/reports", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHandler_List(t *testing.T) {
	p := new(mockReportPolicy)
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	p.On("ListReports", mock.Anything, mock.MatchedBy(func(in service.ListInput) bool {
		return in.Limit == 5 && in.Offset == 10 && in.From != nil && in.From.Equal(from) && in.To == nil
	})).Return(&policy.ListReportsOutput{Reports: []entity.Report{{ID: "a", Title: "A"}}, Total: 11}, nil)

	rec := do(t, newReportRouter(p), http.MethodGet, "/reports?limit=5&offset=10&from=2024-03-01T00:00:00Z", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ListReportsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(11), resp.Total)
	assert.Len(t, resp.Reports, 1)

	rec = do(t, newReportRouter(p), http.MethodGet, "/reports?to=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHandler_GetAndDelete(t *testing.T) {
	p := new(mockReportPolicy)
	p.On("GetReport", mock.Anything, "r1").Return(&entity.Report{ID: "r1", Title: "A"}, nil)
	p.On("DeleteReport", mock.Anything, "r1").Return(nil)
	p.On("DeleteReport", mock.Anything, "r2").Return(entity.ErrReportNotFound)

	h := newReportRouter(p)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/reports/r1", "").Code)
	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/reports/r1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/reports/r2", "").Code)
}

func TestReportHandler_Publish(t *testing.T) {
	t.Run("stored", func(t *testing.T) {
		p := new(mockReportPolicy)
		p.On("PublishReport", mock.Anything, policy.ExportInput{ID: "r1", Format: "pdf"}).
			Return(&delivery.Result{Method: delivery.MethodStorage, Filename: "a.pdf", URL: "http://cdn/a.pdf"}, nil)

		rec := do(t, newReportRouter(p), http.MethodPost, "/reports/r1/publish?format=pdf", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "storage", rec.Header().Get("X-Delivery-Method"))
		assert.Contains(t, rec.Body.String(), `"url":"http://cdn/a.pdf"`)
	})

	t.Run("inline fallback", func(t *testing.T) {
		p := new(mockReportPolicy)
		p.On("PublishReport", mock.Anything, mock.Anything).
			Return(&delivery.Result{Method: delivery.MethodInline, Filename: "a.json", MIMEType: "application/json", Data: []byte(`{"title":"A"}`)}, nil)

		rec := do(t, newReportRouter(p), http.MethodPost, "/reports/r1/publish?format=json", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "inline", rec.Header().Get("X-Delivery-Method"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
		assert.Equal(t, `{"title":"A"}`, rec.Body.String())
	})
}

func TestReportHandler_GenerateWeekly(t *testing.T) {
	p := new(mockReportPolicy)
	end := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	p.On("GenerateWeeklyReport", mock.Anything, mock.MatchedBy(func(in policy.GenerateInput) bool {
		return in.End.Equal(end)
	})).Return(&entity.Report{ID: "w1", Title: "Weekly UGC Report"}, nil).Once()
	p.On("GenerateWeeklyReport", mock.Anything, policy.GenerateInput{}).Return(nil, entity.ErrNoContent).Once()

	h := newReportRouter(p)

	assert.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/reports/weekly", `{"end":"2024-03-11T00:00:00Z"}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, h, http.MethodPost, "/reports/weekly", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/reports/weekly", `{"end":"monday"}`).Code)
}
