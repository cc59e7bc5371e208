package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()

	BadRequest(rec, "invalid report", "title is required")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"invalid report","details":["title is required"]}`, rec.Body.String())
}

func TestAttachment(t *testing.T) {
	rec := httptest.NewRecorder()

	Attachment(rec, "Weekly UGC_2024-03-11.csv", "text/csv", []byte("Report Details\n"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "15", rec.Header().Get("Content-Length"))
	assert.Equal(t, `attachment; filename="Weekly UGC_2024-03-11.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "Report Details\n", rec.Body.String())
}
