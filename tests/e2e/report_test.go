package e2e

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func baseURL() string {
	if u := os.Getenv("E2E_BASE_URL"); u != "" {
		return strings.TrimRight(u, "/")
	}
	return "http://localhost:8080/api/v1"
}

type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Report struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Period         Period         `json:"period"`
	MetricsSummary map[string]any `json:"metricsSummary"`
}

type ListResponse struct {
	Reports []Report `json:"reports"`
	Total   int64    `json:"total"`
}

type Delivery struct {
	Method   string `json:"method"`
	Filename string `json:"filename"`
	URL      string `json:"url,omitempty"`
}

// requireServer skips when running short or when no server is listening
func requireServer(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}
	resp, err := http.Get(baseURL() + "/reports?limit=1")
	if err != nil {
		t.Skipf("server not reachable at %s: %v", baseURL(), err)
	}
	resp.Body.Close()
}

func reportPayload(title string) map[string]any {
	return map[string]any{
		"title":       title,
		"description": "Created by the e2e suite.",
		"period": map[string]string{
			"start": "2024-03-04T00:00:00Z",
			"end":   "2024-03-10T23:59:59Z",
		},
		"metricsSummary": map[string]any{
			"totalContent":          42,
			"averageEngagementRate": 4.25,
			"hashtagPerformance": []map[string]any{
				{"hashtag": "ootd", "usageCount": 8, "avgEngagementRate": 6.4},
			},
			"platformComparison": []map[string]any{
				{"platform": "tiktok", "contentCount": 12, "avgPerformance": 5.15},
			},
			"timeBasedInsights": map[string]any{
				"bestPostingHours":   []int{9, 18},
				"peakEngagementDays": []string{"Friday"},
			},
		},
		"recommendations": []map[string]any{{
			"title":           "Post more Reels",
			"description":     "Short form video outperforms static images.",
			"category":        "content_strategy",
			"priorityLevel":   "high",
			"confidenceScore": 0.87,
			"estimatedImpact": 0.65,
			"actionableSteps": []string{"Publish three Reels per week"},
		}},
	}
}

// Helper function to create a test report
func createTestReport(t *testing.T, title string) Report {
	t.Helper()

	body, _ := json.Marshal(reportPayload(title))
	resp, err := http.Post(baseURL()+"/reports", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to create report: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 201, got %d: %s", resp.StatusCode, string(respBody))
	}

	var rep Report
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return rep
}

// Helper function to delete a report
func deleteTestReport(t *testing.T, id string) {
	t.Helper()

	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/reports/%s", baseURL(), id), nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Logf("Warning: Failed to delete report %s: %v", id, err)
		return
	}
	resp.Body.Close()
}

func TestReportCreate(t *testing.T) {
	requireServer(t)

	t.Run("create report", func(t *testing.T) {
		rep := createTestReport(t, "E2E Weekly Report")
		defer deleteTestReport(t, rep.ID)

		if rep.ID == "" {
			t.Error("Expected ID to be set")
		}
		if rep.Title != "E2E Weekly Report" {
			t.Errorf("Expected title 'E2E Weekly Report', got '%s'", rep.Title)
		}
	})

	t.Run("create with inverted period fails", func(t *testing.T) {
		payload := reportPayload("Inverted")
		payload["period"] = map[string]string{"start": "2024-03-10T00:00:00Z", "end": "2024-03-04T00:00:00Z"}

		body, _ := json.Marshal(payload)
		resp, err := http.Post(baseURL()+"/reports", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("Failed to make request: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", resp.StatusCode)
		}
	})
}

func TestReportGetAndList(t *testing.T) {
	requireServer(t)

	rep := createTestReport(t, "E2E Listed Report")
	defer deleteTestReport(t, rep.ID)

	resp, err := http.Get(fmt.Sprintf("%s/reports/%s", baseURL(), rep.ID))
	if err != nil {
		t.Fatalf("Failed to get report: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(baseURL() + "/reports?limit=100")
	if err != nil {
		t.Fatalf("Failed to list reports: %v", err)
	}
	defer resp.Body.Close()

	var list ListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if list.Total < 1 {
		t.Errorf("Expected at least one report, got %d", list.Total)
	}

	resp, err = http.Get(baseURL() + "/reports/00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
}

func TestReportExport(t *testing.T) {
	requireServer(t)

	rep := createTestReport(t, "E2E Export Report")
	defer deleteTestReport(t, rep.ID)

	tests := []struct {
		format string
		mime   string
		prefix string
	}{
		{"pdf", "application/pdf", "%PDF-"},
		{"csv", "text/csv", "Report Details"},
		{"json", "application/json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			resp, err := http.Get(fmt.Sprintf("%s/reports/%s/export?format=%s", baseURL(), rep.ID, tt.format))
			if err != nil {
				t.Fatalf("Failed to export: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, tt.mime) {
				t.Errorf("Expected content type %s, got %s", tt.mime, ct)
			}
			if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "E2E_Export_Report_") {
				t.Errorf("Unexpected Content-Disposition %q", cd)
			}

			data, _ := io.ReadAll(resp.Body)
			if !bytes.HasPrefix(data, []byte(tt.prefix)) {
				t.Errorf("Expected body to start with %q", tt.prefix)
			}
		})
	}

	t.Run("unknown format fails", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/reports/%s/export?format=docx", baseURL(), rep.ID))
		if err != nil {
			t.Fatalf("Failed to make request: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", resp.StatusCode)
		}
	})
}

func TestReportPublish(t *testing.T) {
	requireServer(t)

	rep := createTestReport(t, "E2E Published Report")
	defer deleteTestReport(t, rep.ID)

	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/reports/%s/publish?format=csv", baseURL(), rep.ID), nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to publish: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	switch method := resp.Header.Get("X-Delivery-Method"); method {
	case "storage":
		var d Delivery
		if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if d.URL == "" {
			t.Error("Expected a storage URL")
		}
	case "inline":
		data, _ := io.ReadAll(resp.Body)
		if !bytes.HasPrefix(data, []byte("Report Details")) {
			t.Error("Expected inline CSV body")
		}
	default:
		t.Errorf("Unexpected delivery method %q", method)
	}
}

func TestReportDelete(t *testing.T) {
	requireServer(t)

	rep := createTestReport(t, "E2E Deleted Report")

	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/reports/%s", baseURL(), rep.ID), nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", resp.StatusCode)
	}

	resp, err = http.DefaultClient.Do(req.Clone(req.Context()))
	if err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404 on second delete, got %d", resp.StatusCode)
	}
}

func TestWeeklyGeneration(t *testing.T) {
	requireServer(t)

	end := time.Now().UTC().AddDate(5, 0, 0).Truncate(24 * time.Hour).Format(time.RFC3339)
	body, _ := json.Marshal(map[string]string{"end": end})

	resp, err := http.Post(baseURL()+"/reports/weekly", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	// No content was collected for a window in the future
	if resp.StatusCode != http.StatusUnprocessableEntity {
		respBody, _ := io.ReadAll(resp.Body)
		t.Errorf("Expected status 422, got %d: %s", resp.StatusCode, string(respBody))
	}
}
