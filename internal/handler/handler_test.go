package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/mmeshcher/discount-grid-system/internal/bulk"
	"github.com/mmeshcher/discount-grid-system/internal/model"
	"github.com/mmeshcher/discount-grid-system/internal/service"
	"github.com/mmeshcher/discount-grid-system/internal/store"
)

type stubService struct {
	loadErr   error
	loadCalls int

	records []model.DiscountRecord
	stats   store.Stats

	setFilterErr error

	uniqueValues []string
	uniqueErr    error

	updateErr error

	deletedID string

	bulkUpdateErr error
	bulkDeleteErr error

	exportErr      error
	exportFilename string
	exportBody     string

	status bulk.Status
}

func (s *stubService) Load(ctx context.Context, count int) error {
	s.loadCalls++
	return s.loadErr
}

func (s *stubService) Records() []model.DiscountRecord { return s.records }

func (s *stubService) Stats() store.Stats { return s.stats }

func (s *stubService) SetFilter(field string, values []string) error { return s.setFilterErr }

func (s *stubService) ClearFilters() {}

func (s *stubService) UniqueValues(field string) ([]string, error) {
	return s.uniqueValues, s.uniqueErr
}

func (s *stubService) UpdateRecord(rec model.DiscountRecord) error { return s.updateErr }

func (s *stubService) DeleteRecord(clientID string) { s.deletedID = clientID }

func (s *stubService) BulkUpdate(ctx context.Context, clientIDs []string, patch bulk.Patch) error {
	return s.bulkUpdateErr
}

func (s *stubService) BulkDelete(ctx context.Context, clientIDs []string) error {
	return s.bulkDeleteErr
}

func (s *stubService) ExportCSV(ctx context.Context, clientIDs []string, filename string, w io.Writer) (string, error) {
	if s.exportErr != nil {
		return "", s.exportErr
	}
	_, _ = io.WriteString(w, s.exportBody)
	return s.exportFilename, nil
}

func (s *stubService) BulkStatus() bulk.Status { return s.status }

func newTestRouter(t *testing.T, svc Service) http.Handler {
	t.Helper()

	logger, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	return NewHandler(svc, logger).SetupRouter()
}

func TestLoadRecords_Success(t *testing.T) {
	svc := &stubService{stats: store.Stats{TotalCount: 10, FilteredCount: 10}}
	router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/records/load", strings.NewReader(`{"count":10}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var stats store.Stats
	if err := json.NewDecoder(res.Body).Decode(&stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stats.TotalCount != 10 {
		t.Fatalf("TotalCount = %d, want 10", stats.TotalCount)
	}
}

func TestLoadRecords_NegativeCount(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/records/load", strings.NewReader(`{"count":-5}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if svc.loadCalls != 0 {
		t.Fatalf("Load called %d times, want 0", svc.loadCalls)
	}
}

func TestGetRecords_EmptyCollectionIsJSONArray(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/records", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"records":[]`) {
		t.Fatalf("body = %q, want empty records array", rec.Body.String())
	}
}

func TestGetUniqueValues_MissingField(t *testing.T) {
	router := newTestRouter(t, &stubService{})

	req := httptest.NewRequest(http.MethodGet, "/api/records/values", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetUniqueValues_UnknownField(t *testing.T) {
	router := newTestRouter(t, &stubService{uniqueErr: store.ErrUnknownField})

	req := httptest.NewRequest(http.MethodGet, "/api/records/values?field=nosuch", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUpdateRecord_ValidationErrors(t *testing.T) {
	svc := &stubService{updateErr: &service.ValidationError{Messages: []string{"Client is required"}}}
	router := newTestRouter(t, svc)

	body, _ := json.Marshal(model.DiscountRecord{Percent: 40})
	req := httptest.NewRequest(http.MethodPut, "/api/records/DSC-SEGA000001", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(rec.Body.String(), "Client is required") {
		t.Fatalf("body = %q, want validation message", rec.Body.String())
	}
}

func TestUpdateRecord_NotFound(t *testing.T) {
	svc := &stubService{updateErr: service.ErrRecordNotFound}
	router := newTestRouter(t, svc)

	body, _ := json.Marshal(model.DiscountRecord{Client: "Sega", Platform: model.PlatformSteam})
	req := httptest.NewRequest(http.MethodPut, "/api/records/DSC-GHOST999999", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDeleteRecord_PassesID(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/records/DSC-SEGA000001", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if svc.deletedID != "DSC-SEGA000001" {
		t.Fatalf("deletedID = %q", svc.deletedID)
	}
}

func TestBulkUpdate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"empty selection", bulk.ErrEmptySelection, http.StatusBadRequest},
		{"in flight", bulk.ErrOperationInFlight, http.StatusConflict},
		{"not found", service.ErrRecordNotFound, http.StatusNotFound},
		{"validation", &service.ValidationError{Messages: []string{"bad"}}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, &stubService{bulkUpdateErr: tt.err})

			req := httptest.NewRequest(http.MethodPost, "/api/bulk/update",
				strings.NewReader(`{"clientIds":["X"],"patch":{}}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestBulkUpdate_ReturnsResultMessage(t *testing.T) {
	svc := &stubService{status: bulk.Status{LastOperationResult: "Successfully updated 2 records"}}
	router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/bulk/update",
		strings.NewReader(`{"clientIds":["A","B"],"patch":{"discountPercent":50}}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Successfully updated 2") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestExportCSV_SetsDownloadHeaders(t *testing.T) {
	svc := &stubService{
		exportFilename: "discounts-2024-06-01T10-00-00Z.csv",
		exportBody:     "Client Id,Client\nDSC-A000000,Sega\n",
	}
	router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/bulk/export",
		strings.NewReader(`{"clientIds":["DSC-A000000"]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content-type = %q", ct)
	}
	if cd := res.Header.Get("Content-Disposition"); !strings.Contains(cd, svc.exportFilename) {
		t.Fatalf("content-disposition = %q", cd)
	}

	body, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(body), "DSC-A000000") {
		t.Fatalf("body = %q", string(body))
	}
}

func TestBulkStatus(t *testing.T) {
	svc := &stubService{status: bulk.Status{IsProcessing: true, OperationProgress: 40}}
	router := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/bulk/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var status bulk.Status
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !status.IsProcessing || status.OperationProgress != 40 {
		t.Fatalf("status = %+v", status)
	}
}
