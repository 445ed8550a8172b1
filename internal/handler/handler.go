// Package handler содержит HTTP-обработчики API сервиса скидочных акций.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/discount-grid-system/internal/bulk"
	"github.com/mmeshcher/discount-grid-system/internal/model"
	"github.com/mmeshcher/discount-grid-system/internal/service"
	"github.com/mmeshcher/discount-grid-system/internal/store"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Load(ctx context.Context, count int) error
	Records() []model.DiscountRecord
	Stats() store.Stats
	SetFilter(field string, values []string) error
	ClearFilters()
	UniqueValues(field string) ([]string, error)
	UpdateRecord(rec model.DiscountRecord) error
	DeleteRecord(clientID string)
	BulkUpdate(ctx context.Context, clientIDs []string, patch bulk.Patch) error
	BulkDelete(ctx context.Context, clientIDs []string) error
	ExportCSV(ctx context.Context, clientIDs []string, filename string, w io.Writer) (string, error)
	BulkStatus() bulk.Status
}

// Handler реализует HTTP-обработчики API сервиса скидочных акций.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: s,
		logger:  logger,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}

// writeError отображает ошибки бизнес-логики на HTTP-статусы.
func (h *Handler) writeError(w http.ResponseWriter, err error, operation string) {
	var verr *service.ValidationError

	switch {
	case errors.As(err, &verr):
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string][]string{"errors": verr.Messages})
	case errors.Is(err, service.ErrRecordNotFound):
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	case errors.Is(err, bulk.ErrEmptySelection):
		http.Error(w, "no records selected", http.StatusBadRequest)
	case errors.Is(err, bulk.ErrOperationInFlight):
		http.Error(w, "another bulk operation is in progress", http.StatusConflict)
	case errors.Is(err, store.ErrUnknownField):
		http.Error(w, "unknown record field", http.StatusBadRequest)
	default:
		h.logger.Error(operation+" error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type loadRequest struct {
	Count int `json:"count"`
}

// LoadRecords заменяет коллекцию свежесгенерированными записями.
func (h *Handler) LoadRecords(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Count < 0 {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.Load(r.Context(), req.Count); err != nil {
		h.writeError(w, err, "load records")
		return
	}

	h.writeJSON(w, http.StatusOK, h.service.Stats())
}

type recordsResponse struct {
	Records []model.DiscountRecord `json:"records"`
	Stats   store.Stats            `json:"stats"`
}

// GetRecords возвращает отфильтрованное представление коллекции со сводкой.
func (h *Handler) GetRecords(w http.ResponseWriter, r *http.Request) {
	records := h.service.Records()
	if records == nil {
		records = []model.DiscountRecord{}
	}

	h.writeJSON(w, http.StatusOK, recordsResponse{
		Records: records,
		Stats:   h.service.Stats(),
	})
}

// GetUniqueValues возвращает уникальные значения поля для списков фильтров.
func (h *Handler) GetUniqueValues(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("field")
	if field == "" {
		http.Error(w, "field parameter is required", http.StatusBadRequest)
		return
	}

	values, err := h.service.UniqueValues(field)
	if err != nil {
		h.writeError(w, err, "unique values")
		return
	}
	if values == nil {
		values = []string{}
	}

	h.writeJSON(w, http.StatusOK, map[string][]string{"values": values})
}

// UpdateRecord фиксирует правку одной записи. ClientID берётся из пути.
func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	var rec model.DiscountRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	rec.ClientID = chi.URLParam(r, "clientID")

	if err := h.service.UpdateRecord(rec); err != nil {
		h.writeError(w, err, "update record")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// DeleteRecord удаляет запись. Неизвестный ClientID игнорируется.
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	h.service.DeleteRecord(chi.URLParam(r, "clientID"))
	w.WriteHeader(http.StatusOK)
}

type filterRequest struct {
	Field  string   `json:"field"`
	Values []string `json:"values"`
}

// SetFilter заменяет набор принятых значений фильтра для одного поля.
func (h *Handler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.SetFilter(req.Field, req.Values); err != nil {
		h.writeError(w, err, "set filter")
		return
	}

	h.writeJSON(w, http.StatusOK, h.service.Stats())
}

// ClearFilters снимает все активные фильтры.
func (h *Handler) ClearFilters(w http.ResponseWriter, r *http.Request) {
	h.service.ClearFilters()
	h.writeJSON(w, http.StatusOK, h.service.Stats())
}

type bulkUpdateRequest struct {
	ClientIDs []string   `json:"clientIds"`
	Patch     bulk.Patch `json:"patch"`
}

type bulkResultResponse struct {
	Result string `json:"result"`
}

// BulkUpdate применяет единый patch ко всем записям выборки.
func (h *Handler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	var req bulkUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.BulkUpdate(r.Context(), req.ClientIDs, req.Patch); err != nil {
		h.writeError(w, err, "bulk update")
		return
	}

	h.writeJSON(w, http.StatusOK, bulkResultResponse{Result: h.service.BulkStatus().LastOperationResult})
}

type bulkSelectionRequest struct {
	ClientIDs []string `json:"clientIds"`
	Filename  string   `json:"filename,omitempty"`
}

// BulkDelete удаляет все записи выборки.
func (h *Handler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.BulkDelete(r.Context(), req.ClientIDs); err != nil {
		h.writeError(w, err, "bulk delete")
		return
	}

	h.writeJSON(w, http.StatusOK, bulkResultResponse{Result: h.service.BulkStatus().LastOperationResult})
}

// ExportCSV отдаёт выборку одним CSV-файлом.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var req bulkSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	// Сериализация в буфер: заголовки ответа должны уйти раньше тела,
	// а ошибка экспорта — раньше заголовков.
	var buf bytes.Buffer
	filename, err := h.service.ExportCSV(r.Context(), req.ClientIDs, req.Filename, &buf)
	if err != nil {
		h.writeError(w, err, "export csv")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("write csv response", zap.Error(err))
	}
}

// BulkStatus возвращает состояние движка массовых операций.
func (h *Handler) BulkStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.BulkStatus())
}
