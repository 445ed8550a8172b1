// Package service реализует бизнес-логику сервиса скидочных акций:
// связывает хранилище записей с движком массовых операций.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mmeshcher/discount-grid-system/internal/bulk"
	"github.com/mmeshcher/discount-grid-system/internal/model"
	"github.com/mmeshcher/discount-grid-system/internal/store"
	"github.com/mmeshcher/discount-grid-system/internal/validation"
)

// ErrRecordNotFound возвращается, если запись с указанным ClientID отсутствует.
var ErrRecordNotFound = errors.New("record not found")

// ValidationError содержит список человекочитаемых ошибок валидации.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// Store описывает контракт хранилища записей, используемый сервисом.
type Store interface {
	Load(ctx context.Context, count int) error
	FilteredView() []model.DiscountRecord
	SetFilter(field string, values []string) error
	ClearFilters()
	UniqueValues(field string) ([]string, error)
	GetRecord(clientID string) (model.DiscountRecord, bool)
	UpdateRecord(rec model.DiscountRecord)
	DeleteRecord(clientID string)
	DeleteRecords(clientIDs []string)
	Stats() store.Stats
}

// Service содержит бизнес-логику сервиса скидочных акций. Движок массовых
// операций получает доступ к хранилищу только через колбэки сервиса.
type Service struct {
	store  Store
	engine *bulk.Engine
}

// NewService создаёт сервис с указанным хранилищем и движком массовых операций.
func NewService(st Store, engine *bulk.Engine) *Service {
	return &Service{
		store:  st,
		engine: engine,
	}
}

// Load заменяет коллекцию count свежесгенерированными записями.
func (s *Service) Load(ctx context.Context, count int) error {
	if count < 0 {
		return &ValidationError{Messages: []string{"Record count must be non-negative"}}
	}
	return s.store.Load(ctx, count)
}

// Records возвращает отфильтрованное представление коллекции.
func (s *Service) Records() []model.DiscountRecord {
	return s.store.FilteredView()
}

// Stats возвращает сводное состояние хранилища.
func (s *Service) Stats() store.Stats {
	return s.store.Stats()
}

// SetFilter заменяет набор принятых значений фильтра для поля.
func (s *Service) SetFilter(field string, values []string) error {
	return s.store.SetFilter(field, values)
}

// ClearFilters снимает все фильтры.
func (s *Service) ClearFilters() {
	s.store.ClearFilters()
}

// UniqueValues возвращает отсортированные уникальные значения поля.
func (s *Service) UniqueValues(field string) ([]string, error) {
	return s.store.UniqueValues(field)
}

// UpdateRecord валидирует и фиксирует правку одной записи.
func (s *Service) UpdateRecord(rec model.DiscountRecord) error {
	if _, ok := s.store.GetRecord(rec.ClientID); !ok {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, rec.ClientID)
	}

	if msgs := validation.ValidateRecord(rec); len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}

	s.store.UpdateRecord(rec)
	return nil
}

// DeleteRecord удаляет запись по ClientID. Неизвестный ClientID игнорируется.
func (s *Service) DeleteRecord(clientID string) {
	s.store.DeleteRecord(clientID)
}

// BulkUpdate применяет patch ко всем записям выборки. Валидация выполняется
// до первого изменения; при ошибке в середине цикла уже зафиксированные
// записи остаются изменёнными.
func (s *Service) BulkUpdate(ctx context.Context, clientIDs []string, patch bulk.Patch) error {
	if msgs := validation.ValidatePatch(patch); len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}

	records, err := s.resolveSelection(clientIDs)
	if err != nil {
		return err
	}

	return s.engine.BulkUpdate(ctx, records, patch, func(rec model.DiscountRecord) error {
		s.store.UpdateRecord(rec)
		return nil
	})
}

// BulkDelete удаляет все записи выборки одним пакетным вызовом хранилища.
func (s *Service) BulkDelete(ctx context.Context, clientIDs []string) error {
	records, err := s.resolveSelection(clientIDs)
	if err != nil {
		return err
	}

	return s.engine.BulkDelete(ctx, records, func(ids []string) error {
		s.store.DeleteRecords(ids)
		return nil
	})
}

// ExportCSV сериализует выборку в CSV и пишет её в w.
// Возвращает имя файла для выдачи клиенту.
func (s *Service) ExportCSV(ctx context.Context, clientIDs []string, filename string, w io.Writer) (string, error) {
	records, err := s.resolveSelection(clientIDs)
	if err != nil {
		return "", err
	}

	return s.engine.ExportCSV(ctx, records, filename, w)
}

// BulkStatus возвращает состояние движка массовых операций.
func (s *Service) BulkStatus() bulk.Status {
	return s.engine.Status()
}

// resolveSelection превращает список ClientID в записи хранилища.
// Любой неизвестный идентификатор делает выборку ошибочной целиком.
func (s *Service) resolveSelection(clientIDs []string) ([]model.DiscountRecord, error) {
	records := make([]model.DiscountRecord, 0, len(clientIDs))
	for _, id := range clientIDs {
		rec, ok := s.store.GetRecord(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
		}
		records = append(records, rec)
	}
	return records, nil
}
