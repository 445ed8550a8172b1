// Package store содержит авторитетное хранилище записей акций в памяти.
package store

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/mmeshcher/discount-grid-system/internal/dateutil"
	"github.com/mmeshcher/discount-grid-system/internal/model"
)

// ErrUnknownField возвращается при обращении к несуществующему полю фильтрации.
var ErrUnknownField = errors.New("unknown record field")

// Generator описывает контракт генерации записей, используемый при загрузке.
type Generator interface {
	Generate(count int) ([]model.DiscountRecord, error)
}

// fieldAccessors отображает имя поля на функцию, возвращающую его строковое
// значение. Month и Length всегда вычисляются заново, а не берутся из записи.
var fieldAccessors = map[string]func(model.DiscountRecord) string{
	"clientId":  func(r model.DiscountRecord) string { return r.ClientID },
	"client":    func(r model.DiscountRecord) string { return r.Client },
	"platform":  func(r model.DiscountRecord) string { return string(r.Platform) },
	"region":    func(r model.DiscountRecord) string { return string(r.Region) },
	"discount":  func(r model.DiscountRecord) string { return r.Discount },
	"percent":   func(r model.DiscountRecord) string { return strconv.Itoa(r.Percent) },
	"comments":  func(r model.DiscountRecord) string { return r.Comments },
	"startDate": func(r model.DiscountRecord) string { return r.StartDate },
	"startTime": func(r model.DiscountRecord) string { return r.StartTime },
	"endDate":   func(r model.DiscountRecord) string { return r.EndDate },
	"endTime":   func(r model.DiscountRecord) string { return r.EndTime },
	"deadline":  func(r model.DiscountRecord) string { return r.Deadline },
	"implementationStatus": func(r model.DiscountRecord) string {
		return string(r.ImplementationStatus)
	},
	"salesEventStatus": func(r model.DiscountRecord) string {
		return string(r.SalesEventStatus)
	},
	"month": func(r model.DiscountRecord) string { return dateutil.MonthName(r.StartDate) },
	"length": func(r model.DiscountRecord) string {
		return strconv.Itoa(dateutil.DaysBetween(r.StartDate, r.EndDate))
	},
}

// Stats описывает сводное состояние хранилища для слоя представления.
type Stats struct {
	IsLoading        bool   `json:"isLoading"`
	Error            string `json:"error,omitempty"`
	TotalCount       int    `json:"totalCount"`
	FilteredCount    int    `json:"filteredCount"`
	HasActiveFilters bool   `json:"hasActiveFilters"`
}

// Store хранит записи акций, активные фильтры и кэш отфильтрованного
// представления. Все методы безопасны для конкурентного вызова.
type Store struct {
	mu  sync.Mutex
	gen Generator

	records []model.DiscountRecord
	filters map[string][]string

	filtered      []model.DiscountRecord
	filteredValid bool

	loading bool
	loadErr string
}

// New создаёт пустое хранилище с указанным генератором записей.
func New(gen Generator) *Store {
	return &Store{
		gen:     gen,
		filters: make(map[string][]string),
	}
}

// Load генерирует count записей и атомарно заменяет ими всю коллекцию.
// При ошибке генерации прежние данные остаются нетронутыми, а сообщение
// об ошибке сохраняется в состоянии хранилища.
func (s *Store) Load(ctx context.Context, count int) error {
	s.mu.Lock()
	s.loading = true
	s.loadErr = ""
	s.mu.Unlock()

	records, err := s.gen.Generate(count)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.loadErr = err.Error()
		return err
	}

	for i := range records {
		attachComputed(&records[i])
	}
	s.records = records
	s.filteredValid = false
	return nil
}

// FilteredView возвращает записи, прошедшие все активные фильтры.
// Без активных фильтров возвращается сама коллекция без копирования.
// Результат кэшируется до изменения записей или фильтров.
func (s *Store) FilteredView() []model.DiscountRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.filters) == 0 {
		return s.records
	}

	if !s.filteredValid {
		s.filtered = s.applyFilters()
		s.filteredValid = true
	}
	return s.filtered
}

// applyFilters вычисляет отфильтрованное представление. Внутри одного поля
// принятые значения объединяются через ИЛИ, между полями действует И.
// Сравнение подстрочное и регистронезависимое. Вызывается под мьютексом.
func (s *Store) applyFilters() []model.DiscountRecord {
	filtered := make([]model.DiscountRecord, 0, len(s.records))

	for _, rec := range s.records {
		if s.matchesAll(rec) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

func (s *Store) matchesAll(rec model.DiscountRecord) bool {
	for field, accepted := range s.filters {
		accessor, ok := fieldAccessors[field]
		if !ok {
			return false
		}
		value := strings.ToLower(accessor(rec))

		matched := false
		for _, want := range accepted {
			if strings.Contains(value, strings.ToLower(want)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// SetFilter заменяет набор принятых значений для одного поля.
// Пустой набор снимает фильтр с поля.
func (s *Store) SetFilter(field string, values []string) error {
	if _, ok := fieldAccessors[field]; !ok {
		return ErrUnknownField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(values) == 0 {
		delete(s.filters, field)
	} else {
		s.filters[field] = values
	}
	s.filteredValid = false
	return nil
}

// ClearFilters снимает все активные фильтры.
func (s *Store) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filters = make(map[string][]string)
	s.filteredValid = false
}

// UniqueValues возвращает отсортированный список уникальных строковых
// значений поля по всем записям. Month и Length вычисляются на лету.
func (s *Store) UniqueValues(field string) ([]string, error) {
	accessor, ok := fieldAccessors[field]
	if !ok {
		return nil, ErrUnknownField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	for _, rec := range s.records {
		seen[accessor(rec)] = struct{}{}
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values, nil
}

// UpdateRecord заменяет запись с совпадающим ClientID, предварительно
// пересчитав вычисляемые поля. Неизвестный ClientID молча игнорируется.
func (s *Store) UpdateRecord(rec model.DiscountRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ClientID == rec.ClientID {
			attachComputed(&rec)
			// Копия вместо правки на месте: прежний срез мог быть отдан
			// наружу через FilteredView.
			updated := make([]model.DiscountRecord, len(s.records))
			copy(updated, s.records)
			updated[i] = rec
			s.records = updated
			s.filteredValid = false
			return
		}
	}
}

// GetRecord возвращает запись по ClientID.
func (s *Store) GetRecord(clientID string) (model.DiscountRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.records {
		if rec.ClientID == clientID {
			return rec, true
		}
	}
	return model.DiscountRecord{}, false
}

// DeleteRecord удаляет запись по ClientID. Неизвестный ClientID молча игнорируется.
func (s *Store) DeleteRecord(clientID string) {
	s.DeleteRecords([]string{clientID})
}

// DeleteRecords удаляет записи с перечисленными ClientID одним проходом.
func (s *Store) DeleteRecords(clientIDs []string) {
	if len(clientIDs) == 0 {
		return
	}

	drop := make(map[string]struct{}, len(clientIDs))
	for _, id := range clientIDs {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Новый срез, а не усечение на месте: прежний срез мог быть отдан
	// наружу через FilteredView.
	kept := make([]model.DiscountRecord, 0, len(s.records))
	for _, rec := range s.records {
		if _, ok := drop[rec.ClientID]; !ok {
			kept = append(kept, rec)
		}
	}
	s.records = kept
	s.filteredValid = false
}

// AddRecord добавляет запись в конец коллекции с вычисляемыми полями.
func (s *Store) AddRecord(rec model.DiscountRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attachComputed(&rec)
	// Новый срез: append мог бы дописать в массив, отданный наружу
	// через FilteredView.
	appended := make([]model.DiscountRecord, 0, len(s.records)+1)
	appended = append(appended, s.records...)
	s.records = append(appended, rec)
	s.filteredValid = false
}

// Stats возвращает сводное состояние хранилища.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	filteredCount := len(s.records)
	if len(s.filters) > 0 {
		if !s.filteredValid {
			s.filtered = s.applyFilters()
			s.filteredValid = true
		}
		filteredCount = len(s.filtered)
	}

	return Stats{
		IsLoading:        s.loading,
		Error:            s.loadErr,
		TotalCount:       len(s.records),
		FilteredCount:    filteredCount,
		HasActiveFilters: len(s.filters) > 0,
	}
}

// IsFilterableField сообщает, известно ли хранилищу поле с таким именем.
func IsFilterableField(field string) bool {
	_, ok := fieldAccessors[field]
	return ok
}

func attachComputed(rec *model.DiscountRecord) {
	rec.Month = dateutil.MonthName(rec.StartDate)
	rec.Length = dateutil.DaysBetween(rec.StartDate, rec.EndDate)
}
