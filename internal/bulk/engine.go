// Package bulk реализует массовые операции над выборкой записей:
// обновление, удаление и экспорт в CSV.
//
// Движок не обращается к хранилищу напрямую: фиксация изменений выполняется
// через переданные вызывающей стороной колбэки.
package bulk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/mmeshcher/discount-grid-system/internal/export"
	"github.com/mmeshcher/discount-grid-system/internal/model"
)

var (
	// ErrEmptySelection возвращается при вызове массовой операции с пустой выборкой.
	ErrEmptySelection = errors.New("no records selected")
	// ErrOperationInFlight возвращается, если другая массовая операция ещё не завершена.
	ErrOperationInFlight = errors.New("another bulk operation is in progress")
)

const (
	// yieldEvery задаёт шаг, с которым цикл обновления уступает управление
	// и проверяет отмену контекста.
	yieldEvery = 100
	// tickSteps и tickDelay задают имитацию прогресса для операций,
	// выполняющихся одним пакетным вызовом.
	tickSteps = 5
	tickDelay = 10 * time.Millisecond
)

// Patch описывает единое обновление, применяемое ко всем выбранным записям.
// Строковые поля применяются, если непустые; DiscountPercent — если задан.
type Patch struct {
	DiscountName    string `json:"discountName"`
	DiscountPercent *int   `json:"discountPercent" validate:"omitempty,gte=0,lte=100"`
	StartDate       string `json:"startDate" validate:"omitempty,griddate"`
	EndDate         string `json:"endDate" validate:"omitempty,griddate"`
}

// Status описывает состояние движка для слоя представления.
type Status struct {
	IsProcessing        bool   `json:"isProcessing"`
	OperationProgress   int    `json:"operationProgress"`
	LastOperationResult string `json:"lastOperationResult,omitempty"`
}

// UpdateFunc фиксирует одну обновлённую запись в хранилище.
type UpdateFunc func(model.DiscountRecord) error

// DeleteFunc удаляет записи с перечисленными ClientID из хранилища.
type DeleteFunc func(clientIDs []string) error

// Engine выполняет массовые операции и ведёт их прогресс.
// Одновременно допускается не более одной операции.
type Engine struct {
	filenamePrefix string

	inFlight sync.Mutex

	mu         sync.Mutex
	processing bool
	progress   int
	lastResult string
}

// New создаёт движок массовых операций. prefix используется для имён
// CSV-файлов по умолчанию.
func New(prefix string) *Engine {
	return &Engine{filenamePrefix: prefix}
}

// begin захватывает эксклюзивное право на операцию и проверяет выборку.
// Возвращаемая функция обязана быть вызвана по завершении: она сбрасывает
// прогресс и флаг обработки, чтобы индикатор никогда не зависал.
func (e *Engine) begin(selected int) (func(), error) {
	if !e.inFlight.TryLock() {
		return nil, ErrOperationInFlight
	}

	if selected == 0 {
		e.inFlight.Unlock()
		return nil, ErrEmptySelection
	}

	e.mu.Lock()
	e.processing = true
	e.progress = 0
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		e.processing = false
		e.progress = 0
		e.mu.Unlock()
		e.inFlight.Unlock()
	}, nil
}

// BulkUpdate применяет patch к каждой записи выборки по порядку, передавая
// объединённую запись в onUpdate. Уже зафиксированные записи при ошибке
// не откатываются.
func (e *Engine) BulkUpdate(ctx context.Context, records []model.DiscountRecord, patch Patch, onUpdate UpdateFunc) error {
	done, err := e.begin(len(records))
	if err != nil {
		return err
	}
	defer done()

	total := len(records)
	for i, rec := range records {
		if i > 0 && i%yieldEvery == 0 {
			select {
			case <-ctx.Done():
				e.setResult(fmt.Sprintf("Error: %v", ctx.Err()))
				return ctx.Err()
			default:
			}
		}

		merged := applyPatch(rec, patch)
		if err := onUpdate(merged); err != nil {
			e.setResult(fmt.Sprintf("Error: failed to update %s: %v", rec.ClientID, err))
			return fmt.Errorf("update record %s: %w", rec.ClientID, err)
		}

		e.setProgress(progressOf(i+1, total))
	}

	e.setResult(fmt.Sprintf("Successfully updated %d records", total))
	return nil
}

// BulkDelete удаляет выборку одним пакетным вызовом onDelete.
// Прогресс имитируется: реальное удаление стоит одну операцию.
func (e *Engine) BulkDelete(ctx context.Context, records []model.DiscountRecord, onDelete DeleteFunc) error {
	done, err := e.begin(len(records))
	if err != nil {
		return err
	}
	defer done()

	if err := e.simulateProgress(ctx); err != nil {
		e.setResult(fmt.Sprintf("Error: %v", err))
		return err
	}

	clientIDs := make([]string, 0, len(records))
	for _, rec := range records {
		clientIDs = append(clientIDs, rec.ClientID)
	}

	if err := onDelete(clientIDs); err != nil {
		e.setResult(fmt.Sprintf("Error: failed to delete records: %v", err))
		return fmt.Errorf("delete records: %w", err)
	}

	e.setResult(fmt.Sprintf("Successfully deleted %d records", len(records)))
	return nil
}

// ExportCSV сериализует выборку в CSV и пишет её в w. Пустое имя файла
// заменяется сгенерированным по префиксу движка. Возвращает использованное
// имя файла.
func (e *Engine) ExportCSV(ctx context.Context, records []model.DiscountRecord, filename string, w io.Writer) (string, error) {
	done, err := e.begin(len(records))
	if err != nil {
		return "", err
	}
	defer done()

	if filename == "" {
		filename = export.Filename(e.filenamePrefix)
	}

	if err := e.simulateProgress(ctx); err != nil {
		e.setResult(fmt.Sprintf("Error: %v", err))
		return filename, err
	}

	if err := export.Write(w, records); err != nil {
		e.setResult(fmt.Sprintf("Error: failed to export records: %v", err))
		return filename, fmt.Errorf("export records: %w", err)
	}

	e.setResult(fmt.Sprintf("Successfully exported %d records", len(records)))
	return filename, nil
}

// Status возвращает снимок состояния движка.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Status{
		IsProcessing:        e.processing,
		OperationProgress:   e.progress,
		LastOperationResult: e.lastResult,
	}
}

func (e *Engine) simulateProgress(ctx context.Context) error {
	for i := 1; i <= tickSteps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(tickDelay):
		}
		e.setProgress(progressOf(i, tickSteps))
	}
	return nil
}

func (e *Engine) setProgress(p int) {
	e.mu.Lock()
	e.progress = p
	e.mu.Unlock()
}

func (e *Engine) setResult(msg string) {
	e.mu.Lock()
	e.lastResult = msg
	e.mu.Unlock()
}

func progressOf(done, total int) int {
	return int(math.Round(float64(done) / float64(total) * 100))
}

// applyPatch строит объединённую запись: поля patch перекрывают поля rec,
// только если заданы. Вычисляемые поля пересчитывает хранилище при фиксации.
func applyPatch(rec model.DiscountRecord, patch Patch) model.DiscountRecord {
	if patch.DiscountName != "" {
		rec.Discount = patch.DiscountName
	}
	if patch.DiscountPercent != nil {
		rec.Percent = *patch.DiscountPercent
	}
	if patch.StartDate != "" {
		rec.StartDate = patch.StartDate
	}
	if patch.EndDate != "" {
		rec.EndDate = patch.EndDate
	}
	return rec
}
