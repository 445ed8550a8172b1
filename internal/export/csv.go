// Package export сериализует записи акций в CSV.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mmeshcher/discount-grid-system/internal/model"
)

// Header перечисляет 16 колонок CSV-файла в фиксированном порядке.
var Header = []string{
	"Client Id",
	"Client",
	"Platform",
	"Region",
	"Discount",
	"Start Date",
	"Start Time",
	"End Date",
	"End Time",
	"Percent",
	"Deadline",
	"Implementation Status",
	"Sales Event Status",
	"Comments",
	"Month",
	"Length (Days)",
}

// Write сериализует записи в CSV с заголовком и экранированием по RFC 4180.
// Пустой список записей не пишет ничего, даже заголовок.
func Write(w io.Writer, records []model.DiscountRecord) error {
	if len(records) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.ClientID,
			rec.Client,
			string(rec.Platform),
			string(rec.Region),
			rec.Discount,
			rec.StartDate,
			rec.StartTime,
			rec.EndDate,
			rec.EndTime,
			strconv.Itoa(rec.Percent),
			rec.Deadline,
			string(rec.ImplementationStatus),
			string(rec.SalesEventStatus),
			rec.Comments,
			rec.Month,
			strconv.Itoa(rec.Length),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record %s: %w", rec.ClientID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Marshal возвращает CSV-представление записей одним байтовым срезом.
func Marshal(records []model.DiscountRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename строит безопасное для файловой системы имя файла вида
// <prefix>-<метка времени>.csv, где метка усечена до секунд,
// а двоеточия заменены дефисами.
func Filename(prefix string) string {
	ts := time.Now().UTC().Truncate(time.Second).Format(time.RFC3339)
	return prefix + "-" + strings.ReplaceAll(ts, ":", "-") + ".csv"
}
