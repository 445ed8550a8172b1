// Package dateutil содержит чистые функции работы с календарными датами
// в формате yyyy-mm-dd.
package dateutil

import (
	"math"
	"regexp"
	"time"
)

// DateLayout задаёт формат календарной даты, используемый во всех записях.
const DateLayout = "2006-01-02"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// MonthName возвращает полное английское название месяца для даты.
// Для нераспознаваемой строки возвращает пустую строку.
func MonthName(s string) string {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return ""
	}
	return d.Month().String()
}

// DaysBetween возвращает число полных дней между двумя датами, округлённое
// вверх и не меньше нуля. Пустая или нераспознаваемая дата даёт ноль.
func DaysBetween(start, end string) int {
	if start == "" || end == "" {
		return 0
	}

	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return 0
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return 0
	}

	days := int(math.Ceil(e.Sub(s).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

// IsValidDateString проверяет, что строка имеет вид yyyy-mm-dd и задаёт
// существующую календарную дату.
func IsValidDateString(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// FormatDate форматирует дату как yyyy-mm-dd с ведущими нулями.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays сдвигает дату на n дней (n может быть отрицательным).
// Нераспознаваемая строка возвращается без изменений.
func AddDays(s string, n int) string {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return s
	}
	return FormatDate(d.AddDate(0, 0, n))
}
