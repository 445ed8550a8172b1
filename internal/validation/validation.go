// Package validation содержит общий контракт валидации для правок записей
// и массовых обновлений. Оба пути используют один и тот же набор правил.
package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/mmeshcher/discount-grid-system/internal/bulk"
	"github.com/mmeshcher/discount-grid-system/internal/dateutil"
	"github.com/mmeshcher/discount-grid-system/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Проверка строгого формата yyyy-mm-dd: тег datetime не подходит,
	// поскольку time.Parse принимает месяцы и дни без ведущего нуля.
	_ = v.RegisterValidation("griddate", func(fl validator.FieldLevel) bool {
		return dateutil.IsValidDateString(fl.Field().String())
	})

	return v
}

var fieldLabels = map[string]string{
	"Client":          "Client",
	"Platform":        "Platform",
	"Percent":         "Percent",
	"DiscountPercent": "Discount percent",
	"StartDate":       "Start date",
	"EndDate":         "End date",
	"Deadline":        "Deadline",
}

// ValidatePatch проверяет полезную нагрузку массового обновления и возвращает
// список человекочитаемых ошибок. Пустой список означает валидный patch.
func ValidatePatch(p bulk.Patch) []string {
	errs := collect(validate.Struct(p))

	if p.StartDate != "" && p.EndDate != "" &&
		dateutil.IsValidDateString(p.StartDate) && dateutil.IsValidDateString(p.EndDate) &&
		p.EndDate <= p.StartDate {
		errs = append(errs, "End date must be strictly after start date")
	}

	return errs
}

// ValidateRecord проверяет запись перед одиночной правкой: обязательные поля,
// диапазон процента, формат дат, порядок дат и допустимость региона для платформы.
func ValidateRecord(rec model.DiscountRecord) []string {
	errs := collect(validate.Struct(rec))

	if rec.Platform != "" {
		if _, known := model.PlatformRegions[rec.Platform]; !known {
			errs = append(errs, fmt.Sprintf("Unknown platform %q", rec.Platform))
		} else if !model.IsRegionAllowed(rec.Platform, rec.Region) {
			errs = append(errs, fmt.Sprintf("Region %q is not allowed for platform %q", rec.Region, rec.Platform))
		}
	}

	if rec.StartDate != "" && rec.EndDate != "" &&
		dateutil.IsValidDateString(rec.StartDate) && dateutil.IsValidDateString(rec.EndDate) &&
		rec.EndDate <= rec.StartDate {
		errs = append(errs, "End date must be strictly after start date")
	}

	return errs
}

func collect(err error) []string {
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, message(fe))
	}
	return msgs
}

func message(fe validator.FieldError) string {
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "gte", "lte", "min", "max":
		return fmt.Sprintf("%s must be between 0 and 100", label)
	case "griddate":
		return fmt.Sprintf("%s must be a valid date in yyyy-mm-dd format", label)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}
