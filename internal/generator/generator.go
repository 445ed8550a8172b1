// Package generator создаёт синтетические записи скидочных акций.
package generator

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/mmeshcher/discount-grid-system/internal/dateutil"
	"github.com/mmeshcher/discount-grid-system/internal/model"
)

const (
	clientIDPrefix   = "DSC-"
	progressInterval = 10000
)

var clients = []string{
	"Valve Corporation",
	"Ubisoft Entertainment",
	"Electronic Arts",
	"CD Projekt Red",
	"Paradox Interactive",
	"Devolver Digital",
	"Square Enix",
	"Capcom",
	"Sega",
	"Bandai Namco",
	"Focus Entertainment",
	"THQ Nordic",
	"Team17",
	"Annapurna Interactive",
	"Raw Fury",
}

var discountNames = []string{
	"Summer Sale",
	"Winter Sale",
	"Weekend Deal",
	"Midweek Madness",
	"Publisher Week",
	"Franchise Spotlight",
	"Daily Deal",
	"Launch Discount",
	"Anniversary Sale",
	"Holiday Special",
}

var failureComments = []string{
	"Pricing feed rejected by platform",
	"Legal review blocked the campaign",
	"Missing regional price approvals",
	"Store page assets failed moderation",
}

var cancellationComments = []string{
	"Cancelled by client request",
	"Event postponed to next quarter",
	"Budget withdrawn before launch",
}

var genericComments = []string{
	"",
	"Awaiting final sign-off",
	"Assets delivered on time",
	"Coordinated with marketing team",
	"Standard seasonal campaign",
}

var startTimes = []string{"00:00", "08:00", "10:00", "12:00", "17:00"}

var endTimes = []string{"09:59", "12:00", "17:59", "21:00", "23:59"}

// Generator создаёт случайные, но согласованные со схемой записи акций.
type Generator struct {
	logger *zap.Logger
	now    func() time.Time
}

// New создаёт генератор записей.
func New(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		logger: logger,
		now:    time.Now,
	}
}

// Generate возвращает count случайных записей с уникальными ClientID.
// Отрицательный count считается ошибкой вызова.
func (g *Generator) Generate(count int) ([]model.DiscountRecord, error) {
	if count < 0 {
		return nil, fmt.Errorf("record count must be non-negative, got %d", count)
	}

	records := make([]model.DiscountRecord, 0, count)
	now := g.now()

	// Окно генерации: 12 месяцев с центром в текущем дне.
	windowStart := now.AddDate(0, -6, 0)
	windowDays := int(now.AddDate(0, 6, 0).Sub(windowStart).Hours() / 24)

	for i := 0; i < count; i++ {
		start := windowStart.AddDate(0, 0, rand.IntN(windowDays+1))
		startDate := dateutil.FormatDate(start)
		endDate := dateutil.AddDays(startDate, 1+rand.IntN(30))

		platform := model.Platforms[rand.IntN(len(model.Platforms))]
		allowed := model.PlatformRegions[platform]
		region := allowed[rand.IntN(len(allowed))]

		client := clients[rand.IntN(len(clients))]
		implStatus := model.ImplementationStatuses[rand.IntN(len(model.ImplementationStatuses))]
		salesStatus := model.SalesEventStatuses[rand.IntN(len(model.SalesEventStatuses))]

		records = append(records, model.DiscountRecord{
			ClientID:             clientID(client, i),
			Client:               client,
			Platform:             platform,
			Region:               region,
			Discount:             discountNames[rand.IntN(len(discountNames))],
			Percent:              5 * (1 + rand.IntN(18)),
			Comments:             comment(implStatus, salesStatus),
			StartDate:            startDate,
			StartTime:            startTimes[rand.IntN(len(startTimes))],
			EndDate:              endDate,
			EndTime:              endTimes[rand.IntN(len(endTimes))],
			Deadline:             dateutil.AddDays(startDate, -(1 + rand.IntN(14))),
			ImplementationStatus: implStatus,
			SalesEventStatus:     salesStatus,
		})

		if (i+1)%progressInterval == 0 {
			g.logger.Info("generating records", zap.Int("generated", i+1), zap.Int("total", count))
		}
	}

	return records, nil
}

// comment выбирает комментарий по приоритету: провал внедрения, затем отмена
// распродажи, затем общий комментарий (возможно пустой).
func comment(impl model.ImplementationStatus, sales model.SalesEventStatus) string {
	switch {
	case impl == model.ImplementationFailed:
		return failureComments[rand.IntN(len(failureComments))]
	case sales == model.SalesEventCancelled:
		return cancellationComments[rand.IntN(len(cancellationComments))]
	default:
		return genericComments[rand.IntN(len(genericComments))]
	}
}

// clientID строит уникальный идентификатор записи из префикса, слага клиента
// и порядкового номера. Уникальность гарантирована уникальностью номера.
func clientID(client string, i int) string {
	var b strings.Builder
	for _, r := range client {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return fmt.Sprintf("%s%s%06d", clientIDPrefix, b.String(), i)
}
