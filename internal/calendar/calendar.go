// Package calendar builds a payment timeline for a bond portfolio: coupon
// payments scaled by position size, plus face value at maturity.
package calendar

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"bondcheck/internal/input"
	"bondcheck/internal/models"
	"bondcheck/internal/resolve"
)

var portfolioSeparators = regexp.MustCompile(`[|,;/\t]+`)

// Position is one portfolio line: an identifier and a quantity of bonds.
type Position struct {
	ISIN   string
	Amount float64
}

// ParsePortfolio parses "ISIN | amount" lines. Missing or non-positive
// amounts default to 1; identifiers failing ISIN validation are returned in
// invalid.
func ParsePortfolio(lines []string) (positions []Position, invalid []string) {
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := portfolioSeparators.Split(line, -1)
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		isin := strings.ToUpper(parts[0])
		amount := 1.0
		if len(parts) > 1 && parts[1] != "" {
			if v, err := strconv.ParseFloat(strings.ReplaceAll(parts[1], ",", "."), 64); err == nil && v > 0 {
				amount = v
			}
		}
		if !input.Valid(isin) {
			invalid = append(invalid, isin)
			continue
		}
		positions = append(positions, Position{ISIN: isin, Amount: amount})
	}
	return positions, invalid
}

// BondSchedule is one bond's future payment events.
type BondSchedule struct {
	ISIN      string
	Maturity  models.Date
	FaceValue float64
	Coupons   map[models.Date]float64 // date → coupon value per bond
}

// Timeline is the portfolio payment calendar: one row per identifier, one
// column per payment date, cells holding the scaled payment amount.
type Timeline struct {
	Dates  []models.Date
	Rows   map[string]map[models.Date]float64
	Failed []string // identifiers whose schedule could not be fetched
}

// Builder fetches schedules and assembles timelines.
type Builder struct {
	provider resolve.Provider
	resolver *resolve.Resolver
	logger   zerolog.Logger
	now      func() time.Time
}

// NewBuilder creates a Builder.
func NewBuilder(provider resolve.Provider, logger zerolog.Logger) *Builder {
	return &Builder{
		provider: provider,
		resolver: resolve.NewResolver(provider, logger),
		logger:   logger,
		now:      time.Now,
	}
}

// Schedule fetches one bond's maturity, face value and coupon events.
func (b *Builder) Schedule(ctx context.Context, isin string) (BondSchedule, error) {
	schedule := BondSchedule{ISIN: isin, Coupons: make(map[models.Date]float64)}

	sec, err := b.resolver.Resolve(ctx, isin)
	if err != nil {
		return schedule, err
	}
	schedule.Maturity = sec.MaturityDate

	result, err := b.provider.Bondization(ctx, sec.ISIN)
	if err != nil {
		return schedule, err
	}

	if !result.Bondization.Empty() {
		if v, ok := result.Bondization.Row(0).Float("FACEVALUE"); ok {
			schedule.FaceValue = v
		}
	}

	dateCols := result.Coupons.ColumnsMatching("COUPON", "DATE")
	for i := 0; i < result.Coupons.Len(); i++ {
		row := result.Coupons.Row(i)
		var date models.Date
		for _, col := range dateCols {
			if d := row.Date(col); !d.IsZero() {
				date = d
				break
			}
		}
		if date.IsZero() {
			continue
		}
		value, ok := row.Float("VALUE_RUB")
		if !ok {
			value, ok = row.Float("VALUE")
		}
		if !ok {
			continue
		}
		schedule.Coupons[date] = value
	}
	return schedule, nil
}

// Build assembles the timeline for a portfolio. Past events are dropped and
// every payment is scaled by the position amount. Identifiers whose schedule
// cannot be fetched land in Failed rather than aborting the calendar.
func (b *Builder) Build(ctx context.Context, positions []Position) Timeline {
	timeline := Timeline{Rows: make(map[string]map[models.Date]float64)}
	today := models.DateOf(b.now())
	dateSet := make(map[models.Date]struct{})

	for _, pos := range positions {
		schedule, err := b.Schedule(ctx, pos.ISIN)
		if err != nil {
			b.logger.Debug().Str("isin", pos.ISIN).Err(err).Msg("Schedule fetch failed")
			timeline.Failed = append(timeline.Failed, pos.ISIN)
			continue
		}

		row := make(map[models.Date]float64)
		for date, value := range schedule.Coupons {
			if date.Before(today) {
				continue
			}
			row[date] += value * pos.Amount
			dateSet[date] = struct{}{}
		}
		if !schedule.Maturity.IsZero() && !schedule.Maturity.Before(today) && schedule.FaceValue > 0 {
			row[schedule.Maturity] += schedule.FaceValue * pos.Amount
			dateSet[schedule.Maturity] = struct{}{}
		}
		timeline.Rows[pos.ISIN] = row
	}

	for date := range dateSet {
		timeline.Dates = append(timeline.Dates, date)
	}
	sort.Slice(timeline.Dates, func(i, j int) bool {
		return timeline.Dates[i].Before(timeline.Dates[j])
	})
	return timeline
}
