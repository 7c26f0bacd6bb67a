package resolve

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"bondcheck/internal/iss"
	"bondcheck/internal/models"
)

// Extractor fetches an instrument's coupon/amortization table and reduces it
// to the next unpaid record and coupon dates. It is always called with the
// original identifier, never the resolved secondary code.
type Extractor struct {
	provider Provider
	logger   zerolog.Logger
	now      func() time.Time
}

// NewExtractor creates an Extractor.
func NewExtractor(provider Provider, logger zerolog.Logger) *Extractor {
	return &Extractor{provider: provider, logger: logger, now: time.Now}
}

// NextDates fetches the coupon schedule for the identifier and selects, for
// the record-date and coupon-date columns independently, the earliest value
// on or after today. A provider rejection is returned as a hard failure; an
// empty schedule yields unknown dates without error.
func (e *Extractor) NextDates(ctx context.Context, identifier string) (models.CouponDates, error) {
	result, err := e.provider.Bondization(ctx, identifier)
	if err != nil {
		return models.CouponDates{}, err
	}

	var dates models.CouponDates
	if result.Coupons.Empty() {
		return dates, nil
	}

	today := models.DateOf(e.now())
	recordCols := result.Coupons.ColumnsMatching("RECORD", "DATE")
	couponCols := result.Coupons.ColumnsMatching("COUPON", "DATE")

	dates.RecordDate = nextFutureDate(result.Coupons, recordCols, today)
	dates.CouponDate = nextFutureDate(result.Coupons, couponCols, today)
	dates.FaceUnit = faceUnit(result)
	dates.CouponValue = couponValueAt(result.Coupons, couponCols, dates.CouponDate)

	return dates, nil
}

// nextFutureDate scans the given columns row by row, parses each value as a
// calendar date, discards anything strictly before today, and returns the
// earliest remaining date. Record and coupon dates for one payment may land
// in different rows across providers, so each column set is reduced on its
// own rather than row-paired.
func nextFutureDate(coupons iss.Table, cols []string, today models.Date) models.Date {
	var earliest models.Date
	for i := 0; i < coupons.Len(); i++ {
		row := coupons.Row(i)
		for _, col := range cols {
			d := row.Date(col)
			if d.IsZero() || d.Before(today) {
				continue
			}
			if earliest.IsZero() || d.Before(earliest) {
				earliest = d
			}
		}
	}
	return earliest
}

// faceUnit extracts the coupon currency from the bondization summary, falling
// back to a FACEUNIT column of the coupon table itself.
func faceUnit(result iss.BondizationResult) string {
	if !result.Bondization.Empty() {
		if unit := result.Bondization.Row(0).FirstString("FACEUNIT", "FACEUNIT_S"); unit != "" {
			return unit
		}
	}
	for i := 0; i < result.Coupons.Len(); i++ {
		if unit := result.Coupons.Row(i).FirstString("FACEUNIT", "FACEUNIT_S"); unit != "" {
			return unit
		}
	}
	return ""
}

// couponValueAt returns the reported VALUE of the coupon row paying on the
// selected next coupon date.
func couponValueAt(coupons iss.Table, couponCols []string, next models.Date) string {
	if next.IsZero() {
		return ""
	}
	for i := 0; i < coupons.Len(); i++ {
		row := coupons.Row(i)
		for _, col := range couponCols {
			if row.Date(col).Equal(next) {
				return row.FirstString("VALUE", "VALUE_COUPON", "COUPONVALUE")
			}
		}
	}
	return ""
}
