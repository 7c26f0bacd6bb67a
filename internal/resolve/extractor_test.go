package resolve

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	apperrors "bondcheck/internal/errors"
	"bondcheck/internal/iss"
)

func fixedNow() time.Time {
	return time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
}

func newTestExtractor(provider Provider) *Extractor {
	e := NewExtractor(provider, zerolog.Nop())
	e.now = fixedNow
	return e
}

func couponTable(rows ...[]any) iss.BondizationResult {
	return iss.BondizationResult{
		Coupons: iss.Table{
			Columns: []string{"coupondate", "recorddate", "value"},
			Data:    rows,
		},
	}
}

func TestNextDatesReducesColumnsIndependently(t *testing.T) {
	// The next record date and the next coupon date live in different rows:
	// the earliest future value of each column wins on its own.
	provider := &fakeProvider{
		bondization: map[string]iss.BondizationResult{
			"X": couponTable(
				[]any{"2026-09-01", "2026-08-29", 35.4}, // record date already past
				[]any{"2026-09-20", "2026-09-17", 35.4},
			),
		},
	}
	extractor := newTestExtractor(provider)

	dates, err := extractor.NextDates(context.Background(), "X")
	if err != nil {
		t.Fatalf("NextDates: %v", err)
	}
	if got := dates.CouponDate.String(); got != "2026-09-01" {
		t.Errorf("CouponDate = %q, want 2026-09-01", got)
	}
	if got := dates.RecordDate.String(); got != "2026-09-17" {
		t.Errorf("RecordDate = %q, want 2026-09-17", got)
	}
}

func TestNextDatesTodayCounts(t *testing.T) {
	provider := &fakeProvider{
		bondization: map[string]iss.BondizationResult{
			"X": couponTable([]any{"2026-08-30", "2026-08-30", 10.0}),
		},
	}
	extractor := newTestExtractor(provider)

	dates, err := extractor.NextDates(context.Background(), "X")
	if err != nil {
		t.Fatalf("NextDates: %v", err)
	}
	if got := dates.CouponDate.String(); got != "2026-08-30" {
		t.Errorf("CouponDate = %q, a coupon paying today is still upcoming", got)
	}
}

func TestNextDatesEmptyScheduleIsUnknownWithoutError(t *testing.T) {
	provider := &fakeProvider{
		bondization: map[string]iss.BondizationResult{"X": {}},
	}
	extractor := newTestExtractor(provider)

	dates, err := extractor.NextDates(context.Background(), "X")
	if err != nil {
		t.Fatalf("NextDates: %v", err)
	}
	if !dates.RecordDate.IsZero() || !dates.CouponDate.IsZero() {
		t.Errorf("dates = %s / %s, want unknown", dates.RecordDate, dates.CouponDate)
	}
}

func TestNextDatesSkipsUnparsableValues(t *testing.T) {
	provider := &fakeProvider{
		bondization: map[string]iss.BondizationResult{
			"X": couponTable(
				[]any{"0000-00-00", nil, 10.0},
				[]any{"2026-10-05", "2026-10-02", 10.0},
			),
		},
	}
	extractor := newTestExtractor(provider)

	dates, err := extractor.NextDates(context.Background(), "X")
	if err != nil {
		t.Fatalf("NextDates: %v", err)
	}
	if got := dates.CouponDate.String(); got != "2026-10-05" {
		t.Errorf("CouponDate = %q", got)
	}
	if got := dates.RecordDate.String(); got != "2026-10-02" {
		t.Errorf("RecordDate = %q", got)
	}
}

func TestNextDatesPropagatesProviderError(t *testing.T) {
	provider := &fakeProvider{
		bondErr: map[string]error{
			"X": &apperrors.ProviderError{Endpoint: "bondization", StatusCode: 500},
		},
	}
	extractor := newTestExtractor(provider)

	_, err := extractor.NextDates(context.Background(), "X")
	if !apperrors.IsProviderError(err) {
		t.Fatalf("err = %v, want ProviderError", err)
	}
}

func TestNextDatesCouponValueAndFaceUnit(t *testing.T) {
	result := iss.BondizationResult{
		Coupons: iss.Table{
			Columns: []string{"coupondate", "recorddate", "value"},
			Data: [][]any{
				{"2026-09-01", "2026-08-29", 35.4},
				{"2026-12-01", "2026-11-28", 36.1},
			},
		},
		Bondization: iss.Table{
			Columns: []string{"FACEVALUE", "FACEUNIT"},
			Data:    [][]any{{float64(1000), "RUB"}},
		},
	}
	provider := &fakeProvider{
		bondization: map[string]iss.BondizationResult{"X": result},
	}
	extractor := newTestExtractor(provider)

	dates, err := extractor.NextDates(context.Background(), "X")
	if err != nil {
		t.Fatalf("NextDates: %v", err)
	}
	if dates.FaceUnit != "RUB" {
		t.Errorf("FaceUnit = %q", dates.FaceUnit)
	}
	if dates.CouponValue != "35.4" {
		t.Errorf("CouponValue = %q, want value of the next coupon row", dates.CouponValue)
	}
}
