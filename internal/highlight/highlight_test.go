package highlight

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"bondcheck/internal/models"
)

var today = models.NewDate(2026, time.August, 30)

func TestThreshold(t *testing.T) {
	overnight := Threshold(models.HighlightConfig{Overnight: true, ExtraDays: 50}, today)
	if overnight.String() != "2026-09-02" {
		t.Errorf("overnight threshold = %s, want today+3", overnight)
	}

	term := Threshold(models.HighlightConfig{ExtraDays: 5}, today)
	if term.String() != "2026-09-05" {
		t.Errorf("threshold = %s, want today+6", term)
	}
}

func TestClassifyInactiveWhenAllDatesAbsent(t *testing.T) {
	row := Classify(models.SecurityRecord{ISIN: "X", Name: "dead bond"}, today.AddDays(6))
	if !row.Inactive() {
		t.Fatal("record with no key dates should be inactive")
	}
	for _, f := range KeyFields {
		if row[f] != ClassInactive {
			t.Errorf("%s = %s, want inactive", f, row[f])
		}
	}
}

func TestClassifyPromotesRowOnAnyNearTerm(t *testing.T) {
	threshold := today.AddDays(6)
	record := models.SecurityRecord{
		ISIN:           "X",
		MaturityDate:   today.AddDays(400), // normal
		PutDate:        today.AddDays(2),   // near-term
		NextRecordDate: today.AddDays(30),  // normal
		// call and coupon dates absent
	}

	row := Classify(record, threshold)

	if row[FieldPut] != ClassNearTerm {
		t.Errorf("put = %s, want near-term", row[FieldPut])
	}
	for _, f := range [4]Field{FieldMaturity, FieldCall, FieldRecord, FieldCoupon} {
		if row[f] != ClassRowAttention {
			t.Errorf("%s = %s, want row-attention (absent fields promoted too)", f, row[f])
		}
	}
}

func TestClassifyNoPromotionWithoutNearTerm(t *testing.T) {
	record := models.SecurityRecord{
		ISIN:         "X",
		MaturityDate: today.AddDays(400),
	}
	row := Classify(record, today.AddDays(6))

	if row[FieldMaturity] != ClassNormal {
		t.Errorf("maturity = %s, want normal", row[FieldMaturity])
	}
	if row[FieldCoupon] != ClassNormal {
		t.Errorf("absent coupon = %s, want normal in a calm row", row[FieldCoupon])
	}
}

func TestClassifyDateOnThresholdIsNearTerm(t *testing.T) {
	threshold := today.AddDays(6)
	record := models.SecurityRecord{ISIN: "X", MaturityDate: threshold}
	row := Classify(record, threshold)
	if row[FieldMaturity] != ClassNearTerm {
		t.Errorf("date equal to threshold = %s, want near-term", row[FieldMaturity])
	}
}

func TestClassifyProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	// Offsets relative to today; <=-1000 stands for "absent".
	genOffset := gen.IntRange(-1030, 370)
	dateAt := func(offset int) models.Date {
		if offset <= -1000 {
			return models.Date{}
		}
		return today.AddDays(offset)
	}
	recordOf := func(m, p, c, r, k int) models.SecurityRecord {
		return models.SecurityRecord{
			ISIN:           "RU000A105EX7",
			MaturityDate:   dateAt(m),
			PutDate:        dateAt(p),
			CallDate:       dateAt(c),
			NextRecordDate: dateAt(r),
			NextCouponDate: dateAt(k),
		}
	}

	properties.Property("near-term implies a present date on or before the threshold", prop.ForAll(
		func(m, p, c, r, k, extra int) bool {
			threshold := today.AddDays(extra)
			record := recordOf(m, p, c, r, k)
			row := Classify(record, threshold)
			dates := record.KeyDates()
			for i, f := range KeyFields {
				if row[f] == ClassNearTerm {
					if dates[i].IsZero() || dates[i].After(threshold) {
						return false
					}
				}
			}
			return true
		},
		genOffset, genOffset, genOffset, genOffset, genOffset, gen.IntRange(1, 367),
	))

	properties.Property("classification is deterministic", prop.ForAll(
		func(m, p, c, r, k int) bool {
			threshold := today.AddDays(6)
			record := recordOf(m, p, c, r, k)
			first := Classify(record, threshold)
			second := Classify(record, threshold)
			for _, f := range KeyFields {
				if first[f] != second[f] {
					return false
				}
			}
			return true
		},
		genOffset, genOffset, genOffset, genOffset, genOffset,
	))

	properties.Property("inactive exactly when every date is absent", prop.ForAll(
		func(m, p, c, r, k int) bool {
			record := recordOf(m, p, c, r, k)
			row := Classify(record, today.AddDays(6))
			allAbsent := true
			for _, d := range record.KeyDates() {
				if !d.IsZero() {
					allAbsent = false
				}
			}
			return row.Inactive() == allAbsent
		},
		genOffset, genOffset, genOffset, genOffset, genOffset,
	))

	properties.Property("a row with a near-term field has no plain normal cells", prop.ForAll(
		func(m, p, c, r, k int) bool {
			row := Classify(recordOf(m, p, c, r, k), today.AddDays(6))
			if !row.AnyNearTerm() {
				return true
			}
			for _, f := range KeyFields {
				if row[f] == ClassNormal {
					return false
				}
			}
			return true
		},
		genOffset, genOffset, genOffset, genOffset, genOffset,
	))

	properties.TestingRun(t)
}

func TestClassifyAll(t *testing.T) {
	records := []models.SecurityRecord{
		{ISIN: "A", MaturityDate: today.AddDays(2)},
		{ISIN: "B"},
	}
	rows := ClassifyAll(records, models.HighlightConfig{ExtraDays: 5}, today)
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0][FieldMaturity] != ClassNearTerm {
		t.Errorf("rows[0] maturity = %s", rows[0][FieldMaturity])
	}
	if !rows[1].Inactive() {
		t.Error("rows[1] should be inactive")
	}
}
