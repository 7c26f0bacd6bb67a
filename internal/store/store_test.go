package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	apperrors "bondcheck/internal/errors"
	"bondcheck/internal/models"
)

func newTestStore(t *testing.T) *ResultStore {
	t.Helper()
	store, err := NewResultStore(filepath.Join(t.TempDir(), "bondcheck.db"))
	if err != nil {
		t.Fatalf("NewResultStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleResult() models.BatchResult {
	return models.BatchResult{
		Records: []models.SecurityRecord{
			{
				ISIN:           "RU000A105EX7",
				SecondaryCode:  "RU26238",
				EmitterID:      "1234",
				Issuer:         "Some Issuer",
				Name:           "Bond One",
				MaturityDate:   models.NewDate(2030, time.June, 1),
				NextCouponDate: models.NewDate(2026, time.September, 10),
				FaceUnit:       "RUB",
				CouponValue:    "35.4",
			},
			{
				ISIN: "US0378331005",
				Name: "Inactive Bond",
			},
		},
		Unresolved: []string{"GB0002634946"},
	}
}

func TestLatestOnEmptyStore(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.Latest()
	if !errors.Is(err, apperrors.ErrNoStoredResult) {
		t.Fatalf("err = %v, want ErrNoStoredResult", err)
	}
}

func TestSaveAndLatestRoundtrip(t *testing.T) {
	store := newTestStore(t)
	cfg := models.HighlightConfig{Overnight: true, ExtraDays: 7}

	if err := store.Save(sampleResult(), cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	result, gotCfg, err := store.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if gotCfg != cfg {
		t.Errorf("config = %+v, want %+v", gotCfg, cfg)
	}
	if len(result.Records) != 2 {
		t.Fatalf("records = %d", len(result.Records))
	}

	first := result.Records[0]
	if first.ISIN != "RU000A105EX7" || first.SecondaryCode != "RU26238" || first.Issuer != "Some Issuer" {
		t.Errorf("record = %+v", first)
	}
	if first.MaturityDate.String() != "2030-06-01" || first.NextCouponDate.String() != "2026-09-10" {
		t.Errorf("dates = %s / %s", first.MaturityDate, first.NextCouponDate)
	}
	if !result.Records[1].MaturityDate.IsZero() {
		t.Errorf("unknown date came back as %s", result.Records[1].MaturityDate)
	}
	if len(result.Unresolved) != 1 || result.Unresolved[0] != "GB0002634946" {
		t.Errorf("Unresolved = %v", result.Unresolved)
	}
}

func TestSaveReplacesPreviousBatch(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(sampleResult(), models.HighlightConfig{ExtraDays: 7}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	second := models.BatchResult{
		Records: []models.SecurityRecord{{ISIN: "XS2010044381", Name: "Only Bond"}},
	}
	if err := store.Save(second, models.HighlightConfig{ExtraDays: 2}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	result, cfg, err := store.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if len(result.Records) != 1 || result.Records[0].ISIN != "XS2010044381" {
		t.Errorf("records = %+v, want only the second batch", result.Records)
	}
	if len(result.Unresolved) != 0 {
		t.Errorf("Unresolved = %v, want empty", result.Unresolved)
	}
	if cfg.ExtraDays != 2 {
		t.Errorf("ExtraDays = %d, want 2", cfg.ExtraDays)
	}
}

func TestSaveEmptyBatch(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(models.BatchResult{}, models.HighlightConfig{ExtraDays: 2}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	result, _, err := store.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if len(result.Records) != 0 || len(result.Unresolved) != 0 {
		t.Errorf("result = %+v, want empty", result)
	}
}
