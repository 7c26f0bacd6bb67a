// Package highlight classifies record date fields against a configurable
// near-term threshold. Classification is a pure function of record and
// threshold: no I/O, safe to re-run whenever the config changes without
// refetching data.
package highlight

import (
	"bondcheck/internal/models"
)

// Field names one of the five key-date fields of a record.
type Field string

const (
	FieldMaturity Field = "MATDATE"
	FieldPut      Field = "PUTDATE"
	FieldCall     Field = "CALLDATE"
	FieldRecord   Field = "RECORDDATE"
	FieldCoupon   Field = "COUPONDATE"
)

// KeyFields lists the key-date fields in record order.
var KeyFields = [5]Field{FieldMaturity, FieldPut, FieldCall, FieldRecord, FieldCoupon}

// Class is the classification of one date field.
type Class string

const (
	// ClassNormal marks a date outside the near-term window, or an absent
	// date in an otherwise active row.
	ClassNormal Class = "normal"
	// ClassNearTerm marks a date on or before the threshold.
	ClassNearTerm Class = "near-term"
	// ClassRowAttention is the secondary emphasis applied to the remaining
	// fields of a row that has at least one near-term field. The near-term
	// cells themselves keep their stronger class.
	ClassRowAttention Class = "row-attention"
	// ClassInactive marks every field of a record with no known key dates.
	ClassInactive Class = "inactive"
)

// Row is the per-field classification of one record.
type Row map[Field]Class

// Inactive reports whether the row carries no key dates at all.
func (r Row) Inactive() bool {
	return r[FieldMaturity] == ClassInactive
}

// AnyNearTerm reports whether any field of the row is near-term.
func (r Row) AnyNearTerm() bool {
	for _, c := range r {
		if c == ClassNearTerm {
			return true
		}
	}
	return false
}

// Threshold derives the near-term cutoff from the config and the given
// current date. It is recomputed on every classification pass and never
// persisted.
func Threshold(cfg models.HighlightConfig, today models.Date) models.Date {
	return today.AddDays(cfg.ThresholdDays())
}

// Classify classifies each key-date field of the record against the
// threshold. A record with all five dates absent is inactive as a whole;
// otherwise present dates on or before the threshold are near-term and, when
// any field is near-term, the remaining fields of the row are promoted to
// row-attention.
func Classify(record models.SecurityRecord, threshold models.Date) Row {
	dates := record.KeyDates()

	allAbsent := true
	for _, d := range dates {
		if !d.IsZero() {
			allAbsent = false
			break
		}
	}

	row := make(Row, len(KeyFields))
	if allAbsent {
		for _, f := range KeyFields {
			row[f] = ClassInactive
		}
		return row
	}

	for i, f := range KeyFields {
		d := dates[i]
		if !d.IsZero() && !d.After(threshold) {
			row[f] = ClassNearTerm
		} else {
			row[f] = ClassNormal
		}
	}

	if row.AnyNearTerm() {
		for f, c := range row {
			if c == ClassNormal {
				row[f] = ClassRowAttention
			}
		}
	}
	return row
}

// ClassifyAll classifies a whole batch against the current date.
func ClassifyAll(records []models.SecurityRecord, cfg models.HighlightConfig, today models.Date) []Row {
	threshold := Threshold(cfg, today)
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = Classify(rec, threshold)
	}
	return rows
}
