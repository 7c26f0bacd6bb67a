// Package models provides domain models for the bond pre-trade checker.
package models

// Board is a MOEX trading board code.
type Board string

const (
	// BoardTQCB is the standard T+ equities board for corporate bonds.
	// Fallback search candidates must trade on this board to be accepted.
	BoardTQCB Board = "TQCB"
	// BoardTQOB is the T+ board for government bonds.
	BoardTQOB Board = "TQOB"
)

// ResolvedSecurity is the output of the resolver for one identifier.
// Immutable once produced; zero Dates mean the provider reported no date.
type ResolvedSecurity struct {
	ISIN          string
	SecondaryCode string // set only when the fallback search path resolved the identifier
	EmitterID     string
	Name          string
	MaturityDate  Date
	PutDate       Date
	CallDate      Date
}

// CouponDates is the reduction of a coupon schedule to its next unpaid dates.
type CouponDates struct {
	RecordDate  Date
	CouponDate  Date
	FaceUnit    string // coupon currency, from the bondization table
	CouponValue string // value of the next coupon row, as reported
}

// SecurityRecord is one output row of a batch. The five date fields are the
// key dates subject to near-term highlighting; the remaining fields are
// annotation only.
type SecurityRecord struct {
	ISIN           string `csv:"ISIN"`
	SecondaryCode  string `csv:"SECID"`
	EmitterID      string `csv:"EMITTER_ID"`
	Issuer         string `csv:"ISSUER"`
	Name           string `csv:"NAME"`
	MaturityDate   Date   `csv:"MATDATE"`
	PutDate        Date   `csv:"PUTDATE"`
	CallDate       Date   `csv:"CALLDATE"`
	NextRecordDate Date   `csv:"RECORDDATE"`
	NextCouponDate Date   `csv:"COUPONDATE"`
	FaceUnit       string `csv:"FACEUNIT"`
	CouponValue    string `csv:"COUPONVALUE"`
}

// KeyDates returns the five highlighting-relevant dates in fixed order:
// maturity, put, call, record, coupon.
func (r SecurityRecord) KeyDates() [5]Date {
	return [5]Date{r.MaturityDate, r.PutDate, r.CallDate, r.NextRecordDate, r.NextCouponDate}
}

// BatchResult is the outcome of one pipeline run. Every input identifier
// appears in exactly one of Records or Unresolved.
type BatchResult struct {
	Records    []SecurityRecord
	Unresolved []string
}

// HighlightConfig controls the near-term threshold.
// When Overnight is set, ExtraDays is ignored.
type HighlightConfig struct {
	Overnight bool
	ExtraDays int // valid range [2,366]
}

// ThresholdDays returns the number of days ahead of today that still counts
// as near-term: 3 for overnight deals, otherwise settlement day plus the
// configured extra days.
func (c HighlightConfig) ThresholdDays() int {
	if c.Overnight {
		return 3
	}
	return 1 + c.ExtraDays
}
