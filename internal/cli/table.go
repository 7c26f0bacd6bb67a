package cli

import (
	"fmt"
	"strings"

	"bondcheck/internal/highlight"
	"bondcheck/internal/models"
)

type column struct {
	header string
	width  int
	value  func(models.SecurityRecord) string
	field  highlight.Field // zero for non-date columns
}

var recordColumns = []column{
	{header: "ISIN", width: 14, value: func(r models.SecurityRecord) string { return r.ISIN }},
	{header: "NAME", width: 28, value: func(r models.SecurityRecord) string { return r.Name }},
	{header: "ISSUER", width: 20, value: func(r models.SecurityRecord) string { return r.Issuer }},
	{header: "MATDATE", width: 12, field: highlight.FieldMaturity,
		value: func(r models.SecurityRecord) string { return r.MaturityDate.String() }},
	{header: "PUTDATE", width: 12, field: highlight.FieldPut,
		value: func(r models.SecurityRecord) string { return r.PutDate.String() }},
	{header: "CALLDATE", width: 12, field: highlight.FieldCall,
		value: func(r models.SecurityRecord) string { return r.CallDate.String() }},
	{header: "RECORDDATE", width: 12, field: highlight.FieldRecord,
		value: func(r models.SecurityRecord) string { return r.NextRecordDate.String() }},
	{header: "COUPONDATE", width: 12, field: highlight.FieldCoupon,
		value: func(r models.SecurityRecord) string { return r.NextCouponDate.String() }},
}

// renderRecords prints the batch as a table, colouring key-date cells by
// their classification: near-term red, row-attention yellow, inactive rows
// dimmed entirely. Styling exists only here; exports stay unstyled.
func renderRecords(output *Output, records []models.SecurityRecord, rows []highlight.Row) {
	var header strings.Builder
	for _, col := range recordColumns {
		header.WriteString(pad(col.header, col.width))
	}
	output.Bold("%s", header.String())

	for i, record := range records {
		classes := rows[i]
		var line strings.Builder
		for _, col := range recordColumns {
			cell := pad(col.value(record), col.width)
			line.WriteString(output.Colorize(classColor(classes, col.field), cell))
		}
		output.Println(line.String())
	}
}

func classColor(classes highlight.Row, field highlight.Field) string {
	if classes.Inactive() {
		return ColorDim
	}
	if field == "" {
		// Non-date columns share the row emphasis so a flagged row stands
		// out as a whole.
		if classes.AnyNearTerm() {
			return ColorYellow
		}
		return ""
	}
	switch classes[field] {
	case highlight.ClassNearTerm:
		return ColorRed
	case highlight.ClassRowAttention:
		return ColorYellow
	default:
		return ""
	}
}

// pad right-pads (or truncates) a cell to a fixed width. Padding happens
// before colouring so ANSI codes never skew the alignment.
func pad(s string, width int) string {
	if len(s) >= width {
		return s[:width-1] + " "
	}
	return s + strings.Repeat(" ", width-len(s))
}

// renderTimeline prints a payment calendar: one row per identifier, one
// column per payment date.
func renderTimeline(output *Output, dates []models.Date, rows map[string]map[models.Date]float64, order []string) {
	var header strings.Builder
	header.WriteString(pad("ISIN", 14))
	for _, d := range dates {
		header.WriteString(pad(d.String(), 14))
	}
	output.Bold("%s", header.String())

	for _, isin := range order {
		row, ok := rows[isin]
		if !ok {
			continue
		}
		var line strings.Builder
		line.WriteString(pad(isin, 14))
		for _, d := range dates {
			if v, ok := row[d]; ok {
				line.WriteString(pad(fmt.Sprintf("%.2f", v), 14))
			} else {
				line.WriteString(pad("", 14))
			}
		}
		output.Println(line.String())
	}
}
