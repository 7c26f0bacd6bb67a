// Package input parses batch uploads into identifier lists. All failures
// here are local input errors reported before any network call.
package input

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	apperrors "bondcheck/internal/errors"
)

// ISINColumn is the required column name of a tabular upload.
const ISINColumn = "ISIN"

var identifierSeparators = regexp.MustCompile(`[\s,;]+`)

// Batch is a parsed, validated identifier list ready for the pipeline.
type Batch struct {
	Identifiers []string // deduplicated by first occurrence, upper-cased
	Invalid     []string // dropped before the batch: bad format or checksum
}

// ReadFile parses a CSV or XLSX upload with a required ISIN column.
func ReadFile(path string) (Batch, error) {
	var ids []string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		ids, err = readCSV(path)
	case ".xlsx", ".xls":
		ids, err = readXLSX(path)
	default:
		return Batch{}, apperrors.NewInputError(path, "unsupported file type", nil)
	}
	if err != nil {
		return Batch{}, err
	}
	return Prepare(ids), nil
}

// Parse splits free-form text (pasted identifiers separated by whitespace,
// commas or semicolons) into a batch.
func Parse(text string) Batch {
	var ids []string
	for _, tok := range identifierSeparators.Split(strings.TrimSpace(text), -1) {
		if tok != "" {
			ids = append(ids, tok)
		}
	}
	return Prepare(ids)
}

// Prepare normalizes, validates and deduplicates raw identifiers.
func Prepare(raw []string) Batch {
	var batch Batch
	seen := make(map[string]struct{}, len(raw))
	for _, id := range raw {
		id = strings.ToUpper(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if !Valid(id) {
			batch.Invalid = append(batch.Invalid, id)
			continue
		}
		batch.Identifiers = append(batch.Identifiers, id)
	}
	return batch
}

type isinRow struct {
	ISIN string `csv:"ISIN"`
}

// readCSV reads the ISIN column of a CSV file. The delimiter is sniffed from
// the header line and column names are matched case-insensitively.
func readCSV(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewInputError(path, "unreadable file", err)
	}

	content := normalize(raw)
	if len(content) == 0 {
		return nil, apperrors.NewInputError(path, "empty file", nil)
	}

	headerLine, _, _ := strings.Cut(content, "\n")
	delimiter := sniffDelimiter(headerLine)
	if !headerHasISIN(headerLine, delimiter) {
		return nil, apperrors.NewInputError(path, "missing ISIN column", apperrors.ErrNoISINColumn)
	}

	// Column matching in gocsv is exact, so fold the header to upper case
	// the same way the values are folded later.
	content = strings.ToUpper(headerLine) + content[len(headerLine):]

	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []isinRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, apperrors.NewInputError(path, "malformed CSV", err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.ISIN != "" {
			ids = append(ids, row.ISIN)
		}
	}
	return ids, nil
}

// readXLSX reads the ISIN column of the first sheet of an Excel file.
func readXLSX(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewInputError(path, "unreadable file", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewInputError(path, "empty workbook", nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewInputError(path, "unreadable sheet", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewInputError(path, "empty sheet", nil)
	}

	col := -1
	for i, name := range rows[0] {
		if strings.ToUpper(strings.TrimSpace(name)) == ISINColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, apperrors.NewInputError(path, "missing ISIN column", apperrors.ErrNoISINColumn)
	}

	var ids []string
	for _, row := range rows[1:] {
		if col < len(row) && strings.TrimSpace(row[col]) != "" {
			ids = append(ids, row[col])
		}
	}
	return ids, nil
}

func normalize(raw []byte) string {
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	content := strings.ReplaceAll(string(raw), "\r\n", "\n")
	return strings.TrimSpace(content)
}

// sniffDelimiter picks the most frequent of comma, semicolon and tab in the
// header line.
func sniffDelimiter(header string) rune {
	best, bestCount := ',', strings.Count(header, ",")
	for _, cand := range []rune{';', '\t'} {
		if count := strings.Count(header, string(cand)); count > bestCount {
			best, bestCount = cand, count
		}
	}
	return best
}

func headerHasISIN(header string, delimiter rune) bool {
	for _, name := range strings.Split(header, string(delimiter)) {
		if strings.ToUpper(strings.Trim(strings.TrimSpace(name), `"`)) == ISINColumn {
			return true
		}
	}
	return false
}
