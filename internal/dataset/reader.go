package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/crimlab/coforest/internal/model"
)

// Required input columns. Matching is case-insensitive so hand-edited
// spreadsheets with inconsistent capitalization still load.
const (
	colStudyN     = "study_n"
	colAuthor     = "author"
	colDOI        = "doi"
	colType       = "type"
	colOffenses   = "total_number_offenses"
	colCooffenses = "total_number_cooffenses"
)

// ReadStudies loads study records from the given file. The format is
// chosen by extension: .xlsx (and .xlsm) files are read with excelize from
// the named sheet, anything else is treated as CSV with the same header.
//
// Offense and co-offense counts are rounded to the nearest integer; a row
// whose rounded co-offense count exceeds its offense count is a load error
// naming the row, wrapping ErrCountInvariant.
func ReadStudies(path, sheet string) ([]model.StudyRecord, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readSheet(path, sheet)
	default:
		rows, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}

	return parseRows(rows)
}

// readSheet reads all rows of a named xlsx sheet as strings.
func readSheet(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// readCSV reads all records of a CSV file.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided data path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open data file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are validated during parsing
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV %s: %w", path, err)
	}
	return rows, nil
}

// parseRows converts raw string rows (header first) into study records.
func parseRows(rows [][]string) ([]model.StudyRecord, error) {
	if len(rows) == 0 {
		return nil, ErrNoRecords
	}

	cols, err := columnIndex(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]model.StudyRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		// Spreadsheets commonly carry trailing blank rows; skip rows whose
		// author cell is empty rather than failing the whole load.
		if cell(row, cols[colAuthor]) == "" {
			continue
		}

		rec, err := parseRecord(row, cols)
		if err != nil {
			// Row numbering is 1-based and counts the header, matching
			// what the user sees in their spreadsheet application.
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}

// columnIndex maps required column names to their positions in the header.
func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, required := range []string{colStudyN, colAuthor, colDOI, colType, colOffenses, colCooffenses} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}
	return index, nil
}

// parseRecord converts one data row into a study record, rounding counts
// and enforcing the co-offense invariant.
func parseRecord(row []string, cols map[string]int) (model.StudyRecord, error) {
	var rec model.StudyRecord

	studyN, err := parseIntCell(cell(row, cols[colStudyN]))
	if err != nil {
		return rec, fmt.Errorf("invalid %s: %w", colStudyN, err)
	}

	offenses, err := parseCountCell(cell(row, cols[colOffenses]))
	if err != nil {
		return rec, fmt.Errorf("invalid %s: %w", colOffenses, err)
	}

	cooffenses, err := parseCountCell(cell(row, cols[colCooffenses]))
	if err != nil {
		return rec, fmt.Errorf("invalid %s: %w", colCooffenses, err)
	}

	if cooffenses > offenses {
		return rec, fmt.Errorf("%w: %d > %d", ErrCountInvariant, cooffenses, offenses)
	}

	rec = model.StudyRecord{
		StudyN:     studyN,
		Author:     cell(row, cols[colAuthor]),
		DOI:        cell(row, cols[colDOI]),
		Type:       model.CrimeType(cell(row, cols[colType])),
		Offenses:   offenses,
		Cooffenses: cooffenses,
	}
	return rec, nil
}

// cell returns the trimmed cell at index i, or "" when the row is shorter.
// Spreadsheet readers drop trailing empty cells, so short rows are normal.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseIntCell parses an integer cell, tolerating float formatting
// ("12.0") that spreadsheets produce for numeric columns.
func parseIntCell(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(math.Round(f)), nil
}

// parseCountCell parses a count cell, rounding to the nearest integer and
// rejecting negative values. Counts appear as floats in the source data
// because some studies report them as rates times population.
func parseCountCell(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	n := int(math.Round(f))
	if n < 0 {
		return 0, fmt.Errorf("negative count %d", n)
	}
	return n, nil
}
