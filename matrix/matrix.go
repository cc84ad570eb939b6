package matrix

import (
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

type Policy string

const (
	// PolicyFail rejects the whole matrix on the first non-numeric cell.
	PolicyFail Policy = "fail"
	// PolicyZero reads non-numeric cells as 0, so they never produce a bar.
	PolicyZero Policy = "zero"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PolicyFail:
		return PolicyFail, nil
	case PolicyZero:
		return PolicyZero, nil
	default:
		return "", errors.Errorf("unknown malformed cell policy %q", s)
	}
}

type Options struct {
	// Encoding of csv input. nil means utf-8.
	Encoding *charmap.Charmap
	// LabelColumn treats the first column as row labels instead of values.
	LabelColumn bool
	Malformed   Policy
	// Sheet selects the xlsx sheet, first sheet when empty.
	Sheet string
	// Comma overrides the csv field separator.
	Comma rune
}

type Matrix struct {
	Headers   []string    `json:"headers"`
	RowLabels []string    `json:"row_labels"`
	Values    [][]float64 `json:"values"`
}

func (m *Matrix) Rows() int { return len(m.Values) }

func (m *Matrix) Cols() int { return len(m.Headers) }

func (m *Matrix) At(row, col int) float64 { return m.Values[row][col] }

// Load reads a matrix from a .csv, .tsv or .xlsx file.
func Load(path string, opts Options) (*Matrix, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSXFile(path, opts)
	case ".tsv":
		if opts.Comma == 0 {
			opts.Comma = '\t'
		}
		return ReadCSVFile(path, opts)
	default:
		return ReadCSVFile(path, opts)
	}
}

// fromRecords builds a matrix out of raw string records, the first one being the header.
func fromRecords(records [][]string, opts Options, padShort bool) (*Matrix, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, &MalformedMatrixError{Reason: "missing header row"}
	}

	header := records[0]
	width := len(header)
	firstValue := 0
	if opts.LabelColumn {
		if width < 2 {
			return nil, &MalformedMatrixError{Reason: "label column needs at least one value column"}
		}
		firstValue = 1
	}

	m := &Matrix{
		Headers: make([]string, 0, width-firstValue),
		Values:  make([][]float64, 0, len(records)-1),
	}
	for _, h := range header[firstValue:] {
		m.Headers = append(m.Headers, strings.TrimSpace(h))
	}

	for _, record := range records[1:] {
		if padShort && blankRecord(record) {
			// csv skips empty lines, keep spreadsheets consistent with it
			continue
		}
		iRecord := len(m.Values)
		if padShort && len(record) < width {
			padded := make([]string, width)
			copy(padded, record)
			record = padded
		}
		if len(record) != width {
			return nil, &MalformedMatrixError{Row: iRecord, Got: len(record), Want: width}
		}

		if opts.LabelColumn {
			m.RowLabels = append(m.RowLabels, strings.TrimSpace(record[0]))
		} else {
			m.RowLabels = append(m.RowLabels, strconv.Itoa(iRecord))
		}

		row := make([]float64, 0, width-firstValue)
		for iCol, raw := range record[firstValue:] {
			v, err := parseCell(raw)
			if err != nil {
				if opts.Malformed != PolicyZero {
					return nil, &MalformedCellError{Row: iRecord, Col: iCol, Value: raw}
				}
				v = 0
			}
			row = append(row, v)
		}
		m.Values = append(m.Values, row)
	}

	return m, nil
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseCell(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Errorf("non-finite value %q", raw)
	}
	return v, nil
}
