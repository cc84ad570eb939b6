package matrix

import (
	"encoding/csv"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"
)

func ReadCSVFile(path string, opts Options) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open %q", path)
	}
	defer f.Close()

	m, err := ParseCSV(f, opts)
	if err != nil {
		return nil, err
	}
	log.Printf("[matrix] Loaded %q: %d rows x %d cols", path, m.Rows(), m.Cols())
	return m, nil
}

// ParseCSV reads a header row followed by numeric data rows.
func ParseCSV(r io.Reader, opts Options) (*Matrix, error) {
	if opts.Encoding != nil {
		r = opts.Encoding.NewDecoder().Reader(r)
	}

	reader := csv.NewReader(r)
	// row width is validated by fromRecords so ragged input gets a typed error
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read csv")
	}
	return fromRecords(records, opts, false)
}
