package matrix

import (
	"io"
	"log"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

func ReadXLSXFile(path string, opts Options) (*Matrix, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open workbook %q", path)
	}
	defer f.Close()

	m, err := readWorkbook(f, opts)
	if err != nil {
		return nil, err
	}
	log.Printf("[matrix] Loaded workbook %q: %d rows x %d cols", path, m.Rows(), m.Cols())
	return m, nil
}

func ReadXLSX(r io.Reader, opts Options) (*Matrix, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open workbook")
	}
	defer f.Close()

	return readWorkbook(f, opts)
}

func readWorkbook(f *excelize.File, opts Options) (*Matrix, error) {
	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, &MalformedMatrixError{Reason: "workbook has no sheets"}
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read sheet %q", sheet)
	}

	// excelize drops trailing empty cells, so short rows are padded and the
	// missing cells go through the malformed cell policy
	return fromRecords(rows, opts, true)
}
