// Package recordio reads and writes record tables as XLSX or CSV files,
// dispatching on the file extension.
package recordio

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/oss-talent/sourcer-cli/internal/model"
)

const defaultSheet = "Sheet1"

// Read loads a table from path. The first row is the header; later rows map
// positionally onto it. Extra cells beyond the header are dropped, short
// rows leave the remaining columns empty.
func Read(path string) (*model.Table, error) {
	switch ext(path) {
	case ".xlsx":
		return readXLSX(path)
	case ".csv":
		return readCSV(path)
	default:
		return nil, eris.Errorf("recordio: unsupported extension %q (want .xlsx or .csv)", ext(path))
	}
}

// Write saves the table to path, picking the format from the extension. An
// XLSX save failure falls back to CSV next to the requested path rather than
// losing the run. The returned path is where the data actually landed.
func Write(path string, t *model.Table) (string, error) {
	switch ext(path) {
	case ".xlsx":
		if err := writeXLSX(path, t); err != nil {
			fallback := strings.TrimSuffix(path, filepath.Ext(path)) + ".csv"
			zap.L().Warn("xlsx write failed, falling back to csv",
				zap.String("path", path),
				zap.String("fallback", fallback),
				zap.Error(err),
			)
			if csvErr := writeCSV(fallback, t); csvErr != nil {
				return "", csvErr
			}
			return fallback, nil
		}
		return path, nil
	case ".csv":
		if err := writeCSV(path, t); err != nil {
			return "", err
		}
		return path, nil
	default:
		return "", eris.Errorf("recordio: unsupported extension %q (want .xlsx or .csv)", ext(path))
	}
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func readXLSX(path string) (*model.Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "recordio: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("recordio: %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	var rows [][]string
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return tableFromRows(rows)
}

func readCSV(path string) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "recordio: open csv %s", path)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "recordio: read csv %s", path)
		}
		rows = append(rows, record)
	}
	return tableFromRows(rows)
}

func tableFromRows(rows [][]string) (*model.Table, error) {
	if len(rows) == 0 {
		return nil, eris.New("recordio: file has no header row")
	}

	t := model.NewTable(rows[0]...)
	for _, row := range rows[1:] {
		rec := make(model.Record, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

func writeXLSX(path string, t *model.Table) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(defaultSheet)
	if err != nil {
		return eris.Wrap(err, "recordio: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range t.Columns {
		header.AddCell().SetString(col)
	}
	for _, rec := range t.Records {
		row := sheet.AddRow()
		for _, col := range t.Columns {
			row.AddCell().SetString(rec.Get(col))
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "recordio: save xlsx %s", path)
	}
	return nil
}

func writeCSV(path string, t *model.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "recordio: create csv %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return eris.Wrapf(err, "recordio: write csv header %s", path)
	}
	row := make([]string, len(t.Columns))
	for _, rec := range t.Records {
		for i, col := range t.Columns {
			row[i] = rec.Get(col)
		}
		if err := w.Write(row); err != nil {
			return eris.Wrapf(err, "recordio: write csv row %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "recordio: flush csv %s", path)
	}
	return nil
}
