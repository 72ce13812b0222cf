package loader

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/geokit/pkg/geodata"
)

// CSVTable reads delimited text with a header row into a keyed table. A zero
// comma means ','.
func CSVTable(path string, comma rune) (*geodata.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open table %s", path)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	if comma != 0 {
		r.Comma = comma
	}
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "loader: read table header %s", path)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	var rows []geodata.Row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "loader: read table row %s", path)
		}
		row := make(geodata.Row, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = sniffValue(strings.TrimSpace(record[i]))
			} else {
				row[col] = nil
			}
		}
		rows = append(rows, row)
	}

	table, err := geodata.NewTable(columns, rows)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: table %s", path)
	}
	return table, nil
}

// XLSXTable reads the given sheet of a spreadsheet into a keyed table. The
// first row is the header. sheet may be a name or "" for the first sheet.
func XLSXTable(path, sheet string) (*geodata.Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open spreadsheet %s", path)
	}

	var s *xlsx.Sheet
	if sheet != "" {
		var ok bool
		s, ok = f.Sheet[sheet]
		if !ok {
			return nil, eris.Errorf("loader: sheet %q not found in %s", sheet, path)
		}
	} else {
		if len(f.Sheets) == 0 {
			return nil, eris.Errorf("loader: no sheets in %s", path)
		}
		s = f.Sheets[0]
	}
	if len(s.Rows) == 0 {
		return nil, eris.Errorf("loader: empty sheet in %s", path)
	}

	columns := make([]string, len(s.Rows[0].Cells))
	for i, cell := range s.Rows[0].Cells {
		columns[i] = strings.TrimSpace(cell.String())
	}

	var rows []geodata.Row
	for _, xr := range s.Rows[1:] {
		row := make(geodata.Row, len(columns))
		for i, col := range columns {
			if i < len(xr.Cells) {
				row[col] = sniffValue(strings.TrimSpace(xr.Cells[i].String()))
			} else {
				row[col] = nil
			}
		}
		rows = append(rows, row)
	}

	table, err := geodata.NewTable(columns, rows)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: spreadsheet %s", path)
	}
	return table, nil
}
