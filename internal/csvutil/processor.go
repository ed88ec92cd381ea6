// Package csvutil reads header-keyed CSV documents.
package csvutil

import (
	"bytes"
	"encoding/csv"
	stdErrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/lepinkainen/shelf/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row maps header names to cell values.
type Row map[string]string

// ReadRows parses data whose first record is the header. Blank lines are
// skipped. Every record must have as many fields as the header.
func ReadRows(data []byte) ([]Row, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	reader := csv.NewReader(bytes.NewReader(data))

	header, err := reader.Read()
	if err != nil {
		return nil, parseError(err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []Row
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, parseError(err)
		}

		row := make(Row, len(header))
		for i, name := range header {
			row[name] = fields[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Process reads rows and converts each with parse. The first conversion error
// aborts with the offending data row number (1-based).
func Process[T any](data []byte, parse func(Row) (T, error)) ([]T, error) {
	rows, err := ReadRows(data)
	if err != nil {
		return nil, err
	}

	items := make([]T, 0, len(rows))
	for i, row := range rows {
		item, err := parse(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func parseError(err error) error {
	var csvErr *csv.ParseError
	if stdErrors.As(err, &csvErr) {
		return errors.NewParseError("csv", fmt.Sprintf("line %d, column %d: %v", csvErr.Line, csvErr.Column, csvErr.Err))
	}
	return errors.NewParseError("csv", err.Error())
}
