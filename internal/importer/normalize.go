// Package importer turns bulk CSV or JSON uploads into candidate records and
// previews them against the validation rules.
package importer

import (
	"bytes"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/lepinkainen/shelf/internal/csvutil"
	"github.com/lepinkainen/shelf/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row is one raw input record keyed by column or property name. JSON numbers
// are kept as json.Number so identifiers never lose digits.
type Row map[string]any

// IsJSON reports whether the input should be decoded as JSON: either the file
// name ends in .json or the text starts with '['.
func IsJSON(raw []byte, fileNameHint string) bool {
	if strings.EqualFold(filepath.Ext(fileNameHint), ".json") {
		return true
	}
	return bytes.HasPrefix(bytes.TrimSpace(bytes.TrimPrefix(raw, utf8BOM)), []byte("["))
}

// Normalize decodes raw into rows. Any decoding problem fails the whole batch
// with a *errors.ParseError.
func Normalize(raw []byte, fileNameHint string) ([]Row, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	if IsJSON(raw, fileNameHint) {
		return normalizeJSON(raw)
	}
	return normalizeCSV(raw)
}

func normalizeCSV(raw []byte) ([]Row, error) {
	return csvutil.Process(raw, func(r csvutil.Row) (Row, error) {
		row := make(Row, len(r))
		for k, v := range r {
			row[k] = v
		}
		return row, nil
	})
}

func normalizeJSON(raw []byte) ([]Row, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, jsonParseError(raw, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.NewParseError("json", "unexpected data after the top-level array")
	}

	rows := make([]Row, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case nil:
			rows = append(rows, Row{})
		case map[string]any:
			rows = append(rows, Row(v))
		default:
			return nil, errors.NewParseError("json", fmt.Sprintf("element %d is %s, expected an object", i+1, jsonKind(v)))
		}
	}
	return rows, nil
}

func jsonParseError(raw []byte, err error) error {
	var syntaxErr *json.SyntaxError
	if stdErrors.As(err, &syntaxErr) {
		line, col := position(raw, syntaxErr.Offset)
		return errors.NewParseError("json", fmt.Sprintf("line %d, column %d: %v", line, col, syntaxErr))
	}
	var typeErr *json.UnmarshalTypeError
	if stdErrors.As(err, &typeErr) {
		return errors.NewParseError("json", fmt.Sprintf("expected an array of objects, got %s", typeErr.Value))
	}
	if stdErrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.NewParseError("json", "unexpected end of input")
	}
	return errors.NewParseError("json", err.Error())
}

// position converts a byte offset into a 1-based line and column.
func position(raw []byte, offset int64) (line, col int) {
	if offset > int64(len(raw)) {
		offset = int64(len(raw))
	}
	before := raw[:offset]
	line = bytes.Count(before, []byte("\n")) + 1
	col = int(offset) - (bytes.LastIndexByte(before, '\n') + 1)
	if col < 1 {
		col = 1
	}
	return line, col
}

func jsonKind(v any) string {
	switch v.(type) {
	case string:
		return "a string"
	case json.Number:
		return "a number"
	case bool:
		return "a boolean"
	case []any:
		return "an array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
