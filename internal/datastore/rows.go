package datastore

import (
	"reflect"
	"strings"
)

// RowOptions configures StructToRow.
type RowOptions struct {
	// OmitFields lists Go field names to leave out.
	OmitFields map[string]bool
	// SliceSeparator joins string slices; empty keeps them as slices.
	SliceSeparator string
}

// StructToRow converts a struct into a row keyed by each field's JSON name.
// Unexported fields and fields tagged json:"-" are skipped; embedded structs
// are flattened.
func StructToRow[T any](value T, opts RowOptions) map[string]any {
	row := make(map[string]any)
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return row
		}
		v = v.Elem()
	}
	appendFields(v, row, opts)
	return row
}

func appendFields(v reflect.Value, row map[string]any, opts RowOptions) {
	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || opts.OmitFields[field.Name] {
			continue
		}

		value := v.Field(i)
		if field.Anonymous && value.Kind() == reflect.Struct {
			appendFields(value, row, opts)
			continue
		}

		name, ok := columnName(field)
		if !ok {
			continue
		}
		row[name] = columnValue(value, opts.SliceSeparator)
	}
}

func columnName(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		name = strings.ToLower(field.Name)
	}
	return name, true
}

func columnValue(value reflect.Value, sep string) any {
	if value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}

	if sep != "" && value.Kind() == reflect.Slice && value.Type().Elem().Kind() == reflect.String {
		items := make([]string, value.Len())
		for i := range items {
			items[i] = value.Index(i).String()
		}
		return strings.Join(items, sep)
	}
	return value.Interface()
}
