package output

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Data is a table ready for rendering.
type Data struct {
	Headers []string
	Rows    [][]string
	Align   []tw.Align // optional, one per column
}

// writeTable renders Data directly and lays out structs or slices of
// structs by their json field names. Anything else is written as JSON.
func writeTable(w io.Writer, data any) error {
	switch v := data.(type) {
	case Data:
		return renderTable(w, v)
	case *Data:
		return renderTable(w, *v)
	}
	if table, ok := reflectTable(reflect.ValueOf(data)); ok {
		return renderTable(w, table)
	}
	return writeJSON(w, data)
}

func renderTable(w io.Writer, data Data) error {
	var config tablewriter.Config
	if len(data.Align) > 0 {
		config.Header.Alignment = tw.CellAlignment{PerColumn: data.Align}
		config.Row.Alignment = tw.CellAlignment{PerColumn: data.Align}
	}
	table := tablewriter.NewTable(w, tablewriter.WithConfig(config))

	if len(data.Headers) > 0 {
		table.Header(cells(data.Headers)...)
	}
	for _, row := range data.Rows {
		if err := table.Append(cells(row)...); err != nil {
			return err
		}
	}
	return table.Render()
}

func cells(row []string) []any {
	out := make([]any, len(row))
	for i, c := range row {
		out[i] = c
	}
	return out
}

// reflectTable lays out a struct as property/value rows and a non-empty
// slice of structs as one row per element.
func reflectTable(v reflect.Value) (Data, bool) {
	v = reflect.Indirect(v)
	switch {
	case v.Kind() == reflect.Struct:
		data := Data{Headers: []string{"Property", "Value"}}
		for i := 0; i < v.NumField(); i++ {
			if !v.Type().Field(i).IsExported() {
				continue
			}
			data.Rows = append(data.Rows, []string{fieldTitle(v.Type().Field(i)), fmt.Sprint(v.Field(i).Interface())})
		}
		return data, true

	case v.Kind() == reflect.Slice && v.Len() > 0 && reflect.Indirect(v.Index(0)).Kind() == reflect.Struct:
		elem := reflect.Indirect(v.Index(0)).Type()
		var data Data
		var fields []int
		for i := 0; i < elem.NumField(); i++ {
			if elem.Field(i).IsExported() {
				fields = append(fields, i)
				data.Headers = append(data.Headers, fieldTitle(elem.Field(i)))
			}
		}
		for i := 0; i < v.Len(); i++ {
			item := reflect.Indirect(v.Index(i))
			row := make([]string, len(fields))
			for j, f := range fields {
				row[j] = fmt.Sprint(item.Field(f).Interface())
			}
			data.Rows = append(data.Rows, row)
		}
		return data, true
	}
	return Data{}, false
}

// fieldTitle titles a struct field by its json name, or its Go name when
// it has none.
func fieldTitle(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return field.Name
	}
	return Title(name)
}

// Title turns a camelCase or snake_case key into title-cased words, so
// "missing_in_left" and "editionCount" become "Missing In Left" and
// "Edition Count".
func Title(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case r == '_':
			b.WriteByte(' ')
			continue
		case i > 0 && r >= 'A' && r <= 'Z':
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return cases.Title(language.English).String(b.String())
}
