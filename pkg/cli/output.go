package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatCSV is CSV output.
	FormatCSV OutputFormat = "csv"
)

// Tabular is implemented by values that can render themselves as rows,
// such as audit record listings.
type Tabular interface {
	Headers() []string
	Rows() [][]string
}

// Formatter formats command output.
type Formatter interface {
	Format(data interface{}) ([]byte, error)
	FormatTo(w io.Writer, data interface{}) error
}

// TextFormatter formats output as plain text.
type TextFormatter struct{}

// Format converts data to text format.
func (f *TextFormatter) Format(data interface{}) ([]byte, error) {
	return []byte(fmt.Sprintf("%v\n", data)), nil
}

// FormatTo writes data to writer in text format.
func (f *TextFormatter) FormatTo(w io.Writer, data interface{}) error {
	_, err := fmt.Fprintf(w, "%v\n", data)
	return err
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

// Format converts data to JSON format.
func (f *JSONFormatter) Format(data interface{}) ([]byte, error) {
	if f.Indent {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

// FormatTo writes data to writer in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// CSVFormatter formats Tabular data as CSV.
type CSVFormatter struct{}

// Format converts data to CSV format.
func (f *CSVFormatter) Format(data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.FormatTo(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatTo writes data to writer in CSV format. The data must implement
// Tabular.
func (f *CSVFormatter) FormatTo(w io.Writer, data interface{}) error {
	table, ok := data.(Tabular)
	if !ok {
		return fmt.Errorf("CSV formatting requires tabular data, got %T", data)
	}

	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if headers := table.Headers(); len(headers) > 0 {
		if err := csvWriter.Write(headers); err != nil {
			return err
		}
	}
	for _, row := range table.Rows() {
		if err := csvWriter.Write(row); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatCSV:
		return &CSVFormatter{}
	default:
		return &TextFormatter{}
	}
}
