// Package output provides utilities for formatting and displaying calculation results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/simple-finance/internal/form"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Record is the serialized form of one calculation result.
type Record struct {
	Unknown    string  `json:"unknown"`
	Label      string  `json:"label"`
	Value      float64 `json:"value"`
	Display    string  `json:"display"`
	Iterations int     `json:"iterations,omitempty"`
	Method     string  `json:"method,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// NewRecord converts a form result into a Record.
func NewRecord(result form.Result) Record {
	record := Record{
		Unknown:    result.Unknown.String(),
		Label:      result.Unknown.Name() + " (" + result.Unknown.Label() + ")",
		Value:      result.Value,
		Display:    result.Display,
		Iterations: result.Iterations,
		Method:     result.Method,
	}
	if result.Err != nil {
		record.Error = result.Err.Error()
	}
	return record
}

func notes(result form.Result) string {
	if result.Err != nil {
		return result.Err.Error()
	}
	if result.Method != "" {
		return fmt.Sprintf("%s, %d iterations", result.Method, result.Iterations)
	}
	return ""
}

// PrettyFormat writes a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, results []form.Result) {
	p := message.NewPrinter(language.English)
	_, _ = fmt.Fprintf(w, "--- %s ---\n", form.Title)
	_, _ = fmt.Fprintf(w, "%-26s | %-14s | Notes\n", "Calculation", "Value")
	_, _ = fmt.Fprintf(w, "%-26s | %-14s | _____\n", "___________", "_____")
	for _, result := range results {
		label := result.Unknown.Name() + " (" + result.Unknown.Label() + ")"
		value := "n/a"
		if result.Err == nil {
			value = p.Sprintf("%.2f", result.Value)
		}
		_, _ = fmt.Fprintf(w, "%-26s | %-14s | %s\n", label, value, notes(result))
	}
}

// CsvFormat writes results in comma-separated value format.
func CsvFormat(w io.Writer, results []form.Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"unknown", "label", "value", "iterations", "method", "error"}); err != nil {
		return err
	}
	for _, result := range results {
		record := NewRecord(result)
		value := record.Display
		if record.Error != "" {
			value = ""
		}
		row := []string{
			record.Unknown,
			record.Label,
			value,
			strconv.Itoa(record.Iterations),
			record.Method,
			record.Error,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// JSONFormat writes results as an indented JSON array.
func JSONFormat(w io.Writer, results []form.Result) error {
	records := make([]Record, 0, len(results))
	for _, result := range results {
		records = append(records, NewRecord(result))
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}
