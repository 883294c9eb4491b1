package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/iwvelando/simple-finance/internal/form"
	"github.com/iwvelando/simple-finance/pkg/tvm"
)

func sampleResults() []form.Result {
	return []form.Result{
		{Unknown: tvm.FieldFutureValue, Value: 1628.894627, Display: "1628.89"},
		{Unknown: tvm.FieldInterestRate, Value: 5, Display: "5.00", Iterations: 6, Method: tvm.MethodNewton},
		{Unknown: tvm.FieldPeriodicPayment, Err: fmt.Errorf("solve pmt: %w: not a number", tvm.ErrUndefined)},
	}
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	PrettyFormat(&buf, sampleResults())
	output := buf.String()

	if !strings.Contains(output, "--- Simple Finance ---") {
		t.Errorf("PrettyFormat missing header")
	}
	if !strings.Contains(output, "Future Value (FV)") {
		t.Errorf("PrettyFormat missing calculation label")
	}
	if !strings.Contains(output, "1,628.89") {
		t.Errorf("PrettyFormat missing grouped value, got:\n%s", output)
	}
	if !strings.Contains(output, "newton, 6 iterations") {
		t.Errorf("PrettyFormat missing solver notes")
	}
	if !strings.Contains(output, "n/a") || !strings.Contains(output, "result undefined") {
		t.Errorf("PrettyFormat missing error row, got:\n%s", output)
	}
}

func TestCsvFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, sampleResults()); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "unknown" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "fv" || rows[1][2] != "1628.89" {
		t.Errorf("unexpected FV row %v", rows[1])
	}
	if rows[2][3] != "6" || rows[2][4] != "newton" {
		t.Errorf("unexpected rate row %v", rows[2])
	}
	if rows[3][2] != "" || !strings.Contains(rows[3][5], "result undefined") {
		t.Errorf("unexpected error row %v", rows[3])
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := JSONFormat(&buf, sampleResults()); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}

	var records []Record
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[1].Label != "Interest Rate (I/Y)" || records[1].Method != "newton" {
		t.Errorf("unexpected rate record %+v", records[1])
	}
	if records[2].Error == "" {
		t.Errorf("expected error on PMT record")
	}
}
