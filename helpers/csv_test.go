package helpers

import (
	"strings"
	"testing"

	"github.com/tabulon-io/tabulon/engine"
	"github.com/tabulon-io/tabulon/schema"
)

// ============================================================================
// CSV HELPER TESTS
// ============================================================================

var peopleCSV = []byte(`name,email,age
Alice,alice@corp.com,34
Bob,bob@corp.com,28
Carol,,41
`)

func TestParseCSV(t *testing.T) {
	table, err := ParseCSV(peopleCSV, "people")
	if err != nil {
		t.Fatal(err)
	}
	if table.Name != "people" {
		t.Errorf("name = %s, want people", table.Name)
	}

	wantColumns := []string{"name", "email", "age"}
	for i, col := range wantColumns {
		if table.Columns[i] != col {
			t.Fatalf("columns = %v, want %v (header order)", table.Columns, wantColumns)
		}
	}
	if len(table.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(table.Rows))
	}
	if table.Rows[0]["email"] != "alice@corp.com" {
		t.Errorf("cell = %q", table.Rows[0]["email"])
	}

	// Types are inferred on load.
	if table.ColumnType("age") != schema.TypeNumber {
		t.Errorf("age type = %s, want number", table.ColumnType("age"))
	}
	if table.SmartKind("email") != schema.SmartEmail {
		t.Errorf("email smart type = %s, want email", table.SmartKind("email"))
	}
}

func TestParseCSVNoColumns(t *testing.T) {
	if _, err := ParseCSV([]byte(""), "empty"); err == nil {
		t.Error("empty input must error")
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	table, err := ParseCSV(peopleCSV, "people")
	if err != nil {
		t.Fatal(err)
	}
	out, err := WriteCSV(table)
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if lines[0] != "name,email,age" {
		t.Errorf("header = %q, want original column order", lines[0])
	}
	if lines[3] != "Carol,,41" {
		t.Errorf("blank cells must serialize as empty strings, got %q", lines[3])
	}
}

func TestWriteCSVAbsentCells(t *testing.T) {
	// Absent cells (e.g. the unmatched side of an outer join) serialize as
	// empty strings.
	table := engine.NewTable("t", []string{"a", "b"}, []engine.Row{
		{"a": "1"},
	})
	out, err := WriteCSV(table)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if lines[1] != "1," {
		t.Errorf("row = %q, want \"1,\"", lines[1])
	}
}
