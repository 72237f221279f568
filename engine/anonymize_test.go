package engine

import (
	"testing"
	"unicode/utf8"

	"github.com/tabulon-io/tabulon/schema"
)

// ============================================================================
// ANONYMIZATION TESTS
// ============================================================================

func TestMaskEmail(t *testing.T) {
	got := AnonymizeValue("jane@domain.com", MethodMask, schema.SmartEmail, "")
	if got != "j***@domain.com" {
		t.Errorf("masked email = %q, want j***@domain.com", got)
	}
}

func TestMaskPhone(t *testing.T) {
	got := AnonymizeValue("(555) 123-4567", MethodMask, schema.SmartPhone, "")
	if got != "***-***-4567" {
		t.Errorf("masked phone = %q, want ***-***-4567", got)
	}
}

func TestMaskZipcode(t *testing.T) {
	got := AnonymizeValue("98104", MethodMask, schema.SmartZipcode, "")
	if got != "98***" {
		t.Errorf("masked zipcode = %q, want 98***", got)
	}
}

func TestMaskGenericFallback(t *testing.T) {
	got := AnonymizeValue("Seattle", MethodMask, schema.SmartNone, "")
	if got != "S*****e" {
		t.Errorf("generic mask = %q, want S*****e", got)
	}
	if got := AnonymizeValue("ab", MethodMask, schema.SmartNone, ""); got != "**" {
		t.Errorf("short value mask = %q, want **", got)
	}
}

func TestMaskKeepsMultibyteRunesIntact(t *testing.T) {
	got := AnonymizeValue("épost@x.com", MethodMask, schema.SmartEmail, "")
	if got != "é***@x.com" {
		t.Errorf("masked email = %q, want é***@x.com", got)
	}
	if !utf8.ValidString(got) {
		t.Errorf("masked email %q is not valid UTF-8", got)
	}

	got = AnonymizeValue("ØK104", MethodMask, schema.SmartZipcode, "")
	if got != "ØK***" {
		t.Errorf("masked zipcode = %q, want ØK***", got)
	}
	if !utf8.ValidString(got) {
		t.Errorf("masked zipcode %q is not valid UTF-8", got)
	}
}

func TestRedact(t *testing.T) {
	if got := AnonymizeValue("secret", MethodRedact, schema.SmartNone, ""); got != DefaultRedactMarker {
		t.Errorf("redact = %q, want %q", got, DefaultRedactMarker)
	}
	if got := AnonymizeValue("secret", MethodRedact, schema.SmartNone, "XXX"); got != "XXX" {
		t.Errorf("redact with marker = %q, want XXX", got)
	}
}

func TestHashIsDeterministicAndFixedWidth(t *testing.T) {
	a := AnonymizeValue("alice@corp.com", MethodHash, schema.SmartEmail, "")
	b := AnonymizeValue("alice@corp.com", MethodHash, schema.SmartEmail, "")
	if a != b {
		t.Errorf("hash must be deterministic: %q != %q", a, b)
	}
	if len(a) != 8 {
		t.Errorf("hash token width = %d, want 8", len(a))
	}
	if a == AnonymizeValue("bob@corp.com", MethodHash, schema.SmartEmail, "") {
		t.Error("different inputs should not collide on trivial cases")
	}
}

func TestBlankValuesPassThrough(t *testing.T) {
	if got := AnonymizeValue("", MethodHash, schema.SmartNone, ""); got != "" {
		t.Errorf("blank value should pass through, got %q", got)
	}
}

func TestRemoveDropsColumnEntirely(t *testing.T) {
	table := NewTable("people", []string{"name", "ssn"}, []Row{
		{"name": "Alice", "ssn": "123-45-6789"},
		{"name": "Bob", "ssn": "987-65-4321"},
	})
	out := AnonymizeTable(table, map[string]AnonymizeMethod{"ssn": MethodRemove}, "")

	for _, col := range out.Columns {
		if col == "ssn" {
			t.Fatal("removed column must not appear in the column list")
		}
	}
	for _, row := range out.Rows {
		if _, ok := row["ssn"]; ok {
			t.Fatal("removed column must not appear in any output row")
		}
	}
	if _, ok := out.Types["ssn"]; ok {
		t.Error("removed column must drop its type metadata")
	}

	// The input snapshot is untouched.
	if _, ok := table.Rows[0]["ssn"]; !ok {
		t.Error("anonymization must not mutate the input table")
	}
}

func TestAnonymizeTableUsesSmartTypes(t *testing.T) {
	table := NewTable("people", []string{"email"}, []Row{
		{"email": "a@x.com"},
		{"email": "b@y.com"},
	})
	out := AnonymizeTable(table, map[string]AnonymizeMethod{"email": MethodMask}, "")
	if out.Rows[0]["email"] != "a***@x.com" {
		t.Errorf("mask should be email-aware via the column's smart type, got %q", out.Rows[0]["email"])
	}
	if out.Snapshot == table.Snapshot {
		t.Error("anonymization must produce a new snapshot")
	}
}

func TestSuggestMethod(t *testing.T) {
	for _, kind := range []schema.SmartKind{
		schema.SmartEmail, schema.SmartPhone, schema.SmartURL, schema.SmartZipcode,
	} {
		if method, ok := SuggestMethod(kind); !ok || method != MethodMask {
			t.Errorf("%s should suggest mask", kind)
		}
	}
	if _, ok := SuggestMethod(schema.SmartCurrency); ok {
		t.Error("currency should get no suggestion")
	}
	if _, ok := SuggestMethod(schema.SmartNone); ok {
		t.Error("none should get no suggestion")
	}
}

func TestPreviewMatchesTableTransform(t *testing.T) {
	// Determinism contract: transforming a cell alone equals transforming it
	// as part of the table, so previews match exports.
	table := NewTable("people", []string{"email"}, []Row{{"email": "a@x.com"}})
	out := AnonymizeTable(table, map[string]AnonymizeMethod{"email": MethodHash}, "")
	preview := AnonymizeValue("a@x.com", MethodHash, schema.SmartEmail, "")
	if out.Rows[0]["email"] != preview {
		t.Errorf("preview %q must equal export %q", preview, out.Rows[0]["email"])
	}
}
