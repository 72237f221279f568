package engine

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tabulon-io/tabulon/schema"
)

// ============================================================================
// ANONYMIZATION TRANSFORMER — Deterministic per-column masking
// ============================================================================
// Pure function of (value, method, smartType): identical inputs always
// produce identical outputs, so a preview exactly matches the eventual
// export.
//
// The hash method is a rolling hash producing a fixed-width token. It is
// NOT cryptographic and unsuitable for real confidentiality guarantees —
// use it only for obfuscated previews and exports.
// ============================================================================

// AnonymizeMethod selects how a column is transformed.
type AnonymizeMethod string

const (
	MethodMask   AnonymizeMethod = "mask"
	MethodRedact AnonymizeMethod = "redact"
	MethodHash   AnonymizeMethod = "hash"
	MethodRemove AnonymizeMethod = "remove"
)

// DefaultRedactMarker replaces the whole value under the redact method.
const DefaultRedactMarker = "[REDACTED]"

// KnownAnonymizeMethod reports whether a method name is supported.
// Configuration validation at the boundary uses this; an unknown method must
// never silently pass a sensitive value through.
func KnownAnonymizeMethod(method AnonymizeMethod) bool {
	switch method {
	case MethodMask, MethodRedact, MethodHash, MethodRemove:
		return true
	}
	return false
}

// SuggestMethod proposes an anonymization method for a column based on its
// dominant smart type. Only identifying kinds get a suggestion.
func SuggestMethod(kind schema.SmartKind) (AnonymizeMethod, bool) {
	switch kind {
	case schema.SmartEmail, schema.SmartPhone, schema.SmartURL, schema.SmartZipcode:
		return MethodMask, true
	}
	return "", false
}

// AnonymizeValue transforms a single cell. Blank values pass through
// unchanged; there is nothing to hide in an empty cell. The remove method
// is a column-level operation and is handled by AnonymizeTable.
func AnonymizeValue(value string, method AnonymizeMethod, kind schema.SmartKind, marker string) string {
	if schema.IsBlank(value) {
		return value
	}
	switch method {
	case MethodMask:
		return maskValue(value, kind)
	case MethodRedact:
		if marker == "" {
			marker = DefaultRedactMarker
		}
		return marker
	case MethodHash:
		return hashToken(value)
	}
	return value
}

// AnonymizeTable applies per-column methods and returns a new Table.
// Columns under the remove method are dropped entirely — from the rows,
// the column list, and the type metadata — not merely blanked.
func AnonymizeTable(t *Table, rules map[string]AnonymizeMethod, marker string) *Table {
	if len(rules) == 0 {
		return t
	}

	removed := make(map[string]bool)
	for col, method := range rules {
		if method == MethodRemove {
			removed[col] = true
		}
	}

	columns := make([]string, 0, len(t.Columns))
	types := make(map[string]schema.ColumnType, len(t.Types))
	smarts := make(map[string]schema.SmartTypeInfo, len(t.SmartTypes))
	for _, col := range t.Columns {
		if removed[col] {
			continue
		}
		columns = append(columns, col)
		if ct, ok := t.Types[col]; ok {
			types[col] = ct
		}
		if info, ok := t.SmartTypes[col]; ok {
			smarts[col] = info
		}
	}

	rows := make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		out := make(Row, len(row))
		for col, val := range row {
			if removed[col] {
				continue
			}
			if method, ok := rules[col]; ok {
				out[col] = AnonymizeValue(val, method, t.SmartKind(col), marker)
			} else {
				out[col] = val
			}
		}
		rows[i] = out
	}

	return &Table{
		Name:       t.Name,
		Columns:    columns,
		Rows:       rows,
		Types:      types,
		SmartTypes: smarts,
		Snapshot:   uuid.NewString(),
	}
}

// ============================================================================
// MASKING — Semantic-aware partial redaction
// ============================================================================

func maskValue(value string, kind schema.SmartKind) string {
	switch kind {
	case schema.SmartEmail:
		return maskEmail(value)
	case schema.SmartPhone:
		return maskPhone(value)
	case schema.SmartZipcode:
		return maskZipcode(value)
	}
	return maskGeneric(value)
}

// maskEmail keeps the first local-part character plus the domain:
// "jane@domain.com" → "j***@domain.com". Rune-aware so a multibyte first
// character survives intact.
func maskEmail(value string) string {
	at := strings.Index(value, "@")
	if at < 1 {
		return maskGeneric(value)
	}
	local := []rune(value[:at])
	return string(local[0]) + "***" + value[at:]
}

// maskPhone keeps the last 4 digits: "555-123-4567" → "***-***-4567".
func maskPhone(value string) string {
	var digits []rune
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < 4 {
		return maskGeneric(value)
	}
	return "***-***-" + string(digits[len(digits)-4:])
}

// maskZipcode keeps the first 2 characters: "98104" → "98***".
func maskZipcode(value string) string {
	runes := []rune(value)
	if len(runes) < 2 {
		return maskGeneric(value)
	}
	return string(runes[:2]) + "***"
}

// maskGeneric keeps the first and last character, starring the middle.
func maskGeneric(value string) string {
	runes := []rune(value)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}

// ============================================================================
// HASHING — Deterministic rolling hash, fixed-width token
// ============================================================================

// hashToken computes a djb2-style rolling hash and renders it as an 8-hex
// token. Deterministic by construction; never use for real secrecy.
func hashToken(value string) string {
	var h uint32 = 5381
	for _, b := range []byte(value) {
		h = h*33 + uint32(b)
	}
	return fmt.Sprintf("%08x", h)
}
