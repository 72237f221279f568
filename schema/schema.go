package schema

// ============================================================================
// SCHEMA — Column type metadata for tabular datasets
// ============================================================================
// Two layers of classification per column:
//   ColumnType    — basic shape: string, number, date
//   SmartTypeInfo — optional semantic type layered on top (email, phone, ...)
// The engine uses ColumnType for operator dispatch and SmartTypeInfo for
// anonymization suggestions and semantic-aware masking.
// ============================================================================

// ColumnType is the basic inferred type of a column.
type ColumnType string

const (
	TypeString ColumnType = "string"
	TypeNumber ColumnType = "number"
	TypeDate   ColumnType = "date"
)

// SmartKind is a semantic classification layered atop the basic type.
type SmartKind string

const (
	SmartNone       SmartKind = "none"
	SmartEmail      SmartKind = "email"
	SmartPhone      SmartKind = "phone"
	SmartURL        SmartKind = "url"
	SmartCurrency   SmartKind = "currency"
	SmartDate       SmartKind = "date"
	SmartPercentage SmartKind = "percentage"
	SmartZipcode    SmartKind = "zipcode"
)

// SmartTypeInfo describes the dominant smart type of a column.
type SmartTypeInfo struct {
	Kind         SmartKind `json:"kind"`
	ValidCount   int       `json:"validCount"`
	InvalidCount int       `json:"invalidCount"`
	ValidPercent float64   `json:"validPercent"`
}

// IsSemantic reports whether the info carries a real classification.
func (s SmartTypeInfo) IsSemantic() bool {
	return s.Kind != SmartNone && s.Kind != ""
}
