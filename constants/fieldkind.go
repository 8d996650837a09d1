package constants

// FieldKind selects which validator applies to an extracted field.
type FieldKind string

const (
	KindVendor      FieldKind = "vendor"
	KindAmount      FieldKind = "amount"
	KindDate        FieldKind = "date"
	KindPassthrough FieldKind = "passthrough"
)

// fieldKinds is the closed mapping from known field names to validator kinds.
// Fields not listed here validate as passthrough.
var fieldKinds = map[string]FieldKind{
	"vendor_name": KindVendor,

	"total_amount":   KindAmount,
	"claim_amount":   KindAmount,
	"contract_value": KindAmount,

	"invoice_date":     KindDate,
	"due_date":         KindDate,
	"contract_date":    KindDate,
	"effective_date":   KindDate,
	"termination_date": KindDate,
	"claim_date":       KindDate,
	"incident_date":    KindDate,
}

// KindForField returns the validator kind for a field name.
func KindForField(field string) FieldKind {
	if k, ok := fieldKinds[field]; ok {
		return k
	}
	return KindPassthrough
}
