package constants

import "strings"

// DocumentType is the closed set of document categories the processor accepts.
type DocumentType string

// Stable values (store these exact strings in DB).
const (
	DocTypeInvoice        DocumentType = "invoice"
	DocTypeContract       DocumentType = "contract"
	DocTypeInsuranceClaim DocumentType = "insurance_claim"
	DocTypeReceipt        DocumentType = "receipt"
	DocTypeOther          DocumentType = "other"
)

var allDocumentTypes = []DocumentType{
	DocTypeInvoice,
	DocTypeContract,
	DocTypeInsuranceClaim,
	DocTypeReceipt,
	DocTypeOther,
}

// DocumentTypes returns the supported document type strings.
func DocumentTypes() []string {
	result := make([]string, len(allDocumentTypes))
	for i, dt := range allDocumentTypes {
		result[i] = string(dt)
	}
	return result
}

// ParseDocumentType canonicalizes an input string to a DocumentType.
// Unknown inputs map to DocTypeOther with ok=false.
func ParseDocumentType(input string) (DocumentType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, dt := range allDocumentTypes {
		if normalized == string(dt) {
			return dt, true
		}
	}
	return DocTypeOther, false
}
