package extraction

import "github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"

// FieldQuestion pairs a field name with the natural-language question used to
// extract it. One ordered sequence exists per document type.
type FieldQuestion struct {
	Field    string
	Question string
}

var invoiceQuestions = []FieldQuestion{
	{Field: "invoice_number", Question: "What is the invoice number?"},
	{Field: "invoice_date", Question: "What is the invoice date?"},
	{Field: "total_amount", Question: "What is the total amount?"},
	{Field: "vendor_name", Question: "What is the vendor name?"},
	{Field: "due_date", Question: "What is the due date?"},
	{Field: "tax_amount", Question: "What is the tax amount?"},
}

var contractQuestions = []FieldQuestion{
	{Field: "contract_number", Question: "What is the contract number?"},
	{Field: "contract_date", Question: "What is the contract date?"},
	{Field: "contract_value", Question: "What is the contract value?"},
	{Field: "parties", Question: "Who are the parties involved?"},
	{Field: "effective_date", Question: "What is the effective date?"},
	{Field: "termination_date", Question: "What is the termination date?"},
}

var insuranceClaimQuestions = []FieldQuestion{
	{Field: "claim_number", Question: "What is the claim number?"},
	{Field: "claim_date", Question: "What is the claim date?"},
	{Field: "claim_amount", Question: "What is the claim amount?"},
	{Field: "policy_number", Question: "What is the policy number?"},
	{Field: "claimant_name", Question: "What is the claimant name?"},
	{Field: "incident_date", Question: "What is the incident date?"},
}

// QuestionsFor returns the ordered question sequence for a document type.
// Receipt and other deliberately fall back to the invoice set.
func QuestionsFor(docType constants.DocumentType) []FieldQuestion {
	switch docType {
	case constants.DocTypeContract:
		return contractQuestions
	case constants.DocTypeInsuranceClaim:
		return insuranceClaimQuestions
	default:
		return invoiceQuestions
	}
}
