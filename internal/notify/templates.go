package notify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"
)

// Message is a composed notification ready for a transport.
type Message struct {
	Subject string
	Body    string
}

// ComposeApproval formats the "approved" notification. Deterministic:
// extracted fields render in sorted order.
func ComposeApproval(docType constants.DocumentType, docID uuid.UUID, extracted map[string]string) Message {
	subject := fmt.Sprintf("Document Approved: %s #%s", titleCase(string(docType)), docID)

	var b strings.Builder
	b.WriteString("Document Processing Complete - APPROVED\n\n")
	fmt.Fprintf(&b, "Document Type: %s\n", titleCase(string(docType)))
	fmt.Fprintf(&b, "Document ID: %s\n", docID)
	b.WriteString("Status: APPROVED\n\n")
	writeExtracted(&b, extracted)
	b.WriteString("\nThis document has been automatically approved based on validation rules.\n")
	b.WriteString("No further action is required.\n")

	return Message{Subject: subject, Body: b.String()}
}

// ComposeReview formats the "review requested" notification, including the
// decision rationale.
func ComposeReview(docType constants.DocumentType, docID uuid.UUID, extracted map[string]string, rationale string) Message {
	subject := fmt.Sprintf("Action Required: Review %s #%s", titleCase(string(docType)), docID)

	var b strings.Builder
	b.WriteString("Document Processing Complete - REVIEW REQUIRED\n\n")
	fmt.Fprintf(&b, "Document Type: %s\n", titleCase(string(docType)))
	fmt.Fprintf(&b, "Document ID: %s\n", docID)
	b.WriteString("Status: FLAGGED FOR REVIEW\n\n")
	fmt.Fprintf(&b, "Reason: %s\n\n", rationale)
	writeExtracted(&b, extracted)
	b.WriteString("\nPlease review this document and take appropriate action.\n")

	return Message{Subject: subject, Body: b.String()}
}

// Compose picks the template for an action: approval for approve, review for
// everything else. The caller decides whether a message is sent at all.
func Compose(action constants.WorkflowAction, docType constants.DocumentType, docID uuid.UUID, extracted map[string]string, rationale string) Message {
	if action == constants.ActionApprove {
		return ComposeApproval(docType, docID, extracted)
	}
	return ComposeReview(docType, docID, extracted, rationale)
}

func writeExtracted(b *strings.Builder, extracted map[string]string) {
	b.WriteString("Extracted Information:\n")
	fields := make([]string, 0, len(extracted))
	for f := range extracted {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(b, "  - %s: %s\n", titleCase(f), extracted[f])
	}
}

// titleCase renders field and type identifiers for humans:
// "insurance_claim" -> "Insurance Claim".
func titleCase(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
