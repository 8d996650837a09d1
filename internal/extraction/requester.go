package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/common"
)

// Answer is a single question-answering result from the collaborator.
type Answer struct {
	Text       string
	Confidence float64
	Start      int
	End        int
}

// AnswerExtractor is the extraction collaborator the requester depends on.
type AnswerExtractor interface {
	Answer(ctx context.Context, question, documentText string) (Answer, error)
}

// FieldExtraction records one answer+confidence result for one question.
// Immutable after creation. A nil Answer or zero Confidence marks the
// extraction as failed for that field; it must never be read as success.
type FieldExtraction struct {
	Field      string
	Answer     *string
	Confidence float64
	SpanStart  int
	SpanEnd    int
	HasSpan    bool
	Error      string
}

// Failed reports whether this field's extraction produced no usable answer.
func (e FieldExtraction) Failed() bool {
	return e.Answer == nil || e.Confidence == 0 || e.Error != ""
}

// Requester builds the document-type question set and drives the extraction
// collaborator, normalizing every result into a FieldExtraction record.
type Requester struct {
	logger      *slog.Logger
	extractor   AnswerExtractor
	concurrency int
}

func NewRequester(logger *slog.Logger, extractor AnswerExtractor, concurrency int) *Requester {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Requester{logger: logger, extractor: extractor, concurrency: concurrency}
}

// Extract returns one FieldExtraction per question for docType, in question
// order. A single field's failure is captured into its record and never
// aborts the rest. Only empty document text or an empty question sequence
// fail wholesale; both are caller-contract violations.
func (r *Requester) Extract(ctx context.Context, documentText string, docType constants.DocumentType) ([]FieldExtraction, error) {
	if strings.TrimSpace(documentText) == "" {
		return nil, fmt.Errorf("%w: empty document text", common.ErrInvalidInput)
	}
	questions := QuestionsFor(docType)
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions for document type %q", common.ErrInvalidInput, docType)
	}

	results := make([]FieldExtraction, len(questions))

	if r.concurrency == 1 {
		for i, q := range questions {
			results[i] = r.extractField(ctx, documentText, q)
		}
		return results, nil
	}

	// Per-field calls are independent reads; fan out with a bounded limit and
	// reassemble into question order by index.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, q := range questions {
		g.Go(func() error {
			results[i] = r.extractField(gctx, documentText, q)
			return nil
		})
	}
	_ = g.Wait() // goroutines capture failures per field, never return errors
	return results, nil
}

func (r *Requester) extractField(ctx context.Context, documentText string, q FieldQuestion) FieldExtraction {
	ans, err := r.extractor.Answer(ctx, q.Question, documentText)
	if err != nil {
		r.logger.Warn("extract.field.failed", "field", q.Field, "error", err)
		return FieldExtraction{Field: q.Field, Error: err.Error()}
	}
	r.logger.Info("extract.field.ok",
		"field", q.Field,
		"confidence", ans.Confidence,
		"answer_len", len(ans.Text),
	)
	text := ans.Text
	return FieldExtraction{
		Field:      q.Field,
		Answer:     &text,
		Confidence: ans.Confidence,
		SpanStart:  ans.Start,
		SpanEnd:    ans.End,
		HasSpan:    ans.End > ans.Start,
	}
}
