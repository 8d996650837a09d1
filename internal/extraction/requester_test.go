package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/common"
)

type fakeExtractor struct {
	answers map[string]Answer
	err     error
}

func (f *fakeExtractor) Answer(_ context.Context, question, _ string) (Answer, error) {
	if f.err != nil {
		return Answer{}, f.err
	}
	if a, ok := f.answers[question]; ok {
		return a, nil
	}
	return Answer{Text: "something", Confidence: 0.5}, nil
}

func TestExtractReturnsOneRecordPerQuestionInOrder(t *testing.T) {
	ex := &fakeExtractor{answers: map[string]Answer{
		"What is the invoice number?": {Text: "INV-42", Confidence: 0.99, Start: 10, End: 16},
		"What is the total amount?":   {Text: "$1,250.00", Confidence: 0.91},
	}}
	r := NewRequester(nil, ex, 3)

	results, err := r.Extract(context.Background(), "Invoice INV-42 total $1,250.00", constants.DocTypeInvoice)
	require.NoError(t, err)

	questions := QuestionsFor(constants.DocTypeInvoice)
	require.Len(t, results, len(questions))
	for i, q := range questions {
		assert.Equal(t, q.Field, results[i].Field, "results must follow question order")
	}

	first := results[0]
	require.NotNil(t, first.Answer)
	assert.Equal(t, "INV-42", *first.Answer)
	assert.Equal(t, 0.99, first.Confidence)
	assert.True(t, first.HasSpan)
	assert.False(t, first.Failed())
}

func TestExtractCapturesPerFieldFailures(t *testing.T) {
	ex := &fakeExtractor{err: errors.New("model loading")}
	r := NewRequester(nil, ex, 2)

	results, err := r.Extract(context.Background(), "some text", constants.DocTypeContract)
	require.NoError(t, err, "a field failure must not abort the extraction")

	require.Len(t, results, len(QuestionsFor(constants.DocTypeContract)))
	for _, res := range results {
		assert.True(t, res.Failed())
		assert.Nil(t, res.Answer)
		assert.Contains(t, res.Error, "model loading")
	}
}

func TestExtractSequentialMatchesConcurrent(t *testing.T) {
	ex := &fakeExtractor{answers: map[string]Answer{
		"What is the claim number?": {Text: "CLM-7", Confidence: 0.8},
	}}

	seq, err := NewRequester(nil, ex, 1).Extract(context.Background(), "claim CLM-7", constants.DocTypeInsuranceClaim)
	require.NoError(t, err)
	par, err := NewRequester(nil, ex, 4).Extract(context.Background(), "claim CLM-7", constants.DocTypeInsuranceClaim)
	require.NoError(t, err)

	require.Len(t, par, len(seq))
	for i := range seq {
		assert.Equal(t, seq[i].Field, par[i].Field)
		assert.Equal(t, seq[i].Confidence, par[i].Confidence)
	}
}

func TestExtractRejectsEmptyText(t *testing.T) {
	r := NewRequester(nil, &fakeExtractor{}, 1)

	_, err := r.Extract(context.Background(), "   \n\t", constants.DocTypeInvoice)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestQuestionsForFallsBackToInvoice(t *testing.T) {
	assert.Equal(t, QuestionsFor(constants.DocTypeInvoice), QuestionsFor(constants.DocTypeReceipt))
	assert.Equal(t, QuestionsFor(constants.DocTypeInvoice), QuestionsFor(constants.DocTypeOther))
	assert.NotEqual(t, QuestionsFor(constants.DocTypeInvoice), QuestionsFor(constants.DocTypeContract))
}

func TestFieldExtractionFailed(t *testing.T) {
	text := "x"
	assert.True(t, FieldExtraction{Field: "f"}.Failed(), "nil answer")
	assert.True(t, FieldExtraction{Field: "f", Answer: &text}.Failed(), "zero confidence")
	assert.True(t, FieldExtraction{Field: "f", Answer: &text, Confidence: 0.9, Error: "boom"}.Failed())
	assert.False(t, FieldExtraction{Field: "f", Answer: &text, Confidence: 0.9}.Failed())
}
