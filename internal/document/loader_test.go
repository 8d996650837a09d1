package document

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/common"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/storage/local"
)

func newTestStore(t *testing.T) *local.Store {
	t.Helper()
	store, err := local.New(t.TempDir())
	require.NoError(t, err)
	return store
}

func put(t *testing.T, store *local.Store, key string, content []byte) {
	t.Helper()
	require.NoError(t, store.Upload(context.Background(), key, bytes.NewReader(content), "text/plain"))
}

func TestLoadReturnsTrimmedText(t *testing.T) {
	store := newTestStore(t)
	put(t, store, "invoice/doc.txt", []byte("\n  Invoice INV-1 from Acme Corporation  \n"))

	l := NewBlobLoader(store, nil, 50)
	text, err := l.Load(context.Background(), "invoice/doc.txt")
	require.NoError(t, err)
	assert.Equal(t, "Invoice INV-1 from Acme Corporation", text)
}

func TestLoadRejectsUnsupportedExtension(t *testing.T) {
	store := newTestStore(t)
	put(t, store, "invoice/doc.pdf", []byte("%PDF-1.7"))

	l := NewBlobLoader(store, nil, 50)
	_, err := l.Load(context.Background(), "invoice/doc.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrLoadFailure)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestLoadRejectsMissingObject(t *testing.T) {
	store := newTestStore(t)

	l := NewBlobLoader(store, nil, 50)
	_, err := l.Load(context.Background(), "invoice/nope.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrLoadFailure)
}

func TestLoadRejectsEmptyDocument(t *testing.T) {
	store := newTestStore(t)
	put(t, store, "invoice/empty.txt", []byte("   \n\t  "))

	l := NewBlobLoader(store, nil, 50)
	_, err := l.Load(context.Background(), "invoice/empty.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document is empty")
}

func TestLoadRejectsBinaryContent(t *testing.T) {
	store := newTestStore(t)
	put(t, store, "invoice/binary.txt", []byte{0xff, 0xfe, 0x00, 0x01})

	l := NewBlobLoader(store, nil, 50)
	_, err := l.Load(context.Background(), "invoice/binary.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid UTF-8")
}

func TestLoadEnforcesSizeLimit(t *testing.T) {
	store := newTestStore(t)
	put(t, store, "invoice/big.txt", bytes.Repeat([]byte("a"), 2*1024*1024))

	// 1 MB cap
	l := NewBlobLoader(store, nil, 1)
	_, err := l.Load(context.Background(), "invoice/big.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrLoadFailure)
}

func TestLoadAcceptsAlternateTextExtensions(t *testing.T) {
	store := newTestStore(t)
	put(t, store, "notes/readme.md", []byte("# Contract MSA-9"))

	l := NewBlobLoader(store, nil, 50)
	text, err := l.Load(context.Background(), "notes/readme.md")
	require.NoError(t, err)
	assert.Equal(t, "# Contract MSA-9", text)
}
