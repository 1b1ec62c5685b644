package service

import (
	"strings"
	"testing"

	"studiotributario-backend/extract"
	"studiotributario-backend/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentService_UploadChallenged(t *testing.T) {
	svc := NewDocumentService()
	sess := session.New()

	st, err := svc.UploadChallenged(sess, UploadFile{
		Filename: "avviso.txt",
		MimeType: "application/octet-stream",
		Data:     []byte("Avviso di accertamento IRPEF 2019"),
	})
	require.NoError(t, err)
	assert.True(t, st.Readable)
	assert.Equal(t, 33, st.TextChars)
	assert.Equal(t, extract.MimeText, sess.ChallengedDocument.MimeType, "type inferred from the extension")

	_, err = svc.UploadChallenged(sess, UploadFile{Filename: "cartella.txt", MimeType: "text/plain", Data: []byte("Cartella")})
	require.NoError(t, err)
	assert.Equal(t, "cartella.txt", sess.ChallengedDocument.Filename, "the challenged document is overwritten")
}

func TestDocumentService_RejectsInvalidUploads(t *testing.T) {
	svc := NewDocumentService(DocumentWithMaxFileSize(16))
	sess := session.New()

	_, err := svc.UploadChallenged(sess, UploadFile{Filename: "big.txt", MimeType: "text/plain", Data: []byte(strings.Repeat("x", 17))})
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = svc.UploadChallenged(sess, UploadFile{Filename: "foto.png", MimeType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}})
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	// legacy Word binaries cannot be read, so they are refused at upload
	_, err = svc.UploadChallenged(sess, UploadFile{Filename: "atto.doc", MimeType: extract.MimeDoc, Data: []byte{0xd0, 0xcf, 0x11, 0xe0}})
	assert.ErrorIs(t, err, ErrUnsupportedFile)
	_, err = svc.UploadChallenged(sess, UploadFile{Filename: "atto.doc", MimeType: "application/octet-stream", Data: []byte{0xd0, 0xcf, 0x11, 0xe0}})
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	assert.Nil(t, sess.ChallengedDocument)
}

func TestDocumentService_UploadReferencesReplacesSet(t *testing.T) {
	svc := NewDocumentService()
	sess := session.New()

	_, err := svc.UploadReferences(sess, []UploadFile{
		{Filename: "a.txt", MimeType: "text/plain", Data: []byte("Sentenza A")},
		{Filename: "b.txt", MimeType: "text/plain", Data: []byte("Sentenza B")},
	})
	require.NoError(t, err)
	assert.Len(t, sess.ReferenceDocuments, 2)

	_, err = svc.UploadReferences(sess, []UploadFile{
		{Filename: "c.txt", MimeType: "text/plain", Data: []byte("Sentenza C")},
		{Filename: "d.exe", MimeType: "application/x-msdownload", Data: []byte("MZ")},
	})
	assert.ErrorIs(t, err, ErrUnsupportedFile)
	assert.Len(t, sess.ReferenceDocuments, 2, "a rejected upload leaves the set unchanged")

	_, err = svc.UploadReferences(sess, []UploadFile{
		{Filename: "c.txt", MimeType: "text/plain", Data: []byte("Sentenza C")},
	})
	require.NoError(t, err)
	require.Len(t, sess.ReferenceDocuments, 1)
	assert.Equal(t, "c.txt", sess.ReferenceDocuments[0].Filename)

	_, err = svc.UploadReferences(sess, nil)
	assert.Error(t, err)
}

func TestDocumentService_ReferenceTextSkipsUnreadable(t *testing.T) {
	svc := NewDocumentService()
	sess := session.New()

	statuses, err := svc.UploadReferences(sess, []UploadFile{
		{Filename: "a.txt", MimeType: "text/plain", Data: []byte("Sentenza A")},
		{Filename: "scan.pdf", MimeType: "application/pdf", Data: []byte("not a pdf")},
		{Filename: "b.txt", MimeType: "text/plain", Data: []byte("Sentenza B")},
	})
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	assert.False(t, statuses[1].Readable)

	assert.Equal(t, "Sentenza A\n---\nSentenza B\n---\n", svc.ReferenceText(sess))
}
