// Package extract turns uploaded documents into plain text.
package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"
)

const (
	MimePDF  = "application/pdf"
	MimeText = "text/plain"
	MimeDoc  = "application/msword"
	MimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	ErrUnsupported = errors.New("unsupported document type")
	ErrNoText      = errors.New("document contains no extractable text")
	ErrTooLarge    = errors.New("document exceeds the extraction size limit")
)

// MimeTypeFor infers the content type from the file extension
func MimeTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return MimePDF
	case ".txt":
		return MimeText
	case ".doc":
		return MimeDoc
	case ".docx":
		return MimeDocx
	default:
		return "application/octet-stream"
	}
}

// PlainText extracts the text of a PDF, plain-text or DOCX document
func PlainText(filename, mimeType string, data []byte) (string, error) {
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = MimeTypeFor(filename)
	}
	mimeType = strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])

	var (
		text string
		err  error
	)
	switch {
	case mimeType == MimePDF:
		text, err = pdfText(data)
	case mimeType == MimeDocx:
		text, err = docxText(data)
	case strings.HasPrefix(mimeType, "text/"):
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%s: invalid UTF-8 text", filename)
		}
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, mimeType)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", filename, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func pdfText(data []byte) (text string, err error) {
	// the PDF parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	return string(out), nil
}

// maxDocxExpandedSize caps the declared uncompressed size of a DOCX package.
// archive/zip rejects parts that inflate past their declared size.
var maxDocxExpandedSize uint64 = 64 << 20

// docxText reads the body paragraphs and table cells of a DOCX package
func docxText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed DOCX: %v", r)
		}
	}()

	r := bytes.NewReader(data)
	zr, err := zip.NewReader(r, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}
	var expanded uint64
	for _, f := range zr.File {
		expanded += f.UncompressedSize64
		if expanded > maxDocxExpandedSize {
			return "", fmt.Errorf("package expands past %d bytes: %w", maxDocxExpandedSize, ErrTooLarge)
		}
	}

	doc, err := docx.Parse(r, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse DOCX: %w", err)
	}
	var b strings.Builder
	writeBodyItems(&b, doc.Document.Body.Items)
	return b.String(), nil
}

func writeBodyItems(b *strings.Builder, items []interface{}) {
	for _, it := range items {
		switch v := it.(type) {
		case *docx.Paragraph:
			writeParagraph(b, v)
			b.WriteByte('\n')
		case *docx.Table:
			writeTable(b, v)
		}
	}
}

// writeTable emits one line per row with cells separated by tabs
func writeTable(b *strings.Builder, t *docx.Table) {
	for _, row := range t.TableRows {
		for i, cell := range row.TableCells {
			if i > 0 {
				b.WriteByte('\t')
			}
			for j, p := range cell.Paragraphs {
				if j > 0 {
					b.WriteByte(' ')
				}
				writeParagraph(b, p)
			}
		}
		b.WriteByte('\n')
		for _, cell := range row.TableCells {
			for _, nested := range cell.Tables {
				writeTable(b, nested)
			}
		}
	}
}

func writeParagraph(b *strings.Builder, p *docx.Paragraph) {
	for _, c := range p.Children {
		switch v := c.(type) {
		case *docx.Run:
			writeRun(b, v)
		case *docx.Hyperlink:
			if len(v.Run.Children) == 0 {
				b.WriteString(v.Run.InstrText)
				continue
			}
			writeRun(b, &v.Run)
		}
	}
}

func writeRun(b *strings.Builder, r *docx.Run) {
	for _, c := range r.Children {
		switch v := c.(type) {
		case *docx.Text:
			b.WriteString(v.Text)
		case *docx.Tab:
			b.WriteByte('\t')
		case *docx.BarterRabbet:
			b.WriteByte('\n')
		}
	}
}
