// Package export serializes draft text into downloadable documents.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"
)

// Text returns the draft as UTF-8 plain text with normalized line endings
func Text(draft string) []byte {
	s := strings.ReplaceAll(draft, "\r\n", "\n")
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return []byte(s)
}

// Docx returns the draft as an A4 WordprocessingML package with one paragraph per line
func Docx(draft string) ([]byte, error) {
	d := docx.New().WithDefaultTheme()
	for _, line := range strings.Split(strings.ReplaceAll(draft, "\r\n", "\n"), "\n") {
		p := d.AddParagraph()
		if line == "" {
			continue
		}
		for _, c := range p.AddText(line).Children {
			if t, ok := c.(*docx.Text); ok {
				t.XMLSpace = "preserve"
			}
		}
	}
	// section properties close the body
	d.WithA4Page()

	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}
	return buf.Bytes(), nil
}
