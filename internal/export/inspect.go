package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Summary describes an exported file read back from disk.
type Summary struct {
	Format Format
	Pages  int
	Text   string
}

// Inspect reads back a PDF or DOCX export. DOCX files report one page.
func Inspect(data []byte, format Format) (Summary, error) {
	switch format {
	case FormatPDF:
		return inspectPDF(data)
	case FormatDOCX:
		paragraphs, err := DocumentParagraphs(data)
		if err != nil {
			return Summary{}, fmt.Errorf("read docx: %w", err)
		}
		return Summary{Format: FormatDOCX, Pages: 1, Text: strings.Join(paragraphs, "\n")}, nil
	default:
		return Summary{}, fmt.Errorf("unsupported format %q", format)
	}
}

func inspectPDF(data []byte) (Summary, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Summary{}, fmt.Errorf("open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return Summary{}, fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return Summary{}, fmt.Errorf("extract pdf text: %w", err)
	}
	return Summary{Format: FormatPDF, Pages: reader.NumPage(), Text: buf.String()}, nil
}

// FormatOf maps a file name to its export format by extension.
func FormatOf(name string) (Format, bool) {
	switch strings.ToLower(name[strings.LastIndex(name, ".")+1:]) {
	case "pdf":
		return FormatPDF, true
	case "docx":
		return FormatDOCX, true
	}
	return "", false
}
