package resume

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// ExportFilename derives the export base name (no extension) for a generated document,
// e.g. "resume_Jane_Doe" or "cover_letter_Jane_Doe".
func ExportFilename(docType DocType, fullName string) string {
	name := SanitizeName(fullName)
	if name == "" {
		name = "document"
	}
	return docType.FilenamePrefix() + "_" + name
}

// SanitizeName replaces whitespace runs with underscores and drops anything that is not
// a letter, digit, underscore, dash or dot. Leading dots are removed.
func SanitizeName(s string) string {
	s = whitespaceRun.ReplaceAllString(strings.TrimSpace(s), "_")
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-', r == '.':
			b.WriteRune(r)
		}
	}
	out := b.String()
	for strings.Contains(out, "..") {
		out = strings.ReplaceAll(out, "..", ".")
	}
	return strings.TrimLeft(out, ".")
}
