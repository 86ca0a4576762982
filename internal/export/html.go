package export

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagPattern = regexp.MustCompile(`<[^>]*>`)
	// named or numeric references that may spell an angle bracket
	bracketEntity = regexp.MustCompile(`(?i)&(?:lt|gt|#x[0-9a-f]+|#[0-9]+);?`)
)

const documentShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
  body { font-family: Arial, Helvetica, sans-serif; line-height: 1.6; color: #333; margin: 0; }
  h1, h2, h3 { color: #2c3e50; }
  h1 { border-bottom: 2px solid #3498db; padding-bottom: 10px; }
  h2 { border-bottom: 1px solid #bdc3c7; padding-bottom: 5px; margin-top: 30px; }
  ul { padding-left: 20px; }
  li { margin-bottom: 5px; }
</style>
</head>
<body>
`

// WrapHTML embeds a generated fragment into a complete UTF-8 document for printing.
func WrapHTML(fragment string) string {
	var b strings.Builder
	b.Grow(len(documentShell) + len(fragment) + 32)
	b.WriteString(documentShell)
	b.WriteString(fragment)
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}

// StripTags removes every markup tag and decodes HTML entities, except those that
// decode to '<' or '>', which stay encoded so stripped text never gains markup.
func StripTags(content string) string {
	text := tagPattern.ReplaceAllString(content, "")

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, loc := range bracketEntity.FindAllStringIndex(text, -1) {
		b.WriteString(html.UnescapeString(text[last:loc[0]]))
		entity := text[loc[0]:loc[1]]
		if decoded := html.UnescapeString(entity); decoded == "<" || decoded == ">" {
			b.WriteString(entity)
		} else {
			b.WriteString(decoded)
		}
		last = loc[1]
	}
	b.WriteString(html.UnescapeString(text[last:]))
	return b.String()
}
