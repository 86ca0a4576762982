package generation

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	openingFence = regexp.MustCompile("^```[a-zA-Z]*\\s*\\n?")
	closingFence = regexp.MustCompile("\\n?```\\s*$")
	fullDocument = regexp.MustCompile(`(?i)<(html|body)[\s>]`)
)

// NormalizeContent strips markdown code fences and, when the model answered with a
// complete HTML document, keeps the inner HTML of its body preceded by any <style>
// elements from its head.
func NormalizeContent(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = openingFence.ReplaceAllString(text, "")
		text = closingFence.ReplaceAllString(text, "")
		text = strings.TrimSpace(text)
	}

	if !fullDocument.MatchString(text) {
		return text
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}
	body, err := doc.Find("body").First().Html()
	if err != nil || strings.TrimSpace(body) == "" {
		return text
	}

	var b strings.Builder
	doc.Find("head style").Each(func(_ int, style *goquery.Selection) {
		if css, err := goquery.OuterHtml(style); err == nil {
			b.WriteString(css)
			b.WriteString("\n")
		}
	})
	b.WriteString(strings.TrimSpace(body))
	return b.String()
}
