package pipeline

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var tokenExpr = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// htmlTagExpr matches a complete open, close or void tag of an element web
// forms actually emit. Bare angle brackets in prose never match.
var htmlTagExpr = regexp.MustCompile(`(?i)</?(?:a|b|i|u|p|br|hr|em|strong|span|div|font|ul|ol|li|table|thead|tbody|tr|td|th|h[1-6]|blockquote|pre|code|html|head|body|script|style)(?:\s[^<>]*)?/?>`)

// Analyze turns a narrative into the token stream fed to the vectorizer:
// markup is reduced to text, everything is lowercased, and stop words are dropped.
func Analyze(text string) []string {
	text = strings.ToLower(StripMarkup(text))

	raw := tokenExpr.FindAllString(text, -1)
	tokens := raw[:0]
	for _, tok := range raw {
		if _, stop := englishStopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// StripMarkup returns the visible text of HTML fragments submitted through web
// forms. Narratives without a recognizable HTML tag are returned unchanged, so
// text such as "<Rs 500>" or "a<b" keeps every word.
func StripMarkup(text string) string {
	if !htmlTagExpr.MatchString(text) {
		return text
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}

	var parts []string
	doc.Find("*").Contents().Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) != "#text" {
			return
		}
		switch goquery.NodeName(s.Parent()) {
		case "script", "style":
			return
		}
		if chunk := strings.TrimSpace(s.Text()); chunk != "" {
			parts = append(parts, chunk)
		}
	})

	return strings.Join(parts, " ")
}
