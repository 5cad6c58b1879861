package pipeline

import (
	"regexp"
	"strings"
)

// Highlight placeholders use Unicode Private Use Area characters.
// They pass through Goldmark unchanged and become <mark> tags afterwards.
const (
	MarkStartPlaceholder = "\uE000" // U+E000: Private Use Area start
	MarkEndPlaceholder   = "\uE001" // U+E001: Private Use Area end
)

// MaxTitleRunes caps the document title extracted from Markdown.
const MaxTitleRunes = 120

var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
	highlightPattern   = regexp.MustCompile(`==(.*?)==`)
	atxHeading         = regexp.MustCompile(`^ {0,3}#{1,6}[ \t]+(.*?)[ \t#]*$`)
	inlineMarkup       = regexp.MustCompile("[*_`~]+|!?\\[([^\\]]*)\\]\\([^)]*\\)")
)

// Preprocess prepares Markdown for conversion: strips a leading BOM,
// normalizes line endings, turns ==text== into highlight placeholders and
// caps consecutive blank lines at one.
func Preprocess(content string) string {
	content = strings.TrimPrefix(content, "\uFEFF")
	content = normalizeLineEndings(content)
	content = convertHighlights(content)
	content = compressBlankLines(content)
	return content
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// compressBlankLines limits consecutive blank lines to 1.
func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// convertHighlights transforms ==text== to placeholder markers.
func convertHighlights(content string) string {
	return highlightPattern.ReplaceAllString(content, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
}

// ConvertMarkPlaceholders converts placeholder markers to <mark> tags.
// Called after Goldmark so the converter never needs raw HTML.
func ConvertMarkPlaceholders(content string) string {
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, "<mark>"),
		MarkEndPlaceholder, "</mark>",
	)
}

// ExtractTitle returns the plain text of the first heading, or of the first
// non-blank line when there is none. Inline emphasis and link syntax are
// stripped and the result is capped at MaxTitleRunes.
func ExtractTitle(markdown string) string {
	var fallback string
	for _, line := range strings.Split(markdown, "\n") {
		if m := atxHeading.FindStringSubmatch(line); m != nil {
			return plainTitle(m[1])
		}
		if fallback == "" && strings.TrimSpace(line) != "" {
			fallback = line
		}
	}
	return plainTitle(fallback)
}

func plainTitle(s string) string {
	s = inlineMarkup.ReplaceAllString(s, "$1")
	s = strings.NewReplacer(MarkStartPlaceholder, "", MarkEndPlaceholder, "").Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > MaxTitleRunes {
		s = string(r[:MaxTitleRunes])
	}
	return s
}
