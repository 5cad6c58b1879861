package raster

import (
	"strings"
	"unicode/utf8"
)

// Canvas geometry shared by every template.
const (
	Width         = 1242
	Height        = 1660
	Padding       = 80
	TextAreaWidth = Width - 2*Padding
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// MaxItems caps the rows drawn by the list template.
const MaxItems = 6

// itemSeparators are tried in order; the first one present splits the text.
var itemSeparators = []string{"|", "\n", "，", ","}

// measureFunc returns the advance width of s in pixels.
type measureFunc func(s string) float64

// wrapText breaks text into lines no wider than width, one rune at a time.
// Explicit newlines force a break. Leading and trailing blanks are dropped
// from each line. A single rune wider than width still gets its own line.
func wrapText(text string, width float64, measure measureFunc) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		var cur strings.Builder
		for _, r := range para {
			if cur.Len() == 0 && r == ' ' {
				continue
			}
			candidate := cur.String() + string(r)
			if cur.Len() > 0 && measure(candidate) > width {
				lines = append(lines, strings.TrimRight(cur.String(), " "))
				cur.Reset()
				if r == ' ' {
					continue
				}
				cur.WriteRune(r)
				continue
			}
			cur.WriteRune(r)
		}
		if s := strings.TrimRight(cur.String(), " "); s != "" {
			lines = append(lines, s)
		}
	}
	return lines
}

// truncateLines keeps at most maxLines lines. When lines are dropped the last
// kept line is shortened until it plus Ellipsis fits width.
func truncateLines(lines []string, maxLines int, width float64, measure measureFunc) []string {
	if maxLines <= 0 || len(lines) <= maxLines {
		return lines
	}

	kept := make([]string, maxLines)
	copy(kept, lines[:maxLines])

	last := kept[maxLines-1]
	for last != "" && measure(last+Ellipsis) > width {
		_, size := utf8.DecodeLastRuneInString(last)
		last = last[:len(last)-size]
	}
	kept[maxLines-1] = strings.TrimRight(last, " ") + Ellipsis
	return kept
}

// layoutText wraps then truncates text to the given budget.
func layoutText(text string, width float64, maxLines int, measure measureFunc) []string {
	return truncateLines(wrapText(text, width, measure), maxLines, width, measure)
}

// ExtractItems splits text into list rows on the first separator present
// among "|", newline, "，" and ",". Text without a separator is one row.
// Blank rows are dropped.
func ExtractItems(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	for _, sep := range itemSeparators {
		if !strings.Contains(text, sep) {
			continue
		}
		var items []string
		for _, part := range strings.Split(text, sep) {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		return items
	}
	return []string{text}
}
