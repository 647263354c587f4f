package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// HeadingDetector reports whether a line of text is a section heading and, if
// so, returns the heading text to attach to subsequent chunks.
type HeadingDetector func(line string) (string, bool)

// headingPattern matches numbered legal-document headings such as
// "Section 3.1: Deductions", "§ 42. Filing dates" or "2.4 Taxable Income".
var headingPattern = regexp.MustCompile(`(?mi)^(?:Chapter|Section|Part|Article|§)\s*[\d\.]+[:\.\s].*$|^[\d\.]+\s+[A-Z][^\.]{10,80}$`)

const maxHeadingLen = 100

// DetectHeading is the default HeadingDetector. It scans the text for the
// first line matching a legal heading pattern and truncates long headings.
func DetectHeading(text string) (string, bool) {
	match := headingPattern.FindString(text)
	if match == "" {
		return "", false
	}
	heading := strings.TrimSpace(match)
	if utf8.RuneCountInString(heading) > maxHeadingLen {
		runes := []rune(heading)
		heading = string(runes[:maxHeadingLen]) + "..."
	}
	return heading, true
}
