package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kapu/cinerec-go/internal/util"
)

var (
	ordinalPrefixPattern = regexp.MustCompile(`^\d+\.\s*`)
	yearParenPattern     = regexp.MustCompile(`\((\d{4})\)`)
	titleCutPattern      = regexp.MustCompile(`\s*[-\[(]`)
	nonWordPattern       = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// ExtractTitleYear pulls a lookup-ready title and release year out of one
// entry line. It is total: any input yields a usable title. A year of 0
// means no parenthesized 4-digit year was present. When cleaning strips
// the title to nothing, the collapsed original line is returned instead.
func ExtractTitleYear(line string) (string, int) {
	s := strings.TrimSpace(ordinalPrefixPattern.ReplaceAllString(strings.TrimSpace(line), ""))

	year := 0
	if m := yearParenPattern.FindStringSubmatch(s); m != nil {
		year, _ = strconv.Atoi(m[1])
	}

	title := s
	if loc := titleCutPattern.FindStringIndex(s); loc != nil {
		title = s[:loc[0]]
	}

	title = yearParenPattern.ReplaceAllString(title, "")
	title = nonWordPattern.ReplaceAllString(title, " ")
	title = util.CollapseWhitespace(title)

	if title == "" {
		return util.CollapseWhitespace(line), year
	}

	return title, year
}

// YearString renders an extracted year for query parameters, empty when
// absent.
func YearString(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}
