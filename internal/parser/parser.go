// Package parser turns raw generated text into a bounded, renumbered list
// of recommendation entries. It never returns an error to its caller: a
// parse that yields nothing produces an explicit user-facing message
// instead.
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kapu/cinerec-go/internal/domain"
)

// Ordinal line pattern: leading digits, dot, whitespace, content (compiled once)
var ordinalLinePattern = regexp.MustCompile(`^\s*(\d+)\.\s*(.+)$`)

// Loose pattern: title text, parenthesized 4-digit year, bracketed language
var looseLinePattern = regexp.MustCompile(`(.+?)\s*\(\d{4}\)\s*\[.+?\]`)

// EmptyResultMessage is shown when no entries could be extracted at all.
const EmptyResultMessage = "Sorry, I couldn't generate any recommendations. Please try again."

// UnparseableResultMessage is shown when text was returned but no line
// matched any tier.
const UnparseableResultMessage = "Sorry, I couldn't generate any recommendations in the expected format. Please try again with different titles."

// fallbackThreshold is the strict-tier count below which the permissive
// tier runs.
const fallbackThreshold = 8

// Result is the outcome of one parse pass. Entries and Message are
// mutually exclusive: a non-empty Message means zero entries were
// extracted. Partial results (1-15 entries) carry no message.
type Result struct {
	Entries []domain.Entry
	Message string
}

// Failed reports whether the parse produced no usable entries.
func (r Result) Failed() bool {
	return len(r.Entries) == 0
}

// matcher is one matching strategy: it scans all lines and appends newly
// accepted content strings to acc, up to the entry cap. Matchers are pure;
// tier ordering and the early-exit predicate live in Parse.
type matcher func(lines []string, acc []string) []string

var tiers = []matcher{matchStrict, matchLoose}

// Parse extracts up to domain.MaxEntries entries from raw generated text.
// Tiers run in order; a later tier only runs while fewer than
// fallbackThreshold entries have been accepted. Stateless and
// deterministic: the same input always yields the same result.
func Parse(raw string) Result {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Result{Message: EmptyResultMessage}
	}

	lines := splitNonBlank(trimmed)

	var accepted []string
	for i, tier := range tiers {
		if i > 0 && len(accepted) >= fallbackThreshold {
			break
		}
		accepted = tier(lines, accepted)
		if len(accepted) >= domain.MaxEntries {
			break
		}
	}

	if len(accepted) == 0 {
		return Result{Message: UnparseableResultMessage}
	}

	entries := make([]domain.Entry, len(accepted))
	for i, content := range accepted {
		entries[i] = domain.Entry{
			Rank: i + 1,
			Line: fmt.Sprintf("%d. %s", i+1, content),
		}
	}

	return Result{Entries: entries}
}

// matchStrict accepts lines with a leading ordinal whose remainder carries
// both a parenthesis pair and a bracket pair. The pair check is a weak
// proxy for "has year and language" and is kept as-is: a blurb containing
// brackets passes, unconventional punctuation fails.
func matchStrict(lines []string, acc []string) []string {
	for _, line := range lines {
		if len(acc) >= domain.MaxEntries {
			break
		}

		m := ordinalLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		content := strings.TrimSpace(m[2])
		if !hasPairMarkers(content) {
			continue
		}

		acc = append(acc, content)
	}

	return acc
}

// matchLoose accepts any line shaped like "title (year) [language]", with
// or without a leading ordinal, skipping content already accepted.
func matchLoose(lines []string, acc []string) []string {
	for _, line := range lines {
		if len(acc) >= domain.MaxEntries {
			break
		}

		if !looseLinePattern.MatchString(line) {
			continue
		}

		content := line
		if m := ordinalLinePattern.FindStringSubmatch(line); m != nil {
			content = strings.TrimSpace(m[2])
		}

		if containsExact(acc, content) {
			continue
		}

		acc = append(acc, content)
	}

	return acc
}

func hasPairMarkers(content string) bool {
	return strings.Contains(content, "(") &&
		strings.Contains(content, ")") &&
		strings.Contains(content, "[") &&
		strings.Contains(content, "]")
}

func containsExact(acc []string, content string) bool {
	for _, a := range acc {
		if a == content {
			return true
		}
	}
	return false
}

func splitNonBlank(text string) []string {
	rawLines := strings.Split(text, "\n")
	lines := make([]string, 0, len(rawLines))
	for _, l := range rawLines {
		if trimmed := strings.TrimSpace(l); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
