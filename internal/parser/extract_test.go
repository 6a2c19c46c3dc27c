package parser

import "testing"

func TestExtractTitleYear(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		title string
		year  int
	}{
		{
			name:  "full entry line",
			line:  "3. Parasite (2019) [Korean] - A masterful social satire",
			title: "Parasite",
			year:  2019,
		},
		{
			name:  "no ordinal",
			line:  "Spirited Away (2001) [Japanese] - A magical animated journey",
			title: "Spirited Away",
			year:  2001,
		},
		{
			name:  "no year",
			line:  "5. Some Obscure Gem [French] - charming",
			title: "Some Obscure Gem",
			year:  0,
		},
		{
			name:  "dash inside title cuts early",
			line:  "1. Spider-Man (2002) [English] - web slinging",
			title: "Spider",
			year:  2002,
		},
		{
			name:  "punctuation stripped",
			line:  "2. WALL·E (2008) [English] - a lonely robot",
			title: "WALL E",
			year:  2008,
		},
		{
			name:  "unicode letters preserved",
			line:  "8. Amélie (2001) [French] - whimsical Paris",
			title: "Amélie",
			year:  2001,
		},
		{
			name:  "bare title",
			line:  "Oldboy",
			title: "Oldboy",
			year:  0,
		},
		{
			name:  "year only falls back to original line",
			line:  "(2019)",
			title: "(2019)",
			year:  2019,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, year := ExtractTitleYear(tt.line)
			if title != tt.title {
				t.Errorf("title = %q, want %q", title, tt.title)
			}
			if year != tt.year {
				t.Errorf("year = %d, want %d", year, tt.year)
			}
		})
	}
}

func TestYearString(t *testing.T) {
	if got := YearString(2019); got != "2019" {
		t.Errorf("YearString(2019) = %q", got)
	}
	if got := YearString(0); got != "" {
		t.Errorf("YearString(0) = %q", got)
	}
}
