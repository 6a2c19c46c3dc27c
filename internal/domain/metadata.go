package domain

// TitleMetadata is the enrichment record for one recommended title.
// Found is false when the lookup degraded to placeholder values.
type TitleMetadata struct {
	Title   string `json:"title"`
	Year    string `json:"year"`
	Rating  string `json:"rating"`
	Poster  string `json:"poster"`
	Genre   string `json:"genre"`
	Runtime string `json:"runtime"`
	Type    string `json:"type"`
	Found   bool   `json:"found"`
}

// DefaultTitleMetadata builds the degraded record used when the metadata
// lookup fails for any reason. It keeps the original title and year so the
// entry still renders.
func DefaultTitleMetadata(title, year string, contentType ContentType) *TitleMetadata {
	displayType := "Movie"
	if contentType == ContentTypeSeries {
		displayType = "TV Series"
	}

	return &TitleMetadata{
		Title:   title,
		Year:    year,
		Rating:  "N/A",
		Poster:  "",
		Genre:   "N/A",
		Runtime: "N/A",
		Type:    displayType,
		Found:   false,
	}
}
