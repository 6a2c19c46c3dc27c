package domain

// Reference is one discussion link for a title, collected from a social
// platform.
type Reference struct {
	Platform string `json:"platform"`
	Source   string `json:"source"`
	URL      string `json:"url"`
}

// EnrichedEntry pairs a recommendation entry with its lookup results.
// Metadata is never nil; References may be empty.
type EnrichedEntry struct {
	Entry      Entry          `json:"entry"`
	Metadata   *TitleMetadata `json:"metadata"`
	References []Reference    `json:"references"`
}
