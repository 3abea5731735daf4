package models

// ProviderImage is a photo returned by the external image provider.
type ProviderImage struct {
	ID             string        `json:"id"`
	AltDescription string        `json:"alt_description"`
	Description    string        `json:"description"`
	URLs           ImageURLs     `json:"urls"`
	User           ProviderUser  `json:"user"`
	Links          ProviderLinks `json:"links"`
}

type ImageURLs struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
	Thumb   string `json:"thumb"`
}

type ProviderUser struct {
	Name     string        `json:"name"`
	Username string        `json:"username"`
	Links    ProviderLinks `json:"links"`
}

type ProviderLinks struct {
	HTML string `json:"html"`
}

// SearchResult is one page of provider search results.
type SearchResult struct {
	Results    []ProviderImage `json:"results"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

// EmptySearchResult is what a failed search degrades to.
func EmptySearchResult() SearchResult {
	return SearchResult{Results: []ProviderImage{}}
}
