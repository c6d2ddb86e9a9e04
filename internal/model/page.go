package model

// PageContent is the fetched representation of one page. URL is the final
// URL after redirects; Text is the whitespace-normalized visible text.
type PageContent struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
	Text string `json:"text"`
}
