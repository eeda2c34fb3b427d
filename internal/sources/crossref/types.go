// Package crossref provides a client for the CrossRef REST API.
//
// CrossRef is the DOI registration agency for scholarly publishing and
// exposes metadata for over 150 million works. This package implements the
// SourceClient interface for searching and retrieving records from CrossRef.
//
// API Documentation: https://api.crossref.org/swagger-ui/index.html
package crossref

// SearchResponse represents the top-level response from the works endpoint.
type SearchResponse struct {
	Status  string  `json:"status"`
	Message Message `json:"message"`
}

// Message contains the search results and pagination metadata.
type Message struct {
	TotalResults int    `json:"total-results"`
	Items        []Work `json:"items"`
}

// WorkResponse represents the response from the single-work endpoint.
type WorkResponse struct {
	Status  string `json:"status"`
	Message Work   `json:"message"`
}

// Work represents a single work in a CrossRef response. Titles and
// container titles arrive as arrays even when single-valued.
type Work struct {
	DOI                 string        `json:"DOI"`
	Title               []string      `json:"title"`
	Authors             []WorkAuthor  `json:"author"`
	Abstract            string        `json:"abstract"`
	URL                 string        `json:"URL"`
	ContainerTitle      []string      `json:"container-title"`
	Published           *DateParts    `json:"published"`
	PublishedPrint      *DateParts    `json:"published-print"`
	PublishedOnline     *DateParts    `json:"published-online"`
	Issued              *DateParts    `json:"issued"`
	IsReferencedByCount int           `json:"is-referenced-by-count"`
}

// WorkAuthor represents an author entry on a CrossRef work.
type WorkAuthor struct {
	Given       string        `json:"given"`
	Family      string        `json:"family"`
	Affiliation []Affiliation `json:"affiliation"`
}

// Affiliation is an author affiliation entry.
type Affiliation struct {
	Name string `json:"name"`
}

// DateParts holds CrossRef's nested date representation, for example
// [[2023, 1, 15]] for a full date or [[2023]] for a bare year.
type DateParts struct {
	DateParts [][]int `json:"date-parts"`
}
