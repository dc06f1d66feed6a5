// Package export renders grouped tables into downloadable documents.
package export

// Table is one titled block of tabular data.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Document is an ordered list of tables sharing a heading.
type Document struct {
	Title    string
	Subtitle string
	Tables   []Table
}

// Renderer produces file bytes for a document.
type Renderer interface {
	Render(doc Document) ([]byte, error)
	ContentType() string
	Extension() string
}
