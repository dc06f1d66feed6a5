package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() Document {
	return Document{
		Title:    "Pipeline Report",
		Subtitle: "2024-01-01 to 2024-01-31",
		Tables: []Table{
			{Title: "Leads by status", Headers: []string{"Key", "Count"}, Rows: [][]string{{"new", "3"}, {"lost", "1"}}},
			{Title: "Admissions by visa status", Headers: []string{"Key", "Count"}, Rows: [][]string{{"approved", "2"}}},
		},
	}
}

func TestCSVExporterRendersEveryTable(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDocument())
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "Pipeline Report,2024-01-01 to 2024-01-31\n")
	assert.Contains(t, text, "Leads by status\nKey,Count\nnew,3\nlost,1\n")
	assert.Contains(t, text, "Admissions by visa status\nKey,Count\napproved,2\n")
}

func TestCSVExporterRejectsHeaderlessTable(t *testing.T) {
	_, err := NewCSVExporter().Render(Document{Tables: []Table{{Title: "empty"}}})
	assert.Error(t, err)
}

func TestPDFExporterProducesPDF(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDocument())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, "application/pdf", NewPDFExporter().ContentType())
}
