package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderRows(t *testing.T) {
	// given two rows, one holding a comma in its description
	renderer := NewCsvExportRenderer()
	rows := []ExportRow{
		{Date: "2024-05-10", ClientName: "Acme", Description: "design work", Hours: 1.5},
		{Date: "2024-05-11", ClientName: "Globex", Description: "meeting, notes", Hours: 0.25},
	}

	// when rendering
	csv, err := renderer.RenderRows(rows)

	// then the output has a header, quoted fields where needed, and two
	// decimal hours
	require.NoError(t, err)
	expected := "date,client,description,hours\n" +
		"2024-05-10,Acme,design work,1.50\n" +
		"2024-05-11,Globex,\"meeting, notes\",0.25\n"
	assert.Equal(t, expected, csv)
}

func TestRenderRows_EmptyInput(t *testing.T) {
	renderer := NewCsvExportRenderer()

	csv, err := renderer.RenderRows(nil)

	require.NoError(t, err)
	assert.Equal(t, "date,client,description,hours\n", csv)
}
