package stats

import (
	"bytes"
	"encoding/csv"
	"strconv"

	log "github.com/sirupsen/logrus"
)

type ExportRenderer interface {
	RenderRows(rows []ExportRow) (string, error)
}

type CsvExportRendererImpl struct {
}

func NewCsvExportRenderer() *CsvExportRendererImpl {
	return &CsvExportRendererImpl{}
}

// RenderRows writes a header line followed by one line per entry. Hours are
// formatted with two decimals.
func (r *CsvExportRendererImpl) RenderRows(rows []ExportRow) (string, error) {
	data := make([][]string, 0, len(rows)+1)
	data = append(data, []string{"date", "client", "description", "hours"})
	for _, row := range rows {
		data = append(data, []string{
			row.Date,
			row.ClientName,
			row.Description,
			strconv.FormatFloat(row.Hours, 'f', 2, 64),
		})
	}

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, record := range data {
		if err := writer.Write(record); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}
