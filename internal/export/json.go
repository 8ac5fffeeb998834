package export

import (
	"encoding/json"
	"io"

	"github.com/mzarzor/imagestudio/internal/server/models"
)

// JSONExporter exports history items as pretty-printed JSON.
type JSONExporter struct{}

func (e *JSONExporter) Export(items []models.HistoryItem, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// Extension returns the file extension for this format.
func (e *JSONExporter) Extension() string {
	return "json"
}
