package export

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/mzarzor/imagestudio/internal/server/models"
)

// YAMLExporter exports history items as YAML.
type YAMLExporter struct{}

func (e *YAMLExporter) Export(items []models.HistoryItem, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()
	return enc.Encode(items)
}

// Extension returns the file extension for this format.
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
