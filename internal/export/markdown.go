package export

import (
	"fmt"
	"io"
	"time"

	"github.com/mzarzor/imagestudio/internal/server/models"
)

// MarkdownExporter exports history items as a Markdown document.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(items []models.HistoryItem, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Generation History\n\n")
	_, _ = fmt.Fprintf(w, "**Items:** %d\n\n", len(items))

	for i, item := range items {
		_, _ = fmt.Fprintf(w, "## %s\n\n", item.Prompt)
		_, _ = fmt.Fprintf(w, "![%s](%s)\n\n", item.Prompt, item.ImageURL)
		_, _ = fmt.Fprintf(w, "**Model:** %s  \n", item.Model)
		_, _ = fmt.Fprintf(w, "**Type:** %s  \n", item.Type)
		_, _ = fmt.Fprintf(w, "**Created:** %s\n\n", item.Timestamp.Format(time.RFC3339))

		if i < len(items)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// Extension returns the file extension for this format.
func (e *MarkdownExporter) Extension() string {
	return "md"
}
