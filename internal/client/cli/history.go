package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mzarzor/imagestudio/internal/export"
)

var (
	exportFormat string
	exportOutput string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse and export the generation history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List history items, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := client.History(cmd.Context())
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("History is empty")
			return nil
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("Generation History (%d items)", len(items))))

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, item := range items {
			prompt := item.Prompt
			if len(prompt) > 48 {
				prompt = prompt[:45] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				idStyle.Render(item.ID),
				titleStyle.Render(prompt),
				item.Model,
				dateStyle.Render(item.Timestamp.Format("2006-01-02 15:04")),
			)
		}
		return w.Flush()
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one history item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.DeleteHistoryItem(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Deleted " + args[0]))
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the history to a file or stdout",
	Long:  `Export the generation history in json, yaml, or md format.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		items, err := client.History(cmd.Context())
		if err != nil {
			return err
		}

		out := os.Stdout
		if exportOutput != "" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		if err := exporter.Export(items, out); err != nil {
			return err
		}

		if exportOutput != "" {
			fmt.Println(successStyle.Render(fmt.Sprintf("Exported %d item(s) to %s", len(items), exportOutput)))
		}
		return nil
	},
}

func init() {
	historyExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format (json, yaml, md)")
	historyExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")

	historyCmd.AddCommand(historyListCmd, historyDeleteCmd, historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
