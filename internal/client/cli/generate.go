package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var generateModel string

var generateCmd = &cobra.Command{
	Use:   "generate <prompt...>",
	Short: "Generate an image from a text prompt",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := strings.Join(args, " ")

		item, err := client.Generate(cmd.Context(), prompt, generateModel)
		if err != nil {
			return err
		}

		fmt.Println(successStyle.Render("Image ready"))
		fmt.Println(titleStyle.Render(item.Prompt))
		fmt.Println(idStyle.Render(item.ID) + " " + dateStyle.Render(item.Timestamp.Format("2006-01-02 15:04")))
		fmt.Println(item.ImageURL)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateModel, "model", "m", "", "Generation model (default from site config)")
	rootCmd.AddCommand(generateCmd)
}
