package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Show recent notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, unread, err := client.Notifications(cmd.Context())
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No notifications")
			return nil
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("Notifications (%d unread)", unread)))
		for _, n := range list {
			marker := " "
			if !n.IsRead {
				marker = "*"
			}
			style := titleStyle
			if n.Type == "error" {
				style = errorStyle
			}
			fmt.Printf("%s %s %s\n  %s\n", marker, style.Render(n.Title), dateStyle.Render(n.Time.Format("2006-01-02 15:04")), n.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notificationsCmd)
}
