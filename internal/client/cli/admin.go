package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mzarzor/imagestudio/internal/common"
)

var adminBypassCode string

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative commands",
}

var adminLoginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Log in as administrator",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var email, password string

		if adminBypassCode == "" {
			reader := bufio.NewReader(os.Stdin)

			var err error
			if len(args) == 1 {
				email = args[0]
			} else {
				email, err = GetSimpleText(reader, "Admin email", os.Stdout)
				if err != nil {
					return err
				}
			}

			pw, err := GetPassword(os.Stdout)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)
			password = string(pw)
		}

		identity, err := client.AdminLogin(cmd.Context(), email, password, adminBypassCode)
		if err != nil {
			return err
		}

		if err := saveToken(client.Token()); err != nil {
			return fmt.Errorf("save token: %w", err)
		}

		fmt.Println(successStyle.Render("Logged in as " + identity.Name))
		return nil
	},
}

var adminLockoutCmd = &cobra.Command{
	Use:   "lockout",
	Short: "Show the admin lockout state",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := client.LockoutState(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println(headerStyle.Render("Lockout"))
		fmt.Printf("Attempts: %v\n", state["attempts"])
		fmt.Printf("Blocked:  %v\n", state["blocked"])
		if until, ok := state["block_until"].(string); ok && until != "" {
			fmt.Printf("Until:    %s\n", dateStyle.Render(until))
		}
		return nil
	},
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List registered users and banned emails",
	RunE: func(cmd *cobra.Command, args []string) error {
		reply, err := client.ListUsers(cmd.Context())
		if err != nil {
			return err
		}

		users, _ := reply["users"].([]any)
		fmt.Println(headerStyle.Render(fmt.Sprintf("Users (%d)", len(users))))
		for _, u := range users {
			m, ok := u.(map[string]any)
			if !ok {
				continue
			}
			fmt.Printf("%v %v\n", titleStyle.Render(fmt.Sprint(m["name"])), idStyle.Render(fmt.Sprint(m["email"])))
		}

		if banned, _ := reply["banned"].([]any); len(banned) > 0 {
			fmt.Println(headerStyle.Render("Banned"))
			for _, b := range banned {
				fmt.Println(errorStyle.Render(fmt.Sprint(b)))
			}
		}
		return nil
	},
}

var adminBanCmd = &cobra.Command{
	Use:   "ban <email>",
	Short: "Ban an email address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.Ban(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Banned " + args[0]))
		return nil
	},
}

var adminUnbanCmd = &cobra.Command{
	Use:   "unban <email>",
	Short: "Remove an email address from the banned list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.Unban(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Unbanned " + args[0]))
		return nil
	},
}

var adminResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the studio history, notifications, and preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)
		answer, err := GetSimpleText(reader, "This clears history and preferences. Type yes to continue", os.Stdout)
		if err != nil {
			return err
		}
		if answer != "yes" {
			fmt.Println("Aborted")
			return nil
		}

		if err := client.Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Studio data reset"))
		return nil
	},
}

func init() {
	adminLoginCmd.Flags().StringVar(&adminBypassCode, "code", "", "Developer bypass code")
	adminCmd.AddCommand(adminLoginCmd, adminLockoutCmd, adminUsersCmd, adminBanCmd, adminUnbanCmd, adminResetCmd)
	rootCmd.AddCommand(adminCmd)
}
