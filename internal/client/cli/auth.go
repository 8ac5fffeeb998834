package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mzarzor/imagestudio/internal/common"
)

var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Log in with email and password",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)

		var email string
		var err error
		if len(args) == 1 {
			email = args[0]
		} else {
			email, err = GetSimpleText(reader, "Email", os.Stdout)
			if err != nil {
				return err
			}
		}

		password, err := GetPassword(os.Stdout)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(password)

		identity, err := client.Login(cmd.Context(), email, string(password))
		if err != nil {
			return err
		}

		if err := saveToken(client.Token()); err != nil {
			return fmt.Errorf("save token: %w", err)
		}

		fmt.Println(successStyle.Render("Logged in as " + identity.Email))
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Register a new account",
	Long: `Register a new account. The server sends a verification code to the
given email address; finish with "studio verify <email> <code>".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)

		name, err := GetSimpleText(reader, "Username", os.Stdout)
		if err != nil {
			return err
		}
		email, err := GetSimpleText(reader, "Email", os.Stdout)
		if err != nil {
			return err
		}

		password, err := GetPassword(os.Stdout)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(password)

		fmt.Print("Repeat ")
		confirm, err := GetPassword(os.Stdout)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(confirm)

		if err := client.Signup(cmd.Context(), name, email, string(password), string(confirm)); err != nil {
			return err
		}

		fmt.Println(successStyle.Render("Verification code sent to " + email))
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <email> <code>",
	Short: "Finish registration with the emailed code",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		identity, err := client.VerifyOTP(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		if err := saveToken(client.Token()); err != nil {
			return fmt.Errorf("save token: %w", err)
		}

		fmt.Println(successStyle.Render("Registered and logged in as " + identity.Email))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the cached token",
	RunE: func(cmd *cobra.Command, args []string) error {
		err := client.Logout(cmd.Context())
		dropToken()
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Logged out"))
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		identity, err := client.Session(cmd.Context())
		if err != nil {
			return err
		}
		if identity == nil {
			fmt.Println("Not logged in")
			return nil
		}
		fmt.Println(titleStyle.Render(identity.Name) + " " + idStyle.Render("<"+identity.Email+">"))
		if identity.IsAdmin {
			fmt.Println(headerStyle.Render("admin"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, signupCmd, verifyCmd, logoutCmd, whoamiCmd)
}
