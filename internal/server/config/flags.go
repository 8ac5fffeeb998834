package config

import (
	"flag"
	"os"
	"time"

	"github.com/mzarzor/imagestudio/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   slot-store DSN (SQLite path or PostgreSQL DSN)
//	-r string   slot-store driver ("sqlite" or "postgres")
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-w int      lockout window, minutes
//	-g string   image-generation API endpoint
//	-e string   email-relay endpoint
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in minutes and then converted
//     to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-r", "-s", "-t", "-w", "-g", "-e", "-u", "-p", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.StoreDSN, "d", config.StoreDSN, "slot store DSN")
	fs.StringVar(&config.StoreDriver, "r", config.StoreDriver, "slot store driver (sqlite or postgres)")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	lockoutWindow := fs.Int("w", int(config.LockoutWindow.Minutes()), "lockout_window (in minutes)")

	fs.StringVar(&config.GenAPIEndpoint, "g", config.GenAPIEndpoint, "image generation API endpoint")
	fs.StringVar(&config.RelayEndpoint, "e", config.RelayEndpoint, "email relay endpoint")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.LockoutWindow = time.Duration(*lockoutWindow) * time.Minute
}
