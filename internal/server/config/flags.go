package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key (>= 64 bytes)
//	-i string   token issuer
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-u string   profile service base URL
//	-w int      profile provisioning timeout, seconds
//	-k string   internal token expected from companion services
//	-m string   Redis address for the identity cache
//	-b string   S3 bucket for reconciliation reports
//
// Flags not listed above are filtered out with flagx.FilterArgs so other
// components may define their own.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-i", "-t", "-r", "-u", "-w", "-k", "-m", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.Issuer, "i", config.Issuer, "token issuer")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.StringVar(&config.ProfileServiceURL, "u", config.ProfileServiceURL, "profile service base URL")
	provisionTimeout := fs.Int("w", int(config.ProvisionTimeout.Seconds()), "profile provisioning timeout (in seconds)")
	fs.StringVar(&config.InternalToken, "k", config.InternalToken, "internal token")
	fs.StringVar(&config.RedisAddr, "m", config.RedisAddr, "redis address")
	fs.StringVar(&config.ReconciliationBucket, "b", config.ReconciliationBucket, "S3 reconciliation bucket")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
	config.ProvisionTimeout = time.Duration(*provisionTimeout) * time.Second
}
