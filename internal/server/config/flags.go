package config

import (
	"flag"
	"os"
	"time"

	"github.com/patchmemory/kindmesh/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      session token validity, minutes
//	-w int      bcrypt work factor
//	-l int      minimum password length
//	-x          require password complexity classes
//	-n string   seed account handle
//	-q int      demotion quorum
//	-m int      minimum admins to preserve on demotion
//
// The function first filters os.Args to only the flags it recognizes
// using flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-w", "-l", "-x", "-n", "-q", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionTokenValidityDuration := fs.Int("t", int(config.SessionTokenValidityDuration.Minutes()), "session_token_validity_duration (in minutes)")

	fs.IntVar(&config.BcryptCost, "w", config.BcryptCost, "bcrypt work factor")
	fs.IntVar(&config.MinPasswordLength, "l", config.MinPasswordLength, "minimum password length")
	fs.BoolVar(&config.RequirePasswordComplexity, "x", config.RequirePasswordComplexity, "require password complexity classes")
	fs.StringVar(&config.SeedHandle, "n", config.SeedHandle, "seed account handle")
	fs.IntVar(&config.DemotionQuorum, "q", config.DemotionQuorum, "demotion quorum")
	fs.IntVar(&config.MinimumAdmins, "m", config.MinimumAdmins, "minimum admins preserved on demotion")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTokenValidityDuration = time.Duration(*sessionTokenValidityDuration) * time.Minute
}
