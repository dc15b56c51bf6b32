package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/patchmemory/kindmesh/internal/flagx"
	"github.com/patchmemory/kindmesh/internal/timex"
)

// JsonConfig mirrors Config for JSON unmarshalling. Interval fields use
// timex.Duration so the file can say "30m" instead of nanoseconds. After
// unmarshalling, only fields present in the file are copied onto the
// runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP             *string         `json:"endpoint_addr_http"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	SecretKey                    *string         `json:"secret_key"`
	SessionTokenValidityDuration *timex.Duration `json:"session_token_validity_duration"`
	BcryptCost                   *int            `json:"bcrypt_cost"`
	MinPasswordLength            *int            `json:"min_password_length"`
	RequirePasswordComplexity    *bool           `json:"require_password_complexity"`
	SeedHandle                   *string         `json:"seed_handle"`
	DemotionQuorum               *int            `json:"demotion_quorum"`
	MinimumAdmins                *int            `json:"minimum_admins"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags. If no flag is set, nothing is loaded. An unreadable
// or invalid file panics: a deployment that asks for a config file and
// does not get one should not start.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != nil {
		config.EndpointAddrHTTP = *c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.SecretKey != nil {
		config.SecretKey = *c.SecretKey
	}
	if c.SessionTokenValidityDuration != nil {
		config.SessionTokenValidityDuration = time.Duration(c.SessionTokenValidityDuration.Duration)
	}
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
	if c.MinPasswordLength != nil {
		config.MinPasswordLength = *c.MinPasswordLength
	}
	if c.RequirePasswordComplexity != nil {
		config.RequirePasswordComplexity = *c.RequirePasswordComplexity
	}
	if c.SeedHandle != nil {
		config.SeedHandle = *c.SeedHandle
	}
	if c.DemotionQuorum != nil {
		config.DemotionQuorum = *c.DemotionQuorum
	}
	if c.MinimumAdmins != nil {
		config.MinimumAdmins = *c.MinimumAdmins
	}
}
