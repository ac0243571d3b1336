// Package config loads process configuration from the environment, falling
// back to a default for every variable that is unset.
package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const envPrefix = "RECERTGRAPH"

// Config is the process-wide configuration surface, loaded from
// RECERTGRAPH_*-prefixed environment variables.
type Config struct {
	// DataDir is the root directory fixtures are scanned from and disk
	// artifacts are committed to.
	DataDir string `envconfig:"DATA_DIR" default:"./data"`

	// AllowlistFile is loaded from the environment but not read by any
	// command: the built-in KNOWN_MISSING_PRIVATE_KEY_CERTS allowlist
	// (rules.KnownMissingPrivateKeyCerts) is always the one used.
	AllowlistFile string `envconfig:"ALLOWLIST_FILE"`

	// RSAPoolSize is the number of background workers filling the
	// pre-generated RSA key cache.
	RSAPoolSize int `envconfig:"RSA_POOL_SIZE" default:"4"`

	// RSAPoolBuffer is the capacity of the pre-generated key channel.
	RSAPoolBuffer int `envconfig:"RSA_POOL_BUFFER" default:"16"`

	// CommitConcurrency bounds the number of in-flight writes during commit.
	CommitConcurrency int `envconfig:"COMMIT_CONCURRENCY" default:"8"`

	// LogLevel is parsed by logrus.ParseLevel ("debug", "info", "warn", ...).
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads Config from the environment, applying defaults for anything
// unset.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process(envPrefix, &c); err != nil {
		return Config{}, errors.Wrap(err, "load configuration")
	}
	return c, nil
}
