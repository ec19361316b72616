// Package config loads harness settings from defaults, an optional
// mongocheck.yaml file, and MONGOCHECK_* environment variables, in
// ascending order of precedence. Command-line flags override all three
// and are applied by the CLI layer after loading.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings holds every tunable of a verification run.
type Settings struct {
	// Image is the reference of the MongoDB image under test.
	Image string `mapstructure:"image"`

	// DocsPath is the documentation file asserted by the docs check.
	DocsPath string `mapstructure:"docs_path"`

	// HostPortBase is the first host port used when publishing container
	// ports. Each container launched within a run gets the next port up.
	HostPortBase int `mapstructure:"host_port_base"`

	// KeepContainers disables teardown after the run, leaving containers
	// in place for manual inspection.
	KeepContainers bool `mapstructure:"keep_containers"`

	Readiness ReadinessConfig `mapstructure:"readiness"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
}

// ReadinessConfig bounds the fixed-interval polling loop that waits for a
// freshly started container to accept connections. Polling is synchronous
// and never retries beyond Attempts.
type ReadinessConfig struct {
	Attempts int           `mapstructure:"attempts"`
	Interval time.Duration `mapstructure:"interval"`
}

// MongoConfig tunes the database-level probes.
type MongoConfig struct {
	// ConnectTimeout bounds establishing a client connection and each ping.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`

	// ReplicaSetName is the set name used by the replica-set check.
	ReplicaSetName string `mapstructure:"replica_set_name"`
}

// Load reads settings from the given config file path (optional — an empty
// path means "no file, defaults and environment only").
func Load(path string) (*Settings, error) {
	v := viper.New()

	// Defaults cover a full run with no config file at all.
	v.SetDefault("image", "mongocheck/mongodb:latest")
	v.SetDefault("docs_path", "README.md")
	v.SetDefault("host_port_base", 28017)
	v.SetDefault("keep_containers", false)
	v.SetDefault("readiness.attempts", 30)
	v.SetDefault("readiness.interval", 2*time.Second)
	v.SetDefault("mongo.connect_timeout", 5*time.Second)
	v.SetDefault("mongo.replica_set_name", "rs0")

	// Environment variables override file values. Nested keys use
	// underscores: readiness.attempts → MONGOCHECK_READINESS_ATTEMPTS.
	v.SetEnvPrefix("MONGOCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}
