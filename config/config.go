package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/onflow/flow-attestation/consensus/authenticator"
	"github.com/onflow/flow-attestation/engine/reconciler"
	"github.com/onflow/flow-attestation/engine/rest"
	"github.com/onflow/flow-attestation/model/attestation"
	"github.com/onflow/flow-attestation/module/issuer"
)

const EnvPrefix = "ATTEST"

// Config is the configuration of an attestation node. Every field can be set
// by flag, by environment variable (ATTEST_ followed by the upper-cased key
// with dashes replaced by underscores) or by a YAML config file.
type Config struct {
	LogLevel   string           `validate:"oneof=trace debug info warn error" mapstructure:"loglevel"`
	Consensus  ConsensusConfig  `mapstructure:",squash"`
	RateLimit  RateLimitConfig  `mapstructure:",squash"`
	Storage    StorageConfig    `mapstructure:",squash"`
	HTTP       HTTPConfig       `mapstructure:",squash"`
	Access     AccessConfig     `mapstructure:",squash"`
	Lifecycle  LifecycleConfig  `mapstructure:",squash"`
	Issuer     IssuerConfig     `mapstructure:",squash"`
	Reconciler ReconcilerConfig `mapstructure:",squash"`
}

type ConsensusConfig struct {
	ConfidenceThreshold uint8  `validate:"gte=50,lte=100" mapstructure:"confidence-threshold"`
	RequiredQuorum      uint32 `validate:"gte=1" mapstructure:"required-quorum"`
}

type RateLimitConfig struct {
	// MaxTasksPerPeriod of zero denies task creation entirely.
	MaxTasksPerPeriod uint64        `mapstructure:"max-tasks-per-period"`
	Period            time.Duration `validate:"gt=0" mapstructure:"rate-limit-period"`
	RetentionPeriods  uint64        `validate:"gte=1" mapstructure:"rate-limit-retention-periods"`
}

type StorageConfig struct {
	DataDir string `validate:"required" mapstructure:"datadir"`
}

type HTTPConfig struct {
	ListenAddress string  `validate:"required,hostname_port" mapstructure:"http-addr"`
	RateLimit     float64 `validate:"gte=0" mapstructure:"http-rate-limit"`
	Burst         int     `validate:"gte=1" mapstructure:"http-burst"`
}

type AccessConfig struct {
	Creators []string `validate:"dive,eth_addr" mapstructure:"task-creators"`
	Voters   []string `validate:"dive,eth_addr" mapstructure:"voters"`
	Admins   []string `validate:"dive,eth_addr" mapstructure:"admins"`
}

type LifecycleConfig struct {
	// Identity is the address the lifecycle opens tasks with.
	Identity string `validate:"required,eth_addr" mapstructure:"lifecycle-identity"`
}

type IssuerConfig struct {
	// Endpoint of the external minting service. Artifacts are numbered
	// locally if empty.
	Endpoint     string        `validate:"omitempty,url" mapstructure:"issuer-endpoint"`
	Timeout      time.Duration `validate:"gt=0" mapstructure:"issuer-timeout"`
	MaxFailures  uint32        `validate:"gte=1" mapstructure:"issuer-max-failures"`
	ResetTimeout time.Duration `validate:"gt=0" mapstructure:"issuer-reset-timeout"`
}

type ReconcilerConfig struct {
	Interval  time.Duration `validate:"gt=0" mapstructure:"reconciler-interval"`
	Workers   int           `validate:"gte=1,lte=64" mapstructure:"reconciler-workers"`
	RetryBase time.Duration `validate:"gt=0" mapstructure:"reconciler-retry-base"`
	RetryMax  uint64        `mapstructure:"reconciler-retry-max"`
}

// DefaultConfig returns the default configuration. It does not validate: the
// data directory and lifecycle identity have no sensible default.
func DefaultConfig() *Config {
	consensus := authenticator.DefaultConfig()
	reconcile := reconciler.DefaultConfig()
	return &Config{
		LogLevel: "info",
		Consensus: ConsensusConfig{
			ConfidenceThreshold: consensus.ConfidenceThreshold,
			RequiredQuorum:      consensus.RequiredQuorum,
		},
		RateLimit: RateLimitConfig{
			MaxTasksPerPeriod: 10,
			Period:            time.Hour,
			RetentionPeriods:  reconcile.RetentionPeriods,
		},
		Storage: StorageConfig{
			DataDir: "/data/attestation",
		},
		HTTP: HTTPConfig{
			ListenAddress: "localhost:8070",
			RateLimit:     300,
			Burst:         3,
		},
		Issuer: IssuerConfig{
			Timeout:      5 * time.Second,
			MaxFailures:  5,
			ResetTimeout: 30 * time.Second,
		},
		Reconciler: ReconcilerConfig{
			Interval:  reconcile.Interval,
			Workers:   reconcile.Workers,
			RetryBase: reconcile.RetryBase,
			RetryMax:  reconcile.RetryMax,
		},
	}
}

// InitializePFlagSet registers a flag for every configuration key, with the
// values of c as defaults.
func InitializePFlagSet(flags *pflag.FlagSet, c *Config) {
	flags.String("loglevel", c.LogLevel, "level for logging output")

	flags.Uint8("confidence-threshold", c.Consensus.ConfidenceThreshold, "minimum declared score of an accepted vote, between 50 and 100")
	flags.Uint32("required-quorum", c.Consensus.RequiredQuorum, "number of accepted votes that finalize a task")

	flags.Uint64("max-tasks-per-period", c.RateLimit.MaxTasksPerPeriod, "maximum number of tasks a creator may open per period")
	flags.Duration("rate-limit-period", c.RateLimit.Period, "length of a rate limit period")
	flags.Uint64("rate-limit-retention-periods", c.RateLimit.RetentionPeriods, "number of past periods whose rate counters are kept")

	flags.String("datadir", c.Storage.DataDir, "directory of the badger database")
	flags.String("http-addr", c.HTTP.ListenAddress, "listen address of the REST API")
	flags.Float64("http-rate-limit", c.HTTP.RateLimit, "requests per second accepted by each REST route, 0 disables the limit")
	flags.Int("http-burst", c.HTTP.Burst, "number of REST requests per route that may exceed the rate limit at once")

	flags.StringSlice("task-creators", c.Access.Creators, "addresses allowed to open tasks")
	flags.StringSlice("voters", c.Access.Voters, "addresses allowed to vote")
	flags.StringSlice("admins", c.Access.Admins, "addresses allowed to override consensus")
	flags.String("lifecycle-identity", c.Lifecycle.Identity, "address the lifecycle opens tasks with")

	flags.String("issuer-endpoint", c.Issuer.Endpoint, "URL of the artifact minting service, artifacts are numbered locally if empty")
	flags.Duration("issuer-timeout", c.Issuer.Timeout, "timeout of a single issuance request")
	flags.Uint32("issuer-max-failures", c.Issuer.MaxFailures, "consecutive issuance failures that open the circuit breaker")
	flags.Duration("issuer-reset-timeout", c.Issuer.ResetTimeout, "time the circuit breaker stays open")

	flags.Duration("reconciler-interval", c.Reconciler.Interval, "interval between reconciliation passes")
	flags.Int("reconciler-workers", c.Reconciler.Workers, "number of entities repaired concurrently")
	flags.Duration("reconciler-retry-base", c.Reconciler.RetryBase, "initial backoff between retries of one entity")
	flags.Uint64("reconciler-retry-max", c.Reconciler.RetryMax, "retries of one entity per pass")
}

// Load builds the configuration from defaults, the optional config file, the
// environment and the flags, in increasing order of precedence, and validates it.
// Expected errors:
//   - attestation.ConfigurationError if the result is invalid
func Load(flags *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	err := v.BindPFlags(flags)
	if err != nil {
		return nil, fmt.Errorf("could not bind flags: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		err = v.ReadInConfig()
		if err != nil {
			return nil, attestation.NewConfigurationErrorf("could not read config file %s: %w", configFile, err)
		}
	}

	c := &Config{}
	err = v.Unmarshal(c, func(decoderConfig *mapstructure.DecoderConfig) {
		decoderConfig.ErrorUnused = true
		decoderConfig.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err != nil {
		return nil, attestation.NewConfigurationErrorf("could not decode config: %w", err)
	}

	err = c.Validate()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every field and reports all violations at once.
// Expected errors:
//   - attestation.ConfigurationError listing every violation
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("could not validate config: %w", err)
	}

	var result *multierror.Error
	for _, fieldErr := range validationErrs {
		result = multierror.Append(result, fmt.Errorf("invalid value %v for %s: failed %s=%s",
			fieldErr.Value(), fieldErr.Namespace(), fieldErr.Tag(), fieldErr.Param()))
	}
	return attestation.NewConfigurationErrorf("invalid configuration: %w", result.ErrorOrNil())
}

// AuthenticatorConfig returns the consensus parameters.
func (c *Config) AuthenticatorConfig() authenticator.Config {
	return authenticator.Config{
		ConfidenceThreshold: c.Consensus.ConfidenceThreshold,
		RequiredQuorum:      c.Consensus.RequiredQuorum,
	}
}

// ReconcilerConfig returns the housekeeping parameters.
func (c *Config) ReconcilerConfig() reconciler.Config {
	return reconciler.Config{
		Interval:         c.Reconciler.Interval,
		Workers:          c.Reconciler.Workers,
		RetryBase:        c.Reconciler.RetryBase,
		RetryMax:         c.Reconciler.RetryMax,
		RetentionPeriods: c.RateLimit.RetentionPeriods,
	}
}

// RESTConfig returns the parameters of the REST API server.
func (c *Config) RESTConfig() rest.Config {
	return rest.Config{
		ListenAddress: c.HTTP.ListenAddress,
		RateLimit:     c.HTTP.RateLimit,
		Burst:         c.HTTP.Burst,
	}
}

// HTTPIssuerConfig returns the parameters of the HTTP artifact issuer.
func (c *Config) HTTPIssuerConfig() issuer.HTTPConfig {
	return issuer.HTTPConfig{
		Endpoint:     c.Issuer.Endpoint,
		Timeout:      c.Issuer.Timeout,
		MaxFailures:  c.Issuer.MaxFailures,
		ResetTimeout: c.Issuer.ResetTimeout,
	}
}

// Addresses converts validated hex addresses.
func Addresses(hexAddresses []string) []common.Address {
	addresses := make([]common.Address, 0, len(hexAddresses))
	for _, hexAddress := range hexAddresses {
		addresses = append(addresses, common.HexToAddress(hexAddress))
	}
	return addresses
}
