package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultDatadir      = ".braid-trustee" // prefixed with the user's home directory
	defaultLogLevel     = "info"
	defaultLogOutput    = "stdout"
	defaultPollInterval = time.Second
)

// Config is this process's configuration, loaded by loadConfig from flags,
// environment variables and their defaults (spec §6: "Trustee identity
// inputs": display name, signing keypair, symmetric sealing key, local
// cache directory, board list).
type Config struct {
	Name         string        `mapstructure:"name"`
	SignerKey    string        `mapstructure:"signerKey"`
	SealingKey   string        `mapstructure:"sealingKey"`
	Position     int           `mapstructure:"position"`
	MaxMessage   uint64        `mapstructure:"maxMessage"`
	BoardURL     string        `mapstructure:"boardURL"`
	Boards       []string      `mapstructure:"boards"`
	PollInterval time.Duration `mapstructure:"pollInterval"`
	Datadir      string        `mapstructure:"datadir"`
	Log          LogConfig     `mapstructure:"log"`
}

// LogConfig mirrors the teacher's own davinci-sequencer LogConfig, nested
// so Viper's dotted "log.level"/"log.output" keys unmarshal correctly.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// loadConfig mirrors the teacher's davinci-sequencer/config.go: a Viper
// instance seeded with defaults, a pflag.FlagSet bound onto it, and an
// environment-variable fallback under a process-specific prefix.
func loadConfig() (*Config, error) {
	v := viper.New()

	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		userHomeDir = "."
	}
	defaultDatadirPath := filepath.Join(userHomeDir, defaultDatadir)

	v.SetDefault("position", 0)
	v.SetDefault("maxMessage", uint64(1)<<20)
	v.SetDefault("pollInterval", defaultPollInterval)
	v.SetDefault("datadir", defaultDatadirPath)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.output", defaultLogOutput)

	flag.String("name", "", "this trustee's display name (required)")
	flag.String("signerKey", "", "hex-encoded ECDSA signing private key (required)")
	flag.String("sealingKey", "", "hex-encoded AES sealing key for Channel private keys (required)")
	flag.Int("position", 0, "trustee position in the Configuration (0..N-1), or -1 for a verifier")
	flag.Uint64("maxMessage", uint64(1)<<20, "maximum plaintext scalar considered during decryption (ballot tally upper bound)")
	flag.String("boardURL", "", "base URL of the bulletin board transport (required)")
	flag.StringSlice("boards", nil, "comma-separated list of board names to participate in")
	flag.Duration("pollInterval", defaultPollInterval, "SessionSet tick interval")
	flag.StringP("datadir", "d", defaultDatadirPath, "local cache directory for the pebbledb-backed Message Store")
	flag.StringP("log.level", "l", defaultLogLevel, "log level (debug, info, warn, error, fatal)")
	flag.StringP("log.output", "o", defaultLogOutput, "log output (stdout, stderr or filepath)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "braid-trustee\n\n")
		fmt.Fprintf(os.Stderr, "Usage: braid-trustee [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment variables are also available, prefixed BRAID_TRUSTEE_,\n")
		fmt.Fprintf(os.Stderr, "with dots and dashes replaced by underscores.\n")
	}

	flag.CommandLine.SortFlags = false
	flag.Parse()

	v.SetEnvPrefix("BRAID_TRUSTEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flag.CommandLine); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// validateConfig checks the fields loadConfig cannot default sensibly.
func validateConfig(cfg *Config) error {
	if cfg.Name == "" {
		return fmt.Errorf("name is required (use --name or BRAID_TRUSTEE_NAME)")
	}
	if cfg.SignerKey == "" {
		return fmt.Errorf("signerKey is required (use --signerKey or BRAID_TRUSTEE_SIGNERKEY)")
	}
	if cfg.SealingKey == "" {
		return fmt.Errorf("sealingKey is required (use --sealingKey or BRAID_TRUSTEE_SEALINGKEY)")
	}
	if cfg.BoardURL == "" {
		return fmt.Errorf("boardURL is required (use --boardURL or BRAID_TRUSTEE_BOARDURL)")
	}
	if len(cfg.Boards) == 0 {
		return fmt.Errorf("at least one board name is required (use --boards)")
	}
	return nil
}
