// Package config provides configuration loading for the txflow CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	txflow "github.com/branched-services/go-txflow"
)

// Config holds all configuration for a txflow run.
type Config struct {
	Network  string                   `mapstructure:"network"`
	EnvFile  string                   `mapstructure:"env_file"`
	Networks map[string]NetworkConfig `mapstructure:"networks"`
	Confirm  ConfirmConfig            `mapstructure:"confirm"`
	Records  RecordsConfig            `mapstructure:"records"`
	Deploy   DeployConfig             `mapstructure:"deploy"`
	Mint     MintConfig               `mapstructure:"mint"`
	Log      LogConfig                `mapstructure:"log"`
}

// NetworkConfig describes one network entry in the config file.
type NetworkConfig struct {
	URL     string `mapstructure:"url"`
	ChainID uint64 `mapstructure:"chain_id"`
	KeyVar  string `mapstructure:"key_var"`
}

// ConfirmConfig holds receipt waiting settings.
type ConfirmConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// RecordsConfig holds deployment record settings.
type RecordsConfig struct {
	Dir string `mapstructure:"dir"`
}

// DeployConfig is the deployment preset.
type DeployConfig struct {
	Artifact string   `mapstructure:"artifact"`
	Key      string   `mapstructure:"key"`
	Args     []string `mapstructure:"args"`
}

// MintConfig is the mint preset. Operation is configurable because
// collections differ between mint and safeMint.
type MintConfig struct {
	Operation string `mapstructure:"operation"`
	Contract  string `mapstructure:"contract"`
	To        string `mapstructure:"to"`
	TokenURI  string `mapstructure:"token_uri"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text, json
}

// Load reads configuration from path, or from txflow.yaml in the usual
// search paths when path is empty, then applies TXFLOW_* environment
// overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("txflow")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.txflow")
	}

	v.SetEnvPrefix("TXFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// setDefaults configures default values for all settings.
func setDefaults(v *viper.Viper) {
	v.SetDefault("network", "sepolia")
	v.SetDefault("env_file", ".env")

	v.SetDefault("confirm.timeout", "2m")
	v.SetDefault("confirm.poll_interval", "1s")

	v.SetDefault("records.dir", "deployments")

	v.SetDefault("deploy.artifact", "artifacts/contracts/ERC721.sol/ERC721.json")
	v.SetDefault("deploy.key", "ERC721#ERC721")
	v.SetDefault("deploy.args", []string{"ProfilePics", "PFP"})

	v.SetDefault("mint.operation", "mint")
	v.SetDefault("mint.contract", "")
	v.SetDefault("mint.to", "")
	v.SetDefault("mint.token_uri", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// NetworkTable merges the configured networks over the built-in ones.
// Fields left empty in the file inherit the built-in values.
func (c *Config) NetworkTable() map[string]txflow.Network {
	table := txflow.DefaultNetworks()
	for name, n := range c.Networks {
		base := table[name]
		if n.URL != "" {
			base.URL = n.URL
		}
		if n.ChainID != 0 {
			base.ChainID = n.ChainID
		}
		if n.KeyVar != "" {
			base.KeyVar = n.KeyVar
		}
		table[name] = base
	}
	return table
}

// Credentials returns the process environment backed by the configured
// .env file. A missing .env file is only an error when the file was named
// explicitly.
func (c *Config) Credentials() (txflow.CredentialSource, error) {
	sources := txflow.ChainSource{txflow.EnvSource{}}
	if c.EnvFile == "" {
		return sources, nil
	}

	dotenv, err := txflow.DotenvSource(c.EnvFile)
	switch {
	case err == nil:
		sources = append(sources, dotenv)
	case errors.Is(err, os.ErrNotExist) && c.EnvFile == ".env":
	default:
		return nil, fmt.Errorf("failed to read env file %s: %w", c.EnvFile, err)
	}
	return sources, nil
}
