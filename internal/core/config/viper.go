package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/solatis/rulequery/internal/rules"
	"github.com/solatis/rulequery/internal/types"
)

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"host":              "server.host",
	"port":              "server.port",
	"max-rules":         "server.max_rules",
	"default-condition": "translator.default_condition",
	"max-depth":         "translator.max_depth",
	"rules-file":        "translator.default_rules_file",
}

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
// flags may be nil; only flags listed in flagKeys and present in the set are bound.
func LoadConfig(configPath string, flags ...*pflag.FlagSet) (*Config, error) {
	v := viper.New()

	d := DefaultConfig()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.max_connections", d.Server.MaxConnections)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout.String())
	v.SetDefault("server.max_rules", d.Server.MaxRules)
	v.SetDefault("translator.default_condition", string(d.Translator.DefaultCondition))
	v.SetDefault("translator.max_depth", d.Translator.MaxDepth)
	v.SetDefault("translator.default_rules_file", "")

	v.SetEnvPrefix("RQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, fs := range flags {
		if fs == nil {
			continue
		}
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets are environment-only
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           v.GetString("server.host"),
			Port:           v.GetInt("server.port"),
			MaxConnections: v.GetInt("server.max_connections"),
			RequestTimeout: v.GetDuration("server.request_timeout"),
			MaxRules:       v.GetInt("server.max_rules"),
		},
		Translator: TranslatorConfig{
			MaxDepth:         v.GetInt("translator.max_depth"),
			Transforms:       v.GetStringMapString("translator.transforms"),
			DefaultRulesFile: v.GetString("translator.default_rules_file"),
		},
	}

	cond, err := types.ParseCondition(v.GetString("translator.default_condition"))
	if err != nil {
		return nil, fmt.Errorf("translator.default_condition: %w", err)
	}
	cfg.Translator.DefaultCondition = cond

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks port range, positive limits, depth bounds and transform syntax.
func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxConnections <= 0 {
		return fmt.Errorf("max_connections must be positive, got %d", cfg.Server.MaxConnections)
	}
	if cfg.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.Server.RequestTimeout)
	}
	if cfg.Server.MaxRules <= 0 {
		return fmt.Errorf("max_rules must be positive, got %d", cfg.Server.MaxRules)
	}
	// Decoding rejects anything deeper than MaxTreeDepth regardless of this setting
	if cfg.Translator.MaxDepth <= 0 || cfg.Translator.MaxDepth > types.MaxTreeDepth {
		return fmt.Errorf("max_depth must be between 1 and %d, got %d", types.MaxTreeDepth, cfg.Translator.MaxDepth)
	}
	if _, err := rules.TransformOptions(cfg.Translator.Transforms); err != nil {
		return fmt.Errorf("translator.transforms: %w", err)
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only secrets (12-factor principle).
// InConfig looks at the file only; IsSet would also see RQ_HMAC_SECRET through AutomaticEnv.
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.InConfig("hmac_secret") || v.InConfig("server.hmac_secret") {
		return fmt.Errorf("HMAC secrets not allowed in config files (use RQ_HMAC_SECRET environment variable)")
	}
	return nil
}
