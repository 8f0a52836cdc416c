package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Option describes one configuration key, its default, and its meaning.
// This is the single source of truth for default values.
type Option struct {
	Key     string
	Default any
	Comment string
}

// Options returns the default configuration options and their meanings.
func Options() []Option {
	return []Option{
		{Key: "timeout", Default: 30 * time.Second, Comment: "How long `patience run` waits for the readiness signal"},
		{Key: "grace", Default: 5 * time.Second, Comment: "How long a timed-out child gets between SIGTERM and SIGKILL"},
		{Key: "port_env", Default: "PATIENCE_PORT", Comment: "Environment variable carrying the rendezvous port to the child"},
		{Key: "port_tag", Default: "port", Comment: "Placeholder tag expanded to the rendezvous port in child arguments, written as {port}"},
		{Key: "json", Default: false, Comment: "Emit run reports as single-line JSON"},
	}
}

// applyDefaults seeds Viper with the defaults defined in Options.
func applyDefaults(v *viper.Viper) {
	for _, o := range Options() {
		v.SetDefault(o.Key, o.Default)
	}
}

// Load resolves configuration with precedence: defaults < file < env.
// The provided Viper instance is mutated with defaults, file contents, and env.
func Load(v *viper.Viper) error {
	// Configure search paths unless SetConfigFile was provided upstream.
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "patience"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "patience"))
		}
		v.AddConfigPath(".")
	}

	applyDefaults(v)

	// Read config file if present (overrides defaults).
	_ = v.ReadInConfig()

	// Environment variables: PATIENCE_* (highest among these sources).
	v.SetEnvPrefix("patience")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return nil
}

// Settings is the typed view of the resolved configuration.
type Settings struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"required,gt=0"`
	Grace   time.Duration `mapstructure:"grace" validate:"gte=0"`
	PortEnv string        `mapstructure:"port_env" validate:"required"`
	PortTag string        `mapstructure:"port_tag" validate:"required"`
	JSON    bool          `mapstructure:"json"`
}

// FromViper unmarshals the resolved configuration and validates it.
func FromViper(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := validator.New().Struct(s); err != nil {
		return s, fmt.Errorf("invalid configuration: %w", err)
	}
	return s, nil
}
