package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lyrics-search/pkg/music/providers"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

const (
	DefaultHost            = "127.0.0.1"
	DefaultPort            = 5000
	DefaultProviderTimeout = 10 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "console"
	DefaultAIModule        = "gemini"
)

// DefaultProviders is the lookup order used when the file names none.
var DefaultProviders = []string{"lrclib", "netease"}

// TomlConfig mirrors the config file. Pointers distinguish "unset" from a
// zero value for fields whose default is not the zero value.
type TomlConfig struct {
	Server struct {
		Host  string `toml:"host"`
		Port  int    `toml:"port"`
		Debug *bool  `toml:"debug"`
	} `toml:"server"`

	Search struct {
		WarmBothModes   *bool    `toml:"warm_both_modes"`
		Providers       []string `toml:"providers"`
		ProviderTimeout string   `toml:"provider_timeout"`
	} `toml:"search"`

	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`

	Metrics struct {
		Addr string `toml:"addr"`
	} `toml:"metrics"`

	AI struct {
		ModuleName string `toml:"module_name"`
		APIKey     string `toml:"api_key"`
		BaseURL    string `toml:"base_url"` // for OpenAI
	} `toml:"ai"`
}

// ServerConfig HTTP listener settings
type ServerConfig struct {
	Host  string `validate:"required"`
	Port  int    `validate:"min=1,max=65535"`
	Debug bool
}

// Addr returns host:port for the listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SearchConfig controls how the endpoint drives the lyrics collaborator.
type SearchConfig struct {
	// WarmBothModes issues the enhanced and plain lookups before the
	// requested one on every request.
	WarmBothModes   bool
	Providers       []string      `validate:"min=1,dive,lyrics_provider"`
	ProviderTimeout time.Duration `validate:"gt=0"`
}

type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=console json"`
}

type MetricsConfig struct {
	Addr string `validate:"omitempty,hostname_port"`
}

// AIConfig AI配置
type AIConfig struct {
	ModuleName string
	APIKey     string
	BaseURL    string `validate:"omitempty,url"`
}

// Enabled reports whether an API key was configured.
func (a AIConfig) Enabled() bool {
	return a.APIKey != ""
}

// Config 主配置结构
type Config struct {
	Server  ServerConfig
	Search  SearchConfig
	Log     LogConfig
	Metrics MetricsConfig
	AI      AIConfig
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Search: SearchConfig{
			WarmBothModes:   true,
			Providers:       append([]string(nil), DefaultProviders...),
			ProviderTimeout: DefaultProviderTimeout,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		AI: AIConfig{
			ModuleName: DefaultAIModule,
		},
	}
}

// DefaultPath returns the config file location.
func DefaultPath() string {
	// 优先使用 XDG_CONFIG_HOME 环境变量
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "lyrics-search", "config.toml")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warn().Err(err).Msg("Cannot get user home directory")
		return "config.toml"
	}

	return filepath.Join(homeDir, ".config", "lyrics-search", "config.toml")
}

// loadTomlConfig 加载TOML配置文件，文件不存在时返回空配置
func loadTomlConfig(path string) (*TomlConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Info().Str("path", path).Msg("Config file not found, using defaults")
		return &TomlConfig{}, nil
	}

	var tc TomlConfig
	if _, err := toml.DecodeFile(path, &tc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	log.Info().Str("path", path).Msg("Loaded config")
	return &tc, nil
}

// Load reads path (DefaultPath when empty), applies it over the defaults and
// validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	tc, err := loadTomlConfig(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := cfg.apply(tc); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) apply(tc *TomlConfig) error {
	if tc.Server.Host != "" {
		cfg.Server.Host = tc.Server.Host
	}
	if tc.Server.Port != 0 {
		cfg.Server.Port = tc.Server.Port
	}
	if tc.Server.Debug != nil {
		cfg.Server.Debug = *tc.Server.Debug
	}

	if tc.Search.WarmBothModes != nil {
		cfg.Search.WarmBothModes = *tc.Search.WarmBothModes
	}
	if len(tc.Search.Providers) > 0 {
		cfg.Search.Providers = tc.Search.Providers
	}
	if tc.Search.ProviderTimeout != "" {
		d, err := time.ParseDuration(tc.Search.ProviderTimeout)
		if err != nil {
			return fmt.Errorf("invalid search.provider_timeout %q: %w", tc.Search.ProviderTimeout, err)
		}
		cfg.Search.ProviderTimeout = d
	}

	if tc.Log.Level != "" {
		cfg.Log.Level = tc.Log.Level
	}
	if tc.Log.Format != "" {
		cfg.Log.Format = tc.Log.Format
	}

	if tc.Metrics.Addr != "" {
		cfg.Metrics.Addr = tc.Metrics.Addr
	}

	// 从TOML配置中覆盖AI设置
	if tc.AI.ModuleName != "" {
		cfg.AI.ModuleName = tc.AI.ModuleName
	}
	if tc.AI.APIKey != "" {
		cfg.AI.APIKey = tc.AI.APIKey
	}
	if tc.AI.BaseURL != "" {
		cfg.AI.BaseURL = tc.AI.BaseURL
	}
	return nil
}

// Validate checks the struct tags. Provider names accept the same aliases
// as providers.ByName.
func (cfg *Config) Validate() error {
	v := validator.New()
	if err := v.RegisterValidation("lyrics_provider", func(fl validator.FieldLevel) bool {
		_, err := providers.ByName(fl.Field().String())
		return err == nil
	}); err != nil {
		return fmt.Errorf("config validation setup failed: %w", err)
	}
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// ToToml converts cfg back into the file layout, used by `config init`.
func (cfg *Config) ToToml() *TomlConfig {
	var tc TomlConfig
	tc.Server.Host = cfg.Server.Host
	tc.Server.Port = cfg.Server.Port
	tc.Server.Debug = &cfg.Server.Debug
	tc.Search.WarmBothModes = &cfg.Search.WarmBothModes
	tc.Search.Providers = cfg.Search.Providers
	tc.Search.ProviderTimeout = cfg.Search.ProviderTimeout.String()
	tc.Log.Level = cfg.Log.Level
	tc.Log.Format = cfg.Log.Format
	tc.Metrics.Addr = cfg.Metrics.Addr
	tc.AI.ModuleName = cfg.AI.ModuleName
	tc.AI.APIKey = cfg.AI.APIKey
	tc.AI.BaseURL = cfg.AI.BaseURL
	return &tc
}
