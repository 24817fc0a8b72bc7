package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "SENTIMENT"

// OllamaAPI selects which wire protocol is used for generation calls.
const (
	OllamaAPINative = "native"
	OllamaAPIOpenAI = "openai"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Ollama OllamaConfig `mapstructure:"ollama"`
	Client ClientConfig `mapstructure:"client"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type OllamaConfig struct {
	URL             string        `mapstructure:"url"`
	API             string        `mapstructure:"api"`
	DefaultModel    string        `mapstructure:"default_model"`
	Candidates      []string      `mapstructure:"candidates"`
	ProbeTimeout    time.Duration `mapstructure:"probe_timeout"`
	GenerateTimeout time.Duration `mapstructure:"generate_timeout"`
	AutoPull        bool          `mapstructure:"auto_pull"`
	PullTimeout     time.Duration `mapstructure:"pull_timeout"`
}

// ClientConfig configures the browser-facing view process.
type ClientConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	BackendURL    string        `mapstructure:"backend_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	StatusTimeout time.Duration `mapstructure:"status_timeout"`
	DisplayModel  string        `mapstructure:"display_model"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Addr returns the listen address of the request handler.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Addr returns the listen address of the view.
func (c ClientConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("ollama.url", "http://localhost:11434")
	v.SetDefault("ollama.api", OllamaAPINative)
	v.SetDefault("ollama.default_model", "phi")
	v.SetDefault("ollama.candidates", []string{"phi", "tinyllama", "gemma:2b", "llama2"})
	v.SetDefault("ollama.probe_timeout", 3*time.Second)
	v.SetDefault("ollama.generate_timeout", 15*time.Second)
	v.SetDefault("ollama.auto_pull", true)
	v.SetDefault("ollama.pull_timeout", 10*time.Minute)

	v.SetDefault("client.host", "")
	v.SetDefault("client.port", 8501)
	v.SetDefault("client.backend_url", "http://localhost:8000")
	v.SetDefault("client.timeout", 30*time.Second)
	v.SetDefault("client.status_timeout", 5*time.Second)
	v.SetDefault("client.display_model", "tinyllama")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stdout")
}

// LoadConfig reads defaults, an optional config file and SENTIMENT_*
// environment variables, in increasing order of precedence. An empty path
// searches for config.yaml in the working directory and
// /etc/ollama-sentiment; a missing file is not an error in that case.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/ollama-sentiment")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("configuration loaded successfully", "file", v.ConfigFileUsed())
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := validPort("server.port", c.Server.Port); err != nil {
		return err
	}
	if err := validPort("client.port", c.Client.Port); err != nil {
		return err
	}

	switch c.Ollama.API {
	case OllamaAPINative, OllamaAPIOpenAI:
	default:
		return fmt.Errorf("config: ollama.api must be %q or %q, got %q", OllamaAPINative, OllamaAPIOpenAI, c.Ollama.API)
	}

	if c.Ollama.URL == "" {
		return errors.New("config: ollama.url is required")
	}
	if c.Client.BackendURL == "" {
		return errors.New("config: client.backend_url is required")
	}
	if c.Ollama.DefaultModel == "" {
		return errors.New("config: ollama.default_model is required")
	}
	if len(c.Ollama.Candidates) == 0 {
		return errors.New("config: ollama.candidates must not be empty")
	}

	timeouts := map[string]time.Duration{
		"ollama.probe_timeout":    c.Ollama.ProbeTimeout,
		"ollama.generate_timeout": c.Ollama.GenerateTimeout,
		"ollama.pull_timeout":     c.Ollama.PullTimeout,
		"client.timeout":          c.Client.Timeout,
		"client.status_timeout":   c.Client.StatusTimeout,
	}
	for key, d := range timeouts {
		if d <= 0 {
			return fmt.Errorf("config: %s must be positive, got %s", key, d)
		}
	}

	return nil
}

func validPort(key string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("config: %s out of range: %d", key, port)
	}
	return nil
}
