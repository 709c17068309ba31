package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. SCRY_SERVER_PORT.
const EnvPrefix = "SCRY"

var defaults = map[string]interface{}{
	"server.port":                 8080,
	"server.log_level":            "info",
	"auth.token_lifetime_minutes": 60,
	"llm.provider":                "gemini",
	"llm.temperature":             0.4,
	"llm.max_retries":             3,
	"llm.retry_delay_seconds":     2,
	"synthesis.segment_size":      6000,
	"synthesis.concurrency":       1,
	"synthesis.default_language":  "en",
	"task.worker_count":           2,
	"task.queue_size":             100,
	"task.stuck_task_age_minutes": 30,
}

// keys without defaults still have to be bound so AutomaticEnv picks them up
var boundKeys = []string{
	"database.url",
	"auth.jwt_secret",
	"llm.gemini_api_key",
	"llm.openai_api_key",
	"llm.openai_base_url",
	"llm.model_name",
	"llm.prompt_template_dir",
}

// Load configuration from environment variables and optionally a config.yaml
// in the working directory. Environment variables take precedence over values
// from the config file. The whole configuration is validated.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadSynthesis loads the configuration but validates only the sections a
// standalone synthesis run needs: logging level, LLM and synthesis.
func LoadSynthesis() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	validate := validator.New()
	if err := validate.Var(cfg.Server.LogLevel, "required,oneof=debug info warn error"); err != nil {
		return nil, fmt.Errorf("config validation failed: server.log_level: %w", err)
	}
	for name, section := range map[string]interface{}{"llm": cfg.LLM, "synthesis": cfg.Synthesis} {
		if err := validate.Struct(section); err != nil {
			return nil, fmt.Errorf("config validation failed: %s: %w", name, err)
		}
	}

	return cfg, nil
}

// LoadAuth loads the configuration but validates only the auth section.
func LoadAuth() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg.Auth); err != nil {
		return nil, fmt.Errorf("config validation failed: auth: %w", err)
	}

	return cfg, nil
}

func read() (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range boundKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &cfg, nil
}
