package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm" validate:"required"`
	Synthesis SynthesisConfig `mapstructure:"synthesis" validate:"required"`
	Task      TaskConfig      `mapstructure:"task" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lt=44640"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	// Provider selects the completion adapter.
	Provider     string `mapstructure:"provider" validate:"required,oneof=gemini openai"`
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required_if=Provider gemini"`
	OpenAIAPIKey string `mapstructure:"openai_api_key" validate:"required_if=Provider openai"`
	// OpenAIBaseURL points the OpenAI adapter at a compatible endpoint.
	OpenAIBaseURL string `mapstructure:"openai_base_url" validate:"omitempty,url"`
	// ModelName overrides the provider's default model.
	ModelName         string  `mapstructure:"model_name"`
	Temperature       float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=60"`
	// PromptTemplateDir optionally holds *.twig files overriding the built-in prompts.
	PromptTemplateDir string `mapstructure:"prompt_template_dir"`
}

// SynthesisConfig controls how documents are segmented and processed.
type SynthesisConfig struct {
	SegmentSize     int    `mapstructure:"segment_size" validate:"gte=100,lte=100000"`
	Concurrency     int    `mapstructure:"concurrency" validate:"gte=1,lte=16"`
	DefaultLanguage string `mapstructure:"default_language" validate:"required"`
}

// TaskConfig controls the background synthesis workers.
type TaskConfig struct {
	WorkerCount         int `mapstructure:"worker_count" validate:"gte=1,lte=64"`
	QueueSize           int `mapstructure:"queue_size" validate:"gte=1"`
	StuckTaskAgeMinutes int `mapstructure:"stuck_task_age_minutes" validate:"gte=1"`
}
