// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional config.yaml. Every variable is
// prefixed with SCRY_ and nested keys are joined with underscores, so
// llm.gemini_api_key is read from SCRY_LLM_GEMINI_API_KEY.
package config
