package config

import "os"

// InsightConfig holds configuration for the insight generation API
type InsightConfig struct {
	APIKey    string `json:"-"` // Never serialize
	BaseURL   string `json:"baseUrl"`
	Model     string `json:"model"`
	TimeoutMS int    `json:"timeoutMs"`
}

// DefaultInsightConfig returns the default insight configuration
func DefaultInsightConfig() *InsightConfig {
	return &InsightConfig{
		APIKey:    os.Getenv("OPENAI_API_KEY"),
		BaseURL:   getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		Model:     getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		TimeoutMS: 30000, // 30 second default timeout
	}
}

// IsEnabled returns true if the insight API is configured
func (c *InsightConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ChatCompletionsEndpoint returns the chat completions URL
func (c *InsightConfig) ChatCompletionsEndpoint() string {
	return c.BaseURL + "/chat/completions"
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
