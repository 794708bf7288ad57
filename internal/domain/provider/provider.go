// Package provider defines execution-profile configuration entities.
package provider

// RateLimit is a requests-per-interval budget for a profile.
type RateLimit struct {
	Requests int    `json:"requests" yaml:"requests"`
	Interval string `json:"interval" yaml:"interval"` // e.g. "1m"
}

// Profile is a named execution configuration for a task domain.
// Profiles are loaded once and read-only thereafter; Fallback nests at most
// one level deep.
type Profile struct {
	Domain       string    `json:"domain" yaml:"domain"`
	Provider     string    `json:"provider" yaml:"provider"`
	Model        string    `json:"model" yaml:"model"`
	Temperature  float64   `json:"temperature" yaml:"temperature"` // 0.0-2.0
	MaxTokens    int       `json:"max_tokens" yaml:"max_tokens"`   // > 0
	SystemPrompt string    `json:"system_prompt" yaml:"system_prompt"`
	RateLimit    RateLimit `json:"rate_limit" yaml:"rate_limit"`
	Fallback     *Profile  `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}
