package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/changedesk/internal/narrative"
	"github.com/starford/changedesk/internal/portfolio"
	"github.com/starford/changedesk/internal/triage"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Auth      AuthConfig        `yaml:"auth"`
	Reports   ReportsConfig     `yaml:"reports"`
	Registry  RegistryConfig    `yaml:"registry"`
	Portfolio PortfolioConfig   `yaml:"portfolio"`
	Scoring   ScoringConfig     `yaml:"scoring"`
	LLM       LLMConfig         `yaml:"llm"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{
		&c.App, &c.SQLite, &c.Auth, &c.Portfolio, &c.Scoring, &c.LLM,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// ReportsConfig points at the narrative report archive. An empty path
// disables archiving.
type ReportsConfig struct {
	Path string `yaml:"path"`
}

// RegistryConfig holds the optional vendor registry file. When VendorsFile
// is empty the built-in registry seeds an empty database.
type RegistryConfig struct {
	VendorsFile string `yaml:"vendors_file"`
	Watch       bool   `yaml:"watch"`
}

// PortfolioConfig holds the aggregation policy.
type PortfolioConfig struct {
	portfolio.Policy       `yaml:",inline"`
	CohortExecutionWeights map[string]float64 `yaml:"cohort_execution_weights"`
}

// Validate validates the portfolio configuration.
func (c *PortfolioConfig) Validate() error {
	if err := validation.ValidateStruct(&c.Policy,
		validation.Field(&c.Policy.CapacityPoints, validation.Required, validation.Min(1)),
		validation.Field(&c.Policy.WarningRatio, validation.Required, validation.Min(0.0)),
		validation.Field(&c.Policy.CriticalRatio, validation.Required, validation.Min(0.0)),
		validation.Field(&c.Policy.SaturationThreshold, validation.Required, validation.Min(1)),
	); err != nil {
		return fmt.Errorf("portfolio: %w", err)
	}
	if c.Policy.WarningRatio > c.Policy.CriticalRatio {
		return fmt.Errorf("portfolio: warning_ratio %.2f exceeds critical_ratio %.2f", c.Policy.WarningRatio, c.Policy.CriticalRatio)
	}
	for status, w := range c.Policy.ExecutionWeights {
		if w < 0 || w > 1 {
			return fmt.Errorf("portfolio: execution weight for %q must be within 0..1", status)
		}
	}
	return nil
}

// ScoringConfig tunes the triage model. Weights override or extend the
// built-in tables per dimension.
type ScoringConfig struct {
	UnmappedWeight int                                 `yaml:"unmapped_weight"`
	Weights        map[triage.Dimension]map[string]int `yaml:"weights"`
}

// Validate validates the scoring configuration.
func (c *ScoringConfig) Validate() error {
	for d := range c.Weights {
		known := false
		for _, k := range triage.Dimensions {
			known = known || d == k
		}
		if !known {
			return fmt.Errorf("scoring: unknown dimension %q", d)
		}
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.UnmappedWeight, validation.Min(0)),
	)
}

// Model builds the scoring model from the defaults and the overrides.
func (c *ScoringConfig) Model() triage.Model {
	m := triage.DefaultModel()
	m.UnmappedWeight = c.UnmappedWeight
	for d, table := range c.Weights {
		for label, w := range table {
			m.Weights[d][label] = w
		}
	}
	return m
}

// LLMConfig configures the OpenAI-compatible narrative provider. An empty
// APIKey keeps the service in fail-soft mode.
type LLMConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Model        string        `yaml:"model"`
	APIKey       string        `yaml:"api_key"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxAttempts  int           `yaml:"max_attempts"`
	SystemPrompt string        `yaml:"system_prompt"`
}

// Validate validates the LLM configuration.
func (c *LLMConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.Timeout, validation.Required),
		validation.Field(&c.MaxAttempts, validation.Required, validation.Min(1), validation.Max(10)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./changedesk.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Reports: ReportsConfig{
			Path: "./reports",
		},
		Portfolio: PortfolioConfig{
			Policy:                 portfolio.DefaultPolicy(),
			CohortExecutionWeights: portfolio.DefaultCohortWeights(),
		},
		LLM: LLMConfig{
			BaseURL:      "https://api.openai.com/v1",
			Model:        "gpt-4o-mini",
			Timeout:      60 * time.Second,
			MaxAttempts:  narrative.DefaultRetryConfig().MaxAttempts,
			SystemPrompt: narrative.DefaultSystemPrompt,
		},
	}
}
