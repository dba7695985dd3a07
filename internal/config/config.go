package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-dashboard/internal/common"
	"github.com/Veraticus/spice-dashboard/internal/llm"
)

// Config is the fully resolved application configuration.
type Config struct {
	Logging  LoggingConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Plaid    PlaidConfig
	LLM      LLMConfig
	Bank     BankConfig
	Server   ServerConfig
	Import   ImportConfig
	Sheets   SheetsConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr         string
	TLSDir       string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AuthConfig holds the bearer-token verification secret.
type AuthConfig struct {
	JWTSecret string
}

// DatabaseConfig points at the SQLite file.
type DatabaseConfig struct {
	Path string
}

// LLMConfig configures the generative model.
type LLMConfig struct {
	Provider            string
	APIKey              string
	Model               string
	BaseURL             string
	CallDelay           time.Duration
	Temperature         float64
	ConfidenceThreshold float64
	MaxTokens           int
	MaxRetries          int
}

// BankConfig configures transaction acquisition.
type BankConfig struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	MaxAccounts int
}

// PlaidConfig holds Plaid credentials for the plaid bank provider.
type PlaidConfig struct {
	ClientID    string
	Secret      string
	Environment string
	AccessToken string
}

// SheetsConfig holds Google Sheets export credentials and target.
type SheetsConfig struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TimeZone           string
}

// ImportConfig tunes import and listing.
type ImportConfig struct {
	MockDays  int
	ListLimit int
}

// LoggingConfig configures slog.
type LoggingConfig struct {
	Level  string
	Format string
}

// Bank providers.
const (
	BankProviderNessie = "nessie"
	BankProviderPlaid  = "plaid"
)

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)

	v.SetDefault("database.path", "~/.local/share/spice/spice.db")

	v.SetDefault("llm.provider", llm.ProviderGemini)
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 200)
	v.SetDefault("llm.call_delay", 100*time.Millisecond)
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.confidence_threshold", 0.7)

	v.SetDefault("bank.provider", BankProviderNessie)
	v.SetDefault("bank.base_url", "https://api.nessieisreal.com")
	v.SetDefault("bank.timeout", 5*time.Second)
	v.SetDefault("bank.max_accounts", 2)

	v.SetDefault("plaid.environment", "sandbox")

	v.SetDefault("sheets.spreadsheet_name", "Spice Dashboard Export")
	v.SetDefault("sheets.timezone", "UTC")

	v.SetDefault("import.mock_days", 30)
	v.SetDefault("list.limit", 500)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load resolves configuration from v, falling back to well-known provider
// environment variables for credentials.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	cfg := Config{
		Server: ServerConfig{
			Addr:         v.GetString("server.addr"),
			TLSDir:       ExpandPath(v.GetString("server.tls_dir")),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		Auth: AuthConfig{
			JWTSecret: firstNonEmpty(v.GetString("auth.jwt_secret"), os.Getenv("JWT_SECRET")),
		},
		Database: DatabaseConfig{
			Path: ExpandPath(v.GetString("database.path")),
		},
		LLM: LLMConfig{
			Provider:            strings.ToLower(v.GetString("llm.provider")),
			Model:               v.GetString("llm.model"),
			BaseURL:             v.GetString("llm.base_url"),
			Temperature:         v.GetFloat64("llm.temperature"),
			MaxTokens:           v.GetInt("llm.max_tokens"),
			CallDelay:           v.GetDuration("llm.call_delay"),
			MaxRetries:          v.GetInt("llm.max_retries"),
			ConfidenceThreshold: v.GetFloat64("llm.confidence_threshold"),
		},
		Bank: BankConfig{
			Provider:    strings.ToLower(v.GetString("bank.provider")),
			APIKey:      firstNonEmpty(v.GetString("bank.api_key"), os.Getenv("NESSIE_API_KEY")),
			BaseURL:     strings.TrimRight(v.GetString("bank.base_url"), "/"),
			Timeout:     v.GetDuration("bank.timeout"),
			MaxAccounts: v.GetInt("bank.max_accounts"),
		},
		Plaid: PlaidConfig{
			ClientID:    firstNonEmpty(v.GetString("plaid.client_id"), os.Getenv("PLAID_CLIENT_ID")),
			Secret:      firstNonEmpty(v.GetString("plaid.secret"), os.Getenv("PLAID_SECRET")),
			Environment: v.GetString("plaid.environment"),
			AccessToken: v.GetString("plaid.access_token"),
		},
		Sheets: SheetsConfig{
			ClientID:           firstNonEmpty(v.GetString("sheets.client_id"), os.Getenv("GOOGLE_SHEETS_CLIENT_ID")),
			ClientSecret:       firstNonEmpty(v.GetString("sheets.client_secret"), os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")),
			RefreshToken:       firstNonEmpty(v.GetString("sheets.refresh_token"), os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN")),
			ServiceAccountPath: ExpandPath(firstNonEmpty(v.GetString("sheets.service_account_path"), os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"))),
			SpreadsheetID:      firstNonEmpty(v.GetString("sheets.spreadsheet_id"), os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID")),
			SpreadsheetName:    v.GetString("sheets.spreadsheet_name"),
			TimeZone:           v.GetString("sheets.timezone"),
		},
		Import: ImportConfig{
			MockDays:  v.GetInt("import.mock_days"),
			ListLimit: v.GetInt("list.limit"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
	}

	envKey := "GEMINI_API_KEY"
	if cfg.LLM.Provider == llm.ProviderOpenAI {
		envKey = "OPENAI_API_KEY"
	}
	cfg.LLM.APIKey = firstNonEmpty(v.GetString("llm.api_key"), os.Getenv(envKey))
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = llm.DefaultModel(cfg.LLM.Provider)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	switch c.LLM.Provider {
	case llm.ProviderGemini, llm.ProviderOpenAI:
	default:
		return invalid("llm.provider", c.LLM.Provider)
	}
	switch c.Bank.Provider {
	case BankProviderNessie, BankProviderPlaid:
	default:
		return invalid("bank.provider", c.Bank.Provider)
	}

	if c.LLM.ConfidenceThreshold < 0 || c.LLM.ConfidenceThreshold > 1 {
		return invalid("llm.confidence_threshold", c.LLM.ConfidenceThreshold)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return invalid("llm.temperature", c.LLM.Temperature)
	}
	if c.LLM.CallDelay < 0 {
		return invalid("llm.call_delay", c.LLM.CallDelay)
	}
	if c.Bank.Timeout <= 0 {
		return invalid("bank.timeout", c.Bank.Timeout)
	}
	if c.Bank.MaxAccounts <= 0 {
		return invalid("bank.max_accounts", c.Bank.MaxAccounts)
	}
	if c.Import.MockDays <= 0 {
		return invalid("import.mock_days", c.Import.MockDays)
	}
	if c.Import.ListLimit <= 0 {
		return invalid("list.limit", c.Import.ListLimit)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return invalid("server timeouts", fmt.Sprintf("%s/%s", c.Server.ReadTimeout, c.Server.WriteTimeout))
	}
	return nil
}

// LLMClientConfig converts to the llm package configuration.
func (c Config) LLMClientConfig() llm.Config {
	temperature := c.LLM.Temperature
	return llm.Config{
		Provider:    c.LLM.Provider,
		APIKey:      c.LLM.APIKey,
		Model:       c.LLM.Model,
		BaseURL:     c.LLM.BaseURL,
		MaxRetries:  c.LLM.MaxRetries,
		CallDelay:   c.LLM.CallDelay,
		Temperature: &temperature,
		MaxTokens:   c.LLM.MaxTokens,
	}
}

// RequireJWTSecret fails when the server has no way to verify tokens.
func (c Config) RequireJWTSecret() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("%w: auth.jwt_secret", common.ErrMissingConfig)
	}
	return nil
}

func invalid(key string, value any) error {
	return fmt.Errorf("%w: %s=%v", common.ErrInvalidConfig, key, value)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
