// Package config loads the runtime configuration from the process
// environment, an optional .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderNewsAPI    = "newsapi"
	ProviderGoogleNews = "googlenews"

	SummarizerOpenAI = "openai"
	SummarizerGemini = "gemini"

	DefaultSubject  = "每日 7 點新聞摘要（AI 自動整理）"
	DefaultTimezone = "Asia/Taipei"
)

// Config holds every setting needed for one digest run.
type Config struct {
	NewsProvider   string
	NewsAPIKey     string
	NewsAPIBaseURL string
	NewsLanguage   string
	NewsPageSize   int
	HTTPTimeout    time.Duration

	SummarizerProvider string
	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIBaseURL      string
	GeminiAPIKey       string
	GeminiModel        string
	SummaryWorkers     int
	SummaryTimeout     time.Duration

	SMTPHost          string
	SMTPPort          int
	SenderEmail       string
	SenderAppPassword string
	ReceiverEmail     string
	MailSubject       string

	Timezone       string
	SectionsFile   string
	PublishersFile string

	LogLevel  string
	LogFormat string
}

// Load reads .env (when present), the environment and the optional file
// named by CONFIG_FILE, then validates the result.
func Load() (*Config, error) {
	return LoadWithEnvFile(".env")
}

// LoadWithEnvFile is Load with an explicit dotenv path. A missing dotenv file
// is not an error. Variables already set in the environment win over the file.
func LoadWithEnvFile(envFile string) (*Config, error) {
	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if path := strings.TrimSpace(v.GetString("CONFIG_FILE")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("NEWS_PROVIDER", ProviderNewsAPI)
	v.SetDefault("NEWS_API_BASE_URL", "https://newsapi.org")
	v.SetDefault("NEWS_LANGUAGE", "zh")
	v.SetDefault("NEWS_PAGE_SIZE", 10)
	v.SetDefault("HTTP_TIMEOUT", 30*time.Second)

	v.SetDefault("SUMMARIZER_PROVIDER", SummarizerOpenAI)
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("SUMMARY_WORKERS", 1)
	v.SetDefault("SUMMARY_TIMEOUT", time.Duration(0))

	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("MAIL_SUBJECT", DefaultSubject)

	v.SetDefault("DIGEST_TIMEZONE", DefaultTimezone)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func fromViper(v *viper.Viper) *Config {
	str := func(key string) string { return strings.TrimSpace(v.GetString(key)) }

	return &Config{
		NewsProvider:   strings.ToLower(str("NEWS_PROVIDER")),
		NewsAPIKey:     str("NEWS_API_KEY"),
		NewsAPIBaseURL: str("NEWS_API_BASE_URL"),
		NewsLanguage:   str("NEWS_LANGUAGE"),
		NewsPageSize:   v.GetInt("NEWS_PAGE_SIZE"),
		HTTPTimeout:    v.GetDuration("HTTP_TIMEOUT"),

		SummarizerProvider: strings.ToLower(str("SUMMARIZER_PROVIDER")),
		OpenAIAPIKey:       str("OPENAI_API_KEY"),
		OpenAIModel:        str("OPENAI_MODEL"),
		OpenAIBaseURL:      str("OPENAI_BASE_URL"),
		GeminiAPIKey:       str("GEMINI_API_KEY"),
		GeminiModel:        str("GEMINI_MODEL"),
		SummaryWorkers:     v.GetInt("SUMMARY_WORKERS"),
		SummaryTimeout:     v.GetDuration("SUMMARY_TIMEOUT"),

		SMTPHost:          str("SMTP_HOST"),
		SMTPPort:          v.GetInt("SMTP_PORT"),
		SenderEmail:       str("SENDER_EMAIL"),
		SenderAppPassword: v.GetString("SENDER_APP_PASSWORD"),
		ReceiverEmail:     str("RECEIVER_EMAIL"),
		MailSubject:       str("MAIL_SUBJECT"),

		Timezone:       str("DIGEST_TIMEZONE"),
		SectionsFile:   os.ExpandEnv(str("SECTIONS_FILE")),
		PublishersFile: os.ExpandEnv(str("PUBLISHERS_FILE")),

		LogLevel:  str("LOG_LEVEL"),
		LogFormat: str("LOG_FORMAT"),
	}
}

// Validate reports the first missing or invalid setting.
func (c *Config) Validate() error {
	switch c.NewsProvider {
	case ProviderNewsAPI:
		if c.NewsAPIKey == "" {
			return fmt.Errorf("NEWS_API_KEY is required for provider %s", ProviderNewsAPI)
		}
	case ProviderGoogleNews:
	default:
		return fmt.Errorf("unsupported NEWS_PROVIDER %q", c.NewsProvider)
	}

	switch c.SummarizerProvider {
	case SummarizerOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for summarizer %s", SummarizerOpenAI)
		}
		if c.OpenAIModel == "" {
			return fmt.Errorf("OPENAI_MODEL must not be empty")
		}
	case SummarizerGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for summarizer %s", SummarizerGemini)
		}
		if c.GeminiModel == "" {
			return fmt.Errorf("GEMINI_MODEL must not be empty")
		}
	default:
		return fmt.Errorf("unsupported SUMMARIZER_PROVIDER %q", c.SummarizerProvider)
	}

	if c.SenderEmail == "" {
		return fmt.Errorf("SENDER_EMAIL is required")
	}
	if _, err := mail.ParseAddress(c.SenderEmail); err != nil {
		return fmt.Errorf("SENDER_EMAIL is invalid: %w", err)
	}
	if c.SenderAppPassword == "" {
		return fmt.Errorf("SENDER_APP_PASSWORD is required")
	}
	if c.ReceiverEmail == "" {
		return fmt.Errorf("RECEIVER_EMAIL is required")
	}
	if _, err := mail.ParseAddress(c.ReceiverEmail); err != nil {
		return fmt.Errorf("RECEIVER_EMAIL is invalid: %w", err)
	}

	if c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must not be empty")
	}
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("SMTP_PORT %d out of range", c.SMTPPort)
	}
	if c.NewsPageSize <= 0 {
		return fmt.Errorf("NEWS_PAGE_SIZE must be positive, got %d", c.NewsPageSize)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	if c.SummaryWorkers <= 0 {
		return fmt.Errorf("SUMMARY_WORKERS must be positive, got %d", c.SummaryWorkers)
	}
	if c.SummaryTimeout < 0 {
		return fmt.Errorf("SUMMARY_TIMEOUT must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the digest time zone.
func (c *Config) Location() (*time.Location, error) {
	name := c.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load DIGEST_TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}
