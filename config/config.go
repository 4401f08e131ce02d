package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"

	"wardrobeapi/stylist"
)

type Config struct {
	Address     string        `env:"ADDRESS" envDefault:":8083"`
	Environment string        `env:"ENV" envDefault:"local"`
	SentryDSN   string        `env:"SENTRY_DSN"`
	JWTSecret   string        `env:"JWT_SECRET,notEmpty"`
	SessionTTL  time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	BrokerAddress     string `env:"ASYNC_BROKER_ADDRESS" envDefault:"localhost:6379"`
	WorkerConcurrency int    `env:"WORKER_CONCURRENCY" envDefault:"10"`

	BucketName string `env:"R2_BUCKET_NAME"`

	WeatherBaseURL     string `env:"WEATHER_BASE_URL" envDefault:"https://api.weatherapi.com/v1/forecast.json"`
	WeatherAPIKey      string `env:"WEATHER_API_KEY"`
	DefaultWeatherCity string `env:"DEFAULT_WEATHER_CITY" envDefault:"London"`

	TelegramBot   bool   `env:"TELEGRAM_BOT" envDefault:"false"`
	TelegramToken string `env:"TELEGRAM_BOT_TOKEN"`

	StylistConfig
}

// StylistConfig is the part of the environment the outfit pipeline and
// stylistctl need.
type StylistConfig struct {
	// gemini or openai
	LLMProvider   string `env:"LLM_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	// retries for background jobs, the outfit pipeline never retries upstream
	LLMAttempts   int    `env:"LLM_ATTEMPTS" envDefault:"2"`

	GenerationTimeout     time.Duration `env:"GENERATION_TIMEOUT" envDefault:"60s"`
	ClassificationTimeout time.Duration `env:"CLASSIFICATION_TIMEOUT" envDefault:"10s"`
	MinFilteredItems      int           `env:"MIN_FILTERED_ITEMS" envDefault:"10"`
	MaxOutfitColors       int           `env:"MAX_OUTFIT_COLORS" envDefault:"4"`
	MaxOutfitPatterns     int           `env:"MAX_OUTFIT_PATTERNS" envDefault:"2"`
	RulesPath             string        `env:"STYLIST_RULES_PATH"`
}

// Load loads .env when present and parses the environment into Config.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LoadStylist parses only the stylist settings.
func LoadStylist() (StylistConfig, error) {
	_ = godotenv.Load()

	var cfg StylistConfig
	if err := env.Parse(&cfg); err != nil {
		return StylistConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c StylistConfig) Stylist() stylist.Config {
	return stylist.Config{
		MinFilteredItems:      c.MinFilteredItems,
		MaxColors:             c.MaxOutfitColors,
		MaxPatterns:           c.MaxOutfitPatterns,
		GenerationTimeout:     c.GenerationTimeout,
		ClassificationTimeout: c.ClassificationTimeout,
	}
}

// Rules returns the embedded rule table unless a file overrides it.
func (c StylistConfig) Rules() (*stylist.RuleTable, error) {
	if c.RulesPath == "" {
		return stylist.DefaultRuleTable(), nil
	}
	return stylist.LoadRuleTable(c.RulesPath)
}
