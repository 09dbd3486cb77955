package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone  = "UTC"
	configPathEnv    = "GRANT_SCANNER_CONFIG"
	databaseDSNEnv   = "DATABASE_DSN"
	vinnovaSinceEnv  = "VINNOVA_SINCE"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Logging       LoggingConfig      `yaml:"logging"`
	Sources       SourcesConfig      `yaml:"sources"`
	Notifications NotificationConfig `yaml:"notifications"`
	Heuristics    HeuristicsConfig   `yaml:"heuristics"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines when ingestion runs.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// LoggingConfig controls the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SourcesConfig groups per-provider fetch settings.
type SourcesConfig struct {
	Vinnova VinnovaConfig  `yaml:"vinnova"`
	EU      EUConfig       `yaml:"eu"`
	Funders []FunderConfig `yaml:"funders"`
}

// VinnovaConfig targets the Vinnova open-data API.
type VinnovaConfig struct {
	BaseURL string `yaml:"baseUrl"`
	Since   string `yaml:"since"`
}

// EUConfig targets the EU funding & tenders search API.
type EUConfig struct {
	BaseURL  string `yaml:"baseUrl"`
	APIKey   string `yaml:"apiKey"`
	Text     string `yaml:"text"`
	PageSize int    `yaml:"pageSize"`
	MaxPages int    `yaml:"maxPages"`
}

// FunderConfig describes one agency of the VR/Formas/Forte API family.
type FunderConfig struct {
	Name      string `yaml:"name"`
	BaseURL   string `yaml:"baseUrl"`
	APIKeyEnv string `yaml:"apiKeyEnv"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send digests.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// HeuristicsConfig overrides the built-in keyword tables. Empty sections
// keep the defaults from the normalize package.
type HeuristicsConfig struct {
	DocumentKeywords []string        `yaml:"documentKeywords"`
	Tags             []TagRuleConfig `yaml:"tags"`
}

// TagRuleConfig binds one tag to its trigger keywords.
type TagRuleConfig struct {
	Tag      string   `yaml:"tag"`
	Keywords []string `yaml:"keywords"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sources.Funders) == 0 {
		cfg.Sources.Funders = defaultConfig().Sources.Funders
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(vinnovaSinceEnv); v != "" {
		c.Sources.Vinnova.Since = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Sources.Vinnova.BaseURL != "" {
		base.Sources.Vinnova.BaseURL = override.Sources.Vinnova.BaseURL
	}
	if override.Sources.Vinnova.Since != "" {
		base.Sources.Vinnova.Since = override.Sources.Vinnova.Since
	}
	if override.Sources.EU.BaseURL != "" {
		base.Sources.EU.BaseURL = override.Sources.EU.BaseURL
	}
	if override.Sources.EU.APIKey != "" {
		base.Sources.EU.APIKey = override.Sources.EU.APIKey
	}
	if override.Sources.EU.Text != "" {
		base.Sources.EU.Text = override.Sources.EU.Text
	}
	if override.Sources.EU.PageSize > 0 {
		base.Sources.EU.PageSize = override.Sources.EU.PageSize
	}
	if override.Sources.EU.MaxPages > 0 {
		base.Sources.EU.MaxPages = override.Sources.EU.MaxPages
	}
	if len(override.Sources.Funders) > 0 {
		base.Sources.Funders = override.Sources.Funders
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if len(override.Heuristics.DocumentKeywords) > 0 {
		base.Heuristics.DocumentKeywords = override.Heuristics.DocumentKeywords
	}
	if len(override.Heuristics.Tags) > 0 {
		base.Heuristics.Tags = override.Heuristics.Tags
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Database:  DatabaseConfig{DSN: ""},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		Logging:   LoggingConfig{Level: "info"},
		Sources: SourcesConfig{
			Vinnova: VinnovaConfig{
				BaseURL: "https://data.vinnova.se/api/ansokningsomgangar",
				Since:   "2024-01-01",
			},
			EU: EUConfig{
				BaseURL:  "https://api.tech.ec.europa.eu/search-api/prod/rest/search",
				APIKey:   "SEDIA",
				Text:     "***",
				PageSize: 50,
				MaxPages: 10,
			},
			Funders: []FunderConfig{
				{Name: "VR", BaseURL: "https://api.vr.se/gdp_vr/utlysningar", APIKeyEnv: "VR_API_KEY"},
				{Name: "Formas", BaseURL: "https://api.formas.se/gdp_formas/utlysningar", APIKeyEnv: "FORMAS_API_KEY"},
				{Name: "Forte", BaseURL: "https://api.forte.se/gdp_forte/utlysningar", APIKeyEnv: "FORTE_API_KEY"},
			},
		},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
	}
}
