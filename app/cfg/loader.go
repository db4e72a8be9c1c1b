package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

// MaxPostsCeiling is the hard upper bound of publishes per run.
const MaxPostsCeiling = 5

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBDriver string `long:"db-driver" env:"DB_DRIVER" default:"sqlite" choice:"sqlite" choice:"postgres" description:"Database driver"`
	DBDSN    string `long:"db-dsn" env:"DB_DSN" default:"./data/pitch-post.db" description:"Database DSN (file path for sqlite, connection URL for postgres)"`

	// Application configuration
	SourcesDir         string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing news source configuration files"`
	Port               string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey       string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	ScheduleHours      []int  `long:"schedule-hour" env:"SCHEDULE_HOURS" env-delim:"," default:"1" default:"4" default:"8" default:"12" default:"16" default:"21" description:"Hour of day (0-23) at which a run starts, may be repeated"`
	SkipStartupRun     bool   `long:"skip-startup-run" env:"SKIP_STARTUP_RUN" description:"Do not run the job once at startup"`
	MaxPostsPerRun     int    `long:"max-posts" env:"MAX_POSTS_PER_RUN" default:"5" description:"Maximum number of successful publishes per run (1-5)"`
	EventRetentionDays int    `long:"event-retention-days" env:"EVENT_RETENTION_DAYS" default:"30" description:"Days of event log to keep"`

	// Rewriter configuration
	Rewriter        string   `long:"rewriter" env:"REWRITER" default:"openrouter" choice:"openrouter" choice:"gemini" choice:"openai" description:"Generative text backend"`
	RewriterModel   string   `long:"rewriter-model" env:"REWRITER_MODEL" description:"Model name (defaults depend on the backend)"`
	RewriterBaseURL string   `long:"rewriter-base-url" env:"REWRITER_BASE_URL" description:"Override the backend API base URL"`
	RewriterKeys    []string `long:"rewriter-key" env:"REWRITER_API_KEYS" env-delim:"," description:"Fallback API keys used when none are stored in settings, may be repeated"`
	TargetLanguage  string   `long:"target-language" env:"TARGET_LANGUAGE" default:"Thai" description:"Language the articles are rewritten into"`

	// Publisher configuration
	Publisher           string `long:"publisher" env:"PUBLISHER" default:"facebook" choice:"facebook" choice:"telegram" description:"Where articles are published"`
	FacebookPageID      string `long:"facebook-page-id" env:"FACEBOOK_PAGE_ID" description:"Facebook page ID (fallback when not stored in settings)"`
	FacebookAccessToken string `long:"facebook-access-token" env:"FACEBOOK_ACCESS_TOKEN" description:"Facebook page access token (fallback when not stored in settings)"`
	GraphAPIURL         string `long:"graph-api-url" env:"GRAPH_API_URL" default:"https://graph.facebook.com/v19.0" description:"Facebook Graph API base URL"`
	TelegramBotToken    string `long:"telegram-bot-token" env:"TELEGRAM_BOT_TOKEN" description:"Telegram bot token (fallback when not stored in settings)"`
	TelegramChatID      string `long:"telegram-chat-id" env:"TELEGRAM_CHAT_ID" description:"Telegram chat ID (fallback when not stored in settings)"`

	// Application metadata
	UserAgent   string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0" description:"User agent string for HTTP requests"`
	HTTPTimeout int    `long:"http-timeout" env:"HTTP_TIMEOUT" default:"30" description:"Timeout in seconds for outbound HTTP requests"`
	Timezone    string `long:"timezone" env:"TZ" default:"Asia/Bangkok" description:"Timezone for the schedule and timestamps"`
	LogFormat   string `long:"log-format" env:"LOG_FORMAT" default:"text" choice:"text" choice:"json" description:"Log output format"`
	LogFile     string `long:"log-file" env:"LOG_FILE" description:"Also write logs to this file with rotation (optional)"`
	Debug       bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	if err := loadDotEnv(cmp.Or(os.Getenv("ENV_FILE"), ".env")); err != nil {
		return nil, err
	}

	return load(os.Args[1:])
}

func load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	for _, hour := range raw.ScheduleHours {
		if hour < 0 || hour > 23 {
			return nil, fmt.Errorf("schedule hour %d is out of range 0-23", hour)
		}
	}

	cfg := &Cfg{
		DBDriver:            raw.DBDriver,
		DBDSN:               raw.DBDSN,
		SourcesDir:          raw.SourcesDir,
		Port:                raw.Port,
		APIAccessKey:        raw.APIAccessKey,
		ScheduleHours:       raw.ScheduleHours,
		RunOnStart:          !raw.SkipStartupRun,
		MaxPostsPerRun:      clampMaxPosts(raw.MaxPostsPerRun),
		EventRetentionDays:  raw.EventRetentionDays,
		Rewriter:            raw.Rewriter,
		RewriterModel:       raw.RewriterModel,
		RewriterBaseURL:     raw.RewriterBaseURL,
		RewriterKeys:        trimAll(raw.RewriterKeys),
		TargetLanguage:      raw.TargetLanguage,
		Publisher:           raw.Publisher,
		FacebookPageID:      raw.FacebookPageID,
		FacebookAccessToken: raw.FacebookAccessToken,
		GraphAPIURL:         strings.TrimRight(raw.GraphAPIURL, "/"),
		TelegramBotToken:    raw.TelegramBotToken,
		TelegramChatID:      raw.TelegramChatID,
		UserAgent:           raw.UserAgent,
		HTTPTimeout:         raw.HTTPTimeout,
		Timezone:            raw.Timezone,
		LogFormat:           raw.LogFormat,
		LogFile:             raw.LogFile,
		Debug:               raw.Debug,
		Version:             GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

// loadDotEnv exports variables from an env file without overriding ones
// already present in the environment. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func clampMaxPosts(n int) int {
	if n < 1 || n > MaxPostsCeiling {
		return MaxPostsCeiling
	}
	return n
}

func trimAll(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
