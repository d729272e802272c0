package config

import (
	"time"

	"dealflow-analyst/internal/entity"
	"dealflow-analyst/pkg/config"
)

// Engine holds the reconciliation and note-generation policy knobs.
type Engine struct {
	// ConfidenceMargin is how much a candidate's confidence must exceed the
	// recorded confidence to replace a set field. Zero means strictly greater.
	ConfidenceMargin float64 `mapstructure:"confidence_margin"`

	// MaterialFields are the field names whose change triggers a new analyst
	// note. Empty uses entity.DefaultMaterialFields.
	MaterialFields []string `mapstructure:"material_fields"`

	ExtractionMaxAttempts  int           `mapstructure:"extraction_max_attempts"`
	ExtractionRetryBackoff time.Duration `mapstructure:"extraction_retry_backoff"`
	ExtractionTimeout      time.Duration `mapstructure:"extraction_timeout"`
	GenerationTimeout      time.Duration `mapstructure:"generation_timeout"`

	// NoteRecentDocuments is how many of the newest raw documents accompany
	// the company snapshot into note generation.
	NoteRecentDocuments int `mapstructure:"note_recent_documents"`

	CompanyCacheTTL time.Duration `mapstructure:"company_cache_ttl"`

	// PendingSweepSchedule is a cron expression for re-queueing documents
	// stuck in pending (crash recovery). PendingSweepAge is how long a
	// document must sit in pending before the sweeper picks it up.
	PendingSweepSchedule string        `mapstructure:"pending_sweep_schedule"`
	PendingSweepAge      time.Duration `mapstructure:"pending_sweep_age"`

	RedisStreamDocumentTimeout  time.Duration `mapstructure:"redis_stream_document_timeout"`
	RedisStreamNoteRetryTimeout time.Duration `mapstructure:"redis_stream_note_retry_timeout"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// AI holds configuration for AI providers.
type AI struct {
	Provider string `mapstructure:"provider"`
}

// Telegram holds configuration for the optional note notifier.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the analyst service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	API      config.API      `mapstructure:"api"`
	Engine   Engine          `mapstructure:"engine"`
	Gemini   Gemini          `mapstructure:"gemini"`
	AI       AI              `mapstructure:"ai"`
	Telegram Telegram        `mapstructure:"telegram"`
}

// Load loads the analyst service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	e := &cfg.Engine
	if len(e.MaterialFields) == 0 {
		e.MaterialFields = entity.DefaultMaterialFields
	}
	if e.ExtractionMaxAttempts <= 0 {
		e.ExtractionMaxAttempts = 3
	}
	if e.ExtractionRetryBackoff <= 0 {
		e.ExtractionRetryBackoff = 2 * time.Second
	}
	if e.ExtractionTimeout <= 0 {
		e.ExtractionTimeout = 90 * time.Second
	}
	if e.GenerationTimeout <= 0 {
		e.GenerationTimeout = 120 * time.Second
	}
	if e.NoteRecentDocuments <= 0 {
		e.NoteRecentDocuments = 5
	}
	if e.CompanyCacheTTL <= 0 {
		e.CompanyCacheTTL = time.Minute
	}
	if e.PendingSweepSchedule == "" {
		e.PendingSweepSchedule = "*/5 * * * *"
	}
	if e.PendingSweepAge <= 0 {
		e.PendingSweepAge = 10 * time.Minute
	}
	if e.RedisStreamDocumentTimeout <= 0 {
		e.RedisStreamDocumentTimeout = 5 * time.Minute
	}
	if e.RedisStreamNoteRetryTimeout <= 0 {
		e.RedisStreamNoteRetryTimeout = 3 * time.Minute
	}
}
