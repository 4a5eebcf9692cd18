package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	applog "comparador/internal/log"
)

type Config struct {
	Port         string `envconfig:"PORT" default:"8080"`
	DatasetsFile string `envconfig:"DATASETS_FILE" default:"./data/datasets.yaml"`
	DataDir      string `envconfig:"DATA_DIR" default:"./data"`
	TemplatesDir string `envconfig:"TEMPLATES_DIR" default:"./web/templates"`
	// DBDSN backs table datasets that do not name their own dsn.
	DBDSN string `envconfig:"DB_DSN" default:"comparador.db"`

	LogFile   string `envconfig:"LOG_FILE" default:"./comparador.log"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	FetchTimeout     time.Duration `envconfig:"FETCH_TIMEOUT" default:"10s"`
	FetchConcurrency int           `envconfig:"FETCH_CONCURRENCY" default:"4"`
	FetchRPS         float64       `envconfig:"FETCH_RPS" default:"5"`

	// RedisAddr enables the remote payload cache when set.
	RedisAddr string        `envconfig:"REDIS_ADDR"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	// ReloadTokenHash is a bcrypt hash; empty disables POST /api/v1/reload.
	ReloadTokenHash string `envconfig:"RELOAD_TOKEN_HASH"`
	ZeroAsMissing   bool   `envconfig:"ZERO_AS_MISSING" default:"true"`

	// LooseOfferText counts any non-empty offer text, "false" included.
	LooseOfferText bool `envconfig:"LOOSE_OFFER_TEXT" default:"false"`
}

// Load reads the environment and logs the resolved values.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if cfg.FetchConcurrency < 1 {
		cfg.FetchConcurrency = 1
	}
	applog.L().Info("config.loaded",
		zap.String("port", cfg.Port),
		zap.String("datasets_file", cfg.DatasetsFile),
		zap.String("data_dir", cfg.DataDir),
		zap.String("templates_dir", cfg.TemplatesDir),
		zap.String("log_file", cfg.LogFile),
		zap.Duration("fetch_timeout", cfg.FetchTimeout),
		zap.Int("fetch_concurrency", cfg.FetchConcurrency),
		zap.Float64("fetch_rps", cfg.FetchRPS),
		zap.Bool("cache", cfg.RedisAddr != ""),
		zap.Bool("reload_enabled", cfg.ReloadTokenHash != ""),
		zap.Bool("zero_as_missing", cfg.ZeroAsMissing),
		zap.Bool("loose_offer_text", cfg.LooseOfferText),
	)
	return cfg, nil
}
