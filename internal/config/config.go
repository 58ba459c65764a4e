// Package config reads the runtime configuration from the environment.
package config

import (
	"log/slog"
	"net/url"

	"github.com/myrjola/huntdesk/internal/envstruct"
	"github.com/myrjola/huntdesk/internal/errors"
)

// ErrInvalid is returned when a configuration value is out of range.
var ErrInvalid = errors.NewSentinel("invalid configuration")

// Config holds every setting of the web server and the CLI.
type Config struct {
	// Addr is the address the HTTP server listens on.
	Addr string `env:"HUNTDESK_ADDR" envDefault:"localhost:4000"`
	// SqliteURL is the path of the database file or :memory:.
	SqliteURL string `env:"HUNTDESK_SQLITE_URL" envDefault:"./huntdesk.sqlite"`
	// PprofAddr is the loopback address of the pprof server. Empty disables it.
	PprofAddr string `env:"HUNTDESK_PPROF_ADDR" envDefault:"localhost:6060"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o"`

	// Crawl4AIURL is the base URL of the Crawl4AI search service. Empty selects the stub discoverer.
	Crawl4AIURL string `env:"CRAWL4AI_URL" envDefault:""`
	// DiscoveryConcurrency bounds the number of markets scanned at once.
	DiscoveryConcurrency int `env:"DISCOVERY_CONCURRENCY" envDefault:"4"`
}

// Load populates a Config with lookupEnv, which has the same signature as [os.LookupEnv]. Every problem is
// reported in the returned error.
func Load(lookupEnv func(string) (string, bool)) (*Config, error) {
	var cfg Config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return nil, errors.Wrap(err, "populate config")
	}

	var errs []error
	if cfg.OpenAIAPIKey == "" {
		errs = append(errs, errors.Wrap(ErrInvalid, "OPENAI_API_KEY must not be empty"))
	}
	if cfg.DiscoveryConcurrency < 1 {
		errs = append(errs, errors.Wrap(ErrInvalid, "DISCOVERY_CONCURRENCY must be positive",
			slog.Int("value", cfg.DiscoveryConcurrency)))
	}
	if !isAbsoluteURL(cfg.OpenAIBaseURL) {
		errs = append(errs, errors.Wrap(ErrInvalid, "OPENAI_BASE_URL must be an absolute URL",
			slog.String("value", cfg.OpenAIBaseURL)))
	}
	if cfg.Crawl4AIURL != "" && !isAbsoluteURL(cfg.Crawl4AIURL) {
		errs = append(errs, errors.Wrap(ErrInvalid, "CRAWL4AI_URL must be an absolute URL",
			slog.String("value", cfg.Crawl4AIURL)))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &cfg, nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
