package boot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env    string `env:"ENV,default=dev"`
	UIDir  string `env:"UI_DIR,default=ui"`
	Server struct {
		Port        string `env:"PORT,default=8080"`
		MetricsPort string `env:"METRICS_PORT,default=8081"`
		Origins     string `env:"ALLOWED_ORIGINS,default=*"`
		BodyLimit   string `env:"BODY_LIMIT,default=10M"`
		// TrustedProxies lists CIDR ranges whose X-Forwarded-For is believed.
		// Empty means client addresses come from the TCP peer only.
		TrustedProxies []string `env:"TRUSTED_PROXIES"`
	}
	// Groups maps group id to a base64 encoded bcrypt hash, e.g.
	// GROUPS=team:JDJhJDEwJD...,ops:JDJhJDEwJD...
	Groups map[string]string `env:"GROUPS,required"`
	Store  struct {
		Backend       string `env:"STORE_BACKEND,default=memory"`
		WelcomeAuthor string `env:"WELCOME_AUTHOR,default=ChatBot"`
		WelcomeText   string `env:"WELCOME_TEXT,default=bhook++"`
	}
	Ingest struct {
		AttachmentMaxBytes int64    `env:"ATTACHMENT_MAX_BYTES,default=5242880"`
		CensoredWords      []string `env:"CENSORED_WORDS"`
	}
	Access struct {
		MaxFailures   int           `env:"ACCESS_MAX_FAILURES,default=10"`
		FailureWindow time.Duration `env:"ACCESS_FAILURE_WINDOW,default=5m"`
	}
	StreamInterval time.Duration `env:"STREAM_INTERVAL,default=2s"`
	TraceEndpoint  string        `env:"TRACE_ENDPOINT"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}
	config := &Config{}
	if err := envconfig.Process(context.Background(), config); err != nil {
		return nil, fmt.Errorf("parsing env vars: %w", err)
	}
	if config.Access.MaxFailures > 0 && config.Access.FailureWindow <= 0 {
		return nil, fmt.Errorf("ACCESS_FAILURE_WINDOW must be positive, got %s", config.Access.FailureWindow)
	}
	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "prod"
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "dev"
}

func (c *Config) TracingEnabled() bool {
	return c.TraceEndpoint != ""
}
