package core

import (
	"fmt"
	"strings"
	"time"
)

type APIConfig struct {
	Token          string        `koanf:"token" mapstructure:"token"`
	AccountToken   string        `koanf:"account_token" mapstructure:"account_token"`
	BaseURL        string        `koanf:"base_url" mapstructure:"base_url"`
	AccountBaseURL string        `koanf:"account_base_url" mapstructure:"account_base_url"`
	UploadURL      string        `koanf:"upload_url" mapstructure:"upload_url"`
	RequestTimeout time.Duration `koanf:"request_timeout" mapstructure:"request_timeout"`
	MaxPages       int           `koanf:"max_pages" mapstructure:"max_pages"`
	PageSize       int           `koanf:"page_size" mapstructure:"page_size"`
}

type MatchConfig struct {
	MinScore int `koanf:"min_score" mapstructure:"min_score"`
}

type Config struct {
	ServiceName string      `koanf:"service_name" mapstructure:"service_name"`
	API         APIConfig   `koanf:"api" mapstructure:"api"`
	Match       MatchConfig `koanf:"match" mapstructure:"match"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "fleetbridge",
		API: APIConfig{
			BaseURL:        "https://secure.fleetio.com/api/v1",
			UploadURL:      "https://upload.fleetio.com",
			RequestTimeout: 30 * time.Second,
			MaxPages:       50,
			PageSize:       100,
		},
		Match: MatchConfig{
			MinScore: DefaultMinMatchScore,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("core: api.base_url is required")
	}
	if strings.TrimSpace(c.API.UploadURL) == "" {
		return fmt.Errorf("core: api.upload_url is required")
	}
	if c.API.MaxPages <= 0 {
		return fmt.Errorf("core: api.max_pages must be positive")
	}
	if c.API.PageSize <= 0 {
		return fmt.Errorf("core: api.page_size must be positive")
	}
	if c.Match.MinScore < 0 || c.Match.MinScore > 100 {
		return fmt.Errorf("core: match.min_score must be between 0 and 100")
	}
	return nil
}
