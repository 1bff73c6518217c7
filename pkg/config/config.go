package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a configuration file. An empty path yields the
// defaults, still subject to environment overrides and validation.
func Load(_ context.Context, path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and resolves the timezone.
func Validate(cfg *Config) error {
	if len(cfg.Inputs.Input) == 0 {
		return errors.New("inputs.input: at least one stream is required")
	}
	if len(cfg.Inputs.Activity) == 0 {
		return errors.New("inputs.activity: at least one stream is required")
	}

	if strings.TrimSpace(cfg.ActivityTag) == "" {
		return errors.New("activity_tag: must not be empty")
	}

	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	cfg.location = loc

	if err := cfg.Layout.FieldLayout().Validate(); err != nil {
		return fmt.Errorf("layout.%w", err)
	}

	if err := validateRender(&cfg.Render); err != nil {
		return fmt.Errorf("render.%w", err)
	}

	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func loadLocation(name string) (*time.Location, error) {
	switch name {
	case "", "UTC":
		return time.UTC, nil
	case "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown zone %q: %w", name, err)
	}
	return loc, nil
}

func validateRender(r *RenderConfig) error {
	switch r.Format {
	case "":
		r.Format = DefaultFormat
	case FormatSVG, FormatText, FormatJSON:
	default:
		return fmt.Errorf("format: invalid %q (must be svg, text, or json)", r.Format)
	}

	if r.OutputDir == "" {
		r.OutputDir = DefaultOutputDir
	}
	if r.Width <= 0 {
		return fmt.Errorf("width: must be > 0, got %d", r.Width)
	}
	if r.Height <= 0 {
		return fmt.Errorf("height: must be > 0, got %d", r.Height)
	}
	switch {
	case r.TickInterval <= 0:
		r.TickInterval = DefaultTickInterval
	case r.TickInterval < MinTickInterval:
		return fmt.Errorf("tick_interval: must be at least %s, got %s", MinTickInterval, r.TickInterval)
	}
	for i, c := range r.Palette {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("palette[%d]: empty colour", i)
		}
	}
	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("url must have a host")
	}

	switch wh.Trigger {
	case "":
		wh.Trigger = WebhookTriggerAlways
	case WebhookTriggerAlways, WebhookTriggerOnFailure, WebhookTriggerNever:
	default:
		return fmt.Errorf("invalid trigger %q (must be always, on_failure, or never)", wh.Trigger)
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands a token written as ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}
