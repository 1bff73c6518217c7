package config

import (
	"os"
	"strings"
	"time"

	"github.com/ccollicutt/streamplot/pkg/parser"
)

// Default values for configuration.
const (
	DefaultInputStream    = "../input.stream"
	DefaultActivityStream = "../hla_output.stream"
	DefaultActivityTag    = "hla"
	DefaultTimezone       = "UTC"
	DefaultFormat         = FormatSVG
	DefaultOutputDir      = "."
	DefaultWidth          = 1200
	DefaultHeight         = 800
	DefaultTickInterval   = 10 * time.Second
	MinTickInterval       = 100 * time.Millisecond
	DefaultWebhookTimeout = 10 * time.Second
)

// Environment variable names.
const (
	EnvInput     = "STREAMPLOT_INPUT"
	EnvActivity  = "STREAMPLOT_ACTIVITY"
	EnvOutputDir = "STREAMPLOT_OUTPUT_DIR"
	EnvTimezone  = "STREAMPLOT_TIMEZONE"
)

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	layout := parser.DefaultFieldLayout()
	return &Config{
		Inputs: InputsConfig{
			Input:    []string{DefaultInputStream},
			Activity: []string{DefaultActivityStream},
		},
		CommentPrefix: parser.DefaultCommentPrefix,
		ActivityTag:   DefaultActivityTag,
		TimeOffset:    parser.DefaultTimeOffset,
		Timezone:      DefaultTimezone,
		Layout: LayoutConfig{
			Label:      layout.Label,
			InputType:  layout.InputType,
			User:       layout.User,
			InputValue: layout.InputValue,
			LastUpdate: layout.LastUpdate,
			Confidence: layout.Confidence,
		},
		Render: RenderConfig{
			Format:       DefaultFormat,
			OutputDir:    DefaultOutputDir,
			Width:        DefaultWidth,
			Height:       DefaultHeight,
			TickInterval: DefaultTickInterval,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if v := os.Getenv(EnvInput); v != "" {
		c.Inputs.Input = splitList(v)
	}
	if v := os.Getenv(EnvActivity); v != "" {
		c.Inputs.Activity = splitList(v)
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.Render.OutputDir = v
	}
	if v := os.Getenv(EnvTimezone); v != "" {
		c.Timezone = v
	}
	for i := range c.Webhooks {
		c.Webhooks[i].Token = expandEnvVar(c.Webhooks[i].Token)
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
