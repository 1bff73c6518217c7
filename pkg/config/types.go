// Package config provides configuration loading and validation for streamplot.
package config

import (
	"time"

	"github.com/ccollicutt/streamplot/pkg/parser"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Inputs InputsConfig `yaml:"inputs"`

	// CommentPrefix marks comment lines. Empty disables comments.
	CommentPrefix string `yaml:"comment_prefix"`

	// ActivityTag is the input type of high-level activity records.
	ActivityTag string `yaml:"activity_tag"`

	// TimeOffset is added to every parsed datime.
	TimeOffset time.Duration `yaml:"time_offset"`

	// Timezone is the IANA zone datime tuples are written in ("UTC", "Local", "Europe/Athens").
	Timezone string `yaml:"timezone"`

	Layout   LayoutConfig    `yaml:"layout"`
	Render   RenderConfig    `yaml:"render"`
	Viewer   ViewerConfig    `yaml:"viewer"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`

	// location is resolved from Timezone during validation.
	location *time.Location
}

// Location returns the resolved timezone (UTC before validation).
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// ExtractorOptions returns the parser options described by the config.
func (c *Config) ExtractorOptions() []parser.ExtractorOption {
	return []parser.ExtractorOption{
		parser.WithCommentPrefix(c.CommentPrefix),
		parser.WithTimeOffset(c.TimeOffset),
		parser.WithLocation(c.Location()),
		parser.WithFieldLayout(c.Layout.FieldLayout()),
	}
}

// InputsConfig names the two streams. Each entry may be a path or a glob.
type InputsConfig struct {
	// Input holds low-level input event streams.
	Input []string `yaml:"input"`

	// Activity holds high-level activity streams.
	Activity []string `yaml:"activity"`
}

// LayoutConfig maps record fields to token positions in a stream line.
// A label of -1 means lines carry no leading label token.
type LayoutConfig struct {
	Label      int `yaml:"label"`
	InputType  int `yaml:"input_type"`
	User       int `yaml:"user"`
	InputValue int `yaml:"input_value"`
	LastUpdate int `yaml:"last_update"`
	Confidence int `yaml:"confidence"`

	// Labels restricts the leading label token. Empty accepts any.
	Labels []string `yaml:"labels,omitempty"`
}

// FieldLayout converts the config to a parser layout.
func (l LayoutConfig) FieldLayout() parser.FieldLayout {
	return parser.FieldLayout{
		Label:      l.Label,
		InputType:  l.InputType,
		User:       l.User,
		InputValue: l.InputValue,
		LastUpdate: l.LastUpdate,
		Confidence: l.Confidence,
		Labels:     l.Labels,
	}
}

// Output formats.
const (
	FormatSVG  = "svg"
	FormatText = "text"
	FormatJSON = "json"
)

// RenderConfig controls the rendered plots.
type RenderConfig struct {
	// Format is svg, text or json.
	Format string `yaml:"format"`

	// OutputDir receives svg and json files. Text goes to stdout.
	OutputDir string `yaml:"output_dir"`

	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Palette overrides the seven plot colours (CSS colour strings).
	Palette []string `yaml:"palette,omitempty"`

	// TickInterval spaces the x ticks of the input plot.
	TickInterval time.Duration `yaml:"tick_interval"`
}

// ViewerConfig describes the program used to open rendered plots.
type ViewerConfig struct {
	// Open launches the viewer after rendering.
	Open bool `yaml:"open"`

	// Command is the viewer binary. Empty picks the platform opener.
	Command string `yaml:"command,omitempty"`

	// Args are passed before the file path.
	Args []string `yaml:"args,omitempty"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerAlways fires after every pipeline (default).
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerOnFailure fires only when a pipeline fails.
	WebhookTriggerOnFailure WebhookTrigger = "on_failure"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint that receives plot reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token. ${VAR} and $VAR are expanded once,
	// when the file is loaded.
	Token string `yaml:"token,omitempty"`

	// Trigger defaults to "always".
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout defaults to 10s.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
