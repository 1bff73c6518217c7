package webhook

import (
	"context"
	"log/slog"
	"time"

	"github.com/ccollicutt/streamplot/pkg/output"
)

// Target is a configured webhook endpoint.
type Target struct {
	Name    string
	URL     string
	Token   string
	Trigger string
	Timeout time.Duration
}

// Result pairs a target with the response it produced.
type Result struct {
	Target   Target
	Response *Response
}

// Notify sends report to every target whose trigger fires, one at a time.
// Failures are logged and returned; they never abort the remaining targets.
func (c *Client) Notify(ctx context.Context, report *output.Report, targets []Target, logger *slog.Logger) []Result {
	if logger == nil {
		logger = slog.Default()
	}

	var results []Result
	for _, t := range targets {
		if !ShouldSend(t.Trigger, report) {
			continue
		}

		resp := c.Send(ctx, report, SendOptions{URL: t.URL, Token: t.Token, Timeout: t.Timeout})
		results = append(results, Result{Target: t, Response: resp})

		name := t.Name
		if name == "" {
			name = t.URL
		}
		if resp.Success() {
			logger.Debug("webhook sent", "webhook", name, "status", resp.StatusCode, "duration", resp.Duration)
		} else {
			logger.Warn("webhook failed", "webhook", name, "error", resp.Error)
		}
	}
	return results
}
