// Package sentry wraps the Sentry SDK for a context.Context-based
// background worker, with no HTTP framework dependency.
package sentry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/trendscout/worker/config"
)

// Init initializes the Sentry SDK with the given configuration.
func Init(cfg *config.SentryConfig) error {
	if !cfg.Enabled || cfg.DSN == "" {
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		TracesSampleRate: cfg.TracesSampleRate,
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			return scrubSensitiveData(event)
		},
		SampleRate: 1.0,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Sentry: %w", err)
	}
	return nil
}

// Close flushes any buffered events and shuts down Sentry.
func Close() {
	sentry.Flush(2 * time.Second)
}

// scrubSensitiveData removes or masks identifying data from an event
// before it leaves the process; the worker has no end-user requests, but
// platform API keys still pass through breadcrumbs.
func scrubSensitiveData(event *sentry.Event) *sentry.Event {
	if event == nil {
		return nil
	}

	if event.User.ID != "" {
		event.User.ID = hashIdentifier(event.User.ID)
		event.User.Email = ""
		event.User.Username = ""
		event.User.IPAddress = ""
	}

	filteredBreadcrumbs := make([]*sentry.Breadcrumb, 0, len(event.Breadcrumbs))
	for _, bc := range event.Breadcrumbs {
		if bc.Data != nil {
			delete(bc.Data, "api_key")
			delete(bc.Data, "token")
			delete(bc.Data, "secret")
		}
		filteredBreadcrumbs = append(filteredBreadcrumbs, bc)
	}
	event.Breadcrumbs = filteredBreadcrumbs

	return event
}

func hashIdentifier(id string) string {
	hash := sha256.Sum256([]byte(id))
	return hex.EncodeToString(hash[:8])
}

// WithRunTag attaches a pipeline run's stage and window as Sentry tags on
// ctx's hub, falling back to the current global hub when ctx carries none,
// so an error captured deep inside a repository call still surfaces which
// run produced it.
func WithRunTag(ctx context.Context, stage, window string) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("stage", stage)
		scope.SetTag("window", window)
	})
}

// CaptureException reports an error against ctx's hub, falling back to
// the current global hub when ctx carries none.
func CaptureException(ctx context.Context, err error) {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}

// CaptureMessage reports a message against ctx's hub.
func CaptureMessage(ctx context.Context, message string) {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureMessage(message)
		return
	}
	sentry.CaptureMessage(message)
}
