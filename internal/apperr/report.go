package apperr

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
)

// Reporter forwards unexpected failures to an error tracker.
type Reporter interface {
	Capture(ctx context.Context, err error, tags map[string]string)
	Flush(timeout time.Duration)
}

// NopReporter drops everything. Used when no DSN is configured.
type NopReporter struct{}

func (NopReporter) Capture(context.Context, error, map[string]string) {}
func (NopReporter) Flush(time.Duration)                               {}

// SentryReporter sends every non-validation failure to Sentry.
type SentryReporter struct{}

// NewReporter initialises Sentry when dsn is non-empty, otherwise it returns
// a NopReporter.
func NewReporter(dsn, environment, release string) (Reporter, error) {
	if dsn == "" {
		return NopReporter{}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	})
	if err != nil {
		return nil, err
	}
	return SentryReporter{}, nil
}

func (SentryReporter) Capture(ctx context.Context, err error, tags map[string]string) {
	if err == nil || KindOf(err) == KindValidation {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("error_kind", string(KindOf(err)))
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		hub.CaptureException(err)
	})
}

func (SentryReporter) Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}
