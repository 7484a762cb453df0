package errreport

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
)

// capturer is the part of *sentry.Hub the reporter needs.
type capturer interface {
	CaptureException(exception error) *sentry.EventID
}

// Reporter logs absorbed internal errors and forwards them to Sentry when enabled.
type Reporter struct {
	logger   *log.Logger
	fallback capturer
}

// New builds a Reporter. A nil hub disables Sentry capture unless the request
// context carries its own hub.
func New(logger *log.Logger, hub *sentry.Hub) *Reporter {
	if logger == nil {
		logger = log.Default()
	}
	r := &Reporter{logger: logger}
	if hub != nil {
		r.fallback = hub
	}
	return r
}

// Report logs err and captures it on the request's hub, falling back to the hub
// given to New.
func (r *Reporter) Report(ctx context.Context, err error) {
	if err == nil {
		return
	}
	r.logger.Printf("errreport: %v", err)

	var target capturer = r.fallback
	if ctx != nil {
		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			target = hub
		}
	}
	if target != nil {
		target.CaptureException(err)
	}
}

// Init configures the global Sentry client. An empty DSN leaves Sentry disabled
// and returns false.
func Init(dsn, release, environment string) (bool, error) {
	if dsn == "" {
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Release:          release,
		Environment:      environment,
		AttachStacktrace: true,
	})
	if err != nil {
		return false, fmt.Errorf("sentry init: %w", err)
	}
	return true, nil
}

// Flush waits for buffered events to be delivered.
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}
