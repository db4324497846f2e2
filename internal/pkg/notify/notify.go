package notify

import "context"

// Notifier abstracts the operational alert side channel.
//
// Alerts are best-effort: callers log delivery failures as warnings and never
// let them affect the job outcome.
type Notifier interface {
	// Notify pushes a short plain-text alert to the configured recipient.
	Notify(ctx context.Context, text string) error
}

// Noop is a Notifier that discards every alert. Used when no alert channel is
// configured.
type Noop struct{}

// NewNoop returns a Notifier that does nothing.
func NewNoop() *Noop {
	return &Noop{}
}

// Notify discards the alert.
func (*Noop) Notify(context.Context, string) error {
	return nil
}
