// Package clock provides a tiny time abstraction.
//
// Production code should depend on the Clocker interface instead of calling
// time.Now() directly. This matters here because the persisted token record
// derives expires_at from updated_at; tests pin both with a fixed clock.
package clock
