// Package notify defines the contracts for pushing operational alerts.
//
// The main purpose is to keep the rest of the job independent from a specific
// messaging provider. The use case works with the Notifier interface; the
// concrete delivery mechanism (Telegram Bot API) is implemented elsewhere in
// this package.
package notify
