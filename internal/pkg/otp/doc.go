// Package otp provides helpers for generating and validating time-based
// one-time passwords (TOTP).
//
// The refresh job uses it to compute the second authentication factor during
// the brokerage login flow; the probe utility uses it to print the current
// code for visual comparison against an authenticator app.
package otp
