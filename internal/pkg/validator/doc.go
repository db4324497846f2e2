// Package validator provides a small validation abstraction for configuration
// and domain structs.
//
// Business code should depend on the Validator interface so validation can be
// shared and tested consistently. The concrete implementation wraps
// go-playground/validator v10 and names failed fields after their `env` tag,
// which lets the refresh job report exactly which environment variables are
// missing.
package validator
