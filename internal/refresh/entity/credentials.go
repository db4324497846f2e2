package entity

// Credentials is the brokerage credential set resolved from the environment.
//
// The `env` tags double as the validation field names, so a failed check
// enumerates the exact environment variables that are absent. RedirectURI is
// optional and defaulted by the caller, so it carries no required rule.
type Credentials struct {
	Username     string `env:"UPSTOX_USERNAME"      validate:"required"`
	Password     string `env:"UPSTOX_PASSWORD"      validate:"required"`
	PinCode      string `env:"UPSTOX_PIN_CODE"      validate:"required"`
	TOTPSecret   string `env:"UPSTOX_TOTP_SECRET"   validate:"required,base32"`
	ClientID     string `env:"UPSTOX_CLIENT_ID"     validate:"required"`
	ClientSecret string `env:"UPSTOX_CLIENT_SECRET" validate:"required"`
	RedirectURI  string `env:"UPSTOX_REDIRECT_URI"`
}
