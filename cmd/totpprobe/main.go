// Command totpprobe prints the current TOTP code for the configured secret.
// It exists to verify a secret locally before wiring it into the cron job.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/clock"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/otp"
	libOTP "github.com/pquerna/otp"
)

// fallbackSecret lets the probe run without any environment setup.
const fallbackSecret = "YEGAMEM5RFLC6OB7B2VXF53J3H2SY7CS"

const totpPeriod = 30 * time.Second

func main() {
	secret := os.Getenv("UPSTOX_TOTP_SECRET")
	if secret == "" {
		secret = fallbackSecret
		fmt.Println("UPSTOX_TOTP_SECRET not set, using built-in test secret")
	}

	now := clock.New().Now()

	code, err := otp.NewTOTP(0, 0, libOTP.DigitsSix).GenerateCode(secret, now)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to generate TOTP code:", err)
		fmt.Fprintln(os.Stderr, "the secret must be base32 (A-Z, 2-7, optional = padding)")
		os.Exit(1)
	}

	remaining := totpPeriod - time.Duration(now.Unix()%int64(totpPeriod.Seconds()))*time.Second

	fmt.Println("==============================")
	fmt.Println("TOTP code:", code)
	fmt.Printf("valid for: %ds\n", int(remaining.Seconds()))
	fmt.Println("==============================")
	fmt.Println("compare this code with your authenticator app")
}
