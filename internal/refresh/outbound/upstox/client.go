package upstox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/clock"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/goerror"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/instrument"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/otp"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/refresh/entity"
	libotp "github.com/pquerna/otp"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultAuthBaseURL = "https://service.upstox.com"
	defaultAPIBaseURL  = "https://api.upstox.com"

	// DefaultRedirectURI matches the value registered for headless refresh
	// apps; the authorize step never actually navigates to it.
	DefaultRedirectURI = "http://localhost"

	requestTimeout = 15 * time.Second

	otpGeneratePath = "/login/open/v6/auth/1fa/otp/generate"
	otpVerifyPath   = "/login/open/v6/auth/1fa/otp/verify"
	pinVerifyPath   = "/login/open/v6/auth/2fa/pin"
	authorizePath   = "/v2/login/authorization/dialog"
	tokenPath       = "/v2/login/authorization/token"
)

// rejectionError marks a response where the provider itself declined the
// login, as opposed to a transport or server failure.
type rejectionError struct {
	msg string
}

func (e *rejectionError) Error() string {
	if e.msg == "" {
		return "authentication rejected"
	}
	return e.msg
}

// Config configures the Upstox client.
type Config struct {
	// Credentials is the full brokerage credential set.
	Credentials entity.Credentials
	// AuthBaseURL overrides the login service host, for tests.
	AuthBaseURL string
	// APIBaseURL overrides the API host, for tests.
	APIBaseURL string
	// HTTPClient overrides the HTTP client, for tests.
	HTTPClient *http.Client
	// OTP computes the TOTP second factor; defaulted when nil.
	OTP otp.OTP
	// Clock supplies the TOTP reference time; defaulted when nil.
	Clock clock.Clocker
	// Instrument provides tracing; required.
	Instrument instrument.Instrumentation
}

// Client drives the Upstox TOTP login flow and the authorization-code
// exchange that yields the access token.
type Client struct {
	creds    entity.Credentials
	authBase string
	apiBase  string
	http     *http.Client
	otp      otp.OTP
	clock    clock.Clocker
	ins      instrument.Instrumentation
}

// NewClient validates the configuration and builds a client holding an
// authenticated session cookie jar. Construction is attempted once per run;
// a configuration error here fails the job without retry.
func NewClient(cfg Config) (*Client, error) {
	c := &Client{
		creds:    cfg.Credentials,
		authBase: strings.TrimRight(cfg.AuthBaseURL, "/"),
		apiBase:  strings.TrimRight(cfg.APIBaseURL, "/"),
		http:     cfg.HTTPClient,
		otp:      cfg.OTP,
		clock:    cfg.Clock,
		ins:      cfg.Instrument,
	}

	if c.authBase == "" {
		c.authBase = defaultAuthBaseURL
	}
	if c.apiBase == "" {
		c.apiBase = defaultAPIBaseURL
	}
	if c.creds.RedirectURI == "" {
		c.creds.RedirectURI = DefaultRedirectURI
	}
	if c.otp == nil {
		c.otp = otp.NewTOTP(0, 0, libotp.DigitsSix)
	}
	if c.clock == nil {
		c.clock = clock.New()
	}
	if c.ins == nil {
		c.ins = instrument.NewNoop()
	}

	// The secret must produce a code now, or every run would fail at the
	// verify step with a confusing provider error.
	if _, err := c.otp.GenerateCode(c.creds.TOTPSecret, c.clock.Now()); err != nil {
		return nil, goerror.NewConfig(
			fmt.Sprintf("UPSTOX_TOTP_SECRET is not a usable TOTP secret: %v", err),
			"UPSTOX_TOTP_SECRET",
		)
	}

	if c.http == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, goerror.NewServer(err)
		}

		c.http = &http.Client{
			Timeout: requestTimeout,
			Jar:     jar,
			// The authorize step ends in a redirect to the registered URI;
			// the code is read from the Location header, not followed.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}

	return c, nil
}

// GetAccessToken runs the full login flow once:
// OTP generate → TOTP verify → PIN (2FA) → authorize → code exchange.
//
// A provider rejection at any step yields a TokenResult with Success=false
// and the provider's message; transport and server failures yield an error.
func (c *Client) GetAccessToken(ctx context.Context) (res *entity.TokenResult, err error) {
	ctx, span := c.ins.Tracer("refresh.outbound.upstox").Start(ctx, "GetAccessToken")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	grant, err := c.login(ctx, span)

	var rejected *rejectionError
	if errors.As(err, &rejected) {
		return &entity.TokenResult{Success: false, Error: rejected.Error()}, nil
	}
	if err != nil {
		return nil, err
	}

	return &entity.TokenResult{Success: true, Data: grant}, nil
}

func (c *Client) login(ctx context.Context, span trace.Span) (*entity.TokenGrant, error) {
	otpToken, err := c.generateOTP(ctx)
	if err != nil {
		return nil, err
	}
	span.AddEvent("otp generated")

	sessionToken, err := c.verifyTOTP(ctx, otpToken)
	if err != nil {
		return nil, err
	}
	span.AddEvent("totp verified")

	if err := c.submitPIN(ctx, sessionToken); err != nil {
		return nil, err
	}
	span.AddEvent("pin accepted")

	authCode, err := c.authorize(ctx)
	if err != nil {
		return nil, err
	}
	span.AddEvent("authorization code issued")

	return c.exchangeCode(ctx, authCode)
}

func (c *Client) generateOTP(ctx context.Context) (string, error) {
	data, err := c.postJSON(ctx, c.authBase+otpGeneratePath, map[string]string{
		"mobileNumber": c.creds.Username,
	})
	if err != nil {
		return "", err
	}

	var out otpGenerateData
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode otp generate response: %w", err)
	}
	if out.ValidateOTPToken == "" {
		return "", &rejectionError{msg: "otp generate response carried no validation token"}
	}

	return out.ValidateOTPToken, nil
}

func (c *Client) verifyTOTP(ctx context.Context, otpToken string) (string, error) {
	code, err := c.otp.GenerateCode(c.creds.TOTPSecret, c.clock.Now())
	if err != nil {
		return "", err
	}

	data, err := c.postJSON(ctx, c.authBase+otpVerifyPath, map[string]string{
		"otp":              code,
		"validateOTPToken": otpToken,
	})
	if err != nil {
		return "", err
	}

	var out otpVerifyData
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode otp verify response: %w", err)
	}
	if out.Token == "" {
		return "", &rejectionError{msg: "totp verification returned no session token"}
	}

	return out.Token, nil
}

func (c *Client) submitPIN(ctx context.Context, sessionToken string) error {
	_, err := c.postJSON(ctx, c.authBase+pinVerifyPath, map[string]string{
		"pinCode": c.creds.PinCode,
		"token":   sessionToken,
	})

	return err
}

// authorize performs the OAuth dialog request. With an authenticated session
// the server answers with a redirect to the registered URI carrying the
// one-time authorization code; the redirect is inspected, never followed.
func (c *Client) authorize(ctx context.Context) (string, error) {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.creds.ClientID)
	q.Set("redirect_uri", c.creds.RedirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+authorizePath+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusFound && resp.StatusCode != http.StatusSeeOther {
		return "", &rejectionError{msg: fmt.Sprintf("authorization dialog did not redirect (status %d)", resp.StatusCode)}
	}

	loc, err := resp.Location()
	if err != nil {
		return "", &rejectionError{msg: "authorization redirect carried no location"}
	}

	code := loc.Query().Get("code")
	if code == "" {
		return "", &rejectionError{msg: "authorization redirect carried no code"}
	}

	return code, nil
}

func (c *Client) exchangeCode(ctx context.Context, authCode string) (*entity.TokenGrant, error) {
	form := url.Values{}
	form.Set("code", authCode)
	form.Set("client_id", c.creds.ClientID)
	form.Set("client_secret", c.creds.ClientSecret)
	form.Set("redirect_uri", c.creds.RedirectURI)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &rejectionError{msg: rejectionText(body, resp.StatusCode)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, &rejectionError{msg: "token response carried no access token"}
	}

	return tr.grant(), nil
}

// postJSON posts a JSON body to a login endpoint and unwraps the success
// envelope, translating provider declines into rejectionError.
func (c *Client) postJSON(ctx context.Context, endpoint string, payload any) (json.RawMessage, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &rejectionError{msg: fmt.Sprintf("login endpoint returned status %d", resp.StatusCode)}
		}
		return nil, fmt.Errorf("decode login response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !env.Success {
		return nil, &rejectionError{msg: rejectionText(body, resp.StatusCode)}
	}

	return env.Data, nil
}

func rejectionText(body []byte, status int) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		if msg := env.Error.text(); msg != "" {
			return msg
		}
	}

	return fmt.Sprintf("authentication rejected (status %d)", status)
}

func drainAndClose(body io.ReadCloser) {
	//nolint:errcheck // drain so the connection can be reused
	io.Copy(io.Discard, body)
	//nolint:errcheck
	body.Close()
}
