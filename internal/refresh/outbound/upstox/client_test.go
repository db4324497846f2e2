package upstox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/clock"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/goerror"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/instrument"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/pkg/otp"
	"github.com/Devpro2375/stocknotify-token-refresh/internal/refresh/entity"
	libotp "github.com/pquerna/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "GEZDGNBVGEZDGNBVGEZDGNBV"

func testCredentials() entity.Credentials {
	return entity.Credentials{
		Username:     "9876543210",
		Password:     "password",
		PinCode:      "1234",
		TOTPSecret:   testSecret,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost",
	}
}

func writeEnvelope(t *testing.T, w http.ResponseWriter, data any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    data,
	}))
}

// loginServer fakes the whole Upstox login surface on a single host.
func loginServer(t *testing.T) *httptest.Server {
	t.Helper()

	at := time.Unix(59, 0)
	wantCode, err := otp.NewTOTP(0, 0, libotp.DigitsSix).GenerateCode(testSecret, at)
	require.NoError(t, err)

	mux := http.NewServeMux()

	mux.HandleFunc(otpGeneratePath, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "9876543210", body["mobileNumber"])

		writeEnvelope(t, w, map[string]string{"validateOTPToken": "vt-1"})
	})

	mux.HandleFunc(otpVerifyPath, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, wantCode, body["otp"])
		assert.Equal(t, "vt-1", body["validateOTPToken"])

		writeEnvelope(t, w, map[string]string{"token": "sess-1"})
	})

	mux.HandleFunc(pinVerifyPath, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "1234", body["pinCode"])
		assert.Equal(t, "sess-1", body["token"])

		writeEnvelope(t, w, map[string]string{})
	})

	mux.HandleFunc(authorizePath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "code", r.URL.Query().Get("response_type"))
		assert.Equal(t, "client-id", r.URL.Query().Get("client_id"))
		assert.Equal(t, "http://localhost", r.URL.Query().Get("redirect_uri"))

		http.Redirect(w, r, "http://localhost?code=auth-code-1", http.StatusFound)
	})

	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "auth-code-1", r.PostFormValue("code"))
		assert.Equal(t, "client-id", r.PostFormValue("client_id"))
		assert.Equal(t, "client-secret", r.PostFormValue("client_secret"))
		assert.Equal(t, "authorization_code", r.PostFormValue("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(tokenResponse{
			Email:       "dev@example.com",
			Exchanges:   []string{"NSE", "BSE"},
			Products:    []string{"D", "I"},
			Broker:      "UPSTOX",
			UserID:      "ABC123",
			UserName:    "DEV PRO",
			IsActive:    true,
			AccessToken: "token-abc",
		}))
	})

	return httptest.NewServer(mux)
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()

	c, err := NewClient(Config{
		Credentials: testCredentials(),
		AuthBaseURL: srv.URL,
		APIBaseURL:  srv.URL,
		Clock:       clock.Fixed(time.Unix(59, 0)),
		Instrument:  instrument.NewNoop(),
	})
	require.NoError(t, err)

	return c
}

func TestClient_GetAccessToken(t *testing.T) {
	srv := loginServer(t)
	defer srv.Close()

	res, err := newTestClient(t, srv).GetAccessToken(context.Background())

	require.NoError(t, err)
	require.True(t, res.Success)
	require.NotNil(t, res.Data)

	assert.Equal(t, "token-abc", res.Data.AccessToken)
	assert.Equal(t, "ABC123", res.Data.UserID)
	assert.Equal(t, "DEV PRO", res.Data.UserName)
	assert.Equal(t, "dev@example.com", res.Data.Email)
	assert.Equal(t, "UPSTOX", res.Data.Broker)
	assert.Equal(t, []string{"D", "I"}, res.Data.Products)
	assert.True(t, res.Data.IsActive)
}

func TestClient_GetAccessToken_ProviderRejection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(otpGeneratePath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		//nolint:errcheck // test server
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   map[string]string{"code": "UDAPI1053", "message": "Invalid mobile number"},
		})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	res, err := newTestClient(t, srv).GetAccessToken(context.Background())

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Nil(t, res.Data)
	assert.Equal(t, "Invalid mobile number", res.Error)
}

func TestClient_GetAccessToken_EmptyTokenIsRejection(t *testing.T) {
	srv := loginServer(t)
	defer srv.Close()

	// Shadow the token endpoint with one returning no access token.
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck // test server
		json.NewEncoder(w).Encode(tokenResponse{UserID: "ABC123"})
	})
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.Config.Handler.ServeHTTP(w, r)
	}))

	shadow := httptest.NewServer(mux)
	defer shadow.Close()

	res, err := newTestClient(t, shadow).GetAccessToken(context.Background())

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "no access token")
}

func TestClient_GetAccessToken_TransportFailure(t *testing.T) {
	srv := loginServer(t)
	srv.Close() // unreachable host

	_, err := newTestClient(t, srv).GetAccessToken(context.Background())

	assert.Error(t, err)
}

func TestNewClient_RejectsUnusableSecret(t *testing.T) {
	creds := testCredentials()
	creds.TOTPSecret = "not base32!!"

	_, err := NewClient(Config{
		Credentials: creds,
		Instrument:  instrument.NewNoop(),
	})

	require.Error(t, err)

	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, goerror.TypeConfig, gerr.Type())
	assert.Equal(t, []string{"UPSTOX_TOTP_SECRET"}, gerr.Fields())
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(Config{
		Credentials: testCredentials(),
		Instrument:  instrument.NewNoop(),
	})
	require.NoError(t, err)

	assert.Equal(t, defaultAuthBaseURL, c.authBase)
	assert.Equal(t, defaultAPIBaseURL, c.apiBase)
	assert.NotNil(t, c.http.Jar)
	assert.Equal(t, requestTimeout, c.http.Timeout)
}
