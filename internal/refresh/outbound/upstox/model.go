package upstox

import (
	"encoding/json"

	"github.com/Devpro2375/stocknotify-token-refresh/internal/refresh/entity"
)

// envelope is the response wrapper used by the Upstox login endpoints.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) text() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

type otpGenerateData struct {
	ValidateOTPToken string `json:"validateOTPToken"`
}

type otpVerifyData struct {
	Token string `json:"token"`
}

// tokenResponse is the payload of the authorization-code exchange.
type tokenResponse struct {
	Email         string   `json:"email"`
	Exchanges     []string `json:"exchanges"`
	Products      []string `json:"products"`
	Broker        string   `json:"broker"`
	UserID        string   `json:"user_id"`
	UserName      string   `json:"user_name"`
	OrderTypes    []string `json:"order_types"`
	UserType      string   `json:"user_type"`
	POA           bool     `json:"poa"`
	IsActive      bool     `json:"is_active"`
	AccessToken   string   `json:"access_token"`
	ExtendedToken string   `json:"extended_token"`
}

func (t tokenResponse) grant() *entity.TokenGrant {
	return &entity.TokenGrant{
		AccessToken: t.AccessToken,
		UserID:      t.UserID,
		UserName:    t.UserName,
		Email:       t.Email,
		Broker:      t.Broker,
		Products:    t.Products,
		Exchanges:   t.Exchanges,
		IsActive:    t.IsActive,
	}
}
