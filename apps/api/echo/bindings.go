package echoapi

import (
	"github.com/pogorelof/ai-exam/core"
	"github.com/pogorelof/ai-exam/core/user"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate(v user.Validator) error {
	r.Username = core.CleanString(r.Username, true /* lower */)
	return v.Struct(r)
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type AITokenRequest struct {
	Token string `json:"token" validate:"required"`
}

func (r *AITokenRequest) Validate(v user.Validator) error {
	r.Token = core.CleanString(r.Token)
	return v.Struct(r)
}

type AITokenResponse struct {
	Token string `json:"token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ThemeCreatedResponse struct {
	ThemeID int `json:"theme_id"`
}
