package transport

import (
	"net/http"

	"github.com/Skotchmaster/accounts/internal/models"
)

type RegisterRequest struct {
	Email    string `json:"email"    form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	FullName string `json:"fullname" form:"fullname"`
}

type LoginRequest struct {
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" form:"newPassword"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" form:"oldPassword"`
	NewPassword string `json:"newPassword" form:"newPassword"`
}

type UserData struct {
	User models.PublicUser `json:"user"`
}

type LoginData struct {
	User         models.PublicUser `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}

type TokenData struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type VerifyEmailData struct {
	IsEmailVerified bool `json:"isEmailVerified"`
}

// ApiResponse is the success envelope of every endpoint.
type ApiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func OK(data any, message string) ApiResponse {
	return NewApiResponse(http.StatusOK, data, message)
}

func NewApiResponse(code int, data any, message string) ApiResponse {
	if data == nil {
		data = struct{}{}
	}
	return ApiResponse{StatusCode: code, Data: data, Message: message, Success: code < http.StatusBadRequest}
}

type ErrorResponse struct {
	StatusCode int                 `json:"statusCode"`
	Message    string              `json:"message"`
	Errors     []map[string]string `json:"errors"`
	Success    bool                `json:"success"`
}

func NewErrorResponse(code int, message string, details []map[string]string) ErrorResponse {
	if details == nil {
		details = []map[string]string{}
	}
	return ErrorResponse{StatusCode: code, Message: message, Errors: details, Success: false}
}
