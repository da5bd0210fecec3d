package api

import (
	"context"

	"github.com/pkg/errors"
)

// Authentication endpoints, relative to the client's base URL.
const (
	RouteLogin          = "/auth/login"
	RouteChangePassword = "/auth/change-password"
)

// AuthService calls the authentication collaborator. It is a pure
// pass-through: no state, no retries, no interpretation of the server's
// answer beyond JSON decoding.
type AuthService struct {
	client *Client
}

// NewAuthService creates an AuthService on top of client.
func NewAuthService(client *Client) (*AuthService, error) {
	if client == nil {
		return nil, errors.New("[NewAuthService] client is required")
	}
	return &AuthService{client: client}, nil
}

// Login submits credentials and returns the issued token, its lifetime, and
// the authenticated identity. A rejection surfaces as *Error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var response LoginResponse
	err := s.client.Post(ctx, RouteLogin, LoginRequest{Username: username, Password: password}, &response)
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ChangePassword rotates the authenticated user's password. A rejection
// surfaces as *Error carrying the server's reason verbatim.
func (s *AuthService) ChangePassword(ctx context.Context, currentPassword, newPassword, confirmPassword string) (*ChangePasswordResponse, error) {
	request := ChangePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
		ConfirmPassword: confirmPassword,
	}
	var response ChangePasswordResponse
	if err := s.client.Post(ctx, RouteChangePassword, request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}
