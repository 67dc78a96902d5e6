package client

import (
	"context"
	"fmt"

	"printhub/pkg/auth"
	"printhub/pkg/model"
)

// AuthClient talks to the auth service. Its calls are unauthenticated.
type AuthClient struct {
	httpClient *HttpClient
}

func NewAuthClient(baseURL string) *AuthClient {
	return &AuthClient{
		httpClient: NewHttpClient(baseURL, nil),
	}
}

func (c *AuthClient) SignIn(ctx context.Context, email, password string) (*auth.Tokens, error) {
	return c.tokens(ctx, "/api/v1/auth/signin", model.SignInRequest{Email: email, Password: password})
}

// Refresh matches auth.RefreshFunc.
func (c *AuthClient) Refresh(ctx context.Context, refreshToken string) (*auth.Tokens, error) {
	return c.tokens(ctx, "/api/v1/auth/refresh", map[string]string{"refresh_token": refreshToken})
}

func (c *AuthClient) SignOut(ctx context.Context, refreshToken string) error {
	resp, err := c.httpClient.POST(ctx, "/api/v1/auth/signout", map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("sign out: %s", GetErrorMessage(resp))
	}
	return nil
}

func (c *AuthClient) tokens(ctx context.Context, path string, body any) (*auth.Tokens, error) {
	resp, err := c.httpClient.POST(ctx, path, body)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%s", GetErrorMessage(resp))
	}

	var tokens auth.Tokens
	if err := resp.DecodeData(&tokens); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &tokens, nil
}
