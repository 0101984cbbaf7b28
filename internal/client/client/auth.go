package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/passclient/internal/client/models"
)

func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, c.authURL+"/api/auth/register", "", req, &resp); err != nil {
		return models.AuthResponse{}, err
	}
	return resp, nil
}

func (c *HTTPClient) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, c.authURL+"/api/auth/login", "", req, &resp); err != nil {
		return models.AuthResponse{}, err
	}
	return resp, nil
}
