package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/passclient/internal/client/models"
)

func (c *HTTPClient) usersURL() string {
	return c.apiURL + "/api/users"
}

func (c *HTTPClient) userURL(id models.ID) string {
	return c.usersURL() + "/" + url.PathEscape(id.String())
}

func (c *HTTPClient) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, http.MethodGet, c.usersURL(), token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *HTTPClient) GetUser(ctx context.Context, token string, id models.ID) (models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, c.userURL(id), token, nil, &u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (c *HTTPClient) CreateUser(ctx context.Context, token string, u models.User) (models.User, error) {
	u.ID = ""
	var created models.User
	if err := c.do(ctx, http.MethodPost, c.usersURL(), token, u, &created); err != nil {
		return models.User{}, err
	}
	return created, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, token string, id models.ID, u models.User) (models.User, error) {
	u.ID = id
	var updated models.User
	if err := c.do(ctx, http.MethodPut, c.userURL(id), token, u, &updated); err != nil {
		return models.User{}, err
	}
	return updated, nil
}

func (c *HTTPClient) DeleteUser(ctx context.Context, token string, id models.ID) error {
	return c.do(ctx, http.MethodDelete, c.userURL(id), token, nil, nil)
}
