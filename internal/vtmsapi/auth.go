package vtmsapi

import (
	"context"
	"net/http"
	"strings"
)

// Login exchanges employee credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var resp envelope[LoginResult]
	err := c.do(ctx, nil, call{
		method: http.MethodPost,
		path:   "/auth/employee/login",
		body: map[string]string{
			"email":    strings.TrimSpace(email),
			"password": password,
		},
	}, &resp)
	if err != nil {
		return LoginResult{}, err
	}
	if resp.Data.Token == "" {
		return LoginResult{}, ErrTokenMissing
	}
	return resp.Data, nil
}
