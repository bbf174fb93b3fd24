package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/connermo/ai4s/internal/model"
)

func (c *Client) ListUsers(ctx context.Context, opts model.FetchOpts) ([]model.User, error) {
	data, err := c.call(ctx, "list users", http.MethodGet, "/users", opts, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.User]("list users", data)
}

func (c *Client) GetUser(ctx context.Context, id int) (model.User, error) {
	var user model.User
	err := c.callJSON(ctx, "get user", http.MethodGet, fmt.Sprintf("/users/%d", id), model.FetchOpts{}, nil, &user)
	return user, err
}

func (c *Client) CreateUser(ctx context.Context, in model.UserInput) (model.User, error) {
	var user model.User
	err := c.callJSON(ctx, "create user", http.MethodPost, "/users", model.FetchOpts{}, in, &user)
	return user, err
}

func (c *Client) UpdateUser(ctx context.Context, id int, in model.UserInput) (model.User, error) {
	var user model.User
	err := c.callJSON(ctx, "update user", http.MethodPut, fmt.Sprintf("/users/%d", id), model.FetchOpts{}, in, &user)
	return user, err
}

func (c *Client) DeleteUser(ctx context.Context, id int) error {
	_, err := c.call(ctx, "delete user", http.MethodDelete, fmt.Sprintf("/users/%d", id), model.FetchOpts{}, nil)
	return err
}

func (c *Client) ChangePassword(ctx context.Context, id int, password string) error {
	body := map[string]string{"password": password}
	_, err := c.call(ctx, "change password", http.MethodPut, fmt.Sprintf("/users/%d/password", id), model.FetchOpts{}, body)
	return err
}

// Login exchanges admin credentials for a bearer token. The token is not
// installed on the client; callers decide whether to keep it.
func (c *Client) Login(ctx context.Context, username, password string) (model.LoginResponse, error) {
	var resp model.LoginResponse
	body := map[string]string{"username": username, "password": password}
	if err := c.callJSON(ctx, "login", http.MethodPost, "/admin/login", model.FetchOpts{}, body, &resp); err != nil {
		return resp, err
	}
	if resp.Token == "" {
		return resp, &DecodeError{Op: "login", Err: fmt.Errorf("response carries no token")}
	}
	return resp, nil
}
