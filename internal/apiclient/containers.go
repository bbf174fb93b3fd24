package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/connermo/ai4s/internal/model"
)

func (c *Client) ListContainers(ctx context.Context, opts model.FetchOpts) ([]model.Container, error) {
	data, err := c.call(ctx, "list containers", http.MethodGet, "/containers", opts, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.Container]("list containers", data)
}

func (c *Client) UserContainer(ctx context.Context, userID int) (model.UserContainer, error) {
	var uc model.UserContainer
	err := c.callJSON(ctx, "user container", http.MethodGet, fmt.Sprintf("/users/%d/container", userID), model.FetchOpts{}, nil, &uc)
	return uc, err
}

func (c *Client) CreateContainer(ctx context.Context, in model.ContainerInput) (model.Container, error) {
	var ct model.Container
	err := c.callJSON(ctx, "create container", http.MethodPost, "/containers", model.FetchOpts{}, in, &ct)
	return ct, err
}

func (c *Client) StartContainer(ctx context.Context, id string) error {
	_, err := c.call(ctx, "start container", http.MethodPost, containerPath(id, "start"), model.FetchOpts{}, nil)
	return err
}

func (c *Client) StopContainer(ctx context.Context, id string) error {
	_, err := c.call(ctx, "stop container", http.MethodPost, containerPath(id, "stop"), model.FetchOpts{}, nil)
	return err
}

func (c *Client) DeleteContainer(ctx context.Context, id string) error {
	_, err := c.call(ctx, "delete container", http.MethodDelete, containerPath(id, ""), model.FetchOpts{}, nil)
	return err
}

func (c *Client) ResetContainerPassword(ctx context.Context, id, password string) error {
	body := map[string]string{"password": password}
	_, err := c.call(ctx, "reset container password", http.MethodPut, containerPath(id, "reset-password"), model.FetchOpts{}, body)
	return err
}

func containerPath(id, action string) string {
	p := "/containers/" + url.PathEscape(id)
	if action != "" {
		p += "/" + action
	}
	return p
}
