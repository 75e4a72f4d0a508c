package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ListUsers fetches GET /users.
func (c *Client) ListUsers(ctx context.Context, page, limit int) ([]User, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	var resp struct {
		Users []User `json:"users"`
	}
	if err := c.getJSON(ctx, "/users", q, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// CreateUser sends POST /users as multipart and returns the created record.
func (c *Client) CreateUser(ctx context.Context, u NewUser) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.sendForm(ctx, http.MethodPost, "/users", u.FormFields(), filePart("file", u.File), &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// UpdateUser sends PUT /users/:id.
func (c *Client) UpdateUser(ctx context.Context, id string, upd UserUpdate) error {
	return c.sendJSON(ctx, http.MethodPut, "/users/"+url.PathEscape(id), upd, nil)
}

// DeleteUser sends DELETE /users/:id. The backend archives the account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil, "", nil)
}

// BlockUsers sends POST /users/block for every id at once.
func (c *Client) BlockUsers(ctx context.Context, ids []string, block bool) error {
	body := struct {
		IDs   []string `json:"ids"`
		Block bool     `json:"block"`
	}{IDs: ids, Block: block}
	return c.sendJSON(ctx, http.MethodPost, "/users/block", body, nil)
}
