package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// Login sends POST /auth/login.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var resp struct {
		Token string          `json:"token"`
		User  json.RawMessage `json:"user"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, errors.New("login response carried no token")
	}

	var ident struct {
		ID    string `json:"id"`
		Mongo string `json:"_id"`
	}
	if len(resp.User) > 0 {
		if err := json.Unmarshal(resp.User, &ident); err != nil {
			return nil, fmt.Errorf("decoding login user: %w", err)
		}
	}
	id := ident.ID
	if id == "" {
		id = ident.Mongo
	}
	return &LoginResult{Token: resp.Token, UserID: id, User: resp.User}, nil
}

// Me fetches GET /auth/me, the logged-in admin including balance.
func (c *Client) Me(ctx context.Context) (*Admin, error) {
	var a Admin
	if err := c.getJSON(ctx, "/auth/me", nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Admin fetches GET /auth/admin/:id.
func (c *Client) Admin(ctx context.Context, id string) (*Admin, error) {
	var a Admin
	if err := c.getJSON(ctx, "/auth/admin/"+url.PathEscape(id), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateAdmin sends PUT /auth/update/:id as multipart, with the photo
// part when one is attached.
func (c *Client) UpdateAdmin(ctx context.Context, id string, upd AdminUpdate) (*Admin, error) {
	var resp struct {
		Admin Admin `json:"admin"`
	}
	err := c.sendForm(ctx, http.MethodPut, "/auth/update/"+url.PathEscape(id),
		upd.FormFields(), filePart("photo", upd.Photo), &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Admin, nil
}
