package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ListTransactions fetches GET /transactions. The backend answers either
// {"transactions": [...]} or a bare array; both are accepted.
func (c *Client) ListTransactions(ctx context.Context) ([]Transaction, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, "/transactions", nil, &raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	var txs []Transaction
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &txs); err != nil {
			return nil, fmt.Errorf("decoding transactions: %w", err)
		}
		return txs, nil
	}
	var wrapped struct {
		Transactions []Transaction `json:"transactions"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decoding transactions: %w", err)
	}
	return wrapped.Transactions, nil
}

// CancelTransaction sends POST /transactions/cancel and returns the
// server's confirmation message.
func (c *Client) CancelTransaction(ctx context.Context, transactionID, reason string) (string, error) {
	body := map[string]string{"transactionId": transactionID, "motif": reason}
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/transactions/cancel", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Deposit sends POST /transactions/deposit and returns the server's
// confirmation message.
func (c *Client) Deposit(ctx context.Context, accountNumber string, amount float64) (string, error) {
	body := struct {
		AccountNumber string  `json:"accountNumber"`
		Amount        float64 `json:"amount"`
	}{accountNumber, amount}
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/transactions/deposit", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
