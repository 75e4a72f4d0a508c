// Package client is the REST client for the DigiMonnaie backend. Types
// mirror the backend's JSON without depending on any backend package.
package client

import (
	"encoding/json"
	"strings"
	"time"
)

// Roles a managed user can be created with.
const (
	RoleClient       = "client"
	RoleDistributeur = "distributeur"
)

// User is a managed end-customer account.
type User struct {
	ID            string `json:"_id"`
	FullName      string `json:"fullname"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	AccountNumber string `json:"accountNumber"`
	CreatedAt     string `json:"createdAt"`
	Blocked       bool   `json:"blocked"`
	Role          string `json:"role"`
}

// FirstName is the part of FullName before the first space.
func (u User) FirstName() string {
	first, _, _ := strings.Cut(strings.TrimSpace(u.FullName), " ")
	return first
}

// LastName is everything in FullName after the first space.
func (u User) LastName() string {
	_, rest, _ := strings.Cut(strings.TrimSpace(u.FullName), " ")
	return rest
}

// Status renders the blocked flag.
func (u User) Status() string {
	if u.Blocked {
		return "Inactive"
	}
	return "Active"
}

// Date is the YYYY-MM-DD part of CreatedAt, or today when absent.
func (u User) Date() string {
	if d, _, ok := strings.Cut(u.CreatedAt, "T"); ok || len(d) == 10 {
		return d
	}
	return time.Now().Format(time.DateOnly)
}

// Party is one side of a transaction.
type Party struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
}

// Transaction is a ledger entry as listed by GET /transactions.
type Transaction struct {
	ID            string    `json:"_id"`
	TransactionID string    `json:"transactionId"`
	Type          string    `json:"type"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	From          *Party    `json:"from,omitempty"`
	To            *Party    `json:"to,omitempty"`
}

// Cancelled reports whether the transaction was reversed.
func (t Transaction) Cancelled() bool {
	return t.Status == "cancelled"
}

// SenderName returns the sender's name or "—".
func (t Transaction) SenderName() string {
	if t.From == nil || t.From.FullName == "" {
		return "—"
	}
	return t.From.FullName
}

// RecipientName returns the recipient's name or "—".
func (t Transaction) RecipientName() string {
	if t.To == nil || t.To.FullName == "" {
		return "—"
	}
	return t.To.FullName
}

// Admin is the operator account returned by the auth endpoints.
type Admin struct {
	ID        string  `json:"_id,omitempty"`
	Nom       string  `json:"nom"`
	Prenom    string  `json:"prenom"`
	Email     string  `json:"email"`
	Telephone string  `json:"telephone"`
	Adresse   string  `json:"adresse"`
	Photo     string  `json:"photo,omitempty"`
	Balance   float64 `json:"balance"`
}

// DisplayName joins first and last name.
func (a Admin) DisplayName() string {
	return strings.TrimSpace(a.Prenom + " " + a.Nom)
}

// LoginResult is the decoded POST /auth/login response. User is kept raw
// so it can be persisted as-is.
type LoginResult struct {
	Token  string
	UserID string
	User   json.RawMessage
}

// Attachment is a local file sent as a multipart part.
type Attachment struct {
	Name string // file name reported to the server; defaults to the base of Path
	Path string
}

// NewUser is the create-user payload. Its multipart form is declared
// field by field in FormFields.
type NewUser struct {
	FullName  string
	BirthDate string
	IDCard    string
	Phone     string
	Address   string
	Email     string
	Role      string
	Password  string
	File      *Attachment
}

// FormFields returns the non-empty text parts in wire order.
func (n NewUser) FormFields() []FormField {
	return nonEmpty([]FormField{
		{"fullname", n.FullName},
		{"dob", n.BirthDate},
		{"idCard", n.IDCard},
		{"phone", n.Phone},
		{"address", n.Address},
		{"email", n.Email},
		{"role", n.Role},
		{"password", n.Password},
	})
}

// UserUpdate is the PUT /users/:id body.
type UserUpdate struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Role     string `json:"role"`
}

// AdminUpdate is the PUT /auth/update/:id multipart payload.
type AdminUpdate struct {
	Nom       string
	Prenom    string
	Adresse   string
	Telephone string
	Photo     *Attachment
}

// FormFields returns the text parts in wire order. Unlike NewUser, empty
// values are sent so a field can be cleared.
func (a AdminUpdate) FormFields() []FormField {
	return []FormField{
		{"nom", a.Nom},
		{"prenom", a.Prenom},
		{"adresse", a.Adresse},
		{"telephone", a.Telephone},
	}
}

func nonEmpty(fields []FormField) []FormField {
	out := fields[:0]
	for _, f := range fields {
		if f.Value != "" {
			out = append(out, f)
		}
	}
	return out
}
