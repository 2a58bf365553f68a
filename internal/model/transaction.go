// Package model defines the analytics payloads exchanged with the finance backend.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// dateLayouts are tried in order when decoding a Date.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Date is a timestamp that accepts both RFC 3339 and bare YYYY-MM-DD values.
type Date struct {
	time.Time
}

// NewDate wraps t.
func NewDate(t time.Time) Date { return Date{Time: t} }

// ParseDate parses s using the accepted layouts.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, fmt.Errorf("unrecognized date %q", s)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.RFC3339))
}

// MarshalYAML renders the date as an RFC 3339 string.
func (d Date) MarshalYAML() (any, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Format(time.RFC3339), nil
}

// Transaction is a single posted account transaction. Negative amounts are spend.
type Transaction struct {
	TransactionID string  `json:"transaction_id" yaml:"transaction_id"`
	AccountID     string  `json:"account_id" yaml:"account_id"`
	Date          Date    `json:"date" yaml:"date"`
	Amount        float64 `json:"amount" yaml:"amount" validate:"finite"`
	Category      string  `json:"category" yaml:"category"`
	Merchant      string  `json:"merchant" yaml:"merchant"`
	Location      string  `json:"location,omitempty" yaml:"location,omitempty"`
	Description   string  `json:"description,omitempty" yaml:"description,omitempty"`
	Status        string  `json:"status,omitempty" yaml:"status,omitempty"`
}

// TransactionsResponse wraps the transactions endpoint payload.
type TransactionsResponse struct {
	Transactions []Transaction `json:"transactions" validate:"required,dive"`
}

// Balance is an account balance in the account currency.
type Balance struct {
	Current   float64 `json:"current"`
	Available float64 `json:"available"`
	Currency  string  `json:"currency"`
}

// BankDetails identifies the institution holding the account.
type BankDetails struct {
	BankName      string `json:"bank_name"`
	RoutingNumber string `json:"routing_number"`
	Branch        string `json:"branch"`
}

// User is the account holder profile.
type User struct {
	AccountID     string      `json:"account_id" validate:"required"`
	AccountName   string      `json:"account_name"`
	AccountType   string      `json:"account_type"`
	AccountNumber string      `json:"account_number"`
	Balance       Balance     `json:"balance"`
	OwnerName     string      `json:"owner_name"`
	BankDetails   BankDetails `json:"bank_details"`
}
