package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/theirongolddev/finburn/internal/model"
)

// Decode parses a body previously returned by Raw into out and runs the
// struct-tag shape checks.
func Decode(r Resource, body []byte, out any) error {
	return decode(r, body, out)
}

func decode(r Resource, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, r, err)
	}
	if err := model.Validate(out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, r, err)
	}
	return nil
}

// DecodeCategoryTotals parses the category → signed amount object.
func DecodeCategoryTotals(body []byte) (map[string]float64, error) {
	var raw map[string]model.FlexFloat
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, ResourceCategoryTotals, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s: expected an object", ErrMalformed, ResourceCategoryTotals)
	}
	totals := make(map[string]float64, len(raw))
	for k, v := range raw {
		totals[k] = float64(v)
	}
	return totals, nil
}

// DecodePredictions parses the predictions array.
func DecodePredictions(body []byte) ([]model.PredictedSpend, error) {
	var preds []model.PredictedSpend
	if err := decode(ResourcePredictions, body, &preds); err != nil {
		return nil, err
	}
	if preds == nil {
		return nil, fmt.Errorf("%w: %s: expected an array", ErrMalformed, ResourcePredictions)
	}
	return preds, nil
}

// DecodeBillsIncome parses and normalizes the bills-vs-income analysis.
func DecodeBillsIncome(body []byte) (*model.BillsIncomeAnalysis, error) {
	var a model.BillsIncomeAnalysis
	if err := decode(ResourceBillsIncome, body, &a); err != nil {
		return nil, err
	}
	if !a.Normalize() {
		return nil, fmt.Errorf("%w: %s: missing monthlyIncome or totalBills", ErrMalformed, ResourceBillsIncome)
	}
	return &a, nil
}

// DecodeTransactions accepts either a bare array or {"transactions": [...]}.
func DecodeTransactions(body []byte) ([]model.Transaction, error) {
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		var txns []model.Transaction
		if err := decode(ResourceTransactions, trimmed, &txns); err != nil {
			return nil, err
		}
		return txns, nil
	}

	var wrapped model.TransactionsResponse
	if err := decode(ResourceTransactions, body, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Transactions, nil
}
