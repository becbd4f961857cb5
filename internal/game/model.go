// Package game holds the shared player state and the result model that every
// player-initiated operation reports through.
package game

import (
	"errors"

	"github.com/dustin/go-humanize"
)

var (
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrSymbolNotFound       = errors.New("symbol not found")
	ErrLoanNotFound         = errors.New("loan not found")
	ErrListingNotFound      = errors.New("listing not found")
	ErrNotEligible          = errors.New("not eligible")
	ErrCapExceeded          = errors.New("loan cap exceeded")
)

// Code identifies why an operation was declined. Empty on success.
type Code string

const (
	CodeInvalidAmount        Code = "invalid_amount"
	CodeInsufficientFunds    Code = "insufficient_funds"
	CodeInsufficientHoldings Code = "insufficient_holdings"
	CodeSymbolNotFound       Code = "symbol_not_found"
	CodeLoanNotFound         Code = "loan_not_found"
	CodeListingNotFound      Code = "listing_not_found"
	CodeNotEligible          Code = "not_eligible"
	CodeCapExceeded          Code = "cap_exceeded"
)

var errCodes = map[error]Code{
	ErrInvalidAmount:        CodeInvalidAmount,
	ErrInsufficientFunds:    CodeInsufficientFunds,
	ErrInsufficientHoldings: CodeInsufficientHoldings,
	ErrSymbolNotFound:       CodeSymbolNotFound,
	ErrLoanNotFound:         CodeLoanNotFound,
	ErrListingNotFound:      CodeListingNotFound,
	ErrNotEligible:          CodeNotEligible,
	ErrCapExceeded:          CodeCapExceeded,
}

// CodeFor maps a sentinel error to its wire code.
func CodeFor(err error) Code {
	for e, c := range errCodes {
		if errors.Is(err, e) {
			return c
		}
	}
	return ""
}

// Result is what every mutating player operation returns. Declined operations
// are not failures of the program, so they never surface as Go errors: the
// caller checks Success and shows Message to the player.
type Result struct {
	Success bool   `json:"success"`
	Code    Code   `json:"code,omitempty"`
	Message string `json:"message"`
}

// OK builds a successful result with a display message.
func OK(message string) Result {
	return Result{Success: true, Message: message}
}

// Declined builds a failed result from a sentinel error plus a display message.
func Declined(err error, message string) Result {
	return Result{Success: false, Code: CodeFor(err), Message: message}
}

// FormatEUR renders a currency amount for player-facing messages.
func FormatEUR(v float64) string {
	return humanize.CommafWithDigits(v, 2) + " €"
}
