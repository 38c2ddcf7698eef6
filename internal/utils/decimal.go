// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
//
// Example:
//
//	n := utils.AtoiDefault("42", 0) // returns 42
//	n = utils.AtoiDefault("", 10)   // returns 10
//	n = utils.AtoiDefault("x", 5)   // returns 5
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// IsPositiveDecimal reports whether s is a plain decimal number greater than
// zero (e.g. "0.5", "100", "12.375"). Exponent notation, signs other than a
// leading '-', and empty strings are rejected. Money-typed request fields use
// this instead of float parsing to avoid precision drift.
func IsPositiveDecimal(s string) bool {
	if s == "" {
		return false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return false
	}
	return d.IsPositive()
}

// DecimalNumber converts a validated decimal string into a json.Number so it
// marshals as a bare JSON number on the upstream wire. The value is
// canonicalized through decimal.Decimal (trailing format quirks like "1."
// are normalized); an unparseable s yields the empty Number.
func DecimalNumber(s string) json.Number {
	if s == "" {
		return ""
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ""
	}
	return json.Number(d.String())
}
