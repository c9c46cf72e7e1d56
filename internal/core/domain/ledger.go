package domain

import (
	"fmt"
	"math"
	"time"
)

// Credit increases the balance by amount. A credit that would overflow the
// balance fails with ErrBalanceOverflow and leaves it untouched.
func (u *User) Credit(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("credit %d: %w", amount, ErrInvalidInput)
	}
	if amount > math.MaxInt64-u.Balance {
		return fmt.Errorf("credit %d on balance %d: %w", amount, u.Balance, ErrBalanceOverflow)
	}
	u.Balance += amount
	return nil
}

// Debit decreases the balance by amount, or fails with ErrInsufficientFunds
// leaving the balance untouched.
func (u *User) Debit(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("debit %d: %w", amount, ErrInvalidInput)
	}
	if u.Balance < amount {
		return ErrInsufficientFunds
	}
	u.Balance -= amount
	return nil
}

// CoinsFromValue converts a fractional market value into whole LimCoins.
// Fractions are always truncated toward zero (floor for the non-negative values
// accepted here); NaN, infinities and negative values are rejected.
func CoinsFromValue(value float64) (int64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, fmt.Errorf("value %v: %w", value, ErrInvalidValuation)
	}
	if value >= math.MaxInt64 {
		return 0, fmt.Errorf("value %v: %w", value, ErrInvalidValuation)
	}
	return int64(math.Floor(value)), nil
}

// LedgerEntry is a journal record of one balance change.
type LedgerEntry struct {
	UserID       string
	Delta        int64
	BalanceAfter int64
	Reason       string
	At           time.Time
}

// Ledger reasons written to the journal.
const (
	ReasonRegisterGrant = "register:grant"
	ReasonCoinsAdd      = "coins:add"
	ReasonCoinsDeduct   = "coins:deduct"
)

// LiquidationReason returns the journal reason for selling itemID to the system.
func LiquidationReason(itemID int64) string {
	return fmt.Sprintf("liquidate:item:%d", itemID)
}
