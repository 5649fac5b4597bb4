package domain

import (
	"fmt"
	"strings"
	"time"
)

// Side is the direction of a posting.
type Side string

const (
	Debit  Side = "debit"
	Credit Side = "credit"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Debit {
		return Credit
	}
	return Debit
}

// AccountType classifies an account and fixes its normal balance.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// AccountTypes lists every account type in chart-of-accounts order.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeRevenue,
	AccountTypeExpense,
}

var normalBalances = map[AccountType]Side{
	AccountTypeAsset:     Debit,
	AccountTypeLiability: Credit,
	AccountTypeEquity:    Credit,
	AccountTypeRevenue:   Credit,
	AccountTypeExpense:   Debit,
}

// ParseAccountType parses a case-insensitive account type name.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := normalBalances[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidAccountType, s)
	}
	return t, nil
}

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	_, ok := normalBalances[t]
	return ok
}

// NormalBalance returns the side that increases accounts of this type.
func (t AccountType) NormalBalance() Side {
	return normalBalances[t]
}

// Account is a named, typed ledger target. It owns no amounts; amounts refer to it.
type Account struct {
	ID        string
	Name      string
	Type      AccountType
	Contra    bool
	CreatedAt time.Time
}

// NormalBalance returns the account's declared normal balance, taken from its type.
func (a *Account) NormalBalance() Side {
	return a.Type.NormalBalance()
}

// EffectiveNormalBalance is the polarity used in balance computation: the
// type's normal balance, inverted for contra accounts.
func (a *Account) EffectiveNormalBalance() Side {
	if a.Contra {
		return a.NormalBalance().Opposite()
	}
	return a.NormalBalance()
}
