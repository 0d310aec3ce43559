// Package tokenconst contains token ledger constants shared between the
// contract, its RPC wrapper and external code.
package tokenconst

const (
	// Symbol is the ticker symbol of the token.
	Symbol = "TKN"

	// Decimals is the precision of token balances. Amounts are always
	// expressed in the smallest indivisible unit.
	Decimals = 12
)

// Failure messages thrown by the contract. Every failed operation aborts
// with one of these and leaves storage untouched.
const (
	// ErrInvalidAccount is thrown when an account identifier has a wrong
	// format.
	ErrInvalidAccount = "invalid account identifier"

	// ErrNegativeAmount is thrown when a negative amount is passed to any
	// method.
	ErrNegativeAmount = "negative amount"

	// ErrInsufficientBalance is thrown when a debit exceeds the holdings
	// of the debited account.
	ErrInsufficientBalance = "insufficient balance"

	// ErrInsufficientAllowance is thrown when a delegated debit exceeds
	// the cap granted to the delegate.
	ErrInsufficientAllowance = "insufficient allowance"

	// ErrAllowanceOverflow is thrown when an allowance would exceed the
	// maximum representable amount.
	ErrAllowanceOverflow = "allowance overflow"

	// ErrAllowanceUnderflow is thrown when an allowance decrement exceeds
	// the current cap.
	ErrAllowanceUnderflow = "allowance underflow"

	// ErrSupplyOverflow is thrown when minting would push total supply
	// past the maximum representable amount.
	ErrSupplyOverflow = "total supply overflow"
)
