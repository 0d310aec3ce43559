/*
Package token implements the fungible token ledger contract.

Token contract stores account balances and spending allowances. It is a
NEP-17 compatible contract, so it can be tracked and controlled by N3
compatible network monitors and wallet software.

Supply management is custodial: mint and burn operate on the contract's own
account and only the contract owner can invoke them. Tokens reach user
accounts through regular transfers out of the custodial account. Any holder
can authorize a delegate to spend a capped amount on its behalf with
setAllowance; transferFrom consumes the cap. Integrating contracts use the
push and pull shortcuts to pay out of, or collect into, their own accounts.

Account records are stored under the hash of the account identifier and are
removed as soon as they hold neither balance nor allowances, so abandoned
accounts do not accrue storage fees.

# Contract notifications

Transfer notification. This is a NEP-17 standard notification.

	Transfer:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer

AllowanceSet notification. It is produced whenever a holder changes a
delegate's spending cap and carries the resulting absolute cap.

	AllowanceSet:
	  - name: holder
	    type: Hash160
	  - name: delegate
	    type: Hash160
	  - name: amount
	    type: Integer
*/
package token

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'supply' -> int
   total amount of token units in circulation
 - 'o' -> interop.Hash160
   contract owner, fixed at deployment
 - a<SHA-256 of interop.Hash160> -> std.Serialize(Account)
   balance sheet of all accounts (here Account is a structure defined in
   current package); records with zero balance and no allowances are not
   stored

# Accounting
Contract stores information about all token holders and their delegations.
Total supply always equals the sum of stored balances.
*/
