package token

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/crypto"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/token-contract/common"
	"github.com/nspcc-dev/token-contract/contracts/token/tokenconst"
)

// Account stores the state of a single ledger account.
type Account struct {
	// Active balance in the smallest units of the token.
	Balance int
	// Allowances lists the spending caps granted by the account holder,
	// one entry per hashed delegate identifier. A cap of zero is never
	// stored, it is expressed by entry absence. NeoVM map access throws
	// on a missing key, so the caps are kept as a scanned entry list.
	Allowances []allowanceEntry
}

// allowanceEntry is the spending cap of a single delegate.
type allowanceEntry struct {
	// Delegate is the content hash of the delegate identifier.
	Delegate string
	// Cap is the remaining amount the delegate may spend.
	Cap int
}

// newAccount returns the state of a not yet stored account. Reading an
// unknown identifier yields this value instead of an error, so account
// existence is never state by itself.
func newAccount() Account {
	return Account{
		Balance:    0,
		Allowances: []allowanceEntry{},
	}
}

// isEmpty reports whether acc holds nothing worth paying storage fees for.
func (acc Account) isEmpty() bool {
	return acc.Balance == 0 && len(acc.Allowances) == 0
}

// allowance returns the cap granted to the hashed delegate key, zero when
// no entry exists.
func (acc Account) allowance(key string) int {
	for i := 0; i < len(acc.Allowances); i++ {
		if acc.Allowances[i].Delegate == key {
			return acc.Allowances[i].Cap
		}
	}

	return 0
}

// withAllowance returns acc with the hashed delegate's cap set to amount.
// Zero amount removes the entry.
func (acc Account) withAllowance(key string, amount int) Account {
	res := []allowanceEntry{}
	for i := 0; i < len(acc.Allowances); i++ {
		e := acc.Allowances[i]
		if e.Delegate != key {
			res = append(res, e)
		}
	}
	if amount > 0 {
		res = append(res, allowanceEntry{Delegate: key, Cap: amount})
	}

	acc.Allowances = res
	return acc
}

// validateAccount panics if id is not a valid account identifier.
func validateAccount(id interop.Hash160) {
	if len(id) != interop.Hash160Len {
		panic(tokenconst.ErrInvalidAccount)
	}
}

// accountKey derives the storage key of an account record. Identifiers are
// never used as keys directly, only their fixed-size content hash.
func accountKey(id interop.Hash160) []byte {
	return append([]byte{accPrefix}, crypto.Sha256(id)...)
}

// delegateKey derives the allowance entry key of a delegate identifier.
func delegateKey(delegate interop.Hash160) string {
	return string(crypto.Sha256(delegate))
}

// getAccount reads the account record of id. A record that was never stored
// or was already reclaimed comes back as the zero-balance default.
func getAccount(ctx storage.Context, id interop.Hash160) Account {
	validateAccount(id)

	data := storage.Get(ctx, accountKey(id))
	if data != nil {
		return std.Deserialize(data.([]byte)).(Account)
	}

	return newAccount()
}

// setAccount writes the account record of id back to storage. Empty records
// are removed instead of written: an account with no balance and no
// allowances is indistinguishable from a missing one, so keeping it around
// only accrues storage fees.
func setAccount(ctx storage.Context, id interop.Hash160, acc Account) {
	validateAccount(id)

	key := accountKey(id)
	if acc.isEmpty() {
		storage.Delete(ctx, key)
		return
	}

	common.SetSerialized(ctx, key, acc)
}
