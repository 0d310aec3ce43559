package token

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/convert"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/token-contract/common"
	"github.com/nspcc-dev/token-contract/contracts/token/tokenconst"
)

// Token holds all token info.
type Token struct {
	// Ticker symbol
	Symbol string
	// Amount of decimals
	Decimals int
	// Storage key for total supply value
	SupplyKey string
}

const (
	supply = "supply"

	accPrefix = 'a'
	ownerKey  = 'o'
)

var (
	token Token

	// maxAmount bounds every stored quantity: 2^128-1, the full range of
	// the 128-bit balance type. NeoVM integers go up to 256 bits, so the
	// overflow checks below never wrap themselves.
	maxAmount int
)

func createToken() Token {
	return Token{
		Symbol:    tokenconst.Symbol,
		Decimals:  tokenconst.Decimals,
		SupplyKey: supply,
	}
}

func init() {
	token = createToken()
	// 2^128-1 as little-endian bytes, trailing zero keeps the sign positive.
	maxAmount = convert.ToInteger([]byte{
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
		0x00,
	})
}

// nolint:unused
func _deploy(data any, isUpdate bool) {
	ctx := storage.GetContext()
	if isUpdate {
		args := data.([]any)
		version := args[len(args)-1].(int)

		common.CheckVersion(version)
		return
	}

	args := data.([]any)
	owner := args[0].(interop.Hash160)
	if len(owner) != interop.Hash160Len {
		panic(tokenconst.ErrInvalidAccount)
	}
	storage.Put(ctx, ownerKey, owner)

	runtime.Log("token ledger contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by the contract owner.
func Update(nefFile, manifest []byte, data any) {
	common.CheckOwnerWitness(getOwner(storage.GetReadOnlyContext()))

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("token ledger contract updated")
}

// Symbol is a NEP-17 standard method that returns the token symbol.
func Symbol() string {
	return token.Symbol
}

// Decimals is a NEP-17 standard method that returns the precision of token
// balances.
func Decimals() int {
	return token.Decimals
}

// TotalSupply is a NEP-17 standard method that returns the total amount of
// token units in circulation. It always equals the sum of all account
// balances: only Mint and Burn change it and each does so together with the
// matching balance change in a single transition.
func TotalSupply() int {
	ctx := storage.GetReadOnlyContext()
	return token.getSupply(ctx)
}

// BalanceOf is a NEP-17 standard method that returns the token balance of
// the given account. Unknown accounts have a zero balance.
func BalanceOf(account interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	return getAccount(ctx, account).Balance
}

// AllowanceOf returns the amount of holder's tokens the delegate is still
// authorized to spend. Missing allowances are zero.
func AllowanceOf(holder, delegate interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	validateAccount(delegate)

	return getAccount(ctx, holder).allowance(delegateKey(delegate))
}

// Owner returns the account empowered to mint and burn the token supply. It
// is fixed at deployment time.
func Owner() interop.Hash160 {
	return getOwner(storage.GetReadOnlyContext())
}

// Mint credits amount to the contract's own custodial account and increases
// total supply accordingly. It can be invoked only by the contract owner.
//
// It produces a Transfer notification with empty sender.
func Mint(amount int) {
	ctx := storage.GetContext()
	common.CheckOwnerWitness(getOwner(ctx))

	if amount < 0 {
		panic(tokenconst.ErrNegativeAmount)
	}

	circulating := token.getSupply(ctx)
	if circulating+amount > maxAmount {
		panic(tokenconst.ErrSupplyOverflow)
	}

	custodial := runtime.GetExecutingScriptHash()
	acc := getAccount(ctx, custodial)
	acc.Balance += amount
	setAccount(ctx, custodial, acc)

	storage.Put(ctx, token.SupplyKey, circulating+amount)
	token.notifyTransfer(nil, custodial, amount)
}

// Burn debits amount from the contract's own custodial account and decreases
// total supply accordingly. It can be invoked only by the contract owner.
//
// It produces a Transfer notification with empty receiver.
func Burn(amount int) {
	ctx := storage.GetContext()
	common.CheckOwnerWitness(getOwner(ctx))

	if amount < 0 {
		panic(tokenconst.ErrNegativeAmount)
	}

	custodial := runtime.GetExecutingScriptHash()
	acc := getAccount(ctx, custodial)
	if acc.Balance < amount {
		panic(tokenconst.ErrInsufficientBalance)
	}
	acc.Balance -= amount
	setAccount(ctx, custodial, acc)

	circulating := token.getSupply(ctx)
	if circulating < amount {
		panic("negative supply after burn")
	}
	storage.Put(ctx, token.SupplyKey, circulating-amount)
	token.notifyTransfer(custodial, nil, amount)
}

// Transfer is a NEP-17 standard method that moves amount from one account to
// another. It can be invoked by the sending account itself (transaction
// witness) or by a contract spending its own account.
//
// It produces a Transfer notification.
func Transfer(from, to interop.Hash160, amount int, data any) bool {
	ctx := storage.GetContext()
	validateAccount(from)
	validateAccount(to)
	checkSpender(ctx, from)

	token.transfer(ctx, from, to, amount)
	return true
}

// TransferFrom moves amount from the holder's account to the receiver on
// behalf of the spender, consuming the allowance the holder granted to the
// spender. The spender authorizes the call the same way `from` does in
// Transfer.
//
// It produces a Transfer notification.
func TransferFrom(spender, from, to interop.Hash160, amount int, data any) bool {
	ctx := storage.GetContext()
	validateAccount(spender)
	validateAccount(from)
	validateAccount(to)
	checkSpender(ctx, spender)

	token.transferFrom(ctx, spender, from, to, amount)
	return true
}

// SetAllowance authorizes the delegate to spend up to amount of the holder's
// tokens. The value is absolute, so repeating the call changes nothing.
// Amount of zero revokes the allowance. It can be invoked only by the
// holder.
//
// It produces an AllowanceSet notification.
func SetAllowance(holder, delegate interop.Hash160, amount int) {
	ctx := storage.GetContext()
	validateAccount(holder)
	validateAccount(delegate)
	checkSpender(ctx, holder)

	if amount < 0 {
		panic(tokenconst.ErrNegativeAmount)
	}
	if amount > maxAmount {
		panic(tokenconst.ErrAllowanceOverflow)
	}

	token.updateAllowance(ctx, holder, delegate, amount)
}

// IncAllowance raises the delegate's spending cap by amount. It resolves to
// the same absolute stored value as SetAllowance. It can be invoked only by
// the holder.
//
// It produces an AllowanceSet notification with the resulting cap.
func IncAllowance(holder, delegate interop.Hash160, amount int) {
	ctx := storage.GetContext()
	validateAccount(holder)
	validateAccount(delegate)
	checkSpender(ctx, holder)

	if amount < 0 {
		panic(tokenconst.ErrNegativeAmount)
	}

	current := token.allowance(ctx, holder, delegate)
	if current+amount > maxAmount {
		panic(tokenconst.ErrAllowanceOverflow)
	}

	token.updateAllowance(ctx, holder, delegate, current+amount)
}

// DecAllowance lowers the delegate's spending cap by amount. Lowering past
// zero is rejected rather than clamped. It can be invoked only by the
// holder.
//
// It produces an AllowanceSet notification with the resulting cap.
func DecAllowance(holder, delegate interop.Hash160, amount int) {
	ctx := storage.GetContext()
	validateAccount(holder)
	validateAccount(delegate)
	checkSpender(ctx, holder)

	if amount < 0 {
		panic(tokenconst.ErrNegativeAmount)
	}

	current := token.allowance(ctx, holder, delegate)
	if current < amount {
		panic(tokenconst.ErrAllowanceUnderflow)
	}

	token.updateAllowance(ctx, holder, delegate, current-amount)
}

// Push transfers amount from the calling contract's own account to the
// receiver. It is a convenience method for integrating contracts paying out
// of their custody, equivalent to Transfer with the caller as sender.
func Push(to interop.Hash160, amount int) {
	ctx := storage.GetContext()
	caller := runtime.GetCallingScriptHash()
	validateAccount(to)

	token.transfer(ctx, caller, to, amount)
}

// Pull transfers amount from the holder's account into the calling
// contract's own account, consuming the allowance the holder granted to the
// caller. It is a convenience method equivalent to TransferFrom with the
// caller as both spender and receiver.
func Pull(from interop.Hash160, amount int) {
	ctx := storage.GetContext()
	caller := runtime.GetCallingScriptHash()
	validateAccount(from)

	token.transferFrom(ctx, caller, from, caller, amount)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// notifyTransfer emits the standard Transfer notification. Minting and
// burning pass nil through the typed parameters so that the emitted item
// keeps the Hash160 type declared in the manifest.
func (t Token) notifyTransfer(from, to interop.Hash160, amount int) {
	runtime.Notify("Transfer", from, to, amount)
}

// getSupply gets the total supply value from VM storage.
func (t Token) getSupply(ctx storage.Context) int {
	circulating := storage.Get(ctx, t.SupplyKey)
	if circulating != nil {
		return circulating.(int)
	}

	return 0
}

// allowance reads the current spending cap of the delegate over the
// holder's account.
func (t Token) allowance(ctx storage.Context, holder, delegate interop.Hash160) int {
	return getAccount(ctx, holder).allowance(delegateKey(delegate))
}

// transfer moves amount between two accounts. All checks run before any
// write, a panic at any point leaves storage untouched. The debited account
// is read exactly once: when from and to coincide the operation degrades to
// a balance check with no mutation, never two read-modify-write cycles on
// the same key.
func (t Token) transfer(ctx storage.Context, from, to interop.Hash160, amount int) {
	if amount < 0 {
		panic(tokenconst.ErrNegativeAmount)
	}

	fromAcc := getAccount(ctx, from)
	if fromAcc.Balance < amount {
		panic(tokenconst.ErrInsufficientBalance)
	}

	if from.Equals(to) {
		t.notifyTransfer(from, to, amount)
		return
	}

	fromAcc.Balance -= amount
	setAccount(ctx, from, fromAcc)

	toAcc := getAccount(ctx, to)
	toAcc.Balance += amount
	setAccount(ctx, to, toAcc)

	t.notifyTransfer(from, to, amount)
}

// transferFrom is the delegated variant of transfer: it verifies and debits
// the spender's allowance on the holder's account before moving the
// balance. The allowance entry is removed entirely once it hits zero.
func (t Token) transferFrom(ctx storage.Context, spender, from, to interop.Hash160, amount int) {
	if amount < 0 {
		panic(tokenconst.ErrNegativeAmount)
	}

	fromAcc := getAccount(ctx, from)

	key := delegateKey(spender)
	limit := fromAcc.allowance(key)
	if limit < amount {
		panic(tokenconst.ErrInsufficientAllowance)
	}
	if fromAcc.Balance < amount {
		panic(tokenconst.ErrInsufficientBalance)
	}

	fromAcc = fromAcc.withAllowance(key, limit-amount)

	if from.Equals(to) {
		// Allowance got consumed but the balance stays: both effects
		// apply to the single in-memory copy and one write-back.
		setAccount(ctx, from, fromAcc)
		t.notifyTransfer(from, to, amount)
		return
	}

	fromAcc.Balance -= amount
	setAccount(ctx, from, fromAcc)

	toAcc := getAccount(ctx, to)
	toAcc.Balance += amount
	setAccount(ctx, to, toAcc)

	t.notifyTransfer(from, to, amount)
}

// updateAllowance stores the new absolute cap of the delegate and notifies
// about it. Zero cap removes the entry, possibly reclaiming the whole
// account record.
func (t Token) updateAllowance(ctx storage.Context, holder, delegate interop.Hash160, amount int) {
	acc := getAccount(ctx, holder)
	acc = acc.withAllowance(delegateKey(delegate), amount)
	setAccount(ctx, holder, acc)
	runtime.Notify("AllowanceSet", holder, delegate, amount)
}

// checkSpender ensures the acting account authorized this invocation: it
// witnessed the carrier transaction, or it is a contract spending its own
// account, or it is the custodial account acting under the owner's witness.
func checkSpender(ctx storage.Context, id interop.Hash160) {
	if id.Equals(runtime.GetExecutingScriptHash()) {
		common.CheckOwnerWitness(getOwner(ctx))
		return
	}

	if runtime.CheckWitness(id) {
		return
	}

	callingScriptHash := runtime.GetCallingScriptHash()
	if callingScriptHash.Equals(id) {
		return
	}

	panic(common.ErrWitnessFailed)
}

func getOwner(ctx storage.Context) interop.Hash160 {
	return storage.Get(ctx, ownerKey).(interop.Hash160)
}
