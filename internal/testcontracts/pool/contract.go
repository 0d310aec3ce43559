package pool

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

const tokenKey = "token"

func _deploy(data any, isUpdate bool) {
	if isUpdate {
		return
	}
	args := data.([]any)
	storage.Put(storage.GetContext(), tokenKey, args[0].(interop.Hash160))
}

// Deposit collects amount of tokens from the depositor into the pool's own
// account, consuming the allowance the depositor granted to the pool.
func Deposit(from interop.Hash160, amount int) {
	contract.Call(tokenHash(), "pull", contract.All, from, amount)
}

// Withdraw pays amount of tokens out of the pool's own account.
func Withdraw(to interop.Hash160, amount int) {
	contract.Call(tokenHash(), "push", contract.All, to, amount)
}

// Pay transfers amount out of the pool's own account through the regular
// transfer method, relying on the calling-contract authorization path.
func Pay(to interop.Hash160, amount int) {
	contract.Call(tokenHash(), "transfer", contract.All,
		runtime.GetExecutingScriptHash(), to, amount, nil)
}

// Holdings returns the pool's own token balance.
func Holdings() int {
	return contract.Call(tokenHash(), "balanceOf", contract.ReadOnly,
		runtime.GetExecutingScriptHash()).(int)
}

func tokenHash() interop.Hash160 {
	return storage.Get(storage.GetReadOnlyContext(), tokenKey).(interop.Hash160)
}
