package tests

import (
	"math/big"
	"path"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/token-contract/common"
	"github.com/nspcc-dev/token-contract/contracts/token/tokenconst"
	"github.com/stretchr/testify/require"
)

const tokenPath = "../contracts/token"

// maxAmount is the upper bound of every stored quantity, 2^128-1.
var maxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

func deployTokenContract(t *testing.T, e *neotest.Executor, owner util.Uint160) util.Uint160 {
	c := neotest.CompileFile(t, e.CommitteeHash, tokenPath, path.Join(tokenPath, "config.yml"))
	e.DeployContract(t, c, []any{owner})
	return c.Hash
}

// newTokenInvoker deploys the token contract with the committee as its owner
// and returns a committee-signed invoker. The custodial account is the
// contract address itself.
func newTokenInvoker(t *testing.T) *neotest.ContractInvoker {
	e := newExecutor(t)
	h := deployTokenContract(t, e, e.CommitteeHash)
	return e.CommitteeInvoker(h)
}

func balanceOf(t *testing.T, c *neotest.ContractInvoker, acc util.Uint160) *big.Int {
	stack, err := c.TestInvoke(t, "balanceOf", acc)
	require.NoError(t, err)
	require.Equal(t, 1, stack.Len())

	res, err := stack.Pop().Item().TryInteger()
	require.NoError(t, err)
	return res
}

func TestTokenInfo(t *testing.T) {
	c := newTokenInvoker(t)

	c.Invoke(t, stackitem.NewByteArray([]byte(tokenconst.Symbol)), "symbol")
	c.Invoke(t, tokenconst.Decimals, "decimals")
	c.Invoke(t, common.Version, "version")
	c.Invoke(t, 0, "totalSupply")

	// owner comes back as a buffer, compare raw bytes
	stack, err := c.TestInvoke(t, "owner")
	require.NoError(t, err)
	require.Equal(t, 1, stack.Len())
	owner, err := stack.Pop().Item().TryBytes()
	require.NoError(t, err)
	require.Equal(t, c.CommitteeHash.BytesBE(), owner)
}

func TestMint(t *testing.T) {
	c := newTokenInvoker(t)
	custodial := c.Hash

	acc := c.NewAccount(t)
	c.WithSigners(acc).InvokeFail(t, common.ErrOwnerWitnessFailed, "mint", 100)
	c.Invoke(t, 0, "totalSupply")

	c.InvokeFail(t, tokenconst.ErrNegativeAmount, "mint", -1)

	c.Invoke(t, stackitem.Null{}, "mint", 100)
	c.Invoke(t, 100, "totalSupply")
	c.Invoke(t, 100, "balanceOf", custodial)

	c.Invoke(t, stackitem.Null{}, "mint", 0)
	c.Invoke(t, 100, "totalSupply")
}

func TestMintSupplyOverflow(t *testing.T) {
	c := newTokenInvoker(t)

	c.Invoke(t, stackitem.Null{}, "mint", maxAmount)
	c.Invoke(t, stackitem.NewBigInteger(maxAmount), "totalSupply")

	c.InvokeFail(t, tokenconst.ErrSupplyOverflow, "mint", 1)
	c.Invoke(t, stackitem.NewBigInteger(maxAmount), "totalSupply")
}

func TestBurn(t *testing.T) {
	c := newTokenInvoker(t)
	custodial := c.Hash

	acc := c.NewAccount(t)
	c.WithSigners(acc).InvokeFail(t, common.ErrOwnerWitnessFailed, "burn", 1)

	c.InvokeFail(t, tokenconst.ErrInsufficientBalance, "burn", 1)

	c.Invoke(t, stackitem.Null{}, "mint", 100)
	c.InvokeFail(t, tokenconst.ErrNegativeAmount, "burn", -1)
	c.Invoke(t, stackitem.Null{}, "burn", 30)
	c.Invoke(t, 70, "totalSupply")
	c.Invoke(t, 70, "balanceOf", custodial)

	c.InvokeFail(t, tokenconst.ErrInsufficientBalance, "burn", 71)
	c.Invoke(t, 70, "totalSupply")

	c.Invoke(t, stackitem.Null{}, "burn", 70)
	c.Invoke(t, 0, "totalSupply")
	c.Invoke(t, 0, "balanceOf", custodial)
}

func TestTransfer(t *testing.T) {
	e := newExecutor(t)
	h := deployTokenContract(t, e, e.CommitteeHash)
	c := e.CommitteeInvoker(h)
	custodial := c.Hash

	user1 := c.NewAccount(t)
	user2 := c.NewAccount(t)
	user1Hash := user1.ScriptHash()
	user2Hash := user2.ScriptHash()

	c.Invoke(t, stackitem.Null{}, "mint", 1000)

	// the custodial account is spent under the owner's witness
	c.Invoke(t, true, "transfer", custodial, user1Hash, 400, nil)
	c.Invoke(t, 600, "balanceOf", custodial)
	c.Invoke(t, 400, "balanceOf", user1Hash)
	c.Invoke(t, 1000, "totalSupply")

	// the sender must witness the transaction
	c.WithSigners(user2).InvokeFail(t, common.ErrWitnessFailed,
		"transfer", user1Hash, user2Hash, 10, nil)
	c.Invoke(t, 400, "balanceOf", user1Hash)

	c.WithSigners(user1).Invoke(t, true, "transfer", user1Hash, user2Hash, 150, nil)
	c.Invoke(t, 250, "balanceOf", user1Hash)
	c.Invoke(t, 150, "balanceOf", user2Hash)

	// a debit over the holdings is rejected and nothing changes
	c.WithSigners(user1).InvokeFail(t, tokenconst.ErrInsufficientBalance,
		"transfer", user1Hash, user2Hash, 251, nil)
	c.Invoke(t, 250, "balanceOf", user1Hash)
	c.Invoke(t, 150, "balanceOf", user2Hash)

	c.WithSigners(user1).InvokeFail(t, tokenconst.ErrNegativeAmount,
		"transfer", user1Hash, user2Hash, -5, nil)

	c.InvokeFail(t, tokenconst.ErrInvalidAccount,
		"transfer", []byte{1, 2, 3}, user2Hash, 1, nil)
}

func TestTransferZeroAmount(t *testing.T) {
	e := newExecutor(t)
	h := deployTokenContract(t, e, e.CommitteeHash)
	c := e.CommitteeInvoker(h)

	user1 := c.NewAccount(t)
	user2 := c.NewAccount(t)

	// zero transfer between two unknown accounts succeeds and creates no
	// account records
	c.WithSigners(user1).Invoke(t, true, "transfer",
		user1.ScriptHash(), user2.ScriptHash(), 0, nil)
	require.Equal(t, 0, accountRecords(t, e, h))
}

func TestTransferSelf(t *testing.T) {
	c := newTokenInvoker(t)
	custodial := c.Hash

	user := c.NewAccount(t)
	userHash := user.ScriptHash()

	c.Invoke(t, stackitem.Null{}, "mint", 100)
	c.Invoke(t, true, "transfer", custodial, userHash, 50, nil)

	// self-transfer is a no-op but the balance check still applies
	c.WithSigners(user).Invoke(t, true, "transfer", userHash, userHash, 50, nil)
	c.Invoke(t, 50, "balanceOf", userHash)

	c.WithSigners(user).InvokeFail(t, tokenconst.ErrInsufficientBalance,
		"transfer", userHash, userHash, 51, nil)
	c.Invoke(t, 50, "balanceOf", userHash)
}

func TestSetAllowance(t *testing.T) {
	e := newExecutor(t)
	h := deployTokenContract(t, e, e.CommitteeHash)
	c := e.CommitteeInvoker(h)

	holder := c.NewAccount(t)
	delegate := c.NewAccount(t)
	holderHash := holder.ScriptHash()
	delegateHash := delegate.ScriptHash()

	// only the holder authorizes its own allowances, the contract owner
	// has no power over them
	c.InvokeFail(t, common.ErrWitnessFailed, "setAllowance", holderHash, delegateHash, 100)

	hc := c.WithSigners(holder)
	hc.Invoke(t, stackitem.Null{}, "setAllowance", holderHash, delegateHash, 5)
	c.Invoke(t, 5, "allowanceOf", holderHash, delegateHash)

	// absolute set, replay changes nothing
	hc.Invoke(t, stackitem.Null{}, "setAllowance", holderHash, delegateHash, 5)
	c.Invoke(t, 5, "allowanceOf", holderHash, delegateHash)

	hc.InvokeFail(t, tokenconst.ErrNegativeAmount, "setAllowance", holderHash, delegateHash, -1)
	hc.InvokeFail(t, tokenconst.ErrAllowanceOverflow, "setAllowance", holderHash, delegateHash,
		new(big.Int).Add(maxAmount, big.NewInt(1)))

	// zero cap removes the entry and, with no balance, the whole record
	require.Equal(t, 1, accountRecords(t, e, h))
	hc.Invoke(t, stackitem.Null{}, "setAllowance", holderHash, delegateHash, 0)
	c.Invoke(t, 0, "allowanceOf", holderHash, delegateHash)
	require.Equal(t, 0, accountRecords(t, e, h))
}

func TestAllowanceOfDefault(t *testing.T) {
	c := newTokenInvoker(t)

	holder := c.NewAccount(t)
	delegate := c.NewAccount(t)
	other := c.NewAccount(t)
	holderHash := holder.ScriptHash()
	delegateHash := delegate.ScriptHash()

	// no record at all: reads are served by the zero default
	c.Invoke(t, 0, "allowanceOf", holderHash, delegateHash)

	// an existing record with entries for other delegates changes nothing
	c.WithSigners(holder).Invoke(t, stackitem.Null{}, "setAllowance", holderHash, delegateHash, 25)
	c.Invoke(t, 25, "allowanceOf", holderHash, delegateHash)
	c.Invoke(t, 0, "allowanceOf", holderHash, other.ScriptHash())
}

func TestIncDecAllowance(t *testing.T) {
	c := newTokenInvoker(t)

	holder := c.NewAccount(t)
	delegate := c.NewAccount(t)
	holderHash := holder.ScriptHash()
	delegateHash := delegate.ScriptHash()

	hc := c.WithSigners(holder)
	hc.Invoke(t, stackitem.Null{}, "incAllowance", holderHash, delegateHash, 70)
	hc.Invoke(t, stackitem.Null{}, "incAllowance", holderHash, delegateHash, 30)
	c.Invoke(t, 100, "allowanceOf", holderHash, delegateHash)

	hc.Invoke(t, stackitem.Null{}, "decAllowance", holderHash, delegateHash, 40)
	c.Invoke(t, 60, "allowanceOf", holderHash, delegateHash)

	// lowering past zero is rejected, not clamped
	hc.InvokeFail(t, tokenconst.ErrAllowanceUnderflow, "decAllowance", holderHash, delegateHash, 61)
	c.Invoke(t, 60, "allowanceOf", holderHash, delegateHash)

	hc.InvokeFail(t, tokenconst.ErrAllowanceOverflow, "incAllowance", holderHash, delegateHash, maxAmount)

	hc.InvokeFail(t, tokenconst.ErrNegativeAmount, "incAllowance", holderHash, delegateHash, -1)
	hc.InvokeFail(t, tokenconst.ErrNegativeAmount, "decAllowance", holderHash, delegateHash, -1)
}

func TestTransferFrom(t *testing.T) {
	e := newExecutor(t)
	h := deployTokenContract(t, e, e.CommitteeHash)
	c := e.CommitteeInvoker(h)
	custodial := c.Hash

	holder := c.NewAccount(t)
	delegate := c.NewAccount(t)
	receiver := c.NewAccount(t)
	holderHash := holder.ScriptHash()
	delegateHash := delegate.ScriptHash()
	receiverHash := receiver.ScriptHash()

	c.Invoke(t, stackitem.Null{}, "mint", 100)
	c.Invoke(t, true, "transfer", custodial, holderHash, 10, nil)

	dc := c.WithSigners(delegate)

	// no allowance granted yet
	dc.InvokeFail(t, tokenconst.ErrInsufficientAllowance,
		"transferFrom", delegateHash, holderHash, receiverHash, 1, nil)

	c.WithSigners(holder).Invoke(t, stackitem.Null{}, "setAllowance", holderHash, delegateHash, 10)

	// the delegate must witness the transaction itself
	c.WithSigners(receiver).InvokeFail(t, common.ErrWitnessFailed,
		"transferFrom", delegateHash, holderHash, receiverHash, 1, nil)

	dc.InvokeFail(t, tokenconst.ErrInsufficientAllowance,
		"transferFrom", delegateHash, holderHash, receiverHash, 11, nil)
	c.Invoke(t, 10, "balanceOf", holderHash)

	dc.Invoke(t, true, "transferFrom", delegateHash, holderHash, receiverHash, 10, nil)
	c.Invoke(t, 0, "balanceOf", holderHash)
	c.Invoke(t, 10, "balanceOf", receiverHash)
	c.Invoke(t, 0, "allowanceOf", holderHash, delegateHash)

	// the allowance is consumed, replay does not move funds twice
	dc.InvokeFail(t, tokenconst.ErrInsufficientAllowance,
		"transferFrom", delegateHash, holderHash, receiverHash, 10, nil)
	c.Invoke(t, 10, "balanceOf", receiverHash)

	// drained holder record is reclaimed: only custodial and receiver left
	require.Equal(t, 2, accountRecords(t, e, h))
}

func TestTransferFromZeroAmount(t *testing.T) {
	e := newExecutor(t)
	h := deployTokenContract(t, e, e.CommitteeHash)
	c := e.CommitteeInvoker(h)

	holder := c.NewAccount(t)
	delegate := c.NewAccount(t)
	receiver := c.NewAccount(t)
	holderHash := holder.ScriptHash()
	delegateHash := delegate.ScriptHash()

	// an absent allowance is a cap of zero, so the zero amount fits it and
	// no account records appear
	c.WithSigners(delegate).Invoke(t, true,
		"transferFrom", delegateHash, holderHash, receiver.ScriptHash(), 0, nil)
	c.Invoke(t, 0, "allowanceOf", holderHash, delegateHash)
	require.Equal(t, 0, accountRecords(t, e, h))
}

func TestTransferFromBalanceShort(t *testing.T) {
	c := newTokenInvoker(t)
	custodial := c.Hash

	holder := c.NewAccount(t)
	delegate := c.NewAccount(t)
	receiver := c.NewAccount(t)
	holderHash := holder.ScriptHash()
	delegateHash := delegate.ScriptHash()

	c.Invoke(t, stackitem.Null{}, "mint", 100)
	c.Invoke(t, true, "transfer", custodial, holderHash, 5, nil)

	// the cap may exceed the holdings, the balance check still applies
	c.WithSigners(holder).Invoke(t, stackitem.Null{}, "setAllowance", holderHash, delegateHash, 50)
	c.WithSigners(delegate).InvokeFail(t, tokenconst.ErrInsufficientBalance,
		"transferFrom", delegateHash, holderHash, receiver.ScriptHash(), 6, nil)

	c.Invoke(t, 5, "balanceOf", holderHash)
	c.Invoke(t, 50, "allowanceOf", holderHash, delegateHash)
}

func TestStorageReclamation(t *testing.T) {
	e := newExecutor(t)
	h := deployTokenContract(t, e, e.CommitteeHash)
	c := e.CommitteeInvoker(h)
	custodial := c.Hash

	user := c.NewAccount(t)
	userHash := user.ScriptHash()

	c.Invoke(t, stackitem.Null{}, "mint", 100)
	c.Invoke(t, true, "transfer", custodial, userHash, 100, nil)
	require.Equal(t, 1, accountRecords(t, e, h))

	// draining the balance with no outstanding allowances removes the
	// record, reads are served by the zero-value default again
	c.WithSigners(user).Invoke(t, true, "transfer", userHash, custodial, 100, nil)
	c.Invoke(t, 0, "balanceOf", userHash)
	require.Equal(t, 1, accountRecords(t, e, h))

	c.Invoke(t, stackitem.Null{}, "burn", 100)
	require.Equal(t, 0, accountRecords(t, e, h))
}

// TestLedgerScenario drives a full mint/transfer/delegate round and checks
// conservation of supply at every step.
func TestLedgerScenario(t *testing.T) {
	e := newExecutor(t)
	h := deployTokenContract(t, e, e.CommitteeHash)
	c := e.CommitteeInvoker(h)
	custodial := c.Hash

	user1 := c.NewAccount(t)
	user2 := c.NewAccount(t)
	user3 := c.NewAccount(t)
	user1Hash := user1.ScriptHash()
	user2Hash := user2.ScriptHash()
	user3Hash := user3.ScriptHash()

	checkConservation := func() {
		total := new(big.Int)
		for _, acc := range []util.Uint160{custodial, user1Hash, user2Hash, user3Hash} {
			total.Add(total, balanceOf(t, c, acc))
		}

		stack, err := c.TestInvoke(t, "totalSupply")
		require.NoError(t, err)
		supply, err := stack.Pop().Item().TryInteger()
		require.NoError(t, err)
		require.Zero(t, supply.Cmp(total))
	}

	c.Invoke(t, stackitem.Null{}, "mint", 1000)
	c.Invoke(t, 1000, "totalSupply")
	c.Invoke(t, 1000, "balanceOf", custodial)
	checkConservation()

	c.Invoke(t, true, "transfer", custodial, user1Hash, 400, nil)
	c.Invoke(t, 600, "balanceOf", custodial)
	c.Invoke(t, 400, "balanceOf", user1Hash)
	c.Invoke(t, 1000, "totalSupply")
	checkConservation()

	// the ledger owner cannot delegate user1's funds
	c.InvokeFail(t, common.ErrWitnessFailed, "setAllowance", user1Hash, user2Hash, 100)

	c.WithSigners(user1).Invoke(t, stackitem.Null{}, "setAllowance", user1Hash, user2Hash, 100)

	c.WithSigners(user2).Invoke(t, true,
		"transferFrom", user2Hash, user1Hash, user3Hash, 60, nil)
	c.Invoke(t, 340, "balanceOf", user1Hash)
	c.Invoke(t, 60, "balanceOf", user3Hash)
	c.Invoke(t, 40, "allowanceOf", user1Hash, user2Hash)
	checkConservation()
}

func TestUpdateAuth(t *testing.T) {
	c := newTokenInvoker(t)

	acc := c.NewAccount(t)
	c.WithSigners(acc).InvokeFail(t, common.ErrOwnerWitnessFailed, "update",
		[]byte{}, []byte{}, nil)
}
