package tests

import (
	"path"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/token-contract/contracts/token/tokenconst"
)

const poolPath = "../internal/testcontracts/pool"

func deployPoolContract(t *testing.T, e *neotest.Executor, tokenHash util.Uint160) util.Uint160 {
	c := neotest.CompileFile(t, e.CommitteeHash, poolPath, path.Join(poolPath, "config.yml"))
	e.DeployContract(t, c, []any{tokenHash})
	return c.Hash
}

// TestPoolIntegration drives the token ledger through an integrating
// contract: deposits consume the allowance granted to the contract account,
// withdrawals and payments spend the contract's own holdings with no
// transaction witness at all.
func TestPoolIntegration(t *testing.T) {
	e := newExecutor(t)
	tokenHash := deployTokenContract(t, e, e.CommitteeHash)
	poolHash := deployPoolContract(t, e, tokenHash)

	c := e.CommitteeInvoker(tokenHash)
	p := e.CommitteeInvoker(poolHash)
	custodial := tokenHash

	user1 := c.NewAccount(t)
	user2 := c.NewAccount(t)
	user3 := c.NewAccount(t)
	user1Hash := user1.ScriptHash()

	c.Invoke(t, stackitem.Null{}, "mint", 500)
	c.Invoke(t, true, "transfer", custodial, user1Hash, 200, nil)

	// no allowance granted to the pool yet
	p.InvokeFail(t, tokenconst.ErrInsufficientAllowance, "deposit", user1Hash, 150)

	c.WithSigners(user1).Invoke(t, stackitem.Null{}, "setAllowance", user1Hash, poolHash, 150)

	p.Invoke(t, stackitem.Null{}, "deposit", user1Hash, 150)
	c.Invoke(t, 50, "balanceOf", user1Hash)
	c.Invoke(t, 150, "balanceOf", poolHash)
	c.Invoke(t, 0, "allowanceOf", user1Hash, poolHash)
	p.Invoke(t, 150, "holdings")

	// the allowance is exhausted
	p.InvokeFail(t, tokenconst.ErrInsufficientAllowance, "deposit", user1Hash, 1)

	p.Invoke(t, stackitem.Null{}, "withdraw", user2.ScriptHash(), 60)
	c.Invoke(t, 60, "balanceOf", user2.ScriptHash())
	c.Invoke(t, 90, "balanceOf", poolHash)

	p.Invoke(t, stackitem.Null{}, "pay", user3.ScriptHash(), 30)
	c.Invoke(t, 30, "balanceOf", user3.ScriptHash())
	c.Invoke(t, 60, "balanceOf", poolHash)

	// the pool cannot overdraw its own account either
	p.InvokeFail(t, tokenconst.ErrInsufficientBalance, "withdraw", user2.ScriptHash(), 61)
	c.Invoke(t, 60, "balanceOf", poolHash)

	c.Invoke(t, 500, "totalSupply")
}
