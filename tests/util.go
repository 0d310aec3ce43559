package tests

import (
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

// accountRecords counts account records persisted in the storage of the
// contract deployed at h.
func accountRecords(t *testing.T, e *neotest.Executor, h util.Uint160) int {
	st := e.Chain.GetContractState(h)
	require.NotNil(t, st)

	var n int
	e.Chain.SeekStorage(st.ID, []byte{'a'}, func(k, v []byte) bool {
		n++
		return true
	})
	return n
}
