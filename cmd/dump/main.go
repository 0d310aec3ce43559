// Dump prints the storage of the token ledger contract deployed on a Neo
// blockchain and verifies that total supply matches the sum of balances.
package main

import (
	"bytes"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

func main() {
	neoRPCEndpoint := flag.String("rpc", "", "Network address of the Neo RPC server")
	contractAddr := flag.String("contract", "", "Token ledger contract address (LE hex)")

	flag.Parse()

	switch {
	case *neoRPCEndpoint == "":
		log.Fatal("missing Neo RPC endpoint")
	case *contractAddr == "":
		log.Fatal("missing contract address")
	}

	contractHash, err := util.Uint160DecodeStringLE(*contractAddr)
	if err != nil {
		log.Fatal(fmt.Errorf("decode contract address: %w", err))
	}

	err = _dump(*neoRPCEndpoint, contractHash)
	if err != nil {
		log.Fatal(err)
	}
}

func _dump(neoBlockchainRPCEndpoint string, contractHash util.Uint160) error {
	b, err := newRemoteBlockChain(neoBlockchainRPCEndpoint)
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}

	defer b.close()

	log.Printf("Reading contract storage at block #%d...\n", b.currentBlock)

	var (
		supply      = new(big.Int)
		balancesSum = new(big.Int)
		nAccounts   int
	)

	err = b.iterateContractStorage(contractHash, func(key, value []byte) error {
		switch {
		case bytes.Equal(key, []byte("supply")):
			supply.SetBytes(reversed(value))
			fmt.Printf("total supply: %s\n", supply)
		case bytes.Equal(key, []byte{'o'}):
			owner, err := util.Uint160DecodeBytesBE(reversed(value))
			if err != nil {
				return fmt.Errorf("decode owner record: %w", err)
			}
			fmt.Printf("owner: %s\n", address.Uint160ToString(owner))
		case len(key) > 0 && key[0] == 'a':
			balance, nAllowances, err := decodeAccount(value)
			if err != nil {
				return fmt.Errorf("decode account record '%s': %w", hex.EncodeToString(key[1:]), err)
			}

			// only the identifier hash is stored, the identifier
			// itself never reaches the chain
			fmt.Printf("account %s: balance %s, %d allowance(s)\n",
				hex.EncodeToString(key[1:]), balance, nAllowances)

			balancesSum.Add(balancesSum, balance)
			nAccounts++
		default:
			fmt.Printf("unexpected storage item '%s'\n", hex.EncodeToString(key))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("iterate contract storage: %w", err)
	}

	fmt.Printf("%d account(s), balances sum %s\n", nAccounts, balancesSum)

	if supply.Cmp(balancesSum) != 0 {
		return fmt.Errorf("conservation violated: total supply %s != balances sum %s", supply, balancesSum)
	}

	log.Println("total supply matches the sum of balances")
	return nil
}

// decodeAccount parses a serialized account record and returns its balance
// and the number of active allowances.
func decodeAccount(value []byte) (*big.Int, int, error) {
	item, err := stackitem.Deserialize(value)
	if err != nil {
		return nil, 0, fmt.Errorf("deserialize stack item: %w", err)
	}

	fields, ok := item.Value().([]stackitem.Item)
	if !ok || len(fields) != 2 {
		return nil, 0, fmt.Errorf("unexpected account structure")
	}

	balance, err := fields[0].TryInteger()
	if err != nil {
		return nil, 0, fmt.Errorf("balance field: %w", err)
	}

	allowances, ok := fields[1].Value().([]stackitem.Item)
	if !ok {
		return nil, 0, fmt.Errorf("allowances field is not an array")
	}

	return balance, len(allowances), nil
}

// reversed returns a new copy of b with inverted byte order. Storage keeps
// integers and script hashes in little-endian form.
func reversed(b []byte) []byte {
	res := make([]byte, len(b))
	for i := range b {
		res[i] = b[len(b)-1-i]
	}
	return res
}
