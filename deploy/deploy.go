// Package deploy provides Neo blockchain deployment of the token ledger
// contract.
package deploy

import (
	"context"
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for the token ledger deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions to
	// the blockchain.
	actor.RPCActor

	// GetContractStateByHash returns network state of the smart contract by
	// its address. GetContractStateByHash returns an error with 'Unknown
	// contract' substring if the requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// CommonDeployPrm groups common deployment parameters of the smart contract.
type CommonDeployPrm struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

// Prm groups all parameters of the token ledger deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance to deploy to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	// It is charged the deployment fees and becomes the transaction sender,
	// so the resulting contract address is derived from it.
	LocalAccount *wallet.Account

	Contract CommonDeployPrm

	// Account empowered to mint and burn the token supply.
	Owner util.Uint160
}

// Deploy deploys the token ledger contract represented by given Prm to the
// given Prm.Blockchain. Deploy is idempotent: if the contract is already
// on the chain, its address is returned without any transaction.
//
// The contract address is deterministic for a fixed sender and contract
// name, so repeated runs converge.
func Deploy(ctx context.Context, prm Prm) (util.Uint160, error) {
	// wrap the parent context into the context of the current function so
	// that transaction wait routines do not leak
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	localActor, err := actor.NewSimple(prm.Blockchain, prm.LocalAccount)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("init transaction sender from single local account: %w", err)
	}

	sender := prm.LocalAccount.ScriptHash()
	expectedHash := state.CreateContractHash(sender, prm.Contract.NEF.Checksum, prm.Contract.Manifest.Name)

	stateOnChain, err := prm.Blockchain.GetContractStateByHash(expectedHash)
	if err == nil {
		prm.Logger.Info("contract is already on the chain, skip deployment",
			zap.Stringer("address", stateOnChain.Hash))
		return stateOnChain.Hash, nil
	} else if !isErrContractNotFound(err) {
		return util.Uint160{}, fmt.Errorf("read on-chain state of the contract by address: %w", err)
	}

	prm.Logger.Info("contract is missing on the chain, deploying...",
		zap.Stringer("expected address", expectedHash))

	deployData := []any{prm.Owner}

	txID, vub, err := management.New(localActor).Deploy(&prm.Contract.NEF, &prm.Contract.Manifest, deployData)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("send transaction deploying the contract: %w", err)
	}

	prm.Logger.Info("transaction deploying the contract has been successfully sent, waiting...",
		zap.Stringer("tx", txID), zap.Uint32("vub", vub))

	_, err = localActor.Wait(txID, vub, nil)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("wait for deployment transaction persistence: %w", err)
	}

	stateOnChain, err = prm.Blockchain.GetContractStateByHash(expectedHash)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("read on-chain state of the deployed contract: %w", err)
	}

	prm.Logger.Info("contract has been successfully deployed",
		zap.Stringer("address", stateOnChain.Hash))

	return stateOnChain.Hash, nil
}

// isErrContractNotFound checks if the error is related to missing contract
// RPC exception.
func isErrContractNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Unknown contract")
}
