// Package chain is the boundary to the blockchain node and the wallet. The
// node SDK and the signing subsystem live outside this module; they plug in
// through the Client and Signer interfaces.
package chain

import (
	"context"

	"bountyboard/pkg/chainaddr"
)

// Action names one of the mutating entry functions of the bounty module.
type Action string

const (
	ActionCreateBounty         Action = "entry_create_bounty"
	ActionCreateBuild          Action = "entry_create_build"
	ActionSubmitBuildForReview Action = "entry_submit_build_for_review"
	ActionEndBounty            Action = "end_bounty"
)

// FinalityToken is the transaction hash returned once the chain reports the
// submitted transaction as executed.
type FinalityToken string

// EntryFunctionCall is a fully resolved call to a module entry function.
// Argument values are plain Go values; the signer implementation owns the
// wire encoding.
type EntryFunctionCall struct {
	Function Action
	Args     []any
}

// PendingTransaction is a submitted but not yet executed transaction.
type PendingTransaction struct {
	Hash string
}

// ExecutedTransaction is the chain's verdict on a submitted transaction.
type ExecutedTransaction struct {
	Hash     string
	Success  bool
	VMStatus string
	// AbortCode is the chain's abort code; meaningful only when !Success.
	AbortCode uint64
}

// Signer signs and submits a transaction on behalf of one account. Produced
// by the wallet subsystem, treated as opaque here.
type Signer interface {
	Address() chainaddr.Address
	SignAndSubmit(ctx context.Context, call EntryFunctionCall) (PendingTransaction, error)
}

// Client is the thin read surface this layer needs from the node.
type Client interface {
	// TransactionByHash returns the executed transaction, or (nil, nil)
	// while the transaction is still pending.
	TransactionByHash(ctx context.Context, hash string) (*ExecutedTransaction, error)
	// ExistsBuild reads live chain state: whether the user already has a
	// build against the bounty. Authoritative over any mirror read, which
	// may lag the chain.
	ExistsBuild(ctx context.Context, bounty, user chainaddr.Address) (bool, error)
}
