// Package chaintest provides in-memory chain fakes for tests and for the
// CLI's dry-run mode.
package chaintest

import (
	"context"
	"fmt"
	"sync"

	"bountyboard/chain"
	"bountyboard/pkg/chainaddr"
)

// FakeClient implements chain.Client. Transactions become visible as
// executed after Execute (or immediately when AutoExecute is set).
type FakeClient struct {
	mu sync.Mutex

	AutoExecute bool
	// Reject, when set, marks auto-executed transactions as aborted with
	// this code.
	Reject    bool
	AbortCode uint64

	executed map[string]*chain.ExecutedTransaction
	builds   map[string]bool

	TransactionByHashFn func(ctx context.Context, hash string) (*chain.ExecutedTransaction, error)
	ExistsBuildFn       func(ctx context.Context, bounty, user chainaddr.Address) (bool, error)
}

func NewFakeClient() *FakeClient {
	return &FakeClient{
		AutoExecute: true,
		executed:    make(map[string]*chain.ExecutedTransaction),
		builds:      make(map[string]bool),
	}
}

func (c *FakeClient) TransactionByHash(ctx context.Context, hash string) (*chain.ExecutedTransaction, error) {
	if c.TransactionByHashFn != nil {
		return c.TransactionByHashFn(ctx, hash)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.executed[hash], nil
}

func (c *FakeClient) ExistsBuild(ctx context.Context, bounty, user chainaddr.Address) (bool, error) {
	if c.ExistsBuildFn != nil {
		return c.ExistsBuildFn(ctx, bounty, user)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.builds[buildKey(bounty, user)], nil
}

// SetBuild records live chain state for ExistsBuild.
func (c *FakeClient) SetBuild(bounty, user chainaddr.Address, exists bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.builds[buildKey(bounty, user)] = exists
}

// Execute marks hash as executed with the given verdict.
func (c *FakeClient) Execute(hash string, success bool, abortCode uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.executed[hash] = &chain.ExecutedTransaction{
		Hash:      hash,
		Success:   success,
		AbortCode: abortCode,
		VMStatus:  vmStatus(success, abortCode),
	}
}

func (c *FakeClient) observeSubmission(hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.AutoExecute {
		return
	}
	if c.Reject {
		c.executed[hash] = &chain.ExecutedTransaction{
			Hash:      hash,
			Success:   false,
			AbortCode: c.AbortCode,
			VMStatus:  vmStatus(false, c.AbortCode),
		}
		return
	}
	c.executed[hash] = &chain.ExecutedTransaction{Hash: hash, Success: true, VMStatus: vmStatus(true, 0)}
}

func buildKey(bounty, user chainaddr.Address) string {
	return bounty.String() + "/" + user.String()
}

func vmStatus(success bool, abortCode uint64) string {
	if success {
		return "Executed successfully"
	}
	return fmt.Sprintf("Move abort with code %d", abortCode)
}

// FakeSigner implements chain.Signer against a FakeClient.
type FakeSigner struct {
	Addr   chainaddr.Address
	Client *FakeClient

	// Err, when set, fails every submission.
	Err error

	mu    sync.Mutex
	seq   int
	Calls []chain.EntryFunctionCall
}

func NewFakeSigner(addr chainaddr.Address, client *FakeClient) *FakeSigner {
	return &FakeSigner{Addr: addr, Client: client}
}

func (s *FakeSigner) Address() chainaddr.Address {
	return s.Addr
}

func (s *FakeSigner) SignAndSubmit(ctx context.Context, call chain.EntryFunctionCall) (chain.PendingTransaction, error) {
	if err := ctx.Err(); err != nil {
		return chain.PendingTransaction{}, err
	}
	if s.Err != nil {
		return chain.PendingTransaction{}, s.Err
	}

	s.mu.Lock()
	s.seq++
	hash := fmt.Sprintf("0xtx%s%04d", s.Addr.Short(), s.seq)
	s.Calls = append(s.Calls, call)
	s.mu.Unlock()

	if s.Client != nil {
		s.Client.observeSubmission(hash)
	}
	return chain.PendingTransaction{Hash: hash}, nil
}
