package chain

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"bountyboard/pkg/chainaddr"
	"bountyboard/pkg/config"
	"bountyboard/pkg/errutil"
	"bountyboard/pkg/querycache"
)

// Notification reports the outcome of one write to the user-facing layer.
type Notification struct {
	Action Action
	Hash   FinalityToken
	Err    error
}

// Notifier is the UI's toast surface. Implementations must be cheap; the
// gateway calls them inline.
type Notifier interface {
	Notify(n Notification)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(Notification) {}

// Invalidator marks cache scopes stale after a confirmed write. Satisfied by
// *querycache.Cache.
type Invalidator interface {
	MarkStale(scopes ...string)
}

// Gateway submits the four mutating actions and waits for finality. Each
// call is a sequential task: submit, wait, notify, invalidate; every step
// honors ctx, and after cancellation no notification or invalidation fires.
// Failed or timed-out submissions are surfaced verbatim; the gateway never
// retries a financial transaction.
type Gateway struct {
	client       Client
	notifier     Notifier
	invalidator  Invalidator
	waitTimeout  time.Duration
	pollInterval time.Duration
}

type GatewayParams struct {
	fx.In
	Config      *config.Config
	Client      Client
	Notifier    Notifier    `optional:"true"`
	Invalidator Invalidator `optional:"true"`
}

var Module = fx.Module("chain.gateway",
	fx.Provide(NewGateway),
)

func NewGateway(p GatewayParams) *Gateway {
	notifier := p.Notifier
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &Gateway{
		client:       p.Client,
		notifier:     notifier,
		invalidator:  p.Invalidator,
		waitTimeout:  p.Config.Chain.WaitTimeout,
		pollInterval: p.Config.Chain.PollInterval,
	}
}

// CreateBountyRequest carries the entry function arguments in positional
// order. EndTimestamp nil means the bounty never ends.
type CreateBountyRequest struct {
	Title              string
	DescriptionLink    string
	EndTimestamp       *int64
	PaymentMetadata    chainaddr.Address
	PaymentPerWinner   int64
	StakeRequired      int64
	StakeLockupSeconds int64
	WinnerLimit        int64
	ContactInfo        string
}

func (g *Gateway) CreateBounty(ctx context.Context, signer Signer, req CreateBountyRequest) (FinalityToken, error) {
	if req.PaymentPerWinner < 0 || req.StakeRequired < 0 || req.WinnerLimit < 1 {
		return "", errutil.Submission("refusing to submit bounty with negative amounts or zero winner limit")
	}

	call := EntryFunctionCall{
		Function: ActionCreateBounty,
		Args: []any{
			req.Title,
			req.DescriptionLink,
			req.EndTimestamp,
			req.PaymentMetadata.String(),
			req.PaymentPerWinner,
			req.StakeRequired,
			req.StakeLockupSeconds,
			req.WinnerLimit,
			req.ContactInfo,
		},
	}

	// The bounty object address is minted on-chain, so only the signer and
	// aggregate scopes can be invalidated here; the new row reaches the
	// mirror under the signer scope.
	return g.submit(ctx, signer, call, []string{signer.Address().String(), querycache.ScopeAggregate})
}

// CreateBuild starts a build against bounty. paymentRecipient nil defaults
// to the signer on-chain.
func (g *Gateway) CreateBuild(ctx context.Context, signer Signer, bounty chainaddr.Address, paymentRecipient *chainaddr.Address) (FinalityToken, error) {
	var recipient *string
	if paymentRecipient != nil {
		s := paymentRecipient.String()
		recipient = &s
	}

	call := EntryFunctionCall{
		Function: ActionCreateBuild,
		Args:     []any{recipient, bounty.String()},
	}

	return g.submit(ctx, signer, call, []string{bounty.String(), signer.Address().String(), querycache.ScopeAggregate})
}

func (g *Gateway) SubmitBuildForReview(ctx context.Context, signer Signer, build chainaddr.Address, proofLink string) (FinalityToken, error) {
	call := EntryFunctionCall{
		Function: ActionSubmitBuildForReview,
		Args:     []any{build.String(), proofLink},
	}

	return g.submit(ctx, signer, call, []string{build.String(), signer.Address().String(), querycache.ScopeAggregate})
}

func (g *Gateway) EndBounty(ctx context.Context, signer Signer, bounty chainaddr.Address) (FinalityToken, error) {
	call := EntryFunctionCall{
		Function: ActionEndBounty,
		Args:     []any{bounty.String()},
	}

	return g.submit(ctx, signer, call, []string{bounty.String(), signer.Address().String(), querycache.ScopeAggregate})
}

func (g *Gateway) submit(ctx context.Context, signer Signer, call EntryFunctionCall, scopes []string) (FinalityToken, error) {
	action := call.Function

	pending, err := signer.SignAndSubmit(ctx, call)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		err = errutil.Submission(fmt.Sprintf("signer failed to submit %s", action), errutil.WithErr(err))
		g.notifier.Notify(Notification{Action: action, Err: err})
		return "", err
	}

	executed, err := g.waitForExecution(ctx, pending.Hash)
	if err != nil {
		if ctx.Err() != nil {
			// Caller is gone: no notification, no invalidation.
			return "", ctx.Err()
		}
		g.notifier.Notify(Notification{Action: action, Err: err})
		return "", err
	}

	if !executed.Success {
		err = errutil.ChainRejected(
			fmt.Sprintf("%s aborted on-chain with code %d", action, executed.AbortCode),
			errutil.WithDetails(errutil.Detail{Field: "vm_status", Message: executed.VMStatus}),
		)
		g.notifier.Notify(Notification{Action: action, Err: err})
		return "", err
	}

	token := FinalityToken(executed.Hash)
	g.notifier.Notify(Notification{Action: action, Hash: token})

	if g.invalidator != nil {
		g.invalidator.MarkStale(scopes...)
	}

	zap.L().Info("transaction finalized",
		zap.String("action", string(action)),
		zap.String("hash", string(token)),
		zap.String("signer", signer.Address().Short()),
	)

	return token, nil
}

func (g *Gateway) waitForExecution(ctx context.Context, hash string) (*ExecutedTransaction, error) {
	deadline := time.NewTimer(g.waitTimeout)
	defer deadline.Stop()

	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()

	for {
		executed, err := g.client.TransactionByHash(ctx, hash)
		if err != nil {
			return nil, errutil.Submission("failed to query transaction status", errutil.WithErr(err))
		}
		if executed != nil {
			return executed, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, errutil.Timeout(fmt.Sprintf("transaction %s not executed within %s", hash, g.waitTimeout))
		case <-ticker.C:
		}
	}
}
