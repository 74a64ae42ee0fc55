package querycache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel carries invalidated scopes between replicas. Every UI replica holds
// its own in-process cache; a write confirmed on one replica must mark the
// matching entries stale everywhere.
const Channel = "bountyboard:stale-scopes"

type fanoutMessage struct {
	Replica string   `json:"replica"`
	Scopes  []string `json:"scopes"`
}

// Fanout bridges a Cache onto a redis pub/sub channel. Local MarkStale calls
// are published; messages from other replicas are applied locally without
// republishing.
type Fanout struct {
	rdb     *redis.Client
	cache   *Cache
	replica string
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewFanout(rdb *redis.Client, cache *Cache) *Fanout {
	f := &Fanout{
		rdb:     rdb,
		cache:   cache,
		replica: replicaID(),
		done:    make(chan struct{}),
	}

	cache.setPublisher(f.publishScopes)
	return f
}

func (f *Fanout) Start(ctx context.Context) error {
	ctx, f.cancel = context.WithCancel(context.WithoutCancel(ctx))

	sub := f.rdb.Subscribe(ctx, Channel)
	go f.receive(ctx, sub)
	return nil
}

func (f *Fanout) Stop(ctx context.Context) error {
	if f.cancel != nil {
		f.cancel()
		<-f.done
	}
	return nil
}

func (f *Fanout) publishScopes(scopes []string) {
	payload, err := json.Marshal(fanoutMessage{Replica: f.replica, Scopes: scopes})
	if err != nil {
		return
	}
	if err := f.rdb.Publish(context.Background(), Channel, payload).Err(); err != nil {
		zap.L().Warn("failed to publish stale scopes", zap.Error(err))
	}
}

func (f *Fanout) receive(ctx context.Context, sub *redis.PubSub) {
	defer close(f.done)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			f.handle([]byte(msg.Payload))
		}
	}
}

// handle applies one pub/sub payload to the local cache. Messages this
// replica published are skipped so the originating MarkStale is not applied
// twice.
func (f *Fanout) handle(payload []byte) {
	var m fanoutMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		zap.L().Warn("bad invalidation payload", zap.Error(err))
		return
	}
	if m.Replica == f.replica {
		return
	}
	f.cache.markStale(m.Scopes)
}

func replicaID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "replica"
	}
	return hex.EncodeToString(b[:])
}
