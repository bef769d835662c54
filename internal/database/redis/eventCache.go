package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ds124wfegd/eventsphere/internal/entity"

	"github.com/redis/go-redis/v9"
)

const (
	eventKeyPrefix = "event:"
	goneKeyPrefix  = "event:gone:"

	// TombstoneTTL outlives any request that read an event before it was
	// invalidated.
	TombstoneTTL = time.Minute
)

// setUnlessGone writes KEYS[1] only while the tombstone KEYS[2] is absent.
var setUnlessGone = redis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then
	return 0
end
if tonumber(ARGV[2]) > 0 then
	redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
else
	redis.call("SET", KEYS[1], ARGV[1])
end
return 1
`)

// EventCache is a read-through cache of single events keyed by id.
// DeleteEvents leaves a tombstone, and SetEvent for a tombstoned id is
// dropped, so a reader racing a delete cannot bring the event back.
type EventCache interface {
	GetEvent(ctx context.Context, id string) (*entity.Event, error)
	SetEvent(ctx context.Context, event *entity.Event) error
	DeleteEvents(ctx context.Context, ids ...string) error
}

// ErrCacheMiss is returned by GetEvent when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

type CacheRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheRepository(client *redis.Client, ttl time.Duration) *CacheRepository {
	return &CacheRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *CacheRepository) SetEvent(ctx context.Context, event *entity.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	keys := []string{eventKeyPrefix + event.ID, goneKeyPrefix + event.ID}
	return setUnlessGone.Run(ctx, r.client, keys, data, r.ttl.Milliseconds()).Err()
}

func (r *CacheRepository) GetEvent(ctx context.Context, id string) (*entity.Event, error) {
	data, err := r.client.Get(ctx, eventKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var event entity.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *CacheRepository) DeleteEvents(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Set(ctx, goneKeyPrefix+id, 1, TombstoneTTL)
			pipe.Del(ctx, eventKeyPrefix+id)
		}
		return nil
	})
	return err
}

// NoopCache is used when Redis is disabled; every lookup misses.
type NoopCache struct{}

func (NoopCache) GetEvent(context.Context, string) (*entity.Event, error) { return nil, ErrCacheMiss }
func (NoopCache) SetEvent(context.Context, *entity.Event) error           { return nil }
func (NoopCache) DeleteEvents(context.Context, ...string) error           { return nil }
