package realtime

import (
	"context"
	"encoding/json"
	"time"

	"maintenance/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const DefaultChannel = "ledger-events"

// RedisPublisher forwards changes to other API instances over a Redis
// pub/sub channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
	origin  string
	log     *logrus.Logger
	now     func() time.Time
}

func NewRedisPublisher(rdb *redis.Client, channel, origin string, log *logrus.Logger) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{
		rdb:     rdb,
		channel: channel,
		origin:  origin,
		log:     logger.OrDiscard(log),
		now:     time.Now,
	}
}

func (p *RedisPublisher) InventoryChanged(ctx context.Context, inventoryID int64, reason string, payload any) {
	data, err := json.Marshal(Event{
		Type:        EventInventoryChanged,
		InventoryID: inventoryID,
		Reason:      reason,
		Payload:     payload,
		At:          p.now().UTC(),
		Origin:      p.origin,
	})
	if err != nil {
		logger.LogError(p.log, moduleName, "InventoryChanged", "marshal event", inventoryID, err)
		return
	}
	if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil {
		logger.LogError(p.log, moduleName, "InventoryChanged", "publish event", inventoryID, err)
	}
}

// Relay subscribes to the channel and hands events published by other
// instances to the hub. It returns when ctx is done.
func Relay(ctx context.Context, rdb *redis.Client, channel string, hub *Hub) error {
	if channel == "" {
		channel = DefaultChannel
	}
	sub := rdb.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			hub.relay(msg.Payload)
		}
	}
}

// relay decodes one channel message. Events this instance published are
// skipped because the hub already delivered them locally.
func (h *Hub) relay(payload string) bool {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		logger.LogError(h.log, moduleName, "relay", "decode event", payload, err)
		return false
	}
	if ev.Type != EventInventoryChanged || (ev.Origin != "" && ev.Origin == h.origin) {
		return false
	}
	h.Broadcast(ev)
	return true
}
