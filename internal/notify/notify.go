// Package notify emits fire-and-forget events after successful order and
// product creation. The sync layer never waits on delivery.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shopsync/internal/domain"
)

type Notifier interface {
	OrderCreated(ctx context.Context, o *domain.Order)
	ProductCreated(ctx context.Context, p *domain.Product)
}

type event struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
	At   int64  `json:"at"`
	Data any    `json:"data"`
}

// Redis publishes events on a channel for whatever UI process is listening.
// Publish failures are logged and dropped.
type Redis struct {
	rdb     *redis.Client
	channel string
	log     *zap.Logger
}

func NewRedis(rdb *redis.Client, channel string, log *zap.Logger) *Redis {
	return &Redis{rdb: rdb, channel: channel, log: log}
}

func (n *Redis) publish(ctx context.Context, kind, id string, data any) {
	b, err := json.Marshal(event{Kind: kind, ID: id, At: time.Now().UnixMilli(), Data: data})
	if err != nil {
		n.log.Warn("notify encode failed", zap.String("kind", kind), zap.Error(err))
		return
	}
	if err := n.rdb.Publish(ctx, n.channel, b).Err(); err != nil {
		n.log.Debug("notify publish failed", zap.String("kind", kind), zap.Error(err))
	}
}

func (n *Redis) OrderCreated(ctx context.Context, o *domain.Order) {
	n.publish(ctx, "order.created", o.ID, o)
}

func (n *Redis) ProductCreated(ctx context.Context, p *domain.Product) {
	n.publish(ctx, "product.created", p.ID, p)
}

// Log is the fallback notifier when redis is not configured.
type Log struct{ L *zap.Logger }

func (n Log) OrderCreated(_ context.Context, o *domain.Order) {
	n.L.Info("order created", zap.String("id", o.ID), zap.Float64("total", o.TotalAmount))
}

func (n Log) ProductCreated(_ context.Context, p *domain.Product) {
	n.L.Info("product created", zap.String("id", p.ID), zap.String("name", p.Name))
}
