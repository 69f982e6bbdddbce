/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/TraceApi/brasil-utils/internal/core/ports"
	"github.com/redis/go-redis/v9"
)

// RedisEventBus publishes JSON events on Redis pub/sub channels.
type RedisEventBus struct {
	client *redis.Client
}

var _ ports.EventBus = (*RedisEventBus)(nil)

func NewRedisEventBus(addr string) *RedisEventBus {
	return NewRedisEventBusFromClient(redis.NewClient(&redis.Options{Addr: addr}))
}

func NewRedisEventBusFromClient(client *redis.Client) *RedisEventBus {
	return &RedisEventBus{client: client}
}

func (b *RedisEventBus) Publish(ctx context.Context, channel string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event for %s: %w", channel, err)
	}
	return b.client.Publish(ctx, channel, payload).Err()
}

func (b *RedisEventBus) Close() error {
	return b.client.Close()
}
