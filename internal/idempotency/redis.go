// Package idempotency implements the conditional insert-if-absent guard
// that keeps a retried placement request from creating a second order.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/livekart/orderflow/internal/core/ports"
)

// DefaultTTL bounds how long a committed idempotency record is honoured.
// Expiry is a storage-growth bound, not a correctness requirement:
// uniqueness during the active window is.
const DefaultTTL = 24 * time.Hour

// pendingMarker is the value stored between reservation and commit. It can
// never collide with an order id because order ids are UUIDs.
const pendingMarker = "__pending__"

// pendingTTL bounds how long an uncommitted reservation can block its key.
// A process that crashes between reserve and commit frees the key after
// this window instead of the full record TTL. Commit extends the record
// to the full TTL.
const pendingTTL = time.Minute

type redisGuard struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisGuard returns a guard backed by the Redis instance at addr.
// Keys are namespaced under prefix. ttl <= 0 falls back to DefaultTTL.
func NewRedisGuard(addr, prefix string, ttl time.Duration) ports.IdempotencyGuard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisGuard{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		prefix: prefix,
		ttl:    ttl,
	}
}

// CheckAndReserve performs the atomic insert-if-absent with a single SETNX.
// Exactly one of two concurrent requests carrying the same key observes a
// fresh reservation; the other sees the winner's pending marker or, after
// commit, the winner's order id.
func (g *redisGuard) CheckAndReserve(ctx context.Context, key string) (ports.Reservation, error) {
	k := g.key(key)

	ok, err := g.client.SetNX(ctx, k, pendingMarker, pendingTTL).Result()
	if err != nil {
		return ports.Reservation{}, fmt.Errorf("idempotency reserve %q: %w", key, err)
	}
	if ok {
		return ports.Reservation{State: ports.ReservationFresh}, nil
	}

	val, err := g.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// Reservation expired between SETNX and GET. Treat as in
		// progress; the client retry will win the key cleanly.
		return ports.Reservation{State: ports.ReservationInProgress}, nil
	}
	if err != nil {
		return ports.Reservation{}, fmt.Errorf("idempotency lookup %q: %w", key, err)
	}
	if val == pendingMarker {
		return ports.Reservation{State: ports.ReservationInProgress}, nil
	}
	return ports.Reservation{State: ports.ReservationDuplicate, OrderID: val}, nil
}

// Commit finalises the reservation with the resulting order id and extends
// the record from the short pending window to the full TTL.
func (g *redisGuard) Commit(ctx context.Context, key, orderID string) error {
	if err := g.client.Set(ctx, g.key(key), orderID, g.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency commit %q: %w", key, err)
	}
	return nil
}

// Release drops the reservation after a failed placement so a legitimate
// retry with the same key is not permanently blocked.
func (g *redisGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.key(key)).Err(); err != nil {
		return fmt.Errorf("idempotency release %q: %w", key, err)
	}
	return nil
}

func (g *redisGuard) key(key string) string {
	return fmt.Sprintf("%s:idem:%s", g.prefix, key)
}
