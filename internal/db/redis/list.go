package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/flowconn/internal/db"
)

// RPush appends values to a list. With ttl > 0 the push and the EXPIRE run in one
// MULTI/EXEC transaction, so a failed round-trip applies neither.
func (s *Store) RPush(ctx context.Context, key string, ttl time.Duration, values ...[]byte) error {
	if len(values) == 0 {
		return nil
	}

	elems := make([]string, len(values))
	for i, v := range values {
		elems[i] = string(v)
	}
	push := s.b().Rpush().Key(key).Element(elems...).Build()

	if ttl <= 0 {
		if err := s.do(ctx, push).Error(); err != nil {
			return &db.Error{Op: db.OpRPush, Err: err}
		}
		return nil
	}

	expire := s.b().Expire().Key(key).Seconds(ttlSeconds(ttl)).Build()
	results := s.client.DoMulti(ctx, s.b().Multi().Build(), push, expire, s.b().Exec().Build())

	// MULTI and the two QUEUED replies
	for _, res := range results[:3] {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpRPush, Err: fmt.Errorf("key %s: %w", key, err)}
		}
	}
	replies, err := results[3].ToArray()
	if err != nil {
		return &db.Error{Op: db.OpRPush, Err: fmt.Errorf("key %s: exec: %w", key, err)}
	}
	ops := [...]string{db.OpRPush, db.OpExpire}
	for i := range replies {
		if i >= len(ops) {
			break
		}
		if err := replies[i].Error(); err != nil {
			return &db.Error{Op: ops[i], Err: fmt.Errorf("key %s: %w", key, err)}
		}
	}
	return nil
}

// LRange returns list elements between start and stop, inclusive. A missing key is an empty list.
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	cmd := s.b().Lrange().Key(key).Start(start).Stop(stop).Build()
	items, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, &db.Error{Op: db.OpLRange, Err: err}
	}

	out := make([][]byte, len(items))
	for i, item := range items {
		out[i] = []byte(item)
	}
	return out, nil
}

// Expire sets TTL on a key.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) error {
	cmd := s.b().Expire().Key(key).Seconds(ttlSeconds(ttl)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpExpire, Err: err}
	}
	return nil
}

// Del deletes a key.
func (s *Store) Del(ctx context.Context, key string) error {
	cmd := s.b().Del().Key(key).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// ttlSeconds rounds up to whole seconds so a positive TTL never becomes 0.
func ttlSeconds(ttl time.Duration) int64 {
	secs := int64(ttl / time.Second)
	if ttl%time.Second != 0 {
		secs++
	}
	return secs
}
