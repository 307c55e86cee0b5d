// Package redisstore keeps in-flight PvE and boss battles in Redis as JSON
// documents that expire after a period without turns.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/game/boss"
	"github.com/cory-johannsen/arena/internal/game/pve"
)

const (
	battleKeyPrefix     = "arena:battle:"
	bossBattleKeyPrefix = "arena:boss_battle:"
	defaultTTL          = 24 * time.Hour
)

// NewClient builds a go-redis client from cfg.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// doc is a JSON document under prefix+id whose expiry is refreshed on every write.
type doc[T any] struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func (d doc[T]) key(id string) string { return d.prefix + id }

func (d doc[T]) create(ctx context.Context, id string, v *T) (bool, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("encoding %s: %w", id, err)
	}
	ok, err := d.client.SetNX(ctx, d.key(id), body, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("creating %s: %w", d.key(id), err)
	}
	return ok, nil
}

func (d doc[T]) load(ctx context.Context, id string) (*T, bool, error) {
	body, err := d.client.Get(ctx, d.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading %s: %w", d.key(id), err)
	}
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, false, fmt.Errorf("decoding %s: %w", d.key(id), err)
	}
	return &v, true, nil
}

func (d doc[T]) save(ctx context.Context, id string, v *T) (bool, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("encoding %s: %w", id, err)
	}
	ok, err := d.client.SetXX(ctx, d.key(id), body, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("saving %s: %w", d.key(id), err)
	}
	return ok, nil
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return defaultTTL
	}
	return ttl
}

// BattleStore implements pve.BattleStore.
type BattleStore struct {
	docs doc[pve.Battle]
}

// NewBattleStore returns a BattleStore whose records expire ttl after their last write.
//
// Precondition: client must be non-nil. A non-positive ttl selects 24h.
func NewBattleStore(client redis.Cmdable, ttl time.Duration) *BattleStore {
	return &BattleStore{docs: doc[pve.Battle]{client: client, prefix: battleKeyPrefix, ttl: ttlOrDefault(ttl)}}
}

// Create stores b, or returns pve.ErrBattleExists when its id is taken.
func (s *BattleStore) Create(ctx context.Context, b *pve.Battle) error {
	ok, err := s.docs.create(ctx, b.ID, b)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("battle %s: %w", b.ID, pve.ErrBattleExists)
	}
	return nil
}

// Load returns the battle, or pve.ErrBattleNotFound when absent or expired.
func (s *BattleStore) Load(ctx context.Context, id string) (*pve.Battle, error) {
	b, ok, err := s.docs.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("battle %s: %w", id, pve.ErrBattleNotFound)
	}
	return b, nil
}

// Save replaces the stored battle and refreshes its expiry.
func (s *BattleStore) Save(ctx context.Context, b *pve.Battle) error {
	ok, err := s.docs.save(ctx, b.ID, b)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("battle %s: %w", b.ID, pve.ErrBattleNotFound)
	}
	return nil
}

// ArchivingBattleStore implements pve.BattleStore over a Redis BattleStore for
// battles still in progress and an archive store for resolved ones.
type ArchivingBattleStore struct {
	active  *BattleStore
	archive pve.BattleStore
}

// NewArchivingBattleStore returns a store that keeps unresolved battles in
// active and moves each battle to archive once it has a result.
//
// Precondition: active and archive must be non-nil.
func NewArchivingBattleStore(active *BattleStore, archive pve.BattleStore) *ArchivingBattleStore {
	return &ArchivingBattleStore{active: active, archive: archive}
}

// Create stores an unresolved battle in Redis and a resolved one in the archive.
func (s *ArchivingBattleStore) Create(ctx context.Context, b *pve.Battle) error {
	if b.Resolved() {
		return s.archive.Create(ctx, b)
	}
	return s.active.Create(ctx, b)
}

// Load returns the in-progress battle from Redis, falling back to the archive.
func (s *ArchivingBattleStore) Load(ctx context.Context, id string) (*pve.Battle, error) {
	b, err := s.active.Load(ctx, id)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pve.ErrBattleNotFound) {
		return nil, err
	}
	return s.archive.Load(ctx, id)
}

// Save refreshes an unresolved battle in Redis. A resolved battle is written
// to the archive first and then removed from Redis.
//
// Postcondition: Once Save of a resolved battle returns nil, Load serves the
// archived record.
func (s *ArchivingBattleStore) Save(ctx context.Context, b *pve.Battle) error {
	if !b.Resolved() {
		return s.active.Save(ctx, b)
	}
	err := s.archive.Create(ctx, b)
	if errors.Is(err, pve.ErrBattleExists) {
		err = s.archive.Save(ctx, b)
	}
	if err != nil {
		return fmt.Errorf("archiving battle %s: %w", b.ID, err)
	}
	if err := s.active.docs.client.Del(ctx, s.active.docs.key(b.ID)).Err(); err != nil {
		return fmt.Errorf("deleting %s: %w", s.active.docs.key(b.ID), err)
	}
	return nil
}

// BossStateStore implements pve.BossStateStore.
type BossStateStore struct {
	docs doc[boss.BattleState]
}

// NewBossStateStore returns a BossStateStore whose states expire ttl after their last write.
//
// Precondition: client must be non-nil. A non-positive ttl selects 24h.
func NewBossStateStore(client redis.Cmdable, ttl time.Duration) *BossStateStore {
	return &BossStateStore{docs: doc[boss.BattleState]{client: client, prefix: bossBattleKeyPrefix, ttl: ttlOrDefault(ttl)}}
}

// Create stores st, or returns pve.ErrBattleExists when its id is taken.
func (s *BossStateStore) Create(ctx context.Context, st *boss.BattleState) error {
	ok, err := s.docs.create(ctx, st.ID, st)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("boss battle %s: %w", st.ID, pve.ErrBattleExists)
	}
	return nil
}

// Load returns the state, or pve.ErrBattleNotFound when absent or expired.
func (s *BossStateStore) Load(ctx context.Context, id string) (*boss.BattleState, error) {
	st, ok, err := s.docs.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("boss battle %s: %w", id, pve.ErrBattleNotFound)
	}
	if st.Cooldowns == nil {
		st.Cooldowns = map[string]int{}
	}
	return st, nil
}

// Save replaces the stored state and refreshes its expiry.
func (s *BossStateStore) Save(ctx context.Context, st *boss.BattleState) error {
	ok, err := s.docs.save(ctx, st.ID, st)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("boss battle %s: %w", st.ID, pve.ErrBattleNotFound)
	}
	return nil
}

// Delete removes the state. Deleting an unknown id is not an error.
func (s *BossStateStore) Delete(ctx context.Context, id string) error {
	if err := s.docs.client.Del(ctx, s.docs.key(id)).Err(); err != nil {
		return fmt.Errorf("deleting %s: %w", s.docs.key(id), err)
	}
	return nil
}
