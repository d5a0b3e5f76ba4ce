package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-sod/rrt/internal/plan/model"
	"github.com/google/uuid"
)

const (
	planPrefix = "plan:"
	scanCount  = 256
)

var _ Store = (*RedisStore)(nil)

func NewRedisStore(config *Config) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})
	return &RedisStore{client: client, ttl: config.TTL}
}

// RedisStore keeps every plan under plan:<id> and the ids of a trajectory in
// the set trajectory:<id>. A zero ttl keeps plans forever.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func planKey(id uuid.UUID) string {
	return planPrefix + id.String()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) SaveMany(ctx context.Context, plans []model.Plan) error {
	if len(plans) == 0 {
		return nil
	}
	encoded := make([][]byte, len(plans))
	for i := range plans {
		bytes, err := Encode(plans[i])
		if err != nil {
			return err
		}
		encoded[i] = bytes
	}

	if _, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, plan := range plans {
			index := trajectoryKey(plan.TrajectoryID)
			pipe.Set(ctx, planKey(plan.ID), encoded[i], s.ttl)
			pipe.SAdd(ctx, index, plan.ID.String())
			if s.ttl > 0 {
				pipe.Expire(ctx, index, s.ttl)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("save %d plans: %w", len(plans), err)
	}

	return nil
}

func (s *RedisStore) Load(ctx context.Context, id uuid.UUID) (model.Plan, error) {
	bytes, err := s.client.Get(ctx, planKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Plan{}, fmt.Errorf("load plan %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Plan{}, fmt.Errorf("load plan %s: %w", id, err)
	}
	return Decode(bytes)
}

// FindByTrajectory returns the plans of a trajectory ordered by id. Ids whose
// plan has expired are skipped.
func (s *RedisStore) FindByTrajectory(ctx context.Context, trajectoryID int) ([]model.Plan, error) {
	ids, err := s.client.SMembers(ctx, trajectoryKey(trajectoryID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list trajectory %d: %w", trajectoryID, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = planPrefix + id
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch trajectory %d: %w", trajectoryID, err)
	}

	var list []model.Plan
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		p, err := Decode([]byte(str))
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, nil
}

func (s *RedisStore) Trajectories(ctx context.Context) ([]int, error) {
	var (
		ids    []int
		cursor uint64
		seen   = map[int]struct{}{}
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, trajectoryPrefix+"*", scanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("scan trajectories: %w", err)
		}
		for _, key := range keys {
			id, err := strconv.Atoi(strings.TrimPrefix(key, trajectoryPrefix))
			if err != nil {
				continue
			}
			// SCAN may return a key more than once.
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	sort.Ints(ids)
	return ids, nil
}

func (s *RedisStore) DeleteMany(ctx context.Context, plans []model.Plan) error {
	if len(plans) == 0 {
		return nil
	}
	if _, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, plan := range plans {
			pipe.Del(ctx, planKey(plan.ID))
			pipe.SRem(ctx, trajectoryKey(plan.TrajectoryID), plan.ID.String())
		}
		return nil
	}); err != nil {
		return fmt.Errorf("delete %d plans: %w", len(plans), err)
	}

	return nil
}
