package database

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-sod/rrt/internal/database"
	"github.com/go-sod/rrt/internal/plan/model"
	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

const (
	plansBucket      = "plans"
	trajectoryPrefix = "trajectory:"
)

var _ Store = (*BoltStore)(nil)

func NewBoltStore(db *database.DB) *BoltStore {
	return &BoltStore{sDB: db}
}

// BoltStore keeps encoded plans in a single bucket and one id index bucket
// per trajectory.
type BoltStore struct {
	sDB *database.DB
}

func trajectoryKey(trajectoryID int) string {
	return trajectoryPrefix + strconv.Itoa(trajectoryID)
}

func (db *BoltStore) SaveMany(_ context.Context, plans []model.Plan) error {
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

	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(plansBucket))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		for i, plan := range plans {
			if err := b.Put(plan.ID[:], encoded[i]); err != nil {
				return fmt.Errorf("put to bucket error: %w", err)
			}
			idx, err := tx.CreateBucketIfNotExists([]byte(trajectoryKey(plan.TrajectoryID)))
			if err != nil {
				return fmt.Errorf("create trajectory bucket: %w", err)
			}
			if err := idx.Put(plan.ID[:], []byte{0x0}); err != nil {
				return fmt.Errorf("put to trajectory bucket: %w", err)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}

	return nil
}

func (db *BoltStore) Load(_ context.Context, id uuid.UUID) (model.Plan, error) {
	var plan model.Plan
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(plansBucket))
		if b == nil {
			return ErrNotFound
		}
		v := b.Get(id[:])
		if v == nil {
			return ErrNotFound
		}
		p, err := Decode(v)
		if err != nil {
			return err
		}
		plan = p
		return nil
	}); err != nil {
		return model.Plan{}, fmt.Errorf("load plan %s: %w", id, err)
	}

	return plan, nil
}

// FindByTrajectory returns the plans of a trajectory ordered by id.
func (db *BoltStore) FindByTrajectory(_ context.Context, trajectoryID int) ([]model.Plan, error) {
	var list []model.Plan
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		idx := tx.Bucket([]byte(trajectoryKey(trajectoryID)))
		plans := tx.Bucket([]byte(plansBucket))
		if idx == nil || plans == nil {
			return nil
		}
		c := idx.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			v := plans.Get(k)
			if v == nil {
				continue
			}
			p, err := Decode(v)
			if err != nil {
				return err
			}
			list = append(list, p)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("view transaction error: %w", err)
	}

	return list, nil
}

func (db *BoltStore) Trajectories(_ context.Context) ([]int, error) {
	var ids []int
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			key := string(name)
			if !strings.HasPrefix(key, trajectoryPrefix) {
				return nil
			}
			id, err := strconv.Atoi(strings.TrimPrefix(key, trajectoryPrefix))
			if err != nil {
				return fmt.Errorf("bad trajectory bucket %q: %w", key, err)
			}
			ids = append(ids, id)
			return nil
		})
	}); err != nil {
		return nil, fmt.Errorf("view transaction error: %w", err)
	}

	sort.Ints(ids)
	return ids, nil
}

// DeleteMany removes plans and their index entries. Empty trajectory buckets
// are dropped.
func (db *BoltStore) DeleteMany(_ context.Context, plans []model.Plan) error {
	if len(plans) == 0 {
		return nil
	}
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(plansBucket))
		if b == nil {
			return nil
		}
		for _, plan := range plans {
			if err := b.Delete(plan.ID[:]); err != nil {
				return fmt.Errorf("delete from bucket error: %w", err)
			}
			key := []byte(trajectoryKey(plan.TrajectoryID))
			idx := tx.Bucket(key)
			if idx == nil {
				continue
			}
			if err := idx.Delete(plan.ID[:]); err != nil {
				return fmt.Errorf("delete from trajectory bucket: %w", err)
			}
			if k, _ := idx.Cursor().First(); k == nil {
				if err := tx.DeleteBucket(key); err != nil {
					return fmt.Errorf("drop trajectory bucket: %w", err)
				}
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}

	return nil
}
