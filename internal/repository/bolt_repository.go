package repository

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"powerplant_project/internal/config"
	"powerplant_project/internal/domain"

	bolt "go.etcd.io/bbolt"
)

// BoltStore implements BatteryStore using BoltDB.
// Batteries are keyed by big-endian id; a second bucket maps postcode to the
// first id registered under it.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore wraps an opened bolt database
func NewBoltStore(db *config.BoltDatabase) *BoltStore {
	return &BoltStore{db: db.DB}
}

func itob(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

func btoi(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}

func buckets(tx *bolt.Tx) (*bolt.Bucket, *bolt.Bucket, error) {
	batteries := tx.Bucket(config.BucketBatteries)
	postcodes := tx.Bucket(config.BucketPostcodes)
	if batteries == nil || postcodes == nil {
		return nil, nil, fmt.Errorf("bolt buckets not initialised")
	}
	return batteries, postcodes, nil
}

func put(batteries, postcodes *bolt.Bucket, b *domain.Battery) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	if err := batteries.Put(itob(b.ID), data); err != nil {
		return err
	}
	if postcodes.Get([]byte(b.Postcode)) == nil {
		return postcodes.Put([]byte(b.Postcode), itob(b.ID))
	}
	return nil
}

func (s *BoltStore) Insert(ctx context.Context, battery *domain.Battery) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		batteries, postcodes, err := buckets(tx)
		if err != nil {
			return err
		}
		if postcodes.Get([]byte(battery.Postcode)) != nil {
			return ErrDuplicatePostcode
		}

		seq, err := batteries.NextSequence()
		if err != nil {
			return err
		}
		battery.ID = int64(seq)
		return put(batteries, postcodes, battery)
	})
}

func (s *BoltStore) InsertMany(ctx context.Context, batteries []domain.Battery) ([]domain.Battery, error) {
	saved := make([]domain.Battery, len(batteries))
	err := s.db.Update(func(tx *bolt.Tx) error {
		bb, postcodes, err := buckets(tx)
		if err != nil {
			return err
		}
		for i, b := range batteries {
			seq, err := bb.NextSequence()
			if err != nil {
				return err
			}
			b.ID = int64(seq)
			if err := put(bb, postcodes, &b); err != nil {
				return err
			}
			saved[i] = b
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bulk insert: %w", err)
	}
	return saved, nil
}

func (s *BoltStore) FindAll(ctx context.Context) ([]domain.Battery, error) {
	all := make([]domain.Battery, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		batteries, _, err := buckets(tx)
		if err != nil {
			return err
		}
		return batteries.ForEach(func(k, v []byte) error {
			var b domain.Battery
			if err := json.Unmarshal(v, &b); err != nil {
				return fmt.Errorf("decode battery %d: %w", btoi(k), err)
			}
			all = append(all, b)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

func (s *BoltStore) FindByID(ctx context.Context, id int64) (*domain.Battery, error) {
	var b domain.Battery
	err := s.db.View(func(tx *bolt.Tx) error {
		batteries, _, err := buckets(tx)
		if err != nil {
			return err
		}
		data := batteries.Get(itob(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &b)
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *BoltStore) FindByPostcode(ctx context.Context, postcode string) (*domain.Battery, bool, error) {
	var (
		b     domain.Battery
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		batteries, postcodes, err := buckets(tx)
		if err != nil {
			return err
		}
		id := postcodes.Get([]byte(postcode))
		if id == nil {
			return nil
		}
		data := batteries.Get(id)
		if data == nil {
			return fmt.Errorf("postcode %q points at missing battery %d", postcode, btoi(id))
		}
		found = true
		return json.Unmarshal(data, &b)
	})
	if err != nil || !found {
		return nil, false, err
	}
	return &b, true, nil
}

func (s *BoltStore) Update(ctx context.Context, battery *domain.Battery) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		batteries, postcodes, err := buckets(tx)
		if err != nil {
			return err
		}

		data := batteries.Get(itob(battery.ID))
		if data == nil {
			return ErrNotFound
		}
		var old domain.Battery
		if err := json.Unmarshal(data, &old); err != nil {
			return err
		}

		if old.Postcode != battery.Postcode {
			if owner := postcodes.Get([]byte(battery.Postcode)); owner != nil && btoi(owner) != battery.ID {
				return ErrDuplicatePostcode
			}
			if owner := postcodes.Get([]byte(old.Postcode)); owner != nil && btoi(owner) == battery.ID {
				if err := reindexPostcode(batteries, postcodes, old.Postcode, battery.ID); err != nil {
					return err
				}
			}
		}
		return put(batteries, postcodes, battery)
	})
}

// reindexPostcode points postcode at the lowest remaining id other than skip,
// or drops the entry. Bulk inserts may have stored the postcode more than once.
func reindexPostcode(batteries, postcodes *bolt.Bucket, postcode string, skip int64) error {
	c := batteries.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		if btoi(k) == skip {
			continue
		}
		var b domain.Battery
		if err := json.Unmarshal(v, &b); err != nil {
			return err
		}
		if b.Postcode == postcode {
			return postcodes.Put([]byte(postcode), k)
		}
	}
	return postcodes.Delete([]byte(postcode))
}

func (s *BoltStore) Type() string {
	return "bolt"
}
